// Coloured JSON for terminals.
//
// The layout matches json.MarshalIndent with a two space indent and sorted
// keys, so the coloured and plain forms differ only in escape sequences.
package quire

import (
	"bytes"
	"io"
	"maps"
	"slices"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
)

// palette holds one formatter per token kind.
type palette struct {
	key   func(...any) string
	str   func(...any) string
	num   func(...any) string
	lit   func(...any) string
	null  func(...any) string
	punct func(...any) string
}

// newPalette forces colour on: the caller has already decided the
// destination is a terminal, which may not be the process's stdout.
func newPalette() *palette {
	mk := func(c *color.Color) func(...any) string {
		c.EnableColor()
		return c.SprintFunc()
	}
	return &palette{
		key:   mk(color.New(color.FgBlue, color.Bold)),
		str:   mk(color.New(color.FgGreen)),
		num:   mk(color.RGB(128, 216, 236)),
		lit:   mk(color.New(color.FgCyan)),
		null:  mk(color.RGB(168, 0, 196)),
		punct: mk(color.New(color.FgWhite)),
	}
}

// writeColorJSON writes v pretty-printed with colour, followed by a newline.
func writeColorJSON(w io.Writer, v any) error {
	var buf bytes.Buffer
	p := newPalette()
	if err := p.value(&buf, v, 0); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

func (p *palette) value(buf *bytes.Buffer, v any, depth int) error {
	switch x := v.(type) {
	case map[string]any:
		return p.object(buf, x, depth)
	case []any:
		return p.array(buf, x, depth)
	case nil:
		buf.WriteString(p.null("null"))
		return nil
	case bool:
		if x {
			buf.WriteString(p.lit("true"))
		} else {
			buf.WriteString(p.lit("false"))
		}
		return nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, ok := v.(string); ok {
		buf.WriteString(p.str(string(raw)))
	} else {
		buf.WriteString(p.num(string(raw)))
	}
	return nil
}

func (p *palette) object(buf *bytes.Buffer, m map[string]any, depth int) error {
	if len(m) == 0 {
		buf.WriteString(p.punct("{}"))
		return nil
	}
	buf.WriteString(p.punct("{"))
	for i, k := range slices.Sorted(maps.Keys(m)) {
		if i > 0 {
			buf.WriteString(p.punct(","))
		}
		indent(buf, depth+1)
		name, err := json.Marshal(k)
		if err != nil {
			return err
		}
		buf.WriteString(p.key(string(name)))
		buf.WriteString(p.punct(":"))
		buf.WriteByte(' ')
		if err := p.value(buf, m[k], depth+1); err != nil {
			return err
		}
	}
	indent(buf, depth)
	buf.WriteString(p.punct("}"))
	return nil
}

func (p *palette) array(buf *bytes.Buffer, a []any, depth int) error {
	if len(a) == 0 {
		buf.WriteString(p.punct("[]"))
		return nil
	}
	buf.WriteString(p.punct("["))
	for i, v := range a {
		if i > 0 {
			buf.WriteString(p.punct(","))
		}
		indent(buf, depth+1)
		if err := p.value(buf, v, depth+1); err != nil {
			return err
		}
	}
	indent(buf, depth)
	buf.WriteString(p.punct("]"))
	return nil
}

func indent(buf *bytes.Buffer, depth int) {
	buf.WriteByte('\n')
	for range depth {
		buf.WriteString("  ")
	}
}

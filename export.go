// Export pipeline.
//
// Both exports read their input to completion and load it under the
// requested policy before producing anything, so a document that fails to
// decode never yields partial output.
package quire

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
)

// ColorMode controls colouring of JSON output.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // Colour when writing to a terminal
	ColorAlways                  // Always colour
	ColorNever                   // Never colour
)

// ExportOptions configures ExportJSON and ExportBinary.
type ExportOptions struct {
	Policy Policy      // Load policy (default Verify)
	Color  ColorMode   // JSON only
	Perm   os.FileMode // Binary only (default 0644)
	Config Config      // Passed to Load; Algorithm and Compression apply to the binary output
}

// ExportJSON loads the document from r and writes its snapshot to w as
// pretty-printed JSON, coloured if w is a terminal. Numbers are float64 and
// print in their shortest form, so a whole value such as 15.0 is written
// as 15.
func ExportJSON(r io.Reader, w io.Writer, opts ExportOptions) error {
	d, err := Read(r, opts.Policy, opts.Config)
	if err != nil {
		return err
	}
	return WriteJSON(w, d.Snapshot(), opts.colored(w))
}

// WriteJSON writes v as pretty-printed JSON followed by a newline.
func WriteJSON(w io.Writer, v any, colored bool) error {
	if colored {
		return writeColorJSON(w, v)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// ExportBinary loads the document from r, re-serialises its full op log and
// atomically replaces dest with the result. On failure dest is unchanged.
func ExportBinary(r io.Reader, dest string, opts ExportOptions) error {
	d, err := Read(r, opts.Policy, opts.Config)
	if err != nil {
		return err
	}
	data, err := d.Save()
	if err != nil {
		return err
	}
	perm := opts.Perm
	if perm == 0 {
		perm = 0644
	}
	if err := WriteFile(dest, data, perm); err != nil {
		return err
	}
	d.logger().Debug("quire: exported document", "path", dest, "bytes", len(data), "ops", d.Len())
	return nil
}

func (o ExportOptions) colored(w io.Writer) bool {
	switch o.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	return isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

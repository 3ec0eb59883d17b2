// Body records.
//
// The body is a single JSON object holding the two interning tables and the
// op log. Ops carry only integer indices into the tables, so an actor id
// that appears in thousands of ops is stored once.
package quire

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// wireDoc is the decoded form of a document body.
type wireDoc struct {
	Actors []string `json:"_a"` // Actor table
	Keys   []string `json:"_k"` // Key table
	Ops    []wireOp `json:"_o"` // Op log
}

// wireOp is one op as stored. oc=0 addresses the root object.
type wireOp struct {
	Actor      int    `json:"a"`
	Counter    uint64 `json:"c"`
	ObjActor   int    `json:"oa"`
	ObjCounter uint64 `json:"oc"`
	Key        int    `json:"k"`
	Action     int    `json:"x"`
	Value      any    `json:"v"`
}

// Save serialises the full op log. Both tables are canonicalised and every
// index remapped, so documents with the same ops produce identical bytes
// regardless of the order their tables were filled.
func (d *Document) Save() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	body, err := json.Marshal(d.wire())
	if err != nil {
		return nil, fmt.Errorf("save: marshal: %w", err)
	}
	stored, err := compress(body, d.cfg.Compression)
	if err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}
	if !knownAlgorithm(d.cfg.Algorithm) {
		return nil, fmt.Errorf("save: %w: checksum algorithm %d", ErrUnsupported, d.cfg.Algorithm)
	}

	hdr := Header{
		Version:     FormatVersion,
		Algorithm:   d.cfg.Algorithm,
		Compression: d.cfg.Compression,
		Length:      int64(len(stored)),
		Sum:         sum(stored, d.cfg.Algorithm),
	}
	hdrBytes, err := hdr.encode()
	if err != nil {
		return nil, fmt.Errorf("save: encode header: %w", err)
	}

	out := make([]byte, 0, len(hdrBytes)+len(stored))
	out = append(out, hdrBytes...)
	out = append(out, stored...)

	d.logger().Debug("quire: saved document",
		"ops", len(d.ops), "actors", d.actors.Len(), "keys", d.keys.Len(), "bytes", len(out))
	return out, nil
}

// wire builds the canonical body. Called with d.mu held. Unresolved indices
// from a Skip load are written back unchanged.
func (d *Document) wire() *wireDoc {
	actors := d.actors.Canonical()
	keys := d.keys.Canonical()

	actorIdx := func(i int) int {
		if i < 0 {
			return i
		}
		n, _ := actors.Lookup(d.actors.Get(i))
		return n
	}
	keyIdx := func(i int) int {
		if i < 0 {
			return i
		}
		n, _ := keys.Lookup(d.keys.Get(i))
		return n
	}

	w := &wireDoc{
		Actors: make([]string, 0, actors.Len()),
		Keys:   keys.Values(),
		Ops:    make([]wireOp, len(d.ops)),
	}
	for _, a := range actors.All() {
		w.Actors = append(w.Actors, string(a))
	}
	for i, op := range d.ops {
		wo := wireOp{
			Actor:      actorIdx(op.ID.Actor),
			Counter:    op.ID.Counter,
			ObjCounter: op.Obj.Counter,
			Key:        keyIdx(op.Key),
			Action:     int(op.Action),
			Value:      op.Value,
		}
		// A root reference carries actor 0 unless Skip left it unresolved.
		if !op.Obj.IsRoot() || op.Obj.Actor < 0 {
			wo.ObjActor = actorIdx(op.Obj.Actor)
		}
		w.Ops[i] = wo
	}
	return w
}

// Loading documents from untrusted bytes.
//
// Load is the trust boundary. Structural damage that leaves nothing to
// decode (bad magic, short input, an unreadable header or body) fails under
// every policy. Beyond that the policy decides:
//
//   - Verify checks the body checksum, rejects trailing bytes, invalid or
//     duplicate table entries and any op whose indices do not resolve.
//   - Skip ignores the checksum and resolves every index through SafeGet.
//     A reference that does not resolve is recorded as Unresolved and logged;
//     the op keeps an unknown actor, or is left out of the materialised tree
//     when its key or target object cannot be found.
package quire

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
)

// Load decodes a document. An empty input yields an empty document.
func Load(data []byte, policy Policy, cfg Config) (*Document, error) {
	if !policy.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPolicy, uint8(policy))
	}
	cfg = cfg.withDefaults()
	d := newDocument(cfg)
	if len(data) == 0 {
		return d, nil
	}

	hdr, err := parseHeader(data)
	if err != nil {
		return nil, decodeErr("header", err)
	}

	body := data[HeaderSize:]
	if int64(len(body)) < hdr.Length {
		return nil, decodeErr("body", fmt.Errorf("%w: body has %d of %d bytes", ErrTruncated, len(body), hdr.Length))
	}
	if extra := int64(len(body)) - hdr.Length; extra > 0 {
		if policy == Verify {
			return nil, decodeErr("body", fmt.Errorf("%w: %d trailing bytes", ErrCorruptBody, extra))
		}
		cfg.Logger.Warn("quire: ignoring trailing bytes", "bytes", extra)
		body = body[:hdr.Length]
	}

	if got := sum(body, hdr.Algorithm); got != hdr.Sum {
		if policy == Verify {
			return nil, decodeErr("body", fmt.Errorf("%w: got %s, want %s", ErrChecksum, got, hdr.Sum))
		}
		cfg.Logger.Warn("quire: ignoring checksum mismatch", "got", got, "want", hdr.Sum)
	}

	raw, err := decompress(body, hdr.Compression, cfg.MaxDocumentSize)
	if err != nil {
		return nil, decodeErr("body", err)
	}
	var w wireDoc
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, decodeErr("body", fmt.Errorf("%w: %w", ErrCorruptBody, err))
	}

	dec := &decoder{doc: d, policy: policy}
	if err := dec.tables(&w); err != nil {
		return nil, err
	}
	if err := dec.ops(w.Ops); err != nil {
		return nil, err
	}

	cfg.Logger.Debug("quire: loaded document",
		"policy", policy, "ops", len(d.ops), "actors", d.actors.Len(),
		"keys", d.keys.Len(), "unresolved", len(d.unresolved))
	return d, nil
}

// Read reads r to completion, then decodes it with Load.
func Read(r io.Reader, policy Policy, cfg Config) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("quire: read: %w", err)
	}
	return Load(data, policy, cfg)
}

// Open reads and decodes the document file at path.
func Open(path string, policy Policy, cfg Config) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("quire: %w", err)
	}
	return Load(data, policy, cfg)
}

// decoder resolves a wireDoc into a Document. actorPos and keyPos map each
// position in the input tables to its index in the document's tables; they
// differ only when Skip collapsed a duplicate entry.
type decoder struct {
	doc      *Document
	policy   Policy
	actorPos []int
	keyPos   []int
}

func (dec *decoder) tables(w *wireDoc) error {
	d := dec.doc
	dec.actorPos = make([]int, len(w.Actors))
	for i, s := range w.Actors {
		a := ActorID(s)
		if dec.policy == Verify {
			if !a.valid() {
				return decodeErr("table", fmt.Errorf("%w: actor %d: %w %q", ErrCorruptTable, i, ErrInvalidActor, s))
			}
			if _, dup := d.actors.Lookup(a); dup {
				return decodeErr("table", fmt.Errorf("%w: duplicate actor %q", ErrCorruptTable, s))
			}
		}
		dec.actorPos[i] = d.actors.Intern(a)
	}
	dec.keyPos = make([]int, len(w.Keys))
	for i, k := range w.Keys {
		if _, dup := d.keys.Lookup(k); dup && dec.policy == Verify {
			return decodeErr("table", fmt.Errorf("%w: duplicate key %q", ErrCorruptTable, k))
		}
		dec.keyPos[i] = d.keys.Intern(k)
	}
	if n := len(w.Actors) - d.actors.Len(); n > 0 {
		d.logger().Warn("quire: collapsed duplicate actors", "count", n)
	}
	if n := len(w.Keys) - d.keys.Len(); n > 0 {
		d.logger().Warn("quire: collapsed duplicate keys", "count", n)
	}
	return nil
}

func (dec *decoder) ops(ops []wireOp) error {
	d := dec.doc
	d.ops = make([]Op, 0, len(ops))
	for i, wo := range ops {
		op := Op{
			ID:     OpID{Counter: wo.Counter},
			Obj:    Root,
			Action: Action(wo.Action),
			Value:  wo.Value,
		}

		var ok bool
		if op.ID.Actor, ok = dec.actor(i, "actor", wo.Actor); !ok && dec.policy == Verify {
			return decodeErr("op", fmt.Errorf("%w: op %d: actor index %d of %d", ErrCorruptTable, i, wo.Actor, len(dec.actorPos)))
		}
		objOK := true
		if wo.ObjCounter == 0 && wo.ObjActor != 0 {
			if dec.policy == Verify {
				return decodeErr("op", fmt.Errorf("%w: op %d: root object with actor index %d", ErrCorruptOp, i, wo.ObjActor))
			}
			dec.unresolved(i, "object", wo.ObjActor)
			op.Obj.Actor = UnresolvedIndex
			objOK = false
		}
		if wo.ObjCounter != 0 {
			op.Obj.Counter = wo.ObjCounter
			if op.Obj.Actor, objOK = dec.actor(i, "object", wo.ObjActor); !objOK && dec.policy == Verify {
				return decodeErr("op", fmt.Errorf("%w: op %d: object actor index %d of %d", ErrCorruptTable, i, wo.ObjActor, len(dec.actorPos)))
			}
		}
		var keyOK bool
		if op.Key, keyOK = position(dec.keyPos, wo.Key); !keyOK {
			if dec.policy == Verify {
				return decodeErr("op", fmt.Errorf("%w: op %d: key index %d of %d", ErrCorruptTable, i, wo.Key, len(dec.keyPos)))
			}
			dec.unresolved(i, "key", wo.Key)
		}

		if err := dec.check(op); err != nil {
			if dec.policy == Verify {
				return decodeErr("op", fmt.Errorf("op %d: %w", i, err))
			}
			dec.unresolved(i, "op", i)
			objOK = false
		}

		if objOK && keyOK {
			if err := d.apply(op); err != nil {
				if dec.policy == Verify {
					return decodeErr("op", fmt.Errorf("%w: op %d: %w", ErrCorruptOp, i, err))
				}
				dec.unresolved(i, "object", wo.ObjActor)
			}
		}

		d.counter = max(d.counter, op.ID.Counter)
		d.ops = append(d.ops, op)
	}
	return nil
}

// actor resolves an actor index from the input. Under Skip a bad index is
// recorded before UnresolvedIndex is returned.
func (dec *decoder) actor(op int, field string, idx int) (int, bool) {
	if n, ok := position(dec.actorPos, idx); ok {
		return n, true
	}
	if dec.policy == Skip {
		dec.unresolved(op, field, idx)
	}
	return UnresolvedIndex, false
}

// position translates an input table position to a document table index,
// or UnresolvedIndex if idx is out of range.
func position(pos []int, idx int) (int, bool) {
	if idx < 0 || idx >= len(pos) {
		return UnresolvedIndex, false
	}
	return pos[idx], true
}

func (dec *decoder) unresolved(op int, field string, idx int) {
	dec.doc.unresolved = append(dec.doc.unresolved, Unresolved{Op: op, Field: field, Index: idx})
	dec.doc.logger().Warn("quire: unresolved reference", "op", op, "field", field, "index", idx)
}

// check validates the parts of op that do not depend on the tree.
func (dec *decoder) check(op Op) error {
	if op.ID.Counter == 0 {
		return fmt.Errorf("%w: zero counter", ErrCorruptOp)
	}
	if !op.Action.valid() {
		return fmt.Errorf("%w: action %d", ErrCorruptOp, op.Action)
	}
	if op.Action == ActionSet {
		if _, err := scalar(op.Value); err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptOp, err)
		}
	} else if op.Value != nil {
		return fmt.Errorf("%w: value on action %d", ErrCorruptOp, op.Action)
	}
	return nil
}

// In-memory document.
//
// A Document owns its interning tables and an ordered op log. Ops refer to
// actors and keys only by index. The map tree returned by Snapshot is
// materialised as ops are applied, in log order; conflict resolution
// between replicas happens upstream of this package.
package quire

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
)

// Action is the kind of change an Op makes.
type Action int

// Action constants. The values are part of the file format.
const (
	ActionSet     Action = 1 // Set a scalar value
	ActionMakeMap Action = 2 // Create a nested map
	ActionDelete  Action = 3 // Remove a key
)

func (a Action) valid() bool {
	return a >= ActionSet && a <= ActionDelete
}

// Op is a single change. Key is an index into the document's key table.
type Op struct {
	ID     OpID
	Obj    ObjID
	Key    int
	Action Action
	Value  any // ActionSet only: nil, bool, float64 or string
}

// Unresolved records a table reference from loaded bytes that did not
// resolve under Skip.
type Unresolved struct {
	Op    int    // Position in the op log
	Field string // "actor", "object", "key" or "op"
	Index int    // Raw index read from the input; the op position for "op"
}

// entry is a slot in a materialised map: a scalar or a child object.
type entry struct {
	value any
	obj   ObjID
	isObj bool
}

// Document is a replicated map document. Methods are safe for concurrent use.
type Document struct {
	mu         sync.RWMutex
	cfg        Config
	local      int // Index of cfg.Actor, UnresolvedIndex until the first local op
	actors     *Cache[ActorID]
	keys       *Cache[string]
	ops        []Op
	objects    map[ObjID]map[string]entry
	counter    uint64
	unresolved []Unresolved
}

// New returns an empty document.
func New(cfg Config) *Document {
	return newDocument(cfg.withDefaults())
}

func newDocument(cfg Config) *Document {
	return &Document{
		cfg:     cfg,
		local:   UnresolvedIndex,
		actors:  NewCache[ActorID](),
		keys:    NewCache[string](),
		objects: map[ObjID]map[string]entry{Root: {}},
	}
}

func (d *Document) logger() *slog.Logger {
	return d.cfg.Logger
}

// Actor returns the actor used for local changes.
func (d *Document) Actor() ActorID {
	return d.cfg.Actor
}

// Actors returns the actor table in index order.
func (d *Document) Actors() []ActorID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.actors.Values()
}

// ActorOf returns the actor that made id, or UnknownActor.
func (d *Document) ActorOf(id OpID) ActorID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.actorOf(id)
}

func (d *Document) actorOf(id OpID) ActorID {
	a, ok := d.actors.SafeGet(id.Actor)
	if !ok {
		return UnknownActor
	}
	return a
}

// Len returns the number of ops in the log.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.ops)
}

// Ops returns a copy of the op log.
func (d *Document) Ops() []Op {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.ops)
}

// Unresolved returns the references that could not be resolved when the
// document was loaded. It is always empty for documents loaded under Verify.
func (d *Document) Unresolved() []Unresolved {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.unresolved)
}

// Put sets key in obj to a scalar value.
func (d *Document) Put(obj ObjID, key string, v any) error {
	val, err := scalar(v)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err = d.change(obj, key, ActionSet, val)
	return err
}

// PutObject sets key in obj to a new empty map and returns its id.
func (d *Document) PutObject(obj ObjID, key string) (ObjID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.change(obj, key, ActionMakeMap, nil)
}

// Delete removes key from obj.
func (d *Document) Delete(obj ObjID, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.change(obj, key, ActionDelete, nil)
	return err
}

// change appends a local op. Called with d.mu held.
func (d *Document) change(obj ObjID, key string, action Action, v any) (OpID, error) {
	if _, ok := d.objects[obj]; !ok {
		return OpID{}, fmt.Errorf("%w: %s", ErrUnknownObject, obj)
	}
	if d.local == UnresolvedIndex {
		d.local = d.actors.Intern(d.cfg.Actor)
	}
	op := Op{
		ID:     OpID{Counter: d.counter + 1, Actor: d.local},
		Obj:    obj,
		Key:    d.keys.Intern(key),
		Action: action,
		Value:  v,
	}
	if err := d.apply(op); err != nil {
		return OpID{}, err
	}
	d.counter = op.ID.Counter
	d.ops = append(d.ops, op)
	return op.ID, nil
}

// apply folds op into the materialised tree. op.Key must already be a
// resolved index into d.keys.
func (d *Document) apply(op Op) error {
	if op.ID.IsRoot() {
		return fmt.Errorf("%w: zero counter", ErrCorruptOp)
	}
	m, ok := d.objects[op.Obj]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownObject, op.Obj)
	}
	key := d.keys.Get(op.Key)

	switch op.Action {
	case ActionSet:
		m[key] = entry{value: op.Value}
	case ActionMakeMap:
		if _, dup := d.objects[op.ID]; dup {
			return fmt.Errorf("%w: duplicate object %s", ErrCorruptOp, op.ID)
		}
		m[key] = entry{obj: op.ID, isObj: true}
		d.objects[op.ID] = map[string]entry{}
	case ActionDelete:
		delete(m, key)
	default:
		return fmt.Errorf("%w: action %d", ErrCorruptOp, op.Action)
	}
	return nil
}

// Snapshot returns the current logical value of the document as nested
// map[string]any. An empty document yields an empty map.
func (d *Document) Snapshot() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot(Root)
}

func (d *Document) snapshot(obj ObjID) map[string]any {
	m := d.objects[obj]
	out := make(map[string]any, len(m))
	for k, e := range m {
		if e.isObj {
			out[k] = d.snapshot(e.obj)
			continue
		}
		out[k] = e.value
	}
	return out
}

// scalar normalises v to one of the value types stored in an op.
func scalar(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, string:
		return x, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, x)
		}
		return x, nil
	case float32:
		return scalar(float64(x))
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

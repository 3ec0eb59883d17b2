// Per-key change history.
//
// The op log keeps every change, including values that were later
// overwritten or deleted. History filters it down to a single key of a
// single object. Ops whose key or object failed to resolve at load are
// never matched.
package quire

// Version is one change to a key.
type Version struct {
	ID     OpID
	Actor  ActorID // UnknownActor if the op's actor did not resolve
	Action Action
	Value  any // ActionSet: the scalar; ActionMakeMap: the new ObjID; ActionDelete: nil
}

// History returns every change to key in obj in log order, oldest first.
func (d *Document) History(obj ObjID, key string) []Version {
	d.mu.RLock()
	defer d.mu.RUnlock()

	k, ok := d.keys.Lookup(key)
	if !ok {
		return nil
	}

	var out []Version
	for _, op := range d.ops {
		if op.Key != k || op.Obj != obj {
			continue
		}
		v := Version{ID: op.ID, Actor: d.actorOf(op.ID), Action: op.Action}
		switch op.Action {
		case ActionSet:
			v.Value = op.Value
		case ActionMakeMap:
			v.Value = op.ID
		}
		out = append(out, v)
	}
	return out
}

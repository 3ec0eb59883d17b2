// Value retrieval.
package quire

import "fmt"

// Get returns the current value of key in obj. A nested map is returned as
// its ObjID, which can be passed back to Get to descend.
func (d *Document) Get(obj ObjID, key string) (any, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	m, ok := d.objects[obj]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownObject, obj)
	}
	e, ok := m[key]
	if !ok {
		return nil, ErrNotFound
	}
	if e.isObj {
		return e.obj, nil
	}
	return e.value, nil
}

// Exists reports whether key is currently set in obj.
func (d *Document) Exists(obj ObjID, key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.objects[obj][key]
	return ok
}

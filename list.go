// Key enumeration.
package quire

import (
	"iter"
	"maps"
	"slices"
)

// Keys yields the keys currently set in obj, sorted. The key set is
// captured when iteration starts, so the loop body may modify the
// document. An unknown obj yields nothing.
func (d *Document) Keys(obj ObjID) iter.Seq[string] {
	return func(yield func(string) bool) {
		d.mu.RLock()
		keys := slices.Sorted(maps.Keys(d.objects[obj]))
		d.mu.RUnlock()

		for _, k := range keys {
			if !yield(k) {
				return
			}
		}
	}
}

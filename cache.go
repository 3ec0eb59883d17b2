// Interning tables.
//
// A Cache assigns each distinct value a dense index in first-seen order.
// Indices are written into the persisted change log, so the assignment rules
// are part of the file format: an index never changes once handed out, and
// Canonical produces the insertion-independent order used when saving.
//
// Get and SafeGet are separate. Get is for tables this process
// built itself (mutation paths, Save) and panics on a bad index like a slice
// would. Anything dereferenced from loaded bytes goes through SafeGet.
package quire

import (
	"cmp"
	"iter"
	"slices"
)

// Cache is a bidirectional value <-> index table. The zero value is not
// usable; call NewCache or CacheOf. A Cache is not safe for concurrent
// mutation.
type Cache[T cmp.Ordered] struct {
	values []T
	index  map[T]int
}

// NewCache returns an empty cache.
func NewCache[T cmp.Ordered]() *Cache[T] {
	return &Cache[T]{index: make(map[T]int)}
}

// CacheOf builds a cache from values in order. A value that repeats reuses
// the index of its first occurrence.
func CacheOf[T cmp.Ordered](values ...T) *Cache[T] {
	c := &Cache[T]{
		values: make([]T, 0, len(values)),
		index:  make(map[T]int, len(values)),
	}
	for _, v := range values {
		c.Intern(v)
	}
	return c
}

// Intern returns the index of v, appending it if it has not been seen.
func (c *Cache[T]) Intern(v T) int {
	if n, ok := c.index[v]; ok {
		return n
	}
	n := len(c.values)
	c.values = append(c.values, v)
	c.index[v] = n
	return n
}

// Lookup returns the index of v without modifying the cache.
func (c *Cache[T]) Lookup(v T) (int, bool) {
	n, ok := c.index[v]
	return n, ok
}

// Get returns the value at i. It panics if i is out of range, so callers
// must only use it on tables they built; see SafeGet.
func (c *Cache[T]) Get(i int) T {
	return c.values[i]
}

// SafeGet returns the value at i, or false if i is out of range.
func (c *Cache[T]) SafeGet(i int) (T, bool) {
	if i < 0 || i >= len(c.values) {
		var zero T
		return zero, false
	}
	return c.values[i], true
}

// Len returns the number of interned values.
func (c *Cache[T]) Len() int {
	return len(c.values)
}

// Values returns a copy of the values in index order.
func (c *Cache[T]) Values() []T {
	return slices.Clone(c.values)
}

// All iterates over index, value pairs in index order.
func (c *Cache[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range c.values {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Canonical returns a new cache holding the same values in ascending order.
// The receiver is not modified.
func (c *Cache[T]) Canonical() *Cache[T] {
	sorted := slices.Clone(c.values)
	slices.Sort(sorted)
	out := &Cache[T]{values: sorted, index: make(map[T]int, len(sorted))}
	for i, v := range sorted {
		out.index[v] = i
	}
	return out
}

// Equal reports whether both caches hold the same values in the same order.
func (c *Cache[T]) Equal(o *Cache[T]) bool {
	return slices.Equal(c.values, o.values)
}

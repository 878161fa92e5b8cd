// Package trie provides a generic trie keyed by ordered sequences. A key is a
// slice of segments (for example the pitches of a chord, top voice first) and
// lookups match the whole sequence element for element:
//
//	[72 67 64 48] and [72 67 64 48] match
//	[72 67 64 48] and [72 64 67 48] do not
//
// Walk visits stored values in ascending key order, so dumps and iteration
// are deterministic.
package trie

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Trie stores values of type V at sequence keys of K.
// The zero value is an empty trie ready to use.
type Trie[K cmp.Ordered, V any] struct {
	children map[K]*Trie[K, V]
	set      bool // whether this node holds a value
	value    V
}

// New creates a new empty Trie.
func New[K cmp.Ordered, V any]() *Trie[K, V] {
	return &Trie[K, V]{}
}

// Set stores a value at key using setFunc, which receives a pointer to the
// slot and whether a value was already stored there. If setFunc returns an
// error the slot is left as it was before the call.
func (t *Trie[K, V]) Set(key []K, setFunc func(ptr *V, existed bool) error) error {
	node := t
	for _, seg := range key {
		if node.children == nil {
			node.children = make(map[K]*Trie[K, V])
		}
		ch, ok := node.children[seg]
		if !ok {
			ch = &Trie[K, V]{}
			node.children[seg] = ch
		}
		node = ch
	}
	v := node.value
	if err := setFunc(&v, node.set); err != nil {
		return err
	}
	node.value = v
	node.set = true
	return nil
}

// SetValue stores value at key, replacing any previous value.
func (t *Trie[K, V]) SetValue(key []K, value V) {
	_ = t.Set(key, func(ptr *V, _ bool) error {
		*ptr = value
		return nil
	})
}

// Get returns a pointer to the value stored at exactly key.
func (t *Trie[K, V]) Get(key []K) (*V, bool) {
	node := t
	for _, seg := range key {
		ch, ok := node.children[seg]
		if !ok {
			return nil, false
		}
		node = ch
	}
	if !node.set {
		return nil, false
	}
	return &node.value, true
}

// GetValue returns the value stored at exactly key, or the zero value and
// false when nothing is stored there.
func (t *Trie[K, V]) GetValue(key []K) (V, bool) {
	ptr, ok := t.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	return *ptr, true
}

// Walk calls f for every stored value in ascending key order. Shorter keys
// come before their extensions. The key slice passed to f must not be
// retained.
func (t *Trie[K, V]) Walk(f func(key []K, value V)) {
	t.walk(nil, f)
}

func (t *Trie[K, V]) walk(key []K, f func([]K, V)) {
	if t.set {
		f(key, t.value)
	}
	segs := make([]K, 0, len(t.children))
	for seg := range t.children {
		segs = append(segs, seg)
	}
	slices.Sort(segs)
	for _, seg := range segs {
		t.children[seg].walk(append(key, seg), f)
	}
}

// Len returns the number of stored values.
func (t *Trie[K, V]) Len() int {
	count := 0
	t.Walk(func([]K, V) { count++ })
	return count
}

// String renders one "key: value" line per stored value, in Walk order.
func (t *Trie[K, V]) String() string {
	var lines []string
	t.Walk(func(key []K, value V) {
		segs := make([]string, len(key))
		for i, k := range key {
			segs[i] = fmt.Sprint(k)
		}
		lines = append(lines, fmt.Sprintf("/%s: %v", strings.Join(segs, "/"), value))
	})
	return strings.Join(lines, "\n")
}

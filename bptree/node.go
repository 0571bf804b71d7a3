package bptree

import "sort"

const searchThreshold = 32

// node is either a leaf or an internal node.
//
// Leaf:     keys[i] maps to values[i]; prev/next link leaves in key order.
// Internal: len(children) == len(keys)+1. children[i] holds keys below
// keys[i]; children[i+1] holds keys at or above keys[i]. Each separator
// equals the smallest key of the subtree to its right.
type node[K, V any] struct {
	leaf     bool
	keys     []K
	values   []V
	children []*node[K, V]
	prev     *node[K, V]
	next     *node[K, V]
}

func newLeaf[K, V any]() *node[K, V] {
	return &node[K, V]{leaf: true}
}

// childIndex returns the index of the child pointer to follow for key.
func childIndex[K, V any](n *node[K, V], key K, compare func(a, b K) int) int {
	if len(n.keys) < searchThreshold {
		i := 0
		for i < len(n.keys) && compare(key, n.keys[i]) >= 0 {
			i++
		}
		return i
	}
	return sort.Search(len(n.keys), func(i int) bool {
		return compare(key, n.keys[i]) < 0
	})
}

// keyIndex returns the position of key in a leaf, or the position it would be
// inserted at, and whether it is present.
func keyIndex[K, V any](n *node[K, V], key K, compare func(a, b K) int) (int, bool) {
	var i int
	if len(n.keys) < searchThreshold {
		for i < len(n.keys) && compare(key, n.keys[i]) > 0 {
			i++
		}
	} else {
		i = sort.Search(len(n.keys), func(i int) bool {
			return compare(key, n.keys[i]) <= 0
		})
	}
	return i, i < len(n.keys) && compare(key, n.keys[i]) == 0
}

// Package bptree implements an in-memory B+ tree ordered by a caller supplied
// comparer.
//
// Values live only in leaves. Leaves are linked in key order so range scans
// walk the leaf chain instead of the tree. A tree is not safe for concurrent
// use; callers serialize mutations.
package bptree

import (
	"cmp"
	"slices"
)

// Tree is a B+ tree of order m: every node has at most m children and at
// most m-1 keys.
type Tree[K, V any] struct {
	order   int
	compare func(a, b K) int
	root    *node[K, V]
	length  int
	path    Path[K, V] // scratch for Insert and Delete
}

// New returns an empty tree of the given order.
func New[K, V any](order int, compare func(a, b K) int) (*Tree[K, V], error) {
	if order < 3 {
		return nil, ErrInvalidOrder
	}
	if compare == nil {
		return nil, ErrNilComparer
	}
	return &Tree[K, V]{
		order:   order,
		compare: compare,
		root:    newLeaf[K, V](),
	}, nil
}

// NewOrdered returns an empty tree over a naturally ordered key type.
func NewOrdered[K cmp.Ordered, V any](order int) (*Tree[K, V], error) {
	return New[K, V](order, cmp.Compare[K])
}

func (t *Tree[K, V]) Order() int { return t.order }

// Len returns the number of keys in the tree.
func (t *Tree[K, V]) Len() int { return t.length }

// Height returns the number of levels, 1 for a tree that is a single leaf.
func (t *Tree[K, V]) Height() int {
	h := 1
	for n := t.root; !n.leaf; n = n.children[0] {
		h++
	}
	return h
}

func (t *Tree[K, V]) maxKeys() int { return t.order - 1 }

// minKeys is the fewest keys a non-root node may hold. A leaf split leaves
// order/2 keys on the left; an internal split leaves ceil(order/2)-1 keys on
// the right once the median moves up.
func (t *Tree[K, V]) minKeys(n *node[K, V]) int {
	if n.leaf {
		return t.order / 2
	}
	return (t.order+1)/2 - 1
}

// Seek returns the value stored for key.
func (t *Tree[K, V]) Seek(key K) (V, bool) {
	n := t.root
	for !n.leaf {
		n = n.children[childIndex(n, key, t.compare)]
	}
	if i, ok := keyIndex(n, key, t.compare); ok {
		return n.values[i], true
	}
	var zero V
	return zero, false
}

// Insert adds key with value. It returns false, leaving the tree unchanged,
// when key is already present.
func (t *Tree[K, V]) Insert(key K, value V) bool {
	return t.InsertWith(&t.path, key, value)
}

// InsertWith is Insert using p as scratch space.
func (t *Tree[K, V]) InsertWith(p *Path[K, V], key K, value V) bool {
	p.reset()
	n := t.root
	for !n.leaf {
		i := childIndex(n, key, t.compare)
		p.push(n, i)
		n = n.children[i]
	}

	i, found := keyIndex(n, key, t.compare)
	if found {
		return false
	}
	n.keys = slices.Insert(n.keys, i, key)
	n.values = slices.Insert(n.values, i, value)
	t.length++

	if len(n.keys) <= t.maxKeys() {
		return true
	}

	sep, right := t.splitLeaf(n)
	for level := len(p.frames) - 1; level >= 0; level-- {
		f := p.frames[level]
		parent := f.node
		parent.keys = slices.Insert(parent.keys, f.index, sep)
		parent.children = slices.Insert(parent.children, f.index+1, right)
		if len(parent.keys) <= t.maxKeys() {
			return true
		}
		sep, right = t.splitInternal(parent)
	}

	t.root = &node[K, V]{
		keys:     []K{sep},
		children: []*node[K, V]{t.root, right},
	}
	return true
}

// splitLeaf moves the upper count-count/2 entries of n to a new right leaf
// and returns the separator for the parent. An odd count leaves the right
// leaf one entry larger.
func (t *Tree[K, V]) splitLeaf(n *node[K, V]) (K, *node[K, V]) {
	mid := len(n.keys) / 2

	right := newLeaf[K, V]()
	right.keys = slices.Clone(n.keys[mid:])
	right.values = slices.Clone(n.values[mid:])
	clear(n.keys[mid:])
	clear(n.values[mid:])
	n.keys = n.keys[:mid]
	n.values = n.values[:mid]

	right.prev = n
	right.next = n.next
	if n.next != nil {
		n.next.prev = right
	}
	n.next = right

	return right.keys[0], right
}

// splitInternal moves the keys and children above the median to a new right
// node. The median itself is returned as the separator and kept in neither
// half.
func (t *Tree[K, V]) splitInternal(n *node[K, V]) (K, *node[K, V]) {
	mid := len(n.keys) / 2
	sep := n.keys[mid]

	right := &node[K, V]{
		keys:     slices.Clone(n.keys[mid+1:]),
		children: slices.Clone(n.children[mid+1:]),
	}
	clear(n.keys[mid:])
	clear(n.children[mid+1:])
	n.keys = n.keys[:mid]
	n.children = n.children[:mid+1]

	return sep, right
}

// Delete removes key. It returns false when key is not present.
func (t *Tree[K, V]) Delete(key K) bool {
	return t.DeleteWith(&t.path, key)
}

// DeleteWith is Delete using p as scratch space.
func (t *Tree[K, V]) DeleteWith(p *Path[K, V], key K) bool {
	p.reset()
	n := t.root
	for !n.leaf {
		i := childIndex(n, key, t.compare)
		p.push(n, i)
		n = n.children[i]
	}

	i, found := keyIndex(n, key, t.compare)
	if !found {
		return false
	}

	// A separator equal to key bounds the subtree key was the smallest key
	// of. Its replacement is the next key in order.
	if i == 0 {
		switch {
		case len(n.keys) > 1:
			t.replaceSeparator(p, key, n.keys[1])
		case n.next != nil:
			t.replaceSeparator(p, key, n.next.keys[0])
		}
	}

	n.keys = slices.Delete(n.keys, i, i+1)
	n.values = slices.Delete(n.values, i, i+1)
	t.length--

	t.rebalance(p, n)
	return true
}

func (t *Tree[K, V]) replaceSeparator(p *Path[K, V], old, key K) {
	for _, f := range p.frames {
		if f.index > 0 && t.compare(f.node.keys[f.index-1], old) == 0 {
			f.node.keys[f.index-1] = key
			return
		}
	}
}

// rebalance fixes underflow from n up the recorded path: borrow from the
// right sibling, then from the left sibling, otherwise merge.
func (t *Tree[K, V]) rebalance(p *Path[K, V], n *node[K, V]) {
	for level := len(p.frames) - 1; level >= 0; level-- {
		if len(n.keys) >= t.minKeys(n) {
			return
		}

		f := p.frames[level]
		parent, idx := f.node, f.index
		var left, right *node[K, V]
		if idx > 0 {
			left = parent.children[idx-1]
		}
		if idx < len(parent.children)-1 {
			right = parent.children[idx+1]
		}

		switch {
		case right != nil && len(right.keys) > t.minKeys(right):
			t.borrowRight(parent, idx, n, right)
		case left != nil && len(left.keys) > t.minKeys(left):
			t.borrowLeft(parent, idx, left, n)
		case right != nil:
			t.merge(parent, idx, n, right)
		default:
			t.merge(parent, idx-1, left, n)
		}
		n = parent
	}

	if !n.leaf && len(n.keys) == 0 {
		t.root = n.children[0]
	}
}

// borrowRight moves the first entry of right to the end of n. idx is n's
// position in parent.
func (t *Tree[K, V]) borrowRight(parent *node[K, V], idx int, n, right *node[K, V]) {
	if n.leaf {
		n.keys = append(n.keys, right.keys[0])
		n.values = append(n.values, right.values[0])
		right.keys = slices.Delete(right.keys, 0, 1)
		right.values = slices.Delete(right.values, 0, 1)
		parent.keys[idx] = right.keys[0]
		return
	}
	n.keys = append(n.keys, parent.keys[idx])
	n.children = append(n.children, right.children[0])
	parent.keys[idx] = right.keys[0]
	right.keys = slices.Delete(right.keys, 0, 1)
	right.children = slices.Delete(right.children, 0, 1)
}

// borrowLeft moves the last entry of left to the front of n. idx is n's
// position in parent.
func (t *Tree[K, V]) borrowLeft(parent *node[K, V], idx int, left, n *node[K, V]) {
	last := len(left.keys) - 1
	if n.leaf {
		n.keys = slices.Insert(n.keys, 0, left.keys[last])
		n.values = slices.Insert(n.values, 0, left.values[last])
		left.keys = slices.Delete(left.keys, last, last+1)
		left.values = slices.Delete(left.values, last, last+1)
		parent.keys[idx-1] = n.keys[0]
		return
	}
	n.keys = slices.Insert(n.keys, 0, parent.keys[idx-1])
	n.children = slices.Insert(n.children, 0, left.children[last+1])
	parent.keys[idx-1] = left.keys[last]
	left.keys = slices.Delete(left.keys, last, last+1)
	left.children = slices.Delete(left.children, last+1, last+2)
}

// merge folds right into left and drops the separator at parent.keys[idx],
// where left is parent.children[idx].
func (t *Tree[K, V]) merge(parent *node[K, V], idx int, left, right *node[K, V]) {
	if left.leaf {
		left.keys = append(left.keys, right.keys...)
		left.values = append(left.values, right.values...)
		left.next = right.next
		if right.next != nil {
			right.next.prev = left
		}
	} else {
		left.keys = append(left.keys, parent.keys[idx])
		left.keys = append(left.keys, right.keys...)
		left.children = append(left.children, right.children...)
	}
	parent.keys = slices.Delete(parent.keys, idx, idx+1)
	parent.children = slices.Delete(parent.children, idx+1, idx+2)
}

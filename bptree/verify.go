package bptree

import (
	"fmt"
	"strings"
)

// Verify walks the whole tree and reports the first broken invariant: equal
// leaf depth, node occupancy, strictly increasing keys, separators equal to
// the smallest key on their right, and a leaf chain that visits every key
// once in order.
func (t *Tree[K, V]) Verify() error {
	leafDepth := -1
	var leaves []*node[K, V]

	var walk func(n *node[K, V], depth int, lo, hi *K) error
	walk = func(n *node[K, V], depth int, lo, hi *K) error {
		if n != t.root {
			if len(n.keys) < t.minKeys(n) || len(n.keys) > t.maxKeys() {
				return fmt.Errorf("%w: node at depth %d has %d keys", ErrInvariant, depth, len(n.keys))
			}
		} else if len(n.keys) > t.maxKeys() {
			return fmt.Errorf("%w: root has %d keys", ErrInvariant, len(n.keys))
		}
		for i := 1; i < len(n.keys); i++ {
			if t.compare(n.keys[i-1], n.keys[i]) >= 0 {
				return fmt.Errorf("%w: keys out of order at depth %d", ErrInvariant, depth)
			}
		}
		for _, k := range n.keys {
			if lo != nil && t.compare(k, *lo) < 0 || hi != nil && t.compare(k, *hi) >= 0 {
				return fmt.Errorf("%w: key %v outside its subtree range", ErrInvariant, k)
			}
		}

		if n.leaf {
			if len(n.values) != len(n.keys) {
				return fmt.Errorf("%w: leaf has %d keys and %d values", ErrInvariant, len(n.keys), len(n.values))
			}
			if leafDepth == -1 {
				leafDepth = depth
			} else if depth != leafDepth {
				return fmt.Errorf("%w: leaves at depth %d and %d", ErrInvariant, leafDepth, depth)
			}
			if lo != nil && (len(n.keys) == 0 || t.compare(n.keys[0], *lo) != 0) {
				return fmt.Errorf("%w: separator %v is not the smallest key of its subtree", ErrInvariant, *lo)
			}
			leaves = append(leaves, n)
			return nil
		}

		if len(n.children) != len(n.keys)+1 {
			return fmt.Errorf("%w: node has %d keys and %d children", ErrInvariant, len(n.keys), len(n.children))
		}
		for i, c := range n.children {
			clo, chi := lo, hi
			if i > 0 {
				clo = &n.keys[i-1]
			}
			if i < len(n.keys) {
				chi = &n.keys[i]
			}
			if err := walk(c, depth+1, clo, chi); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(t.root, 0, nil, nil); err != nil {
		return err
	}

	count := 0
	var prev *node[K, V]
	for i, n := range leaves {
		if n.prev != prev {
			return fmt.Errorf("%w: leaf %d has a stale prev link", ErrInvariant, i)
		}
		if prev != nil && prev.next != n {
			return fmt.Errorf("%w: leaf %d is not linked from its left neighbour", ErrInvariant, i)
		}
		if prev != nil && len(prev.keys) > 0 && len(n.keys) > 0 &&
			t.compare(prev.keys[len(prev.keys)-1], n.keys[0]) >= 0 {
			return fmt.Errorf("%w: leaf chain out of order at leaf %d", ErrInvariant, i)
		}
		count += len(n.keys)
		prev = n
	}
	if prev != nil && prev.next != nil {
		return fmt.Errorf("%w: last leaf has a next link", ErrInvariant)
	}
	if count != t.length {
		return fmt.Errorf("%w: leaf chain holds %d keys, tree length is %d", ErrInvariant, count, t.length)
	}
	return nil
}

// String renders the tree one node per line, indented by level.
//
//	[7]
//	  [3 5]
//	    (1 2)
//	    ...
//
// Internal nodes print in brackets, leaves in parentheses.
func (t *Tree[K, V]) String() string {
	var b strings.Builder
	var walk func(n *node[K, V], depth int)
	walk = func(n *node[K, V], depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		open, end := "[", "]"
		if n.leaf {
			open, end = "(", ")"
		}
		b.WriteString(open)
		for i, k := range n.keys {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprint(&b, k)
		}
		b.WriteString(end)
		b.WriteByte('\n')
		for _, c := range n.children {
			walk(c, depth+1)
		}
	}
	walk(t.root, 0)
	return b.String()
}

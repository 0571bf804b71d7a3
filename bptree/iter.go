package bptree

func (t *Tree[K, V]) firstLeaf() *node[K, V] {
	n := t.root
	for !n.leaf {
		n = n.children[0]
	}
	return n
}

func (t *Tree[K, V]) lastLeaf() *node[K, V] {
	n := t.root
	for !n.leaf {
		n = n.children[len(n.children)-1]
	}
	return n
}

// Min returns the smallest key and its value.
func (t *Tree[K, V]) Min() (K, V, bool) {
	n := t.firstLeaf()
	if len(n.keys) == 0 {
		var k K
		var v V
		return k, v, false
	}
	return n.keys[0], n.values[0], true
}

// Max returns the largest key and its value.
func (t *Tree[K, V]) Max() (K, V, bool) {
	n := t.lastLeaf()
	if len(n.keys) == 0 {
		var k K
		var v V
		return k, v, false
	}
	last := len(n.keys) - 1
	return n.keys[last], n.values[last], true
}

// Ascend calls fn for every entry in ascending key order until fn returns
// false.
func (t *Tree[K, V]) Ascend(fn func(key K, value V) bool) {
	for n := t.firstLeaf(); n != nil; n = n.next {
		for i := range n.keys {
			if !fn(n.keys[i], n.values[i]) {
				return
			}
		}
	}
}

// Descend calls fn for every entry in descending key order until fn returns
// false.
func (t *Tree[K, V]) Descend(fn func(key K, value V) bool) {
	for n := t.lastLeaf(); n != nil; n = n.prev {
		for i := len(n.keys) - 1; i >= 0; i-- {
			if !fn(n.keys[i], n.values[i]) {
				return
			}
		}
	}
}

// AscendRange calls fn for every entry with from <= key < to in ascending
// order until fn returns false.
func (t *Tree[K, V]) AscendRange(from, to K, fn func(key K, value V) bool) {
	n := t.root
	for !n.leaf {
		n = n.children[childIndex(n, from, t.compare)]
	}
	i, _ := keyIndex(n, from, t.compare)
	for ; n != nil; n, i = n.next, 0 {
		for ; i < len(n.keys); i++ {
			if t.compare(n.keys[i], to) >= 0 {
				return
			}
			if !fn(n.keys[i], n.values[i]) {
				return
			}
		}
	}
}

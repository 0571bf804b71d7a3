package bptree

// frame records one internal node on a root to leaf descent and the index of
// the child that was followed.
type frame[K, V any] struct {
	node  *node[K, V]
	index int
}

// Path is scratch space for Insert and Delete. A Path can be reused across
// calls to avoid allocating on every mutation; it must not be shared by
// concurrent calls. The zero value is ready to use.
type Path[K, V any] struct {
	frames []frame[K, V]
}

func (p *Path[K, V]) reset() {
	clear(p.frames)
	p.frames = p.frames[:0]
}

func (p *Path[K, V]) push(n *node[K, V], i int) {
	p.frames = append(p.frames, frame[K, V]{node: n, index: i})
}

// Depth returns the number of internal nodes recorded by the last operation.
func (p *Path[K, V]) Depth() int {
	return len(p.frames)
}

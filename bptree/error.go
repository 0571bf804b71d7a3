package bptree

import "errors"

var (
	ErrInvalidOrder = errors.New("order must be at least 3")
	ErrNilComparer  = errors.New("comparer is nil")

	// ErrInvariant is returned by Verify when the tree structure is broken.
	ErrInvariant = errors.New("b+tree invariant violated")
)

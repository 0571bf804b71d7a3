// Package slotted stores variable-length records on fixed-size pages.
//
// Records are appended to the record area that grows up from the page header,
// and addressed through a slot array that grows down from the end of the
// page. When records carry a clustered key the slot array is kept sorted by
// that key, so slot order is the logical record order regardless of where each
// record physically sits. Deleted space is reused through gap filling and,
// when no gap fits, by compacting the record area.
package slotted

import (
	"slices"

	"slotdb/internal/base"
	"slotdb/internal/codec"
)

// KeyResolver extracts the clustered key from a record. The record includes
// its 2 byte length prefix.
type KeyResolver[K any] func(record []byte) K

// Accessor runs slotted page operations over pages it does not own. The zero
// value handles unordered (heap) inserts only; clustered operations need both
// Resolve and Compare.
type Accessor[K any] struct {
	Resolve KeyResolver[K]
	Compare func(a, b K) int
}

// NewAccessor returns an Accessor for clustered keys.
func NewAccessor[K any](resolve KeyResolver[K], compare func(a, b K) int) Accessor[K] {
	return Accessor[K]{Resolve: resolve, Compare: compare}
}

// Format writes a fresh header for an empty page of type typ.
func Format(p *base.Page, id base.PagePointer, typ base.PageType) {
	p.Init(id, typ)
}

// extent is one record's physical position and the slot addressing it.
type extent struct {
	off  int
	n    int
	slot int
}

func (a Accessor[K]) checkKeyed() error {
	if a.Resolve == nil {
		return base.ErrNilResolver
	}
	if a.Compare == nil {
		return base.ErrNilComparer
	}
	return nil
}

// InsertRawBytes stores record on p. A nil key appends a slot at the end of
// the slot array; otherwise the slot is placed in clustered key order and an
// existing equal key fails with base.ErrDuplicateKey. The page is not
// modified when an error is returned.
func (a Accessor[K]) InsertRawBytes(p *base.Page, record []byte, key *K) error {
	n := len(record)
	if n > base.MaxRecordSize {
		return base.ErrRecordTooLarge
	}
	if n < 2 || int(codec.ReadInt16(record, 0)) != n {
		return base.ErrRecordLengthMismatch
	}
	if key != nil {
		if err := a.checkKeyed(); err != nil {
			return err
		}
	}

	count := p.SlotCount()
	free := p.FreeCount()
	if count == 0 {
		// An empty page may still carry an all-zero header.
		free = base.EmptyFreeCount
	}
	if n > base.MaxPageStorageSize || n > free-base.SlotSize {
		return base.ErrPageFull
	}

	if count == 0 {
		codec.CopyBytes(p.Data[:], base.PageHeaderSize, record)
		p.SetSlot(0, base.PageHeaderSize)
		p.SetSlotCount(1)
		p.SetFreeCount(base.EmptyFreeCount - n - base.SlotSize)
		p.SetFreeDataStart(base.PageHeaderSize + n)
		return nil
	}

	idx := count
	if key != nil {
		i, found, err := a.search(p, *key)
		if err != nil {
			return err
		}
		if found {
			return base.ErrDuplicateKey
		}
		idx = i
	}

	off, tail, err := a.place(p, n)
	if err != nil {
		return err
	}
	codec.CopyBytes(p.Data[:], off, record)

	for i := count; i > idx; i-- {
		p.SetSlot(i, p.Slot(i-1))
	}
	p.SetSlot(idx, off)

	p.SetSlotCount(count + 1)
	p.SetFreeCount(free - n - base.SlotSize)
	if tail {
		p.SetFreeDataStart(off + n)
	}
	return nil
}

// place finds room for an n byte record plus one new slot. It reports
// whether the record goes at the tail of the record area.
func (a Accessor[K]) place(p *base.Page, n int) (int, bool, error) {
	fds := p.FreeDataStart()
	if p.FreeDataSize() >= n+base.SlotSize {
		return fds, true, nil
	}

	layout, err := a.layout(p)
	if err != nil {
		return 0, false, err
	}

	// A gap can only be used when the slot array still has room to grow.
	if p.FreeDataSize() >= base.SlotSize {
		end := base.PageHeaderSize
		for _, e := range layout {
			if end+n <= e.off {
				return end, false, nil
			}
			end = e.off + e.n
		}
	}

	pos := compact(p, layout)
	return pos, true, nil
}

// layout returns the records of p sorted by physical offset.
func (a Accessor[K]) layout(p *base.Page) ([]extent, error) {
	count := p.SlotCount()
	fds := p.FreeDataStart()
	layout := make([]extent, 0, count)
	for i := 0; i < count; i++ {
		off := p.Slot(i)
		if off < base.PageHeaderSize {
			return nil, base.ErrCorruptRecord
		}
		n := p.RecordLength(off)
		if n <= 0 || off+n > fds {
			return nil, base.ErrCorruptRecord
		}
		layout = append(layout, extent{off: off, n: n, slot: i})
	}
	slices.SortFunc(layout, func(x, y extent) int { return x.off - y.off })
	return layout, nil
}

// compact slides every record down to close the holes left by deletes and
// returns the new end of the record area.
func compact(p *base.Page, layout []extent) int {
	fds := p.FreeDataStart()
	pos := base.PageHeaderSize
	for _, e := range layout {
		if e.off != pos {
			codec.MoveBytes(p.Data[:], pos, e.off, e.n)
			p.SetSlot(e.slot, pos)
		}
		pos += e.n
	}
	if fds > pos {
		codec.ClearBytes(p.Data[:], pos, fds-pos)
	}
	p.SetFreeDataStart(pos)
	return pos
}

// DeleteRawBytes removes the record whose clustered key equals key. Unordered
// deletes are not supported.
func (a Accessor[K]) DeleteRawBytes(p *base.Page, key *K) error {
	count := p.SlotCount()
	if count == 0 {
		return nil
	}
	if key == nil {
		return base.ErrNotImplemented
	}
	if err := a.checkKeyed(); err != nil {
		return err
	}

	idx, found, err := a.search(p, *key)
	if err != nil {
		return err
	}
	if !found {
		return base.ErrKeyNotFound
	}

	off := p.Slot(idx)
	n := p.RecordLength(off)
	codec.ClearBytes(p.Data[:], off, n)

	for i := idx; i < count-1; i++ {
		p.SetSlot(i, p.Slot(i+1))
	}
	codec.ClearBytes(p.Data[:], base.SlotOffset(count-1), base.SlotSize)

	p.SetSlotCount(count - 1)
	p.SetFreeCount(p.FreeCount() + n + base.SlotSize)

	if off+n == p.FreeDataStart() {
		end := base.PageHeaderSize
		for i := 0; i < count-1; i++ {
			o := p.Slot(i)
			if e := o + p.RecordLength(o); e > end {
				end = e
			}
		}
		p.SetFreeDataStart(end)
	}
	return nil
}

// Get returns the record with the given clustered key. The returned slice
// aliases the page.
func (a Accessor[K]) Get(p *base.Page, key K) ([]byte, bool, error) {
	if err := a.checkKeyed(); err != nil {
		return nil, false, err
	}
	if p.SlotCount() == 0 {
		return nil, false, nil
	}
	idx, found, err := a.search(p, key)
	if err != nil || !found {
		return nil, false, err
	}
	rec, err := a.recordAt(p, idx)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// Records calls fn for each record in slot order until fn returns false.
func (a Accessor[K]) Records(p *base.Page, fn func(slot int, record []byte) bool) error {
	for i := 0; i < p.SlotCount(); i++ {
		rec, err := a.recordAt(p, i)
		if err != nil {
			return err
		}
		if !fn(i, rec) {
			return nil
		}
	}
	return nil
}

// recordAt returns the record addressed by slot i after checking that it
// lies inside the used record area.
func (a Accessor[K]) recordAt(p *base.Page, i int) ([]byte, error) {
	off := p.Slot(i)
	if off < base.PageHeaderSize || off+2 > base.PageSize {
		return nil, base.ErrCorruptRecord
	}
	n := p.RecordLength(off)
	if n <= 0 || off+n > p.FreeDataStart() {
		return nil, base.ErrCorruptRecord
	}
	return p.Data[off : off+n], nil
}

// search bisects the slot array by clustered key. It returns the slot holding
// key when found, otherwise the slot index key would be inserted at.
func (a Accessor[K]) search(p *base.Page, key K) (int, bool, error) {
	low, high := 0, p.SlotCount()-1
	for low <= high {
		mid := int(uint(low+high) >> 1)
		rec, err := a.recordAt(p, mid)
		if err != nil {
			return 0, false, err
		}
		c := a.Compare(key, a.Resolve(rec))
		switch {
		case c == 0:
			return mid, true, nil
		case low == high:
			if c < 0 {
				return mid, false, nil
			}
			return mid + 1, false, nil
		case c < 0:
			high = mid - 1
		default:
			low = mid + 1
		}
	}
	return low, false, nil
}

package slotted

import (
	"fmt"
	"slices"

	"slotdb/internal/base"
	"slotdb/internal/codec"
)

// EncodeRecord prefixes payload with the 2 byte record length.
func EncodeRecord(payload []byte) ([]byte, error) {
	n := len(payload) + 2
	if n > base.MaxRecordSize {
		return nil, base.ErrRecordTooLarge
	}
	rec := make([]byte, n)
	codec.WriteInt16(rec, 0, int16(n))
	copy(rec[2:], payload)
	return rec, nil
}

// Payload returns record without its length prefix.
func Payload(record []byte) []byte {
	return record[2:]
}

// Int16KeyResolver reads a little-endian int16 clustered key at offset within
// the record.
func Int16KeyResolver(offset int) KeyResolver[int16] {
	return func(record []byte) int16 {
		return codec.ReadInt16(record, offset)
	}
}

// Int32KeyResolver reads a little-endian int32 clustered key at offset within
// the record.
func Int32KeyResolver(offset int) KeyResolver[int32] {
	return func(record []byte) int32 {
		return codec.ReadInt32(record, offset)
	}
}

// BytesKeyResolver uses n bytes at offset as the clustered key. Pair it with
// bytes.Compare. The key aliases the page.
func BytesKeyResolver(offset, n int) KeyResolver[[]byte] {
	return func(record []byte) []byte {
		return record[offset : offset+n]
	}
}

// Validate checks the structural invariants of p: slot offsets inside the
// record area, records that do not overlap, and free space accounting. When
// a is clustered, slot order must also be strictly increasing by key.
func (a Accessor[K]) Validate(p *base.Page) error {
	count := p.SlotCount()
	fds := p.FreeDataStart()
	if count < 0 || base.PageHeaderSize+count*base.SlotSize > base.PageSize {
		return fmt.Errorf("%w: slot count %d", base.ErrCorruptPage, count)
	}
	if count == 0 {
		return nil
	}
	if fds < base.PageHeaderSize || fds > base.SlotOffset(count-1) {
		return fmt.Errorf("%w: free data start %d overlaps slot array", base.ErrCorruptPage, fds)
	}

	layout, err := a.layout(p)
	if err != nil {
		return err
	}
	used := 0
	end := base.PageHeaderSize
	for _, e := range layout {
		if e.off < end {
			return fmt.Errorf("%w: record at %d overlaps previous record", base.ErrCorruptPage, e.off)
		}
		end = e.off + e.n
		used += e.n
	}
	if want := base.EmptyFreeCount - used - count*base.SlotSize; p.FreeCount() != want {
		return fmt.Errorf("%w: free count %d, want %d", base.ErrCorruptPage, p.FreeCount(), want)
	}

	if a.Resolve == nil || a.Compare == nil {
		return nil
	}
	keys := make([]K, 0, count)
	for i := 0; i < count; i++ {
		rec, err := a.recordAt(p, i)
		if err != nil {
			return err
		}
		keys = append(keys, a.Resolve(rec))
	}
	if !slices.IsSortedFunc(keys, a.Compare) {
		return fmt.Errorf("%w: slots out of key order", base.ErrCorruptPage)
	}
	for i := 1; i < len(keys); i++ {
		if a.Compare(keys[i-1], keys[i]) == 0 {
			return fmt.Errorf("%w: duplicate key in slots %d and %d", base.ErrCorruptPage, i-1, i)
		}
	}
	return nil
}

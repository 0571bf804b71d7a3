package slotted

import "slotdb/internal/base"

// RecordPage is a slotted page that owns its 8 KiB buffer and a bound
// clustered key accessor.
type RecordPage[K any] struct {
	page base.Page
	acc  Accessor[K]
}

// NewRecordPage returns a formatted, empty data page. resolve and compare may
// be nil for heap pages that only see unkeyed inserts.
func NewRecordPage[K any](id base.PagePointer, resolve KeyResolver[K], compare func(a, b K) int) *RecordPage[K] {
	rp := &RecordPage[K]{acc: NewAccessor(resolve, compare)}
	Format(&rp.page, id, base.PageTypeData)
	return rp
}

// LoadRecordPage wraps a copy of an existing page image.
func LoadRecordPage[K any](p *base.Page, resolve KeyResolver[K], compare func(a, b K) int) (*RecordPage[K], error) {
	rp := &RecordPage[K]{page: *p, acc: NewAccessor(resolve, compare)}
	if err := rp.acc.Validate(&rp.page); err != nil {
		return nil, err
	}
	return rp, nil
}

// Insert stores record, ordered by key when key is non-nil.
func (rp *RecordPage[K]) Insert(record []byte, key *K) error {
	return rp.acc.InsertRawBytes(&rp.page, record, key)
}

// Delete removes the record with the given clustered key.
func (rp *RecordPage[K]) Delete(key *K) error {
	return rp.acc.DeleteRawBytes(&rp.page, key)
}

func (rp *RecordPage[K]) Get(key K) ([]byte, bool, error) {
	return rp.acc.Get(&rp.page, key)
}

func (rp *RecordPage[K]) Records(fn func(slot int, record []byte) bool) error {
	return rp.acc.Records(&rp.page, fn)
}

func (rp *RecordPage[K]) Validate() error {
	return rp.acc.Validate(&rp.page)
}

// Len returns the number of records on the page.
func (rp *RecordPage[K]) Len() int {
	return rp.page.SlotCount()
}

// FreeCount returns the bytes available for new records and their slots.
func (rp *RecordPage[K]) FreeCount() int {
	return rp.page.FreeCount()
}

// Page exposes the underlying page image, e.g. to write it to a data file.
func (rp *RecordPage[K]) Page() *base.Page {
	return &rp.page
}

// Reset formats the page again, dropping every record.
func (rp *RecordPage[K]) Reset() {
	Format(&rp.page, rp.page.PageID(), rp.page.Type())
}

package slotted

import (
	"cmp"
	"flag"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotdb/internal/base"
	"slotdb/internal/codec"
)

var _ = flag.Bool("slow", false, "run slow tests")

// record returns an n byte record with key at bytes [2..4).
func record(key int16, n int) []byte {
	r := make([]byte, n)
	codec.WriteInt16(r, 0, int16(n))
	codec.WriteInt16(r, 2, key)
	for i := 4; i < n; i++ {
		r[i] = byte(key)
	}
	return r
}

func int16Accessor() Accessor[int16] {
	return NewAccessor(Int16KeyResolver(2), cmp.Compare[int16])
}

func newPage() *base.Page {
	p := new(base.Page)
	Format(p, base.NewPagePointer(1, 1), base.PageTypeData)
	return p
}

func insert(t *testing.T, acc Accessor[int16], p *base.Page, key int16, n int) {
	t.Helper()
	require.NoError(t, acc.InsertRawBytes(p, record(key, n), &key))
}

func del(t *testing.T, acc Accessor[int16], p *base.Page, key int16) {
	t.Helper()
	require.NoError(t, acc.DeleteRawBytes(p, &key))
}

func slotKeys(t *testing.T, acc Accessor[int16], p *base.Page) []int16 {
	t.Helper()
	var keys []int16
	require.NoError(t, acc.Records(p, func(_ int, rec []byte) bool {
		keys = append(keys, acc.Resolve(rec))
		return true
	}))
	return keys
}

func TestInsertWorkedScenario(t *testing.T) {
	t.Parallel()

	acc := int16Accessor()
	p := newPage()

	insert(t, acc, p, 1, 9)
	assert.Equal(t, 96, p.Slot(0))
	assert.Equal(t, 105, p.FreeDataStart())
	assert.Equal(t, 1, p.SlotCount())
	assert.Equal(t, 8192-96-9-2, p.FreeCount())

	for _, k := range []int16{3, 5, 7, 9, 2, 4, 6, 8, 10} {
		insert(t, acc, p, k, 9)
	}

	assert.Equal(t, 10, p.SlotCount())
	assert.Equal(t, 186, p.FreeDataStart())
	assert.Equal(t, 8096-10*11, p.FreeCount())
	assert.Equal(t, 141, p.Slot(1), "key 2 lands at the tail but sorts into slot 1")

	wantSlots := []int{96, 141, 105, 150, 114, 159, 123, 168, 132, 177}
	for i, off := range wantSlots {
		assert.Equal(t, off, p.Slot(i), "slot %d", i)
	}
	assert.Equal(t, []int16{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, slotKeys(t, acc, p))
	require.NoError(t, acc.Validate(p))
}

func TestDeleteSameOrderKeepsTail(t *testing.T) {
	t.Parallel()

	acc := int16Accessor()
	p := newPage()
	order := []int16{1, 3, 5, 7, 9, 2, 4, 6, 8, 10}
	for _, k := range order {
		insert(t, acc, p, k, 9)
	}

	for i, k := range order {
		del(t, acc, p, k)
		if i < len(order)-1 {
			assert.Equal(t, 186, p.FreeDataStart(), "after deleting %d", k)
		}
		require.NoError(t, acc.Validate(p))
	}

	assert.Equal(t, 0, p.SlotCount())
	assert.Equal(t, 96, p.FreeDataStart())
	assert.Equal(t, base.EmptyFreeCount, p.FreeCount())
	assert.True(t, codec.AreBytesCleared(p.Data[:], base.PageHeaderSize, base.EmptyFreeCount))
}

func TestDeleteReverseOrderShrinksTail(t *testing.T) {
	t.Parallel()

	acc := int16Accessor()
	p := newPage()
	order := []int16{1, 3, 5, 7, 9, 2, 4, 6, 8, 10}
	for _, k := range order {
		insert(t, acc, p, k, 9)
	}

	want := 186
	for i := len(order) - 1; i >= 0; i-- {
		del(t, acc, p, order[i])
		want -= 9
		assert.Equal(t, want, p.FreeDataStart(), "after deleting %d", order[i])
	}
	assert.Equal(t, 96, p.FreeDataStart())
	assert.Equal(t, base.EmptyFreeCount, p.FreeCount())
}

func TestFillPage(t *testing.T) {
	t.Parallel()

	acc := int16Accessor()
	p := newPage()
	for k := int16(0); k < 736; k++ {
		insert(t, acc, p, k, 9)
	}

	assert.Equal(t, 736, p.SlotCount())
	assert.Equal(t, 0, p.FreeCount())
	assert.Equal(t, 6720, p.FreeDataStart())
	require.NoError(t, acc.Validate(p))

	key := int16(1000)
	err := acc.InsertRawBytes(p, record(key, 9), &key)
	assert.ErrorIs(t, err, base.ErrPageFull)

	for k := int16(735); k >= 0; k-- {
		del(t, acc, p, k)
	}
	assert.Equal(t, base.EmptyFreeCount, p.FreeCount())
	assert.Equal(t, 96, p.FreeDataStart())
}

func TestGapReuse(t *testing.T) {
	t.Parallel()

	acc := int16Accessor()
	p := newPage()
	for k := int16(0); k < 736; k++ {
		insert(t, acc, p, k*2, 9)
	}
	victim := int16(10)
	off := p.Slot(5)
	del(t, acc, p, victim)
	assert.Equal(t, 6720, p.FreeDataStart())

	key := int16(11)
	insert(t, acc, p, key, 9)
	assert.Equal(t, off, p.Slot(5), "exact fit reuses the hole")
	assert.Equal(t, 6720, p.FreeDataStart(), "gap fill does not move the tail")
	assert.Equal(t, 0, p.FreeCount())
	require.NoError(t, acc.Validate(p))
}

func TestCompaction(t *testing.T) {
	t.Parallel()

	acc := int16Accessor()
	p := newPage()
	for k := int16(0); k < 736; k++ {
		insert(t, acc, p, k, 9)
	}
	del(t, acc, p, 5)
	del(t, acc, p, 7)
	assert.Equal(t, 22, p.FreeCount())

	// Two 9 byte holes cannot take an 18 byte record.
	insert(t, acc, p, 5, 18)

	assert.Equal(t, 735, p.SlotCount())
	assert.Equal(t, 2, p.FreeCount())
	assert.Equal(t, 6720, p.FreeDataStart())
	assert.Equal(t, 6702, p.Slot(5), "new record goes at the compacted tail")
	require.NoError(t, acc.Validate(p))

	for k := int16(0); k < 736; k++ {
		rec, ok, err := acc.Get(p, k)
		require.NoError(t, err)
		if k == 7 {
			assert.False(t, ok)
			continue
		}
		require.True(t, ok, "key %d", k)
		if k == 5 {
			assert.Equal(t, record(5, 18), rec)
		} else {
			assert.Equal(t, record(k, 9), rec)
		}
	}
}

func TestGapReuseLeadingHole(t *testing.T) {
	t.Parallel()

	acc := int16Accessor()
	p := newPage()
	for k := int16(0); k < 736; k++ {
		insert(t, acc, p, k, 9)
	}
	del(t, acc, p, 0)
	del(t, acc, p, 1)

	insert(t, acc, p, 0, 18)
	assert.Equal(t, 96, p.Slot(0), "leading hole is reused")
	require.NoError(t, acc.Validate(p))
}

func TestHeapInsert(t *testing.T) {
	t.Parallel()

	var acc Accessor[int16]
	p := newPage()
	for _, k := range []int16{5, 1, 3} {
		require.NoError(t, acc.InsertRawBytes(p, record(k, 12), nil))
	}

	keys := []int16{}
	require.NoError(t, acc.Records(p, func(_ int, rec []byte) bool {
		keys = append(keys, codec.ReadInt16(rec, 2))
		return true
	}))
	assert.Equal(t, []int16{5, 1, 3}, keys, "heap keeps insertion order")
	require.NoError(t, acc.Validate(p))
}

func TestInsertIntoZeroedPage(t *testing.T) {
	t.Parallel()

	acc := int16Accessor()
	p := new(base.Page)
	insert(t, acc, p, 7, 9)

	assert.Equal(t, 1, p.SlotCount())
	assert.Equal(t, 105, p.FreeDataStart())
	assert.Equal(t, 8096-11, p.FreeCount())

	del(t, acc, p, 7)
	assert.Equal(t, 96, p.FreeDataStart())
	assert.Equal(t, base.EmptyFreeCount, p.FreeCount())
}

func TestMaxRecord(t *testing.T) {
	t.Parallel()

	acc := int16Accessor()
	p := newPage()
	insert(t, acc, p, 1, base.MaxRecordSize)
	assert.Equal(t, base.EmptyFreeCount-base.MaxRecordSize-base.SlotSize, p.FreeCount())
}

func TestInsertErrors(t *testing.T) {
	t.Parallel()

	key := int16(1)
	badPrefix := record(1, 9)
	codec.WriteInt16(badPrefix, 0, 10)

	tests := []struct {
		name   string
		acc    Accessor[int16]
		record []byte
		key    *int16
		err    error
	}{
		{"too large", int16Accessor(), record(1, base.MaxRecordSize+1), &key, base.ErrRecordTooLarge},
		{"length mismatch", int16Accessor(), badPrefix, &key, base.ErrRecordLengthMismatch},
		{"short record", int16Accessor(), []byte{1}, &key, base.ErrRecordLengthMismatch},
		{"nil resolver", Accessor[int16]{Compare: cmp.Compare[int16]}, record(1, 9), &key, base.ErrNilResolver},
		{"nil comparer", Accessor[int16]{Resolve: Int16KeyResolver(2)}, record(1, 9), &key, base.ErrNilComparer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPage()
			before := p.Data
			err := tt.acc.InsertRawBytes(p, tt.record, tt.key)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, before, p.Data, "page unchanged on error")
		})
	}
}

func TestInsertDuplicateKey(t *testing.T) {
	t.Parallel()

	acc := int16Accessor()
	p := newPage()
	insert(t, acc, p, 1, 9)
	insert(t, acc, p, 2, 9)

	before := p.Data
	key := int16(2)
	err := acc.InsertRawBytes(p, record(key, 9), &key)
	assert.ErrorIs(t, err, base.ErrDuplicateKey)
	assert.Equal(t, before, p.Data, "duplicate check runs before any write")
}

func TestDeleteErrors(t *testing.T) {
	t.Parallel()

	acc := int16Accessor()
	p := newPage()

	key := int16(4)
	require.NoError(t, acc.DeleteRawBytes(p, &key), "empty page is a no-op")

	insert(t, acc, p, 1, 9)
	insert(t, acc, p, 3, 9)

	assert.ErrorIs(t, acc.DeleteRawBytes(p, nil), base.ErrNotImplemented)
	assert.ErrorIs(t, acc.DeleteRawBytes(p, &key), base.ErrKeyNotFound)
	key = 2
	assert.ErrorIs(t, acc.DeleteRawBytes(p, &key), base.ErrKeyNotFound)
	assert.ErrorIs(t, Accessor[int16]{}.DeleteRawBytes(p, &key), base.ErrNilResolver)
	assert.Equal(t, 2, p.SlotCount())
}

func TestCorruptRecord(t *testing.T) {
	t.Parallel()

	acc := int16Accessor()
	p := newPage()
	insert(t, acc, p, 1, 9)
	insert(t, acc, p, 3, 9)

	// Point slot 0 at zeroed space past the records.
	p.SetSlot(0, 150)
	key := int16(2)
	err := acc.InsertRawBytes(p, record(key, 9), &key)
	assert.ErrorIs(t, err, base.ErrCorruptRecord)

	_, _, err = acc.Get(p, 1)
	assert.ErrorIs(t, err, base.ErrCorruptRecord)
	assert.Error(t, acc.Validate(p))
}

func TestSearchInsertionPoint(t *testing.T) {
	t.Parallel()

	acc := int16Accessor()
	p := newPage()
	for _, k := range []int16{10, 20, 30, 40} {
		insert(t, acc, p, k, 9)
	}

	tests := []struct {
		key   int16
		idx   int
		found bool
	}{
		{5, 0, false},
		{10, 0, true},
		{15, 1, false},
		{25, 2, false},
		{30, 2, true},
		{35, 3, false},
		{40, 3, true},
		{45, 4, false},
	}
	for _, tt := range tests {
		idx, found, err := acc.search(p, tt.key)
		require.NoError(t, err)
		assert.Equal(t, tt.idx, idx, "key %d", tt.key)
		assert.Equal(t, tt.found, found, "key %d", tt.key)
	}
}

func TestRandomAccounting(t *testing.T) {
	t.Parallel()

	acc := int16Accessor()
	p := newPage()
	rng := rand.New(rand.NewSource(42))
	live := map[int16]int{}

	for i := 0; i < 5000; i++ {
		key := int16(rng.Intn(400))
		if _, ok := live[key]; ok {
			del(t, acc, p, key)
			delete(live, key)
		} else {
			n := 4 + rng.Intn(60)
			err := acc.InsertRawBytes(p, record(key, n), &key)
			if err != nil {
				require.ErrorIs(t, err, base.ErrPageFull)
				continue
			}
			live[key] = n
		}
		require.NoError(t, acc.Validate(p), "step %d", i)
	}

	for key, n := range live {
		rec, ok, err := acc.Get(p, key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, record(key, n), rec)
	}
	for key := range live {
		del(t, acc, p, key)
	}
	assert.Equal(t, 0, p.SlotCount())
	assert.Equal(t, base.EmptyFreeCount, p.FreeCount())
	assert.Equal(t, 96, p.FreeDataStart())
}

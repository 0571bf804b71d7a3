package slotted

import (
	"bytes"
	"cmp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotdb/internal/base"
	"slotdb/internal/codec"
)

func TestRecordPage(t *testing.T) {
	t.Parallel()

	id := base.NewPagePointer(1, 3)
	rp := NewRecordPage(id, Int16KeyResolver(2), cmp.Compare[int16])
	assert.Equal(t, 0, rp.Len())
	assert.Equal(t, base.EmptyFreeCount, rp.FreeCount())
	assert.Equal(t, id, rp.Page().PageID())
	assert.Equal(t, base.PageTypeData, rp.Page().Type())

	for _, k := range []int16{4, 2, 8, 6} {
		require.NoError(t, rp.Insert(record(k, 10), &k))
	}
	assert.Equal(t, 4, rp.Len())
	require.NoError(t, rp.Validate())

	rec, ok, err := rp.Get(6)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record(6, 10), rec)

	var keys []int16
	require.NoError(t, rp.Records(func(_ int, rec []byte) bool {
		keys = append(keys, Int16KeyResolver(2)(rec))
		return len(keys) < 3
	}))
	assert.Equal(t, []int16{2, 4, 6}, keys, "iteration stops when fn returns false")

	k := int16(2)
	require.NoError(t, rp.Delete(&k))
	_, ok, err = rp.Get(2)
	require.NoError(t, err)
	assert.False(t, ok)

	rp.Reset()
	assert.Equal(t, 0, rp.Len())
	assert.Equal(t, id, rp.Page().PageID())
	assert.Equal(t, base.PageSize-base.PageHeaderSize, rp.FreeCount())
}

func TestLoadRecordPage(t *testing.T) {
	t.Parallel()

	rp := NewRecordPage(base.NewPagePointer(1, 9), Int16KeyResolver(2), cmp.Compare[int16])
	for _, k := range []int16{3, 1, 2} {
		require.NoError(t, rp.Insert(record(k, 9), &k))
	}

	loaded, err := LoadRecordPage(rp.Page(), Int16KeyResolver(2), cmp.Compare[int16])
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Len())

	k := int16(4)
	require.NoError(t, loaded.Insert(record(k, 9), &k))
	assert.Equal(t, 3, rp.Len(), "loaded page is a copy")

	corrupt := *rp.Page()
	corrupt.SetFreeCount(10)
	_, err = LoadRecordPage(&corrupt, Int16KeyResolver(2), cmp.Compare[int16])
	assert.ErrorIs(t, err, base.ErrCorruptPage)
}

func TestBytesKeys(t *testing.T) {
	t.Parallel()

	rp := NewRecordPage(base.ZeroPagePointer, BytesKeyResolver(2, 3), bytes.Compare)
	for _, name := range []string{"cat", "ant", "bee"} {
		rec, err := EncodeRecord([]byte(name + "-payload"))
		require.NoError(t, err)
		key := []byte(name)
		require.NoError(t, rp.Insert(rec, &key))
	}

	var names []string
	require.NoError(t, rp.Records(func(_ int, rec []byte) bool {
		names = append(names, string(Payload(rec)[:3]))
		return true
	}))
	assert.Equal(t, []string{"ant", "bee", "cat"}, names)

	rec, ok, err := rp.Get([]byte("bee"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "bee-payload", string(Payload(rec)))
}

func TestInt32Keys(t *testing.T) {
	t.Parallel()

	rp := NewRecordPage(base.ZeroPagePointer, Int32KeyResolver(2), cmp.Compare[int32])
	keys := []int32{100000, -70000, 5, 40000}
	for i, k := range keys {
		payload := make([]byte, 5)
		codec.WriteInt32(payload, 0, k)
		payload[4] = byte(i)
		rec, err := EncodeRecord(payload)
		require.NoError(t, err)
		require.NoError(t, rp.Insert(rec, &k))
	}
	require.NoError(t, rp.Validate())

	var got []int32
	require.NoError(t, rp.Records(func(_ int, rec []byte) bool {
		got = append(got, codec.ReadInt32(rec, 2))
		return true
	}))
	assert.Equal(t, []int32{-70000, 5, 40000, 100000}, got)

	rec, ok, err := rp.Get(40000)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, byte(3), Payload(rec)[4])

	k := int32(-70000)
	require.NoError(t, rp.Delete(&k))
	_, ok, err = rp.Get(-70000)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, rp.Len())
}

func TestEncodeRecord(t *testing.T) {
	t.Parallel()

	rec, err := EncodeRecord([]byte{0xAA, 0xBB})
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 0, 0xAA, 0xBB}, rec)

	_, err = EncodeRecord(make([]byte, base.MaxRecordSize-1))
	assert.ErrorIs(t, err, base.ErrRecordTooLarge)
}

package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegersAreLittleEndianOnDisk(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 16)

	WriteInt16(buf, 0, 0x1234)
	assert.Equal(t, []byte{0x34, 0x12}, buf[0:2])

	WriteInt32(buf, 2, 0x12345678)
	assert.Equal(t, []byte{0x78, 0x56, 0x34, 0x12}, buf[2:6])

	WriteInt64(buf, 6, 0x0102030405060708)
	assert.Equal(t, []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, buf[6:14])
}

func TestReadWriteRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    int64
	}{
		{"zero", 0},
		{"one", 1},
		{"minus_one", -1},
		{"max", math.MaxInt64},
		{"min", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, 20)

			WriteInt64(buf, 3, tt.v)
			assert.Equal(t, tt.v, ReadInt64(buf, 3))

			WriteInt32(buf, 11, int32(tt.v))
			assert.Equal(t, int32(tt.v), ReadInt32(buf, 11))

			WriteInt16(buf, 17, int16(tt.v))
			assert.Equal(t, int16(tt.v), ReadInt16(buf, 17))
		})
	}
}

func TestUint16MatchesInt16Bits(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 2)
	WriteUint16(buf, 0, 8192)
	assert.Equal(t, uint16(8192), ReadUint16(buf, 0))
	assert.Equal(t, int16(8192), ReadInt16(buf, 0))

	WriteInt16(buf, 0, -2)
	assert.Equal(t, uint16(0xFFFE), ReadUint16(buf, 0))
}

func TestSwap(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint16(0x3412), Swap16(0x1234))
	assert.Equal(t, uint32(0x78563412), Swap32(0x12345678))
	assert.Equal(t, uint64(0x0807060504030201), Swap64(0x0102030405060708))
	assert.Equal(t, uint64(0x0102030405060708), Swap64(Swap64(0x0102030405060708)))
}

func TestRawBytes(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 12)
	CopyBytes(buf, 2, []byte{1, 2, 3, 4})
	assert.Equal(t, []byte{0, 0, 1, 2, 3, 4, 0, 0, 0, 0, 0, 0}, buf)
	assert.False(t, AreBytesCleared(buf, 0, 4))
	assert.True(t, AreBytesCleared(buf, 6, 6))

	// Overlapping move towards the start, as compaction does.
	MoveBytes(buf, 0, 2, 4)
	assert.Equal(t, []byte{1, 2, 3, 4, 3, 4}, buf[:6])

	ClearBytes(buf, 0, 6)
	require.True(t, AreBytesCleared(buf, 0, len(buf)))
}

func TestHostOrderDetection(t *testing.T) {
	t.Parallel()

	// Whatever the host, stored bytes must decode to the same value.
	buf := []byte{0x01, 0x00}
	assert.Equal(t, int16(1), ReadInt16(buf, 0))
}

// Package codec reads and writes fixed-width integers in the on-disk byte order.
//
// Pages are always little-endian. Values are loaded with the host's native
// order and swapped only when the host is big-endian, so the common path is a
// plain load or store. Callers guarantee that offsets are in bounds.
package codec

import (
	"encoding/binary"
	"math/bits"
)

// IsLittleEndian reports whether the host stores integers little-endian.
var IsLittleEndian = binary.NativeEndian.Uint16([]byte{0x01, 0x00}) == 0x0001

// ReadInt16 reads a little-endian int16 at off.
func ReadInt16(b []byte, off int) int16 {
	v := binary.NativeEndian.Uint16(b[off : off+2])
	if !IsLittleEndian {
		v = Swap16(v)
	}
	return int16(v)
}

// ReadUint16 reads a little-endian uint16 at off.
func ReadUint16(b []byte, off int) uint16 {
	return uint16(ReadInt16(b, off))
}

// ReadInt32 reads a little-endian int32 at off.
func ReadInt32(b []byte, off int) int32 {
	v := binary.NativeEndian.Uint32(b[off : off+4])
	if !IsLittleEndian {
		v = Swap32(v)
	}
	return int32(v)
}

// ReadInt64 reads a little-endian int64 at off.
func ReadInt64(b []byte, off int) int64 {
	v := binary.NativeEndian.Uint64(b[off : off+8])
	if !IsLittleEndian {
		v = Swap64(v)
	}
	return int64(v)
}

// WriteInt16 writes v little-endian at off.
func WriteInt16(b []byte, off int, v int16) {
	u := uint16(v)
	if !IsLittleEndian {
		u = Swap16(u)
	}
	binary.NativeEndian.PutUint16(b[off:off+2], u)
}

// WriteUint16 writes v little-endian at off.
func WriteUint16(b []byte, off int, v uint16) {
	WriteInt16(b, off, int16(v))
}

// WriteInt32 writes v little-endian at off.
func WriteInt32(b []byte, off int, v int32) {
	u := uint32(v)
	if !IsLittleEndian {
		u = Swap32(u)
	}
	binary.NativeEndian.PutUint32(b[off:off+4], u)
}

// WriteInt64 writes v little-endian at off.
func WriteInt64(b []byte, off int, v int64) {
	u := uint64(v)
	if !IsLittleEndian {
		u = Swap64(u)
	}
	binary.NativeEndian.PutUint64(b[off:off+8], u)
}

func Swap16(v uint16) uint16 { return bits.ReverseBytes16(v) }

func Swap32(v uint32) uint32 { return bits.ReverseBytes32(v) }

func Swap64(v uint64) uint64 { return bits.ReverseBytes64(v) }

// CopyBytes copies src into b starting at off. The ranges may overlap.
func CopyBytes(b []byte, off int, src []byte) {
	copy(b[off:off+len(src)], src)
}

// MoveBytes moves n bytes inside b from src to dst. Overlapping ranges are
// handled like memmove.
func MoveBytes(b []byte, dst, src, n int) {
	copy(b[dst:dst+n], b[src:src+n])
}

// ClearBytes zeroes n bytes starting at off.
func ClearBytes(b []byte, off, n int) {
	clear(b[off : off+n])
}

// AreBytesCleared reports whether the n bytes at off are all zero.
func AreBytesCleared(b []byte, off, n int) bool {
	for _, c := range b[off : off+n] {
		if c != 0 {
			return false
		}
	}
	return true
}

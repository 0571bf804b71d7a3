package base

import (
	"unsafe"

	"slotdb/internal/codec"
)

const (
	PageSize        = 8192 // 16 sectors of 512 bytes
	PageHeaderSize  = 96
	SlotSize        = 2
	PagePointerSize = 6

	// HeaderVersion has been 1 since the first on-disk format.
	HeaderVersion uint8 = 1

	// MaxRecordSize is the largest record a data page accepts. It leaves
	// slack below PageSize - PageHeaderSize - SlotSize for future row
	// overhead.
	MaxRecordSize = 8060

	// MaxPageStorageSize is the largest record that physically fits on an
	// empty page together with its slot.
	MaxPageStorageSize = PageSize - PageHeaderSize - SlotSize

	// EmptyFreeCount is the free byte count of a freshly formatted page.
	EmptyFreeCount = PageSize - PageHeaderSize

	// Fixed typed flag: every record on the page has the same size.
	FixedLengthRecordsFlag uint8 = 0x04
)

// Header field offsets.
const (
	offHeaderVersion     = 0
	offType              = 1
	offTypeFlagBits      = 2
	offLevel             = 3
	offPageID            = 4
	offPrevPage          = 10
	offNextPage          = 16
	offRecordFixedLength = 22
	offSlotCount         = 24
	offFreeCount         = 26
	offFreeDataStart     = 28
	offReserved          = 30
	reservedSize         = PageHeaderSize - offReserved // 66
)

// Page is a raw 8 KiB page.
//
// PAGE LAYOUT:
// ┌─────────────────────────────────────────────────────────────────────┐
// │ Header (96 bytes)                                                   │
// │ Version, Type, Flags, Level, PageID, Prev, Next, FixedLen,          │
// │ SlotCount, FreeCount, FreeData, Reserved(66)                        │
// ├─────────────────────────────────────────────────────────────────────┤
// │ Record area (grows forward from offset 96):                         │
// │   [Len:2|payload] [Len:2|payload] ... →                             │
// │                                                                     │
// │                     ... free space ...                              │
// │                                                                     │
// │                     ← ... Slot[2] Slot[1] Slot[0]                   │
// ├─────────────────────────────────────────────────────────────────────┤
// │ Slot array (grows backward from the last byte, 2 bytes per slot)    │
// └─────────────────────────────────────────────────────────────────────┘
//
// Slot i lives at PageSize-(i+1)*SlotSize and holds the offset of a record.
// Slot order is the logical (clustered) record order, independent of where
// the records physically sit.
type Page struct {
	Data [PageSize]byte
}

// PageHeader is the decoded form of the 96 byte page header.
// Layout: [Version:1][Type:1][Flags:1][Level:1][PageID:6][Prev:6][Next:6]
// [FixedLen:2][SlotCount:2][FreeCount:2][FreeData:2][Reserved:66]
type PageHeader struct {
	HeaderVersion     uint8
	Type              PageType
	TypeFlagBits      uint8
	Level             uint8 // b-tree level, 0 for leaves
	PageID            PagePointer
	PrevPage          PagePointer
	NextPage          PagePointer
	RecordFixedLength int16
	SlotCount         int16
	FreeCount         int16
	FreeDataStart     int16 // one past the last used record byte
}

// FromBytes views a caller-owned buffer of exactly PageSize bytes as a Page.
// The page aliases buf; no copy is made.
func FromBytes(buf []byte) (*Page, error) {
	if len(buf) != PageSize {
		return nil, ErrInvalidPageSize
	}
	return (*Page)(unsafe.Pointer((*[PageSize]byte)(buf))), nil
}

// Init zeroes the page and writes a fresh header for an empty page.
func (p *Page) Init(id PagePointer, typ PageType) {
	clear(p.Data[:])
	p.WriteHeader(&PageHeader{
		HeaderVersion: HeaderVersion,
		Type:          typ,
		PageID:        id,
		FreeCount:     EmptyFreeCount,
		FreeDataStart: PageHeaderSize,
	})
}

// Header decodes the page header.
func (p *Page) Header() PageHeader {
	return PageHeader{
		HeaderVersion:     p.Data[offHeaderVersion],
		Type:              PageType(p.Data[offType]),
		TypeFlagBits:      p.Data[offTypeFlagBits],
		Level:             p.Data[offLevel],
		PageID:            readPagePointer(p.Data[:], offPageID),
		PrevPage:          readPagePointer(p.Data[:], offPrevPage),
		NextPage:          readPagePointer(p.Data[:], offNextPage),
		RecordFixedLength: codec.ReadInt16(p.Data[:], offRecordFixedLength),
		SlotCount:         codec.ReadInt16(p.Data[:], offSlotCount),
		FreeCount:         codec.ReadInt16(p.Data[:], offFreeCount),
		FreeDataStart:     codec.ReadInt16(p.Data[:], offFreeDataStart),
	}
}

// WriteHeader encodes h into the first PageHeaderSize bytes. Reserved bytes
// are cleared.
func (p *Page) WriteHeader(h *PageHeader) {
	p.Data[offHeaderVersion] = h.HeaderVersion
	p.Data[offType] = uint8(h.Type)
	p.Data[offTypeFlagBits] = h.TypeFlagBits
	p.Data[offLevel] = h.Level
	writePagePointer(p.Data[:], offPageID, h.PageID)
	writePagePointer(p.Data[:], offPrevPage, h.PrevPage)
	writePagePointer(p.Data[:], offNextPage, h.NextPage)
	codec.WriteInt16(p.Data[:], offRecordFixedLength, h.RecordFixedLength)
	codec.WriteInt16(p.Data[:], offSlotCount, h.SlotCount)
	codec.WriteInt16(p.Data[:], offFreeCount, h.FreeCount)
	codec.WriteInt16(p.Data[:], offFreeDataStart, h.FreeDataStart)
	codec.ClearBytes(p.Data[:], offReserved, reservedSize)
}

func (p *Page) Type() PageType          { return PageType(p.Data[offType]) }
func (p *Page) SetType(t PageType)      { p.Data[offType] = uint8(t) }
func (p *Page) TypeFlagBits() uint8     { return p.Data[offTypeFlagBits] }
func (p *Page) SetTypeFlagBits(b uint8) { p.Data[offTypeFlagBits] = b }
func (p *Page) Level() uint8            { return p.Data[offLevel] }
func (p *Page) SetLevel(l uint8)        { p.Data[offLevel] = l }

func (p *Page) PageID() PagePointer        { return readPagePointer(p.Data[:], offPageID) }
func (p *Page) SetPageID(id PagePointer)   { writePagePointer(p.Data[:], offPageID, id) }
func (p *Page) PrevPage() PagePointer      { return readPagePointer(p.Data[:], offPrevPage) }
func (p *Page) SetPrevPage(id PagePointer) { writePagePointer(p.Data[:], offPrevPage, id) }
func (p *Page) NextPage() PagePointer      { return readPagePointer(p.Data[:], offNextPage) }
func (p *Page) SetNextPage(id PagePointer) { writePagePointer(p.Data[:], offNextPage, id) }

func (p *Page) RecordFixedLength() int {
	return int(codec.ReadInt16(p.Data[:], offRecordFixedLength))
}

func (p *Page) SetRecordFixedLength(n int) {
	codec.WriteInt16(p.Data[:], offRecordFixedLength, int16(n))
}

// SlotCount returns the number of records on the page.
func (p *Page) SlotCount() int {
	return int(codec.ReadInt16(p.Data[:], offSlotCount))
}

func (p *Page) SetSlotCount(n int) {
	codec.WriteInt16(p.Data[:], offSlotCount, int16(n))
}

// FreeCount returns the bytes left for new records and their slots.
func (p *Page) FreeCount() int {
	return int(codec.ReadInt16(p.Data[:], offFreeCount))
}

func (p *Page) SetFreeCount(n int) {
	codec.WriteInt16(p.Data[:], offFreeCount, int16(n))
}

// FreeDataStart returns the offset one past the last used record byte. It may
// overstate usage after records in the middle of the record area are deleted.
func (p *Page) FreeDataStart() int {
	return int(codec.ReadInt16(p.Data[:], offFreeDataStart))
}

func (p *Page) SetFreeDataStart(off int) {
	codec.WriteInt16(p.Data[:], offFreeDataStart, int16(off))
}

// SlotOffset returns the byte position of slot i inside the page.
func SlotOffset(i int) int {
	return PageSize - (i+1)*SlotSize
}

// Slot returns the record offset stored in slot i.
func (p *Page) Slot(i int) int {
	return int(codec.ReadUint16(p.Data[:], SlotOffset(i)))
}

// SetSlot stores a record offset in slot i.
func (p *Page) SetSlot(i int, off int) {
	codec.WriteUint16(p.Data[:], SlotOffset(i), uint16(off))
}

// FreeDataSize returns the contiguous bytes between the end of the record
// area and the start of the slot array.
func (p *Page) FreeDataSize() int {
	return PageSize - p.FreeDataStart() - p.SlotCount()*SlotSize
}

// RecordLength returns the self-described length of the record at off. A
// corrupt page can yield zero or a negative length.
func (p *Page) RecordLength(off int) int {
	return int(codec.ReadInt16(p.Data[:], off))
}

// Record returns the bytes of the record stored at off. The slice aliases the
// page.
func (p *Page) Record(off int) ([]byte, error) {
	if off < PageHeaderSize || off+2 > PageSize {
		return nil, ErrInvalidOffset
	}
	n := p.RecordLength(off)
	if n < 2 || off+n > PageSize {
		return nil, ErrCorruptRecord
	}
	return p.Data[off : off+n], nil
}

// Bytes returns the raw page bytes.
func (p *Page) Bytes() []byte {
	return p.Data[:]
}

package base

import (
	"fmt"

	"slotdb/internal/codec"
)

// PageType identifies what a page stores.
type PageType uint8

const (
	PageTypeData                      PageType = 1
	PageTypeIndex                     PageType = 2
	PageTypeTextMix                   PageType = 3
	PageTypeTextTree                  PageType = 4
	PageTypeSort                      PageType = 7
	PageTypeGlobalAllocationMap       PageType = 8
	PageTypeSharedGlobalAllocationMap PageType = 9
	PageTypeIndexAllocationMap        PageType = 10
	PageTypePageFreeSpace             PageType = 11
	PageTypeBoot                      PageType = 13
	PageTypeFileHeader                PageType = 15
	PageTypeDiffMap                   PageType = 16
	PageTypeMLMap                     PageType = 17
)

var pageTypeNames = map[PageType]string{
	PageTypeData:                      "Data",
	PageTypeIndex:                     "Index",
	PageTypeTextMix:                   "TextMix",
	PageTypeTextTree:                  "TextTree",
	PageTypeSort:                      "Sort",
	PageTypeGlobalAllocationMap:       "GAM",
	PageTypeSharedGlobalAllocationMap: "SGAM",
	PageTypeIndexAllocationMap:        "IAM",
	PageTypePageFreeSpace:             "PFS",
	PageTypeBoot:                      "Boot",
	PageTypeFileHeader:                "FileHeader",
	PageTypeDiffMap:                   "DiffMap",
	PageTypeMLMap:                     "MLMap",
}

func (t PageType) String() string {
	if name, ok := pageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PageType(%d)", uint8(t))
}

// Valid reports whether t is one of the known page types.
func (t PageType) Valid() bool {
	_, ok := pageTypeNames[t]
	return ok
}

// PagePointer addresses a page inside a data file.
// Layout: [PageNumber: 4][FileID: 2], little-endian.
//
// Leaf pages at the same b-tree level link to each other through the
// PrevPage/NextPage header fields, which hold PagePointers. The zero value
// means "no page".
type PagePointer struct {
	PageNumber int32
	FileID     int16
}

// ZeroPagePointer is the null page pointer.
var ZeroPagePointer = PagePointer{}

// NewPagePointer returns the pointer to page number n of file fileID.
func NewPagePointer(fileID int16, n int32) PagePointer {
	return PagePointer{PageNumber: n, FileID: fileID}
}

// DecodePagePointer decodes a 6-byte page pointer.
func DecodePagePointer(b []byte) (PagePointer, error) {
	if len(b) != PagePointerSize {
		return PagePointer{}, ErrInvalidPagePointer
	}
	return readPagePointer(b, 0), nil
}

// Encode returns the 6-byte on-disk form of p.
func (p PagePointer) Encode() []byte {
	b := make([]byte, PagePointerSize)
	writePagePointer(b, 0, p)
	return b
}

func (p PagePointer) IsZero() bool {
	return p == ZeroPagePointer
}

func (p PagePointer) String() string {
	return fmt.Sprintf("(%d:%d)", p.FileID, p.PageNumber)
}

func readPagePointer(b []byte, off int) PagePointer {
	return PagePointer{
		PageNumber: codec.ReadInt32(b, off),
		FileID:     codec.ReadInt16(b, off+4),
	}
}

func writePagePointer(b []byte, off int, p PagePointer) {
	codec.WriteInt32(b, off, p.PageNumber)
	codec.WriteInt16(b, off+4, p.FileID)
}

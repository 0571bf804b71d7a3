package slotdb

import "slotdb/internal/base"

const (
	PageSize       = base.PageSize
	PageHeaderSize = base.PageHeaderSize
	MaxRecordSize  = base.MaxRecordSize
)

type (
	// Page is an 8 KiB slotted page image.
	Page = base.Page
	// PageHeader is the decoded 96 byte page header.
	PageHeader = base.PageHeader
	// PageType identifies what a page stores.
	PageType = base.PageType
	// PagePointer addresses a page as (file id, page number).
	PagePointer = base.PagePointer
)

const (
	PageTypeData                      = base.PageTypeData
	PageTypeIndex                     = base.PageTypeIndex
	PageTypeTextMix                   = base.PageTypeTextMix
	PageTypeTextTree                  = base.PageTypeTextTree
	PageTypeSort                      = base.PageTypeSort
	PageTypeGlobalAllocationMap       = base.PageTypeGlobalAllocationMap
	PageTypeSharedGlobalAllocationMap = base.PageTypeSharedGlobalAllocationMap
	PageTypeIndexAllocationMap        = base.PageTypeIndexAllocationMap
	PageTypePageFreeSpace             = base.PageTypePageFreeSpace
	PageTypeBoot                      = base.PageTypeBoot
	PageTypeFileHeader                = base.PageTypeFileHeader
	PageTypeDiffMap                   = base.PageTypeDiffMap
	PageTypeMLMap                     = base.PageTypeMLMap
)

// NewPagePointer returns the pointer to page number n of file fileID.
func NewPagePointer(fileID int16, n int32) PagePointer {
	return base.NewPagePointer(fileID, n)
}

// PageFromBytes views a caller-owned buffer of exactly PageSize bytes as a
// Page without copying.
func PageFromBytes(buf []byte) (*Page, error) {
	return base.FromBytes(buf)
}

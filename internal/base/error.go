package base

import "errors"

var (
	ErrInvalidOffset        = errors.New("invalid offset: out of bounds")
	ErrInvalidPagePointer   = errors.New("page pointer must be 6 bytes: page number(4) file id(2)")
	ErrInvalidPageSize      = errors.New("invalid page size")
	ErrRecordTooLarge       = errors.New("record too large")
	ErrRecordLengthMismatch = errors.New("record length prefix does not match record size")
	ErrPageFull             = errors.New("record does not fit on page")
	ErrCorruptRecord        = errors.New("corrupt record")
	ErrCorruptPage          = errors.New("corrupt page")
	ErrDuplicateKey         = errors.New("clustered key already exists on page")
	ErrKeyNotFound          = errors.New("clustered key not found on page")
	ErrNilResolver          = errors.New("clustered key resolver is nil")
	ErrNilComparer          = errors.New("clustered key comparer is nil")
	ErrNotImplemented       = errors.New("not implemented")
)

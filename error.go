package slotdb

import (
	"errors"

	"slotdb/internal/base"
	"slotdb/internal/datafile"
)

//goland:noinspection GoUnusedGlobalVariable
var (
	ErrDatabaseClosed = errors.New("database is closed")
	ErrDatabaseFull   = errors.New("no free pages left in data file")
	ErrReservedPage   = errors.New("page 0 is the file header page")
	ErrForeignPage    = errors.New("page belongs to another data file")
	ErrCorruption     = errors.New("data corruption detected")

	ErrFileExists      = datafile.ErrFileExists
	ErrFileNotFound    = datafile.ErrFileNotFound
	ErrInvalidFile     = datafile.ErrInvalidFile
	ErrInvalidFileSize = datafile.ErrInvalidFileSize
	ErrPageOutOfRange  = datafile.ErrPageOutOfRange

	ErrInvalidOffset        = base.ErrInvalidOffset
	ErrInvalidPageSize      = base.ErrInvalidPageSize
	ErrRecordTooLarge       = base.ErrRecordTooLarge
	ErrRecordLengthMismatch = base.ErrRecordLengthMismatch
	ErrPageFull             = base.ErrPageFull
	ErrCorruptRecord        = base.ErrCorruptRecord
	ErrCorruptPage          = base.ErrCorruptPage
	ErrDuplicateKey         = base.ErrDuplicateKey
	ErrKeyNotFound          = base.ErrKeyNotFound
	ErrNotImplemented       = base.ErrNotImplemented
)

package slotdb

import "slotdb/internal/datafile"

// SyncMode controls whether flushed pages are synced to disk
type SyncMode int

const (
	// SyncOnFlush fdatasyncs the data file after every Flush.
	// - A successful Flush survives power failure
	// - Limited by fsync latency (typically 1-10ms per flush)
	SyncOnFlush SyncMode = iota

	// SyncOff leaves flushed pages in the OS page cache.
	// - Maximum throughput
	// - Flushed pages may be lost on crash
	// - Use for: Testing, bulk imports with external durability
	SyncOff
)

// DBOptions configures database behavior.
type DBOptions struct {
	logger           Logger
	syncMode         SyncMode
	fileID           int16 // File id stamped into every page pointer.
	fileSize         int64 // Size of a newly created data file in bytes.
	cacheSize        int   // Pages kept in the LRU page cache.
	flushConcurrency int   // Parallel page writes during Flush.
}

// DefaultDBOptions returns safe default configuration.
//
// goland:noinspection GoUnusedExportedFunction
func DefaultDBOptions() DBOptions {
	return DBOptions{
		logger:           DiscardLogger{},
		syncMode:         SyncOnFlush,
		fileID:           1,
		fileSize:         datafile.DefaultFileSize, // 64MB
		cacheSize:        1024,                     // 8MB of pages
		flushConcurrency: datafile.DefaultFlushConcurrency,
	}
}

// DBOption configures database options using the functional options pattern.
type DBOption func(*DBOptions)

// WithLogger sets the logger for database lifecycle and flush events.
//
//goland:noinspection GoUnusedExportedFunction
func WithLogger(logger Logger) DBOption {
	return func(opts *DBOptions) {
		opts.logger = logger
	}
}

// WithSyncOff disables fdatasync on flush.
// Only use for testing or bulk loads where data can be reconstructed.
//
//goland:noinspection GoUnusedExportedFunction
func WithSyncOff() DBOption {
	return func(opts *DBOptions) {
		opts.syncMode = SyncOff
	}
}

// WithFileSize sets the size of a newly created data file. It must be a
// multiple of the page size. Ignored by Open.
//
//goland:noinspection GoUnusedExportedFunction
func WithFileSize(bytes int64) DBOption {
	return func(opts *DBOptions) {
		opts.fileSize = bytes
	}
}

// WithFileID sets the file id of a newly created data file. Ignored by Open,
// which reads the id from the file header.
//
//goland:noinspection GoUnusedExportedFunction
func WithFileID(id int16) DBOption {
	return func(opts *DBOptions) {
		opts.fileID = id
	}
}

// WithCacheSize sets the number of pages kept in memory.
// When the cache is full, the least recently used page is evicted.
//
//goland:noinspection GoUnusedExportedFunction
func WithCacheSize(pages int) DBOption {
	return func(opts *DBOptions) {
		opts.cacheSize = pages
	}
}

// WithFlushConcurrency sets how many pages Flush writes in parallel.
//
//goland:noinspection GoUnusedExportedFunction
func WithFlushConcurrency(n int) DBOption {
	return func(opts *DBOptions) {
		opts.flushConcurrency = n
	}
}

func (o DBOptions) fileOptions() datafile.Options {
	return datafile.Options{
		FileID:           o.fileID,
		FileSize:         o.fileSize,
		Sync:             o.syncMode == SyncOnFlush,
		FlushConcurrency: o.flushConcurrency,
	}
}

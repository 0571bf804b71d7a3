// Package slotdb is the storage core of a small relational database: a data
// file of fixed 8 KiB slotted pages with an LRU page cache in front of it.
//
// Records are packed into pages with package slotted; in-memory ordered
// indexes live in package bptree.
package slotdb

import (
	"cmp"
	"errors"
	"fmt"
	"sync"

	"slotdb/internal/base"
	"slotdb/internal/cache"
	"slotdb/internal/codec"
	"slotdb/internal/datafile"
	"slotdb/slotted"
)

// metaKey is the clustered key of the allocation record on the header page.
// Record layout: [Len:2][Key:2][NextPage:4]
const (
	metaKey        int16 = 1
	metaRecordSize       = 8
)

var metaAccessor = slotted.NewAccessor(slotted.Int16KeyResolver(2), cmp.Compare[int16])

type DB struct {
	mu      sync.Mutex
	file    *datafile.File
	cache   *cache.Cache
	options DBOptions
	header  base.Page // page 0
	next    int32     // first page never handed out
	closed  bool      // Database closed flag
}

// Create builds a new data file at path and opens a database on it. It fails
// with ErrFileExists when path already exists.
func Create(path string, options ...DBOption) (*DB, error) {
	opts := DefaultDBOptions()
	for _, opt := range options {
		opt(&opts)
	}

	fopts := opts.fileOptions()
	fopts.InitHeader = func(h *base.Page) error {
		return writeMeta(h, 1)
	}
	file, err := datafile.Create(path, fopts)
	if err != nil {
		return nil, err
	}
	opts.logger.Info("created data file", "path", path, "pages", file.PageCount(), "file_id", file.FileID())

	return open(file, opts)
}

// Open opens the database stored at path.
func Open(path string, options ...DBOption) (*DB, error) {
	opts := DefaultDBOptions()
	for _, opt := range options {
		opt(&opts)
	}

	file, err := datafile.Open(path, opts.fileOptions())
	if err != nil {
		return nil, err
	}
	return open(file, opts)
}

func open(file *datafile.File, opts DBOptions) (*DB, error) {
	db := &DB{
		file:    file,
		options: opts,
	}

	var err error
	db.cache, err = cache.NewCache(opts.cacheSize, func(n int32, _ *base.Page) {
		opts.logger.Info("page evicted from cache", "page", n)
	})
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	header, err := file.ReadPage(0)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	db.header = *header
	db.next, err = readMeta(&db.header)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if db.next < 1 || db.next > file.PageCount() {
		_ = file.Close()
		return nil, fmt.Errorf("%w: next page %d outside file of %d pages", ErrCorruption, db.next, file.PageCount())
	}

	opts.logger.Info("opened database", "path", file.Path(), "allocated", db.next, "pages", file.PageCount())
	return db, nil
}

func writeMeta(h *base.Page, next int32) error {
	key := metaKey
	if err := metaAccessor.DeleteRawBytes(h, &key); err != nil && !errors.Is(err, base.ErrKeyNotFound) {
		return err
	}
	rec := make([]byte, metaRecordSize)
	codec.WriteInt16(rec, 0, metaRecordSize)
	codec.WriteInt16(rec, 2, metaKey)
	codec.WriteInt32(rec, 4, next)
	return metaAccessor.InsertRawBytes(h, rec, &key)
}

func readMeta(h *base.Page) (int32, error) {
	rec, ok, err := metaAccessor.Get(h, metaKey)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCorruption, err)
	}
	if !ok || len(rec) != metaRecordSize {
		return 0, fmt.Errorf("%w: missing allocation record", ErrInvalidFile)
	}
	return codec.ReadInt32(rec, 4), nil
}

// AllocatePage hands out the next unused page, formatted as an empty page of
// type typ. The new page is buffered for the next Flush.
func (db *DB) AllocatePage(typ PageType) (*Page, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, ErrDatabaseClosed
	}
	n := db.next
	if n >= db.file.PageCount() {
		return nil, ErrDatabaseFull
	}

	page := new(base.Page)
	page.Init(base.NewPagePointer(db.file.FileID(), n), typ)
	if err := db.file.WritePage(n, page); err != nil {
		return nil, err
	}

	if err := writeMeta(&db.header, n+1); err != nil {
		return nil, err
	}
	if err := db.file.WritePage(0, &db.header); err != nil {
		return nil, err
	}
	db.cache.Delete(0)
	db.next = n + 1

	cached := *page
	db.cache.Put(n, &cached)
	return page, nil
}

// ReadPage returns a copy of allocated page n.
func (db *DB) ReadPage(n int32) (*Page, error) {
	// The cache fill stays under db.mu so it cannot race WritePage.
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, ErrDatabaseClosed
	}
	if n < 0 || n >= db.next {
		return nil, fmt.Errorf("%w: page %d not allocated", ErrPageOutOfRange, n)
	}
	page, err := db.cache.GetOrLoad(n, db.file.ReadPage)
	if err != nil {
		return nil, err
	}
	cp := *page
	return &cp, nil
}

// WritePage stores page at the page number in its header. The write is
// buffered until the next Flush.
func (db *DB) WritePage(page *Page) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrDatabaseClosed
	}
	id := page.PageID()
	if id.FileID != db.file.FileID() {
		return fmt.Errorf("%w: page %s, file %d", ErrForeignPage, id, db.file.FileID())
	}
	n := id.PageNumber
	if n == 0 {
		return ErrReservedPage
	}
	if n < 0 || n >= db.next {
		return fmt.Errorf("%w: page %d not allocated", ErrPageOutOfRange, n)
	}

	if err := db.file.WritePage(n, page); err != nil {
		return err
	}
	cached := *page
	db.cache.Put(n, &cached)
	return nil
}

// Flush writes all buffered pages to the data file.
func (db *DB) Flush() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrDatabaseClosed
	}
	if err := db.file.Flush(); err != nil {
		db.options.logger.Error("flush failed", "path", db.file.Path(), "error", err)
		return err
	}
	return nil
}

// Close flushes buffered pages and closes the data file.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrDatabaseClosed
	}
	db.closed = true
	db.cache.Purge()

	if err := db.file.Close(); err != nil {
		db.options.logger.Error("close failed", "path", db.file.Path(), "error", err)
		return err
	}
	db.options.logger.Info("closed database", "path", db.file.Path())
	return nil
}

// Stats reports page allocation, cache and I/O counters.
type Stats struct {
	Allocated int32 // pages handed out, including the header page
	Capacity  int32 // pages in the data file
	Cache     cache.Stats
	IO        datafile.Stats
}

func (db *DB) Stats() Stats {
	db.mu.Lock()
	defer db.mu.Unlock()

	return Stats{
		Allocated: db.next,
		Capacity:  db.file.PageCount(),
		Cache:     db.cache.Stats(),
		IO:        db.file.Stats(),
	}
}

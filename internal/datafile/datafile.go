// Package datafile stores fixed-size pages in a preallocated file.
//
// Page n lives at byte offset n*base.PageSize. Page 0 is the file header
// page. A new file is built under a temporary name, sized, given its header,
// flushed, and only then renamed into place, so a crash during creation never
// leaves a file that looks valid but is missing its header.
package datafile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/btree"
	"github.com/hashicorp/go-uuid"
	"golang.org/x/sync/errgroup"

	"slotdb/internal/base"
)

var (
	ErrFileExists      = errors.New("data file already exists")
	ErrFileNotFound    = errors.New("data file not found")
	ErrInvalidFile     = errors.New("invalid data file")
	ErrInvalidFileSize = errors.New("file size must be a positive multiple of the page size")
	ErrClosed          = errors.New("data file is closed")
	ErrPageOutOfRange  = errors.New("page number out of range")
)

const (
	DefaultFileSize         = 64 << 20 // 64 MiB
	DefaultFlushConcurrency = 4
)

// Options configures a data file.
type Options struct {
	FileID           int16
	FileSize         int64 // Create only; Open takes the size from the file
	Sync             bool  // fdatasync after every flush
	FlushConcurrency int   // parallel page writes during Flush

	// InitHeader, if set, runs on the formatted header page before it is
	// first written, while the file still has its temporary name.
	InitHeader func(header *base.Page) error
}

func DefaultOptions() Options {
	return Options{
		FileID:           1,
		FileSize:         DefaultFileSize,
		Sync:             true,
		FlushConcurrency: DefaultFlushConcurrency,
	}
}

// dirtyPage is a buffered page write, ordered by page number.
type dirtyPage struct {
	n    int32
	page *base.Page
}

func dirtyLess(a, b dirtyPage) bool { return a.n < b.n }

// File is an open data file. It is safe for concurrent use.
type File struct {
	mu     sync.RWMutex
	path   string
	file   *os.File
	opts   Options
	fileID int16
	pages  int32
	dirty  *btree.BTreeG[dirtyPage]
	closed bool

	// Stats counters
	reads   atomic.Uint64
	writes  atomic.Uint64
	read    atomic.Uint64
	written atomic.Uint64
	flushes atomic.Uint64
}

// Create builds a new data file of opts.FileSize bytes at path and opens it.
func Create(path string, opts Options) (*File, error) {
	if opts.FileSize <= 0 || opts.FileSize%base.PageSize != 0 {
		return nil, ErrInvalidFileSize
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileExists, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	id, err := uuid.GenerateUUID()
	if err != nil {
		return nil, err
	}
	tmp := fmt.Sprintf("%s.%s.tmp", path, id)

	if err := initFile(tmp, opts); err != nil {
		_ = os.Remove(tmp)
		return nil, err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return nil, err
	}
	if err := syncDir(filepath.Dir(path)); err != nil {
		return nil, err
	}

	return Open(path, opts)
}

// initFile sizes the temporary file, writes its header page and flushes it.
func initFile(tmp string, opts Options) error {
	f, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := allocate(f, opts.FileSize); err != nil {
		return fmt.Errorf("allocate %d bytes: %w", opts.FileSize, err)
	}

	header := new(base.Page)
	header.Init(base.NewPagePointer(opts.FileID, 0), base.PageTypeFileHeader)
	if opts.InitHeader != nil {
		if err := opts.InitHeader(header); err != nil {
			return err
		}
	}
	if err := writeFull(f, header, 0); err != nil {
		return err
	}
	return syncFile(f)
}

// Open opens an existing data file and validates its header page.
func Open(path string, opts Options) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return nil, err
	}

	df, err := open(f, path, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return df, nil
}

func open(f *os.File, path string, opts Options) (*File, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size == 0 || size%base.PageSize != 0 {
		return nil, fmt.Errorf("%w: size %d is not a multiple of %d", ErrInvalidFile, size, base.PageSize)
	}

	header := new(base.Page)
	if err := readFull(f, header, 0); err != nil {
		return nil, err
	}
	h := header.Header()
	if h.HeaderVersion != base.HeaderVersion || h.Type != base.PageTypeFileHeader || h.PageID.PageNumber != 0 {
		return nil, fmt.Errorf("%w: bad header page %s version %d", ErrInvalidFile, h.Type, h.HeaderVersion)
	}

	if opts.FlushConcurrency <= 0 {
		opts.FlushConcurrency = DefaultFlushConcurrency
	}
	return &File{
		path:   path,
		file:   f,
		opts:   opts,
		fileID: h.PageID.FileID,
		pages:  int32(size / base.PageSize),
		dirty:  btree.NewG[dirtyPage](16, dirtyLess),
	}, nil
}

func (f *File) Path() string     { return f.path }
func (f *File) FileID() int16    { return f.fileID }
func (f *File) PageCount() int32 { return f.pages }

func (f *File) checkPage(n int32) error {
	if f.closed {
		return ErrClosed
	}
	if n < 0 || n >= f.pages {
		return fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, n, f.pages)
	}
	return nil
}

// ReadPage returns a copy of page n, including writes not yet flushed.
func (f *File) ReadPage(n int32) (*base.Page, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if err := f.checkPage(n); err != nil {
		return nil, err
	}
	if d, ok := f.dirty.Get(dirtyPage{n: n}); ok {
		page := *d.page
		return &page, nil
	}

	// Flush writes under the exclusive lock, so ReadAt never sees a
	// partially written page.
	page := new(base.Page)
	f.reads.Add(1)
	if err := readFull(f.file, page, n); err != nil {
		return nil, err
	}
	f.read.Add(base.PageSize)
	return page, nil
}

// WritePage buffers a copy of page as the new contents of page n. The write
// reaches the file on the next Flush.
func (f *File) WritePage(n int32, page *base.Page) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkPage(n); err != nil {
		return err
	}
	cp := *page
	f.dirty.ReplaceOrInsert(dirtyPage{n: n, page: &cp})
	return nil
}

// DirtyCount returns the number of buffered page writes.
func (f *File) DirtyCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dirty.Len()
}

// Flush writes every buffered page in page number order and syncs the file.
// On error the buffered pages are kept so a later Flush can retry.
func (f *File) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	return f.flush()
}

func (f *File) flush() error {
	if f.dirty.Len() == 0 {
		return nil
	}

	var g errgroup.Group
	g.SetLimit(f.opts.FlushConcurrency)
	f.dirty.Ascend(func(d dirtyPage) bool {
		g.Go(func() error {
			f.writes.Add(1)
			if err := writeFull(f.file, d.page, d.n); err != nil {
				return fmt.Errorf("write page %d: %w", d.n, err)
			}
			f.written.Add(base.PageSize)
			return nil
		})
		return true
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if f.opts.Sync {
		if err := syncFile(f.file); err != nil {
			return err
		}
	}
	f.dirty.Clear(false)
	f.flushes.Add(1)
	return nil
}

// Close flushes buffered pages and closes the file.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	f.closed = true

	flushErr := f.flush()
	return errors.Join(flushErr, f.file.Close())
}

func readFull(file *os.File, page *base.Page, n int32) error {
	got, err := file.ReadAt(page.Data[:], int64(n)*base.PageSize)
	if err != nil {
		return err
	}
	if got != base.PageSize {
		return fmt.Errorf("short read: got %d bytes, expected %d", got, base.PageSize)
	}
	return nil
}

func writeFull(file *os.File, page *base.Page, n int32) error {
	got, err := file.WriteAt(page.Data[:], int64(n)*base.PageSize)
	if err != nil {
		return err
	}
	if got != base.PageSize {
		return fmt.Errorf("short write: wrote %d bytes, expected %d", got, base.PageSize)
	}
	return nil
}

// syncDir persists a rename in dir.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

// Stats holds I/O statistics
type Stats struct {
	Reads   uint64
	Writes  uint64
	Read    uint64
	Written uint64
	Flushes uint64
	Dirty   int
}

// Stats returns I/O statistics
func (f *File) Stats() Stats {
	return Stats{
		Reads:   f.reads.Load(),
		Writes:  f.writes.Load(),
		Read:    f.read.Load(),
		Written: f.written.Load(),
		Flushes: f.flushes.Load(),
		Dirty:   f.DirtyCount(),
	}
}

package bufpool

import (
	"fmt"
	"io"
	"os"

	"bufpool/internal/base"
)

// DataFile is the disk-backed File implementation: fixed 4KB pages stored at
// id*PageSize offsets, each stamped with an xxhash checksum that is verified
// on read. Deleted page slots are flagged on disk and reused by later
// allocations.
//
// A DataFile is single-threaded, like the pool that drives it.
type DataFile struct {
	path     string
	file     *os.File
	numPages uint64
	free     []base.PageID // reusable slots, most recently deleted last
	deleted  map[base.PageID]struct{}
}

// OpenDataFile opens or creates a page file. Existing files are scanned for
// deleted slots so allocation can reuse them.
func OpenDataFile(path string) (*DataFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	d := &DataFile{
		path:     path,
		file:     f,
		numPages: uint64(info.Size()) / base.PageSize,
		deleted:  make(map[base.PageID]struct{}),
	}

	if err := d.scanDeleted(); err != nil {
		f.Close()
		return nil, err
	}
	return d, nil
}

// scanDeleted rebuilds the free list from page headers.
func (d *DataFile) scanDeleted() error {
	var hdr [base.PageHeaderSize]byte
	for id := base.PageID(0); uint64(id) < d.numPages; id++ {
		offset := int64(id) * base.PageSize
		if _, err := d.file.ReadAt(hdr[:], offset); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("scan page %d of %s: %w", id, d.path, err)
		}
		if base.HeaderFlags(hdr[:])&base.FlagDeleted != 0 {
			d.free = append(d.free, id)
			d.deleted[id] = struct{}{}
		}
	}
	return nil
}

// ID returns the file's identity: its path.
func (d *DataFile) ID() base.FileID {
	return base.FileID(d.path)
}

// NumPages returns the number of page slots in the file, deleted slots
// included.
func (d *DataFile) NumPages() uint64 {
	return d.numPages
}

// ReadPage reads and checksum-verifies a page.
func (d *DataFile) ReadPage(id base.PageID) (*base.Page, error) {
	if d.file == nil {
		return nil, base.ErrFileClosed
	}
	if uint64(id) >= d.numPages {
		return nil, base.ErrPageOutOfBounds
	}
	if _, gone := d.deleted[id]; gone {
		return nil, base.ErrPageDeleted
	}

	page := &base.Page{}
	offset := int64(id) * base.PageSize
	n, err := d.file.ReadAt(page.Data[:], offset)
	if err != nil {
		return nil, fmt.Errorf("read page %d of %s: %w", id, d.path, err)
	}
	if n != base.PageSize {
		return nil, fmt.Errorf("short read: got %d bytes, expected %d", n, base.PageSize)
	}
	if err := page.VerifyChecksum(); err != nil {
		return nil, fmt.Errorf("page %d of %s: %w", id, d.path, err)
	}
	return page, nil
}

// WritePage overwrites the stored page. The page id is stamped and the
// checksum refreshed before the write; the data is synced before returning.
func (d *DataFile) WritePage(id base.PageID, page *base.Page) error {
	if d.file == nil {
		return base.ErrFileClosed
	}
	if uint64(id) >= d.numPages {
		return base.ErrPageOutOfBounds
	}
	if _, gone := d.deleted[id]; gone {
		return base.ErrPageDeleted
	}

	page.SetID(id)
	page.UpdateChecksum()
	if err := d.writeAt(id, page); err != nil {
		return err
	}
	return fdatasync(d.file)
}

// AllocatePage assigns a new page id, preferring slots freed by DeletePage,
// and returns it with zeroed initial content.
func (d *DataFile) AllocatePage() (base.PageID, *base.Page, error) {
	if d.file == nil {
		return 0, nil, base.ErrFileClosed
	}

	var id base.PageID
	if n := len(d.free); n > 0 {
		id = d.free[n-1]
		d.free = d.free[:n-1]
		delete(d.deleted, id)
	} else {
		id = base.PageID(d.numPages)
		d.numPages++
	}

	page := &base.Page{}
	page.SetID(id)
	page.UpdateChecksum()
	if err := d.writeAt(id, page); err != nil {
		return 0, nil, err
	}
	return id, page, nil
}

// DeletePage removes the page: the slot is zeroed, flagged deleted on disk,
// and queued for reuse.
func (d *DataFile) DeletePage(id base.PageID) error {
	if d.file == nil {
		return base.ErrFileClosed
	}
	if uint64(id) >= d.numPages {
		return base.ErrPageOutOfBounds
	}
	if _, gone := d.deleted[id]; gone {
		return base.ErrPageDeleted
	}

	page := &base.Page{}
	page.SetID(id)
	page.SetFlags(base.FlagDeleted)
	page.UpdateChecksum()
	if err := d.writeAt(id, page); err != nil {
		return err
	}
	d.free = append(d.free, id)
	d.deleted[id] = struct{}{}
	return fdatasync(d.file)
}

// Sync flushes file data to disk.
func (d *DataFile) Sync() error {
	if d.file == nil {
		return base.ErrFileClosed
	}
	return fdatasync(d.file)
}

// Close syncs and closes the file. Idempotent.
func (d *DataFile) Close() error {
	if d.file == nil {
		return nil
	}
	err := fdatasync(d.file)
	if cerr := d.file.Close(); err == nil {
		err = cerr
	}
	d.file = nil
	return err
}

func (d *DataFile) writeAt(id base.PageID, page *base.Page) error {
	offset := int64(id) * base.PageSize
	n, err := d.file.WriteAt(page.Data[:], offset)
	if err != nil {
		return fmt.Errorf("write page %d of %s: %w", id, d.path, err)
	}
	if n != base.PageSize {
		return fmt.Errorf("short write: wrote %d bytes, expected %d", n, base.PageSize)
	}
	return nil
}

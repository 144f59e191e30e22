package bufpool

import (
	"errors"
	"fmt"

	"bufpool/internal/base"
	"bufpool/internal/directory"
)

// Pool is the buffer pool manager: it mediates all access between on-disk
// pages and in-memory frames, tracks pin and reference state per frame, and
// picks eviction victims with a clock (second-chance) sweep, writing dirty
// victims back to their file before the frame is reused.
//
// A Pool is single-threaded: one caller at a time, every operation runs to
// completion before returning. Callers address pages only by (file, page id)
// and receive page handles that are valid while the page stays pinned.
type Pool struct {
	frames []base.Page // frame storage arena, parallel to descs
	descs  []frameDesc
	dir    *directory.Directory
	hand   int // clock hand, persists across calls
	log    Logger
	closed bool
	stats  Stats
}

// Stats counts pool activity since construction. Diagnostic only.
type Stats struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	WriteBacks uint64
}

// New creates a pool with a fixed number of frames. The frame count is
// immutable for the pool's lifetime.
func New(poolSize int, opts ...Option) (*Pool, error) {
	if poolSize <= 0 {
		return nil, ErrInvalidPoolSize
	}

	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &Pool{
		frames: make([]base.Page, poolSize),
		descs:  make([]frameDesc, poolSize),
		dir:    directory.New(poolSize),
		hand:   poolSize - 1, // first advance inspects frame 0
		log:    options.logger,
	}, nil
}

// Size returns the fixed number of frames.
func (p *Pool) Size() int {
	return len(p.descs)
}

// allocFrame finds or frees exactly one frame to host a new page.
//
// The sweep is a bounded iteration: at most 2×poolSize inspections. One full
// revolution clears every reference bit at most once; a second revolution
// either finds a true victim or proves the pool is exhausted. No recursion,
// and pin counts are never touched from in here.
func (p *Pool) allocFrame() (int, error) {
	n := len(p.descs)
	for i := 0; i < 2*n; i++ {
		p.hand = (p.hand + 1) % n
		d := &p.descs[p.hand]

		if !d.occupied {
			return p.hand, nil
		}
		if d.referenced {
			// second chance: skip once, clear the bit
			d.referenced = false
			continue
		}
		if d.pinCount > 0 {
			continue
		}

		// victim found
		if d.dirty {
			if err := d.file.WritePage(d.page, &p.frames[p.hand]); err != nil {
				return 0, fmt.Errorf("write back page %d of %s: %w", d.page, d.file.ID(), err)
			}
			d.dirty = false
			p.stats.WriteBacks++
		}
		if err := p.dir.Remove(d.key()); err != nil {
			// occupied frame without a directory entry: table corruption
			return 0, fmt.Errorf("evict frame %d: %w", p.hand, errors.Join(ErrBadBuffer, err))
		}
		p.log.Info("evicted page", "file", d.file.ID(), "page", d.page, "frame", p.hand)
		d.clear()
		p.stats.Evictions++
		return p.hand, nil
	}
	return 0, ErrBufferExceeded
}

// FetchPage pins the page and returns its in-memory content. On a hit the
// resident frame's reference bit is set and its pin count incremented; on a
// miss the page is read from the file into a freed frame. Either way the
// caller holds exactly one new pin and must eventually UnpinPage.
func (p *Pool) FetchPage(file File, pageID base.PageID) (*base.Page, error) {
	if p.closed {
		return nil, ErrPoolClosed
	}

	key := directory.Key{File: file.ID(), Page: pageID}
	if frame, err := p.dir.Lookup(key); err == nil {
		d := &p.descs[frame]
		d.referenced = true
		d.pin()
		p.stats.Hits++
		return &p.frames[frame], nil
	}
	p.stats.Misses++

	frame, err := p.allocFrame()
	if err != nil {
		return nil, err
	}
	content, err := file.ReadPage(pageID)
	if err != nil {
		return nil, fmt.Errorf("read page %d of %s: %w", pageID, key.File, err)
	}
	if err := p.dir.Insert(key, frame); err != nil {
		return nil, err
	}
	p.descs[frame].set(file, pageID)
	p.frames[frame] = *content
	return &p.frames[frame], nil
}

// UnpinPage releases one pin. A page that is no longer resident is fine to
// unpin (it was evicted or never fetched): that is a no-op. Unpinning a
// resident page with no outstanding pins returns ErrPageNotPinned.
//
// When dirty is true the frame's dirty bit is set. The bit is sticky: a later
// unpin with dirty=false does not clear it.
func (p *Pool) UnpinPage(file File, pageID base.PageID, dirty bool) error {
	if p.closed {
		return ErrPoolClosed
	}

	frame, err := p.dir.Lookup(directory.Key{File: file.ID(), Page: pageID})
	if errors.Is(err, directory.ErrNotFound) {
		return nil
	}
	d := &p.descs[frame]
	if err := d.unpin(); err != nil {
		return err
	}
	if dirty {
		d.dirty = true
	}
	return nil
}

// AllocPage asks the file for a new page, loads it into a freed frame with one
// pin held, and returns the assigned id together with the frame's content for
// the caller to initialize.
func (p *Pool) AllocPage(file File) (base.PageID, *base.Page, error) {
	if p.closed {
		return 0, nil, ErrPoolClosed
	}

	pageID, content, err := file.AllocatePage()
	if err != nil {
		return 0, nil, fmt.Errorf("allocate page in %s: %w", file.ID(), err)
	}
	frame, err := p.allocFrame()
	if err != nil {
		return 0, nil, err
	}
	if err := p.dir.Insert(directory.Key{File: file.ID(), Page: pageID}, frame); err != nil {
		return 0, nil, err
	}
	p.descs[frame].set(file, pageID)
	p.frames[frame] = *content
	return pageID, &p.frames[frame], nil
}

// FlushFile writes back every dirty resident page of the file and releases all
// of its frames. Any pinned page aborts the whole call with ErrPagePinned;
// frames already released by the scan stay released (enumeration is in frame
// index order, and partial effects up to the failing frame are observable).
// A frame claiming the file while in an invalid state returns ErrBadBuffer.
func (p *Pool) FlushFile(file File) error {
	if p.closed {
		return ErrPoolClosed
	}

	id := file.ID()
	for i := range p.descs {
		d := &p.descs[i]
		if d.file == nil || d.file.ID() != id {
			continue
		}
		if d.pinCount > 0 {
			return fmt.Errorf("flush %s: page %d pinned in frame %d: %w", id, d.page, i, ErrPagePinned)
		}
		if !d.occupied {
			return fmt.Errorf("flush %s: frame %d owned but unoccupied: %w", id, i, ErrBadBuffer)
		}
		if d.dirty {
			if err := d.file.WritePage(d.page, &p.frames[i]); err != nil {
				return fmt.Errorf("flush %s: write back page %d: %w", id, d.page, err)
			}
			d.dirty = false
			p.stats.WriteBacks++
		}
		if err := p.dir.Remove(d.key()); err != nil {
			return fmt.Errorf("flush %s: frame %d: %w", id, i, errors.Join(ErrBadBuffer, err))
		}
		d.clear()
	}
	p.log.Info("flushed file", "file", id)
	return nil
}

// DisposePage drops the page from the pool if resident (no write-back: the
// page is being destroyed, not evicted) and tells the file to delete its
// on-disk storage. A page that was never resident is fine.
func (p *Pool) DisposePage(file File, pageID base.PageID) error {
	if p.closed {
		return ErrPoolClosed
	}

	key := directory.Key{File: file.ID(), Page: pageID}
	if frame, err := p.dir.Lookup(key); err == nil {
		if err := p.dir.Remove(key); err != nil {
			return err
		}
		p.descs[frame].clear()
	}
	return file.DeletePage(pageID)
}

// Close flushes every file that still has resident pages and marks the pool
// closed. Fails with ErrPagePinned if any page is still pinned.
func (p *Pool) Close() error {
	if p.closed {
		return nil
	}
	for {
		var f File
		for i := range p.descs {
			if p.descs[i].occupied {
				f = p.descs[i].file
				break
			}
		}
		if f == nil {
			break
		}
		if err := p.FlushFile(f); err != nil {
			return err
		}
	}
	p.closed = true
	return nil
}

// DumpFrames returns a snapshot of every frame's state in index order.
func (p *Pool) DumpFrames() []FrameInfo {
	infos := make([]FrameInfo, len(p.descs))
	for i := range p.descs {
		d := &p.descs[i]
		info := FrameInfo{
			Frame:      i,
			Occupied:   d.occupied,
			PinCount:   d.pinCount,
			Referenced: d.referenced,
			Dirty:      d.dirty,
		}
		if d.occupied {
			info.File = d.file.ID()
			info.Page = d.page
		}
		infos[i] = info
	}
	return infos
}

// Stats returns activity counters.
func (p *Pool) Stats() Stats {
	return p.stats
}

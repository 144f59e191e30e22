package bufpool

import (
	"bufpool/internal/base"
	"bufpool/internal/directory"
)

// frameDesc is the per-frame bookkeeping the pool keeps alongside the frame
// storage arena. The pool is the sole owner and mutator; everything else sees
// frame indices or short-lived page handles.
//
// Invariant: an unoccupied frame has pinCount == 0, referenced == false,
// dirty == false, and no page directory entry pointing at it.
type frameDesc struct {
	file       File
	page       base.PageID
	occupied   bool
	pinCount   int
	referenced bool
	dirty      bool
}

// set marks the frame as holding a freshly loaded or newly allocated page,
// with one pin held by the caller and its second chance armed.
func (d *frameDesc) set(file File, page base.PageID) {
	d.file = file
	d.page = page
	d.occupied = true
	d.pinCount = 1
	d.referenced = true
	d.dirty = false
}

// clear resets the frame to the unoccupied baseline. The caller must already
// have removed any page directory entry for this frame.
func (d *frameDesc) clear() {
	*d = frameDesc{}
}

func (d *frameDesc) pin() {
	d.pinCount++
}

func (d *frameDesc) unpin() error {
	if d.pinCount == 0 {
		return ErrPageNotPinned
	}
	d.pinCount--
	return nil
}

// key returns the page directory key for the frame's owner.
func (d *frameDesc) key() directory.Key {
	return directory.Key{File: d.file.ID(), Page: d.page}
}

// FrameInfo is a diagnostic snapshot of one frame's state, returned by
// Pool.DumpFrames. Debugging and test aid, not production control flow.
type FrameInfo struct {
	Frame      int
	Occupied   bool
	File       base.FileID
	Page       base.PageID
	PinCount   int
	Referenced bool
	Dirty      bool
}

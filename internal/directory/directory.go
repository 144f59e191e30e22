// Package directory maps resident pages to buffer frames.
package directory

import (
	"errors"

	"bufpool/internal/base"
)

var (
	ErrNotFound  = errors.New("page directory: entry not found")
	ErrDuplicate = errors.New("page directory: entry already exists")
)

// Key identifies a page globally: which file it belongs to and its id within
// that file. A key maps to at most one frame at a time.
type Key struct {
	File base.FileID
	Page base.PageID
}

// Directory is the associative index from (file, page) to frame index.
// It knows nothing about pinning or eviction; the pool inserts an entry when a
// page is loaded and removes it before the frame is cleared.
type Directory struct {
	entries map[Key]int
}

// New creates an empty directory sized for the given number of frames.
func New(capacity int) *Directory {
	return &Directory{
		entries: make(map[Key]int, capacity),
	}
}

// Lookup returns the frame index holding the page, or ErrNotFound.
func (d *Directory) Lookup(k Key) (int, error) {
	frame, ok := d.entries[k]
	if !ok {
		return 0, ErrNotFound
	}
	return frame, nil
}

// Insert maps a key to a frame index. The key must not already be mapped;
// callers remove stale entries before reinserting.
func (d *Directory) Insert(k Key, frame int) error {
	if _, ok := d.entries[k]; ok {
		return ErrDuplicate
	}
	d.entries[k] = frame
	return nil
}

// Remove deletes the entry for the key, or returns ErrNotFound.
func (d *Directory) Remove(k Key) error {
	if _, ok := d.entries[k]; !ok {
		return ErrNotFound
	}
	delete(d.entries, k)
	return nil
}

// Len returns the number of resident entries.
func (d *Directory) Len() int {
	return len(d.entries)
}

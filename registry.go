package bufpool

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/elastic/go-freelru"
)

// FileRegistry caches open DataFile handles by path so repeated opens of the
// same file return the same handle. The cache is a bounded LRU; when it
// overflows, the least recently used handle is closed and evicted.
//
// Size the capacity above the number of files with pages resident in the
// pool: evicting a handle closes it, and the pool cannot write back to a
// closed file.
type FileRegistry struct {
	lru *freelru.LRU[string, *DataFile]
	log Logger
}

// NewFileRegistry creates a registry holding at most capacity open handles.
func NewFileRegistry(capacity uint32, opts ...Option) (*FileRegistry, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	lru, err := freelru.New[string, *DataFile](capacity, hashPath)
	if err != nil {
		return nil, err
	}

	r := &FileRegistry{lru: lru, log: options.logger}
	lru.SetOnEvict(func(path string, f *DataFile) {
		r.log.Info("closing evicted file handle", "path", path)
		if err := f.Close(); err != nil {
			r.log.Warn("close evicted file", "path", path, "error", err)
		}
	})
	return r, nil
}

func hashPath(path string) uint32 {
	return uint32(xxhash.Sum64String(path))
}

// Open returns the cached handle for the path, opening the file on first use.
func (r *FileRegistry) Open(path string) (*DataFile, error) {
	if f, ok := r.lru.Get(path); ok {
		return f, nil
	}
	f, err := OpenDataFile(path)
	if err != nil {
		return nil, err
	}
	r.lru.Add(path, f)
	return f, nil
}

// Remove closes and drops the handle for the path, if cached.
func (r *FileRegistry) Remove(path string) error {
	f, ok := r.lru.Peek(path)
	if !ok {
		return nil
	}
	err := f.Close()
	r.lru.Remove(path)
	return err
}

// Len returns the number of cached handles.
func (r *FileRegistry) Len() int {
	return r.lru.Len()
}

// Close closes every cached handle and empties the registry.
func (r *FileRegistry) Close() error {
	var errs []error
	for _, path := range r.lru.Keys() {
		if f, ok := r.lru.Peek(path); ok {
			if err := f.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", path, err))
			}
		}
	}
	r.lru.Purge()
	return errors.Join(errs...)
}

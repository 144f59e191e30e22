package base

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

const (
	PageSize = 4096

	// PageHeaderSize covers Checksum(8) + PageID(8) + Flags(8)
	PageHeaderSize = 24

	// PayloadSize is the number of caller-usable bytes per page
	PayloadSize = PageSize - PageHeaderSize
)

// PageID identifies a page within a single file.
type PageID uint64

// FileID identifies a file. Files are named by their path, which is how
// they key the page directory and scope flush/dispose operations.
type FileID string

// Page is one raw disk page (4096 bytes).
//
// PAGE LAYOUT:
// ┌────────────────────────────────────────────────────────┐
// │ Header (24 bytes)                                      │
// │ Checksum (8) | PageID (8) | Flags (8)                  │
// ├────────────────────────────────────────────────────────┤
// │ Payload (4072 bytes)                                   │
// └────────────────────────────────────────────────────────┘
//
// The checksum is an xxhash64 of everything after the checksum field and is
// stamped by the file layer on write, verified on read.
type Page struct {
	Data [PageSize]byte
}

// ID returns the page id stored in the header.
func (p *Page) ID() PageID {
	return PageID(binary.LittleEndian.Uint64(p.Data[8:16]))
}

// SetID stamps the page id into the header.
func (p *Page) SetID(id PageID) {
	binary.LittleEndian.PutUint64(p.Data[8:16], uint64(id))
}

// StoredChecksum returns the checksum recorded in the header.
func (p *Page) StoredChecksum() uint64 {
	return binary.LittleEndian.Uint64(p.Data[0:8])
}

// UpdateChecksum recomputes the checksum over the page body and stores it.
func (p *Page) UpdateChecksum() {
	binary.LittleEndian.PutUint64(p.Data[0:8], p.ComputeChecksum())
}

// ComputeChecksum hashes everything after the checksum field.
func (p *Page) ComputeChecksum() uint64 {
	return xxhash.Sum64(p.Data[8:])
}

// VerifyChecksum returns ErrInvalidChecksum when the stored checksum does not
// match the page body.
func (p *Page) VerifyChecksum() error {
	if p.StoredChecksum() != p.ComputeChecksum() {
		return ErrInvalidChecksum
	}
	return nil
}

// FlagDeleted marks a page slot whose page has been deleted; the slot is
// reusable by a later allocation.
const FlagDeleted uint64 = 1 << 0

// Flags returns the header flags.
func (p *Page) Flags() uint64 {
	return binary.LittleEndian.Uint64(p.Data[16:24])
}

// SetFlags stores the header flags.
func (p *Page) SetFlags(f uint64) {
	binary.LittleEndian.PutUint64(p.Data[16:24], f)
}

// HeaderFlags decodes the flags field from a raw header prefix, letting the
// file layer inspect slots without reading whole pages.
func HeaderFlags(hdr []byte) uint64 {
	return binary.LittleEndian.Uint64(hdr[16:24])
}

// Payload returns the caller-usable region of the page.
func (p *Page) Payload() []byte {
	return p.Data[PageHeaderSize:]
}

// Reset zeroes the page.
func (p *Page) Reset() {
	p.Data = [PageSize]byte{}
}

package bufpool

import "bufpool/internal/base"

// File is the on-disk collaborator the pool loads pages from and writes dirty
// victims back to. DataFile is the disk-backed implementation; tests substitute
// in-memory fakes.
//
// All calls are synchronous. WritePage is assumed durable on return.
type File interface {
	// ID returns the file's identity, used to key the page directory and to
	// scope FlushFile and DisposePage.
	ID() base.FileID

	// ReadPage returns the stored content of a page. Fails if the page does
	// not exist in the file.
	ReadPage(id base.PageID) (*base.Page, error)

	// WritePage overwrites the stored page.
	WritePage(id base.PageID, page *base.Page) error

	// AllocatePage assigns a new page id and returns it with initial content.
	AllocatePage() (base.PageID, *base.Page, error)

	// DeletePage removes the page from the file's storage.
	DeletePage(id base.PageID) error
}

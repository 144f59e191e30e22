package bufpool

import (
	"errors"

	"bufpool/internal/base"
	"bufpool/internal/directory"
)

//goland:noinspection GoUnusedGlobalVariable
var (
	// ErrPageNotPinned reports an unpin of a resident page whose pin count is
	// already zero. This is a caller protocol violation, not a retryable
	// condition.
	ErrPageNotPinned = errors.New("page is not pinned")

	// ErrPagePinned reports a refusal to flush a file while one of its pages
	// is still pinned.
	ErrPagePinned = errors.New("file has pinned pages")

	// ErrBadBuffer reports a frame whose descriptor state violates the table
	// invariant. Treated as fatal to the operation that found it.
	ErrBadBuffer = errors.New("bad buffer: invalid frame state")

	// ErrBufferExceeded reports that the replacement sweep exhausted the pool
	// without finding a victim. The caller must release pins before retrying.
	ErrBufferExceeded = errors.New("buffer exceeded: all frames pinned or referenced")

	// ErrPoolClosed reports an operation on a closed pool.
	ErrPoolClosed = errors.New("buffer pool is closed")

	// ErrInvalidPoolSize reports a non-positive pool size at construction.
	ErrInvalidPoolSize = errors.New("pool size must be positive")

	ErrNotFound  = directory.ErrNotFound
	ErrDuplicate = directory.ErrDuplicate

	ErrPageOutOfBounds = base.ErrPageOutOfBounds
	ErrInvalidChecksum = base.ErrInvalidChecksum
	ErrPageDeleted     = base.ErrPageDeleted
	ErrFileClosed      = base.ErrFileClosed
)

package base

import "errors"

var (
	ErrPageOutOfBounds = errors.New("page id beyond end of file")
	ErrInvalidChecksum = errors.New("invalid page checksum")
	ErrPageDeleted     = errors.New("page has been deleted")
	ErrFileClosed      = errors.New("file is closed")
)

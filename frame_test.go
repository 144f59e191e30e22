package bufpool

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bufpool/internal/base"
)

func TestFrameDescSet(t *testing.T) {
	t.Parallel()

	f := newMemFile("frames.db", 0)
	d := &frameDesc{}
	d.set(f, base.PageID(9))

	assert.True(t, d.occupied)
	assert.Equal(t, 1, d.pinCount)
	assert.True(t, d.referenced)
	assert.False(t, d.dirty)
	assert.Equal(t, base.PageID(9), d.page)
	assert.Equal(t, f.ID(), d.key().File)
}

func TestFrameDescClear(t *testing.T) {
	t.Parallel()

	d := &frameDesc{}
	d.set(newMemFile("frames.db", 0), base.PageID(3))
	d.dirty = true
	d.clear()

	assert.False(t, d.occupied)
	assert.Zero(t, d.pinCount)
	assert.False(t, d.referenced)
	assert.False(t, d.dirty)
	assert.Nil(t, d.file)
}

func TestFrameDescPinUnpin(t *testing.T) {
	t.Parallel()

	d := &frameDesc{}
	d.set(newMemFile("frames.db", 0), base.PageID(1))

	d.pin()
	assert.Equal(t, 2, d.pinCount)

	assert.NoError(t, d.unpin())
	assert.NoError(t, d.unpin())
	assert.Equal(t, 0, d.pinCount)

	assert.ErrorIs(t, d.unpin(), ErrPageNotPinned)
	assert.Equal(t, 0, d.pinCount)
}

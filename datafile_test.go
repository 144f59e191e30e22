package bufpool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bufpool/internal/base"
)

func openTestFile(t *testing.T) *DataFile {
	t.Helper()
	d, err := OpenDataFile(filepath.Join(t.TempDir(), "pages.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestDataFileRoundTrip(t *testing.T) {
	t.Parallel()

	d := openTestFile(t)

	id, pg, err := d.AllocatePage()
	require.NoError(t, err)
	assert.Equal(t, base.PageID(0), id)

	copy(pg.Payload(), []byte("persisted"))
	require.NoError(t, d.WritePage(id, pg))

	got, err := d.ReadPage(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got.Payload()[:9])
	assert.Equal(t, id, got.ID())
}

func TestDataFileChecksumCorruption(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pages.db")
	d, err := OpenDataFile(path)
	require.NoError(t, err)

	id, pg, err := d.AllocatePage()
	require.NoError(t, err)
	copy(pg.Payload(), []byte("fragile"))
	require.NoError(t, d.WritePage(id, pg))
	require.NoError(t, d.Close())

	// flip one payload byte on disk behind the file's back
	raw, err := os.OpenFile(path, os.O_RDWR, 0600)
	require.NoError(t, err)
	_, err = raw.WriteAt([]byte{0xFF}, int64(id)*base.PageSize+base.PageHeaderSize)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	d, err = OpenDataFile(path)
	require.NoError(t, err)
	defer d.Close()

	_, err = d.ReadPage(id)
	assert.ErrorIs(t, err, base.ErrInvalidChecksum)
}

func TestDataFileDeleteAndReuse(t *testing.T) {
	t.Parallel()

	d := openTestFile(t)

	id0, _, err := d.AllocatePage()
	require.NoError(t, err)
	id1, _, err := d.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, uint64(2), d.NumPages())

	require.NoError(t, d.DeletePage(id0))
	_, err = d.ReadPage(id0)
	assert.ErrorIs(t, err, base.ErrPageDeleted)
	assert.ErrorIs(t, d.DeletePage(id0), base.ErrPageDeleted)

	// the freed slot is handed out again instead of growing the file
	reused, pg, err := d.AllocatePage()
	require.NoError(t, err)
	assert.Equal(t, id0, reused)
	require.Equal(t, uint64(2), d.NumPages())

	require.NoError(t, d.WritePage(reused, pg))
	_, err = d.ReadPage(reused)
	assert.NoError(t, err)

	_, err = d.ReadPage(id1)
	assert.NoError(t, err)
}

func TestDataFileReopenScansDeleted(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pages.db")
	d, err := OpenDataFile(path)
	require.NoError(t, err)

	var ids []base.PageID
	for i := 0; i < 3; i++ {
		id, _, err := d.AllocatePage()
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, d.DeletePage(ids[1]))
	require.NoError(t, d.Close())

	d, err = OpenDataFile(path)
	require.NoError(t, err)
	defer d.Close()

	require.Equal(t, uint64(3), d.NumPages())
	_, err = d.ReadPage(ids[1])
	assert.ErrorIs(t, err, base.ErrPageDeleted)

	reused, _, err := d.AllocatePage()
	require.NoError(t, err)
	assert.Equal(t, ids[1], reused)
}

func TestDataFileOutOfBounds(t *testing.T) {
	t.Parallel()

	d := openTestFile(t)

	_, err := d.ReadPage(99)
	assert.ErrorIs(t, err, base.ErrPageOutOfBounds)
	assert.ErrorIs(t, d.WritePage(99, &base.Page{}), base.ErrPageOutOfBounds)
	assert.ErrorIs(t, d.DeletePage(99), base.ErrPageOutOfBounds)
}

func TestDataFileClosed(t *testing.T) {
	t.Parallel()

	d := openTestFile(t)
	id, _, err := d.AllocatePage()
	require.NoError(t, err)

	require.NoError(t, d.Close())
	assert.NoError(t, d.Close(), "close is idempotent")

	_, err = d.ReadPage(id)
	assert.ErrorIs(t, err, base.ErrFileClosed)
	assert.ErrorIs(t, d.WritePage(id, &base.Page{}), base.ErrFileClosed)
	_, _, err = d.AllocatePage()
	assert.ErrorIs(t, err, base.ErrFileClosed)
	assert.ErrorIs(t, d.DeletePage(id), base.ErrFileClosed)
	assert.ErrorIs(t, d.Sync(), base.ErrFileClosed)
}

// DataFile through the pool: fetch, mutate, evict, reread from disk.
func TestPoolWithDataFile(t *testing.T) {
	t.Parallel()

	p, err := New(1)
	require.NoError(t, err)
	d := openTestFile(t)

	id, pg, err := p.AllocPage(d)
	require.NoError(t, err)
	copy(pg.Payload(), []byte("durable"))
	require.NoError(t, p.UnpinPage(d, id, true))

	// force eviction through the single frame
	id2, _, err := p.AllocPage(d)
	require.NoError(t, err)
	require.NoError(t, p.UnpinPage(d, id2, false))

	pg, err = p.FetchPage(d, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("durable"), pg.Payload()[:7])
	require.NoError(t, p.UnpinPage(d, id, false))
	require.NoError(t, p.Close())
}

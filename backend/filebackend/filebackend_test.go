package filebackend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tileforge/pmtiles/pmtiles"
)

func TestReadRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.bin")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	b, err := Open(path)
	require.NoError(t, err)
	defer b.Close()

	data, err := b.ReadRange(context.Background(), 3, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("3456"), data)
}

func TestETagChangesWithContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.bin")
	require.NoError(t, os.WriteFile(path, []byte("aaaa"), 0o644))

	b, err := Open(path)
	require.NoError(t, err)
	defer b.Close()

	etag1, err := b.ETag(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("aaaaaaaa"), 0o644))
	etag2, err := b.ETag(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, etag1, etag2)
}

func TestReadRangePastEOF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.bin")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	b, err := Open(path)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.ReadRange(context.Background(), 0, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pmtiles.ErrInvalidRange))
}

package pmtiles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractByZoom(t *testing.T) {
	tiles := map[uint64][]byte{}
	idZ0, _ := ZxyToID(0, 0, 0)
	idZ1, _ := ZxyToID(1, 0, 0)
	idZ2, _ := ZxyToID(2, 0, 0)
	tiles[idZ0] = []byte("z0")
	tiles[idZ1] = []byte("z1")
	tiles[idZ2] = []byte("z2")
	sink := buildTestArchive(t, tiles)
	r, err := Open(context.Background(), "src", &memBackend{data: sink.buf})
	require.NoError(t, err)

	outSink := &memSink{}
	err = ExtractByZoom(context.Background(), r, outSink, t.TempDir(), 0, 1, FinalizeParams{Metadata: Metadata{}})
	require.NoError(t, err)

	out, err := Open(context.Background(), "out", &memBackend{data: outSink.buf})
	require.NoError(t, err)

	_, ok, err := out.GetTileByID(context.Background(), idZ0)
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = out.GetTileByID(context.Background(), idZ1)
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = out.GetTileByID(context.Background(), idZ2)
	require.NoError(t, err)
	assert.False(t, ok, "zoom 2 tile should have been excluded from the extract")
}

func TestExtractByTileIDRange(t *testing.T) {
	tiles := map[uint64][]byte{0: []byte("a"), 1: []byte("b"), 2: []byte("c"), 3: []byte("d")}
	sink := buildTestArchive(t, tiles)
	r, err := Open(context.Background(), "src", &memBackend{data: sink.buf})
	require.NoError(t, err)

	outSink := &memSink{}
	err = ExtractByTileIDRange(context.Background(), r, outSink, t.TempDir(), 1, 2, FinalizeParams{Metadata: Metadata{}})
	require.NoError(t, err)

	out, err := Open(context.Background(), "out", &memBackend{data: outSink.buf})
	require.NoError(t, err)
	h := out.Header
	assert.Equal(t, uint64(2), h.AddressedTilesCount)
}

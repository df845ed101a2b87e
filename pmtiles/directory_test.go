package pmtiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeEntriesRoundtrip(t *testing.T) {
	entries := []Entry{
		{TileID: 0, Offset: 0, Length: 100, RunLength: 1},
		{TileID: 1, Offset: 100, Length: 200, RunLength: 3},
		{TileID: 10, Offset: 300, Length: 50, RunLength: 1},
	}
	for _, c := range []Compression{CompressionNone, CompressionGzip, CompressionBrotli, CompressionZstd} {
		encoded, err := SerializeEntries(entries, c)
		require.NoError(t, err)
		got, err := DeserializeEntries(encoded, c)
		require.NoError(t, err)
		assert.Equal(t, entries, got)
	}
}

func TestSerializeEntriesContiguousOffsets(t *testing.T) {
	entries := []Entry{
		{TileID: 0, Offset: 0, Length: 10, RunLength: 1},
		{TileID: 1, Offset: 10, Length: 10, RunLength: 1},
		{TileID: 2, Offset: 20, Length: 10, RunLength: 1},
	}
	encoded, err := SerializeEntries(entries, CompressionNone)
	require.NoError(t, err)
	got, err := DeserializeEntries(encoded, CompressionNone)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestDeserializeEntriesTruncated(t *testing.T) {
	entries := []Entry{{TileID: 5, Offset: 0, Length: 10, RunLength: 1}}
	encoded, err := SerializeEntries(entries, CompressionNone)
	require.NoError(t, err)
	_, err = DeserializeEntries(encoded[:len(encoded)-1], CompressionNone)
	assert.Error(t, err)
}

func TestDeserializeEntriesRejectsNonAscendingIDs(t *testing.T) {
	// Hand-build a 2-entry stream with a zero delta for the second tile ID,
	// which SerializeEntries itself would never emit but a corrupt or
	// maliciously crafted archive could.
	var buf []byte
	buf = appendUvarint(buf, 2)  // count
	buf = appendUvarint(buf, 5) // first tile ID (absolute)
	buf = appendUvarint(buf, 0) // second tile ID delta: 0 -> not strictly ascending
	buf = appendUvarint(buf, 1) // run lengths
	buf = appendUvarint(buf, 1)
	buf = appendUvarint(buf, 10) // lengths
	buf = appendUvarint(buf, 10)
	buf = appendUvarint(buf, 1) // offsets
	buf = appendUvarint(buf, 11)

	_, err := DeserializeEntries(buf, CompressionNone)
	assert.ErrorIs(t, err, ErrDirectoryTruncated)
}

func TestFindTile(t *testing.T) {
	entries := []Entry{
		{TileID: 0, Offset: 0, Length: 10, RunLength: 1},
		{TileID: 5, Offset: 10, Length: 10, RunLength: 3}, // covers 5,6,7
		{TileID: 10, Offset: 20, Length: 10, RunLength: 1},
	}

	e, ok := FindTile(entries, 6)
	require.True(t, ok)
	assert.Equal(t, uint64(5), e.TileID)

	_, ok = FindTile(entries, 8)
	assert.False(t, ok)

	_, ok = FindTile(entries, 100)
	assert.False(t, ok)

	e, ok = FindTile(entries, 0)
	require.True(t, ok)
	assert.Equal(t, uint64(0), e.TileID)
}

func TestFindTileLeafPointer(t *testing.T) {
	entries := []Entry{
		{TileID: 0, Offset: 0, Length: 50, RunLength: 0},
		{TileID: 1000, Offset: 50, Length: 40, RunLength: 0},
	}
	e, ok := FindTile(entries, 500)
	require.True(t, ok)
	assert.Equal(t, uint64(0), e.TileID)
	assert.Equal(t, uint32(0), e.RunLength)

	e, ok = FindTile(entries, 1500)
	require.True(t, ok)
	assert.Equal(t, uint64(1000), e.TileID)
}

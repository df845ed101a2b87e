package pmtiles

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverDeduplicatesByByteEquality(t *testing.T) {
	r := newResolver()
	_, isNew := r.addTile(0, []byte("abc"))
	assert.True(t, isNew)

	toWrite, isNew := r.addTile(5, []byte("abc"))
	assert.False(t, isNew)
	assert.Nil(t, toWrite)
	require.Len(t, r.entries, 2)
	assert.Equal(t, r.entries[0].Offset, r.entries[1].Offset)
}

func TestResolverCoalescesConsecutiveRuns(t *testing.T) {
	r := newResolver()
	r.addTile(0, []byte("x"))
	r.addTile(1, []byte("x"))
	r.addTile(2, []byte("x"))
	require.Len(t, r.entries, 1)
	assert.Equal(t, uint32(3), r.entries[0].RunLength)
}

func TestResolverCapsRunLengthAtUint32Max(t *testing.T) {
	r := newResolver()
	toWrite, isNew := r.addTile(0, []byte("x"))
	require.True(t, isNew)
	require.NotNil(t, toWrite)

	r.entries[0].RunLength = math.MaxUint32

	// The tile directly after the full run is adjacent and identical, so only
	// the cap keeps it from being coalesced.
	_, isNew = r.addTile(math.MaxUint32, []byte("x"))
	assert.False(t, isNew)
	require.Len(t, r.entries, 2, "a new Entry must be started once RunLength would overflow uint32")
	assert.Equal(t, uint32(math.MaxUint32), r.entries[0].RunLength)
	assert.Equal(t, uint32(1), r.entries[1].RunLength)
	assert.Equal(t, uint64(math.MaxUint32), r.entries[1].TileID)
}

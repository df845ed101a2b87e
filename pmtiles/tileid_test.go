package pmtiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZxyToIDRoundtrip(t *testing.T) {
	cases := []struct{ z uint8; x, y uint32 }{
		{0, 0, 0},
		{1, 0, 0},
		{1, 1, 1},
		{3, 4, 5},
		{9, 123, 456},
		{31, 0, 0},
	}
	for _, c := range cases {
		id, err := ZxyToID(c.z, c.x, c.y)
		require.NoError(t, err)
		z, x, y := IDToZxy(id)
		assert.Equal(t, c.z, z)
		assert.Equal(t, c.x, x)
		assert.Equal(t, c.y, y)
	}
}

func TestZxyToIDKnownValues(t *testing.T) {
	id, err := ZxyToID(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)

	id, err = ZxyToID(1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestZxyToIDInvalidCoordinate(t *testing.T) {
	_, err := ZxyToID(32, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)

	_, err = ZxyToID(2, 4, 0)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestManyTileIDsAreUnique(t *testing.T) {
	seen := make(map[uint64]bool)
	for z := uint8(0); z < 10; z++ {
		dim := uint32(1) << z
		for x := uint32(0); x < dim; x++ {
			for y := uint32(0); y < dim; y++ {
				id, err := ZxyToID(z, x, y)
				require.NoError(t, err)
				assert.False(t, seen[id], "duplicate id %d at z=%d x=%d y=%d", id, z, x, y)
				seen[id] = true
			}
		}
	}
}

func TestParentID(t *testing.T) {
	id, err := ZxyToID(3, 4, 5)
	require.NoError(t, err)
	parent := ParentID(id)
	z, x, y := IDToZxy(parent)
	assert.Equal(t, uint8(2), z)
	assert.Equal(t, uint32(2), x)
	assert.Equal(t, uint32(2), y)
}

func TestParentIDOfRoot(t *testing.T) {
	assert.Equal(t, uint64(0), ParentID(0))
}

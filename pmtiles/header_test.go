package pmtiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHeader() Header {
	return Header{
		SpecVersion:         3,
		RootOffset:          127,
		RootLength:          100,
		MetadataOffset:      227,
		MetadataLength:      50,
		LeafDirectoryOffset: 277,
		LeafDirectoryLength: 0,
		TileDataOffset:      277,
		TileDataLength:      9000,
		AddressedTilesCount: 10,
		TileEntriesCount:    10,
		TileContentsCount:   8,
		Clustered:           true,
		InternalCompression: CompressionGzip,
		TileCompression:     CompressionGzip,
		TileType:            TileTypeMVT,
		MinZoom:              0,
		MaxZoom:              14,
		MinLonE7:            -1800000000 / 10,
		MinLatE7:            -850000000 / 10,
		MaxLonE7:            1800000000 / 10,
		MaxLatE7:            850000000 / 10,
		CenterZoom:          5,
		CenterLonE7:         0,
		CenterLatE7:         0,
	}
}

func TestHeaderRoundtrip(t *testing.T) {
	h := sampleHeader()
	b := Serialize(h)
	assert.Len(t, b, HeaderLenBytes)

	got, err := Deserialize(b)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestHeaderInvalidMagic(t *testing.T) {
	b := Serialize(sampleHeader())
	b[0] = 'X'
	_, err := Deserialize(b)
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestHeaderUnsupportedVersion(t *testing.T) {
	h := sampleHeader()
	h.SpecVersion = 2
	b := Serialize(h)
	_, err := Deserialize(b)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestHeaderValidateBoundingBox(t *testing.T) {
	h := sampleHeader()
	h.MinLonE7, h.MaxLonE7 = h.MaxLonE7, h.MinLonE7
	assert.ErrorIs(t, h.Validate(), ErrInvalidBoundingBox)
}

func TestHeaderValidateZoomOrder(t *testing.T) {
	h := sampleHeader()
	h.MinZoom, h.MaxZoom = h.MaxZoom, h.MinZoom
	assert.ErrorIs(t, h.Validate(), ErrInvalidBoundingBox)
}

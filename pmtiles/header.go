package pmtiles

import (
	"bytes"
	"encoding/binary"
)

// HeaderLenBytes is the fixed size in bytes of the serialized archive header.
const HeaderLenBytes = 127

var magic = []byte("PMTiles")

// Compression identifies the byte-level compression scheme applied to either
// the internal (directory/metadata) section or the tile data section of an
// archive.
type Compression uint8

// Compression enumeration values, matching the on-disk header encoding.
const (
	CompressionUnknown Compression = 0
	CompressionNone     Compression = 1
	CompressionGzip     Compression = 2
	CompressionBrotli   Compression = 3
	CompressionZstd     Compression = 4
)

func (c Compression) valid() bool {
	return c <= CompressionZstd
}

// TileType identifies the format of tile payloads stored in an archive.
type TileType uint8

// TileType enumeration values, matching the on-disk header encoding.
const (
	TileTypeUnknown TileType = 0
	TileTypeMVT     TileType = 1
	TileTypePNG     TileType = 2
	TileTypeJPEG    TileType = 3
	TileTypeWebP    TileType = 4
	TileTypeAVIF    TileType = 5
)

func (t TileType) valid() bool {
	return t <= TileTypeAVIF
}

// Ext returns the conventional file extension for a tile type, or "" for
// TileTypeUnknown.
func (t TileType) Ext() string {
	switch t {
	case TileTypeMVT:
		return ".mvt"
	case TileTypePNG:
		return ".png"
	case TileTypeJPEG:
		return ".jpg"
	case TileTypeWebP:
		return ".webp"
	case TileTypeAVIF:
		return ".avif"
	default:
		return ""
	}
}

// Header holds the decoded fixed-size prologue of a PMTiles v3 archive: byte
// ranges for the root directory, metadata, leaf directories and tile data,
// plus compression and tiling statistics.
type Header struct {
	SpecVersion         uint8
	RootOffset          uint64
	RootLength          uint64
	MetadataOffset      uint64
	MetadataLength      uint64
	LeafDirectoryOffset uint64
	LeafDirectoryLength uint64
	TileDataOffset      uint64
	TileDataLength      uint64
	AddressedTilesCount uint64
	TileEntriesCount    uint64
	TileContentsCount   uint64
	Clustered           bool
	InternalCompression Compression
	TileCompression     Compression
	TileType            TileType
	MinZoom             uint8
	MaxZoom             uint8
	MinLonE7            int32
	MinLatE7            int32
	MaxLonE7            int32
	MaxLatE7            int32
	CenterZoom          uint8
	CenterLonE7         int32
	CenterLatE7         int32
}

// Validate checks internal consistency of a decoded header beyond what
// Deserialize already enforces structurally: zoom ordering and bounding box
// sanity.
func (h Header) Validate() error {
	if !h.InternalCompression.valid() || !h.TileCompression.valid() {
		return ErrInvalidCompression
	}
	if !h.TileType.valid() {
		return ErrInvalidTileType
	}
	if h.MinZoom > h.MaxZoom {
		return ErrInvalidBoundingBox
	}
	if h.MinLonE7 > h.MaxLonE7 || h.MinLatE7 > h.MaxLatE7 {
		return ErrInvalidBoundingBox
	}
	const e7Max = 180 * 10000000
	const e7LatMax = 90 * 10000000
	if h.MinLonE7 < -e7Max || h.MaxLonE7 > e7Max || h.MinLatE7 < -e7LatMax || h.MaxLatE7 > e7LatMax {
		return ErrInvalidBoundingBox
	}
	return nil
}

// Serialize encodes a Header into its fixed 127-byte on-disk representation.
func Serialize(h Header) []byte {
	b := make([]byte, HeaderLenBytes)
	copy(b[0:7], magic)
	b[7] = h.SpecVersion
	binary.LittleEndian.PutUint64(b[8:16], h.RootOffset)
	binary.LittleEndian.PutUint64(b[16:24], h.RootLength)
	binary.LittleEndian.PutUint64(b[24:32], h.MetadataOffset)
	binary.LittleEndian.PutUint64(b[32:40], h.MetadataLength)
	binary.LittleEndian.PutUint64(b[40:48], h.LeafDirectoryOffset)
	binary.LittleEndian.PutUint64(b[48:56], h.LeafDirectoryLength)
	binary.LittleEndian.PutUint64(b[56:64], h.TileDataOffset)
	binary.LittleEndian.PutUint64(b[64:72], h.TileDataLength)
	binary.LittleEndian.PutUint64(b[72:80], h.AddressedTilesCount)
	binary.LittleEndian.PutUint64(b[80:88], h.TileEntriesCount)
	binary.LittleEndian.PutUint64(b[88:96], h.TileContentsCount)
	if h.Clustered {
		b[96] = 1
	}
	b[97] = uint8(h.InternalCompression)
	b[98] = uint8(h.TileCompression)
	b[99] = uint8(h.TileType)
	b[100] = h.MinZoom
	b[101] = h.MaxZoom
	binary.LittleEndian.PutUint32(b[102:106], uint32(h.MinLonE7))
	binary.LittleEndian.PutUint32(b[106:110], uint32(h.MinLatE7))
	binary.LittleEndian.PutUint32(b[110:114], uint32(h.MaxLonE7))
	binary.LittleEndian.PutUint32(b[114:118], uint32(h.MaxLatE7))
	b[118] = h.CenterZoom
	binary.LittleEndian.PutUint32(b[119:123], uint32(h.CenterLonE7))
	binary.LittleEndian.PutUint32(b[123:127], uint32(h.CenterLatE7))
	return b
}

// Deserialize decodes a Header from its fixed 127-byte on-disk
// representation. It checks the magic number and spec version but does not
// perform the semantic checks in Validate.
func Deserialize(b []byte) (Header, error) {
	var h Header
	if len(b) < HeaderLenBytes {
		return h, ErrUnexpectedEOF
	}
	if !bytes.Equal(b[0:7], magic) {
		return h, ErrInvalidMagic
	}
	h.SpecVersion = b[7]
	if h.SpecVersion != 3 {
		return h, ErrUnsupportedVersion
	}
	h.RootOffset = binary.LittleEndian.Uint64(b[8:16])
	h.RootLength = binary.LittleEndian.Uint64(b[16:24])
	h.MetadataOffset = binary.LittleEndian.Uint64(b[24:32])
	h.MetadataLength = binary.LittleEndian.Uint64(b[32:40])
	h.LeafDirectoryOffset = binary.LittleEndian.Uint64(b[40:48])
	h.LeafDirectoryLength = binary.LittleEndian.Uint64(b[48:56])
	h.TileDataOffset = binary.LittleEndian.Uint64(b[56:64])
	h.TileDataLength = binary.LittleEndian.Uint64(b[64:72])
	h.AddressedTilesCount = binary.LittleEndian.Uint64(b[72:80])
	h.TileEntriesCount = binary.LittleEndian.Uint64(b[80:88])
	h.TileContentsCount = binary.LittleEndian.Uint64(b[88:96])
	h.Clustered = b[96] == 1
	h.InternalCompression = Compression(b[97])
	h.TileCompression = Compression(b[98])
	h.TileType = TileType(b[99])
	h.MinZoom = b[100]
	h.MaxZoom = b[101]
	h.MinLonE7 = int32(binary.LittleEndian.Uint32(b[102:106]))
	h.MinLatE7 = int32(binary.LittleEndian.Uint32(b[106:110]))
	h.MaxLonE7 = int32(binary.LittleEndian.Uint32(b[110:114]))
	h.MaxLatE7 = int32(binary.LittleEndian.Uint32(b[114:118]))
	h.CenterZoom = b[118]
	h.CenterLonE7 = int32(binary.LittleEndian.Uint32(b[119:123]))
	h.CenterLatE7 = int32(binary.LittleEndian.Uint32(b[123:127]))
	if !h.InternalCompression.valid() || !h.TileCompression.valid() {
		return h, ErrInvalidCompression
	}
	if !h.TileType.valid() {
		return h, ErrInvalidTileType
	}
	return h, nil
}

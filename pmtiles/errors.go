package pmtiles

import "errors"

// Sentinel errors returned by the codec and engine layers. Callers should
// compare against these with errors.Is rather than matching error strings.
var (
	// ErrInvalidMagic is returned when a header does not begin with "PMTiles".
	ErrInvalidMagic = errors.New("pmtiles: invalid magic number")

	// ErrUnsupportedVersion is returned when the header's spec version is not 3.
	ErrUnsupportedVersion = errors.New("pmtiles: unsupported spec version")

	// ErrInvalidCompression is returned when a compression byte is outside the
	// defined enumeration.
	ErrInvalidCompression = errors.New("pmtiles: invalid compression value")

	// ErrInvalidTileType is returned when a tile type byte is outside the
	// defined enumeration.
	ErrInvalidTileType = errors.New("pmtiles: invalid tile type value")

	// ErrInvalidBoundingBox is returned when min/max latitude or longitude
	// fields are inconsistent (min > max) or out of the valid E7 range.
	ErrInvalidBoundingBox = errors.New("pmtiles: invalid bounding box")

	// ErrVarintOverflow is returned by the varint decoder when a value would
	// not fit in 64 bits (a 10th byte that still has the continuation bit
	// set, or a 10th byte carrying bits beyond the 64th).
	ErrVarintOverflow = errors.New("pmtiles: varint overflows 64 bits")

	// ErrUnexpectedEOF is returned by the varint decoder when the byte stream
	// ends in the middle of an encoded value.
	ErrUnexpectedEOF = errors.New("pmtiles: unexpected end of varint stream")

	// ErrDirectoryTruncated is returned when a directory's encoded entry count
	// implies more bytes than were actually supplied.
	ErrDirectoryTruncated = errors.New("pmtiles: directory truncated")

	// ErrInvalidCoordinate is returned by the tile ID codec when z exceeds the
	// maximum supported zoom, or x/y are out of range for z.
	ErrInvalidCoordinate = errors.New("pmtiles: invalid tile coordinate")

	// ErrTileNotFound names the condition of a requested tile having no
	// directory entry. Reader.GetTile, GetTileByID and GetTileDecompressed
	// report that case as ok=false with a nil error, not with this value.
	ErrTileNotFound = errors.New("pmtiles: tile not found")

	// ErrNonMonotonicTileID is returned by the writer when AddTile/AddRawTile
	// is called with a tile ID that is not strictly greater than the previous
	// one.
	ErrNonMonotonicTileID = errors.New("pmtiles: tile IDs must be added in strictly ascending order")

	// ErrWriterFinalized is returned when AddTile/AddRawTile is called after
	// Finalize has already run.
	ErrWriterFinalized = errors.New("pmtiles: writer already finalized")

	// ErrRefreshRequired is returned by a Backend when the underlying archive
	// has changed (ETag mismatch) and the caller must discard any cached
	// directories for it and retry.
	ErrRefreshRequired = errors.New("pmtiles: archive changed, refresh required")

	// ErrDepthExceeded is returned when directory descent exceeds the maximum
	// supported recursion depth of 3 (root, leaf, leaf-of-leaf).
	ErrDepthExceeded = errors.New("pmtiles: directory recursion depth exceeded")

	// ErrInvalidRange is returned by a Backend's ReadRange when offset+length
	// exceeds the archive's known length, for backends that can know it
	// upfront (e.g. a local file's size).
	ErrInvalidRange = errors.New("pmtiles: requested range exceeds archive length")
)

package pmtiles

import (
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Writer builds a PMTiles v3 archive from a stream of tiles supplied in
// strictly ascending tile-ID order. It follows the four-phase build used by
// the reference conversion tool: a placeholder header is reserved up front,
// tile bytes are streamed to a scratch file as they arrive (deduplicated and
// run-length coalesced via an internal resolver), Finalize computes the
// root/leaf directory split and metadata, and the real header is written
// last once every offset is known.
type Writer struct {
	cfg      *writerConfig
	sink     io.WriteSeeker
	tmp      *os.File
	resolver *resolver

	hasTile    bool
	lastTileID uint64
	finalized  bool

	minZoom, maxZoom uint8

	hasBounds                              bool
	minLonE7, minLatE7, maxLonE7, maxLatE7 int32
}

// NewWriter starts a new archive build. sink receives the final archive
// bytes and must support seeking, since the header is rewritten after the
// tile data has been streamed out. tmpDir selects where scratch tile data is
// staged; an empty string uses the default system temp directory.
func NewWriter(sink io.WriteSeeker, tmpDir string, opts ...WriterOption) (*Writer, error) {
	cfg := defaultWriterConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	tmp, err := os.CreateTemp(tmpDir, "pmtiles-write-*.tmp")
	if err != nil {
		return nil, err
	}

	if _, err := sink.Write(make([]byte, HeaderLenBytes)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}

	return &Writer{
		cfg:      cfg,
		sink:     sink,
		tmp:      tmp,
		resolver: newResolver(),
	}, nil
}

// AddTile stores a tile's compressed payload, addressed by its (z,x,y)
// coordinate. data is compressed per the writer's configured tile
// compression (see WithTileCompression) before being stored; use AddRawTile
// to store already-compressed or intentionally uncompressed bytes as-is.
// Tiles must be added in strictly ascending tile-ID order; otherwise
// ErrNonMonotonicTileID is returned, since the writer relies on ascending
// order to coalesce runs and to produce a clustered archive without a
// second sorting pass.
func (w *Writer) AddTile(z uint8, x, y uint32, data []byte) error {
	id, err := ZxyToID(z, x, y)
	if err != nil {
		return err
	}
	compressed, err := Compress(w.cfg.tileCompression, data)
	if err != nil {
		return err
	}
	return w.addEntry(id, compressed)
}

// AddRawTile stores data verbatim (no compression applied), addressed
// directly by linearized tile ID. It is used by callers that already hold
// pre-compressed or deliberately raw bytes — region extraction and archive
// merge, which copy tile payloads from a source archive without
// recompressing them.
func (w *Writer) AddRawTile(tileID uint64, data []byte) error {
	return w.addEntry(tileID, data)
}

func (w *Writer) addEntry(tileID uint64, data []byte) error {
	if w.finalized {
		return ErrWriterFinalized
	}
	if w.hasTile && tileID <= w.lastTileID {
		return ErrNonMonotonicTileID
	}
	w.hasTile = true
	w.lastTileID = tileID

	z, x, y := IDToZxy(tileID)
	if len(w.resolver.entries) == 0 {
		w.minZoom, w.maxZoom = z, z
	} else {
		if z < w.minZoom {
			w.minZoom = z
		}
		if z > w.maxZoom {
			w.maxZoom = z
		}
	}
	w.minLonE7, w.minLatE7, w.maxLonE7, w.maxLatE7 =
		expandBoundsE7(!w.hasBounds, w.minLonE7, w.minLatE7, w.maxLonE7, w.maxLatE7, z, x, y)
	w.hasBounds = true

	toWrite, _ := w.resolver.addTile(tileID, data)
	if toWrite != nil {
		if _, err := w.tmp.Write(toWrite); err != nil {
			return err
		}
	}
	w.cfg.progress(int(w.resolver.addressedTiles), 0)
	return nil
}

// FinalizeParams supplies the archive-level fields Finalize cannot always
// derive from tile content alone. If MinLonE7/MinLatE7/MaxLonE7/MaxLatE7 are
// all left at their zero value, Finalize derives the bounding box from the
// minimum/maximum (z,x,y) of every tile added instead (a lone root tile at
// z=0 naturally yields the full Web Mercator world bounds); supply them
// explicitly to override that derivation, e.g. to describe a sub-region of
// the data actually addressed. If CenterZoom/CenterLonE7/CenterLatE7 are all
// left at zero, Finalize uses the archive's min zoom and the bounding box
// center instead.
type FinalizeParams struct {
	Metadata             Metadata
	MinLonE7, MinLatE7   int32
	MaxLonE7, MaxLatE7   int32
	CenterZoom           uint8
	CenterLonE7          int32
	CenterLatE7          int32
}

// Finalize writes the root/leaf directories, metadata and tile data to sink
// in their final archive order, then seeks back and overwrites the header
// placeholder with the real byte ranges and statistics. After Finalize
// returns (successfully or not) the Writer must not be reused.
func (w *Writer) Finalize(params FinalizeParams) error {
	if w.finalized {
		return ErrWriterFinalized
	}
	w.finalized = true
	defer func() {
		w.tmp.Close()
		os.Remove(w.tmp.Name())
	}()

	root, leaves := splitDirectory(w.resolver.entries, w.cfg.internalCompression)

	rootBytes, err := SerializeEntries(root, w.cfg.internalCompression)
	if err != nil {
		return err
	}

	var leafBuf []byte
	leafOffsets := make([]uint64, len(leaves))
	leafLengths := make([]uint64, len(leaves))
	var leafIdx int
	for i, rootEntry := range root {
		if rootEntry.RunLength != 0 {
			continue
		}
		leaf := leaves[leafIdx]
		encoded, err := SerializeEntries(leaf.entries, w.cfg.internalCompression)
		if err != nil {
			return err
		}
		leafOffsets[leafIdx] = uint64(len(leafBuf))
		leafLengths[leafIdx] = uint64(len(encoded))
		leafBuf = append(leafBuf, encoded...)
		root[i].Offset = leafOffsets[leafIdx]
		root[i].Length = uint32(leafLengths[leafIdx])
		leafIdx++
	}
	if len(leaves) > 0 {
		// root offsets/lengths for leaf pointers just recorded above must be
		// re-serialized now that they're populated.
		rootBytes, err = SerializeEntries(root, w.cfg.internalCompression)
		if err != nil {
			return err
		}
	}

	metadataBytes, err := EncodeMetadata(params.Metadata)
	if err != nil {
		return err
	}

	minLonE7, minLatE7, maxLonE7, maxLatE7 := params.MinLonE7, params.MinLatE7, params.MaxLonE7, params.MaxLatE7
	if minLonE7 == 0 && minLatE7 == 0 && maxLonE7 == 0 && maxLatE7 == 0 && w.hasBounds {
		minLonE7, minLatE7, maxLonE7, maxLatE7 = w.minLonE7, w.minLatE7, w.maxLonE7, w.maxLatE7
	}

	centerZoom, centerLonE7, centerLatE7 := params.CenterZoom, params.CenterLonE7, params.CenterLatE7
	if centerZoom == 0 && centerLonE7 == 0 && centerLatE7 == 0 {
		centerZoom = w.minZoom
		centerLonE7 = minLonE7 + (maxLonE7-minLonE7)/2
		centerLatE7 = minLatE7 + (maxLatE7-minLatE7)/2
	}

	h := Header{
		SpecVersion:         3,
		Clustered:           true,
		InternalCompression: w.cfg.internalCompression,
		TileCompression:     w.cfg.tileCompression,
		TileType:            w.cfg.tileType,
		MinZoom:             w.minZoom,
		MaxZoom:             w.maxZoom,
		MinLonE7:            minLonE7,
		MinLatE7:            minLatE7,
		MaxLonE7:            maxLonE7,
		MaxLatE7:            maxLatE7,
		CenterZoom:          centerZoom,
		CenterLonE7:         centerLonE7,
		CenterLatE7:         centerLatE7,
		AddressedTilesCount: w.resolver.addressedTiles,
		TileEntriesCount:    w.resolver.tileEntriesCount(),
		TileContentsCount:   w.resolver.tileContentsCount(),
	}

	h.RootOffset = HeaderLenBytes
	h.RootLength = uint64(len(rootBytes))
	h.MetadataOffset = h.RootOffset + h.RootLength
	h.MetadataLength = uint64(len(metadataBytes))
	h.LeafDirectoryOffset = h.MetadataOffset + h.MetadataLength
	h.LeafDirectoryLength = uint64(len(leafBuf))
	h.TileDataOffset = h.LeafDirectoryOffset + h.LeafDirectoryLength
	h.TileDataLength = w.resolver.offset

	if err := h.Validate(); err != nil {
		w.cfg.logger.Warn("header failed validation", zap.Error(err))
	}
	if h.RootLength > maxRootSize {
		w.cfg.logger.Warn("root directory exceeds budget",
			zap.String("size", humanize.Bytes(h.RootLength)),
			zap.String("budget", humanize.Bytes(maxRootSize)),
		)
	}

	if _, err := w.sink.Write(rootBytes); err != nil {
		return err
	}
	if _, err := w.sink.Write(metadataBytes); err != nil {
		return err
	}
	if _, err := w.sink.Write(leafBuf); err != nil {
		return err
	}
	if _, err := w.tmp.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := io.Copy(w.sink, w.tmp); err != nil {
		return err
	}

	if _, err := w.sink.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.sink.Write(Serialize(h)); err != nil {
		return err
	}

	w.cfg.logger.Info("archive finalized",
		zap.Uint64("addressed_tiles", h.AddressedTilesCount),
		zap.Uint64("tile_entries", h.TileEntriesCount),
		zap.Uint64("tile_contents", h.TileContentsCount),
		zap.Int("leaves", len(leaves)),
		zap.String("tile_data_size", humanize.Bytes(h.TileDataLength)),
	)

	return nil
}

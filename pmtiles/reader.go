package pmtiles

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// maxDirectoryDepth bounds directory descent to root -> leaf -> leaf-of-leaf,
// matching the depth the reference async reader enforces to guard against a
// corrupt archive causing unbounded recursion.
const maxDirectoryDepth = 3

// Reader provides random-access tile lookups against a PMTiles v3 archive
// fronted by a Backend. Directory lookups are routed through a
// DirectoryCache (NoopCache by default) so that repeated queries against the
// same archive avoid re-fetching root/leaf directories from the backend.
type Reader struct {
	name    string
	backend Backend
	cfg     *readerConfig
	Header  Header
}

// Open reads and validates an archive's header from backend and returns a
// Reader ready to serve tile queries. name identifies the archive for
// directory-cache keying and logging; it need not be a filesystem path.
func Open(ctx context.Context, name string, backend Backend, opts ...ReaderOption) (*Reader, error) {
	cfg := defaultReaderConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	raw, err := backend.ReadRange(ctx, 0, HeaderLenBytes)
	if err != nil {
		return nil, fmt.Errorf("pmtiles: read header: %w", err)
	}
	h, err := Deserialize(raw)
	if err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	return &Reader{name: name, backend: backend, cfg: cfg, Header: h}, nil
}

// Close releases the underlying backend.
func (r *Reader) Close() error { return r.backend.Close() }

// GetTile returns the (still-compressed, per Header.TileCompression) bytes
// for the tile at z/x/y. ok is false if the archive has no entry for that
// coordinate (a valid "no tile here" result, not an error).
func (r *Reader) GetTile(ctx context.Context, z uint8, x, y uint32) (data []byte, ok bool, err error) {
	id, err := ZxyToID(z, x, y)
	if err != nil {
		return nil, false, err
	}
	return r.GetTileByID(ctx, id)
}

// GetTileByID is GetTile addressed directly by linearized tile ID.
func (r *Reader) GetTileByID(ctx context.Context, tileID uint64) ([]byte, bool, error) {
	entry, ok, err := r.findEntry(ctx, tileID)
	if err != nil || !ok {
		return nil, false, err
	}
	data, err := r.backend.ReadRange(ctx, r.Header.TileDataOffset+entry.Offset, uint64(entry.Length))
	if err != nil {
		return nil, false, fmt.Errorf("pmtiles: read tile: %w", err)
	}
	return data, true, nil
}

// GetTileDecompressed is GetTile, but additionally decompresses the tile
// bytes per Header.TileCompression before returning them. Use this when the
// caller wants the raw tile payload rather than the archive's on-disk
// encoding; GetTile/GetTileByID remain the cheaper choice for callers that
// only forward bytes onward (an HTTP tileserver responding with the
// matching Content-Encoding, for instance).
func (r *Reader) GetTileDecompressed(ctx context.Context, z uint8, x, y uint32) ([]byte, bool, error) {
	data, ok, err := r.GetTile(ctx, z, x, y)
	if err != nil || !ok {
		return nil, ok, err
	}
	decompressed, err := Decompress(r.Header.TileCompression, data)
	if err != nil {
		return nil, false, fmt.Errorf("pmtiles: decompress tile: %w", err)
	}
	return decompressed, true, nil
}

// findEntry descends the directory tree (root, then up to two levels of
// leaves) looking for tileID, retrying once from the root if the backend
// reports ErrRefreshRequired partway through.
func (r *Reader) findEntry(ctx context.Context, tileID uint64) (Entry, bool, error) {
	entry, ok, err := r.findEntryAttempt(ctx, tileID)
	if errors.Is(err, ErrRefreshRequired) {
		r.cfg.cache.Invalidate(r.name)
		entry, ok, err = r.findEntryAttempt(ctx, tileID)
	}
	return entry, ok, err
}

func (r *Reader) findEntryAttempt(ctx context.Context, tileID uint64) (Entry, bool, error) {
	etag, err := r.backend.ETag(ctx)
	if err != nil {
		return Entry{}, false, err
	}

	offset, length := r.Header.RootOffset, r.Header.RootLength
	for depth := 0; ; depth++ {
		if depth >= maxDirectoryDepth {
			return Entry{}, false, ErrDepthExceeded
		}

		entries, err := r.loadDirectory(ctx, etag, offset, length)
		if err != nil {
			return Entry{}, false, err
		}

		entry, found := FindTile(entries, tileID)
		if !found {
			return Entry{}, false, nil
		}
		if entry.RunLength > 0 {
			return entry, true, nil
		}

		// RunLength==0 marks a leaf-directory pointer: descend.
		offset = r.Header.LeafDirectoryOffset + entry.Offset
		length = uint64(entry.Length)
	}
}

func (r *Reader) loadDirectory(ctx context.Context, etag string, offset, length uint64) ([]Entry, error) {
	key := CacheKey{ArchiveName: r.name, ETag: etag, Offset: offset, Length: length}
	return r.cfg.cache.GetOrLoad(ctx, key, func(ctx context.Context) ([]Entry, error) {
		raw, err := r.backend.ReadRange(ctx, offset, length)
		if err != nil {
			return nil, err
		}
		entries, err := DeserializeEntries(raw, r.Header.InternalCompression)
		if err != nil {
			return nil, err
		}
		r.cfg.logger.Debug("loaded directory", zap.Uint64("offset", offset), zap.Int("entries", len(entries)))
		return entries, nil
	})
}

// Metadata fetches and decodes the archive's metadata document.
func (r *Reader) Metadata(ctx context.Context) (Metadata, error) {
	raw, err := r.backend.ReadRange(ctx, r.Header.MetadataOffset, r.Header.MetadataLength)
	if err != nil {
		return nil, fmt.Errorf("pmtiles: read metadata: %w", err)
	}
	return DecodeMetadata(raw)
}

// AllEntries walks every directory (root and all leaves) in the archive,
// invoking fn once per tile entry (never for leaf pointers). It is the basis
// for Verify, region extraction and archive merge, which all need to walk
// the full tile set rather than look up one coordinate at a time.
func (r *Reader) AllEntries(ctx context.Context, fn func(Entry) error) error {
	etag, err := r.backend.ETag(ctx)
	if err != nil {
		return err
	}
	return r.walkDirectory(ctx, etag, r.Header.RootOffset, r.Header.RootLength, 0, fn)
}

func (r *Reader) walkDirectory(ctx context.Context, etag string, offset, length uint64, depth int, fn func(Entry) error) error {
	if depth >= maxDirectoryDepth {
		return ErrDepthExceeded
	}
	entries, err := r.loadDirectory(ctx, etag, offset, length)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.RunLength == 0 {
			if err := r.walkDirectory(ctx, etag, r.Header.LeafDirectoryOffset+e.Offset, uint64(e.Length), depth+1, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

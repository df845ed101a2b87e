package pmtiles

import "go.uber.org/zap"

// readerConfig holds the assembled state of ReaderOption values, following
// the functional-options style used for source configuration in the
// iwpnd-pmtilr reference backend.
type readerConfig struct {
	cache  DirectoryCache
	logger *zap.Logger
}

func defaultReaderConfig() *readerConfig {
	return &readerConfig{cache: NoopCache{}, logger: zap.NewNop()}
}

// ReaderOption configures a Reader at construction time.
type ReaderOption func(*readerConfig)

// WithDirectoryCache installs a DirectoryCache; the default is NoopCache.
func WithDirectoryCache(c DirectoryCache) ReaderOption {
	return func(cfg *readerConfig) { cfg.cache = c }
}

// WithReaderLogger installs a *zap.Logger for diagnostic logging; the
// default is a no-op logger, so omitting this option is always safe.
func WithReaderLogger(l *zap.Logger) ReaderOption {
	return func(cfg *readerConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// writerConfig holds the assembled state of WriterOption values.
type writerConfig struct {
	internalCompression Compression
	tileCompression     Compression
	tileType            TileType
	logger               *zap.Logger
	progress             ProgressFunc
}

func defaultWriterConfig() *writerConfig {
	return &writerConfig{
		internalCompression: CompressionGzip,
		tileCompression:     CompressionGzip,
		tileType:            TileTypeMVT,
		logger:              zap.NewNop(),
		progress:            func(int, int) {},
	}
}

// WriterOption configures a Writer at construction time.
type WriterOption func(*writerConfig)

// WithInternalCompression sets the compression used for directories and
// metadata; the default is CompressionGzip.
func WithInternalCompression(c Compression) WriterOption {
	return func(cfg *writerConfig) { cfg.internalCompression = c }
}

// WithTileCompression sets the compression AddTile applies to tile bytes
// before storing them (AddRawTile stores its input verbatim regardless,
// since its callers already hold payloads compressed per a source archive's
// header). The default is CompressionGzip.
func WithTileCompression(c Compression) WriterOption {
	return func(cfg *writerConfig) { cfg.tileCompression = c }
}

// WithTileType sets the tile type recorded in the header. The default is
// TileTypeMVT.
func WithTileType(t TileType) WriterOption {
	return func(cfg *writerConfig) { cfg.tileType = t }
}

// WithWriterLogger installs a *zap.Logger for diagnostic logging.
func WithWriterLogger(l *zap.Logger) WriterOption {
	return func(cfg *writerConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// ProgressFunc is called by the Writer after each AddTile/AddRawTile with
// the number of tiles addressed so far; the Writer always passes 0 as total,
// since it does not know the final count ahead of time. It mirrors the
// progress reporting hook used by the schollz/progressbar-based CLI tooling
// this package is modeled on.
type ProgressFunc func(done, total int)

// WithProgress installs a ProgressFunc; the default does nothing.
func WithProgress(p ProgressFunc) WriterOption {
	return func(cfg *writerConfig) {
		if p != nil {
			cfg.progress = p
		}
	}
}

package pmtiles

import "context"

// DirectoryCache stores decoded directories keyed by archive identity plus
// byte range, so that repeated tile lookups against the same archive avoid
// re-fetching and re-parsing root/leaf directories. Implementations must be
// safe for concurrent use.
type DirectoryCache interface {
	// Get returns a previously inserted directory for key, or ok=false if
	// absent.
	Get(key CacheKey) (entries []Entry, ok bool)

	// GetOrLoad returns the cached directory for key if present; otherwise it
	// calls load exactly once even under concurrent callers requesting the
	// same key (single-flight semantics), caches the result, and returns it.
	GetOrLoad(ctx context.Context, key CacheKey, load func(context.Context) ([]Entry, error)) ([]Entry, error)

	// Invalidate discards any cached entries for the given archive name,
	// used when a Backend reports ErrRefreshRequired.
	Invalidate(archiveName string)
}

// CacheKey identifies one cached directory: the archive it belongs to (so
// multiple open archives can share one cache), the archive's ETag at the
// time of the read (so a changed archive doesn't serve stale directories),
// and the byte range the directory occupies.
type CacheKey struct {
	ArchiveName string
	ETag        string
	Offset      uint64
	Length      uint64
}

// NoopCache is a DirectoryCache that never stores anything; every call to
// GetOrLoad invokes load. It is useful for one-shot reads or when the caller
// already maintains its own caching layer.
type NoopCache struct{}

// Get always reports a miss.
func (NoopCache) Get(CacheKey) ([]Entry, bool) { return nil, false }

// GetOrLoad always invokes load.
func (NoopCache) GetOrLoad(ctx context.Context, _ CacheKey, load func(context.Context) ([]Entry, error)) ([]Entry, error) {
	return load(ctx)
}

// Invalidate is a no-op.
func (NoopCache) Invalidate(string) {}

var _ DirectoryCache = NoopCache{}

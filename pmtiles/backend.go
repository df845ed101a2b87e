package pmtiles

import (
	"context"
	"fmt"
)

// Backend is the pluggable byte-range source an archive is read from: a
// local file, an HTTP(S) object, or a cloud object store. Implementations
// live in the backend subpackages and are constructed independently of the
// reader itself, matching the file/HTTP/S3 split of the reference backends
// this package is modeled on.
type Backend interface {
	// ReadRange returns exactly length bytes starting at offset, or an error.
	// Implementations should return ErrRefreshRequired if they detect that the
	// underlying object has changed (e.g. an ETag mismatch) since it was last
	// read, so that callers can invalidate any cached directories keyed on
	// the old version and retry.
	ReadRange(ctx context.Context, offset, length uint64) ([]byte, error)

	// ETag returns an opaque version identifier for the current backend
	// content, used as part of directory cache keys. Backends that cannot
	// supply one (e.g. a local file with no convenient fingerprint) may
	// return an empty string; the cache then keys purely on name+offset+length
	// and relies on the caller not to mutate the file concurrently.
	ETag(ctx context.Context) (string, error)

	// Close releases any resources held by the backend.
	Close() error
}

// RangeError wraps a Backend.ReadRange failure with the requested range, to
// make truncated-archive and network-error diagnostics actionable.
type RangeError struct {
	Offset, Length uint64
	Err            error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("pmtiles: read range [%d, %d): %v", e.Offset, e.Offset+e.Length, e.Err)
}

func (e *RangeError) Unwrap() error { return e.Err }

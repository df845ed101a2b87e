// Package filebackend implements pmtiles.Backend over a local file, the
// simplest of the three backends this package ships, modeled on the
// FileBucket type in the reference implementation.
package filebackend

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/tileforge/pmtiles/pmtiles"
)

// Backend reads byte ranges from a local file via ReadAt, so concurrent
// reads don't contend on a shared file offset.
type Backend struct {
	file *os.File
}

// Open opens path for reading.
func Open(path string) (*Backend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Backend{file: f}, nil
}

// ReadRange reads exactly length bytes starting at offset. A local file
// always knows its own length, so an out-of-bounds request is rejected with
// ErrInvalidRange rather than left to surface as a short read.
func (b *Backend) ReadRange(_ context.Context, offset, length uint64) ([]byte, error) {
	info, err := b.file.Stat()
	if err != nil {
		return nil, &pmtiles.RangeError{Offset: offset, Length: length, Err: err}
	}
	if offset+length > uint64(info.Size()) {
		return nil, &pmtiles.RangeError{Offset: offset, Length: length, Err: pmtiles.ErrInvalidRange}
	}

	buf := make([]byte, length)
	if _, err := b.file.ReadAt(buf, int64(offset)); err != nil {
		return nil, &pmtiles.RangeError{Offset: offset, Length: length, Err: err}
	}
	return buf, nil
}

// ETag derives a version fingerprint from the file's modification time and
// size, since local files have no native ETag. A concurrent writer touching
// the file invalidates any directories cached against the old fingerprint.
func (b *Backend) ETag(context.Context) (string, error) {
	info, err := b.file.Stat()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%s", info.Size(), strconv.FormatInt(info.ModTime().UnixNano(), 36)), nil
}

// Close closes the underlying file.
func (b *Backend) Close() error { return b.file.Close() }

var _ pmtiles.Backend = (*Backend)(nil)

package pmtiles

import (
	"context"
	"fmt"
)

// memSink is an in-memory io.WriteSeeker used as a Writer's output in tests,
// standing in for a real file without touching the filesystem.
type memSink struct {
	buf []byte
	pos int
}

func (s *memSink) Write(p []byte) (int, error) {
	end := s.pos + len(p)
	if end > len(s.buf) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[s.pos:end], p)
	s.pos = end
	return len(p), nil
}

func (s *memSink) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case 0:
		s.pos = int(offset)
	case 1:
		s.pos += int(offset)
	case 2:
		s.pos = len(s.buf) + int(offset)
	}
	return int64(s.pos), nil
}

// memBackend serves byte ranges out of an in-memory archive, used to feed a
// Reader from a memSink's finalized bytes without a round trip through the
// filesystem.
type memBackend struct {
	data []byte
	etag string
}

func (b *memBackend) ReadRange(_ context.Context, offset, length uint64) ([]byte, error) {
	if offset+length > uint64(len(b.data)) {
		return nil, fmt.Errorf("out of range: %d+%d > %d", offset, length, len(b.data))
	}
	out := make([]byte, length)
	copy(out, b.data[offset:offset+length])
	return out, nil
}

func (b *memBackend) ETag(context.Context) (string, error) { return b.etag, nil }
func (b *memBackend) Close() error                          { return nil }

var _ Backend = (*memBackend)(nil)

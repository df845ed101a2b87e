package pmtiles

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// Compress wraps data with the given compression scheme. CompressionNone is
// a pass-through; CompressionUnknown fails with ErrInvalidCompression, since
// an archive declaring an unknown compression cannot be processed.
func Compress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionBrotli:
		var buf bytes.Buffer
		w := brotli.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	default:
		return nil, ErrInvalidCompression
	}
}

// Decompress reverses Compress.
func Decompress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case CompressionBrotli:
		r := brotli.NewReader(bytes.NewReader(data))
		return io.ReadAll(r)
	case CompressionZstd:
		dec, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return io.ReadAll(dec)
	default:
		return nil, ErrInvalidCompression
	}
}

// Metadata is the user-facing archive-level document: a free-form JSON
// object describing the tileset (name, attribution, vector layer schema,
// etc). It is stored gzip-compressed regardless of the header's
// InternalCompression, matching the convention established for PMTiles v3
// archives produced by this package; DecodeMetadata accepts both compressed
// and raw JSON for interoperability with archives written by other tools.
type Metadata map[string]interface{}

// EncodeMetadata serializes m to JSON and gzip-compresses it.
func EncodeMetadata(m Metadata) ([]byte, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("pmtiles: encode metadata: %w", err)
	}
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeMetadata reverses EncodeMetadata. If data is not gzip-compressed it
// is parsed as raw JSON instead.
func DecodeMetadata(data []byte) (Metadata, error) {
	raw := data
	if r, err := gzip.NewReader(bytes.NewReader(data)); err == nil {
		defer r.Close()
		decoded, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("pmtiles: decode metadata: %w", err)
		}
		raw = decoded
	}
	var m Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("pmtiles: decode metadata: %w", err)
	}
	return m, nil
}

// Package s3backend implements pmtiles.Backend over S3 GetObject byte-range
// requests, modeled on the S3-specific BeforeRead hook of the reference
// implementation's BucketAdapter.
package s3backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/tileforge/pmtiles/pmtiles"
)

// Backend fetches byte ranges from a single S3 object. A single Backend is
// shared across concurrent ReadRange calls from a Reader, so the observed
// ETag is guarded by a mutex rather than stored as a bare field.
type Backend struct {
	client *s3.Client
	bucket string
	key    string

	etagMu sync.Mutex
	etag   string
}

// New constructs a Backend for the given bucket/key, using client for
// requests.
func New(client *s3.Client, bucket, key string) *Backend {
	return &Backend{client: client, bucket: bucket, key: key}
}

// ReadRange issues a GetObject request scoped to a single byte range, with
// an If-Match precondition once an ETag has been observed.
func (b *Backend) ReadRange(ctx context.Context, offset, length uint64) ([]byte, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)),
	}
	if etag := b.currentETag(); etag != "" {
		input.IfMatch = aws.String(etag)
	}

	out, err := b.client.GetObject(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return nil, pmtiles.ErrRefreshRequired
		}
		return nil, &pmtiles.RangeError{Offset: offset, Length: length, Err: err}
	}
	defer out.Body.Close()

	if out.ETag != nil {
		b.setETag(*out.ETag)
	}

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &pmtiles.RangeError{Offset: offset, Length: length, Err: err}
	}
	if uint64(len(data)) != length {
		return nil, &pmtiles.RangeError{Offset: offset, Length: length, Err: fmt.Errorf("short response")}
	}
	return data, nil
}

// ETag returns the last ETag observed, fetching HeadObject if none has been
// seen yet.
func (b *Backend) ETag(ctx context.Context) (string, error) {
	if etag := b.currentETag(); etag != "" {
		return etag, nil
	}
	out, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
	})
	if err != nil {
		return "", err
	}
	var etag string
	if out.ETag != nil {
		etag = *out.ETag
	}
	b.setETag(etag)
	return etag, nil
}

func (b *Backend) currentETag() string {
	b.etagMu.Lock()
	defer b.etagMu.Unlock()
	return b.etag
}

func (b *Backend) setETag(etag string) {
	b.etagMu.Lock()
	defer b.etagMu.Unlock()
	b.etag = etag
}

// Close is a no-op; the S3 client is reused across requests and owned by the
// caller.
func (b *Backend) Close() error { return nil }

var _ pmtiles.Backend = (*Backend)(nil)

package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/iain-buclaw-sociomantic/go-rados/pkg/backend"
)

// pool is an I/O handle scoped to one bucket. The client layer issues calls
// on a pool handle sequentially, so the locator field needs no locking.
type pool struct {
	cluster   *cluster
	bucket    string
	locator   string
	destroyed bool
}

// Destroy releases the pool handle.
func (p *pool) Destroy() {
	p.destroyed = true
}

// SetLocator sets or clears (empty key) the locator applied to lookups.
func (p *pool) SetLocator(key string) {
	p.locator = key
}

// objectKey maps (locator, oid) onto an S3 key: objects stored with a
// locator live under "<locator>/<oid>".
func (p *pool) objectKey(locator, oid string) string {
	if locator == "" {
		return oid
	}
	return locator + "/" + oid
}

// Stat returns size and modification time via HeadObject.
func (p *pool) Stat(oid string) (backend.ObjectInfo, backend.Status) {
	if p.destroyed {
		return backend.ObjectInfo{}, backend.StatusInvalid
	}

	return p.stat(p.objectKey(p.locator, oid))
}

func (p *pool) stat(key string) (backend.ObjectInfo, backend.Status) {
	ctx, cancel := p.cluster.requestContext()
	defer cancel()

	result, err := p.cluster.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return backend.ObjectInfo{}, statusFromError(err)
	}

	info := backend.ObjectInfo{}
	if result.ContentLength != nil {
		info.Size = uint64(*result.ContentLength)
	}
	if result.LastModified != nil {
		info.ModTime = *result.LastModified
	}

	return info, backend.StatusOK
}

// Read reads up to len(buf) bytes starting at offset, using an S3 byte-range
// request so only the requested window is transferred.
func (p *pool) Read(oid string, buf []byte, offset uint64) backend.Status {
	if p.destroyed {
		return backend.StatusInvalid
	}

	return p.read(p.objectKey(p.locator, oid), buf, offset)
}

func (p *pool) read(key string, buf []byte, offset uint64) backend.Status {
	if len(buf) == 0 {
		// A zero-length read still has to observe object existence.
		_, st := p.stat(key)
		if !st.OK() {
			return st
		}
		return backend.Status(0)
	}

	ctx, cancel := p.cluster.requestContext()
	defer cancel()

	// S3 ranges are inclusive: bytes=offset-(offset+len-1)
	end := offset + uint64(len(buf)) - 1
	rangeStr := fmt.Sprintf("bytes=%d-%d", offset, end)

	result, err := p.cluster.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
		Range:  aws.String(rangeStr),
	})
	if err != nil {
		// S3 reports InvalidRange when the offset is at or beyond the end
		// of the object; that is a zero-byte read, not an error.
		if strings.Contains(err.Error(), "InvalidRange") {
			return backend.Status(0)
		}
		return statusFromError(err)
	}
	defer func() { _ = result.Body.Close() }()

	n, err := io.ReadFull(result.Body, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return backend.StatusIOError
	}

	return backend.Status(n)
}

// NewCompletion allocates a completion token.
func (p *pool) NewCompletion() (backend.Completion, backend.Status) {
	return backend.NewAsyncCompletion(), backend.StatusOK
}

// AioStat starts an asynchronous stat on a driver goroutine. The locator key
// is captured at submission time.
func (p *pool) AioStat(oid string, c backend.Completion, info *backend.ObjectInfo) backend.Status {
	if p.destroyed {
		return backend.StatusInvalid
	}

	key := p.objectKey(p.locator, oid)

	c.(*backend.AsyncCompletion).Start(func() backend.Status {
		result, st := p.stat(key)
		if !st.OK() {
			return st
		}

		*info = result
		return backend.StatusOK
	})

	return backend.StatusOK
}

// AioRead starts an asynchronous read on a driver goroutine. The locator key
// is captured at submission time.
func (p *pool) AioRead(oid string, c backend.Completion, buf []byte, offset uint64) backend.Status {
	if p.destroyed {
		return backend.StatusInvalid
	}

	key := p.objectKey(p.locator, oid)

	c.(*backend.AsyncCompletion).Start(func() backend.Status {
		return p.read(key, buf, offset)
	})

	return backend.StatusOK
}

// statusFromError maps an SDK error onto a backend status code.
func statusFromError(err error) backend.Status {
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket
	var notFound *types.NotFound

	switch {
	case errors.As(err, &noSuchKey), errors.As(err, &noSuchBucket), errors.As(err, &notFound):
		return backend.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return backend.StatusTimedOut
	case strings.Contains(err.Error(), "AccessDenied"),
		strings.Contains(err.Error(), "InvalidAccessKeyId"),
		strings.Contains(err.Error(), "SignatureDoesNotMatch"):
		return backend.StatusAccessDenied
	default:
		return backend.StatusIOError
	}
}

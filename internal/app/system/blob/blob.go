// Package blob abstracts the external object store that holds file
// contents. Metadata lives in MongoDB; the bytes live behind this
// interface.
package blob

import (
	"context"
	"io"
	"net/url"
	"time"
)

// Content-Disposition values for PresignGet.
const (
	DispositionAttachment = "attachment"
	DispositionInline     = "inline"
)

// PutOptions carries per-object metadata for Put.
type PutOptions struct {
	ContentType string
}

// Store is the object-store interface the upload pipeline and the
// download/preview handlers depend on.
type Store interface {
	// Put uploads an object. size must match the number of bytes r
	// yields.
	Put(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) error

	// PresignGet returns a time-limited URL that serves the object
	// with the given Content-Disposition and filename.
	PresignGet(ctx context.Context, key, filename, disposition string, expiry time.Duration) (*url.URL, error)

	// Remove deletes an object. Removing a missing object is not an
	// error.
	Remove(ctx context.Context, key string) error
}

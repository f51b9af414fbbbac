// Package storage defines the narrow object-store surface the manifest
// pipeline consumes: paginated list-by-prefix and a whole-payload put.
//
// All providers implement the Store interface. Callers depend only on this
// package — never on a specific provider package.
//
// Usage:
//
//	cfg := storage.DefaultEndpointConfig()
//	store, err := minio.New(cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	res, err := store.ListPage(ctx, storage.ListPageRequest{
//		Bucket:  "data",
//		Prefix:  "logs/",
//		MaxKeys: 1000,
//	})
package storage

import "context"

// ObjectDescriptor is the raw per-object metadata returned by a listing
// page. Fields mirror what the backend reports; absent values are the zero
// value and are normalized downstream.
type ObjectDescriptor struct {
	// Key is the full object path within the bucket. May be empty if the
	// backend returns a degenerate entry.
	Key string

	// Size is the byte size of the object. 0 if the backend omits it.
	Size int64

	// LastModified is the backend's last-modified timestamp in RFC3339
	// form. Empty when the backend does not report one.
	LastModified string
}

// ListPageRequest identifies one page of a paginated listing.
type ListPageRequest struct {
	// Bucket is the bucket to list.
	Bucket string

	// Prefix restricts results to keys starting with this string.
	// Empty lists the whole bucket.
	Prefix string

	// ContinuationToken is the opaque cursor from the previous page.
	// Empty on the first request.
	ContinuationToken string

	// MaxKeys caps the number of objects per page.
	MaxKeys int
}

// ListPageResult is one page of listing output.
type ListPageResult struct {
	// Objects are the descriptors returned for this page, in listing order.
	Objects []ObjectDescriptor

	// NextContinuationToken is the cursor for the next page. Only
	// meaningful when IsTruncated is true.
	NextContinuationToken string

	// IsTruncated reports whether further pages exist.
	IsTruncated bool
}

// Store is the interface all object-store providers implement.
type Store interface {
	// ListPage fetches a single page of the bucket listing. It performs
	// exactly one backend call; retry policy belongs to the caller.
	ListPage(ctx context.Context, req ListPageRequest) (*ListPageResult, error)

	// PutObject stores payload at bucket/key in a single call, atomic from
	// the caller's perspective.
	PutObject(ctx context.Context, bucket, key string, payload []byte) error

	// Close releases any held resources.
	Close() error
}

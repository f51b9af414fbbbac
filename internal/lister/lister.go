// Package lister turns the storage API's paginated listing into a lazy,
// finite sequence of object descriptors.
//
// The iterator is pull-based: callers drive it with Next/Object/Err. It is
// restartable only by constructing a new Lister — there is no mid-stream
// resume across process restarts. Retry policy applies to each single page
// fetch, keeping pagination logic and retry logic independent.
//
// Usage:
//
//	l := lister.New(store, "data", "logs/", log)
//	for l.Next(ctx) {
//		obj := l.Object()
//		...
//	}
//	if err := l.Err(); err != nil { ... }
package lister

import (
	"context"
	"strings"

	"github.com/objstream/bucketfest/internal/errs"
	"github.com/objstream/bucketfest/internal/logger"
	"github.com/objstream/bucketfest/internal/retry"
	"github.com/objstream/bucketfest/internal/storage"
)

// DefaultPageSize is the max-keys value sent with every page request.
const DefaultPageSize = 1000

// Lister lazily enumerates every object under bucket/prefix.
// It is owned by a single pipeline execution and is not safe for
// concurrent use.
type Lister struct {
	store    storage.Store
	bucket   string
	prefix   string
	pageSize int
	policy   retry.Policy
	log      *logger.Logger

	token    string // continuation token carried across pages
	buf      []storage.ObjectDescriptor
	pos      int
	done     bool
	err      error
	accepted uint64
}

// Option adjusts a Lister at construction time.
type Option func(*Lister)

// WithPageSize overrides the per-page max-keys value.
func WithPageSize(n int) Option {
	return func(l *Lister) {
		if n > 0 {
			l.pageSize = n
		}
	}
}

// WithRetryPolicy overrides the per-page retry schedule.
func WithRetryPolicy(p retry.Policy) Option {
	return func(l *Lister) {
		l.policy = p
	}
}

// New builds a Lister over bucket, restricted to keys starting with
// prefix. An empty prefix enumerates the whole bucket.
func New(store storage.Store, bucket, prefix string, log *logger.Logger, opts ...Option) *Lister {
	l := &Lister{
		store:    store,
		bucket:   bucket,
		prefix:   prefix,
		pageSize: DefaultPageSize,
		policy:   retry.DefaultPolicy(),
		log:      log,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Next advances to the next object, fetching further pages as needed.
// It returns false at end of stream or on error; check Err afterwards.
func (l *Lister) Next(ctx context.Context) bool {
	if l.err != nil {
		return false
	}
	for l.pos >= len(l.buf) {
		if l.done {
			return false
		}
		if !l.fetchPage(ctx) {
			return false
		}
	}
	l.pos++
	l.accepted++
	return true
}

// Object returns the descriptor Next advanced to. Only valid after a Next
// call that returned true.
func (l *Lister) Object() storage.ObjectDescriptor {
	return l.buf[l.pos-1]
}

// Err returns the fatal listing error, if any. A nil Err after Next
// returned false means the listing completed normally.
func (l *Lister) Err() error {
	return l.err
}

// Accepted returns the count of objects yielded so far. Progress
// reporting reads it; it never affects control flow.
func (l *Lister) Accepted() uint64 {
	return l.accepted
}

// fetchPage requests the next page under the retry policy and refills the
// buffer with the descriptors that survive the prefix re-check. It returns
// false when the listing failed fatally.
func (l *Lister) fetchPage(ctx context.Context) bool {
	req := storage.ListPageRequest{
		Bucket:            l.bucket,
		Prefix:            l.prefix,
		ContinuationToken: l.token,
		MaxKeys:           l.pageSize,
	}

	var res *storage.ListPageResult
	err := retry.Do(ctx, l.log, "list objects", l.policy, func() error {
		var ferr error
		res, ferr = l.store.ListPage(ctx, req)
		return ferr
	})
	if err != nil {
		l.err = errs.Wrap(errs.ErrKindListFailed, "listing failed after retries", err)
		return false
	}

	l.buf = l.filter(res.Objects)
	l.pos = 0
	l.token = res.NextContinuationToken
	if !res.IsTruncated {
		l.done = true
		l.token = ""
	}
	return true
}

// filter drops any key that does not literally start with the configured
// prefix. The server already filters by prefix; the re-check guards
// against S3-compatible backends with looser prefix semantics.
func (l *Lister) filter(objects []storage.ObjectDescriptor) []storage.ObjectDescriptor {
	if l.prefix == "" {
		return objects
	}
	kept := objects[:0:len(objects)]
	for _, obj := range objects {
		if !strings.HasPrefix(obj.Key, l.prefix) {
			l.log.Debugf("dropping out-of-prefix key %q", obj.Key)
			continue
		}
		kept = append(kept, obj)
	}
	return kept
}

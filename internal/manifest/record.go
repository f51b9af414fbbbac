// Package manifest owns the columnar manifest: record normalization, the
// batch accumulator, the parquet writer, and the output sink.
package manifest

import (
	"strings"
	"time"

	"github.com/objstream/bucketfest/internal/storage"
)

// DefaultDelimiter is the file-name delimiter when none is configured.
const DefaultDelimiter = "/"

// Record is one normalized manifest row. All fields are defaultable:
// normalization never fails, so a single malformed object cannot abort a
// run.
type Record struct {
	Bucket             string
	Key                string
	FileName           string
	Size               uint64
	LastModifiedMillis int64
}

// NewRecord normalizes one object descriptor into a Record. The bucket is
// constant for a run; the delimiter drives file-name extraction.
func NewRecord(bucket string, d storage.ObjectDescriptor, delimiter string) Record {
	return Record{
		Bucket:             bucket,
		Key:                d.Key,
		FileName:           extractFileName(d.Key, delimiter),
		Size:               normalizeSize(d.Size),
		LastModifiedMillis: parseTimestampMillis(d.LastModified),
	}
}

// extractFileName returns the suffix of key after the last occurrence of
// delimiter, or the whole key when the delimiter does not occur. The
// delimiter is compared literally, not as a pattern.
func extractFileName(key, delimiter string) string {
	if delimiter == "" {
		return key
	}
	idx := strings.LastIndex(key, delimiter)
	if idx < 0 {
		return key
	}
	return key[idx+len(delimiter):]
}

// normalizeSize clamps a missing or negative size to zero.
func normalizeSize(size int64) uint64 {
	if size < 0 {
		return 0
	}
	return uint64(size)
}

// parseTimestampMillis converts an RFC3339 timestamp to UTC milliseconds
// since epoch. Absent or malformed timestamps become 0 rather than an
// error, so one bad object never fails the whole run.
func parseTimestampMillis(ts string) int64 {
	if ts == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return 0
	}
	return t.UTC().UnixMilli()
}

package manifest

import "github.com/objstream/bucketfest/internal/storage"

// DefaultBatchSize is the flush threshold: a batch is written once this
// many records are buffered.
const DefaultBatchSize = 1000

// Batch is an immutable column-oriented snapshot of buffered records,
// created when the accumulator reaches capacity or when listing ends with
// a non-empty remainder. It lives for exactly one write call.
type Batch struct {
	Buckets      []string
	Keys         []string
	FileNames    []string
	Sizes        []uint64
	LastModified []int64
}

// Len returns the number of records in the batch.
func (b Batch) Len() int {
	return len(b.Keys)
}

// Accumulator buffers normalized records into five parallel column slices.
// A record is appended to all five columns or none, so the columns always
// have equal length. The accumulator is owned by a single pipeline
// execution and needs no locking.
type Accumulator struct {
	bucket    string
	delimiter string
	capacity  int

	buckets      []string
	keys         []string
	fileNames    []string
	sizes        []uint64
	lastModified []int64
}

// NewAccumulator builds an accumulator for one run. capacity <= 0 selects
// DefaultBatchSize. An empty delimiter selects DefaultDelimiter.
func NewAccumulator(bucket, delimiter string, capacity int) *Accumulator {
	if capacity <= 0 {
		capacity = DefaultBatchSize
	}
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	a := &Accumulator{
		bucket:    bucket,
		delimiter: delimiter,
		capacity:  capacity,
	}
	a.reset()
	return a
}

// Append normalizes d and buffers it as one record across all columns.
func (a *Accumulator) Append(d storage.ObjectDescriptor) {
	r := NewRecord(a.bucket, d, a.delimiter)
	a.buckets = append(a.buckets, r.Bucket)
	a.keys = append(a.keys, r.Key)
	a.fileNames = append(a.fileNames, r.FileName)
	a.sizes = append(a.sizes, r.Size)
	a.lastModified = append(a.lastModified, r.LastModifiedMillis)
}

// Len returns the number of buffered records.
func (a *Accumulator) Len() int {
	return len(a.keys)
}

// ShouldFlush reports whether the buffer has reached capacity.
func (a *Accumulator) ShouldFlush() bool {
	return len(a.keys) >= a.capacity
}

// DrainBatch freezes the buffered columns into a Batch and resets the
// buffers for the next accumulation cycle. Draining an empty accumulator
// returns an empty batch.
func (a *Accumulator) DrainBatch() Batch {
	b := Batch{
		Buckets:      a.buckets,
		Keys:         a.keys,
		FileNames:    a.fileNames,
		Sizes:        a.sizes,
		LastModified: a.lastModified,
	}
	a.reset()
	return b
}

func (a *Accumulator) reset() {
	a.buckets = make([]string, 0, a.capacity)
	a.keys = make([]string, 0, a.capacity)
	a.fileNames = make([]string, 0, a.capacity)
	a.sizes = make([]uint64, 0, a.capacity)
	a.lastModified = make([]int64, 0, a.capacity)
}

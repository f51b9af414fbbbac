package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go/parquet"

	"github.com/objstream/bucketfest/internal/errs"
	"github.com/objstream/bucketfest/internal/logger"
	"github.com/objstream/bucketfest/internal/retry"
	"github.com/objstream/bucketfest/internal/storage"
)

type fakeUploader struct {
	bucket   string
	key      string
	payload  []byte
	calls    int
	failures int // fail this many calls before succeeding
	err      error
}

func (f *fakeUploader) PutObject(_ context.Context, bucket, key string, payload []byte) error {
	f.calls++
	if f.calls <= f.failures {
		if f.err != nil {
			return f.err
		}
		return errs.New(errs.ErrKindConnectionFailed, "upload refused")
	}
	f.bucket = bucket
	f.key = key
	f.payload = append([]byte(nil), payload...)
	return nil
}

func testPolicy() retry.Policy {
	return retry.Policy{InitialInterval: time.Millisecond, MaxAttempts: 3}
}

func smallBatch() Batch {
	return Batch{
		Buckets:      []string{"b"},
		Keys:         []string{"logs/a.log"},
		FileNames:    []string{"a.log"},
		Sizes:        []uint64{10},
		LastModified: []int64{1704067200000},
	}
}

func TestSink_LocalMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.parquet")
	dest := storage.OutputLocation{LocalPath: path}

	s, err := OpenSink(dest, parquet.CompressionCodec_SNAPPY, nil, testPolicy(), logger.Nop())
	require.NoError(t, err)
	defer s.Cleanup()

	require.NoError(t, s.WriteBatch(smallBatch()))
	require.NoError(t, s.Finalize(context.Background()))

	rows := readRows(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, "logs/a.log", rows[0].Key)
}

func TestSink_RemoteModeUploadsAndCleansUp(t *testing.T) {
	dest := storage.OutputLocation{Bucket: "dest", Key: "manifests/run.parquet"}
	up := &fakeUploader{}

	s, err := OpenSink(dest, parquet.CompressionCodec_SNAPPY, up, testPolicy(), logger.Nop())
	require.NoError(t, err)
	tempPath := s.tempPath
	require.NotEmpty(t, tempPath)
	defer s.Cleanup()

	require.NoError(t, s.WriteBatch(smallBatch()))
	require.NoError(t, s.Finalize(context.Background()))

	assert.Equal(t, "dest", up.bucket)
	assert.Equal(t, "manifests/run.parquet", up.key)
	assert.NotEmpty(t, up.payload)
	// PAR1 magic bytes at both ends of a parquet file.
	assert.Equal(t, []byte("PAR1"), up.payload[:4])
	assert.Equal(t, []byte("PAR1"), up.payload[len(up.payload)-4:])

	s.Cleanup()
	_, statErr := os.Stat(tempPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSink_RemoteModeRecoversFromTransientUploadFailure(t *testing.T) {
	dest := storage.OutputLocation{Bucket: "dest", Key: "m.parquet"}
	up := &fakeUploader{failures: 2}

	s, err := OpenSink(dest, parquet.CompressionCodec_SNAPPY, up, testPolicy(), logger.Nop())
	require.NoError(t, err)
	defer s.Cleanup()

	require.NoError(t, s.WriteBatch(smallBatch()))
	require.NoError(t, s.Finalize(context.Background()))
	assert.Equal(t, 3, up.calls)
}

func TestSink_RemoteModeUploadExhaustionIsFatal(t *testing.T) {
	dest := storage.OutputLocation{Bucket: "dest", Key: "m.parquet"}
	up := &fakeUploader{failures: 10}

	s, err := OpenSink(dest, parquet.CompressionCodec_SNAPPY, up, testPolicy(), logger.Nop())
	require.NoError(t, err)
	tempPath := s.tempPath

	require.NoError(t, s.WriteBatch(smallBatch()))
	err = s.Finalize(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsUploadFailed(err))
	assert.Equal(t, 3, up.calls)

	// Temp file is removed even after a failed upload.
	s.Cleanup()
	_, statErr := os.Stat(tempPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSink_RemoteModeRequiresUploader(t *testing.T) {
	dest := storage.OutputLocation{Bucket: "dest", Key: "m.parquet"}
	_, err := OpenSink(dest, parquet.CompressionCodec_SNAPPY, nil, testPolicy(), logger.Nop())
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

package manifest

import (
	"context"
	"os"

	"github.com/xitongsys/parquet-go/parquet"

	"github.com/objstream/bucketfest/internal/errs"
	"github.com/objstream/bucketfest/internal/logger"
	"github.com/objstream/bucketfest/internal/retry"
	"github.com/objstream/bucketfest/internal/storage"
)

// Uploader is the slice of storage.Store the sink needs for remote output.
type Uploader interface {
	PutObject(ctx context.Context, bucket, key string, payload []byte) error
}

// Sink is the manifest's destination. In local mode the parquet writer
// targets the destination file directly. In remote mode it targets a
// private temporary file whose contents are uploaded after Close; the
// temporary file is removed on every exit path via Cleanup.
type Sink struct {
	writer   *Writer
	dest     storage.OutputLocation
	uploader Uploader
	policy   retry.Policy
	log      *logger.Logger

	tempPath string
}

// OpenSink prepares the output destination. uploader may be nil for local
// destinations; for remote ones it must be the destination store.
func OpenSink(dest storage.OutputLocation, codec parquet.CompressionCodec, uploader Uploader, policy retry.Policy, log *logger.Logger) (*Sink, error) {
	s := &Sink{
		dest:     dest,
		uploader: uploader,
		policy:   policy,
		log:      log,
	}

	path := dest.LocalPath
	if dest.IsRemote() {
		if uploader == nil {
			return nil, errs.New(errs.ErrKindInvalidInput, "remote output requires a destination store")
		}
		tmp, err := os.CreateTemp("", "bucketfest-*.parquet")
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindWriteFailed, "failed to create temporary manifest file", err)
		}
		// The parquet writer reopens the path itself.
		s.tempPath = tmp.Name()
		if err := tmp.Close(); err != nil {
			os.Remove(s.tempPath)
			return nil, errs.Wrap(errs.ErrKindWriteFailed, "failed to close temporary manifest file", err)
		}
		path = s.tempPath
	}

	w, err := NewFileWriter(path, codec)
	if err != nil {
		s.Cleanup()
		return nil, err
	}
	s.writer = w
	return s, nil
}

// WriteBatch appends one batch to the manifest file.
func (s *Sink) WriteBatch(b Batch) error {
	return s.writer.WriteBatch(b)
}

// Finalize closes the manifest file and, in remote mode, uploads it to the
// destination bucket/key under the retry policy. Upload failure after
// retries is fatal; the destination holds no partial artifact in that case.
func (s *Sink) Finalize(ctx context.Context) error {
	if err := s.writer.Close(); err != nil {
		return err
	}
	if !s.dest.IsRemote() {
		return nil
	}

	payload, err := os.ReadFile(s.tempPath)
	if err != nil {
		return errs.Wrap(errs.ErrKindWriteFailed, "failed to read temporary manifest file", err)
	}

	s.log.InfoWith("uploading manifest", map[string]interface{}{
		"bucket": s.dest.Bucket,
		"key":    s.dest.Key,
		"bytes":  len(payload),
	})
	err = retry.Do(ctx, s.log, "upload manifest", s.policy, func() error {
		return s.uploader.PutObject(ctx, s.dest.Bucket, s.dest.Key, payload)
	})
	if err != nil {
		return errs.Wrap(errs.ErrKindUploadFailed, "manifest upload failed after retries", err)
	}
	return nil
}

// Cleanup removes the temporary file in remote mode. Callers defer it so
// the file is released whether the run succeeds or fails. Local mode is a
// no-op; a partially written local manifest stays on disk for inspection.
func (s *Sink) Cleanup() {
	if s.tempPath == "" {
		return
	}
	if err := os.Remove(s.tempPath); err != nil && !os.IsNotExist(err) {
		s.log.WarnErr("failed to remove temporary manifest file", err, map[string]interface{}{
			"path": s.tempPath,
		})
	}
	s.tempPath = ""
}

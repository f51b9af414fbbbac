package manifest

import (
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/objstream/bucketfest/internal/errs"
)

// Row is the parquet schema of one manifest record. All columns are
// REQUIRED (non-pointer fields), so the file never carries nulls.
type Row struct {
	Bucket       string `parquet:"name=Bucket, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Key          string `parquet:"name=Key, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	FileName     string `parquet:"name=FileName, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Size         int64  `parquet:"name=Size, type=INT64, convertedtype=UINT_64"`
	LastModified int64  `parquet:"name=LastModified, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

// ParseCompression maps a codec name from the CLI to a parquet codec.
// Unknown names are a configuration error, caught before any network
// activity.
func ParseCompression(name string) (parquet.CompressionCodec, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return parquet.CompressionCodec_SNAPPY, nil
	case "gzip":
		return parquet.CompressionCodec_GZIP, nil
	case "zstd":
		return parquet.CompressionCodec_ZSTD, nil
	case "none", "uncompressed":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return parquet.CompressionCodec_UNCOMPRESSED,
			errs.New(errs.ErrKindInvalidInput, "unknown compression codec: "+name)
	}
}

// Writer appends column batches to one parquet file. Each batch becomes
// one row group. Write failures are fatal to the run — local writes are
// not retried.
type Writer struct {
	fw     source.ParquetFile
	pw     *writer.ParquetWriter
	closed bool
}

// NewFileWriter opens path for writing and prepares the manifest schema.
func NewFileWriter(path string, codec parquet.CompressionCodec) (*Writer, error) {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindWriteFailed, "failed to create manifest file", err)
	}
	pw, err := writer.NewParquetWriter(fw, new(Row), 1)
	if err != nil {
		fw.Close()
		return nil, errs.Wrap(errs.ErrKindWriteFailed, "failed to create parquet writer", err)
	}
	pw.CompressionType = codec
	return &Writer{fw: fw, pw: pw}, nil
}

// WriteBatch appends all records of b and seals them into one row group.
// Empty batches are a no-op.
func (w *Writer) WriteBatch(b Batch) error {
	if b.Len() == 0 {
		return nil
	}
	for i := range b.Keys {
		row := Row{
			Bucket:       b.Buckets[i],
			Key:          b.Keys[i],
			FileName:     b.FileNames[i],
			Size:         int64(b.Sizes[i]),
			LastModified: b.LastModified[i],
		}
		if err := w.pw.Write(row); err != nil {
			return errs.Wrap(errs.ErrKindWriteFailed, "failed to write manifest row", err)
		}
	}
	if err := w.pw.Flush(true); err != nil {
		return errs.Wrap(errs.ErrKindWriteFailed, "failed to flush row group", err)
	}
	return nil
}

// Close finalizes the parquet footer and closes the file. It is safe to
// call more than once; only the first call does work.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.pw.WriteStop(); err != nil {
		w.fw.Close()
		return errs.Wrap(errs.ErrKindWriteFailed, "failed to finalize manifest file", err)
	}
	if err := w.fw.Close(); err != nil {
		return errs.Wrap(errs.ErrKindWriteFailed, "failed to close manifest file", err)
	}
	return nil
}

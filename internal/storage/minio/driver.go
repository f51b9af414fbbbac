// Package minio provides a MinIO / S3-compatible implementation of
// storage.Store.
//
// It is built on the SDK's low-level Core API, which exposes the raw
// ListObjectsV2 pagination contract (continuation token, is-truncated)
// instead of the channel-based listing of the high-level client.
//
// Usage:
//
//	cfg := storage.DefaultEndpointConfig()
//	store, err := minio.New(cfg)
//	if err != nil { ... }
//	defer store.Close()
package minio

import (
	"bytes"
	"context"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/objstream/bucketfest/internal/errs"
	"github.com/objstream/bucketfest/internal/storage"
)

// Driver is a MinIO implementation of storage.Store.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	core *miniogo.Core
}

// New builds a Driver for the given endpoint. When cfg carries a static
// access/secret key pair those are used directly; otherwise the ambient
// credential chain (environment, shared credentials file, IAM role) applies.
func New(cfg *storage.EndpointConfig) (*Driver, error) {
	core, err := miniogo.NewCore(cfg.Endpoint, &miniogo.Options{
		Creds:  resolveCredentials(cfg),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create storage client", err)
	}
	return &Driver{core: core}, nil
}

func resolveCredentials(cfg *storage.EndpointConfig) *credentials.Credentials {
	if cfg.HasStaticCredentials() {
		return credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}
	return credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.EnvMinio{},
		&credentials.FileAWSCredentials{},
		&credentials.IAM{},
	})
}

// --- storage.Store implementation ---

// ListPage fetches one page of the bucket listing. The continuation token
// and truncation flag pass through untouched so the caller owns pagination.
func (d *Driver) ListPage(ctx context.Context, req storage.ListPageRequest) (*storage.ListPageResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindTimeout, "listing cancelled", err)
	}

	raw, err := d.core.ListObjectsV2(req.Bucket, req.Prefix, "", req.ContinuationToken, "", req.MaxKeys)
	if err != nil {
		return nil, mapError(err, "failed to list objects")
	}

	objects := make([]storage.ObjectDescriptor, 0, len(raw.Contents))
	for _, obj := range raw.Contents {
		objects = append(objects, storage.ObjectDescriptor{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: formatTimestamp(obj.LastModified),
		})
	}

	return &storage.ListPageResult{
		Objects:               objects,
		NextContinuationToken: raw.NextContinuationToken,
		IsTruncated:           raw.IsTruncated,
	}, nil
}

// PutObject stores payload at bucket/key as a single put.
func (d *Driver) PutObject(ctx context.Context, bucket, key string, payload []byte) error {
	_, err := d.core.Client.PutObject(ctx, bucket, key,
		bytes.NewReader(payload), int64(len(payload)),
		miniogo.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return mapError(err, "failed to put object")
	}
	return nil
}

// Close is a no-op — the SDK client holds no persistent connections.
func (d *Driver) Close() error {
	return nil
}

// formatTimestamp renders the SDK's parsed time back into the RFC3339 wire
// form the pipeline normalizes from. A zero time becomes the empty string,
// which downstream defaults to epoch.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

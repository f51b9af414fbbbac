package minio

import (
	"context"
	"errors"
	"net/http"

	minioErr "github.com/minio/minio-go/v7"

	"github.com/objstream/bucketfest/internal/errs"
)

// mapError translates a MinIO SDK error into a *errs.Error. The kind
// determines whether the retry wrapper will try again: invalid input, not
// found, and permission failures are permanent; everything else counts as
// a transient connectivity problem.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	// Context cancellation / deadline
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	// MinIO SDK exposes a typed ErrorResponse for S3-protocol errors
	var resp minioErr.ErrorResponse
	if errors.As(err, &resp) {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return errs.Wrap(errs.ErrKindNotFound, msg, err)
		case http.StatusForbidden, http.StatusUnauthorized:
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case http.StatusBadRequest:
			return errs.Wrap(errs.ErrKindInvalidInput, msg, err)
		}

		switch resp.Code {
		case "NoSuchBucket", "NoSuchKey":
			return errs.Wrap(errs.ErrKindNotFound, msg, err)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case "InvalidBucketName", "InvalidObjectName", "KeyTooLongError":
			return errs.Wrap(errs.ErrKindInvalidInput, msg, err)
		case "RequestTimeout", "SlowDown":
			return errs.Wrap(errs.ErrKindTimeout, msg, err)
		}
	}

	// Anything else — treat as a transient connection / I/O failure
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

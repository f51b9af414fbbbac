// Package errs provides the unified error type used across all of bucketfest.
//
// Every subsystem (storage drivers, the manifest writer, the pipeline, …)
// wraps its native errors into *errs.Error before returning them to callers.
// Callers use the Is* predicates to handle errors without importing
// driver-specific packages.
//
// Usage:
//
//	// In a driver — wrap native errors:
//	return errs.Wrap(errs.ErrKindConnectionFailed, "page fetch failed", s3Err)
//
//	// In the pipeline — check error kind:
//	if errs.IsInvalidInput(err) {
//	    // bad URI or flag value, do not retry
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing backend-specific codes.
// Storage drivers map their native errors to one of these kinds, giving
// callers a single consistent API.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindInvalidInput             // malformed URI, bad flag value, bad profile
	ErrKindNotFound                 // no such bucket or object
	ErrKindConnectionFailed         // cannot reach the storage backend
	ErrKindTimeout                  // context deadline / cancellation
	ErrKindListFailed               // listing gave up after exhausting retries
	ErrKindUploadFailed             // upload gave up after exhausting retries
	ErrKindWriteFailed              // local / parquet write error, never retried
	ErrKindPermissionDenied         // access denied / auth failure
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindListFailed:
		return "list_failed"
	case ErrKindUploadFailed:
		return "upload_failed"
	case ErrKindWriteFailed:
		return "write_failed"
	case ErrKindPermissionDenied:
		return "permission_denied"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all bucketfest subsystems.
// Drivers produce it; callers inspect it via the Is* predicates below.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original backend-level error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsInvalidInput reports whether err was caused by bad input from the caller
// (URI parse failure, unknown compression name, missing profile entry, …).
func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// IsNotFound reports whether err represents a missing bucket or object.
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsConnectionFailed reports whether err is a connectivity failure.
func IsConnectionFailed(err error) bool {
	return KindOf(err) == ErrKindConnectionFailed
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// IsListFailed reports whether err is a listing failure that survived retries.
func IsListFailed(err error) bool {
	return KindOf(err) == ErrKindListFailed
}

// IsUploadFailed reports whether err is an upload failure that survived retries.
func IsUploadFailed(err error) bool {
	return KindOf(err) == ErrKindUploadFailed
}

// IsWriteFailed reports whether err is a local file or parquet write failure.
func IsWriteFailed(err error) bool {
	return KindOf(err) == ErrKindWriteFailed
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

// KindOf extracts the ErrKind from any error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}

package storage

import (
	"net/url"
	"strings"

	"github.com/objstream/bucketfest/internal/errs"
)

// Scheme is the URI scheme recognised for object-store locations.
const Scheme = "s3"

// SourceLocation is a parsed source URI: the bucket to enumerate and an
// optional key prefix.
type SourceLocation struct {
	Bucket string
	Prefix string // empty when the whole bucket is listed
}

// OutputLocation is a parsed output destination: either a local file path
// or a bucket/key pair in an object store.
type OutputLocation struct {
	Bucket    string
	Key       string
	LocalPath string
}

// IsRemote reports whether the output goes to an object store rather than
// the local filesystem.
func (l OutputLocation) IsRemote() bool {
	return l.Bucket != ""
}

// String renders the location the way the user wrote it.
func (l OutputLocation) String() string {
	if l.IsRemote() {
		return Scheme + "://" + l.Bucket + "/" + l.Key
	}
	return l.LocalPath
}

// ParseSourceURI parses an "s3://bucket[/prefix]" URI. The scheme must be
// exactly Scheme, the bucket is the host component, and the prefix is the
// path with its leading slash stripped (absent when the path is empty or
// just "/").
func ParseSourceURI(uri string) (SourceLocation, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return SourceLocation{}, errs.Wrap(errs.ErrKindInvalidInput, "invalid source URI", err)
	}
	if u.Scheme != Scheme {
		return SourceLocation{}, errs.New(errs.ErrKindInvalidInput,
			"invalid source URI scheme, must start with '"+Scheme+"://'")
	}
	if u.Host == "" {
		return SourceLocation{}, errs.New(errs.ErrKindInvalidInput, "source URI is missing a bucket name")
	}

	loc := SourceLocation{Bucket: u.Host}
	if len(u.Path) > 1 {
		loc.Prefix = u.Path[1:]
	}
	return loc, nil
}

// ParseOutputLocation parses the --output value. A value with the
// object-store scheme becomes a remote (bucket, key) destination; anything
// else is treated as a local filesystem path.
func ParseOutputLocation(output string) (OutputLocation, error) {
	if !strings.HasPrefix(output, Scheme+"://") {
		if output == "" {
			return OutputLocation{}, errs.New(errs.ErrKindInvalidInput, "output path is empty")
		}
		return OutputLocation{LocalPath: output}, nil
	}

	u, err := url.Parse(output)
	if err != nil {
		return OutputLocation{}, errs.Wrap(errs.ErrKindInvalidInput, "invalid output URI", err)
	}
	if u.Host == "" {
		return OutputLocation{}, errs.New(errs.ErrKindInvalidInput, "output URI is missing a bucket name")
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return OutputLocation{}, errs.New(errs.ErrKindInvalidInput, "output URI is missing an object key")
	}
	return OutputLocation{Bucket: u.Host, Key: key}, nil
}

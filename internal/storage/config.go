package storage

import (
	"net/url"
	"strings"

	"github.com/objstream/bucketfest/internal/errs"
)

// DefaultEndpoint is used when no endpoint override is configured.
const DefaultEndpoint = "s3.amazonaws.com"

// EndpointConfig holds everything needed to connect to one object-store
// endpoint. The same type is used for the source and the destination; the
// two are configured independently.
type EndpointConfig struct {
	// Endpoint is the host:port of the storage server, without scheme.
	Endpoint string

	// AccessKey is the access key ID. When AccessKey and SecretKey are both
	// set, static credentials are used; otherwise drivers fall back to the
	// ambient credential chain (environment, shared credentials file, IAM).
	AccessKey string

	// SecretKey is the secret access key.
	SecretKey string

	// Region is used by region-aware backends. Leave empty for most
	// S3-compatible servers.
	Region string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool
}

// DefaultEndpointConfig returns a config pointing at AWS S3 over TLS with
// ambient credentials.
func DefaultEndpointConfig() *EndpointConfig {
	return &EndpointConfig{
		Endpoint: DefaultEndpoint,
		UseSSL:   true,
	}
}

// ResolveEndpoint applies an endpoint override of the form
// "http(s)://host:port" (or bare "host:port") to cfg. An http scheme
// disables TLS; https or no scheme keeps it on.
func (cfg *EndpointConfig) ResolveEndpoint(override string) error {
	if override == "" {
		return nil
	}

	if !strings.Contains(override, "://") {
		cfg.Endpoint = override
		return nil
	}

	u, err := url.Parse(override)
	if err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "invalid endpoint URL", err)
	}
	switch u.Scheme {
	case "http":
		cfg.UseSSL = false
	case "https":
		cfg.UseSSL = true
	default:
		return errs.New(errs.ErrKindInvalidInput, "endpoint scheme must be http or https")
	}
	if u.Host == "" {
		return errs.New(errs.ErrKindInvalidInput, "endpoint URL is missing a host")
	}
	cfg.Endpoint = u.Host
	return nil
}

// HasStaticCredentials reports whether both key halves were supplied.
func (cfg *EndpointConfig) HasStaticCredentials() bool {
	return cfg.AccessKey != "" && cfg.SecretKey != ""
}

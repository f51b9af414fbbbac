// Package config loads named endpoint profiles from a YAML file, so runs
// against recurring S3-compatible backends don't need endpoint and
// credential flags every time.
//
// File format:
//
//	profiles:
//	  minio-lab:
//	    endpoint: http://localhost:9000
//	    access_key: minioadmin
//	    secret_key: minioadmin
//	  archive:
//	    region: eu-west-1
//
// Explicit CLI flags always win over profile values.
package config

import (
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/objstream/bucketfest/internal/errs"
	"github.com/objstream/bucketfest/internal/storage"
)

// Profile is one named endpoint entry in the profile file.
type Profile struct {
	// Endpoint is an endpoint override, "http(s)://host:port" or bare
	// "host:port". Empty keeps the default endpoint.
	Endpoint string `yaml:"endpoint"`

	// AccessKey and SecretKey form a static credential pair. When either
	// is empty the ambient credential chain applies.
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`

	// Region for region-aware backends.
	Region string `yaml:"region"`
}

// File is a parsed profile file.
type File struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// Load reads and parses the profile file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to read profile file", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to parse profile file", err)
	}
	return &f, nil
}

// Endpoint resolves the named profile into an EndpointConfig. The zero
// name returns the default config without consulting the file.
func (f *File) Endpoint(name string) (*storage.EndpointConfig, error) {
	cfg := storage.DefaultEndpointConfig()
	if name == "" {
		return cfg, nil
	}
	p, ok := f.Profiles[name]
	if !ok {
		return nil, errs.New(errs.ErrKindInvalidInput, "unknown profile: "+name)
	}
	if err := cfg.ResolveEndpoint(p.Endpoint); err != nil {
		return nil, err
	}
	cfg.AccessKey = p.AccessKey
	cfg.SecretKey = p.SecretKey
	cfg.Region = p.Region
	return cfg, nil
}

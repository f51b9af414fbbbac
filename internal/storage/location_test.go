package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objstream/bucketfest/internal/errs"
)

func TestParseSourceURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    SourceLocation
		wantErr bool
	}{
		{
			name: "bucket and prefix",
			uri:  "s3://my-bucket/logs/2024",
			want: SourceLocation{Bucket: "my-bucket", Prefix: "logs/2024"},
		},
		{
			name: "bucket only",
			uri:  "s3://my-bucket",
			want: SourceLocation{Bucket: "my-bucket"},
		},
		{
			name: "root path means no prefix",
			uri:  "s3://my-bucket/",
			want: SourceLocation{Bucket: "my-bucket"},
		},
		{
			name: "trailing slash prefix kept",
			uri:  "s3://my-bucket/logs/",
			want: SourceLocation{Bucket: "my-bucket", Prefix: "logs/"},
		},
		{
			name:    "wrong scheme",
			uri:     "gs://my-bucket/logs",
			wantErr: true,
		},
		{
			name:    "no scheme",
			uri:     "my-bucket/logs",
			wantErr: true,
		},
		{
			name:    "missing bucket",
			uri:     "s3:///logs",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSourceURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errs.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOutputLocation(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    OutputLocation
		wantErr bool
	}{
		{
			name:   "local path",
			output: "manifest.parquet",
			want:   OutputLocation{LocalPath: "manifest.parquet"},
		},
		{
			name:   "absolute local path",
			output: "/tmp/out/manifest.parquet",
			want:   OutputLocation{LocalPath: "/tmp/out/manifest.parquet"},
		},
		{
			name:   "remote destination",
			output: "s3://dest-bucket/manifests/run1.parquet",
			want:   OutputLocation{Bucket: "dest-bucket", Key: "manifests/run1.parquet"},
		},
		{
			name:    "remote without key",
			output:  "s3://dest-bucket",
			wantErr: true,
		},
		{
			name:    "remote without bucket",
			output:  "s3:///key.parquet",
			wantErr: true,
		},
		{
			name:    "empty",
			output:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOutputLocation(tt.output)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errs.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutputLocation_IsRemote(t *testing.T) {
	assert.True(t, OutputLocation{Bucket: "b", Key: "k"}.IsRemote())
	assert.False(t, OutputLocation{LocalPath: "out.parquet"}.IsRemote())
}

func TestEndpointConfig_ResolveEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		override string
		wantHost string
		wantSSL  bool
		wantErr  bool
	}{
		{
			name:     "empty keeps default",
			override: "",
			wantHost: DefaultEndpoint,
			wantSSL:  true,
		},
		{
			name:     "http disables ssl",
			override: "http://localhost:9000",
			wantHost: "localhost:9000",
			wantSSL:  false,
		},
		{
			name:     "https keeps ssl",
			override: "https://minio.internal:9000",
			wantHost: "minio.internal:9000",
			wantSSL:  true,
		},
		{
			name:     "bare host keeps ssl",
			override: "storage.example.com",
			wantHost: "storage.example.com",
			wantSSL:  true,
		},
		{
			name:     "unknown scheme",
			override: "ftp://host",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEndpointConfig()
			err := cfg.ResolveEndpoint(tt.override)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errs.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, cfg.Endpoint)
			assert.Equal(t, tt.wantSSL, cfg.UseSSL)
		})
	}
}

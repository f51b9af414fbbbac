package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/objstream/bucketfest/internal/storage"
)

func TestExtractFileName(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		delimiter string
		want      string
	}{
		{
			name:      "nested key",
			key:       "a/b/c.txt",
			delimiter: "/",
			want:      "c.txt",
		},
		{
			name:      "delimiter absent",
			key:       "readme.md",
			delimiter: "/",
			want:      "readme.md",
		},
		{
			name:      "trailing delimiter",
			key:       "a/b/",
			delimiter: "/",
			want:      "",
		},
		{
			name:      "multi-character delimiter",
			key:       "a--b--c.log",
			delimiter: "--",
			want:      "c.log",
		},
		{
			name:      "delimiter is literal not a pattern",
			key:       "axb.txt",
			delimiter: ".",
			want:      "txt",
		},
		{
			name:      "empty delimiter keeps full key",
			key:       "a/b/c.txt",
			delimiter: "",
			want:      "a/b/c.txt",
		},
		{
			name:      "empty key",
			key:       "",
			delimiter: "/",
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractFileName(tt.key, tt.delimiter))
		})
	}
}

func TestParseTimestampMillis(t *testing.T) {
	tests := []struct {
		name string
		ts   string
		want int64
	}{
		{
			name: "exact rfc3339",
			ts:   "2024-01-01T00:00:00Z",
			want: 1704067200000,
		},
		{
			name: "offset converted to utc",
			ts:   "2024-01-01T02:00:00+02:00",
			want: 1704067200000,
		},
		{
			name: "fractional seconds",
			ts:   "2024-01-01T00:00:00.500Z",
			want: 1704067200500,
		},
		{
			name: "absent",
			ts:   "",
			want: 0,
		},
		{
			name: "malformed",
			ts:   "yesterday at noon",
			want: 0,
		},
		{
			name: "date only is malformed",
			ts:   "2024-01-01",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseTimestampMillis(tt.ts))
		})
	}
}

func TestNewRecord(t *testing.T) {
	d := storage.ObjectDescriptor{
		Key:          "logs/2024/a.log",
		Size:         10,
		LastModified: "2024-01-01T00:00:00Z",
	}
	r := NewRecord("b", d, "/")
	assert.Equal(t, Record{
		Bucket:             "b",
		Key:                "logs/2024/a.log",
		FileName:           "a.log",
		Size:               10,
		LastModifiedMillis: 1704067200000,
	}, r)
}

func TestNewRecord_Defaults(t *testing.T) {
	r := NewRecord("b", storage.ObjectDescriptor{Key: "x", Size: -1}, "/")
	assert.Equal(t, uint64(0), r.Size)
	assert.Equal(t, int64(0), r.LastModifiedMillis)
}

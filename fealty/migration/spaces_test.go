package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseSpacesURL(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantBucket string
		wantPrefix string
		wantErr    bool
	}{
		{name: "bucket only", raw: "s3://backups", wantBucket: "backups"},
		{name: "bucket with prefix", raw: "s3://backups/legacy/2024", wantBucket: "backups", wantPrefix: "legacy/2024"},
		{name: "trailing slash stripped", raw: "s3://backups/legacy/", wantBucket: "backups", wantPrefix: "legacy"},
		{name: "missing scheme", raw: "/var/dumps", wantErr: true},
		{name: "missing bucket", raw: "s3:///legacy", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, prefix, err := ParseSpacesURL(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantPrefix, prefix)
		})
	}
}

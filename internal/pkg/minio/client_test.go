package minio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "valid",
			config: Config{Endpoint: "localhost:9000", AccessKeyID: "a", SecretAccessKey: "s", Bucket: "b"},
		},
		{
			name:    "missing endpoint",
			config:  Config{AccessKeyID: "a", SecretAccessKey: "s", Bucket: "b"},
			wantErr: true,
		},
		{
			name:    "missing credentials",
			config:  Config{Endpoint: "localhost:9000", Bucket: "b"},
			wantErr: true,
		},
		{
			name:    "missing bucket",
			config:  Config{Endpoint: "localhost:9000", AccessKeyID: "a", SecretAccessKey: "s"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestClientClosed(t *testing.T) {
	c, err := NewClient(&Config{
		Endpoint:        "localhost:9000",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		Bucket:          "notebook",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "notebook", c.Bucket())

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err = c.StatObject(context.Background(), "a.txt")
	assert.ErrorIs(t, err, ErrClientClosed)
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, IsNotFound(nil))
	assert.True(t, IsNotFound(WrapError("GetObject", ErrObjectNotFound, "b", "o")))
	assert.True(t, IsNotFound(WrapError("StatObject", minio.ErrorResponse{Code: "NoSuchKey"}, "b", "o")))
	assert.True(t, IsNotFound(WrapError("StatObject", minio.ErrorResponse{Code: "NotFound"}, "b", "o")))
	assert.False(t, IsNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
	assert.False(t, IsNotFound(errors.New("boom")))
}

func TestErrorMessage(t *testing.T) {
	err := WrapError("PutObject", errors.New("denied"), "bucket", "a.txt")
	assert.Equal(t, "minio: PutObject failed for bucket=bucket, object=a.txt: denied", err.Error())
	assert.Equal(t, "minio: ListObjects failed: denied", WrapError("ListObjects", errors.New("denied"), "", "").Error())
	assert.Nil(t, WrapError("x", nil, "", ""))
}

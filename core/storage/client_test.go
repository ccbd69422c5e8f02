package storage_test

import (
	"context"
	"errors"
	"testing"

	"roster-sync/core/storage"
	"roster-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name string
		cfg  storage.Config
	}{
		{"Plain endpoint", storage.Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "roster"}},
		{"HTTP scheme stripped", storage.Config{Endpoint: "http://minio:9000", AccessKey: "k", SecretKey: "s", PathStyle: true}},
		{"HTTPS virtual host", storage.Config{Endpoint: "https://s3.amazonaws.com", UseSSL: true, Region: "eu-west-1"}},
		{"Zero timeout uses default", storage.Config{Endpoint: "localhost:9000", TimeoutSeconds: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := storage.NewClient(tt.cfg)
			assert.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", mock.Anything, "roster").Return(true, nil)

		assert.NoError(t, storage.EnsureBucket(ctx, m, "roster", ""))
		m.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Creates", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", mock.Anything, "roster").Return(false, nil)
		m.On("MakeBucket", mock.Anything, "roster", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)

		assert.NoError(t, storage.EnsureBucket(ctx, m, "roster", "eu-west-1"))
		m.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", mock.Anything, "roster").Return(false, errors.New("dial tcp: refused"))

		err := storage.EnsureBucket(ctx, m, "roster", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to check bucket roster")
	})
}

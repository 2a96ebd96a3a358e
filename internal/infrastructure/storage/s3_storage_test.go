package storage

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutorcenter/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func testStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:          "test-bucket",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.Bucket = ""
		_, err := NewS3ObjectStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.AccessKeyID = ""
		_, err := NewS3ObjectStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.SecretAccessKey = ""
		_, err := NewS3ObjectStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("valid config creates storage with defaults", func(t *testing.T) {
		storage, err := NewS3ObjectStorage(testStorageConfig())
		require.NoError(t, err)
		assert.Equal(t, "test-bucket", storage.GetBucket())
		assert.Equal(t, 15*time.Minute, storage.presignExpiration)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		useSSL   bool
		want     string
	}{
		{"empty defaults to local", "", false, "http://localhost:9000"},
		{"adds http", "minio:9000", false, "http://minio:9000"},
		{"adds https with ssl", "s3.example.com", true, "https://s3.example.com"},
		{"keeps scheme", "https://s3.amazonaws.com", false, "https://s3.amazonaws.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeEndpoint(tt.endpoint, tt.useSSL)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestS3ObjectStorageOptions(t *testing.T) {
	logger := zaptest.NewLogger(t)
	storage, err := NewS3ObjectStorage(testStorageConfig(),
		WithLogger(logger),
		WithPresignExpiration(30*time.Minute),
	)
	require.NoError(t, err)
	assert.Same(t, logger, storage.logger)
	assert.Equal(t, 30*time.Minute, storage.presignExpiration)
}

func TestS3ObjectStorage_ObjectKey(t *testing.T) {
	cfg := testStorageConfig()
	cfg.KeyPrefix = "/reports/"
	storage, err := NewS3ObjectStorage(cfg)
	require.NoError(t, err)
	assert.Equal(t, "reports/2024/07/r.pdf", storage.objectKey("2024/07/r.pdf"))

	cfg.KeyPrefix = ""
	storage, err = NewS3ObjectStorage(cfg)
	require.NoError(t, err)
	assert.Equal(t, "2024/07/r.pdf", storage.objectKey("2024/07/r.pdf"))
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	cfg := testStorageConfig()
	cfg.KeyPrefix = "reports"
	storage, err := NewS3ObjectStorage(cfg)
	require.NoError(t, err)

	t.Run("generates presigned url", func(t *testing.T) {
		url, expiresAt, err := storage.GenerateDownloadURL(context.Background(), "monthly/2024-07.pdf", 10*time.Minute)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "http://localhost:9000/test-bucket/reports/monthly/2024-07.pdf"))
		assert.Contains(t, url, "X-Amz-Signature")
		assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 5*time.Second)
	})

	t.Run("uses default expiration", func(t *testing.T) {
		_, expiresAt, err := storage.GenerateDownloadURL(context.Background(), "k.csv", 0)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)
	})

	t.Run("empty key returns error", func(t *testing.T) {
		_, _, err := storage.GenerateDownloadURL(context.Background(), "", time.Minute)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage key is required")
	})
}

func TestS3ObjectStorage_EmptyKeyValidation(t *testing.T) {
	storage, err := NewS3ObjectStorage(testStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()

	require.ErrorContains(t, storage.Upload(ctx, "", []byte("x"), "text/plain"), "storage key is required")
	require.ErrorContains(t, storage.DeleteObject(ctx, ""), "storage key is required")
	_, err = storage.ObjectExists(ctx, "")
	require.ErrorContains(t, err, "storage key is required")
	_, err = storage.Download(ctx, "")
	require.ErrorContains(t, err, "storage key is required")
}

// Integration tests need an S3-compatible endpoint, e.g.
// TUTOR_TEST_S3_ENDPOINT=http://localhost:9000 with minioadmin credentials.
func newIntegrationStorage(t *testing.T) *S3ObjectStorage {
	t.Helper()
	endpoint := os.Getenv("TUTOR_TEST_S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("TUTOR_TEST_S3_ENDPOINT not set")
	}

	cfg := &config.StorageConfig{
		Bucket:          "tutorcenter-integration",
		AccessKeyID:     envOr("TUTOR_TEST_S3_ACCESS_KEY", "minioadmin"),
		SecretAccessKey: envOr("TUTOR_TEST_S3_SECRET_KEY", "minioadmin"),
		Endpoint:        endpoint,
		UsePathStyle:    true,
		KeyPrefix:       "it",
	}
	storage, err := NewS3ObjectStorage(cfg, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	require.NoError(t, storage.EnsureBucket(context.Background()))
	return storage
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestIntegration_UploadDownloadDelete(t *testing.T) {
	storage := newIntegrationStorage(t)
	ctx := context.Background()
	key := "reports/upload-download.csv"
	data := []byte("student,amount\nAda,100.00\n")

	require.NoError(t, storage.Upload(ctx, key, data, "text/csv"))

	exists, err := storage.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := storage.Download(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.NoError(t, storage.DeleteObject(ctx, key))
	exists, err = storage.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = storage.Download(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

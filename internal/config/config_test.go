package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("SCHEDMATE_JWT_SECRET", "secret")
	t.Setenv("SCHEDMATE_PRIORITY_PROVIDER", "formula")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "SchedMate API", cfg.AppName)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, StorageCloudinary, cfg.StorageProvider)
	require.Equal(t, time.Minute, cfg.LeaderboardCacheTTL)
	require.Equal(t, 5*time.Second, cfg.PriorityTimeout)
	require.Equal(t, 10, cfg.UploadMaxSizeMB)
	require.False(t, cfg.StrictStudentCode)
	require.Equal(t, 25, cfg.DBMaxOpenConns)
	require.Equal(t, 30*time.Minute, cfg.DBConnMaxLifetime)
	require.Equal(t, "*", cfg.CORSAllowOrigins)
	require.True(t, cfg.IsDevelopment())
}

func TestLoadRejectsInvalidPoolLifetime(t *testing.T) {
	t.Setenv("SCHEDMATE_JWT_SECRET", "secret")
	t.Setenv("SCHEDMATE_PRIORITY_PROVIDER", "formula")
	t.Setenv("SCHEDMATE_DATABASE_CONN_MAX_LIFETIME", "forever")

	_, err := Load()
	require.ErrorContains(t, err, "database.conn_max_lifetime")
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("SCHEDMATE_JWT_SECRET", "")
	t.Setenv("SCHEDMATE_PRIORITY_PROVIDER", "formula")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresPriorityURLForHTTPProvider(t *testing.T) {
	t.Setenv("SCHEDMATE_JWT_SECRET", "secret")
	t.Setenv("SCHEDMATE_PRIORITY_PROVIDER", "http")
	t.Setenv("SCHEDMATE_PRIORITY_URL", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("SCHEDMATE_PRIORITY_URL", "http://scorer:8080/")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://scorer:8080", cfg.PriorityServiceURL)
}

func TestLoadRejectsUnknownStorageProvider(t *testing.T) {
	t.Setenv("SCHEDMATE_JWT_SECRET", "secret")
	t.Setenv("SCHEDMATE_PRIORITY_PROVIDER", "formula")
	t.Setenv("SCHEDMATE_STORAGE_PROVIDER", "ftp")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadStrictStudentCodeFlag(t *testing.T) {
	t.Setenv("SCHEDMATE_JWT_SECRET", "secret")
	t.Setenv("SCHEDMATE_PRIORITY_PROVIDER", "formula")
	t.Setenv("SCHEDMATE_ENROLLMENT_STRICT_STUDENT_CODE", "true")
	t.Setenv("SCHEDMATE_APP_PORT", ":9000")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.StrictStudentCode)
	require.Equal(t, ":9000", cfg.HTTPAddress())
}

func TestLoadRequiresBucketForGCS(t *testing.T) {
	t.Setenv("SCHEDMATE_JWT_SECRET", "secret")
	t.Setenv("SCHEDMATE_PRIORITY_PROVIDER", "formula")
	t.Setenv("SCHEDMATE_STORAGE_PROVIDER", "gcs")
	t.Setenv("SCHEDMATE_GCS_BUCKET", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("SCHEDMATE_GCS_BUCKET", "schedmate-evidence")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "uploads", cfg.GCSPrefix)
}

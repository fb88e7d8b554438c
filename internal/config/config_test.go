package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rongwang/studyswap/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := fromEnv()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.SeedSampleListings)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "Redis")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("SEED_SAMPLE_LISTINGS", "false")
	t.Setenv("DB_PORT", "not-a-number")

	cfg := fromEnv()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
	assert.False(t, cfg.SeedSampleListings)
	assert.Equal(t, 5432, cfg.Database.Port, "invalid ints fall back to the default")
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: 1, Username: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=d sslmode=disable", db.GetDSN())
}

func TestSetupDatabase_SQLite(t *testing.T) {
	cfg := fromEnv()
	cfg.Storage.Driver = DriverSQLite
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "test.db")

	db, err := SetupDatabase(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()

	var count int
	err = db.Get(&count, `SELECT COUNT(*) FROM kv_entries`)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSetupDatabase_RejectsNonSQLDriver(t *testing.T) {
	cfg := fromEnv()
	cfg.Storage.Driver = DriverMemory

	_, err := SetupDatabase(context.Background(), cfg)
	assert.Error(t, err)
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	cfg := fromEnv()
	cfg.Storage.Driver = DriverMemory
	backend, err := OpenBackend(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryBackend{}, backend)

	cfg.Storage.Driver = DriverSQLite
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "kv.db")
	backend, err = OpenBackend(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.SQLBackend{}, backend)
	require.NoError(t, backend.Close())

	cfg.Storage.Driver = DriverS3
	cfg.S3.AccessKey = "key"
	cfg.S3.SecretKey = "secret"
	cfg.S3.Endpoint = "http://localhost:9000"
	backend, err = OpenBackend(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.S3Backend{}, backend)

	cfg.Storage.Driver = "floppy"
	_, err = OpenBackend(ctx, cfg)
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// chdirTemp moves into an empty directory so a developer's .env cannot leak in.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	for _, key := range []string{"HTTP_ADDRESS", "STORE_BACKEND", "KAFKA_BROKERS", "MONGO_URI", "CORS_ALLOWED_ORIGINS", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8000", cfg.HTTPAddress)
	require.Equal(t, BackendMongo, cfg.StoreBackend)
	require.Equal(t, "mongodb://localhost:27017/", cfg.MongoURI)
	require.Equal(t, "mergington_high", cfg.MongoDatabase)
	require.Equal(t, "activities", cfg.MongoCollection)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	require.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
}

func TestLoadOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092 ,")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, BackendRedis, cfg.StoreBackend)
	require.Equal(t, 3, cfg.RedisDB)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 750*time.Millisecond, cfg.StoreTimeout)
	require.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	chdirTemp(t)
	t.Setenv("STORE_BACKEND", "cassandra")

	_, err := Load()
	require.ErrorContains(t, err, "cassandra")
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("MONGO_DATABASE=from_dotenv\nLOG_LEVEL=debug\nLOG_FORMAT=json\n"), 0o600))
	for _, key := range []string{"MONGO_DATABASE", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from_dotenv", cfg.MongoDatabase)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
}

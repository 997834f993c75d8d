package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "http://localhost:8081/api/v1", cfg.BackendBaseURL)
	assert.Equal(t, "localhost", cfg.RedisHost)
	assert.Equal(t, 24*time.Hour, cfg.CartMirrorTTL)
	assert.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled)
	assert.False(t, cfg.OTELEnabled)
}

func TestLoad_CustomValues(t *testing.T) {
	setEnvs(t, map[string]string{
		"STOREFRONT_HTTP_PORT": "9090",
		"BACKEND_BASE_URL":     "https://api.bookstore.example/api/v1",
		"KAFKA_BROKERS":        "kafka-1:9092,kafka-2:9092",
		"CART_MIRROR_TTL":      "1h",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "https://api.bookstore.example/api/v1", cfg.BackendBaseURL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, time.Hour, cfg.CartMirrorTTL)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("STOREFRONT_HTTP_PORT", "99999")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidSampleRate(t *testing.T) {
	t.Setenv("OTEL_SAMPLE_RATE", "1.5")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE must be between")
}

func TestPostgres(t *testing.T) {
	setEnvs(t, map[string]string{
		"POSTGRES_HOST":      "db.internal",
		"STOREFRONT_DB_NAME": "bookstore_audit",
	})

	cfg, err := Load()
	require.NoError(t, err)

	pg := cfg.Postgres()
	assert.Equal(t, "db.internal", pg.Host)
	assert.Equal(t, "bookstore_audit", pg.DBName)
	assert.Contains(t, pg.DSN(), "db.internal:5432/bookstore_audit")
}

func TestRedis_Addr(t *testing.T) {
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", cfg.Redis().Addr())
}

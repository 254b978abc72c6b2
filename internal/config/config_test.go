package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.HTTPAddr)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.RainfallTimeout)
	assert.Equal(t, "https://archive-api.open-meteo.com/v1/archive", cfg.OpenMeteoURL)
	assert.Equal(t, "https://power.larc.nasa.gov/api/temporal/hourly/point", cfg.NASAPowerURL)
	assert.Equal(t, "rtrwh-app/1.0", cfg.UserAgent)
	assert.Zero(t, cfg.FallbackRainfallMM)
	assert.Zero(t, cfg.BreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.BreakerCooldown)
	assert.Empty(t, cfg.GroundwaterCSV)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "rtrwh-assessments", cfg.KafkaTopic)
	assert.Equal(t, 50, cfg.PublishBatchSize)
	assert.Equal(t, time.Second, cfg.PublishFlushInterval)
	assert.Equal(t, 1000, cfg.PublishQueueSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("RAINFALL_TIMEOUT", "5s")
	t.Setenv("USER_AGENT", "test-agent/2.0")
	t.Setenv("FALLBACK_RAINFALL_MM", "650")
	t.Setenv("GROUNDWATER_CSV", "/data/gw.csv")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-topic")
	t.Setenv("PUBLISH_BATCH_SIZE", "100")
	t.Setenv("PUBLISH_FLUSH_INTERVAL", "250ms")
	t.Setenv("PUBLISH_QUEUE_SIZE", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5*time.Second, cfg.RainfallTimeout)
	assert.Equal(t, "test-agent/2.0", cfg.UserAgent)
	assert.InDelta(t, 650, cfg.FallbackRainfallMM, 1e-9)
	assert.Equal(t, "/data/gw.csv", cfg.GroundwaterCSV)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-topic", cfg.KafkaTopic)
	assert.Equal(t, 100, cfg.PublishBatchSize)
	assert.Equal(t, 250*time.Millisecond, cfg.PublishFlushInterval)
	assert.Equal(t, 10, cfg.PublishQueueSize)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_ZeroRainfallTimeout(t *testing.T) {
	t.Setenv("RAINFALL_TIMEOUT", "0s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAINFALL_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"zero", "0"},
		{"too large", "1001"},
		{"not a number", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PUBLISH_BATCH_SIZE", tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "PUBLISH_BATCH_SIZE")
		})
	}
}

func TestLoad_BatchSizeBoundaries(t *testing.T) {
	for _, v := range []string{"1", "1000"} {
		t.Setenv("PUBLISH_BATCH_SIZE", v)
		_, err := Load()
		require.NoError(t, err, v)
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestLoad_InvalidUpstreamURL(t *testing.T) {
	t.Setenv("OPEN_METEO_URL", "not a url")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPEN_METEO_URL")
}

func TestLoad_FallbackRainfallOutOfRange(t *testing.T) {
	t.Setenv("FALLBACK_RAINFALL_MM", "6000")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FALLBACK_RAINFALL_MM")
}

func TestLoad_EmptyKafkaTopic(t *testing.T) {
	t.Setenv("KAFKA_TOPIC", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_TOPIC")
}

func TestLoad_BreakerSettings(t *testing.T) {
	t.Setenv("RAINFALL_BREAKER_FAILURES", "3")
	t.Setenv("RAINFALL_BREAKER_COOLDOWN", "1m")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), cfg.BreakerFailures)
	assert.Equal(t, time.Minute, cfg.BreakerCooldown)
}

func TestLoad_BreakerFailuresOutOfRange(t *testing.T) {
	t.Setenv("RAINFALL_BREAKER_FAILURES", "101")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAINFALL_BREAKER_FAILURES")
}

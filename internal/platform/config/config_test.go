package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, SinkLog, cfg.Notify.Sink)
		assert.Equal(t, 4, cfg.Notify.Workers)
		assert.Equal(t, 24*time.Hour, cfg.Reminder.Lead)
		assert.Empty(t, cfg.DatabaseURL)
	})

	t.Run("kafka sink requires brokers", func(t *testing.T) {
		t.Setenv("NOTIFY_SINK", SinkKafka)
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("kafka brokers are comma separated", func(t *testing.T) {
		t.Setenv("NOTIFY_SINK", SinkKafka)
		t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	})

	t.Run("redis sink requires url", func(t *testing.T) {
		t.Setenv("NOTIFY_SINK", SinkRedis)
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("rate limit defaults", func(t *testing.T) {
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.True(t, cfg.RateLimit.Enabled)
		assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	})

	t.Run("zero rate limit budget rejected", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_WRITES", "0")
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("disabled rate limit skips budget checks", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_ENABLED", "false")
		t.Setenv("RATE_LIMIT_WRITES", "0")
		_, err := FromEnv()
		require.NoError(t, err)
	})

	t.Run("unknown sink rejected", func(t *testing.T) {
		t.Setenv("NOTIFY_SINK", "carrier-pigeon")
		_, err := FromEnv()
		require.Error(t, err)
	})
}

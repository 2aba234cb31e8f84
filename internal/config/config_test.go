package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "HTTP_FRAMEWORK", "LOG_LEVEL", "REQUEST_TIMEOUT_MS", "RATE_LIMIT_RPS",
		"RATE_LIMIT_BURST", "KAFKA_BROKERS", "KAFKA_TOPIC", "KAFKA_GROUP_ID", "DATABASE_URL", "OUTBOX_POLL_MS", "OTEL_ENDPOINT", "OTEL_AUTH_HEADER"} {
		t.Setenv(k, "")
	}

	c, err := fromEnv()

	require.NoError(t, err)
	assert.Equal(t, Config{
		Port:           "3000",
		Framework:      FrameworkChi,
		LogLevel:       "info",
		RequestTimeout: 2500 * time.Millisecond,
		RateLimitBurst: 20,
		KafkaTopic:     "retail.events",
		KafkaGroupID:   "retail-event-tail",
		OutboxPoll:     time.Second,
	}, c)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("HTTP_FRAMEWORK", "GIN")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("KAFKA_BROKERS", "kafka:9092")

	c, err := fromEnv()

	require.NoError(t, err)
	assert.Equal(t, "8081", c.Port)
	assert.Equal(t, FrameworkGin, c.Framework)
	assert.Equal(t, 2.5, c.RateLimitRPS)
	assert.Equal(t, "kafka:9092", c.KafkaBrokers)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"HTTP_FRAMEWORK", "echo"},
		{"REQUEST_TIMEOUT_MS", "soon"},
		{"REQUEST_TIMEOUT_MS", "-1"},
		{"OUTBOX_POLL_MS", "0"},
		{"RATE_LIMIT_RPS", "-3"},
		{"RATE_LIMIT_BURST", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := fromEnv()

			assert.ErrorContains(t, err, tt.key)
		})
	}
}

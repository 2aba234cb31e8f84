package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	FrameworkChi = "chi"
	FrameworkGin = "gin"
)

type Config struct {
	Port           string
	Framework      string
	LogLevel       string
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	KafkaBrokers string
	KafkaTopic   string
	KafkaGroupID string

	DatabaseURL  string
	OutboxPoll   time.Duration
	OtelEndpoint string
	OtelAuth     string
}

// Load reads the environment. A .env file in the working directory, when
// present, fills variables that are not already set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return fromEnv()
}

func fromEnv() (Config, error) {
	c := Config{
		Port:         getenv("PORT", "3000"),
		Framework:    strings.ToLower(getenv("HTTP_FRAMEWORK", FrameworkChi)),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		KafkaBrokers: getenv("KAFKA_BROKERS", ""),
		KafkaTopic:   getenv("KAFKA_TOPIC", "retail.events"),
		KafkaGroupID: getenv("KAFKA_GROUP_ID", "retail-event-tail"),
		DatabaseURL:  getenv("DATABASE_URL", ""),
		OtelEndpoint: getenv("OTEL_ENDPOINT", ""),
		OtelAuth:     getenv("OTEL_AUTH_HEADER", ""),
	}
	if c.Framework != FrameworkChi && c.Framework != FrameworkGin {
		return Config{}, fmt.Errorf("HTTP_FRAMEWORK: want chi or gin, got %q", c.Framework)
	}

	var err error
	if c.RequestTimeout, err = millis("REQUEST_TIMEOUT_MS", "2500"); err != nil {
		return Config{}, err
	}
	if c.OutboxPoll, err = millis("OUTBOX_POLL_MS", "1000"); err != nil {
		return Config{}, err
	}
	if c.RateLimitRPS, err = strconv.ParseFloat(getenv("RATE_LIMIT_RPS", "0"), 64); err != nil || c.RateLimitRPS < 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_RPS: invalid value %q", os.Getenv("RATE_LIMIT_RPS"))
	}
	if c.RateLimitBurst, err = strconv.Atoi(getenv("RATE_LIMIT_BURST", "20")); err != nil || c.RateLimitBurst < 1 {
		return Config{}, fmt.Errorf("RATE_LIMIT_BURST: invalid value %q", os.Getenv("RATE_LIMIT_BURST"))
	}
	return c, nil
}

func millis(key, def string) (time.Duration, error) {
	ms, err := strconv.Atoi(getenv(key, def))
	if err != nil || ms <= 0 {
		return 0, fmt.Errorf("%s: invalid value %q", key, os.Getenv(key))
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

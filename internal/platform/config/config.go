package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"civicpulse"`
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`
	PostgresDSN string `envconfig:"POSTGRES_DSN"`

	// OutboxRelaySchedule is a cron expression for the worker relay loop.
	OutboxRelaySchedule string `envconfig:"OUTBOX_RELAY_SCHEDULE" default:"@every 5s"`
	OutboxBatchSize     int    `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`

	TrendingWindowHours int `envconfig:"TRENDING_WINDOW_HOURS" default:"24"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment config: %w", err)
	}
	return cfg, nil
}

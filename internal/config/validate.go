package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.VsCurrency == "" {
		return errors.New("api.vs_currency is required")
	}
	if c.API.MaxRetries != nil && *c.API.MaxRetries < 0 {
		return errors.New("api.max_retries must be >= 0")
	}

	if c.Tracker.Interval <= 0 {
		return errors.New("tracker.interval must be positive")
	}
	if c.Tracker.TopN < 1 || c.Tracker.TopN > 1000 {
		return fmt.Errorf("tracker.top_n must be between 1 and 1000, got %d", c.Tracker.TopN)
	}

	if c.Sheet.Path == "" {
		return errors.New("sheet.path is required")
	}
	if c.Sheet.DataSheet == "" {
		return errors.New("sheet.data_sheet is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Sinks.Postgres.Enabled {
		if err := c.Sinks.Postgres.DB.validate("sinks.postgres"); err != nil {
			return err
		}
	}
	if c.Sinks.Redis.Enabled && c.Sinks.Redis.Addr == "" {
		return errors.New("sinks.redis.addr is required when the redis sink is enabled")
	}
	if c.Sinks.Kafka.Enabled {
		if len(c.Sinks.Kafka.Brokers) == 0 {
			return errors.New("sinks.kafka.brokers is required when the kafka sink is enabled")
		}
		if c.Sinks.Kafka.Topic == "" {
			return errors.New("sinks.kafka.topic is required when the kafka sink is enabled")
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug|info|warn|error, got %q", c.Logging.Level)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

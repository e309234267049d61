package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL      = "https://api.coingecko.com/api/v3"
	DefaultVsCurrency   = "usd"
	DefaultAPITimeout   = 30 * time.Second
	DefaultMaxRetries   = 2
	DefaultRetryDelay   = 2 * time.Second
	DefaultInterval     = 5 * time.Minute
	DefaultTopN         = 50
	DefaultSheetPath    = "crypto_top50.xlsx"
	DefaultDataSheet    = "Live Data"
	DefaultSummarySheet = "Analysis"
	DefaultServerPort   = 8080
	DefaultDBPort       = 5432
	DefaultDBSSLMode    = "prefer"
	DefaultMaxConns     = 4
	DefaultMinConns     = 1
	DefaultRedisAddr    = "localhost:6379"
	DefaultRedisTTL     = 15 * time.Minute
	DefaultKafkaTopic   = "crypto.snapshots"
	DefaultStreamBuffer = 64
	DefaultLogLevel     = "info"
)

// Default returns a configuration with every default applied. The
// binary runs on these alone when no config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.VsCurrency == "" {
		c.API.VsCurrency = DefaultVsCurrency
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == nil {
		retries := DefaultMaxRetries
		c.API.MaxRetries = &retries
	}
	if c.API.RetryDelay == 0 {
		c.API.RetryDelay = DefaultRetryDelay
	}

	// Tracker defaults
	if c.Tracker.Interval == 0 {
		c.Tracker.Interval = DefaultInterval
	}
	if c.Tracker.TopN == 0 {
		c.Tracker.TopN = DefaultTopN
	}

	// Sheet defaults
	if c.Sheet.Path == "" {
		c.Sheet.Path = DefaultSheetPath
	}
	if c.Sheet.DataSheet == "" {
		c.Sheet.DataSheet = DefaultDataSheet
	}
	if c.Sheet.SummarySheet == "" {
		c.Sheet.SummarySheet = DefaultSummarySheet
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}

	// Sink defaults
	applyDBDefaults(&c.Sinks.Postgres.DB)
	if c.Sinks.Redis.Addr == "" {
		c.Sinks.Redis.Addr = DefaultRedisAddr
	}
	if c.Sinks.Redis.TTL == 0 {
		c.Sinks.Redis.TTL = DefaultRedisTTL
	}
	if c.Sinks.Kafka.Topic == "" {
		c.Sinks.Kafka.Topic = DefaultKafkaTopic
	}
	if c.Sinks.Stream.BufferSize == 0 {
		c.Sinks.Stream.BufferSize = DefaultStreamBuffer
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}

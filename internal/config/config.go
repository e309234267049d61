package config

import "time"

// Config is the root configuration for the tracker.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Tracker TrackerConfig `yaml:"tracker"`
	Sheet   SheetConfig   `yaml:"sheet"`
	Server  ServerConfig  `yaml:"server"`
	Sinks   SinksConfig   `yaml:"sinks"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig holds CoinGecko API settings. MaxRetries is a pointer so
// an explicit 0 (retries disabled) is distinguishable from unset.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	VsCurrency string        `yaml:"vs_currency"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries *int          `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// TrackerConfig holds polling loop settings.
type TrackerConfig struct {
	Interval time.Duration `yaml:"interval"`
	TopN     int           `yaml:"top_n"`
}

// SheetConfig holds the spreadsheet sink settings.
type SheetConfig struct {
	Path         string `yaml:"path"`
	DataSheet    string `yaml:"data_sheet"`
	SummarySheet string `yaml:"summary_sheet"`
}

// ServerConfig holds the health/stream HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// SinksConfig holds the optional secondary sinks. All are disabled by
// default; the spreadsheet sink is always on.
type SinksConfig struct {
	Postgres PostgresSinkConfig `yaml:"postgres"`
	Redis    RedisSinkConfig    `yaml:"redis"`
	Kafka    KafkaSinkConfig    `yaml:"kafka"`
	Stream   StreamSinkConfig   `yaml:"stream"`
}

// PostgresSinkConfig mirrors the latest batch into a Postgres table.
type PostgresSinkConfig struct {
	Enabled bool     `yaml:"enabled"`
	DB      DBConfig `yaml:",inline"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RedisSinkConfig mirrors the latest batch into Redis keys.
type RedisSinkConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// KafkaSinkConfig publishes each batch to a Kafka topic.
type KafkaSinkConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// StreamSinkConfig broadcasts each batch to WebSocket clients on /ws.
type StreamSinkConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

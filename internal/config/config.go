// Package config provides centralized configuration management for the
// report generator. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Report   ReportConfig
	Crypto   CryptoConfig
	RunLog   RunLogConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 60s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"60s"`

	// WriteTimeout is the maximum duration for writing a response (default: 0, report runs can be long)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds the optional Postgres source settings. Reports read
// from files unless a query is given, so the URL may stay empty.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// UploadConfig bounds uploaded inputs and concurrent report runs.
type UploadConfig struct {
	// MaxFileSize is the maximum accepted input size in bytes (default: 100MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"104857600"`

	// MaxConcurrent is the maximum number of report runs in flight (default: 2)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"2"`

	// MaxWaitTime is how long a run waits for a free slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration of a single run (default: 10m)
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"10m"`
}

// ReportConfig holds the default report options. Requests and CLI flags
// override them per run.
type ReportConfig struct {
	// OutputDir receives every generated workbook (default: TopTransactionsPerMonth)
	OutputDir string `env:"REPORT_OUTPUT_DIR" default:"TopTransactionsPerMonth"`

	// TopNCards bounds the card table; 0 leaves it out (default: 20)
	TopNCards int `env:"REPORT_TOP_CARDS" default:"20"`

	// TopNCashiers bounds the cashier table; 0 leaves it out (default: 20)
	TopNCashiers int `env:"REPORT_TOP_CASHIERS" default:"20"`

	// Encrypt protects every artifact with a generated password (default: false)
	Encrypt bool `env:"REPORT_ENCRYPT" default:"false"`

	// SeparateCards splits the card table by CardSplitPrefix (default: false)
	SeparateCards bool `env:"REPORT_SEPARATE_CARDS" default:"false"`

	// CardSplitPrefix selects the left block of a split card table (default: 9)
	CardSplitPrefix string `env:"REPORT_CARD_SPLIT_PREFIX" default:"9"`

	// IncludeIntervals adds the interval narrative column (default: false)
	IncludeIntervals bool `env:"REPORT_INCLUDE_INTERVALS" default:"false"`

	// Period is monthly or whole_range (default: monthly)
	Period string `env:"REPORT_PERIOD" default:"monthly"`

	// Workers is the number of periods written in parallel (default: 1)
	Workers int `env:"REPORT_WORKERS" default:"1"`
}

// CryptoConfig holds the encryption fallback settings.
type CryptoConfig struct {
	// PasswordLength is the length of generated passwords (default: 16)
	PasswordLength int `env:"CRYPTO_PASSWORD_LENGTH" default:"16"`

	// Backends is the ordered fallback chain (default: native,zip,stream)
	Backends []string `env:"CRYPTO_BACKENDS" default:"native,zip,stream"`

	// ScryptN is the scrypt cost of the stream backend (default: 32768)
	ScryptN int `env:"CRYPTO_SCRYPT_N" default:"32768"`
}

// RunLogConfig holds the append-only run log settings.
type RunLogConfig struct {
	// Path is the run log file; empty disables logging (default: logs/run_log.txt)
	Path string `env:"RUNLOG_PATH" default:"logs/run_log.txt"`

	// RecordPassword writes generated passwords in clear text (default: true)
	RecordPassword bool `env:"RUNLOG_RECORD_PASSWORD" default:"true"`
}

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the limit per client IP (default: 30)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"30"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables X-API-Key authentication on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

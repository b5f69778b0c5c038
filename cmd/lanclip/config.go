package main

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config validation errors
var (
	ErrInvalidPort        = errors.New("port must be between 1 and 65535")
	ErrInvalidMetricsAddr = errors.New("metrics_addr cannot be empty")
	ErrInvalidLogFormat   = errors.New("log_format must be 'json' or 'console'")
	ErrInvalidLogLevel    = errors.New("log_level must be debug, info, warn, or error")
	ErrInvalidTick        = errors.New("tick_interval must be positive")
	ErrInvalidDebounce    = errors.New("debounce_window must be positive")
	ErrInvalidRediscover  = errors.New("rediscover_interval must be positive")
	ErrInvalidTimeout     = errors.New("timeouts must be positive")
)

// Config is the process configuration, read from the environment with the
// LANCLIP prefix.
type Config struct {
	PeerName           string        `envconfig:"PEER_NAME"`
	Port               int           `envconfig:"PORT" default:"53300"`
	MetricsAddr        string        `envconfig:"METRICS_ADDR" default:"0.0.0.0:9100"`
	LogFormat          string        `envconfig:"LOG_FORMAT" default:"console"`
	LogLevel           string        `envconfig:"LOG_LEVEL" default:"info"`
	TickInterval       time.Duration `envconfig:"TICK_INTERVAL" default:"1s"`
	DebounceWindow     time.Duration `envconfig:"DEBOUNCE_WINDOW" default:"2s"`
	RediscoverInterval time.Duration `envconfig:"REDISCOVER_INTERVAL" default:"5m"`
	ReadTimeout        time.Duration `envconfig:"READ_TIMEOUT" default:"200ms"`
	DialTimeout        time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	NetPollInterval    time.Duration `envconfig:"NET_POLL_INTERVAL" default:"3s"`
	ReceiveDir         string        `envconfig:"RECEIVE_DIR"`
}

// LoadConfig reads, defaults, and validates the configuration.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("LANCLIP", &cfg); err != nil {
		return nil, err
	}
	if cfg.PeerName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "lanclip"
		}
		cfg.PeerName = hostname
	}
	if cfg.ReceiveDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.ReceiveDir = filepath.Join(home, "Downloads")
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateConfig returns an error when cfg is unusable.
func ValidateConfig(cfg *Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return ErrInvalidPort
	}
	if cfg.MetricsAddr == "" {
		return ErrInvalidMetricsAddr
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return ErrInvalidLogFormat
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	if cfg.TickInterval <= 0 {
		return ErrInvalidTick
	}
	if cfg.DebounceWindow <= 0 {
		return ErrInvalidDebounce
	}
	if cfg.RediscoverInterval <= 0 {
		return ErrInvalidRediscover
	}
	if cfg.ReadTimeout <= 0 || cfg.DialTimeout <= 0 || cfg.NetPollInterval <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

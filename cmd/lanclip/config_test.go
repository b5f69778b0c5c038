package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.PeerName, "peer name defaults to the hostname")
	assert.Equal(t, 53300, cfg.Port)
	assert.Equal(t, "0.0.0.0:9100", cfg.MetricsAddr)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, 2*time.Second, cfg.DebounceWindow)
	assert.Equal(t, 5*time.Minute, cfg.RediscoverInterval)
	assert.Equal(t, 200*time.Millisecond, cfg.ReadTimeout)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, 3*time.Second, cfg.NetPollInterval)
	assert.NotEmpty(t, cfg.ReceiveDir)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("LANCLIP_PEER_NAME", "test-node")
	t.Setenv("LANCLIP_PORT", "40000")
	t.Setenv("LANCLIP_LOG_FORMAT", "json")
	t.Setenv("LANCLIP_TICK_INTERVAL", "250ms")
	t.Setenv("LANCLIP_RECEIVE_DIR", "/tmp/lanclip-inbox")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test-node", cfg.PeerName)
	assert.Equal(t, 40000, cfg.Port)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "/tmp/lanclip-inbox", cfg.ReceiveDir)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			PeerName:           "node",
			Port:               53300,
			MetricsAddr:        "0.0.0.0:9100",
			LogFormat:          "console",
			LogLevel:           "info",
			TickInterval:       time.Second,
			DebounceWindow:     2 * time.Second,
			RediscoverInterval: 5 * time.Minute,
			ReadTimeout:        200 * time.Millisecond,
			DialTimeout:        5 * time.Second,
			NetPollInterval:    3 * time.Second,
			ReceiveDir:         "/tmp",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"port zero", func(c *Config) { c.Port = 0 }, ErrInvalidPort},
		{"port too high", func(c *Config) { c.Port = 70000 }, ErrInvalidPort},
		{"empty metrics addr", func(c *Config) { c.MetricsAddr = "" }, ErrInvalidMetricsAddr},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, ErrInvalidLogFormat},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, ErrInvalidLogLevel},
		{"zero tick", func(c *Config) { c.TickInterval = 0 }, ErrInvalidTick},
		{"negative debounce", func(c *Config) { c.DebounceWindow = -time.Second }, ErrInvalidDebounce},
		{"zero rediscover", func(c *Config) { c.RediscoverInterval = 0 }, ErrInvalidRediscover},
		{"zero read timeout", func(c *Config) { c.ReadTimeout = 0 }, ErrInvalidTimeout},
		{"zero dial timeout", func(c *Config) { c.DialTimeout = 0 }, ErrInvalidTimeout},
		{"zero poll interval", func(c *Config) { c.NetPollInterval = 0 }, ErrInvalidTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

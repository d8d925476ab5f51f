package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.Database = DatabaseConfig{
		Path:    ":memory:",
		Timeout: 1 * time.Second,
	}
	cfg.Feed.HTTPTimeout = 5 * time.Second
	cfg.Feed.UserAgent = "plx-test/1.0"
	cfg.Layout.FrameInterval = time.Millisecond
	return cfg
}

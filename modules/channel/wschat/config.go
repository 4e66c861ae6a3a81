package wschat

import "time"

// Config holds WebSocket chat channel configuration.
type Config struct {
	// MaxConnections bounds concurrent chat connections.
	MaxConnections int `yaml:"max_connections"`

	// WriteTimeout bounds a single outbound frame write.
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// defaults fills zero values with sensible defaults.
func (c *Config) defaults() {
	if c.MaxConnections <= 0 {
		c.MaxConnections = 64
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
}

package config

import "time"

// Server defaults
const (
	DefaultServerAddress      = ":8080"
	DefaultServerReadTimeout  = 30 * time.Second
	DefaultServerWriteTimeout = 30 * time.Second
	DefaultServerIdleTimeout  = 60 * time.Second
)

// ServerConfig represents server-specific configuration settings.
type ServerConfig struct {
	// Address is the address to listen on (e.g., ":8080")
	Address string `mapstructure:"address" yaml:"address"`
	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	// WriteTimeout is the maximum duration before timing out writes of the response
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
}

// NewServerConfig creates a server configuration with default values.
func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:      DefaultServerAddress,
		ReadTimeout:  DefaultServerReadTimeout,
		WriteTimeout: DefaultServerWriteTimeout,
		IdleTimeout:  DefaultServerIdleTimeout,
	}
}

// Validate checks if the configuration is valid.
func (c *ServerConfig) Validate() error {
	if c.Address == "" {
		return &ValidationError{Field: "server.address", Value: c.Address, Reason: "is required"}
	}
	return nil
}

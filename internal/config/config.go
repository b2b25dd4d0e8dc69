package config

import (
	"errors"
	"fmt"
	"time"
)

// ICEServer is a STUN/TURN server handed to clients.
type ICEServer struct {
	URLs       []string `mapstructure:"urls" yaml:"urls"`
	Username   string   `mapstructure:"username" yaml:"username,omitempty"`
	Credential string   `mapstructure:"credential" yaml:"credential,omitempty"`
}

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	MaxMessageBytes int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	RateLimit       int           `mapstructure:"rate_limit" yaml:"rate_limit"`
	SendBuffer      int           `mapstructure:"send_buffer" yaml:"send_buffer"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	PingInterval    time.Duration `mapstructure:"ping_interval" yaml:"ping_interval"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`

	RoomCapacity  int           `mapstructure:"room_capacity" yaml:"room_capacity"`
	EmptyRoomTTL  time.Duration `mapstructure:"empty_room_ttl" yaml:"empty_room_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`

	JWTSecret   string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string `mapstructure:"jwt_audience" yaml:"jwt_audience"`

	MetricsEnabled bool        `mapstructure:"metrics_enabled" yaml:"metrics_enabled"`
	ICEServers     []ICEServer `mapstructure:"ice_servers" yaml:"ice_servers"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":3000",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		MaxMessageBytes:   64 << 10,
		RateLimit:         600,
		SendBuffer:        64,
		WriteTimeout:      5 * time.Second,
		PingInterval:      30 * time.Second,
		RoomCapacity:      100,
		EmptyRoomTTL:      10 * time.Minute,
		SweepInterval:     time.Minute,
		MetricsEnabled:    true,
		ICEServers: []ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.RoomCapacity != 0 {
		c.RoomCapacity = other.RoomCapacity
	}
	if other.JWTSecret != "" {
		c.JWTSecret = other.JWTSecret
	}
}

// AuthEnabled reports whether bearer tokens are required.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.RoomCapacity <= 0 {
		return fmt.Errorf("room_capacity must be positive, got %d", c.RoomCapacity)
	}
	if c.MaxMessageBytes <= 0 {
		return fmt.Errorf("max_message_bytes must be positive, got %d", c.MaxMessageBytes)
	}
	if c.SendBuffer <= 0 {
		return fmt.Errorf("send_buffer must be positive, got %d", c.SendBuffer)
	}
	for i, s := range c.ICEServers {
		if len(s.URLs) == 0 {
			return fmt.Errorf("ice_servers[%d]: urls are required", i)
		}
	}
	return nil
}

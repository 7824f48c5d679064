package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"
)

// ServerConfig contains all configuration for the static file server.
type ServerConfig struct {
	Server  ListenerConfig `mapstructure:"server"`
	Pool    PoolConfig     `mapstructure:"pool"`
	Static  StaticConfig   `mapstructure:"static"`
	Routes  []RouteConfig  `mapstructure:"routes"`
	Admin   AdminConfig    `mapstructure:"admin"`
	Logging LoggingConfig  `mapstructure:"logging"`
}

// ListenerConfig contains TCP listener configuration. MaxHeaderBytes caps
// how much of the request line and headers is read from a connection before
// it is answered with 431.
type ListenerConfig struct {
	Addr string `mapstructure:"addr"`
	// MaxConnections stops the accept loop after that many connections.
	// Zero means no limit.
	MaxConnections int           `mapstructure:"max_connections"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

// PoolConfig contains worker pool configuration.
type PoolConfig struct {
	Size int `mapstructure:"size"`
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	Root     string `mapstructure:"root"`
	NotFound string `mapstructure:"not_found"`
}

// RouteConfig maps request paths matching Pattern to a file under the
// static root. Delay is slept before responding.
type RouteConfig struct {
	Pattern string        `mapstructure:"pattern"`
	File    string        `mapstructure:"file"`
	Delay   time.Duration `mapstructure:"delay"`
}

// AdminConfig contains the metrics and health endpoints configuration.
// An empty address disables the corresponding server.
type AdminConfig struct {
	HTTPAddr         string `mapstructure:"http_addr"`
	GRPCAddr         string `mapstructure:"grpc_addr"`
	EnableReflection bool   `mapstructure:"enable_reflection"`
}

// DefaultRoutes reproduces the classic hello server: "/" serves hello.html
// and "/sleep" serves the same page after five seconds.
func DefaultRoutes() []RouteConfig {
	return []RouteConfig{
		{Pattern: "/", File: "hello.html"},
		{Pattern: "/sleep", File: "hello.html", Delay: 5 * time.Second},
	}
}

// LoadServer loads the server configuration from the given path.
// If configPath is empty, it looks for server.yaml in the config/ directory.
// Environment variables with GOPOOL_SERVER_ prefix override config file values.
func LoadServer(configPath string) (*ServerConfig, error) {
	v := viper.New()

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.max_connections", 0)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.max_header_bytes", http.DefaultMaxHeaderBytes)
	v.SetDefault("pool.size", 4)
	v.SetDefault("static.root", "static")
	v.SetDefault("static.not_found", "404.html")
	v.SetDefault("admin.http_addr", "127.0.0.1:9100")
	v.SetDefault("admin.grpc_addr", "127.0.0.1:9101")
	v.SetDefault("admin.enable_reflection", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("server")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("GOPOOL_SERVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if !v.IsSet("routes") {
		cfg.Routes = DefaultRoutes()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate reports configuration that the server cannot start with.
func (c *ServerConfig) Validate() error {
	if c.Pool.Size <= 0 {
		return errors.New("pool.size must be greater than 0")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.MaxConnections < 0 {
		return errors.New("server.max_connections must not be negative")
	}
	if c.Server.MaxHeaderBytes <= 0 {
		return errors.New("server.max_header_bytes must be greater than 0")
	}
	if c.Static.Root == "" {
		return errors.New("static.root is required")
	}
	for i, route := range c.Routes {
		if route.Pattern == "" || route.File == "" {
			return fmt.Errorf("routes[%d]: pattern and file are required", i)
		}
		if !doublestar.ValidatePattern(route.Pattern) {
			return fmt.Errorf("routes[%d]: invalid pattern %q", i, route.Pattern)
		}
		if route.Delay < 0 {
			return fmt.Errorf("routes[%d]: delay must not be negative", i)
		}
	}
	return nil
}

// Package config loads the optional TOML configuration file controlling the
// server listen address and logging behavior.
package config

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

const (
	DefaultPort = 3000
	DefaultBind = "0.0.0.0"
)

// LoggingConfig is the [logging] section.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Format is either compact (human-readable text) or json.
	Format string `mapstructure:"format"`

	// Output is stdout, stderr, or a file path to append to.
	Output string `mapstructure:"output"`
}

// ServerConfig is the [server] section.
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Bind string `mapstructure:"bind"`
}

type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Server  ServerConfig  `mapstructure:"server"`
}

// ListenAddr returns the bind address for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "compact",
			Output: "stdout",
		},
		Server: ServerConfig{
			Port: DefaultPort,
			Bind: DefaultBind,
		},
	}
}

// Load reads the configuration with the following precedence:
//
//  1. the explicit path argument (usually the --config flag)
//  2. the CONFIG_FILE environment variable
//  3. built-in defaults
//
// A path that is given but unreadable or malformed is an error; no config
// file at all just yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "compact")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.bind", DefaultBind)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %q", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %q", path)
	}

	return &cfg, nil
}

// Apply configures logger according to the logging section.
func (c LoggingConfig) Apply(logger *logrus.Logger) error {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", c.Level)
	}
	logger.SetLevel(level)

	switch c.Format {
	case "", "compact":
		logger.SetFormatter(&prefixed.TextFormatter{})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return errors.Errorf("invalid log format %q", c.Format)
	}

	switch c.Output {
	case "", "stdout":
		logger.SetOutput(os.Stdout)
	case "stderr":
		logger.SetOutput(os.Stderr)
	default:
		f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return errors.Wrapf(err, "failed to open log file %q", c.Output)
		}
		logger.SetOutput(f)
	}

	return nil
}

package config

import (
	"io"

	"github.com/nemanja-m/gopool/internal/shared/logging"
)

// LoggingConfig contains logging-related configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NewLogger builds the structured logger described by c.
func (c LoggingConfig) NewLogger(w io.Writer) (logging.Logger, error) {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewSlogLoggerWithWriter(w, level, c.Format), nil
}

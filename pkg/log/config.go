package log

import (
	"fmt"
	"os"
)

// Config is the process-level logging configuration.
type Config struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// ConfigFromEnv builds a Config from LANEQ_LOG_LEVEL and LANEQ_LOG_FORMAT.
func ConfigFromEnv() Config {
	return Config{
		Level:  os.Getenv("LANEQ_LOG_LEVEL"),
		Format: os.Getenv("LANEQ_LOG_FORMAT"),
	}
}

// ApplyConfig builds a Logger from a Config. Defaults: level=info, format=text.
func ApplyConfig(cfg Config) (Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	var formatter Formatter
	switch cfg.Format {
	case "", "text":
		formatter = &TextFormatter{}
	case "json":
		formatter = &JSONFormatter{}
	default:
		return nil, fmt.Errorf("log: unknown format %q", cfg.Format)
	}
	return NewLogger(WithLevel(level), WithFormatter(formatter)), nil
}

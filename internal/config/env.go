package config

import (
	"os"
	"strconv"
	"time"
)

// FromEnv overlays LANEQ_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("LANEQ_LANES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Queue.Lanes = n
		}
	}
	if v := os.Getenv("LANEQ_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Queue.Capacity = n
		}
	}
	if v := os.Getenv("LANEQ_HIGH_WATERMARK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Queue.HighWatermark = n
		}
	}
	if v := os.Getenv("LANEQ_LOW_WATERMARK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Queue.LowWatermark = n
		}
	}
	if v := os.Getenv("LANEQ_POLICY"); v != "" {
		cfg.Queue.Policy = v
	}
	if v := os.Getenv("LANEQ_ADMISSION_EXPR"); v != "" {
		cfg.Queue.AdmissionExpr = v
	}
	if v := os.Getenv("LANEQ_DATA_DIR"); v != "" {
		cfg.Queue.DataDir = v
	}
	if v := os.Getenv("LANEQ_PRODUCERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Demo.Producers = n
		}
	}
	if v := os.Getenv("LANEQ_CONSUMERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Demo.Consumers = n
		}
	}
	if v := os.Getenv("LANEQ_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Demo.Duration = Duration(d)
		}
	}
	if v := os.Getenv("LANEQ_METRICS_ADDR"); v != "" {
		cfg.Demo.MetricsAddr = v
	}
	if v := os.Getenv("LANEQ_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LANEQ_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

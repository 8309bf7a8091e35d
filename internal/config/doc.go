// Package config provides loading and environment overlay for laneq
// configuration. It exposes a Default() baseline, file loading for JSON
// and YAML, and a LANEQ_* env overlay.
//
// Example:
//
//	cfg, err := config.Load("/etc/laneq.yaml")
//	if err != nil {
//	    // handle
//	}
//	config.FromEnv(&cfg)
package config

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	Queue Queue `json:"queue" yaml:"queue"`
	Demo  Demo  `json:"demo" yaml:"demo"`
	Log   Log   `json:"log" yaml:"log"`
}

// Queue captures the queue shape and policies.
type Queue struct {
	Lanes         int    `json:"lanes" yaml:"lanes"`
	Capacity      int    `json:"capacity" yaml:"capacity"`
	HighWatermark int    `json:"highWatermark" yaml:"highWatermark"`
	LowWatermark  int    `json:"lowWatermark" yaml:"lowWatermark"`
	Policy        string `json:"policy" yaml:"policy"`
	AdmissionExpr string `json:"admissionExpr" yaml:"admissionExpr"`
	DataDir       string `json:"dataDir" yaml:"dataDir"`
}

// Demo configures the synthetic producer/consumer driver.
type Demo struct {
	Producers   int      `json:"producers" yaml:"producers"`
	Consumers   int      `json:"consumers" yaml:"consumers"`
	Duration    Duration `json:"duration" yaml:"duration"`
	MetricsAddr string   `json:"metricsAddr" yaml:"metricsAddr"`
}

// Duration is a time.Duration that unmarshals from strings like "10s" in
// both JSON and YAML.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: bad duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Log mirrors the logger's env-driven settings so a config file can set
// them too.
type Log struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Queue: Queue{
			Lanes:         4,
			Capacity:      1024,
			HighWatermark: 768,
			LowWatermark:  256,
			Policy:        "reject",
		},
		Demo: Demo{
			Producers: 4,
			Consumers: 2,
			Duration:  Duration(10 * time.Second),
		},
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If
// path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	return cfg, nil
}

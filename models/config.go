// Package models defines data structures for configuration, tallies and rankings.
package models

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "tweetrank.yaml"
	DefaultTopN       = 10
	DefaultWorkers    = 4
	DefaultTrim       = "row"
	DefaultDBPath     = "tweetrank.db"
	DefaultListenAddr = ":7946"
	DefaultKafkaTopic = "tweetrank-tallies"
	DefaultCacheTTL   = 24 * time.Hour
)

// Config holds runtime configuration for a ranking run.
// Values are read from a YAML file and then overridden by CLI flags.
type Config struct {
	Datasets       []string        `yaml:"datasets"`
	TopN           int             `yaml:"top_n"`
	Workers        int             `yaml:"workers"`
	Trim           string          `yaml:"trim"`            // row | fixed:N | none
	Format         string          `yaml:"format"`          // text | yaml | json
	Output         string          `yaml:"output"`          // report file; stdout when empty
	DetectLanguage bool            `yaml:"detect_language"` // fill missing doc.lang from doc.text
	MinConfidence  float64         `yaml:"min_confidence"`
	DBPath         string          `yaml:"db_path"`
	DisableDB      bool            `yaml:"disable_db"`
	MongoURI       string          `yaml:"mongo_uri"`
	CacheDir       string          `yaml:"cache_dir"` // tally cache for the rank command; off when empty
	CacheTTL       time.Duration   `yaml:"cache_ttl"`
	Transport      TransportConfig `yaml:"transport"`
}

// TransportConfig selects how local tallies reach the coordinator in multi-process mode.
type TransportConfig struct {
	Kind         string   `yaml:"kind"` // http | kafka
	ListenAddr   string   `yaml:"listen_addr"`
	Coordinator  string   `yaml:"coordinator"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		TopN:          DefaultTopN,
		Workers:       DefaultWorkers,
		Trim:          DefaultTrim,
		Format:        "text",
		MinConfidence: 0.5,
		DBPath:        DefaultDBPath,
		CacheTTL:      DefaultCacheTTL,
		Transport: TransportConfig{
			Kind:       "http",
			ListenAddr: DefaultListenAddr,
			KafkaTopic: DefaultKafkaTopic,
		},
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
// A missing file is not an error when it is the default path.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultConfigPath {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks settings that must hold before any scanning starts.
func (c *Config) Validate() error {
	if len(c.Datasets) == 0 {
		return errors.New("no datasets configured")
	}
	if c.TopN < 0 {
		return fmt.Errorf("top must be >= 0, got %d", c.TopN)
	}
	switch c.Format {
	case "text", "yaml", "json":
	default:
		return fmt.Errorf("unknown format %q (want text, yaml or json)", c.Format)
	}
	if c.DetectLanguage && (c.MinConfidence < 0 || c.MinConfidence > 1) {
		return fmt.Errorf("min_confidence must be within [0,1], got %g", c.MinConfidence)
	}
	return nil
}

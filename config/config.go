// Package config loads and validates the run configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/qtrader/agent"
	"github.com/rustyeddy/qtrader/market"
)

// Config represents the complete run configuration.
type Config struct {
	Agent   agent.Config  `json:"agent" yaml:"agent"`
	Data    DataConfig    `json:"data" yaml:"data"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
}

// DataConfig locates the dataset and the train/test split.
type DataConfig struct {
	CSV       string `json:"csv" yaml:"csv"`
	SplitDate string `json:"split_date,omitempty" yaml:"split_date,omitempty"`
}

// SplitTime parses the split date, or returns zero when unset.
func (d DataConfig) SplitTime() (time.Time, error) {
	if d.SplitDate == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(market.DateLayout, d.SplitDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad split_date %q: %w", d.SplitDate, err)
	}
	return t, nil
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type         string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	EpisodesFile string `json:"episodes_file,omitempty" yaml:"episodes_file,omitempty"`
	TradesFile   string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DBPath       string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Agent.Validate(); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if c.Data.CSV == "" {
		return fmt.Errorf("data.csv is required")
	}
	if _, err := c.Data.SplitTime(); err != nil {
		return err
	}
	switch c.Journal.Type {
	case "none", "":
	case "csv":
		if c.Journal.EpisodesFile == "" || c.Journal.TradesFile == "" {
			return fmt.Errorf("journal episodes_file and trades_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Agent: agent.Default(),
		Data: DataConfig{
			CSV:       "./datasets/IBM.csv",
			SplitDate: "2016-01-01",
		},
		Journal: JournalConfig{
			Type:         "csv",
			EpisodesFile: "./episodes.csv",
			TradesFile:   "./trades.csv",
		},
	}
}

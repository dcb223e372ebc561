// Package config loads baseflow batch configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level batch configuration.
type Config struct {
	// Input is the path to the wide-format streamflow CSV.
	Input string `yaml:"input"`
	// Stations carries per-station metadata, keyed by CSV column name.
	// Stations absent from this list are processed with defaults.
	Stations []StationConfig `yaml:"stations,omitempty"`
	// Methods is a comma-separated method list or "all".
	Methods string `yaml:"methods,omitempty"`
	// Workers caps concurrent stations; 0 means unlimited.
	Workers int          `yaml:"workers,omitempty"`
	Output  OutputConfig `yaml:"output,omitempty"`
	Debug   bool         `yaml:"debug,omitempty"`
}

// StationConfig is per-station metadata.
type StationConfig struct {
	Name string `yaml:"name"`
	// AreaKm2 is the catchment area; 0 means unknown.
	AreaKm2 float64 `yaml:"area_km2,omitempty"`
	// FreezePeriod is an ice-affected window, "MM-DD:MM-DD".
	FreezePeriod string `yaml:"freeze_period,omitempty"`
}

// OutputConfig selects result sinks.
type OutputConfig struct {
	// CSVDir receives one baseflow CSV per station; empty disables it.
	CSVDir string `yaml:"csv_dir,omitempty"`
	// SQLite is a database path; empty disables SQLite output.
	SQLite string `yaml:"sqlite,omitempty"`
}

// Load reads and validates the YAML config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// Validate checks for required fields and internal consistency.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input is required")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	seen := make(map[string]bool)
	for _, st := range c.Stations {
		if st.Name == "" {
			return fmt.Errorf("station without a name")
		}
		if seen[st.Name] {
			return fmt.Errorf("duplicate station %q", st.Name)
		}
		seen[st.Name] = true
		if st.AreaKm2 < 0 {
			return fmt.Errorf("station %q: negative area", st.Name)
		}
	}
	return nil
}

// Station returns the metadata for name, or a zero-value entry when the
// station is not configured.
func (c *Config) Station(name string) StationConfig {
	for _, st := range c.Stations {
		if st.Name == name {
			return st
		}
	}
	return StationConfig{Name: name}
}

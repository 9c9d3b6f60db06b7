package monitoring

import (
	"fmt"
	"path/filepath"
	"strings"
)

// textfileExtension is the suffix the node exporter textfile collector reads.
const textfileExtension = ".prom"

// Config holds configuration for the monitoring service
type Config struct {
	Enabled bool
	// File receives the Prometheus text exposition when the command finishes.
	File string
}

// DefaultConfig returns default monitoring configuration
func DefaultConfig() *Config {
	return &Config{Enabled: false}
}

// FromFile enables monitoring when path is set.
func FromFile(path string) *Config {
	return &Config{Enabled: path != "", File: path}
}

// Validate validates the monitoring configuration
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.File == "" {
		return fmt.Errorf("metrics file cannot be empty")
	}
	if filepath.Ext(c.File) != textfileExtension {
		return fmt.Errorf("metrics file must end in %s: got %s", textfileExtension, c.File)
	}
	if strings.HasSuffix(c.File, string(filepath.Separator)) {
		return fmt.Errorf("metrics file cannot be a directory: %s", c.File)
	}
	return nil
}

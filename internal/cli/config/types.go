// Package config provides configuration management for the flowsync CLI.
//
// Values are merged from four sources with the later ones winning:
// built-in defaults, a flowsync.yaml config file, FLOWSYNC_* environment
// variables, and command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultServerTimeout bounds one tracking-service request, retries
// excluded.
const DefaultServerTimeout = 30 * time.Second

// DefaultOutput is the output format used when none is configured.
const DefaultOutput = "auto"

// Config holds all CLI configuration options.
type Config struct {
	ServerURL        string        `koanf:"server_url"`
	ServerToken      string        `koanf:"server_token"`
	ServerTimeout    time.Duration `koanf:"server_timeout"`
	Project          string        `koanf:"project"`
	Operator         string        `koanf:"operator"`
	Register         bool          `koanf:"register"`
	Update           bool          `koanf:"update"`
	ForceUpdate      bool          `koanf:"force_update"`
	AnalyzeAdapters  bool          `koanf:"analyze_adapters"`
	ForceHistograms  bool          `koanf:"force_histograms"`
	SampleSize       int           `koanf:"sample_size"`
	MinIndexFraction float64       `koanf:"min_index_fraction"`
	SampleSeed       uint64        `koanf:"sample_seed"`
	Threads          int           `koanf:"threads"`
	DryRun           bool          `koanf:"dry_run"`
	OutputFormat     string        `koanf:"output"`
	Verbose          bool          `koanf:"verbose"`
}

// Validate checks the fields a service-facing run needs. Dry runs still
// resolve records, so the same rules apply to them.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required (--server-url or FLOWSYNC_SERVER_URL)")
	}
	if c.ServerToken == "" {
		return fmt.Errorf("server_token is required (--token or FLOWSYNC_SERVER_TOKEN)")
	}
	if c.Project == "" {
		return fmt.Errorf("project is required (--project or FLOWSYNC_PROJECT)")
	}
	if _, err := uuid.Parse(c.Project); err != nil {
		return fmt.Errorf("project %q is not a valid UUID: %w", c.Project, err)
	}
	if c.MinIndexFraction < 0 || c.MinIndexFraction >= 1 {
		return fmt.Errorf("min_index_fraction %v is outside [0, 1)", c.MinIndexFraction)
	}
	if c.SampleSize < 0 {
		return fmt.Errorf("sample_size must not be negative, got %d", c.SampleSize)
	}
	if c.Threads < 0 {
		return fmt.Errorf("threads must not be negative, got %d", c.Threads)
	}
	return nil
}

// ProjectUUID returns the parsed project identifier. Call Validate
// first; an unparsable project yields the zero UUID here.
func (c *Config) ProjectUUID() uuid.UUID {
	id, _ := uuid.Parse(c.Project)
	return id
}

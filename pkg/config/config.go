// Package config loads the settings that drive cmd/fae's subcommands:
// where the template library lives, which optional collaborators
// (render cache, audit store, metrics, tracing) to wire up, and how to
// reach each of their backends.
//
// Grounded on the teacher's pkg/config/defaults.go, which held a single
// DefaultPort constant for the GlyphLang server; expanded here into a
// YAML-loadable struct the way a CLI with several subcommands and
// several optional backends needs, using gopkg.in/yaml.v3.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LibraryConfig describes the template directory to serve.
type LibraryConfig struct {
	Root               string `yaml:"root"`
	Recursive          bool   `yaml:"recursive"`
	IgnoreBadTemplates bool   `yaml:"ignore_bad_templates"`
	Watch              bool   `yaml:"watch"`
}

// CacheConfig configures the redis-backed render cache (pkg/rendercache).
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	DB      int    `yaml:"db"`
	TTLSecs int    `yaml:"ttl_seconds"`
}

// AuditConfig configures the render audit log (pkg/audit).
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Driver  string `yaml:"driver"` // "sqlite", "postgres", "mysql", "mongo"
	DSN     string `yaml:"dsn"`
}

// MetricsConfig configures the Prometheus endpoint (pkg/metrics).
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// TracingConfig configures the OpenTelemetry exporter (pkg/tracing).
type TracingConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Exporter     string `yaml:"exporter"` // "stdout" or "otlp"
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
}

// PreviewConfig configures the live preview server (pkg/preview).
type PreviewConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the root of a Fae YAML configuration file.
type Config struct {
	Library LibraryConfig `yaml:"library"`
	Cache   CacheConfig   `yaml:"cache"`
	Audit   AuditConfig   `yaml:"audit"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
	Preview PreviewConfig `yaml:"preview"`
}

// Default returns the configuration cmd/fae falls back to when no
// config file is given: a recursively-scanned library rooted at the
// current directory, every optional backend disabled.
func Default() Config {
	return Config{
		Library: LibraryConfig{Root: ".", Recursive: true, IgnoreBadTemplates: false},
		Metrics: MetricsConfig{Addr: ":9090"},
		Tracing: TracingConfig{Exporter: "stdout", ServiceName: "fae"},
		Preview: PreviewConfig{Addr: ":8080"},
	}
}

// Load reads and parses a YAML config file at path, filling any field
// the file omits with Default's value for that top-level section.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Package config provides configuration loading for the supportmesh daemon.
//
// Precedence (highest to lowest):
//  1. Environment variables (SUPPORTMESH_SERVER_ADDR, SUPPORTMESH_QUEUE_URL, ...)
//  2. YAML config file
//  3. Hardcoded defaults
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment variables the loader reads.
const envPrefix = "SUPPORTMESH_"

// configSections are the nested config groups. The env transformer only
// splits a variable into section.field when the first segment names one of
// these; anything else is a top-level key such as log_level.
var configSections = map[string]bool{
	"server":    true,
	"storage":   true,
	"queue":     true,
	"inference": true,
	"engine":    true,
}

// Secret wraps strings that should be redacted in logs and serialization.
// Use Value() to access the actual secret value.
type Secret string

// String implements fmt.Stringer. Always returns a redacted value.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// Value returns the actual secret value. Use sparingly.
func (s Secret) Value() string { return string(s) }

// IsSet reports whether the secret has a non-empty value.
func (s Secret) IsSet() bool { return s != "" }

// MarshalJSON implements json.Marshaler. Always returns a redacted value.
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("[REDACTED]")
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr       string `koanf:"addr"`
	UploadsDir string `koanf:"uploads_dir"`
}

// StorageConfig configures ticket persistence. Backend is "file" or "memory".
type StorageConfig struct {
	Backend string `koanf:"backend"`
	Dir     string `koanf:"dir"`
}

// QueueConfig configures the human-handoff queue. With Enabled false, flagged
// tickets are still recorded but not published anywhere.
type QueueConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`
	Subject string `koanf:"subject"`
}

// InferenceConfig selects and configures the model provider. Provider is
// "openai", "anthropic" or "mock".
type InferenceConfig struct {
	Provider            string  `koanf:"provider"`
	APIKey              Secret  `koanf:"api_key"`
	ConfidenceThreshold float64 `koanf:"confidence_threshold"`
}

// EngineConfig bounds the workflow loop.
type EngineConfig struct {
	MaxSteps int `koanf:"max_steps"`
}

// Config is the full daemon configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Queue     QueueConfig     `koanf:"queue"`
	Inference InferenceConfig `koanf:"inference"`
	Engine    EngineConfig    `koanf:"engine"`
	LogLevel  string          `koanf:"log_level"`
}

// Load reads the YAML file at path (skipped when path is empty or missing),
// overrides with SUPPORTMESH_* environment variables, applies defaults and
// validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Missing file falls back to env vars and defaults.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	// SUPPORTMESH_SERVER_ADDR -> server.addr
	// SUPPORTMESH_QUEUE_URL -> queue.url
	// SUPPORTMESH_INFERENCE_API_KEY -> inference.api_key
	// SUPPORTMESH_LOG_LEVEL -> log_level (top-level keys keep their underscores)
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		section, field, found := strings.Cut(lower, "_")
		if !found || !configSections[section] {
			return lower
		}
		return section + "." + field
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.UploadsDir == "" {
		cfg.Server.UploadsDir = "uploads"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "storage"
	}
	if cfg.Queue.URL == "" {
		cfg.Queue.URL = "nats://localhost:4222"
	}
	if cfg.Queue.Subject == "" {
		cfg.Queue.Subject = "supportmesh.handoff"
	}
	if cfg.Inference.Provider == "" {
		cfg.Inference.Provider = "openai"
	}
	if cfg.Inference.ConfidenceThreshold == 0 {
		cfg.Inference.ConfidenceThreshold = 0.7
	}
	if cfg.Engine.MaxSteps == 0 {
		cfg.Engine.MaxSteps = 16
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "memory":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Inference.Provider {
	case "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("unknown inference provider %q", c.Inference.Provider)
	}

	if c.Inference.ConfidenceThreshold < 0 || c.Inference.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be within [0, 1], got %v", c.Inference.ConfidenceThreshold)
	}

	if c.Engine.MaxSteps < 1 {
		return fmt.Errorf("engine max_steps must be positive, got %d", c.Engine.MaxSteps)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}

	return nil
}

package app

import "errors"

// Unset marks a numeric override that was not given.
const Unset = -1

// Config holds all the necessary configuration for an App instance to run.
// Overrides replace the corresponding values from the configuration files.
type Config struct {
	ConfigPaths []string // hcl or yaml files and directories
	Format      string   // "hcl" or "yaml", used by the entrypoint to pick a loader

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	Workers   int    // explorers.count override, Unset or 0 to keep
	HashCount int    // explorers.hash_count override, Unset to keep
	Algorithm string // explorers.algorithm override, empty to keep
	RunID     string // visited.run_id override, empty to keep
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ConfigPaths) == 0 {
		return nil, errors.New("at least one configuration path is required")
	}
	if cfg.Workers < Unset {
		return nil, errors.New("workers must not be negative")
	}
	if cfg.HashCount < Unset {
		return nil, errors.New("hash-count must not be negative")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, errors.New("healthcheck-port must be between 0 and 65535")
	}
	return &cfg, nil
}

// Package config loads forecast's tool settings from defaults, an optional
// TOML file and FORECAST_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"forecast/internal/apperrors"
	"forecast/internal/models"
)

// Config holds all forecast configuration
type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Retirement RetirementConfig `toml:"retirement"`
	Scenario   ScenarioConfig   `toml:"scenario"`
	Logging    LoggingConfig    `toml:"logging"`
	Plans      PlansConfig      `toml:"plans"`
}

// SimulationConfig holds engine defaults
type SimulationConfig struct {
	Iterations     int `toml:"iterations"`
	Workers        int `toml:"workers"`
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// RetirementConfig holds retirement defaults
type RetirementConfig struct {
	SuccessThreshold float64 `toml:"success_threshold"`
}

// ScenarioConfig holds stress-test thresholds
type ScenarioConfig struct {
	MaterialImpactThreshold float64 `toml:"material_impact_threshold"`
	RecoveryTolerance       float64 `toml:"recovery_tolerance"`
}

// LoggingConfig holds log settings
type LoggingConfig struct {
	Level string `toml:"level"`
}

// PlansConfig locates plan files
type PlansConfig struct {
	Dir string `toml:"dir"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		Simulation: SimulationConfig{
			Iterations:     models.DefaultIterations,
			Workers:        runtime.GOMAXPROCS(0),
			TimeoutSeconds: 300,
		},
		Retirement: RetirementConfig{
			SuccessThreshold: models.DefaultSuccessThreshold,
		},
		Scenario: ScenarioConfig{
			MaterialImpactThreshold: 0.10,
			RecoveryTolerance:       0.01,
		},
		Logging: LoggingConfig{Level: "info"},
		Plans:   PlansConfig{Dir: filepath.Join(ConfigDir(), "plans")},
	}
}

// ConfigDir returns the XDG-compliant config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "forecast")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "forecast")
}

// ConfigPath returns the full path to the default config file
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file at path, or the default path when empty, then
// applies environment overrides. A missing file yields defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = ConfigPath()
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// applyEnv overrides fields from FORECAST_* variables
func (c *Config) applyEnv() error {
	ints := []struct {
		key string
		dst *int
	}{
		{"FORECAST_ITERATIONS", &c.Simulation.Iterations},
		{"FORECAST_WORKERS", &c.Simulation.Workers},
		{"FORECAST_TIMEOUT_SECONDS", &c.Simulation.TimeoutSeconds},
	}
	for _, v := range ints {
		raw := os.Getenv(v.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.NewConfigError(v.key, "not an integer: %q", raw)
		}
		*v.dst = n
	}

	if raw := os.Getenv("FORECAST_SUCCESS_THRESHOLD"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return apperrors.NewConfigError("FORECAST_SUCCESS_THRESHOLD", "not a number: %q", raw)
		}
		c.Retirement.SuccessThreshold = f
	}
	if level := os.Getenv("FORECAST_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if debug := os.Getenv("FORECAST_DEBUG"); debug == "true" || debug == "1" {
		c.Logging.Level = "debug"
	}
	if dir := os.Getenv("FORECAST_PLANS_DIR"); dir != "" {
		c.Plans.Dir = dir
	}
	return nil
}

// Validate rejects settings the engine cannot run with
func (c Config) Validate() error {
	switch {
	case c.Simulation.Iterations < 1:
		return apperrors.NewConfigError("simulation.iterations", "must be at least 1, got %d", c.Simulation.Iterations)
	case c.Simulation.Workers < 1:
		return apperrors.NewConfigError("simulation.workers", "must be at least 1, got %d", c.Simulation.Workers)
	case c.Simulation.TimeoutSeconds < 0:
		return apperrors.NewConfigError("simulation.timeout_seconds", "must not be negative, got %d", c.Simulation.TimeoutSeconds)
	case c.Retirement.SuccessThreshold <= 0 || c.Retirement.SuccessThreshold > 1:
		return apperrors.NewConfigError("retirement.success_threshold", "must be in (0, 1], got %g", c.Retirement.SuccessThreshold)
	case c.Scenario.MaterialImpactThreshold < 0:
		return apperrors.NewConfigError("scenario.material_impact_threshold", "must not be negative, got %g", c.Scenario.MaterialImpactThreshold)
	case c.Scenario.RecoveryTolerance < 0:
		return apperrors.NewConfigError("scenario.recovery_tolerance", "must not be negative, got %g", c.Scenario.RecoveryTolerance)
	}
	return nil
}

// Timeout returns the run deadline, zero meaning none
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Simulation.TimeoutSeconds) * time.Second
}

// Save writes the config as TOML to path, or the default path when empty
func Save(cfg Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

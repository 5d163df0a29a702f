package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/danielpatrickdp/montyhall/internal/eval"
	"github.com/danielpatrickdp/montyhall/internal/gate"
	"github.com/danielpatrickdp/montyhall/internal/sim"
	"gopkg.in/yaml.v3"
)

// #region types
// Config is the application configuration shared by the binaries.
type Config struct {
	DB         string     `yaml:"db"`
	Addr       string     `yaml:"addr"`
	Simulation sim.Config `yaml:"simulation"`
	Gate       GateConfig `yaml:"gate"`
	Eval       EvalConfig `yaml:"eval"`
}

// GateConfig mirrors gate.GateConfig with YAML tags.
type GateConfig struct {
	MinESSFraction float64 `yaml:"min_ess_fraction"`
}

// EvalConfig mirrors eval.EvalConfig with YAML tags.
type EvalConfig struct {
	Tolerance float64 `yaml:"tolerance"`
}

// #endregion types

// #region defaults
// Default returns the configuration used when no file is given.
func Default() Config {
	g := gate.DefaultGateConfig()
	e := eval.DefaultEvalConfig()
	return Config{
		DB:         "montyhall.db",
		Addr:       "localhost:50051",
		Simulation: sim.DefaultConfig(),
		Gate:       GateConfig{MinESSFraction: g.MinESSFraction},
		Eval:       EvalConfig{Tolerance: e.Tolerance},
	}
}

// #endregion defaults

// #region load
// Load starts from defaults, overlays the YAML file at path (if path is
// non-empty) and then environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("MONTYHALL_DB"); v != "" {
		cfg.DB = v
	}
	if v := os.Getenv("MONTYHALL_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("MONTYHALL_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MONTYHALL_SEED: %w", err)
		}
		cfg.Simulation.Seed = seed
	}
	return nil
}

// #endregion load

// #region validate
// Validate checks ranges of every section.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	if c.Gate.MinESSFraction < 0 || c.Gate.MinESSFraction > 1 {
		return fmt.Errorf("gate.min_ess_fraction must be in [0, 1], got %v", c.Gate.MinESSFraction)
	}
	if c.Eval.Tolerance <= 0 {
		return errors.New("eval.tolerance must be positive")
	}
	return nil
}

// #endregion validate

// #region conversions
// GateThresholds returns the gate thresholds.
func (c Config) GateThresholds() gate.GateConfig {
	return gate.GateConfig{MinESSFraction: c.Gate.MinESSFraction}
}

// EvalTolerances returns the eval tolerances.
func (c Config) EvalTolerances() eval.EvalConfig {
	e := eval.DefaultEvalConfig()
	e.Tolerance = c.Eval.Tolerance
	return e
}

// #endregion conversions

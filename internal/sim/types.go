package sim

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/montyhall/internal/gate"
	"github.com/danielpatrickdp/montyhall/internal/infer"
	"github.com/danielpatrickdp/montyhall/internal/model"
)

var (
	// ErrInvalidConfig is returned when a driver configuration cannot be run.
	ErrInvalidConfig = errors.New("invalid simulation config")

	// ErrRejected is returned when the gate rejects the population.
	ErrRejected = errors.New("population rejected")
)

// #region config
// Config controls one driver run. Seed is explicit so runs are reproducible.
type Config struct {
	Samples   int    `json:"samples" yaml:"samples"`     // prize doors drawn per estimate
	Particles int    `json:"particles" yaml:"particles"` // importance-sampling population size
	Seed      uint64 `json:"seed" yaml:"seed"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Samples:   1000,
		Particles: 10000,
		Seed:      42,
	}
}

// MaxSamples bounds the prize doors drawn per estimate.
const MaxSamples = 1000000

// Validate checks that counts are positive and within limits.
func (c Config) Validate() error {
	if c.Samples <= 0 {
		return fmt.Errorf("%w: samples must be positive, got %d", ErrInvalidConfig, c.Samples)
	}
	if c.Particles <= 0 {
		return fmt.Errorf("%w: particles must be positive, got %d", ErrInvalidConfig, c.Particles)
	}
	if c.Samples > MaxSamples {
		return fmt.Errorf("%w: samples must be at most %d, got %d", ErrInvalidConfig, MaxSamples, c.Samples)
	}
	if c.Particles > infer.MaxParticles {
		return fmt.Errorf("%w: particles must be at most %d, got %d", ErrInvalidConfig, infer.MaxParticles, c.Particles)
	}
	return nil
}

// #endregion config

// #region estimate
// Estimate is an empirical distribution over the prize door.
type Estimate struct {
	Counts      [model.NumDoors]int
	Frequencies model.ProbabilityVector
	Samples     int
}

// NewEstimate tallies doors into per-door frequencies.
func NewEstimate(doors []model.Door) Estimate {
	var e Estimate
	for _, d := range doors {
		e.Counts[d]++
	}
	e.Samples = len(doors)
	if e.Samples == 0 {
		return e
	}
	for i, c := range e.Counts {
		e.Frequencies[i] = float64(c) / float64(e.Samples)
	}
	return e
}

// #endregion estimate

// #region result
// Result is the outcome of a conditioned run.
type Result struct {
	Estimate     Estimate
	Population   infer.Population
	GateDecision gate.GateDecision
}

// #endregion result

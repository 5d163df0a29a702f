package sim

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/montyhall/internal/gate"
	"github.com/danielpatrickdp/montyhall/internal/infer"
	"github.com/danielpatrickdp/montyhall/internal/model"
)

// #region simulate
// Simulate runs the generative model forward cfg.Samples times for a fixed
// contestant door and tallies where the prize was. With no observation the
// frequencies approach the uniform prior.
func Simulate(cfg Config, contestantDoor model.Door) (Estimate, error) {
	if cfg.Samples <= 0 {
		return Estimate{}, fmt.Errorf("%w: samples must be positive, got %d", ErrInvalidConfig, cfg.Samples)
	}
	m, err := model.NewGenerativeModel(contestantDoor)
	if err != nil {
		return Estimate{}, err
	}

	rng := model.NewRand(cfg.Seed)
	doors := make([]model.Door, cfg.Samples)
	for i := range doors {
		doors[i] = m.Simulate(rng).PrizeDoor
	}
	return NewEstimate(doors), nil
}

// #endregion simulate

// #region condition
// Driver runs conditioned queries against an engine.
type Driver struct {
	engine infer.Engine
	gate   *gate.Gate
}

// NewDriver creates a driver over the given engine and gate thresholds.
func NewDriver(engine infer.Engine, gateConfig gate.GateConfig) *Driver {
	return &Driver{engine: engine, gate: gate.NewGate(gateConfig)}
}

// Condition fixes the host's door, asks the engine for a weighted
// population, and resamples cfg.Samples prize doors from it.
//
// The scenario is validated before the engine is called: the host can
// never open the contestant's door.
func (d *Driver) Condition(ctx context.Context, cfg Config, contestantDoor, hostDoor model.Door) (Result, error) {
	if err := contestantDoor.Validate(); err != nil {
		return Result{}, fmt.Errorf("contestant door: %w", err)
	}
	if err := hostDoor.Validate(); err != nil {
		return Result{}, fmt.Errorf("host door: %w", err)
	}
	if hostDoor == contestantDoor {
		return Result{}, fmt.Errorf("%w: host cannot open contestant door %d", model.ErrInvalidScenario, contestantDoor)
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	pop, err := d.engine.Infer(ctx, infer.Query{
		ContestantDoor: contestantDoor,
		Observations:   model.Choices{model.AddrHost: hostDoor},
		Particles:      cfg.Particles,
		Seed:           cfg.Seed,
	})
	if err != nil {
		return Result{}, fmt.Errorf("infer: %w", err)
	}

	decision := d.gate.Evaluate(pop)
	if decision.Action != "accept" {
		return Result{Population: pop, GateDecision: decision}, fmt.Errorf("%w: %s", ErrRejected, decision.Reason)
	}

	// Resampling draws from a separate stream, seeded off cfg.Seed.
	draws, err := infer.Resample(model.NewRand(cfg.Seed+1), pop, cfg.Samples)
	if err != nil {
		return Result{}, fmt.Errorf("resample: %w", err)
	}
	doors := make([]model.Door, len(draws))
	for i, c := range draws {
		doors[i] = c[model.AddrPrize]
	}

	return Result{
		Estimate:     NewEstimate(doors),
		Population:   pop,
		GateDecision: decision,
	}, nil
}

// Condition is a convenience wrapper using the in-process engine and default gate.
func Condition(ctx context.Context, cfg Config, contestantDoor, hostDoor model.Door) (Result, error) {
	return NewDriver(infer.NewLocalEngine(), gate.DefaultGateConfig()).Condition(ctx, cfg, contestantDoor, hostDoor)
}

// #endregion condition

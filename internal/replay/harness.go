package replay

import (
	"context"
	"errors"

	"github.com/danielpatrickdp/montyhall/internal/eval"
	"github.com/danielpatrickdp/montyhall/internal/gate"
	"github.com/danielpatrickdp/montyhall/internal/infer"
	"github.com/danielpatrickdp/montyhall/internal/model"
	"github.com/danielpatrickdp/montyhall/internal/sim"
)

// #region types
// Scenario is one game setup to replay. A nil HostDoor means an
// unconditioned simulation; a nil Expected means the reference is derived
// (uniform prior or exact posterior).
type Scenario struct {
	ID             string
	ContestantDoor model.Door
	HostDoor       *model.Door
	Expected       *model.ProbabilityVector
}

// ReplayConfig bundles driver, gate, and eval configs for a replay run.
type ReplayConfig struct {
	SimConfig  sim.Config
	GateConfig gate.GateConfig
	EvalConfig eval.EvalConfig
}

// DefaultReplayConfig returns sensible defaults for all three stages.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{
		SimConfig:  sim.DefaultConfig(),
		GateConfig: gate.DefaultGateConfig(),
		EvalConfig: eval.DefaultEvalConfig(),
	}
}

// ReplayResult captures the outcome of replaying one scenario.
type ReplayResult struct {
	ScenarioID string
	Action     string // "pass" | "fail" | "invalid"
	Reason     string

	Estimate  sim.Estimate
	Reference model.ProbabilityVector

	// Gate stage (nil for simulate scenarios and validation failures)
	GateDecision *gate.GateDecision

	// Eval stage (nil if the run never produced an estimate)
	EvalResult *eval.EvalResult
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	Total    int
	Passes   int
	Failures int
	Invalid  int
}

// #endregion types

// #region replay
// Replay runs each scenario through the driver and checks the estimate
// against its reference: run → gate → eval → pass/fail.
func Replay(ctx context.Context, engine infer.Engine, scenarios []Scenario, config ReplayConfig) []ReplayResult {
	driver := sim.NewDriver(engine, config.GateConfig)
	harness := eval.NewEvalHarness(config.EvalConfig)
	results := make([]ReplayResult, 0, len(scenarios))

	for _, sc := range scenarios {
		r := ReplayResult{ScenarioID: sc.ID}

		// 1. Run
		var est sim.Estimate
		var err error
		if sc.HostDoor == nil {
			est, err = sim.Simulate(config.SimConfig, sc.ContestantDoor)
			r.Reference = model.PriorPrize()
		} else {
			var res sim.Result
			res, err = driver.Condition(ctx, config.SimConfig, sc.ContestantDoor, *sc.HostDoor)
			if res.GateDecision.Action != "" {
				gd := res.GateDecision
				r.GateDecision = &gd
			}
			est = res.Estimate
			if err == nil {
				r.Reference, err = eval.ExactPosterior(sc.ContestantDoor, *sc.HostDoor)
			}
		}

		// 2. Validation failures are reported, not evaluated
		if err != nil {
			r.Action = "fail"
			if errors.Is(err, model.ErrInvalidScenario) || errors.Is(err, model.ErrInvalidDoor) {
				r.Action = "invalid"
			}
			r.Reason = err.Error()
			results = append(results, r)
			continue
		}
		r.Estimate = est
		if sc.Expected != nil {
			r.Reference = *sc.Expected
		}

		// 3. Eval
		evalResult := harness.Run(est.Frequencies, r.Reference)
		r.EvalResult = &evalResult
		r.Reason = evalResult.Reason
		r.Action = "pass"
		if !evalResult.Passed {
			r.Action = "fail"
		}
		results = append(results, r)
	}

	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{Total: len(results)}
	for _, r := range results {
		switch r.Action {
		case "pass":
			s.Passes++
		case "fail":
			s.Failures++
		case "invalid":
			s.Invalid++
		}
	}
	return s
}

// #endregion replay

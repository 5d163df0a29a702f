package orchestrator

// #region imports
import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/danielpatrickdp/montyhall/internal/gate"
	"github.com/danielpatrickdp/montyhall/internal/infer"
	"github.com/danielpatrickdp/montyhall/internal/logging"
	"github.com/danielpatrickdp/montyhall/internal/model"
	"github.com/danielpatrickdp/montyhall/internal/sim"
	"github.com/danielpatrickdp/montyhall/internal/store"
)

// #endregion

// #region orchestrator-struct

// Orchestrator runs driver commands and records each run and its
// inference provenance in the store.
type Orchestrator struct {
	store      *store.Store
	driver     *sim.Driver
	engineName string
	config     sim.Config
	gateConfig gate.GateConfig
}

// Outcome is what a single command produced.
type Outcome struct {
	Run    store.RunRecord
	Result *sim.Result // nil for simulate runs
}

// #endregion

// #region constructor

// NewOrchestrator wires a driver over engine. engineName is recorded in
// inference_log ("local" or "remote").
func NewOrchestrator(st *store.Store, engine infer.Engine, engineName string, cfg sim.Config, gateConfig gate.GateConfig) *Orchestrator {
	return &Orchestrator{
		store:      st,
		driver:     sim.NewDriver(engine, gateConfig),
		engineName: engineName,
		config:     cfg,
		gateConfig: gateConfig,
	}
}

// #endregion

// #region run

// Run executes one command. Input validation failures return before
// anything is persisted; inference failures are persisted with a
// reject or error decision and then returned.
func (o *Orchestrator) Run(ctx context.Context, cmd Command) (Outcome, error) {
	rec := store.NewRunRecord(cmd.Mode(), cmd.ContestantDoor, cmd.HostDoor)
	rec.Samples = o.config.Samples
	rec.Particles = o.config.Particles
	rec.Seed = o.config.Seed

	if cmd.HostDoor == nil {
		est, err := sim.Simulate(o.config, cmd.ContestantDoor)
		if err != nil {
			return Outcome{}, err
		}
		rec.Counts = est.Counts
		rec.Frequencies = est.Frequencies
		if err := o.store.SaveRun(rec); err != nil {
			return Outcome{}, fmt.Errorf("save run: %w", err)
		}
		return Outcome{Run: rec}, nil
	}

	res, runErr := o.driver.Condition(ctx, o.config, cmd.ContestantDoor, *cmd.HostDoor)
	if isValidationError(runErr) {
		return Outcome{}, runErr
	}

	rec.Counts = res.Estimate.Counts
	rec.Frequencies = res.Estimate.Frequencies
	if err := o.store.SaveRun(rec); err != nil {
		return Outcome{}, fmt.Errorf("save run: %w", err)
	}
	if err := o.logInference(rec, res, runErr); err != nil {
		return Outcome{}, err
	}
	return Outcome{Run: rec, Result: &res}, runErr
}

// #endregion

// #region provenance

func (o *Orchestrator) logInference(rec store.RunRecord, res sim.Result, runErr error) error {
	minESS := o.gateConfig.MinESSFraction
	obs := logging.ObservationRecord{
		ContestantDoor: int(rec.ContestantDoor),
		Observations:   map[string]int{model.AddrHost: int(*rec.HostDoor)},
		Particles:      rec.Particles,
		Seed:           rec.Seed,
		ESS:            res.Population.ESS,
		ESSFraction:    res.GateDecision.ESSFraction,
		LogMarginal:    res.Population.LogMarginal,
		MinESSFraction: &minESS,
		GateAction:     res.GateDecision.Action,
		GateReason:     res.GateDecision.Reason,
	}
	// JSON cannot carry -Inf or NaN.
	if math.IsInf(obs.LogMarginal, 0) || math.IsNaN(obs.LogMarginal) {
		obs.LogMarginal = 0
	}
	decision := res.GateDecision.Action
	reason := res.GateDecision.Reason
	if runErr != nil && decision == "" {
		decision = "error"
		reason = runErr.Error()
	}
	obsJSON, err := json.Marshal(obs)
	if err != nil {
		return fmt.Errorf("marshal observation record: %w", err)
	}

	err = logging.LogInference(o.store.DB(), logging.InferenceEntry{
		RunID:            rec.RunID,
		Engine:           o.engineName,
		ObservationsJSON: string(obsJSON),
		Particles:        rec.Particles,
		ESS:              res.Population.ESS,
		LogMarginal:      res.Population.LogMarginal,
		Decision:         decision,
		Reason:           reason,
		CreatedAt:        rec.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("log inference: %w", err)
	}
	return nil
}

func isValidationError(err error) bool {
	return errors.Is(err, model.ErrInvalidDoor) ||
		errors.Is(err, model.ErrInvalidScenario) ||
		errors.Is(err, sim.ErrInvalidConfig)
}

// #endregion

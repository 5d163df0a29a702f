package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/montyhall/internal/gate"
	"github.com/danielpatrickdp/montyhall/internal/infer"
	"github.com/danielpatrickdp/montyhall/internal/logging"
	"github.com/danielpatrickdp/montyhall/internal/model"
	"github.com/danielpatrickdp/montyhall/internal/sim"
	"github.com/danielpatrickdp/montyhall/internal/store"
)

// #region helpers
func newTestOrchestrator(t *testing.T, engine infer.Engine, gc gate.GateConfig) (*Orchestrator, *store.Store) {
	t.Helper()
	st, err := store.NewStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	cfg := sim.Config{Samples: 1000, Particles: 5000, Seed: 9}
	return NewOrchestrator(st, engine, "local", cfg, gc), st
}

func door(d model.Door) *model.Door { return &d }

func countInferenceRows(t *testing.T, st *store.Store) int {
	t.Helper()
	var n int
	if err := st.DB().QueryRow(`SELECT COUNT(*) FROM inference_log`).Scan(&n); err != nil {
		t.Fatalf("count inference_log: %v", err)
	}
	return n
}

type errEngine struct{ err error }

func (e errEngine) Infer(_ context.Context, _ infer.Query) (infer.Population, error) {
	return infer.Population{}, e.err
}

// #endregion

// #region parse-tests
func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand("  0 ")
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if cmd.ContestantDoor != 0 || cmd.HostDoor != nil || cmd.Mode() != store.ModeSimulate {
		t.Fatalf("unexpected command %+v", cmd)
	}

	cmd, err = ParseCommand("1 2")
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if cmd.ContestantDoor != 1 || cmd.HostDoor == nil || *cmd.HostDoor != 2 || cmd.Mode() != store.ModeCondition {
		t.Fatalf("unexpected command %+v", cmd)
	}
}

func TestParseCommand_Errors(t *testing.T) {
	for _, line := range []string{"", "0 1 2", "x", "0 y"} {
		if _, err := ParseCommand(line); err == nil {
			t.Errorf("%q: expected error", line)
		}
	}
	if _, err := ParseCommand("4"); !errors.Is(err, model.ErrInvalidDoor) {
		t.Errorf("expected ErrInvalidDoor for door 4, got %v", err)
	}
}

// #endregion

// #region run-tests
func TestRun_SimulatePersists(t *testing.T) {
	o, st := newTestOrchestrator(t, infer.NewLocalEngine(), gate.DefaultGateConfig())

	out, err := o.Run(context.Background(), Command{ContestantDoor: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Result != nil {
		t.Error("expected nil Result for simulate run")
	}
	got, err := st.GetRun(out.Run.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Mode != store.ModeSimulate || got.Samples != 1000 || got.Seed != 9 {
		t.Errorf("unexpected stored run %+v", got)
	}
	if countInferenceRows(t, st) != 0 {
		t.Error("simulate runs should not write inference_log")
	}
}

func TestRun_ConditionPersistsProvenance(t *testing.T) {
	o, st := newTestOrchestrator(t, infer.NewLocalEngine(), gate.DefaultGateConfig())

	out, err := o.Run(context.Background(), Command{ContestantDoor: 0, HostDoor: door(2)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Run.Frequencies[2] != 0 {
		t.Errorf("expected zero mass on opened door, got %v", out.Run.Frequencies[2])
	}

	var decision, obsJSON string
	err = st.DB().QueryRow(`SELECT decision, observations_json FROM inference_log WHERE run_id = ?`, out.Run.RunID).
		Scan(&decision, &obsJSON)
	if err != nil {
		t.Fatalf("query inference_log: %v", err)
	}
	if decision != "accept" {
		t.Errorf("expected accept, got %s", decision)
	}
	var rec logging.ObservationRecord
	if err := json.Unmarshal([]byte(obsJSON), &rec); err != nil {
		t.Fatalf("unmarshal observation record: %v", err)
	}
	if rec.Observations[model.AddrHost] != 2 || rec.Seed != 9 || rec.GateAction != "accept" {
		t.Errorf("unexpected observation record %+v", rec)
	}
	if rec.MinESSFraction == nil || *rec.MinESSFraction != gate.DefaultGateConfig().MinESSFraction {
		t.Errorf("expected recorded ESS floor, got %v", rec.MinESSFraction)
	}
}

func TestRun_InvalidScenarioNotPersisted(t *testing.T) {
	o, st := newTestOrchestrator(t, infer.NewLocalEngine(), gate.DefaultGateConfig())

	_, err := o.Run(context.Background(), Command{ContestantDoor: 1, HostDoor: door(1)})
	if !errors.Is(err, model.ErrInvalidScenario) {
		t.Fatalf("expected ErrInvalidScenario, got %v", err)
	}
	runs, err := st.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no persisted runs, got %d", len(runs))
	}
}

func TestRun_EngineErrorLogged(t *testing.T) {
	o, st := newTestOrchestrator(t, errEngine{err: errors.New("unavailable")}, gate.DefaultGateConfig())

	out, err := o.Run(context.Background(), Command{ContestantDoor: 0, HostDoor: door(1)})
	if err == nil {
		t.Fatal("expected engine error")
	}
	var decision string
	if err := st.DB().QueryRow(`SELECT decision FROM inference_log WHERE run_id = ?`, out.Run.RunID).Scan(&decision); err != nil {
		t.Fatalf("query inference_log: %v", err)
	}
	if decision != "error" {
		t.Errorf("expected error decision, got %s", decision)
	}
}

func TestRun_GateRejectLogged(t *testing.T) {
	o, st := newTestOrchestrator(t, infer.NewLocalEngine(), gate.GateConfig{MinESSFraction: 0.99})

	out, err := o.Run(context.Background(), Command{ContestantDoor: 0, HostDoor: door(1)})
	if !errors.Is(err, sim.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	runs, err := st.ListRunsWithInference(1)
	if err != nil {
		t.Fatalf("ListRunsWithInference: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != out.Run.RunID || runs[0].Decision != "reject" {
		t.Fatalf("expected rejected run, got %+v", runs)
	}
}

// #endregion

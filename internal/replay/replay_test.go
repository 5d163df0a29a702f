package replay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/montyhall/internal/gate"
	"github.com/danielpatrickdp/montyhall/internal/infer"
	"github.com/danielpatrickdp/montyhall/internal/model"
)

// helper: conditioned scenario.
func conditioned(id string, contestant, host model.Door) Scenario {
	return Scenario{ID: id, ContestantDoor: contestant, HostDoor: &host}
}

// #region harness-tests

// 1. Unconditioned run is checked against the uniform prior.
func TestReplay_SimulatePasses(t *testing.T) {
	results := Replay(context.Background(), infer.NewLocalEngine(),
		[]Scenario{{ID: "sim", ContestantDoor: 1}}, DefaultReplayConfig())

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Action != "pass" {
		t.Fatalf("expected pass, got %s: %s", r.Action, r.Reason)
	}
	if r.GateDecision != nil {
		t.Error("expected no gate decision for simulate scenario")
	}
	if r.Reference != model.PriorPrize() {
		t.Errorf("expected uniform reference, got %v", r.Reference)
	}
}

// 2. Conditioned run is checked against the exact posterior.
func TestReplay_ConditionPasses(t *testing.T) {
	results := Replay(context.Background(), infer.NewLocalEngine(),
		[]Scenario{conditioned("c0-h1", 0, 1)}, DefaultReplayConfig())

	r := results[0]
	if r.Action != "pass" {
		t.Fatalf("expected pass, got %s: %s", r.Action, r.Reason)
	}
	if r.GateDecision == nil || r.GateDecision.Action != "accept" {
		t.Fatalf("expected accepted gate decision, got %+v", r.GateDecision)
	}
	if r.EvalResult == nil || !r.EvalResult.Passed {
		t.Fatal("expected passing eval result")
	}
	if r.Estimate.Frequencies[1] != 0 {
		t.Errorf("expected no mass on opened door, got %v", r.Estimate.Frequencies[1])
	}
}

// 3. Host opening the contestant's door is invalid, not a failure.
func TestReplay_InvalidScenario(t *testing.T) {
	results := Replay(context.Background(), infer.NewLocalEngine(),
		[]Scenario{conditioned("c2-h2", 2, 2)}, DefaultReplayConfig())

	r := results[0]
	if r.Action != "invalid" {
		t.Fatalf("expected invalid, got %s", r.Action)
	}
	if r.EvalResult != nil {
		t.Error("expected no eval result for invalid scenario")
	}
}

// 4. A wrong expected vector fails eval.
func TestReplay_WrongExpectationFails(t *testing.T) {
	sc := conditioned("c0-h1", 0, 1)
	naive := model.ProbabilityVector{0.5, 0, 0.5}
	sc.Expected = &naive

	results := Replay(context.Background(), infer.NewLocalEngine(), []Scenario{sc}, DefaultReplayConfig())

	if results[0].Action != "fail" {
		t.Fatalf("expected fail against 50/50 expectation, got %s", results[0].Action)
	}
}

// 5. Gate rejection surfaces as a failure with the gate decision attached.
func TestReplay_GateRejectFails(t *testing.T) {
	config := DefaultReplayConfig()
	config.GateConfig = gate.GateConfig{MinESSFraction: 0.99}

	results := Replay(context.Background(), infer.NewLocalEngine(), []Scenario{conditioned("c0-h1", 0, 1)}, config)

	r := results[0]
	if r.Action != "fail" {
		t.Fatalf("expected fail, got %s", r.Action)
	}
	if r.GateDecision == nil || r.GateDecision.Action != "reject" {
		t.Fatalf("expected rejected gate decision, got %+v", r.GateDecision)
	}
}

func TestSummarize(t *testing.T) {
	results := []ReplayResult{
		{Action: "pass"}, {Action: "pass"}, {Action: "fail"}, {Action: "invalid"},
	}
	s := Summarize(results)
	if s.Total != 4 || s.Passes != 2 || s.Failures != 1 || s.Invalid != 1 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

// #endregion harness-tests

// #region fixture-tests

// TestFixture_MontyHall loads the scenario fixture, runs Replay(), and
// compares each scenario's Action against the expected action.
func TestFixture_MontyHall(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "monty_hall.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	results := Replay(context.Background(), infer.NewLocalEngine(), f.ToScenarios(), f.Config.ToReplayConfig())

	if len(results) != len(f.ExpectedResults) {
		t.Fatalf("expected %d results, got %d", len(f.ExpectedResults), len(results))
	}
	for i, expected := range f.ExpectedResults {
		actual := results[i]
		if actual.ScenarioID != expected.ID {
			t.Errorf("scenario %d: expected id=%s, got %s", i, expected.ID, actual.ScenarioID)
		}
		if actual.Action != expected.Action {
			t.Errorf("scenario %d (%s): expected action=%s, got action=%s (reason: %s)",
				i, expected.ID, expected.Action, actual.Action, actual.Reason)
		}
	}
}

func TestFixtureConfig_Defaults(t *testing.T) {
	var fc FixtureConfig
	if fc.ToReplayConfig() != DefaultReplayConfig() {
		t.Fatal("expected zero fixture config to map to defaults")
	}
	round := FromReplayConfig(DefaultReplayConfig())
	if round.ToReplayConfig() != DefaultReplayConfig() {
		t.Fatal("expected FromReplayConfig to invert ToReplayConfig")
	}
}

func TestLoadFixture_NotFound(t *testing.T) {
	if _, err := LoadFixture("testdata/nonexistent.json"); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoadFixture_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json}"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

// #endregion fixture-tests

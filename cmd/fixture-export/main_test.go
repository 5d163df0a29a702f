package main

import (
	"testing"

	"github.com/danielpatrickdp/montyhall/internal/model"
	"github.com/danielpatrickdp/montyhall/internal/store"
)

func storedRun(id string, samples, particles int, seed uint64) store.RunWithInference {
	host := model.Door(1)
	return store.RunWithInference{
		RunRecord: store.RunRecord{
			RunID:          id,
			Mode:           store.ModeCondition,
			ContestantDoor: 0,
			HostDoor:       &host,
			Samples:        samples,
			Particles:      particles,
			Seed:           seed,
		},
		ObservationsJSON: `{"min_ess_fraction":0.2}`,
		Decision:         "accept",
	}
}

func TestMismatchedConfigs(t *testing.T) {
	runs := []store.RunWithInference{
		storedRun("run-aaaa-1", 1000, 10000, 42),
		storedRun("run-bbbb-2", 1000, 10000, 42),
		storedRun("run-cccc-3", 1000, 5000, 42),
		storedRun("run-dddd-4", 1000, 10000, 7),
	}
	got := mismatchedConfigs(runs)
	if len(got) != 2 || got[0] != "run-cccc" || got[1] != "run-dddd" {
		t.Fatalf("expected runs 3 and 4 flagged, got %v", got)
	}

	if got := mismatchedConfigs(runs[:2]); len(got) != 0 {
		t.Fatalf("expected no mismatches, got %v", got)
	}
}

func TestBuildFixture_UsesFirstRun(t *testing.T) {
	runs := []store.RunWithInference{
		storedRun("run-aaaa-1", 2000, 8000, 9),
		storedRun("run-bbbb-2", 1000, 10000, 42),
	}
	f := buildFixture(runs)

	if f.Config.Samples != 2000 || f.Config.Particles != 8000 || f.Config.Seed != 9 {
		t.Errorf("expected first run's settings, got %+v", f.Config)
	}
	if f.Config.MinESSFraction != 0.2 {
		t.Errorf("expected recorded gate floor 0.2, got %v", f.Config.MinESSFraction)
	}
	if len(f.Scenarios) != 2 || f.Scenarios[0].HostDoor == nil || *f.Scenarios[0].HostDoor != 1 {
		t.Fatalf("unexpected scenarios %+v", f.Scenarios)
	}
	for _, e := range f.ExpectedResults {
		if e.Action != "pass" {
			t.Errorf("expected pass for %s, got %s", e.ID, e.Action)
		}
	}
}

package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/montyhall/internal/model"
	_ "modernc.org/sqlite"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func conditionRun(created time.Time) RunRecord {
	host := model.Door(1)
	rec := NewRunRecord(ModeCondition, 0, &host)
	rec.Samples = 1000
	rec.Particles = 10000
	rec.Seed = 42
	rec.Counts = [3]int{331, 0, 669}
	rec.Frequencies = model.ProbabilityVector{0.331, 0, 0.669}
	rec.CreatedAt = created
	return rec
}

func TestNewRunRecordAssignsID(t *testing.T) {
	a := NewRunRecord(ModeSimulate, 0, nil)
	b := NewRunRecord(ModeSimulate, 0, nil)
	if a.RunID == "" || a.RunID == b.RunID {
		t.Fatalf("expected distinct non-empty run IDs, got %q and %q", a.RunID, b.RunID)
	}
	if a.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := tempDB(t)
	rec := conditionRun(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	if err := s.SaveRun(rec); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := s.GetRun(rec.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Mode != ModeCondition {
		t.Errorf("expected mode condition, got %s", got.Mode)
	}
	if got.HostDoor == nil || *got.HostDoor != 1 {
		t.Errorf("expected host door 1, got %v", got.HostDoor)
	}
	if got.Counts != rec.Counts {
		t.Errorf("counts: got %v, want %v", got.Counts, rec.Counts)
	}
	if got.Frequencies != rec.Frequencies {
		t.Errorf("frequencies: got %v, want %v", got.Frequencies, rec.Frequencies)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("created_at: got %v, want %v", got.CreatedAt, rec.CreatedAt)
	}
}

func TestSaveRunSimulateHasNoHost(t *testing.T) {
	s := tempDB(t)
	rec := NewRunRecord(ModeSimulate, 2, nil)
	rec.Samples = 10
	rec.Particles = 1

	if err := s.SaveRun(rec); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	got, err := s.GetRun(rec.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.HostDoor != nil {
		t.Fatalf("expected nil host door, got %d", *got.HostDoor)
	}
}

func TestSeedRoundTripsFullRange(t *testing.T) {
	s := tempDB(t)
	rec := conditionRun(time.Now().UTC())
	rec.Seed = ^uint64(0)

	if err := s.SaveRun(rec); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	got, err := s.GetRun(rec.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Seed != rec.Seed {
		t.Fatalf("seed: got %d, want %d", got.Seed, rec.Seed)
	}
}

func TestSaveRunRejectsUnknownMode(t *testing.T) {
	s := tempDB(t)
	rec := NewRunRecord("bogus", 0, nil)
	if err := s.SaveRun(rec); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := tempDB(t)
	if _, err := s.GetRun("missing"); err == nil {
		t.Fatal("expected error for missing run")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	s := tempDB(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		rec := conditionRun(base.Add(time.Duration(i) * time.Minute))
		if err := s.SaveRun(rec); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
		ids = append(ids, rec.RunID)
	}

	runs, err := s.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != ids[2] || runs[1].RunID != ids[1] {
		t.Fatalf("unexpected order: %s, %s", runs[0].RunID, runs[1].RunID)
	}
}

func TestListRunsNewestFirst_SubSecond(t *testing.T) {
	s := tempDB(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	older := conditionRun(base.Add(100 * time.Millisecond))
	newer := conditionRun(base.Add(120 * time.Millisecond))
	for _, rec := range []RunRecord{older, newer} {
		if err := s.SaveRun(rec); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	runs, err := s.ListRuns(1)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != newer.RunID {
		t.Fatalf("expected newest run %s first, got %+v", newer.RunID, runs)
	}
	if !runs[0].CreatedAt.Equal(newer.CreatedAt) {
		t.Errorf("expected CreatedAt %v, got %v", newer.CreatedAt, runs[0].CreatedAt)
	}

	withInf, err := s.ListRunsWithInference(1)
	if err != nil {
		t.Fatalf("ListRunsWithInference: %v", err)
	}
	if len(withInf) != 1 || withInf[0].RunID != newer.RunID {
		t.Fatalf("expected newest run %s first, got %+v", newer.RunID, withInf)
	}
}

func TestListRunsWithInference(t *testing.T) {
	s := tempDB(t)
	cond := conditionRun(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	if err := s.SaveRun(cond); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	simRun := NewRunRecord(ModeSimulate, 0, nil)
	simRun.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := s.SaveRun(simRun); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	_, err := s.DB().Exec(
		`INSERT INTO inference_log (run_id, engine, observations_json, particles, ess, decision, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cond.RunID, "local", `{"min_ess_fraction":0.05}`, 10000, 6000.5, "accept", time.Now().UTC().Format(TimeLayout),
	)
	if err != nil {
		t.Fatalf("insert inference_log: %v", err)
	}

	runs, err := s.ListRunsWithInference(10)
	if err != nil {
		t.Fatalf("ListRunsWithInference: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != cond.RunID || runs[0].Decision != "accept" || runs[0].ESS != 6000.5 ||
		runs[0].ObservationsJSON != `{"min_ess_fraction":0.05}` {
		t.Errorf("unexpected condition row: %+v", runs[0])
	}
	if runs[1].Engine != "" || runs[1].Decision != "" || runs[1].ObservationsJSON != "" {
		t.Errorf("expected empty inference fields for simulate run, got %+v", runs[1])
	}
}

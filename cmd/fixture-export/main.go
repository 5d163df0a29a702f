package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/montyhall/internal/logging"
	"github.com/danielpatrickdp/montyhall/internal/replay"
	"github.com/danielpatrickdp/montyhall/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to montyhall.db")
	last := flag.Int("last", 10, "number of most recent runs to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --out path/to/fixture.json [--last N]")
		os.Exit(2)
	}

	if err := run(*dbPath, *last, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(dbPath string, last int, outPath string) error {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	runs, err := st.ListRunsWithInference(last)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		return fmt.Errorf("no runs found in last %d", last)
	}

	// Store returns DESC, keep accepted runs in chronological order.
	// Rejected runs carry no estimate and are skipped.
	var kept []store.RunWithInference
	for i := len(runs) - 1; i >= 0; i-- {
		if runs[i].Mode == store.ModeCondition && runs[i].Decision != "accept" {
			continue
		}
		kept = append(kept, runs[i])
	}
	if len(kept) == 0 {
		return fmt.Errorf("no accepted runs in last %d", last)
	}
	runs = kept

	fmt.Printf("Found %d runs\n", len(runs))
	if diff := mismatchedConfigs(runs); len(diff) > 0 {
		fmt.Fprintf(os.Stderr, "note: %d runs used settings other than run %s and will replay under its settings: %s\n",
			len(diff), shortID(runs[0].RunID), strings.Join(diff, ", "))
	}

	return writeFixture(buildFixture(runs), outPath)
}

// #endregion extract

// #region output

// buildFixture derives scenarios from stored runs. The replay reference
// is left to the harness (uniform prior or exact posterior), so the
// fixture checks the engine rather than echoing stored estimates.
func buildFixture(runs []store.RunWithInference) replay.Fixture {
	scenarios := make([]replay.FixtureScenario, len(runs))
	expected := make([]replay.FixtureExpectedResult, len(runs))

	for i, r := range runs {
		sc := replay.FixtureScenario{
			ID:             shortID(r.RunID),
			ContestantDoor: int(r.ContestantDoor),
		}
		if r.HostDoor != nil {
			h := int(*r.HostDoor)
			sc.HostDoor = &h
		}
		scenarios[i] = sc
		expected[i] = replay.FixtureExpectedResult{
			ID:     sc.ID,
			Action: "pass",
		}
	}

	// Config and gate floor from the first run
	cfg := replay.DefaultReplayConfig()
	cfg.SimConfig.Samples = runs[0].Samples
	cfg.SimConfig.Particles = runs[0].Particles
	cfg.SimConfig.Seed = runs[0].Seed
	if gc, err := logging.GateConfigFromObservations(runs[0].ObservationsJSON, cfg.GateConfig); err == nil {
		cfg.GateConfig = gc
	}

	return replay.Fixture{
		Description:     fmt.Sprintf("Export of %d stored runs", len(runs)),
		Config:          replay.FromReplayConfig(cfg),
		Scenarios:       scenarios,
		ExpectedResults: expected,
	}
}

// mismatchedConfigs returns the short IDs of runs whose samples,
// particles or seed differ from the first run.
func mismatchedConfigs(runs []store.RunWithInference) []string {
	var out []string
	for _, r := range runs[1:] {
		if r.Samples != runs[0].Samples || r.Particles != runs[0].Particles || r.Seed != runs[0].Seed {
			out = append(out, shortID(r.RunID))
		}
	}
	return out
}

func writeFixture(fixture replay.Fixture, outPath string) error {
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}

	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	fmt.Printf("Wrote fixture to %s (%d bytes, %d scenarios)\n", outPath, len(data), len(fixture.Scenarios))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output

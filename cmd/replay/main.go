package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/montyhall/internal/gate"
	"github.com/danielpatrickdp/montyhall/internal/infer"
	"github.com/danielpatrickdp/montyhall/internal/logging"
	"github.com/danielpatrickdp/montyhall/internal/replay"
	"github.com/danielpatrickdp/montyhall/internal/sim"
	"github.com/danielpatrickdp/montyhall/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to montyhall.db (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	last := flag.Int("last", 1000, "DB mode: replay the N most recent runs")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/montyhall.db [--last N]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *last)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region db-mode

// runDBMode re-runs stored runs with their recorded seeds. Counts must
// match exactly. Condition runs whose inference was not accepted never
// produced an estimate and are skipped.
func runDBMode(dbPath string, last int) int {
	st, err := store.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer st.Close()

	runs, err := st.ListRunsWithInference(last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list runs: %v\n", err)
		return 2
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return 2
	}

	engine := infer.NewLocalEngine()
	ctx := context.Background()

	var ids, expected, replayed []string
	skipped := 0
	// Store returns DESC, walk backwards for chronological order
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		if r.Mode == store.ModeCondition && r.Decision != "accept" {
			skipped++
			continue
		}

		cfg := sim.Config{Samples: r.Samples, Particles: r.Particles, Seed: r.Seed}
		var got [3]int
		var runErr error
		if r.HostDoor == nil {
			est, err := sim.Simulate(cfg, r.ContestantDoor)
			got, runErr = est.Counts, err
		} else {
			// Replay under the gate floor the run was recorded with.
			gc, err := logging.GateConfigFromObservations(r.ObservationsJSON, gate.DefaultGateConfig())
			if err != nil {
				fmt.Fprintf(os.Stderr, "run %s: %v, using default gate\n", shortID(r.RunID), err)
			}
			res, err := sim.NewDriver(engine, gc).Condition(ctx, cfg, r.ContestantDoor, *r.HostDoor)
			got, runErr = res.Estimate.Counts, err
		}

		ids = append(ids, shortID(r.RunID))
		expected = append(expected, formatCounts(r.Counts))
		if runErr != nil {
			replayed = append(replayed, "error: "+runErr.Error())
		} else {
			replayed = append(replayed, formatCounts(got))
		}
	}

	if skipped > 0 {
		fmt.Fprintf(os.Stderr, "skipped %d condition runs without an accepted inference\n", skipped)
	}
	return printComparison(ids, expected, replayed)
}

func formatCounts(c [3]int) string {
	return fmt.Sprintf("%d/%d/%d", c[0], c[1], c[2])
}

// #endregion db-mode

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	results := replay.Replay(context.Background(), infer.NewLocalEngine(), f.ToScenarios(), f.Config.ToReplayConfig())

	n := len(results)
	if len(f.ExpectedResults) < n {
		n = len(f.ExpectedResults)
	}
	ids := make([]string, n)
	expected := make([]string, n)
	replayed := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = results[i].ScenarioID
		expected[i] = f.ExpectedResults[i].Action
		replayed[i] = results[i].Action
	}

	code := printComparison(ids, expected, replayed)
	s := replay.Summarize(results)
	fmt.Printf("Replay:  %d pass, %d fail, %d invalid\n", s.Passes, s.Failures, s.Invalid)
	return code
}

// #endregion fixture-mode

// #region output

// printComparison outputs a comparison table and returns the exit code.
func printComparison(ids, expected, replayed []string) int {
	fmt.Printf("%-12s| %-20s| %-20s| %s\n", "Run", "Expected", "Replayed", "Match")
	fmt.Printf("%-12s+%-20s+%-20s+%s\n",
		"------------", "---------------------", "---------------------", "------")

	matches := 0
	for i := range ids {
		match := "DIFF"
		if expected[i] == replayed[i] {
			match = "OK"
			matches++
		}
		fmt.Printf("%-12s| %-20s| %-20s| %s\n", ids[i], expected[i], replayed[i], match)
	}

	diverge := len(ids) - matches
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", len(ids), matches, diverge)

	if diverge > 0 {
		return 1
	}
	return 0
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output

package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/montyhall/internal/logging"
	"github.com/danielpatrickdp/montyhall/internal/model"
	"github.com/danielpatrickdp/montyhall/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to montyhall.db")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/montyhall.db [--last N] [--run id] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *runID != "" {
		err = runDetailMode(st, *runID, *jsonOut)
	} else {
		err = runListMode(st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID          string     `json:"run_id"`
	Mode           string     `json:"mode"`
	ContestantDoor int        `json:"contestant_door"`
	HostDoor       *int       `json:"host_door,omitempty"`
	Frequencies    [3]float64 `json:"frequencies"`
	Engine         string     `json:"engine,omitempty"`
	ESS            *float64   `json:"ess,omitempty"`
	Decision       string     `json:"decision,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	CreatedAt      string     `json:"created_at"`
}

func runListMode(st *store.Store, last int, jsonOut bool) error {
	runs, err := st.ListRunsWithInference(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	// Store returns DESC, reverse for chronological
	rows := make([]listRow, len(runs))
	for i, r := range runs {
		lr := listRow{
			RunID:          r.RunID,
			Mode:           r.Mode,
			ContestantDoor: int(r.ContestantDoor),
			HostDoor:       doorPtr(r.HostDoor),
			Frequencies:    r.Frequencies,
			Engine:         r.Engine,
			Decision:       r.Decision,
			Reason:         r.Reason,
			CreatedAt:      r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if r.Decision != "" {
			ess := r.ESS
			lr.ESS = &ess
		}
		rows[len(runs)-1-i] = lr
	}

	if jsonOut {
		return printJSON(rows)
	}
	return printListTable(rows)
}

func printListTable(rows []listRow) error {
	fmt.Printf("%-10s  %-9s  %4s  %4s  %-20s  %-8s  %9s  %s\n",
		"Run", "Mode", "Pick", "Host", "P(door 0/1/2)", "Decision", "ESS", "Time")
	fmt.Printf("%-10s+-%-9s+-%4s+-%4s+-%-20s+-%-8s+-%9s+-%s\n",
		"----------", "---------", "----", "----", "--------------------", "--------", "---------", "--------------------")

	for _, r := range rows {
		host := "-"
		if r.HostDoor != nil {
			host = fmt.Sprintf("%d", *r.HostDoor)
		}
		decision := r.Decision
		if decision == "" {
			decision = "-"
		}
		ess := "-"
		if r.ESS != nil {
			ess = fmt.Sprintf("%.1f", *r.ESS)
		}
		freqs := fmt.Sprintf("%.3f/%.3f/%.3f", r.Frequencies[0], r.Frequencies[1], r.Frequencies[2])
		fmt.Printf("%-10s  %-9s  %4d  %4s  %-20s  %-8s  %9s  %s\n",
			shortID(r.RunID), r.Mode, r.ContestantDoor, host, freqs, decision, ess, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	RunID          string                     `json:"run_id"`
	Mode           string                     `json:"mode"`
	ContestantDoor int                        `json:"contestant_door"`
	HostDoor       *int                       `json:"host_door,omitempty"`
	Samples        int                        `json:"samples"`
	Particles      int                        `json:"particles"`
	Seed           uint64                     `json:"seed"`
	Counts         [3]int                     `json:"counts"`
	Frequencies    [3]float64                 `json:"frequencies"`
	CreatedAt      string                     `json:"created_at"`
	Inference      *inferenceDetail           `json:"inference,omitempty"`
	Observations   *logging.ObservationRecord `json:"observations,omitempty"`
}

type inferenceDetail struct {
	Engine      string   `json:"engine"`
	ESS         float64  `json:"ess"`
	LogMarginal *float64 `json:"log_marginal,omitempty"`
	Decision    string   `json:"decision"`
	Reason      string   `json:"reason,omitempty"`
}

func runDetailMode(st *store.Store, runID string, jsonOut bool) error {
	rec, err := st.GetRun(runID)
	if err != nil {
		return err
	}

	out := detailOutput{
		RunID:          rec.RunID,
		Mode:           rec.Mode,
		ContestantDoor: int(rec.ContestantDoor),
		HostDoor:       doorPtr(rec.HostDoor),
		Samples:        rec.Samples,
		Particles:      rec.Particles,
		Seed:           rec.Seed,
		Counts:         rec.Counts,
		Frequencies:    rec.Frequencies,
		CreatedAt:      rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}

	inf, obs, err := latestInference(st.DB(), rec.RunID)
	if err != nil {
		return err
	}
	out.Inference = inf
	out.Observations = obs

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Run:        %s\n", out.RunID)
	fmt.Printf("Mode:       %s\n", out.Mode)
	fmt.Printf("Contestant: %d\n", out.ContestantDoor)
	if out.HostDoor != nil {
		fmt.Printf("Host:       %d\n", *out.HostDoor)
	}
	fmt.Printf("Samples:    %d\n", out.Samples)
	fmt.Printf("Particles:  %d\n", out.Particles)
	fmt.Printf("Seed:       %d\n", out.Seed)
	fmt.Printf("Created:    %s\n", out.CreatedAt)

	fmt.Printf("\nPrize door estimate:\n")
	for _, d := range model.Doors() {
		fmt.Printf("  door %d  %6d  %.4f\n", d, out.Counts[d], out.Frequencies[d])
	}

	if out.Inference != nil {
		fmt.Printf("\nInference:\n")
		fmt.Printf("  Engine:       %s\n", out.Inference.Engine)
		fmt.Printf("  ESS:          %.2f\n", out.Inference.ESS)
		if out.Inference.LogMarginal != nil {
			fmt.Printf("  Log Marginal: %.4f\n", *out.Inference.LogMarginal)
		}
		fmt.Printf("  Decision:     %s\n", out.Inference.Decision)
		if out.Inference.Reason != "" {
			fmt.Printf("  Reason:       %s\n", out.Inference.Reason)
		}
	}
	return nil
}

// latestInference reads the most recent inference_log row for a run.
// Both results are nil for simulate runs.
func latestInference(db *sql.DB, runID string) (*inferenceDetail, *logging.ObservationRecord, error) {
	var d inferenceDetail
	var obsJSON, reason sql.NullString
	var lm sql.NullFloat64
	err := db.QueryRow(
		`SELECT engine, observations_json, ess, log_marginal, decision, reason
		 FROM inference_log WHERE run_id = ? ORDER BY id DESC LIMIT 1`, runID,
	).Scan(&d.Engine, &obsJSON, &d.ESS, &lm, &d.Decision, &reason)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("query inference_log: %w", err)
	}
	if lm.Valid {
		v := lm.Float64
		d.LogMarginal = &v
	}
	d.Reason = reason.String

	if !obsJSON.Valid || obsJSON.String == "" {
		return &d, nil, nil
	}
	var obs logging.ObservationRecord
	if err := json.Unmarshal([]byte(obsJSON.String), &obs); err != nil {
		return &d, nil, nil
	}
	return &d, &obs, nil
}

// #endregion detail-mode

// #region output

func doorPtr(d *model.Door) *int {
	if d == nil {
		return nil
	}
	v := int(*d)
	return &v
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output

package logging

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/danielpatrickdp/montyhall/internal/store"
)

// #region log-inference
// LogInference writes an entry to the inference_log table.
func LogInference(db *sql.DB, entry InferenceEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO inference_log (run_id, engine, observations_json, particles, ess, log_marginal, decision, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Engine,
		nullIfEmpty(entry.ObservationsJSON),
		entry.Particles,
		entry.ESS,
		nullIfNonFinite(entry.LogMarginal),
		entry.Decision,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.UTC().Format(store.TimeLayout),
	)
	if err != nil {
		return fmt.Errorf("log inference: %w", err)
	}
	return nil
}

// #endregion log-inference

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// SQLite has no representation for -Inf.
func nullIfNonFinite(f float64) interface{} {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return f
}

// #endregion helpers

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/montyhall/internal/model"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id          TEXT PRIMARY KEY,
	mode            TEXT NOT NULL,
	contestant_door INTEGER NOT NULL,
	host_door       INTEGER,
	samples         INTEGER NOT NULL,
	particles       INTEGER NOT NULL,
	seed            INTEGER NOT NULL,
	counts_json     TEXT NOT NULL,
	frequencies_json TEXT NOT NULL,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS inference_log (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id            TEXT NOT NULL,
	engine            TEXT NOT NULL,
	observations_json TEXT,
	particles         INTEGER NOT NULL,
	ess               REAL,
	log_marginal      REAL,
	decision          TEXT NOT NULL,
	reason            TEXT,
	created_at        TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// #endregion schema

// TimeLayout is the fixed-width UTC layout for created_at columns, so
// text order matches time order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #region store-struct
// Store persists driver runs in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region new-run
// NewRunRecord returns a record with a fresh run ID and creation time.
func NewRunRecord(mode string, contestantDoor model.Door, hostDoor *model.Door) RunRecord {
	return RunRecord{
		RunID:          uuid.New().String(),
		Mode:           mode,
		ContestantDoor: contestantDoor,
		HostDoor:       hostDoor,
		CreatedAt:      time.Now().UTC(),
	}
}

// #endregion new-run

// #region save-run
// SaveRun inserts a run record.
func (s *Store) SaveRun(rec RunRecord) error {
	if rec.Mode != ModeSimulate && rec.Mode != ModeCondition {
		return fmt.Errorf("unknown run mode %q", rec.Mode)
	}
	countsJSON, err := json.Marshal(rec.Counts)
	if err != nil {
		return fmt.Errorf("marshal counts: %w", err)
	}
	freqJSON, err := json.Marshal(rec.Frequencies)
	if err != nil {
		return fmt.Errorf("marshal frequencies: %w", err)
	}

	var hostPtr interface{}
	if rec.HostDoor != nil {
		hostPtr = int(*rec.HostDoor)
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (run_id, mode, contestant_door, host_door, samples, particles, seed, counts_json, frequencies_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Mode, int(rec.ContestantDoor), hostPtr, rec.Samples, rec.Particles,
		int64(rec.Seed), string(countsJSON), string(freqJSON), rec.CreatedAt.UTC().Format(TimeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// #endregion save-run

// #region get-run
const runColumns = `run_id, mode, contestant_door, host_door, samples, particles, seed, counts_json, frequencies_json, created_at`

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (RunRecord, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id)
	rec, err := scanRun(row.Scan)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return rec, nil
}

// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListRunsWithInference returns the most recent runs joined with their
// latest inference_log row. Simulate runs have no inference fields.
func (s *Store) ListRunsWithInference(limit int) ([]RunWithInference, error) {
	rows, err := s.db.Query(
		`SELECT r.run_id, r.mode, r.contestant_door, r.host_door, r.samples, r.particles, r.seed,
		        r.counts_json, r.frequencies_json, r.created_at,
		        l.engine, l.observations_json, l.ess, l.decision, l.reason
		 FROM runs r
		 LEFT JOIN inference_log l ON l.id = (
			SELECT MAX(id) FROM inference_log WHERE run_id = r.run_id
		 )
		 ORDER BY r.created_at DESC, r.rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs with inference: %w", err)
	}
	defer rows.Close()

	var out []RunWithInference
	for rows.Next() {
		var engine, obsJSON, decision, reason sql.NullString
		var ess sql.NullFloat64
		rec, err := scanRun(func(dest ...interface{}) error {
			return rows.Scan(append(dest, &engine, &obsJSON, &ess, &decision, &reason)...)
		})
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, RunWithInference{
			RunRecord:        rec,
			Engine:           engine.String,
			ObservationsJSON: obsJSON.String,
			ESS:              ess.Float64,
			Decision:         decision.String,
			Reason:           reason.String,
		})
	}
	return out, rows.Err()
}

// #endregion list-runs

// #region scan
func scanRun(scan func(dest ...interface{}) error) (RunRecord, error) {
	var rec RunRecord
	var contestant int
	var host sql.NullInt64
	var seed int64
	var countsJSON, freqJSON, createdStr string

	if err := scan(&rec.RunID, &rec.Mode, &contestant, &host, &rec.Samples, &rec.Particles,
		&seed, &countsJSON, &freqJSON, &createdStr); err != nil {
		return RunRecord{}, err
	}

	rec.ContestantDoor = model.Door(contestant)
	if host.Valid {
		h := model.Door(host.Int64)
		rec.HostDoor = &h
	}
	rec.Seed = uint64(seed)
	if err := json.Unmarshal([]byte(countsJSON), &rec.Counts); err != nil {
		return RunRecord{}, fmt.Errorf("unmarshal counts: %w", err)
	}
	if err := json.Unmarshal([]byte(freqJSON), &rec.Frequencies); err != nil {
		return RunRecord{}, fmt.Errorf("unmarshal frequencies: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

// #endregion scan

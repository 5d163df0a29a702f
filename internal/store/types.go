package store

import (
	"time"

	"github.com/danielpatrickdp/montyhall/internal/model"
)

// #region run-mode
// Run modes.
const (
	ModeSimulate  = "simulate"
	ModeCondition = "condition"
)

// #endregion run-mode

// #region run-record
// RunRecord is one persisted driver run.
type RunRecord struct {
	RunID          string
	Mode           string // "simulate" | "condition"
	ContestantDoor model.Door
	HostDoor       *model.Door // nil for simulate runs
	Samples        int
	Particles      int
	Seed           uint64
	Counts         [model.NumDoors]int
	Frequencies    model.ProbabilityVector
	CreatedAt      time.Time
}

// #endregion run-record

// #region run-with-inference
// RunWithInference pairs a run with its inference_log row fields, if any.
type RunWithInference struct {
	RunRecord
	Engine           string
	ObservationsJSON string
	ESS              float64
	Decision         string
	Reason           string
}

// #endregion run-with-inference

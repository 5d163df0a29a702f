package logging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/montyhall/internal/gate"
)

// #region inference-entry
// InferenceEntry is a single row in the inference_log table.
type InferenceEntry struct {
	RunID            string
	Engine           string // "local" | "remote"
	ObservationsJSON string
	Particles        int
	ESS              float64
	LogMarginal      float64
	Decision         string // "accept" | "reject" | "error"
	Reason           string
	CreatedAt        time.Time
}

// #endregion inference-entry

// #region observation-record
// ObservationRecord captures the complete inference inputs for a single run.
// Serialized as JSON into inference_log.observations_json for replay.
type ObservationRecord struct {
	ContestantDoor int            `json:"contestant_door"`
	Observations   map[string]int `json:"observations"`
	Particles      int            `json:"particles"`
	Seed           uint64         `json:"seed"`

	// Population diagnostics
	ESS         float64 `json:"ess"`
	ESSFraction float64 `json:"ess_fraction"`
	LogMarginal float64 `json:"log_marginal"`

	// Gate input and output. MinESSFraction is nil on rows written
	// before the floor was recorded.
	MinESSFraction *float64 `json:"min_ess_fraction,omitempty"`
	GateAction     string   `json:"gate_action"`
	GateReason     string   `json:"gate_reason"`
}

// #endregion observation-record

// #region gate-config
// GateConfigFromObservations returns the gate thresholds recorded in an
// observations_json payload, or fallback when none were recorded.
func GateConfigFromObservations(obsJSON string, fallback gate.GateConfig) (gate.GateConfig, error) {
	if obsJSON == "" {
		return fallback, nil
	}
	var rec ObservationRecord
	if err := json.Unmarshal([]byte(obsJSON), &rec); err != nil {
		return fallback, fmt.Errorf("parse observation record: %w", err)
	}
	if rec.MinESSFraction == nil {
		return fallback, nil
	}
	return gate.GateConfig{MinESSFraction: *rec.MinESSFraction}, nil
}

// #endregion gate-config

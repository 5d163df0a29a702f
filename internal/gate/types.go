package gate

// #region veto-type
// VetoType enumerates hard veto categories.
type VetoType string

const (
	VetoEmpty      VetoType = "empty_population"
	VetoDegenerate VetoType = "degenerate_weights"
	VetoNonFinite  VetoType = "non_finite_marginal"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type   VetoType
	Reason string
}

// #endregion veto-signal

// #region gate-config
// GateConfig holds thresholds for accepting an inference population.
type GateConfig struct {
	MinESSFraction float64 // reject if ESS / particles falls below this
}

// DefaultGateConfig returns sensible defaults.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MinESSFraction: 0.05,
	}
}

// #endregion gate-config

// #region gate-decision
// GateDecision is the output of the gate evaluation.
type GateDecision struct {
	Action      string // "accept" | "reject"
	Reason      string
	Vetoed      bool
	VetoSignals []VetoSignal // non-empty if vetoed
	ESS         float64
	ESSFraction float64 // ESS / particle count, 0-1
}

// #endregion gate-decision

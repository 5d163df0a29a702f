package eval

// #region eval-config
// EvalConfig holds tolerances for comparing an estimate to a reference posterior.
type EvalConfig struct {
	Tolerance    float64 // max absolute error per door
	SumTolerance float64 // max deviation of the frequency sum from 1
}

// DefaultEvalConfig returns sensible defaults.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		Tolerance:    0.05,
		SumTolerance: 1e-9,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string
	Value float64
	Pass  bool
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of comparing an estimate to its reference.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
}

// #endregion eval-result

package eval

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/montyhall/internal/model"
)

// #region exact-posterior
// ExactPosterior enumerates the prize door given the contestant's door and
// the door the host opened: p(prize | host) is proportional to
// prior(prize) * HostPolicy(prize, contestant)[host].
func ExactPosterior(contestantDoor, hostDoor model.Door) (model.ProbabilityVector, error) {
	if err := contestantDoor.Validate(); err != nil {
		return model.ProbabilityVector{}, fmt.Errorf("contestant door: %w", err)
	}
	if err := hostDoor.Validate(); err != nil {
		return model.ProbabilityVector{}, fmt.Errorf("host door: %w", err)
	}
	if hostDoor == contestantDoor {
		return model.ProbabilityVector{}, fmt.Errorf("%w: host cannot open contestant door %d", model.ErrInvalidScenario, contestantDoor)
	}

	prior := model.PriorPrize()
	var joint model.ProbabilityVector
	for _, prize := range model.Doors() {
		joint[prize] = prior[prize] * model.HostPolicy(prize, contestantDoor).Normalize()[hostDoor]
	}
	return joint.Normalize(), nil
}

// #endregion exact-posterior

// #region eval-harness
// EvalHarness checks an empirical estimate against a reference distribution.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run compares the estimated per-door frequencies to the reference.
// A door with zero reference mass must receive exactly zero estimated mass.
func (h *EvalHarness) Run(estimate, reference model.ProbabilityVector) EvalResult {
	var metrics []EvalMetric
	passed := true
	var failReasons []string

	// 1. Per-door absolute error
	for _, d := range model.Doors() {
		diff := math.Abs(estimate[d] - reference[d])
		pass := diff <= h.config.Tolerance
		metrics = append(metrics, EvalMetric{
			Name:  fmt.Sprintf("door_%d_abs_error", d),
			Value: diff,
			Pass:  pass,
		})
		if !pass {
			passed = false
			failReasons = append(failReasons, fmt.Sprintf("door %d error %.4f exceeds %.4f", d, diff, h.config.Tolerance))
		}
	}

	// 2. Frequencies must form a distribution
	sum := estimate.Sum()
	sumPass := math.Abs(sum-1) <= h.config.SumTolerance
	metrics = append(metrics, EvalMetric{
		Name:  "frequency_sum",
		Value: sum,
		Pass:  sumPass,
	})
	if !sumPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("frequencies sum to %.6f", sum))
	}

	// 3. Impossible doors must carry no mass at all
	var impossible float64
	for _, d := range model.Doors() {
		if reference[d] == 0 {
			impossible += estimate[d]
		}
	}
	impossiblePass := impossible == 0
	metrics = append(metrics, EvalMetric{
		Name:  "impossible_door_mass",
		Value: impossible,
		Pass:  impossiblePass,
	})
	if !impossiblePass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("mass %.4f on impossible doors", impossible))
	}

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:  passed,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

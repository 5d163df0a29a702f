package gate

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/montyhall/internal/infer"
)

// #region gate
// Gate decides whether a weighted population is healthy enough to resample.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Evaluate checks the population for hard vetoes and reports its effective
// sample size relative to the particle count.
func (g *Gate) Evaluate(pop infer.Population) GateDecision {
	n := len(pop.Particles)
	if n == 0 {
		v := VetoSignal{Type: VetoEmpty, Reason: "population has no particles"}
		return GateDecision{
			Action:      "reject",
			Reason:      fmt.Sprintf("hard veto: %s", v.Reason),
			Vetoed:      true,
			VetoSignals: []VetoSignal{v},
		}
	}

	var vetoes []VetoSignal

	// 1. Marginal likelihood must be a finite log value
	if math.IsNaN(pop.LogMarginal) || math.IsInf(pop.LogMarginal, 0) {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoNonFinite,
			Reason: fmt.Sprintf("log marginal %v is not finite", pop.LogMarginal),
		})
	}

	// 2. Weight degeneracy
	frac := essFraction(pop.ESS, n)
	if frac < g.config.MinESSFraction {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoDegenerate,
			Reason: fmt.Sprintf("ess fraction %.4f below floor %.4f", frac, g.config.MinESSFraction),
		})
	}

	if len(vetoes) > 0 {
		return GateDecision{
			Action:      "reject",
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
			ESS:         pop.ESS,
			ESSFraction: frac,
		}
	}

	return GateDecision{
		Action:      "accept",
		Reason:      fmt.Sprintf("passed gate: ess=%.1f fraction=%.4f", pop.ESS, frac),
		ESS:         pop.ESS,
		ESSFraction: frac,
	}
}

// #endregion gate

// #region helpers
func essFraction(ess float64, n int) float64 {
	if n == 0 || math.IsNaN(ess) {
		return 0
	}
	f := ess / float64(n)
	if f > 1 {
		return 1
	}
	return f
}

// #endregion helpers

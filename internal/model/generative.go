package model

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// #region categorical
// Categorical draws a door with probability proportional to p.
// The weights need not be normalized but must have positive total mass.
func Categorical(rng *rand.Rand, p ProbabilityVector) Door {
	total := p.Sum()
	u := rng.Float64() * total
	var acc float64
	last := Door(0)
	for i, w := range p {
		if w <= 0 {
			continue
		}
		last = Door(i)
		acc += w
		if u < acc {
			return Door(i)
		}
	}
	// Floating point rounding can leave u == total; take the last
	// door with positive weight.
	return last
}

// #endregion categorical

// #region generative-model
// GenerativeModel is the Monty Hall joint process for a fixed contestant door.
type GenerativeModel struct {
	contestantDoor Door
}

// NewGenerativeModel builds the model for the given contestant door.
func NewGenerativeModel(contestantDoor Door) (*GenerativeModel, error) {
	if err := contestantDoor.Validate(); err != nil {
		return nil, fmt.Errorf("contestant door: %w", err)
	}
	return &GenerativeModel{contestantDoor: contestantDoor}, nil
}

// ContestantDoor returns the door the model was built for.
func (m *GenerativeModel) ContestantDoor() Door {
	return m.contestantDoor
}

// Simulate runs the model forward: draw the prize uniformly, then draw the
// host's door from HostPolicy.
func (m *GenerativeModel) Simulate(rng *rand.Rand) Sample {
	prize := Categorical(rng, PriorPrize())
	host := Categorical(rng, HostPolicy(prize, m.contestantDoor))
	return Sample{PrizeDoor: prize, HostDoor: host}
}

// Generate runs the model with the choices in obs held fixed. Unobserved
// choices are drawn from their conditionals; each observed choice adds its
// log-probability under the model to the trace weight. An observation the
// model cannot produce yields a weight of -Inf, not an error.
func (m *GenerativeModel) Generate(rng *rand.Rand, obs Choices) (Trace, error) {
	for addr, d := range obs {
		if addr != AddrPrize && addr != AddrHost {
			return Trace{}, fmt.Errorf("%w: %q", ErrUnknownAddress, addr)
		}
		if err := d.Validate(); err != nil {
			return Trace{}, fmt.Errorf("observed %s: %w", addr, err)
		}
	}

	tr := Trace{Choices: make(Choices, 2)}

	prior := PriorPrize()
	prize, ok := obs[AddrPrize]
	if ok {
		tr.LogWeight += math.Log(prior.At(prize))
	} else {
		prize = Categorical(rng, prior)
	}
	tr.Choices[AddrPrize] = prize

	hostProbs := HostPolicy(prize, m.contestantDoor).Normalize()
	host, ok := obs[AddrHost]
	if ok {
		tr.LogWeight += math.Log(hostProbs.At(host))
	} else {
		host = Categorical(rng, hostProbs)
	}
	tr.Choices[AddrHost] = host

	return tr, nil
}

// #endregion generative-model

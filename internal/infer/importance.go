package infer

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/danielpatrickdp/montyhall/internal/model"
)

// #region importance-sample
// ImportanceSample draws n traces from prog with obs held fixed, using the
// prior as proposal, and weights each by the likelihood of the observations.
func ImportanceSample(ctx context.Context, rng *rand.Rand, prog Program, obs model.Choices, n int) (Population, error) {
	if n <= 0 {
		return Population{}, fmt.Errorf("%w: %d", ErrNoParticles, n)
	}
	if n > MaxParticles {
		return Population{}, fmt.Errorf("%w: %d > %d", ErrTooManyParticles, n, MaxParticles)
	}

	particles := make([]Particle, n)
	maxLog := math.Inf(-1)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return Population{}, err
		}
		tr, err := prog.Generate(rng, obs)
		if err != nil {
			return Population{}, fmt.Errorf("particle %d: %w", i, err)
		}
		particles[i] = Particle{Choices: tr.Choices, LogWeight: tr.LogWeight}
		if tr.LogWeight > maxLog {
			maxLog = tr.LogWeight
		}
	}
	if math.IsInf(maxLog, -1) {
		return Population{}, ErrZeroLikelihood
	}

	// log-sum-exp, shifted by the max weight
	var total float64
	for i := range particles {
		particles[i].Weight = math.Exp(particles[i].LogWeight - maxLog)
		total += particles[i].Weight
	}
	var sumSq float64
	for i := range particles {
		particles[i].Weight /= total
		sumSq += particles[i].Weight * particles[i].Weight
	}

	return Population{
		Particles:   particles,
		LogMarginal: maxLog + math.Log(total) - math.Log(float64(n)),
		ESS:         1 / sumSq,
	}, nil
}

// #endregion importance-sample

// #region resample
// Resample draws m choice sets from pop with replacement, in proportion to
// particle weight.
func Resample(rng *rand.Rand, pop Population, m int) ([]model.Choices, error) {
	if m <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoParticles, m)
	}
	if len(pop.Particles) == 0 {
		return nil, fmt.Errorf("resample: %w", ErrNoParticles)
	}

	cdf := make([]float64, len(pop.Particles))
	var acc float64
	for i, p := range pop.Particles {
		acc += p.Weight
		cdf[i] = acc
	}
	if acc <= 0 {
		return nil, ErrZeroLikelihood
	}

	out := make([]model.Choices, m)
	for i := range out {
		u := rng.Float64() * acc
		j := sort.SearchFloat64s(cdf, u)
		// SearchFloat64s returns the first index with cdf >= u; skip
		// zero-weight particles that share the same cumulative value.
		for j < len(cdf)-1 && pop.Particles[j].Weight == 0 {
			j++
		}
		if j >= len(cdf) {
			j = len(cdf) - 1
		}
		out[i] = pop.Particles[j].Choices
	}
	return out, nil
}

// #endregion resample

// #region marginal
// Marginal returns the weighted distribution of one named choice.
func (p Population) Marginal(addr string) model.ProbabilityVector {
	var out model.ProbabilityVector
	for _, pt := range p.Particles {
		d, ok := pt.Choices[addr]
		if !ok || d.Validate() != nil {
			continue
		}
		out[d] += pt.Weight
	}
	return out
}

// #endregion marginal

// #region local-engine
// LocalEngine answers queries in-process with ImportanceSample.
type LocalEngine struct{}

// NewLocalEngine returns an in-process engine.
func NewLocalEngine() *LocalEngine {
	return &LocalEngine{}
}

// Infer builds the generative model for the query's contestant door and
// importance-samples it, seeding the generator from q.Seed.
func (e *LocalEngine) Infer(ctx context.Context, q Query) (Population, error) {
	m, err := model.NewGenerativeModel(q.ContestantDoor)
	if err != nil {
		return Population{}, fmt.Errorf("build model: %w", err)
	}
	return ImportanceSample(ctx, model.NewRand(q.Seed), m, q.Observations, q.Particles)
}

// #endregion local-engine

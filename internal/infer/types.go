package infer

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/danielpatrickdp/montyhall/internal/model"
)

// #region errors
var (
	// ErrNoParticles is returned when a non-positive particle or sample
	// count is requested.
	ErrNoParticles = errors.New("particle count must be positive")

	// ErrTooManyParticles is returned when a particle count exceeds
	// MaxParticles.
	ErrTooManyParticles = errors.New("particle count exceeds limit")

	// ErrZeroLikelihood is returned when every particle assigns zero
	// probability to the observations.
	ErrZeroLikelihood = errors.New("observations have zero likelihood under every particle")
)

// #endregion errors

// MaxParticles bounds a single population. An encoded population of this
// size stays well under gRPC's default 4 MB message limit.
const MaxParticles = 20000

// #region program
// Program is a generative procedure that can be run with some of its named
// choices held fixed. *model.GenerativeModel satisfies it.
type Program interface {
	Generate(rng *rand.Rand, obs model.Choices) (model.Trace, error)
}

// #endregion program

// #region query
// Query describes one posterior request against an Engine.
type Query struct {
	ContestantDoor model.Door
	Observations   model.Choices
	Particles      int
	Seed           uint64
}

// #endregion query

// #region population
// Particle is one weighted trace. Weight is normalized across the population.
type Particle struct {
	Choices   model.Choices
	LogWeight float64
	Weight    float64
}

// Population is a weighted sample set approximating the posterior over the
// unobserved choices.
type Population struct {
	Particles   []Particle
	LogMarginal float64 // log estimate of p(observations)
	ESS         float64 // effective sample size, 1 / sum(w^2)
}

// #endregion population

// #region engine
// Engine produces a weighted population for a query.
type Engine interface {
	Infer(ctx context.Context, q Query) (Population, error)
}

// #endregion engine

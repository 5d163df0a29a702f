package model

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// #region errors
var (
	// ErrInvalidDoor is returned when a door lies outside {0, 1, 2}.
	ErrInvalidDoor = errors.New("invalid door")

	// ErrInvalidScenario is returned when an observation is logically
	// impossible, e.g. the host opening the contestant's own door.
	ErrInvalidScenario = errors.New("invalid scenario")

	// ErrUnknownAddress is returned when an observation names a choice the
	// model does not make.
	ErrUnknownAddress = errors.New("unknown choice address")
)

// #endregion errors

// #region door
// NumDoors is the fixed number of doors in the game.
const NumDoors = 3

// Door identifies one of the three doors.
type Door int

// Validate returns ErrInvalidDoor if d is not one of 0, 1, 2.
func (d Door) Validate() error {
	if d < 0 || d >= NumDoors {
		return fmt.Errorf("%w: %d", ErrInvalidDoor, int(d))
	}
	return nil
}

// Doors returns every door in index order.
func Doors() [NumDoors]Door {
	return [NumDoors]Door{0, 1, 2}
}

// #endregion door

// #region probability-vector
// ProbabilityVector is a categorical distribution (or non-negative weight
// vector) indexed by Door.
type ProbabilityVector [NumDoors]float64

// Sum returns the total mass of the vector.
func (p ProbabilityVector) Sum() float64 {
	var s float64
	for _, v := range p {
		s += v
	}
	return s
}

// Normalize returns p scaled to sum to 1. A zero vector is returned unchanged.
func (p ProbabilityVector) Normalize() ProbabilityVector {
	s := p.Sum()
	if s == 0 {
		return p
	}
	var out ProbabilityVector
	for i, v := range p {
		out[i] = v / s
	}
	return out
}

// At returns the entry for door d.
func (p ProbabilityVector) At(d Door) float64 {
	return p[d]
}

// #endregion probability-vector

// #region sample
// Sample is the outcome of one forward run of the generative model.
type Sample struct {
	PrizeDoor Door
	HostDoor  Door
}

// Addresses of the named random choices made by the generative model.
const (
	AddrPrize = "prize_door"
	AddrHost  = "host_door"
)

// Choices assigns door values to named random choices.
type Choices map[string]Door

// Clone returns an independent copy of c.
func (c Choices) Clone() Choices {
	out := make(Choices, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Trace is one constrained evaluation of the model: the full set of
// choices plus the log-likelihood of the observed ones.
type Trace struct {
	Choices   Choices
	LogWeight float64
}

// #endregion sample

// #region rand
// NewRand returns a PCG-backed generator for the given seed.
// All randomness in the model flows through an explicit *rand.Rand.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// #endregion rand

package model

import "fmt"

// #region host-policy
// HostPolicy returns the distribution over the door the host opens, given
// where the prize is and which door the contestant picked.
//
// When the contestant picked the prize door the host opens either other
// door with probability 0.5. Otherwise only one door is neither the prize
// nor the contestant's, and the host must open it.
//
// Panics on an out-of-range door; use HostPolicyChecked for untrusted input.
func HostPolicy(prizeDoor, contestantDoor Door) ProbabilityVector {
	p, err := HostPolicyChecked(prizeDoor, contestantDoor)
	if err != nil {
		panic(err)
	}
	return p
}

// HostPolicyChecked is HostPolicy with input validation.
func HostPolicyChecked(prizeDoor, contestantDoor Door) (ProbabilityVector, error) {
	if err := prizeDoor.Validate(); err != nil {
		return ProbabilityVector{}, fmt.Errorf("prize door: %w", err)
	}
	if err := contestantDoor.Validate(); err != nil {
		return ProbabilityVector{}, fmt.Errorf("contestant door: %w", err)
	}

	var probs ProbabilityVector
	if prizeDoor == contestantDoor {
		probs = ProbabilityVector{0.5, 0.5, 0.5}
		// Both assignments hit the same index here.
		probs[contestantDoor] = 0
		probs[prizeDoor] = 0
	} else {
		probs = ProbabilityVector{1, 1, 1}
		probs[contestantDoor] = 0
		probs[prizeDoor] = 0
	}
	return probs, nil
}

// #endregion host-policy

// #region prior
// PriorPrize is the uniform prior over the prize location.
func PriorPrize() ProbabilityVector {
	return ProbabilityVector{1.0 / 3, 1.0 / 3, 1.0 / 3}
}

// #endregion prior

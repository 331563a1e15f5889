// Package onerm estimates a one-repetition maximum from a logged set.
package onerm

import "math"

// maxRPE is the top of the RPE scale; at RPE 10 there are no reps in reserve.
const maxRPE = 10

// epleyDivisor is the constant in the Epley extrapolation
// load * (1 + reps/30).
const epleyDivisor = 30

// Estimate returns the estimated one-rep max for a set of `reps` repetitions
// at `load` with a perceived exertion of `rpe`, rounded to two decimals.
//
// The RPE is converted into reps in reserve (RPE 8 on a set of 5 means the
// lifter could have done ~7), and that adjusted rep count feeds an Epley
// extrapolation. The second return is false when any input is non-positive
// or RPE is above the scale; callers are responsible for excluding sets whose
// load is expressed as reps-in-reserve rather than weight.
func Estimate(load, reps, rpe float64) (float64, bool) {
	if load <= 0 || reps <= 0 || rpe <= 0 || rpe > maxRPE {
		return 0, false
	}

	repsInReserve := maxRPE - rpe
	adjusted := reps + repsInReserve

	est := load * (1 + adjusted/epleyDivisor)
	return math.Round(est*100) / 100, true
}

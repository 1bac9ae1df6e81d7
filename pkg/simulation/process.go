package simulation

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidParameter is returned when Simulate is called with a
// non-positive rate or a negative step count.
var ErrInvalidParameter = errors.New("invalid parameter")

// MaxRate is the largest accepted mean holding time. Poisson draws with a
// mean much above it no longer fit in an int.
const MaxRate = 1e15

// Simulate draws one realization of the skyline process.
//
// count holding times are drawn from an exponential distribution with mean
// rate. The jump times are their running sum, starting at 0. Every jump
// after the origin carries a Poisson count whose mean is the holding time
// that preceded it; counts do not accumulate across jumps.
//
// All exponential variates are drawn before any Poisson variate, so a
// fixed src reproduces the realization exactly. A nil src uses the global
// math/rand/v2 generator.
func Simulate(rate float64, count int, src rand.Source) (Realization, error) {
	if !(rate > 0) || math.IsInf(rate, 1) {
		return Realization{}, fmt.Errorf("%w: rate must be a finite value greater than 0, got %v", ErrInvalidParameter, rate)
	}
	if rate > MaxRate {
		return Realization{}, fmt.Errorf("%w: rate must not exceed %g, got %v", ErrInvalidParameter, MaxRate, rate)
	}
	if count < 0 {
		return Realization{}, fmt.Errorf("%w: count must not be negative, got %d", ErrInvalidParameter, count)
	}

	holding := distuv.Exponential{Rate: 1 / rate, Src: src}
	arrivals := func(mean float64) float64 {
		return distuv.Poisson{Lambda: mean, Src: src}.Rand()
	}

	return simulate(count, holding.Rand, arrivals), nil
}

// simulate assembles a realization from the given variate generators.
func simulate(count int, holding func() float64, arrivals func(mean float64) float64) Realization {
	holdingTimes := make([]float64, count)
	for i := range holdingTimes {
		holdingTimes[i] = holding()
	}

	jumpTimes := make([]float64, count+1)
	for i, h := range holdingTimes {
		jumpTimes[i+1] = jumpTimes[i] + h
	}

	states := make([]int, count+1)
	for i, h := range holdingTimes {
		states[i+1] = int(arrivals(h))
	}

	return Realization{JumpTimes: jumpTimes, States: states}
}

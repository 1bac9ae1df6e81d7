package simulation

import (
	"sort"

	"github.com/sherine-k/skyline/pkg/config"
)

// Realization is one simulated skyline: jump times and the state that
// holds after each jump. Both slices have the same length and start at
// the origin (0, 0). A Realization is not modified after it is returned.
type Realization struct {
	JumpTimes []float64
	States    []int
}

// Len returns the number of points, including the origin.
func (r Realization) Len() int {
	return len(r.JumpTimes)
}

// MaxTime returns the last jump time.
func (r Realization) MaxTime() float64 {
	if len(r.JumpTimes) == 0 {
		return 0
	}
	return r.JumpTimes[len(r.JumpTimes)-1]
}

// MaxState returns the largest state.
func (r Realization) MaxState() int {
	highest := 0
	for _, s := range r.States {
		if s > highest {
			highest = s
		}
	}
	return highest
}

// HoldingTimes recovers the holding times from the jump times.
func (r Realization) HoldingTimes() []float64 {
	if len(r.JumpTimes) < 2 {
		return []float64{}
	}
	holding := make([]float64, len(r.JumpTimes)-1)
	for i := 1; i < len(r.JumpTimes); i++ {
		holding[i-1] = r.JumpTimes[i] - r.JumpTimes[i-1]
	}
	return holding
}

// ValueAt returns the step value at time t: States[i] on the interval
// (JumpTimes[i-1], JumpTimes[i]], States[0] at or before the origin and the
// last state after the last jump.
func (r Realization) ValueAt(t float64) int {
	if len(r.JumpTimes) == 0 {
		return 0
	}
	i := sort.SearchFloat64s(r.JumpTimes, t)
	if i >= len(r.States) {
		return r.States[len(r.States)-1]
	}
	return r.States[i]
}

// Layer is a realization together with the configuration that produced it
type Layer struct {
	Index       int
	Spec        config.Layer
	Realization Realization
}

// Jump represents a single jump of one layer
type Jump struct {
	Layer   int
	Index   int
	Time    float64
	Holding float64
	State   int
}

// TimePoint represents the value of every layer at a specific point in time
type TimePoint struct {
	Time   float64
	Values []int
}

// LayerStats summarises one realization
type LayerStats struct {
	Layer       int
	Jumps       int
	MeanHolding float64
	MeanState   float64
	MaxState    int
	EndTime     float64
}

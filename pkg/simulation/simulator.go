package simulation

import (
	"fmt"
	"math"
	"sort"

	"github.com/sherine-k/skyline/pkg/config"
	"github.com/sherine-k/skyline/pkg/logging"
)

// DefaultSamples is the number of time points sampled for charting.
const DefaultSamples = 200

// Simulator runs every layer of a scene
type Simulator struct {
	scene      *config.Scene
	seed       uint64
	generation uint64
	layers     []Layer
	timePoints []TimePoint
	jumps      []Jump
}

// NewSimulator creates a new simulator. Every call to Run draws a new
// generation of realizations from the same base seed.
func NewSimulator(scene *config.Scene, seed uint64) *Simulator {
	return &Simulator{
		scene: scene,
		seed:  seed,
	}
}

// Run simulates a fresh generation of all layers
func (s *Simulator) Run() error {
	layers := make([]Layer, 0, len(s.scene.Layers))

	for i, spec := range s.scene.Layers {
		src := NewSource(s.seed, s.generation, i)
		r, err := Simulate(spec.Beta, spec.Steps, src)
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		layers = append(layers, Layer{Index: i, Spec: spec, Realization: r})
	}

	logging.Logger().Debug("simulated generation",
		"seed", s.seed,
		"generation", s.generation,
		"layers", len(layers))

	s.layers = layers
	s.jumps = collectJumps(layers)
	s.timePoints = SampleTimePoints(Realizations(layers), CommonEndTime(Realizations(layers)), DefaultSamples)
	s.generation++

	return nil
}

// collectJumps merges the jumps of all layers, ordered by time
func collectJumps(layers []Layer) []Jump {
	jumps := []Jump{}
	for _, layer := range layers {
		r := layer.Realization
		for i := 1; i < r.Len(); i++ {
			jumps = append(jumps, Jump{
				Layer:   layer.Index,
				Index:   i,
				Time:    r.JumpTimes[i],
				Holding: r.JumpTimes[i] - r.JumpTimes[i-1],
				State:   r.States[i],
			})
		}
	}

	sort.SliceStable(jumps, func(i, j int) bool {
		return jumps[i].Time < jumps[j].Time
	})

	return jumps
}

// SampleTimePoints samples every realization at evenly spaced times in
// [0, tmax]. At least two samples are taken.
func SampleTimePoints(realizations []Realization, tmax float64, samples int) []TimePoint {
	if len(realizations) == 0 {
		return []TimePoint{}
	}
	if samples < 2 {
		samples = 2
	}

	points := make([]TimePoint, samples)
	for i := range points {
		t := tmax * float64(i) / float64(samples-1)
		values := make([]int, len(realizations))
		for j, r := range realizations {
			values[j] = r.ValueAt(t)
		}
		points[i] = TimePoint{Time: t, Values: values}
	}

	return points
}

// CommonEndTime returns the smallest last jump time across realizations,
// the time range every layer covers.
func CommonEndTime(realizations []Realization) float64 {
	if len(realizations) == 0 {
		return 0
	}
	end := math.Inf(1)
	for _, r := range realizations {
		end = math.Min(end, r.MaxTime())
	}
	return end
}

// Realizations extracts the realizations of the given layers
func Realizations(layers []Layer) []Realization {
	out := make([]Realization, len(layers))
	for i, l := range layers {
		out[i] = l.Realization
	}
	return out
}

// Stats computes summary statistics for one realization
func Stats(layer Layer) LayerStats {
	r := layer.Realization
	stats := LayerStats{
		Layer:    layer.Index,
		Jumps:    r.Len() - 1,
		MaxState: r.MaxState(),
		EndTime:  r.MaxTime(),
	}
	if stats.Jumps <= 0 {
		return stats
	}

	stats.MeanHolding = r.MaxTime() / float64(stats.Jumps)
	total := 0
	for _, s := range r.States[1:] {
		total += s
	}
	stats.MeanState = float64(total) / float64(stats.Jumps)

	return stats
}

// GetLayers returns the layers of the last generation
func (s *Simulator) GetLayers() []Layer {
	return s.layers
}

// GetRealizations returns the realizations of the last generation
func (s *Simulator) GetRealizations() []Realization {
	return Realizations(s.layers)
}

// GetTimePoints returns all sampled time points
func (s *Simulator) GetTimePoints() []TimePoint {
	return s.timePoints
}

// GetJumps returns all jumps of the last generation, ordered by time
func (s *Simulator) GetJumps() []Jump {
	return s.jumps
}

// GetStats returns per-layer statistics of the last generation
func (s *Simulator) GetStats() []LayerStats {
	stats := make([]LayerStats, len(s.layers))
	for i, l := range s.layers {
		stats[i] = Stats(l)
	}
	return stats
}

// Seed returns the base seed
func (s *Simulator) Seed() uint64 {
	return s.seed
}

// Generation returns the number of completed runs
func (s *Simulator) Generation() uint64 {
	return s.generation
}

// Scene returns the scene being simulated
func (s *Simulator) Scene() *config.Scene {
	return s.scene
}

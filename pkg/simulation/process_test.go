package simulation

import (
	"errors"
	"math"
	"math/rand/v2"
	"reflect"
	"testing"
)

func TestSimulate_Lengths(t *testing.T) {
	for _, count := range []int{0, 1, 2, 10, 500} {
		r, err := Simulate(1.5, count, rand.NewPCG(1, 2))
		if err != nil {
			t.Fatalf("Simulate(1.5, %d): %v", count, err)
		}
		if len(r.JumpTimes) != count+1 || len(r.States) != count+1 {
			t.Errorf("count %d: got %d jump times and %d states, want %d",
				count, len(r.JumpTimes), len(r.States), count+1)
		}
	}
}

func TestSimulate_ZeroCount(t *testing.T) {
	r, err := Simulate(3, 0, rand.NewPCG(9, 9))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if !reflect.DeepEqual(r.JumpTimes, []float64{0}) || !reflect.DeepEqual(r.States, []int{0}) {
		t.Errorf("expected ([0], [0]), got (%v, %v)", r.JumpTimes, r.States)
	}
}

func TestSimulate_Invariants(t *testing.T) {
	const count = 1000
	r, err := Simulate(0.7, count, rand.NewPCG(42, 7))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	if r.JumpTimes[0] != 0 || r.States[0] != 0 {
		t.Fatalf("expected origin (0, 0), got (%v, %v)", r.JumpTimes[0], r.States[0])
	}

	holding := r.HoldingTimes()
	if len(holding) != count {
		t.Fatalf("expected %d holding times, got %d", count, len(holding))
	}

	sum := 0.0
	for i := 1; i <= count; i++ {
		if r.JumpTimes[i] < r.JumpTimes[i-1] {
			t.Fatalf("jump times decrease at %d: %v < %v", i, r.JumpTimes[i], r.JumpTimes[i-1])
		}
		if r.States[i] < 0 {
			t.Fatalf("negative state at %d: %d", i, r.States[i])
		}
		sum += holding[i-1]
		if math.Abs(r.JumpTimes[i]-sum) > 1e-9*math.Max(1, sum) {
			t.Fatalf("jump time %d = %v, want prefix sum %v", i, r.JumpTimes[i], sum)
		}
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	a, err := Simulate(1.0, 3, rand.NewPCG(2024, 1))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Simulate(1.0, 3, rand.NewPCG(2024, 1))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed produced different realizations:\n%v\n%v", a, b)
	}

	c, err := Simulate(1.0, 50, rand.NewPCG(2025, 1))
	if err != nil {
		t.Fatal(err)
	}
	d, err := Simulate(1.0, 50, rand.NewPCG(2024, 1))
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(c.JumpTimes, d.JumpTimes) {
		t.Error("different seeds produced identical jump times")
	}
}

func TestSimulate_InvalidParameters(t *testing.T) {
	tests := []struct {
		name  string
		rate  float64
		count int
	}{
		{"zero rate", 0, 3},
		{"negative rate", -1, 3},
		{"NaN rate", math.NaN(), 3},
		{"infinite rate", math.Inf(1), 3},
		{"rate above bound", MaxRate * 10, 3},
		{"huge rate", 1e19, 5},
		{"overflowing rate", 1e300, 5},
		{"negative count", 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Simulate(tt.rate, tt.count, rand.NewPCG(1, 1))
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
			if r.JumpTimes != nil || r.States != nil {
				t.Errorf("expected no output, got %v", r)
			}
		})
	}
}

func TestSimulate_RateAtBound(t *testing.T) {
	r, err := Simulate(MaxRate, 20, rand.NewPCG(1, 1))
	if err != nil {
		t.Fatalf("Simulate(MaxRate): %v", err)
	}
	for i, s := range r.States {
		if s < 0 {
			t.Fatalf("negative state %d at %d", s, i)
		}
	}
}

// Pins the distuv wiring: exponential rate 1/rate, one shared source, and
// all holding times drawn before any Poisson count.
func TestSimulate_Golden(t *testing.T) {
	r, err := Simulate(1.0, 3, rand.NewPCG(42, 7))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	wantTimes := []float64{0, 2.004087061312913, 2.035410797539098, 3.2367828739241236}
	wantStates := []int{0, 2, 1, 1}
	if !reflect.DeepEqual(r.JumpTimes, wantTimes) {
		t.Errorf("jump times = %v, want %v", r.JumpTimes, wantTimes)
	}
	if !reflect.DeepEqual(r.States, wantStates) {
		t.Errorf("states = %v, want %v", r.States, wantStates)
	}
}

// The first three exponential variates of PCG(1, 2) are
// 0.5931317151369719, 0.0680034588807843 and 0.036496967459790364.
func TestSimulate_GoldenHoldingTimes(t *testing.T) {
	r, err := Simulate(2.0, 3, rand.NewPCG(1, 2))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	want := []float64{2 * 0.5931317151369719, 2 * 0.0680034588807843, 2 * 0.036496967459790364}
	for i, h := range r.HoldingTimes() {
		if math.Abs(h-want[i]) > 1e-12 {
			t.Errorf("holding time %d = %v, want %v", i, h, want[i])
		}
	}
}

func TestSimulate_NilSource(t *testing.T) {
	r, err := Simulate(1, 5, nil)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if r.Len() != 6 {
		t.Errorf("expected 6 points, got %d", r.Len())
	}
}

// Golden values against scripted variates: the holding times are taken in
// order, each state is the floor of twice its holding time.
func TestSimulateScripted(t *testing.T) {
	script := []float64{0.25, 1.5, 0.75}
	next := 0
	holding := func() float64 {
		h := script[next]
		next++
		return h
	}
	var means []float64
	arrivals := func(mean float64) float64 {
		means = append(means, mean)
		return math.Floor(2 * mean)
	}

	r := simulate(3, holding, arrivals)

	wantTimes := []float64{0, 0.25, 1.75, 2.5}
	wantStates := []int{0, 0, 3, 1}
	if !reflect.DeepEqual(r.JumpTimes, wantTimes) {
		t.Errorf("jump times = %v, want %v", r.JumpTimes, wantTimes)
	}
	if !reflect.DeepEqual(r.States, wantStates) {
		t.Errorf("states = %v, want %v", r.States, wantStates)
	}
	// Poisson means are the individual holding times, not elapsed time.
	if !reflect.DeepEqual(means, script) {
		t.Errorf("poisson means = %v, want %v", means, script)
	}
}

func TestSimulate_Statistics(t *testing.T) {
	const (
		rate        = 2.0
		count       = 1000
		realization = 20
	)

	src := rand.NewPCG(7, 11)
	var holdingSum, residualSum float64
	n := 0
	for k := 0; k < realization; k++ {
		r, err := Simulate(rate, count, src)
		if err != nil {
			t.Fatal(err)
		}
		for i, h := range r.HoldingTimes() {
			holdingSum += h
			residualSum += float64(r.States[i+1]) - h
			n++
		}
	}

	meanHolding := holdingSum / float64(n)
	// Standard error of the mean is rate/sqrt(n), about 0.014.
	if math.Abs(meanHolding-rate) > 0.1 {
		t.Errorf("mean holding time %v, want about %v", meanHolding, rate)
	}

	// E[state - holding] = 0; standard error is sqrt(rate/n), about 0.01.
	meanResidual := residualSum / float64(n)
	if math.Abs(meanResidual) > 0.1 {
		t.Errorf("mean state minus holding time %v, want about 0", meanResidual)
	}
}

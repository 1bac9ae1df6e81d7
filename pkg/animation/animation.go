// Package animation draws skylines incrementally, one frame at a time.
//
// Frame state is an explicit value: Advance takes a State and returns the
// next one. Nothing is kept between calls apart from the simulator that
// supplies a new generation when a loop ends.
package animation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sherine-k/skyline/pkg/config"
	"github.com/sherine-k/skyline/pkg/plot"
	"github.com/sherine-k/skyline/pkg/render"
	"github.com/sherine-k/skyline/pkg/simulation"
)

// ErrDone is returned by Advance after the last frame of the last loop.
var ErrDone = errors.New("animation finished")

// State is the position of an animation.
type State struct {
	Layers   []simulation.Layer
	Viewport plot.Viewport
	Frame    int
	Loop     int
}

// Animator steps through the frames of a scene.
type Animator struct {
	scene            *config.Scene
	sim              *simulation.Simulator
	framesPerSegment int
	loops            int
}

// New creates an animator drawing realizations from sim.
func New(scene *config.Scene, sim *simulation.Simulator) *Animator {
	return &Animator{
		scene:            scene,
		sim:              sim,
		framesPerSegment: scene.Animation.FramesPerSegment,
		loops:            scene.Animation.Loops,
	}
}

// FramesPerSegment returns the number of frames spent on each half of a
// step.
func (a *Animator) FramesPerSegment() int {
	return a.framesPerSegment
}

// Loops returns the number of loops played before ErrDone.
func (a *Animator) Loops() int {
	return a.loops
}

// Start simulates the first generation and returns the first frame.
func (a *Animator) Start() (State, error) {
	return a.generate(0)
}

// Advance returns the state following s. At the end of a loop a new
// generation is simulated and the viewport refitted.
func (a *Animator) Advance(s State) (State, error) {
	if s.Frame+1 < FrameCount(s.Layers, a.framesPerSegment) {
		next := s
		next.Frame++
		return next, nil
	}
	if s.Loop+1 >= a.loops {
		return s, ErrDone
	}
	return a.generate(s.Loop + 1)
}

func (a *Animator) generate(loop int) (State, error) {
	if err := a.sim.Run(); err != nil {
		return State{}, fmt.Errorf("failed to simulate loop %d: %w", loop, err)
	}
	layers := a.sim.GetLayers()
	return State{
		Layers:   layers,
		Viewport: plot.Fit(simulation.Realizations(layers)),
		Loop:     loop,
	}, nil
}

// Frame converts a state into a renderable frame.
func (a *Animator) Frame(s State) render.Frame {
	frame := render.Frame{
		Style:    render.StyleFor(a.scene),
		Viewport: s.Viewport,
		Layers:   make([]render.Layer, 0, len(s.Layers)),
		Caption:  a.scene.Caption,
	}
	for _, l := range s.Layers {
		frame.Layers = append(frame.Layers, render.Layer{
			Points:    plot.Clip(Trace(l.Realization, s.Frame, a.framesPerSegment), s.Viewport.TMax),
			Color:     l.Spec.ColorFor(l.Index),
			Alpha:     l.Spec.Alpha,
			LineWidth: l.Spec.WidthForAnimation(),
		})
	}
	return frame
}

// FrameCount returns the number of frames in one loop: two phases of
// framesPerSegment frames for every jump of the longest layer, plus the
// initial frame showing only the origin.
func FrameCount(layers []simulation.Layer, framesPerSegment int) int {
	steps := 0
	for _, l := range layers {
		if n := l.Realization.Len() - 1; n > steps {
			steps = n
		}
	}
	return 2*framesPerSegment*steps + 1
}

// Trace returns the part of a realization drawn after progress frames.
// Each jump is drawn in two phases of framesPerSegment frames: first along
// the time axis at the current state, then along the value axis to the
// next state.
func Trace(r simulation.Realization, progress, framesPerSegment int) []plot.Point {
	segments := r.Len() - 1
	if segments <= 0 || progress <= 0 {
		return plot.StepPath(simulation.Realization{
			JumpTimes: r.JumpTimes[:min(1, r.Len())],
			States:    r.States[:min(1, r.Len())],
		}, plot.StepPost)
	}

	perSegment := 2 * framesPerSegment
	full := plot.StepPath(r, plot.StepPost)
	if progress >= perSegment*segments {
		return full
	}

	k := progress / perSegment
	phase := progress % perSegment

	points := make([]plot.Point, 0, 2*k+3)
	points = append(points, full[:1+2*k]...)
	if phase == 0 {
		return points
	}

	t0, t1 := r.JumpTimes[k], r.JumpTimes[k+1]
	y0, y1 := float64(r.States[k]), float64(r.States[k+1])
	if phase <= framesPerSegment {
		f := float64(phase) / float64(framesPerSegment)
		return append(points, plot.Point{T: t0 + f*(t1-t0), Y: y0})
	}

	f := float64(phase-framesPerSegment) / float64(framesPerSegment)
	return append(points,
		plot.Point{T: t1, Y: y0},
		plot.Point{T: t1, Y: y0 + f*(y1-y0)})
}

// Play runs the animation from the start, calling fn with every state.
// A positive interval paces the calls; zero plays as fast as fn allows.
func Play(ctx context.Context, a *Animator, interval time.Duration, fn func(State) error) error {
	state, err := a.Start()
	if err != nil {
		return err
	}

	var ticker *time.Ticker
	if interval > 0 {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(state); err != nil {
			return err
		}

		state, err = a.Advance(state)
		if errors.Is(err, ErrDone) {
			return nil
		}
		if err != nil {
			return err
		}

		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}
}

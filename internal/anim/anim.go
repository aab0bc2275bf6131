// Package anim holds the frame-stepped scale animations of chore instances.
package anim

import (
	"time"

	"github.com/FrankDatema/MindHop/internal/geom"
)

// ShrinkThreshold is the squared magnitude below which a shrink snaps to zero.
const ShrinkThreshold = 0.01

// GrowScaleAt is the scale of a grow from zero to target after elapsed.
func GrowScaleAt(target geom.Vec3, duration, elapsed time.Duration) geom.Vec3 {
	if duration <= 0 || elapsed >= duration {
		return target
	}
	return geom.Lerp(geom.Zero, target, float64(elapsed)/float64(duration))
}

// Grow interpolates from zero to Target over Duration.
type Grow struct {
	Target   geom.Vec3
	Duration time.Duration
	elapsed  time.Duration
}

func NewGrow(target geom.Vec3, duration time.Duration) *Grow {
	return &Grow{Target: target, Duration: duration}
}

// Step samples the scale for the current frame and then advances by dt.
// Once the elapsed time reaches Duration it returns exactly Target and done.
func (g *Grow) Step(dt time.Duration) (geom.Vec3, bool) {
	if g.elapsed >= g.Duration {
		return g.Target, true
	}
	s := GrowScaleAt(g.Target, g.Duration, g.elapsed)
	g.elapsed += dt
	return s, false
}

func (g *Grow) Elapsed() time.Duration { return g.elapsed }

// Shrink moves a scale toward zero by Speed*dt of the remaining distance
// each frame.
type Shrink struct {
	Speed float64
}

// Step returns the next scale and whether the shrink has finished.
func (s Shrink) Step(current geom.Vec3, dt time.Duration) (geom.Vec3, bool) {
	if current.SqrMagnitude() <= ShrinkThreshold {
		return geom.Zero, true
	}
	t := s.Speed * dt.Seconds()
	next := geom.Lerp(current, geom.Zero, t)
	if next.SqrMagnitude() < ShrinkThreshold {
		return geom.Zero, true
	}
	return next, false
}

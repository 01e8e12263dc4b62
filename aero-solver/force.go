package aero

import "github.com/go-gl/mathgl/mgl64"

// Force accumulates the momentum handed to the obstacle during one frame.
type Force struct {
	sum mgl64.Vec2
}

// Reading is a force value split into drag and upward-positive lift.
type Reading struct {
	Drag float64 `json:"drag"`
	Lift float64 `json:"lift"`
}

// BeginFrame zeroes the accumulator.
func (f *Force) BeginFrame() {
	f.sum = mgl64.Vec2{}
}

// Accumulate adds a momentum delta.
func (f *Force) Accumulate(delta mgl64.Vec2) {
	f.sum = f.sum.Add(delta)
}

// Snapshot returns the current total. Screen y grows downward,
// so lift is the negated vertical component.
func (f *Force) Snapshot() Reading {
	return Reading{Drag: f.sum[0], Lift: -f.sum[1]}
}

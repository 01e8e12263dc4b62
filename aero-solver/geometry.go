package aero

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Aspect compensates for terminal cells being roughly twice as tall as wide,
// so that a Circle renders visually round.
const Aspect = 2.0

// Inside reports whether point p lies inside obstacle o.
func Inside(p mgl64.Vec2, o Obstacle) bool {
	if f, ok := o.(Flap); ok {
		// The bounding test of a rotated plate is the plate itself.
		local := mgl64.Rotate2D(-f.Angle).Mul2x1(p.Sub(f.Center))
		return math.Abs(local[0]) < f.Size[0]/2 && math.Abs(local[1]) < f.Size[1]/2
	}

	b := o.Bounds()
	lo, hi := b.min(), b.max()
	if p[0] < lo[0] || p[0] >= hi[0] || p[1] < lo[1] || p[1] >= hi[1] {
		return false
	}
	d := p.Sub(b.Center)

	switch o.(type) {
	case Square, Rectangle:
		return true
	case Wedge:
		nx := (p[0] - lo[0]) / b.Size[0]
		return math.Abs(d[1]) < (b.Size[1]/2)*nx
	case Circle:
		r := b.Size[0] / 2
		dy := d[1] * Aspect
		return d[0]*d[0]+dy*dy < r*r
	case Aerofoil:
		x := (p[0] - lo[0]) / b.Size[0]
		if x < 0 || x > 1 {
			return false
		}
		return math.Abs(d[1]) < b.Size[1]*Thickness(x)
	}
	panic(fmt.Sprintf("aero: inside test for unsupported obstacle %T", o))
}

// Thickness is the NACA 4-digit symmetric half thickness at chord position x in [0,1].
func Thickness(x float64) float64 {
	return 0.5 * (0.2969*math.Sqrt(x) - 0.1260*x - 0.3516*x*x + 0.2843*x*x*x - 0.1015*x*x*x*x)
}

// Extent returns the axis-aligned box covering o, rotation included.
// Renderers scan it to draw the obstacle outline.
func Extent(o Obstacle) (lo, hi mgl64.Vec2) {
	b := o.Bounds()
	angle := angleOf(o)
	if angle == 0 {
		return b.min(), b.max()
	}
	c, s := math.Abs(math.Cos(angle)), math.Abs(math.Sin(angle))
	half := mgl64.Vec2{
		(b.Size[0]*c + b.Size[1]*s) / 2,
		(b.Size[0]*s + b.Size[1]*c) / 2,
	}
	return b.Center.Sub(half), b.Center.Add(half)
}

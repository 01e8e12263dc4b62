package aero

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultRestitution = 0.4
	DefaultFriction    = 0.8
)

// Coefficients configures the collision response.
type Coefficients struct {
	Restitution float64 // fraction of the normal velocity kept, sign reversed
	Friction    float64 // fraction of the tangential velocity kept
}

// DefaultCoefficients returns the calibrated restitution and friction pair.
func DefaultCoefficients() Coefficients {
	return Coefficients{Restitution: DefaultRestitution, Friction: DefaultFriction}
}

// Normal returns the unit contact normal a particle moving with velocity v meets on o.
// Every variant but Flap is approached from the left only.
func Normal(v mgl64.Vec2, o Obstacle) mgl64.Vec2 {
	switch o := o.(type) {
	case Flap:
		local := mgl64.Rotate2D(-o.Angle).Mul2x1(v)
		n := mgl64.Vec2{0, -1}
		if local[1] < 0 {
			n = mgl64.Vec2{0, 1}
		}
		return mgl64.Rotate2D(o.Angle).Mul2x1(n)
	case Square, Rectangle, Wedge, Circle, Aerofoil:
		return mgl64.Vec2{-1, 0}
	}
	panic(fmt.Sprintf("aero: no contact normal for obstacle %T", o))
}

// Resolve reflects v off o. It returns the outgoing velocity and the
// momentum delta v-out handed to the obstacle.
func (c Coefficients) Resolve(v mgl64.Vec2, o Obstacle) (out, delta mgl64.Vec2) {
	n := Normal(v, o)
	vn := n.Mul(v.Dot(n))
	vt := v.Sub(vn)

	out = vn.Mul(-c.Restitution).Add(vt.Mul(c.Friction))
	return out, v.Sub(out)
}

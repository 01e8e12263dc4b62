package aero

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeKind tags the obstacle variants in their cycling order.
type ShapeKind int

const (
	ShapeSquare ShapeKind = iota
	ShapeRectangle
	ShapeWedge
	ShapeCircle
	ShapeAerofoil
	ShapeFlap
	numShapes
)

var shapeNames = [...]string{
	ShapeSquare:    "Square",
	ShapeRectangle: "Rectangle",
	ShapeWedge:     "Wedge",
	ShapeCircle:    "Circle",
	ShapeAerofoil:  "Aerofoil",
	ShapeFlap:      "Flap",
}

func (k ShapeKind) String() string {
	if k < 0 || k >= numShapes {
		return "Unknown"
	}
	return shapeNames[k]
}

// Next returns the kind following k, wrapping after the last one.
func (k ShapeKind) Next() ShapeKind {
	return (k + 1) % numShapes
}

// ParseShape maps a case-insensitive shape name to its kind.
func ParseShape(name string) (ShapeKind, error) {
	for k, n := range shapeNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return ShapeKind(k), nil
		}
	}
	return ShapeSquare, fmt.Errorf("unknown shape %q", name)
}

// DefaultSize returns the width and height an obstacle of kind k is created with.
func DefaultSize(k ShapeKind) mgl64.Vec2 {
	switch k {
	case ShapeRectangle:
		return mgl64.Vec2{20, 8}
	case ShapeWedge:
		return mgl64.Vec2{15, 15}
	case ShapeCircle:
		return mgl64.Vec2{12, 12}
	case ShapeAerofoil:
		// The profile is at most ~0.05*height thick, so the height
		// is a thickness scale rather than a visible extent.
		return mgl64.Vec2{30, 40}
	case ShapeFlap:
		return mgl64.Vec2{20, 2}
	default:
		return mgl64.Vec2{10, 10}
	}
}

// Body holds the placement shared by every obstacle variant.
type Body struct {
	Center mgl64.Vec2
	Size   mgl64.Vec2
}

func (b Body) min() mgl64.Vec2 {
	return b.Center.Sub(b.Size.Mul(0.5))
}

func (b Body) max() mgl64.Vec2 {
	return b.Center.Add(b.Size.Mul(0.5))
}

// Obstacle is the static body the particles collide with.
// It is implemented by Square, Rectangle, Wedge, Circle, Aerofoil and Flap only.
type Obstacle interface {
	Kind() ShapeKind
	Bounds() Body
	isObstacle()
}

type (
	Square    struct{ Body }
	Rectangle struct{ Body }
	Wedge     struct{ Body }
	Circle    struct{ Body }
	Aerofoil  struct{ Body }
	// Flap is a thin plate rotated by Angle radians around its center.
	Flap struct {
		Body
		Angle float64
	}
)

func (Square) Kind() ShapeKind    { return ShapeSquare }
func (Rectangle) Kind() ShapeKind { return ShapeRectangle }
func (Wedge) Kind() ShapeKind     { return ShapeWedge }
func (Circle) Kind() ShapeKind    { return ShapeCircle }
func (Aerofoil) Kind() ShapeKind  { return ShapeAerofoil }
func (Flap) Kind() ShapeKind      { return ShapeFlap }

func (b Body) Bounds() Body { return b }

func (Square) isObstacle()    {}
func (Rectangle) isObstacle() {}
func (Wedge) isObstacle()     {}
func (Circle) isObstacle()    {}
func (Aerofoil) isObstacle()  {}
func (Flap) isObstacle()      {}

// NewObstacle builds an obstacle of kind k. Non-positive size
// components are replaced with the defaults of that kind.
func NewObstacle(k ShapeKind, center, size mgl64.Vec2, angle float64) Obstacle {
	def := DefaultSize(k)
	for i := range size {
		if size[i] <= 0 {
			size[i] = def[i]
		}
	}
	b := Body{Center: center, Size: size}

	switch k {
	case ShapeRectangle:
		return Rectangle{b}
	case ShapeWedge:
		return Wedge{b}
	case ShapeCircle:
		return Circle{b}
	case ShapeAerofoil:
		return Aerofoil{b}
	case ShapeFlap:
		return Flap{Body: b, Angle: angle}
	default:
		return Square{b}
	}
}

// angleOf returns the rotation of o, which is zero for every variant but Flap.
func angleOf(o Obstacle) float64 {
	if f, ok := o.(Flap); ok {
		return f.Angle
	}
	return 0
}

package aero

import (
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func BenchmarkStep(b *testing.B) {
	for _, workers := range []int{1, 4} {
		for k := ShapeSquare; k < numShapes; k++ {
			b.Run(fmt.Sprintf("%s-workers-%d", k, workers), func(b *testing.B) {
				s := New(160, 48, WithSeed(1), WithShape(k), WithWorkers(workers),
					WithParams(Params{AirSpeed: 1, AirDensity: 1}))
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					s.Step()
				}
			})
		}
	}
}

func BenchmarkInside(b *testing.B) {
	obstacles := []Obstacle{
		Square{body(10, 10)},
		Circle{body(12, 12)},
		Aerofoil{body(30, 40)},
		Flap{Body: body(20, 2), Angle: 0.3},
	}
	for _, o := range obstacles {
		b.Run(o.Kind().String(), func(b *testing.B) {
			p := mgl64.Vec2{38, 13}
			for i := 0; i < b.N; i++ {
				Inside(p, o)
			}
		})
	}
}

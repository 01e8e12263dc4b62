package terminal

import (
	"github.com/charmbracelet/harmonica"

	aero "github.com/esimov/ascii-aero/aero-solver"
)

// gauge eases the force readout toward the latest frame value,
// since the per-frame force jumps with every collision.
type gauge struct {
	spring harmonica.Spring
	pos    [2]float64
	vel    [2]float64
}

func newGauge(fps int) *gauge {
	if fps <= 0 {
		fps = 60
	}
	return &gauge{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

func (g *gauge) step(r aero.Reading) aero.Reading {
	target := [2]float64{r.Drag, r.Lift}
	for i := range target {
		g.pos[i], g.vel[i] = g.spring.Update(g.pos[i], g.vel[i], target[i])
	}
	return aero.Reading{Drag: g.pos[0], Lift: g.pos[1]}
}

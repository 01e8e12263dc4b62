package aero

import (
	"math"
	"math/rand"

	"github.com/dgravesa/go-parallel/parallel"
)

// Step advances every particle by one frame and recomputes the force on the obstacle.
// The obstacle must not change while Step runs.
func (s *Simulation) Step() {
	s.force.BeginFrame()

	if s.workers > 1 && len(s.particles) >= s.workers {
		partial := make([]Force, s.workers)
		parallel.WithNumGoroutines(s.workers).For(len(s.particles), func(i, grID int) {
			s.advance(&s.particles[i], s.workerRngs[grID], &partial[grID])
		})
		for i := range partial {
			s.force.Accumulate(partial[i].sum)
		}
	} else {
		for i := range s.particles {
			s.advance(&s.particles[i], s.rng, &s.force)
		}
	}
	s.frame++
}

// advance runs the per-particle state machine. It only touches p, rng and f,
// so distinct particles can be advanced concurrently.
func (s *Simulation) advance(p *Particle, rng *rand.Rand, f *Force) {
	prev := p.pos
	p.pos = p.pos.Add(p.vel)
	p.vel[1] *= s.damping

	if s.outside(p) {
		s.recycle(p, rng)
		return
	}

	if !Inside(p.cell(), s.obstacle) {
		if p.vel[0] < s.params.AirSpeed {
			p.vel[0] = math.Min(p.vel[0]+s.relax, s.params.AirSpeed)
		}
		return
	}

	p.pos = prev
	out, delta := s.coef.Resolve(p.vel, s.obstacle)
	f.Accumulate(delta)
	p.vel = out
	// bounce-out, unclamped: a grazing hit may land inside again next frame
	p.pos = p.pos.Add(p.vel)
	if s.outside(p) {
		s.recycle(p, rng)
	}
}

// outside reports whether p has left the domain. The upper edges are exclusive.
func (s *Simulation) outside(p *Particle) bool {
	return p.pos[0] < 0 || p.pos[0] >= s.width || p.pos[1] < 0 || p.pos[1] >= s.height
}

// recycle puts p back on the left edge at a random height.
func (s *Simulation) recycle(p *Particle, rng *rand.Rand) {
	p.pos[0] = 0
	p.pos[1] = float64(rng.Intn(int(s.height)))
	p.vel[0] = s.params.AirSpeed + (rng.Float64()-0.5)*recycleJitter
	p.vel[1] = 0
}

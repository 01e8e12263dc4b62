package aero

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxParticles is the capacity of the particle array.
const MaxParticles = 10000

// Particle defines the general components of the particle system.
type Particle struct {
	pos mgl64.Vec2
	vel mgl64.Vec2
}

// NewParticle spawns a new particle at coordinates defined by {x, y} moving with {vx, vy}.
func NewParticle(x, y, vx, vy float64) Particle {
	return Particle{pos: mgl64.Vec2{x, y}, vel: mgl64.Vec2{vx, vy}}
}

// Pos returns the particle position in domain coordinates.
func (p *Particle) Pos() mgl64.Vec2 {
	return p.pos
}

// SetPos moves the particle to {x, y}.
func (p *Particle) SetPos(x, y float64) {
	p.pos = mgl64.Vec2{x, y}
}

// Vel returns the particle velocity in cells per frame.
func (p *Particle) Vel() mgl64.Vec2 {
	return p.vel
}

// SetVel sets the particle velocity.
func (p *Particle) SetVel(vx, vy float64) {
	p.vel = mgl64.Vec2{vx, vy}
}

// cell returns the grid cell the particle is drawn in.
func (p *Particle) cell() mgl64.Vec2 {
	return mgl64.Vec2{math.Round(p.pos[0]), math.Round(p.pos[1])}
}

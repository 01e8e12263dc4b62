package aero

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func newTestSim(opts ...Option) *Simulation {
	return New(80, 24, append([]Option{WithSeed(1)}, opts...)...)
}

func assertInDomain(t *testing.T, s *Simulation) {
	t.Helper()
	w, h := s.Size()
	for i, p := range s.Particles() {
		pos := p.Pos()
		if pos[0] < 0 || pos[0] >= float64(w) || pos[1] < 0 || pos[1] >= float64(h) {
			t.Fatalf("frame %d: particle %d at %v outside %dx%d", s.FrameIndex(), i, pos, w, h)
		}
	}
}

func TestRecycleOnUpperBoundary(t *testing.T) {
	s := newTestSim()
	s.SetParticles([]Particle{
		NewParticle(79.5, 2, 0.5, 0), // lands exactly on x == width
		NewParticle(80, 2, 0, 0),     // already on the boundary
		NewParticle(10, 23.5, 0, 0.5),
	})
	s.Step()

	for i, p := range s.Particles() {
		pos, vel := p.Pos(), p.Vel()
		if pos[0] != 0 {
			t.Errorf("particle %d not recycled: %v", i, pos)
		}
		if math.Abs(vel[0]-DefaultAirSpeed) > recycleJitter/2 || vel[1] != 0 {
			t.Errorf("particle %d recycled with velocity %v", i, vel)
		}
	}
	assertInDomain(t, s)
}

func TestRecycleOnLowerBoundary(t *testing.T) {
	s := newTestSim()
	s.SetParticles([]Particle{
		NewParticle(0.05, 2, -0.1, 0),
		NewParticle(5, 1, 0.5, -1), // lands exactly on y == 0, which is inside
	})
	s.Step()

	ps := s.Particles()
	if ps[0].Pos()[0] != 0 || ps[0].Vel()[0] < 0 {
		t.Errorf("particle left of the domain not recycled: %v %v", ps[0].Pos(), ps[0].Vel())
	}
	if got := ps[1].Pos(); got != (mgl64.Vec2{5.5, 0}) {
		t.Errorf("particle on the lower edge moved to %v, want [5.5 0]", got)
	}
}

func TestVerticalDamping(t *testing.T) {
	s := newTestSim()
	s.SetParticles([]Particle{NewParticle(5, 2, 0.5, 1)})
	s.Step()

	if vy := s.Particles()[0].Vel()[1]; vy != verticalDamping {
		t.Errorf("vy = %v, want %v", vy, verticalDamping)
	}
}

func TestRelaxTowardAirSpeed(t *testing.T) {
	s := newTestSim()
	s.SetParticles([]Particle{
		NewParticle(5, 2, 0.1, 0),
		NewParticle(5, 3, 0.45, 0),
		NewParticle(5, 4, 0.9, 0),
	})
	s.Step()

	ps := s.Particles()
	if vx := ps[0].Vel()[0]; math.Abs(vx-0.2) > 1e-12 {
		t.Errorf("slow particle vx = %v, want 0.2", vx)
	}
	if vx := ps[1].Vel()[0]; vx != DefaultAirSpeed {
		t.Errorf("relaxation overshot: vx = %v", vx)
	}
	if vx := ps[2].Vel()[0]; vx != 0.9 {
		t.Errorf("fast particle slowed down: vx = %v", vx)
	}
}

func TestCollisionRevertsAndBouncesOut(t *testing.T) {
	s := newTestSim()
	s.SetObstacle(Square{body(10, 10)})
	s.SetParticles([]Particle{NewParticle(34, 12, 1, 0)})
	s.Step()

	p := s.Particles()[0]
	if got := p.Pos(); !near(got, mgl64.Vec2{33.6, 12}) {
		t.Errorf("pos = %v, want [33.6 12]", got)
	}
	if got := p.Vel(); !near(got, mgl64.Vec2{-0.4, 0}) {
		t.Errorf("vel = %v, want [-0.4 0]", got)
	}
	if f := s.Force(); math.Abs(f.Drag-1.4) > 1e-12 || f.Lift != 0 {
		t.Errorf("force = %+v, want drag 1.4", f)
	}

	s.Step()
	if f := s.Force(); f.Drag != 0 || f.Lift != 0 {
		t.Errorf("force not reset on the next frame: %+v", f)
	}
}

func TestEndToEndSquare(t *testing.T) {
	s := newTestSim(WithParams(Params{AirSpeed: 1, AirDensity: DefaultAirDensity}))
	s.SetObstacle(Square{body(10, 10)})
	s.SetParticles([]Particle{NewParticle(0, 12, 1, 0)})

	collided := false
	for i := 0; i < 40; i++ {
		s.Step()
		if s.Force().Drag != 0 {
			collided = true
		}
		assertInDomain(t, s)
	}
	if !collided {
		t.Fatal("particle never hit the square")
	}
	vx := s.Particles()[0].Vel()[0]
	if vx < 0 || vx > 1 {
		t.Errorf("final vx = %v, want within [0, 1]", vx)
	}
}

func TestDomainInvariantAllShapes(t *testing.T) {
	for k := ShapeSquare; k < numShapes; k++ {
		t.Run(k.String(), func(t *testing.T) {
			s := newTestSim(WithShape(k), WithParams(Params{AirSpeed: 1.5, AirDensity: 0.1}))
			s.NudgeFlapAngle(math.Pi / 6)
			for i := 0; i < 120; i++ {
				s.Step()
				assertInDomain(t, s)
			}
			if n := len(s.Particles()); n != 1000 {
				t.Errorf("particle count drifted to %d", n)
			}
		})
	}
}

func TestParallelStep(t *testing.T) {
	s := newTestSim(WithWorkers(4), WithParams(Params{AirSpeed: 1, AirDensity: 0.5}))
	var drag float64
	for i := 0; i < 100; i++ {
		s.Step()
		assertInDomain(t, s)
		drag += s.Force().Drag
	}
	if n := len(s.Particles()); n != 5000 {
		t.Errorf("particle count = %d, want 5000", n)
	}
	if drag <= 0 {
		t.Errorf("total drag = %v, want positive", drag)
	}
	if s.FrameIndex() != 100 {
		t.Errorf("frame index = %d, want 100", s.FrameIndex())
	}
}

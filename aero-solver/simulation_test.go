package aero

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestInitialize(t *testing.T) {
	cases := []struct {
		density float64
		want    int
	}{
		{0.25, 2500},
		{1, MaxParticles},
		{1.5, MaxParticles},
		{0.05, 500},
	}
	for _, c := range cases {
		s := newTestSim(WithParams(Params{AirSpeed: 0.7, AirDensity: c.density}))
		ps := s.Particles()
		if len(ps) != c.want {
			t.Errorf("density %v: %d particles, want %d", c.density, len(ps), c.want)
		}
		if cap(ps) != MaxParticles {
			t.Errorf("capacity = %d, want %d", cap(ps), MaxParticles)
		}
		for _, p := range ps {
			if p.Vel() != (mgl64.Vec2{0.7, 0}) {
				t.Fatalf("initial velocity %v, want [0.7 0]", p.Vel())
			}
		}
		assertInDomain(t, s)
	}
}

func TestCycleShape(t *testing.T) {
	s := newTestSim()
	before := append([]Particle(nil), s.Particles()...)

	want := []ShapeKind{ShapeRectangle, ShapeWedge, ShapeCircle, ShapeAerofoil, ShapeFlap, ShapeSquare}
	for _, k := range want {
		s.CycleShape()
		o := s.Obstacle()
		if o.Kind() != k {
			t.Fatalf("kind = %s, want %s", o.Kind(), k)
		}
		if b := o.Bounds(); b.Size != DefaultSize(k) || b.Center != (mgl64.Vec2{40, 12}) {
			t.Errorf("%s: placed at %v size %v", k, b.Center, b.Size)
		}
	}
	for i, p := range s.Particles() {
		if p != before[i] {
			t.Fatalf("particle %d changed by a shape cycle", i)
		}
	}
}

func TestSetSpeedKeepsParticles(t *testing.T) {
	s := newTestSim()
	s.SetSpeed(1.7)
	if got := s.Params().AirSpeed; got != 1.7 {
		t.Errorf("speed = %v, want 1.7", got)
	}
	for _, p := range s.Particles() {
		if p.Vel()[0] != DefaultAirSpeed {
			t.Fatalf("velocity changed to %v", p.Vel())
		}
	}
	s.SetSpeed(-1)
	if got := s.Params().AirSpeed; got != 0 {
		t.Errorf("negative speed stored as %v", got)
	}
}

func TestSetDensityReinitializes(t *testing.T) {
	s := newTestSim()
	s.SetShape(ShapeFlap)
	s.NudgeFlapAngle(0.3)
	s.SetDensity(0.5)

	if n := len(s.Particles()); n != 5000 {
		t.Errorf("%d particles, want 5000", n)
	}
	if a := angleOf(s.Obstacle()); a != 0 {
		t.Errorf("flap angle = %v after reinitialize, want 0", a)
	}
	if s.Obstacle().Kind() != ShapeFlap {
		t.Errorf("shape kind lost on reinitialize")
	}
}

func TestAdjustWraps(t *testing.T) {
	s := newTestSim(WithParams(Params{AirSpeed: MaxAirSpeed, AirDensity: 1}))

	s.AdjustSpeed(SpeedStep)
	if got := s.Params().AirSpeed; got != SpeedStep {
		t.Errorf("speed wrapped to %v, want %v", got, SpeedStep)
	}
	s.AdjustSpeed(-SpeedStep)
	if got := s.Params().AirSpeed; got != MaxAirSpeed {
		t.Errorf("speed wrapped down to %v, want %v", got, MaxAirSpeed)
	}

	s.AdjustDensity(DensityStep)
	if got := s.Params().AirDensity; got != DensityStep {
		t.Errorf("density wrapped to %v, want %v", got, DensityStep)
	}
	if n := len(s.Particles()); n != 500 {
		t.Errorf("%d particles after density wrap, want 500", n)
	}
	s.AdjustDensity(-DensityStep)
	if got := s.Params().AirDensity; got != 1 {
		t.Errorf("density wrapped down to %v, want 1", got)
	}
}

func TestAdjustSpeedSteps(t *testing.T) {
	s := newTestSim()
	for i := 0; i < 15; i++ {
		s.AdjustSpeed(SpeedStep)
	}
	// 0.5 + 15*0.1 lands on the maximum, which must not wrap early
	if got := s.Params().AirSpeed; math.Abs(got-MaxAirSpeed) > 1e-9 {
		t.Errorf("speed = %v, want %v", got, MaxAirSpeed)
	}
}

func TestNudgeFlapAngle(t *testing.T) {
	s := newTestSim()
	s.NudgeFlapAngle(0.5)
	if _, ok := s.Obstacle().(Square); !ok {
		t.Fatalf("obstacle changed to %T", s.Obstacle())
	}

	s.SetShape(ShapeFlap)
	for i := 0; i < 100; i++ {
		s.NudgeFlapAngle(FlapStep)
	}
	f := s.Obstacle().(Flap)
	if math.Abs(f.Angle-100*FlapStep) > 1e-9 {
		t.Errorf("angle = %v, want %v", f.Angle, 100*FlapStep)
	}
}

func TestNewObstacleDefaults(t *testing.T) {
	o := NewObstacle(ShapeCircle, mgl64.Vec2{1, 2}, mgl64.Vec2{-3, 0}, 0)
	if got := o.Bounds().Size; got != DefaultSize(ShapeCircle) {
		t.Errorf("size = %v, want defaults", got)
	}
	o = NewObstacle(ShapeFlap, mgl64.Vec2{1, 2}, mgl64.Vec2{6, 1}, 0.25)
	if f, ok := o.(Flap); !ok || f.Angle != 0.25 || f.Size != (mgl64.Vec2{6, 1}) {
		t.Errorf("flap = %#v", o)
	}
}

func TestParseShape(t *testing.T) {
	for k := ShapeSquare; k < numShapes; k++ {
		got, err := ParseShape(" " + k.String() + " ")
		if err != nil || got != k {
			t.Errorf("ParseShape(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseShape("blimp"); err == nil {
		t.Error("expected an error for an unknown shape")
	}
	if got := ShapeKind(42).String(); got != "Unknown" {
		t.Errorf("String() = %q", got)
	}
}

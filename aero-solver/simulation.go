package aero

import (
	"math"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultAirSpeed   = 0.5
	DefaultAirDensity = 0.25

	MaxAirSpeed = 2.0
	SpeedStep   = 0.1
	DensityStep = 0.05

	// FlapStep is the angle nudge applied by a single flap command.
	FlapStep = 5 * math.Pi / 180

	verticalDamping = 0.95
	recycleJitter   = 0.1
	defaultRelax    = 0.1
)

// Params holds the tunable parameters of the air stream.
type Params struct {
	AirSpeed   float64 `json:"speed"`
	AirDensity float64 `json:"density"`
}

// Simulation owns the particle population, the obstacle and the force accumulator.
// It is not safe for concurrent use; input goroutines go through a Queue.
type Simulation struct {
	width, height float64

	params    Params
	particles []Particle
	obstacle  Obstacle
	kind      ShapeKind
	force     Force
	frame     int

	coef       Coefficients
	relax      float64
	damping    float64
	workers    int
	rng        *rand.Rand
	workerRngs []*rand.Rand
}

// Option customizes a Simulation created with New.
type Option func(*Simulation)

// WithParams sets the initial air speed and density.
func WithParams(p Params) Option {
	return func(s *Simulation) { s.params = p }
}

// WithShape selects the initial obstacle kind.
func WithShape(k ShapeKind) Option {
	return func(s *Simulation) { s.kind = k }
}

// WithCoefficients overrides the collision restitution and friction.
func WithCoefficients(c Coefficients) Option {
	return func(s *Simulation) { s.coef = c }
}

// WithRelaxation sets the per-frame increment pulling slow particles back to the air speed.
func WithRelaxation(r float64) Option {
	return func(s *Simulation) { s.relax = r }
}

// WithSeed makes particle placement and recycling reproducible.
func WithSeed(seed int64) Option {
	return func(s *Simulation) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithWorkers runs the particle pass on n goroutines. Values below 2 keep it serial.
func WithWorkers(n int) Option {
	return func(s *Simulation) { s.workers = n }
}

// New creates a simulation over a w×h domain and initializes it.
func New(w, h int, opts ...Option) *Simulation {
	s := &Simulation{
		params:  Params{AirSpeed: DefaultAirSpeed, AirDensity: DefaultAirDensity},
		kind:    ShapeSquare,
		coef:    DefaultCoefficients(),
		relax:   defaultRelax,
		damping: verticalDamping,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.workers > 1 {
		s.workerRngs = make([]*rand.Rand, s.workers)
		for i := range s.workerRngs {
			s.workerRngs[i] = rand.New(rand.NewSource(s.rng.Int63()))
		}
	}
	s.Initialize(w, h)

	return s
}

// Initialize re-seeds the whole particle population over a w×h domain
// and resets the obstacle to the default geometry of the current kind.
func (s *Simulation) Initialize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	s.width, s.height = float64(w), float64(h)

	n := int(MaxParticles * s.params.AirDensity)
	if n > MaxParticles {
		n = MaxParticles
	}
	if n < 0 {
		n = 0
	}
	if s.particles == nil {
		s.particles = make([]Particle, 0, MaxParticles)
	}
	s.particles = s.particles[:n]
	for i := range s.particles {
		s.particles[i] = NewParticle(
			float64(s.rng.Intn(w)),
			float64(s.rng.Intn(h)),
			s.params.AirSpeed, 0,
		)
	}
	s.resetObstacle()
	s.force.BeginFrame()
}

// Resize re-initializes the simulation over a new domain.
func (s *Simulation) Resize(w, h int) {
	s.Initialize(w, h)
}

func (s *Simulation) anchor() mgl64.Vec2 {
	return mgl64.Vec2{math.Floor(s.width / 2), math.Floor(s.height / 2)}
}

func (s *Simulation) resetObstacle() {
	s.obstacle = NewObstacle(s.kind, s.anchor(), DefaultSize(s.kind), 0)
}

// SetShape switches the obstacle variant, restoring its default size at the layout anchor.
// Particles are left untouched.
func (s *Simulation) SetShape(k ShapeKind) {
	if k < 0 || k >= numShapes {
		k = ShapeSquare
	}
	s.kind = k
	s.resetObstacle()
}

// CycleShape moves to the next obstacle variant.
func (s *Simulation) CycleShape() {
	s.SetShape(s.kind.Next())
}

// SetObstacle replaces the obstacle with a custom one.
func (s *Simulation) SetObstacle(o Obstacle) {
	s.kind = o.Kind()
	s.obstacle = o
}

// SetDensity updates the air density, clamped to (0,1], and re-initializes the population.
func (s *Simulation) SetDensity(v float64) {
	if v > 1 {
		v = 1
	}
	if v <= 0 {
		v = DensityStep
	}
	s.params.AirDensity = v
	s.Initialize(int(s.width), int(s.height))
}

// SetSpeed updates the air speed. Existing particles drift toward it
// through recycling and relaxation.
func (s *Simulation) SetSpeed(v float64) {
	if v < 0 {
		v = 0
	}
	s.params.AirSpeed = v
}

// AdjustSpeed steps the air speed, wrapping around the [SpeedStep, MaxAirSpeed] range.
func (s *Simulation) AdjustSpeed(delta float64) {
	v := s.params.AirSpeed + delta
	switch {
	case v > MaxAirSpeed+1e-9:
		v = SpeedStep
	case v < SpeedStep-1e-9:
		v = MaxAirSpeed
	}
	s.SetSpeed(v)
}

// AdjustDensity steps the air density, wrapping around the [DensityStep, 1] range.
func (s *Simulation) AdjustDensity(delta float64) {
	v := s.params.AirDensity + delta
	switch {
	case v > 1+1e-9:
		v = DensityStep
	case v < DensityStep-1e-9:
		v = 1
	}
	s.SetDensity(v)
}

// NudgeFlapAngle rotates a Flap obstacle by delta radians. Other obstacles are left alone.
func (s *Simulation) NudgeFlapAngle(delta float64) {
	if f, ok := s.obstacle.(Flap); ok {
		f.Angle += delta
		s.obstacle = f
	}
}

// Params returns the current air parameters.
func (s *Simulation) Params() Params { return s.params }

// Obstacle returns the current obstacle.
func (s *Simulation) Obstacle() Obstacle { return s.obstacle }

// Particles returns the live particles. The slice aliases the simulation state.
func (s *Simulation) Particles() []Particle { return s.particles }

// Force returns the force accumulated during the last step.
func (s *Simulation) Force() Reading { return s.force.Snapshot() }

// Size returns the domain width and height.
func (s *Simulation) Size() (w, h int) { return int(s.width), int(s.height) }

// FrameIndex returns the number of steps run since the simulation was created.
func (s *Simulation) FrameIndex() int { return s.frame }

// SetParticles replaces the population with a copy of ps, truncated to MaxParticles.
func (s *Simulation) SetParticles(ps []Particle) {
	if len(ps) > MaxParticles {
		ps = ps[:MaxParticles]
	}
	s.particles = append(s.particles[:0], ps...)
}

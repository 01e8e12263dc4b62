package aero

import "github.com/go-gl/mathgl/mgl64"

// ObstacleView is a flat description of an obstacle for renderers and clients.
type ObstacleView struct {
	Shape  string     `json:"shape"`
	Center mgl64.Vec2 `json:"center"`
	Size   mgl64.Vec2 `json:"size"`
	Angle  float64    `json:"angle"`
}

// Frame is a copy of the state a renderer needs to draw one frame.
type Frame struct {
	Index     int          `json:"frame"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Particles []mgl64.Vec2 `json:"particles"`
	Obstacle  ObstacleView `json:"obstacle"`
	Force     Reading      `json:"force"`
	Params    Params       `json:"params"`

	shape Obstacle
}

// Inside reports whether p lies inside the obstacle of the frame.
// A frame whose obstacle view names no known shape contains nothing.
func (f *Frame) Inside(p mgl64.Vec2) bool {
	o := f.obstacle()
	if o == nil {
		return false
	}
	return Inside(p, o)
}

// Extent returns the box covering the obstacle of the frame.
func (f *Frame) Extent() (lo, hi mgl64.Vec2) {
	o := f.obstacle()
	if o == nil {
		return lo, hi
	}
	return Extent(o)
}

// obstacle returns the frame's obstacle, rebuilding it from the view
// for frames that were decoded rather than taken from a Simulation.
func (f *Frame) obstacle() Obstacle {
	if f.shape == nil {
		k, err := ParseShape(f.Obstacle.Shape)
		if err != nil {
			return nil
		}
		f.shape = NewObstacle(k, f.Obstacle.Center, f.Obstacle.Size, f.Obstacle.Angle)
	}
	return f.shape
}

// Frame copies the current state. The result never aliases the particle slice.
func (s *Simulation) Frame() *Frame {
	pts := make([]mgl64.Vec2, len(s.particles))
	for i := range s.particles {
		pts[i] = s.particles[i].pos
	}
	w, h := s.Size()

	return &Frame{
		Index:     s.frame,
		Width:     w,
		Height:    h,
		Particles: pts,
		Obstacle:  viewOf(s.obstacle),
		Force:     s.force.Snapshot(),
		Params:    s.params,
		shape:     s.obstacle,
	}
}

func viewOf(o Obstacle) ObstacleView {
	b := o.Bounds()
	return ObstacleView{
		Shape:  o.Kind().String(),
		Center: b.Center,
		Size:   b.Size,
		Angle:  angleOf(o),
	}
}

// State is the serializable form of a Simulation.
type State struct {
	Frame      int
	Width      int
	Height     int
	Params     Params
	Shape      ShapeKind
	Center     mgl64.Vec2
	Size       mgl64.Vec2
	Angle      float64
	Positions  []mgl64.Vec2
	Velocities []mgl64.Vec2
}

// State returns a serializable copy of s.
func (s *Simulation) State() State {
	st := State{
		Frame:      s.frame,
		Params:     s.params,
		Shape:      s.kind,
		Angle:      angleOf(s.obstacle),
		Positions:  make([]mgl64.Vec2, len(s.particles)),
		Velocities: make([]mgl64.Vec2, len(s.particles)),
	}
	st.Width, st.Height = s.Size()
	b := s.obstacle.Bounds()
	st.Center, st.Size = b.Center, b.Size
	for i := range s.particles {
		st.Positions[i] = s.particles[i].pos
		st.Velocities[i] = s.particles[i].vel
	}
	return st
}

// Restore replaces the state of s with st.
func (s *Simulation) Restore(st State) {
	if st.Width < 1 {
		st.Width = 1
	}
	if st.Height < 1 {
		st.Height = 1
	}
	s.width, s.height = float64(st.Width), float64(st.Height)
	s.params = st.Params
	s.frame = st.Frame
	s.SetObstacle(NewObstacle(st.Shape, st.Center, st.Size, st.Angle))

	n := len(st.Positions)
	if len(st.Velocities) < n {
		n = len(st.Velocities)
	}
	if n > MaxParticles {
		n = MaxParticles
	}
	ps := make([]Particle, n)
	for i := range ps {
		ps[i] = Particle{pos: st.Positions[i], vel: st.Velocities[i]}
	}
	s.SetParticles(ps)
	s.force.BeginFrame()
}

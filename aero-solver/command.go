package aero

import (
	"fmt"
	"strings"
)

// Command is a discrete user request applied to the simulation between frames.
type Command int

const (
	CycleShape Command = iota
	SpeedUp
	SpeedDown
	DensityUp
	DensityDown
	FlapUp
	FlapDown
	Reset
)

var commandNames = map[string]Command{
	"shape":    CycleShape,
	"speed+":   SpeedUp,
	"speed-":   SpeedDown,
	"density+": DensityUp,
	"density-": DensityDown,
	"flap+":    FlapUp,
	"flap-":    FlapDown,
	"reset":    Reset,
}

// ParseCommand maps a text message such as "shape" or "speed+" to a Command.
func ParseCommand(msg string) (Command, error) {
	cmd, ok := commandNames[strings.ToLower(strings.TrimSpace(msg))]
	if !ok {
		return 0, fmt.Errorf("unknown command %q", msg)
	}
	return cmd, nil
}

// Apply executes cmd. It must not be called while Step runs.
func (s *Simulation) Apply(cmd Command) {
	switch cmd {
	case CycleShape:
		s.CycleShape()
	case SpeedUp:
		s.AdjustSpeed(SpeedStep)
	case SpeedDown:
		s.AdjustSpeed(-SpeedStep)
	case DensityUp:
		s.AdjustDensity(DensityStep)
	case DensityDown:
		s.AdjustDensity(-DensityStep)
	case FlapUp:
		s.NudgeFlapAngle(FlapStep)
	case FlapDown:
		s.NudgeFlapAngle(-FlapStep)
	case Reset:
		s.Initialize(int(s.width), int(s.height))
	}
}

// Queue buffers commands coming from input goroutines until the frame loop drains them.
type Queue struct {
	ch chan Command
}

// NewQueue creates a queue holding up to size pending commands.
func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan Command, size)}
}

// Push enqueues cmd. It reports false and drops the command when the queue is full.
func (q *Queue) Push(cmd Command) bool {
	select {
	case q.ch <- cmd:
		return true
	default:
		return false
	}
}

// Drain applies every pending command to s in arrival order and returns how many ran.
func (q *Queue) Drain(s *Simulation) int {
	n := 0
	for {
		select {
		case cmd := <-q.ch:
			s.Apply(cmd)
			n++
		default:
			return n
		}
	}
}

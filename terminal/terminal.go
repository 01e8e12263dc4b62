package terminal

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"

	aero "github.com/esimov/ascii-aero/aero-solver"
)

const (
	particleRune = '.'
	gaugeRune    = '█'
	gaugeWidth   = 20
	menuWidth    = 45
	menuHeight   = 9
)

// Terminal draws simulation frames with termbox and turns key presses into commands.
type Terminal struct {
	backbuf  []termbox.Cell
	bbw, bbh int

	logfile *os.File
	fn      string

	queue  *aero.Queue
	events chan termbox.Event
	done   chan struct{}
	menu   bool
	gauge  *gauge

	poll      func() termbox.Event
	interrupt func()
}

// New creates a terminal pushing commands into q. fps drives the gauge smoothing.
// While the terminal is active the standard logger writes to the file logfn.
func New(q *aero.Queue, fps int, logfn string) *Terminal {
	return &Terminal{
		fn:     logfn,
		queue:  q,
		events: make(chan termbox.Event, 16),
		done:   make(chan struct{}),
		gauge:  newGauge(fps),

		poll:      termbox.PollEvent,
		interrupt: termbox.Interrupt,
	}
}

// Init takes over the terminal and starts polling input.
func (t *Terminal) Init() error {
	if t.fn != "" {
		f, err := os.OpenFile(t.fn, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("debug log: %w", err)
		}
		t.logfile = f
		log.SetOutput(f)
	}
	if err := termbox.Init(); err != nil {
		t.closeLog()
		return fmt.Errorf("termbox: %w", err)
	}
	termbox.SetInputMode(termbox.InputEsc)
	t.reallocBackBuffer(termbox.Size())

	go t.pump()
	return nil
}

// pump forwards input events until the poller is interrupted. Once done is
// closed it keeps polling and discards what it reads, so the interrupt
// is always received.
func (t *Terminal) pump() {
	for {
		ev := t.poll()
		if ev.Type == termbox.EventInterrupt {
			close(t.events)
			return
		}
		select {
		case t.events <- ev:
		case <-t.done:
		}
	}
}

// stopPolling ends the pump goroutine and returns once it has exited.
func (t *Terminal) stopPolling() {
	close(t.done)
	t.interrupt()
	for range t.events {
	}
}

// Close restores the terminal.
func (t *Terminal) Close() {
	t.stopPolling()
	termbox.Close()
	t.closeLog()
}

func (t *Terminal) closeLog() {
	if t.logfile == nil {
		return
	}
	log.SetOutput(os.Stderr)
	t.logfile.Close()
	t.logfile = nil
}

// Size returns the domain size available to the simulation: the whole
// screen except the status line.
func (t *Terminal) Size() (w, h int) {
	h = t.bbh - 1
	if h < 1 {
		h = 1
	}
	return t.bbw, h
}

// Poll handles pending input without blocking. It reports whether the user asked
// to quit and whether the screen was resized since the last call.
func (t *Terminal) Poll() (quit, resized bool) {
	for {
		select {
		case ev, ok := <-t.events:
			if !ok {
				return true, resized
			}
			switch ev.Type {
			case termbox.EventKey:
				if t.handleKey(ev) {
					return true, resized
				}
			case termbox.EventResize:
				t.reallocBackBuffer(ev.Width, ev.Height)
				resized = true
			case termbox.EventError:
				return true, resized
			}
		default:
			return false, resized
		}
	}
}

// handleKey translates a key press and reports whether it requests quitting.
func (t *Terminal) handleKey(ev termbox.Event) bool {
	if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC {
		return true
	}
	if t.menu {
		switch ev.Ch {
		case 'm', 'q':
			t.menu = false
			return false
		}
	} else {
		switch ev.Ch {
		case 'q':
			return true
		case 'm':
			t.menu = true
			return false
		}
	}
	if cmd, ok := keyCommand(ev, t.menu); ok {
		t.queue.Push(cmd)
	}
	return false
}

// keyCommand maps a key to a simulation command. The menu keys
// follow the numbered entries of the settings menu.
func keyCommand(ev termbox.Event, menu bool) (aero.Command, bool) {
	switch ev.Key {
	case termbox.KeyArrowLeft:
		return aero.FlapDown, true
	case termbox.KeyArrowRight:
		return aero.FlapUp, true
	case termbox.KeyArrowUp:
		return aero.SpeedUp, true
	case termbox.KeyArrowDown:
		return aero.SpeedDown, true
	}
	if menu {
		switch ev.Ch {
		case '1':
			return aero.CycleShape, true
		case '2':
			return aero.SpeedUp, true
		case '3':
			return aero.DensityUp, true
		case '4':
			return aero.FlapUp, true
		}
		return 0, false
	}
	switch ev.Ch {
	case 's', ' ':
		return aero.CycleShape, true
	case '+', '=':
		return aero.SpeedUp, true
	case '-':
		return aero.SpeedDown, true
	case 'd':
		return aero.DensityUp, true
	case 'D':
		return aero.DensityDown, true
	case '[':
		return aero.FlapDown, true
	case ']':
		return aero.FlapUp, true
	case 'r':
		return aero.Reset, true
	}
	return 0, false
}

// Draw renders f and flushes it to the screen.
func (t *Terminal) Draw(f *aero.Frame) {
	t.render(f)
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	copy(termbox.CellBuffer(), t.backbuf)
	termbox.Flush()
}

func (t *Terminal) reallocBackBuffer(w, h int) {
	t.bbw, t.bbh = w, h
	t.backbuf = make([]termbox.Cell, w*h)
}

// render draws f into the back buffer.
func (t *Terminal) render(f *aero.Frame) {
	for i := range t.backbuf {
		t.backbuf[i] = termbox.Cell{Ch: ' ', Fg: termbox.ColorDefault, Bg: termbox.ColorDefault}
	}

	for _, p := range f.Particles {
		t.setCell(int(math.Round(p[0])), int(math.Round(p[1])), particleRune, termbox.ColorCyan, termbox.ColorDefault)
	}
	t.drawObstacle(f)
	t.drawGauge(t.gauge.step(f.Force))
	t.drawStatus(f)
	if t.menu {
		t.drawMenu(f)
	}
}

func (t *Terminal) drawObstacle(f *aero.Frame) {
	lo, hi := f.Extent()
	for y := int(math.Floor(lo[1])); y <= int(math.Ceil(hi[1])); y++ {
		for x := int(math.Floor(lo[0])); x <= int(math.Ceil(hi[0])); x++ {
			if f.Inside(mgl64.Vec2{float64(x), float64(y)}) {
				t.setCell(x, y, ' ', termbox.ColorDefault, termbox.ColorDefault|termbox.AttrReverse)
			}
		}
	}
}

func (t *Terminal) drawGauge(r aero.Reading) {
	x := t.bbw - gaugeWidth - 13
	if x < 0 {
		x = 0
	}
	t.bar(x, 0, "Drag", r.Drag, termbox.ColorRed)
	t.bar(x, 1, "Lift", r.Lift, termbox.ColorGreen)
}

func (t *Terminal) bar(x, y int, label string, v float64, color termbox.Attribute) {
	x += t.print(x, y, termbox.ColorDefault, termbox.ColorDefault, fmt.Sprintf("%s %+7.2f ", label, v))
	n := int(math.Min(math.Abs(v), gaugeWidth))
	if v < 0 {
		color |= termbox.AttrBold
	}
	for i := 0; i < n; i++ {
		t.setCell(x+i, y, gaugeRune, color, termbox.ColorDefault)
	}
}

func (t *Terminal) drawStatus(f *aero.Frame) {
	y := t.bbh - 1
	attr := termbox.ColorDefault | termbox.AttrReverse
	status := fmt.Sprintf(" Speed: %.2f | Density: %.2f | Shape: %s",
		f.Params.AirSpeed, f.Params.AirDensity, f.Obstacle.Shape)
	if f.Obstacle.Shape == aero.ShapeFlap.String() {
		status += fmt.Sprintf(" %.0f°", f.Obstacle.Angle*180/math.Pi)
	}
	t.print(0, y, attr, attr, status)

	hint := "Press 'm' for Menu "
	t.print(t.bbw-runewidth.StringWidth(hint), y, attr, attr, hint)
}

func (t *Terminal) drawMenu(f *aero.Frame) {
	mx := t.bbw/2 - menuWidth/2
	my := t.bbh/2 - menuHeight/2
	attr := termbox.ColorDefault | termbox.AttrReverse
	for y := 0; y < menuHeight; y++ {
		for x := 0; x < menuWidth; x++ {
			t.setCell(mx+x, my+y, ' ', termbox.ColorDefault, termbox.ColorDefault)
		}
	}
	lines := []string{
		"1. Change Shape (Current: " + f.Obstacle.Shape + ")",
		fmt.Sprintf("2. Change Air Speed (Current: %.2f)", f.Params.AirSpeed),
		fmt.Sprintf("3. Change Air Density (Current: %.2f)", f.Params.AirDensity),
		fmt.Sprintf("4. Tilt Flap (Current: %.0f°)", f.Obstacle.Angle*180/math.Pi),
		"Press 'm' or 'q' to exit menu",
	}
	t.print(mx+2, my+1, attr, attr, "--- SETTINGS MENU ---")
	for i, l := range lines {
		t.print(mx+2, my+3+i, termbox.ColorDefault, termbox.ColorDefault, l)
	}
}

// print writes s at {x, y} and returns the number of cells it used.
func (t *Terminal) print(x, y int, fg, bg termbox.Attribute, s string) int {
	w := 0
	for _, r := range s {
		t.setCell(x+w, y, r, fg, bg)
		w += runewidth.RuneWidth(r)
	}
	return w
}

func (t *Terminal) setCell(x, y int, r rune, fg, bg termbox.Attribute) {
	if x < 0 || x >= t.bbw || y < 0 || y >= t.bbh {
		return
	}
	t.backbuf[t.bbw*y+x] = termbox.Cell{Ch: r, Fg: fg, Bg: bg}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	aero "github.com/esimov/ascii-aero/aero-solver"
	"github.com/esimov/ascii-aero/config"
	"github.com/esimov/ascii-aero/recorder"
	"github.com/esimov/ascii-aero/terminal"
	"github.com/esimov/ascii-aero/websocket"
)

// sinks receive every frame after it is stepped.
type sinks struct {
	srv *websocket.Server
	rec *recorder.Recorder
}

func (s *sinks) publish(f *aero.Frame) {
	if s.srv != nil {
		s.srv.Broadcast(f)
	}
	if s.rec != nil {
		s.rec.Record(f)
	}
}

func main() {
	conf, err := config.Parse(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fatal(err)
	}
	if err := run(conf); err != nil {
		fatal(err)
	}
}

// fatal prints an error on the standard error and exits with a non-zero status.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}

func run(conf *config.Config) (err error) {
	queue := aero.NewQueue(64)
	out := &sinks{}

	if conf.Server.Enabled {
		srv, serr := websocket.NewServer(websocket.HttpParams{
			Address: conf.Server.Address,
			Prefix:  conf.Server.Prefix,
			Root:    conf.Server.Root,
		}, queue)
		if serr != nil {
			return serr
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("error: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Printf("error: shutting down server: %v", err)
			}
		}()
		out.srv = srv
	}

	if conf.Record.Database != "" {
		rec, rerr := recorder.Open(conf.Record.Database)
		if rerr != nil {
			return rerr
		}
		defer closeWith(&err, rec)
		out.rec = rec
	}

	var sim *aero.Simulation
	if conf.Sim.Frames > 0 {
		sim, err = headless(conf, queue, out)
	} else {
		sim, err = interactive(conf, queue, out)
	}
	if err != nil {
		return err
	}

	if conf.Record.Save != "" {
		if err := recorder.Export(conf.Record.Save, sim.State()); err != nil {
			return err
		}
		fmt.Printf("state after frame %d saved to %s\n", sim.FrameIndex(), conf.Record.Save)
	}
	if out.rec != nil {
		return summary(out.rec)
	}
	return nil
}

// setup creates the simulation over a w×h domain, resuming from a saved state if asked to.
func setup(conf *config.Config, w, h int) (*aero.Simulation, error) {
	sim := aero.New(w, h, conf.Options()...)
	if conf.Record.Load == "" {
		return sim, nil
	}
	st, err := recorder.Import(conf.Record.Load)
	if err != nil {
		return nil, err
	}
	sim.Restore(st)
	log.Printf("resumed %s at frame %d", conf.Record.Load, st.Frame)
	return sim, nil
}

func headless(conf *config.Config, queue *aero.Queue, out *sinks) (*aero.Simulation, error) {
	sim, err := setup(conf, conf.Sim.Width, conf.Sim.Height)
	if err != nil {
		return nil, err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var tick <-chan time.Time
	if conf.Server.Enabled {
		// pace the stream for connected clients
		ticker := time.NewTicker(time.Second / time.Duration(conf.Sim.FPS))
		defer ticker.Stop()
		tick = ticker.C
	}

	start := time.Now()
	for i := 0; i < conf.Sim.Frames; i++ {
		if tick != nil {
			select {
			case <-tick:
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			log.Printf("interrupted after %d frames", i)
			break
		}
		queue.Drain(sim)
		sim.Step()
		out.publish(sim.Frame())
	}
	log.Printf("%d frames in %s", sim.FrameIndex(), time.Since(start))
	return sim, nil
}

func interactive(conf *config.Config, queue *aero.Queue, out *sinks) (*aero.Simulation, error) {
	term := terminal.New(queue, conf.Sim.FPS, conf.Record.Log)
	if err := term.Init(); err != nil {
		return nil, err
	}
	defer term.Close()

	w, h := term.Size()
	sim, err := setup(conf, w, h)
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(time.Second / time.Duration(conf.Sim.FPS))
	defer ticker.Stop()
	for range ticker.C {
		quit, resized := term.Poll()
		if quit {
			break
		}
		if resized {
			sim.Resize(term.Size())
		}
		queue.Drain(sim)
		sim.Step()
		f := sim.Frame()
		term.Draw(f)
		out.publish(f)
	}
	return sim, nil
}

// closeWith closes c and keeps its error in *err unless *err is already set.
func closeWith(err *error, c io.Closer) {
	if cerr := c.Close(); *err == nil {
		*err = cerr
	}
}

func summary(rec *recorder.Recorder) error {
	if err := rec.Flush(); err != nil {
		return err
	}
	rows, err := rec.Summary()
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Println(r)
	}
	return nil
}

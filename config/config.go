// Package config holds the parameters of an ascii-aero run.
//
// Parameters come from three layers: built-in defaults, an optional TOML
// file given with -c, and command line flags, each overriding the previous one.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	aero "github.com/esimov/ascii-aero/aero-solver"
)

// Sim holds the simulation parameters.
type Sim struct {
	Speed       float64 `toml:"speed"`
	Density     float64 `toml:"density"`
	Shape       string  `toml:"shape"`
	Restitution float64 `toml:"restitution"`
	Friction    float64 `toml:"friction"`
	Relaxation  float64 `toml:"relaxation"`
	Workers     int     `toml:"workers"` // goroutines per particle pass, 0 or 1 is serial
	Seed        int64   `toml:"seed"`    // 0 seeds from the clock
	FPS         int     `toml:"fps"`
	Frames      int     `toml:"frames"` // headless run length, 0 is interactive
	Width       int     `toml:"width"`  // headless domain size
	Height      int     `toml:"height"`
}

// Server holds the websocket server parameters.
type Server struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
	Prefix  string `toml:"prefix"`
	Root    string `toml:"root"`
}

// Record holds the output parameters.
type Record struct {
	Database string `toml:"database"` // sqlite file receiving per-frame forces
	Save     string `toml:"save"`     // gob file written with the final state
	Load     string `toml:"load"`     // gob file to resume from
	Log      string `toml:"log"`      // debug log used while the terminal is active
}

// Config holds every parameter of a run.
type Config struct {
	Sim    Sim    `toml:"sim"`
	Server Server `toml:"server"`
	Record Record `toml:"record"`
}

// Default returns the default parameters.
func Default() *Config {
	return &Config{
		Sim: Sim{
			Speed:       aero.DefaultAirSpeed,
			Density:     aero.DefaultAirDensity,
			Shape:       aero.ShapeSquare.String(),
			Restitution: aero.DefaultRestitution,
			Friction:    aero.DefaultFriction,
			Relaxation:  0.1,
			FPS:         60,
			Width:       80,
			Height:      24,
		},
		Server: Server{
			Address: "localhost:5000",
			Prefix:  "/",
			Root:    ".",
		},
		Record: Record{
			Log: "debug.log",
		},
	}
}

// Load overlays the TOML file at path on the defaults.
func Load(path string) (*Config, error) {
	conf := Default()
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return conf, nil
}

// Parse builds the configuration from command line arguments (without the program name).
func Parse(args []string, output io.Writer) (*Config, error) {
	var path string
	conf := Default()
	fs := conf.flagSet(&path, output)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if path != "" {
		var err error
		if conf, err = Load(path); err != nil {
			return nil, err
		}
		// flags win over the file
		if err := conf.flagSet(&path, output).Parse(args); err != nil {
			return nil, err
		}
	}
	return conf, conf.Validate()
}

func (c *Config) flagSet(path *string, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("ascii-aero", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(path, "c", *path, "TOML config file")
	fs.Float64Var(&c.Sim.Speed, "speed", c.Sim.Speed, "air speed in cells per frame")
	fs.Float64Var(&c.Sim.Density, "density", c.Sim.Density, "fraction of the particle capacity in use")
	fs.StringVar(&c.Sim.Shape, "shape", c.Sim.Shape, "obstacle: square, rectangle, wedge, circle, aerofoil or flap")
	fs.IntVar(&c.Sim.Workers, "workers", c.Sim.Workers, "goroutines per particle pass")
	fs.Int64Var(&c.Sim.Seed, "seed", c.Sim.Seed, "random seed (0 uses the clock)")
	fs.IntVar(&c.Sim.FPS, "fps", c.Sim.FPS, "frames per second")
	fs.IntVar(&c.Sim.Frames, "frames", c.Sim.Frames, "run headless for this many frames")

	fs.BoolVar(&c.Server.Enabled, "serve", c.Server.Enabled, "stream frames over websocket")
	fs.StringVar(&c.Server.Address, "a", c.Server.Address, "address to serve(host:port)")
	fs.StringVar(&c.Server.Prefix, "p", c.Server.Prefix, "prefix path under")
	fs.StringVar(&c.Server.Root, "r", c.Server.Root, "root path to serve")

	fs.StringVar(&c.Record.Database, "db", c.Record.Database, "sqlite file to record forces into")
	fs.StringVar(&c.Record.Save, "save", c.Record.Save, "file to save the final state to")
	fs.StringVar(&c.Record.Load, "load", c.Record.Load, "state file to resume from")
	fs.StringVar(&c.Record.Log, "log", c.Record.Log, "debug log file")

	return fs
}

// Validate checks parameter ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Sim.Speed < 0 {
		errs = append(errs, fmt.Errorf("speed %v is negative", c.Sim.Speed))
	}
	if c.Sim.Density <= 0 || c.Sim.Density > 1 {
		errs = append(errs, fmt.Errorf("density %v is outside (0, 1]", c.Sim.Density))
	}
	if _, err := aero.ParseShape(c.Sim.Shape); err != nil {
		errs = append(errs, err)
	}
	if c.Sim.Restitution < 0 || c.Sim.Restitution > 1 {
		errs = append(errs, fmt.Errorf("restitution %v is outside [0, 1]", c.Sim.Restitution))
	}
	if c.Sim.Friction < 0 || c.Sim.Friction > 1 {
		errs = append(errs, fmt.Errorf("friction %v is outside [0, 1]", c.Sim.Friction))
	}
	if c.Sim.Relaxation < 0 {
		errs = append(errs, fmt.Errorf("relaxation %v is negative", c.Sim.Relaxation))
	}
	if c.Sim.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps %d must be positive", c.Sim.FPS))
	}
	if c.Sim.Frames < 0 {
		errs = append(errs, fmt.Errorf("frames %d is negative", c.Sim.Frames))
	}
	if c.Sim.Width < 1 || c.Sim.Height < 1 {
		errs = append(errs, fmt.Errorf("domain %dx%d is empty", c.Sim.Width, c.Sim.Height))
	}
	return errors.Join(errs...)
}

// Options translates the simulation parameters into solver options.
func (c *Config) Options() []aero.Option {
	shape, _ := aero.ParseShape(c.Sim.Shape)
	opts := []aero.Option{
		aero.WithParams(aero.Params{AirSpeed: c.Sim.Speed, AirDensity: c.Sim.Density}),
		aero.WithShape(shape),
		aero.WithCoefficients(aero.Coefficients{Restitution: c.Sim.Restitution, Friction: c.Sim.Friction}),
		aero.WithRelaxation(c.Sim.Relaxation),
		aero.WithWorkers(c.Sim.Workers),
	}
	if c.Sim.Seed != 0 {
		opts = append(opts, aero.WithSeed(c.Sim.Seed))
	}
	return opts
}

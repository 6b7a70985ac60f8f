package sim

import (
	"fmt"

	"github.com/Garsondee/Heli-Taxi/internal/config"
	"github.com/Garsondee/Heli-Taxi/internal/heli"
	"github.com/rs/zerolog"
)

// Driver produces the stick input for the next tick.
type Driver func(*TestSim) heli.Vec2

// ScriptStep holds an input for a number of ticks.
type ScriptStep struct {
	Ticks int
	Input heli.Vec2
}

// TestSim is a headless session harness for tests and the report tool. It
// drives a Session with deterministic input and records state changes to
// SimLog.
type TestSim struct {
	*Session

	cfg       *config.Config
	verbose   bool
	log       zerolog.Logger
	driver    Driver
	autopilot *Autopilot
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptBase   simOptionKind = iota // whole config replacement, applied first
	simOptInfra                       // level edits, seed, tuning, verbose
	simOptDriver                      // input source, applied once the session exists
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithConfig replaces the stock config. Later level and tuning options
// edit this copy.
func WithConfig(cfg *config.Config) SimOption {
	return SimOption{simOptBase, func(ts *TestSim) {
		c := *cfg
		c.Level.Blocks = append([]config.Block(nil), cfg.Level.Blocks...)
		c.Level.Water = append([]config.Water(nil), cfg.Level.Water...)
		c.Level.Portals = append([]config.Portal(nil), cfg.Level.Portals...)
		ts.cfg = &c
	}}
}

// WithEmptyLevel clears every block, water region and portal.
func WithEmptyLevel(name string) SimOption {
	return SimOption{simOptBase, func(ts *TestSim) {
		ts.cfg.Level = config.Level{Name: name}
	}}
}

// WithSeed sets the gameplay seed.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.cfg.Game.Seed = seed
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.verbose = v
	}}
}

// WithLogger routes component logs to l. The default discards them.
func WithLogger(l zerolog.Logger) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.log = l
	}}
}

// WithSpawn moves the helicopter's start point.
func WithSpawn(x, y float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.cfg.Level.Spawn = config.Point{x, y}
	}}
}

// WithBlock adds a static block spanning (x0,y0)-(x1,y1).
func WithBlock(x0, y0, x1, y1 float64, tag string) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.cfg.Level.Blocks = append(ts.cfg.Level.Blocks, config.Block{
			Min: config.Point{x0, y0}, Max: config.Point{x1, y1}, Tag: tag,
		})
	}}
}

// WithWater adds a water region spanning (x0,y0)-(x1,y1).
func WithWater(x0, y0, x1, y1 float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.cfg.Level.Water = append(ts.cfg.Level.Water, config.Water{
			Min: config.Point{x0, y0}, Max: config.Point{x1, y1},
		})
	}}
}

// WithPortal adds a named landing pad whose surface centre is (x,y).
func WithPortal(name string, x, y float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.cfg.Level.Portals = append(ts.cfg.Level.Portals, config.Portal{Name: name, Pos: config.Point{x, y}})
	}}
}

// WithTuning edits the config in place, after the level options.
func WithTuning(fn func(*config.Config)) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		fn(ts.cfg)
	}}
}

// WithInput holds a constant stick input.
func WithInput(x, y float64) SimOption {
	return SimOption{simOptDriver, func(ts *TestSim) {
		in := heli.V(x, y)
		ts.driver = func(*TestSim) heli.Vec2 { return in }
	}}
}

// WithScript plays the steps in order, then releases the stick.
func WithScript(steps ...ScriptStep) SimOption {
	return SimOption{simOptDriver, func(ts *TestSim) {
		start := ts.Tick()
		ts.driver = func(t *TestSim) heli.Vec2 {
			at := t.Tick() - start
			for _, st := range steps {
				if at < st.Ticks {
					return st.Input
				}
				at -= st.Ticks
			}
			return heli.Vec2{}
		}
	}}
}

// WithAutopilot flies the taxi route automatically.
func WithAutopilot() SimOption {
	return SimOption{simOptDriver, func(ts *TestSim) {
		ts.autopilot = NewAutopilot()
		ts.driver = func(t *TestSim) heli.Vec2 { return t.autopilot.Input(t.Session) }
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Base config
//  2. Level edits, seed and tuning
//  3. Build the session
//  4. Input driver
func NewTestSim(opts ...SimOption) (*TestSim, error) {
	ts := &TestSim{
		cfg: config.Default(),
		log: zerolog.Nop(),
	}
	for _, kind := range []simOptionKind{simOptBase, simOptInfra} {
		for _, o := range opts {
			if o.kind == kind {
				o.fn(ts)
			}
		}
	}
	s, err := NewSession(ts.cfg, ts.log, NewSimLog(ts.verbose))
	if err != nil {
		return nil, fmt.Errorf("test sim: %w", err)
	}
	ts.Session = s
	for _, o := range opts {
		if o.kind == simOptDriver {
			o.fn(ts)
		}
	}
	return ts, nil
}

// Autopilot returns the autopilot when one drives the sim.
func (ts *TestSim) Autopilot() *Autopilot { return ts.autopilot }

func (ts *TestSim) input() heli.Vec2 {
	if ts.driver == nil {
		return heli.Vec2{}
	}
	return ts.driver(ts)
}

// RunTicks advances the simulation n ticks.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.Step(ts.input())
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.Step(ts.input())
		if predicate(ts) {
			return ts.Tick()
		}
	}
	return -1
}

// SimSnapshot is a lightweight summary of the session at a tick.
type SimSnapshot struct {
	Tick      int
	State     heli.State
	Pos       heli.Vec2
	Vel       heli.Vec2
	Health    float64
	Crashes   int
	Delivered int
	Earnings  float64
	Passenger *Passenger
}

// Snapshot returns the current state of the session.
func (ts *TestSim) Snapshot() SimSnapshot {
	snap := SimSnapshot{
		Tick:      ts.Tick(),
		State:     ts.Heli.State(),
		Pos:       ts.Body.Position(),
		Vel:       ts.Body.Velocity(),
		Health:    ts.Health.Current(),
		Crashes:   ts.Health.Crashes(),
		Delivered: ts.Taxi.Delivered(),
		Earnings:  ts.Taxi.Earnings(),
	}
	if p := ts.Taxi.Passenger(); p != nil {
		cp := *p
		snap.Passenger = &cp
	}
	return snap
}

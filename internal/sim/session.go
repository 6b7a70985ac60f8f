// Package sim wires the helicopter controller, the physics world and the
// taxi game rules into one fixed-step session that both the ebiten front
// end and the headless tools drive.
package sim

import (
	"fmt"
	"math/rand"

	"github.com/Garsondee/Heli-Taxi/internal/config"
	"github.com/Garsondee/Heli-Taxi/internal/heli"
	"github.com/Garsondee/Heli-Taxi/internal/world"
	"github.com/rs/zerolog"
)

const historyLen = 500

// Snapshot is the per-tick record kept for debug reports.
type Snapshot struct {
	Tick     int
	Pos      heli.Vec2
	Vel      heli.Vec2
	Input    heli.Vec2
	State    heli.State
	Health   float64
	Grounded bool
	Wall     bool
	Water    bool
	Ground   float64 // distance to ground, +Inf when none in range
}

// Session is one running game.
type Session struct {
	cfg *config.Config
	dt  float64
	log zerolog.Logger

	World  *world.World
	Body   *world.Body
	Heli   *heli.Controller
	Health *Health
	Taxi   *Taxi
	Events *EventLog
	SimLog *SimLog

	tick        int
	stateTicks  [len(heli.States)]int
	transitions int
	damage      float64
	history     []Snapshot
	histHead    int
}

// NewSession builds a session from cfg. A nil simLog gets a quiet one.
func NewSession(cfg *config.Config, log zerolog.Logger, simLog *SimLog) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("new session: %w: nil config", config.ErrInvalid)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	if simLog == nil {
		simLog = NewSimLog(false)
	}
	s := &Session{
		cfg:    cfg,
		dt:     1 / float64(cfg.Game.TickRate),
		log:    log,
		Events: NewEventLog(),
		SimLog: simLog,
	}
	if err := s.build(); err != nil {
		return nil, err
	}
	s.Events.Add(0, EventSystem, fmt.Sprintf("level %s, %d portals", cfg.Level.Name, len(cfg.Level.Portals)))
	return s, nil
}

func (s *Session) build() error {
	cfg := s.cfg
	settings, err := cfg.Flight.Settings()
	if err != nil {
		return fmt.Errorf("new session: %w", err)
	}

	w := world.New(
		world.WithGravity(cfg.Game.Gravity),
		world.WithLogger(s.log.With().Str("component", "world").Logger()),
	)
	for _, b := range cfg.Level.Blocks {
		tag, _ := config.ParseTag(b.Tag)
		w.AddBlock(b.Min.Vec(), b.Max.Vec(), tag)
	}
	for _, r := range cfg.Level.Water {
		w.AddWater(r.Min.Vec(), r.Max.Vec())
	}
	body := w.AddBody(cfg.Level.Spawn.Vec(), cfg.Game.HeliSize.Vec().Scale(0.5))

	ctrl := heli.NewController(
		heli.WithLogger(s.log.With().Str("component", "heli").Logger()),
		heli.WithWorld(w),
	)
	if err := ctrl.Initialize(body, settings); err != nil {
		return fmt.Errorf("new session: %w", err)
	}
	body.AddWaterSensor(ctrl.WaterSensor())
	ctrl.OnStateChanged(s.onStateChanged)

	portals := make([]Portal, len(cfg.Level.Portals))
	for i, p := range cfg.Level.Portals {
		portals[i] = Portal{Name: p.Name, Pos: p.Pos.Vec()}
	}
	rng := rand.New(rand.NewSource(cfg.Game.Seed)) // #nosec G404 -- gameplay randomness

	s.World = w
	s.Body = body
	s.Heli = ctrl
	s.Health = NewHealth(cfg.Game.Health)
	s.Taxi = NewTaxi(cfg.Game.Taxi, portals, rng, s.log.With().Str("component", "taxi").Logger())
	s.tick = 0
	s.stateTicks = [len(heli.States)]int{}
	s.transitions = 0
	s.damage = 0
	s.history = s.history[:0]
	s.histHead = 0
	return nil
}

// Reset rebuilds the level from the config. Logs are kept.
func (s *Session) Reset() error {
	at := s.tick
	if err := s.build(); err != nil {
		return err
	}
	s.Events.Add(0, EventSystem, "reset")
	s.SimLog.Add(at, "--", "system", "reset", s.cfg.Level.Name, 0)
	s.log.Info().Int("tick", at).Msg("session reset")
	return nil
}

func (s *Session) onStateChanged(ch heli.StateChange) {
	s.transitions++
	msg := fmt.Sprintf("%s → %s", ch.Previous, ch.New)
	if ch.Forced {
		msg += " (forced)"
	}
	s.Events.Add(s.tick, EventState, msg)
	s.SimLog.Add(s.tick, "heli", "state", "change", msg, s.Heli.Velocity().Len())
}

// Config returns the session's configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// DT is the fixed step in seconds.
func (s *Session) DT() float64 { return s.dt }

// Tick is the number of steps since the last build.
func (s *Session) Tick() int { return s.tick }

// Transitions counts state changes since the last build.
func (s *Session) Transitions() int { return s.transitions }

// DamageTaken totals health lost since the last build.
func (s *Session) DamageTaken() float64 { return s.damage }

// StateTicks returns how many ticks ended in st.
func (s *Session) StateTicks(st heli.State) int {
	if !st.Valid() {
		return 0
	}
	return s.stateTicks[st]
}

// Step advances one fixed tick with the given stick input: controller,
// world, health, taxi.
func (s *Session) Step(input heli.Vec2) {
	s.Heli.SetInput(input.X, input.Y)
	s.Heli.Tick(s.dt)
	s.World.Step(s.dt)

	contacts := s.Heli.Contacts()
	for _, d := range s.Health.Update(s.dt, contacts, s.Body.Impacts()) {
		s.damage += d.Amount
		s.Events.Add(s.tick, EventHealth, fmt.Sprintf("-%.0f %s", d.Amount, d.Cause))
		s.SimLog.Add(s.tick, "heli", "health", string(d.Cause), fmt.Sprintf("-%.1f hp=%.1f", d.Amount, s.Health.Current()), d.Amount)
	}
	if s.Health.Dead() {
		s.crash()
	}

	for _, ev := range s.Taxi.Update(s.dt, s.Heli.State(), s.Body.Position()) {
		s.taxiEvent(ev)
	}

	st := s.Heli.State()
	s.stateTicks[st]++
	pos, vel := s.Body.Position(), s.Body.Velocity()
	s.SimLog.AddVerbose(s.tick, "heli", "move", "pos",
		fmt.Sprintf("(%.2f,%.2f) v=(%.2f,%.2f) %s", pos.X, pos.Y, vel.X, vel.Y, st), vel.Len())
	s.record(Snapshot{
		Tick:     s.tick,
		Pos:      pos,
		Vel:      vel,
		Input:    s.Heli.Input(),
		State:    st,
		Health:   s.Health.Current(),
		Grounded: contacts.Grounded,
		Wall:     contacts.TouchingWall,
		Water:    contacts.InWater,
		Ground:   contacts.DistanceToGround,
	})
	s.tick++
}

func (s *Session) crash() {
	s.Health.Crash()
	if ev, ok := s.Taxi.Crash(); ok {
		s.taxiEvent(ev)
	}
	spawn := s.cfg.Level.Spawn.Vec()
	s.World.Teleport(s.Body, spawn)
	s.Heli.ForceState(heli.StateFlying)
	s.Events.Add(s.tick, EventHealth, "crashed")
	s.SimLog.Add(s.tick, "heli", "health", "crash", fmt.Sprintf("crash #%d", s.Health.Crashes()), float64(s.Health.Crashes()))
	s.log.Info().Int("tick", s.tick).Int("crashes", s.Health.Crashes()).Msg("helicopter crashed, respawning")
}

func (s *Session) taxiEvent(ev TaxiEvent) {
	var msg string
	switch ev.Kind {
	case TaxiSpawned:
		msg = fmt.Sprintf("passenger %d waiting at %s", ev.Passenger, ev.Portal)
	case TaxiBoarded:
		msg = fmt.Sprintf("passenger %d boarded at %s", ev.Passenger, ev.Portal)
	case TaxiDelivered:
		msg = fmt.Sprintf("passenger %d delivered to %s (+%.1f)", ev.Passenger, ev.Portal, ev.Fare)
	case TaxiLost:
		msg = fmt.Sprintf("passenger %d lost", ev.Passenger)
	}
	s.Events.Add(s.tick, EventTaxi, msg)
	s.SimLog.Add(s.tick, "taxi", "taxi", string(ev.Kind), msg, ev.Fare)
}

func (s *Session) record(snap Snapshot) {
	if len(s.history) < historyLen {
		s.history = append(s.history, snap)
		return
	}
	s.history[s.histHead] = snap
	s.histHead = (s.histHead + 1) % historyLen
}

// History returns up to the last n snapshots, oldest first.
func (s *Session) History(n int) []Snapshot {
	count := len(s.history)
	if n <= 0 || n > count {
		n = count
	}
	out := make([]Snapshot, 0, n)
	start := 0
	if count == historyLen {
		start = s.histHead
	}
	for i := count - n; i < count; i++ {
		out = append(out, s.history[(start+i)%count])
	}
	return out
}

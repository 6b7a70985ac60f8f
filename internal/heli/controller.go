package heli

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNoBody is returned by Initialize without a body handle.
	ErrNoBody = errors.New("helicopter has no body")
	// ErrNoSettings is returned by Initialize without settings.
	ErrNoSettings = errors.New("helicopter has no settings")
	// ErrNoWorld is returned when the default detector has nothing to cast against.
	ErrNoWorld = errors.New("helicopter has no world to sample")
)

// Option customises a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default is the global zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithWorld sets the world the default ray detector samples.
func WithWorld(w Raycaster) Option {
	return func(c *Controller) { c.world = w }
}

// WithDetector replaces the ray detector.
func WithDetector(d Detector) Option {
	return func(c *Controller) { c.customDetector = d }
}

// WithIntegrator replaces the physics integrator.
func WithIntegrator(i Integrator) Option {
	return func(c *Controller) { c.customIntegrator = i }
}

// Controller runs detector, state manager and integrator in order, once per
// fixed tick. Until Initialize succeeds every Tick is a no-op.
type Controller struct {
	log        zerolog.Logger
	world      Raycaster
	body       Body
	settings   *Settings
	detector   Detector
	integrator Integrator
	states     *StateManager
	notifier   *Notifier

	customDetector   Detector
	customIntegrator Integrator

	input    Vec2
	contacts Contacts
	ready    bool
	initErr  error
	ticks    int
}

// NewController creates an uninitialised controller.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		log:      log.Logger.With().Str("component", "heli").Logger(),
		contacts: NoContacts(),
	}
	for _, o := range opts {
		o(c)
	}
	c.notifier = NewNotifier(c.log)
	return c
}

// Initialize binds the body and settings and builds the default detector and
// integrator for any strategy not supplied as an option. A failure is logged
// once and leaves the controller inert.
func (c *Controller) Initialize(body Body, settings *Settings) error {
	err := c.initialize(body, settings)
	if err != nil {
		c.ready = false
		if c.initErr == nil || c.initErr.Error() != err.Error() {
			c.log.Error().Err(err).Msg("helicopter initialisation failed, updates disabled")
		}
		c.initErr = err
		return err
	}
	c.initErr = nil
	c.ready = true
	c.log.Debug().
		Str("detector", settings.Detector.String()).
		Str("state_set", settings.StateSet.String()).
		Msg("helicopter initialised")
	return nil
}

func (c *Controller) initialize(body Body, settings *Settings) error {
	if body == nil {
		return ErrNoBody
	}
	if v, ok := body.(interface{ Valid() bool }); ok && !v.Valid() {
		return ErrNoBody
	}
	if settings == nil {
		return ErrNoSettings
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("initialise helicopter: %w", err)
	}
	detector := c.customDetector
	if detector == nil {
		if c.world == nil {
			return ErrNoWorld
		}
		detector = NewRayDetector(settings, body, c.world)
	}
	integrator := c.customIntegrator
	if integrator == nil {
		integrator = NewPhysicsIntegrator(settings, body)
	}

	c.body = body
	c.settings = settings
	c.detector = detector
	c.integrator = integrator
	c.states = newStateManager(settings, c.log, c.notifier)
	c.contacts = NoContacts()
	c.ticks = 0
	return nil
}

// Ready reports whether Tick does any work.
func (c *Controller) Ready() bool { return c.ready }

// Err is the last initialisation error.
func (c *Controller) Err() error { return c.initErr }

// SetInput stores the input sample for the next tick, clamped to [-1,1].
func (c *Controller) SetInput(x, y float64) {
	c.input = Vec2{clampUnit(x), clampUnit(y)}
}

// Input returns the stored input sample.
func (c *Controller) Input() Vec2 { return c.input }

// Tick runs one fixed step: detector, state manager, integrator. Steps that
// are not finite and positive are dropped.
func (c *Controller) Tick(dt float64) {
	if !c.ready || !(dt > 0) || math.IsInf(dt, 1) {
		return
	}
	c.ticks++
	c.contacts = c.detector.Update()
	c.states.Update(dt, c.contacts, c.body.Velocity().Len())
	c.integrator.Update(dt, c.input, c.states.Data())
}

// Ticks is the number of ticks processed since Initialize.
func (c *Controller) Ticks() int { return c.ticks }

// State returns the active state, Flying before Initialize.
func (c *Controller) State() State {
	if c.states == nil {
		return StateFlying
	}
	return c.states.State()
}

// TimeInState returns seconds since the last transition.
func (c *Controller) TimeInState() float64 {
	if c.states == nil {
		return 0
	}
	return c.states.TimeInState()
}

// Data returns a copy of the state record.
func (c *Controller) Data() StateData {
	if c.states == nil {
		return newStateData()
	}
	return c.states.Data()
}

// Velocity is the body's current velocity.
func (c *Controller) Velocity() Vec2 {
	if c.body == nil {
		return Vec2{}
	}
	return c.body.Velocity()
}

// Contacts are the facts sampled on the last tick.
func (c *Controller) Contacts() Contacts { return c.contacts }

// Detector exposes the active detector strategy.
func (c *Controller) Detector() Detector { return c.detector }

// WaterSensor returns the detector's trigger sink, or nil when the active
// detector does not track water.
func (c *Controller) WaterSensor() WaterSensor {
	ws, _ := c.detector.(WaterSensor)
	return ws
}

// Settings returns the bound settings, nil before Initialize.
func (c *Controller) Settings() *Settings { return c.settings }

// OnStateChanged subscribes fn to transitions. Subscriptions survive
// re-initialisation.
func (c *Controller) OnStateChanged(fn Listener) (unsubscribe func()) {
	return c.notifier.Subscribe(fn)
}

// ForceState overrides the state machine. Tooling only.
func (c *Controller) ForceState(st State) {
	if c.states == nil {
		return
	}
	c.states.ForceState(st)
}

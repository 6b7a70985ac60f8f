package heli

import "github.com/rs/zerolog"

// StateManager is the flight state machine. It consumes contact facts and
// the body speed once per tick and owns the StateData record.
type StateManager struct {
	settings *Settings
	data     StateData
	notifier *Notifier
	log      zerolog.Logger

	wallTimer    float64
	slidingTimer float64
	// wallEscaped is set when the wall timeout forces Flying and cleared
	// once wall contact is lost, so the same wall cannot recapture the body.
	wallEscaped bool
}

// NewStateManager starts in Flying.
func NewStateManager(settings *Settings, log zerolog.Logger) *StateManager {
	return newStateManager(settings, log, NewNotifier(log))
}

func newStateManager(settings *Settings, log zerolog.Logger, n *Notifier) *StateManager {
	return &StateManager{
		settings: settings,
		data:     newStateData(),
		notifier: n,
		log:      log,
	}
}

// State is the active state.
func (m *StateManager) State() State { return m.data.Current }

// Previous is the state before the last transition.
func (m *StateManager) Previous() State { return m.data.Previous }

// TimeInState is the number of seconds since the last transition.
func (m *StateManager) TimeInState() float64 { return m.data.TimeInState }

// Data returns a copy of the state record.
func (m *StateManager) Data() StateData { return m.data }

// WallTimer is the time spent in the current WallContact stint.
func (m *StateManager) WallTimer() float64 { return m.wallTimer }

// SlidingTimer is the time spent in the current Sliding stint.
func (m *StateManager) SlidingTimer() float64 { return m.slidingTimer }

// OnStateChanged subscribes fn to transitions.
func (m *StateManager) OnStateChanged(fn Listener) (unsubscribe func()) {
	return m.notifier.Subscribe(fn)
}

// Update advances the timers, copies the contact facts into the state
// record and applies at most one transition.
func (m *StateManager) Update(dt float64, c Contacts, speed float64) {
	m.data.TimeInState += dt
	switch m.data.Current {
	case StateWallContact:
		m.wallTimer += dt
	case StateSliding:
		m.slidingTimer += dt
	}

	m.data.Grounded = c.Grounded
	m.data.TouchingWall = c.TouchingWall
	m.data.InWater = c.InWater
	m.data.DistanceToGround = c.DistanceToGround
	m.data.Separation = c.Separation
	if c.TouchingWall {
		m.data.SurfaceNormal = c.WallNormal
	} else {
		m.data.SurfaceNormal = c.GroundNormal
	}
	if !c.TouchingWall {
		m.wallEscaped = false
	}

	next := m.evaluate(c, speed)
	if next != m.data.Current {
		m.transition(next, false)
	}
}

func (m *StateManager) evaluate(c Contacts, speed float64) State {
	if m.settings.StateSet == StateSetReduced {
		if c.Grounded {
			return StateGrounded
		}
		return StateFlying
	}

	cur := m.data.Current
	threshold := m.settings.SlidingToGroundedThreshold

	if c.InWater {
		return StateInWater
	}
	if c.TouchingWall && !m.wallEscaped {
		if cur == StateWallContact && m.wallTimer > m.settings.WallContactTimeout {
			m.wallEscaped = true
			m.log.Debug().Float64("timer", m.wallTimer).Msg("wall contact timed out")
			return StateFlying
		}
		return StateWallContact
	}
	if c.Grounded {
		if speed <= threshold {
			return StateGrounded
		}
		return StateSliding
	}
	// A slide survives brief loss of ground contact as long as the ground
	// is still within ray range.
	if cur == StateSliding && c.DistanceToGround < m.settings.RaycastDistance {
		if speed <= threshold {
			return StateGrounded
		}
		return StateSliding
	}
	return StateFlying
}

// ForceState switches to st immediately, bypassing the transition rules.
func (m *StateManager) ForceState(st State) {
	if !st.Valid() {
		m.log.Warn().Int("state", int(st)).Msg("ignoring force to unknown state")
		return
	}
	if st == m.data.Current {
		return
	}
	m.transition(st, true)
}

func (m *StateManager) transition(next State, forced bool) {
	prev := m.data.Current
	m.data.Previous = prev
	m.data.Current = next
	m.data.TimeInState = 0
	m.wallTimer = 0
	m.slidingTimer = 0
	m.log.Debug().Str("from", prev.String()).Str("to", next.String()).Bool("forced", forced).Msg("state change")
	m.notifier.Notify(StateChange{New: next, Previous: prev, Forced: forced})
}

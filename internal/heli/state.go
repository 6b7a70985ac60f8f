package heli

import "math"

// State is the flight state that selects which physical coefficients apply.
type State int

const (
	StateFlying      State = iota // airborne, default
	StateGrounded                 // resting on a surface
	StateWallContact              // pressed against a wall
	StateSliding                  // on the ground but still moving fast
	StateInWater                  // submerged
	stateCount
)

// States lists every state in declaration order.
var States = [...]State{StateFlying, StateGrounded, StateWallContact, StateSliding, StateInWater}

func (s State) String() string {
	switch s {
	case StateFlying:
		return "flying"
	case StateGrounded:
		return "grounded"
	case StateWallContact:
		return "wall"
	case StateSliding:
		return "sliding"
	case StateInWater:
		return "water"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the declared states.
func (s State) Valid() bool { return s >= StateFlying && s < stateCount }

// ParseState is the inverse of State.String.
func ParseState(name string) (State, bool) {
	for _, s := range States {
		if s.String() == name {
			return s, true
		}
	}
	return StateFlying, false
}

// StateData is the per-entity state record. The StateManager owns it and
// rewrites it once per tick; everything else reads a copy.
type StateData struct {
	Current     State
	Previous    State
	TimeInState float64 // seconds since the last transition

	SurfaceNormal    Vec2 // wall normal in WallContact, ground normal otherwise
	Grounded         bool
	TouchingWall     bool
	InWater          bool
	DistanceToGround float64 // +Inf when no ground was seen this tick
	Separation       Vec2    // detector push-off vector for a very close wall
}

func newStateData() StateData {
	return StateData{
		Current:          StateFlying,
		Previous:         StateFlying,
		DistanceToGround: math.Inf(1),
	}
}

// StateChange is broadcast to listeners on every transition.
type StateChange struct {
	New      State
	Previous State
	Forced   bool // set by ForceState
}

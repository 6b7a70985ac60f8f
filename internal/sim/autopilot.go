package sim

import (
	"math"

	"github.com/Garsondee/Heli-Taxi/internal/heli"
)

// cruiseClearance is how far above the highest portal the autopilot cruises.
const cruiseClearance = 3.0

type flightPhase int

const (
	phaseClimb flightPhase = iota
	phaseCruise
	phaseDescend
)

func (p flightPhase) String() string {
	switch p {
	case phaseClimb:
		return "climb"
	case phaseCruise:
		return "cruise"
	default:
		return "descend"
	}
}

// Autopilot flies the taxi route for headless runs: climb to a cruise
// altitude, fly across to the target pad, then descend and cut the stick
// once the skids touch.
type Autopilot struct {
	Cruise float64 // cruise altitude; 0 picks one from the portals

	phase  flightPhase
	target string
}

// NewAutopilot creates an autopilot with an automatic cruise altitude.
func NewAutopilot() *Autopilot { return &Autopilot{} }

// Phase names the current leg, for logs.
func (a *Autopilot) Phase() string { return a.phase.String() }

// Input computes this tick's stick input for s.
func (a *Autopilot) Input(s *Session) heli.Vec2 {
	portal, ok := s.Taxi.Target()
	if !ok {
		return heli.Vec2{}
	}
	if portal.Name != a.target {
		a.target = portal.Name
		a.phase = phaseClimb
	}

	pos, vel := s.Body.Position(), s.Body.Velocity()
	st := s.Heli.State()
	tx := portal.Pos.X
	ty := portal.Pos.Y + s.Body.HalfExtents.Y
	dx := tx - pos.X

	cruise := a.Cruise
	if cruise == 0 {
		for _, p := range s.Taxi.Portals() {
			cruise = math.Max(cruise, p.Pos.Y+cruiseClearance)
		}
	}

	// Only start down once over the pad and not underneath it.
	aligned := math.Abs(dx) < 0.2 && math.Abs(vel.X) < 0.25 && pos.Y > ty-0.1
	switch a.phase {
	case phaseClimb:
		if aligned {
			a.phase = phaseDescend
		} else if pos.Y >= cruise-0.3 {
			a.phase = phaseCruise
		}
	case phaseCruise:
		if aligned {
			a.phase = phaseDescend
		}
	}

	var in heli.Vec2
	switch a.phase {
	case phaseClimb:
		in.X = -0.8 * vel.X
		in.Y = a.vertical(s, st, clampAbs(1.5*(cruise-pos.Y), 3), vel.Y)
	case phaseCruise:
		in.X = 0.8 * (clampAbs(1.2*dx, 4) - vel.X)
		in.Y = a.vertical(s, st, clampAbs(1.5*(cruise-pos.Y), 3), vel.Y)
	case phaseDescend:
		if st == heli.StateGrounded || st == heli.StateSliding {
			return heli.Vec2{}
		}
		in.X = 0.8 * (clampAbs(1.2*dx, 4) - vel.X)
		in.Y = a.vertical(s, st, math.Min(clampAbs(1.2*(ty-pos.Y), 3), -0.8), vel.Y)
		if math.Abs(dx) > 0.6 {
			// Drifted off the pad; climb back out.
			a.phase = phaseClimb
		}
	}
	return in
}

// vertical holds a climb rate: hover thrust plus a proportional correction.
func (a *Autopilot) vertical(s *Session, st heli.State, wantVy, vy float64) float64 {
	accel := s.Heli.Settings().EffectiveAcceleration(st).Y
	hover := 0.0
	if accel > 0 {
		hover = s.cfg.Game.Gravity / accel
	}
	return hover + 0.5*(wantVy-vy)
}

func clampAbs(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}

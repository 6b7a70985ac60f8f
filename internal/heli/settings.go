package heli

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSettings is wrapped by every Validate failure.
var ErrInvalidSettings = errors.New("invalid flight settings")

// StateParameters is the coefficient bundle applied while a state is active.
type StateParameters struct {
	SpeedMultiplier        float64
	AccelerationMultiplier float64
	Friction               float64 // per-second decay coefficient
	VerticalThrust         bool
	HorizontalThrust       bool
	Buoyancy               float64 // upward acceleration, only used in water
}

// DetectorMode picks the set of probe directions.
type DetectorMode int

const (
	// DetectorBasic probes down, down-left and down-right. No wall contact.
	DetectorBasic DetectorMode = iota
	// DetectorExtended probes all eight directions and reports walls.
	DetectorExtended
)

func (m DetectorMode) String() string {
	if m == DetectorBasic {
		return "basic"
	}
	return "extended"
}

// StateSet picks the transition rules of the state manager.
type StateSet int

const (
	// StateSetFull uses all five states.
	StateSetFull StateSet = iota
	// StateSetReduced only switches between Flying and Grounded.
	StateSetReduced
)

func (s StateSet) String() string {
	if s == StateSetReduced {
		return "reduced"
	}
	return "full"
}

// Settings is the flight tuning for one helicopter. Build it once, call
// Validate, and share it read-only.
type Settings struct {
	MaxHorizontalSpeed     float64
	MaxVerticalSpeed       float64
	HorizontalAcceleration float64
	VerticalAcceleration   float64

	Params [stateCount]StateParameters

	RaycastDistance float64
	RaycastCount    int     // parallel rays per direction
	RaycastSpan     float64 // horizontal spread of the parallel rays

	// Wall hits closer than this produce a separation vector.
	StickPreventionThreshold   float64
	SlidingToGroundedThreshold float64
	WallContactTimeout         float64 // seconds

	InputDeadzone         float64
	StopEpsilon           float64
	WallSeparationForce   float64
	GroundNormalThreshold float64 // normal.Y above this is ground
	WallNormalThreshold   float64 // |normal.X| above this is wall
	GroundedRatio         float64 // fraction of RaycastDistance
	WallRatio             float64

	Detector DetectorMode
	StateSet StateSet
}

// DefaultSettings returns the stock tuning.
func DefaultSettings() Settings {
	s := Settings{
		MaxHorizontalSpeed:     5,
		MaxVerticalSpeed:       6,
		HorizontalAcceleration: 12,
		VerticalAcceleration:   18,

		RaycastDistance: 1.0,
		RaycastCount:    3,
		RaycastSpan:     0.6,

		StickPreventionThreshold:   0.55,
		SlidingToGroundedThreshold: 0.1,
		WallContactTimeout:         1.5,

		InputDeadzone:         0.1,
		StopEpsilon:           0.01,
		WallSeparationForce:   2.0,
		GroundNormalThreshold: 0.7,
		WallNormalThreshold:   0.5,
		GroundedRatio:         0.8,
		WallRatio:             0.6,

		Detector: DetectorExtended,
		StateSet: StateSetFull,
	}
	s.Params[StateFlying] = StateParameters{
		SpeedMultiplier: 1, AccelerationMultiplier: 1, Friction: 0.8,
		VerticalThrust: true, HorizontalThrust: true,
	}
	s.Params[StateGrounded] = StateParameters{
		SpeedMultiplier: 0.5, AccelerationMultiplier: 0.8, Friction: 6,
		VerticalThrust: true, HorizontalThrust: true,
	}
	s.Params[StateWallContact] = StateParameters{
		SpeedMultiplier: 0.6, AccelerationMultiplier: 0.7, Friction: 2,
		VerticalThrust: true, HorizontalThrust: true,
	}
	s.Params[StateSliding] = StateParameters{
		SpeedMultiplier: 1, AccelerationMultiplier: 0.8, Friction: 3,
		VerticalThrust: true, HorizontalThrust: false,
	}
	s.Params[StateInWater] = StateParameters{
		SpeedMultiplier: 0.5, AccelerationMultiplier: 0.6, Friction: 3,
		VerticalThrust: true, HorizontalThrust: true, Buoyancy: 14,
	}
	return s
}

// ParamsFor returns the bundle of st, falling back to Flying for unknown states.
func (s *Settings) ParamsFor(st State) StateParameters {
	if !st.Valid() {
		return s.Params[StateFlying]
	}
	return s.Params[st]
}

// EffectiveMaxSpeed is the per-axis speed cap in state st.
func (s *Settings) EffectiveMaxSpeed(st State) Vec2 {
	p := s.ParamsFor(st)
	return Vec2{s.MaxHorizontalSpeed * p.SpeedMultiplier, s.MaxVerticalSpeed * p.SpeedMultiplier}
}

// EffectiveAcceleration is the per-axis thrust acceleration in state st.
func (s *Settings) EffectiveAcceleration(st State) Vec2 {
	p := s.ParamsFor(st)
	return Vec2{s.HorizontalAcceleration * p.AccelerationMultiplier, s.VerticalAcceleration * p.AccelerationMultiplier}
}

// Validate rejects values that would make the integrator produce NaNs or
// negative speeds.
func (s *Settings) Validate() error {
	nonNeg := []struct {
		name string
		v    float64
	}{
		{"max_horizontal_speed", s.MaxHorizontalSpeed},
		{"max_vertical_speed", s.MaxVerticalSpeed},
		{"horizontal_acceleration", s.HorizontalAcceleration},
		{"vertical_acceleration", s.VerticalAcceleration},
		{"raycast_span", s.RaycastSpan},
		{"stick_prevention_threshold", s.StickPreventionThreshold},
		{"sliding_to_grounded_threshold", s.SlidingToGroundedThreshold},
		{"wall_contact_timeout", s.WallContactTimeout},
		{"input_deadzone", s.InputDeadzone},
		{"stop_epsilon", s.StopEpsilon},
		{"wall_separation_force", s.WallSeparationForce},
	}
	for _, f := range nonNeg {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("%w: %s must be a finite value >= 0, got %v", ErrInvalidSettings, f.name, f.v)
		}
	}
	if !(s.RaycastDistance > 0) || math.IsInf(s.RaycastDistance, 0) {
		return fmt.Errorf("%w: raycast_distance must be > 0, got %v", ErrInvalidSettings, s.RaycastDistance)
	}
	if s.RaycastCount < 1 {
		return fmt.Errorf("%w: raycast_count must be >= 1, got %d", ErrInvalidSettings, s.RaycastCount)
	}
	if s.InputDeadzone >= 1 {
		return fmt.Errorf("%w: input_deadzone must be < 1, got %v", ErrInvalidSettings, s.InputDeadzone)
	}
	for _, r := range []struct {
		name string
		v    float64
	}{
		{"ground_normal_threshold", s.GroundNormalThreshold},
		{"wall_normal_threshold", s.WallNormalThreshold},
		{"grounded_ratio", s.GroundedRatio},
		{"wall_ratio", s.WallRatio},
	} {
		if !(r.v > 0 && r.v <= 1) {
			return fmt.Errorf("%w: %s must be in (0,1], got %v", ErrInvalidSettings, r.name, r.v)
		}
	}
	for _, st := range States {
		p := s.Params[st]
		for _, f := range []struct {
			name string
			v    float64
		}{
			{"speed_multiplier", p.SpeedMultiplier},
			{"acceleration_multiplier", p.AccelerationMultiplier},
			{"friction", p.Friction},
			{"buoyancy", p.Buoyancy},
		} {
			if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
				return fmt.Errorf("%w: %s.%s must be a finite value >= 0, got %v", ErrInvalidSettings, st, f.name, f.v)
			}
		}
	}
	if s.Detector != DetectorBasic && s.Detector != DetectorExtended {
		return fmt.Errorf("%w: unknown detector mode %d", ErrInvalidSettings, s.Detector)
	}
	if s.StateSet != StateSetFull && s.StateSet != StateSetReduced {
		return fmt.Errorf("%w: unknown state set %d", ErrInvalidSettings, s.StateSet)
	}
	return nil
}

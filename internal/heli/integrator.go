package heli

import "math"

// Body is the velocity handle the integrator writes through. A
// pointer-backed body should also implement Valid() bool, reporting false
// for a nil receiver, so Initialize can reject a typed nil.
type Body interface {
	Positioner
	Velocity() Vec2
	SetVelocity(Vec2)
}

// Integrator turns input and the active state into a velocity change.
type Integrator interface {
	Update(dt float64, input Vec2, data StateData)
}

// PhysicsIntegrator applies thrust, speed caps, friction and the
// state-specific forces to a body's velocity.
type PhysicsIntegrator struct {
	settings *Settings
	body     Body
}

// NewPhysicsIntegrator binds the integrator to body.
func NewPhysicsIntegrator(settings *Settings, body Body) *PhysicsIntegrator {
	return &PhysicsIntegrator{settings: settings, body: body}
}

// Update runs one tick. It is a pure function of the settings, input,
// state record and the body's current velocity.
func (p *PhysicsIntegrator) Update(dt float64, input Vec2, data StateData) {
	s := p.settings
	st := data.Current
	params := s.ParamsFor(st)
	maxSpeed := s.EffectiveMaxSpeed(st)
	accel := s.EffectiveAcceleration(st)

	v := p.body.Velocity()
	verticalInput := math.Abs(input.Y) > s.InputDeadzone

	// Thrust. Upward thrust stops adding once at the cap; falling is never blocked.
	if params.VerticalThrust && verticalInput {
		dv := input.Y * accel.Y * dt
		if dv < 0 || v.Y < maxSpeed.Y {
			v.Y += dv
		}
	}
	if params.HorizontalThrust && math.Abs(input.X) > s.InputDeadzone {
		dv := input.X * accel.X * dt
		// Do not keep pressing into the wall we are touching.
		if st == StateWallContact && dv*data.SurfaceNormal.X < 0 {
			dv = 0
		}
		v.X += dv
	}

	v.X = clampSigned(v.X, maxSpeed.X)
	v.Y = clampSigned(v.Y, maxSpeed.Y)

	// Friction. Vertical decay is skipped for unpowered falls so gravity
	// alone governs the drop.
	v.X -= v.X * params.Friction * dt
	if v.Y > 0 || verticalInput || st == StateGrounded || st == StateInWater {
		v.Y -= v.Y * params.Friction * dt
	}
	if v.Len() < s.StopEpsilon {
		v = Vec2{}
	}

	switch st {
	case StateInWater:
		v.Y += params.Buoyancy * dt
	case StateWallContact:
		push := data.SurfaceNormal.Add(data.Separation)
		v = v.Add(push.Scale(s.WallSeparationForce * dt))
	}

	v.X = clampSigned(v.X, maxSpeed.X)
	v.Y = clampSigned(v.Y, maxSpeed.Y)
	p.body.SetVelocity(v)
}

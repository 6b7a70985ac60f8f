package heli

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func integrate(t *testing.T, s *Settings, st State, v, input Vec2) Vec2 {
	t.Helper()
	require.NoError(t, s.Validate())
	b := &testBody{vel: v}
	data := newStateData()
	data.Current = st
	NewPhysicsIntegrator(s, b).Update(testDT, input, data)
	return b.vel
}

func TestIntegrator_FlyingThrustThenFriction(t *testing.T) {
	s := testSettings()
	s.Params[StateFlying].Friction = 0.02

	v := integrate(t, s, StateFlying, Vec2{}, V(1, 0))

	want := 0.24 * (1 - testDT*0.02)
	assert.InDelta(t, want, v.X, 1e-9)
	assert.Equal(t, 0.0, v.Y)
}

func TestIntegrator_SpeedCapHoldsInEveryState(t *testing.T) {
	s := testSettings()
	rng := rand.New(rand.NewSource(7)) // #nosec G404 -- test only
	for _, st := range States {
		maxSpeed := s.EffectiveMaxSpeed(st)
		b := &testBody{vel: V(40, -40)}
		data := newStateData()
		data.Current = st
		data.SurfaceNormal = Right
		in := NewPhysicsIntegrator(s, b)
		for i := 0; i < 500; i++ {
			input := V(rng.Float64()*2-1, rng.Float64()*2-1)
			in.Update(testDT, input, data)
			require.LessOrEqualf(t, math.Abs(b.vel.X), maxSpeed.X+1e-9, "state %s tick %d", st, i)
			require.LessOrEqualf(t, math.Abs(b.vel.Y), maxSpeed.Y+1e-9, "state %s tick %d", st, i)
		}
	}
}

func TestIntegrator_SmallVelocitySnapsToZero(t *testing.T) {
	s := testSettings()
	v := integrate(t, s, StateFlying, V(0.005, 0.004), Vec2{})
	assert.Equal(t, Vec2{}, v)
}

func TestIntegrator_UnpoweredFallIsNotDamped(t *testing.T) {
	s := testSettings()
	v := integrate(t, s, StateFlying, V(0, -3), Vec2{})
	assert.Equal(t, -3.0, v.Y)

	// With vertical input the same fall is damped.
	v = integrate(t, s, StateFlying, V(0, -3), V(0, -0.5))
	assert.Greater(t, v.Y, -3.0-0.5*s.VerticalAcceleration*testDT)
}

func TestIntegrator_GroundedDampsVertical(t *testing.T) {
	s := testSettings()
	v := integrate(t, s, StateGrounded, V(0, -2), Vec2{})
	assert.Greater(t, v.Y, -2.0)
}

func TestIntegrator_UpwardThrustStopsAtCap(t *testing.T) {
	s := testSettings()
	s.Params[StateFlying].Friction = 0
	maxV := s.EffectiveMaxSpeed(StateFlying).Y

	v := integrate(t, s, StateFlying, V(0, maxV), V(0, 1))
	assert.Equal(t, maxV, v.Y)

	// Downward thrust is still applied at the cap.
	v = integrate(t, s, StateFlying, V(0, maxV), V(0, -1))
	assert.Less(t, v.Y, maxV)
}

func TestIntegrator_DisallowedThrustIgnored(t *testing.T) {
	s := testSettings()
	s.Params[StateSliding].HorizontalThrust = false
	s.Params[StateSliding].Friction = 0
	v := integrate(t, s, StateSliding, V(1, 0), V(1, 0))
	assert.Equal(t, 1.0, v.X)
}

func TestIntegrator_DeadzoneIgnoresTinyInput(t *testing.T) {
	s := testSettings()
	v := integrate(t, s, StateFlying, Vec2{}, V(s.InputDeadzone/2, s.InputDeadzone/2))
	assert.Equal(t, Vec2{}, v)
}

func TestIntegrator_WallSuppressesThrustIntoWall(t *testing.T) {
	s := testSettings()
	b := &testBody{}
	data := newStateData()
	data.Current = StateWallContact
	data.SurfaceNormal = Right // wall on the left
	in := NewPhysicsIntegrator(s, b)

	in.Update(testDT, V(-1, 0), data)
	assert.Greater(t, b.vel.X, 0.0, "thrust into the wall must be cancelled and separation push applied")
	assert.InDelta(t, s.WallSeparationForce*testDT, b.vel.X, 1e-9)

	b.vel = Vec2{}
	in.Update(testDT, V(1, 0), data)
	assert.Greater(t, b.vel.X, s.WallSeparationForce*testDT)
}

func TestIntegrator_WallSeparationUsesDetectorVector(t *testing.T) {
	s := testSettings()
	b := &testBody{}
	data := newStateData()
	data.Current = StateWallContact
	data.SurfaceNormal = Right
	data.Separation = V(0.5, 0)
	NewPhysicsIntegrator(s, b).Update(testDT, Vec2{}, data)
	assert.InDelta(t, 1.5*s.WallSeparationForce*testDT, b.vel.X, 1e-9)
}

func TestIntegrator_WaterBuoyancy(t *testing.T) {
	s := testSettings()
	v := integrate(t, s, StateInWater, Vec2{}, Vec2{})
	assert.InDelta(t, s.Params[StateInWater].Buoyancy*testDT, v.Y, 1e-9)
}

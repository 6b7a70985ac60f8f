package heli

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_MissingDependenciesLeaveItInert(t *testing.T) {
	var buf bytes.Buffer
	c := NewController(WithLogger(zerolog.New(&buf)), WithWorld(&planeWorld{floorTag: TagSolid}))

	err := c.Initialize(nil, testSettings())
	require.ErrorIs(t, err, ErrNoBody)
	assert.False(t, c.Ready())

	// Repeating the same failure does not log again.
	_ = c.Initialize(nil, testSettings())
	assert.Equal(t, 1, strings.Count(buf.String(), "initialisation failed"))

	c.Tick(testDT)
	assert.Equal(t, 0, c.Ticks())
	assert.Equal(t, StateFlying, c.State())

	body := &testBody{}
	require.ErrorIs(t, c.Initialize(body, nil), ErrNoSettings)

	bad := testSettings()
	bad.RaycastCount = 0
	require.ErrorIs(t, c.Initialize(body, bad), ErrInvalidSettings)
	c.Tick(testDT)
	assert.Equal(t, 0, c.Ticks())

	require.NoError(t, c.Initialize(body, testSettings()))
	assert.True(t, c.Ready())
	assert.NoError(t, c.Err())
}

func TestController_NeedsWorldForDefaultDetector(t *testing.T) {
	c := NewController(WithLogger(quietLogger()))
	require.ErrorIs(t, c.Initialize(&testBody{}, testSettings()), ErrNoWorld)

	c = NewController(WithLogger(quietLogger()), WithDetector(NewScriptedDetector()))
	require.NoError(t, c.Initialize(&testBody{}, testSettings()))
}

func TestController_TickOrder(t *testing.T) {
	det := NewScriptedDetector()
	body := &testBody{}
	c := NewController(WithLogger(quietLogger()), WithDetector(det))
	require.NoError(t, c.Initialize(body, testSettings()))

	var seen []StateChange
	c.OnStateChanged(func(ev StateChange) { seen = append(seen, ev) })

	det.Contacts = groundedContacts()
	c.Tick(testDT)
	assert.Equal(t, StateGrounded, c.State())
	assert.Equal(t, det.Contacts, c.Contacts())

	// The integrator saw the new state: grounded friction, grounded speed cap.
	c.SetInput(1, 0)
	for i := 0; i < 200; i++ {
		c.Tick(testDT)
	}
	maxSliding := testSettings().EffectiveMaxSpeed(StateSliding).X
	assert.LessOrEqual(t, body.vel.X, maxSliding+1e-9)
	assert.Greater(t, body.vel.X, 0.0)

	require.GreaterOrEqual(t, len(seen), 2)
	assert.Equal(t, StateChange{New: StateGrounded, Previous: StateFlying}, seen[0])
	assert.Equal(t, StateChange{New: StateSliding, Previous: StateGrounded}, seen[1],
		"driving along the ground turns into a slide")
}

func TestController_ReachesWaterAndFloats(t *testing.T) {
	s := testSettings()
	body := &testBody{pos: V(0, 5)}
	c := NewController(WithLogger(quietLogger()), WithWorld(&planeWorld{floorY: -100, floorTag: TagSolid}))
	require.NoError(t, c.Initialize(body, s))

	c.WaterSensor().EnterWater(3)
	c.Tick(testDT)
	assert.Equal(t, StateInWater, c.State())
	assert.Greater(t, c.Velocity().Y, 0.0)

	c.WaterSensor().ExitWater(3)
	c.Tick(testDT)
	assert.Equal(t, StateFlying, c.State())
}

func TestController_ListenersSurviveReinitialise(t *testing.T) {
	det := NewScriptedDetector()
	c := NewController(WithLogger(quietLogger()), WithDetector(det))
	count := 0
	unsubscribe := c.OnStateChanged(func(StateChange) { count++ })

	require.NoError(t, c.Initialize(&testBody{}, testSettings()))
	c.ForceState(StateGrounded)
	require.NoError(t, c.Initialize(&testBody{}, testSettings()))
	assert.Equal(t, StateFlying, c.State())
	c.ForceState(StateInWater)
	assert.Equal(t, 2, count)

	unsubscribe()
	c.ForceState(StateFlying)
	assert.Equal(t, 2, count)
}

func TestController_SetInputClamps(t *testing.T) {
	c := NewController()
	c.SetInput(3, -7)
	assert.Equal(t, V(1, -1), c.Input())
	c.SetInput(0.25, -0.5)
	assert.Equal(t, V(0.25, -0.5), c.Input())
}

func TestController_ListenerPanicDoesNotEscape(t *testing.T) {
	var buf bytes.Buffer
	c := NewController(WithLogger(zerolog.New(&buf)), WithDetector(NewScriptedDetector()))
	require.NoError(t, c.Initialize(&testBody{}, testSettings()))

	after := false
	c.OnStateChanged(func(StateChange) { panic("boom") })
	c.OnStateChanged(func(StateChange) { after = true })

	assert.NotPanics(t, func() { c.ForceState(StateGrounded) })
	assert.True(t, after)
	assert.Contains(t, buf.String(), "state listener panicked")
}

func TestController_NonPositiveDTIsIgnored(t *testing.T) {
	c := NewController(WithLogger(quietLogger()), WithDetector(NewScriptedDetector()))
	require.NoError(t, c.Initialize(&testBody{}, testSettings()))
	for _, dt := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		c.Tick(dt)
	}
	assert.Equal(t, 0, c.Ticks())
	assert.Equal(t, 0.0, c.TimeInState())
	assert.Equal(t, Vec2{}, c.Velocity())
}

func TestController_TypedNilBodyIsRejected(t *testing.T) {
	c := NewController(WithLogger(quietLogger()), WithDetector(NewScriptedDetector()))
	var body *testBody
	require.ErrorIs(t, c.Initialize(body, testSettings()), ErrNoBody)
	assert.False(t, c.Ready())
	assert.NotPanics(t, func() { c.Tick(testDT) })
}

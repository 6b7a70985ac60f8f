package heli

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRayDetector_GroundedOnFloor(t *testing.T) {
	s := testSettings()
	body := &testBody{pos: V(0, 0.4)}
	d := NewRayDetector(s, body, &planeWorld{floorTag: TagSolid})

	c := d.Update()
	assert.True(t, c.Grounded)
	assert.InDelta(t, 0.4, c.DistanceToGround, 1e-9)
	assert.Equal(t, Up, c.GroundNormal)
	assert.Equal(t, TagSolid, c.GroundTag)
	assert.False(t, c.TouchingWall)
	assert.Len(t, d.Probes(), len(extendedDirections)*s.RaycastCount)
}

func TestRayDetector_GroundInRangeButNotGrounded(t *testing.T) {
	s := testSettings()
	body := &testBody{pos: V(0, 0.9)}
	d := NewRayDetector(s, body, &planeWorld{floorTag: TagSolid})

	c := d.Update()
	assert.False(t, c.Grounded, "0.9 is beyond 0.8 of the ray distance")
	assert.InDelta(t, 0.9, c.DistanceToGround, 1e-9)
}

func TestRayDetector_NothingInRange(t *testing.T) {
	s := testSettings()
	body := &testBody{pos: V(0, 5)}
	d := NewRayDetector(s, body, &planeWorld{floorTag: TagSolid})

	c := d.Update()
	assert.False(t, c.Grounded)
	assert.True(t, math.IsInf(c.DistanceToGround, 1))
	assert.True(t, math.IsInf(c.DistanceToWall, 1))
}

func TestRayDetector_SkipsWaterAndUntaggedHits(t *testing.T) {
	s := testSettings()
	for _, tag := range []Tag{TagWater, TagNone} {
		body := &testBody{pos: V(0, 0.3)}
		d := NewRayDetector(s, body, &planeWorld{floorTag: tag})
		c := d.Update()
		assert.Falsef(t, c.Grounded, "tag %s", tag)
	}
}

func TestRayDetector_HazardCountsAsGround(t *testing.T) {
	s := testSettings()
	body := &testBody{pos: V(0, 0.3)}
	d := NewRayDetector(s, body, &planeWorld{floorTag: TagHazard})
	c := d.Update()
	assert.True(t, c.Grounded)
	assert.Equal(t, TagHazard, c.GroundTag)
}

func TestRayDetector_WallContactAndSeparation(t *testing.T) {
	s := testSettings()
	body := &testBody{pos: V(0, 5)}
	d := NewRayDetector(s, body, &planeWorld{floorY: -100, floorTag: TagSolid, hasWall: true, wallX: -0.5, wallTag: TagSolid})

	c := d.Update()
	require.True(t, c.TouchingWall)
	assert.Equal(t, Right, c.WallNormal)
	// Leftmost parallel ray starts at -0.3, 0.2 from the wall.
	assert.InDelta(t, 0.2, c.DistanceToWall, 1e-9)
	assert.InDelta(t, s.RaycastDistance-0.2, c.Separation.X, 1e-9)
	assert.Equal(t, 0.0, c.Separation.Y)
}

func TestRayDetector_FarWallHasNoSeparation(t *testing.T) {
	s := testSettings()
	body := &testBody{pos: V(0, 5)}
	d := NewRayDetector(s, body, &planeWorld{floorY: -100, floorTag: TagSolid, hasWall: true, wallX: -0.9, wallTag: TagSolid})

	c := d.Update()
	assert.InDelta(t, 0.6, c.DistanceToWall, 1e-9)
	assert.False(t, c.TouchingWall, "0.6 is not below 0.6 of the ray distance")
	assert.True(t, c.Separation.IsZero())
}

func TestRayDetector_BasicModeIgnoresWalls(t *testing.T) {
	s := testSettings()
	s.Detector = DetectorBasic
	body := &testBody{pos: V(0, 5)}
	d := NewRayDetector(s, body, &planeWorld{floorY: -100, floorTag: TagSolid, hasWall: true, wallX: -0.4, wallTag: TagSolid})

	c := d.Update()
	assert.False(t, c.TouchingWall)
	assert.True(t, math.IsInf(c.DistanceToWall, 1))
	assert.Len(t, d.Probes(), len(basicDirections)*s.RaycastCount)
}

func TestRayDetector_WaterLatch(t *testing.T) {
	s := testSettings()
	d := NewRayDetector(s, &testBody{pos: V(0, 5)}, &planeWorld{floorY: -100, floorTag: TagSolid})

	assert.False(t, d.Update().InWater)
	d.EnterWater(1)
	d.EnterWater(2)
	d.ExitWater(1)
	assert.True(t, d.Update().InWater)
	d.ExitWater(2)
	assert.False(t, d.Update().InWater)
}

func TestRayDetector_MaskFiltersLayers(t *testing.T) {
	s := testSettings()
	d := NewRayDetector(s, &testBody{pos: V(0, 0.3)}, &planeWorld{floorTag: TagHazard})
	d.SetMask(MaskOf(TagSolid))
	assert.False(t, d.Update().Grounded)
}

func TestRayOffset(t *testing.T) {
	assert.Equal(t, 0.0, rayOffset(0, 1, 0.6))
	assert.InDelta(t, -0.3, rayOffset(0, 3, 0.6), 1e-12)
	assert.InDelta(t, 0.0, rayOffset(1, 3, 0.6), 1e-12)
	assert.InDelta(t, 0.3, rayOffset(2, 3, 0.6), 1e-12)
}

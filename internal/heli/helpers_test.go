package heli

import (
	"math"

	"github.com/rs/zerolog"
)

const testDT = 0.02

type testBody struct {
	pos Vec2
	vel Vec2
}

func (b *testBody) Position() Vec2 { return b.pos }
func (b *testBody) Velocity() Vec2 { return b.vel }
func (b *testBody) SetVelocity(v Vec2) { b.vel = v }
func (b *testBody) Valid() bool { return b != nil }

// planeWorld is a floor at floorY and an optional wall filling x < wallX.
type planeWorld struct {
	floorY   float64
	floorTag Tag
	hasWall  bool
	wallX    float64
	wallTag  Tag
}

func (w *planeWorld) Raycast(origin, dir Vec2, maxDist float64, mask LayerMask) (Hit, bool) {
	best := Hit{Distance: math.Inf(1)}
	found := false
	if dir.Y < 0 && mask.Has(w.floorTag) {
		t := (origin.Y - w.floorY) / -dir.Y
		if t >= 0 && t <= maxDist {
			best = Hit{Distance: t, Normal: Up, Tag: w.floorTag}
			found = true
		}
	}
	if w.hasWall && dir.X < 0 && mask.Has(w.wallTag) {
		t := (origin.X - w.wallX) / -dir.X
		if t >= 0 && t <= maxDist && t < best.Distance {
			best = Hit{Distance: t, Normal: Right, Tag: w.wallTag}
			found = true
		}
	}
	return best, found
}

func quietLogger() zerolog.Logger { return zerolog.Nop() }

func testSettings() *Settings {
	s := DefaultSettings()
	return &s
}

func groundedContacts() Contacts {
	c := NoContacts()
	c.Grounded = true
	c.GroundNormal = Up
	c.DistanceToGround = 0.4
	return c
}

func wallContacts() Contacts {
	c := NoContacts()
	c.TouchingWall = true
	c.WallNormal = Right
	c.DistanceToWall = 0.3
	return c
}

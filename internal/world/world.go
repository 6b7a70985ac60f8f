// Package world is the small physics world the helicopter flies through:
// static blocks, water triggers and dynamic bodies integrated at a fixed step.
package world

import (
	"math"

	"github.com/Garsondee/Heli-Taxi/internal/heli"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultGravity is the downward acceleration in units/s².
const DefaultGravity = 9.81

// skin is the penetration depth below which boxes are treated as touching.
const skin = 1e-7

// Block is a static axis-aligned box.
type Block struct {
	ID  int
	Min heli.Vec2
	Max heli.Vec2
	Tag heli.Tag
}

// Contains reports whether p is strictly inside the block.
func (b Block) Contains(p heli.Vec2) bool {
	return p.X > b.Min.X && p.X < b.Max.X && p.Y > b.Min.Y && p.Y < b.Max.Y
}

// WaterRegion is a trigger volume that reports enter/exit to bodies.
type WaterRegion struct {
	ID  int
	Min heli.Vec2
	Max heli.Vec2
}

// Impact is one resolved collision during a step.
type Impact struct {
	Normal heli.Vec2 // surface normal, pointing away from the block
	Speed  float64   // speed into the surface before it was cancelled
	Tag    heli.Tag
}

// Body is a dynamic box. It satisfies heli.Body.
type Body struct {
	ID           int
	HalfExtents  heli.Vec2
	GravityScale float64
	Drag         float64 // linear drag per second

	pos     heli.Vec2
	vel     heli.Vec2
	impacts []Impact
	water   map[int]struct{}
	sensors []heli.WaterSensor
}

func (b *Body) Position() heli.Vec2 { return b.pos }

// Valid reports whether b points at a live body.
func (b *Body) Valid() bool { return b != nil }
func (b *Body) Velocity() heli.Vec2 { return b.vel }
func (b *Body) SetVelocity(v heli.Vec2) { b.vel = v }
func (b *Body) Impacts() []Impact { return b.impacts }
func (b *Body) InWater() bool { return len(b.water) > 0 }

// Bounds returns the body's box corners.
func (b *Body) Bounds() (min, max heli.Vec2) {
	return b.pos.Sub(b.HalfExtents), b.pos.Add(b.HalfExtents)
}

// AddWaterSensor registers a trigger sink for this body.
func (b *Body) AddWaterSensor(s heli.WaterSensor) {
	if s != nil {
		b.sensors = append(b.sensors, s)
	}
}

// HardestImpact returns the fastest impact of the last step.
func (b *Body) HardestImpact() (Impact, bool) {
	var best Impact
	found := false
	for _, im := range b.impacts {
		if !found || im.Speed > best.Speed {
			best = im
			found = true
		}
	}
	return best, found
}

// World owns the blocks, water and bodies.
type World struct {
	Gravity float64

	blocks []Block
	water  []WaterRegion
	bodies []*Body
	nextID int
	log    zerolog.Logger
}

// Option customises a World.
type Option func(*World)

// WithGravity overrides DefaultGravity.
func WithGravity(g float64) Option { return func(w *World) { w.Gravity = g } }

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option { return func(w *World) { w.log = l } }

// New creates an empty world.
func New(opts ...Option) *World {
	w := &World{
		Gravity: DefaultGravity,
		log:     log.Logger.With().Str("component", "world").Logger(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *World) id() int {
	w.nextID++
	return w.nextID
}

// AddBlock adds a static box spanning the two corners.
func (w *World) AddBlock(a, b heli.Vec2, tag heli.Tag) int {
	min, max := corners(a, b)
	id := w.id()
	w.blocks = append(w.blocks, Block{ID: id, Min: min, Max: max, Tag: tag})
	return id
}

// AddWater adds a water trigger spanning the two corners.
func (w *World) AddWater(a, b heli.Vec2) int {
	min, max := corners(a, b)
	id := w.id()
	w.water = append(w.water, WaterRegion{ID: id, Min: min, Max: max})
	return id
}

// AddBody adds a dynamic body centred at pos.
func (w *World) AddBody(pos, halfExtents heli.Vec2) *Body {
	b := &Body{
		ID:           w.id(),
		HalfExtents:  halfExtents,
		GravityScale: 1,
		pos:          pos,
		water:        make(map[int]struct{}),
	}
	w.bodies = append(w.bodies, b)
	return b
}

// Blocks returns the static blocks.
func (w *World) Blocks() []Block { return w.blocks }

// Water returns the water regions.
func (w *World) Water() []WaterRegion { return w.water }

// Bodies returns the dynamic bodies.
func (w *World) Bodies() []*Body { return w.bodies }

// Teleport moves b to pos, stops it and re-evaluates its water triggers.
func (w *World) Teleport(b *Body, pos heli.Vec2) {
	b.pos = pos
	b.vel = heli.Vec2{}
	b.impacts = b.impacts[:0]
	w.updateTriggers(b)
}

// Step advances every body by dt: gravity, drag, per-axis movement with
// overlap resolution, then water triggers.
func (w *World) Step(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 1) {
		return
	}
	for _, b := range w.bodies {
		w.stepBody(b, dt)
	}
}

func (w *World) stepBody(b *Body, dt float64) {
	b.impacts = b.impacts[:0]
	b.vel.Y -= w.Gravity * b.GravityScale * dt
	if b.Drag > 0 {
		b.vel = b.vel.Scale(math.Max(0, 1-b.Drag*dt))
	}

	b.pos.X += b.vel.X * dt
	w.resolveX(b)
	b.pos.Y += b.vel.Y * dt
	w.resolveY(b)

	w.updateTriggers(b)
}

func (w *World) resolveX(b *Body) {
	for i := range w.blocks {
		blk := &w.blocks[i]
		if !w.overlaps(b, blk) {
			continue
		}
		var n heli.Vec2
		if b.vel.X > 0 || (b.vel.X == 0 && b.pos.X < (blk.Min.X+blk.Max.X)/2) {
			b.pos.X = blk.Min.X - b.HalfExtents.X
			n = heli.Left
		} else {
			b.pos.X = blk.Max.X + b.HalfExtents.X
			n = heli.Right
		}
		b.impacts = append(b.impacts, Impact{Normal: n, Speed: math.Abs(b.vel.X), Tag: blk.Tag})
		b.vel.X = 0
	}
}

func (w *World) resolveY(b *Body) {
	for i := range w.blocks {
		blk := &w.blocks[i]
		if !w.overlaps(b, blk) {
			continue
		}
		var n heli.Vec2
		if b.vel.Y > 0 || (b.vel.Y == 0 && b.pos.Y < (blk.Min.Y+blk.Max.Y)/2) {
			b.pos.Y = blk.Min.Y - b.HalfExtents.Y
			n = heli.Down
		} else {
			b.pos.Y = blk.Max.Y + b.HalfExtents.Y
			n = heli.Up
		}
		b.impacts = append(b.impacts, Impact{Normal: n, Speed: math.Abs(b.vel.Y), Tag: blk.Tag})
		b.vel.Y = 0
	}
}

func (w *World) overlaps(b *Body, blk *Block) bool {
	min, max := b.Bounds()
	return min.X < blk.Max.X-skin && max.X > blk.Min.X+skin &&
		min.Y < blk.Max.Y-skin && max.Y > blk.Min.Y+skin
}

func (w *World) updateTriggers(b *Body) {
	min, max := b.Bounds()
	for _, r := range w.water {
		inside := min.X < r.Max.X && max.X > r.Min.X && min.Y < r.Max.Y && max.Y > r.Min.Y
		_, was := b.water[r.ID]
		switch {
		case inside && !was:
			b.water[r.ID] = struct{}{}
			for _, s := range b.sensors {
				s.EnterWater(r.ID)
			}
			w.log.Debug().Int("body", b.ID).Int("water", r.ID).Msg("enter water")
		case !inside && was:
			delete(b.water, r.ID)
			for _, s := range b.sensors {
				s.ExitWater(r.ID)
			}
			w.log.Debug().Int("body", b.ID).Int("water", r.ID).Msg("exit water")
		}
	}
}

func corners(a, b heli.Vec2) (min, max heli.Vec2) {
	return heli.Vec2{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		heli.Vec2{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)}
}

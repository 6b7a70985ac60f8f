package world

import (
	"math"

	"github.com/Garsondee/Heli-Taxi/internal/heli"
)

// slabHit returns the first segment parameter t in [0,1] where the segment
// from o to o+d enters the box, and the outward normal of the face it crossed.
// Segments starting inside the box report no hit: there is no entry face.
func slabHit(o, d, min, max heli.Vec2) (float64, heli.Vec2, bool) {
	tMin := math.Inf(-1)
	tMax := math.Inf(1)
	var normal heli.Vec2

	// X slab
	if math.Abs(d.X) < 1e-12 {
		if o.X <= min.X || o.X >= max.X {
			return 0, heli.Vec2{}, false
		}
	} else {
		invD := 1.0 / d.X
		t1 := (min.X - o.X) * invD
		t2 := (max.X - o.X) * invD
		n := heli.Vec2{X: -1}
		if t1 > t2 {
			t1, t2 = t2, t1
			n = heli.Vec2{X: 1}
		}
		if t1 > tMin {
			tMin = t1
			normal = n
		}
		tMax = math.Min(tMax, t2)
	}

	// Y slab
	if math.Abs(d.Y) < 1e-12 {
		if o.Y <= min.Y || o.Y >= max.Y {
			return 0, heli.Vec2{}, false
		}
	} else {
		invD := 1.0 / d.Y
		t1 := (min.Y - o.Y) * invD
		t2 := (max.Y - o.Y) * invD
		n := heli.Vec2{Y: -1}
		if t1 > t2 {
			t1, t2 = t2, t1
			n = heli.Vec2{Y: 1}
		}
		if t1 > tMin {
			tMin = t1
			normal = n
		}
		tMax = math.Min(tMax, t2)
	}

	if tMin > tMax || tMax < 0 || tMin > 1 {
		return 0, heli.Vec2{}, false
	}
	if tMin < 0 {
		// origin inside the box
		return 0, heli.Vec2{}, false
	}
	return tMin, normal, true
}

// Raycast returns the closest block hit by a ray of length maxDist. Water
// regions are triggers and are never hit.
func (w *World) Raycast(origin, dir heli.Vec2, maxDist float64, mask heli.LayerMask) (heli.Hit, bool) {
	dir = dir.Norm()
	if dir.IsZero() || maxDist <= 0 {
		return heli.Hit{}, false
	}
	seg := dir.Scale(maxDist)
	best := heli.Hit{Distance: math.Inf(1)}
	found := false
	for i := range w.blocks {
		b := &w.blocks[i]
		if !mask.Has(b.Tag) {
			continue
		}
		t, n, ok := slabHit(origin, seg, b.Min, b.Max)
		if !ok {
			continue
		}
		if d := t * maxDist; d < best.Distance {
			best = heli.Hit{Distance: d, Normal: n, Tag: b.Tag}
			found = true
		}
	}
	return best, found
}

// LineOfSight reports whether the segment a-b crosses no block.
func (w *World) LineOfSight(a, b heli.Vec2) bool {
	d := b.Sub(a)
	for i := range w.blocks {
		blk := &w.blocks[i]
		if _, _, ok := slabHit(a, d, blk.Min, blk.Max); ok {
			return false
		}
		if blk.Contains(a) || blk.Contains(b) {
			return false
		}
	}
	return true
}

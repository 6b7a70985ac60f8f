package heli

import "math"

// Tag classifies what a ray hit.
type Tag int

const (
	TagNone   Tag = iota
	TagSolid      // static ground and walls
	TagHazard     // damaging surface, still solid
	TagWater      // trigger volume, never a contact
)

func (t Tag) String() string {
	switch t {
	case TagSolid:
		return "solid"
	case TagHazard:
		return "hazard"
	case TagWater:
		return "water"
	default:
		return "none"
	}
}

// Surface reports whether the tag counts as a contact surface. Water and
// untagged hits never do.
func (t Tag) Surface() bool { return t == TagSolid || t == TagHazard }

// LayerMask filters ray queries. Bits follow the Tag values.
type LayerMask uint32

// MaskOf builds a mask from tags.
func MaskOf(tags ...Tag) LayerMask {
	var m LayerMask
	for _, t := range tags {
		m |= 1 << uint(t)
	}
	return m
}

// Has reports whether t passes the mask.
func (m LayerMask) Has(t Tag) bool { return m&(1<<uint(t)) != 0 }

// MaskAll matches every tag.
const MaskAll LayerMask = ^LayerMask(0)

// Hit is the result of a ray cast.
type Hit struct {
	Distance float64
	Normal   Vec2
	Tag      Tag
}

// Raycaster is the read-only physics-world query the detector samples.
type Raycaster interface {
	Raycast(origin, dir Vec2, maxDist float64, mask LayerMask) (Hit, bool)
}

// Contacts are the facts the detector derives each tick.
type Contacts struct {
	Grounded         bool
	TouchingWall     bool
	InWater          bool
	GroundNormal     Vec2
	WallNormal       Vec2
	GroundTag        Tag
	WallTag          Tag
	DistanceToGround float64 // +Inf sentinel when nothing was hit
	DistanceToWall   float64 // +Inf sentinel when nothing was hit
	Separation       Vec2    // push-off vector for very close walls
}

// NoContacts is the reset value used at the start of every sample.
func NoContacts() Contacts {
	return Contacts{
		DistanceToGround: math.Inf(1),
		DistanceToWall:   math.Inf(1),
	}
}

// Detector produces contact facts once per tick.
type Detector interface {
	Update() Contacts
}

// WaterSensor receives trigger callbacks from the physics world.
type WaterSensor interface {
	EnterWater(region int)
	ExitWater(region int)
}

// Probe is one sampled ray, kept for debug overlays.
type Probe struct {
	Origin   Vec2
	Dir      Vec2
	Length   float64
	Hit      bool
	Distance float64
	Tag      Tag
}

// Positioner exposes where rays start from.
type Positioner interface {
	Position() Vec2
}

var (
	basicDirections = []Vec2{
		Down,
		Vec2{-1, -1}.Norm(),
		Vec2{1, -1}.Norm(),
	}
	extendedDirections = []Vec2{
		Down,
		Vec2{-1, -1}.Norm(),
		Vec2{1, -1}.Norm(),
		Left,
		Right,
		Up,
		Vec2{-1, 1}.Norm(),
		Vec2{1, 1}.Norm(),
	}
)

// RayDetector infers contacts from short ray casts around the body.
type RayDetector struct {
	settings *Settings
	body     Positioner
	world    Raycaster
	mask     LayerMask

	water  map[int]struct{} // overlapping water regions
	probes []Probe
	last   Contacts
}

// NewRayDetector builds a detector sampling world around body.
func NewRayDetector(settings *Settings, body Positioner, world Raycaster) *RayDetector {
	return &RayDetector{
		settings: settings,
		body:     body,
		world:    world,
		mask:     MaskAll,
		water:    make(map[int]struct{}),
		last:     NoContacts(),
	}
}

// SetMask restricts the layers that are sampled.
func (d *RayDetector) SetMask(m LayerMask) { d.mask = m }

// EnterWater latches submersion while at least one region overlaps.
func (d *RayDetector) EnterWater(region int) { d.water[region] = struct{}{} }

// ExitWater releases one region.
func (d *RayDetector) ExitWater(region int) { delete(d.water, region) }

// Probes returns the rays sampled by the last Update.
func (d *RayDetector) Probes() []Probe { return d.probes }

// Last returns the contacts of the last Update.
func (d *RayDetector) Last() Contacts { return d.last }

func (d *RayDetector) directions() []Vec2 {
	if d.settings.Detector == DetectorBasic {
		return basicDirections
	}
	return extendedDirections
}

// Update resets the facts and samples every direction.
func (d *RayDetector) Update() Contacts {
	s := d.settings
	c := NoContacts()
	c.InWater = len(d.water) > 0
	d.probes = d.probes[:0]

	extended := s.Detector == DetectorExtended
	pos := d.body.Position()
	for _, dir := range d.directions() {
		for i := 0; i < s.RaycastCount; i++ {
			origin := pos.Add(Vec2{rayOffset(i, s.RaycastCount, s.RaycastSpan), 0})
			hit, ok := d.world.Raycast(origin, dir, s.RaycastDistance, d.mask)
			d.probes = append(d.probes, Probe{
				Origin: origin, Dir: dir, Length: s.RaycastDistance,
				Hit: ok, Distance: hit.Distance, Tag: hit.Tag,
			})
			if !ok || !hit.Tag.Surface() {
				continue
			}
			if hit.Normal.Y > s.GroundNormalThreshold && hit.Distance < c.DistanceToGround {
				c.DistanceToGround = hit.Distance
				c.GroundNormal = hit.Normal
				c.GroundTag = hit.Tag
			}
			if extended && math.Abs(hit.Normal.X) > s.WallNormalThreshold && hit.Distance < c.DistanceToWall {
				c.DistanceToWall = hit.Distance
				c.WallNormal = hit.Normal
				c.WallTag = hit.Tag
				c.Separation = Vec2{}
				if hit.Distance < s.StickPreventionThreshold {
					c.Separation = hit.Normal.Scale(s.RaycastDistance - hit.Distance)
				}
			}
		}
	}

	c.Grounded = c.DistanceToGround < s.RaycastDistance*s.GroundedRatio
	if extended {
		c.TouchingWall = c.DistanceToWall < s.RaycastDistance*s.WallRatio
	}
	d.last = c
	return c
}

// rayOffset spreads count rays evenly across span, centred on zero.
func rayOffset(i, count int, span float64) float64 {
	if count <= 1 {
		return 0
	}
	return -span/2 + span*float64(i)/float64(count-1)
}

// ScriptedDetector returns whatever contacts it was last given. Tests and
// tooling use it in place of ray casting.
type ScriptedDetector struct {
	Contacts Contacts
}

// NewScriptedDetector starts with no contacts.
func NewScriptedDetector() *ScriptedDetector {
	return &ScriptedDetector{Contacts: NoContacts()}
}

func (d *ScriptedDetector) Update() Contacts { return d.Contacts }

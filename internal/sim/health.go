package sim

import (
	"github.com/Garsondee/Heli-Taxi/internal/config"
	"github.com/Garsondee/Heli-Taxi/internal/heli"
	"github.com/Garsondee/Heli-Taxi/internal/world"
)

// DamageCause says why health dropped.
type DamageCause string

const (
	DamageHazard DamageCause = "hazard"
	DamageImpact DamageCause = "impact"
)

// Damage is one health loss.
type Damage struct {
	Amount float64
	Cause  DamageCause
}

// Health tracks hull integrity. Hazard contact hurts at most once per
// cooldown window; hitting any surface faster than the impact threshold
// hurts in proportion to the excess speed.
type Health struct {
	cfg      config.Health
	current  float64
	cooldown float64
	crashes  int
}

// NewHealth starts at full health.
func NewHealth(cfg config.Health) *Health {
	return &Health{cfg: cfg, current: cfg.Max}
}

func (h *Health) Current() float64 { return h.current }
func (h *Health) Max() float64 { return h.cfg.Max }
func (h *Health) Crashes() int { return h.crashes }
func (h *Health) Dead() bool { return h.current <= 0 }

// Fraction is current/max in [0,1].
func (h *Health) Fraction() float64 {
	if h.cfg.Max <= 0 {
		return 0
	}
	f := h.current / h.cfg.Max
	if f < 0 {
		return 0
	}
	return f
}

// Update applies damage from this tick's contacts and collisions.
func (h *Health) Update(dt float64, c heli.Contacts, impacts []world.Impact) []Damage {
	if h.cooldown > 0 {
		h.cooldown -= dt
	}
	var out []Damage

	hazard := (c.Grounded && c.GroundTag == heli.TagHazard) ||
		(c.TouchingWall && c.WallTag == heli.TagHazard)
	var hardest float64
	for _, im := range impacts {
		if im.Tag == heli.TagHazard {
			hazard = true
		}
		if im.Speed > hardest {
			hardest = im.Speed
		}
	}

	if hazard && h.cooldown <= 0 && h.cfg.HazardDamage > 0 {
		out = append(out, Damage{Amount: h.cfg.HazardDamage, Cause: DamageHazard})
		h.cooldown = h.cfg.HazardCooldown
	}
	if hardest > h.cfg.ImpactThreshold && h.cfg.ImpactDamagePerSpeed > 0 {
		out = append(out, Damage{Amount: (hardest - h.cfg.ImpactThreshold) * h.cfg.ImpactDamagePerSpeed, Cause: DamageImpact})
	}
	for _, d := range out {
		h.current -= d.Amount
	}
	if h.current < 0 {
		h.current = 0
	}
	return out
}

// Crash counts a crash and restores full health.
func (h *Health) Crash() {
	h.crashes++
	h.Restore()
}

// Restore refills health and clears the hazard cooldown.
func (h *Health) Restore() {
	h.current = h.cfg.Max
	h.cooldown = 0
}

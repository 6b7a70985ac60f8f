package sim

import (
	"math"
	"testing"

	"github.com/Garsondee/Heli-Taxi/internal/config"
	"github.com/Garsondee/Heli-Taxi/internal/heli"
)

// dumpLog prints the full SimLog to t.Log so it appears in `go test -v` output.
func dumpLog(t *testing.T, ts *TestSim) {
	t.Helper()
	entries := ts.SimLog.Entries()
	if len(entries) == 0 {
		t.Log("(no log entries)")
		return
	}
	for _, e := range entries {
		t.Log(e.String())
	}
}

// boxLevel is a 20x12 room with a solid floor at y=0.
func boxLevel(extra ...SimOption) []SimOption {
	opts := []SimOption{
		WithEmptyLevel("box"),
		WithBlock(-1, -1, 21, 0, "solid"),
		WithBlock(-1, 0, 0, 12, "solid"),
		WithBlock(20, 0, 21, 12, "solid"),
		WithBlock(-1, 12, 21, 13, "solid"),
	}
	return append(opts, extra...)
}

func newSim(t *testing.T, opts ...SimOption) *TestSim {
	t.Helper()
	ts, err := NewTestSim(opts...)
	if err != nil {
		t.Fatalf("NewTestSim: %v", err)
	}
	return ts
}

// --- Scenario: unpowered landing settles on the floor ---

func TestScenario_Landing(t *testing.T) {
	ts := newSim(t, boxLevel(WithSpawn(10, 1.5))...)
	ts.RunTicks(100)
	dumpLog(t, ts)

	snap := ts.Snapshot()
	if snap.State != heli.StateGrounded {
		t.Fatalf("state = %s, want grounded", snap.State)
	}
	if math.Abs(snap.Pos.Y-0.4) > 1e-6 {
		t.Errorf("resting height = %.4f, want 0.4", snap.Pos.Y)
	}
	if !snap.Vel.IsZero() {
		t.Errorf("velocity = %+v, want zero at rest", snap.Vel)
	}
	if snap.Health != 100 {
		t.Errorf("soft landing cost health: %.1f", snap.Health)
	}
	if !ts.SimLog.HasEntry("state", "change", "→ grounded") {
		t.Error("no transition into grounded was logged")
	}
}

// --- Scenario: full throttle lifts off the floor ---

func TestScenario_TakeOff(t *testing.T) {
	ts := newSim(t, boxLevel(WithSpawn(10, 1.5), WithScript(
		ScriptStep{Ticks: 50},
		ScriptStep{Ticks: 50, Input: heli.V(0, 1)},
	))...)
	ts.RunTicks(50)
	if got := ts.Heli.State(); got != heli.StateGrounded {
		t.Fatalf("after settling state = %s, want grounded", got)
	}
	ts.RunTicks(50)
	dumpLog(t, ts)

	snap := ts.Snapshot()
	if snap.State != heli.StateFlying {
		t.Errorf("state = %s, want flying", snap.State)
	}
	if snap.Pos.Y < 1 {
		t.Errorf("climbed only to %.2f", snap.Pos.Y)
	}
}

// --- Scenario: water lifts the helicopter ---

func TestScenario_WaterBuoyancy(t *testing.T) {
	ts := newSim(t, boxLevel(
		WithWater(5, 0, 15, 2),
		WithSpawn(10, 1),
	)...)

	at := ts.RunUntil(func(ts *TestSim) bool { return ts.Heli.State() == heli.StateInWater }, 10)
	if at < 0 {
		dumpLog(t, ts)
		t.Fatal("never entered the water state")
	}
	ts.RunTicks(90)
	if y := ts.Body.Position().Y; y < 1.5 {
		t.Errorf("buoyancy did not lift the body: y=%.2f", y)
	}
	if ts.Health.Current() != 100 {
		t.Errorf("water should not hurt, health=%.1f", ts.Health.Current())
	}
}

// --- Scenario: resting on a hazard drains health once per cooldown ---

func TestScenario_HazardDamage(t *testing.T) {
	ts := newSim(t, boxLevel(
		WithBlock(8, 0, 12, 0.5, "hazard"),
		WithSpawn(10, 1),
	)...)
	ts.RunTicks(120)
	dumpLog(t, ts)

	hits := ts.SimLog.CountCategory("health", string(DamageHazard))
	if hits < 2 || hits > 3 {
		t.Errorf("hazard hits in 2.4s = %d, want 2..3 with a 1s cooldown", hits)
	}
	if want := 100 - 20*float64(hits); ts.Health.Current() != want {
		t.Errorf("health = %.1f, want %.1f", ts.Health.Current(), want)
	}
	if ts.Heli.State() != heli.StateGrounded {
		t.Errorf("state = %s, want grounded on the hazard", ts.Heli.State())
	}
}

// --- Scenario: a long unpowered drop hurts on impact ---

func TestScenario_ImpactDamage(t *testing.T) {
	ts := newSim(t, boxLevel(WithSpawn(10, 8))...)
	ts.RunTicks(150)
	dumpLog(t, ts)

	if n := ts.SimLog.CountCategory("health", string(DamageImpact)); n != 1 {
		t.Fatalf("impact damage entries = %d, want 1", n)
	}
	hp := ts.Health.Current()
	if hp >= 95 || hp < 85 {
		t.Errorf("health after drop = %.2f, want a loss of 5..15", hp)
	}
	if ts.Heli.State() != heli.StateGrounded {
		t.Errorf("state = %s, want grounded", ts.Heli.State())
	}
}

// --- Scenario: impact damage follows drop height ---

func TestScenario_ImpactGrowsWithDropHeight(t *testing.T) {
	dropLoss := func(spawnY float64) float64 {
		ts := newSim(t, boxLevel(WithSpawn(10, spawnY))...)
		ts.RunTicks(150)
		if ts.Heli.State() != heli.StateGrounded {
			dumpLog(t, ts)
			t.Fatalf("drop from %.1f: state = %s, want grounded", spawnY, ts.Heli.State())
		}
		return 100 - ts.Health.Current()
	}

	short, medium, tall := dropLoss(1.5), dropLoss(2), dropLoss(8)
	if short != 0 {
		t.Errorf("1.1 unit drop cost %.2f health, want none", short)
	}
	if medium <= 0 {
		t.Errorf("1.6 unit drop cost nothing, want some damage")
	}
	if tall <= medium {
		t.Errorf("tall drop cost %.2f, not more than the 1.6 unit drop (%.2f)", tall, medium)
	}
}

// --- Scenario: running out of health respawns the helicopter ---

func TestScenario_CrashRespawns(t *testing.T) {
	ts := newSim(t, boxLevel(
		WithBlock(8, 0, 12, 0.5, "hazard"),
		WithSpawn(10, 1),
		WithTuning(func(c *config.Config) {
			c.Game.Health.Max = 30
			c.Game.Health.HazardCooldown = 0.5
		}),
	)...)

	at := ts.RunUntil(func(ts *TestSim) bool { return ts.Health.Crashes() >= 1 }, 200)
	dumpLog(t, ts)
	if at < 0 {
		t.Fatal("never crashed")
	}
	if ts.Health.Current() != 30 {
		t.Errorf("health after crash = %.1f, want restored to 30", ts.Health.Current())
	}
	if !ts.Body.Position().Eq(heli.V(10, 1), 1e-9) {
		t.Errorf("position after crash = %+v, want spawn", ts.Body.Position())
	}
	if ts.Heli.State() != heli.StateFlying {
		t.Errorf("state after crash = %s, want flying", ts.Heli.State())
	}
	if !ts.SimLog.HasEntry("health", "crash", "crash #1") {
		t.Error("crash not logged")
	}
	if !ts.SimLog.HasEntry("state", "change", "(forced)") {
		t.Error("respawn should force the flying state")
	}
}

// --- Scenario: pressing into a wall enters and leaves wall contact ---

func TestScenario_WallContact(t *testing.T) {
	ts := newSim(t, boxLevel(WithSpawn(19, 6), WithInput(1, 0.55))...)
	ts.RunTicks(200)
	dumpLog(t, ts)

	if !ts.SimLog.HasEntry("state", "change", "flying → wall") {
		t.Error("never entered wall contact")
	}
	if !ts.SimLog.HasEntry("state", "change", "wall → flying") {
		t.Error("never left wall contact")
	}
	if x := ts.Body.Position().X; x > 19.5+1e-9 {
		t.Errorf("body penetrated the wall: x=%.3f", x)
	}
}

// --- Scenario: autopilot completes a fare ---

func TestScenario_AutopilotDelivers(t *testing.T) {
	ts := newSim(t, boxLevel(
		WithPortal("west", 3, 0),
		WithPortal("east", 16, 0),
		WithSpawn(3, 0.5),
		WithSeed(7),
		WithAutopilot(),
	)...)

	at := ts.RunUntil(func(ts *TestSim) bool { return ts.Taxi.Delivered() >= 1 }, 3000)
	if at < 0 {
		dumpLog(t, ts)
		t.Log(ts.DebugReport(200))
		t.Fatal("no delivery within 60s")
	}
	snap := ts.Snapshot()
	if math.Abs(snap.Earnings-29.5) > 1e-9 {
		t.Errorf("earnings = %.2f, want 10 + 1.5*13", snap.Earnings)
	}
	if snap.Crashes != 0 {
		t.Errorf("autopilot crashed %d times", snap.Crashes)
	}
	if !ts.SimLog.HasEntry("taxi", string(TaxiBoarded), "boarded") {
		t.Error("boarding not logged")
	}
}

// --- Invariant: per-axis speed never exceeds the state's cap ---

func TestInvariant_SpeedCapsOnStockLevel(t *testing.T) {
	ts := newSim(t, WithAutopilot(), WithSeed(3))
	settings := ts.Heli.Settings()
	// Gravity is applied by the world after the integrator clamps.
	slack := ts.Config().Game.Gravity * ts.DT()
	for i := 0; i < 1500; i++ {
		ts.RunTicks(1)
		v := ts.Body.Velocity()
		limit := settings.EffectiveMaxSpeed(ts.Heli.State())
		if math.Abs(v.X) > limit.X+1e-9 || math.Abs(v.Y) > limit.Y+slack+1e-9 {
			t.Fatalf("tick %d: v=%+v exceeds %+v in %s", i, v, limit, ts.Heli.State())
		}
	}
}

func TestScenario_ResetRestoresSpawn(t *testing.T) {
	ts := newSim(t, boxLevel(WithSpawn(10, 5), WithInput(1, 1))...)
	ts.RunTicks(60)
	if ts.Body.Position().Eq(heli.V(10, 5), 0.1) {
		t.Fatal("input did not move the helicopter")
	}
	if err := ts.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if ts.Tick() != 0 || !ts.Body.Position().Eq(heli.V(10, 5), 1e-9) {
		t.Errorf("after reset tick=%d pos=%+v", ts.Tick(), ts.Body.Position())
	}
	if !ts.SimLog.HasEntry("system", "reset", "box") {
		t.Error("reset not logged")
	}
}

func TestNewTestSim_RejectsBadConfig(t *testing.T) {
	_, err := NewTestSim(WithTuning(func(c *config.Config) { c.Game.TickRate = 0 }))
	if err == nil {
		t.Fatal("expected error for zero tick rate")
	}
}

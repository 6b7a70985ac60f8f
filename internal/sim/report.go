package sim

import (
	"fmt"
	"math"
	"strings"

	"github.com/Garsondee/Heli-Taxi/internal/heli"
)

// Stats is the per-run summary the headless report aggregates.
type Stats struct {
	Ticks       int
	StateTicks  [len(heli.States)]int
	Transitions int
	Crashes     int
	Delivered   int
	Earnings    float64
	DamageTaken float64
}

// Stats summarises the session so far.
func (s *Session) Stats() Stats {
	return Stats{
		Ticks:       s.tick,
		StateTicks:  s.stateTicks,
		Transitions: s.transitions,
		Crashes:     s.Health.Crashes(),
		Delivered:   s.Taxi.Delivered(),
		Earnings:    s.Taxi.Earnings(),
		DamageTaken: s.damage,
	}
}

// StateShare is the fraction of ticks spent in st.
func (st Stats) StateShare(state heli.State) float64 {
	if st.Ticks == 0 || !state.Valid() {
		return 0
	}
	return float64(st.StateTicks[state]) / float64(st.Ticks)
}

// DebugReport renders the session state and the last lastTicks snapshots
// as plain text, for the clipboard and the report tool.
func (s *Session) DebugReport(lastTicks int) string {
	if lastTicks <= 0 {
		lastTicks = 120
	}
	snaps := s.History(lastTicks)
	stats := s.Stats()
	pos, vel := s.Body.Position(), s.Body.Velocity()
	data := s.Heli.Data()

	var b strings.Builder
	fmt.Fprintf(&b, "--- Heli-Taxi debug report ---\n")
	fmt.Fprintf(&b, "level=%s seed=%d tick=%d dt=%.3f\n", s.cfg.Level.Name, s.cfg.Game.Seed, s.tick, s.dt)
	fmt.Fprintf(&b, "state=%s prev=%s in_state=%.2fs pos=(%.2f,%.2f) vel=(%.2f,%.2f) |v|=%.2f\n",
		data.Current, data.Previous, data.TimeInState, pos.X, pos.Y, vel.X, vel.Y, vel.Len())
	fmt.Fprintf(&b, "contacts: grounded=%t wall=%t water=%t ground=%s normal=(%.2f,%.2f)\n",
		data.Grounded, data.TouchingWall, data.InWater, distString(data.DistanceToGround),
		data.SurfaceNormal.X, data.SurfaceNormal.Y)
	fmt.Fprintf(&b, "health=%.0f/%.0f crashes=%d damage=%.1f\n",
		s.Health.Current(), s.Health.Max(), stats.Crashes, stats.DamageTaken)
	fmt.Fprintf(&b, "taxi: delivered=%d earnings=%.1f passenger=%s\n\n",
		stats.Delivered, stats.Earnings, s.passengerString())

	b.WriteString("== state time ==\n")
	for _, st := range heli.States {
		fmt.Fprintf(&b, "  %-9s %6d ticks %5.1f%%\n", st, stats.StateTicks[st], 100*stats.StateShare(st))
	}
	fmt.Fprintf(&b, "  transitions=%d\n\n", stats.Transitions)

	if len(snaps) == 0 {
		b.WriteString("(no snapshots recorded yet)\n")
		return b.String()
	}
	fmt.Fprintf(&b, "== last %d ticks [%d..%d] ==\n", len(snaps), snaps[0].Tick, snaps[len(snaps)-1].Tick)
	for i, st := range buildStages(snaps) {
		fmt.Fprintf(&b, "  %02d) T=%d..%d (%dt) %s moved=%.2f v=%.2f->%.2f in=(%.2f,%.2f)\n",
			i+1, st.first.Tick, st.last.Tick, st.count, st.first.State,
			st.moved, st.first.Vel.Len(), st.last.Vel.Len(), st.first.Input.X, st.first.Input.Y)
	}

	events := s.Events.Recent()
	if len(events) > 0 {
		b.WriteString("\n== events ==\n")
		for _, e := range events {
			fmt.Fprintf(&b, "  T=%d %s\n", e.Tick, e.Message)
		}
	}
	return b.String()
}

func (s *Session) passengerString() string {
	p := s.Taxi.Passenger()
	if p == nil {
		return "<none>"
	}
	ports := s.Taxi.Portals()
	return fmt.Sprintf("#%d %s->%s %s", p.ID, ports[p.From].Name, ports[p.To].Name, p.State)
}

func distString(d float64) string {
	if math.IsInf(d, 1) {
		return "none"
	}
	return fmt.Sprintf("%.2f", d)
}

type reportStage struct {
	count int
	first Snapshot
	last  Snapshot
	moved float64
}

// buildStages groups consecutive snapshots that share a state.
func buildStages(snaps []Snapshot) []reportStage {
	if len(snaps) == 0 {
		return nil
	}
	stages := make([]reportStage, 0, 8)
	start := 0
	for i := 1; i <= len(snaps); i++ {
		if i < len(snaps) && snaps[i].State == snaps[start].State {
			continue
		}
		first, last := snaps[start], snaps[i-1]
		stages = append(stages, reportStage{
			count: i - start,
			first: first,
			last:  last,
			moved: last.Pos.Sub(first.Pos).Len(),
		})
		start = i
	}
	return stages
}

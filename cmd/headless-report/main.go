package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Garsondee/Heli-Taxi/internal/config"
	"github.com/Garsondee/Heli-Taxi/internal/heli"
	"github.com/Garsondee/Heli-Taxi/internal/sim"
	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Runs     int    `help:"Number of headless simulation runs." default:"5"`
	Ticks    int    `help:"Ticks per run." default:"6000"`
	SeedBase int64  `help:"Base RNG seed for run 1." default:"1"`
	SeedStep int64  `help:"Seed increment between runs." default:"1"`
	Scenario string `help:"Scenario name (${enum})." enum:"taxi,idle" default:"taxi"`
	Config   string `help:"YAML config overlaid on the stock settings and level." type:"existingfile" short:"c"`
	Report   bool   `help:"Print the debug report of every run."`
	Debug    bool   `help:"Whether to enable debug logging."`
}

type runStats struct {
	runIndex int
	seed     int64
	stats    sim.Stats

	firstGroundedTick int
	firstBoardTick    int
	firstDeliveryTick int
	firstCrashTick    int

	stateChanges   int
	forcedChanges  int
	hazardHits     int
	impactHits     int
	lostPassengers int
	transitions    map[string]int
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	kong.Parse(&CLI,
		kong.Name("headless-report"),
		kong.Description("run the flight sim without a window and summarise the runs"),
		kong.UsageOnError())

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if CLI.Runs <= 0 {
		fmt.Println("error: --runs must be > 0")
		os.Exit(1)
	}
	if CLI.Ticks <= 0 {
		fmt.Println("error: --ticks must be > 0")
		os.Exit(1)
	}
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Headless Flight Report ===\n")
	fmt.Printf("scenario=%s level=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n",
		CLI.Scenario, cfg.Level.Name, CLI.Runs, CLI.Ticks, CLI.SeedBase, CLI.SeedStep)

	all := make([]runStats, 0, CLI.Runs)
	for i := 0; i < CLI.Runs; i++ {
		seed := CLI.SeedBase + int64(i)*CLI.SeedStep
		rs, ts, err := runScenario(cfg, CLI.Scenario, i+1, seed, CLI.Ticks)
		if err != nil {
			fmt.Printf("error: run %d: %v\n", i+1, err)
			os.Exit(1)
		}
		all = append(all, rs)
		printRun(rs)
		if CLI.Report {
			fmt.Println(ts.DebugReport(200))
		}
	}

	printAggregate(all)
}

func scenarioOptions(name string) ([]sim.SimOption, error) {
	switch name {
	case "taxi":
		return []sim.SimOption{sim.WithAutopilot()}, nil
	case "idle":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported scenario %q (supported: taxi, idle)", name)
	}
}

func runScenario(cfg *config.Config, scenario string, runIndex int, seed int64, ticks int) (runStats, *sim.TestSim, error) {
	opts, err := scenarioOptions(scenario)
	if err != nil {
		return runStats{}, nil, err
	}
	opts = append(opts,
		sim.WithConfig(cfg),
		sim.WithSeed(seed),
		sim.WithLogger(log.Logger),
	)
	ts, err := sim.NewTestSim(opts...)
	if err != nil {
		return runStats{}, nil, err
	}
	ts.RunTicks(ticks)

	rs := summarize(ts.SimLog.Entries())
	rs.runIndex = runIndex
	rs.seed = seed
	rs.stats = ts.Stats()
	return rs, ts, nil
}

// summarize derives event counts and phase markers from a run's log.
func summarize(entries []sim.SimLogEntry) runStats {
	rs := runStats{
		firstGroundedTick: firstTick(entries, "state", "change", "→ "+heli.StateGrounded.String()),
		firstBoardTick:    firstTick(entries, "taxi", string(sim.TaxiBoarded), ""),
		firstDeliveryTick: firstTick(entries, "taxi", string(sim.TaxiDelivered), ""),
		firstCrashTick:    firstTick(entries, "health", "crash", ""),
		transitions:       map[string]int{},
	}
	for _, e := range entries {
		switch e.Category {
		case "state":
			rs.stateChanges++
			if strings.HasSuffix(e.Value, "(forced)") {
				rs.forcedChanges++
			}
			rs.transitions[strings.TrimSuffix(e.Value, " (forced)")]++
		case "health":
			switch e.Key {
			case string(sim.DamageHazard):
				rs.hazardHits++
			case string(sim.DamageImpact):
				rs.impactHits++
			}
		case "taxi":
			if e.Key == string(sim.TaxiLost) {
				rs.lostPassengers++
			}
		}
	}
	return rs
}

func firstTick(entries []sim.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	st := rs.stats
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("phase_markers: grounded=%d board=%d delivery=%d crash=%d\n",
		rs.firstGroundedTick, rs.firstBoardTick, rs.firstDeliveryTick, rs.firstCrashTick)
	fmt.Printf("taxi: delivered=%d earnings=%.1f lost=%d\n", st.Delivered, st.Earnings, rs.lostPassengers)
	fmt.Printf("health: crashes=%d damage=%.1f hazard_hits=%d impact_hits=%d\n",
		st.Crashes, st.DamageTaken, rs.hazardHits, rs.impactHits)
	fmt.Printf("states: changes=%d forced=%d %s\n", rs.stateChanges, rs.forcedChanges, stateShares(st))
	fmt.Printf("top_transitions: %s\n\n", topTransitions(rs.transitions, 4))
}

func printAggregate(all []runStats) {
	var delivered, crashes, changes int
	var earnings, damage float64
	var share [len(heli.States)]float64
	var firstDeliveries []int
	for _, rs := range all {
		delivered += rs.stats.Delivered
		crashes += rs.stats.Crashes
		changes += rs.stateChanges
		earnings += rs.stats.Earnings
		damage += rs.stats.DamageTaken
		for _, st := range heli.States {
			share[st] += rs.stats.StateShare(st)
		}
		firstDeliveries = append(firstDeliveries, rs.firstDeliveryTick)
	}
	n := len(all)

	fmt.Printf("=== Aggregate ===\n")
	fmt.Printf("runs=%d\n", n)
	fmt.Printf("avg_per_run: delivered=%.1f earnings=%.1f crashes=%.1f damage=%.1f state_changes=%.1f\n",
		avg(delivered, n), earnings/float64(n), avg(crashes, n), damage/float64(n), avg(changes, n))
	var parts []string
	for _, st := range heli.States {
		parts = append(parts, fmt.Sprintf("%s=%.1f%%", st, 100*share[st]/float64(n)))
	}
	fmt.Printf("avg_state_time: %s\n", strings.Join(parts, " "))
	fmt.Printf("first_delivery_avg_tick=%s\n", avgTickString(firstDeliveries))
}

func stateShares(st sim.Stats) string {
	parts := make([]string, 0, len(heli.States))
	for _, s := range heli.States {
		parts = append(parts, fmt.Sprintf("%s=%.0f%%", s, 100*st.StateShare(s)))
	}
	return strings.Join(parts, " ")
}

// topTransitions lists the n most frequent transitions, ties by name.
func topTransitions(counts map[string]int, n int) string {
	if len(counts) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s:%d", k, counts[k])
	}
	return strings.Join(parts, ", ")
}

func avg(sum int, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// avgTickString averages the non-negative ticks; -1 marks "never".
func avgTickString(vals []int) string {
	sum, n := 0, 0
	for _, v := range vals {
		if v >= 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f (%d/%d runs)", float64(sum)/float64(n), n, len(vals))
}

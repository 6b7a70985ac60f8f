// Package config loads the game configuration: flight tuning, gameplay
// options and the level layout, all from one YAML document.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Garsondee/Heli-Taxi/internal/heli"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrInvalid is wrapped by every validation failure outside flight tuning.
var ErrInvalid = errors.New("invalid config")

// Point is an [x, y] pair.
type Point [2]float64

// Vec converts p to a heli vector.
func (p Point) Vec() heli.Vec2 { return heli.V(p[0], p[1]) }

type Config struct {
	Flight Flight `yaml:"flight"`
	Game   Game   `yaml:"game"`
	Level  Level  `yaml:"level"`
}

type StateParams struct {
	SpeedMultiplier        float64 `yaml:"speed_multiplier"`
	AccelerationMultiplier float64 `yaml:"acceleration_multiplier"`
	Friction               float64 `yaml:"friction"`
	VerticalThrust         bool    `yaml:"vertical_thrust"`
	HorizontalThrust       bool    `yaml:"horizontal_thrust"`
	Buoyancy               float64 `yaml:"buoyancy"`
}

type States struct {
	Flying   StateParams `yaml:"flying"`
	Grounded StateParams `yaml:"grounded"`
	Wall     StateParams `yaml:"wall"`
	Sliding  StateParams `yaml:"sliding"`
	Water    StateParams `yaml:"water"`
}

type Flight struct {
	MaxHorizontalSpeed         float64 `yaml:"max_horizontal_speed"`
	MaxVerticalSpeed           float64 `yaml:"max_vertical_speed"`
	HorizontalAcceleration     float64 `yaml:"horizontal_acceleration"`
	VerticalAcceleration       float64 `yaml:"vertical_acceleration"`
	RaycastDistance            float64 `yaml:"raycast_distance"`
	RaycastCount               int     `yaml:"raycast_count"`
	RaycastSpan                float64 `yaml:"raycast_span"`
	StickPreventionThreshold   float64 `yaml:"stick_prevention_threshold"`
	SlidingToGroundedThreshold float64 `yaml:"sliding_to_grounded_threshold"`
	WallContactTimeout         float64 `yaml:"wall_contact_timeout"`
	InputDeadzone              float64 `yaml:"input_deadzone"`
	StopEpsilon                float64 `yaml:"stop_epsilon"`
	WallSeparationForce        float64 `yaml:"wall_separation_force"`
	GroundNormalThreshold      float64 `yaml:"ground_normal_threshold"`
	WallNormalThreshold        float64 `yaml:"wall_normal_threshold"`
	GroundedRatio              float64 `yaml:"grounded_ratio"`
	WallRatio                  float64 `yaml:"wall_ratio"`
	Detector                   string  `yaml:"detector"`
	StateSet                   string  `yaml:"state_set"`
	States                     States  `yaml:"states"`
}

type Health struct {
	Max                  float64 `yaml:"max"`
	HazardDamage         float64 `yaml:"hazard_damage"`
	HazardCooldown       float64 `yaml:"hazard_cooldown"`
	ImpactThreshold      float64 `yaml:"impact_threshold"`
	ImpactDamagePerSpeed float64 `yaml:"impact_damage_per_speed"`
}

type Taxi struct {
	BoardingTime float64 `yaml:"boarding_time"`
	PadRadius    float64 `yaml:"pad_radius"`
	BaseFare     float64 `yaml:"base_fare"`
	FarePerUnit  float64 `yaml:"fare_per_unit"`
}

type Game struct {
	Seed     int64   `yaml:"seed"`
	TickRate int     `yaml:"tick_rate"`
	Gravity  float64 `yaml:"gravity"`
	HeliSize Point   `yaml:"heli_size"`
	Health   Health  `yaml:"health"`
	Taxi     Taxi    `yaml:"taxi"`
}

type Block struct {
	Min Point  `yaml:"min"`
	Max Point  `yaml:"max"`
	Tag string `yaml:"tag"`
}

type Water struct {
	Min Point `yaml:"min"`
	Max Point `yaml:"max"`
}

type Portal struct {
	Name string `yaml:"name"`
	Pos  Point  `yaml:"pos"`
}

type Level struct {
	Name    string   `yaml:"name"`
	Spawn   Point    `yaml:"spawn"`
	Blocks  []Block  `yaml:"blocks"`
	Water   []Water  `yaml:"water"`
	Portals []Portal `yaml:"portals"`
}

// Default returns the embedded stock configuration.
func Default() *Config {
	cfg := &Config{}
	if err := decode(defaultYAML, cfg); err != nil {
		panic(fmt.Sprintf("embedded default config: %v", err))
	}
	return cfg
}

// DefaultYAML returns a copy of the embedded stock document.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

// Load reads and parses the file at path. An empty path returns Default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse overlays data onto the defaults and validates the result. A level
// given in data replaces the default level entirely.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	var probe struct {
		Level *yaml.Node `yaml:"level"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if probe.Level != nil {
		cfg.Level = Level{}
	}
	if err := decode(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse: %w", err)
	}
	return nil
}

// Validate checks everything the game needs before building a session.
func (c *Config) Validate() error {
	if _, err := c.Flight.Settings(); err != nil {
		return err
	}
	g := c.Game
	if g.TickRate <= 0 {
		return fmt.Errorf("%w: game.tick_rate must be > 0, got %d", ErrInvalid, g.TickRate)
	}
	if g.Gravity < 0 {
		return fmt.Errorf("%w: game.gravity must be >= 0, got %v", ErrInvalid, g.Gravity)
	}
	if g.HeliSize[0] <= 0 || g.HeliSize[1] <= 0 {
		return fmt.Errorf("%w: game.heli_size must be positive, got %v", ErrInvalid, g.HeliSize)
	}
	if g.Health.Max <= 0 {
		return fmt.Errorf("%w: game.health.max must be > 0", ErrInvalid)
	}
	if g.Health.HazardDamage < 0 || g.Health.HazardCooldown < 0 || g.Health.ImpactThreshold < 0 || g.Health.ImpactDamagePerSpeed < 0 {
		return fmt.Errorf("%w: game.health values must be >= 0", ErrInvalid)
	}
	if g.Taxi.BoardingTime < 0 || g.Taxi.PadRadius <= 0 || g.Taxi.BaseFare < 0 || g.Taxi.FarePerUnit < 0 {
		return fmt.Errorf("%w: game.taxi values out of range", ErrInvalid)
	}
	for i, b := range c.Level.Blocks {
		if _, ok := ParseTag(b.Tag); !ok {
			return fmt.Errorf("%w: level.blocks[%d]: unknown tag %q", ErrInvalid, i, b.Tag)
		}
		if b.Min[0] == b.Max[0] || b.Min[1] == b.Max[1] {
			return fmt.Errorf("%w: level.blocks[%d] has no area", ErrInvalid, i)
		}
	}
	seen := make(map[string]bool, len(c.Level.Portals))
	for i, p := range c.Level.Portals {
		if p.Name == "" {
			return fmt.Errorf("%w: level.portals[%d] has no name", ErrInvalid, i)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate portal %q", ErrInvalid, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// ParseTag maps a level tag name to a heli.Tag. Water is not a block tag.
func ParseTag(name string) (heli.Tag, bool) {
	switch name {
	case "", "solid":
		return heli.TagSolid, true
	case "hazard":
		return heli.TagHazard, true
	default:
		return heli.TagNone, false
	}
}

func (p StateParams) params() heli.StateParameters {
	return heli.StateParameters{
		SpeedMultiplier:        p.SpeedMultiplier,
		AccelerationMultiplier: p.AccelerationMultiplier,
		Friction:               p.Friction,
		VerticalThrust:         p.VerticalThrust,
		HorizontalThrust:       p.HorizontalThrust,
		Buoyancy:               p.Buoyancy,
	}
}

// Settings converts the flight section into validated heli settings.
func (f Flight) Settings() (*heli.Settings, error) {
	s := heli.Settings{
		MaxHorizontalSpeed:         f.MaxHorizontalSpeed,
		MaxVerticalSpeed:           f.MaxVerticalSpeed,
		HorizontalAcceleration:     f.HorizontalAcceleration,
		VerticalAcceleration:       f.VerticalAcceleration,
		RaycastDistance:            f.RaycastDistance,
		RaycastCount:               f.RaycastCount,
		RaycastSpan:                f.RaycastSpan,
		StickPreventionThreshold:   f.StickPreventionThreshold,
		SlidingToGroundedThreshold: f.SlidingToGroundedThreshold,
		WallContactTimeout:         f.WallContactTimeout,
		InputDeadzone:              f.InputDeadzone,
		StopEpsilon:                f.StopEpsilon,
		WallSeparationForce:        f.WallSeparationForce,
		GroundNormalThreshold:      f.GroundNormalThreshold,
		WallNormalThreshold:        f.WallNormalThreshold,
		GroundedRatio:              f.GroundedRatio,
		WallRatio:                  f.WallRatio,
	}
	switch f.Detector {
	case "basic":
		s.Detector = heli.DetectorBasic
	case "extended", "":
		s.Detector = heli.DetectorExtended
	default:
		return nil, fmt.Errorf("%w: flight.detector %q (want basic or extended)", heli.ErrInvalidSettings, f.Detector)
	}
	switch f.StateSet {
	case "full", "":
		s.StateSet = heli.StateSetFull
	case "reduced":
		s.StateSet = heli.StateSetReduced
	default:
		return nil, fmt.Errorf("%w: flight.state_set %q (want full or reduced)", heli.ErrInvalidSettings, f.StateSet)
	}
	s.Params[heli.StateFlying] = f.States.Flying.params()
	s.Params[heli.StateGrounded] = f.States.Grounded.params()
	s.Params[heli.StateWallContact] = f.States.Wall.params()
	s.Params[heli.StateSliding] = f.States.Sliding.params()
	s.Params[heli.StateInWater] = f.States.Water.params()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Physics    PhysicsConfig     `yaml:"physics"`
	Arena      ArenaConfig       `yaml:"arena"`
	Perception PerceptionConfig  `yaml:"perception"`
	Steering   SteeringConfig    `yaml:"steering"`
	Grid       GridConfig        `yaml:"grid"`
	Boss       BossConfig        `yaml:"boss"`
	Turret     TurretConfig      `yaml:"turret"`
	Skittish   SkittishConfig    `yaml:"skittish"`
	Patroller  PatrollerConfig   `yaml:"patroller"`
	Scenario   ScenarioConfig    `yaml:"scenario"`
	Telemetry  TelemetryConfig   `yaml:"telemetry"`
	Archetypes []ArchetypeConfig `yaml:"archetypes"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// PhysicsConfig holds the fixed timestep.
type PhysicsConfig struct {
	DT           float64 `yaml:"dt"`             // seconds per tick
	GridCellSize float64 `yaml:"grid_cell_size"` // spatial index bucket size
}

// ArenaConfig holds the ground-plane extent.
type ArenaConfig struct {
	Width float64 `yaml:"width"` // X extent
	Depth float64 `yaml:"depth"` // Z extent
}

// PerceptionConfig holds sensing defaults.
type PerceptionConfig struct {
	AlertDecay  float64 `yaml:"alert_decay"`  // seconds alert persists after a hostile leaves
	SenseRadius float64 `yaml:"sense_radius"` // proximity enter/exit distance
}

// SteeringConfig holds default force limits.
type SteeringConfig struct {
	MaxVelocity   float64 `yaml:"max_velocity"`
	MaxForce      float64 `yaml:"max_force"`
	RepelRadius   float64 `yaml:"repel_radius"`
	MaxRepelForce float64 `yaml:"max_repel_force"`
}

// GridConfig holds walkability grid generation parameters.
type GridConfig struct {
	Width               int     `yaml:"width"`
	Height              int     `yaml:"height"`
	ObstacleProbability float64 `yaml:"obstacle_probability"`
	Start               [2]int  `yaml:"start"`
	Goal                [2]int  `yaml:"goal"`
	Noise               bool    `yaml:"noise"`           // clustered walls instead of independent cells
	NoiseThreshold      float64 `yaml:"noise_threshold"` // noise below this is a wall
	CellSize            float64 `yaml:"cell_size"`       // world units per cell
}

// BossConfig holds the boss mode ranges in world units and attack timings
// in seconds.
type BossConfig struct {
	MeleeRange      float64 `yaml:"melee_range"`  // melee at or inside
	RangedRange     float64 `yaml:"ranged_range"` // ranged beyond
	DirectHit       float64 `yaml:"direct_hit"`
	Charge          float64 `yaml:"charge"`
	AreaSmash       float64 `yaml:"area_smash"`
	AttackGap       float64 `yaml:"attack_gap"`
	BurstCount      int     `yaml:"burst_count"`
	BurstRate       float64 `yaml:"burst_rate"`
	BurstRecover    float64 `yaml:"burst_recover"`
	SpecialCooldown float64 `yaml:"special_cooldown"`
	SpecialRecover  float64 `yaml:"special_recover"`
}

// TurretConfig holds turret timing.
type TurretConfig struct {
	Cooldown float64 `yaml:"cooldown"`
}

// SkittishConfig holds the flee and rest durations in seconds.
type SkittishConfig struct {
	Flee float64 `yaml:"flee"`
	Rest float64 `yaml:"rest"`
}

// PatrollerConfig holds patrol route and pursuit settings.
type PatrollerConfig struct {
	WaypointReach float64 `yaml:"waypoint_reach"` // world units
	ChaseTimeout  float64 `yaml:"chase_timeout"`  // seconds pursued after losing sight
}

// ScenarioConfig describes the headless scenario population.
type ScenarioConfig struct {
	Hostiles     int                `yaml:"hostiles"`
	HostileSpeed float64            `yaml:"hostile_speed"`
	Obstacles    int                `yaml:"obstacles"`
	Waypoints    int                `yaml:"waypoints"`
	Agents       []AgentSpawnConfig `yaml:"agents"`
}

// AgentSpawnConfig spawns Count agents of one archetype.
type AgentSpawnConfig struct {
	Archetype string `yaml:"archetype"`
	Count     int    `yaml:"count"`
}

// ArchetypeConfig overrides the perception and steering defaults for one
// enemy type. Zero fields take the section defaults.
type ArchetypeConfig struct {
	Name          string  `yaml:"name"`
	SenseRadius   float64 `yaml:"sense_radius"`
	MaxVelocity   float64 `yaml:"max_velocity"`
	MaxForce      float64 `yaml:"max_force"`
	RepelRadius   float64 `yaml:"repel_radius"`
	MaxRepelForce float64 `yaml:"max_repel_force"`
	ViewAngle     float64 `yaml:"view_angle"` // degrees, 0 sees all round
	Grounded      bool    `yaml:"grounded"`
}

// ViewAngleRad returns the view cone width in radians.
func (a *ArchetypeConfig) ViewAngleRad() float64 {
	return a.ViewAngle * math.Pi / 180
}

// TelemetryConfig holds output cadence.
type TelemetryConfig struct {
	SampleEvery int     `yaml:"sample_every"` // ticks between agents.csv rows
	PerfWindow  int     `yaml:"perf_window"`  // ticks in the perf rolling window
	StatsWindow float64 `yaml:"stats_window"` // seconds between stats logs
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ArchetypeIndex map[string]int // name -> index into Archetypes
	StatsEvery     int            // StatsWindow in ticks
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate reports the first configuration error.
func (c *Config) Validate() error {
	switch {
	case c.Physics.DT <= 0:
		return fmt.Errorf("%w: physics.dt must be positive, got %g", ErrInvalid, c.Physics.DT)
	case c.Physics.GridCellSize <= 0:
		return fmt.Errorf("%w: physics.grid_cell_size must be positive", ErrInvalid)
	case c.Arena.Width <= 0 || c.Arena.Depth <= 0:
		return fmt.Errorf("%w: arena must have positive size, got %gx%g", ErrInvalid, c.Arena.Width, c.Arena.Depth)
	case c.Steering.MaxVelocity < 0 || c.Steering.MaxForce < 0 ||
		c.Steering.RepelRadius < 0 || c.Steering.MaxRepelForce < 0:
		return fmt.Errorf("%w: steering limits must not be negative", ErrInvalid)
	case c.Grid.Width <= 0 || c.Grid.Height <= 0:
		return fmt.Errorf("%w: grid has zero size %dx%d", ErrInvalid, c.Grid.Width, c.Grid.Height)
	case c.Grid.ObstacleProbability < 0 || c.Grid.ObstacleProbability > 1:
		return fmt.Errorf("%w: grid.obstacle_probability %g outside [0,1]", ErrInvalid, c.Grid.ObstacleProbability)
	case !c.Grid.inBounds(c.Grid.Start):
		return fmt.Errorf("%w: grid.start %v outside %dx%d", ErrInvalid, c.Grid.Start, c.Grid.Width, c.Grid.Height)
	case !c.Grid.inBounds(c.Grid.Goal):
		return fmt.Errorf("%w: grid.goal %v outside %dx%d", ErrInvalid, c.Grid.Goal, c.Grid.Width, c.Grid.Height)
	}

	seen := make(map[string]bool, len(c.Archetypes))
	for _, a := range c.Archetypes {
		if a.Name == "" {
			return fmt.Errorf("%w: archetype without a name", ErrInvalid)
		}
		if seen[a.Name] {
			return fmt.Errorf("%w: duplicate archetype %q", ErrInvalid, a.Name)
		}
		seen[a.Name] = true
		if a.ViewAngle < 0 || a.ViewAngle > 360 {
			return fmt.Errorf("%w: archetype %q view_angle %g outside [0,360]", ErrInvalid, a.Name, a.ViewAngle)
		}
	}
	if c.Boss.MeleeRange > c.Boss.RangedRange {
		return fmt.Errorf("%w: boss.melee_range %g beyond ranged_range %g", ErrInvalid, c.Boss.MeleeRange, c.Boss.RangedRange)
	}
	if c.Scenario.Waypoints < 0 {
		return fmt.Errorf("%w: negative scenario.waypoints", ErrInvalid)
	}
	for _, s := range c.Scenario.Agents {
		if s.Count < 0 {
			return fmt.Errorf("%w: negative count for %q", ErrInvalid, s.Archetype)
		}
	}
	return nil
}

func (g GridConfig) inBounds(p [2]int) bool {
	return p[0] >= 0 && p[0] < g.Width && p[1] >= 0 && p[1] < g.Height
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Perception.AlertDecay <= 0 {
		c.Perception.AlertDecay = 5.0
	}

	// Archetypes inherit the section defaults for anything unset.
	for i := range c.Archetypes {
		arch := &c.Archetypes[i]
		if arch.SenseRadius == 0 {
			arch.SenseRadius = c.Perception.SenseRadius
		}
		if arch.MaxVelocity == 0 {
			arch.MaxVelocity = c.Steering.MaxVelocity
		}
		if arch.MaxForce == 0 {
			arch.MaxForce = c.Steering.MaxForce
		}
		if arch.RepelRadius == 0 {
			arch.RepelRadius = c.Steering.RepelRadius
		}
		if arch.MaxRepelForce == 0 {
			arch.MaxRepelForce = c.Steering.MaxRepelForce
		}
	}

	c.Derived.ArchetypeIndex = make(map[string]int, len(c.Archetypes))
	for i, arch := range c.Archetypes {
		c.Derived.ArchetypeIndex[arch.Name] = i
	}

	c.Derived.StatsEvery = int(math.Round(c.Telemetry.StatsWindow / c.Physics.DT))
	if c.Derived.StatsEvery < 1 {
		c.Derived.StatsEvery = 1
	}
}

// SetStatsWindow overrides the stats window and its derived tick count.
func (c *Config) SetStatsWindow(seconds float64) {
	c.Telemetry.StatsWindow = seconds
	c.computeDerived()
}

// Archetype returns the archetype named name.
func (c *Config) Archetype(name string) (*ArchetypeConfig, bool) {
	i, ok := c.Derived.ArchetypeIndex[name]
	if !ok {
		return nil, false
	}
	return &c.Archetypes[i], true
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

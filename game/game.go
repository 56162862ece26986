// Package game owns the ECS world and the fixed-timestep loop that drives
// every agent's perception, policy and steering.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/sentry/components"
	"github.com/pthm-cable/sentry/config"
	"github.com/pthm-cable/sentry/systems"
	"github.com/pthm-cable/sentry/telemetry"
)

// Options configures a Game.
type Options struct {
	Config    *config.Config // nil = config.Cfg()
	Seed      int64
	LogStats  bool
	OutputDir string
	Logger    *slog.Logger // nil = slog.Default()
	// EmptyWorld skips spawning the configured scenario.
	EmptyWorld bool
}

// brain is the per-agent kernel state. It is never shared between agents.
type brain struct {
	agentID  uint32
	tracker  *systems.PerceptionTracker
	steering *systems.SteeringEngine
	policy   systems.Policy

	// inRange holds the class each entity had when it entered sensing
	// range, so the exit event carries the same class.
	inRange map[ecs.Entity]components.Class

	decision  systems.Decision
	wasAlert  bool
	hadTarget bool

	neighbors []systems.Neighbor
	obstacles []r3.Vec
}

// Game holds the complete simulation state.
type Game struct {
	cfg    *config.Config
	world  *ecs.World
	rng    *rand.Rand
	logger *slog.Logger

	agentMapper    *ecs.Map3[components.Position, components.Velocity, components.Agent]
	hostileMapper  *ecs.Map4[components.Position, components.Velocity, components.Classification, components.Scripted]
	obstacleMapper *ecs.Map2[components.Position, components.Classification]
	agentFilter    *ecs.Filter3[components.Position, components.Velocity, components.Agent]
	classFilter    *ecs.Filter2[components.Position, components.Classification]
	classMap       *ecs.Map[components.Classification]

	locator *systems.WorldLocator
	spatial *systems.SpatialGrid
	physics *systems.PhysicsSystem
	bounds  systems.Bounds

	navGrid *systems.Grid
	route   systems.Path
	patrol  []r3.Vec

	brains map[ecs.Entity]*brain
	seen   map[ecs.Entity]struct{}
	nextID uint32
	tick   int32

	perf     *telemetry.PerfCollector
	output   *telemetry.OutputManager
	counters telemetry.Counters
	events   []telemetry.Event
	logStats bool
}

// NewGame creates a game, builds the patrol grid and spawns the scenario.
// Configuration errors (bad grid endpoints, unknown archetypes, unwritable
// output) abort construction.
func NewGame(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	world := ecs.NewWorld()
	bounds := systems.Bounds{Width: cfg.Arena.Width, Depth: cfg.Arena.Depth}

	g := &Game{
		cfg:    cfg,
		world:  world,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		logger: logger,

		agentMapper:    ecs.NewMap3[components.Position, components.Velocity, components.Agent](world),
		hostileMapper:  ecs.NewMap4[components.Position, components.Velocity, components.Classification, components.Scripted](world),
		obstacleMapper: ecs.NewMap2[components.Position, components.Classification](world),
		agentFilter:    ecs.NewFilter3[components.Position, components.Velocity, components.Agent](world),
		classFilter:    ecs.NewFilter2[components.Position, components.Classification](world),
		classMap:       ecs.NewMap[components.Classification](world),

		locator: systems.NewWorldLocator(world),
		spatial: systems.NewSpatialGrid(bounds.Width, bounds.Depth, cfg.Physics.GridCellSize),
		physics: systems.NewPhysicsSystem(world, bounds),
		bounds:  bounds,

		brains: make(map[ecs.Entity]*brain),
		seen:   make(map[ecs.Entity]struct{}),
		nextID: 1,

		perf:     telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		logStats: opts.LogStats,
	}

	if err := g.buildPatrolRoute(); err != nil {
		return nil, err
	}

	out, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.output = out
	if err := g.output.WriteConfig(cfg); err != nil {
		g.output.Close()
		return nil, err
	}

	if !opts.EmptyWorld {
		if err := g.spawnScenario(); err != nil {
			g.output.Close()
			return nil, err
		}
	}
	return g, nil
}

// buildPatrolRoute generates the walkability grid and the BFS route that
// patrollers walk.
func (g *Game) buildPatrolRoute() error {
	gc := g.cfg.Grid
	start := systems.Point{X: gc.Start[0], Y: gc.Start[1]}
	goal := systems.Point{X: gc.Goal[0], Y: gc.Goal[1]}

	var (
		grid *systems.Grid
		err  error
	)
	if gc.Noise {
		grid, err = systems.BuildNoiseGrid(gc.Width, gc.Height, gc.NoiseThreshold, start, goal, g.rng.Int63())
	} else {
		grid, err = systems.BuildGrid(gc.Width, gc.Height, gc.ObstacleProbability, start, goal, g.rng)
	}
	if err != nil {
		return fmt.Errorf("building patrol grid: %w", err)
	}
	g.navGrid = grid

	path, err := systems.FindPath(grid, start, goal)
	if err != nil {
		return fmt.Errorf("building patrol route: %w", err)
	}
	if path == nil {
		g.logger.Warn("patrol goal unreachable", "start", start.String(), "goal", goal.String(),
			"walkable", grid.WalkableCount())
		return nil
	}
	g.route = path
	g.patrol = path.Waypoints(gc.CellSize)
	g.logger.Info("patrol route built", "cells", path.Len())
	return nil
}

// Step advances the simulation by one fixed tick.
func (g *Game) Step() {
	dt := g.cfg.Physics.DT

	g.perf.StartTick()

	g.perf.StartPhase(telemetry.PhaseSpatialGrid)
	g.updateSpatialGrid()

	g.perf.StartPhase(telemetry.PhaseProximity)
	g.updateProximity()

	g.perf.StartPhase(telemetry.PhaseBehaviorPhysics)
	g.updateBehavior(dt)

	g.perf.StartPhase(telemetry.PhasePhysics)
	g.physics.Update(dt)

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perf.EndTick()
	g.tick++
}

// Run steps until maxTicks (0 = unlimited) or ctx is done.
func (g *Game) Run(ctx context.Context, maxTicks int) error {
	for maxTicks <= 0 || int(g.tick) < maxTicks {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.Step()
	}
	g.logger.Info("max ticks reached", "tick", g.tick)
	return nil
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 {
	return g.tick
}

// Time returns simulated seconds elapsed.
func (g *Game) Time() float64 {
	return float64(g.tick) * g.cfg.Physics.DT
}

// Counters returns event totals so far.
func (g *Game) Counters() telemetry.Counters {
	return g.counters
}

// Route returns the patrol path, nil when the goal was unreachable.
func (g *Game) Route() systems.Path {
	return g.route
}

// NavGrid returns the walkability grid.
func (g *Game) NavGrid() *systems.Grid {
	return g.navGrid
}

// Close flushes and closes run output.
func (g *Game) Close() error {
	return g.output.Close()
}

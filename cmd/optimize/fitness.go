package main

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/sentry/config"
	"github.com/pthm-cable/sentry/game"
	"github.com/pthm-cable/sentry/systems"
)

// Pursuit trial geometry.
const (
	trialObstacles   = 10
	captureDistance  = 1.0  // chaser within this of the hostile ends the trial
	collisionRadius  = 0.75 // chaser this close to an obstacle counts as a hit
	collisionPenalty = 2.0  // seconds of fitness per second spent colliding
	trialSenseRadius = 1e4  // the chaser always knows where the hostile is
)

// FitnessEvaluator runs headless pursuit trials and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	configPath string

	mu          sync.Mutex
	bestFitness float64
	bestTrials  []TrialResult
	lastCapture float64 // fraction of seeds captured in the most recent Evaluate
}

// NewFitnessEvaluator creates a new evaluator. Every trial loads a fresh
// config from configPath (empty = defaults).
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, configPath string) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		configPath:  configPath,
		bestFitness: math.Inf(1),
	}
}

// TrialResult is the outcome of one seeded pursuit, one row of
// best_trials.csv.
type TrialResult struct {
	Seed         int64   `csv:"seed"`
	Captured     bool    `csv:"captured"`
	CaptureSec   float64 `csv:"capture_sec"`
	CollisionSec float64 `csv:"collision_sec"`
	FinalDist    float64 `csv:"final_dist"`
	Fitness      float64 `csv:"fitness"`
}

// BestTrials returns the per-seed results of the best evaluation.
func (fe *FitnessEvaluator) BestTrials() []TrialResult {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestTrials
}

// LastCaptureRate returns the capture fraction from the most recent evaluation.
func (fe *FitnessEvaluator) LastCaptureRate() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastCapture
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the mean time to capture plus a collision penalty; a trial
// that never captures scores the full trial length plus the final distance.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]TrialResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			r, err := fe.runTrial(x, s)
			if err != nil {
				slog.Error("trial failed", "seed", s, "error", err)
				r = TrialResult{Seed: s, Fitness: math.Inf(1)}
			}
			results[idx] = r
		}(i, seed)
	}
	wg.Wait()

	var total float64
	captured := 0
	for _, r := range results {
		total += r.Fitness
		if r.Captured {
			captured++
		}
	}
	n := float64(len(results))
	avg := total / n

	fe.mu.Lock()
	if avg < fe.bestFitness {
		fe.bestFitness = avg
		fe.bestTrials = results
	}
	fe.lastCapture = float64(captured) / n
	fe.mu.Unlock()

	return avg
}

// runTrial places one chaser, one moving hostile and a field of obstacles
// and steps until capture or maxTicks.
func (fe *FitnessEvaluator) runTrial(x []float64, seed int64) (TrialResult, error) {
	result := TrialResult{Seed: seed}

	cfg, err := config.Load(fe.configPath)
	if err != nil {
		return result, err
	}
	fe.params.ApplyToConfig(cfg, x)
	arch, ok := cfg.Archetype(tunedArchetype)
	if !ok {
		return result, fmt.Errorf("%w: %q", systems.ErrUnknownArchetype, tunedArchetype)
	}
	arch.SenseRadius = trialSenseRadius

	g, err := game.NewGame(game.Options{
		Config:     cfg,
		Seed:       seed,
		Logger:     slog.New(slog.DiscardHandler),
		EmptyWorld: true,
	})
	if err != nil {
		return result, err
	}
	defer g.Close()

	rng := rand.New(rand.NewSource(seed))
	randPos := func() r3.Vec {
		return r3.Vec{X: rng.Float64() * cfg.Arena.Width, Z: rng.Float64() * cfg.Arena.Depth}
	}

	obstacles := make([]r3.Vec, trialObstacles)
	for i := range obstacles {
		obstacles[i] = randPos()
		g.SpawnObstacle(obstacles[i])
	}
	chaser, err := g.SpawnAgent(tunedArchetype, randPos())
	if err != nil {
		return result, err
	}
	heading := rng.Float64() * 2 * math.Pi
	hostile := g.SpawnHostile(randPos(), r3.Vec{
		X: math.Cos(heading) * cfg.Scenario.HostileSpeed,
		Z: math.Sin(heading) * cfg.Scenario.HostileSpeed,
	})

	dt := cfg.Physics.DT
	for g.Tick() < fe.maxTicks {
		g.Step()

		cp, hp, ok := positions(g, chaser, hostile)
		if !ok {
			return result, fmt.Errorf("trial entities vanished at tick %d", g.Tick())
		}
		for _, o := range obstacles {
			if systems.WithinRadius(cp, o, collisionRadius) {
				result.CollisionSec += dt
				break
			}
		}
		result.FinalDist = systems.Distance(cp, hp)
		if result.FinalDist <= captureDistance {
			result.Captured = true
			result.CaptureSec = g.Time()
			break
		}
	}

	if result.Captured {
		result.Fitness = result.CaptureSec
	} else {
		result.Fitness = float64(fe.maxTicks)*dt + result.FinalDist
	}
	result.Fitness += collisionPenalty * result.CollisionSec
	return result, nil
}

func positions(g *game.Game, a, b ecs.Entity) (r3.Vec, r3.Vec, bool) {
	pa, ok := g.Position(a)
	if !ok {
		return r3.Vec{}, r3.Vec{}, false
	}
	pb, ok := g.Position(b)
	return pa, pb, ok
}

package game

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/sentry/systems"
)

// randomGroundPos returns a uniformly random point on the arena floor.
func (g *Game) randomGroundPos() r3.Vec {
	return r3.Vec{
		X: g.rng.Float64() * g.bounds.Width,
		Z: g.rng.Float64() * g.bounds.Depth,
	}
}

// spawnScenario creates the configured hostiles, obstacles and agents.
func (g *Game) spawnScenario() error {
	sc := g.cfg.Scenario

	for i := 0; i < sc.Hostiles; i++ {
		heading := g.rng.Float64() * 2 * math.Pi
		vel := r3.Vec{X: math.Cos(heading) * sc.HostileSpeed, Z: math.Sin(heading) * sc.HostileSpeed}
		g.SpawnHostile(g.randomGroundPos(), vel)
	}
	for i := 0; i < sc.Obstacles; i++ {
		g.SpawnObstacle(g.randomGroundPos())
	}
	for i := 0; i < sc.Waypoints; i++ {
		g.SpawnWaypoint(g.randomGroundPos())
	}

	for _, group := range sc.Agents {
		for i := 0; i < group.Count; i++ {
			pos := g.randomGroundPos()
			if group.Archetype == "patroller" && len(g.patrol) > 0 {
				pos = g.patrol[0]
			}
			if _, err := g.SpawnAgent(group.Archetype, pos); err != nil {
				return fmt.Errorf("spawning scenario: %w", err)
			}
		}
	}

	g.logger.Info("scenario spawned",
		"hostiles", sc.Hostiles,
		"obstacles", sc.Obstacles,
		"waypoints", sc.Waypoints,
		"agents", len(g.brains),
	)
	return nil
}

// Despawn removes an entity. Agents lose their brain with it; other agents'
// trackers drop the entity on their next tick.
func (g *Game) Despawn(e ecs.Entity) {
	if !g.locator.Alive(e) {
		return
	}
	if b, ok := g.brains[e]; ok {
		g.logger.Debug("despawned agent", "agent", b.agentID)
		delete(g.brains, e)
	}
	g.world.RemoveEntity(e)
}

// AgentCount returns the number of live agents.
func (g *Game) AgentCount() int {
	return len(g.brains)
}

// Alert reports whether the agent entity is alert, false for non-agents.
func (g *Game) Alert(e ecs.Entity) bool {
	b, ok := g.brains[e]
	return ok && b.tracker.IsAlert()
}

// Decision returns the agent's most recent policy decision.
func (g *Game) Decision(e ecs.Entity) (systems.Decision, bool) {
	b, ok := g.brains[e]
	if !ok {
		return systems.Decision{}, false
	}
	return b.decision, true
}

// Position returns the position of e, false once it is gone.
func (g *Game) Position(e ecs.Entity) (r3.Vec, bool) {
	return g.locator.Position(e)
}

package game

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/sentry/components"
	"github.com/pthm-cable/sentry/systems"
)

// SpawnAgent creates an AI agent of the named archetype at pos, with its own
// perception tracker, steering engine and policy.
func (g *Game) SpawnAgent(archetype string, pos r3.Vec) (ecs.Entity, error) {
	arch, ok := g.cfg.Archetype(archetype)
	if !ok {
		return ecs.Entity{}, fmt.Errorf("%w: %q", systems.ErrUnknownArchetype, archetype)
	}

	reach := g.cfg.Patroller.WaypointReach
	if reach <= 0 {
		reach = g.cfg.Grid.CellSize / 2
	}
	bc := g.cfg.Boss
	policy, err := systems.SelectPolicy(archetype, systems.PolicyOptions{
		TurretCooldown: g.cfg.Turret.Cooldown,
		Boss: systems.BossTimings{
			MeleeRange:      bc.MeleeRange,
			RangedRange:     bc.RangedRange,
			DirectHit:       bc.DirectHit,
			Charge:          bc.Charge,
			AreaSmash:       bc.AreaSmash,
			AttackGap:       bc.AttackGap,
			BurstCount:      bc.BurstCount,
			BurstRate:       bc.BurstRate,
			BurstRecover:    bc.BurstRecover,
			SpecialCooldown: bc.SpecialCooldown,
			SpecialRecover:  bc.SpecialRecover,
		},
		Skittish: systems.SkittishTimings{
			Flee: g.cfg.Skittish.Flee,
			Rest: g.cfg.Skittish.Rest,
		},
		Patrol:        g.patrol,
		WaypointReach: reach,
		ChaseTimeout:  g.cfg.Patroller.ChaseTimeout,
	})
	if err != nil {
		return ecs.Entity{}, err
	}

	id := g.nextID
	g.nextID++

	p := components.Position{}
	p.Set(pos)
	vel := components.Velocity{}
	agent := components.Agent{
		ID:            id,
		Archetype:     archetype,
		SenseRadius:   arch.SenseRadius,
		MaxVelocity:   arch.MaxVelocity,
		MaxForce:      arch.MaxForce,
		RepelRadius:   arch.RepelRadius,
		MaxRepelForce: arch.MaxRepelForce,
		ViewAngle:     arch.ViewAngleRad(),
		Grounded:      arch.Grounded,
	}
	e := g.agentMapper.NewEntity(&p, &vel, &agent)

	tracker := systems.NewPerceptionTracker(g.locator, g.cfg.Perception.AlertDecay)
	tracker.SetLogger(g.logger.With("agent", id))

	g.brains[e] = &brain{
		agentID: id,
		tracker: tracker,
		steering: systems.NewSteeringEngine(systems.SteeringParams{
			MaxVelocity:   agent.MaxVelocity,
			MaxForce:      agent.MaxForce,
			RepelRadius:   agent.RepelRadius,
			MaxRepelForce: agent.MaxRepelForce,
		}),
		policy:  policy,
		inRange: make(map[ecs.Entity]components.Class),
	}

	g.logger.Debug("spawned agent", "agent", id, "archetype", archetype,
		"x", pos.X, "z", pos.Z)
	return e, nil
}

// SpawnHostile creates a player-like hostile moving with a fixed velocity.
func (g *Game) SpawnHostile(pos, vel r3.Vec) ecs.Entity {
	p := components.Position{}
	p.Set(pos)
	v := components.Velocity{}
	v.Set(vel)
	return g.hostileMapper.NewEntity(&p, &v,
		&components.Classification{Class: components.ClassHostile}, &components.Scripted{})
}

// SpawnObstacle creates a static obstacle.
func (g *Game) SpawnObstacle(pos r3.Vec) ecs.Entity {
	p := components.Position{}
	p.Set(pos)
	return g.obstacleMapper.NewEntity(&p, &components.Classification{Class: components.ClassObstacle})
}

// SpawnWaypoint creates a point of interest agents steer toward without
// becoming alert.
func (g *Game) SpawnWaypoint(pos r3.Vec) ecs.Entity {
	p := components.Position{}
	p.Set(pos)
	return g.obstacleMapper.NewEntity(&p, &components.Classification{Class: components.ClassWaypoint})
}

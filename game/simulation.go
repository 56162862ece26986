package game

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/sentry/components"
	"github.com/pthm-cable/sentry/systems"
	"github.com/pthm-cable/sentry/telemetry"
)

// updateSpatialGrid rebuilds the proximity index over classified entities.
func (g *Game) updateSpatialGrid() {
	g.spatial.Clear()

	query := g.classFilter.Query()
	for query.Next() {
		pos, class := query.Get()
		if class.Class == components.ClassNone {
			continue
		}
		g.spatial.Insert(query.Entity(), pos.Vec())
	}
}

// updateProximity turns sensing-radius membership into enter/exit events.
// Events for a tick are delivered before the tracker's Tick in
// updateBehavior. Entities that vanished get no exit event; the tracker
// evicts them lazily.
func (g *Game) updateProximity() {
	query := g.agentFilter.Query()
	for query.Next() {
		e := query.Entity()
		pos, _, agent := query.Get()
		b := g.brains[e]
		if b == nil {
			continue
		}

		clear(g.seen)
		b.neighbors = g.spatial.QueryRadiusInto(b.neighbors[:0], pos.Vec(), agent.SenseRadius, e)
		for _, n := range b.neighbors {
			g.seen[n.E] = struct{}{}
			if _, tracked := b.inRange[n.E]; tracked {
				continue
			}
			class := g.classMap.Get(n.E).Class
			b.inRange[n.E] = class
			b.tracker.OnEnter(n.E, class)
		}

		for other, class := range b.inRange {
			if _, ok := g.seen[other]; ok {
				continue
			}
			delete(b.inRange, other)
			if g.locator.Alive(other) {
				b.tracker.OnExit(other, class)
			}
		}
	}
}

// updateBehavior ticks each agent's tracker, asks its policy for a decision
// and integrates the resulting steering force into its velocity.
func (g *Game) updateBehavior(dt float64) {
	query := g.agentFilter.Query()
	for query.Next() {
		e := query.Entity()
		pos, vel, agent := query.Get()
		b := g.brains[e]
		if b == nil {
			continue
		}

		self := pos.Vec()
		b.tracker.Tick(dt, self)

		ctx := systems.BehaviorContext{
			Now:   b.tracker.Now(),
			Self:  self,
			Alert: b.tracker.IsAlert(),
		}
		if target, ok := b.tracker.NearestTarget(); ok {
			if tp, ok := g.locator.Position(target); ok && inView(agent, self, tp) {
				ctx.HasTarget = true
				ctx.TargetPos = tp
				if tv, ok := g.locator.Velocity(target); ok {
					ctx.TargetVel = &tv
				}
			}
		}
		if agent.Grounded {
			ctx.Self = systems.Flatten(ctx.Self)
			ctx.TargetPos = systems.Flatten(ctx.TargetPos)
			if ctx.TargetVel != nil {
				flat := systems.Flatten(*ctx.TargetVel)
				ctx.TargetVel = &flat
			}
		}

		dec := b.policy.Decide(&ctx)
		g.recordTransitions(b, &ctx, dec)
		b.decision = dec

		if !dec.Move {
			vel.Set(r3.Vec{})
			continue
		}

		b.obstacles = b.tracker.ObstaclePositions(b.obstacles)
		if agent.Grounded {
			for i := range b.obstacles {
				b.obstacles[i] = systems.Flatten(b.obstacles[i])
			}
		}

		out := b.steering.ComputeForce(
			systems.SteeringAgent{Position: ctx.Self, Velocity: vel.Vec()},
			systems.SteeringRequest{
				Target:    &systems.SteeringTarget{Position: dec.Goal, Velocity: dec.GoalVel},
				Action:    dec.Action,
				Obstacles: b.obstacles,
			},
		)
		if out.Stop {
			vel.Set(r3.Vec{})
			continue
		}

		force := out.Force
		if agent.Grounded {
			force = systems.Flatten(force)
		}
		v := systems.Integrate(vel.Vec(), force, dt, agent.MaxVelocity)
		vel.Set(v)
		if r3.Norm(v) > headingEpsilon {
			agent.Forward = systems.Direction(r3.Vec{}, v)
		}
	}
}

// headingEpsilon is the speed below which an agent keeps its last heading.
const headingEpsilon = 1e-6

// inView applies the agent's view cone. Grounded agents judge it on the
// ground plane.
func inView(agent *components.Agent, self, target r3.Vec) bool {
	if agent.Grounded {
		self, target = systems.Flatten(self), systems.Flatten(target)
	}
	return systems.InViewCone(self, agent.Forward, target, agent.ViewAngle)
}

// recordTransitions queues events for alert and target changes and shots.
func (g *Game) recordTransitions(b *brain, ctx *systems.BehaviorContext, dec systems.Decision) {
	emit := func(t telemetry.EventType) {
		g.counters.Record(t)
		g.events = append(g.events, telemetry.NewEvent(g.tick, b.agentID, t, dec.Phase, ctx.Now))
	}

	if ctx.Alert != b.wasAlert {
		if ctx.Alert {
			emit(telemetry.EventAlertRaised)
		} else {
			emit(telemetry.EventAlertDecayed)
		}
		b.wasAlert = ctx.Alert
	}
	if ctx.HasTarget != b.hadTarget {
		if ctx.HasTarget {
			emit(telemetry.EventTargetAcquired)
		} else {
			emit(telemetry.EventTargetLost)
		}
		b.hadTarget = ctx.HasTarget
	}
	if dec.Fire {
		emit(telemetry.EventFire)
	}
}

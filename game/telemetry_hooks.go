package game

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/sentry/systems"
	"github.com/pthm-cable/sentry/telemetry"
)

// flushTelemetry writes sampled agent rows, the tick's events and, once per
// stats window, the perf row.
func (g *Game) flushTelemetry() {
	every := g.cfg.Telemetry.SampleEvery
	if every > 0 && int(g.tick)%every == 0 {
		if err := g.output.WriteAgentSamples(g.sampleAgents()); err != nil {
			slog.Error("failed to write agent samples", "error", err)
		}
	}

	if len(g.events) > 0 {
		if err := g.output.WriteEvents(g.events); err != nil {
			slog.Error("failed to write events", "error", err)
		}
		g.events = g.events[:0]
	}

	if (int(g.tick)+1)%g.cfg.Derived.StatsEvery != 0 {
		return
	}
	perfStats := g.perf.Stats()
	if g.logStats {
		g.logger.Info("perf", "tick", g.tick, "stats", perfStats)
		g.logWorldState()
	}
	if err := g.output.WritePerf(perfStats, g.tick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// sampleAgents snapshots every agent for agents.csv.
func (g *Game) sampleAgents() []telemetry.AgentSample {
	samples := make([]telemetry.AgentSample, 0, len(g.brains))

	query := g.agentFilter.Query()
	for query.Next() {
		pos, vel, agent := query.Get()
		b := g.brains[query.Entity()]
		if b == nil {
			continue
		}

		s := telemetry.AgentSample{
			Tick:       g.tick,
			AgentID:    agent.ID,
			Archetype:  agent.Archetype,
			X:          pos.X,
			Y:          pos.Y,
			Z:          pos.Z,
			Speed:      r3.Norm(vel.Vec()),
			Alert:      b.tracker.IsAlert(),
			TargetDist: -1,
			Obstacles:  len(b.tracker.Obstacles()),
			Phase:      b.decision.Phase,
		}
		if target, ok := b.tracker.NearestTarget(); ok {
			if tp, ok := g.locator.Position(target); ok {
				s.HasTarget = true
				s.TargetDist = systems.Distance(pos.Vec(), tp)
			}
		}
		samples = append(samples, s)
	}
	return samples
}

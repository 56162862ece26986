package game

import "github.com/pthm-cable/sentry/components"

// logWorldState logs a summary of the current world state.
func (g *Game) logWorldState() {
	var alert, targeting, firing int
	query := g.agentFilter.Query()
	for query.Next() {
		b := g.brains[query.Entity()]
		if b == nil {
			continue
		}
		if b.tracker.IsAlert() {
			alert++
		}
		if b.tracker.TargetDetected() {
			targeting++
		}
		if b.decision.Fire {
			firing++
		}
	}

	var hostiles, obstacles int
	cq := g.classFilter.Query()
	for cq.Next() {
		_, class := cq.Get()
		switch class.Class {
		case components.ClassHostile:
			hostiles++
		case components.ClassObstacle:
			obstacles++
		}
	}

	g.logger.Info("world",
		"tick", g.tick,
		"time", g.Time(),
		"agents", len(g.brains),
		"alert", alert,
		"targeting", targeting,
		"firing", firing,
		"hostiles", hostiles,
		"obstacles", obstacles,
		"alerts_raised", g.counters.AlertsRaised,
		"alerts_decayed", g.counters.AlertsDecayed,
		"shots", g.counters.Shots,
	)
}

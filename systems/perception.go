package systems

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/sentry/components"
)

// DefaultAlertDecay is how long an agent stays alert after a hostile leaves.
const DefaultAlertDecay = 5.0

// EntityLocator resolves entity references supplied by the host world.
// A reference is stale once Alive reports false or Position fails.
type EntityLocator interface {
	Alive(e ecs.Entity) bool
	Position(e ecs.Entity) (r3.Vec, bool)
}

// entitySet is an insertion-ordered set of entities.
// Iteration order is the order of first insertion.
type entitySet struct {
	order []ecs.Entity
	index map[ecs.Entity]int
}

func newEntitySet() entitySet {
	return entitySet{index: make(map[ecs.Entity]int)}
}

func (s *entitySet) add(e ecs.Entity) bool {
	if _, ok := s.index[e]; ok {
		return false
	}
	s.index[e] = len(s.order)
	s.order = append(s.order, e)
	return true
}

func (s *entitySet) contains(e ecs.Entity) bool {
	_, ok := s.index[e]
	return ok
}

func (s *entitySet) remove(e ecs.Entity) bool {
	i, ok := s.index[e]
	if !ok {
		return false
	}
	delete(s.index, e)
	copy(s.order[i:], s.order[i+1:])
	s.order = s.order[:len(s.order)-1]
	for j := i; j < len(s.order); j++ {
		s.index[s.order[j]] = j
	}
	return true
}

// retain keeps only members for which keep returns true, preserving order.
// drop is called for every member removed.
func (s *entitySet) retain(keep func(ecs.Entity) bool, drop func(ecs.Entity)) {
	kept := s.order[:0]
	for _, e := range s.order {
		if keep(e) {
			s.index[e] = len(kept)
			kept = append(kept, e)
		} else {
			delete(s.index, e)
			if drop != nil {
				drop(e)
			}
		}
	}
	// Clear the tail so removed entities are not retained by the backing array.
	for i := len(kept); i < len(s.order); i++ {
		s.order[i] = ecs.Entity{}
	}
	s.order = kept
}

// clockSlack is the tolerance for comparing a summed tick clock against a
// deadline, so a deadline a whole number of ticks away fires on that tick.
const clockSlack = 1e-9

// deadlineReached reports whether now has reached deadline.
func deadlineReached(now, deadline float64) bool {
	return now >= deadline-clockSlack
}

// PerceptionTracker maintains what one agent currently senses: the targets
// (hostiles and waypoints) and obstacles within range, the nearest live
// target, and an alert flag that decays a fixed time after the last hostile
// leaves. Waypoints compete for nearest target but never touch the alert.
//
// The tracker is single-threaded and driven by the caller: deliver
// OnEnter/OnExit events for a tick first, then call Tick.
type PerceptionTracker struct {
	locator EntityLocator
	decay   float64

	targets   entitySet // hostiles and waypoints
	hostiles  map[ecs.Entity]struct{}
	obstacles entitySet

	now      float64
	alert    bool
	armed    bool
	deadline float64

	nearest     ecs.Entity
	nearestDist float64
	hasNearest  bool

	logger *slog.Logger
}

// NewPerceptionTracker creates a tracker that resolves entities through
// locator. A non-positive decay selects DefaultAlertDecay.
func NewPerceptionTracker(locator EntityLocator, decay float64) *PerceptionTracker {
	if decay <= 0 {
		decay = DefaultAlertDecay
	}
	return &PerceptionTracker{
		locator:   locator,
		decay:     decay,
		targets:   newEntitySet(),
		hostiles:  make(map[ecs.Entity]struct{}),
		obstacles: newEntitySet(),
		logger:    slog.Default(),
	}
}

// SetLogger replaces the logger used for alert transitions.
func (p *PerceptionTracker) SetLogger(l *slog.Logger) {
	if l != nil {
		p.logger = l
	}
}

// OnEnter records that e came into sensing range with the given class.
// An entity already tracked in either set is left alone, so duplicate
// events and late reclassification have no effect on membership.
func (p *PerceptionTracker) OnEnter(e ecs.Entity, class components.Class) {
	if p.targets.contains(e) || p.obstacles.contains(e) {
		return
	}

	switch class {
	case components.ClassHostile:
		p.targets.add(e)
		p.hostiles[e] = struct{}{}
		p.raiseAlert()
	case components.ClassWaypoint:
		p.targets.add(e)
	case components.ClassObstacle:
		p.obstacles.add(e)
	}
}

// OnExit records that e left sensing range. A hostile leaving arms the
// alert decay deadline, replacing any deadline already armed. An exit whose
// class does not match how e is tracked is ignored.
func (p *PerceptionTracker) OnExit(e ecs.Entity, class components.Class) {
	_, hostile := p.hostiles[e]
	switch class {
	case components.ClassHostile:
		if hostile {
			delete(p.hostiles, e)
			p.targets.remove(e)
			p.armDecay()
		}
	case components.ClassWaypoint:
		if !hostile {
			p.targets.remove(e)
		}
	case components.ClassObstacle:
		p.obstacles.remove(e)
	}
	if p.hasNearest && p.nearest == e {
		p.hasNearest = false
	}
}

func (p *PerceptionTracker) raiseAlert() {
	if !p.alert {
		p.logger.Debug("alert raised", "time", p.now)
	}
	p.alert = true
	p.armed = false
}

func (p *PerceptionTracker) armDecay() {
	p.armed = true
	p.deadline = p.now + p.decay
}

// Tick advances the tracker clock by dt, fires the alert decay once its
// deadline is reached, drops stale references and rescans the nearest
// target relative to self.
func (p *PerceptionTracker) Tick(dt float64, self r3.Vec) {
	p.now += dt

	if p.armed && deadlineReached(p.now, p.deadline) {
		p.armed = false
		if p.alert {
			p.alert = false
			p.logger.Debug("alert decayed", "time", p.now)
		}
	}

	p.evictStale()
	p.scanNearest(self)
}

// evictStale removes references the host world no longer knows. A hostile
// that vanished without an exit event counts as having left.
func (p *PerceptionTracker) evictStale() {
	if p.locator == nil {
		return
	}
	alive := p.locator.Alive
	lost := 0
	p.targets.retain(alive, func(e ecs.Entity) {
		if _, ok := p.hostiles[e]; ok {
			delete(p.hostiles, e)
			lost++
		}
	})
	if lost > 0 {
		p.armDecay()
		p.logger.Debug("evicted stale hostiles", "count", lost)
	}
	p.obstacles.retain(alive, nil)
}

// scanNearest does a full linear scan of the target set. Ties keep the
// earliest inserted target.
func (p *PerceptionTracker) scanNearest(self r3.Vec) {
	p.hasNearest = false
	if p.locator == nil {
		return
	}
	for _, e := range p.targets.order {
		pos, ok := p.locator.Position(e)
		if !ok {
			continue
		}
		d := r3.Norm2(r3.Sub(pos, self))
		if !p.hasNearest || d < p.nearestDist {
			p.nearest = e
			p.nearestDist = d
			p.hasNearest = true
		}
	}
}

// NearestTarget returns the target found by the last Tick.
func (p *PerceptionTracker) NearestTarget() (ecs.Entity, bool) {
	return p.nearest, p.hasNearest
}

// TargetDetected reports whether the last Tick found a target.
func (p *PerceptionTracker) TargetDetected() bool {
	return p.hasNearest
}

// IsAlert reports the hysteresis-filtered alert state.
func (p *PerceptionTracker) IsAlert() bool {
	return p.alert
}

// Now returns the tracker clock.
func (p *PerceptionTracker) Now() float64 {
	return p.now
}

// DecayPending reports whether an alert decay deadline is armed.
func (p *PerceptionTracker) DecayPending() bool {
	return p.armed
}

// Targets returns the tracked targets in insertion order.
func (p *PerceptionTracker) Targets() []ecs.Entity {
	return p.live(p.targets.order)
}

// Obstacles returns the tracked obstacles in insertion order, skipping
// references that have gone stale since the last Tick.
func (p *PerceptionTracker) Obstacles() []ecs.Entity {
	return p.live(p.obstacles.order)
}

// ObstaclePositions resolves the tracked obstacles to positions.
func (p *PerceptionTracker) ObstaclePositions(dst []r3.Vec) []r3.Vec {
	dst = dst[:0]
	if p.locator == nil {
		return dst
	}
	for _, e := range p.obstacles.order {
		if pos, ok := p.locator.Position(e); ok {
			dst = append(dst, pos)
		}
	}
	return dst
}

func (p *PerceptionTracker) live(src []ecs.Entity) []ecs.Entity {
	out := make([]ecs.Entity, 0, len(src))
	for _, e := range src {
		if p.locator == nil || p.locator.Alive(e) {
			out = append(out, e)
		}
	}
	return out
}

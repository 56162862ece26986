package systems

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrUnknownArchetype is returned by SelectPolicy for unmapped names.
var ErrUnknownArchetype = errors.New("unknown archetype")

// BehaviorContext is what a policy sees of its agent for one tick.
type BehaviorContext struct {
	Now       float64
	Self      r3.Vec
	Alert     bool
	HasTarget bool
	TargetPos r3.Vec
	TargetVel *r3.Vec // nil when the target's motion is unknown
}

// Decision is a policy's choice for one tick.
type Decision struct {
	Move    bool // false = stop in place
	Action  Action
	Goal    r3.Vec
	GoalVel *r3.Vec
	Fire    bool
	Phase   string
}

// Policy picks movement and attacks for one agent. Implementations keep
// only their own timing state; perception and steering are shared.
type Policy interface {
	Name() string
	Decide(ctx *BehaviorContext) Decision
}

// PolicyOptions tunes the policies built by SelectPolicy.
type PolicyOptions struct {
	TurretCooldown float64
	Boss           BossTimings
	Skittish       SkittishTimings
	Patrol         []r3.Vec
	WaypointReach  float64
	ChaseTimeout   float64 // patroller pursuit time after losing sight
}

// SelectPolicy builds a fresh policy for the named archetype.
func SelectPolicy(archetype string, opts PolicyOptions) (Policy, error) {
	switch archetype {
	case "chaser":
		return Chaser{}, nil
	case "skittish":
		return NewSkittish(opts.Skittish), nil
	case "turret":
		return NewTurret(opts.TurretCooldown), nil
	case "boss":
		return NewBoss(opts.Boss), nil
	case "patroller":
		return NewPatroller(opts.Patrol, opts.WaypointReach, opts.ChaseTimeout), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownArchetype, archetype)
}

func approach(ctx *BehaviorContext) Decision {
	return Decision{Move: true, Action: Approach, Goal: ctx.TargetPos, GoalVel: ctx.TargetVel}
}

func escape(ctx *BehaviorContext) Decision {
	return Decision{Move: true, Action: Escape, Goal: ctx.TargetPos, GoalVel: ctx.TargetVel}
}

// Chaser closes on the nearest target and stops when there is none.
type Chaser struct{}

func (Chaser) Name() string { return "chaser" }

func (Chaser) Decide(ctx *BehaviorContext) Decision {
	if !ctx.HasTarget {
		return Decision{Phase: "idle"}
	}
	d := approach(ctx)
	d.Phase = "chase"
	return d
}

// SkittishState is the phase of a Skittish agent.
type SkittishState uint8

const (
	SkittishCalm SkittishState = iota
	SkittishFleeing
	SkittishResting
)

// SkittishTimings sets how long a skittish agent runs and then rests.
type SkittishTimings struct {
	Flee float64
	Rest float64
}

// DefaultSkittishTimings returns a 3s flee followed by a 2s rest.
func DefaultSkittishTimings() SkittishTimings {
	return SkittishTimings{Flee: 3, Rest: 2}
}

// Skittish runs from the nearest target for a while, then has to stop and
// rest before it can run again.
type Skittish struct {
	timings  SkittishTimings
	state    SkittishState
	deadline float64
}

// NewSkittish creates a calm skittish policy. Zero timings take the
// defaults.
func NewSkittish(timings SkittishTimings) *Skittish {
	def := DefaultSkittishTimings()
	if timings.Flee <= 0 {
		timings.Flee = def.Flee
	}
	if timings.Rest <= 0 {
		timings.Rest = def.Rest
	}
	return &Skittish{timings: timings}
}

func (s *Skittish) Name() string { return "skittish" }

// State returns the current phase.
func (s *Skittish) State() SkittishState { return s.state }

func (s *Skittish) Decide(ctx *BehaviorContext) Decision {
	switch s.state {
	case SkittishFleeing:
		if deadlineReached(ctx.Now, s.deadline) {
			s.state = SkittishResting
			s.deadline += s.timings.Rest
		}
	case SkittishResting:
		if deadlineReached(ctx.Now, s.deadline) {
			s.state = SkittishCalm
		}
	}
	if s.state == SkittishCalm && ctx.HasTarget {
		s.state = SkittishFleeing
		s.deadline = ctx.Now + s.timings.Flee
	}

	switch s.state {
	case SkittishFleeing:
		if !ctx.HasTarget {
			return Decision{Phase: "flee"}
		}
		d := escape(ctx)
		d.Phase = "flee"
		return d
	case SkittishResting:
		return Decision{Phase: "rest"}
	}
	return Decision{Phase: "idle"}
}

// TurretState is the phase of a Turret.
type TurretState uint8

const (
	TurretReady TurretState = iota
	TurretCooldown
)

// Turret never moves. It fires at a detected target, then waits out its
// cooldown.
type Turret struct {
	cooldown float64
	state    TurretState
	deadline float64
}

// NewTurret creates a turret with the given cooldown in seconds.
func NewTurret(cooldown float64) *Turret {
	return &Turret{cooldown: cooldown}
}

func (t *Turret) Name() string { return "turret" }

// State returns the current phase.
func (t *Turret) State() TurretState { return t.state }

func (t *Turret) Decide(ctx *BehaviorContext) Decision {
	if t.state == TurretCooldown && deadlineReached(ctx.Now, t.deadline) {
		t.state = TurretReady
	}
	if t.state == TurretCooldown {
		return Decision{Phase: "cooldown"}
	}
	if !ctx.HasTarget {
		return Decision{Phase: "ready"}
	}
	t.state = TurretCooldown
	t.deadline = ctx.Now + t.cooldown
	return Decision{Fire: true, Goal: ctx.TargetPos, Phase: "fire"}
}

// Patroller walks a route back and forth and chases whatever it sees. After
// losing sight it heads for the last known position until the chase times
// out, then resumes the route where it left off.
type Patroller struct {
	route []r3.Vec
	reach float64
	index int
	step  int

	chaseFor  float64
	chasing   bool
	giveUp    float64
	lastKnown r3.Vec
}

// DefaultChaseTimeout is how long a patroller keeps chasing after losing
// sight.
const DefaultChaseTimeout = 3.0

// NewPatroller creates a patroller over route. Waypoints count as reached
// within reach world units. A non-positive chaseFor selects
// DefaultChaseTimeout.
func NewPatroller(route []r3.Vec, reach, chaseFor float64) *Patroller {
	if reach <= 0 {
		reach = 0.5
	}
	if chaseFor <= 0 {
		chaseFor = DefaultChaseTimeout
	}
	return &Patroller{route: route, reach: reach, step: 1, chaseFor: chaseFor}
}

func (p *Patroller) Name() string { return "patroller" }

// Waypoint returns the index of the waypoint being walked to.
func (p *Patroller) Waypoint() int { return p.index }

// Chasing reports whether the patroller is off its route.
func (p *Patroller) Chasing() bool { return p.chasing }

func (p *Patroller) Decide(ctx *BehaviorContext) Decision {
	if ctx.HasTarget {
		p.chasing = true
		p.lastKnown = ctx.TargetPos
		p.giveUp = ctx.Now + p.chaseFor
		d := approach(ctx)
		d.Phase = "chase"
		return d
	}
	if p.chasing {
		if !deadlineReached(ctx.Now, p.giveUp) {
			if WithinRadius(ctx.Self, p.lastKnown, p.reach) {
				return Decision{Phase: "search"}
			}
			return Decision{Move: true, Action: Approach, Goal: p.lastKnown, Phase: "search"}
		}
		p.chasing = false
	}
	if len(p.route) == 0 {
		return Decision{Phase: "idle"}
	}

	if WithinRadius(ctx.Self, p.route[p.index], p.reach) && len(p.route) > 1 {
		next := p.index + p.step
		if next < 0 || next >= len(p.route) {
			p.step = -p.step
			next = p.index + p.step
		}
		p.index = next
	}
	return Decision{Move: true, Action: Approach, Goal: p.route[p.index], Phase: "patrol"}
}

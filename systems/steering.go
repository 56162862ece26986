package systems

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Action selects whether an agent closes on or runs from its target.
type Action uint8

const (
	Approach Action = iota
	Escape
)

// String returns the display name for an Action.
func (a Action) String() string {
	if a == Escape {
		return "Escape"
	}
	return "Approach"
}

// SteeringParams holds the limits of a force-driven agent.
type SteeringParams struct {
	MaxVelocity   float64 // speed cap applied after integration
	MaxForce      float64 // cap on the blended steering force
	RepelRadius   float64 // obstacle influence range
	MaxRepelForce float64 // repulsion magnitude at zero distance
}

// DefaultSteeringParams returns sensible defaults for a ground enemy.
func DefaultSteeringParams() SteeringParams {
	return SteeringParams{
		MaxVelocity:   5.0,
		MaxForce:      10.0,
		RepelRadius:   3.0,
		MaxRepelForce: 8.0,
	}
}

// SteeringAgent is the pose of the steered agent for one tick.
type SteeringAgent struct {
	Position r3.Vec
	Velocity r3.Vec
}

// SteeringTarget is what the agent reacts to. A nil Velocity means the
// target's motion is unknown, so seek/flee are used instead of
// pursuit/evade.
type SteeringTarget struct {
	Position r3.Vec
	Velocity *r3.Vec
}

// SteeringRequest is the per-tick input to ComputeForce.
type SteeringRequest struct {
	Target    *SteeringTarget
	Action    Action
	Obstacles []r3.Vec
}

// SteeringOutput is the per-tick result of ComputeForce.
type SteeringOutput struct {
	Force r3.Vec
	// Stop is set when there is no target. The caller should zero the
	// agent's velocity instead of letting it coast.
	Stop bool
}

// Seek returns the force that turns the current velocity into full speed
// straight at target.
func Seek(self SteeringAgent, target r3.Vec, maxVelocity float64) r3.Vec {
	desired := r3.Scale(maxVelocity, Direction(self.Position, target))
	return r3.Sub(desired, self.Velocity)
}

// Flee is the negation of Seek.
func Flee(self SteeringAgent, target r3.Vec, maxVelocity float64) r3.Vec {
	return r3.Scale(-1, Seek(self, target, maxVelocity))
}

// PredictPosition extrapolates the target linearly by the time the agent
// needs to cover the current distance at maxVelocity.
func PredictPosition(self SteeringAgent, targetPos, targetVel r3.Vec, maxVelocity float64) r3.Vec {
	if maxVelocity <= 0 {
		return targetPos
	}
	lookAhead := Distance(self.Position, targetPos) / maxVelocity
	return r3.Add(targetPos, r3.Scale(lookAhead, targetVel))
}

// Pursuit seeks the predicted position of a moving target. A zero target
// velocity degenerates to Seek.
func Pursuit(self SteeringAgent, targetPos, targetVel r3.Vec, maxVelocity float64) r3.Vec {
	return Seek(self, PredictPosition(self, targetPos, targetVel, maxVelocity), maxVelocity)
}

// Evade is the negation of Pursuit.
func Evade(self SteeringAgent, targetPos, targetVel r3.Vec, maxVelocity float64) r3.Vec {
	return r3.Scale(-1, Pursuit(self, targetPos, targetVel, maxVelocity))
}

// ObstacleAvoidance pushes self away from an obstacle inside repelRadius.
// The magnitude falls off linearly from maxRepelForce at contact to zero at
// repelRadius. A coincident obstacle has no defined direction and yields zero.
func ObstacleAvoidance(self, obstacle r3.Vec, repelRadius, maxRepelForce float64) r3.Vec {
	d := Distance(self, obstacle)
	if d >= repelRadius {
		return r3.Vec{}
	}
	mag := maxRepelForce * (repelRadius - d) / repelRadius
	return r3.Scale(mag, Direction(obstacle, self))
}

// SteeringEngine blends the action force with obstacle repulsion for one
// agent.
type SteeringEngine struct {
	params SteeringParams
}

// NewSteeringEngine creates a steering engine with the given limits.
func NewSteeringEngine(params SteeringParams) *SteeringEngine {
	return &SteeringEngine{params: params}
}

// Params returns the engine limits.
func (s *SteeringEngine) Params() SteeringParams {
	return s.params
}

// ActionForce returns the unclamped force for the requested action.
func (s *SteeringEngine) ActionForce(self SteeringAgent, target SteeringTarget, action Action) r3.Vec {
	maxVel := s.params.MaxVelocity
	switch {
	case action == Escape && target.Velocity != nil:
		return Evade(self, target.Position, *target.Velocity, maxVel)
	case action == Escape:
		return Flee(self, target.Position, maxVel)
	case target.Velocity != nil:
		return Pursuit(self, target.Position, *target.Velocity, maxVel)
	default:
		return Seek(self, target.Position, maxVel)
	}
}

// AvoidanceForce sums the repulsion of every obstacle.
func (s *SteeringEngine) AvoidanceForce(self r3.Vec, obstacles []r3.Vec) r3.Vec {
	var sum r3.Vec
	for _, o := range obstacles {
		sum = r3.Add(sum, ObstacleAvoidance(self, o, s.params.RepelRadius, s.params.MaxRepelForce))
	}
	return sum
}

// ComputeForce returns the blended steering force for this tick. The action
// force and all avoidance terms are summed first and the total is clamped to
// MaxForce once, so a strong pursuit can attenuate avoidance.
func (s *SteeringEngine) ComputeForce(self SteeringAgent, req SteeringRequest) SteeringOutput {
	if req.Target == nil {
		return SteeringOutput{Stop: true}
	}

	force := s.ActionForce(self, *req.Target, req.Action)
	force = r3.Add(force, s.AvoidanceForce(self.Position, req.Obstacles))

	return SteeringOutput{Force: ClampMagnitude(force, s.params.MaxForce)}
}

// Integrate applies force as an acceleration over dt and clamps the
// resulting speed to maxVelocity.
func Integrate(velocity, force r3.Vec, dt, maxVelocity float64) r3.Vec {
	v := r3.Add(velocity, r3.Scale(dt, force))
	return ClampMagnitude(v, maxVelocity)
}

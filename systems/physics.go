package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sentry/components"
)

// Bounds is the walkable arena on the ground plane: [0,Width] x [0,Depth].
type Bounds struct {
	Width, Depth float64
}

// PhysicsSystem moves entities by their velocity and keeps them in bounds.
// Steering forces are integrated before this runs; here velocity is only
// applied, never limited.
type PhysicsSystem struct {
	filter *ecs.Filter2[components.Position, components.Velocity]
	bounds Bounds
}

// NewPhysicsSystem creates a new physics system.
func NewPhysicsSystem(w *ecs.World, bounds Bounds) *PhysicsSystem {
	return &PhysicsSystem{
		filter: ecs.NewFilter2[components.Position, components.Velocity](w),
		bounds: bounds,
	}
}

// Update advances positions by one tick of dt seconds.
func (s *PhysicsSystem) Update(dt float64) {
	query := s.filter.Query()
	for query.Next() {
		pos, vel := query.Get()

		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
		pos.Z += vel.Z * dt

		// Arena walls reflect the normal velocity component.
		if pos.X < 0 {
			pos.X = -pos.X
			vel.X = -vel.X
		} else if pos.X > s.bounds.Width {
			pos.X = 2*s.bounds.Width - pos.X
			vel.X = -vel.X
		}
		if pos.Z < 0 {
			pos.Z = -pos.Z
			vel.Z = -vel.Z
		} else if pos.Z > s.bounds.Depth {
			pos.Z = 2*s.bounds.Depth - pos.Z
			vel.Z = -vel.Z
		}
	}
}

package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/sentry/components"
)

// WorldLocator resolves entities against an ark world.
type WorldLocator struct {
	world  *ecs.World
	posMap *ecs.Map[components.Position]
	velMap *ecs.Map[components.Velocity]
}

// NewWorldLocator creates a locator over w.
func NewWorldLocator(w *ecs.World) *WorldLocator {
	return &WorldLocator{
		world:  w,
		posMap: ecs.NewMap[components.Position](w),
		velMap: ecs.NewMap[components.Velocity](w),
	}
}

// Alive reports whether e still exists.
func (l *WorldLocator) Alive(e ecs.Entity) bool {
	return !e.IsZero() && l.world.Alive(e)
}

// Position returns the position of e, or false for dead or unplaced entities.
func (l *WorldLocator) Position(e ecs.Entity) (r3.Vec, bool) {
	if !l.Alive(e) || !l.posMap.Has(e) {
		return r3.Vec{}, false
	}
	return l.posMap.Get(e).Vec(), true
}

// Velocity returns the velocity of e, or false when it has none.
func (l *WorldLocator) Velocity(e ecs.Entity) (r3.Vec, bool) {
	if !l.Alive(e) || !l.velMap.Has(e) {
		return r3.Vec{}, false
	}
	return l.velMap.Get(e).Vec(), true
}

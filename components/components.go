// Package components defines ECS components for the simulation.
package components

import "gonum.org/v1/gonum/spatial/r3"

// Class is the exclusive perception classification of an entity.
// It is decided when the entity enters an agent's sensing range and is
// never re-evaluated while the entity stays tracked.
type Class uint8

const (
	ClassNone     Class = iota // ignored by perception
	ClassHostile               // target candidate, raises alert
	ClassObstacle              // repels steering
	ClassWaypoint              // target candidate, never raises alert
)

// Classification tags an entity with its perception class.
type Classification struct {
	Class Class
}

// Agent holds the tuning of an AI-controlled entity.
type Agent struct {
	ID        uint32
	Archetype string // policy name, see systems.SelectPolicy

	SenseRadius   float64 // proximity enter/exit threshold
	MaxVelocity   float64
	MaxForce      float64
	RepelRadius   float64 // obstacle influence range
	MaxRepelForce float64 // repulsion at zero distance
	Grounded      bool    // neutralize the up axis before steering

	// ViewAngle is the full width of the vision cone in radians. Zero or
	// anything from 2*pi up sees all around.
	ViewAngle float64
	// Forward is the last non-zero heading. Zero until the agent first moves.
	Forward r3.Vec
}

// Scripted marks an entity that moves with a fixed velocity and bounces off
// the arena bounds. Hostiles use it so pursuit has a velocity to predict.
type Scripted struct{}

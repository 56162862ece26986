// Package main tunes steering limits with CMA-ES against a pursuit scenario.
package main

import (
	"github.com/pthm-cable/sentry/config"
)

// tunedArchetype is the archetype whose steering limits are optimized.
const tunedArchetype = "chaser"

// ParamSpec binds one archetype field to its search bounds.
type ParamSpec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
	field   func(*config.ArchetypeConfig) *float64
}

// Path is the config key the parameter maps to.
func (s ParamSpec) Path() string {
	return "archetypes." + tunedArchetype + "." + s.Name
}

func (s ParamSpec) clamp(v float64) float64 {
	return min(max(v, s.Min), s.Max)
}

// ParamVector is the ordered search space. Slice positions in every
// method follow Specs.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the steering limits of the tuned archetype.
// Lower bounds stay positive since a zero archetype field inherits the
// steering defaults.
func NewParamVector() *ParamVector {
	return &ParamVector{Specs: []ParamSpec{
		{
			Name: "max_force", Min: 2, Max: 30, Default: 10,
			field: func(a *config.ArchetypeConfig) *float64 { return &a.MaxForce },
		},
		{
			Name: "repel_radius", Min: 0.5, Max: 8, Default: 3,
			field: func(a *config.ArchetypeConfig) *float64 { return &a.RepelRadius },
		},
		{
			Name: "max_repel_force", Min: 0.1, Max: 30, Default: 8,
			field: func(a *config.ArchetypeConfig) *float64 { return &a.MaxRepelForce },
		},
	}}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

func (pv *ParamVector) each(f func(i int, s ParamSpec) float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = f(i, s)
	}
	return out
}

// DefaultVector returns the default values.
func (pv *ParamVector) DefaultVector() []float64 {
	return pv.each(func(_ int, s ParamSpec) float64 { return s.Default })
}

// Normalize maps raw values onto [0,1] per parameter.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	return pv.each(func(i int, s ParamSpec) float64 { return (raw[i] - s.Min) / (s.Max - s.Min) })
}

// Denormalize is the inverse of Normalize.
func (pv *ParamVector) Denormalize(unit []float64) []float64 {
	return pv.each(func(i int, s ParamSpec) float64 { return s.Min + unit[i]*(s.Max-s.Min) })
}

// Clamp bounds every value to its spec.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	return pv.each(func(i int, s ParamSpec) float64 { return s.clamp(v[i]) })
}

// ApplyToConfig writes clamped values into the tuned archetype. A config
// without that archetype is left unchanged.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	arch, ok := cfg.Archetype(tunedArchetype)
	if !ok {
		return
	}
	for i, s := range pv.Specs {
		*s.field(arch) = s.clamp(values[i])
	}
}

// ExtractFromConfig reads the tuned archetype's current values, falling
// back to the defaults when the archetype is missing.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	arch, ok := cfg.Archetype(tunedArchetype)
	if !ok {
		return pv.DefaultVector()
	}
	return pv.each(func(_ int, s ParamSpec) float64 { return *s.field(arch) })
}

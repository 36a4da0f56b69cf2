// Package main provides CMA-ES tuning of simulation parameters.
package main

import (
	"github.com/pthm-cable/brine/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters. Structural
// constants (dt, world size, gene count bounds) stay locked; the vector
// covers the energy economy and the reproductive thresholds that decide
// whether a soup thrives or starves.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Medium
			{Name: "viscosity", Path: "world.viscosity", Min: 0.1, Max: 2.0, Default: 0.5},
			// Energy economy
			{Name: "insolation_pool", Path: "energy.insolation_pool", Min: 1.0, Max: 20.0, Default: 6.0},
			{Name: "maintenance_cost", Path: "energy.maintenance_cost", Min: 0.02, Max: 0.6, Default: 0.15},
			// Food
			{Name: "food_spawn_chance", Path: "food.spawn_chance", Min: 0.05, Max: 0.9, Default: 0.35},
			{Name: "food_energy", Path: "food.energy", Min: 10.0, Max: 80.0, Default: 30.0},
			// Mutation
			{Name: "mutation_rate", Path: "genome.mutation_rate", Min: 0.02, Max: 0.4, Default: 0.12},
			{Name: "mutation_strength", Path: "genome.mutation_strength", Min: 0.1, Max: 0.8, Default: 0.35},
			// Reproduction
			{Name: "mating_threshold", Path: "reproduction.mating_threshold", Min: 80.0, Max: 300.0, Default: 150.0},
			{Name: "mating_cost", Path: "reproduction.mating_cost", Min: 40.0, Max: 200.0, Default: 100.0},
			{Name: "division_threshold", Path: "reproduction.division_threshold", Min: 150.0, Max: 600.0, Default: 300.0},
			// Body
			{Name: "spring_stiffness", Path: "body.spring_stiffness", Min: 0.2, Max: 1.5, Default: 0.6},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	i := 0
	cfg.World.Viscosity = clamped[i]
	i++
	cfg.Energy.InsolationPool = clamped[i]
	i++
	cfg.Energy.MaintenanceCost = clamped[i]
	i++
	cfg.Food.SpawnChance = clamped[i]
	i++
	cfg.Food.Energy = clamped[i]
	i++
	cfg.Genome.MutationRate = clamped[i]
	i++
	cfg.Genome.MutationStrength = clamped[i]
	i++
	cfg.Reproduction.MatingThreshold = clamped[i]
	i++
	cfg.Reproduction.MatingCost = clamped[i]
	i++
	cfg.Reproduction.DivisionThreshold = clamped[i]
	i++
	cfg.Body.SpringStiffness = clamped[i]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.World.Viscosity,
		cfg.Energy.InsolationPool,
		cfg.Energy.MaintenanceCost,
		cfg.Food.SpawnChance,
		cfg.Food.Energy,
		cfg.Genome.MutationRate,
		cfg.Genome.MutationStrength,
		cfg.Reproduction.MatingThreshold,
		cfg.Reproduction.MatingCost,
		cfg.Reproduction.DivisionThreshold,
		cfg.Body.SpringStiffness,
	}
}

package main

import (
	"math"

	"github.com/pthm-cable/beast/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Integer bool    // rounded before use
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Operator rates
			{Name: "crossover", Path: "ga.crossover", Min: 0.0, Max: 1.0, Default: 0.25},
			{Name: "mutation", Path: "ga.mutation", Min: 0.005, Max: 0.3, Default: 0.1},
			{Name: "crossover_points", Path: "ga.crossover_points", Min: 1, Max: 4, Default: 1, Integer: true},
			// Mutator (normal: mean locked at 0)
			{Name: "mutator_sd", Path: "ga.mutator_b", Min: 0.01, Max: 1.0, Default: 0.1},
			// Selection shaping
			{Name: "elitism", Path: "ga.elitism", Min: 0, Max: 6, Default: 0, Integer: true},
			{Name: "culling_pairs", Path: "ga.culling", Min: 0, Max: 5, Default: 0, Integer: true},
			{Name: "exponent", Path: "ga.exponent", Min: 0.5, Max: 3.0, Default: 1.0},
			// Brain
			{Name: "hidden", Path: "demo.hidden", Min: 1, Max: 10, Default: 4, Integer: true},
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

// Clamp ensures all values are within bounds, rounding integer parameters.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := min(max(v[i], spec.Min), spec.Max)
		if spec.Integer {
			val = math.Round(val)
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Selection is locked to roulette, so culling and exponent take effect.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	i := 0

	cfg.GA.Crossover = clamped[i]; i++
	cfg.GA.Mutation = clamped[i]; i++
	cfg.GA.CrossoverPoints = int(clamped[i]); i++

	cfg.GA.Mutator = "normal"
	cfg.GA.MutatorA = 0
	cfg.GA.MutatorB = clamped[i]; i++

	cfg.GA.Selection = "roulette"
	cfg.GA.Elitism = int(clamped[i]); i++
	cfg.GA.Culling = 2 * int(clamped[i]); i++ // culling must be even
	cfg.GA.Exponent = clamped[i]; i++

	cfg.Demo.Hidden = int(clamped[i])
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.GA.Crossover,
		cfg.GA.Mutation,
		float64(cfg.GA.CrossoverPoints),
		cfg.GA.MutatorB,
		float64(cfg.GA.Elitism),
		float64(cfg.GA.Culling / 2),
		cfg.GA.Exponent,
		float64(cfg.Demo.Hidden),
	}
}

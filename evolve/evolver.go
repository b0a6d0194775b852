// Package evolve breeds populations of genome-carrying bodies with a
// generational genetic algorithm.
package evolve

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Evolver is anything the GA can assess and breed.
type Evolver interface {
	Genotype() []float64
	SetGenotype(g []float64) error
	// Fitness is the score of the assessment in progress.
	Fitness() float64
	Record() *Record
}

// Record is the GA's bookkeeping for one member.
type Record struct {
	Scores       []float64 // one per finished assessment
	Fitness      float64   // aggregate of Scores
	FixedFitness float64   // Fitness after the negative-fitness policy
	Probability  float64   // selection probability after Setup
}

// Store appends an assessment score.
func (r *Record) Store(f float64) { r.Scores = append(r.Scores, f) }

// Assessed reports whether at least one score has been stored.
func (r *Record) Assessed() bool { return len(r.Scores) > 0 }

// Average returns the mean recorded score, or false when unassessed.
func (r *Record) Average() (float64, bool) {
	if len(r.Scores) == 0 {
		return 0, false
	}
	return stat.Mean(r.Scores, nil), true
}

// Clear drops every stored score.
func (r *Record) Clear() {
	r.Scores = r.Scores[:0]
	r.Fitness, r.FixedFitness, r.Probability = 0, 0, 0
}

// StoreFitness records e's current fitness as an assessment score.
func StoreFitness(e Evolver) { e.Record().Store(e.Fitness()) }

// FitnessMethod reduces a member's score history to one fitness.
type FitnessMethod int

const (
	FitnessBest FitnessMethod = iota
	FitnessWorst
	FitnessMean
	FitnessTotal
)

var fitnessNames = map[string]FitnessMethod{
	"best":  FitnessBest,
	"worst": FitnessWorst,
	"mean":  FitnessMean,
	"total": FitnessTotal,
}

// ParseFitnessMethod resolves a configured method name.
func ParseFitnessMethod(s string) (FitnessMethod, error) {
	if m, ok := fitnessNames[s]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("unknown fitness method %q", s)
}

func (m FitnessMethod) String() string {
	for name, v := range fitnessNames {
		if v == m {
			return name
		}
	}
	return fmt.Sprintf("FitnessMethod(%d)", int(m))
}

// Aggregate applies the method to scores, which must not be empty.
func (m FitnessMethod) Aggregate(scores []float64) float64 {
	switch m {
	case FitnessWorst:
		return floats.Min(scores)
	case FitnessMean:
		return stat.Mean(scores, nil)
	case FitnessTotal:
		return floats.Sum(scores)
	default:
		return floats.Max(scores)
	}
}

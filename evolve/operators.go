package evolve

import (
	"fmt"
	"math/rand"
)

// Mutator perturbs one gene.
type Mutator func(gene float64, rng *rand.Rand) float64

// NormalMutator adds a Gaussian draw with the given mean and deviation.
func NormalMutator(mean, sd float64) Mutator {
	return func(gene float64, rng *rand.Rand) float64 {
		return gene + mean + sd*rng.NormFloat64()
	}
}

// UniformMutator adds a uniform draw from [lo, hi).
func UniformMutator(lo, hi float64) Mutator {
	return func(gene float64, rng *rand.Rand) float64 {
		return gene + lo + rng.Float64()*(hi-lo)
	}
}

// MutatorByName builds a configured mutator. For "normal" a and b are the
// mean and deviation, for "uniform" the bounds.
func MutatorByName(name string, a, b float64) (Mutator, error) {
	switch name {
	case "", "normal":
		return NormalMutator(a, b), nil
	case "uniform":
		return UniformMutator(a, b), nil
	}
	return nil, fmt.Errorf("unknown mutator %q", name)
}

// Crossover swaps the tails of mum and dad at cut k, returning
// mum[:k]+dad[k:] and dad[:k]+mum[k:]. Both parents must have the same
// length; the parents are not modified.
func Crossover(mum, dad []float64, k int) (child1, child2 []float64) {
	child1 = make([]float64, 0, len(mum))
	child1 = append(append(child1, mum[:k]...), dad[k:]...)
	child2 = make([]float64, 0, len(dad))
	child2 = append(append(child2, dad[:k]...), mum[k:]...)
	return child1, child2
}

// Mutate applies mut to each gene of g in place when a fresh draw from rng
// falls below rate.
func Mutate(g []float64, rate float64, mut Mutator, rng *rand.Rand) {
	for i := range g {
		if rng.Float64() < rate {
			g[i] = mut(g[i], rng)
		}
	}
}

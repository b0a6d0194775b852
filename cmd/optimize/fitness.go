package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/beast/config"
	"github.com/pthm-cable/beast/demos"
	"github.com/pthm-cable/beast/evolve"
	"github.com/pthm-cable/beast/telemetry"
)

// FitnessEvaluator runs headless evolution and scores the GA settings.
type FitnessEvaluator struct {
	params      *ParamVector
	demo        string
	generations int
	timeSteps   int
	seeds       []int64
	baseConfig  *config.Config

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	lastBestEver   float64 // mean best-ever fitness from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, demo string, generations, timeSteps int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		demo:        demo,
		generations: generations,
		timeSteps:   timeSteps,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastBestEver returns the mean best-ever fitness from the most recent evaluation.
func (fe *FitnessEvaluator) LastBestEver() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastBestEver
}

// Score weights.
const (
	tailFraction   = 1.0 / 3 // trailing share of generations averaged
	bestEverWeight = 0.2     // bonus for the best genome found
	hallOfFameSize = 10
)

// runResult holds the results from a single evolution run.
type runResult struct {
	score      float64
	bestEver   float64
	hallOfFame *telemetry.HallOfFame
	err        error
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated score of the evolved populations, averaged over
// every seed.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	// Aggregate results
	var totalFitness, totalBestEver float64
	bestSeedFitness := math.Inf(1)
	var bestSeedHallOfFame *telemetry.HallOfFame

	for _, r := range results {
		if r.err != nil {
			// Settings the GA rejects are as bad as settings that learn nothing.
			continue
		}
		fitness := -r.score
		totalFitness += fitness
		totalBestEver += r.bestEver
		if fitness < bestSeedFitness {
			bestSeedFitness = fitness
			bestSeedHallOfFame = r.hallOfFame
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	// Update best tracking
	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestHallOfFame = bestSeedHallOfFame
	}
	fe.lastBestEver = totalBestEver / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation evolves the demo for the configured generations with one
// seed. cfg is shared between seeds and only read.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) runResult {
	rng := rand.New(rand.NewSource(seed))
	setup, err := demos.Build(fe.demo, cfg, rng)
	if err != nil {
		return runResult{err: err}
	}
	if len(setup.Populations) == 0 {
		return runResult{err: fmt.Errorf("demo %q evolves nothing", fe.demo)}
	}

	// Demos pick their own operator rates; the tuned ones replace them.
	for _, np := range setup.Populations {
		ga := np.Population.GA()
		if err := ga.SetCrossover(cfg.GA.Crossover); err != nil {
			return runResult{err: err}
		}
		if err := ga.SetMutation(cfg.GA.Mutation); err != nil {
			return runResult{err: err}
		}
		ga.SetSelection(evolve.SelectRoulette)
	}

	sim := setup.Sim
	sim.SetGenerations(fe.generations)
	if fe.timeSteps > 0 {
		sim.SetTimeSteps(fe.timeSteps)
	}
	if err := sim.Run(context.Background()); err != nil {
		return runResult{err: err}
	}

	result := runResult{hallOfFame: telemetry.NewHallOfFame(hallOfFameSize, rng)}
	for _, np := range setup.Populations {
		ga := np.Population.GA()
		result.score += fe.computeScore(ga.History())
		if genome, fit, ok := ga.BestEver(); ok {
			result.bestEver += fit
			result.hallOfFame.Consider(np.Name, genome, fit, 0, ga.Generations())
		}
	}
	pops := float64(len(setup.Populations))
	result.score /= pops
	result.bestEver /= pops
	return result
}

// copyConfig creates a copy of the base config with stage logging off.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Logging = config.LoggingConfig{}
	return &cfg
}

// computeScore rewards a high average fitness over the trailing generations
// plus a share of the best generation seen.
// Formula: tailMean × (1 + 0.2 × best/max(tailMean, 1))
func (fe *FitnessEvaluator) computeScore(history []evolve.Stats) float64 {
	if len(history) == 0 {
		return 0
	}
	tail := max(1, int(math.Ceil(float64(len(history))*tailFraction)))
	averages := make([]float64, 0, tail)
	best := math.Inf(-1)
	for _, s := range history[len(history)-tail:] {
		averages = append(averages, s.Average)
		best = max(best, s.Best)
	}
	tailMean := stat.Mean(averages, nil)
	return tailMean * (1 + bestEverWeight*best/max(tailMean, 1))
}

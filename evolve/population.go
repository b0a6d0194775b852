package evolve

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/beast/world"
)

// Member is an evolvable body.
type Member interface {
	world.Body
	Evolver
}

type clone[T Member] struct {
	of   T
	copy T
}

// Population is a set of evolvable bodies bred by a GA at the end of every
// generation. With a team size set, each assessment only admits the next
// few members in turn, optionally joined by clones of them.
type Population[T Member] struct {
	world *world.World
	ga    *GA
	spawn func() T
	size  int

	members []T

	teamSize  int // <= 0 assesses every member together
	numClones int
	cursor    int
	team      []T
	clones    []clone[T]
}

// NewPopulation creates size members with spawn, bred by ga.
func NewPopulation[T Member](size int, spawn func() T, ga *GA) *Population[T] {
	p := &Population[T]{ga: ga, spawn: spawn, size: size}
	p.regenerate()
	return p
}

func (p *Population[T]) regenerate() {
	p.members = make([]T, 0, p.size)
	for i := 0; i < p.size; i++ {
		p.members = append(p.members, p.spawn())
	}
	p.cursor = 0
	p.team = p.team[:0]
	p.clones = nil
}

// SetWorld sets the world used by AddToWorld.
func (p *Population[T]) SetWorld(w *world.World) { p.world = w }

// World returns the population's world.
func (p *Population[T]) World() *world.World { return p.world }

// GA returns the population's genetic algorithm.
func (p *Population[T]) GA() *GA { return p.ga }

// Members returns the current generation.
func (p *Population[T]) Members() []T { return p.members }

// Len returns the population size.
func (p *Population[T]) Len() int { return len(p.members) }

// SetTeamSize sets how many members enter each assessment. Zero or less
// admits the whole population.
func (p *Population[T]) SetTeamSize(n int) { p.teamSize = n }

// TeamSize returns the team size.
func (p *Population[T]) TeamSize() int { return p.teamSize }

// SetClones sets how many clones of each team member join an assessment.
func (p *Population[T]) SetClones(n int) { p.numClones = n }

// Team returns the members of the current assessment, clones excluded.
func (p *Population[T]) Team() []T { return p.team }

// Clones returns the clones taking part in the current assessment.
func (p *Population[T]) Clones() []T {
	out := make([]T, len(p.clones))
	for i, c := range p.clones {
		out[i] = c.copy
	}
	return out
}

// Clone makes a fresh member carrying m's genotype.
func (p *Population[T]) Clone(m T) (T, error) {
	c := p.spawn()
	if err := c.SetGenotype(slices.Clone(m.Genotype())); err != nil {
		return c, fmt.Errorf("cloning member: %w", err)
	}
	return c, nil
}

// Merge stores the fitness earned by c in m's record.
func (p *Population[T]) Merge(m, c T) { m.Record().Store(c.Fitness()) }

// AverageFitness returns the mean of every assessed member's average score.
func (p *Population[T]) AverageFitness() (float64, bool) {
	var avgs []float64
	for _, m := range p.members {
		if a, ok := m.Record().Average(); ok {
			avgs = append(avgs, a)
		}
	}
	if len(avgs) == 0 {
		return 0, false
	}
	return stat.Mean(avgs, nil), true
}

// Genotypes returns a copy of every member's genotype, in order.
func (p *Population[T]) Genotypes() [][]float64 {
	out := make([][]float64, len(p.members))
	for i, m := range p.members {
		out[i] = slices.Clone(m.Genotype())
	}
	return out
}

// LoadGenotypes replaces the population with members carrying gs.
func (p *Population[T]) LoadGenotypes(gs [][]float64) error {
	members := make([]T, 0, len(gs))
	for i, g := range gs {
		m := p.spawn()
		if err := m.SetGenotype(slices.Clone(g)); err != nil {
			return fmt.Errorf("member %d: %w", i, err)
		}
		members = append(members, m)
	}
	p.members = members
	p.size = len(members)
	p.cursor = 0
	return nil
}

// AddToWorld adds the assessed members, and their clones, to the world.
func (p *Population[T]) AddToWorld() error {
	if p.world == nil {
		return ErrNoWorld
	}
	if p.teamSize <= 0 {
		for _, m := range p.members {
			p.world.Add(m)
		}
		return nil
	}
	for _, m := range p.team {
		p.world.Add(m)
	}
	for _, c := range p.clones {
		p.world.Add(c.copy)
	}
	return nil
}

// BeginRun replaces the population with freshly spawned members.
func (p *Population[T]) BeginRun() error {
	p.regenerate()
	return nil
}

// EndRun does nothing.
func (p *Population[T]) EndRun() error { return nil }

// BeginGeneration restarts the team rotation.
func (p *Population[T]) BeginGeneration() error {
	p.cursor = 0
	return nil
}

// BeginAssessment picks the next team in turn, wrapping around the
// population, then clones each team member numClones times.
func (p *Population[T]) BeginAssessment() error {
	if p.teamSize <= 0 || len(p.members) == 0 {
		return nil
	}
	p.team = p.team[:0]
	p.clones = p.clones[:0]
	n := min(p.teamSize, len(p.members))
	for i := 0; i < n; i++ {
		p.team = append(p.team, p.members[p.cursor])
		p.cursor = (p.cursor + 1) % len(p.members)
	}
	for k := 0; k < p.numClones; k++ {
		for _, m := range p.team {
			c, err := p.Clone(m)
			if err != nil {
				return err
			}
			p.clones = append(p.clones, clone[T]{of: m, copy: c})
		}
	}
	return nil
}

// EndAssessment stores each assessed member's fitness, folds clone scores
// into their originals and resets the members.
func (p *Population[T]) EndAssessment() error {
	assessed := p.members
	if p.teamSize > 0 {
		assessed = p.team
	}
	for _, m := range assessed {
		StoreFitness(m)
	}
	for _, c := range p.clones {
		p.Merge(c.of, c.copy)
	}
	p.clones = p.clones[:0]
	for _, m := range assessed {
		m.Reset()
	}
	return nil
}

// EndGeneration runs the GA and replaces the population with its output.
func (p *Population[T]) EndGeneration() error {
	evolvers := make([]Evolver, len(p.members))
	for i, m := range p.members {
		evolvers[i] = m
	}
	genomes, err := p.ga.Generate(evolvers)
	if err != nil {
		return fmt.Errorf("breeding generation: %w", err)
	}
	next := make([]T, 0, len(genomes))
	for i, g := range genomes {
		m := p.spawn()
		if err := m.SetGenotype(g); err != nil {
			return fmt.Errorf("offspring %d: %w", i, err)
		}
		next = append(next, m)
	}
	p.members = next
	p.team = p.team[:0]
	p.cursor = 0
	return nil
}

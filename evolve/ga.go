package evolve

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"slices"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/beast/config"
)

var (
	ErrOddPopulation     = errors.New("evolve: population size must be even")
	ErrCullingRange      = errors.New("evolve: culling must be even and at most population size minus 2")
	ErrElitismRange      = errors.New("evolve: elitism must be in [0, population size minus culling]")
	ErrNoAssessedMembers = errors.New("evolve: no member has been assessed")
	ErrGenotypeLength    = errors.New("evolve: genotypes differ in length")
)

// Selection picks how parents are drawn.
type Selection int

const (
	SelectRoulette Selection = iota
	SelectRank
	SelectTournament
)

var selectionNames = []string{"roulette", "rank", "tournament"}

// ParseSelection resolves a configured selection name.
func ParseSelection(s string) (Selection, error) {
	if i := slices.Index(selectionNames, s); i >= 0 {
		return Selection(i), nil
	}
	return 0, fmt.Errorf("unknown selection %q", s)
}

func (s Selection) String() string {
	if int(s) < len(selectionNames) {
		return selectionNames[s]
	}
	return fmt.Sprintf("Selection(%d)", int(s))
}

// FitnessFix picks how negative fitness is treated before selection.
type FitnessFix int

const (
	FixIgnore FitnessFix = iota // use fitness as is
	FixClamp                    // negative fitness becomes 0
	FixShift                    // subtract the generation's worst fitness
)

var fixNames = []string{"ignore", "clamp", "fix"}

// ParseFitnessFix resolves a configured policy name.
func ParseFitnessFix(s string) (FitnessFix, error) {
	if i := slices.Index(fixNames, s); i >= 0 {
		return FitnessFix(i), nil
	}
	return 0, fmt.Errorf("unknown fitness fix %q", s)
}

func (f FitnessFix) String() string {
	if int(f) < len(fixNames) {
		return fixNames[f]
	}
	return fmt.Sprintf("FitnessFix(%d)", int(f))
}

// Options configures a GA.
type Options struct {
	Crossover       float64 // chance of each crossover point firing
	Mutation        float64 // chance of each gene mutating
	CrossoverPoints int
	Selection       Selection
	Fitness         FitnessMethod
	FitnessFix      FitnessFix
	Elitism         int // top members copied unchanged
	Culling         int // worst members barred from breeding
	Mutator         Mutator
	TournamentParam float64 // chance the fittest of a tournament wins
	TournamentSize  int
	RankPressure    float64 // recorded, not used by rank selection
	Exponent        float64 // applied to roulette and rank probabilities
}

// DefaultOptions returns rank selection with 0.7 crossover, 0.05 mutation
// and a N(0, 0.1) mutator.
func DefaultOptions() Options {
	return Options{
		Crossover:       0.7,
		Mutation:        0.05,
		CrossoverPoints: 1,
		Selection:       SelectRank,
		Fitness:         FitnessBest,
		FitnessFix:      FixIgnore,
		Mutator:         NormalMutator(0, 0.1),
		TournamentParam: 0.75,
		TournamentSize:  5,
		RankPressure:    1.5,
		Exponent:        1,
	}
}

// OptionsFromConfig builds options from the ga config section.
func OptionsFromConfig(c config.GAConfig) (Options, error) {
	o := DefaultOptions()
	var err error
	if o.Selection, err = ParseSelection(c.Selection); err != nil {
		return o, err
	}
	if o.Fitness, err = ParseFitnessMethod(c.Fitness); err != nil {
		return o, err
	}
	if o.FitnessFix, err = ParseFitnessFix(c.FitnessFix); err != nil {
		return o, err
	}
	if o.Mutator, err = MutatorByName(c.Mutator, c.MutatorA, c.MutatorB); err != nil {
		return o, err
	}
	o.Crossover = c.Crossover
	o.Mutation = c.Mutation
	o.CrossoverPoints = c.CrossoverPoints
	o.Elitism = c.Elitism
	o.Culling = c.Culling
	o.TournamentParam = c.TournamentParam
	o.TournamentSize = c.TournamentSize
	o.RankPressure = c.RankPressure
	o.Exponent = c.Exponent
	return o, nil
}

// Stats summarises one generation's assessed members.
type Stats struct {
	Generation int     `csv:"generation" json:"generation"`
	Assessed   int     `csv:"assessed" json:"assessed"`
	Best       float64 `csv:"best" json:"best"`
	Average    float64 `csv:"average" json:"average"`
	Worst      float64 `csv:"worst" json:"worst"`
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("assessed", s.Assessed),
		slog.Float64("best", s.Best),
		slog.Float64("average", s.Average),
		slog.Float64("worst", s.Worst),
	)
}

// GA is a generational genetic algorithm over float genomes.
type GA struct {
	opts Options
	rng  *rand.Rand

	members    []Evolver // sorted best first after Setup
	assessed   int
	chromoLen  int
	totalFixed float64
	current    Stats

	history     []Stats
	bestCurrent []float64
	bestEver    []float64
	bestEverFit float64
	hasBestEver bool
	fitness     []float64 // aggregated fitness of the last assessed members
	probs       []float64
	generations int
}

// New creates a GA. A nil rng is seeded from the math/rand source.
func New(opts Options, rng *rand.Rand) *GA {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if opts.Mutator == nil {
		opts.Mutator = NormalMutator(0, 0.1)
	}
	return &GA{opts: opts, rng: rng}
}

// Options returns the current settings.
func (g *GA) Options() Options { return g.opts }

// SetCrossover sets the crossover rate, which must be in [0, 1].
func (g *GA) SetCrossover(c float64) error {
	if c < 0 || c > 1 {
		return fmt.Errorf("crossover rate %g outside [0, 1]", c)
	}
	g.opts.Crossover = c
	return nil
}

// SetMutation sets the per-gene mutation rate, which must be in [0, 1].
func (g *GA) SetMutation(m float64) error {
	if m < 0 || m > 1 {
		return fmt.Errorf("mutation rate %g outside [0, 1]", m)
	}
	g.opts.Mutation = m
	return nil
}

// SetSelection sets the parent selection method.
func (g *GA) SetSelection(s Selection) { g.opts.Selection = s }

// SetMutator replaces the mutation operator.
func (g *GA) SetMutator(m Mutator) { g.opts.Mutator = m }

// SetElitism sets how many top members pass through unchanged.
func (g *GA) SetElitism(n int) { g.opts.Elitism = n }

// SetCulling sets how many of the worst members may not breed.
func (g *GA) SetCulling(n int) { g.opts.Culling = n }

func (g *GA) validate(n int) error {
	if n%2 != 0 {
		return fmt.Errorf("population of %d: %w", n, ErrOddPopulation)
	}
	if c := g.opts.Culling; c < 0 || c%2 != 0 || c > n-2 {
		return fmt.Errorf("culling %d with population %d: %w", c, n, ErrCullingRange)
	}
	if e := g.opts.Elitism; e < 0 || e > n-g.opts.Culling {
		return fmt.Errorf("elitism %d with population %d and culling %d: %w", e, n, g.opts.Culling, ErrElitismRange)
	}
	return nil
}

// CalcStats aggregates each assessed member's scores and records the
// generation's best, average and worst fitness. Unassessed members are
// skipped.
func (g *GA) CalcStats(members []Evolver) error {
	st := Stats{Best: math.Inf(-1), Worst: math.Inf(1)}
	var best Evolver
	var total float64
	assessed := 0
	g.fitness = g.fitness[:0]
	for _, m := range members {
		r := m.Record()
		if !r.Assessed() {
			continue
		}
		f := g.opts.Fitness.Aggregate(r.Scores)
		r.Fitness = f
		g.fitness = append(g.fitness, f)
		assessed++
		total += f
		if best == nil || f > st.Best {
			st.Best = f
			best = m
		}
		if f < st.Worst {
			st.Worst = f
		}
	}
	if assessed == 0 {
		return ErrNoAssessedMembers
	}

	g.generations++
	st.Generation = g.generations
	st.Assessed = assessed
	st.Average = total / float64(assessed)
	g.current = st
	g.assessed = assessed
	g.history = append(g.history, st)

	g.bestCurrent = slices.Clone(best.Genotype())
	if !g.hasBestEver || st.Best > g.bestEverFit {
		g.hasBestEver = true
		g.bestEverFit = st.Best
		g.bestEver = slices.Clone(g.bestCurrent)
	}
	return nil
}

// Setup sorts members best first by fixed fitness and primes each
// member's selection probability. It relies on the last CalcStats.
func (g *GA) Setup(members []Evolver) {
	g.members = members
	g.chromoLen = 0
	if len(members) > 0 {
		g.chromoLen = len(members[0].Genotype())
	}
	g.fixFitness()

	sort.SliceStable(members, func(i, j int) bool {
		ri, rj := members[i].Record(), members[j].Record()
		if ri.Assessed() != rj.Assessed() {
			return ri.Assessed()
		}
		return ri.FixedFitness > rj.FixedFitness
	})

	n := len(members)
	probs := make([]float64, n)
	switch g.opts.Selection {
	case SelectRoulette:
		for i, m := range members {
			r := m.Record()
			if r.Assessed() && r.FixedFitness > 0 && g.totalFixed > 0 {
				probs[i] = math.Pow(r.FixedFitness/g.totalFixed, g.opts.Exponent)
			}
		}
	case SelectRank:
		last := float64(max(n-1, 1))
		for i, m := range members {
			if m.Record().Assessed() {
				probs[i] = math.Pow(1-float64(i)/last, g.opts.Exponent)
			}
		}
	}
	if g.opts.Selection != SelectTournament {
		total := floats.Sum(probs)
		if total <= 0 {
			for i, m := range members {
				if m.Record().Assessed() {
					probs[i] = 1
				}
			}
			total = floats.Sum(probs)
		}
		if total > 0 {
			floats.Scale(1/total, probs)
		}
	}
	for i, m := range members {
		m.Record().Probability = probs[i]
	}
	g.probs = probs
}

func (g *GA) fixFitness() {
	g.totalFixed = 0
	for _, m := range g.members {
		r := m.Record()
		if !r.Assessed() {
			r.Fitness, r.FixedFitness, r.Probability = 0, 0, 0
			continue
		}
		f := r.Fitness
		switch g.opts.FitnessFix {
		case FixClamp:
			f = math.Max(0, f)
		case FixShift:
			f -= g.current.Worst
		}
		r.FixedFitness = f
		g.totalFixed += f
	}
}

// Generate breeds the next generation from members and returns one fresh
// genome per member, elites first. members is reordered best first.
func (g *GA) Generate(members []Evolver) ([][]float64, error) {
	n := len(members)
	if err := g.validate(n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNoAssessedMembers
	}
	want := len(members[0].Genotype())
	for i, m := range members {
		if l := len(m.Genotype()); l != want {
			return nil, fmt.Errorf("member %d has %d genes, want %d: %w", i, l, want, ErrGenotypeLength)
		}
	}
	if err := g.CalcStats(members); err != nil {
		return nil, err
	}
	g.Setup(members)

	pool := min(n-g.opts.Culling, g.assessed)
	cum := make([]float64, pool)
	if pool > 0 {
		floats.CumSum(cum, g.probs[:pool])
	}

	out := make([][]float64, 0, n)
	for _, m := range members[:g.opts.Elitism] {
		out = append(out, slices.Clone(m.Genotype()))
	}
	for len(out) < n {
		c1 := slices.Clone(g.selectParent(pool, cum))
		c2 := slices.Clone(g.selectParent(pool, cum))
		if g.chromoLen > 0 {
			for p := 0; p < g.opts.CrossoverPoints; p++ {
				if g.rng.Float64() < g.opts.Crossover {
					c1, c2 = Crossover(c1, c2, g.rng.Intn(g.chromoLen))
				}
			}
		}
		Mutate(c1, g.opts.Mutation, g.opts.Mutator, g.rng)
		Mutate(c2, g.opts.Mutation, g.opts.Mutator, g.rng)
		out = append(out, c1)
		if len(out) < n {
			out = append(out, c2)
		}
	}
	return out, nil
}

func (g *GA) selectParent(pool int, cum []float64) []float64 {
	switch g.opts.Selection {
	case SelectTournament:
		return g.selectTournament(pool)
	default:
		return g.selectProbability(pool, cum)
	}
}

// selectProbability spins a roulette wheel whose slices are the members'
// probabilities.
func (g *GA) selectProbability(pool int, cum []float64) []float64 {
	if cum[pool-1] <= 0 {
		return g.members[g.rng.Intn(pool)].Genotype()
	}
	ball := g.rng.Float64() * cum[pool-1]
	i := sort.Search(pool, func(i int) bool { return cum[i] > ball })
	if i == pool {
		i = pool - 1
	}
	return g.members[i].Genotype()
}

// selectTournament samples a tournament from the pool; its fittest member
// wins with probability TournamentParam, otherwise a random entrant does.
func (g *GA) selectTournament(pool int) []float64 {
	size := max(1, min(g.opts.TournamentSize, pool))
	entrants := g.rng.Perm(pool)[:size]
	if g.rng.Float64() < g.opts.TournamentParam {
		best := entrants[0]
		for _, i := range entrants[1:] {
			if g.members[i].Record().FixedFitness > g.members[best].Record().FixedFitness {
				best = i
			}
		}
		return g.members[best].Genotype()
	}
	return g.members[entrants[g.rng.Intn(size)]].Genotype()
}

// Current returns the statistics of the last generation.
func (g *GA) Current() Stats { return g.current }

// Fitnesses returns the aggregated fitness of every member assessed in the
// last generation, in member order.
func (g *GA) Fitnesses() []float64 { return g.fitness }

// History returns the statistics of every generation so far.
func (g *GA) History() []Stats { return g.history }

// Generations returns how many generations have been bred.
func (g *GA) Generations() int { return g.generations }

// BestCurrent returns the best genome of the last generation.
func (g *GA) BestCurrent() ([]float64, float64) { return g.bestCurrent, g.current.Best }

// BestEver returns the best genome seen so far and its fitness.
func (g *GA) BestEver() ([]float64, float64, bool) {
	return g.bestEver, g.bestEverFit, g.hasBestEver
}

// Restore reinstates history and the best-ever genome, e.g. from a snapshot.
func (g *GA) Restore(history []Stats, bestEver []float64, bestFitness float64) {
	g.history = slices.Clone(history)
	g.generations = len(history)
	if len(history) > 0 {
		g.current = history[len(history)-1]
	}
	g.bestEver = slices.Clone(bestEver)
	g.bestEverFit = bestFitness
	g.hasBestEver = bestEver != nil
}

// WriteCSV writes the per-generation history as CSV.
func (g *GA) WriteCSV(w io.Writer) error {
	if err := gocsv.Marshal(g.history, w); err != nil {
		return fmt.Errorf("writing ga history: %w", err)
	}
	return nil
}

func (g *GA) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Crossover: %.2f  Mutation: %.2f\n", g.opts.Crossover, g.opts.Mutation)
	fmt.Fprintf(&b, "Selection: %s\n", g.opts.Selection)
	if g.opts.Selection == SelectTournament {
		fmt.Fprintf(&b, "Tournament size: %d  Chance of win: %.2f\n", g.opts.TournamentSize, g.opts.TournamentParam)
	}
	fmt.Fprintf(&b, "Elitism: %d  Culling: %d\n", g.opts.Elitism, g.opts.Culling)
	if g.generations > 0 {
		fmt.Fprintf(&b, "Generation: %d  Average fitness: %.2f  Best fitness: %.2f\n",
			g.generations, g.current.Average, g.current.Best)
	}
	return b.String()
}

package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// GenerationStats holds the fitness distribution of one population at the
// end of a generation.
type GenerationStats struct {
	Population string `csv:"population"`
	Run        int    `csv:"run"`
	Generation int    `csv:"generation"`
	Assessed   int    `csv:"assessed"`

	Best    float64 `csv:"best"`
	Average float64 `csv:"average"`
	Worst   float64 `csv:"worst"`
	StdDev  float64 `csv:"stddev"`

	P10 float64 `csv:"p10"`
	P50 float64 `csv:"p50"`
	P90 float64 `csv:"p90"`

	BestEver float64 `csv:"best_ever"`
}

// Percentile returns the p-th quantile of a sorted slice using linear
// interpolation. p should be in [0, 1]. Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeFitnessStats fills the distribution fields of s from fitness values.
func ComputeFitnessStats(s *GenerationStats, fitness []float64) {
	n := len(fitness)
	s.Assessed = n
	if n == 0 {
		return
	}

	sorted := slices.Clone(fitness)
	slices.Sort(sorted)

	s.Worst = sorted[0]
	s.Best = sorted[n-1]
	s.Average, s.StdDev = stat.PopMeanStdDev(sorted, nil)

	s.P10 = Percentile(sorted, 0.10)
	s.P50 = Percentile(sorted, 0.50)
	s.P90 = Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("population", s.Population),
		slog.Int("run", s.Run),
		slog.Int("generation", s.Generation),
		slog.Int("assessed", s.Assessed),
		slog.Float64("best", s.Best),
		slog.Float64("average", s.Average),
		slog.Float64("worst", s.Worst),
		slog.Float64("stddev", s.StdDev),
		slog.Float64("p10", s.P10),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
		slog.Float64("best_ever", s.BestEver),
	)
}

// LogStats logs the generation stats using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation",
		"population", s.Population,
		"run", s.Run,
		"generation", s.Generation,
		"assessed", s.Assessed,
		"best", s.Best,
		"average", s.Average,
		"worst", s.Worst,
		"stddev", s.StdDev,
		"best_ever", s.BestEver,
	)
}

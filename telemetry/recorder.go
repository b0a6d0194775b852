package telemetry

import (
	"errors"
	"log/slog"

	"github.com/pthm-cable/beast/config"
	"github.com/pthm-cable/beast/simulation"
)

// Recorder observes a simulation and writes per-generation statistics,
// profiler windows, periodic snapshots and the hall of fame. A nil
// OutputManager still logs and archives.
type Recorder struct {
	out  *OutputManager
	pops []NamedPopulation
	hof  *HallOfFame
	perf *PerfCollector
	seed int64

	snapshotEvery int
	profileWindow int
	logStats      bool

	ticks  int
	bodies []BodyState
	err    error
}

var _ simulation.Observer = (*Recorder)(nil)

// NewRecorder creates a recorder writing to out. seed is stored in snapshots.
func NewRecorder(out *OutputManager, cfg config.TelemetryConfig, seed int64) *Recorder {
	return &Recorder{
		out:           out,
		hof:           NewHallOfFame(cfg.ArchiveSize, nil),
		seed:          seed,
		snapshotEvery: cfg.SnapshotEvery,
		profileWindow: cfg.ProfileWindow,
	}
}

// Track records the population p under name.
func (r *Recorder) Track(name string, p Tracked) {
	r.pops = append(r.pops, NamedPopulation{Name: name, Population: p})
}

// Populations returns the tracked populations in the order they were added.
func (r *Recorder) Populations() []NamedPopulation { return r.pops }

// SetProfiler times every tick of the observed world with p.
func (r *Recorder) SetProfiler(p *PerfCollector) { r.perf = p }

// SetLogStats logs generation and profiler stats as they are recorded.
func (r *Recorder) SetLogStats(on bool) { r.logStats = on }

// HallOfFame returns the archive of best genomes.
func (r *Recorder) HallOfFame() *HallOfFame { return r.hof }

// Err returns every write error seen so far.
func (r *Recorder) Err() error { return r.err }

// Begin implements simulation.Observer.
func (r *Recorder) Begin(s *simulation.Simulation, stage simulation.Stage) {
	if stage == simulation.StageSimulation && r.perf != nil {
		s.World().SetTimer(r.perf)
	}
}

// End implements simulation.Observer.
func (r *Recorder) End(s *simulation.Simulation, stage simulation.Stage) {
	switch stage {
	case simulation.StageUpdate:
		r.ticks++
		if r.perf != nil && r.profileWindow > 0 && r.ticks%r.profileWindow == 0 {
			stats := r.perf.Stats()
			r.record(r.out.WritePerf(stats, r.ticks))
			if r.logStats {
				stats.LogStats()
			}
		}
	case simulation.StageAssessment:
		// The arena is cleared right after this hook.
		if r.snapshotEvery > 0 && s.World() != nil {
			r.bodies = CaptureBodies(s.World())
		}
	case simulation.StageGeneration:
		r.endGeneration(s)
	case simulation.StageSimulation:
		r.record(r.Flush())
	}
}

func (r *Recorder) endGeneration(s *simulation.Simulation) {
	pos := s.Position()
	for _, np := range r.pops {
		ga := np.Population.GA()
		gs := GenerationStats{
			Population: np.Name,
			Run:        pos.Run + 1,
			Generation: pos.Generation + 1,
		}
		ComputeFitnessStats(&gs, ga.Fitnesses())
		if _, fit, ok := ga.BestEver(); ok {
			gs.BestEver = fit
		}
		r.record(r.out.WriteGeneration(gs))
		if r.logStats {
			gs.LogStats()
		}

		best, fit := ga.BestCurrent()
		r.hof.Consider(np.Name, best, fit, pos.Run, pos.Generation)
	}

	if r.snapshotEvery > 0 && (pos.Generation+1)%r.snapshotEvery == 0 {
		snap := CaptureSnapshot(s, r.seed, r.pops)
		if len(snap.Bodies) == 0 {
			snap.Bodies = r.bodies
		}
		// Members already belong to the next generation.
		snap.Position.Generation++
		snap.Position.Assessment, snap.Position.TimeStep = 0, 0
		path, err := r.out.WriteSnapshot(snap)
		r.record(err)
		if err == nil && path != "" {
			slog.Info("snapshot saved", "path", path, "generation", snap.Position.Generation)
		}
	}
}

// Flush writes the GA histories and the hall of fame. It runs when the
// simulation completes; call it directly after an interrupted run.
func (r *Recorder) Flush() error {
	var errs []error
	for _, np := range r.pops {
		errs = append(errs, r.out.WriteHistory(np.Name, np.Population.GA()))
	}
	errs = append(errs, r.out.WriteHallOfFame(r.hof))
	return errors.Join(errs...)
}

func (r *Recorder) record(err error) {
	if err == nil {
		return
	}
	slog.Error("telemetry write failed", "error", err)
	r.err = errors.Join(r.err, err)
}

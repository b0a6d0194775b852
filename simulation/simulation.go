// Package simulation drives a World through a hierarchy of runs,
// generations, assessments and time steps, notifying the objects taking
// part at every boundary.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/beast/config"
	"github.com/pthm-cable/beast/world"
)

// ErrEmptyName is returned by Add for an unnamed object.
var ErrEmptyName = errors.New("simulation: empty object name")

// SimObject is anything that takes part in a simulation: populations,
// groups and scenery. Hooks are called in the order objects were added.
type SimObject interface {
	SetWorld(w *world.World)
	AddToWorld() error
	BeginRun() error
	EndRun() error
	BeginGeneration() error
	EndGeneration() error
	BeginAssessment() error
	EndAssessment() error
}

// Base implements SimObject with no-op hooks. Embed it and override the
// hooks you need.
type Base struct {
	world *world.World
}

func (b *Base) SetWorld(w *world.World) { b.world = w }
func (b *Base) World() *world.World     { return b.world }
func (b *Base) AddToWorld() error       { return nil }
func (b *Base) BeginRun() error         { return nil }
func (b *Base) EndRun() error           { return nil }
func (b *Base) BeginGeneration() error  { return nil }
func (b *Base) EndGeneration() error    { return nil }
func (b *Base) BeginAssessment() error  { return nil }
func (b *Base) EndAssessment() error    { return nil }

// Stage identifies a level of the hierarchy.
type Stage int

const (
	StageSimulation Stage = iota
	StageRun
	StageGeneration
	StageAssessment
	StageUpdate
)

func (s Stage) String() string {
	switch s {
	case StageSimulation:
		return "simulation"
	case StageRun:
		return "run"
	case StageGeneration:
		return "generation"
	case StageAssessment:
		return "assessment"
	case StageUpdate:
		return "update"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Observer is told when each stage begins and ends. End for a stage is
// called after every SimObject's End hook has run, so observers see the
// results of the finished stage. StageUpdate fires End only, once per tick.
type Observer interface {
	Begin(s *Simulation, stage Stage)
	End(s *Simulation, stage Stage)
}

// Position is a point in the run hierarchy.
type Position struct {
	Run        int `json:"run"`
	Generation int `json:"generation"`
	Assessment int `json:"assessment"`
	TimeStep   int `json:"time_step"`
}

// Simulation owns a World and the objects evaluated in it.
type Simulation struct {
	name    string
	world   *world.World
	objects []SimObject
	names   map[string]SimObject

	runs          int
	generations   int
	assessments   int
	timeSteps     int
	timeIncrement int

	run        int
	generation int
	assessment int
	timeStep   int
	complete   bool
	err        error

	logs      config.LoggingConfig
	logger    *slog.Logger
	observers []Observer
}

// New creates a simulation over w with a single run, generation and
// assessment of 1000 time steps.
func New(name string, w *world.World) *Simulation {
	return &Simulation{
		name:          name,
		world:         w,
		names:         make(map[string]SimObject),
		runs:          1,
		generations:   1,
		assessments:   1,
		timeSteps:     1000,
		timeIncrement: 1,
		logs:          config.LoggingConfig{Simulation: true, Run: true},
		logger:        slog.Default().With("sim", name),
	}
}

// NewFromConfig creates a simulation with a new world sized and counted from
// cfg. rng seeds the world; nil uses a time-based source.
func NewFromConfig(name string, cfg *config.Config, rng *rand.Rand) *Simulation {
	w := world.New(cfg.World.Width, cfg.World.Height, rng)
	if cfg.World.MaxCollisions > 0 {
		w.SetMaxCollisions(cfg.World.MaxCollisions)
	}
	s := New(name, w)
	s.SetRuns(cfg.Simulation.Runs)
	s.SetGenerations(cfg.Simulation.Generations)
	s.SetAssessments(cfg.Simulation.Assessments)
	s.SetTimeSteps(cfg.Simulation.TimeSteps)
	s.SetTimeIncrement(cfg.Simulation.TimeIncrement)
	s.SetLogging(cfg.Logging)
	return s
}

// Add registers obj under name. Adding a name twice replaces the earlier
// object in place.
func (s *Simulation) Add(name string, obj SimObject) error {
	if name == "" {
		return ErrEmptyName
	}
	if old, ok := s.names[name]; ok {
		for i, o := range s.objects {
			if o == old {
				s.objects[i] = obj
			}
		}
	} else {
		s.objects = append(s.objects, obj)
	}
	s.names[name] = obj
	obj.SetWorld(s.world)
	return nil
}

// Get returns the object registered under name.
func (s *Simulation) Get(name string) (SimObject, bool) {
	o, ok := s.names[name]
	return o, ok
}

// Observe adds an observer.
func (s *Simulation) Observe(o Observer) { s.observers = append(s.observers, o) }

// SetLogger replaces the logger, which defaults to slog.Default.
func (s *Simulation) SetLogger(l *slog.Logger) { s.logger = l.With("sim", s.name) }

// SetLogging selects which stages are logged.
func (s *Simulation) SetLogging(l config.LoggingConfig) { s.logs = l }

func (s *Simulation) SetRuns(n int)          { s.runs = max(n, 1) }
func (s *Simulation) SetGenerations(n int)   { s.generations = n }
func (s *Simulation) SetAssessments(n int)   { s.assessments = max(n, 1) }
func (s *Simulation) SetTimeSteps(n int)     { s.timeSteps = n }
func (s *Simulation) SetTimeIncrement(n int) { s.timeIncrement = max(n, 1) }

func (s *Simulation) Name() string        { return s.name }
func (s *Simulation) World() *world.World { return s.world }
func (s *Simulation) Runs() int           { return s.runs }
func (s *Simulation) Generations() int    { return s.generations }
func (s *Simulation) Assessments() int    { return s.assessments }
func (s *Simulation) TimeSteps() int      { return s.timeSteps }
func (s *Simulation) Complete() bool      { return s.complete }

// Err returns the error that stopped the simulation, if any.
func (s *Simulation) Err() error { return s.err }

// Position returns the current point in the hierarchy.
func (s *Simulation) Position() Position {
	return Position{Run: s.run, Generation: s.generation, Assessment: s.assessment, TimeStep: s.timeStep}
}

// Status describes the current position for display.
func (s *Simulation) Status() string {
	if s.complete {
		return "Simulation complete"
	}
	return fmt.Sprintf("Run: %d/%d, Generation: %d/%s, Assessment: %d/%d, Time step: %d/%s",
		s.run+1, s.runs,
		s.generation+1, bound(s.generations),
		s.assessment+1, s.assessments,
		s.timeStep, bound(s.timeSteps))
}

func bound(n int) string {
	if n <= 0 {
		return "∞"
	}
	return fmt.Sprint(n)
}

// Init gives every object the simulation's world.
func (s *Simulation) Init() {
	for _, o := range s.objects {
		o.SetWorld(s.world)
	}
}

// BeginSimulation starts the first run.
func (s *Simulation) BeginSimulation() {
	s.complete = false
	s.err = nil
	s.run = 0
	if s.logs.Simulation {
		s.logger.Info("start simulation", "runs", s.runs, "generations", s.generations,
			"assessments", s.assessments, "time_steps", s.timeSteps)
	}
	s.notifyBegin(StageSimulation)
	s.beginRun()
}

// Resume restarts the simulation at the start of p's generation, for
// objects whose state was restored from a snapshot.
func (s *Simulation) Resume(p Position) {
	s.complete = false
	s.err = nil
	s.run = min(max(p.Run, 0), s.runs-1)
	s.generation = max(p.Generation, 0)
	if s.logs.Simulation {
		s.logger.Info("resume simulation", "run", s.run, "generation", s.generation)
	}
	s.notifyBegin(StageSimulation)
	s.beginGeneration()
}

// Update advances the world by one tick and crosses any boundaries that
// tick reaches. It reports whether the simulation has finished, either
// because it completed or because a hook failed.
func (s *Simulation) Update() bool {
	if s.done() {
		return true
	}
	s.world.Update()
	s.timeStep += s.timeIncrement
	if s.logs.Update {
		s.logger.Debug("update", "time_step", s.timeStep)
	}
	s.notifyEnd(StageUpdate)
	if s.timeSteps > 0 && s.timeStep >= s.timeSteps {
		s.endAssessment()
	}
	return s.done()
}

// Run initialises the simulation and updates it until it finishes or ctx
// is cancelled.
func (s *Simulation) Run(ctx context.Context) error {
	s.Init()
	s.BeginSimulation()
	for !s.done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Update()
	}
	return s.err
}

// ResetRun restarts the current run.
func (s *Simulation) ResetRun() {
	s.world.CleanUp()
	s.beginRun()
}

// ResetGeneration restarts the current generation.
func (s *Simulation) ResetGeneration() {
	s.world.CleanUp()
	s.beginGeneration()
}

// ResetAssessment restarts the current assessment.
func (s *Simulation) ResetAssessment() {
	s.world.CleanUp()
	s.beginAssessment()
}

func (s *Simulation) done() bool { return s.complete || s.err != nil }

func (s *Simulation) beginRun() {
	s.generation = 0
	if s.logs.Run {
		s.logger.Info("start run", "run", s.run+1, "of", s.runs)
	}
	s.notifyBegin(StageRun)
	if s.each("begin run", SimObject.BeginRun) {
		s.beginGeneration()
	}
}

func (s *Simulation) beginGeneration() {
	s.assessment = 0
	if s.logs.Generation {
		s.logger.Info("start generation", "run", s.run+1, "generation", s.generation+1)
	}
	s.notifyBegin(StageGeneration)
	if s.each("begin generation", SimObject.BeginGeneration) {
		s.beginAssessment()
	}
}

func (s *Simulation) beginAssessment() {
	s.timeStep = 0
	s.notifyBegin(StageAssessment)
	if !s.each("begin assessment", SimObject.BeginAssessment) {
		return
	}
	if !s.each("add to world", SimObject.AddToWorld) {
		return
	}
	s.world.Init()
}

func (s *Simulation) endAssessment() {
	if !s.each("end assessment", SimObject.EndAssessment) {
		return
	}
	if s.logs.Assessment {
		s.logger.Info("assessment complete", "run", s.run+1, "generation", s.generation+1,
			"assessment", s.assessment+1, "time_steps", s.timeStep)
	}
	s.notifyEnd(StageAssessment)
	s.world.CleanUp()
	s.assessment++
	if s.assessment >= s.assessments {
		s.endGeneration()
	} else {
		s.beginAssessment()
	}
}

func (s *Simulation) endGeneration() {
	if !s.each("end generation", SimObject.EndGeneration) {
		return
	}
	if s.logs.Generation {
		s.logger.Info("generation complete", "run", s.run+1, "generation", s.generation+1)
	}
	s.notifyEnd(StageGeneration)
	s.generation++
	if s.generations > 0 && s.generation >= s.generations {
		s.endRun()
	} else {
		s.beginGeneration()
	}
}

func (s *Simulation) endRun() {
	if !s.each("end run", SimObject.EndRun) {
		return
	}
	if s.logs.Run {
		s.logger.Info("run complete", "run", s.run+1, "of", s.runs)
	}
	s.notifyEnd(StageRun)
	s.run++
	if s.run >= s.runs {
		s.endSimulation()
	} else {
		s.beginRun()
	}
}

func (s *Simulation) endSimulation() {
	if s.logs.Simulation {
		s.logger.Info("simulation complete", "runs", s.runs)
	}
	s.world.CleanUp()
	s.complete = true
	s.notifyEnd(StageSimulation)
}

// each calls hook on every object in order, stopping at the first error.
// It reports whether every call succeeded.
func (s *Simulation) each(what string, hook func(SimObject) error) bool {
	for _, o := range s.objects {
		if err := hook(o); err != nil {
			s.err = fmt.Errorf("%s (run %d, generation %d, assessment %d): %w",
				what, s.run+1, s.generation+1, s.assessment+1, err)
			s.logger.Error("simulation stopped", "error", s.err)
			return false
		}
	}
	return true
}

func (s *Simulation) notifyBegin(stage Stage) {
	for _, o := range s.observers {
		o.Begin(s, stage)
	}
}

func (s *Simulation) notifyEnd(stage Stage) {
	for _, o := range s.observers {
		o.End(s, stage)
	}
}

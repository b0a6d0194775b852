package simulation

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/pthm-cable/beast/config"
	"github.com/pthm-cable/beast/evolve"
	"github.com/pthm-cable/beast/world"
)

func init() {
	config.MustInit("")
}

// recorder counts the hooks it receives and can fail one of them.
type recorder struct {
	Base
	calls  map[string]int
	failOn string
}

var errHook = errors.New("hook failed")

func newRecorder() *recorder { return &recorder{calls: make(map[string]int)} }

func (r *recorder) hit(name string) error {
	r.calls[name]++
	if name == r.failOn {
		return errHook
	}
	return nil
}

func (r *recorder) AddToWorld() error      { return r.hit("add") }
func (r *recorder) BeginRun() error        { return r.hit("begin run") }
func (r *recorder) EndRun() error          { return r.hit("end run") }
func (r *recorder) BeginGeneration() error { return r.hit("begin generation") }
func (r *recorder) EndGeneration() error   { return r.hit("end generation") }
func (r *recorder) BeginAssessment() error { return r.hit("begin assessment") }
func (r *recorder) EndAssessment() error   { return r.hit("end assessment") }

// stageCounter is an Observer that counts stage ends.
type stageCounter struct {
	begins map[Stage]int
	ends   map[Stage]int
}

func (c *stageCounter) Begin(_ *Simulation, st Stage) { c.begins[st]++ }
func (c *stageCounter) End(_ *Simulation, st Stage)   { c.ends[st]++ }

func quiet(s *Simulation) *Simulation {
	s.SetLogging(config.LoggingConfig{})
	return s
}

func newSim(runs, gens, assessments, steps int) *Simulation {
	s := quiet(New("test", world.New(400, 400, rand.New(rand.NewSource(1)))))
	s.SetRuns(runs)
	s.SetGenerations(gens)
	s.SetAssessments(assessments)
	s.SetTimeSteps(steps)
	return s
}

func TestHierarchyCounts(t *testing.T) {
	s := newSim(2, 3, 2, 5)
	r := newRecorder()
	if err := s.Add("r", r); err != nil {
		t.Fatal(err)
	}
	obs := &stageCounter{begins: map[Stage]int{}, ends: map[Stage]int{}}
	s.Observe(obs)

	s.Init()
	s.BeginSimulation()
	ticks := 0
	for !s.Update() {
		ticks++
	}
	ticks++

	if want := 2 * 3 * 2 * 5; ticks != want {
		t.Errorf("ticks = %d, want %d", ticks, want)
	}
	want := map[string]int{
		"begin run":        2,
		"end run":          2,
		"begin generation": 6,
		"end generation":   6,
		"begin assessment": 12,
		"end assessment":   12,
		"add":              12,
	}
	for k, v := range want {
		if r.calls[k] != v {
			t.Errorf("%s called %d times, want %d", k, r.calls[k], v)
		}
	}
	if obs.ends[StageUpdate] != ticks {
		t.Errorf("update observed %d times, want %d", obs.ends[StageUpdate], ticks)
	}
	if obs.begins[StageGeneration] != 6 || obs.ends[StageGeneration] != 6 {
		t.Errorf("generation observed %d/%d, want 6/6", obs.begins[StageGeneration], obs.ends[StageGeneration])
	}
	if obs.ends[StageSimulation] != 1 {
		t.Errorf("simulation end observed %d times, want 1", obs.ends[StageSimulation])
	}
	if !s.Complete() || s.Err() != nil {
		t.Errorf("complete = %v, err = %v", s.Complete(), s.Err())
	}
	if s.Status() != "Simulation complete" {
		t.Errorf("status = %q", s.Status())
	}
	if !s.Update() {
		t.Error("Update after completion should report done")
	}
}

func TestStatus(t *testing.T) {
	s := newSim(1, 0, 2, 10)
	s.Init()
	s.BeginSimulation()
	for i := 0; i < 13; i++ {
		s.Update()
	}
	want := "Run: 1/1, Generation: 1/∞, Assessment: 2/2, Time step: 3/10"
	if got := s.Status(); got != want {
		t.Errorf("status = %q, want %q", got, want)
	}
}

func TestHookErrorStopsSimulation(t *testing.T) {
	s := newSim(1, 3, 1, 2)
	r := newRecorder()
	r.failOn = "end generation"
	s.Add("r", r)

	err := s.Run(context.Background())
	if !errors.Is(err, errHook) {
		t.Fatalf("error = %v, want errHook", err)
	}
	if !strings.Contains(err.Error(), "end generation") {
		t.Errorf("error %q does not name the hook", err)
	}
	if s.Complete() {
		t.Error("failed simulation reported complete")
	}
	if r.calls["begin generation"] != 1 {
		t.Errorf("continued after failure: %d generations begun", r.calls["begin generation"])
	}
}

func TestUnboundedTimeSteps(t *testing.T) {
	s := newSim(1, 1, 1, 0)
	r := newRecorder()
	s.Add("r", r)
	s.Init()
	s.BeginSimulation()
	for i := 0; i < 500; i++ {
		if s.Update() {
			t.Fatal("unbounded assessment finished")
		}
	}
	if s.Position().TimeStep != 500 {
		t.Errorf("time step = %d, want 500", s.Position().TimeStep)
	}
	if r.calls["end assessment"] != 0 {
		t.Error("assessment ended")
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	s := newSim(1, 0, 1, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestResetAssessment(t *testing.T) {
	s := newSim(1, 1, 1, 100)
	r := newRecorder()
	s.Add("r", r)
	s.Init()
	s.BeginSimulation()
	for i := 0; i < 7; i++ {
		s.Update()
	}
	s.ResetAssessment()
	if s.Position().TimeStep != 0 {
		t.Errorf("time step = %d after reset", s.Position().TimeStep)
	}
	if r.calls["begin assessment"] != 2 || r.calls["add"] != 2 {
		t.Errorf("reset did not restart the assessment: %v", r.calls)
	}
}

func TestAddReplacesByName(t *testing.T) {
	s := newSim(1, 1, 1, 1)
	a, b := newRecorder(), newRecorder()
	s.Add("x", a)
	s.Add("x", b)
	if err := s.Add("", a); !errors.Is(err, ErrEmptyName) {
		t.Errorf("error = %v, want ErrEmptyName", err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if a.calls["begin run"] != 0 || b.calls["begin run"] != 1 {
		t.Errorf("replaced object still called: a=%v b=%v", a.calls, b.calls)
	}
	if got, _ := s.Get("x"); got != b {
		t.Error("Get returned the replaced object")
	}
}

// blob is an evolvable body scored by the sum of its genes.
type blob struct {
	*world.Object
	genes []float64
	rec   evolve.Record
}

func (b *blob) Genotype() []float64    { return b.genes }
func (b *blob) Record() *evolve.Record { return &b.rec }

func (b *blob) SetGenotype(g []float64) error {
	copy(b.genes, g)
	return nil
}

func (b *blob) Fitness() float64 {
	f := 0.0
	for _, v := range b.genes {
		f += v
	}
	return f
}

func TestPopulationEvolvesAcrossGenerations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	spawn := func() *blob {
		return &blob{Object: world.NewObject(), genes: []float64{rng.Float64(), rng.Float64()}}
	}
	pop := evolve.NewPopulation(10, spawn, evolve.New(evolve.DefaultOptions(), rng))
	pop.SetTeamSize(5)

	s := newSim(1, 4, 2, 3)
	s.Add("blobs", pop)
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := pop.GA().Generations(); got != 4 {
		t.Errorf("GA ran %d generations, want 4", got)
	}
	if pop.Len() != 10 {
		t.Errorf("population size %d, want 10", pop.Len())
	}
	if n := len(s.World().Objects()); n != 0 {
		t.Errorf("world holds %d bodies after completion", n)
	}
}

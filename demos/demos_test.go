package demos

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/pthm-cable/beast/config"
	"github.com/pthm-cable/beast/geom"
	"github.com/pthm-cable/beast/world"
)

func init() {
	config.MustInit("")
}

// smallConfig returns the loaded config with small demo populations.
func smallConfig() *config.Config {
	cfg := *config.Cfg()
	cfg.Demo.Population = 4
	cfg.Demo.Cheese = 4
	cfg.Demo.TeamSize = 2
	cfg.Logging = config.LoggingConfig{}
	return &cfg
}

func TestBuildEveryDemo(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			setup, err := Build(name, smallConfig(), rand.New(rand.NewSource(1)))
			if err != nil {
				t.Fatal(err)
			}
			s := setup.Sim
			s.Init()
			s.BeginSimulation()
			for i := 0; i < 20; i++ {
				s.Update()
			}
			if err := s.Err(); err != nil {
				t.Fatal(err)
			}
			if len(s.World().Animats()) == 0 {
				t.Error("no animats in the world")
			}
		})
	}
	if _, err := Build("cat", smallConfig(), nil); !errors.Is(err, ErrUnknownDemo) {
		t.Errorf("error = %v, want ErrUnknownDemo", err)
	}
}

func TestMouseEatsCheese(t *testing.T) {
	w := world.New(400, 400, rand.New(rand.NewSource(2)))
	m := NewMouse(world.DefaultPhysics())
	m.SetStartLocation(geom.Vec(100, 100))
	c := NewCheese()
	c.SetStartLocation(geom.Vec(102, 100))
	w.Add(m)
	w.Add(c)
	w.Init()
	w.Update()

	if m.CheeseFound() != 1 {
		t.Fatalf("cheese found = %d, want 1", m.CheeseFound())
	}
	if c.Location().Distance(geom.Vec(102, 100)) < 1e-9 {
		t.Error("eaten cheese did not move")
	}
	m.Reset()
	if m.CheeseFound() != 0 {
		t.Error("Reset kept the cheese count")
	}
}

func TestPredatorEatsPrey(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	w := world.New(800, 800, rng)
	pd := NewPredator(world.DefaultPhysics(), rng)
	pd.SetStartLocation(geom.Vec(400, 400))
	pr := NewPrey(world.DefaultPhysics(), rng)
	pr.SetStartLocation(geom.Vec(405, 400))
	w.Add(pd)
	w.Add(pr)
	w.Init()

	if pr.Fitness() != 1 {
		t.Errorf("uncaught prey fitness = %v, want 1", pr.Fitness())
	}
	w.Update()

	if pd.PreyEaten() < 1 || pr.TimesEaten() != pd.PreyEaten() {
		t.Fatalf("predator ate %d, prey eaten %d", pd.PreyEaten(), pr.TimesEaten())
	}
	if pd.Fitness() != float64(pd.PreyEaten()) {
		t.Errorf("predator fitness = %v", pd.Fitness())
	}
	if want := 1 / float64(pr.TimesEaten()); pr.Fitness() != want {
		t.Errorf("prey fitness = %v, want %v", pr.Fitness(), want)
	}
}

func TestEvoMouseControlsAreShifted(t *testing.T) {
	w := world.New(400, 400, rand.New(rand.NewSource(4)))
	m := NewEvoMouse(world.DefaultPhysics(), 400, 4, rand.New(rand.NewSource(5)))
	w.Add(m)
	w.Add(NewCheese())
	w.Init()
	for i := 0; i < 10; i++ {
		w.Update()
		for _, name := range m.ControlNames() {
			if v := m.Animat.Control(name); v < -0.5 || v > 1.5 {
				t.Fatalf("control %s = %v outside [-0.5, 1.5]", name, v)
			}
		}
	}
}

func TestEvoMouseRunsGenerations(t *testing.T) {
	setup, err := BuildEvoMouse(smallConfig(), rand.New(rand.NewSource(6)))
	if err != nil {
		t.Fatal(err)
	}
	s := setup.Sim
	s.SetGenerations(3)
	s.SetTimeSteps(25)
	if err := s.Run(t.Context()); err != nil {
		t.Fatal(err)
	}
	if len(setup.Populations) != 1 {
		t.Fatalf("tracked %d populations, want 1", len(setup.Populations))
	}
	ga := setup.Populations[0].Population.GA()
	if ga.Generations() != 3 {
		t.Errorf("GA generations = %d, want 3", ga.Generations())
	}
}

func TestChaseAssessesEveryMember(t *testing.T) {
	setup, err := BuildChase(smallConfig(), rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatal(err)
	}
	s := setup.Sim
	s.SetGenerations(1)
	s.SetAssessments(2)
	s.SetTimeSteps(10)
	if err := s.Run(t.Context()); err != nil {
		t.Fatal(err)
	}
	for _, np := range setup.Populations {
		if got := np.Population.GA().Current().Assessed; got != 4 {
			t.Errorf("%s: %d members assessed, want 4", np.Name, got)
		}
	}
}

func TestBraitenbergScene(t *testing.T) {
	setup, err := BuildBraitenberg(smallConfig(), rand.New(rand.NewSource(8)))
	if err != nil {
		t.Fatal(err)
	}
	s := setup.Sim
	s.Init()
	s.BeginSimulation()

	w := s.World()
	if len(w.Animats()) != 2 || len(w.Objects()) != len(dotTrack) {
		t.Fatalf("world holds %d animats and %d objects, want 2 and %d",
			len(w.Animats()), len(w.Objects()), len(dotTrack))
	}
	wirings := map[Wiring]bool{}
	for _, a := range w.Animats() {
		v, ok := a.(*Vehicle)
		if !ok {
			t.Fatalf("unexpected animat %T", a)
		}
		wirings[v.Wiring()] = true
	}
	if !wirings[Crossed] || !wirings[Uncrossed] {
		t.Error("want one vehicle of each wiring")
	}

	for i := 0; i < 200; i++ {
		if s.Update() {
			t.Fatal("unbounded demo finished")
		}
		for _, a := range w.Animats() {
			an := a.AsAnimat()
			for _, name := range an.ControlNames() {
				if v := an.Control(name); v < 0 || v > 0.5 {
					t.Fatalf("tick %d: control %s = %v outside [0, 0.5]", i, name, v)
				}
			}
		}
	}
}

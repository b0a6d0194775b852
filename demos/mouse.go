package demos

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/beast/agents"
	"github.com/pthm-cable/beast/config"
	"github.com/pthm-cable/beast/evolve"
	"github.com/pthm-cable/beast/sensors"
	"github.com/pthm-cable/beast/telemetry"
	"github.com/pthm-cable/beast/world"
)

// mouseRange is how far a hand-wired mouse can smell cheese.
const mouseRange = 250.0

// Mouse steers towards the nearest cheese with a fixed rule.
type Mouse struct {
	*world.Animat
	cheeseFound int
}

// NewMouse creates a mouse that senses the bearing of the nearest cheese.
func NewMouse(p world.Physics) *Mouse {
	m := &Mouse{Animat: world.NewAnimatWith(p)}
	m.SetKind(KindMouse)
	m.SetRadius(10)
	m.SetMaxSpeed(100)
	m.SetMinSpeed(0)
	m.AddSensor("angle", sensors.NearestAngleSensor(KindCheese, mouseRange, false))
	m.SetInteractionRange(mouseRange)
	m.SetController(world.ControllerFunc(func(a *world.Animat) {
		o := a.Sensor("angle").Output()
		a.SetControl(world.ControlLeft, 0.5+o)
		a.SetControl(world.ControlRight, 0.5-o)
	}))
	return m
}

// CheeseFound returns the cheese eaten since the last reset.
func (m *Mouse) CheeseFound() int { return m.cheeseFound }

// OnCollision eats cheese.
func (m *Mouse) OnCollision(other world.Body) {
	if c, ok := other.(*Cheese); ok {
		m.cheeseFound++
		c.Eaten()
	}
}

func (m *Mouse) Reset() {
	m.cheeseFound = 0
	m.Animat.Reset()
}

// BuildMouse builds mice foraging for cheese with a fixed steering rule.
// It runs a single unbounded assessment.
func BuildMouse(cfg *config.Config, rng *rand.Rand) (*Setup, error) {
	s := newSim("Mouse", cfg, rng, 1, 1, 0)
	p := physics(cfg)
	if err := s.Add("mice", evolve.NewGroup(cfg.Demo.Population, func() *Mouse { return NewMouse(p) })); err != nil {
		return nil, err
	}
	if err := s.Add("cheese", evolve.NewGroup(cfg.Demo.Cheese, NewCheese)); err != nil {
		return nil, err
	}
	return &Setup{Sim: s}, nil
}

// EvoMouse learns to find cheese with a feed-forward network fed by the
// bearing of the nearest cheese.
type EvoMouse struct {
	*agents.EvoFFNAnimat
	cheeseFound int
}

// NewEvoMouse creates a mouse whose brain has hidden units and whose sensor
// reaches sensorRange.
func NewEvoMouse(p world.Physics, sensorRange float64, hidden int, rng *rand.Rand) *EvoMouse {
	m := &EvoMouse{EvoFFNAnimat: agents.NewEvoFFNAnimat()}
	m.SetPhysics(p)
	m.SetKind(KindMouse)
	m.SetSolid(false)
	m.SetRadius(10)
	m.AddSensor("angle", sensors.NearestAngleSensor(KindCheese, sensorRange, false))
	m.SetInteractionRange(sensorRange)
	m.AddFFNBrain(hidden, rng)
	// Network outputs lie in [-1, 1]; shift them so the mouse mostly
	// drives forwards.
	m.SetController(world.ControllerFunc(func(a *world.Animat) {
		m.RunBrain()
		for _, name := range a.ControlNames() {
			a.SetControl(name, a.Control(name)+0.5)
		}
	}))
	return m
}

// CheeseFound returns the cheese eaten since the last reset.
func (m *EvoMouse) CheeseFound() int { return m.cheeseFound }

// OnCollision eats cheese.
func (m *EvoMouse) OnCollision(other world.Body) {
	if c, ok := other.(*Cheese); ok {
		m.cheeseFound++
		c.Eaten()
	}
}

func (m *EvoMouse) Reset() {
	m.cheeseFound = 0
	m.EvoFFNAnimat.Reset()
}

// Fitness is the cheese eaten during the assessment.
func (m *EvoMouse) Fitness() float64 { return float64(m.cheeseFound) }

// BuildEvoMouse builds a population of evolving mice. Each generation is one
// assessment of 500 time steps, for 100 generations.
func BuildEvoMouse(cfg *config.Config, rng *rand.Rand) (*Setup, error) {
	s := newSim("EvoMouse", cfg, rng, 100, 1, 500)
	ga, err := newGA(cfg, rng, 0.25, 0.1, evolve.SelectRoulette)
	if err != nil {
		return nil, fmt.Errorf("evomouse: %w", err)
	}
	p := physics(cfg)
	d := cfg.Demo
	mice := evolve.NewPopulation(d.Population, func() *EvoMouse {
		return NewEvoMouse(p, d.SensorRange, d.Hidden, rng)
	}, ga)
	if err := s.Add("mice", mice); err != nil {
		return nil, err
	}
	if err := s.Add("cheese", evolve.NewGroup(d.Cheese, NewCheese)); err != nil {
		return nil, err
	}
	return &Setup{
		Sim:         s,
		Populations: []telemetry.NamedPopulation{{Name: "mice", Population: mice}},
	}, nil
}

package demos

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/beast/agents"
	"github.com/pthm-cable/beast/components"
	"github.com/pthm-cable/beast/config"
	"github.com/pthm-cable/beast/evolve"
	"github.com/pthm-cable/beast/sensors"
	"github.com/pthm-cable/beast/telemetry"
	"github.com/pthm-cable/beast/world"
)

// chaseRange is how far predators and prey can see each other.
const chaseRange = 300.0

// newChaser creates an evolvable animat with a pair of forward-facing
// proximity sensors for target and a four-unit hidden layer.
func newChaser(p world.Physics, kind, target components.Kind, rng *rand.Rand) *agents.EvoFFNAnimat {
	a := agents.NewEvoFFNAnimat()
	a.SetPhysics(p)
	a.SetKind(kind)
	a.SetSolid(false)
	a.SetMinSpeed(0)
	a.AddSensor("left", sensors.ProximitySensor(target, math.Pi/4, chaseRange, math.Pi/8, true))
	a.AddSensor("right", sensors.ProximitySensor(target, math.Pi/4, chaseRange, -math.Pi/8, true))
	a.SetInteractionRange(chaseRange)
	a.AddFFNBrain(4, rng)
	// Map network outputs from [-1, 1] to [0, 1].
	a.SetController(world.ControllerFunc(func(an *world.Animat) {
		a.RunBrain()
		for _, name := range an.ControlNames() {
			an.SetControl(name, 0.5*(an.Control(name)+1))
		}
	}))
	return a
}

// Prey evolves to avoid predators.
type Prey struct {
	*agents.EvoFFNAnimat
	timesEaten int
}

// NewPrey creates a prey animat.
func NewPrey(p world.Physics, rng *rand.Rand) *Prey {
	pr := &Prey{EvoFFNAnimat: newChaser(p, KindPrey, KindPredator, rng)}
	pr.SetRadius(10)
	pr.SetMaxSpeed(100)
	return pr
}

// Eaten respawns the prey somewhere random.
func (p *Prey) Eaten() {
	p.timesEaten++
	if w := p.World(); w != nil {
		p.SetLocation(w.RandomLocation())
	}
	p.Trail().Clear()
}

// TimesEaten returns how often the prey was caught since the last reset.
func (p *Prey) TimesEaten() int { return p.timesEaten }

// Fitness is 1 for a prey never caught and 1/n for one caught n times.
func (p *Prey) Fitness() float64 {
	if p.timesEaten == 0 {
		return 1
	}
	return 1 / float64(p.timesEaten)
}

func (p *Prey) Reset() {
	p.timesEaten = 0
	p.EvoFFNAnimat.Reset()
}

// Predator evolves to catch prey.
type Predator struct {
	*agents.EvoFFNAnimat
	preyEaten int
}

// NewPredator creates a predator, larger and slightly faster than prey.
func NewPredator(p world.Physics, rng *rand.Rand) *Predator {
	pd := &Predator{EvoFFNAnimat: newChaser(p, KindPredator, KindPrey, rng)}
	pd.SetRadius(20)
	pd.SetMaxSpeed(110)
	return pd
}

// OnCollision eats prey.
func (p *Predator) OnCollision(other world.Body) {
	if pr, ok := other.(*Prey); ok {
		p.preyEaten++
		pr.Eaten()
	}
}

// PreyEaten returns the prey caught since the last reset.
func (p *Predator) PreyEaten() int { return p.preyEaten }

// Fitness is the number of prey caught.
func (p *Predator) Fitness() float64 { return float64(p.preyEaten) }

func (p *Predator) Reset() {
	p.preyEaten = 0
	p.EvoFFNAnimat.Reset()
}

// BuildChase co-evolves predators and prey. Teams of each meet for three
// assessments of 500 time steps per generation, for 2000 generations.
func BuildChase(cfg *config.Config, rng *rand.Rand) (*Setup, error) {
	s := newSim("Chase", cfg, rng, 2000, 3, 500)
	gaPrey, err := newGA(cfg, rng, 0.25, 0.1, evolve.SelectRoulette)
	if err != nil {
		return nil, fmt.Errorf("chase: %w", err)
	}
	gaPred, err := newGA(cfg, rng, 0.25, 0.1, evolve.SelectRoulette)
	if err != nil {
		return nil, fmt.Errorf("chase: %w", err)
	}

	p := physics(cfg)
	d := cfg.Demo
	prey := evolve.NewPopulation(d.Population, func() *Prey { return NewPrey(p, rng) }, gaPrey)
	prey.SetTeamSize(d.TeamSize)
	preds := evolve.NewPopulation(d.Population, func() *Predator { return NewPredator(p, rng) }, gaPred)
	preds.SetTeamSize(d.TeamSize)

	if err := s.Add("prey", prey); err != nil {
		return nil, err
	}
	if err := s.Add("predators", preds); err != nil {
		return nil, err
	}
	return &Setup{
		Sim: s,
		Populations: []telemetry.NamedPopulation{
			{Name: "prey", Population: prey},
			{Name: "predators", Population: preds},
		},
	}, nil
}

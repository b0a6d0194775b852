// Package demos holds the bundled demonstration simulations: foraging mice,
// evolving mice, predator and prey, and Braitenberg vehicles.
package demos

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"github.com/pthm-cable/beast/components"
	"github.com/pthm-cable/beast/config"
	"github.com/pthm-cable/beast/evolve"
	"github.com/pthm-cable/beast/simulation"
	"github.com/pthm-cable/beast/telemetry"
	"github.com/pthm-cable/beast/world"
)

// ErrUnknownDemo is returned by Build for a name that is not registered.
var ErrUnknownDemo = errors.New("unknown demo")

// Kinds of the bodies the demos put in the arena.
var (
	KindCheese   = components.RegisterKind("cheese", components.KindObject)
	KindDot      = components.RegisterKind("dot", components.KindObject)
	KindMouse    = components.RegisterKind("mouse", components.KindAnimat)
	KindPrey     = components.RegisterKind("prey", components.KindAnimat)
	KindPredator = components.RegisterKind("predator", components.KindAnimat)
	KindVehicle  = components.RegisterKind("vehicle", components.KindAnimat)
)

// Setup is a built demo: the simulation to run and the populations it
// evolves, for telemetry to track.
type Setup struct {
	Sim         *simulation.Simulation
	Populations []telemetry.NamedPopulation
}

// Builder creates a demo from cfg. rng drives the world and every random
// choice the demo makes.
type Builder func(cfg *config.Config, rng *rand.Rand) (*Setup, error)

var registry = map[string]Builder{
	"mouse":       BuildMouse,
	"evomouse":    BuildEvoMouse,
	"chase":       BuildChase,
	"braitenberg": BuildBraitenberg,
}

// Names returns the registered demo names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Build creates the named demo.
func Build(name string, cfg *config.Config, rng *rand.Rand) (*Setup, error) {
	b, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (have %v)", ErrUnknownDemo, name, Names())
	}
	return b(cfg, rng)
}

// physics returns the animat limits from the config.
func physics(cfg *config.Config) world.Physics {
	a := cfg.Animat
	return world.Physics{
		Radius:      a.Radius,
		MaxSpeed:    a.MaxSpeed,
		MinSpeed:    a.MinSpeed,
		MaxTurn:     cfg.Derived.MaxTurn,
		Drag:        a.Drag,
		TimeStep:    a.TimeStep,
		TrailLength: a.TrailLength,
		Solid:       a.Solid,
	}
}

// newSim creates a simulation from cfg with the demo's own hierarchy.
func newSim(name string, cfg *config.Config, rng *rand.Rand, generations, assessments, timeSteps int) *simulation.Simulation {
	s := simulation.NewFromConfig(name, cfg, rng)
	s.SetGenerations(generations)
	s.SetAssessments(assessments)
	s.SetTimeSteps(timeSteps)
	return s
}

// newGA creates a GA from the config's operators with the demo's rates and
// selection.
func newGA(cfg *config.Config, rng *rand.Rand, crossover, mutation float64, sel evolve.Selection) (*evolve.GA, error) {
	opts, err := evolve.OptionsFromConfig(cfg.GA)
	if err != nil {
		return nil, fmt.Errorf("ga options: %w", err)
	}
	opts.Crossover = crossover
	opts.Mutation = mutation
	opts.Selection = sel
	return evolve.New(opts, rng), nil
}

// Cheese is food for mice. It reappears somewhere random when eaten.
type Cheese struct {
	*world.Object
}

// NewCheese creates a cheese at a random location.
func NewCheese() *Cheese {
	c := &Cheese{Object: world.NewObject()}
	c.SetRadius(5)
	c.SetResetRandom(true)
	c.SetKind(KindCheese)
	return c
}

// Eaten moves the cheese to a random location.
func (c *Cheese) Eaten() {
	if w := c.World(); w != nil {
		c.SetLocation(w.RandomLocation())
	}
}

// Package agents provides animats whose controls are driven by a neural
// network wired to their sensors, and evolvable versions whose genotype is
// the network's weights.
package agents

import (
	"math/rand"

	"github.com/pthm-cable/beast/config"
	"github.com/pthm-cable/beast/evolve"
	"github.com/pthm-cable/beast/neural"
	"github.com/pthm-cable/beast/world"
)

// Brain is a network an animat can be wired to.
type Brain interface {
	SetInput(i int, v float64)
	Fire()
	Output(i int) float64
	Genotype() []float64
	SetGenotype(g []float64) error
	NumberWeights() int
}

// wire feeds sensor outputs, in order, to the first inputs of b, fires it,
// and writes its first outputs to the control channels in order.
func wire(a *world.Animat, b Brain, inputs, outputs int, buf []float64) []float64 {
	buf = a.SensorOutputs(buf[:0])
	for i, v := range buf {
		if i >= inputs {
			break
		}
		b.SetInput(i, v)
	}
	b.Fire()
	for i, name := range a.ControlNames() {
		if i >= outputs {
			break
		}
		a.SetControl(name, b.Output(i))
	}
	return buf
}

// FFNAnimat is an animat controlled by a feed-forward network sized from its
// sensors and controls.
type FFNAnimat struct {
	*world.Animat
	brain *neural.FeedForwardNet
	buf   []float64
}

// NewFFNAnimat creates an animat without a brain. Attach sensors first,
// then call AddFFNBrain.
func NewFFNAnimat() *FFNAnimat {
	a := &FFNAnimat{Animat: world.NewAnimat()}
	a.SetController(world.ControllerFunc(func(*world.Animat) { a.RunBrain() }))
	return a
}

// AddFFNBrain builds a randomised network with one input per sensor and one
// output per control. A negative hidden count uses one hidden unit per
// sensor. Bias and activation follow the neural config section.
func (a *FFNAnimat) AddFFNBrain(hidden int, rng *rand.Rand) {
	if hidden < 0 {
		hidden = a.NumSensors()
	}
	cfg := config.Cfg().Neural
	act, err := neural.ActivationByName(cfg.Activation)
	if err != nil {
		act = neural.Sigmoid
	}
	n := neural.NewFeedForward(max(1, a.NumSensors()), max(1, a.NumControls()), hidden, act, cfg.Bias)
	n.Randomise(rng)
	a.brain = n
}

// SetBrain replaces the network.
func (a *FFNAnimat) SetBrain(n *neural.FeedForwardNet) { a.brain = n }

// Brain returns the network, or nil before AddFFNBrain.
func (a *FFNAnimat) Brain() *neural.FeedForwardNet { return a.brain }

// RunBrain feeds the sensors through the network into the controls. It is
// the animat's controller until SetController replaces it.
func (a *FFNAnimat) RunBrain() {
	if a.brain == nil {
		return
	}
	a.buf = wire(a.Animat, a.brain, a.brain.Inputs(), a.brain.NumOutputs(), a.buf)
}

// DNNAnimat is an animat controlled by a continuous-time recurrent network.
type DNNAnimat struct {
	*world.Animat
	brain *neural.DynamicalNet
	buf   []float64
}

// NewDNNAnimat creates an animat without a brain. Attach sensors first,
// then call AddDNNBrain.
func NewDNNAnimat() *DNNAnimat {
	a := &DNNAnimat{Animat: world.NewAnimat()}
	a.SetController(world.ControllerFunc(func(*world.Animat) { a.RunBrain() }))
	return a
}

// AddDNNBrain builds a randomised network with one input per sensor and one
// output per control. A negative total uses one node per sensor.
func (a *DNNAnimat) AddDNNBrain(total int, multiIn, multiOut bool, rng *rand.Rand) {
	if total < 0 {
		total = a.NumSensors()
	}
	n := neural.NewDynamical(a.NumSensors(), a.NumControls(), max(1, total), multiIn, multiOut)
	n.Randomise(rng)
	a.brain = n
}

// SetBrain replaces the network.
func (a *DNNAnimat) SetBrain(n *neural.DynamicalNet) { a.brain = n }

// Brain returns the network, or nil before AddDNNBrain.
func (a *DNNAnimat) Brain() *neural.DynamicalNet { return a.brain }

// RunBrain feeds the sensors through the network into the controls. It is
// the animat's controller until SetController replaces it.
func (a *DNNAnimat) RunBrain() {
	if a.brain == nil {
		return
	}
	a.buf = wire(a.Animat, a.brain, a.NumSensors(), a.NumControls(), a.buf)
}

// Reset also clears the network's state.
func (a *DNNAnimat) Reset() {
	a.Animat.Reset()
	if a.brain != nil {
		a.brain.Reset()
	}
}

// Evolvable holds an animat's GA record.
type Evolvable struct {
	record evolve.Record
}

// Record returns the GA record.
func (e *Evolvable) Record() *evolve.Record { return &e.record }

// EvoFFNAnimat is an FFNAnimat whose genotype is its network's weights.
// Embedders supply Fitness to make it an evolve.Evolver.
type EvoFFNAnimat struct {
	*FFNAnimat
	Evolvable
}

// NewEvoFFNAnimat creates an evolvable animat without a brain.
func NewEvoFFNAnimat() *EvoFFNAnimat {
	return &EvoFFNAnimat{FFNAnimat: NewFFNAnimat()}
}

// Genotype returns the network weights.
func (e *EvoFFNAnimat) Genotype() []float64 { return e.brain.Genotype() }

// SetGenotype loads network weights.
func (e *EvoFFNAnimat) SetGenotype(g []float64) error { return e.brain.SetGenotype(g) }

// EvoDNNAnimat is a DNNAnimat whose genotype is its network's weights.
// Embedders supply Fitness to make it an evolve.Evolver.
type EvoDNNAnimat struct {
	*DNNAnimat
	Evolvable
}

// NewEvoDNNAnimat creates an evolvable animat without a brain.
func NewEvoDNNAnimat() *EvoDNNAnimat {
	return &EvoDNNAnimat{DNNAnimat: NewDNNAnimat()}
}

// Genotype returns the network weights.
func (e *EvoDNNAnimat) Genotype() []float64 { return e.brain.Genotype() }

// SetGenotype loads network weights.
func (e *EvoDNNAnimat) SetGenotype(g []float64) error { return e.brain.SetGenotype(g) }

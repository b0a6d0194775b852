package neural

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Time constants are drawn from this range and stored as their logarithm.
const (
	TauMin = 1.0
	TauMax = 70.0
)

// neuron is one node of a DynamicalNet. weights holds one recurrent weight
// per node, then the bias, then log(tau).
type neuron struct {
	inChannel  int // -1 when inputs arrive through inWeights
	outChannel int // -1 when output leaves through outWeights
	inWeights  []float64
	outWeights []float64
	weights    []float64

	bias       float64
	tau        float64
	activation float64
	output     float64
}

// DynamicalNet is a fully recurrent continuous-time network: every node
// integrates a weighted sum of every node's previous output plus its
// inputs, leaking towards zero with its own time constant.
type DynamicalNet struct {
	neurons    []*neuron
	inputs     []float64
	outputs    []float64
	states     []float64
	multiIn    bool
	multiOut   bool
	numWeights int
}

// NewDynamical creates a net of total nodes. With multiIn every node reads
// every input through a weight, otherwise node i reads input i alone. With
// multiOut every node feeds every output through a weight, otherwise the
// last nodes each drive one output.
func NewDynamical(inputs, outputs, total int, multiIn, multiOut bool) *DynamicalNet {
	if inputs < 0 || outputs < 0 || total < 1 {
		panic(fmt.Sprintf("neural: invalid dimensions %d/%d/%d", inputs, total, outputs))
	}
	d := &DynamicalNet{
		inputs:   make([]float64, inputs),
		outputs:  make([]float64, outputs),
		states:   make([]float64, total),
		multiIn:  multiIn,
		multiOut: multiOut,
	}

	nIn, nOut := 0, 0
	if multiIn {
		nIn = inputs
	}
	if multiOut {
		nOut = outputs
	}
	for i := 0; i < total; i++ {
		nr := &neuron{
			inChannel:  -1,
			outChannel: -1,
			inWeights:  make([]float64, nIn),
			outWeights: make([]float64, nOut),
			weights:    make([]float64, total+2),
			tau:        TauMin,
		}
		if !multiIn && i < inputs {
			nr.inChannel = i
		}
		if !multiOut {
			if ch := i + outputs - total; ch >= 0 && ch < outputs {
				nr.outChannel = ch
			}
		}
		d.neurons = append(d.neurons, nr)
	}
	d.recount()
	return d
}

func (d *DynamicalNet) recount() {
	d.numWeights = 0
	for _, nr := range d.neurons {
		d.numWeights += len(nr.inWeights) + len(nr.outWeights) + len(nr.weights)
	}
}

// Reset zeroes every node's state and activation.
func (d *DynamicalNet) Reset() {
	for i, nr := range d.neurons {
		nr.activation = 0
		nr.output = 0
		d.states[i] = 0
	}
}

// Randomise draws weights and biases in [-1, 1] and time constants in
// [TauMin, TauMax]. A nil rng uses the math/rand source.
func (d *DynamicalNet) Randomise(rng *rand.Rand) {
	draw := rand.Float64
	if rng != nil {
		draw = rng.Float64
	}
	uniform := func(xs []float64) {
		for i := range xs {
			xs[i] = draw()*2 - 1
		}
	}
	for _, nr := range d.neurons {
		uniform(nr.inWeights)
		uniform(nr.outWeights)
		last := len(nr.weights) - 1
		uniform(nr.weights[:last])
		nr.bias = nr.weights[last-1]
		nr.tau = TauMin + draw()*(TauMax-TauMin)
		nr.weights[last] = math.Log(nr.tau)
	}
}

// SetInput sets input channel i.
func (d *DynamicalNet) SetInput(i int, v float64) { d.inputs[i] = v }

// SetInputs copies vs into the input channels.
func (d *DynamicalNet) SetInputs(vs []float64) { copy(d.inputs, vs) }

// Fire advances every node by one step, then publishes the new states.
func (d *DynamicalNet) Fire() {
	clear(d.outputs)
	total := len(d.neurons)

	for _, nr := range d.neurons {
		delta := -nr.activation
		delta += floats.Dot(d.states, nr.weights[:total])
		if nr.inChannel >= 0 {
			delta += d.inputs[nr.inChannel]
		} else if len(nr.inWeights) > 0 {
			delta += floats.Dot(d.inputs, nr.inWeights)
		}
		delta /= nr.tau
		nr.activation += delta
		nr.output = Logistic(nr.activation - nr.bias)

		if nr.outChannel >= 0 {
			d.outputs[nr.outChannel] += nr.output
		} else if len(nr.outWeights) > 0 {
			floats.AddScaled(d.outputs, nr.output, nr.outWeights)
		}
	}

	for i, nr := range d.neurons {
		d.states[i] = nr.output
	}
}

// Output returns output channel i.
func (d *DynamicalNet) Output(i int) float64 { return d.outputs[i] }

// Outputs appends every output to dst.
func (d *DynamicalNet) Outputs(dst []float64) []float64 { return append(dst, d.outputs...) }

// States returns the node outputs after the last Fire.
func (d *DynamicalNet) States() []float64 { return d.states }

// NumNeurons returns the number of nodes.
func (d *DynamicalNet) NumNeurons() int { return len(d.neurons) }

// TimeConstant returns node i's time constant.
func (d *DynamicalNet) TimeConstant(i int) float64 { return d.neurons[i].tau }

// NumberWeights returns the genome length.
func (d *DynamicalNet) NumberWeights() int { return d.numWeights }

// SetInputChannel routes input channel ch to node i alone. It does nothing
// when nodes read every input.
func (d *DynamicalNet) SetInputChannel(i, ch int) {
	if d.multiIn || ch < 0 || ch >= len(d.inputs) {
		return
	}
	for _, nr := range d.neurons {
		if nr.inChannel == ch {
			nr.inChannel = -1
		}
	}
	d.neurons[i].inChannel = ch
}

// SetOutputChannel routes node i to output channel ch alone. It does nothing
// when nodes feed every output.
func (d *DynamicalNet) SetOutputChannel(i, ch int) {
	if d.multiOut || ch < 0 || ch >= len(d.outputs) {
		return
	}
	for _, nr := range d.neurons {
		if nr.outChannel == ch {
			nr.outChannel = -1
		}
	}
	d.neurons[i].outChannel = ch
}

// Genotype flattens each node's input weights, output weights, recurrent
// weights, bias and log time constant, node by node.
func (d *DynamicalNet) Genotype() []float64 {
	g := make([]float64, 0, d.numWeights)
	for _, nr := range d.neurons {
		g = append(g, nr.inWeights...)
		g = append(g, nr.outWeights...)
		g = append(g, nr.weights...)
	}
	return g
}

// SetGenotype loads a genome laid out as Genotype does. Time constants
// below 1 are reflected to 1+2(1-tau) and written back to the weights.
func (d *DynamicalNet) SetGenotype(g []float64) error {
	if len(g) != d.numWeights {
		return fmt.Errorf("got %d genes for %d weights: %w", len(g), d.numWeights, ErrGenotypeLength)
	}
	for _, nr := range d.neurons {
		g = g[copy(nr.inWeights, g):]
		g = g[copy(nr.outWeights, g):]
		g = g[copy(nr.weights, g):]

		last := len(nr.weights) - 1
		nr.bias = nr.weights[last-1]
		nr.tau = math.Exp(nr.weights[last])
		if nr.tau < TauMin {
			nr.tau = TauMin + 2*(TauMin-nr.tau)
			nr.weights[last] = math.Log(nr.tau)
		}
	}
	return nil
}

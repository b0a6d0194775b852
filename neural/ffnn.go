// Package neural provides the two controller networks animats can carry:
// a feed-forward net and a fully recurrent continuous-time net.
package neural

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrGenotypeLength is returned when a genome does not match a net's
	// weight count.
	ErrGenotypeLength = errors.New("neural: genotype length does not match weight count")
	// ErrShape is returned when a configuration has the wrong dimensions.
	ErrShape = errors.New("neural: configuration shape mismatch")
)

// FeedForwardNet is a two-layer feed-forward network. With no hidden units
// it is a single-layer perceptron whose output layer reads the inputs
// directly.
type FeedForwardNet struct {
	inputs  int
	hidden  int
	outputs int
	bias    bool
	act     Activation

	wHidden *mat.Dense // hidden × (inputs+bias); nil for a perceptron
	wOutput *mat.Dense // outputs × (layer below+bias)

	in   *mat.VecDense // input values, bias slot last
	sum  *mat.VecDense // hidden weighted sums
	mid  *mat.VecDense // hidden outputs, bias slot last
	outs *mat.VecDense
}

// NewFeedForward creates a zero-weighted net. A nil act uses Sigmoid.
func NewFeedForward(inputs, outputs, hidden int, act Activation, bias bool) *FeedForwardNet {
	if inputs < 1 || outputs < 1 || hidden < 0 {
		panic(fmt.Sprintf("neural: invalid dimensions %d/%d/%d", inputs, hidden, outputs))
	}
	if act == nil {
		act = Sigmoid
	}
	b := 0
	if bias {
		b = 1
	}

	n := &FeedForwardNet{
		inputs:  inputs,
		hidden:  hidden,
		outputs: outputs,
		bias:    bias,
		act:     act,
		in:      mat.NewVecDense(inputs+b, nil),
		outs:    mat.NewVecDense(outputs, nil),
	}
	if bias {
		n.in.SetVec(inputs, 1)
	}

	below := inputs
	if hidden > 0 {
		n.wHidden = mat.NewDense(hidden, inputs+b, nil)
		n.sum = mat.NewVecDense(hidden, nil)
		n.mid = mat.NewVecDense(hidden+b, nil)
		if bias {
			n.mid.SetVec(hidden, 1)
		}
		below = hidden
	}
	n.wOutput = mat.NewDense(outputs, below+b, nil)
	return n
}

// Randomise sets every weight and bias uniformly in [-1, 1]. A nil rng uses
// the math/rand source.
func (n *FeedForwardNet) Randomise(rng *rand.Rand) {
	draw := rand.Float64
	if rng != nil {
		draw = rng.Float64
	}
	for _, m := range n.layers() {
		data := m.RawMatrix().Data
		for i := range data {
			data[i] = draw()*2 - 1
		}
	}
}

func (n *FeedForwardNet) layers() []*mat.Dense {
	if n.wHidden == nil {
		return []*mat.Dense{n.wOutput}
	}
	return []*mat.Dense{n.wHidden, n.wOutput}
}

// SetInput sets input i.
func (n *FeedForwardNet) SetInput(i int, v float64) { n.in.SetVec(i, v) }

// SetInputs copies vs into the inputs.
func (n *FeedForwardNet) SetInputs(vs []float64) {
	for i, v := range vs {
		n.in.SetVec(i, v)
	}
}

// Fire propagates the current inputs to the outputs.
func (n *FeedForwardNet) Fire() {
	src := n.in
	if n.wHidden != nil {
		n.sum.MulVec(n.wHidden, n.in)
		for i := 0; i < n.hidden; i++ {
			n.mid.SetVec(i, n.act(n.sum.AtVec(i)))
		}
		src = n.mid
	}

	n.outs.MulVec(n.wOutput, src)
	for i := 0; i < n.outputs; i++ {
		n.outs.SetVec(i, n.act(n.outs.AtVec(i)))
	}
}

// Output returns output i from the last Fire.
func (n *FeedForwardNet) Output(i int) float64 { return n.outs.AtVec(i) }

// Outputs appends every output to dst.
func (n *FeedForwardNet) Outputs(dst []float64) []float64 {
	return append(dst, n.outs.RawVector().Data...)
}

// Inputs returns the number of inputs.
func (n *FeedForwardNet) Inputs() int { return n.inputs }

// Hidden returns the number of hidden units.
func (n *FeedForwardNet) Hidden() int { return n.hidden }

// NumOutputs returns the number of outputs.
func (n *FeedForwardNet) NumOutputs() int { return n.outputs }

// HasBias reports whether every neuron carries a bias weight.
func (n *FeedForwardNet) HasBias() bool { return n.bias }

// NumberWeights returns the total number of weights and biases.
func (n *FeedForwardNet) NumberWeights() int {
	total := 0
	for _, m := range n.layers() {
		r, c := m.Dims()
		total += r * c
	}
	return total
}

// FFNConfig holds a net's weights, one row per neuron with the bias last.
type FFNConfig struct {
	Hidden [][]float64 `json:"hidden"`
	Output [][]float64 `json:"output"`
}

// Configuration returns a copy of the weights.
func (n *FeedForwardNet) Configuration() FFNConfig {
	var cfg FFNConfig
	if n.wHidden != nil {
		cfg.Hidden = rows(n.wHidden)
	}
	cfg.Output = rows(n.wOutput)
	return cfg
}

// SetConfiguration replaces the weights. Shapes must match the net.
func (n *FeedForwardNet) SetConfiguration(cfg FFNConfig) error {
	if n.wHidden == nil && len(cfg.Hidden) != 0 {
		return fmt.Errorf("perceptron given %d hidden rows: %w", len(cfg.Hidden), ErrShape)
	}
	if n.wHidden != nil {
		if err := setRows(n.wHidden, cfg.Hidden); err != nil {
			return fmt.Errorf("hidden layer: %w", err)
		}
	}
	if err := setRows(n.wOutput, cfg.Output); err != nil {
		return fmt.Errorf("output layer: %w", err)
	}
	return nil
}

// Genotype flattens the weights, hidden layer first, row by row.
func (n *FeedForwardNet) Genotype() []float64 {
	g := make([]float64, 0, n.NumberWeights())
	for _, m := range n.layers() {
		g = append(g, m.RawMatrix().Data...)
	}
	return g
}

// SetGenotype loads weights flattened by Genotype.
func (n *FeedForwardNet) SetGenotype(g []float64) error {
	if len(g) != n.NumberWeights() {
		return fmt.Errorf("got %d genes for %d weights: %w", len(g), n.NumberWeights(), ErrGenotypeLength)
	}
	for _, m := range n.layers() {
		data := m.RawMatrix().Data
		g = g[copy(data, g):]
	}
	return nil
}

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}

func setRows(m *mat.Dense, src [][]float64) error {
	r, c := m.Dims()
	if len(src) != r {
		return fmt.Errorf("got %d rows, want %d: %w", len(src), r, ErrShape)
	}
	for i, row := range src {
		if len(row) != c {
			return fmt.Errorf("row %d has %d weights, want %d: %w", i, len(row), c, ErrShape)
		}
		m.SetRow(i, row)
	}
	return nil
}

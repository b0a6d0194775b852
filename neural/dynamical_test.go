package neural

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestDynamicalChannels(t *testing.T) {
	d := NewDynamical(2, 2, 4, false, false)
	tests := []struct {
		node    int
		wantIn  int
		wantOut int
	}{
		{0, 0, -1},
		{1, 1, -1},
		{2, -1, 0},
		{3, -1, 1},
	}
	for _, tt := range tests {
		nr := d.neurons[tt.node]
		if nr.inChannel != tt.wantIn || nr.outChannel != tt.wantOut {
			t.Errorf("node %d channels = (%d, %d), want (%d, %d)",
				tt.node, nr.inChannel, nr.outChannel, tt.wantIn, tt.wantOut)
		}
	}
	if got, want := d.NumberWeights(), 4*(4+2); got != want {
		t.Errorf("NumberWeights = %d, want %d", got, want)
	}

	m := NewDynamical(2, 3, 4, true, true)
	if got, want := m.NumberWeights(), 4*(2+3+4+2); got != want {
		t.Errorf("multi NumberWeights = %d, want %d", got, want)
	}
}

func TestDynamicalSetChannel(t *testing.T) {
	d := NewDynamical(2, 1, 3, false, false)
	d.SetInputChannel(2, 0)
	if d.neurons[0].inChannel != -1 || d.neurons[2].inChannel != 0 {
		t.Error("input channel 0 should move from node 0 to node 2")
	}
	d.SetOutputChannel(0, 0)
	if d.neurons[2].outChannel != -1 || d.neurons[0].outChannel != 0 {
		t.Error("output channel 0 should move from node 2 to node 0")
	}

	m := NewDynamical(2, 1, 3, true, true)
	m.SetInputChannel(1, 0)
	if m.neurons[1].inChannel != -1 {
		t.Error("SetInputChannel should do nothing on a multi-input net")
	}
}

func TestDynamicalFireSingleNode(t *testing.T) {
	d := NewDynamical(1, 1, 1, false, false)
	// recurrent 0.5, bias 0.25, tau 2
	if err := d.SetGenotype([]float64{0.5, 0.25, math.Log(2)}); err != nil {
		t.Fatalf("SetGenotype: %v", err)
	}
	d.SetInput(0, 1)

	act, state := 0.0, 0.0
	for step := 0; step < 5; step++ {
		d.Fire()
		act += (-act + 0.5*state + 1) / 2
		state = Logistic(act - 0.25)
		if math.Abs(d.Output(0)-state) > 1e-12 {
			t.Fatalf("step %d: output %v, want %v", step, d.Output(0), state)
		}
	}
	if d.States()[0] != d.Output(0) {
		t.Error("state should equal the node output after Fire")
	}

	d.Reset()
	if d.States()[0] != 0 {
		t.Error("Reset should zero the states")
	}
}

func TestDynamicalTauFloor(t *testing.T) {
	d := NewDynamical(1, 1, 1, false, false)
	// log tau = log 0.5, reflected to 1 + 2(1 - 0.5) = 2
	if err := d.SetGenotype([]float64{0, 0, math.Log(0.5)}); err != nil {
		t.Fatalf("SetGenotype: %v", err)
	}
	if got := d.TimeConstant(0); math.Abs(got-2) > 1e-12 {
		t.Errorf("tau = %v, want 2", got)
	}
	if got := d.Genotype()[2]; math.Abs(got-math.Log(2)) > 1e-12 {
		t.Errorf("stored log tau = %v, want log 2", got)
	}
}

func TestDynamicalRandomiseAndRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	a := NewDynamical(3, 2, 5, true, true)
	a.Randomise(rng)
	for i := 0; i < a.NumNeurons(); i++ {
		if tau := a.TimeConstant(i); tau < TauMin || tau > TauMax {
			t.Errorf("node %d tau %v outside [%v, %v]", i, tau, TauMin, TauMax)
		}
	}

	g := a.Genotype()
	b := NewDynamical(3, 2, 5, true, true)
	if err := b.SetGenotype(g); err != nil {
		t.Fatalf("SetGenotype: %v", err)
	}
	for i, v := range b.Genotype() {
		if v != g[i] {
			t.Fatalf("gene %d = %v, want %v", i, v, g[i])
		}
	}

	in := []float64{0.3, -0.2, 0.8}
	for step := 0; step < 10; step++ {
		a.SetInputs(in)
		b.SetInputs(in)
		a.Fire()
		b.Fire()
	}
	for i := 0; i < 2; i++ {
		if a.Output(i) != b.Output(i) {
			t.Errorf("output %d differs: %v vs %v", i, a.Output(i), b.Output(i))
		}
	}

	if err := b.SetGenotype(g[1:]); !errors.Is(err, ErrGenotypeLength) {
		t.Errorf("short genome error = %v, want ErrGenotypeLength", err)
	}
}

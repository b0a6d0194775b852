package neural

import (
	"fmt"
	"math"
)

// Activation squashes a neuron's weighted sum.
type Activation func(float64) float64

// Sigmoid is the bistable sigmoid 2/(1+e^-2x) - 1, ranging over (-1, 1).
func Sigmoid(x float64) float64 {
	return 2/(1+math.Exp(-2*x)) - 1
}

// Threshold returns 1 for positive input, else 0.
func Threshold(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

// Logistic is 1/(1+e^-x), ranging over (0, 1).
func Logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// ActivationByName resolves a configured activation name.
func ActivationByName(name string) (Activation, error) {
	switch name {
	case "", "sigmoid":
		return Sigmoid, nil
	case "threshold":
		return Threshold, nil
	case "logistic":
		return Logistic, nil
	}
	return nil, fmt.Errorf("unknown activation %q", name)
}

package activations

import "gonum.org/v1/gonum/mat"

// Apply stores f(x) for every element of x into dst. dst may be x itself.
// The result does not depend on the shape of x.
func Apply(dst *mat.Dense, x mat.Matrix, a Activation) {
	dst.Apply(func(_, _ int, v float64) float64 {
		return a.Activate(v)
	}, x)
}

// ApplyDerivative stores f'(x) for every element of x into dst.
func ApplyDerivative(dst *mat.Dense, x mat.Matrix, a Activation) {
	dst.Apply(func(_, _ int, v float64) float64 {
		return a.Derivative(v)
	}, x)
}

// ActivateSlice computes f(x) element-wise into a new slice.
func ActivateSlice(a Activation, x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = a.Activate(v)
	}
	return out
}

// DeriveSlice computes f'(x) element-wise into a new slice.
func DeriveSlice(a Activation, x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = a.Derivative(v)
	}
	return out
}

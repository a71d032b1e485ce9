package net

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/GoBANN/internal/activations"
	"github.com/FlavioCFOliveira/GoBANN/internal/nnerr"
)

// Trace holds the intermediate values of one forward pass. Both slices are
// indexed like the network's layers: Activations[0] is the input column and
// Transfers[0] is nil. Every entry is an (n_i x 1) column.
type Trace struct {
	Transfers   []*mat.Dense
	Activations []*mat.Dense
}

// Output returns a copy of the last activation, flattened.
func (t *Trace) Output() []float64 {
	last := t.Activations[len(t.Activations)-1]
	r, _ := last.Dims()
	out := make([]float64, r)
	mat.Col(out, 0, last)
	return out
}

// Propagate runs the forward pass and returns every transfer and activation:
//
//	transfer_i   = W_i * activation_{i-1} + b_i
//	activation_i = f_i(transfer_i)
//
// It does not modify the network.
func (n *Network) Propagate(input []float64) (*Trace, error) {
	if !n.built {
		return nil, errors.Wrap(nnerr.ErrNotBuilt, "forward")
	}
	if want := n.layers[0].Neurons; len(input) != want {
		return nil, nnerr.Shape("forward", 0, want, len(input))
	}

	tr := &Trace{
		Transfers:   make([]*mat.Dense, len(n.layers)),
		Activations: make([]*mat.Dense, len(n.layers)),
	}
	tr.Activations[0] = mat.NewDense(len(input), 1, append([]float64(nil), input...))

	for i := 1; i < len(n.layers); i++ {
		l := n.layers[i]

		z := mat.NewDense(l.Neurons, 1, nil)
		z.Mul(l.W, tr.Activations[i-1])
		z.Add(z, l.B)

		a := mat.NewDense(l.Neurons, 1, nil)
		activations.Apply(a, z, l.Act)

		tr.Transfers[i] = z
		tr.Activations[i] = a
	}
	return tr, nil
}

// Forward returns the network output for input, flattened to one dimension.
func (n *Network) Forward(input []float64) ([]float64, error) {
	tr, err := n.Propagate(input)
	if err != nil {
		return nil, err
	}
	return tr.Output(), nil
}

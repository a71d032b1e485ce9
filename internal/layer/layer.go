// Package layer provides the dense layer used by the network.
package layer

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/GoBANN/internal/activations"
	"github.com/FlavioCFOliveira/GoBANN/internal/nnerr"
)

// Layer is one layer of a dense feed-forward network.
//
// An input layer only carries its neuron count. Every other layer owns a
// weight matrix W (Neurons x inputs) and a bias column B (Neurons x 1), the
// gradient accumulators GradW and GradB filled by the backward pass, and the
// last update applied by the optimizer (UpdateW, UpdateB) for momentum.
// W, GradW and UpdateW always share a shape, as do B, GradB and UpdateB.
type Layer struct {
	Neurons int
	Label   string
	Act     activations.Activation

	W *mat.Dense
	B *mat.Dense

	GradW *mat.Dense
	GradB *mat.Dense

	UpdateW *mat.Dense
	UpdateB *mat.Dense

	input bool
}

// New creates a hidden or output layer. A nil activation selects sigmoid.
func New(neurons int, act activations.Activation, label string) (*Layer, error) {
	if neurons < 1 {
		return nil, errors.Wrapf(nnerr.ErrInvalidTopology, "layer needs at least 1 neuron, got %d", neurons)
	}
	if act == nil {
		act = activations.Sigmoid{}
	}
	return &Layer{Neurons: neurons, Label: label, Act: act}, nil
}

// NewInput creates the input placeholder layer.
func NewInput(neurons int, label string) (*Layer, error) {
	if neurons < 1 {
		return nil, errors.Wrapf(nnerr.ErrInvalidTopology, "input layer needs at least 1 neuron, got %d", neurons)
	}
	return &Layer{Neurons: neurons, Label: label, input: true}, nil
}

// SelectActivation binds the activation registered under name.
func (l *Layer) SelectActivation(name string) error {
	act, err := activations.Parse(name)
	if err != nil {
		return err
	}
	l.Act = act
	return nil
}

// IsInput reports whether l is an input placeholder.
func (l *Layer) IsInput() bool {
	return l.input
}

// Built reports whether weights and biases have been allocated.
func (l *Layer) Built() bool {
	return l.W != nil
}

// InputSize returns the number of inputs the layer was built for, or 0.
func (l *Layer) InputSize() int {
	if l.W == nil {
		return 0
	}
	_, c := l.W.Dims()
	return c
}

// Build allocates W and B for inputNeurons inputs, drawing every entry
// independently from init, and zeroes the accumulators and momentum state.
// Building again discards the previous parameters.
func (l *Layer) Build(inputNeurons int, init Initializer) error {
	if l.input {
		return errors.Wrap(nnerr.ErrInvalidTopology, "input layer has no weights")
	}
	if inputNeurons < 1 {
		return errors.Wrapf(nnerr.ErrInvalidTopology, "layer needs at least 1 input, got %d", inputNeurons)
	}
	if init == nil {
		init = DefaultInit
	}

	n := l.Neurons
	w := make([]float64, n*inputNeurons)
	for i := range w {
		w[i] = init.Rand()
	}
	b := make([]float64, n)
	for i := range b {
		b[i] = init.Rand()
	}

	l.W = mat.NewDense(n, inputNeurons, w)
	l.B = mat.NewDense(n, 1, b)
	l.GradW = mat.NewDense(n, inputNeurons, nil)
	l.GradB = mat.NewDense(n, 1, nil)
	l.UpdateW = mat.NewDense(n, inputNeurons, nil)
	l.UpdateB = mat.NewDense(n, 1, nil)
	return nil
}

// ResetAccumulators zeroes GradW and GradB.
func (l *Layer) ResetAccumulators() {
	if l.GradW == nil {
		return
	}
	l.GradW.Zero()
	l.GradB.Zero()
}

// ResetMomentum zeroes the stored previous update.
func (l *Layer) ResetMomentum() {
	if l.UpdateW == nil {
		return
	}
	l.UpdateW.Zero()
	l.UpdateB.Zero()
}

// Load copies w and b into the layer. Both must have exactly the shapes of
// the current parameters.
func (l *Layer) Load(w, b mat.Matrix) error {
	if !l.Built() {
		return errors.Wrap(nnerr.ErrNotBuilt, "load")
	}
	wr, wc := l.W.Dims()
	if r, c := w.Dims(); r != wr || c != wc {
		return nnerr.MatrixShape("load weights", -1, wr, wc, r, c)
	}
	br, bc := l.B.Dims()
	if r, c := b.Dims(); r != br || c != bc {
		return nnerr.MatrixShape("load biases", -1, br, bc, r, c)
	}
	l.W.Copy(w)
	l.B.Copy(b)
	return nil
}

func (l *Layer) String() string {
	if l.input {
		return fmt.Sprintf("Layer(%d, input, %q)", l.Neurons, l.Label)
	}
	return fmt.Sprintf("Layer(%d, %s, %q)", l.Neurons, activations.Name(l.Act), l.Label)
}

package net

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/GoBANN/internal/activations"
	"github.com/FlavioCFOliveira/GoBANN/internal/loss"
	"github.com/FlavioCFOliveira/GoBANN/internal/nnerr"
)

// Gradients holds one weight and one bias gradient per layer, indexed like
// the network's layers. Index 0 (the input layer) is nil.
type Gradients struct {
	W []*mat.Dense
	B []*mat.Dense
}

// NewGradients allocates zeroed gradients shaped like n's parameters.
func NewGradients(n *Network) *Gradients {
	g := &Gradients{
		W: make([]*mat.Dense, len(n.layers)),
		B: make([]*mat.Dense, len(n.layers)),
	}
	for i := 1; i < len(n.layers); i++ {
		l := n.layers[i]
		r, c := l.W.Dims()
		g.W[i] = mat.NewDense(r, c, nil)
		g.B[i] = mat.NewDense(r, 1, nil)
	}
	return g
}

// accumulators returns Gradients aliasing every layer's GradW and GradB.
func (n *Network) accumulators() *Gradients {
	g := &Gradients{
		W: make([]*mat.Dense, len(n.layers)),
		B: make([]*mat.Dense, len(n.layers)),
	}
	for i := 1; i < len(n.layers); i++ {
		g.W[i] = n.layers[i].GradW
		g.B[i] = n.layers[i].GradB
	}
	return g
}

// Zero resets every gradient to zero.
func (g *Gradients) Zero() {
	for i := range g.W {
		if g.W[i] != nil {
			g.W[i].Zero()
			g.B[i].Zero()
		}
	}
}

// Add accumulates other into g. Both must come from the same network.
func (g *Gradients) Add(other *Gradients) {
	for i := range g.W {
		if g.W[i] != nil {
			g.W[i].Add(g.W[i], other.W[i])
			g.B[i].Add(g.B[i], other.B[i])
		}
	}
}

// AddTo accumulates g into the layer accumulators of n.
func (g *Gradients) AddTo(n *Network) {
	n.accumulators().Add(g)
}

// Backward runs the backward pass for a trace produced by Propagate and adds
// the resulting gradients to every layer's GradW and GradB. Weights and
// biases are not modified.
func (n *Network) Backward(tr *Trace, target []float64) error {
	if !n.built {
		return errors.Wrap(nnerr.ErrNotBuilt, "backward")
	}
	return n.BackwardInto(tr, target, n.accumulators())
}

// BackwardInto is Backward with a caller-owned accumulator. For the squared
// error loss the recurrence is
//
//	delta_L = (activation_L - target) * f'_L(transfer_L)
//	delta_i = (W_{i+1}^T delta_{i+1}) * f'_i(transfer_i)
//	dW_i   += delta_i activation_{i-1}^T
//	db_i   += delta_i
//
// where * is the element-wise product.
func (n *Network) BackwardInto(tr *Trace, target []float64, g *Gradients) error {
	if !n.built {
		return errors.Wrap(nnerr.ErrNotBuilt, "backward")
	}
	if err := n.checkBackward(tr, g); err != nil {
		return err
	}
	last := len(n.layers) - 1
	out := n.layers[last]
	if len(target) != out.Neurons {
		return nnerr.Shape("backward", last, out.Neurons, len(target))
	}

	delta := mat.NewDense(out.Neurons, 1, nil)
	if err := errorTerm(delta.RawMatrix().Data, objective, tr.Output(), target); err != nil {
		return errors.Wrap(err, "backward")
	}
	deriv := new(mat.Dense)
	activations.ApplyDerivative(deriv, tr.Transfers[last], out.Act)
	delta.MulElem(delta, deriv)

	for i := last; i >= 1; i-- {
		dw := new(mat.Dense)
		dw.Mul(delta, tr.Activations[i-1].T())
		g.W[i].Add(g.W[i], dw)
		g.B[i].Add(g.B[i], delta)

		if i == 1 {
			break
		}

		prev := new(mat.Dense)
		prev.Mul(n.layers[i].W.T(), delta)
		deriv = new(mat.Dense)
		activations.ApplyDerivative(deriv, tr.Transfers[i-1], n.layers[i-1].Act)
		prev.MulElem(prev, deriv)
		delta = prev
	}
	return nil
}

// objective is the loss whose gradient seeds the backward pass.
var objective loss.Loss = loss.SquaredError{}

// errorTerm writes dL/d(output) into dst, in place when l supports it.
func errorTerm(dst []float64, l loss.Loss, out, target []float64) error {
	if ip, ok := l.(loss.BackwardInPlacer); ok {
		return ip.BackwardInPlace(out, target, dst)
	}
	grad, err := l.Backward(out, target)
	if err != nil {
		return err
	}
	copy(dst, grad)
	return nil
}

// checkBackward verifies that tr was produced by a network of n's topology
// and that g is shaped like n's parameters.
func (n *Network) checkBackward(tr *Trace, g *Gradients) error {
	if tr == nil || len(tr.Activations) != len(n.layers) || len(tr.Transfers) != len(n.layers) {
		return errors.Wrap(nnerr.ErrShapeMismatch, "backward: trace does not match the network")
	}
	if g == nil || len(g.W) != len(n.layers) || len(g.B) != len(n.layers) {
		return errors.Wrap(nnerr.ErrShapeMismatch, "backward: gradients do not match the network")
	}
	for i, l := range n.layers {
		if err := column("backward activation", i, l.Neurons, tr.Activations[i]); err != nil {
			return err
		}
		if i == 0 {
			continue
		}
		if err := column("backward transfer", i, l.Neurons, tr.Transfers[i]); err != nil {
			return err
		}
		wr, wc := l.W.Dims()
		if g.W[i] == nil {
			return nnerr.MatrixShape("backward weight gradient", i, wr, wc, 0, 0)
		}
		if r, c := g.W[i].Dims(); r != wr || c != wc {
			return nnerr.MatrixShape("backward weight gradient", i, wr, wc, r, c)
		}
		if err := column("backward bias gradient", i, l.Neurons, g.B[i]); err != nil {
			return err
		}
	}
	return nil
}

// column checks that m is a non-nil (rows, 1) matrix.
func column(op string, layer, rows int, m *mat.Dense) error {
	if m == nil {
		return nnerr.MatrixShape(op, layer, rows, 1, 0, 0)
	}
	if r, c := m.Dims(); r != rows || c != 1 {
		return nnerr.MatrixShape(op, layer, rows, 1, r, c)
	}
	return nil
}

// Gradients computes the weight and bias gradients of the squared error for
// a single example without touching the layer accumulators.
func (n *Network) Gradients(input, target []float64) (*Gradients, error) {
	tr, err := n.Propagate(input)
	if err != nil {
		return nil, err
	}
	g := NewGradients(n)
	if err := n.BackwardInto(tr, target, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Loss returns 1/2 * ||output - target||^2 for one example.
func (n *Network) Loss(input, target []float64) (float64, error) {
	out, err := n.Forward(input)
	if err != nil {
		return 0, err
	}
	return loss.SquaredError{}.Forward(out, target)
}

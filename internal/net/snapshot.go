package net

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/GoBANN/internal/activations"
	"github.com/FlavioCFOliveira/GoBANN/internal/layer"
	"github.com/FlavioCFOliveira/GoBANN/internal/nnerr"
)

// Snapshot is a plain copy of a network's topology and parameters. It is the
// hand-off point for whatever persistence a caller chooses.
type Snapshot struct {
	Name   string       `json:"name"`
	Layers []LayerState `json:"layers"`
}

// LayerState is the snapshot of one layer. Input layers only carry Neurons
// and Label.
type LayerState struct {
	Neurons    int         `json:"neurons"`
	Activation string      `json:"activation,omitempty"`
	Leak       float64     `json:"leak,omitempty"`
	Label      string      `json:"label,omitempty"`
	Weights    [][]float64 `json:"weights,omitempty"`
	Biases     []float64   `json:"biases,omitempty"`
}

// Specs returns the layer declarations of the snapshot.
func (s Snapshot) Specs() []LayerSpec {
	specs := make([]LayerSpec, len(s.Layers))
	for i, l := range s.Layers {
		specs[i] = LayerSpec{Neurons: l.Neurons, Activation: l.Activation, Label: l.Label}
	}
	return specs
}

// Snapshot copies the topology and parameters of n.
func (n *Network) Snapshot() Snapshot {
	s := Snapshot{Name: n.Name, Layers: make([]LayerState, len(n.layers))}
	for i, l := range n.layers {
		st := LayerState{Neurons: l.Neurons, Label: l.Label}
		if !l.IsInput() {
			st.Activation = activations.Name(l.Act)
			if r, ok := l.Act.(activations.ReLU); ok {
				st.Leak = r.Leak
			}
		}
		if l.Built() {
			rows, _ := l.W.Dims()
			st.Weights = make([][]float64, rows)
			for j := range st.Weights {
				st.Weights[j] = mat.Row(nil, j, l.W)
			}
			st.Biases = mat.Col(nil, 0, l.B)
		}
		s.Layers[i] = st
	}
	return s
}

// Restore loads the parameters of s into n and clears the momentum state.
// The layer count and every weight and bias shape must match n exactly.
// Every layer is checked before any is loaded, so on error n is unchanged.
func (n *Network) Restore(s Snapshot) error {
	if !n.built {
		return errors.Wrap(nnerr.ErrNotBuilt, "restore")
	}
	if len(s.Layers) != len(n.layers) {
		return &nnerr.ShapeError{
			Op:    "restore",
			Layer: -1,
			Want:  fmt.Sprintf("%d layers", len(n.layers)),
			Got:   fmt.Sprintf("%d layers", len(s.Layers)),
		}
	}

	ws := make([]*mat.Dense, len(n.layers))
	bs := make([]*mat.Dense, len(n.layers))
	for i := 1; i < len(n.layers); i++ {
		w, b, err := s.Layers[i].matrices(i)
		if err != nil {
			return err
		}
		l := n.layers[i]
		wr, wc := l.W.Dims()
		if r, c := w.Dims(); r != wr || c != wc {
			return nnerr.MatrixShape("restore weights", i, wr, wc, r, c)
		}
		if r, _ := b.Dims(); r != l.Neurons {
			return nnerr.MatrixShape("restore biases", i, l.Neurons, 1, r, 1)
		}
		ws[i], bs[i] = w, b
	}

	for i := 1; i < len(n.layers); i++ {
		if err := n.layers[i].Load(ws[i], bs[i]); err != nil {
			return errors.Wrapf(err, "restore layer %d", i)
		}
		n.layers[i].ResetMomentum()
	}
	return nil
}

// FromSnapshot builds a new network with the topology of s and loads its
// parameters.
func FromSnapshot(s Snapshot) (*Network, error) {
	n, err := NewFromSpecs(s.Name, s.Specs(), layer.Constant(0))
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(s.Layers); i++ {
		leak := s.Layers[i].Leak
		if leak == 0 {
			continue
		}
		if _, ok := n.layers[i].Act.(activations.ReLU); !ok {
			return nil, errors.Wrapf(nnerr.ErrUnknownActivation, "layer %d: leak %g on %q", i, leak, s.Layers[i].Activation)
		}
		n.layers[i].Act = activations.LeakyReLU(leak)
	}
	if err := n.Restore(s); err != nil {
		return nil, err
	}
	n.init = layer.DefaultInit
	return n, nil
}

func (st LayerState) matrices(idx int) (*mat.Dense, *mat.Dense, error) {
	rows := len(st.Weights)
	if rows == 0 || len(st.Biases) == 0 {
		return nil, nil, errors.Wrapf(nnerr.ErrShapeMismatch, "restore layer %d: missing weights or biases", idx)
	}
	cols := len(st.Weights[0])
	if cols == 0 {
		return nil, nil, errors.Wrapf(nnerr.ErrShapeMismatch, "restore layer %d: empty weight row", idx)
	}
	flat := make([]float64, 0, rows*cols)
	for _, row := range st.Weights {
		if len(row) != cols {
			return nil, nil, nnerr.Shape("restore weights row", idx, cols, len(row))
		}
		flat = append(flat, row...)
	}
	return mat.NewDense(rows, cols, flat), mat.NewDense(len(st.Biases), 1, append([]float64(nil), st.Biases...)), nil
}

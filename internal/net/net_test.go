// Package net provides unit tests for the network and its passes.
package net

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/GoBANN/internal/activations"
	"github.com/FlavioCFOliveira/GoBANN/internal/layer"
	"github.com/FlavioCFOliveira/GoBANN/internal/loss"
	"github.com/FlavioCFOliveira/GoBANN/internal/nnerr"
)

func build(t *testing.T, init layer.Initializer, specs ...LayerSpec) *Network {
	t.Helper()
	n, err := NewFromSpecs("test", specs, init)
	require.NoError(t, err)
	return n
}

// TestNetworkBuildShapes tests the parameter shapes of a 3-5-4 network.
func TestNetworkBuildShapes(t *testing.T) {
	n := build(t, nil, LayerSpec{Neurons: 3}, LayerSpec{Neurons: 5}, LayerSpec{Neurons: 4})

	ls := n.Layers()
	require.Len(t, ls, 3)
	assert.True(t, ls[0].IsInput())

	r, c := ls[1].W.Dims()
	assert.Equal(t, [2]int{5, 3}, [2]int{r, c})
	r, c = ls[2].W.Dims()
	assert.Equal(t, [2]int{4, 5}, [2]int{r, c})

	assert.Equal(t, []int{3, 5, 4}, n.Sizes())
	assert.Equal(t, 3, n.InputSize())
	assert.Equal(t, 4, n.OutputSize())
}

// TestNetworkTopologyErrors tests declaration and build errors.
func TestNetworkTopologyErrors(t *testing.T) {
	n := New("bad")
	assert.ErrorIs(t, n.AddLayer(3, "sigmoid", ""), nnerr.ErrInvalidTopology, "dense layer before input")
	require.NoError(t, n.AddInput(2, ""))
	assert.ErrorIs(t, n.AddInput(2, ""), nnerr.ErrInvalidTopology, "second input layer")
	assert.ErrorIs(t, n.Build(), nnerr.ErrInvalidTopology, "input layer only")
	assert.ErrorIs(t, n.AddLayer(0, "sigmoid", ""), nnerr.ErrInvalidTopology)
	assert.ErrorIs(t, n.AddLayer(2, "softmaxx", ""), nnerr.ErrUnknownActivation)

	require.NoError(t, n.AddLayer(1, "", "out"))
	require.NoError(t, n.Build())
	assert.Equal(t, activations.KindSigmoid, n.Layers()[1].Act.Kind())
	assert.ErrorIs(t, n.AddLayer(3, "tanh", ""), nnerr.ErrInvalidTopology, "topology is fixed after build")

	_, err := NewFromSpecs("one", []LayerSpec{{Neurons: 2}}, nil)
	assert.ErrorIs(t, err, nnerr.ErrInvalidTopology)
}

// TestNetworkNotBuilt tests that passes require a built network.
func TestNetworkNotBuilt(t *testing.T) {
	n := New("lazy")
	require.NoError(t, n.AddInput(2, ""))
	require.NoError(t, n.AddLayer(1, "relu", ""))

	_, err := n.Forward([]float64{1, 2})
	assert.ErrorIs(t, err, nnerr.ErrNotBuilt)
	assert.ErrorIs(t, n.Backward(&Trace{}, []float64{1}), nnerr.ErrNotBuilt)
	assert.ErrorIs(t, n.Restore(Snapshot{}), nnerr.ErrNotBuilt)
}

// TestPropagateShapes tests the transfer and activation shapes of one pass.
func TestPropagateShapes(t *testing.T) {
	n := build(t, nil, LayerSpec{Neurons: 3}, LayerSpec{Neurons: 5}, LayerSpec{Neurons: 4})

	tr, err := n.Propagate([]float64{0.1, 0.2, 0.3})
	require.NoError(t, err)
	require.Len(t, tr.Transfers, 3)
	require.Len(t, tr.Activations, 3)

	assert.Nil(t, tr.Transfers[0])
	r, c := tr.Activations[0].Dims()
	assert.Equal(t, [2]int{3, 1}, [2]int{r, c})
	r, c = tr.Transfers[1].Dims()
	assert.Equal(t, [2]int{5, 1}, [2]int{r, c})
	r, c = tr.Transfers[2].Dims()
	assert.Equal(t, [2]int{4, 1}, [2]int{r, c})
	r, c = tr.Activations[2].Dims()
	assert.Equal(t, [2]int{4, 1}, [2]int{r, c})

	assert.Len(t, tr.Output(), 4)
}

// TestPropagateKnownValues tests a hand-computed pass.
func TestPropagateKnownValues(t *testing.T) {
	n := build(t, layer.Constant(0),
		LayerSpec{Neurons: 2},
		LayerSpec{Neurons: 2, Activation: "leakyrelu"},
		LayerSpec{Neurons: 1, Activation: "identity"},
	)
	ls := n.Layers()
	require.NoError(t, ls[1].Load(
		mat.NewDense(2, 2, []float64{1, -1, 2, 0.5}),
		mat.NewDense(2, 1, []float64{0, -10}),
	))
	require.NoError(t, ls[2].Load(
		mat.NewDense(1, 2, []float64{3, 4}),
		mat.NewDense(1, 1, []float64{1}),
	))

	tr, err := n.Propagate([]float64{2, 1})
	require.NoError(t, err)

	// hidden transfer: (2-1, 4+0.5-10) = (1, -5.5); leak 0.01
	assert.InDeltaSlice(t, []float64{1, -5.5}, mat.Col(nil, 0, tr.Transfers[1]), 1e-12)
	assert.InDeltaSlice(t, []float64{1, -0.055}, mat.Col(nil, 0, tr.Activations[1]), 1e-12)
	assert.InDeltaSlice(t, []float64{3 - 0.22 + 1}, tr.Output(), 1e-12)
}

// TestPropagateShapeMismatch tests the input length check.
func TestPropagateShapeMismatch(t *testing.T) {
	n := build(t, nil, LayerSpec{Neurons: 4}, LayerSpec{Neurons: 2})

	_, err := n.Forward([]float64{1, 2, 3})
	require.ErrorIs(t, err, nnerr.ErrShapeMismatch)

	var shapeErr *nnerr.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, 0, shapeErr.Layer)
	assert.Equal(t, "4", shapeErr.Want)
	assert.Equal(t, "3", shapeErr.Got)
}

// TestPropagateDoesNotMutate tests that the forward pass leaves parameters alone.
func TestPropagateDoesNotMutate(t *testing.T) {
	n := build(t, layer.SeededNormal(1), LayerSpec{Neurons: 3}, LayerSpec{Neurons: 4, Activation: "tanh"}, LayerSpec{Neurons: 2})
	before := n.Snapshot()

	for i := 0; i < 5; i++ {
		_, err := n.Forward([]float64{1, -2, 3})
		require.NoError(t, err)
	}
	assert.Equal(t, before, n.Snapshot())

	out1, _ := n.Forward([]float64{0.5, 0.5, 0.5})
	out2, _ := n.Forward([]float64{0.5, 0.5, 0.5})
	assert.Equal(t, out1, out2)
}

// TestBackwardZeroError tests that a perfect prediction has zero gradients.
func TestBackwardZeroError(t *testing.T) {
	n := build(t, layer.Constant(0), LayerSpec{Neurons: 3}, LayerSpec{Neurons: 5}, LayerSpec{Neurons: 4})

	input := []float64{0.3, -0.7, 1.1}
	out, err := n.Forward(input)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.5, 0.5}, out, 1e-12)

	g, err := n.Gradients(input, out)
	require.NoError(t, err)

	r, c := g.W[1].Dims()
	assert.Equal(t, [2]int{5, 3}, [2]int{r, c})
	r, c = g.W[2].Dims()
	assert.Equal(t, [2]int{4, 5}, [2]int{r, c})

	assert.True(t, mat.Equal(g.W[1], mat.NewDense(5, 3, nil)))
	assert.True(t, mat.Equal(g.W[2], mat.NewDense(4, 5, nil)))
	assert.True(t, mat.Equal(g.B[1], mat.NewDense(5, 1, nil)))
	assert.True(t, mat.Equal(g.B[2], mat.NewDense(4, 1, nil)))
}

// TestBackwardTargetMismatch tests the target length check.
func TestBackwardTargetMismatch(t *testing.T) {
	n := build(t, nil, LayerSpec{Neurons: 2}, LayerSpec{Neurons: 3}, LayerSpec{Neurons: 2})

	tr, err := n.Propagate([]float64{1, 1})
	require.NoError(t, err)

	err = n.Backward(tr, []float64{1, 0, 0})
	require.ErrorIs(t, err, nnerr.ErrShapeMismatch)

	var shapeErr *nnerr.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, 2, shapeErr.Layer)
}

// TestBackwardMatchesFiniteDifferences checks every weight and bias gradient
// against a central difference of the squared error.
func TestBackwardMatchesFiniteDifferences(t *testing.T) {
	n := build(t, layer.SeededNormal(3),
		LayerSpec{Neurons: 3},
		LayerSpec{Neurons: 4, Activation: "tanh"},
		LayerSpec{Neurons: 3, Activation: "softplus"},
		LayerSpec{Neurons: 2, Activation: "sigmoid"},
	)
	input := []float64{0.4, -0.2, 0.9}
	target := []float64{0.1, 0.8}

	g, err := n.Gradients(input, target)
	require.NoError(t, err)

	settings := &fd.Settings{Formula: fd.Central, Step: 1e-6}
	for i := 1; i < len(n.Layers()); i++ {
		l := n.Layers()[i]
		for _, p := range []struct {
			name  string
			param *mat.Dense
			grad  *mat.Dense
		}{
			{"W", l.W, g.W[i]},
			{"B", l.B, g.B[i]},
		} {
			raw := p.param.RawMatrix().Data
			orig := append([]float64(nil), raw...)
			numeric := fd.Gradient(nil, func(x []float64) float64 {
				copy(raw, x)
				v, err := n.Loss(input, target)
				require.NoError(t, err)
				return v
			}, orig, settings)
			copy(raw, orig)

			assert.InDeltaSlice(t, numeric, p.grad.RawMatrix().Data, 1e-6, "layer %d %s", i, p.name)
		}
	}
}

// TestBackwardAccumulates tests that Backward sums into the layer accumulators.
func TestBackwardAccumulates(t *testing.T) {
	n := build(t, layer.SeededNormal(5), LayerSpec{Neurons: 2}, LayerSpec{Neurons: 3}, LayerSpec{Neurons: 1})
	input := []float64{0.5, -1}
	target := []float64{1}

	single, err := n.Gradients(input, target)
	require.NoError(t, err)

	tr, err := n.Propagate(input)
	require.NoError(t, err)
	require.NoError(t, n.Backward(tr, target))
	require.NoError(t, n.Backward(tr, target))

	for i := 1; i < 3; i++ {
		want := new(mat.Dense)
		want.Scale(2, single.W[i])
		assert.True(t, mat.EqualApprox(want, n.Layers()[i].GradW, 1e-12), "layer %d", i)
	}

	n.ResetAccumulators()
	assert.True(t, mat.Equal(n.Layers()[1].GradW, mat.NewDense(3, 2, nil)))
}

// TestGradientsAddAndZero tests the gradient reduction helpers.
func TestGradientsAddAndZero(t *testing.T) {
	n := build(t, layer.SeededNormal(9), LayerSpec{Neurons: 2}, LayerSpec{Neurons: 2})

	a, err := n.Gradients([]float64{1, 0}, []float64{0, 1})
	require.NoError(t, err)
	b, err := n.Gradients([]float64{0, 1}, []float64{1, 0})
	require.NoError(t, err)

	sum := NewGradients(n)
	sum.Add(a)
	sum.Add(b)

	want := new(mat.Dense)
	want.Add(a.W[1], b.W[1])
	assert.True(t, mat.Equal(want, sum.W[1]))
	assert.Nil(t, sum.W[0])

	sum.AddTo(n)
	assert.True(t, mat.Equal(want, n.Layers()[1].GradW))

	sum.Zero()
	assert.True(t, mat.Equal(sum.W[1], mat.NewDense(2, 2, nil)))
	assert.True(t, mat.Equal(sum.B[1], mat.NewDense(2, 1, nil)))
}

// TestSnapshotRestore tests that a snapshot reproduces the network.
func TestSnapshotRestore(t *testing.T) {
	n := build(t, layer.SeededNormal(11),
		LayerSpec{Neurons: 3, Label: "in"},
		LayerSpec{Neurons: 4, Activation: "leakyrelu", Label: "hidden"},
		LayerSpec{Neurons: 2, Activation: "gaussian"},
	)

	raw, err := json.Marshal(n.Snapshot())
	require.NoError(t, err)

	var s Snapshot
	require.NoError(t, json.Unmarshal(raw, &s))

	m, err := FromSnapshot(s)
	require.NoError(t, err)
	assert.Equal(t, n.String(), m.String())

	input := []float64{0.2, 0.4, -0.6}
	want, _ := n.Forward(input)
	got, err := m.Forward(input)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// TestSnapshotCustomLeak tests that a non-default leak survives a snapshot.
func TestSnapshotCustomLeak(t *testing.T) {
	n := New("leaky")
	require.NoError(t, n.AddInput(1, ""))
	require.NoError(t, n.Add(1, activations.LeakyReLU(0.2), ""))
	require.NoError(t, n.Build())

	m, err := FromSnapshot(n.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, activations.LeakyReLU(0.2), m.Layers()[1].Act)
}

// TestRestoreShapeMismatch tests that restoring into another topology fails.
func TestRestoreShapeMismatch(t *testing.T) {
	small := build(t, nil, LayerSpec{Neurons: 2}, LayerSpec{Neurons: 3}, LayerSpec{Neurons: 1})
	wide := build(t, nil, LayerSpec{Neurons: 2}, LayerSpec{Neurons: 4}, LayerSpec{Neurons: 1})
	shallow := build(t, nil, LayerSpec{Neurons: 2}, LayerSpec{Neurons: 1})

	assert.ErrorIs(t, small.Restore(wide.Snapshot()), nnerr.ErrShapeMismatch)
	assert.ErrorIs(t, small.Restore(shallow.Snapshot()), nnerr.ErrShapeMismatch)

	s := small.Snapshot()
	s.Layers[1].Weights[1] = s.Layers[1].Weights[1][:1]
	assert.ErrorIs(t, small.Restore(s), nnerr.ErrShapeMismatch, "ragged weight rows")
}

// TestRestoreFailureLeavesNetworkUnchanged tests that a snapshot whose last
// layer is malformed loads nothing, including into the earlier layers.
func TestRestoreFailureLeavesNetworkUnchanged(t *testing.T) {
	spec := []LayerSpec{{Neurons: 2}, {Neurons: 3, Activation: "tanh"}, {Neurons: 1}}
	n := build(t, layer.SeededNormal(1), spec...)
	other := build(t, layer.SeededNormal(2), spec...)
	n.Layers()[1].UpdateW.Set(0, 0, 0.5)

	s := other.Snapshot()
	s.Layers[2].Weights[0] = append(s.Layers[2].Weights[0], 1)
	before := n.Snapshot()

	err := n.Restore(s)
	require.ErrorIs(t, err, nnerr.ErrShapeMismatch)
	var shapeErr *nnerr.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, 2, shapeErr.Layer)

	assert.Equal(t, before, n.Snapshot())
	assert.Equal(t, 0.5, n.Layers()[1].UpdateW.At(0, 0))

	s = other.Snapshot()
	require.NoError(t, n.Restore(s))
	assert.Equal(t, s, n.Snapshot())
	assert.Zero(t, n.Layers()[1].UpdateW.At(0, 0))
}

// TestFromSnapshotLeakNeedsReLU tests that a leak is only accepted on a
// ReLU layer.
func TestFromSnapshotLeakNeedsReLU(t *testing.T) {
	n := build(t, nil, LayerSpec{Neurons: 2}, LayerSpec{Neurons: 1, Activation: "sigmoid"})
	s := n.Snapshot()
	s.Layers[1].Leak = 0.3

	_, err := FromSnapshot(s)
	assert.ErrorIs(t, err, nnerr.ErrUnknownActivation)

	s.Layers[1].Activation = "relu"
	m, err := FromSnapshot(s)
	require.NoError(t, err)
	assert.Equal(t, activations.LeakyReLU(0.3), m.Layers()[1].Act)
}

// TestBackwardForeignTrace tests that traces and gradients of another
// topology are rejected without touching the accumulators.
func TestBackwardForeignTrace(t *testing.T) {
	big := build(t, nil, LayerSpec{Neurons: 4}, LayerSpec{Neurons: 5}, LayerSpec{Neurons: 1})
	small := build(t, nil, LayerSpec{Neurons: 2}, LayerSpec{Neurons: 3}, LayerSpec{Neurons: 1})

	foreign, err := small.Propagate([]float64{1, 0})
	require.NoError(t, err)
	own, err := big.Propagate([]float64{1, 0, 1, 0})
	require.NoError(t, err)
	holes, err := big.Propagate([]float64{1, 0, 1, 0})
	require.NoError(t, err)
	holes.Transfers[2] = nil

	tests := []struct {
		name  string
		tr    *Trace
		g     *Gradients
		layer int
	}{
		{"trace of another network", foreign, NewGradients(big), 0},
		{"missing transfer", holes, NewGradients(big), 2},
		{"gradients of another network", own, NewGradients(small), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() { err = big.BackwardInto(tt.tr, []float64{1}, tt.g) })
			require.ErrorIs(t, err, nnerr.ErrShapeMismatch)
			var shapeErr *nnerr.ShapeError
			require.ErrorAs(t, err, &shapeErr)
			assert.Equal(t, tt.layer, shapeErr.Layer)
		})
	}

	require.NotPanics(t, func() { err = big.Backward(foreign, []float64{1}) })
	assert.ErrorIs(t, err, nnerr.ErrShapeMismatch)
	assert.ErrorIs(t, big.BackwardInto(own, []float64{1}, nil), nnerr.ErrShapeMismatch)
	assert.Zero(t, mat.Sum(big.Layers()[1].GradW))
	assert.Zero(t, mat.Sum(big.Layers()[2].GradB))
}

// TestErrorTerm tests the output gradient with and without in-place support.
func TestErrorTerm(t *testing.T) {
	out := []float64{0.5, 2}
	target := []float64{1, 1}

	dst := make([]float64, 2)
	require.NoError(t, errorTerm(dst, loss.SquaredError{}, out, target))
	assert.Equal(t, []float64{-0.5, 1}, dst)

	require.NoError(t, errorTerm(dst, loss.SSE{}, out, target))
	assert.Equal(t, []float64{-1, 2}, dst)

	assert.ErrorIs(t, errorTerm(dst, loss.SquaredError{}, out, []float64{1}), nnerr.ErrShapeMismatch)
}

// TestNetworkString tests the network representation.
func TestNetworkString(t *testing.T) {
	n := build(t, nil, LayerSpec{Neurons: 2, Label: "x"}, LayerSpec{Neurons: 1, Activation: "tanh", Label: "y"})
	assert.Equal(t, `Network("test", [Layer(2, input, "x"), Layer(1, tanh, "y")])`, n.String())
}

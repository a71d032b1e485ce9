package gobann

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlavioCFOliveira/GoBANN/internal/data"
)

func patternModel(t *testing.T) *Model {
	t.Helper()
	m := NewModel("patterns")
	m.SetInitializer(SeededNormal(1))
	m.SetSeed(1)
	require.NoError(t, m.AddInput(4, "in"))
	require.NoError(t, m.AddLayer(8, "sigmoid", "hidden"))
	require.NoError(t, m.AddLayer(3, "sigmoid", "out"))
	require.NoError(t, m.Build())
	return m
}

// TestModelSGD tests the declaration, training and inference flow.
func TestModelSGD(t *testing.T) {
	m := patternModel(t)
	hist := History()
	m.AddCallback(hist)

	ds := data.Patterns(1)
	before, err := m.Evaluate(ds)
	require.NoError(t, err)

	losses, err := m.SGD(ds, 0.05, 1000, 0.5, 0)
	require.NoError(t, err)
	require.Len(t, losses, 1000)
	assert.Equal(t, losses, hist.Loss)

	after, err := m.Evaluate(ds)
	require.NoError(t, err)
	assert.Less(t, after.Loss, before.Loss)

	out, err := m.Forward([]float64{1, 1, 0, 0})
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

// TestModelErrors tests that error kinds surface through the facade.
func TestModelErrors(t *testing.T) {
	m := NewModel("bad")
	assert.ErrorIs(t, m.AddInput(0, ""), ErrInvalidTopology)
	require.NoError(t, m.AddInput(4, ""))
	assert.ErrorIs(t, m.AddLayer(3, "sine", ""), ErrUnknownActivation)

	_, err := m.Forward([]float64{1, 2, 3, 4})
	assert.ErrorIs(t, err, ErrNotBuilt)

	require.NoError(t, m.AddLayer(3, "", ""))
	require.NoError(t, m.Build())

	_, err = m.Forward([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = m.SGD(data.Patterns(1), -1, 10, 0.5, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = m.SGD(nil, 0.05, 10, 0.5, 0)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

// TestModelSnapshot tests rebuilding a model from its snapshot.
func TestModelSnapshot(t *testing.T) {
	m := patternModel(t)
	_, err := m.Train(context.Background(), data.Patterns(2), Config{Alpha: 0.05, Momentum: 0.5, Epochs: 50, BatchSize: 3})
	require.NoError(t, err)

	c, err := FromSnapshot(m.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, "patterns", c.Name)

	in := []float64{0, 1, 1, 0}
	want, err := m.Forward(in)
	require.NoError(t, err)
	got, err := c.Forward(in)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// TestLeakyReLU tests the custom-leak constructor.
func TestLeakyReLU(t *testing.T) {
	a := LeakyReLU(0.1)
	assert.InDelta(t, -0.2, a.Activate(-2), 1e-12)
	assert.Equal(t, 1.0, a.Derivative(0))
	assert.Equal(t, 0.0, ReLU.Activate(-2))
}

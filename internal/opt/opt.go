// Package opt provides optimization algorithms.
package opt

import (
	"gonum.org/v1/gonum/floats"

	"github.com/FlavioCFOliveira/GoBANN/internal/layer"
)

// Optimizer updates a layer's parameters from its accumulated gradients.
type Optimizer interface {
	// Step applies one update to l.W and l.B from l.GradW and l.GradB.
	// The accumulators are left untouched.
	Step(l *layer.Layer)
}

// SGD is gradient descent with momentum:
//
//	update = -LearningRate * grad + Momentum * update_prev
//	param += update
//	update_prev = update
//
// The previous update lives in the layer (UpdateW, UpdateB), so one SGD
// value can drive any number of layers.
type SGD struct {
	LearningRate float64
	Momentum     float64
}

// Step applies the momentum update to the weights and biases of l. Input
// layers and layers that have not been built are skipped.
func (s SGD) Step(l *layer.Layer) {
	if l.IsInput() || !l.Built() {
		return
	}
	s.StepInPlace(l.W.RawMatrix().Data, l.GradW.RawMatrix().Data, l.UpdateW.RawMatrix().Data)
	s.StepInPlace(l.B.RawMatrix().Data, l.GradB.RawMatrix().Data, l.UpdateB.RawMatrix().Data)
}

// StepInPlace applies the momentum update to flat slices of equal length.
// update holds the previous update on entry and the new one on return.
func (s SGD) StepInPlace(params, gradients, update []float64) {
	floats.Scale(s.Momentum, update)
	floats.AddScaled(update, -s.LearningRate, gradients)
	floats.Add(params, update)
}

// Package loss provides the loss functions used to train and evaluate networks.
package loss

import (
	"gonum.org/v1/gonum/floats"

	"github.com/FlavioCFOliveira/GoBANN/internal/nnerr"
)

// BackwardInPlacer is an optional interface for loss functions that support
// in-place gradient computation to avoid allocations.
type BackwardInPlacer interface {
	BackwardInPlace(yPred, yTrue, grad []float64) error
}

// Loss is a loss function with derivative.
type Loss interface {
	// Forward computes the loss between predicted and true values.
	Forward(yPred, yTrue []float64) (float64, error)

	// Backward computes the gradient of the loss w.r.t. prediction.
	Backward(yPred, yTrue []float64) ([]float64, error)
}

func check(name string, yPred, yTrue []float64) error {
	if len(yPred) != len(yTrue) {
		return nnerr.Shape(name, -1, len(yPred), len(yTrue))
	}
	return nil
}

func sumSquares(yPred, yTrue []float64) float64 {
	diff := make([]float64, len(yPred))
	floats.SubTo(diff, yPred, yTrue)
	return floats.Dot(diff, diff)
}

// SquaredError is the training objective of the backward pass:
// L = 1/2 * sum((y_pred - y_true)^2), whose gradient is y_pred - y_true.
type SquaredError struct{}

// Forward computes 1/2 * sum((y_pred - y_true)^2)
func (SquaredError) Forward(yPred, yTrue []float64) (float64, error) {
	if err := check("squared error", yPred, yTrue); err != nil {
		return 0, err
	}
	return 0.5 * sumSquares(yPred, yTrue), nil
}

// Backward computes y_pred - y_true
func (s SquaredError) Backward(yPred, yTrue []float64) ([]float64, error) {
	grad := make([]float64, len(yPred))
	if err := s.BackwardInPlace(yPred, yTrue, grad); err != nil {
		return nil, err
	}
	return grad, nil
}

// BackwardInPlace computes y_pred - y_true into grad.
func (SquaredError) BackwardInPlace(yPred, yTrue, grad []float64) error {
	if err := check("squared error", yPred, yTrue); err != nil {
		return err
	}
	if len(grad) != len(yPred) {
		return nnerr.Shape("squared error gradient", -1, len(yPred), len(grad))
	}
	floats.SubTo(grad, yPred, yTrue)
	return nil
}

// SSE is the plain sum of squared errors, used to report test loss.
type SSE struct{}

// Forward computes sum((y_pred - y_true)^2)
func (SSE) Forward(yPred, yTrue []float64) (float64, error) {
	if err := check("sse", yPred, yTrue); err != nil {
		return 0, err
	}
	return sumSquares(yPred, yTrue), nil
}

// Backward computes 2 * (y_pred - y_true)
func (SSE) Backward(yPred, yTrue []float64) ([]float64, error) {
	if err := check("sse", yPred, yTrue); err != nil {
		return nil, err
	}
	grad := make([]float64, len(yPred))
	floats.SubTo(grad, yPred, yTrue)
	floats.Scale(2, grad)
	return grad, nil
}

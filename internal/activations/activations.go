// Package activations provides activation functions and their derivatives.
package activations

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/GoBANN/internal/nnerr"
)

// Kind identifies one of the supported activation functions.
type Kind int

const (
	KindIdentity Kind = iota
	KindSigmoid
	KindTanh
	KindSoftplus
	KindGaussian
	KindReLU
)

var kindNames = [...]string{
	KindIdentity: "identity",
	KindSigmoid:  "sigmoid",
	KindTanh:     "tanh",
	KindSoftplus: "softplus",
	KindGaussian: "gaussian",
	KindReLU:     "relu",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// DefaultLeak is the leak used when "leakyrelu" is selected by name.
const DefaultLeak = 0.01

// Activation is an activation function with derivative.
type Activation interface {
	// Activate computes f(x)
	Activate(x float64) float64

	// Derivative computes f'(x)
	Derivative(x float64) float64

	// Kind reports which function this is.
	Kind() Kind
}

// Parse returns the activation registered under name. Matching is
// case-insensitive.
func Parse(name string) (Activation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "identity", "linear":
		return Identity{}, nil
	case "sigmoid":
		return Sigmoid{}, nil
	case "tanh", "tanhyp":
		return Tanh{}, nil
	case "softplus":
		return Softplus{}, nil
	case "gaussian":
		return Gaussian{}, nil
	case "relu":
		return ReLU{}, nil
	case "leakyrelu", "leaky_relu":
		return LeakyReLU(DefaultLeak), nil
	}
	return nil, errors.Wrapf(nnerr.ErrUnknownActivation, "%q", name)
}

// Name returns the name under which a can be selected again with Parse.
// Leaky ReLUs with a leak other than 0 or DefaultLeak have no name and
// report "relu"; their leak must be carried separately.
func Name(a Activation) string {
	if r, ok := a.(ReLU); ok && r.Leak == DefaultLeak {
		return "leakyrelu"
	}
	return a.Kind().String()
}

// Identity activation function.
type Identity struct{}

// Activate computes x
func (Identity) Activate(x float64) float64 { return x }

// Derivative returns 1
func (Identity) Derivative(float64) float64 { return 1 }

func (Identity) Kind() Kind { return KindIdentity }

// Sigmoid activation function.
type Sigmoid struct{}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Activate computes 1/(1+e^-x)
func (Sigmoid) Activate(x float64) float64 {
	return sigmoid(x)
}

// Derivative computes sigmoid(x) * (1 - sigmoid(x))
func (Sigmoid) Derivative(x float64) float64 {
	sigma := sigmoid(x)
	return sigma * (1 - sigma)
}

func (Sigmoid) Kind() Kind { return KindSigmoid }

// Tanh activation function.
type Tanh struct{}

// Activate computes (e^x - e^-x)/(e^x + e^-x)
func (Tanh) Activate(x float64) float64 {
	return math.Tanh(x)
}

// Derivative computes 1 - tanh(x)^2
func (Tanh) Derivative(x float64) float64 {
	t := math.Tanh(x)
	return 1 - t*t
}

func (Tanh) Kind() Kind { return KindTanh }

// Softplus activation function.
type Softplus struct{}

// Activate computes ln(1+e^x). For positive x it is evaluated as
// x + ln(1+e^-x) so large inputs do not overflow.
func (Softplus) Activate(x float64) float64 {
	if x > 0 {
		return x + math.Log1p(math.Exp(-x))
	}
	return math.Log1p(math.Exp(x))
}

// Derivative computes sigmoid(x)
func (Softplus) Derivative(x float64) float64 {
	return sigmoid(x)
}

func (Softplus) Kind() Kind { return KindSoftplus }

// Gaussian activation function.
type Gaussian struct{}

// Activate computes e^(-x^2)
func (Gaussian) Activate(x float64) float64 {
	return math.Exp(-x * x)
}

// Derivative computes -2x * e^(-x^2)
func (Gaussian) Derivative(x float64) float64 {
	return -2 * x * math.Exp(-x*x)
}

func (Gaussian) Kind() Kind { return KindGaussian }

// ReLU activation function. A non-zero Leak turns it into a leaky ReLU.
type ReLU struct {
	Leak float64 // Slope for x < 0
}

// LeakyReLU creates a ReLU with the given leak.
func LeakyReLU(leak float64) ReLU {
	return ReLU{Leak: leak}
}

// Activate computes x if x > 0, else leak*x
func (r ReLU) Activate(x float64) float64 {
	if x > 0 {
		return x
	}
	return r.Leak * x
}

// Derivative returns 1 if x >= 0, else leak. Zero counts as non-negative.
func (r ReLU) Derivative(x float64) float64 {
	if x >= 0 {
		return 1
	}
	return r.Leak
}

func (ReLU) Kind() Kind { return KindReLU }

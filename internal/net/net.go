// Package net provides the feed-forward network and its forward and backward passes.
package net

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/GoBANN/internal/activations"
	"github.com/FlavioCFOliveira/GoBANN/internal/layer"
	"github.com/FlavioCFOliveira/GoBANN/internal/nnerr"
)

// Network is an ordered sequence of layers. The first layer is the input
// placeholder; every other layer is dense. The topology is fixed once
// Build has been called.
type Network struct {
	Name string

	layers []*layer.Layer
	init   layer.Initializer
	built  bool
}

// LayerSpec declares one layer of a network. The first spec of a network is
// the input layer and its Activation is ignored.
type LayerSpec struct {
	Neurons    int
	Activation string
	Label      string
}

// New creates an empty network.
func New(name string) *Network {
	return &Network{Name: name, init: layer.DefaultInit}
}

// NewFromSpecs declares and builds a network in one call.
func NewFromSpecs(name string, specs []LayerSpec, init layer.Initializer) (*Network, error) {
	if len(specs) < 2 {
		return nil, errors.Wrapf(nnerr.ErrInvalidTopology, "need an input and at least one more layer, got %d layers", len(specs))
	}
	n := New(name)
	if init != nil {
		n.init = init
	}
	if err := n.AddInput(specs[0].Neurons, specs[0].Label); err != nil {
		return nil, err
	}
	for i, s := range specs[1:] {
		if err := n.AddLayer(s.Neurons, s.Activation, s.Label); err != nil {
			return nil, errors.Wrapf(err, "layer %d", i+1)
		}
	}
	if err := n.Build(); err != nil {
		return nil, err
	}
	return n, nil
}

// SetInitializer sets the distribution used by the next Build.
func (n *Network) SetInitializer(init layer.Initializer) {
	n.init = init
}

// AddInput declares the input layer. It must be the first layer.
func (n *Network) AddInput(neurons int, label string) error {
	if n.built {
		return errors.Wrap(nnerr.ErrInvalidTopology, "topology is fixed after build")
	}
	if len(n.layers) != 0 {
		return errors.Wrap(nnerr.ErrInvalidTopology, "input layer must be declared first and only once")
	}
	l, err := layer.NewInput(neurons, label)
	if err != nil {
		return err
	}
	n.layers = append(n.layers, l)
	return nil
}

// AddLayer declares a dense layer with the activation registered under
// activation. An empty name selects sigmoid.
func (n *Network) AddLayer(neurons int, activation string, label string) error {
	act := activations.Activation(activations.Sigmoid{})
	if activation != "" {
		var err error
		if act, err = activations.Parse(activation); err != nil {
			return err
		}
	}
	return n.Add(neurons, act, label)
}

// Add declares a dense layer with an explicit activation value, e.g. a
// leaky ReLU with a custom leak.
func (n *Network) Add(neurons int, act activations.Activation, label string) error {
	if n.built {
		return errors.Wrap(nnerr.ErrInvalidTopology, "topology is fixed after build")
	}
	if len(n.layers) == 0 {
		return errors.Wrap(nnerr.ErrInvalidTopology, "declare the input layer first")
	}
	l, err := layer.New(neurons, act, label)
	if err != nil {
		return err
	}
	n.layers = append(n.layers, l)
	return nil
}

// Build allocates the weights and biases of every non-input layer.
func (n *Network) Build() error {
	if len(n.layers) < 2 {
		return errors.Wrapf(nnerr.ErrInvalidTopology, "need an input and at least one more layer, got %d layers", len(n.layers))
	}
	for i := 1; i < len(n.layers); i++ {
		if err := n.layers[i].Build(n.layers[i-1].Neurons, n.init); err != nil {
			return errors.Wrapf(err, "build layer %d", i)
		}
	}
	n.built = true
	return nil
}

// Built reports whether Build has been called.
func (n *Network) Built() bool {
	return n.built
}

// Layers returns the network's layers, input layer first.
func (n *Network) Layers() []*layer.Layer {
	return n.layers
}

// Sizes returns the neuron count of every layer, input layer first.
func (n *Network) Sizes() []int {
	sizes := make([]int, len(n.layers))
	for i, l := range n.layers {
		sizes[i] = l.Neurons
	}
	return sizes
}

// InputSize returns the neuron count of the input layer.
func (n *Network) InputSize() int {
	if len(n.layers) == 0 {
		return 0
	}
	return n.layers[0].Neurons
}

// OutputSize returns the neuron count of the output layer.
func (n *Network) OutputSize() int {
	if len(n.layers) == 0 {
		return 0
	}
	return n.layers[len(n.layers)-1].Neurons
}

// ResetAccumulators zeroes the gradient accumulators of every layer.
func (n *Network) ResetAccumulators() {
	for _, l := range n.layers {
		l.ResetAccumulators()
	}
}

func (n *Network) String() string {
	parts := make([]string, len(n.layers))
	for i, l := range n.layers {
		parts[i] = l.String()
	}
	return fmt.Sprintf("Network(%q, [%s])", n.Name, strings.Join(parts, ", "))
}

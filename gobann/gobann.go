// Package gobann is the public entry point: declare a network layer by
// layer, build it, train it with SGD and momentum, and run inference.
package gobann

import (
	"context"

	"github.com/FlavioCFOliveira/GoBANN/internal/activations"
	"github.com/FlavioCFOliveira/GoBANN/internal/data"
	"github.com/FlavioCFOliveira/GoBANN/internal/layer"
	"github.com/FlavioCFOliveira/GoBANN/internal/net"
	"github.com/FlavioCFOliveira/GoBANN/internal/nnerr"
	"github.com/FlavioCFOliveira/GoBANN/internal/train"
)

// Re-export common types for easier access
type (
	Network     = net.Network
	Layer       = layer.Layer
	Activation  = activations.Activation
	Initializer = layer.Initializer
	Example     = data.Example
	Dataset     = data.Dataset
	Snapshot    = net.Snapshot
	Config      = train.Config
	Callback    = train.Callback
	ShapeError  = nnerr.ShapeError
)

// Error kinds
var (
	ErrInvalidTopology   = nnerr.ErrInvalidTopology
	ErrUnknownActivation = nnerr.ErrUnknownActivation
	ErrShapeMismatch     = nnerr.ErrShapeMismatch
	ErrNotBuilt          = nnerr.ErrNotBuilt
	ErrInvalidConfig     = train.ErrInvalidConfig
	ErrEmptyDataset      = train.ErrEmptyDataset
)

// Activations
var (
	Identity = activations.Identity{}
	Sigmoid  = activations.Sigmoid{}
	Tanh     = activations.Tanh{}
	Softplus = activations.Softplus{}
	Gaussian = activations.Gaussian{}
	ReLU     = activations.ReLU{}
)

func LeakyReLU(leak float64) Activation {
	return activations.LeakyReLU(leak)
}

// Initializers
func SeededNormal(seed int64) Initializer {
	return layer.SeededNormal(seed)
}

// Model is a named network with the training entry points attached.
// Declare it with AddInput and AddLayer, then call Build.
type Model struct {
	*net.Network

	callbacks []train.Callback
	seed      int64
}

// NewModel returns an empty model.
func NewModel(name string) *Model {
	return &Model{Network: net.New(name)}
}

// FromSnapshot rebuilds a model from a snapshot.
func FromSnapshot(s Snapshot) (*Model, error) {
	n, err := net.FromSnapshot(s)
	if err != nil {
		return nil, err
	}
	return &Model{Network: n}, nil
}

// AddCallback registers callbacks for every following training run.
func (m *Model) AddCallback(cbs ...Callback) {
	m.callbacks = append(m.callbacks, cbs...)
}

// SetSeed fixes the shuffle seed of every following training run.
func (m *Model) SetSeed(seed int64) {
	m.seed = seed
}

// SGD trains the model on dataset for nepoch epochs with learning rate alpha,
// momentum and mini-batch size batchsize (0 for the whole dataset), and
// returns the loss of every epoch.
func (m *Model) SGD(dataset Dataset, alpha float64, nepoch int, momentum float64, batchsize int) ([]float64, error) {
	return m.Train(context.Background(), dataset, train.Config{
		Alpha:     alpha,
		Momentum:  momentum,
		BatchSize: batchsize,
		Epochs:    nepoch,
		Workers:   1,
		Seed:      m.seed,
	})
}

// Train trains the model with an explicit configuration. A zero cfg.Seed
// is replaced by the model's seed, if one was set.
func (m *Model) Train(ctx context.Context, dataset Dataset, cfg Config) ([]float64, error) {
	if cfg.Seed == 0 {
		cfg.Seed = m.seed
	}
	t, err := train.New(m.Network, cfg, m.callbacks...)
	if err != nil {
		return nil, err
	}
	return t.Run(ctx, dataset)
}

// Evaluate returns the mean summed squared error and the accuracy of the
// model on dataset.
func (m *Model) Evaluate(dataset Dataset) (train.Evaluation, error) {
	return train.Evaluate(m.Network, dataset)
}

// DefaultConfig returns the default hyperparameters.
func DefaultConfig() Config {
	return train.DefaultConfig()
}

// Callbacks
func History() *train.History {
	return &train.History{}
}

func Logger(interval int) Callback {
	return train.Logger{Interval: interval}
}

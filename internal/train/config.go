package train

import (
	"math"

	"github.com/pkg/errors"
)

// ErrInvalidConfig is returned for hyperparameters that cannot be used.
var ErrInvalidConfig = errors.New("invalid training config")

// Config holds the hyperparameters of a training run. They are fixed once a
// Trainer has been created.
type Config struct {
	// Alpha is the learning rate.
	Alpha float64 `json:"alpha"`
	// Momentum is the fraction of the previous update carried into the next.
	Momentum float64 `json:"momentum"`
	// BatchSize is the number of examples drawn per epoch after a shuffle.
	// 0 uses the whole dataset in its given order.
	BatchSize int `json:"batch_size"`
	// Epochs is the number of updates performed.
	Epochs int `json:"epochs"`
	// Workers > 1 computes the gradients of a batch in parallel.
	Workers int `json:"workers"`
	// Seed seeds the shuffle. 0 picks a time-based seed.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns the default hyperparameters.
func DefaultConfig() Config {
	return Config{
		Alpha:    0.05,
		Momentum: 0.5,
		Epochs:   1000,
		Workers:  1,
	}
}

// Validate reports the first unusable hyperparameter.
func (c Config) Validate() error {
	switch {
	case math.IsNaN(c.Alpha) || math.IsInf(c.Alpha, 0) || c.Alpha < 0:
		return errors.Wrapf(ErrInvalidConfig, "alpha must be a finite value >= 0, got %v", c.Alpha)
	case math.IsNaN(c.Momentum) || math.IsInf(c.Momentum, 0) || c.Momentum < 0:
		return errors.Wrapf(ErrInvalidConfig, "momentum must be a finite value >= 0, got %v", c.Momentum)
	case c.BatchSize < 0:
		return errors.Wrapf(ErrInvalidConfig, "batch size must be >= 0, got %d", c.BatchSize)
	case c.Epochs < 0:
		return errors.Wrapf(ErrInvalidConfig, "epochs must be >= 0, got %d", c.Epochs)
	case c.Workers < 0:
		return errors.Wrapf(ErrInvalidConfig, "workers must be >= 0, got %d", c.Workers)
	}
	return nil
}

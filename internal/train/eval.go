package train

import (
	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/GoBANN/internal/data"
	"github.com/FlavioCFOliveira/GoBANN/internal/loss"
	"github.com/FlavioCFOliveira/GoBANN/internal/net"
)

// TotalError returns the sum over ds of 1/2 * ||output - target||^2.
func TotalError(n *net.Network, ds data.Dataset) (float64, error) {
	var total float64
	for i, ex := range ds {
		l, err := n.Loss(ex.Input, ex.Target)
		if err != nil {
			return 0, errors.Wrapf(err, "example %d", i)
		}
		total += l
	}
	return total, nil
}

// Evaluation summarizes a network's performance on a dataset.
type Evaluation struct {
	// Loss is the mean over examples of the summed squared error.
	Loss float64 `json:"loss"`
	// Accuracy is the fraction of examples whose largest output is at the
	// position of the largest target value.
	Accuracy float64 `json:"accuracy"`
}

// Evaluate runs every example of ds through n.
func Evaluate(n *net.Network, ds data.Dataset) (Evaluation, error) {
	if len(ds) == 0 {
		return Evaluation{}, ErrEmptyDataset
	}
	var sum float64
	var hits int
	for i, ex := range ds {
		out, err := n.Forward(ex.Input)
		if err != nil {
			return Evaluation{}, errors.Wrapf(err, "example %d", i)
		}
		l, err := loss.SSE{}.Forward(out, ex.Target)
		if err != nil {
			return Evaluation{}, errors.Wrapf(err, "example %d", i)
		}
		sum += l
		if data.ArgMax(out) == data.ArgMax(ex.Target) {
			hits++
		}
	}
	return Evaluation{
		Loss:     sum / float64(len(ds)),
		Accuracy: float64(hits) / float64(len(ds)),
	}, nil
}

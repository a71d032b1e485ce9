// Package train provides the stochastic gradient descent trainer.
package train

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/GoBANN/internal/data"
	"github.com/FlavioCFOliveira/GoBANN/internal/loss"
	"github.com/FlavioCFOliveira/GoBANN/internal/net"
	"github.com/FlavioCFOliveira/GoBANN/internal/nnerr"
	"github.com/FlavioCFOliveira/GoBANN/internal/opt"
)

// ErrEmptyDataset is returned when Run is given no examples.
var ErrEmptyDataset = errors.New("dataset is empty")

// State is the position of a Trainer in its run.
type State int32

const (
	StateIdle State = iota
	StateEpoch
	StateBatch
	StateExample
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEpoch:
		return "epoch"
	case StateBatch:
		return "batch"
	case StateExample:
		return "example"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Trainer trains a built network with SGD and momentum.
//
// Each epoch resets the gradient accumulators, selects the examples of the
// epoch, sums their gradients and applies a single momentum update to every
// layer. With a non-zero batch size the ordering is reshuffled every epoch
// and only the first BatchSize examples are used; otherwise the dataset is
// used whole and in order. Gradients are summed, never averaged.
type Trainer struct {
	net       *net.Network
	cfg       Config
	opt       opt.Optimizer
	callbacks []Callback
	rng       *rand.Rand

	state atomic.Int32
	epoch atomic.Int64
}

// New returns a Trainer for n. The configuration is validated here and
// cannot be changed afterwards.
func New(n *net.Network, cfg Config, callbacks ...Callback) (*Trainer, error) {
	if !n.Built() {
		return nil, errors.Wrap(nnerr.ErrNotBuilt, "train")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Trainer{
		net:       n,
		cfg:       cfg,
		opt:       opt.SGD{LearningRate: cfg.Alpha, Momentum: cfg.Momentum},
		callbacks: callbacks,
		rng:       rand.New(rand.NewSource(seed)),
	}, nil
}

// Config returns the hyperparameters of t.
func (t *Trainer) Config() Config {
	return t.cfg
}

// State returns the current state. It is safe to call from any goroutine.
func (t *Trainer) State() State {
	return State(t.state.Load())
}

// Epoch returns the index of the epoch in progress, or the number of
// finished epochs once the run is done.
func (t *Trainer) Epoch() int {
	return int(t.epoch.Load())
}

// Run trains on ds for the configured number of epochs and returns the loss
// of every epoch: the sum over the epoch's examples of 1/2 * ||output -
// target||^2, measured before the epoch's update.
//
// The dataset is validated against the network before the first epoch; on
// failure no weights are touched. Cancellation of ctx is checked between
// epochs and returns the losses of the finished epochs with ctx's error.
func (t *Trainer) Run(ctx context.Context, ds data.Dataset) ([]float64, error) {
	if len(ds) == 0 {
		return nil, ErrEmptyDataset
	}
	if err := ds.Validate(t.net.InputSize(), t.net.OutputSize()); err != nil {
		return nil, errors.Wrap(err, "train")
	}

	t.epoch.Store(0)
	defer t.setState(StateDone)

	order := make([]int, len(ds))
	for i := range order {
		order[i] = i
	}

	for _, cb := range t.callbacks {
		cb.OnTrainBegin(t.net)
	}

	losses := make([]float64, 0, t.cfg.Epochs)
	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		select {
		case <-ctx.Done():
			t.end()
			return losses, errors.Wrapf(ctx.Err(), "train: stopped after %d epochs", epoch)
		default:
		}

		t.epoch.Store(int64(epoch))
		t.setState(StateEpoch)
		for _, cb := range t.callbacks {
			cb.OnEpochBegin(epoch, t.net)
		}

		l, err := t.runEpoch(ds, order)
		if err != nil {
			t.end()
			return losses, errors.Wrapf(err, "train: epoch %d", epoch)
		}
		losses = append(losses, l)

		for _, cb := range t.callbacks {
			cb.OnEpochEnd(epoch, l, t.net)
		}
	}
	t.epoch.Store(int64(t.cfg.Epochs))
	t.end()
	return losses, nil
}

func (t *Trainer) end() {
	for _, cb := range t.callbacks {
		cb.OnTrainEnd(t.net)
	}
}

func (t *Trainer) setState(s State) {
	t.state.Store(int32(s))
}

func (t *Trainer) runEpoch(ds data.Dataset, order []int) (float64, error) {
	t.net.ResetAccumulators()

	batch := order
	if t.cfg.BatchSize != 0 {
		t.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		batch = order[:min(t.cfg.BatchSize, len(order))]
	}

	t.setState(StateBatch)
	for _, cb := range t.callbacks {
		cb.OnBatchBegin(0, t.net)
	}

	var (
		l   float64
		err error
	)
	if t.cfg.Workers > 1 && len(batch) > 1 {
		l, err = t.accumulateParallel(ds, batch)
	} else {
		l, err = t.accumulate(ds, batch)
	}
	if err != nil {
		return 0, err
	}

	for _, ly := range t.net.Layers() {
		t.opt.Step(ly)
	}

	for _, cb := range t.callbacks {
		cb.OnBatchEnd(0, l, t.net)
	}
	return l, nil
}

// accumulate runs forward and backward for every example of batch in order,
// summing into the layer accumulators.
func (t *Trainer) accumulate(ds data.Dataset, batch []int) (float64, error) {
	t.setState(StateExample)
	var total float64
	for _, k := range batch {
		ex := ds[k]
		tr, err := t.net.Propagate(ex.Input)
		if err != nil {
			return 0, errors.Wrapf(err, "example %d", k)
		}
		l, err := loss.SquaredError{}.Forward(tr.Output(), ex.Target)
		if err != nil {
			return 0, errors.Wrapf(err, "example %d", k)
		}
		total += l
		if err := t.net.Backward(tr, ex.Target); err != nil {
			return 0, errors.Wrapf(err, "example %d", k)
		}
	}
	return total, nil
}

// accumulateParallel splits batch into contiguous chunks, one per worker.
// Every worker sums into private gradients; the partial sums are then added
// to the layer accumulators in worker order.
func (t *Trainer) accumulateParallel(ds data.Dataset, batch []int) (float64, error) {
	t.setState(StateExample)

	workers := min(t.cfg.Workers, len(batch))
	chunk := (len(batch) + workers - 1) / workers

	grads := make([]*net.Gradients, workers)
	losses := make([]float64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, len(batch))
		if start >= end {
			continue
		}
		grads[w] = net.NewGradients(t.net)
		wg.Add(1)
		go func(w int, part []int) {
			defer wg.Done()
			for _, k := range part {
				ex := ds[k]
				tr, err := t.net.Propagate(ex.Input)
				if err != nil {
					errs[w] = errors.Wrapf(err, "example %d", k)
					return
				}
				l, err := loss.SquaredError{}.Forward(tr.Output(), ex.Target)
				if err != nil {
					errs[w] = errors.Wrapf(err, "example %d", k)
					return
				}
				losses[w] += l
				if err := t.net.BackwardInto(tr, ex.Target, grads[w]); err != nil {
					errs[w] = errors.Wrapf(err, "example %d", k)
					return
				}
			}
		}(w, batch[start:end])
	}
	wg.Wait()

	var total float64
	for w := 0; w < workers; w++ {
		if errs[w] != nil {
			return 0, errs[w]
		}
		if grads[w] == nil {
			continue
		}
		grads[w].AddTo(t.net)
		total += losses[w]
	}
	return total, nil
}

package train

import (
	"log/slog"

	"github.com/FlavioCFOliveira/GoBANN/internal/net"
)

// Callback receives training events. Epoch and batch indices start at 0.
type Callback interface {
	OnTrainBegin(n *net.Network)
	OnTrainEnd(n *net.Network)
	OnEpochBegin(epoch int, n *net.Network)
	OnEpochEnd(epoch int, loss float64, n *net.Network)
	OnBatchBegin(batch int, n *net.Network)
	OnBatchEnd(batch int, loss float64, n *net.Network)
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

func (c BaseCallback) OnTrainBegin(n *net.Network)                        {}
func (c BaseCallback) OnTrainEnd(n *net.Network)                          {}
func (c BaseCallback) OnEpochBegin(epoch int, n *net.Network)             {}
func (c BaseCallback) OnEpochEnd(epoch int, loss float64, n *net.Network) {}
func (c BaseCallback) OnBatchBegin(batch int, n *net.Network)             {}
func (c BaseCallback) OnBatchEnd(batch int, loss float64, n *net.Network) {}

// EpochFunc adapts a function to a Callback called at the end of every epoch.
type EpochFunc func(epoch int, loss float64)

func (f EpochFunc) OnTrainBegin(n *net.Network)            {}
func (f EpochFunc) OnTrainEnd(n *net.Network)              {}
func (f EpochFunc) OnEpochBegin(epoch int, n *net.Network) {}
func (f EpochFunc) OnBatchBegin(batch int, n *net.Network) {}

func (f EpochFunc) OnBatchEnd(batch int, loss float64, n *net.Network) {}

func (f EpochFunc) OnEpochEnd(epoch int, loss float64, n *net.Network) {
	f(epoch, loss)
}

// History records the loss of every epoch.
type History struct {
	BaseCallback
	Loss []float64
}

func (h *History) OnTrainBegin(n *net.Network) {
	h.Loss = h.Loss[:0]
}

func (h *History) OnEpochEnd(epoch int, loss float64, n *net.Network) {
	h.Loss = append(h.Loss, loss)
}

// Logger logs training progress every Interval epochs.
type Logger struct {
	BaseCallback
	Log      *slog.Logger
	Interval int
}

func (c Logger) logger() *slog.Logger {
	if c.Log == nil {
		return slog.Default()
	}
	return c.Log
}

func (c Logger) OnTrainBegin(n *net.Network) {
	c.logger().Info("training started", "network", n.Name, "sizes", n.Sizes())
}

func (c Logger) OnEpochEnd(epoch int, loss float64, n *net.Network) {
	if c.Interval > 0 && (epoch+1)%c.Interval == 0 {
		c.logger().Info("epoch finished", "network", n.Name, "epoch", epoch+1, "loss", loss)
	}
}

func (c Logger) OnTrainEnd(n *net.Network) {
	c.logger().Info("training finished", "network", n.Name)
}

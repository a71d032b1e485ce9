package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/GoBANN/internal/data"
	"github.com/FlavioCFOliveira/GoBANN/internal/layer"
	"github.com/FlavioCFOliveira/GoBANN/internal/net"
	"github.com/FlavioCFOliveira/GoBANN/internal/train"
)

type layerRequest struct {
	Neurons    int    `json:"neurons"`
	Activation string `json:"activation"`
	Label      string `json:"label"`
}

type createRequest struct {
	Name   string         `json:"name"`
	Layers []layerRequest `json:"layers"`
	Seed   int64          `json:"seed"`
}

type trainRequest struct {
	Examples data.Dataset `json:"examples"`
	train.Config
}

type trainResponse struct {
	Epochs int       `json:"epochs"`
	Loss   []float64 `json:"loss"`
}

type predictRequest struct {
	Input []float64 `json:"input"`
}

type modelInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Sizes []int  `json:"sizes"`
}

func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		abort(c, errors.Wrap(errBadRequest, err.Error()))
		return false
	}
	return true
}

// lock looks the model up and takes its lock without waiting.
func lock(c *gin.Context, reg *registry) (*model, bool) {
	m, ok := reg.get(c.Param("id"))
	if !ok {
		abort(c, errModelNotFound)
		return nil, false
	}
	if !m.mu.TryLock() {
		abort(c, errModelBusy)
		return nil, false
	}
	return m, true
}

// createHandler declares and builds a network. The first layer is the input.
func createHandler(reg *registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRequest
		if !bind(c, &req) {
			return
		}
		specs := make([]net.LayerSpec, len(req.Layers))
		for i, l := range req.Layers {
			specs[i] = net.LayerSpec{Neurons: l.Neurons, Activation: l.Activation, Label: l.Label}
		}
		var init layer.Initializer
		if req.Seed != 0 {
			init = layer.SeededNormal(req.Seed)
		}
		n, err := net.NewFromSpecs(req.Name, specs, init)
		if err != nil {
			abort(c, err)
			return
		}
		m := reg.add(n)
		c.JSON(http.StatusCreated, gin.H{"id": m.id})
	}
}

func listHandler(reg *registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		ms := reg.list()
		infos := make([]modelInfo, len(ms))
		for i, m := range ms {
			infos[i] = modelInfo{ID: m.id, Name: m.net.Name, Sizes: m.net.Sizes()}
		}
		c.JSON(http.StatusOK, infos)
	}
}

func snapshotHandler(reg *registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, ok := lock(c, reg)
		if !ok {
			return
		}
		defer m.mu.Unlock()
		c.JSON(http.StatusOK, m.net.Snapshot())
	}
}

func restoreHandler(reg *registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var s net.Snapshot
		if !bind(c, &s) {
			return
		}
		m, ok := lock(c, reg)
		if !ok {
			return
		}
		defer m.mu.Unlock()
		if err := m.net.Restore(s); err != nil {
			abort(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// trainHandler trains synchronously and streams every epoch to the model's
// progress subscribers. Absent hyperparameters take their defaults.
func trainHandler(reg *registry, cfg Config, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := trainRequest{Config: train.DefaultConfig()}
		if !bind(c, &req) {
			return
		}
		if cfg.MaxEpochs > 0 && req.Epochs > cfg.MaxEpochs {
			abort(c, errors.Wrapf(errBadRequest, "epochs %d exceeds the limit of %d", req.Epochs, cfg.MaxEpochs))
			return
		}
		m, ok := lock(c, reg)
		if !ok {
			return
		}
		defer m.mu.Unlock()

		progress := train.EpochFunc(func(epoch int, loss float64) {
			m.hub.broadcast(progressEvent{Epoch: epoch, Loss: loss})
		})
		logger := train.Logger{Log: log.With("model", m.id), Interval: cfg.LogInterval}

		t, err := train.New(m.net, req.Config, progress, logger)
		if err != nil {
			abort(c, err)
			return
		}
		losses, err := t.Run(c.Request.Context(), req.Examples)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(http.StatusOK, trainResponse{Epochs: len(losses), Loss: losses})
	}
}

func predictHandler(reg *registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req predictRequest
		if !bind(c, &req) {
			return
		}
		m, ok := lock(c, reg)
		if !ok {
			return
		}
		defer m.mu.Unlock()
		out, err := m.net.Forward(req.Input)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"output": out})
	}
}

func deleteHandler(reg *registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, ok := lock(c, reg)
		if !ok {
			return
		}
		defer m.mu.Unlock()
		reg.remove(m.id)
		m.hub.close()
		c.Status(http.StatusNoContent)
	}
}

func healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

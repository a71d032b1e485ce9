// Package server hosts networks in memory behind an HTTP API for training
// and inference.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Config configures the HTTP service.
type Config struct {
	Addr string
	// MaxEpochs caps the epochs of one training request. 0 means no cap.
	MaxEpochs int
	// LogInterval is the epoch interval of training progress logs. 0 disables them.
	LogInterval int
	// ShutdownTimeout bounds the graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		MaxEpochs:       100000,
		LogInterval:     100,
		ShutdownTimeout: 10 * time.Second,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("server: address is required")
	case c.MaxEpochs < 0:
		return errors.Errorf("server: max epochs must be >= 0, got %d", c.MaxEpochs)
	case c.LogInterval < 0:
		return errors.Errorf("server: log interval must be >= 0, got %d", c.LogInterval)
	case c.ShutdownTimeout < 0:
		return errors.Errorf("server: shutdown timeout must be >= 0, got %s", c.ShutdownTimeout)
	}
	return nil
}

// Server is the HTTP service.
type Server struct {
	Router *gin.Engine

	cfg Config
	reg *registry
	log *slog.Logger
}

// New creates a server with every route registered.
func New(cfg Config, log *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	s := &Server{Router: router, cfg: cfg, reg: newRegistry(), log: log}

	router.GET("/healthz", healthHandler())
	models := router.Group("/models")
	models.POST("", createHandler(s.reg))
	models.GET("", listHandler(s.reg))
	models.GET("/:id", snapshotHandler(s.reg))
	models.PUT("/:id/weights", restoreHandler(s.reg))
	models.POST("/:id/train", trainHandler(s.reg, cfg, log))
	models.POST("/:id/predict", predictHandler(s.reg))
	models.DELETE("/:id", deleteHandler(s.reg))
	models.GET("/:id/progress", progressHandler(s.reg, log))

	return s, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "server")
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	// websocket connections are hijacked and not tracked by Shutdown
	s.reg.closeAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server shutdown")
	}
	return nil
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.Last().Error())
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request", attrs...)
			return
		}
		log.Info("request", attrs...)
	}
}

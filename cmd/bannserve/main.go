package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/FlavioCFOliveira/GoBANN/internal/server"
)

func main() {
	def := server.DefaultConfig()
	addr := flag.String("addr", def.Addr, "Listen address")
	maxEpochs := flag.Int("max-epochs", def.MaxEpochs, "Maximum epochs per training request (0 = no limit)")
	logInterval := flag.Int("log-interval", def.LogInterval, "Log training progress every N epochs (0 = off)")
	shutdown := flag.Duration("shutdown-timeout", def.ShutdownTimeout, "Graceful shutdown timeout")
	debug := flag.Bool("debug", false, "Verbose logging and gin debug mode")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	s, err := server.New(server.Config{
		Addr:            *addr,
		MaxEpochs:       *maxEpochs,
		LogInterval:     *logInterval,
		ShutdownTimeout: *shutdown,
	}, log)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Run(ctx); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

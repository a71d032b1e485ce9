package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/FlavioCFOliveira/GoBANN/gobann"
	"github.com/FlavioCFOliveira/GoBANN/internal/data"
	"github.com/FlavioCFOliveira/GoBANN/internal/train"
)

// Three overlapping input pairs, one class each. No single input decides
// the class, so a hidden layer is needed.
func main() {
	def := gobann.DefaultConfig()
	alpha := flag.Float64("alpha", def.Alpha, "Learning rate")
	momentum := flag.Float64("momentum", def.Momentum, "Momentum")
	epochs := flag.Int("epochs", def.Epochs, "Number of training epochs")
	batch := flag.Int("batch", def.BatchSize, "Examples per epoch (0 = whole dataset)")
	workers := flag.Int("workers", def.Workers, "Parallel gradient workers")
	seed := flag.Int64("seed", 1, "Seed for weights and shuffling")
	csvOut := flag.Bool("csv", false, "Write per-epoch loss as CSV to stdout")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	model := gobann.NewModel("xor")
	model.SetInitializer(gobann.SeededNormal(*seed))
	for _, err := range []error{
		model.AddInput(4, ""),
		model.AddLayer(8, "sigmoid", ""),
		model.AddLayer(3, "sigmoid", ""),
		model.Build(),
	} {
		if err != nil {
			log.Error("invalid network", "error", err)
			os.Exit(2)
		}
	}

	var csvLog *train.CSVLogger
	if *csvOut {
		csvLog = train.NewCSVLogger(os.Stdout)
		model.AddCallback(csvLog)
	}

	ds := data.Patterns(1)
	before, err := train.TotalError(model.Network, ds)
	if err != nil {
		log.Error("evaluation failed", "error", err)
		os.Exit(1)
	}

	_, err = model.Train(context.Background(), ds, gobann.Config{
		Alpha:     *alpha,
		Momentum:  *momentum,
		BatchSize: *batch,
		Epochs:    *epochs,
		Workers:   *workers,
		Seed:      *seed,
	})
	if err != nil {
		log.Error("training failed", "error", err)
		os.Exit(1)
	}
	if csvLog != nil && csvLog.Err() != nil {
		log.Warn("csv output incomplete", "error", csvLog.Err())
	}

	after, err := train.TotalError(model.Network, ds)
	if err != nil {
		log.Error("evaluation failed", "error", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Total squared error: %.6f -> %.6f\n", before, after)
	for _, ex := range ds {
		out, _ := model.Forward(ex.Input)
		fmt.Fprintf(os.Stderr, "  %v -> %.3f (want %v)\n", ex.Input, out, ex.Target)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"

	"github.com/FlavioCFOliveira/GoBANN/gobann"
	"github.com/FlavioCFOliveira/GoBANN/internal/data"
)

// Regression examples: predicting continuous values with an identity output
func main() {
	epochs := flag.Int("epochs", 3000, "Number of training epochs")
	alpha := flag.Float64("alpha", 0.002, "Learning rate")
	momentum := flag.Float64("momentum", 0.8, "Momentum")
	workers := flag.Int("workers", 4, "Parallel gradient workers")
	seed := flag.Int64("seed", 42, "Seed for data and weights")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	rng := rand.New(rand.NewSource(*seed))
	cfg := gobann.Config{Alpha: *alpha, Momentum: *momentum, Epochs: *epochs, Workers: *workers, Seed: *seed}

	fmt.Println("=== Regression Examples ===")

	fmt.Println("Example 1: Non-linear function y = x²")
	quadratic := sample(rng, 1, 64, func(x []float64) float64 { return x[0] * x[0] })
	if err := fit(log, "quadratic", quadratic, 1, "tanh", cfg, *seed); err != nil {
		os.Exit(1)
	}

	fmt.Println("\nExample 2: Multi-input function z = x + y")
	sum := sample(rng, 2, 64, func(x []float64) float64 { return x[0] + x[1] })
	if err := fit(log, "sum", sum, 2, "identity", cfg, *seed); err != nil {
		os.Exit(1)
	}

	fmt.Println("\nExample 3: Smooth bump y = exp(-x²) with gaussian units")
	bump := sample(rng, 1, 64, func(x []float64) float64 { return math.Exp(-x[0] * x[0]) })
	if err := fit(log, "bump", bump, 1, "gaussian", cfg, *seed); err != nil {
		os.Exit(1)
	}
}

// sample draws n inputs uniformly from [-1, 1]^dim.
func sample(rng *rand.Rand, dim, n int, f func([]float64) float64) data.Dataset {
	ds := make(data.Dataset, n)
	for i := range ds {
		x := make([]float64, dim)
		for j := range x {
			x[j] = rng.Float64()*2 - 1
		}
		ds[i] = data.Example{Input: x, Target: []float64{f(x)}}
	}
	return ds
}

func fit(log *slog.Logger, name string, ds data.Dataset, in int, hidden string, cfg gobann.Config, seed int64) error {
	model := gobann.NewModel(name)
	model.SetInitializer(gobann.SeededNormal(seed))
	for _, err := range []error{
		model.AddInput(in, "x"),
		model.AddLayer(8, hidden, "hidden"),
		model.AddLayer(1, "identity", "y"),
		model.Build(),
	} {
		if err != nil {
			log.Error("invalid network", "model", name, "error", err)
			return err
		}
	}

	losses, err := model.Train(context.Background(), ds, cfg)
	if err != nil {
		log.Error("training failed", "model", name, "error", err)
		return err
	}
	fmt.Printf("  loss %.6f -> %.6f over %d epochs\n", losses[0], losses[len(losses)-1], len(losses))

	for _, ex := range ds[:4] {
		out, err := model.Forward(ex.Input)
		if err != nil {
			return err
		}
		fmt.Printf("  f(%.3f) = %.4f, predicted %.4f\n", ex.Input, ex.Target[0], out[0])
	}
	return nil
}

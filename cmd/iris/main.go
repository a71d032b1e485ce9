package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/FlavioCFOliveira/GoBANN/gobann"
	"github.com/FlavioCFOliveira/GoBANN/internal/data"
)

// Iris dataset: 3 classes (Setosa, Versicolor, Virginica)
// Each sample has 4 features (sepal length, sepal width, petal length, petal width)
func main() {
	hidden := flag.Int("hidden", 9, "Hidden layer neurons")
	activation := flag.String("activation", "sigmoid", "Activation of the hidden and output layers")
	alpha := flag.Float64("alpha", 1e-3, "Learning rate")
	momentum := flag.Float64("momentum", 0.9, "Momentum")
	epochs := flag.Int("epochs", 1000, "Number of training epochs")
	batch := flag.Int("batch", 50, "Examples per epoch (0 = whole training set)")
	seed := flag.Int64("seed", 0, "Seed for data, weights and shuffling (0 = time based)")
	logEvery := flag.Int("log-every", 100, "Log progress every N epochs (0 = off)")
	dataPath := flag.String("data", "", "CSV with 4 measurements and 3 one-hot species columns (default: generated)")
	header := flag.Bool("header", false, "CSV has a header row")
	normalize := flag.Bool("normalize", false, "Min-max normalize measurements using the training set")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	// examples grouped by class, dealt alternately into train and test
	all := data.Iris(rng, 50)
	if *dataPath != "" {
		var err error
		if all, err = data.LoadCSV(*dataPath, []int{4, 5, 6}, *header); err != nil {
			log.Error("loading dataset failed", "path", *dataPath, "error", err)
			os.Exit(2)
		}
	}
	trainSet, testSet := all.Alternate()
	if *normalize {
		lo, hi, err := trainSet.Normalize()
		if err != nil {
			log.Error("normalizing dataset failed", "error", err)
			os.Exit(2)
		}
		for _, ex := range testSet {
			data.Scale(ex.Input, lo, hi)
		}
	}

	model := gobann.NewModel("IRIS example")
	model.SetInitializer(gobann.SeededNormal(rng.Int63()))
	model.SetSeed(rng.Int63())
	if *logEvery > 0 {
		model.AddCallback(gobann.Logger(*logEvery))
	}

	must(log, model.AddInput(4, "measurements"))
	must(log, model.AddLayer(*hidden, *activation, "hidden"))
	must(log, model.AddLayer(3, *activation, "species"))
	must(log, model.Build())

	fmt.Println(model)
	fmt.Printf("Training on %d examples, testing on %d\n", len(trainSet), len(testSet))

	slog.SetDefault(log)
	if _, err := model.SGD(trainSet, *alpha, *epochs, *momentum, *batch); err != nil {
		log.Error("training failed", "error", err)
		os.Exit(1)
	}

	ev, err := model.Evaluate(testSet)
	if err != nil {
		log.Error("evaluation failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("\nTest loss: %.4f (%.1f%%)\n", ev.Loss, (1-ev.Loss)*100)
	fmt.Printf("Test accuracy: %.1f%%\n", ev.Accuracy*100)

	fmt.Println("\nSample predictions:")
	for i := 0; i < len(testSet); i += 12 {
		ex := testSet[i]
		out, err := model.Forward(ex.Input)
		if err != nil {
			log.Error("forward failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("  %v -> %-16s (%s) %.3f\n",
			ex.Input, data.IrisClasses[data.ArgMax(out)], data.IrisClasses[data.ArgMax(ex.Target)], out)
	}
}

func must(log *slog.Logger, err error) {
	if err != nil {
		log.Error("invalid network", "error", err)
		os.Exit(2)
	}
}

package layer

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Initializer draws the initial value of one weight or bias.
// distuv distributions satisfy it.
type Initializer interface {
	Rand() float64
}

// DefaultInit draws from the standard normal distribution.
var DefaultInit Initializer = distuv.UnitNormal

// SeededNormal returns a standard-normal Initializer with a fixed seed, for
// reproducible networks.
func SeededNormal(seed int64) Initializer {
	return normal{rand.New(rand.NewSource(seed))}
}

type normal struct {
	rng *rand.Rand
}

func (n normal) Rand() float64 {
	return n.rng.NormFloat64()
}

// Constant is an Initializer that always returns the same value.
type Constant float64

func (c Constant) Rand() float64 {
	return float64(c)
}

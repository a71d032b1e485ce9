package data

import (
	"math"
	"math/rand"
)

// Patterns returns the three overlapping-pair patterns of a 4-input,
// 3-class problem, repeated reps times:
//
//	(1,1,0,0) -> class 0
//	(0,1,1,0) -> class 1
//	(0,0,1,1) -> class 2
func Patterns(reps int) Dataset {
	base := Dataset{
		{Input: []float64{1, 1, 0, 0}, Target: []float64{1, 0, 0}},
		{Input: []float64{0, 1, 1, 0}, Target: []float64{0, 1, 0}},
		{Input: []float64{0, 0, 1, 1}, Target: []float64{0, 0, 1}},
	}
	d := make(Dataset, 0, reps*len(base))
	for r := 0; r < reps; r++ {
		d = append(d, base.Clone()...)
	}
	return d
}

// IrisClasses names the classes produced by Iris, in target order.
var IrisClasses = []string{"Iris-setosa", "Iris-versicolor", "Iris-virginica"}

// Per-class feature mean and standard deviation of the Fisher Iris data:
// sepal length, sepal width, petal length, petal width (cm).
var irisStats = [3]struct{ mean, std [4]float64 }{
	{[4]float64{5.006, 3.428, 1.462, 0.246}, [4]float64{0.352, 0.379, 0.174, 0.105}},
	{[4]float64{5.936, 2.770, 4.260, 1.326}, [4]float64{0.516, 0.314, 0.470, 0.198}},
	{[4]float64{6.588, 2.974, 5.552, 2.026}, [4]float64{0.636, 0.322, 0.552, 0.275}},
}

// Iris draws perClass examples of each Iris species from independent
// normals matching the per-class statistics of the real data set. Examples
// are grouped by class, like the UCI file, and targets are one-hot.
// Measurements are rounded to 0.1 cm and floored at 0.1 cm.
func Iris(rng *rand.Rand, perClass int) Dataset {
	d := make(Dataset, 0, 3*perClass)
	for class, st := range irisStats {
		target, _ := OneHot(class, len(irisStats))
		for i := 0; i < perClass; i++ {
			in := make([]float64, 4)
			for f := range in {
				v := st.mean[f] + st.std[f]*rng.NormFloat64()
				in[f] = math.Max(0.1, math.Round(v*10)/10)
			}
			d = append(d, Example{Input: in, Target: append([]float64(nil), target...)})
		}
	}
	return d
}

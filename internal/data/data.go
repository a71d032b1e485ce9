// Package data provides the in-memory training examples and the helpers used
// to prepare them.
package data

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/FlavioCFOliveira/GoBANN/internal/nnerr"
)

// Example is one (input, target) pair.
type Example struct {
	Input  []float64 `json:"input"`
	Target []float64 `json:"target"`
}

// Dataset is an ordered collection of examples.
type Dataset []Example

// Validate checks that every input has length in and every target has length
// out. The first offending example is reported with its index.
func (d Dataset) Validate(in, out int) error {
	for i, ex := range d {
		if len(ex.Input) != in {
			return errors.Wrapf(nnerr.Shape("input", 0, in, len(ex.Input)), "example %d", i)
		}
		if len(ex.Target) != out {
			return errors.Wrapf(nnerr.Shape("target", -1, out, len(ex.Target)), "example %d", i)
		}
	}
	return nil
}

// Clone returns a deep copy of d.
func (d Dataset) Clone() Dataset {
	c := make(Dataset, len(d))
	for i, ex := range d {
		c[i] = Example{
			Input:  append([]float64(nil), ex.Input...),
			Target: append([]float64(nil), ex.Target...),
		}
	}
	return c
}

// OneHot returns a vector of length n with a 1 at class.
func OneHot(class, n int) ([]float64, error) {
	if class < 0 || class >= n {
		return nil, errors.Errorf("class %d out of range [0, %d)", class, n)
	}
	v := make([]float64, n)
	v[class] = 1
	return v, nil
}

// ArgMax returns the index of the largest element of v, or -1 if v is empty.
func ArgMax(v []float64) int {
	if len(v) == 0 {
		return -1
	}
	return floats.MaxIdx(v)
}

// Normalize performs min-max normalization of the inputs in place, feature by
// feature. Constant features become 0. It returns the per-feature minimum and
// maximum so the same scaling can be applied to unseen inputs. All inputs
// must have the same length; otherwise d is left unchanged.
func (d Dataset) Normalize() (lo, hi []float64, err error) {
	if len(d) == 0 {
		return nil, nil, nil
	}

	numFeatures := len(d[0].Input)
	for i, ex := range d[1:] {
		if len(ex.Input) != numFeatures {
			return nil, nil, errors.Wrapf(nnerr.Shape("normalize", -1, numFeatures, len(ex.Input)), "example %d", i+1)
		}
	}

	lo = append([]float64(nil), d[0].Input...)
	hi = append([]float64(nil), d[0].Input...)
	for _, ex := range d[1:] {
		for i, v := range ex.Input {
			if v < lo[i] {
				lo[i] = v
			}
			if v > hi[i] {
				hi[i] = v
			}
		}
	}

	for _, ex := range d {
		Scale(ex.Input, lo, hi)
	}
	return lo, hi, nil
}

// Scale maps x in place with the min-max bounds returned by Normalize.
// x must not be longer than lo and hi.
func Scale(x, lo, hi []float64) {
	for i := range x {
		span := hi[i] - lo[i]
		if span != 0 {
			x[i] = (x[i] - lo[i]) / span
		} else {
			x[i] = 0
		}
	}
}

// Split splits the dataset at ratio (0.0 to 1.0) without copying.
func (d Dataset) Split(ratio float64) (train, test Dataset) {
	if ratio <= 0 {
		return Dataset{}, d
	}
	if ratio >= 1 {
		return d, Dataset{}
	}
	idx := int(float64(len(d)) * ratio)
	return d[:idx], d[idx:]
}

// Alternate deals the examples alternately into two datasets, starting with
// the first: even indices go to a, odd indices to b.
func (d Dataset) Alternate() (a, b Dataset) {
	a = make(Dataset, 0, (len(d)+1)/2)
	b = make(Dataset, 0, len(d)/2)
	for i, ex := range d {
		if i%2 == 0 {
			a = append(a, ex)
		} else {
			b = append(b, ex)
		}
	}
	return a, b
}

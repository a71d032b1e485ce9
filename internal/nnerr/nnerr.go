// Package nnerr defines the error kinds shared by the network packages.
package nnerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// These are the error kinds returned by layer construction, the forward and
// backward passes and the trainer. Match them with errors.Is.
var (
	ErrInvalidTopology   = errors.New("invalid topology")
	ErrUnknownActivation = errors.New("unknown activation")
	ErrShapeMismatch     = errors.New("shape mismatch")
	ErrNotBuilt          = errors.New("network is not built")
)

// ShapeError describes a vector or matrix whose dimensions do not match the
// declared layer size.
type ShapeError struct {
	Op    string // "forward", "backward", "load", ...
	Layer int    // index of the layer involved, -1 if not relevant
	Want  string
	Got   string
}

// Shape returns a ShapeError for a vector of length got where want was expected.
func Shape(op string, layer, want, got int) *ShapeError {
	return &ShapeError{
		Op:    op,
		Layer: layer,
		Want:  fmt.Sprintf("%d", want),
		Got:   fmt.Sprintf("%d", got),
	}
}

// MatrixShape returns a ShapeError for an r×c matrix where wr×wc was expected.
func MatrixShape(op string, layer, wr, wc, r, c int) *ShapeError {
	return &ShapeError{
		Op:    op,
		Layer: layer,
		Want:  fmt.Sprintf("(%d, %d)", wr, wc),
		Got:   fmt.Sprintf("(%d, %d)", r, c),
	}
}

func (e *ShapeError) Error() string {
	if e.Layer < 0 {
		return fmt.Sprintf("%s: %s: want %s, got %s", e.Op, ErrShapeMismatch, e.Want, e.Got)
	}
	return fmt.Sprintf("%s: %s at layer %d: want %s, got %s", e.Op, ErrShapeMismatch, e.Layer, e.Want, e.Got)
}

// Is reports ShapeError as ErrShapeMismatch.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShapeMismatch
}

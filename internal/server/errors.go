package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/GoBANN/internal/nnerr"
	"github.com/FlavioCFOliveira/GoBANN/internal/train"
)

var (
	errModelNotFound = errors.New("model not found")
	errModelBusy     = errors.New("model is busy")
	errBadRequest    = errors.New("bad request")
)

// status maps an error to its HTTP status code.
func status(err error) int {
	switch {
	case errors.Is(err, errModelNotFound):
		return http.StatusNotFound
	case errors.Is(err, errModelBusy):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, nnerr.ErrShapeMismatch),
		errors.Is(err, nnerr.ErrInvalidTopology),
		errors.Is(err, nnerr.ErrUnknownActivation),
		errors.Is(err, train.ErrInvalidConfig),
		errors.Is(err, train.ErrEmptyDataset):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status(err), gin.H{"error": err.Error()})
}

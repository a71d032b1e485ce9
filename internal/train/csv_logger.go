package train

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/GoBANN/internal/net"
)

// CSVLogger writes one "epoch,loss,time_seconds" record per epoch to W.
// Write errors stop the logger; the first one is returned by Err.
type CSVLogger struct {
	BaseCallback
	W io.Writer

	writer *csv.Writer
	start  time.Time
	err    error
}

// NewCSVLogger creates a new CSVLogger.
func NewCSVLogger(w io.Writer) *CSVLogger {
	return &CSVLogger{W: w}
}

func (c *CSVLogger) OnTrainBegin(n *net.Network) {
	c.writer = csv.NewWriter(c.W)
	c.start = time.Now()
	c.err = nil
	c.write([]string{"epoch", "loss", "time_seconds"})
}

func (c *CSVLogger) OnEpochEnd(epoch int, loss float64, n *net.Network) {
	if c.writer == nil || c.err != nil {
		return
	}
	elapsed := time.Since(c.start).Seconds()
	c.write([]string{
		strconv.Itoa(epoch),
		fmt.Sprintf("%.6f", loss),
		fmt.Sprintf("%.2f", elapsed),
	})
}

func (c *CSVLogger) OnTrainEnd(n *net.Network) {
	c.writer = nil
}

// Err returns the first write error, if any.
func (c *CSVLogger) Err() error {
	return c.err
}

func (c *CSVLogger) write(record []string) {
	if err := c.writer.Write(record); err != nil {
		c.err = errors.Wrap(err, "csv logger")
		return
	}
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		c.err = errors.Wrap(err, "csv logger")
	}
}

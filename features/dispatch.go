package features

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrEmptyMatrix is returned when an extractor yields no frames or no
// dimensions.
var ErrEmptyMatrix = errors.New("empty feature matrix")

// Decimals is the persisted precision of every feature value.
const Decimals = 8

var roundScale = math.Pow10(Decimals)

// Extractor computes the raw feature matrix of one coefficient type.
type Extractor interface {
	Extract(ctx context.Context, t Type, cfg Config, samples []float64, sampleRate int) ([][]float64, error)
}

// Matrix is a frames-by-dimensions feature table.
type Matrix [][]float64

// Rows returns the number of analysis frames.
func (m Matrix) Rows() int { return len(m) }

// Cols returns the number of coefficient dimensions.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Column copies dimension j across all frames.
func (m Matrix) Column(j int) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		out[i] = row[j]
	}
	return out
}

// Round rounds v to Decimals fractional digits, ties to even.
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.RoundToEven(v*roundScale) / roundScale
}

// Dispatcher runs the extractor with the fixed per-type configuration and
// rounds its output.
type Dispatcher struct {
	ext Extractor
}

func NewDispatcher(ext Extractor) *Dispatcher {
	return &Dispatcher{ext: ext}
}

// Compute returns the rounded feature matrix of type t for the signal. The
// matrix is rectangular with at least one frame and one dimension.
func (d *Dispatcher) Compute(ctx context.Context, t Type, samples []float64, sampleRate int) (Matrix, error) {
	raw, err := d.ext.Extract(ctx, t, ConfigFor(t), samples, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t, err)
	}
	if len(raw) == 0 || len(raw[0]) == 0 {
		return nil, fmt.Errorf("%s: %w", t, ErrEmptyMatrix)
	}

	out := make(Matrix, len(raw))
	width := -1
	for i, row := range raw {
		if width < 0 {
			width = len(row)
		} else if len(row) != width {
			return nil, fmt.Errorf("%s: ragged matrix, row %d has %d columns, want %d", t, i, len(row), width)
		}
		r := make([]float64, len(row))
		for j, v := range row {
			r[j] = Round(v)
		}
		out[i] = r
	}
	return out, nil
}

// Package shapelet provides the sampled basis-function table used to
// evaluate shapelet components in the visibility domain.
//
// The table holds Orders rows of Samples values each. Row n samples the
// one-dimensional basis function of order n at abscissae (i - Centre) * Step.
// Lookups take a fractional sample position and either interpolate linearly
// between neighbouring samples or take the nearest one. Positions that do
// not have both neighbours inside the row, and orders beyond the table,
// evaluate to exactly zero.
package shapelet

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Interpolation selects how fractional sample positions are resolved.
type Interpolation int

const (
	Linear Interpolation = iota
	Nearest
)

func (i Interpolation) String() string {
	switch i {
	case Linear:
		return "linear"
	case Nearest:
		return "nearest"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
}

// ParseInterpolation accepts "linear" (or empty) and "nearest".
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return Linear, nil
	case "nearest":
		return Nearest, nil
	default:
		return Linear, fmt.Errorf("unknown interpolation %q (expected linear or nearest)", s)
	}
}

var ErrInvalidTable = errors.New("invalid shapelet basis table")

// Table is read-only once built and may be shared by any number of
// goroutines.
type Table struct {
	Values  []float64
	Samples int
	Orders  int
	Centre  float64
	Step    float64
	Interp  Interpolation
}

// NewTable wraps precomputed values. len(values) must equal orders*samples.
func NewTable(values []float64, samples, orders int, centre, step float64) (*Table, error) {
	t := &Table{
		Values:  values,
		Samples: samples,
		Orders:  orders,
		Centre:  centre,
		Step:    step,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) Validate() error {
	switch {
	case t.Samples < 2:
		return fmt.Errorf("%w: need at least 2 samples per order, got %d", ErrInvalidTable, t.Samples)
	case t.Orders < 1:
		return fmt.Errorf("%w: need at least 1 order, got %d", ErrInvalidTable, t.Orders)
	case len(t.Values) != t.Samples*t.Orders:
		return fmt.Errorf("%w: %d values for %d orders x %d samples", ErrInvalidTable, len(t.Values), t.Orders, t.Samples)
	case !(t.Step > 0):
		return fmt.Errorf("%w: step must be positive, got %g", ErrInvalidTable, t.Step)
	case t.Centre < 0 || t.Centre > float64(t.Samples-1):
		return fmt.Errorf("%w: centre %g outside [0, %d]", ErrInvalidTable, t.Centre, t.Samples-1)
	}
	return nil
}

// WithInterpolation returns a shallow copy sharing Values.
func (t *Table) WithInterpolation(interp Interpolation) *Table {
	c := *t
	c.Interp = interp
	return &c
}

// Lookup evaluates basis order n at fractional sample position pos.
func (t *Table) Lookup(n int, pos float64) float64 {
	if n < 0 || n >= t.Orders {
		return 0
	}
	// NaN fails both comparisons and must not reach the integer conversion.
	if !(pos >= 0) || !(pos < float64(t.Samples-1)) {
		return 0
	}
	i := int(pos)
	row := t.Values[n*t.Samples : (n+1)*t.Samples]
	low, high := row[i], row[i+1]
	frac := pos - float64(i)
	if t.Interp == Nearest {
		if frac < 0.5 {
			return low
		}
		return high
	}
	return low + (high-low)*frac
}

// Position maps a scaled coordinate to a fractional sample position.
func (t *Table) Position(x float64) float64 {
	return x/t.Step + t.Centre
}

// Abscissa is the basis-function argument at sample i.
func (t *Table) Abscissa(i int) float64 {
	return (float64(i) - t.Centre) * t.Step
}

// Row returns the samples of order n.
func (t *Table) Row(n int) []float64 {
	return t.Values[n*t.Samples : (n+1)*t.Samples]
}

func (t *Table) String() string {
	lo := t.Abscissa(0)
	hi := t.Abscissa(t.Samples - 1)
	if math.Abs(lo) == math.Abs(hi) {
		return fmt.Sprintf("%d orders x %d samples over ±%g (%s)", t.Orders, t.Samples, hi, t.Interp)
	}
	return fmt.Sprintf("%d orders x %d samples over [%g, %g] (%s)", t.Orders, t.Samples, lo, hi, t.Interp)
}

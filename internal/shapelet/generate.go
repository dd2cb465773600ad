package shapelet

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// Spec describes the sampling of a generated table.
type Spec struct {
	Orders  int
	Samples int
	Centre  float64
	Step    float64
}

// DefaultSpec covers orders 0..100 over x in [-50, 50] at 0.01 spacing.
var DefaultSpec = Spec{
	Orders:  101,
	Samples: 10001,
	Centre:  5000,
	Step:    0.01,
}

var (
	defaultTable     *Table
	defaultTableErr  error
	defaultTableOnce sync.Once
)

// Default returns the lazily generated table for DefaultSpec. The result is
// shared; use WithInterpolation to change the lookup rule.
func Default() *Table {
	defaultTableOnce.Do(func() {
		defaultTable, defaultTableErr = Generate(DefaultSpec)
	})
	if defaultTableErr != nil {
		panic(defaultTableErr)
	}
	return defaultTable
}

// Generate samples B_n(x) = H_n(x) exp(-x^2/2) / sqrt(2^n n!), where H_n is
// the physicists' Hermite polynomial. The normalised recurrence
//
//	B_n = sqrt(2/n) x B_{n-1} - sqrt((n-1)/n) B_{n-2}
//
// keeps every term bounded, so high orders do not overflow at large |x|.
func Generate(spec Spec) (*Table, error) {
	t := &Table{
		Values:  make([]float64, spec.Orders*spec.Samples),
		Samples: spec.Samples,
		Orders:  spec.Orders,
		Centre:  spec.Centre,
		Step:    spec.Step,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	xs := make([]float64, spec.Samples)
	floats.Span(xs, t.Abscissa(0), t.Abscissa(spec.Samples-1))

	prev := t.Row(0)
	for i, x := range xs {
		prev[i] = math.Exp(-0.5 * x * x)
	}
	if spec.Orders == 1 {
		return t, nil
	}
	cur := t.Row(1)
	for i, x := range xs {
		cur[i] = math.Sqrt2 * x * prev[i]
	}
	for n := 2; n < spec.Orders; n++ {
		next := t.Row(n)
		a := math.Sqrt(2 / float64(n))
		b := math.Sqrt(float64(n-1) / float64(n))
		for i, x := range xs {
			next[i] = a*x*cur[i] - b*prev[i]
		}
		prev, cur = cur, next
	}
	return t, nil
}

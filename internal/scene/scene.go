// Package scene describes one timestep of a sky-model simulation: the
// channels, the baselines and the sky components. Scenes are read from JSON
// or YAML, validated, and turned into the flat inputs of the visibility
// kernels.
package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/samcharles93/skyvis/internal/fluxdensity"
	"github.com/samcharles93/skyvis/internal/vis"
)

var ErrInvalidScene = errors.New("invalid scene")

type ComponentType string

const (
	Point    ComponentType = "point"
	Gaussian ComponentType = "gaussian"
	Shapelet ComponentType = "shapelet"
)

// RADec is an equatorial position [rad].
type RADec struct {
	RA  float64 `json:"ra" yaml:"ra"`
	Dec float64 `json:"dec" yaml:"dec"`
}

// LMN returns the direction cosines of r relative to the phase centre pc.
func (r RADec) LMN(pc RADec) vis.LMN {
	sinDRA, cosDRA := math.Sincos(r.RA - pc.RA)
	sinDec, cosDec := math.Sincos(r.Dec)
	sinPC, cosPC := math.Sincos(pc.Dec)
	return vis.LMN{
		L: cosDec * sinDRA,
		M: sinDec*cosPC - cosDec*sinPC*cosDRA,
		N: sinDec*sinPC + cosDec*cosPC*cosDRA,
	}
}

// Scene is a single timestep.
type Scene struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Freqs are channel frequencies [Hz].
	Freqs []float64 `json:"freqs" yaml:"freqs"`
	// UVWs are baseline vectors [m].
	UVWs []vis.UVW `json:"uvws" yaml:"uvws"`
	// PhaseCentre is required when any component gives its position as
	// RA/Dec.
	PhaseCentre *RADec      `json:"phase_centre,omitempty" yaml:"phase_centre,omitempty"`
	Components  []Component `json:"components" yaml:"components"`
}

// Component is one sky component. Its position is given either directly as
// LMN or as RADec. Gaussian and shapelet components need Shape; shapelets
// also carry coefficients and, optionally, per-baseline UVs [m]. Missing
// shapelet UVs default to each baseline's (u, v).
type Component struct {
	Name   string              `json:"name,omitempty" yaml:"name,omitempty"`
	Type   ComponentType       `json:"type" yaml:"type"`
	LMN    *vis.LMN            `json:"lmn,omitempty" yaml:"lmn,omitempty"`
	RADec  *RADec              `json:"radec,omitempty" yaml:"radec,omitempty"`
	Flux   fluxdensity.Type    `json:"flux" yaml:"flux"`
	Shape  *vis.GaussianParams `json:"shape,omitempty" yaml:"shape,omitempty"`
	UVs    []vis.ShapeletUV    `json:"uvs,omitempty" yaml:"uvs,omitempty"`
	Coeffs []vis.ShapeletCoeff `json:"coeffs,omitempty" yaml:"coeffs,omitempty"`
}

func (c *Component) label(i int) string {
	if c.Name != "" {
		return fmt.Sprintf("component %d (%s)", i, c.Name)
	}
	return fmt.Sprintf("component %d", i)
}

// Counts returns the number of components of each type.
func (s *Scene) Counts() (points, gaussians, shapelets int) {
	for i := range s.Components {
		switch s.Components[i].Type {
		case Point:
			points++
		case Gaussian:
			gaussians++
		case Shapelet:
			shapelets++
		}
	}
	return points, gaussians, shapelets
}

// NumCells is the size of the visibility buffer for s.
func (s *Scene) NumCells() int {
	return len(s.UVWs) * len(s.Freqs)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidScene, fmt.Sprintf(format, args...))
}

// Validate checks everything the kernels take on trust. Every error wraps
// ErrInvalidScene.
func (s *Scene) Validate() error {
	for i, f := range s.Freqs {
		if !(f > 0) || math.IsInf(f, 0) {
			return invalid("frequency %d must be positive and finite, got %g", i, f)
		}
	}
	for i, b := range s.UVWs {
		if !finite(b.U, b.V, b.W) {
			return invalid("baseline %d has a non-finite coordinate", i)
		}
	}
	if s.PhaseCentre != nil && !finite(s.PhaseCentre.RA, s.PhaseCentre.Dec) {
		return invalid("phase centre is not finite")
	}
	for i := range s.Components {
		if err := s.validateComponent(i); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) validateComponent(i int) error {
	c := &s.Components[i]
	name := c.label(i)

	switch c.Type {
	case Point, Gaussian, Shapelet:
	default:
		return invalid("%s: unknown type %q", name, c.Type)
	}

	switch {
	case c.LMN != nil && c.RADec != nil:
		return invalid("%s: give either lmn or radec, not both", name)
	case c.LMN != nil:
		if !finite(c.LMN.L, c.LMN.M, c.LMN.N) || c.LMN.L*c.LMN.L+c.LMN.M*c.LMN.M > 1 {
			return invalid("%s: lmn is not a direction", name)
		}
	case c.RADec != nil:
		if s.PhaseCentre == nil {
			return invalid("%s: radec needs a phase_centre", name)
		}
		if !finite(c.RADec.RA, c.RADec.Dec) {
			return invalid("%s: radec is not finite", name)
		}
	default:
		return invalid("%s: missing position", name)
	}

	if err := c.Flux.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidScene, name, err)
	}

	if c.Type == Point {
		if c.Shape != nil || len(c.Coeffs) > 0 || len(c.UVs) > 0 {
			return invalid("%s: points take no shape, coefficients or uvs", name)
		}
		return nil
	}
	if c.Shape == nil {
		return invalid("%s: %s components need a shape", name, c.Type)
	}
	if !finite(c.Shape.Maj, c.Shape.Min, c.Shape.PA) || c.Shape.Maj < 0 || c.Shape.Min < 0 {
		return invalid("%s: shape axes must be finite and non-negative", name)
	}

	if c.Type == Gaussian {
		if len(c.Coeffs) > 0 || len(c.UVs) > 0 {
			return invalid("%s: gaussians take no coefficients or uvs", name)
		}
		return nil
	}
	if len(c.UVs) != 0 && len(c.UVs) != len(s.UVWs) {
		return invalid("%s: %d uvs for %d baselines", name, len(c.UVs), len(s.UVWs))
	}
	for j, uv := range c.UVs {
		if !finite(uv.U, uv.V) {
			return invalid("%s: uv %d is not finite", name, j)
		}
	}
	for j, coeff := range c.Coeffs {
		if coeff.N1 < 0 || coeff.N2 < 0 {
			return invalid("%s: coefficient %d has a negative order", name, j)
		}
		if !finite(coeff.Value) {
			return invalid("%s: coefficient %d is not finite", name, j)
		}
	}
	return nil
}

// CheckOrders rejects shapelet coefficients whose orders the basis table
// cannot evaluate: both orders must be below orders. The error wraps
// ErrInvalidScene.
func (s *Scene) CheckOrders(orders int) error {
	for i := range s.Components {
		c := &s.Components[i]
		if c.Type != Shapelet {
			continue
		}
		for j, coeff := range c.Coeffs {
			if coeff.N1 >= orders || coeff.N2 >= orders {
				return invalid("%s: coefficient %d has order (%d, %d), basis has %d orders",
					c.label(i), j, coeff.N1, coeff.N2, orders)
			}
		}
	}
	return nil
}

// Position returns the direction cosines of component i.
func (s *Scene) Position(i int) vis.LMN {
	c := &s.Components[i]
	if c.LMN != nil {
		return *c.LMN
	}
	return c.RADec.LMN(*s.PhaseCentre)
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

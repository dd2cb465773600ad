package scene

import (
	"fmt"

	"github.com/samcharles93/skyvis/internal/fluxdensity"
	"github.com/samcharles93/skyvis/internal/model"
	"github.com/samcharles93/skyvis/internal/vis"
)

// BuildOptions adjusts how Build prepares a scene.
type BuildOptions struct {
	// MaxOrder is the number of orders in the basis table the shapelets
	// will be evaluated against. Zero skips the check.
	MaxOrder int
	// FitLists replaces list flux densities with power laws where one fits.
	FitLists bool
}

// Build validates s and lays its components out as kernel inputs. Component
// order within each type follows the scene.
func Build(s *Scene, opts BuildOptions) (*model.Inputs, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxOrder > 0 {
		if err := s.CheckOrders(opts.MaxOrder); err != nil {
			return nil, err
		}
	}
	flux := func(c *Component) fluxdensity.Type {
		if opts.FitLists {
			return fluxdensity.ListToPowerLaw(c.Flux)
		}
		return c.Flux
	}

	var (
		in                                 model.Inputs
		pointFlux, gaussFlux, shapeletFlux []fluxdensity.Type
		shapeletComps                      []int
	)
	for i := range s.Components {
		c := &s.Components[i]
		lmn := s.Position(i)
		switch c.Type {
		case Point:
			in.Points.LMNs = append(in.Points.LMNs, lmn)
			pointFlux = append(pointFlux, flux(c))
		case Gaussian:
			in.Gaussians.LMNs = append(in.Gaussians.LMNs, lmn)
			in.Gaussians.Params = append(in.Gaussians.Params, *c.Shape)
			gaussFlux = append(gaussFlux, flux(c))
		case Shapelet:
			in.Shapelets.LMNs = append(in.Shapelets.LMNs, lmn)
			in.Shapelets.Params = append(in.Shapelets.Params, *c.Shape)
			in.Shapelets.Coeffs = append(in.Shapelets.Coeffs, c.Coeffs...)
			in.Shapelets.NumCoeffs = append(in.Shapelets.NumCoeffs, len(c.Coeffs))
			shapeletFlux = append(shapeletFlux, flux(c))
			shapeletComps = append(shapeletComps, i)
		}
	}

	var err error
	if in.Points.FDs, err = fluxdensity.Jones(pointFlux, s.Freqs); err != nil {
		return nil, fmt.Errorf("%w: points: %w", ErrInvalidScene, err)
	}
	if in.Gaussians.FDs, err = fluxdensity.Jones(gaussFlux, s.Freqs); err != nil {
		return nil, fmt.Errorf("%w: gaussians: %w", ErrInvalidScene, err)
	}
	if in.Shapelets.FDs, err = fluxdensity.Jones(shapeletFlux, s.Freqs); err != nil {
		return nil, fmt.Errorf("%w: shapelets: %w", ErrInvalidScene, err)
	}
	in.Shapelets.UVs = shapeletUVs(s, shapeletComps)
	return &in, nil
}

// shapeletUVs lays out the shapelet UVs baseline-major.
func shapeletUVs(s *Scene, comps []int) []vis.ShapeletUV {
	if len(comps) == 0 {
		return nil
	}
	n := len(comps)
	out := make([]vis.ShapeletUV, len(s.UVWs)*n)
	for k, i := range comps {
		uvs := s.Components[i].UVs
		for bl, uvw := range s.UVWs {
			if len(uvs) == 0 {
				out[bl*n+k] = vis.ShapeletUV{U: uvw.U, V: uvw.V}
			} else {
				out[bl*n+k] = uvs[bl]
			}
		}
	}
	return out
}

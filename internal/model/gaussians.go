package model

import (
	"math"

	"github.com/samcharles93/skyvis/internal/vis"
)

// gaussianExpConst converts FWHM axes [rad] and baseline lengths
// [wavelengths] into the exponent of the Fourier transform of a Gaussian:
// -(π/2)² / ln 2.
var gaussianExpConst = -(math.Pi / 2) * (math.Pi / 2) / math.Ln2

// Gaussians adds the visibilities of Gaussian components into ctx.Vis.
func Gaussians(ctx *Context, gaussians *GaussianSet) error {
	if gaussians.Len() == 0 {
		return nil
	}
	return accumulate(ctx, func(bl, fi int) vis.JonesF64 {
		uvw := ctx.UVWs[bl].Scale(ctx.Freqs[fi])
		return addGaussians(vis.JonesF64{}, gaussians, uvw, fi)
	})
}

func addGaussians(acc vis.JonesF64, gaussians *GaussianSet, uvw vis.UVW, fi int) vis.JonesF64 {
	n := len(gaussians.LMNs)
	fds := gaussians.FDs[fi*n : (fi+1)*n]
	for c, lmn := range gaussians.LMNs {
		env := gaussianEnvelope(uvw, gaussians.Params[c])
		acc = acc.MulAdd(fds[c], phase(uvw, lmn)*complex(env, 0))
	}
	return acc
}

// gaussianEnvelope is in (0, 1]. Zero-width axes give exactly 1, so a
// degenerate Gaussian reproduces a point component.
func gaussianEnvelope(uvw vis.UVW, g vis.GaussianParams) float64 {
	s, c := math.Sincos(g.PA)
	kx := uvw.U*s + uvw.V*c
	ky := uvw.U*c - uvw.V*s
	return math.Exp(gaussianExpConst * (g.Maj*g.Maj*kx*kx + g.Min*g.Min*ky*ky))
}

package model

import (
	"math"

	"github.com/samcharles93/skyvis/internal/shapelet"
	"github.com/samcharles93/skyvis/internal/vis"
)

// shapeletScale is sqrt(π² / (2 ln 2)); it maps FWHM-scaled (u, v) onto the
// basis-function argument.
var shapeletScale = math.Sqrt(math.Pi * math.Pi / (2 * math.Ln2))

// iPower[k] = i^k.
var iPower = [4]complex128{1, 1i, -1, -1i}

// Shapelets adds the visibilities of shapelet components into ctx.Vis.
func Shapelets(ctx *Context, shapelets *ShapeletSet) error {
	if shapelets.Len() == 0 {
		return nil
	}
	offsets := coeffOffsets(shapelets.NumCoeffs)
	table := ctx.basis()
	return accumulate(ctx, func(bl, fi int) vis.JonesF64 {
		freq := ctx.Freqs[fi]
		uvw := ctx.UVWs[bl].Scale(freq)
		return addShapelets(vis.JonesF64{}, shapelets, offsets, table, uvw, bl, fi, freq/vis.SpeedOfLight)
	})
}

// coeffOffsets returns the start of each component's coefficients in the
// flattened array, with a final entry holding the total.
func coeffOffsets(numCoeffs []int) []int {
	offsets := make([]int, len(numCoeffs)+1)
	for i, n := range numCoeffs {
		offsets[i+1] = offsets[i] + n
	}
	return offsets
}

// addShapelets accumulates every shapelet component for one cell. uvw is in
// wavelengths; invLambda converts the per-component shapelet UVs.
func addShapelets(acc vis.JonesF64, shapelets *ShapeletSet, offsets []int, table *shapelet.Table,
	uvw vis.UVW, bl, fi int, invLambda float64,
) vis.JonesF64 {
	n := len(shapelets.LMNs)
	fds := shapelets.FDs[fi*n : (fi+1)*n]
	uvs := shapelets.UVs[bl*n : (bl+1)*n]
	for c, lmn := range shapelets.LMNs {
		uv := vis.ShapeletUV{U: uvs[c].U * invLambda, V: uvs[c].V * invLambda}
		coeffs := shapelets.Coeffs[offsets[c]:offsets[c+1]]
		env := shapeletEnvelope(uv, shapelets.Params[c], coeffs, table)
		acc = acc.MulAdd(fds[c], phase(uvw, lmn)*env)
	}
	return acc
}

// shapeletEnvelope folds a component's coefficients into one complex weight.
// uv is in wavelengths. Each coefficient contributes
// i^(n1+n2) · value · B_n1(x) · B_n2(y), where x and y are the rotated,
// width-scaled coordinates. Table lookups outside the sampled range are zero.
func shapeletEnvelope(uv vis.ShapeletUV, g vis.GaussianParams, coeffs []vis.ShapeletCoeff, table *shapelet.Table) complex128 {
	s, c := math.Sincos(g.PA)
	x := uv.U*s + uv.V*c
	y := uv.U*c - uv.V*s
	xPos := table.Position(x * g.Maj * shapeletScale)
	yPos := table.Position(-y * g.Min * shapeletScale)

	var env complex128
	for _, coeff := range coeffs {
		bx := table.Lookup(coeff.N1, xPos)
		by := table.Lookup(coeff.N2, yPos)
		// Lookup is zero for negative orders, so the index below is safe.
		if bx == 0 || by == 0 {
			continue
		}
		env += iPower[(coeff.N1+coeff.N2)%4] * complex(coeff.Value*bx*by, 0)
	}
	return env
}

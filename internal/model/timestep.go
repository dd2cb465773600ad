package model

import "github.com/samcharles93/skyvis/internal/vis"

// Timestep adds the visibilities of every component in in to ctx.Vis in a
// single pass. Component types without components are skipped. ctx.Vis must
// hold len(ctx.UVWs)*len(ctx.Freqs) cells and is only ever added to.
//
// The returned error is nil on success; use Status to obtain the integer
// status of a failure.
func Timestep(ctx *Context, in *Inputs) error {
	hasPoints := in.Points.Len() > 0
	hasGaussians := in.Gaussians.Len() > 0
	hasShapelets := in.Shapelets.Len() > 0
	if !hasPoints && !hasGaussians && !hasShapelets {
		return nil
	}

	var offsets []int
	table := ctx.Basis
	if hasShapelets {
		offsets = coeffOffsets(in.Shapelets.NumCoeffs)
		table = ctx.basis()
	}

	return accumulate(ctx, func(bl, fi int) vis.JonesF64 {
		freq := ctx.Freqs[fi]
		uvw := ctx.UVWs[bl].Scale(freq)
		var acc vis.JonesF64
		if hasPoints {
			acc = addPoints(acc, &in.Points, uvw, fi)
		}
		if hasGaussians {
			acc = addGaussians(acc, &in.Gaussians, uvw, fi)
		}
		if hasShapelets {
			acc = addShapelets(acc, &in.Shapelets, offsets, table, uvw, bl, fi, freq/vis.SpeedOfLight)
		}
		return acc
	})
}

package model

import "github.com/samcharles93/skyvis/internal/vis"

// Points adds the visibilities of point components into ctx.Vis.
func Points(ctx *Context, points *PointSet) error {
	if points.Len() == 0 {
		return nil
	}
	return accumulate(ctx, func(bl, fi int) vis.JonesF64 {
		uvw := ctx.UVWs[bl].Scale(ctx.Freqs[fi])
		return addPoints(vis.JonesF64{}, points, uvw, fi)
	})
}

// addPoints accumulates every point component for one cell. uvw is in
// wavelengths.
func addPoints(acc vis.JonesF64, points *PointSet, uvw vis.UVW, fi int) vis.JonesF64 {
	n := len(points.LMNs)
	fds := points.FDs[fi*n : (fi+1)*n]
	for c, lmn := range points.LMNs {
		acc = acc.MulAdd(fds[c], phase(uvw, lmn))
	}
	return acc
}

// Package model generates sky-model visibilities for a single timestep.
//
// Every (baseline, frequency) cell of the output buffer is independent. A
// cell sums the contributions of point, Gaussian and shapelet components in
// double precision and adds the result, demoted to single precision, into
// the caller's pre-zeroed buffer. The cells are distributed over a
// backend.Executor; each cell is written by exactly one range, so the output
// needs no synchronisation.
//
// Array lengths are a caller contract and are not checked here. Mismatched
// inputs make a range panic, which the executor reports as a substrate
// failure; the buffer contents are then unspecified.
package model

import (
	"github.com/samcharles93/skyvis/internal/backend"
	"github.com/samcharles93/skyvis/internal/shapelet"
	"github.com/samcharles93/skyvis/internal/vis"
)

// Context is the state shared by every entry point for one call: the
// baselines and channels being modelled, the output buffer and the execution
// substrate. It is read-only apart from Vis.
type Context struct {
	// UVWs has one baseline vector per baseline [metres].
	UVWs []vis.UVW
	// Freqs are the channel frequencies [Hz].
	Freqs []float64
	// Vis is baseline-major: cell (bl, f) lives at bl*len(Freqs) + f.
	Vis []vis.JonesF32
	// Basis is used by shapelet components. Nil selects shapelet.Default().
	Basis *shapelet.Table
	// Exec runs the cells. Nil selects backend.Default().
	Exec backend.Executor
}

// NumBaselines is the number of baselines in the output buffer.
func (c *Context) NumBaselines() int { return len(c.UVWs) }

// NumFreqs is the number of channels per baseline.
func (c *Context) NumFreqs() int { return len(c.Freqs) }

func (c *Context) executor() backend.Executor {
	if c.Exec == nil {
		return backend.Default()
	}
	return c.Exec
}

func (c *Context) basis() *shapelet.Table {
	if c.Basis == nil {
		return shapelet.Default()
	}
	return c.Basis
}

// PointSet holds point components. FDs is frequency-major: the flux density
// of component c at channel f is FDs[f*len(LMNs) + c].
type PointSet struct {
	LMNs []vis.LMN
	FDs  []vis.JonesF64
}

func (p *PointSet) Len() int { return len(p.LMNs) }

// GaussianSet holds Gaussian components, laid out as PointSet with one
// GaussianParams per component.
type GaussianSet struct {
	LMNs   []vis.LMN
	FDs    []vis.JonesF64
	Params []vis.GaussianParams
}

func (g *GaussianSet) Len() int { return len(g.LMNs) }

// ShapeletSet holds shapelet components.
//
// UVs is baseline-major: the shapelet UV of component s on baseline bl is
// UVs[bl*len(LMNs) + s]. Coeffs is the concatenation of every component's
// coefficients, NumCoeffs[s] of them for component s.
type ShapeletSet struct {
	LMNs      []vis.LMN
	FDs       []vis.JonesF64
	Params    []vis.GaussianParams
	UVs       []vis.ShapeletUV
	Coeffs    []vis.ShapeletCoeff
	NumCoeffs []int
}

func (s *ShapeletSet) Len() int { return len(s.LMNs) }

// Inputs bundles all three component types for Timestep.
type Inputs struct {
	Points    PointSet
	Gaussians GaussianSet
	Shapelets ShapeletSet
}

// Status converts the result of an entry point into the integer status
// reported to callers: 0 on success, otherwise the substrate's code.
func Status(err error) int {
	return backend.StatusCode(err)
}

// accumulate evaluates cell for every (baseline, frequency) pair and adds the
// demoted result into the output buffer.
func accumulate(ctx *Context, cell func(bl, fi int) vis.JonesF64) error {
	nf := ctx.NumFreqs()
	n := ctx.NumBaselines() * nf
	out := ctx.Vis
	return ctx.executor().For(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			j := cell(i/nf, i%nf)
			out[i] = out[i].Add(j.F32())
		}
	})
}

// Package simulate runs scenes through the visibility kernels.
package simulate

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samcharles93/skyvis/internal/backend"
	"github.com/samcharles93/skyvis/internal/logger"
	"github.com/samcharles93/skyvis/internal/model"
	"github.com/samcharles93/skyvis/internal/scene"
	"github.com/samcharles93/skyvis/internal/shapelet"
	"github.com/samcharles93/skyvis/internal/vis"
)

// Simulator owns the shared, read-only state of a run. The zero value uses
// the default executor, the default basis table and a discarding logger.
type Simulator struct {
	Exec  backend.Executor
	Basis *shapelet.Table
	Log   logger.Logger
	// FitLists converts list flux densities to power laws before a run.
	FitLists bool
}

// Result is the output of one timestep. Vis is baseline-major with
// len(UVWs)*len(Freqs) cells.
type Result struct {
	Scene      string
	Freqs      []float64
	UVWs       []vis.UVW
	Vis        []vis.JonesF32
	Components Counts
	Backend    string
	Elapsed    time.Duration
	// Status is the integer status of the kernel call; 0 on success.
	Status int
}

type Counts struct {
	Points    int `json:"points"`
	Gaussians int `json:"gaussians"`
	Shapelets int `json:"shapelets"`
}

func (s *Simulator) log() logger.Logger {
	if s.Log == nil {
		return logger.Discard()
	}
	return s.Log
}

func (s *Simulator) exec() backend.Executor {
	if s.Exec == nil {
		return backend.Default()
	}
	return s.Exec
}

func (s *Simulator) basis() *shapelet.Table {
	if s.Basis == nil {
		return shapelet.Default()
	}
	return s.Basis
}

// Backend names the executor runs are dispatched to.
func (s *Simulator) Backend() string {
	return s.exec().Name()
}

// Run models one scene into a freshly zeroed buffer.
//
// Invalid scenes, including shapelet orders the basis table does not hold,
// return an error wrapping scene.ErrInvalidScene. A kernel failure returns
// the result alongside the error with Status set.
func (s *Simulator) Run(ctx context.Context, sc *scene.Scene) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	points, gaussians, shapelets := sc.Counts()
	opts := scene.BuildOptions{FitLists: s.FitLists}
	var basis *shapelet.Table
	if shapelets > 0 {
		basis = s.basis()
		opts.MaxOrder = basis.Orders
	}
	in, err := scene.Build(sc, opts)
	if err != nil {
		return nil, err
	}

	exec := s.exec()
	res := &Result{
		Scene:      sc.Name,
		Freqs:      sc.Freqs,
		UVWs:       sc.UVWs,
		Vis:        make([]vis.JonesF32, sc.NumCells()),
		Components: Counts{Points: points, Gaussians: gaussians, Shapelets: shapelets},
		Backend:    exec.Name(),
	}
	mctx := &model.Context{
		UVWs:  sc.UVWs,
		Freqs: sc.Freqs,
		Vis:   res.Vis,
		Basis: basis,
		Exec:  exec,
	}

	start := time.Now()
	err = model.Timestep(mctx, in)
	res.Elapsed = time.Since(start)
	res.Status = model.Status(err)

	log := s.log().With("scene", sc.Name, "backend", res.Backend)
	if err != nil {
		log.Error("timestep failed", "status", res.Status, "error", err)
		return res, fmt.Errorf("timestep %q: %w", sc.Name, err)
	}
	log.Debug("timestep complete",
		"baselines", len(sc.UVWs),
		"freqs", len(sc.Freqs),
		"points", points,
		"gaussians", gaussians,
		"shapelets", shapelets,
		"elapsed", res.Elapsed,
	)
	return res, nil
}

// RunBatch runs independent scenes concurrently, at most limit at a time
// (limit <= 0 means no limit). Results are in input order. The first error
// cancels scenes that have not started.
func (s *Simulator) RunBatch(ctx context.Context, scenes []*scene.Scene, limit int) ([]*Result, error) {
	results := make([]*Result, len(scenes))
	eg, egCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}
	for i, sc := range scenes {
		eg.Go(func() error {
			res, err := s.Run(egCtx, sc)
			if err != nil {
				return fmt.Errorf("scene %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	s.log().Info("batch complete", "scenes", len(scenes))
	return results, nil
}

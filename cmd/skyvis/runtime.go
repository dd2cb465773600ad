package main

import (
	"context"
	"fmt"

	"github.com/samcharles93/skyvis/internal/backend"
	"github.com/samcharles93/skyvis/internal/logger"
	"github.com/samcharles93/skyvis/internal/shapelet"
	"github.com/samcharles93/skyvis/internal/simulate"
)

// newSimulator resolves the executor and basis table from the flag values.
// The returned func releases the executor.
func newSimulator(ctx context.Context) (*simulate.Simulator, func(), error) {
	log := logger.FromContext(ctx)

	interp, err := shapelet.ParseInterpolation(interpolation)
	if err != nil {
		return nil, nil, err
	}
	basis, err := loadBasis(basisPath)
	if err != nil {
		return nil, nil, err
	}
	basis = basis.WithInterpolation(interp)

	if workers < 0 {
		return nil, nil, fmt.Errorf("workers must be >= 0, got %d", workers)
	}
	exec, err := backend.New(backendName, workers)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("simulator ready",
		"backend", exec.Name(),
		"workers", workers,
		"basis", basis.String(),
		"fit_lists", fitLists,
		"cpu_features", backend.CPUFeatures(),
	)
	sim := &simulate.Simulator{Exec: exec, Basis: basis, Log: log, FitLists: fitLists}
	return sim, func() { backend.Close(exec) }, nil
}

func loadBasis(path string) (*shapelet.Table, error) {
	if path == "" {
		return shapelet.Default(), nil
	}
	t, err := shapelet.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load basis %s: %w", path, err)
	}
	return t, nil
}

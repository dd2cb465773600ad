// Package backend provides the parallel execution substrates used by the sky
// modeller. An Executor runs a function over disjoint contiguous ranges of a
// flattened index space and reports substrate failures as *ExecError.
package backend

import (
	"fmt"
	"strings"
)

const (
	CPU    = "cpu"
	CUDA   = "cuda"
	Serial = "serial"
	Auto   = "auto"
)

// Executor runs fn over [0, n) split into disjoint ranges [lo, hi). Each index
// is visited by exactly one call of fn. For returns only after every range
// has finished.
type Executor interface {
	Name() string
	For(n int, fn func(lo, hi int)) error
}

func Normalize(name string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(name))
	if backend == "" {
		return Auto, nil
	}
	switch backend {
	case CPU, CUDA, Serial, Auto:
		return backend, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected auto, cpu, serial, or cuda)", backend)
	}
}

// New resolves name to an Executor. A positive workers value gives the CPU
// backend a dedicated pool which the caller must Close; otherwise the shared
// default pool is returned.
func New(name string, workers int) (Executor, error) {
	resolved, err := Normalize(name)
	if err != nil {
		return nil, err
	}
	switch resolved {
	case Auto:
		if Has(CUDA) {
			return newCUDA()
		}
		return newCPU(workers), nil
	case CPU:
		return newCPU(workers), nil
	case Serial:
		return SerialExecutor{}, nil
	default:
		return newCUDA()
	}
}

func newCPU(workers int) Executor {
	if workers > 0 {
		return NewPool(workers)
	}
	return Default()
}

// Close releases exec if it owns resources. Shared executors are left alone.
func Close(exec Executor) {
	p, ok := exec.(*Pool)
	if !ok || p == defaultPool {
		return
	}
	p.Close()
}

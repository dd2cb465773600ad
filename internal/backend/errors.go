package backend

import (
	"errors"
	"fmt"
)

// Substrate status codes. They only identify which part of the substrate
// failed and are surfaced to callers verbatim.
const (
	CodeExecution   = 1
	CodeUnavailable = 2
)

var ErrUnavailable = errors.New("backend not available in this build")

// ExecError is a failure of the execution substrate rather than of the
// numerical work it was running.
type ExecError struct {
	Backend string
	Code    int
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s execution failed (status %d): %v", e.Backend, e.Code, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

func executionError(backend string, rec any) *ExecError {
	err, ok := rec.(error)
	if !ok {
		err = fmt.Errorf("%v", rec)
	}
	return &ExecError{Backend: backend, Code: CodeExecution, Err: err}
}

// StatusCode extracts the substrate status from err: 0 for nil, the
// ExecError code when present and CodeExecution for anything else.
func StatusCode(err error) int {
	if err == nil {
		return 0
	}
	var execErr *ExecError
	if errors.As(err, &execErr) {
		return execErr.Code
	}
	return CodeExecution
}

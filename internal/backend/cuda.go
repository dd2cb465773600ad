package backend

const cudaEnabled = false

func newCUDA() (Executor, error) {
	return nil, &ExecError{Backend: CUDA, Code: CodeUnavailable, Err: ErrUnavailable}
}

package backend

// SerialExecutor runs the whole index space on the calling goroutine.
type SerialExecutor struct{}

func (SerialExecutor) Name() string {
	return Serial
}

func (SerialExecutor) For(n int, fn func(lo, hi int)) error {
	if n <= 0 {
		return nil
	}
	return runRange(Serial, fn, 0, n)
}

package filesystem

// Observer records storage operation metrics. Implementations are provided
// by the metrics package to break the import cycle between filesystem and
// metrics.
type Observer interface {
	// ObserveOperation records duration and error status for an operation:
	// "open", "write", "stat" or "remove".
	ObserveOperation(operation string, durationSeconds float64, err error)

	// ObserveRetryAttempt records a retry after a stale NFS file handle.
	ObserveRetryAttempt(operation string)
	// ObserveRetryFailure records an operation that failed after all retries.
	ObserveRetryFailure(operation string)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, float64, error) {}
func (nopObserver) ObserveRetryAttempt(string)              {}
func (nopObserver) ObserveRetryFailure(string)              {}

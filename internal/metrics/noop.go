package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncRecordWritten is a no-op.
func (n *NoopRecorder) IncRecordWritten(kind, op string) {}

// IncImageUploaded is a no-op.
func (n *NoopRecorder) IncImageUploaded(bytes int) {}

// IncImageReleased is a no-op.
func (n *NoopRecorder) IncImageReleased(status string) {}

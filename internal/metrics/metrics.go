// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Record kinds.
const (
	KindTech       = "tech"
	KindExperience = "experience"
	KindProject    = "project"
)

// Write operations.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Content metrics
	IncRecordWritten(kind, op string)

	// Image metrics
	IncImageUploaded(bytes int)
	IncImageReleased(status string) // status: "success" or "failed"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

// OrNoop returns r, or a NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NewNoop()
	}
	return r
}

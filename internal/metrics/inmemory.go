package metrics

import (
	"maps"
	"sync"
	"sync/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	// Writes is keyed by "kind.op", e.g. "tech.create".
	Writes               map[string]uint64
	ImagesUploaded       uint64
	ImageBytesUploaded   uint64
	ImagesReleased       uint64
	ImageReleaseFailures uint64
}

// InMemoryRecorder stores metrics in memory. It backs GET /metrics and tests.
type InMemoryRecorder struct {
	mu     sync.Mutex
	writes map[string]uint64

	imagesUploaded       uint64
	imageBytesUploaded   uint64
	imagesReleased       uint64
	imageReleaseFailures uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{writes: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	writes := maps.Clone(m.writes)
	m.mu.Unlock()

	return Snapshot{
		Writes:               writes,
		ImagesUploaded:       atomic.LoadUint64(&m.imagesUploaded),
		ImageBytesUploaded:   atomic.LoadUint64(&m.imageBytesUploaded),
		ImagesReleased:       atomic.LoadUint64(&m.imagesReleased),
		ImageReleaseFailures: atomic.LoadUint64(&m.imageReleaseFailures),
	}
}

// IncRecordWritten increments the counter for kind.op.
func (m *InMemoryRecorder) IncRecordWritten(kind, op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes[kind+"."+op]++
}

// IncImageUploaded counts one stored image of the given size.
func (m *InMemoryRecorder) IncImageUploaded(bytes int) {
	atomic.AddUint64(&m.imagesUploaded, 1)
	atomic.AddUint64(&m.imageBytesUploaded, uint64(bytes))
}

// IncImageReleased counts a release attempt by outcome.
func (m *InMemoryRecorder) IncImageReleased(status string) {
	if status == "success" {
		atomic.AddUint64(&m.imagesReleased, 1)
		return
	}
	atomic.AddUint64(&m.imageReleaseFailures, 1)
}

package handler

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/foliocms/folio/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	for _, key := range slices.Sorted(maps.Keys(snap.Writes)) {
		kind, op, _ := strings.Cut(key, ".")
		writeMetric(w, "folio_record_writes_total{kind=%q,op=%q} %d\n", kind, op, snap.Writes[key])
	}

	writeMetric(w, "folio_images_uploaded_total %d\n", snap.ImagesUploaded)
	writeMetric(w, "folio_image_upload_bytes_total %d\n", snap.ImageBytesUploaded)

	writeMetric(w, "folio_image_releases_total{status=\"success\"} %d\n", snap.ImagesReleased)
	writeMetric(w, "folio_image_releases_total{status=\"failed\"} %d\n", snap.ImageReleaseFailures)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

package service

import "github.com/foliocms/folio/internal/metrics"

// Options tunes the content services.
type Options struct {
	// ReleaseImageOnDelete deletes a record's image when the record is deleted.
	ReleaseImageOnDelete bool
	// Metrics receives write and image counters. Nil discards them.
	Metrics metrics.Recorder
}

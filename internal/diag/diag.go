// Package diag holds the two process-wide latches the design calls for:
// a log-once flag for plane size mismatches, and a block of diagnostic
// counters. Both are append-only after startup — nothing here is ever
// reset, matching the teacher's per-camera atomic counters (camera.go's
// framesDecoded/framesDropped/decodeErrs) generalized to a single
// process-wide block and exported as Prometheus metrics the way
// starsinc1708-TorrX's internal/metrics package does.
package diag

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	planeMismatchOnce sync.Once

	// DecodeMisses counts TransientDecodeMiss occurrences across all
	// workers (retried, never surfaced, but worth knowing about).
	DecodeMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "previewcore_decode_misses_total",
		Help: "Decode attempts that produced no frame or returned an error.",
	})

	// WorkerRestarts counts decoder re-creations triggered by the
	// miss-threshold policy in the decode worker's failure model.
	WorkerRestarts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "previewcore_worker_restarts_total",
		Help: "Decoder re-creations triggered after sustained per-frame decode errors.",
	})

	// RingDrops counts GPU ring uploads dropped because the writer caught
	// the presenter's read slot.
	RingDrops = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "previewcore_ring_drops_total",
		Help: "Plane ring uploads dropped due to ring saturation.",
	})

	// RingUploads counts successful plane ring uploads.
	RingUploads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "previewcore_ring_uploads_total",
		Help: "Plane ring uploads submitted to the presenter.",
	})

	// CacheHits / CacheMisses track the frame cache's effectiveness.
	CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "previewcore_frame_cache_hits_total",
		Help: "Frame cache lookups that found a cached decode.",
	})
	CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "previewcore_frame_cache_misses_total",
		Help: "Frame cache lookups that missed.",
	})

	// AudioDeviceUnavailable is set to 1 once no output device could be
	// opened; audio stays silently disabled for the rest of the process.
	AudioDeviceUnavailable = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "previewcore_audio_device_unavailable",
		Help: "1 if the audio output device could not be opened.",
	})
)

func init() {
	prometheus.MustRegister(
		DecodeMisses,
		WorkerRestarts,
		RingDrops,
		RingUploads,
		CacheHits,
		CacheMisses,
		AudioDeviceUnavailable,
	)
}

// LogPlaneMismatchOnce runs fn exactly once for the lifetime of the
// process, regardless of how many times plane size mismatches occur
// across every decode worker. Mirrors the teacher's pattern of logging a
// class of recoverable error once instead of flooding the log.
func LogPlaneMismatchOnce(fn func()) {
	planeMismatchOnce.Do(fn)
}

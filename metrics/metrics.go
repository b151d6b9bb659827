package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// BatchesTotal counts processed batches by outcome.
	BatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alttext",
		Subsystem: "pipeline",
		Name:      "batches_total",
		Help:      "Total number of batches processed, labeled by result.",
	}, []string{"result"})

	// ItemsTotal counts individual batch items by outcome.
	ItemsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alttext",
		Subsystem: "pipeline",
		Name:      "items_total",
		Help:      "Total number of batch items, labeled by result (succeeded, generation_failed, store_failed, skipped).",
	}, []string{"result"})

	// GenerationDurationSeconds is time spent per inference call.
	GenerationDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "alttext",
		Subsystem: "pipeline",
		Name:      "generation_duration_seconds",
		Help:      "Time spent in the inference endpoint per image.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 60, 120, 300},
	}, []string{"provider"})

	// ThumbnailFallbackTotal counts thumbnails that fell back to the
	// original bytes because resizing failed.
	ThumbnailFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "alttext",
		Subsystem: "pipeline",
		Name:      "thumbnail_fallback_total",
		Help:      "Total number of thumbnails stored at original resolution after a resize failure.",
	})

	// ResultsDeletedTotal counts rows removed by bulk deletes.
	ResultsDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "alttext",
		Subsystem: "pipeline",
		Name:      "results_deleted_total",
		Help:      "Total number of result rows removed by delete requests.",
	})
)

// Register registers pipeline metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			BatchesTotal,
			ItemsTotal,
			GenerationDurationSeconds,
			ThumbnailFallbackTotal,
			ResultsDeletedTotal,
		)
	})
}

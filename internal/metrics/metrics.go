// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts scan events with Prometheus collectors on a
// private registry. A run writes them out in the node_exporter textfile
// format so a scheduled scan can be scraped after it exits.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder implements search.Observer.
type Recorder struct {
	registry *prometheus.Registry

	PagesFetched   prometheus.Counter
	PagesFailed    prometheus.Counter
	ItemsSkipped   *prometheus.CounterVec
	RecordsEmitted prometheus.Counter
	PageItems      prometheus.Histogram
	ScanDuration   prometheus.Gauge
	LastSuccess    prometheus.Gauge
}

// NewRecorder creates the collectors and registers them.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		PagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chronam_pages_fetched_total",
			Help: "Result pages fetched and decoded.",
		}),
		PagesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chronam_pages_failed_total",
			Help: "Result pages skipped because of a network or malformed response.",
		}),
		ItemsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chronam_items_skipped_total",
			Help: "Items dropped before reaching the sink, by reason.",
		}, []string{"reason"}),
		RecordsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chronam_records_emitted_total",
			Help: "Records handed to the sink.",
		}),
		PageItems: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chronam_page_items",
			Help:    "Items per fetched result page.",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		}),
		ScanDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chronam_scan_duration_seconds",
			Help: "Wall time of the last scan.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chronam_scan_last_success_timestamp_seconds",
			Help: "Unix time the last scan finished without a fatal error.",
		}),
	}
	r.registry.MustRegister(
		r.PagesFetched,
		r.PagesFailed,
		r.ItemsSkipped,
		r.RecordsEmitted,
		r.PageItems,
		r.ScanDuration,
		r.LastSuccess,
	)
	return r
}

// PageFetched records a decoded page and its item count.
func (r *Recorder) PageFetched(_ int, items int) {
	r.PagesFetched.Inc()
	r.PageItems.Observe(float64(items))
}

// PageFailed records a skipped page.
func (r *Recorder) PageFailed(int, error) { r.PagesFailed.Inc() }

// ItemSkipped records a dropped item.
func (r *Recorder) ItemSkipped(reason string) { r.ItemsSkipped.WithLabelValues(reason).Inc() }

// RecordEmitted records a record handed to the sink.
func (r *Recorder) RecordEmitted() { r.RecordsEmitted.Inc() }

// Finish records the scan duration and, when ok, the completion time.
func (r *Recorder) Finish(elapsed time.Duration, ok bool) {
	r.ScanDuration.Set(elapsed.Seconds())
	if ok {
		r.LastSuccess.SetToCurrentTime()
	}
}

// Registry exposes the registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteTextfile writes all metrics to path in the Prometheus text format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the service counters. A single instance is created in main
// and threaded into the services that record on it.
type Metrics struct {
	OccupancyRecomputes prometheus.Counter
	BusCountFailures    prometheus.Counter
	ReportUploads       prometheus.Counter
	UploadedBytes       prometheus.Counter
	ImageResolutions    prometheus.Counter
}

// New registers the counters on reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OccupancyRecomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ridemap_occupancy_recomputes_total",
			Help: "Occupancy reports computed from per-bus count queries.",
		}),
		BusCountFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ridemap_bus_count_failures_total",
			Help: "Per-bus count queries that failed and were reported as zero.",
		}),
		ReportUploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ridemap_report_uploads_total",
			Help: "Reported-user image batches ingested.",
		}),
		UploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ridemap_report_uploaded_bytes_total",
			Help: "Bytes of report images uploaded to blob storage.",
		}),
		ImageResolutions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ridemap_image_resolutions_total",
			Help: "Reported-user image sets resolved to download URLs.",
		}),
	}
	reg.MustRegister(
		m.OccupancyRecomputes,
		m.BusCountFailures,
		m.ReportUploads,
		m.UploadedBytes,
		m.ImageResolutions,
	)
	return m
}

// Package metrics provides Prometheus metrics for tgupload.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// File outcomes used as the "result" label.
const (
	ResultUploaded = "uploaded"
	ResultSkipped  = "skipped"
	ResultFailed   = "failed"
)

var (
	jobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgupload_jobs_total",
			Help: "Total number of upload jobs by final status",
		},
		[]string{"status"},
	)

	filesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgupload_files_total",
			Help: "Total number of files handled by outcome",
		},
		[]string{"result"},
	)

	bytesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tgupload_bytes_uploaded_total",
			Help: "Total bytes of successfully uploaded files",
		},
	)

	queueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tgupload_queue_depth",
			Help: "Number of upload jobs waiting for a worker",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordJob counts a finished job.
func RecordJob(status string) {
	jobsTotal.WithLabelValues(status).Inc()
}

// RecordFile counts one file outcome. bytes is only added for uploads.
func RecordFile(result string, bytes uint64) {
	filesTotal.WithLabelValues(result).Inc()
	if result == ResultUploaded {
		bytesUploaded.Add(float64(bytes))
	}
}

// SetQueueDepth records the number of pending jobs.
func SetQueueDepth(n int) {
	queueDepth.Set(float64(n))
}

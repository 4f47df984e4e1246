package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// UploadsTotal counts processed uploads by form field and outcome code.
	UploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_uploads_total",
		Help: "Image uploads by field and outcome",
	}, []string{"field", "outcome"})

	UploadBytes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gallery_upload_processed_bytes",
		Help:    "Size of transcoded artifacts",
		Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
	}, []string{"field"})
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			UploadsTotal,
			UploadBytes,
		)
	})
}

// Handler returns an http.Handler for Prometheus scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	namespace = "vision"

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	imageDecodeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_decode_total",
			Help:      "Number of decoded request images",
		},
		[]string{"status", "format"},
	)

	imageDecodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_decode_duration_seconds",
			Help:      "Time spent decoding and normalizing request images",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	inferenceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inference_total",
			Help:      "Number of runtime invocations",
		},
		[]string{"status"},
	)

	inferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Runtime invocation duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"status"},
	)

	tokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Tokens reported by the runtime",
		},
		[]string{"kind"},
	)

	cacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_total",
			Help:      "Response cache lookups",
		},
		[]string{"result"},
	)

	tempImages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "temp_images",
			Help:      "Normalized request images currently on disk",
		},
	)
)

func HttpRequestsTotal(method, path, code string) {
	httpRequestsTotal.With(prometheus.Labels{
		"method": method,
		"path":   path,
		"code":   code,
	}).Inc()
}

func HttpRequestDuration(method, path string, duration time.Duration) {
	httpRequestDuration.With(prometheus.Labels{
		"method": method,
		"path":   path,
	}).Observe(duration.Seconds())
}

func ImageDecodeTotal(status, format string) {
	imageDecodeTotal.With(prometheus.Labels{
		"status": status,
		"format": format,
	}).Inc()
}

func ImageDecodeDuration(status string, duration time.Duration) {
	imageDecodeDuration.With(prometheus.Labels{
		"status": status,
	}).Observe(duration.Seconds())
}

func InferenceTotal(status string) {
	inferenceTotal.With(prometheus.Labels{
		"status": status,
	}).Inc()
}

func InferenceDuration(status string, duration time.Duration) {
	inferenceDuration.With(prometheus.Labels{
		"status": status,
	}).Observe(duration.Seconds())
}

func TokensTotal(prompt, completion int) {
	tokensTotal.WithLabelValues("prompt").Add(float64(prompt))
	tokensTotal.WithLabelValues("completion").Add(float64(completion))
}

func CacheTotal(result string) {
	cacheTotal.WithLabelValues(result).Inc()
}

// TempImageAcquired and TempImageReleased track scoped images on disk.
func TempImageAcquired() { tempImages.Inc() }

func TempImageReleased() { tempImages.Dec() }

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &statusResponseWriter{w, http.StatusOK}
		next.ServeHTTP(ww, r)

		path := routePatternOrPath(r)
		duration := time.Since(start)
		HttpRequestsTotal(r.Method, path, strconv.Itoa(ww.status))
		HttpRequestDuration(r.Method, path, duration)
	})
}

// routePatternOrPath keeps label cardinality bounded by preferring the chi
// route pattern over the raw path.
func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

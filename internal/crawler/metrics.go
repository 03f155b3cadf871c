package crawler

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a per-run registry. A batch run has no scrape endpoint, so the
// registry is written once to a textfile at exit.
type Metrics struct {
	Registry     *prometheus.Registry
	Requests     *prometheus.CounterVec
	APIErrors    *prometheus.CounterVec
	KeyRotations prometheus.Counter
	Comments     *prometheus.CounterVec
	InnerAborted prometheus.Counter
	CacheHits    prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yt_network_api_requests_total",
			Help: "API requests issued, by endpoint.",
		}, []string{"endpoint"}),
		APIErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yt_network_api_errors_total",
			Help: "API request failures, by endpoint and error kind.",
		}, []string{"endpoint", "kind"}),
		KeyRotations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yt_network_key_rotations_total",
			Help: "Credential rotations triggered by quota exhaustion.",
		}),
		Comments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yt_network_comments_total",
			Help: "Comments collected, by kind (top_level, reply).",
		}, []string{"kind"}),
		InnerAborted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yt_network_reply_loops_aborted_total",
			Help: "Reply pagination loops abandoned after a fault.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yt_network_page_cache_hits_total",
			Help: "API pages served from the page cache.",
		}),
	}
	m.Registry.MustRegister(m.Requests, m.APIErrors, m.KeyRotations, m.Comments, m.InnerAborted, m.CacheHits)
	return m
}

// WriteTextfile is a no-op for an empty path or a nil receiver.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || strings.TrimSpace(path) == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}

func (m *Metrics) request(endpoint string) {
	if m != nil {
		m.Requests.WithLabelValues(endpoint).Inc()
	}
}

func (m *Metrics) ObserveRequest(endpoint string, err error) {
	if m == nil {
		return
	}
	m.request(endpoint)
	if err != nil {
		m.APIErrors.WithLabelValues(endpoint, string(KindOf(err))).Inc()
	}
}

func (m *Metrics) ObserveRotation() {
	if m != nil {
		m.KeyRotations.Inc()
	}
}

func (m *Metrics) ObserveComment(reply bool) {
	if m == nil {
		return
	}
	kind := "top_level"
	if reply {
		kind = "reply"
	}
	m.Comments.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveInnerAborted() {
	if m != nil {
		m.InnerAborted.Inc()
	}
}

func (m *Metrics) ObserveCacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

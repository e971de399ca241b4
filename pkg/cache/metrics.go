package cache

// metrics.go is a thin abstraction over Prometheus so that a subcache family
// can be used with or without metrics. When the caller passes a
// *prometheus.Registry via WithMetrics, labeled metrics keyed by family name
// are created and exposed through that registry; otherwise a no-op sink is
// used and the hot path pays nothing for metric updates.
//
// Metric names follow Prometheus best practices, suffixed with "_total" for
// counters.
//
// ┌──────────────────────────┬──────┬────────┐
// │ Metric                   │ Type │ Labels │
// ├──────────────────────────┼──────┼────────┤
// │ subcache_hits_total      │ Ctr  │ family │
// │ subcache_misses_total    │ Ctr  │ family │
// │ subcache_evictions_total │ Ctr  │ family │
// │ subcache_trims_total     │ Ctr  │ family │
// │ subcache_size_bytes      │ Gge  │ family │
// │ subcache_items           │ Gge  │ family │
// └──────────────────────────┴──────┴────────┘
//
// © 2025 subcache authors. MIT License.

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsSink is internal: Cache only ever talks to the interface, never to
// a concrete backend.
type metricsSink interface {
	incHit()
	incMiss()
	incEvict()
	incTrim()
	setSizeBytes(v int64)
	setItems(v int64)
}

type noopMetrics struct{}

func (noopMetrics) incHit()             {}
func (noopMetrics) incMiss()            {}
func (noopMetrics) incEvict()           {}
func (noopMetrics) incTrim()            {}
func (noopMetrics) setSizeBytes(int64)  {}
func (noopMetrics) setItems(int64)      {}

type promMetricsVecs struct {
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	evictions *prometheus.CounterVec
	trims     *prometheus.CounterVec
	size      *prometheus.GaugeVec
	items     *prometheus.GaugeVec
}

// promVecsMu guards promVecs: New (and thus vecsFor) can be called for
// several families against the same *prometheus.Registry concurrently, and
// a plain map would fatal on a concurrent read+write or write+write.
var (
	promVecsMu sync.Mutex
	promVecs   = map[*prometheus.Registry]*promMetricsVecs{}
)

// vecsFor returns the shared *CounterVec/*GaugeVec collectors for reg,
// creating and registering them on the first call so that many families
// sharing one registry (the common case: one registry per renderer process)
// register each metric exactly once and differ only by the "family" label
// value.
func vecsFor(reg *prometheus.Registry) *promMetricsVecs {
	promVecsMu.Lock()
	defer promVecsMu.Unlock()

	if v, ok := promVecs[reg]; ok {
		return v
	}
	label := []string{"family"}
	v := &promMetricsVecs{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subcache", Name: "hits_total", Help: "Number of cache hits.",
		}, label),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subcache", Name: "misses_total", Help: "Number of cache misses.",
		}, label),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subcache", Name: "evictions_total", Help: "Number of entries evicted by Trim.",
		}, label),
		trims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subcache", Name: "trims_total", Help: "Number of Trim passes performed.",
		}, label),
		size: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "subcache", Name: "size_bytes", Help: "Live bytes charged against the cache budget.",
		}, label),
		items: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "subcache", Name: "items", Help: "Number of live entries.",
		}, label),
	}
	reg.MustRegister(v.hits, v.misses, v.evictions, v.trims, v.size, v.items)
	promVecs[reg] = v
	return v
}

type promMetrics struct {
	family string
	vecs   *promMetricsVecs
}

func newPromMetrics(reg *prometheus.Registry, family string) *promMetrics {
	return &promMetrics{family: family, vecs: vecsFor(reg)}
}

func (m *promMetrics) incHit()  { m.vecs.hits.WithLabelValues(m.family).Inc() }
func (m *promMetrics) incMiss() { m.vecs.misses.WithLabelValues(m.family).Inc() }
func (m *promMetrics) incEvict() {
	m.vecs.evictions.WithLabelValues(m.family).Inc()
}
func (m *promMetrics) incTrim() { m.vecs.trims.WithLabelValues(m.family).Inc() }
func (m *promMetrics) setSizeBytes(v int64) {
	m.vecs.size.WithLabelValues(m.family).Set(float64(v))
}
func (m *promMetrics) setItems(v int64) {
	m.vecs.items.WithLabelValues(m.family).Set(float64(v))
}

func newMetricsSink(reg *prometheus.Registry, family string) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg, family)
}

package metric

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsRegistry tracks which (component, name) pairs have already
// registered a collector, so components can call RegisterCounter/
// RegisterGauge/RegisterHistogram unconditionally on every construction
// without tripping prometheus's duplicate-registration panic.
type MetricsRegistry struct {
	mu       sync.Mutex
	reg      *prometheus.Registry
	byKey    map[string]prometheus.Collector
}

// NewMetricsRegistry creates an empty registry wrapping a fresh
// prometheus.Registry (never the global DefaultRegisterer).
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		reg:   prometheus.NewRegistry(),
		byKey: make(map[string]prometheus.Collector),
	}
}

func key(component, name string) string {
	return component + "/" + name
}

// RegisterCounter registers c under (component, name). Re-registering the
// same key returns nil and keeps the previously registered collector,
// mirroring idempotent channel re-construction.
func (r *MetricsRegistry) RegisterCounter(component, name string, c prometheus.Counter) error {
	return r.register(component, name, c)
}

// RegisterGauge registers g under (component, name).
func (r *MetricsRegistry) RegisterGauge(component, name string, g prometheus.Gauge) error {
	return r.register(component, name, g)
}

// RegisterHistogram registers h under (component, name).
func (r *MetricsRegistry) RegisterHistogram(component, name string, h prometheus.Histogram) error {
	return r.register(component, name, h)
}

func (r *MetricsRegistry) register(component, name string, c prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(component, name)
	if existing, ok := r.byKey[k]; ok {
		_ = existing
		return nil
	}
	if err := r.reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if ok := asAlreadyRegistered(err, &are); ok {
			r.byKey[k] = are.ExistingCollector
			return nil
		}
		return fmt.Errorf("metric: register %s: %w", k, err)
	}
	r.byKey[k] = c
	return nil
}

func asAlreadyRegistered(err error, target *prometheus.AlreadyRegisteredError) bool {
	are, ok := err.(prometheus.AlreadyRegisteredError)
	if !ok {
		return false
	}
	*target = are
	return true
}

// Gatherer exposes the underlying prometheus.Gatherer for /metrics handlers.
func (r *MetricsRegistry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// PrometheusRegistry exposes the underlying *prometheus.Registry.
func (r *MetricsRegistry) PrometheusRegistry() *prometheus.Registry {
	return r.reg
}

// Handler returns an http.Handler serving this registry's metrics in the
// Prometheus exposition format.
func (r *MetricsRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

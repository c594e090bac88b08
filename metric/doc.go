// Package metric wraps a Prometheus registry with the naming and
// duplicate-registration conventions used across tll's components.
//
// Every caller registers against a *MetricsRegistry rather than the global
// prometheus.DefaultRegisterer, so tests can construct an isolated registry
// per case and channel statistics never collide across independently
// constructed Contexts.
package metric

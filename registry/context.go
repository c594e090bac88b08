// Package registry implements the protocol registry and named-channel
// directory every Channel is constructed through.
package registry

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Diego2la/tll/channel"
	"github.com/Diego2la/tll/config"
	"github.com/Diego2la/tll/curl"
	"github.com/Diego2la/tll/logging"
	"github.com/Diego2la/tll/metric"
	"github.com/Diego2la/tll/pkg/cache"
	"github.com/Diego2la/tll/scheme"
)

// protoEntry is the registry's sum type: either a concrete Impl or an
// alias pointing at another protocol URL.
type protoEntry struct {
	impl    channel.Impl
	alias   curl.URL
	isAlias bool
}

// Context is the protocol registry, named-channel directory, and scheme
// cache every Channel is built through. It satisfies channel.ContextRef
// so channels can hold a reference back to it without importing this
// package.
type Context struct {
	mu        sync.RWMutex
	protocols map[string]protoEntry
	modules   map[string]bool
	named     map[string]*channel.Channel
	configs   map[string]*config.Tree

	schemeCache  cache.Cache[scheme.Scheme]
	schemeLoader scheme.Loader

	metrics       *metric.MetricsRegistry
	defaultConfig *config.Tree

	refcount atomic.Int64
}

// New constructs an empty Context with no registered protocols. The
// scheme cache exports its hit/miss/size counters through the same
// metrics registry every channel's stats are recorded against.
func New() *Context {
	metrics := metric.NewMetricsRegistry()
	sc, _ := cache.NewSimple[scheme.Scheme](cache.WithMetrics[scheme.Scheme](metrics, "scheme"))
	return &Context{
		protocols:     make(map[string]protoEntry),
		modules:       make(map[string]bool),
		named:         make(map[string]*channel.Channel),
		configs:       make(map[string]*config.Tree),
		schemeCache:   sc,
		schemeLoader:  scheme.NullLoader,
		metrics:       metrics,
		defaultConfig: config.New(),
	}
}

// SetSchemeLoader installs the loader used for URLs the cache misses.
func (c *Context) SetSchemeLoader(l scheme.Loader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemeLoader = l
}

// Metrics returns the context's metrics registry, shared across every
// channel it constructs.
func (c *Context) Metrics() *metric.MetricsRegistry { return c.metrics }

// Retain implements channel.ContextRef.
func (c *Context) Retain() { c.refcount.Add(1) }

// Release implements channel.ContextRef. It never destroys the Context;
// Go's garbage collector owns its lifetime. The counter exists so callers
// (tests, diagnostics) can observe outstanding channel references.
func (c *Context) Release() { c.refcount.Add(-1) }

// RefCount reports the number of live channels constructed by this context.
func (c *Context) RefCount() int64 { return c.refcount.Load() }

// Logger returns the registry's component-scoped logger.
func (c *Context) Logger() *slog.Logger { return logging.Get("registry") }

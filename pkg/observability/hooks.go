// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in distmeta emit events through globally registered hooks and
// never import a metrics backend themselves. The CLI registers Prometheus
// collectors at startup (see internal/metrics); tests and library users get
// no-op defaults.
//
// # Usage
//
// Register hooks once at program entry:
//
//	observability.SetBuildHooks(hooks)
//
// Libraries call hooks to emit events:
//
//	observability.Build().OnBuildStart(ctx, manifest)
//	// ... load, extract, validate ...
//	observability.Build().OnBuildComplete(ctx, manifest, name, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// BuildHooks receives events from descriptor construction and checking.
type BuildHooks interface {
	// OnBuildStart fires before a manifest is loaded.
	OnBuildStart(ctx context.Context, manifest string)
	// OnBuildComplete fires once a descriptor is built (or failed).
	OnBuildComplete(ctx context.Context, manifest, name string, duration time.Duration, err error)
	// OnExtract fires after a README long description is extracted.
	OnExtract(ctx context.Context, path string, size int)
	// OnCheck fires for every requirement checked against a package index.
	OnCheck(ctx context.Context, requirement, status string, duration time.Duration)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)
	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)
	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)
	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopBuildHooks is a no-op implementation of BuildHooks.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnBuildStart(context.Context, string)                                {}
func (NoopBuildHooks) OnBuildComplete(context.Context, string, string, time.Duration, error) {}
func (NoopBuildHooks) OnExtract(context.Context, string, int)                              {}
func (NoopBuildHooks) OnCheck(context.Context, string, string, time.Duration)              {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

var (
	buildHooks BuildHooks = NoopBuildHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetBuildHooks registers custom build hooks. A nil h is ignored.
func SetBuildHooks(h BuildHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		buildHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Build returns the registered build hooks.
func Build() BuildHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return buildHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	buildHooks = NoopBuildHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}

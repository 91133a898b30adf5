package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// logHooks reports build, cache and index events at debug level. serve
// replaces them with Prometheus collectors.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnBuildStart(_ context.Context, manifest string) {
	h.logger.Debug("build started", "manifest", manifest)
}

func (h *logHooks) OnBuildComplete(_ context.Context, manifest, name string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("build failed", "manifest", manifest, "duration", d, "error", err)
		return
	}
	h.logger.Debug("build finished", "manifest", manifest, "name", name, "duration", d)
}

func (h *logHooks) OnExtract(_ context.Context, path string, size int) {
	h.logger.Debug("extracted long description", "readme", path, "bytes", size)
}

func (h *logHooks) OnCheck(_ context.Context, requirement, status string, d time.Duration) {
	h.logger.Debug("checked", "requirement", requirement, "status", status, "duration", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, code int, d time.Duration) {
	h.logger.Debug("response", "method", method, "host", host, "path", path, "status", code, "duration", d)
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("request failed", "method", method, "host", host, "path", path, "error", err)
}

package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogPipelineHooks writes pipeline events to a logger at debug level and
// failures at error level.
type LogPipelineHooks struct {
	Logger *log.Logger
}

// NewLogPipelineHooks returns pipeline hooks that log to logger.
func NewLogPipelineHooks(logger *log.Logger) *LogPipelineHooks {
	return &LogPipelineHooks{Logger: logger}
}

func (h *LogPipelineHooks) OnBuildStart(_ context.Context, triples int) {
	h.Logger.Debug("build started", "triples", triples)
}

func (h *LogPipelineHooks) OnBuildComplete(_ context.Context, s BuildStats, d time.Duration, err error) {
	if err != nil {
		h.Logger.Error("build failed", "err", err, "duration", d)
		return
	}
	h.Logger.Debug("build complete", "nodes", s.Nodes, "links", s.Links, "rejected", s.Rejected, "duration", d)
}

func (h *LogPipelineHooks) OnLayoutStart(_ context.Context, engine string, nodes int) {
	h.Logger.Debug("layout started", "engine", engine, "nodes", nodes)
}

func (h *LogPipelineHooks) OnLayoutComplete(_ context.Context, engine string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Error("layout failed", "engine", engine, "err", err)
		return
	}
	h.Logger.Debug("layout complete", "engine", engine, "duration", d)
}

func (h *LogPipelineHooks) OnRenderStart(_ context.Context, format string) {
	h.Logger.Debug("render started", "format", format)
}

func (h *LogPipelineHooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Error("render failed", "format", format, "err", err)
		return
	}
	h.Logger.Debug("render complete", "format", format, "duration", d)
}

// LogCacheHooks writes cache events to a logger at debug level.
type LogCacheHooks struct {
	Logger *log.Logger
}

func (h *LogCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogCacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

// LogServerHooks writes one info line per served request.
type LogServerHooks struct {
	Logger *log.Logger
}

func (h *LogServerHooks) OnRequest(context.Context, string, string) {}

func (h *LogServerHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Info("request", "method", method, "path", path, "status", status, "duration", d)
}

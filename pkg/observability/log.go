package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// all hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks logging to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("trace")}
}

// Register installs h for every hook kind.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetAIHooks(h)
}

func (h *LogHooks) OnStageStart(_ context.Context, stage Stage) {
	h.logger.Debug("stage start", "stage", stage)
}

func (h *LogHooks) OnStageComplete(_ context.Context, stage Stage, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("stage failed", "stage", stage, "duration", d, "error", err)
		return
	}
	h.logger.Debug("stage done", "stage", stage, "duration", d)
}

func (h *LogHooks) OnPlanOrigin(_ context.Context, origin string, pages, lines int) {
	h.logger.Debug("plan", "origin", origin, "pages", pages, "lines", lines)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, provider, task string) {
	h.logger.Debug("ai request", "provider", provider, "task", task)
}

func (h *LogHooks) OnResponse(_ context.Context, provider, task string, d time.Duration, err error) {
	h.logger.Debug("ai response", "provider", provider, "task", task, "duration", d, "error", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ AIHooks       = (*LogHooks)(nil)
)

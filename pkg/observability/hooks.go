// Package observability lets applications observe pipeline execution.
//
// Libraries emit events through globally registered hooks; the defaults do
// nothing. The CLI registers [LogHooks] when run with --verbose, and any
// other backend (metrics, tracing) can be attached the same way:
//
//	observability.SetPipelineHooks(observability.NewLogHooks(logger))
//
// Events:
//
//	observability.Pipeline().OnStageStart(ctx, observability.StageExtract)
//	observability.Pipeline().OnStageComplete(ctx, observability.StageExtract, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// Stage names a pipeline stage.
type Stage string

const (
	StageExtract Stage = "extract"
	StageStyle   Stage = "style"
	StagePlan    Stage = "plan"
	StageCompose Stage = "compose"
	StageRender  Stage = "render"
)

// PipelineHooks receives events from the pipeline runner.
type PipelineHooks interface {
	OnStageStart(ctx context.Context, stage Stage)
	OnStageComplete(ctx context.Context, stage Stage, duration time.Duration, err error)

	// OnPlanOrigin reports whether the plan came from the AI planner, the
	// fallback planner or a plan file.
	OnPlanOrigin(ctx context.Context, origin string, pages, lines int)
}

// CacheHooks receives events from cache lookups.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// AIHooks receives events from language model calls.
type AIHooks interface {
	OnRequest(ctx context.Context, provider, task string)
	OnResponse(ctx context.Context, provider, task string, duration time.Duration, err error)
}

// NoopPipelineHooks does nothing.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, Stage)                          {}
func (NoopPipelineHooks) OnStageComplete(context.Context, Stage, time.Duration, error) {}
func (NoopPipelineHooks) OnPlanOrigin(context.Context, string, int, int)               {}

// NoopCacheHooks does nothing.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopAIHooks does nothing.
type NoopAIHooks struct{}

func (NoopAIHooks) OnRequest(context.Context, string, string)                        {}
func (NoopAIHooks) OnResponse(context.Context, string, string, time.Duration, error) {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	aiHooks       AIHooks       = NoopAIHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetAIHooks registers AI hooks. Nil is ignored.
func SetAIHooks(h AIHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		aiHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// AI returns the registered AI hooks.
func AI() AIHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return aiHooks
}

// Reset restores the no-op hooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	aiHooks = NoopAIHooks{}
}

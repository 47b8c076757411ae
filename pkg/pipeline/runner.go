package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/handscript/pkg/ai"
	"github.com/matzehuels/handscript/pkg/cache"
	"github.com/matzehuels/handscript/pkg/core/compose"
	"github.com/matzehuels/handscript/pkg/core/plan"
	"github.com/matzehuels/handscript/pkg/core/seed"
	"github.com/matzehuels/handscript/pkg/core/style"
	"github.com/matzehuels/handscript/pkg/extract"
	"github.com/matzehuels/handscript/pkg/history"
	pkgio "github.com/matzehuels/handscript/pkg/io"
	"github.com/matzehuels/handscript/pkg/observability"
)

// KindPlan marks a run that started from a saved plan document.
const KindPlan extract.Kind = "plan"

// Runner encapsulates pipeline execution with caching.
//
// The Runner holds no per-run state. Multiple goroutines can use the same
// Runner with different options, and regenerating a plan with a new seed
// never interferes with an in-flight run of the same plan.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Extractor replaces the default router. The default router reads text
	// and PDF input, and images when built with the ocr tag.
	Extractor extract.Extractor

	// AI infers styles and plans layouts. An offline client uses keyword
	// rules and the local planner.
	AI *ai.Client

	// History records each run.
	History history.Store
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The runner starts offline and without history; set AI and History to
// change that.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		AI:      ai.NewClient(nil, ai.Config{}, logger),
		History: history.NullStore{},
	}
}

// Execute runs extract → style → plan → compose → render with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	res, err := r.prepare(ctx, opts)
	if err != nil {
		return nil, err
	}

	// Stage 4: Compose
	sheets, _ := runStage(ctx, observability.StageCompose, &res.Stats.ComposeTime, func() ([]compose.Sheet, error) {
		return compose.Compose(res.Plan, res.Style, res.Seed), nil
	})
	res.Sheets = sheets
	res.Stats.SheetCount = len(sheets)
	res.Stats.GlyphCount, _ = compose.Count(sheets)

	opts.Logger.Info("composed sheets",
		"sheets", res.Stats.SheetCount,
		"glyphs", res.Stats.GlyphCount,
		"duration", res.Stats.ComposeTime)

	// Stage 5: Render
	artifacts, err := runStage(ctx, observability.StageRender, &res.Stats.RenderTime, func() (map[string][][]byte, error) {
		a, hit, err := r.RenderWithCacheInfo(ctx, res, opts)
		res.CacheInfo.RenderHit = hit
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts = artifacts

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", res.CacheInfo.RenderHit,
		"duration", res.Stats.RenderTime)

	r.record(ctx, res, opts)
	return res, nil
}

// Plan runs extract → style → plan without composing or rendering.
func (r *Runner) Plan(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	res, err := r.prepare(ctx, opts)
	if err != nil {
		return nil, err
	}
	opts.Formats = nil
	r.record(ctx, res, opts)
	return res, nil
}

// Regenerate renders doc again with a new seed. The plan is never
// recomputed.
func (r *Runner) Regenerate(ctx context.Context, doc pkgio.Document, s int64, opts Options) (*Result, error) {
	opts.Input, opts.Data, opts.Pages = "", nil, nil
	opts.Document = &doc
	opts.Seed = s
	opts.validated = false
	return r.Execute(ctx, opts)
}

// prepare runs the extract, style and plan stages.
func (r *Runner) prepare(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{
		Source:    opts.Name,
		Seed:      seed.Seed(opts.Seed),
		Artifacts: make(map[string][][]byte),
	}

	if opts.Document != nil {
		r.prepareFromDocument(ctx, res, opts)
	} else {
		if err := r.prepareFromInput(ctx, res, opts); err != nil {
			return nil, err
		}
	}

	res.Solutions = plan.AttachPlan(plan.SplitSolutions(res.Pages), res.Plan)
	res.Stats.PageCount = len(res.Plan.Pages)
	res.Stats.LineCount = res.Plan.LineCount()
	if h, err := cache.HashJSON(res.Plan); err == nil {
		res.PlanHash = h
	}
	observability.Pipeline().OnPlanOrigin(ctx, string(res.Plan.Origin), res.Stats.PageCount, res.Stats.LineCount)
	return res, nil
}

func (r *Runner) prepareFromInput(ctx context.Context, res *Result, opts Options) error {
	// Stage 1: Extract
	doc, err := runStage(ctx, observability.StageExtract, &res.Stats.ExtractTime, func() (extract.Document, error) {
		d, hit, err := r.ExtractWithCacheInfo(ctx, opts)
		res.CacheInfo.ExtractHit = hit
		return d, err
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		opts.Logger.Warn("extraction failed, planning an empty page", "source", opts.Name, "error", err)
		res.Warnings = append(res.Warnings, fmt.Sprintf("extraction failed: %v", err))
		doc = extract.Document{Source: opts.Name, Kind: extract.KindUnknown, Pages: []string{""}}
	}
	res.Kind = doc.Kind
	res.Pages = doc.Pages

	opts.Logger.Info("extracted text",
		"source", opts.Name,
		"kind", doc.Kind,
		"pages", len(doc.Pages),
		"cached", res.CacheInfo.ExtractHit,
		"duration", res.Stats.ExtractTime)

	r.resolveStyle(ctx, res, opts)

	// Stage 3: Plan
	res.Plan, _ = runStage(ctx, observability.StagePlan, &res.Stats.PlanTime, func() (plan.WritingPlan, error) {
		p, hit := r.PlanWithCacheInfo(ctx, res.Pages, opts)
		res.CacheInfo.PlanHit = hit
		return p, nil
	})
	if r.AI.Available() && res.Plan.Origin != plan.OriginAI {
		res.Warnings = append(res.Warnings, "AI planning failed, used the local planner")
	}

	opts.Logger.Info("planned layout",
		"origin", res.Plan.Origin,
		"pages", len(res.Plan.Pages),
		"lines", res.Plan.LineCount(),
		"cached", res.CacheInfo.PlanHit,
		"duration", res.Stats.PlanTime)
	return ctx.Err()
}

func (r *Runner) prepareFromDocument(ctx context.Context, res *Result, opts Options) {
	doc := opts.Document
	res.Kind = KindPlan
	res.Pages = doc.Pages

	if opts.Style == nil && opts.StylePrompt == "" {
		res.Style, res.StyleSource = doc.Style, ai.StyleExplicit
	} else {
		r.resolveStyle(ctx, res, opts)
	}

	res.Plan, _ = runStage(ctx, observability.StagePlan, &res.Stats.PlanTime, func() (plan.WritingPlan, error) {
		return doc.Plan(), nil
	})
	opts.Logger.Info("loaded plan",
		"origin", res.Plan.Origin,
		"pages", len(res.Plan.Pages),
		"lines", res.Plan.LineCount(),
		"seed", res.Seed)
}

// resolveStyle runs the style stage. It never fails.
func (r *Runner) resolveStyle(ctx context.Context, res *Result, opts Options) {
	type styled struct {
		cfg    style.Config
		source ai.StyleSource
	}
	s, _ := runStage(ctx, observability.StageStyle, &res.Stats.StyleTime, func() (styled, error) {
		cfg, src, hit := r.StyleWithCacheInfo(ctx, opts)
		res.CacheInfo.StyleHit = hit
		return styled{cfg, src}, nil
	})
	res.Style, res.StyleSource = s.cfg, s.source
	if r.AI.Available() && opts.StylePrompt != "" && opts.Style == nil && s.source != ai.StyleFromAI {
		res.Warnings = append(res.Warnings, "AI style inference failed, used keyword rules")
	}
	opts.Logger.Debug("resolved style", "source", s.source, "style", s.cfg)
}

// record appends the run to the history store and sets res.ID.
func (r *Runner) record(ctx context.Context, res *Result, opts Options) {
	e := history.NewEntry(res.Source)
	res.ID = e.ID
	if opts.NoHistory {
		return
	}
	e.Kind = string(res.Kind)
	e.Pages = res.Stats.PageCount
	e.Lines = res.Stats.LineCount
	e.Sheets = res.Stats.SheetCount
	e.Seed = int64(res.Seed)
	e.Style = res.Style
	e.StyleSource = string(res.StyleSource)
	e.PlanOrigin = string(res.Plan.Origin)
	e.PlanHash = res.PlanHash
	e.Formats = opts.Formats
	e.Outputs = opts.Outputs
	e.Duration = res.Stats.Total()
	if err := r.History.Add(ctx, e); err != nil {
		opts.Logger.Warn("could not record run", "id", e.ShortID(), "error", err)
	}
}

// Close releases the cache and the history store.
func (r *Runner) Close() error {
	var first error
	if r.Cache != nil {
		first = r.Cache.Close()
	}
	if r.History != nil {
		if err := r.History.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// runStage times fn and reports it to the pipeline hooks.
func runStage[T any](ctx context.Context, stage observability.Stage, d *time.Duration, fn func() (T, error)) (T, error) {
	observability.Pipeline().OnStageStart(ctx, stage)
	start := time.Now()
	v, err := fn()
	*d = time.Since(start)
	observability.Pipeline().OnStageComplete(ctx, stage, *d, err)
	return v, err
}

// getJSON decodes a cached value into v and reports the lookup to the
// cache hooks. Read and decode failures count as misses.
func (r *Runner) getJSON(ctx context.Context, keyType, key string, v any) bool {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "type", keyType, "error", err)
	}
	if err != nil || !hit || json.Unmarshal(data, v) != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true
}

// setJSON stores v. Cache write failures are logged and otherwise ignored.
func (r *Runner) setJSON(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

package pipeline

import (
	"context"

	"github.com/matzehuels/handscript/pkg/ai"
	"github.com/matzehuels/handscript/pkg/cache"
	"github.com/matzehuels/handscript/pkg/core/plan"
	"github.com/matzehuels/handscript/pkg/core/seed"
	"github.com/matzehuels/handscript/pkg/core/style"
)

type cachedStyle struct {
	Style  style.Config   `json:"style"`
	Source ai.StyleSource `json:"source"`
}

// StyleWithCacheInfo resolves the run's style. An explicit style wins over
// a prompt. Only model answers are cached; keyword rules are cheaper to
// rerun than to look up.
func (r *Runner) StyleWithCacheInfo(ctx context.Context, opts Options) (style.Config, ai.StyleSource, bool) {
	if opts.Style != nil {
		return style.Normalize(*opts.Style), ai.StyleExplicit, false
	}
	if opts.StylePrompt == "" || !r.AI.Available() {
		cfg, src := r.AI.InferStyle(ctx, opts.StylePrompt)
		return cfg, src, false
	}

	key := r.Keyer.StyleKey(opts.StylePrompt, r.AI.Provider(), r.AI.Model())
	if !opts.Refresh {
		var c cachedStyle
		if r.getJSON(ctx, "style", key, &c) {
			return style.Normalize(c.Style), c.Source, true
		}
	}

	cfg, src := r.AI.InferStyle(ctx, opts.StylePrompt)
	if src == ai.StyleFromAI {
		r.setJSON(ctx, "style", key, cachedStyle{cfg, src}, cache.TTLStyle)
	}
	return cfg, src, false
}

// PlanWithCacheInfo plans pages and reports whether the plan came from
// cache. The AI draft, when there is one, goes through the validator; the
// local planner covers every other case. Only AI plans are cached so that
// a failed request is retried on the next run.
func (r *Runner) PlanWithCacheInfo(ctx context.Context, pages []string, opts Options) (plan.WritingPlan, bool) {
	s := seed.Seed(opts.Seed)
	if !r.AI.Available() {
		return plan.PlanDocument(pages, nil, s), false
	}

	textHash, err := cache.HashJSON(pages)
	if err != nil {
		return plan.PlanDocument(pages, nil, s), false
	}
	key := r.Keyer.PlanKey(textHash, cache.PlanKeyOpts{
		Provider: r.AI.Provider(),
		Model:    r.AI.Model(),
		Seed:     opts.Seed,
	})
	if !opts.Refresh {
		var p plan.WritingPlan
		if r.getJSON(ctx, "plan", key, &p) && len(p.Pages) > 0 {
			return plan.Normalize(p), true
		}
	}

	p := plan.PlanDocument(pages, r.AI.PlanLayout(ctx, pages), s)
	if p.Origin == plan.OriginAI {
		r.setJSON(ctx, "plan", key, p, cache.TTLPlan)
	}
	return p, false
}

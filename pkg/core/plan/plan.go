package plan

import "github.com/matzehuels/handscript/pkg/core/seed"

// PlanDocument returns a complete plan for pages. A draft with pages is
// validated and returned; a nil or empty draft selects the fallback plan.
func PlanDocument(pages []string, draft *Draft, s seed.Seed) WritingPlan {
	if draft != nil && len(draft.Pages) > 0 {
		return Validate(draft, pages, s)
	}
	return Fallback(pages, s)
}

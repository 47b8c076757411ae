// Package plan builds and validates WritingPlans.
//
// # Overview
//
// A [WritingPlan] describes how a document is laid out as handwriting: pages
// of [LinePlan]s with indentation, alignment, emphasis, word spacing,
// fraction and heading detection, baseline variation, slant and pressure,
// plus per-page margins, line spacing, slant, writing speed and a fatigue
// level that never decreases from one page to the next.
//
// # Planning
//
// [PlanDocument] returns a complete plan for a list of page texts. An
// externally supplied [Draft] (for example from an AI planner) is validated
// and returned when it has pages; otherwise [Fallback] synthesizes a plan
// from local heuristics:
//
//	p := plan.PlanDocument(pages, draft, seed.Seed(42))
//
// The structure of a fallback plan (line count, classification flags)
// depends only on the text. The seed changes only numeric jitter.
//
// # Validation
//
// [Validate] is the single place where defaults are filled in and values
// are clamped into range. Every other package assumes a fully populated
// plan. Validation is idempotent:
//
//	p := plan.Validate(d, pages, s)
//	p == plan.Validate(p.Draft(), pages, s)
package plan

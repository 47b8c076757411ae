// Package io reads and writes plan files.
//
// A plan file stores everything needed to regenerate a document without
// extracting or planning it again: the page texts, the writing plan, the
// style and the seed of the run that produced it. JSON and YAML encodings
// are supported and chosen by file extension:
//
//	version: 1
//	seed: 42
//	style: {slant: 0, spacing: 1, size: 1, weight: 1, messiness: 0.2, ...}
//	pages:
//	  - "Q1. Define momentum\n..."
//	plan:
//	  pages:
//	    - lines:
//	        - content: Q1. Define momentum
//	          isQuestionNumber: true
//
// The plan is read as a [plan.Draft], so a hand-edited file may omit any
// field; [Document.Plan] runs it through plan.Validate, which fills defaults
// and clamps ranges. Re-rendering an imported plan with a different seed
// changes only the jitter of the output, never the plan.
package io

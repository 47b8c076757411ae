// Package pkg provides the core libraries for Handscript, a seeded
// handwriting renderer for worked homework solutions.
//
// # Overview
//
// Handscript turns typed text, PDFs or photographed pages into pages that
// look written by hand on ruled paper. Every random choice derives from a
// single seed, so the same input, style and seed always produce the same
// sheets. The pkg directory is organized into these areas:
//
//  1. [core] - Domain logic (seeds, styles, markup, plans, glyphs, composition)
//  2. [render/sink] - Output renderers (SVG, PNG, PDF, JSON)
//  3. [ai] - Optional model-backed style inference and layout planning
//  4. [extract] - Text extraction from plain text, PDFs and images
//  5. [pipeline] - Orchestration (extract → style → plan → compose → render)
//  6. [io] - Plan documents on disk (JSON and YAML)
//  7. [cache], [history] - Result caching and run records
//
// # Architecture
//
// The data flow through Handscript:
//
//	Text / PDF / image
//	         ↓
//	    [extract] package (pages of text)
//	         ↓
//	    [core/plan] package (writing plan, AI-drafted or fallback)
//	         ↓
//	    [core/compose] package (sheets of positioned glyphs)
//	         ↓
//	    [render/sink] package (SVG/PNG/PDF/JSON)
//
// # Quick Start
//
// Plan a page without a model and render it to SVG:
//
//	import (
//	    "github.com/matzehuels/handscript/pkg/core/compose"
//	    "github.com/matzehuels/handscript/pkg/core/plan"
//	    "github.com/matzehuels/handscript/pkg/core/seed"
//	    "github.com/matzehuels/handscript/pkg/core/style"
//	    "github.com/matzehuels/handscript/pkg/render/sink"
//	)
//
//	s := seed.Seed(42)
//	p := plan.Fallback([]string{"1. x = **3/4** + 1/4"}, s)
//	sheets := compose.Compose(p, style.Default(), s)
//	svg := sink.RenderSVG(sheets[0])
//
// Most callers use [pipeline.Runner] instead, which adds extraction,
// caching, AI planning and history:
//
//	runner := &pipeline.Runner{Cache: cache.NewNullCache(), Keyer: cache.NewDefaultKeyer()}
//	res, err := runner.Execute(ctx, pipeline.Options{Text: text, Formats: []string{"pdf"}})
//
// # Determinism
//
// Seeds are split hierarchically with [seed.Page], [seed.Line],
// [seed.Segment], [seed.Word] and [seed.Char]. A page never reads the
// random stream of another page, so editing one page leaves the others
// unchanged.
//
// # Errors
//
// Operations return [errors.Error] values carrying a machine-readable
// code. The CLI and HTTP server map codes to exit messages and status
// codes.
//
// [core]: https://pkg.go.dev/github.com/matzehuels/handscript/pkg/core
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/handscript/pkg/render/sink
// [ai]: https://pkg.go.dev/github.com/matzehuels/handscript/pkg/ai
// [extract]: https://pkg.go.dev/github.com/matzehuels/handscript/pkg/extract
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/handscript/pkg/pipeline
// [io]: https://pkg.go.dev/github.com/matzehuels/handscript/pkg/io
// [cache]: https://pkg.go.dev/github.com/matzehuels/handscript/pkg/cache
// [history]: https://pkg.go.dev/github.com/matzehuels/handscript/pkg/history
package pkg

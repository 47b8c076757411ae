// Package pipeline runs the handscript document pipeline.
//
// The same runner backs the CLI and the HTTP server so both entry points
// cache, log and degrade the same way.
//
// # Architecture
//
// A run has five stages:
//
//  1. Extract: read page text from a text file, PDF or image
//  2. Style: resolve a style from an explicit config or a description
//  3. Plan: ask the AI planner for a layout and validate it, or fall back
//  4. Compose: lay every character out on ruled sheets
//  5. Render: write SVG, PNG, PDF or JSON
//
// Extraction, style inference and planning call collaborators that may be
// missing or failing. Such failures never fail a run: extraction falls back
// to an empty page, style inference to keyword rules or the default style,
// and planning to the seeded local planner. Each degradation is recorded in
// [Result.Warnings].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	runner.AI = ai.Open(cfg.AI, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:       "homework.pdf",
//	    StylePrompt: "messy blue cursive",
//	    Formats:     []string{"svg", "pdf"},
//	})
//	pdf := result.Artifacts["pdf"][0]
//
// Regenerate a saved plan with a new seed, without re-planning:
//
//	doc, _ := pkgio.Import("plan.json")
//	result, err := runner.Execute(ctx, pipeline.Options{Document: &doc, Seed: 7})
package pipeline

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/handscript/pkg/ai"
	"github.com/matzehuels/handscript/pkg/cache"
	"github.com/matzehuels/handscript/pkg/core/compose"
	"github.com/matzehuels/handscript/pkg/core/plan"
	"github.com/matzehuels/handscript/pkg/core/seed"
	"github.com/matzehuels/handscript/pkg/core/style"
	"github.com/matzehuels/handscript/pkg/errors"
	"github.com/matzehuels/handscript/pkg/extract"
	pkgio "github.com/matzehuels/handscript/pkg/io"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSeed is used when no seed is given.
	DefaultSeed int64 = 42

	// DefaultScale is the PNG scale factor.
	DefaultScale = 1.5

	// MaxScale bounds the PNG scale factor.
	MaxScale = 4.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON}

// PageSeparator splits raw text input into pages.
const PageSeparator = "\f"

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run. Exactly one input must be set:
// Input, Data, Pages or Document.
type Options struct {
	// Input is a path to a text file, PDF or image.
	Input string `json:"input,omitempty"`

	// Data holds document bytes; Name is used for type detection and
	// history.
	Data []byte `json:"-"`
	Name string `json:"name,omitempty"`

	// Pages is already extracted page text.
	Pages []string `json:"pages,omitempty"`

	// Document is a saved plan. A run from a document never re-plans; only
	// the seed and, when set, the style change.
	Document *pkgio.Document `json:"-"`

	OCRLanguage string `json:"ocr_language,omitempty"`

	// Style overrides StylePrompt.
	Style       *style.Config `json:"style,omitempty"`
	StylePrompt string        `json:"style_prompt,omitempty"`

	Seed int64 `json:"seed,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Blank   bool     `json:"blank,omitempty"` // unruled paper
	Scale   float64  `json:"scale,omitempty"` // PNG only
	Title   string   `json:"title,omitempty"`

	// Refresh bypasses cached extraction, style and plan results.
	Refresh bool `json:"refresh,omitempty"`

	// Outputs are the paths the caller writes artifacts to. They are only
	// recorded in history.
	Outputs []string `json:"-"`

	// NoHistory skips recording the run.
	NoHistory bool `json:"-"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ID identifies the run in the history store.
	ID string

	Source string
	Kind   extract.Kind
	Pages  []string

	Seed        seed.Seed
	Style       style.Config
	StyleSource ai.StyleSource

	Plan     plan.WritingPlan
	PlanHash string

	// Solutions groups the extracted text into question records, each with
	// the plan lines that write it.
	Solutions []plan.Solution

	Sheets []compose.Sheet

	// Artifacts holds rendered outputs keyed by format. SVG and PNG have one
	// entry per sheet; PDF and JSON have a single entry.
	Artifacts map[string][][]byte

	// Warnings lists the degraded modes the run fell into.
	Warnings []string

	Stats     Stats
	CacheInfo CacheInfo
}

// Document returns the run's plan in its file form, ready for export and
// later regeneration.
func (r *Result) Document() pkgio.Document {
	return pkgio.NewDocument(r.Plan, r.Pages, r.Style, r.Seed)
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PageCount   int
	LineCount   int
	SheetCount  int
	GlyphCount  int
	ExtractTime time.Duration
	StyleTime   time.Duration
	PlanTime    time.Duration
	ComposeTime time.Duration
	RenderTime  time.Duration
}

// Total returns the summed stage durations.
func (s Stats) Total() time.Duration {
	return s.ExtractTime + s.StyleTime + s.PlanTime + s.ComposeTime + s.RenderTime
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ExtractHit bool
	StyleHit   bool
	PlanHit    bool
	RenderHit  bool // every requested format came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.validateInput(); err != nil {
		return err
	}
	if err := errors.ValidateStylePrompt(o.StylePrompt); err != nil {
		return err
	}
	if o.Seed == 0 && o.Document != nil {
		o.Seed = o.Document.Seed
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if err := errors.ValidateSeed(o.Seed); err != nil {
		return err
	}
	if o.Style != nil {
		cfg := style.Normalize(*o.Style)
		o.Style = &cfg
	}
	if o.OCRLanguage == "" {
		o.OCRLanguage = extract.DefaultOCRLanguage
	}
	if err := o.validateRender(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

func (o *Options) validateInput() error {
	n := 0
	for _, set := range []bool{o.Input != "", o.Data != nil, o.Pages != nil, o.Document != nil} {
		if set {
			n++
		}
	}
	switch {
	case n == 0:
		return errors.New(errors.ErrCodeInvalidInput, "no input: set a file, data, pages or a plan document")
	case n > 1:
		return errors.New(errors.ErrCodeInvalidInput, "only one input may be set")
	}
	if o.Input != "" {
		if err := errors.ValidateInputPath(o.Input); err != nil {
			return err
		}
		if o.Name == "" {
			o.Name = filepath.Base(o.Input)
		}
	}
	if o.Name == "" {
		switch {
		case o.Document != nil:
			o.Name = "plan"
		case o.Pages != nil:
			o.Name = "text"
		default:
			o.Name = "document"
		}
	}
	if o.Document != nil && len(o.Document.Pages) == 0 && o.Document.Draft == nil {
		return errors.New(errors.ErrCodeInvalidPlan, "plan document has no pages and no plan")
	}
	return nil
}

func (o *Options) validateRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	seen := make(map[string]bool, len(o.Formats))
	formats := o.Formats[:0:0]
	for _, f := range o.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if err := errors.ValidateFormat(f, ValidFormats); err != nil {
			return err
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	o.Formats = formats

	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 || o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidInput, "scale %.2f out of range (0, %.0f]", o.Scale, MaxScale)
	}
	return nil
}

// ArtifactKeyOpts returns cache key options for rendering format.
func (o *Options) ArtifactKeyOpts(format, styleHash string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:    format,
		StyleHash: styleHash,
		Seed:      o.Seed,
		Paper:     !o.Blank,
		Title:     o.Title,
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}

// SplitPages splits raw text on form feeds. Text without form feeds is a
// single page.
func SplitPages(text string) []string {
	return strings.Split(text, PageSeparator)
}

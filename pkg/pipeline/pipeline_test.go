package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tmc/langchaingo/llms"

	"github.com/matzehuels/handscript/pkg/ai"
	"github.com/matzehuels/handscript/pkg/cache"
	"github.com/matzehuels/handscript/pkg/core/plan"
	"github.com/matzehuels/handscript/pkg/core/style"
	"github.com/matzehuels/handscript/pkg/errors"
	"github.com/matzehuels/handscript/pkg/extract"
	"github.com/matzehuels/handscript/pkg/history"
	pkgio "github.com/matzehuels/handscript/pkg/io"
	"github.com/matzehuels/handscript/pkg/observability"
)

var notes = []string{
	"Q1. Define momentum\nMomentum is mass times velocity.\n\nCompute 3/4 of the total",
	"Kinetic Energy\nAns. SQRT[a + b]",
}

// fakeModel answers the style prompt and the planning prompt.
type fakeModel struct {
	style string
	plan  string
	err   error
	calls int
}

func (f *fakeModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	system := msgs[0].Parts[0].(llms.TextContent).Text
	reply := f.style
	if strings.Contains(system, "ruled notebook") {
		reply = f.plan
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: reply}}}, nil
}

func (f *fakeModel) Call(context.Context, string, ...llms.CallOption) (string, error) {
	return "", stderrors.New("not implemented")
}

func newFakeModel() *fakeModel {
	return &fakeModel{
		style: `{"slant": 0.5, "messiness": 0.9, "color": "#1a1a1a"}`,
		plan: "```json\n" + `{"pages": [{"lines": [
			{"content": "Q1. Define momentum", "isQuestionNumber": true, "indent": 5},
			{"content": "p = m v", "wordSpacing": "tight"}]}]}` + "\n```",
	}
}

func aiRunner(t *testing.T, m llms.Model, c cache.Cache) *Runner {
	t.Helper()
	r := NewRunner(c, nil, log.New(io.Discard))
	r.AI = ai.NewClient(m, ai.Config{Provider: ai.ProviderOllama, Attempts: 1, RetryDelay: time.Millisecond}, nil)
	return r
}

func quietRunner() *Runner {
	return NewRunner(nil, nil, log.New(io.Discard))
}

func TestValidateAndSetDefaults(t *testing.T) {
	file := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(file, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no input", Options{}, errors.ErrCodeInvalidInput},
		{"two inputs", Options{Pages: notes, Data: []byte("x")}, errors.ErrCodeInvalidInput},
		{"missing file", Options{Input: filepath.Join(t.TempDir(), "nope.pdf")}, errors.ErrCodeFileNotFound},
		{"bad format", Options{Pages: notes, Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad scale", Options{Pages: notes, Scale: 10}, errors.ErrCodeInvalidInput},
		{"bad seed", Options{Pages: notes, Seed: errors.MaxSeed + 1}, errors.ErrCodeInvalidSeed},
		{"long prompt", Options{Pages: notes, StylePrompt: strings.Repeat("a", errors.MaxPromptLength+1)}, errors.ErrCodeInvalidStyle},
		{"empty document", Options{Document: &pkgio.Document{}}, errors.ErrCodeInvalidPlan},
		{"file", Options{Input: file}, ""},
		{"pages", Options{Pages: notes}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg := style.Config{Slant: 9, Color: "nope"}
	opts := Options{Pages: notes, Formats: []string{" SVG", "pdf", "svg"}, Style: &cfg}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(opts.Formats, []string{"svg", "pdf"}) {
		t.Errorf("Formats = %v", opts.Formats)
	}
	if opts.Seed != DefaultSeed || opts.Scale != DefaultScale || opts.OCRLanguage != extract.DefaultOCRLanguage {
		t.Errorf("defaults not applied: %+v", opts)
	}
	if opts.Name != "text" || opts.Logger == nil {
		t.Errorf("Name = %q, Logger = %v", opts.Name, opts.Logger)
	}
	if opts.Style.Slant != 1 || opts.Style.Color != style.DefaultColor {
		t.Errorf("style not normalized: %+v", *opts.Style)
	}

	before := opts
	if err := opts.ValidateAndSetDefaults(); err != nil || !reflect.DeepEqual(before, opts) {
		t.Error("ValidateAndSetDefaults is not idempotent")
	}

	doc := Options{Document: &pkgio.Document{Seed: 99, Pages: notes}}
	_ = doc.ValidateAndSetDefaults()
	if doc.Seed != 99 {
		t.Errorf("document seed not used: %d", doc.Seed)
	}
}

func TestExecuteOffline(t *testing.T) {
	res, err := quietRunner().Execute(context.Background(), Options{
		Pages:       notes,
		StylePrompt: "messy red cursive",
		Formats:     []string{FormatSVG, FormatPDF, FormatJSON},
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.Plan.Origin != plan.OriginFallback || len(res.Plan.Pages) != len(notes) {
		t.Errorf("plan origin %s with %d pages", res.Plan.Origin, len(res.Plan.Pages))
	}
	if res.StyleSource != ai.StyleFromKeyword || res.Style.Color != "#b3261e" || res.Style.Messiness != 0.7 {
		t.Errorf("style %s: %+v", res.StyleSource, res.Style)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("offline run should not warn: %v", res.Warnings)
	}
	if res.ID == "" || res.PlanHash == "" {
		t.Error("missing ID or plan hash")
	}

	if n := len(res.Artifacts[FormatSVG]); n != len(res.Sheets) || n == 0 {
		t.Errorf("%d SVG files for %d sheets", n, len(res.Sheets))
	}
	if !bytes.HasPrefix(res.Artifacts[FormatPDF][0], []byte("%PDF")) {
		t.Error("PDF artifact is not a PDF")
	}
	if len(res.Artifacts[FormatJSON]) != 1 {
		t.Error("JSON should be a single file")
	}

	s := res.Stats
	if s.PageCount != 2 || s.LineCount != res.Plan.LineCount() || s.SheetCount != len(res.Sheets) || s.GlyphCount == 0 {
		t.Errorf("stats = %+v", s)
	}
}

func TestPlanSolutions(t *testing.T) {
	res, err := quietRunner().Plan(context.Background(), Options{Pages: notes})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Solutions) != 1 {
		t.Fatalf("solutions = %d, want 1: %+v", len(res.Solutions), res.Solutions)
	}
	q := res.Solutions[0]
	if q.ID != "q1" || q.QuestionNumber != "1" || q.QuestionText != "Q1. Define momentum" {
		t.Errorf("question = %+v", q)
	}
	if q.PageNumber != 1 || len(q.LinePlans) < 4 || q.LinePlans[0].Content != "Q1. Define momentum" {
		t.Errorf("attached lines: page %d, %d lines", q.PageNumber, len(q.LinePlans))
	}
	if last := q.LinePlans[len(q.LinePlans)-1]; last.Content != "Ans. SQRT[a + b]" {
		t.Errorf("last attached line = %q", last.Content)
	}
}

func TestExecuteDeterministic(t *testing.T) {
	run := func(seed int64) *Result {
		res, err := quietRunner().Execute(context.Background(), Options{Pages: notes, Seed: seed})
		if err != nil {
			t.Fatal(err)
		}
		return res
	}

	a, b, c := run(7), run(7), run(8)
	if !reflect.DeepEqual(a.Artifacts, b.Artifacts) {
		t.Error("same seed produced different output")
	}
	if reflect.DeepEqual(a.Artifacts, c.Artifacts) {
		t.Error("different seeds produced identical output")
	}
	if a.Plan.LineCount() != c.Plan.LineCount() {
		t.Error("seed changed plan structure")
	}
}

func TestExecuteWithAI(t *testing.T) {
	m := newFakeModel()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := aiRunner(t, m, c)
	opts := Options{Data: []byte(notes[0]), Name: "notes.txt", StylePrompt: "messy"}

	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Plan.Origin != plan.OriginAI || res.Plan.LineCount() != 2 {
		t.Errorf("plan origin %s with %d lines", res.Plan.Origin, res.Plan.LineCount())
	}
	if res.StyleSource != ai.StyleFromAI || res.Style.Slant != 0.5 || res.Style.Color != "#1a1a1a" {
		t.Errorf("style %s: %+v", res.StyleSource, res.Style)
	}
	if res.CacheInfo != (CacheInfo{}) {
		t.Errorf("first run hit cache: %+v", res.CacheInfo)
	}
	calls := m.calls

	again, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	want := CacheInfo{ExtractHit: true, StyleHit: true, PlanHit: true, RenderHit: true}
	if again.CacheInfo != want {
		t.Errorf("second run CacheInfo = %+v", again.CacheInfo)
	}
	if m.calls != calls {
		t.Errorf("model called %d more times", m.calls-calls)
	}
	if again.PlanHash != res.PlanHash || !reflect.DeepEqual(again.Artifacts, res.Artifacts) {
		t.Error("cached run differs from fresh run")
	}

	opts.Refresh = true
	fresh, _ := r.Execute(context.Background(), opts)
	if fresh.CacheInfo.PlanHit || fresh.CacheInfo.ExtractHit || fresh.CacheInfo.StyleHit {
		t.Errorf("refresh used cache: %+v", fresh.CacheInfo)
	}
}

func TestExecuteAIFailureDegrades(t *testing.T) {
	m := &fakeModel{err: stderrors.New("boom")}
	res, err := aiRunner(t, m, nil).Execute(context.Background(), Options{Pages: notes, StylePrompt: "bold"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Plan.Origin != plan.OriginFallback {
		t.Errorf("origin = %s", res.Plan.Origin)
	}
	if res.StyleSource != ai.StyleFromKeyword || res.Style.Weight != 1.6 {
		t.Errorf("style %s: %+v", res.StyleSource, res.Style)
	}
	if len(res.Warnings) != 2 {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

type failingExtractor struct{}

func (failingExtractor) Extract(context.Context, string, []byte) (extract.Document, error) {
	return extract.Document{}, errors.New(errors.ErrCodeExtraction, "unreadable")
}

func TestExtractionFailureDegrades(t *testing.T) {
	r := quietRunner()
	r.Extractor = failingExtractor{}
	res, err := r.Execute(context.Background(), Options{Data: []byte("%PDF-1.4 broken"), Name: "scan.pdf"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pages) != 1 || res.Pages[0] != "" || res.Kind != extract.KindUnknown {
		t.Errorf("pages = %q, kind = %s", res.Pages, res.Kind)
	}
	if len(res.Plan.Pages) != 1 || len(res.Sheets) == 0 {
		t.Error("degraded run did not produce a sheet")
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "unreadable") {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := quietRunner()
	r.Extractor = failingExtractor{}
	if _, err := r.Execute(ctx, Options{Data: []byte("x")}); !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestRegenerate(t *testing.T) {
	r := quietRunner()
	ctx := context.Background()
	cfg := style.Default()
	cfg.Slant = -0.5

	first, err := r.Execute(ctx, Options{Pages: notes, Seed: 3, Style: &cfg})
	if err != nil {
		t.Fatal(err)
	}
	doc := first.Document()

	again, err := r.Regenerate(ctx, doc, 11, Options{Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatal(err)
	}
	if again.Seed != 11 || again.Kind != KindPlan {
		t.Errorf("seed %d kind %s", again.Seed, again.Kind)
	}
	if again.Style != first.Style || again.StyleSource != ai.StyleExplicit {
		t.Errorf("style not carried over: %+v", again.Style)
	}
	for i, pg := range first.Plan.Pages {
		for j, l := range pg.Lines {
			if again.Plan.Pages[i].Lines[j].Content != l.Content {
				t.Fatalf("page %d line %d changed", i, j)
			}
		}
	}
	if reflect.DeepEqual(first.Artifacts[FormatSVG], again.Artifacts[FormatSVG]) {
		t.Error("new seed produced identical sheets")
	}

	same, _ := r.Regenerate(ctx, doc, 3, Options{})
	if !reflect.DeepEqual(same.Artifacts[FormatSVG], first.Artifacts[FormatSVG]) {
		t.Error("regenerating with the original seed changed the output")
	}
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	store, err := history.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner()
	r.History = store

	res, err := r.Plan(ctx, Options{Pages: notes, Seed: 5, Outputs: []string{"plan.json"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Sheets) != 0 || len(res.Artifacts) != 0 {
		t.Error("Plan should not compose or render")
	}

	e, err := store.Get(ctx, res.ID)
	if err != nil || e == nil {
		t.Fatalf("entry %s: %v, %v", res.ID, e, err)
	}
	if e.Seed != 5 || e.PlanOrigin != string(plan.OriginFallback) || e.Pages != 2 || e.Formats != nil {
		t.Errorf("entry = %+v", e)
	}
	if !reflect.DeepEqual(e.Outputs, []string{"plan.json"}) {
		t.Errorf("outputs = %v", e.Outputs)
	}

	if _, err := r.Execute(ctx, Options{Pages: notes, NoHistory: true}); err != nil {
		t.Fatal(err)
	}
	if list, _ := store.List(ctx, 0); len(list) != 1 {
		t.Errorf("NoHistory run was recorded: %d entries", len(list))
	}
}

type stageRecorder struct {
	observability.NoopPipelineHooks
	stages []observability.Stage
	origin string
}

func (s *stageRecorder) OnStageComplete(_ context.Context, st observability.Stage, _ time.Duration, _ error) {
	s.stages = append(s.stages, st)
}

func (s *stageRecorder) OnPlanOrigin(_ context.Context, origin string, _, _ int) {
	s.origin = origin
}

func TestStageHooks(t *testing.T) {
	rec := &stageRecorder{}
	observability.SetPipelineHooks(rec)
	t.Cleanup(observability.Reset)

	if _, err := quietRunner().Execute(context.Background(), Options{Pages: notes}); err != nil {
		t.Fatal(err)
	}
	want := []observability.Stage{
		observability.StageExtract,
		observability.StageStyle,
		observability.StagePlan,
		observability.StageCompose,
		observability.StageRender,
	}
	if !reflect.DeepEqual(rec.stages, want) {
		t.Errorf("stages = %v", rec.stages)
	}
	if rec.origin != string(plan.OriginFallback) {
		t.Errorf("origin = %q", rec.origin)
	}
}

func TestSplitPages(t *testing.T) {
	if got := SplitPages("one\ftwo"); !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Errorf("SplitPages = %q", got)
	}
	if got := SplitPages("only"); len(got) != 1 {
		t.Errorf("SplitPages = %q", got)
	}
}

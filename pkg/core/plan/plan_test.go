package plan

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/handscript/pkg/core/seed"
)

const sampleDoc = `Kinetic Energy

Q1. Define momentum
Ans. Momentum is the product of mass and velocity, p = m × v, measured in kg m/s.

Q2. Compute 3/4 of the total
(a) SQRT[16 + 9] = 5`

func TestAnalyzeLineFraction(t *testing.T) {
	l := AnalyzeLine("Compute 3/4 of the total", 0, 0, 0)
	if !l.IsFraction {
		t.Fatal("expected isFraction")
	}
	want := FractionParts{Numerator: "3", Denominator: "4", RemainingText: "Compute  of the total"}
	if l.FractionParts == nil || *l.FractionParts != want {
		t.Errorf("fractionParts = %+v, want %+v", l.FractionParts, want)
	}
	if l.WordSpacing != SpacingTight {
		t.Errorf("wordSpacing = %q, want tight", l.WordSpacing)
	}
}

func TestAnalyzeLineClassification(t *testing.T) {
	tests := []struct {
		content  string
		question bool
		heading  bool
		fraction bool
		indent   float64
		emphasis Emphasis
	}{
		{"Q1. Define momentum", true, false, false, 5, EmphasisNormal},
		{"Question 4 asks for speed", true, false, false, 5, EmphasisNormal},
		{"12. List the forces", true, false, false, 5, EmphasisNormal},
		{"(b) the second part", true, false, false, 5, EmphasisNormal},
		{"Ans. 42 newtons", true, false, false, 5, EmphasisNormal},
		{"Answer: yes", true, false, false, 5, EmphasisNormal},
		{"Kinetic Energy", false, true, false, 25, EmphasisUnderline},
		{"Half 1/2", false, true, true, 25, EmphasisUnderline},
		{"lowercase short", false, false, false, 25, EmphasisNormal},
		{"A very long capitalized sentence that is not a heading", false, false, false, 25, EmphasisNormal},
		{"", false, false, false, 25, EmphasisNormal},
	}
	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			l := AnalyzeLine(tt.content, 0, 0, 7)
			if l.IsQuestionNumber != tt.question || l.IsHeading != tt.heading || l.IsFraction != tt.fraction {
				t.Errorf("question=%v heading=%v fraction=%v, want %v %v %v",
					l.IsQuestionNumber, l.IsHeading, l.IsFraction, tt.question, tt.heading, tt.fraction)
			}
			if l.Indent != tt.indent || l.Emphasis != tt.emphasis {
				t.Errorf("indent=%v emphasis=%v, want %v %v", l.Indent, l.Emphasis, tt.indent, tt.emphasis)
			}
		})
	}
}

func TestBreakIntoLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{""}},
		{"blank only", "\n\n  \n", []string{""}},
		{"keeps spacer", "a\n\n\nb", []string{"a", "", "b"}},
		{"single newline", "a\nb", []string{"a", "b"}},
		{"trims edges", "\n\nhello\n\n", []string{"hello"}},
		{
			"wraps at 45",
			"the quick brown fox jumps over the lazy dog and keeps on running far away",
			[]string{"the quick brown fox jumps over the lazy dog", "and keeps on running far away"},
		},
		{
			"keeps marker group",
			"aaaaaaaaaa bbbbbbbbbb cccccccccc dddd SQRT[x + y + z] end",
			[]string{"aaaaaaaaaa bbbbbbbbbb cccccccccc dddd", "SQRT[x + y + z] end"},
		},
		{"dangling bracket", "open [ never closes here", []string{"open [ never closes here"}},
		{
			"plain brackets split",
			"aaaaaaaaaa bbbbbbbbbb cccccccccc dddd [x + y + z] end",
			[]string{"aaaaaaaaaa bbbbbbbbbb cccccccccc dddd [x + y", "+ z] end"},
		},
		{"long word stays whole", strings.Repeat("x", 60), []string{strings.Repeat("x", 60)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BreakIntoLines(tt.text, WrapWidth)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BreakIntoLines() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFallbackCompleteness(t *testing.T) {
	p := PlanDocument([]string{"Some text with no markers at all."}, nil, 42)
	if len(p.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(p.Pages))
	}
	if len(p.Pages[0].Lines) < 1 {
		t.Fatal("want at least one line")
	}
	if p.Origin != OriginFallback {
		t.Errorf("origin = %q", p.Origin)
	}
	for _, l := range p.Pages[0].Lines {
		if l.LineNumber == 0 || l.Alignment == "" || l.Emphasis == "" || l.WordSpacing == "" {
			t.Errorf("unpopulated line: %+v", l)
		}
	}
	if len(p.GlobalStyle.PersonalQuirks) == 0 {
		t.Error("global style quirks missing")
	}
}

func TestFallbackOnePagePerInput(t *testing.T) {
	p := PlanDocument([]string{"first", "", "   ", "fourth"}, nil, 1)
	if len(p.Pages) != 4 {
		t.Fatalf("pages = %d, want 4", len(p.Pages))
	}
	for i, pg := range p.Pages {
		if pg.PageNumber != i+1 || len(pg.Lines) == 0 {
			t.Errorf("page %d: number=%d lines=%d", i, pg.PageNumber, len(pg.Lines))
		}
	}
	if p.Pages[1].Lines[0].Content != "" {
		t.Error("empty page should have a blank spacer line")
	}
}

func TestFallbackDeterministic(t *testing.T) {
	pages := []string{sampleDoc, sampleDoc}
	a := PlanDocument(pages, nil, 99)
	b := PlanDocument(pages, nil, 99)
	if !reflect.DeepEqual(a, b) {
		t.Error("fallback plan not deterministic")
	}
}

func TestSeedChangesOnlyJitter(t *testing.T) {
	pages := []string{sampleDoc, "Page two\nwith 1/2 a line"}
	a := PlanDocument(pages, nil, 1)
	b := PlanDocument(pages, nil, 2)
	if len(a.Pages) != len(b.Pages) {
		t.Fatal("page count changed with seed")
	}
	jitterDiffers := false
	for i := range a.Pages {
		la, lb := a.Pages[i].Lines, b.Pages[i].Lines
		if len(la) != len(lb) {
			t.Fatalf("page %d line count changed with seed", i)
		}
		for j := range la {
			x, y := la[j], lb[j]
			if x.Content != y.Content || x.IsQuestionNumber != y.IsQuestionNumber ||
				x.IsHeading != y.IsHeading || x.IsFraction != y.IsFraction ||
				x.Indent != y.Indent || x.Emphasis != y.Emphasis || x.WordSpacing != y.WordSpacing {
				t.Errorf("structure changed at page %d line %d: %+v vs %+v", i, j, x, y)
			}
			if x.SlantAngle != y.SlantAngle {
				jitterDiffers = true
			}
		}
	}
	if !jitterDiffers {
		t.Error("expected numeric jitter to differ between seeds")
	}
}

func TestRangeInvariants(t *testing.T) {
	pages := make([]string, 15)
	for i := range pages {
		pages[i] = strings.Repeat("1 + 2 = 3 and a longer sentence here\n", 40)
	}
	p := PlanDocument(pages, nil, 5)
	prev := 0.0
	for _, pg := range p.Pages {
		if pg.FatigueLevel < 0 || pg.FatigueLevel > MaxFatigue {
			t.Fatalf("fatigue %v out of range", pg.FatigueLevel)
		}
		if pg.FatigueLevel < prev {
			t.Fatalf("fatigue decreased: %v < %v", pg.FatigueLevel, prev)
		}
		prev = pg.FatigueLevel
		for _, l := range pg.Lines {
			if l.PressureLevel < 0 || l.PressureLevel > 1 {
				t.Fatalf("pressure %v out of range", l.PressureLevel)
			}
			if l.BaselineVariation < 0 || l.BaselineVariation > 1 {
				t.Fatalf("baseline variation %v out of range", l.BaselineVariation)
			}
		}
	}
	if prev != MaxFatigue {
		t.Errorf("fatigue should reach the cap on page 15, got %v", prev)
	}
}

func TestValidateFillsDefaults(t *testing.T) {
	content := "Q3. what is FRAC[1|2]"
	d := &Draft{Pages: []DraftPage{
		{
			PageNumber: ptr(7),
			Lines: []DraftLine{
				{Content: &content, Alignment: ptr("diagonal")},
				{Content: ptr("1/8 of it"), IsFraction: ptr(true), PressureLevel: ptr(4.0)},
			},
			WritingSpeed: ptr("sprint"),
			FatigueLevel: ptr(0.9),
		},
		{MarginLeft: ptr(-10.0), FatigueLevel: ptr(0.1)},
	}}
	p := Validate(d, []string{"", "second page text"}, 3)

	if p.Origin != OriginAI {
		t.Errorf("origin = %q", p.Origin)
	}
	pg := p.Pages[0]
	if pg.PageNumber != 1 || pg.MarginLeft != DefaultMarginLeft || pg.LineSpacing != DefaultLineSpacing {
		t.Errorf("page defaults wrong: %+v", pg)
	}
	if pg.WritingSpeed != SpeedMedium || pg.FatigueLevel != MaxFatigue {
		t.Errorf("speed/fatigue = %q/%v", pg.WritingSpeed, pg.FatigueLevel)
	}
	l0 := pg.Lines[0]
	if l0.LineNumber != 1 || l0.Indent != DefaultIndent || l0.Alignment != AlignLeft || l0.PressureLevel != DefaultPressureLevel {
		t.Errorf("line defaults wrong: %+v", l0)
	}
	l1 := pg.Lines[1]
	if l1.PressureLevel != 1 || l1.FractionParts == nil || l1.FractionParts.Denominator != "8" {
		t.Errorf("fraction line = %+v", l1)
	}

	pg2 := p.Pages[1]
	if pg2.MarginLeft != 0 {
		t.Errorf("margin not clamped: %v", pg2.MarginLeft)
	}
	if pg2.FatigueLevel != MaxFatigue {
		t.Errorf("fatigue must not decrease: %v", pg2.FatigueLevel)
	}
	if len(pg2.Lines) == 0 || pg2.Lines[0].Content != "second page text" {
		t.Errorf("empty draft page should take fallback lines: %+v", pg2.Lines)
	}
	if !reflect.DeepEqual(p.GlobalStyle, DefaultGlobalStyle()) {
		t.Errorf("global style = %+v", p.GlobalStyle)
	}
}

func TestValidateWrapsLongLines(t *testing.T) {
	long := "Q4. " + strings.Repeat("momentum ", 15) + "is 3/4 conserved"
	d := &Draft{Pages: []DraftPage{{Lines: []DraftLine{
		{Content: &long, IsQuestionNumber: ptr(true), IsFraction: ptr(true), Indent: ptr(5.0)},
		{Content: ptr("short")},
	}}}}
	lines := Validate(d, nil, 2).Pages[0].Lines

	if len(lines) < 4 {
		t.Fatalf("lines = %d, want the long line wrapped", len(lines))
	}
	last := lines[len(lines)-1]
	if last.Content != "short" || last.LineNumber != len(lines) {
		t.Errorf("trailing line = %+v", last)
	}
	var text []string
	for i, l := range lines[:len(lines)-1] {
		text = append(text, l.Content)
		if n := len([]rune(l.Content)); n > WrapWidth {
			t.Errorf("line %d has %d characters", i+1, n)
		}
		if l.IsQuestionNumber != (i == 0) {
			t.Errorf("line %d question = %v", i+1, l.IsQuestionNumber)
		}
		if l.Indent != 5 || l.LineNumber != i+1 {
			t.Errorf("line %d indent=%v number=%d", i+1, l.Indent, l.LineNumber)
		}
		if l.IsFraction != strings.Contains(l.Content, "3/4") {
			t.Errorf("line %d fraction = %v for %q", i+1, l.IsFraction, l.Content)
		}
	}
	if got := strings.Join(text, " "); got != strings.Join(strings.Fields(long), " ") {
		t.Errorf("wrapped text = %q", got)
	}
}

func TestValidateEmptyDelegatesToFallback(t *testing.T) {
	pages := []string{"hello world"}
	for _, d := range []*Draft{nil, {}, {Pages: []DraftPage{}}} {
		got := Validate(d, pages, 8)
		if !reflect.DeepEqual(got, Fallback(pages, 8)) {
			t.Errorf("Validate(%v) did not fall back", d)
		}
	}
}

func TestValidateIdempotent(t *testing.T) {
	drafts := map[string]*Draft{
		"fallback": nil,
		"partial": {Pages: []DraftPage{
			{Lines: []DraftLine{{Content: ptr("3/4")}, {IsFraction: ptr(true)}}},
			{FatigueLevel: ptr(0.01), Lines: []DraftLine{{Emphasis: ptr("bold")}}},
		}},
		"non-finite": {Pages: []DraftPage{
			{LineSpacing: ptr(math.NaN()), Lines: []DraftLine{{SlantAngle: ptr(math.Inf(1))}}},
		}, GlobalStyle: &DraftGlobalStyle{Neatness: ptr(3.0)}},
		"full": Fallback([]string{sampleDoc, sampleDoc, sampleDoc}, 4).Draft(),
	}
	pages := []string{sampleDoc, "x"}
	for name, d := range drafts {
		t.Run(name, func(t *testing.T) {
			once := Validate(d, pages, 11)
			twice := Validate(once.Draft(), pages, 11)
			if !reflect.DeepEqual(once, twice) {
				t.Errorf("not idempotent:\n%+v\n%+v", once, twice)
			}
			if again := Normalize(once); !reflect.DeepEqual(again, once) {
				t.Error("Normalize not idempotent on validated plan")
			}
		})
	}
}

func TestPlanDocumentUsesDraft(t *testing.T) {
	d := &Draft{Pages: []DraftPage{{Lines: []DraftLine{{Content: ptr("from the planner")}}}}}
	p := PlanDocument([]string{"ignored"}, d, 0)
	if p.Pages[0].Lines[0].Content != "from the planner" {
		t.Errorf("draft not used: %+v", p.Pages[0].Lines)
	}
}

func TestFallbackPageFields(t *testing.T) {
	for i := 0; i < 4; i++ {
		pg := FallbackPage("text", i, seed.Page(3, i))
		if pg.MarginLeft < 25 || pg.MarginLeft > 30 || pg.LineSpacing < 26 || pg.LineSpacing > 30 {
			t.Errorf("page %d margins out of bounds: %+v", i, pg)
		}
		wantSpeed := SpeedMedium
		if i >= 2 {
			wantSpeed = SpeedFast
		}
		if pg.WritingSpeed != wantSpeed {
			t.Errorf("page %d speed = %q", i, pg.WritingSpeed)
		}
		if pg.FatigueLevel != min(0.5, float64(i)*0.05) {
			t.Errorf("page %d fatigue = %v", i, pg.FatigueLevel)
		}
	}
}

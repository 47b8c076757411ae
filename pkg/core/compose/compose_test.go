package compose

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/handscript/pkg/core/markup"
	"github.com/matzehuels/handscript/pkg/core/plan"
	"github.com/matzehuels/handscript/pkg/core/seed"
	"github.com/matzehuels/handscript/pkg/core/style"
)

func planFor(lines ...string) plan.WritingPlan {
	return plan.Fallback([]string{strings.Join(lines, "\n")}, 3)
}

func kinds(sheets []Sheet) map[DecorationKind]int {
	out := map[DecorationKind]int{}
	for _, s := range sheets {
		for _, d := range s.Decorations {
			out[d.Kind]++
		}
	}
	return out
}

func TestComposeDeterministic(t *testing.T) {
	p := planFor("Kinetic Energy", "Q1. Compute 3/4 of SQRT[16]", "Ans. STRIKE[wrong] right")
	a := Compose(p, style.Default(), 42)
	b := Compose(p, style.Default(), 42)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("Compose not deterministic")
	}
}

func TestComposeSheetBasics(t *testing.T) {
	sheets := Compose(planFor("Hello world"), style.Default(), 1)
	if len(sheets) != 1 {
		t.Fatalf("sheets = %d, want 1", len(sheets))
	}
	s := sheets[0]
	if s.Width != Width || s.Height != Height || s.Label() != "Page 1" || s.PageNumber != 1 {
		t.Errorf("sheet = %+v", s)
	}
	if len(s.Glyphs) != 10 {
		t.Errorf("glyphs = %d, want 10", len(s.Glyphs))
	}
	if s.Ink != style.DefaultColor {
		t.Errorf("ink = %q", s.Ink)
	}
	rules := s.Rules()
	if len(rules) == 0 || rules[0] <= HeaderHeight || rules[len(rules)-1] > Height-BottomMargin+0.01 {
		t.Errorf("rules out of bounds: %v", rules)
	}
}

func TestComposeGlyphsFinite(t *testing.T) {
	p := planFor(
		"Kinetic Energy",
		"Q1. Find 1/2 of the mass m × v",
		"DIAGRAM[force diagram]",
		"FRAC[a + b|c] and SQRT[x + y] plus STRIKE[typo]",
	)
	cfg := style.Config{Slant: 1, Messiness: 1, Weight: 2, Size: 1.2, Spacing: 1.5}
	for s := int64(0); s < 50; s++ {
		for _, sh := range Compose(p, cfg, seedOf(s)) {
			for _, g := range sh.Glyphs {
				if !finite(g.X, g.Y, g.Size, g.Style.Rotation) {
					t.Fatalf("non-finite glyph %+v", g)
				}
				if g.X < 0 || g.X > Width || g.Y < HeaderHeight || g.Y > Height {
					t.Fatalf("glyph %q off sheet at (%v, %v)", g.Char, g.X, g.Y)
				}
				if math.Abs(g.Style.Rotation) > MaxRotation {
					t.Fatalf("rotation %v out of range", g.Style.Rotation)
				}
			}
			for _, d := range sh.Decorations {
				for _, pt := range d.Points {
					if !finite(pt.X, pt.Y) {
						t.Fatalf("non-finite decoration %+v", d)
					}
				}
			}
		}
	}
}

func TestComposeDecorations(t *testing.T) {
	tests := []struct {
		line string
		kind DecorationKind
	}{
		{"Compute 3/4 of the total", DecorFractionBar},
		{"the value FRAC[1|2] here", DecorFractionBar},
		{"root SQRT[16] is four", DecorRadical},
		{"oops STRIKE[mistake] fixed", DecorStrike},
		{"DIAGRAM[circuit]", DecorDiagram},
		{"Kinetic Energy", DecorUnderline},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := kinds(Compose(planFor(tt.line), style.Default(), 7))
			if got[tt.kind] != 1 {
				t.Errorf("decorations = %v, want one %s", got, tt.kind)
			}
		})
	}
}

func TestComposeFractionStacked(t *testing.T) {
	sheets := Compose(planFor("Compute 3/4 of the total"), style.Default(), 5)
	var num, den *Glyph
	for i, g := range sheets[0].Glyphs {
		switch g.Char {
		case "3":
			num = &sheets[0].Glyphs[i]
		case "4":
			den = &sheets[0].Glyphs[i]
		case "/":
			t.Error("slash should not be drawn for a stacked fraction")
		}
	}
	if num == nil || den == nil {
		t.Fatal("fraction digits missing")
	}
	if num.Y >= den.Y {
		t.Errorf("numerator y %v should be above denominator y %v", num.Y, den.Y)
	}
	if num.Order != 9 || den.Order != 10 {
		t.Errorf("orders = %d, %d", num.Order, den.Order)
	}
}

func TestComposeOrderFollowsReading(t *testing.T) {
	sheets := Compose(planFor("one line here", "second line"), style.Default(), 5)
	gs := sheets[0].Glyphs
	if len(gs) == 0 {
		t.Fatal("no glyphs")
	}
	for i := 1; i < len(gs); i++ {
		if gs[i].Order <= gs[i-1].Order {
			t.Fatalf("glyph %d (%q, line %d) order %d not after %d", i, gs[i].Char, gs[i].Line, gs[i].Order, gs[i-1].Order)
		}
	}
	for _, g := range gs {
		if g.Line != gs[0].Line {
			if g.Char != "s" || g.Order != 14 {
				t.Errorf("second line starts with %q at order %d, want \"s\" at 14", g.Char, g.Order)
			}
			break
		}
	}
}

func TestDenominatorSeedSkipsNumeratorChars(t *testing.T) {
	tests := []struct{ num, den string }{
		{"x + abcdefghijkl", "xyz"},
		{"abcdefghijklmnopqrstuvwxyz", "2"},
		{"1", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.num, func(t *testing.T) {
			seg := markup.Segment{Kind: markup.KindFraction, Numerator: tt.num, Denominator: tt.den, Seed: 7000}
			used := map[seed.Seed]bool{}
			for _, w := range markup.Words(seg.Numerator, seg.Seed, 0) {
				for ci := 0; ci <= len([]rune(w.Text)); ci++ {
					used[seed.Char(w.Seed, ci)] = true
				}
			}
			for _, w := range markup.Words(seg.Denominator, denominatorSeed(seg), 0) {
				for ci := range []rune(w.Text) {
					if s := seed.Char(w.Seed, ci); used[s] {
						t.Errorf("denominator char %d of %q reuses seed %d", ci, w.Text, s)
					}
				}
			}
		})
	}
}

func TestComposeLongDraftLineStaysOnSheet(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("the kinetic energy of a moving body grows ", 4)) + " quickly"
	if n := len([]rune(long)); n < 140 {
		t.Fatalf("test line has %d characters", n)
	}
	p := plan.Validate(&plan.Draft{Pages: []plan.DraftPage{{Lines: []plan.DraftLine{{Content: &long}}}}}, nil, 4)
	sheets := Compose(p, style.Default(), 9)

	glyphs := 0
	for _, sh := range sheets {
		for _, g := range sh.Glyphs {
			glyphs++
			if g.X < 0 || g.X >= Width {
				t.Errorf("glyph %q at x=%.1f is off the sheet", g.Char, g.X)
			}
		}
	}
	if want := len(strings.ReplaceAll(long, " ", "")); glyphs != want {
		t.Errorf("glyphs = %d, want %d", glyphs, want)
	}
}

func TestComposeDiagramLabel(t *testing.T) {
	sheets := Compose(planFor("DIAGRAM[pulley]"), style.Default(), 2)
	d := sheets[0].Decorations[0]
	if !d.Closed || d.Label != "pulley" || len(d.Points) != 4 {
		t.Errorf("diagram = %+v", d)
	}
	if len(sheets[0].Glyphs) != len("pulley") {
		t.Errorf("label glyphs = %d", len(sheets[0].Glyphs))
	}
}

func TestComposeBlankLineKeepsRow(t *testing.T) {
	sheets := Compose(planFor("a", "", "b"), style.Default(), 0)
	gs := sheets[0].Glyphs
	if len(gs) != 2 {
		t.Fatalf("glyphs = %d", len(gs))
	}
	spacing := sheets[0].RuleSpacing
	dy := gs[1].Y - gs[0].Y
	if math.Abs(dy-2*spacing) > 15 {
		t.Errorf("line distance %v, want about %v", dy, 2*spacing)
	}
}

func TestComposeOverflow(t *testing.T) {
	var lines []string
	for i := 0; i < 60; i++ {
		lines = append(lines, "line of text")
	}
	p := plan.Fallback([]string{strings.Join(lines, "\n"), "second page"}, 9)
	sheets := Compose(p, style.Default(), 9)
	if len(sheets) < 3 {
		t.Fatalf("sheets = %d, want overflow", len(sheets))
	}
	last := sheets[len(sheets)-1]
	if last.PageNumber != 2 || last.Continued {
		t.Errorf("last sheet = page %d continued %v", last.PageNumber, last.Continued)
	}
	for i, s := range sheets {
		if s.Number != i+1 {
			t.Errorf("sheet %d numbered %d", i, s.Number)
		}
		if i > 0 && s.PageNumber == 1 && !s.Continued {
			t.Errorf("sheet %d should be a continuation", i)
		}
	}
	glyphs, _ := Count(sheets)
	if want := 60*len("lineoftext") + len("secondpage"); glyphs != want {
		t.Errorf("glyphs = %d, want %d", glyphs, want)
	}
}

func TestComposeAlignment(t *testing.T) {
	p := planFor("short")
	left := Compose(p, style.Default(), 4)[0].Glyphs[0].X

	p.Pages[0].Lines[0].Alignment = plan.AlignRight
	right := Compose(p, style.Default(), 4)[0].Glyphs[0].X

	p.Pages[0].Lines[0].Alignment = plan.AlignCenter
	center := Compose(p, style.Default(), 4)[0].Glyphs[0].X

	if !(left < center && center < right) {
		t.Errorf("x positions left=%v center=%v right=%v", left, center, right)
	}
}

func TestComposeSeedChangesPositionsOnly(t *testing.T) {
	p := planFor("The quick brown fox", "Q2. jumps over 1/3 of the dog")
	a := Compose(p, style.Default(), 1)
	b := Compose(p, style.Default(), 2)
	ga, da := Count(a)
	gb, db := Count(b)
	if ga != gb || da != db {
		t.Fatalf("counts differ: %d/%d vs %d/%d", ga, da, gb, db)
	}
	if reflect.DeepEqual(a[0].Glyphs, b[0].Glyphs) {
		t.Error("different seeds produced identical glyphs")
	}
}

func TestComposeFatigueRaisesJitter(t *testing.T) {
	p := planFor(strings.Repeat("handwriting ", 3))
	spread := func(fatigue float64) float64 {
		p.Pages[0].FatigueLevel = fatigue
		total := 0.0
		for s := int64(0); s < 30; s++ {
			for _, g := range Compose(p, style.Config{Messiness: 0}, seedOf(s))[0].Glyphs {
				total += math.Abs(g.Style.Rotation - (p.Pages[0].Lines[0].SlantAngle+p.Pages[0].OverallSlant)*SlantWeight)
			}
		}
		return total
	}
	if calm, tired := spread(0), spread(0.5); tired <= calm {
		t.Errorf("fatigue did not raise rotation spread: %v <= %v", tired, calm)
	}
}

func TestComposeEmptyPlan(t *testing.T) {
	if got := Compose(plan.WritingPlan{}, style.Default(), 0); len(got) != 0 {
		t.Errorf("got %d sheets", len(got))
	}
}

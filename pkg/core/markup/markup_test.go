package markup

import (
	"reflect"
	"testing"

	"github.com/matzehuels/handscript/pkg/core/seed"
)

func TestParsePlainRoundTrip(t *testing.T) {
	lines := []string{
		"",
		"hello",
		"Some text with no markers at all.",
		"double  space and trailing ",
		" leading",
		"brackets [like] this | that",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			segs := Parse(line, 100)
			if len(segs) != 1 || segs[0].Kind != KindText {
				t.Fatalf("got %d segments, want one text segment: %+v", len(segs), segs)
			}
			if got := segs[0].Text(); got != line {
				t.Errorf("round trip = %q, want %q", got, line)
			}
		})
	}
}

func TestParseMarkers(t *testing.T) {
	segs := Parse("x = FRAC[1|2] + SQRT[b^2] then STRIKE[oops] end", 0)
	kinds := make([]Kind, len(segs))
	for i, s := range segs {
		kinds[i] = s.Kind
	}
	want := []Kind{KindText, KindFraction, KindText, KindSqrt, KindText, KindStrike, KindText}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	if segs[1].Numerator != "1" || segs[1].Denominator != "2" {
		t.Errorf("fraction = %+v", segs[1])
	}
	if segs[3].Content != "b^2" || segs[5].Content != "oops" {
		t.Errorf("sqrt/strike content = %q/%q", segs[3].Content, segs[5].Content)
	}
}

func TestParseDiagramShortCircuits(t *testing.T) {
	segs := Parse("  DIAGRAM[free body FRAC[1|2]]  ", 5)
	// The inner marker ends the label at the first closing bracket, so the
	// whole line no longer matches and falls back to regular parsing.
	if segs[0].Kind == KindDiagram {
		t.Fatalf("nested brackets should not parse as a diagram: %+v", segs)
	}

	segs = Parse("  DIAGRAM[free body] ", 5)
	if len(segs) != 1 || segs[0].Kind != KindDiagram || segs[0].Content != "free body" {
		t.Fatalf("diagram = %+v", segs)
	}

	segs = Parse("see DIAGRAM[x]", 5)
	for _, s := range segs {
		if s.Kind == KindDiagram {
			t.Fatal("DIAGRAM inside a line must stay literal")
		}
	}
}

func TestParseMalformedIsLiteral(t *testing.T) {
	tests := []string{
		"FRAC[1 2]",
		"SQRT[unclosed",
		"STRIKE]x[",
		"FRAC[|]extra]",
	}
	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			segs := Parse(line, 0)
			var rebuilt string
			for _, s := range segs {
				switch s.Kind {
				case KindText:
					rebuilt += s.Text()
				case KindFraction:
					rebuilt += "FRAC[" + s.Numerator + "|" + s.Denominator + "]"
				}
			}
			if rebuilt != line {
				t.Errorf("rebuilt %q, want %q", rebuilt, line)
			}
		})
	}
}

func TestParseSeeds(t *testing.T) {
	segs := Parse("a b c", 1000)
	seg := segs[0]
	if seg.Seed != seed.Segment(1000, 0) {
		t.Errorf("segment seed = %d", seg.Seed)
	}
	for i, w := range seg.Words {
		if w.Seed != seg.Seed+seed.Seed(i*20) {
			t.Errorf("word %d seed = %d, want segment+%d", i, w.Seed, i*20)
		}
	}
}

func TestAccumulatorFold(t *testing.T) {
	segs, end := ParseFrom("ab cd FRAC[12|3] SQRT[xy]", 0, 10)
	// "ab cd " → words "ab","cd","" : 10, 13, 16 → pos 17
	text := segs[0]
	offsets := []int{text.Words[0].Offset, text.Words[1].Offset, text.Words[2].Offset}
	if !reflect.DeepEqual(offsets, []int{10, 13, 16}) {
		t.Errorf("word offsets = %v", offsets)
	}
	if segs[1].Offset != 17 {
		t.Errorf("fraction offset = %d, want 17", segs[1].Offset)
	}
	// fraction advances by 3; " " text segment is words "","" → +2
	if segs[2].Offset != 20 || segs[3].Offset != 22 {
		t.Errorf("offsets = %d, %d", segs[2].Offset, segs[3].Offset)
	}
	if end != 24 {
		t.Errorf("end = %d, want 24", end)
	}

	// Threading the accumulator across lines is additive.
	_, mid := ParseFrom("one two", 0, 0)
	_, final := ParseFrom("three", 0, mid)
	if final != mid+6 {
		t.Errorf("second line end = %d, want %d", final, mid+6)
	}
}

func TestParseDeterministic(t *testing.T) {
	line := "Q1. FRAC[3|4] of STRIKE[ten] SQRT[16]"
	if !reflect.DeepEqual(Parse(line, 9), Parse(line, 9)) {
		t.Error("Parse not deterministic")
	}
}

func TestPlain(t *testing.T) {
	tests := []struct{ in, want string }{
		{"FRAC[1|2] cup", "1/2 cup"},
		{"SQRT[9] = 3", "√9 = 3"},
		{"STRIKE[wrong] right", "wrong right"},
		{"DIAGRAM[circuit]", "[circuit]"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := Plain(tt.in); got != tt.want {
			t.Errorf("Plain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package compose

import (
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/handscript/pkg/core/glyph"
	"github.com/matzehuels/handscript/pkg/core/markup"
	"github.com/matzehuels/handscript/pkg/core/seed"
	"github.com/matzehuels/handscript/pkg/core/style"
)

// Glyph is one positioned character. Y is the baseline with the style's
// vertical offset applied and Size is the final font size in pixels, so
// renderers must not apply Style.OffsetY or Style.Scale again.
type Glyph struct {
	Char  string      `json:"char"`
	X     float64     `json:"x"`
	Y     float64     `json:"y"`
	Size  float64     `json:"size"`
	Line  int         `json:"line"`
	Order int         `json:"order"`
	Style glyph.Style `json:"style"`
}

const (
	// MaxRotation bounds glyph rotation after slant is added, in degrees.
	MaxRotation = 25.0

	fractionScale   = 0.7
	diagramScale    = 0.85
	minDiagramWidth = 120.0
)

// lineWriter holds the pen state while one line is laid out.
type lineWriter struct {
	gen       glyph.Generator
	ctx       glyph.LineContext
	line      int
	size      float64
	amp       float64
	thickness float64
	rotation  float64
	wordGap   float64
	baseline  float64
	x         float64
	start     int // reading-order position of the line's first character

	glyphs []Glyph
	decos  []Decoration
}

// write lays out text and returns the reading-order position after it.
func (w *lineWriter) write(text string, ls seed.Seed) int {
	segs, end := markup.ParseFrom(text, ls, w.start)
	for _, seg := range segs {
		switch seg.Kind {
		case markup.KindText:
			w.run(seg.Words, 1, 0)
		case markup.KindFraction:
			w.fraction(seg)
		case markup.KindSqrt:
			w.sqrt(seg)
		case markup.KindStrike:
			w.strike(seg)
		case markup.KindDiagram:
			w.diagram(seg)
		}
	}
	return end
}

// run writes words at the pen position, scaled by scale and raised by dy.
// Glyph sizes start from the base size since styles carry the configured
// size in their scale.
func (w *lineWriter) run(words []markup.Word, scale, dy float64) {
	size := style.BaseFontSize * scale
	for i, word := range words {
		runes := []rune(word.Text)
		wctx := w.gen.Word(word.Seed, len(runes))
		for ci, r := range runes {
			st := w.gen.Style(glyph.Input{
				Char:      r,
				Seed:      seed.Char(word.Seed, ci),
				Thickness: w.thickness,
				Word:      &wctx,
				Index:     ci,
				Line:      &w.ctx,
				LinePos:   word.Offset - w.start + ci,
			})
			adv := st.Advance(r, size)
			if st.Space {
				w.x += adv
				continue
			}
			st.Rotation = seed.Clamp(st.Rotation+w.rotation, -MaxRotation, MaxRotation)
			w.glyphs = append(w.glyphs, Glyph{
				Char:  string(r),
				X:     w.x,
				Y:     w.baseline + dy + st.OffsetY*scale,
				Size:  size * st.Scale,
				Line:  w.line,
				Order: word.Offset + ci,
				Style: st,
			})
			w.x += adv
		}
		if i < len(words)-1 {
			sp := w.gen.Style(glyph.Input{Char: ' ', Seed: seed.Char(word.Seed, len(runes))})
			w.x += sp.Advance(' ', size) * w.wordGap
		}
	}
}

func (w *lineWriter) fraction(seg markup.Segment) {
	x0 := w.x
	num := len(w.glyphs)
	w.run(markup.Words(seg.Numerator, seg.Seed, seg.Offset), fractionScale, -w.size*0.42)
	numW := w.x - x0

	w.x = x0
	den := len(w.glyphs)
	w.run(markup.Words(seg.Denominator, denominatorSeed(seg), seg.Offset+utf8.RuneCountInString(seg.Numerator)), fractionScale, w.size*0.38)
	denW := w.x - x0

	width := max(numW, denW)
	w.shiftGlyphs(num, den, (width-numW)/2)
	w.shiftGlyphs(den, len(w.glyphs), (width-denW)/2)

	y := w.baseline - w.size*0.3
	w.decorate(DecorFractionBar, seg.Seed, []Point{{x0 - 2, y}, {x0 + width + 2, y}}, "")
	w.x = x0 + width + w.size*0.2
}

// denominatorSeed continues the word seeds past the numerator's last word so
// the two halves never share a character seed.
func denominatorSeed(seg markup.Segment) seed.Seed {
	return seed.Word(seg.Seed, len(strings.Split(seg.Numerator, " ")))
}

func (w *lineWriter) sqrt(seg markup.Segment) {
	x0, b, fs := w.x, w.baseline, w.size
	w.x += fs * 0.45
	w.run(markup.Words(seg.Content, seg.Seed, seg.Offset), 1, 0)
	end := w.x + fs*0.1
	top := b - fs*0.95
	w.decorate(DecorRadical, seg.Seed, []Point{
		{x0, b - fs*0.35},
		{x0 + fs*0.12, b - fs*0.42},
		{x0 + fs*0.25, b + fs*0.05},
		{x0 + fs*0.4, top},
		{end, top},
	}, "")
	w.x = end + fs*0.15
}

func (w *lineWriter) strike(seg markup.Segment) {
	x0 := w.x
	w.run(markup.Words(seg.Content, seg.Seed, seg.Offset), 1, 0)
	y := w.baseline - w.size*0.3
	w.decorate(DecorStrike, seg.Seed, []Point{{x0 - 2, y + 1}, {w.x + 2, y - 1}}, "")
}

func (w *lineWriter) diagram(seg markup.Segment) {
	x0 := w.x
	w.x += w.size * 0.6
	w.run(markup.Words(seg.Content, seg.Seed, seg.Offset), diagramScale, 0)
	x1 := max(w.x+w.size*0.6, x0+minDiagramWidth)
	top, bottom := w.baseline-w.size*1.1, w.baseline+w.size*0.45
	w.decorate(DecorDiagram, seg.Seed, []Point{{x0, top}, {x1, top}, {x1, bottom}, {x0, bottom}}, seg.Content)
	w.decos[len(w.decos)-1].Closed = true
	w.x = x1 + w.size*0.3
}

// decorate appends a polyline with a small seeded wobble on every point.
func (w *lineWriter) decorate(kind DecorationKind, s seed.Seed, pts []Point, label string) {
	out := make([]Point, len(pts))
	for k, p := range pts {
		out[k] = Point{
			X: p.X,
			Y: p.Y + seed.Gaussian(seed.Site(s, 20+k), 0, 0.4)*w.amp,
		}
	}
	w.decos = append(w.decos, Decoration{
		Kind:        kind,
		Points:      out,
		StrokeWidth: seed.Clamp(1+w.thickness, 0.5, 3),
		Opacity:     0.9,
		Label:       label,
	})
}

func (w *lineWriter) shiftGlyphs(from, to int, dx float64) {
	for i := from; i < to; i++ {
		w.glyphs[i].X += dx
	}
}

// shift moves everything written so far from glyph index from, including
// all decorations, by dx.
func (w *lineWriter) shift(from int, dx float64) {
	w.shiftGlyphs(from, len(w.glyphs), dx)
	for i := range w.decos {
		for k := range w.decos[i].Points {
			w.decos[i].Points[k].X += dx
		}
	}
	w.x += dx
}

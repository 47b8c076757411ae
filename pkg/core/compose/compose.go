package compose

import (
	"strings"

	"github.com/matzehuels/handscript/pkg/core/glyph"
	"github.com/matzehuels/handscript/pkg/core/plan"
	"github.com/matzehuels/handscript/pkg/core/seed"
	"github.com/matzehuels/handscript/pkg/core/style"
)

// Plan-to-style coupling.
const (
	// FatigueMessiness is the messiness added per unit of page fatigue.
	FatigueMessiness = 0.4

	// SlantWeight scales line and page slant angles before they are added
	// to glyph rotation.
	SlantWeight = 0.5

	// PoolShade is how much ink pools darken the ink color.
	PoolShade = 0.35
)

var wordGaps = map[plan.WordSpacing]float64{
	plan.SpacingTight:  0.75,
	plan.SpacingNormal: 1,
	plan.SpacingLoose:  1.3,
}

// Compose lays out every page of p with style cfg and global seed s. Each
// plan page yields at least one sheet; sheets are numbered from 1 across
// the whole document.
func Compose(p plan.WritingPlan, cfg style.Config, s seed.Seed) []Sheet {
	cfg = style.Normalize(cfg)
	var sheets []Sheet
	for i, pg := range p.Pages {
		sheets = append(sheets, composePage(pg, cfg, seed.Page(s, i), len(sheets))...)
	}
	return sheets
}

func composePage(pg plan.PagePlan, cfg style.Config, ps seed.Seed, before int) []Sheet {
	pcfg := cfg
	pcfg.Messiness = seed.Clamp(cfg.Messiness+pg.FatigueLevel*FatigueMessiness, style.MinMessiness, style.MaxMessiness)
	gen := glyph.New(pcfg)

	spacing := pg.LineSpacing * RuleFactor
	if spacing <= 0 {
		spacing = plan.DefaultLineSpacing * RuleFactor
	}
	top := HeaderHeight + pg.MarginTop
	rows := max(int((Height-BottomMargin-top)/spacing), 1)

	newSheet := func(continued bool) Sheet {
		return Sheet{
			Number:      before + 1,
			PageNumber:  pg.PageNumber,
			Continued:   continued,
			Width:       Width,
			Height:      Height,
			RuleTop:     top,
			RuleSpacing: spacing,
			Ink:         cfg.Ink().Hex(),
			PoolInk:     cfg.InkShade(PoolShade).Hex(),
		}
	}

	sheets := []Sheet{newSheet(false)}
	row, pos := 0, 0
	for j, l := range pg.Lines {
		if row == rows {
			before++
			sheets = append(sheets, newSheet(true))
			row = 0
		}
		if !l.Blank() {
			cur := &sheets[len(sheets)-1]
			baseline := top + float64(row+1)*spacing
			glyphs, decos, next := composeLine(gen, pg, l, seed.Line(ps, j), baseline, pos)
			pos = next
			cur.Glyphs = append(cur.Glyphs, glyphs...)
			cur.Decorations = append(cur.Decorations, decos...)
		}
		row++
	}
	return sheets
}

// composeLine lays out one line whose first character sits at reading-order
// position pos, and returns the position after it.
func composeLine(gen glyph.Generator, pg plan.PagePlan, l plan.LinePlan, ls seed.Seed, baseline float64, pos int) ([]Glyph, []Decoration, int) {
	cfg := gen.Config()
	ctx := gen.Line(ls)
	wave := 0.5 + l.BaselineVariation
	ctx.WaveAmplitude *= wave
	ctx.HeightVariation *= wave

	thickness := seed.Clamp(cfg.Thickness()*(0.6+0.5*l.PressureLevel), 0.1, 2)
	if l.Emphasis == plan.EmphasisBold {
		thickness = min(thickness*1.5, 2)
	}
	gap, ok := wordGaps[l.WordSpacing]
	if !ok {
		gap = 1
	}

	start := MarginX + pg.MarginLeft + l.Indent + ctx.MarginOffset
	w := &lineWriter{
		gen:       gen,
		ctx:       ctx,
		line:      l.LineNumber,
		size:      cfg.FontSize(),
		amp:       cfg.Amplifier(),
		thickness: thickness,
		rotation:  (l.SlantAngle + pg.OverallSlant) * SlantWeight,
		wordGap:   gap,
		baseline:  baseline,
		x:         start,
		start:     pos,
	}
	end := w.write(lineText(l), ls)

	if l.Emphasis == plan.EmphasisUnderline && w.x > start {
		y := baseline + w.size*0.22
		w.decorate(DecorUnderline, ls, []Point{{start, y}, {(start + w.x) / 2, y}, {w.x, y}}, "")
	}

	width := w.x - start
	avail := Width - pg.MarginRight - start
	if avail > width {
		switch l.Alignment {
		case plan.AlignCenter:
			w.shift(0, (avail-width)/2)
		case plan.AlignRight:
			w.shift(0, avail-width)
		}
	}
	return w.glyphs, w.decos, end
}

// lineText returns the line content with a detected plain-text fraction
// rewritten as a fraction marker so it is drawn stacked.
func lineText(l plan.LinePlan) string {
	fp := l.FractionParts
	if fp == nil || strings.Contains(l.Content, "FRAC[") {
		return l.Content
	}
	plain := fp.Numerator + "/" + fp.Denominator
	return strings.Replace(l.Content, plain, "FRAC["+fp.Numerator+"|"+fp.Denominator+"]", 1)
}

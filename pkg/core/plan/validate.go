package plan

import (
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/handscript/pkg/core/seed"
)

// Defaults applied to absent fields.
const (
	DefaultMarginLeft        = 25.0
	DefaultMarginRight       = 15.0
	DefaultMarginTop         = 20.0
	DefaultLineSpacing       = 28.0
	DefaultOverallSlant      = -3.0
	DefaultIndent            = 25.0
	DefaultBaselineVariation = 0.3
	DefaultSlantAngle        = -2.0
	DefaultPressureLevel     = 0.8
	PageFatigueStep          = 0.03
)

// Ranges enforced on every plan.
const (
	minMargin, maxMargin           = 0.0, 80.0
	minLineSpacing, maxLineSpacing = 16.0, 60.0
	minSlant, maxSlant             = -10.0, 10.0
	minIndent, maxIndent           = 0.0, 120.0
)

// DefaultGlobalStyle is used when a draft carries no global style.
func DefaultGlobalStyle() GlobalStyle {
	return GlobalStyle{
		Consistency:    0.75,
		Neatness:       0.7,
		SpeedVariation: 0.2,
		PersonalQuirks: []string{"natural baseline drift", "varying pressure"},
	}
}

// Validate turns a draft into a complete plan: absent fields get defaults,
// numeric fields are clamped, enums are checked, and pages and lines are
// renumbered from 1. A nil draft or one without pages is replaced by the
// fallback plan for pages. A draft page without lines takes the fallback
// lines of the matching page text.
func Validate(d *Draft, pages []string, s seed.Seed) WritingPlan {
	if d == nil || len(d.Pages) == 0 {
		return Fallback(pages, s)
	}

	p := WritingPlan{
		Pages:  make([]PagePlan, len(d.Pages)),
		Origin: d.Origin,
	}
	if p.Origin == "" {
		p.Origin = OriginAI
	}

	for i, dp := range d.Pages {
		pg := PagePlan{
			MarginLeft:   orDefault(dp.MarginLeft, DefaultMarginLeft),
			MarginRight:  orDefault(dp.MarginRight, DefaultMarginRight),
			MarginTop:    orDefault(dp.MarginTop, DefaultMarginTop),
			LineSpacing:  orDefault(dp.LineSpacing, DefaultLineSpacing),
			OverallSlant: orDefault(dp.OverallSlant, DefaultOverallSlant),
			WritingSpeed: Speed(orDefault(dp.WritingSpeed, string(SpeedMedium))),
			FatigueLevel: orDefault(dp.FatigueLevel, float64(i)*PageFatigueStep),
		}
		if len(dp.Lines) == 0 {
			text := ""
			if i < len(pages) {
				text = pages[i]
			}
			pg.Lines = FallbackLines(text, i, seed.Page(s, i))
		} else {
			pg.Lines = make([]LinePlan, len(dp.Lines))
			for j, dl := range dp.Lines {
				pg.Lines[j] = draftLine(dl)
			}
		}
		p.Pages[i] = pg
	}

	p.GlobalStyle = DefaultGlobalStyle()
	if gs := d.GlobalStyle; gs != nil {
		p.GlobalStyle.Consistency = orDefault(gs.Consistency, p.GlobalStyle.Consistency)
		p.GlobalStyle.Neatness = orDefault(gs.Neatness, p.GlobalStyle.Neatness)
		p.GlobalStyle.SpeedVariation = orDefault(gs.SpeedVariation, p.GlobalStyle.SpeedVariation)
		if len(gs.PersonalQuirks) > 0 {
			p.GlobalStyle.PersonalQuirks = append([]string{}, gs.PersonalQuirks...)
		}
	}
	return Normalize(p)
}

func draftLine(dl DraftLine) LinePlan {
	l := LinePlan{
		Content:           orDefault(dl.Content, ""),
		Indent:            orDefault(dl.Indent, DefaultIndent),
		IsQuestionNumber:  orDefault(dl.IsQuestionNumber, false),
		IsFraction:        orDefault(dl.IsFraction, false),
		IsHeading:         orDefault(dl.IsHeading, false),
		Alignment:         Alignment(orDefault(dl.Alignment, string(AlignLeft))),
		Emphasis:          Emphasis(orDefault(dl.Emphasis, string(EmphasisNormal))),
		WordSpacing:       WordSpacing(orDefault(dl.WordSpacing, string(SpacingNormal))),
		BaselineVariation: orDefault(dl.BaselineVariation, DefaultBaselineVariation),
		SlantAngle:        orDefault(dl.SlantAngle, DefaultSlantAngle),
		PressureLevel:     orDefault(dl.PressureLevel, DefaultPressureLevel),
	}
	if dl.FractionParts != nil {
		fp := *dl.FractionParts
		l.FractionParts = &fp
	}
	return l
}

// Normalize coerces an already typed plan into range: it clamps numeric
// fields, replaces invalid enums, re-wraps lines longer than [WrapWidth],
// renumbers pages and lines, makes fatigue non-decreasing, keeps IsFraction
// and FractionParts consistent and gives every page at least one line.
func Normalize(p WritingPlan) WritingPlan {
	out := WritingPlan{
		Pages:       make([]PagePlan, len(p.Pages)),
		GlobalStyle: normalizeGlobal(p.GlobalStyle),
		Origin:      p.Origin,
	}
	fatigue := 0.0
	for i, pg := range p.Pages {
		pg.PageNumber = i + 1
		pg.MarginLeft = seed.Clamp(pg.MarginLeft, minMargin, maxMargin)
		pg.MarginRight = seed.Clamp(pg.MarginRight, minMargin, maxMargin)
		pg.MarginTop = seed.Clamp(pg.MarginTop, minMargin, maxMargin)
		pg.LineSpacing = seed.Clamp(pg.LineSpacing, minLineSpacing, maxLineSpacing)
		pg.OverallSlant = seed.Clamp(pg.OverallSlant, minSlant, maxSlant)
		if !validSpeeds[pg.WritingSpeed] {
			pg.WritingSpeed = SpeedMedium
		}
		fatigue = max(fatigue, seed.Clamp(pg.FatigueLevel, 0, MaxFatigue))
		pg.FatigueLevel = fatigue

		var lines []LinePlan
		for _, l := range pg.Lines {
			lines = append(lines, splitLong(l)...)
		}
		if len(lines) == 0 {
			lines = []LinePlan{fillBlank(LinePlan{})}
		}
		pg.Lines = make([]LinePlan, len(lines))
		for j, l := range lines {
			l.LineNumber = j + 1
			pg.Lines[j] = normalizeLine(l)
		}
		out.Pages[i] = pg
	}
	return out
}

// splitLong wraps a line longer than WrapWidth into several. Continuation
// lines keep the layout fields but not the question or heading flag, and
// fraction parts are re-derived for each piece.
func splitLong(l LinePlan) []LinePlan {
	if utf8.RuneCountInString(l.Content) <= WrapWidth {
		return []LinePlan{l}
	}
	parts := wrap(tokens(l.Content), WrapWidth)
	if len(parts) < 2 {
		return []LinePlan{l}
	}
	fraction := l.IsFraction || l.FractionParts != nil
	out := make([]LinePlan, len(parts))
	for k, part := range parts {
		c := l
		c.Content = part
		c.FractionParts = nil
		c.IsFraction = false
		if fraction {
			c.FractionParts = ExtractFraction(part)
		}
		if k > 0 {
			c.IsQuestionNumber = false
			c.IsHeading = false
		}
		out[k] = c
	}
	return out
}

func fillBlank(l LinePlan) LinePlan {
	l.Indent = DefaultIndent
	l.BaselineVariation = DefaultBaselineVariation
	l.SlantAngle = DefaultSlantAngle
	l.PressureLevel = DefaultPressureLevel
	return l
}

func normalizeLine(l LinePlan) LinePlan {
	l.Indent = seed.Clamp(l.Indent, minIndent, maxIndent)
	l.BaselineVariation = seed.Clamp(l.BaselineVariation, 0, 1)
	l.SlantAngle = seed.Clamp(l.SlantAngle, minSlant, maxSlant)
	l.PressureLevel = seed.Clamp(l.PressureLevel, 0, 1)
	if !validAlignments[l.Alignment] {
		l.Alignment = AlignLeft
	}
	if !validEmphasis[l.Emphasis] {
		l.Emphasis = EmphasisNormal
	}
	if !validSpacing[l.WordSpacing] {
		l.WordSpacing = SpacingNormal
	}
	if l.IsFraction && l.FractionParts == nil {
		l.FractionParts = ExtractFraction(l.Content)
	}
	if l.FractionParts != nil {
		fp := *l.FractionParts
		fp.RemainingText = strings.TrimSpace(fp.RemainingText)
		l.FractionParts = &fp
	}
	l.IsFraction = l.FractionParts != nil
	return l
}

func normalizeGlobal(g GlobalStyle) GlobalStyle {
	d := DefaultGlobalStyle()
	g.Consistency = seed.Clamp(g.Consistency, 0, 1)
	g.Neatness = seed.Clamp(g.Neatness, 0, 1)
	g.SpeedVariation = seed.Clamp(g.SpeedVariation, 0, 1)
	if len(g.PersonalQuirks) == 0 {
		g.PersonalQuirks = d.PersonalQuirks
	} else {
		g.PersonalQuirks = append([]string{}, g.PersonalQuirks...)
	}
	return g
}

func orDefault[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

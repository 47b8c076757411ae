package plan

import (
	"strings"

	"github.com/matzehuels/handscript/pkg/core/seed"
)

// MaxFatigue caps the per-page fatigue level.
const MaxFatigue = 0.5

var fallbackQuirks = []string{"slight baseline wobble", "inconsistent spacing", "natural slant variation"}

// Fallback synthesizes a validated plan from page texts with local
// heuristics. Every input page yields one page and every page has at least
// one line.
func Fallback(pages []string, s seed.Seed) WritingPlan {
	p := WritingPlan{
		Pages:  make([]PagePlan, len(pages)),
		Origin: OriginFallback,
		GlobalStyle: GlobalStyle{
			Consistency:    0.7 + seed.Random(seed.Site(s, 0))*0.15,
			Neatness:       0.65 + seed.Random(seed.Site(s, 1))*0.2,
			SpeedVariation: 0.15 + seed.Random(seed.Site(s, 2))*0.1,
			PersonalQuirks: append([]string{}, fallbackQuirks...),
		},
	}
	for i, text := range pages {
		p.Pages[i] = FallbackPage(text, i, seed.Page(s, i))
	}
	return Normalize(p)
}

// FallbackPage plans a single page at index pageIdx with page seed s.
func FallbackPage(text string, pageIdx int, s seed.Seed) PagePlan {
	pg := PagePlan{
		PageNumber:   pageIdx + 1,
		Lines:        FallbackLines(text, pageIdx, s),
		MarginLeft:   25 + seed.Random(seed.Site(s, 0))*5,
		MarginRight:  15 + seed.Random(seed.Site(s, 1))*3,
		MarginTop:    20 + seed.Random(seed.Site(s, 2))*5,
		LineSpacing:  26 + seed.Random(seed.Site(s, 3))*4,
		OverallSlant: -3 + seed.Random(seed.Site(s, 4))*2,
		WritingSpeed: SpeedMedium,
		FatigueLevel: min(MaxFatigue, float64(pageIdx)*0.05),
	}
	if pageIdx >= 2 {
		pg.WritingSpeed = SpeedFast
	}
	return pg
}

// FallbackLines wraps and analyzes the lines of one page.
func FallbackLines(text string, pageIdx int, s seed.Seed) []LinePlan {
	raw := BreakIntoLines(strings.TrimSpace(text), WrapWidth)
	lines := make([]LinePlan, len(raw))
	for j, content := range raw {
		lines[j] = AnalyzeLine(content, pageIdx, j, seed.Line(s, j))
	}
	return lines
}

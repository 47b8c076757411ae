package sink

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/handscript/pkg/core/compose"
)

// Paper describes the ruled paper drawn behind the handwriting.
type Paper struct {
	Ruled       bool
	Background  string
	RuleColor   string
	MarginColor string
	LabelColor  string
}

// DefaultPaper is white notebook paper with blue rules and a red margin.
func DefaultPaper() Paper {
	return Paper{
		Ruled:       true,
		Background:  "#fdfdf8",
		RuleColor:   "#b8cbe4",
		MarginColor: "#e8a0a0",
		LabelColor:  "#6b7280",
	}
}

// Blank is plain paper without rules.
func Blank() Paper {
	p := DefaultPaper()
	p.Ruled = false
	return p
}

const labelSize = 14.0

// labelX is the right edge of the header label.
const labelX = compose.Width - compose.MarginX

// rgb parses hex, falling back to black.
func rgb(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}
	}
	return c
}

// inkFor returns the color a glyph is drawn with.
func inkFor(s compose.Sheet, g compose.Glyph) string {
	if g.Style.InkPoolStart || g.Style.InkPoolEnd {
		return s.PoolInk
	}
	return s.Ink
}

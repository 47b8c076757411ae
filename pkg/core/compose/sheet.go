package compose

import "fmt"

// Sheet geometry in pixels (A4 at 96 dpi).
const (
	Width        = 794.0
	Height       = 1123.0
	HeaderHeight = 64.0
	MarginX      = 56.0
	BottomMargin = 40.0

	// RuleFactor scales a page's line spacing to the ruled-line distance.
	RuleFactor = 1.4
)

// Point is a position on a sheet.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DecorationKind identifies a non-character stroke.
type DecorationKind string

const (
	DecorFractionBar DecorationKind = "fraction_bar"
	DecorRadical     DecorationKind = "radical"
	DecorStrike      DecorationKind = "strike"
	DecorUnderline   DecorationKind = "underline"
	DecorDiagram     DecorationKind = "diagram"
)

// Decoration is a hand-drawn polyline.
type Decoration struct {
	Kind        DecorationKind `json:"kind"`
	Points      []Point        `json:"points"`
	Closed      bool           `json:"closed,omitempty"`
	StrokeWidth float64        `json:"stroke_width"`
	Opacity     float64        `json:"opacity"`
	Label       string         `json:"label,omitempty"`
}

// Sheet is one composed page of ruled paper.
type Sheet struct {
	Number      int     `json:"number"`
	PageNumber  int     `json:"page_number"`
	Continued   bool    `json:"continued,omitempty"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	RuleTop     float64 `json:"rule_top"`
	RuleSpacing float64 `json:"rule_spacing"`

	// Ink and PoolInk are hex colors; PoolInk shades ink pools and blobs.
	Ink     string `json:"ink"`
	PoolInk string `json:"pool_ink"`

	Glyphs      []Glyph      `json:"glyphs"`
	Decorations []Decoration `json:"decorations"`
}

// Label is the header text of the sheet.
func (s Sheet) Label() string {
	return fmt.Sprintf("Page %d", s.Number)
}

// Rules returns the y positions of the horizontal ruled lines.
func (s Sheet) Rules() []float64 {
	if s.RuleSpacing <= 0 {
		return nil
	}
	var ys []float64
	for y := s.RuleTop + s.RuleSpacing; y <= s.Height-BottomMargin+0.01; y += s.RuleSpacing {
		ys = append(ys, y)
	}
	return ys
}

// Count returns the total number of glyphs and decorations in sheets.
func Count(sheets []Sheet) (glyphs, decorations int) {
	for _, s := range sheets {
		glyphs += len(s.Glyphs)
		decorations += len(s.Decorations)
	}
	return glyphs, decorations
}

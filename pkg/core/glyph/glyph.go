package glyph

import (
	"math"

	"github.com/matzehuels/handscript/pkg/core/seed"
	"github.com/matzehuels/handscript/pkg/core/style"
)

// Style is the visual transform of one character.
type Style struct {
	Rotation     float64 `json:"rotation"`
	OffsetY      float64 `json:"offset_y"`
	Scale        float64 `json:"scale"`
	Skew         float64 `json:"skew"`
	Opacity      float64 `json:"opacity"`
	MarginRight  float64 `json:"margin_right"`
	StrokeWidth  float64 `json:"stroke_width"`
	Font         string  `json:"font,omitempty"`
	InkPoolStart bool    `json:"ink_pool_start,omitempty"`
	InkPoolEnd   bool    `json:"ink_pool_end,omitempty"`
	InkBlob      bool    `json:"ink_blob,omitempty"`
	Connect      bool    `json:"connect,omitempty"`

	// Space marks a spacing box; only Width and Opacity are meaningful.
	Space bool    `json:"space,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// Input describes one character to style.
type Input struct {
	Char      rune
	Seed      seed.Seed
	Thickness float64
	Word      *WordContext
	Index     int // position in Word
	Line      *LineContext
	LinePos   int // position in Line, drives the baseline wave
}

// Generator computes character styles for one style configuration.
type Generator struct {
	cfg style.Config
}

// New returns a generator for cfg. The config is normalized first.
func New(cfg style.Config) Generator {
	return Generator{cfg: style.Normalize(cfg)}
}

// Config returns the normalized configuration.
func (g Generator) Config() style.Config { return g.cfg }

// digitBias is the per-digit shape bias: width and height factors and a
// rotation bias in degrees.
var digitBias = [10]struct{ width, height, rotation float64 }{
	{1.05, 1.00, -1.0}, // 0
	{0.80, 1.06, -2.5}, // 1
	{1.00, 0.98, 1.0},  // 2
	{0.98, 1.02, 0.5},  // 3
	{1.04, 1.04, -1.5}, // 4
	{0.98, 0.99, 2.0},  // 5
	{1.00, 1.03, -0.5}, // 6
	{0.95, 1.00, 3.0},  // 7
	{1.02, 1.01, 0.0},  // 8
	{0.97, 1.02, 1.5},  // 9
}

// Draw sites within one character seed.
const (
	siteRotation = iota
	siteOffset
	siteJitter
	siteScale
	siteSkew
	siteKern
	siteKernJitter
	sitePressure
	siteOpacity
	siteFont
	siteFontClass
	sitePoolStart
	sitePoolEnd
	siteBlob
	siteConnect
	siteSpace
	siteOffsetJitter
)

// Style computes the transform of in.Char. It never returns non-finite values.
func (g Generator) Style(in Input) Style {
	cfg := g.cfg
	amp := cfg.Amplifier()
	s := in.Seed
	at := func(k int) seed.Seed { return seed.Site(s, k) }

	if in.Char == ' ' || in.Char == '\t' || in.Char == '\n' {
		w := 6 * cfg.Spacing * (1 + seed.Range(at(siteSpace), -0.15, 0.15)*cfg.Messiness)
		return Style{Space: true, Width: seed.Finite(w, 6), Opacity: 1, Scale: 1}
	}

	class := style.ClassOf(in.Char)
	digit := class == style.ClassDigit
	bias := struct{ width, height, rotation float64 }{1, 1, 0}
	if digit {
		bias = digitBias[in.Char-'0']
	}

	// Rotation.
	var rotation float64
	switch {
	case digit:
		fatigue := math.Sin(float64(s)*0.01)*0.5 + 0.5
		rotation = bias.rotation + seed.Gaussian(at(siteRotation), 0, 1.2)*amp + fatigue*1.5*amp
	case style.IsMath(in.Char):
		rotation = seed.Gaussian(at(siteRotation), 0, 0.8) * amp
	default:
		slantBias := DefaultSlantBias
		if in.Word != nil {
			slantBias = in.Word.SlantBias
		}
		jitter := seed.Gaussian(at(siteRotation), 0, 1.5) * amp
		rotation = slantBias*0.7 + jitter*0.3 + seed.Range(at(siteJitter), -3, 3)*cfg.Messiness
	}
	rotation += cfg.SlantDegrees()

	// Baseline offset.
	var offset float64
	if in.Line != nil {
		offset += in.Line.Wave(in.LinePos)
	}
	offset += seed.Gaussian(at(siteOffset), 0, 0.6) * amp
	if digit {
		offset -= (bias.height - 1) * 4
	}
	offset += seed.Range(at(siteOffsetJitter), -0.3, 0.3) * cfg.Messiness * 6

	// Scale.
	scale := cfg.Size * bias.height * (1 + seed.Gaussian(at(siteScale), 0, 0.03)*amp)

	// Skew follows the lean.
	skew := -cfg.Slant*5 + seed.Gaussian(at(siteSkew), 0, 1.0)*amp*0.5

	// Kerning.
	kern := cfg.Spacing*0.5 + seed.Gaussian(at(siteKern), 0, 0.25)*amp
	if in.Word != nil && in.Word.Length > 1 {
		kern += math.Sin(math.Pi*(float64(in.Index)+0.5)/float64(in.Word.Length)) * 0.4
	}
	kern += seed.Range(at(siteKernJitter), -0.2, 0.2)
	if digit {
		kern *= bias.width
	}

	// Pressure and opacity.
	first, last := false, false
	if in.Word != nil {
		first = in.Index == 0
		last = in.Index == in.Word.Length-1
	}
	pressure := seed.Gaussian(at(sitePressure), 0, 0.08)
	if first || last {
		pressure += 0.12
	}
	pressure = seed.Clamp(pressure, -1, 1)
	base := 0.8 + seed.Range(at(siteOpacity), 0, 0.2)
	opacity := base * (1 - math.Abs(pressure)*0.3)

	thickness := in.Thickness
	if thickness <= 0 {
		thickness = cfg.Thickness()
	}
	stroke := thickness * (1 + pressure*0.5)

	st := Style{
		Rotation:    seed.Clamp(seed.Finite(rotation, 0), -25, 25),
		OffsetY:     seed.Clamp(seed.Finite(offset, 0), -12, 12),
		Scale:       seed.Clamp(seed.Finite(scale, cfg.Size), 0.6, 1.5),
		Skew:        seed.Clamp(seed.Finite(skew, 0), -15, 15),
		Opacity:     seed.Clamp(seed.Finite(opacity, 0.9), 0, 1),
		MarginRight: seed.Clamp(seed.Finite(kern, 0.5), -1, 4),
		StrokeWidth: seed.Clamp(seed.Finite(stroke, thickness), 0.1, 2),
		Font:        g.font(in, class),
	}

	if in.Word != nil {
		st.InkPoolStart = first && seed.Chance(at(sitePoolStart), 0.6)
		st.InkPoolEnd = last && seed.Chance(at(sitePoolEnd), 0.5)
		st.Connect = class == style.ClassLetter && !last && seed.Chance(at(siteConnect), 0.25+0.2*max(cfg.Slant, 0))
	}
	st.InkBlob = seed.Chance(at(siteBlob), 0.015*amp)
	return st
}

// font picks a family: the word font for most characters of a word, a
// class-weighted draw otherwise.
func (g Generator) font(in Input, class style.Class) string {
	if in.Word != nil && in.Word.Font != "" && seed.Chance(seed.Site(in.Seed, siteFont), 0.95) {
		return in.Word.Font
	}
	weights := g.cfg.Font.FontWeights(class)
	return style.Families[seed.Pick(seed.Site(in.Seed, siteFontClass), weights)]
}

// Advance returns the horizontal distance a styled character occupies at
// fontSize, including kerning.
func (st Style) Advance(r rune, fontSize float64) float64 {
	if st.Space {
		return st.Width * fontSize / 16
	}
	return WidthFactor(r)*fontSize*st.Scale + st.MarginRight
}

// WidthFactor approximates the em-relative width of r in a handwriting face.
func WidthFactor(r rune) float64 {
	switch r {
	case 'i', 'l', 'j', '!', '|', '.', ',', ':', ';', '\'', '"', '1', 'I':
		return 0.28
	case 'f', 't', 'r', '(', ')', '[', ']', '-':
		return 0.38
	case 'm', 'w', 'M', 'W', '×', '÷', '@':
		return 0.78
	}
	if r >= 'A' && r <= 'Z' {
		return 0.62
	}
	return 0.5
}

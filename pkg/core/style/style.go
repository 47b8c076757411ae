// Package style defines the canonical handwriting style configuration.
//
// A [Config] is immutable for a render pass: changing the global seed
// produces a new visual pass without touching it. All fields have documented
// ranges and [Normalize] coerces any config into them.
package style

import (
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/handscript/pkg/core/seed"
)

// Handwriting font families known to the renderers.
const (
	FontCaveat           = "Caveat"
	FontCedarville       = "Cedarville Cursive"
	FontShadowsIntoLight = "Shadows Into Light"
	FontHomemadeApple    = "Homemade Apple"
)

// Families lists the known font families in catalog order.
var Families = []string{FontCaveat, FontCedarville, FontShadowsIntoLight, FontHomemadeApple}

// DefaultColor is blue-black ballpoint ink.
const DefaultColor = "#0a2472"

// Field ranges.
const (
	MinSlant, MaxSlant         = -1.0, 1.0
	MinSpacing, MaxSpacing     = 0.8, 1.5
	MinSize, MaxSize           = 0.8, 1.2
	MinWeight, MaxWeight       = 0.5, 2.0
	MinMessiness, MaxMessiness = 0.0, 1.0
)

// FontPolicy selects fonts for a pass: a fixed family, or a seeded weighted
// mix over [Families] when Mix is set. Family is the preferred font of a mix.
type FontPolicy struct {
	Family string `json:"family" yaml:"family"`
	Mix    bool   `json:"mix,omitempty" yaml:"mix,omitempty"`
}

// Config is the handwriting style for one document.
type Config struct {
	Slant     float64    `json:"slant" yaml:"slant"`
	Spacing   float64    `json:"spacing" yaml:"spacing"`
	Size      float64    `json:"size" yaml:"size"`
	Weight    float64    `json:"weight" yaml:"weight"`
	Messiness float64    `json:"messiness" yaml:"messiness"`
	Font      FontPolicy `json:"font" yaml:"font"`
	Color     string     `json:"color" yaml:"color"`
}

// Default returns the default style.
func Default() Config {
	return Config{
		Slant:     0,
		Spacing:   1,
		Size:      1,
		Weight:    1,
		Messiness: 0.2,
		Font:      FontPolicy{Family: FontCaveat},
		Color:     DefaultColor,
	}
}

// Normalize clamps every field into range and replaces unknown fonts and
// unparsable colors with defaults. Zero-valued multipliers are treated as
// unset. Normalize is idempotent.
func Normalize(c Config) Config {
	d := Default()
	if c.Spacing == 0 {
		c.Spacing = d.Spacing
	}
	if c.Size == 0 {
		c.Size = d.Size
	}
	if c.Weight == 0 {
		c.Weight = d.Weight
	}
	c.Slant = seed.Clamp(seed.Finite(c.Slant, d.Slant), MinSlant, MaxSlant)
	c.Spacing = seed.Clamp(seed.Finite(c.Spacing, d.Spacing), MinSpacing, MaxSpacing)
	c.Size = seed.Clamp(seed.Finite(c.Size, d.Size), MinSize, MaxSize)
	c.Weight = seed.Clamp(seed.Finite(c.Weight, d.Weight), MinWeight, MaxWeight)
	c.Messiness = seed.Clamp(seed.Finite(c.Messiness, d.Messiness), MinMessiness, MaxMessiness)

	if fam, ok := LookupFamily(c.Font.Family); ok {
		c.Font.Family = fam
	} else {
		c.Font.Family = d.Font.Family
	}

	if col, err := colorful.Hex(strings.TrimSpace(c.Color)); err == nil {
		c.Color = col.Hex()
	} else {
		c.Color = d.Color
	}
	return c
}

// LookupFamily resolves a family name case-insensitively.
func LookupFamily(name string) (string, bool) {
	name = strings.TrimSpace(name)
	i := slices.IndexFunc(Families, func(f string) bool { return strings.EqualFold(f, name) })
	if i < 0 {
		return "", false
	}
	return Families[i], true
}

// Thickness returns the base ink thickness derived from Weight, in [0.3, 1].
func (c Config) Thickness() float64 {
	return seed.Clamp(c.Weight/2, 0.3, 1.0)
}

// Amplifier returns the jitter amplification factor for Messiness.
func (c Config) Amplifier() float64 {
	return 0.5 + seed.Clamp(c.Messiness, MinMessiness, MaxMessiness)
}

// SlantDegrees returns the configured lean in degrees.
func (c Config) SlantDegrees() float64 {
	return c.Slant * 8
}

// BaseFontSize is the glyph size in pixels at Size 1.
const BaseFontSize = 22.0

// FontSize returns the nominal glyph size in pixels.
func (c Config) FontSize() float64 {
	return BaseFontSize * c.Size
}

// Ink returns the parsed ink color, falling back to [DefaultColor].
func (c Config) Ink() colorful.Color {
	if col, err := colorful.Hex(c.Color); err == nil {
		return col
	}
	col, _ := colorful.Hex(DefaultColor)
	return col
}

// InkShade returns the ink color darkened by amount in [0,1], used for ink
// pooling and blobs.
func (c Config) InkShade(amount float64) colorful.Color {
	black := colorful.Color{R: 0, G: 0, B: 0}
	return c.Ink().BlendLab(black, seed.Clamp(amount, 0, 1)).Clamped()
}

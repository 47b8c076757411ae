package glyph

import (
	"math"

	"github.com/matzehuels/handscript/pkg/core/seed"
	"github.com/matzehuels/handscript/pkg/core/style"
)

// DefaultSlantBias is the centre of the word-level lean, in degrees.
const DefaultSlantBias = -1.5

// WordContext holds attributes resolved once for a whole word.
type WordContext struct {
	Seed      seed.Seed `json:"seed"`
	Font      string    `json:"font"`
	SlantBias float64   `json:"slant_bias"`
	Length    int       `json:"length"`
}

// LineContext holds attributes resolved once for a whole line.
type LineContext struct {
	Seed            seed.Seed `json:"seed"`
	WaveAmplitude   float64   `json:"wave_amplitude"`
	WaveFrequency   float64   `json:"wave_frequency"`
	WavePhase       float64   `json:"wave_phase"`
	HeightVariation float64   `json:"height_variation"`
	MarginOffset    float64   `json:"margin_offset"`
}

// Word resolves the font and slant bias for a word of length characters.
func (g Generator) Word(s seed.Seed, length int) WordContext {
	class := style.ClassLetter
	if length <= 2 && seed.Chance(seed.Site(s, 0), 0.3) {
		class = style.ClassDigit
	}
	weights := g.cfg.Font.FontWeights(class)
	return WordContext{
		Seed:      s,
		Font:      style.Families[seed.Pick(seed.Site(s, 1), weights)],
		SlantBias: seed.Clamp(seed.Gaussian(seed.Site(s, 2), DefaultSlantBias, 0.8), -6, 3),
		Length:    max(length, 0),
	}
}

// Line resolves the baseline wave and offsets for a line.
func (g Generator) Line(s seed.Seed) LineContext {
	return LineContext{
		Seed:            s,
		WaveAmplitude:   seed.Range(seed.Site(s, 0), 0.2, 0.8),
		WaveFrequency:   seed.Range(seed.Site(s, 1), 0.1, 0.25),
		WavePhase:       seed.Range(seed.Site(s, 2), 0, 2*math.Pi),
		HeightVariation: seed.Clamp(seed.Gaussian(seed.Site(s, 3), 0, 0.5), -1.5, 1.5),
		MarginOffset:    seed.Range(seed.Site(s, 5), -3, 3),
	}
}

// Wave returns the baseline offset in pixels at character position pos.
func (l LineContext) Wave(pos int) float64 {
	return l.WaveAmplitude*3*math.Sin(float64(pos)*l.WaveFrequency+l.WavePhase) + l.HeightVariation
}

// Word resolves a word context with the default style.
func Word(s seed.Seed, length int) WordContext {
	return New(style.Default()).Word(s, length)
}

// Line resolves a line context with the default style.
func Line(s seed.Seed) LineContext {
	return New(style.Default()).Line(s)
}

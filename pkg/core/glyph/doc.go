// Package glyph computes per-character handwriting transforms.
//
// # Overview
//
// A [Generator] wraps a normalized [style.Config] and turns a character plus
// its seed into a [Style] record: rotation, baseline offset, scale, skew,
// opacity, kerning, stroke width, font family and ink flags. Generation is a
// pure function of its inputs; there is no state carried between characters.
//
// # Contexts
//
// Per-word and per-line attributes are resolved once and handed back to the
// generator for every character they cover:
//
//	word := g.Word(wordSeed, len(runes))
//	line := g.Line(lineSeed)
//	for i, r := range runes {
//	    st := g.Style(glyph.Input{Char: r, Seed: seed.Char(wordSeed, i), Word: &word, Index: i, Line: &line})
//	}
//
// Resolving the [WordContext] once per word keeps the font and slant
// consistent across its characters.
//
// # Rules
//
//   - Digits use a per-digit shape bias plus Gaussian jitter and a slow
//     fatigue sinusoid of the seed.
//   - Letters blend the word slant bias with per-character jitter.
//   - The baseline offset sums the line wave, a Gaussian drift, digit drift
//     and a small uniform jitter.
//   - Kerning adds a sinusoidal curve peaking mid-word.
//   - Pressure rises on the first and last character of a word; opacity is
//     base × (1 − |pressure|×0.3).
//   - Spaces short-circuit to a spacing box.
package glyph

// Package compose turns a validated writing plan into positioned sheets.
//
// # Overview
//
// A [Sheet] is one A4 page of ruled paper: a header band, a vertical margin
// rule and horizontal rules spaced from the page's line spacing. Every
// written character becomes a [Glyph] with its final position, size and
// [glyph.Style]; fraction bars, radicals, strike-throughs, underlines and
// diagram boxes become [Decoration] polylines.
//
// Composition is pure and deterministic: the same plan, style and seed
// always yield the same sheets. Renderers in pkg/render/sink consume the
// result without further randomness.
//
// # Plan influence
//
// Page fatigue raises the messiness of the style used for that page. A
// line's pressure level scales ink thickness, its baseline variation scales
// the baseline wave, and line and page slant angles add to every glyph's
// rotation. Lines that do not fit on a sheet continue on a new sheet of the
// same plan page.
package compose

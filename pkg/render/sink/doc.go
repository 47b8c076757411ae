// Package sink provides output format renderers for composed sheets.
//
// # Overview
//
// A "sink" transforms [compose.Sheet] values into a final output format:
//
//   - SVG: one document per sheet, handwriting fonts resolved by the viewer
//   - PNG: one raster image per sheet, drawn with fogleman/gg
//   - PDF: one multi-page document, one page per sheet
//   - JSON: the composed sheets for external tools and re-rendering
//
// Every format draws the same ruled paper: a background, a header band with
// the "Page N" label, a vertical margin rule and horizontal rules. Pass
// [WithPaper] and friends to change its colors or hide it.
//
// Basic usage:
//
//	svg := sink.RenderSVG(sheet, sink.WithTitle("Homework"))
//	png, err := sink.RenderPNG(sheet, sink.WithScale(2))
//	pdf, err := sink.RenderPDF(sheets)
//
// # Concurrency
//
// [RenderSVGs] and [RenderPNGs] render many sheets concurrently with an
// errgroup and return results in sheet order.
//
// [compose.Sheet]: github.com/matzehuels/handscript/pkg/core/compose.Sheet
package sink

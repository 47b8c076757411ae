package sink

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/handscript/pkg/core/compose"
	"github.com/matzehuels/handscript/pkg/fonts"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	paper Paper
	title string
}

// WithPaper sets the paper drawn behind the handwriting.
func WithPaper(p Paper) SVGOption { return func(r *svgRenderer) { r.paper = p } }

// WithTitle sets the document title.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{paper: DefaultPaper()}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG renders one sheet as a standalone SVG document.
func RenderSVG(s compose.Sheet, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.0f %.0f" width="%.0f" height="%.0f">`+"\n",
		s.Width, s.Height, s.Width, s.Height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", EscapeXML(r.title))
	}
	renderPaperSVG(&buf, r.paper, s)
	renderDecorationsSVG(&buf, s)
	renderGlyphsSVG(&buf, s)
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// RenderSVGs renders every sheet concurrently. Results are in sheet order.
func RenderSVGs(ctx context.Context, sheets []compose.Sheet, opts ...SVGOption) ([][]byte, error) {
	out := make([][]byte, len(sheets))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range sheets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = RenderSVG(s, opts...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func renderPaperSVG(buf *bytes.Buffer, p Paper, s compose.Sheet) {
	fmt.Fprintf(buf, `  <rect width="%.0f" height="%.0f" fill="%s"/>`+"\n", s.Width, s.Height, p.Background)
	if p.Ruled {
		buf.WriteString(`  <g class="rules" stroke-width="1">` + "\n")
		fmt.Fprintf(buf, `    <line x1="0" y1="%.1f" x2="%.0f" y2="%.1f" stroke="%s"/>`+"\n", compose.HeaderHeight, s.Width, compose.HeaderHeight, p.RuleColor)
		for _, y := range s.Rules() {
			fmt.Fprintf(buf, `    <line x1="0" y1="%.1f" x2="%.0f" y2="%.1f" stroke="%s"/>`+"\n", y, s.Width, y, p.RuleColor)
		}
		fmt.Fprintf(buf, `    <line x1="%.1f" y1="0" x2="%.1f" y2="%.0f" stroke="%s"/>`+"\n", compose.MarginX, compose.MarginX, s.Height, p.MarginColor)
		buf.WriteString("  </g>\n")
	}
	fmt.Fprintf(buf, `  <text class="label" x="%.1f" y="%.1f" text-anchor="end" font-family="sans-serif" font-size="%.0f" fill="%s">%s</text>`+"\n",
		labelX, compose.HeaderHeight/2+labelSize/3, labelSize, p.LabelColor, EscapeXML(s.Label()))
}

func renderDecorationsSVG(buf *bytes.Buffer, s compose.Sheet) {
	for _, d := range s.Decorations {
		tag := "polyline"
		if d.Closed {
			tag = "polygon"
		}
		fmt.Fprintf(buf, `  <%s class="%s" points="%s" fill="none" stroke="%s" stroke-width="%.2f" stroke-opacity="%.2f" stroke-linecap="round" stroke-linejoin="round"/>`+"\n",
			tag, d.Kind, svgPoints(d.Points), s.Ink, d.StrokeWidth, d.Opacity)
	}
}

func renderGlyphsSVG(buf *bytes.Buffer, s compose.Sheet) {
	buf.WriteString(`  <g class="ink">` + "\n")
	for _, g := range s.Glyphs {
		ink := inkFor(s, g)
		fmt.Fprintf(buf, `    <text transform="translate(%.2f %.2f) rotate(%.2f) skewX(%.2f)" font-family="%s" font-size="%.2f" fill="%s" fill-opacity="%.2f" stroke="%s" stroke-width="%.2f">%s</text>`+"\n",
			g.X, g.Y, g.Style.Rotation, g.Style.Skew, EscapeXML(fonts.CSSFamily(g.Style.Font)), g.Size,
			ink, g.Style.Opacity, ink, g.Style.StrokeWidth*0.3, EscapeXML(g.Char))
		if g.Style.InkBlob {
			fmt.Fprintf(buf, `    <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="0.6"/>`+"\n",
				g.X+g.Size*0.25, g.Y+1, 1+g.Style.StrokeWidth, s.PoolInk)
		}
	}
	buf.WriteString("  </g>\n")
}

func svgPoints(pts []compose.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmt.Sprintf("%.2f,%.2f", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}

// EscapeXML escapes s for use in XML text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

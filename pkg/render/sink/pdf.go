package sink

import (
	"bytes"
	"fmt"

	"codeberg.org/go-pdf/fpdf"

	"github.com/matzehuels/handscript/pkg/core/compose"
	"github.com/matzehuels/handscript/pkg/fonts"
)

// pxToPt converts sheet pixels (96 dpi) to PDF points.
const pxToPt = 0.75

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	paper Paper
	title string
}

// WithPDFPaper sets the paper drawn behind the handwriting.
func WithPDFPaper(p Paper) PDFOption { return func(r *pdfRenderer) { r.paper = p } }

// WithPDFTitle sets the document title metadata.
func WithPDFTitle(t string) PDFOption { return func(r *pdfRenderer) { r.title = t } }

// RenderPDF renders all sheets into one PDF document, one page per sheet.
func RenderPDF(sheets []compose.Sheet, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{paper: DefaultPaper()}
	for _, opt := range opts {
		opt(&r)
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator("handscript", true)
	if r.title != "" {
		pdf.SetTitle(r.title, true)
	}

	keys := map[string]string{}
	for i, name := range fonts.Names() {
		key := fmt.Sprintf("hs%d", i)
		pdf.AddUTF8FontFromBytes(key, "", fonts.TTF(name))
		keys[name] = key
	}
	fontKey := func(family string) string {
		if k, ok := keys[family]; ok {
			return k
		}
		return keys[fonts.Names()[0]]
	}

	for _, s := range sheets {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: s.Width * pxToPt, Ht: s.Height * pxToPt})
		renderPaperPDF(pdf, r.paper, s, fontKey(fonts.Label))
		renderDecorationsPDF(pdf, s)
		renderGlyphsPDF(pdf, s, fontKey)
	}

	if pdf.Err() {
		return nil, fmt.Errorf("render pdf: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func setPDFDraw(pdf *fpdf.Fpdf, hex string) {
	r, g, b := rgb(hex).RGB255()
	pdf.SetDrawColor(int(r), int(g), int(b))
}

func renderPaperPDF(pdf *fpdf.Fpdf, p Paper, s compose.Sheet, labelFont string) {
	w, h := s.Width*pxToPt, s.Height*pxToPt
	r, g, b := rgb(p.Background).RGB255()
	pdf.SetFillColor(int(r), int(g), int(b))
	pdf.Rect(0, 0, w, h, "F")

	if p.Ruled {
		pdf.SetLineWidth(0.75)
		setPDFDraw(pdf, p.RuleColor)
		for _, y := range append([]float64{compose.HeaderHeight}, s.Rules()...) {
			pdf.Line(0, y*pxToPt, w, y*pxToPt)
		}
		setPDFDraw(pdf, p.MarginColor)
		pdf.Line(compose.MarginX*pxToPt, 0, compose.MarginX*pxToPt, h)
	}

	size := labelSize * pxToPt
	pdf.SetFont(labelFont, "", size)
	r, g, b = rgb(p.LabelColor).RGB255()
	pdf.SetTextColor(int(r), int(g), int(b))
	label := s.Label()
	pdf.Text(labelX*pxToPt-pdf.GetStringWidth(label), (compose.HeaderHeight/2+labelSize/3)*pxToPt, label)
}

func renderDecorationsPDF(pdf *fpdf.Fpdf, s compose.Sheet) {
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	setPDFDraw(pdf, s.Ink)
	for _, d := range s.Decorations {
		pdf.SetAlpha(d.Opacity, "Normal")
		pdf.SetLineWidth(d.StrokeWidth * pxToPt)
		pts := make([]fpdf.PointType, len(d.Points))
		for i, p := range d.Points {
			pts[i] = fpdf.PointType{X: p.X * pxToPt, Y: p.Y * pxToPt}
		}
		if d.Closed {
			pdf.Polygon(pts, "D")
			continue
		}
		for i := 1; i < len(pts); i++ {
			pdf.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
		}
	}
	pdf.SetAlpha(1, "Normal")
}

func renderGlyphsPDF(pdf *fpdf.Fpdf, s compose.Sheet, fontKey func(string) string) {
	for _, g := range s.Glyphs {
		x, y := g.X*pxToPt, g.Y*pxToPt
		r, gr, b := rgb(inkFor(s, g)).RGB255()
		pdf.SetTextColor(int(r), int(gr), int(b))
		pdf.SetFont(fontKey(g.Style.Font), "", g.Size*pxToPt)
		pdf.SetAlpha(g.Style.Opacity, "Normal")

		// PDF rotation is counter-clockwise.
		pdf.TransformBegin()
		pdf.TransformRotate(-g.Style.Rotation, x, y)
		pdf.TransformSkewX(-g.Style.Skew, x, y)
		pdf.Text(x, y, g.Char)
		pdf.TransformEnd()

		if g.Style.InkBlob {
			r, gr, b := rgb(s.PoolInk).RGB255()
			pdf.SetFillColor(int(r), int(gr), int(b))
			pdf.SetAlpha(0.6, "Normal")
			pdf.Circle(x+g.Size*0.25*pxToPt, y+pxToPt, (1+g.Style.StrokeWidth)*pxToPt, "F")
		}
	}
	pdf.SetAlpha(1, "Normal")
}

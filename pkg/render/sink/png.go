package sink

import (
	"bytes"
	"context"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/handscript/pkg/core/compose"
	"github.com/matzehuels/handscript/pkg/fonts"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	paper Paper
	scale float64
}

// WithScale sets the PNG scale factor (default 1.5).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithPNGPaper sets the paper drawn behind the handwriting.
func WithPNGPaper(p Paper) PNGOption { return func(r *pngRenderer) { r.paper = p } }

func newPNGRenderer(opts ...PNGOption) pngRenderer {
	r := pngRenderer{paper: DefaultPaper(), scale: 1.5}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 || math.IsNaN(r.scale) {
		r.scale = 1
	}
	return r
}

// RenderPNG rasterizes one sheet.
func RenderPNG(s compose.Sheet, opts ...PNGOption) ([]byte, error) {
	r := newPNGRenderer(opts...)
	dc := gg.NewContext(int(math.Ceil(s.Width*r.scale)), int(math.Ceil(s.Height*r.scale)))
	dc.Scale(r.scale, r.scale)

	faces := faceCache{}
	if err := renderPaperPNG(dc, r.paper, s, faces); err != nil {
		return nil, err
	}
	renderDecorationsPNG(dc, s)
	if err := renderGlyphsPNG(dc, s, faces); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderPNGs rasterizes every sheet concurrently. Results are in sheet order.
func RenderPNGs(ctx context.Context, sheets []compose.Sheet, opts ...PNGOption) ([][]byte, error) {
	out := make([][]byte, len(sheets))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range sheets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := RenderPNG(s, opts...)
			out[i] = b
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type faceKey struct {
	family string
	size   float64
}

// faceCache holds faces for one render; faces are not safe for concurrent use.
type faceCache map[faceKey]font.Face

func (c faceCache) get(family string, size float64) (font.Face, error) {
	k := faceKey{family, math.Round(size*2) / 2}
	if f, ok := c[k]; ok {
		return f, nil
	}
	f, err := fonts.Face(family, k.size)
	if err != nil {
		return nil, err
	}
	c[k] = f
	return f, nil
}

func setHex(dc *gg.Context, hex string, alpha float64) {
	c := rgb(hex)
	dc.SetRGBA(c.R, c.G, c.B, alpha)
}

func renderPaperPNG(dc *gg.Context, p Paper, s compose.Sheet, faces faceCache) error {
	setHex(dc, p.Background, 1)
	dc.Clear()
	if p.Ruled {
		dc.SetLineWidth(1)
		setHex(dc, p.RuleColor, 1)
		for _, y := range append([]float64{compose.HeaderHeight}, s.Rules()...) {
			dc.DrawLine(0, y, s.Width, y)
			dc.Stroke()
		}
		setHex(dc, p.MarginColor, 1)
		dc.DrawLine(compose.MarginX, 0, compose.MarginX, s.Height)
		dc.Stroke()
	}
	face, err := faces.get(fonts.Label, labelSize)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	setHex(dc, p.LabelColor, 1)
	dc.DrawStringAnchored(s.Label(), labelX, compose.HeaderHeight/2, 1, 0.5)
	return nil
}

func renderDecorationsPNG(dc *gg.Context, s compose.Sheet) {
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	for _, d := range s.Decorations {
		if len(d.Points) == 0 {
			continue
		}
		setHex(dc, s.Ink, d.Opacity)
		dc.SetLineWidth(d.StrokeWidth)
		dc.MoveTo(d.Points[0].X, d.Points[0].Y)
		for _, p := range d.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		if d.Closed {
			dc.ClosePath()
		}
		dc.Stroke()
	}
}

func renderGlyphsPNG(dc *gg.Context, s compose.Sheet, faces faceCache) error {
	for _, g := range s.Glyphs {
		face, err := faces.get(g.Style.Font, g.Size)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		setHex(dc, inkFor(s, g), g.Style.Opacity)

		dc.Push()
		dc.Translate(g.X, g.Y)
		dc.Rotate(gg.Radians(g.Style.Rotation))
		dc.Shear(math.Tan(gg.Radians(g.Style.Skew)), 0)
		dc.DrawString(g.Char, 0, 0)
		dc.Pop()

		if g.Style.InkBlob {
			setHex(dc, s.PoolInk, 0.6)
			dc.DrawCircle(g.X+g.Size*0.25, g.Y+1, 1+g.Style.StrokeWidth)
			dc.Fill()
		}
	}
	return nil
}

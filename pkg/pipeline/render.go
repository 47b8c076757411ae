package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/handscript/pkg/cache"
	"github.com/matzehuels/handscript/pkg/core/compose"
	"github.com/matzehuels/handscript/pkg/core/seed"
	"github.com/matzehuels/handscript/pkg/core/style"
	"github.com/matzehuels/handscript/pkg/render/sink"
)

// Render generates output artifacts in the requested formats. SVG and PNG
// produce one file per sheet.
func Render(ctx context.Context, sheets []compose.Sheet, cfg style.Config, s seed.Seed, opts Options) (map[string][][]byte, error) {
	paper := sink.DefaultPaper()
	if opts.Blank {
		paper = sink.Blank()
	}

	artifacts := make(map[string][][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			files [][]byte
			err   error
		)
		switch format {
		case FormatSVG:
			files, err = sink.RenderSVGs(ctx, sheets, sink.WithPaper(paper), sink.WithTitle(opts.Title))
		case FormatPNG:
			files, err = sink.RenderPNGs(ctx, sheets, sink.WithPNGPaper(paper), sink.WithScale(opts.Scale))
		case FormatPDF:
			var data []byte
			data, err = sink.RenderPDF(sheets, sink.WithPDFPaper(paper), sink.WithPDFTitle(opts.Title))
			files = [][]byte{data}
		case FormatJSON:
			var data []byte
			data, err = sink.RenderJSON(sheets, sink.WithJSONSeed(s), sink.WithJSONStyle(cfg))
			files = [][]byte{data}
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = files
	}
	return artifacts, nil
}

// RenderWithCacheInfo renders res.Sheets, reusing cached artifacts per
// format, and reports whether every format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *Result, opts Options) (map[string][][]byte, bool, error) {
	styleHash, err := cache.HashJSON(res.Style)
	if err != nil {
		return nil, false, fmt.Errorf("hash style: %w", err)
	}
	key := func(format string) string {
		return r.Keyer.ArtifactKey(res.PlanHash, opts.ArtifactKeyOpts(format, styleHash))
	}

	artifacts := make(map[string][][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		var files [][]byte
		if res.PlanHash != "" && r.getJSON(ctx, "artifact", key(format), &files) && len(files) > 0 {
			artifacts[format] = files
			continue
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, res.Sheets, res.Style, res.Seed, renderOpts)
	if err != nil {
		return nil, false, err
	}
	for format, files := range rendered {
		artifacts[format] = files
		if res.PlanHash != "" {
			r.setJSON(ctx, "artifact", key(format), files, cache.TTLArtifact)
		}
	}
	return artifacts, false, nil
}

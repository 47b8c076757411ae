package pipeline

import (
	"context"
	"os"

	"github.com/matzehuels/handscript/pkg/cache"
	"github.com/matzehuels/handscript/pkg/errors"
	"github.com/matzehuels/handscript/pkg/extract"
)

// ExtractWithCacheInfo reads the page text of the run's input and reports
// whether it came from cache. Page input is normalized but never cached.
func (r *Runner) ExtractWithCacheInfo(ctx context.Context, opts Options) (extract.Document, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return extract.Document{}, false, err
	}

	if opts.Pages != nil {
		pages := make([]string, 0, max(len(opts.Pages), 1))
		for _, p := range opts.Pages {
			pages = append(pages, extract.Normalize(p))
		}
		if len(pages) == 0 {
			pages = append(pages, "")
		}
		return extract.Document{Source: opts.Name, Kind: extract.KindText, Pages: pages}, false, nil
	}

	data := opts.Data
	if opts.Input != "" {
		var err error
		if data, err = os.ReadFile(opts.Input); err != nil {
			return extract.Document{}, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", opts.Input)
		}
	}

	key := r.Keyer.ExtractKey(cache.Hash(data), opts.OCRLanguage)
	if !opts.Refresh {
		var doc extract.Document
		if r.getJSON(ctx, "extract", key, &doc) && len(doc.Pages) > 0 {
			return doc, true, nil
		}
	}

	doc, err := r.extract(ctx, opts.Name, data, opts.OCRLanguage)
	if err != nil {
		return extract.Document{}, false, err
	}
	r.setJSON(ctx, "extract", key, doc, cache.TTLExtract)
	return doc, false, nil
}

// Extract is a convenience wrapper that calls ExtractWithCacheInfo and discards the cache hit info.
func (r *Runner) Extract(ctx context.Context, opts Options) (extract.Document, error) {
	doc, _, err := r.ExtractWithCacheInfo(ctx, opts)
	return doc, err
}

// extract runs the configured extractor, or a router that owns an OCR
// engine for the duration of one image.
func (r *Runner) extract(ctx context.Context, name string, data []byte, lang string) (extract.Document, error) {
	if r.Extractor != nil {
		return r.Extractor.Extract(ctx, name, data)
	}
	router := extract.NewRouter()
	if extract.Detect(name, data) == extract.KindImage && extract.OCRAvailable() {
		ocr, err := extract.NewOCR(lang)
		if err != nil {
			return extract.Document{}, errors.Wrap(errors.ErrCodeExtraction, err, "start OCR")
		}
		defer func() { _ = ocr.Close() }()
		router.Image = ocr
	}
	return router.Extract(ctx, name, data)
}

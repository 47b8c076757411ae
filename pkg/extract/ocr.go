//go:build ocr

package extract

import (
	"context"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/matzehuels/handscript/pkg/errors"
)

// OCR recognizes text in images with Tesseract. It is safe for concurrent
// use; recognitions are serialized on the underlying client.
type OCR struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewOCR creates an OCR handle for the given Tesseract language(s), e.g.
// "eng" or "eng+deu". The handle must be closed when no longer needed.
func NewOCR(lang string) (*OCR, error) {
	c := gosseract.NewClient()
	if lang == "" {
		lang = DefaultOCRLanguage
	}
	if err := c.SetLanguage(lang); err != nil {
		c.Close()
		return nil, errors.Wrap(errors.ErrCodeExtraction, err, "set OCR language %q", lang)
	}
	return &OCR{client: c}, nil
}

// Extract implements [Extractor] for a single image.
func (o *OCR) Extract(ctx context.Context, name string, data []byte) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.client.SetImageFromBytes(data); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeExtraction, err, "load image %s", name)
	}
	text, err := o.client.Text()
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeExtraction, err, "recognize %s", name)
	}
	return document(name, KindImage, []string{text}), nil
}

// Close releases the Tesseract client.
func (o *OCR) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.client == nil {
		return nil
	}
	err := o.client.Close()
	o.client = nil
	return err
}

// OCRAvailable reports whether OCR support was compiled in.
func OCRAvailable() bool { return true }

//go:build !ocr

package extract

import (
	"context"
)

// OCR is a stub that fails every recognition.
type OCR struct{}

// NewOCR always returns ErrOCRNotEnabled.
func NewOCR(string) (*OCR, error) { return nil, ErrOCRNotEnabled }

// Extract always returns ErrOCRNotEnabled.
func (*OCR) Extract(context.Context, string, []byte) (Document, error) {
	return Document{}, ErrOCRNotEnabled
}

// Close is a no-op.
func (*OCR) Close() error { return nil }

// OCRAvailable reports whether OCR support was compiled in.
func OCRAvailable() bool { return false }

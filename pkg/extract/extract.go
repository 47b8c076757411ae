package extract

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/handscript/pkg/errors"
)

// Kind is the detected type of an input document.
type Kind string

const (
	KindText    Kind = "text"
	KindPDF     Kind = "pdf"
	KindImage   Kind = "image"
	KindUnknown Kind = "unknown"
)

// Document is the extracted text of one input.
type Document struct {
	Source string   `json:"source"`
	Kind   Kind     `json:"kind"`
	Pages  []string `json:"pages"`
}

// Text joins all pages with blank lines.
func (d Document) Text() string {
	return strings.Join(d.Pages, "\n\n")
}

// Extractor extracts page text from document bytes. name is used for
// messages and extension hints only.
type Extractor interface {
	Extract(ctx context.Context, name string, data []byte) (Document, error)
}

var imageMagic = [][]byte{
	[]byte("\x89PNG\r\n\x1a\n"),
	[]byte("\xff\xd8\xff"),
	[]byte("GIF87a"),
	[]byte("GIF89a"),
	[]byte("II*\x00"),
	[]byte("MM\x00*"),
	[]byte("BM"),
}

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".tif": true, ".tiff": true, ".bmp": true, ".webp": true}

// Detect returns the kind of data, using magic bytes first and the file
// extension of name as a hint for images.
func Detect(name string, data []byte) Kind {
	if bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return KindPDF
	}
	for _, m := range imageMagic {
		if bytes.HasPrefix(data, m) {
			return KindImage
		}
	}
	if len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP" {
		return KindImage
	}
	if imageExts[strings.ToLower(filepath.Ext(name))] {
		return KindImage
	}
	if utf8.Valid(data) {
		return KindText
	}
	return KindUnknown
}

// Router dispatches to an extractor by detected kind. A nil extractor for a
// kind makes that kind unsupported.
type Router struct {
	Text  Extractor
	PDF   Extractor
	Image Extractor
}

// NewRouter returns a router for text and PDF input. Image input needs an
// OCR extractor set on the Image field.
func NewRouter() *Router {
	return &Router{Text: TextExtractor{}, PDF: PDFExtractor{}}
}

// Extract detects the kind of data and extracts it.
func (r *Router) Extract(ctx context.Context, name string, data []byte) (Document, error) {
	if len(data) == 0 {
		return Document{Source: name, Kind: KindText, Pages: []string{""}}, nil
	}

	var ex Extractor
	kind := Detect(name, data)
	switch kind {
	case KindText:
		ex = r.Text
	case KindPDF:
		ex = r.PDF
	case KindImage:
		ex = r.Image
		if ex == nil {
			return Document{}, errors.New(errors.ErrCodeUnsupported, "%s is an image; OCR support is not available (rebuild with -tags ocr)", name)
		}
	}
	if ex == nil {
		return Document{}, errors.New(errors.ErrCodeUnsupported, "unsupported document: %s", name)
	}
	return ex.Extract(ctx, name, data)
}

// document builds a normalized document with at least one page.
func document(name string, kind Kind, pages []string) Document {
	out := make([]string, 0, max(len(pages), 1))
	for _, p := range pages {
		out = append(out, Normalize(p))
	}
	if len(out) == 0 {
		out = append(out, "")
	}
	return Document{Source: name, Kind: kind, Pages: out}
}

var _ Extractor = (*Router)(nil)

// DefaultOCRLanguage is the Tesseract language used when none is configured.
const DefaultOCRLanguage = "eng"

// ErrOCRNotEnabled is returned when OCR is requested but support was not
// compiled in. Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New(errors.ErrCodeUnsupported, "OCR support not enabled; rebuild with -tags ocr")

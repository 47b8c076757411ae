package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/matzehuels/handscript/pkg/errors"
)

// PDFExtractor reads the text layer of a PDF, one page per PDF page.
// Scanned PDFs without a text layer yield empty pages.
type PDFExtractor struct{}

// Extract implements [Extractor].
func (PDFExtractor) Extract(ctx context.Context, name string, data []byte) (doc Document, err error) {
	// The PDF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeExtraction, "read PDF %s: %v", name, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeExtraction, err, "open PDF %s", name)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return Document{}, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, pageText(page))
	}
	return document(name, KindPDF, pages), nil
}

// pageText joins the rows of a page, falling back to the page's plain text.
func pageText(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		var b strings.Builder
		for _, row := range rows {
			var line strings.Builder
			gap := false
			for _, word := range row.Content {
				if word.S == "" {
					gap = true
					continue
				}
				if line.Len() > 0 && gap && !strings.HasSuffix(line.String(), " ") {
					line.WriteByte(' ')
				}
				line.WriteString(word.S)
				gap = false
			}
			if text := strings.TrimSpace(line.String()); text != "" {
				fmt.Fprintln(&b, text)
			}
		}
		if strings.TrimSpace(b.String()) != "" {
			return b.String()
		}
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

var _ Extractor = PDFExtractor{}

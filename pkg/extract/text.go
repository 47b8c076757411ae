package extract

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/handscript/pkg/errors"
)

// TextExtractor reads UTF-8 text. Form feed characters separate pages.
type TextExtractor struct{}

// Extract implements [Extractor].
func (TextExtractor) Extract(ctx context.Context, name string, data []byte) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if !utf8.Valid(data) {
		return Document{}, errors.New(errors.ErrCodeUnsupported, "%s is not UTF-8 text", name)
	}
	return document(name, KindText, strings.Split(string(data), "\f")), nil
}

var _ Extractor = TextExtractor{}

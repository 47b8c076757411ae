// Package extract turns input documents into page text.
//
// # Overview
//
// An [Extractor] returns a [Document] holding one string per logical page.
// For any non-empty input at least one (possibly empty) page is returned.
// Three extractors are provided:
//
//   - [TextExtractor]: plain text; form feeds separate pages
//   - [PDFExtractor]: the text layer of a PDF via ledongthuc/pdf
//   - [OCR]: images via Tesseract (gosseract), only with the "ocr" build tag
//
// [Router] detects the document kind from its content and dispatches to
// the matching extractor. All extracted text passes through [Normalize].
//
// # OCR
//
// OCR support is optional and requires the "ocr" build tag:
//
//	go build -tags ocr ./cmd/handscript
//
// Without the tag [NewOCR] returns [ErrOCRNotEnabled]. An [OCR] handle owns
// a Tesseract client and must be closed by its creator.
package extract

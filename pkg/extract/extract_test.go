package extract

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"codeberg.org/go-pdf/fpdf"

	"github.com/matzehuels/handscript/pkg/errors"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		file string
		data []byte
		want Kind
	}{
		{"pdf", "a.bin", []byte("%PDF-1.4\n..."), KindPDF},
		{"pdf with leading newline", "a", []byte("\n%PDF-1.7"), KindPDF},
		{"png", "scan", []byte("\x89PNG\r\n\x1a\nrest"), KindImage},
		{"jpeg", "scan", []byte("\xff\xd8\xff\xe0"), KindImage},
		{"webp", "scan", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), KindImage},
		{"image by extension", "photo.JPG", []byte{0x01, 0x02}, KindImage},
		{"text", "notes.txt", []byte("Q1. Define momentum"), KindText},
		{"unicode text", "notes", []byte("½ × ÷ √"), KindText},
		{"binary", "blob", []byte{0xff, 0xfe, 0x00, 0x81}, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.file, tt.data); got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"trailing spaces", "a  \nb\t", "a\nb"},
		{"nbsp and zero width", "a\u00a0b\u200bc\ufeff", "a bc"},
		{"nfc", "e\u0301", "\u00e9"},
		{"outer blank lines", "\n\nbody\n\n", "body"},
		{"inner blank lines kept", "a\n\n\nb", "a\n\n\nb"},
		{"null bytes", "a\x00b", "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextExtractor(t *testing.T) {
	doc, err := TextExtractor{}.Extract(context.Background(), "hw.txt", []byte("page one\r\n\fpage two\f"))
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	want := []string{"page one", "page two", ""}
	if !reflect.DeepEqual(doc.Pages, want) {
		t.Errorf("pages = %q, want %q", doc.Pages, want)
	}
	if doc.Kind != KindText || doc.Source != "hw.txt" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestRouterEmptyInput(t *testing.T) {
	doc, err := NewRouter().Extract(context.Background(), "empty.txt", nil)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(doc.Pages) != 1 || doc.Pages[0] != "" {
		t.Errorf("pages = %q", doc.Pages)
	}
}

type fakeExtractor struct{ calls int }

func (f *fakeExtractor) Extract(_ context.Context, name string, _ []byte) (Document, error) {
	f.calls++
	return Document{Source: name, Kind: KindImage, Pages: []string{"recognized"}}, nil
}

func TestRouterImages(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n....")

	_, err := NewRouter().Extract(context.Background(), "scan.png", png)
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Fatalf("expected UNSUPPORTED_DOCUMENT, got %v", err)
	}

	fake := &fakeExtractor{}
	r := NewRouter()
	r.Image = fake
	doc, err := r.Extract(context.Background(), "scan.png", png)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if fake.calls != 1 || doc.Pages[0] != "recognized" {
		t.Errorf("doc = %+v calls = %d", doc, fake.calls)
	}
}

func TestRouterUnknown(t *testing.T) {
	_, err := NewRouter().Extract(context.Background(), "blob", []byte{0xff, 0xfe, 0x00, 0x81})
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("expected UNSUPPORTED_DOCUMENT, got %v", err)
	}
}

func TestPDFExtractorInvalid(t *testing.T) {
	_, err := PDFExtractor{}.Extract(context.Background(), "bad.pdf", []byte("%PDF-1.4\ngarbage"))
	if !errors.Is(err, errors.ErrCodeExtraction) {
		t.Errorf("expected EXTRACTION_FAILED, got %v", err)
	}
}

func TestPDFExtractor(t *testing.T) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 14)
	for _, text := range []string{"Question one", "Question two"} {
		pdf.AddPage()
		pdf.Text(72, 100, text)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatal(err)
	}

	doc, err := NewRouter().Extract(context.Background(), "hw.pdf", buf.Bytes())
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if doc.Kind != KindPDF || len(doc.Pages) != 2 {
		t.Fatalf("doc = %+v", doc)
	}
	if !strings.Contains(doc.Pages[1], "two") {
		t.Errorf("page 2 = %q", doc.Pages[1])
	}
}

func TestOCRStub(t *testing.T) {
	if OCRAvailable() {
		t.Skip("built with OCR support")
	}
	if _, err := NewOCR("eng"); err != ErrOCRNotEnabled {
		t.Errorf("NewOCR() error = %v", err)
	}
	var o *OCR
	if err := o.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestDocumentText(t *testing.T) {
	d := Document{Pages: []string{"a", "b"}}
	if got := d.Text(); got != "a\n\nb" {
		t.Errorf("Text() = %q", got)
	}
}

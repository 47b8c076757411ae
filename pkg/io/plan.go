package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/handscript/pkg/core/plan"
	"github.com/matzehuels/handscript/pkg/core/seed"
	"github.com/matzehuels/handscript/pkg/core/style"
	"github.com/matzehuels/handscript/pkg/errors"
)

// Version is the plan file version written by this package.
const Version = 1

// Encodings.
const (
	EncodingJSON = "json"
	EncodingYAML = "yaml"
)

// Document is the content of a plan file.
type Document struct {
	Version int          `json:"version" yaml:"version"`
	Seed    int64        `json:"seed" yaml:"seed"`
	Style   style.Config `json:"style" yaml:"style"`
	Pages   []string     `json:"pages" yaml:"pages"`
	Draft   *plan.Draft  `json:"plan" yaml:"plan"`
}

// NewDocument captures a validated plan together with its inputs.
func NewDocument(p plan.WritingPlan, pages []string, cfg style.Config, s seed.Seed) Document {
	return Document{
		Version: Version,
		Seed:    int64(s),
		Style:   style.Normalize(cfg),
		Pages:   append([]string(nil), pages...),
		Draft:   p.Draft(),
	}
}

// Plan validates the stored draft against the stored pages. A file with no
// plan pages yields the fallback plan for its text.
func (d Document) Plan() plan.WritingPlan {
	return plan.Validate(d.Draft, d.Pages, seed.Seed(d.Seed))
}

// EncodingFor returns the encoding implied by path's extension.
func EncodingFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return EncodingJSON, nil
	case ".yaml", ".yml":
		return EncodingYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported plan file extension %q (use .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// Write encodes doc to w.
func Write(doc Document, w io.Writer, encoding string) error {
	if doc.Version == 0 {
		doc.Version = Version
	}
	switch encoding {
	case EncodingJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	case EncodingYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown plan encoding %q", encoding)
	}
}

// Read decodes a document from r. Style is normalized and a missing plan
// origin is recorded as imported.
func Read(r io.Reader, encoding string) (Document, error) {
	doc := Document{Style: style.Default()}
	var err error
	switch encoding {
	case EncodingJSON:
		err = json.NewDecoder(r).Decode(&doc)
	case EncodingYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
	default:
		return Document{}, errors.New(errors.ErrCodeInvalidFormat, "unknown plan encoding %q", encoding)
	}
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidPlan, err, "decode plan file")
	}
	if doc.Version > Version {
		return Document{}, errors.New(errors.ErrCodeInvalidPlan, "plan file version %d is newer than supported version %d", doc.Version, Version)
	}
	if len(doc.Pages) == 0 && (doc.Draft == nil || len(doc.Draft.Pages) == 0) {
		return Document{}, errors.New(errors.ErrCodeInvalidPlan, "plan file has neither pages nor a plan")
	}
	doc.Style = style.Normalize(doc.Style)
	if doc.Draft != nil && doc.Draft.Origin == "" {
		doc.Draft.Origin = plan.OriginImported
	}
	return doc, nil
}

// Export writes doc to path, encoded by extension.
func Export(doc Document, path string) error {
	encoding, err := EncodingFor(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(doc, f, encoding); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Import reads a document from path, decoded by extension.
func Import(path string) (Document, error) {
	encoding, err := EncodingFor(path)
	if err != nil {
		return Document{}, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Document{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "plan file not found: %s", path)
	}
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, encoding)
}

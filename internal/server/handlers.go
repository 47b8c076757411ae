package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/handscript/pkg/ai"
	"github.com/matzehuels/handscript/pkg/buildinfo"
	"github.com/matzehuels/handscript/pkg/core/plan"
	"github.com/matzehuels/handscript/pkg/core/style"
	"github.com/matzehuels/handscript/pkg/errors"
	"github.com/matzehuels/handscript/pkg/extract"
	pkgio "github.com/matzehuels/handscript/pkg/io"
	"github.com/matzehuels/handscript/pkg/pipeline"
)

// Response headers describing a raw render.
const (
	HeaderRunID    = "X-Handscript-Run"
	HeaderSeed     = "X-Handscript-Seed"
	HeaderSheets   = "X-Handscript-Sheets"
	HeaderWarnings = "X-Handscript-Warnings"
)

// maxFormMemory is the multipart size kept in memory before spilling to disk.
const maxFormMemory = 8 << 20

// documentRequest names one input document. Exactly one of Text, Pages,
// Data or Plan is set.
type documentRequest struct {
	Text  string          `json:"text,omitempty"`
	Pages []string        `json:"pages,omitempty"`
	Data  []byte          `json:"data,omitempty"` // base64 in JSON
	Name  string          `json:"name,omitempty"`
	Plan  *pkgio.Document `json:"plan,omitempty"`

	Style       *style.Config `json:"style,omitempty"`
	StylePrompt string        `json:"style_prompt,omitempty"`
	Seed        int64         `json:"seed,omitempty"`
	OCRLanguage string        `json:"ocr_language,omitempty"`
	Refresh     bool          `json:"refresh,omitempty"`
}

type renderRequest struct {
	documentRequest
	Formats []string `json:"formats,omitempty"`
	Blank   *bool    `json:"blank,omitempty"`
	Scale   float64  `json:"scale,omitempty"`
	Title   string   `json:"title,omitempty"`

	// Sheet selects one SVG or PNG sheet, counting from 1.
	Sheet int `json:"sheet,omitempty"`
}

type styleRequest struct {
	Prompt string `json:"prompt"`
}

type styleResponse struct {
	Style  style.Config   `json:"style"`
	Source ai.StyleSource `json:"source"`
}

type planResponse struct {
	ID        string          `json:"id"`
	Origin    plan.Origin     `json:"origin"`
	Lines     int             `json:"lines"`
	Plan      pkgio.Document  `json:"document"`
	Solutions []plan.Solution `json:"solutions"`
	Warnings  []string        `json:"warnings,omitempty"`
}

type renderResponse struct {
	ID        string              `json:"id"`
	Seed      int64               `json:"seed"`
	Sheets    int                 `json:"sheets"`
	Artifacts map[string][][]byte `json:"artifacts"`
	Warnings  []string            `json:"warnings,omitempty"`
}

type healthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	AIProvider  string `json:"ai_provider"`
	AIAvailable bool   `json:"ai_available"`
	OCR         bool   `json:"ocr"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, healthResponse{
		Status:      "ok",
		Version:     buildinfo.Version,
		AIProvider:  s.runner.AI.Provider(),
		AIAvailable: s.runner.AI.Available(),
		OCR:         extract.OCRAvailable(),
	})
}

func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	var req styleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		respondErr(w, errors.New(errors.ErrCodeInvalidStyle, "prompt is required"))
		return
	}
	if err := errors.ValidateStylePrompt(req.Prompt); err != nil {
		respondErr(w, err)
		return
	}
	cfg, src, _ := s.runner.StyleWithCacheInfo(r.Context(), pipeline.Options{StylePrompt: req.Prompt})
	respondOK(w, styleResponse{Style: cfg, Source: src})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := s.decodeRequest(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	opts, err := s.options(req)
	if err != nil {
		respondErr(w, err)
		return
	}
	res, err := s.runner.Plan(r.Context(), opts)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondOK(w, planResponse{
		ID:        res.ID,
		Origin:    res.Plan.Origin,
		Lines:     res.Plan.LineCount(),
		Plan:      res.Document(),
		Solutions: res.Solutions,
		Warnings:  res.Warnings,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := s.decodeRequest(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	opts, err := s.options(req)
	if err != nil {
		respondErr(w, err)
		return
	}

	var res *pipeline.Result
	if req.Plan != nil {
		res, err = s.runner.Regenerate(r.Context(), *req.Plan, req.Seed, opts)
	} else {
		res, err = s.runner.Execute(r.Context(), opts)
	}
	if err != nil {
		respondErr(w, err)
		return
	}

	if len(res.Artifacts) == 1 {
		for format, files := range res.Artifacts {
			if req.Sheet > len(files) || req.Sheet < 0 {
				respondErr(w, errors.New(errors.ErrCodeInvalidInput, "sheet %d out of range (1-%d)", req.Sheet, len(files)))
				return
			}
			if req.Sheet > 0 || len(files) == 1 {
				i := max(req.Sheet-1, 0)
				writeArtifact(w, res, format, files[i])
				return
			}
		}
	}
	respondOK(w, renderResponse{
		ID:        res.ID,
		Seed:      int64(res.Seed),
		Sheets:    len(res.Sheets),
		Artifacts: res.Artifacts,
		Warnings:  res.Warnings,
	})
}

func writeArtifact(w http.ResponseWriter, res *pipeline.Result, format string, data []byte) {
	h := w.Header()
	h.Set("Content-Type", contentType(format))
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set(HeaderRunID, res.ID)
	h.Set(HeaderSeed, strconv.FormatInt(int64(res.Seed), 10))
	h.Set(HeaderSheets, strconv.Itoa(len(res.Sheets)))
	if len(res.Warnings) > 0 {
		h.Set(HeaderWarnings, strings.Join(res.Warnings, "; "))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatPDF:
		return "application/pdf"
	}
	return "application/json"
}

// options merges a request onto the configured defaults.
func (s *Server) options(req renderRequest) (pipeline.Options, error) {
	opts := s.defaults
	opts.Formats = append([]string(nil), s.defaults.Formats...)
	opts.Logger = s.logger

	n := 0
	if req.Text != "" {
		opts.Pages = pipeline.SplitPages(req.Text)
		n++
	}
	if req.Pages != nil {
		opts.Pages = req.Pages
		n++
	}
	if req.Data != nil {
		opts.Data, opts.Name = req.Data, req.Name
		n++
	}
	if req.Plan != nil {
		opts.Document = req.Plan
		n++
	}
	if n != 1 {
		return opts, errors.New(errors.ErrCodeInvalidInput, "set exactly one of text, pages, data, plan or file")
	}

	if req.Style != nil {
		opts.Style = req.Style
	}
	if req.StylePrompt != "" {
		opts.StylePrompt = req.StylePrompt
	}
	if req.Plan != nil && req.StylePrompt == "" {
		// A plan keeps its own style unless the request asks for another.
		opts.StylePrompt = ""
	}
	if req.OCRLanguage != "" {
		opts.OCRLanguage = req.OCRLanguage
	}
	opts.Seed = req.Seed
	opts.Refresh = req.Refresh

	if len(req.Formats) > 0 {
		opts.Formats = req.Formats
	}
	if req.Blank != nil {
		opts.Blank = *req.Blank
	}
	if req.Scale != 0 {
		opts.Scale = req.Scale
	}
	opts.Title = req.Title
	return opts, opts.ValidateAndSetDefaults()
}

// decodeRequest reads a JSON body or a multipart form with a "file" part.
func (s *Server) decodeRequest(r *http.Request, req *renderRequest) error {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "multipart/form-data" {
		return decodeJSON(r, req)
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return wrapBodyErr(err, "parse form")
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "form needs a file part")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return wrapBodyErr(err, "read upload")
	}
	req.Data, req.Name = data, hdr.Filename

	form := r.MultipartForm.Value
	get := func(k string) string {
		if v := form[k]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}
	req.StylePrompt = get("style_prompt")
	req.OCRLanguage = get("ocr_language")
	req.Title = get("title")
	req.Refresh = get("refresh") == "true"
	if v := form["format"]; len(v) > 0 {
		req.Formats = v
	}
	if v := get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSeed, err, "seed %q", v)
		}
		req.Seed = n
	}
	if v := get("sheet"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "sheet %q", v)
		}
		req.Sheet = n
	}
	if v := get("scale"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "scale %q", v)
		}
		req.Scale = n
	}
	if v := get("blank"); v != "" {
		b := v == "true"
		req.Blank = &b
	}
	return nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return wrapBodyErr(err, "decode request")
	}
	return nil
}

// wrapBodyErr keeps *http.MaxBytesError reachable for the 413 mapping.
func wrapBodyErr(err error, msg string) error {
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", msg)
}

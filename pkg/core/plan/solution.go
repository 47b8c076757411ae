package plan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matzehuels/handscript/pkg/core/markup"
)

// ChunkSize is the maximum characters per section when text has no
// question headers.
const ChunkSize = 500

// Solution is a question and its answer steps as found in extracted text.
type Solution struct {
	ID             string     `json:"id"`
	QuestionNumber string     `json:"questionNumber,omitempty"`
	QuestionText   string     `json:"questionText"`
	Steps          []string   `json:"steps"`
	Diagram        string     `json:"diagram,omitempty"`
	PageNumber     int        `json:"pageNumber,omitempty"`
	LinePlans      []LinePlan `json:"linePlans,omitempty"`
}

var (
	headerRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^Q(?:uestion)?\.?\s*(\d+)[.:\s]`),
		regexp.MustCompile(`^(\d+)[.)]\s+`),
		regexp.MustCompile(`^([A-Z])[.)]\s+`),
	}
	diagramLineRe = regexp.MustCompile(`^DIAGRAM\[([^\]]*)\]$`)
)

// SplitSolutions groups the non-empty lines of pages into question records.
// A line that starts with a question header opens a new record. When no
// line has a header the text is chunked into sections of at most
// [ChunkSize] characters instead.
func SplitSolutions(pages []string) []Solution {
	var lines []string
	for _, p := range pages {
		for _, l := range strings.Split(strings.ReplaceAll(p, "\r\n", "\n"), "\n") {
			if l = strings.TrimSpace(l); l != "" {
				lines = append(lines, l)
			}
		}
	}
	if len(lines) == 0 {
		return []Solution{{
			ID:           "q1",
			QuestionText: "No text could be extracted from the document",
			Steps:        []string{"Please ensure the document contains readable text."},
		}}
	}

	var (
		out      []Solution
		current  []string
		number   string
		anyMatch bool
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		out = append(out, newSolution(len(out), number, current))
		current = nil
	}
	for _, l := range lines {
		if n, ok := questionHeader(l); ok {
			anyMatch = true
			flush()
			number = n
		}
		current = append(current, l)
	}
	flush()

	if !anyMatch {
		return chunkSolutions(strings.Join(pages, "\n\n"))
	}
	return out
}

func questionHeader(line string) (string, bool) {
	for _, re := range headerRes {
		if m := re.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func newSolution(i int, number string, lines []string) Solution {
	s := Solution{
		ID:             fmt.Sprintf("q%d", i+1),
		QuestionNumber: number,
		QuestionText:   lines[0],
	}
	for _, l := range lines[1:] {
		if m := diagramLineRe.FindStringSubmatch(l); m != nil && s.Diagram == "" {
			s.Diagram = m[1]
			continue
		}
		s.Steps = append(s.Steps, l)
	}
	if len(s.Steps) == 0 {
		s.Steps = []string{"(No solution steps found)"}
	}
	return s
}

func chunkSolutions(text string) []Solution {
	var out []Solution
	for i, chunk := range chunkText(text, ChunkSize) {
		s := Solution{ID: fmt.Sprintf("q%d", i+1), QuestionText: fmt.Sprintf("Extracted Content (Section %d)", i+1)}
		for _, l := range strings.Split(chunk, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				s.Steps = append(s.Steps, l)
			}
		}
		out = append(out, s)
	}
	return out
}

var paragraphRe = regexp.MustCompile(`\n\s*\n`)

func chunkText(text string, maxChars int) []string {
	var chunks []string
	current := ""
	for _, para := range paragraphRe.Split(text, -1) {
		if len(current)+len(para) > maxChars && current != "" {
			chunks = append(chunks, strings.TrimSpace(current))
			current = para
			continue
		}
		if current != "" {
			current += "\n\n"
		}
		current += para
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}

// AttachPlan assigns each solution the lines of p that belong to it. A
// solution starts at the first unclaimed line whose text begins with its
// question text and owns every line up to the next solution's start.
// Solutions whose question cannot be located are returned unchanged.
func AttachPlan(solutions []Solution, p WritingPlan) []Solution {
	type located struct {
		page int
		line LinePlan
	}
	var flat []located
	for _, pg := range p.Pages {
		for _, l := range pg.Lines {
			flat = append(flat, located{pg.PageNumber, l})
		}
	}

	starts := make([]int, len(solutions))
	cursor := 0
	for i, s := range solutions {
		starts[i] = -1
		key := prefix(markup.Plain(s.QuestionText), 20)
		for j := cursor; j < len(flat) && key != ""; j++ {
			if strings.HasPrefix(strings.TrimSpace(markup.Plain(flat[j].line.Content)), key) {
				starts[i] = j
				cursor = j + 1
				break
			}
		}
	}

	out := make([]Solution, len(solutions))
	for i, s := range solutions {
		out[i] = s
		if starts[i] < 0 {
			continue
		}
		end := len(flat)
		for k := i + 1; k < len(starts); k++ {
			if starts[k] >= 0 {
				end = starts[k]
				break
			}
		}
		out[i].PageNumber = flat[starts[i]].page
		out[i].LinePlans = make([]LinePlan, 0, end-starts[i])
		for _, f := range flat[starts[i]:end] {
			out[i].LinePlans = append(out[i].LinePlans, f.line)
		}
	}
	return out
}

func prefix(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

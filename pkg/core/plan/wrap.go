package plan

import (
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/handscript/pkg/core/markup"
)

// BreakIntoLines splits page text into written lines. Each source line is
// wrapped greedily at word boundaries to at most width characters; marker
// groups such as SQRT[a + b] are never split. Runs of blank source lines
// between text become a single empty spacer line. An empty page yields one
// spacer line.
func BreakIntoLines(text string, width int) []string {
	if width <= 0 {
		width = WrapWidth
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var out []string
	pendingBlank := false
	for _, raw := range strings.Split(text, "\n") {
		para := strings.TrimSpace(raw)
		if para == "" {
			pendingBlank = len(out) > 0
			continue
		}
		if pendingBlank {
			out = append(out, "")
			pendingBlank = false
		}
		out = append(out, wrap(tokens(para), width)...)
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

func wrap(words []string, width int) []string {
	var lines []string
	current := ""
	for _, w := range words {
		candidate := w
		if current != "" {
			candidate = current + " " + w
		}
		if current != "" && utf8.RuneCountInString(candidate) > width {
			lines = append(lines, current)
			current = w
			continue
		}
		current = candidate
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// tokens splits para on whitespace, rejoining fields that fall inside an
// open marker bracket. A bracket that never closes does not glue, and text
// without markers is split on whitespace alone.
func tokens(para string) []string {
	fields := strings.Fields(para)
	if !markup.HasMarkers(para) {
		return fields
	}
	var out []string
	depth := 0
	for i, f := range fields {
		if depth > 0 {
			out[len(out)-1] += " " + f
		} else {
			out = append(out, f)
		}
		depth += strings.Count(f, "[") - strings.Count(f, "]")
		if depth < 0 || (depth > 0 && !closesLater(fields[i+1:])) {
			depth = 0
		}
	}
	return out
}

func closesLater(fields []string) bool {
	for _, f := range fields {
		if strings.Contains(f, "]") {
			return true
		}
	}
	return false
}

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/handscript/pkg/core/plan"
)

// MaxPageChars bounds the text sent per page.
const MaxPageChars = 2000

const planSystem = `You plan how a student would copy a text by hand into a ruled notebook.
Do not solve or rewrite anything: keep every line's content verbatim and only decide the layout.

Rules:
- at most 45 characters per line, breaking at phrase boundaries; equations on their own line
- question and answer markers (Q1, 1., (a), Ans) get indent 5, left alignment, isQuestionNumber true
- body text gets indent 25 to 30
- short titles get isHeading true and emphasis "underline"
- a line containing n/d sets isFraction true with fractionParts {numerator, denominator, remainingText}
- wordSpacing "tight" for equations, "loose" for prose explanations, otherwise "normal"
- baselineVariation 0.1 to 0.5, slantAngle -5 to 5, pressureLevel 0.6 to 1.0
- fatigueLevel grows by 0.05 to 0.1 per page and never exceeds 0.5

Answer with one JSON object and nothing else:
{"pages":[{"pageNumber":1,"marginLeft":25,"marginRight":15,"marginTop":20,"lineSpacing":28,
"overallSlant":-3,"writingSpeed":"medium","fatigueLevel":0.1,"lines":[{"lineNumber":1,"content":"Q1.",
"indent":5,"isQuestionNumber":true,"isFraction":false,"isHeading":false,"alignment":"left",
"emphasis":"normal","wordSpacing":"normal","baselineVariation":0.3,"slantAngle":-2,"pressureLevel":0.8}]}],
"globalStyle":{"consistency":0.75,"neatness":0.7,"speedVariation":0.2,"personalQuirks":["open loops"]}}`

// PlanLayout asks the model for a layout of pages. It returns nil when no
// provider is configured, the request fails, or the reply is not a plan
// with at least one page. The draft is unvalidated.
func (c *Client) PlanLayout(ctx context.Context, pages []string) *plan.Draft {
	if !c.Available() || len(pages) == 0 {
		return nil
	}
	reply, err := c.generate(ctx, "plan", planSystem, planPrompt(pages))
	if err != nil {
		c.logger.Warn("AI planning failed, using fallback plan", "error", err)
		return nil
	}
	d, err := ParseDraft(reply)
	if err != nil {
		c.logger.Warn("AI plan rejected, using fallback plan", "error", err)
		return nil
	}
	c.logger.Debug("AI plan received", "pages", len(d.Pages))
	return d
}

func planPrompt(pages []string) string {
	var b strings.Builder
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		fmt.Fprintf(&b, "PAGE %d:\n%s", i+1, truncate(p, MaxPageChars))
	}
	fmt.Fprintf(&b, "\n\nTotal pages: %d\nReturn the JSON plan.", len(pages))
	return b.String()
}

// ParseDraft decodes a model reply into a draft. It fails when the reply
// holds no JSON object or the object has no pages.
func ParseDraft(reply string) (*plan.Draft, error) {
	raw, ok := extractJSON(reply)
	if !ok {
		return nil, fmt.Errorf("no JSON object in reply")
	}
	var d plan.Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if len(d.Pages) == 0 {
		return nil, fmt.Errorf("plan has no pages")
	}
	d.Origin = plan.OriginAI
	return &d, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

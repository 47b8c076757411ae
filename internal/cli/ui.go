package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/handscript/pkg/errors"
	"github.com/matzehuels/handscript/pkg/pipeline"
)

// out receives all user-facing output. Logs go to stderr.
var out io.Writer = os.Stdout

// Palette: ink blues and pencil greys.
var (
	colorInk    = lipgloss.Color("33")
	colorGreen  = lipgloss.Color("71")
	colorAmber  = lipgloss.Color("178")
	colorRed    = lipgloss.Color("167")
	colorPaper  = lipgloss.Color("254")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
	colorMargin = lipgloss.Color("174")
)

var (
	// StyleTitle renders headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorInk)
	// StyleHighlight renders run IDs and other values worth spotting.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorInk)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorPaper)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorAmber)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorInk)
	styleWarning     = lipgloss.NewStyle().Foreground(colorAmber)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCode        = lipgloss.NewStyle().Foreground(colorMargin)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorInk)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

func printSuccess(format string, args ...any) {
	fmt.Fprintln(out, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(out, styleIconWarning.Render(iconWarning)+" "+styleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(out, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(out, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Fprintln(out, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(out, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Fprintln(out, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// ReportError prints err for a terminal user. Coded errors show their code
// next to the message.
func ReportError(w io.Writer, err error) {
	msg := errors.UserMessage(err)
	var e *errors.Error
	if stderrors.As(err, &e) && e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if code := errors.GetCode(err); code != errors.ErrCodeInternal && code != "" {
		msg += " " + styleCode.Render("["+string(code)+"]")
	}
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+msg)
}

// printStats summarizes a run on one line:
//
//	2 pages · 31 lines · 3 sheets · seed 42 · ai plan · keywords style · fresh
func printStats(res *pipeline.Result) {
	parts := []string{
		plural(res.Stats.PageCount, "page"),
		plural(res.Stats.LineCount, "line"),
		plural(res.Stats.SheetCount, "sheet"),
		fmt.Sprintf("seed %d", res.Seed),
		string(res.Plan.Origin) + " plan",
		string(res.StyleSource) + " style",
	}
	sep := StyleDim.Render(" · ")

	var b strings.Builder
	b.WriteString("  ")
	for i, part := range parts {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(StyleDim.Render(part))
	}
	b.WriteString(sep)
	if res.CacheInfo.PlanHit || res.CacheInfo.RenderHit {
		b.WriteString(styleCached.Render("cached"))
	} else {
		b.WriteString(styleComputed.Render("fresh"))
	}
	fmt.Fprintln(out, b.String())
}

// printWarnings prints the degraded modes a run fell into.
func printWarnings(warnings []string) {
	for _, w := range warnings {
		printWarning("%s", w)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// formatAge renders t relative to now.
func formatAge(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Format("Jan 2, 2006")
}

func joinComma(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

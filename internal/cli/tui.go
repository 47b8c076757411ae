package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/handscript/pkg/core/compose"
	"github.com/matzehuels/handscript/pkg/core/plan"
	"github.com/matzehuels/handscript/pkg/core/seed"
	"github.com/matzehuels/handscript/pkg/core/style"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorInk)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PreviewModel - Interactive plan preview
// =============================================================================

// PreviewModel is the bubbletea model for browsing a plan page by page and
// trying seeds before rendering.
type PreviewModel struct {
	Plan  plan.WritingPlan
	Style style.Config
	Seed  seed.Seed

	Page   int
	Cursor int
	Offset int
	Height int

	// Accepted is set when the user confirms the current seed.
	Accepted bool

	sheets      int
	glyphs      int
	decorations int
	reroll      func() seed.Seed
}

// NewPreviewModel creates a preview of p. reroll supplies new seeds.
func NewPreviewModel(p plan.WritingPlan, cfg style.Config, s seed.Seed, reroll func() seed.Seed) PreviewModel {
	m := PreviewModel{Plan: p, Style: cfg, Seed: s, Height: 15, reroll: reroll}
	m.compose()
	return m
}

// compose lays out the plan with the current seed and keeps the counts.
func (m *PreviewModel) compose() {
	sheets := compose.Compose(m.Plan, m.Style, m.Seed)
	m.sheets = len(sheets)
	m.glyphs, m.decorations = compose.Count(sheets)
}

func (m PreviewModel) lines() []plan.LinePlan {
	if m.Page >= len(m.Plan.Pages) {
		return nil
	}
	return m.Plan.Pages[m.Page].Lines
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			m.Accepted = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.lines())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "left", "h":
			if m.Page > 0 {
				m.Page--
				m.Cursor, m.Offset = 0, 0
			}
		case "right", "l":
			if m.Page < len(m.Plan.Pages)-1 {
				m.Page++
				m.Cursor, m.Offset = 0, 0
			}
		case "r":
			if m.reroll != nil {
				m.Seed = m.reroll()
				m.compose()
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-9, 5)
	}
	return m, nil
}

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Page %d of %d", m.Page+1, len(m.Plan.Pages))))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%s plan · seed %d · %s · %d glyphs · %d marks",
		m.Plan.Origin, m.Seed, plural(m.sheets, "sheet"), m.glyphs, m.decorations)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ line  ←/→ page  r new seed  ⏎ accept  q quit"))
	b.WriteString("\n\n")

	lines := m.lines()
	end := min(m.Offset+m.Height, len(lines))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		l := lines[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, fmt.Sprint(l.LineNumber), lineKind(l), truncate(l.Content, 60)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Kind", "Content").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(lines) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case lines[idx].Blank():
				return listDimStyle
			case col == 2:
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle().Foreground(colorPaper)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	if len(lines) > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(lines))))
	}

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func lineKind(l plan.LinePlan) string {
	switch {
	case l.Blank():
		return "blank"
	case l.IsHeading:
		return "heading"
	case l.IsQuestionNumber:
		return "question"
	case l.IsFraction:
		return "fraction"
	case l.Emphasis != "" && l.Emphasis != plan.EmphasisNormal:
		return string(l.Emphasis)
	}
	return "text"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

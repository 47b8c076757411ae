package plan

import (
	"strings"
	"testing"
)

func TestSplitSolutions(t *testing.T) {
	pages := []string{
		"Intro line\nQ1. What is force?\nForce is mass times acceleration.\nDIAGRAM[free body]",
		"Q2: Define work\nWork is force times distance.\n3) third item",
	}
	got := SplitSolutions(pages)
	if len(got) != 4 {
		t.Fatalf("got %d solutions, want 4: %+v", len(got), got)
	}
	if got[0].QuestionText != "Intro line" || got[0].Steps[0] != "(No solution steps found)" {
		t.Errorf("preamble = %+v", got[0])
	}
	q1 := got[1]
	if q1.QuestionNumber != "1" || q1.Diagram != "free body" || len(q1.Steps) != 1 {
		t.Errorf("q1 = %+v", q1)
	}
	if got[2].QuestionNumber != "2" || got[3].QuestionNumber != "3" {
		t.Errorf("numbers = %q %q", got[2].QuestionNumber, got[3].QuestionNumber)
	}
	if got[3].ID != "q4" {
		t.Errorf("id = %q", got[3].ID)
	}
}

func TestSplitSolutionsEmpty(t *testing.T) {
	got := SplitSolutions([]string{"", "  \n "})
	if len(got) != 1 || !strings.Contains(got[0].QuestionText, "No text") {
		t.Errorf("got %+v", got)
	}
}

func TestSplitSolutionsChunks(t *testing.T) {
	para := strings.Repeat("word ", 60)
	text := para + "\n\n" + para + "\n\n" + para
	got := SplitSolutions([]string{text})
	if len(got) < 2 {
		t.Fatalf("expected chunked sections, got %d", len(got))
	}
	if got[0].QuestionText != "Extracted Content (Section 1)" {
		t.Errorf("title = %q", got[0].QuestionText)
	}
}

func TestAttachPlan(t *testing.T) {
	pages := []string{"Q1. What is force?\nmass times acceleration", "Q2. Define work\nforce times distance"}
	p := Fallback(pages, 1)
	sols := AttachPlan(SplitSolutions(pages), p)
	if len(sols) != 2 {
		t.Fatalf("solutions = %d", len(sols))
	}
	if sols[0].PageNumber != 1 || len(sols[0].LinePlans) != 2 {
		t.Errorf("q1 = page %d lines %d", sols[0].PageNumber, len(sols[0].LinePlans))
	}
	if sols[1].PageNumber != 2 || sols[1].LinePlans[0].Content != "Q2. Define work" {
		t.Errorf("q2 = %+v", sols[1])
	}
}

package plan

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/handscript/pkg/core/seed"
)

// Heuristic constants of the fallback planner.
const (
	// WrapWidth is the maximum number of characters per fallback line.
	WrapWidth = 45

	// HeadingMaxLen is the length below which a capitalized line may be a heading.
	HeadingMaxLen = 30

	// QuestionIndent and BodyIndent are the fallback indents in pixels.
	QuestionIndent = 5
	BodyIndent     = 25
)

var (
	questionRe = regexp.MustCompile(`(?i)^(Q\.?\s*\d+|Question\s*\d+|\d+\.|[\(\[]?[a-z][\)\]])`)
	answerRe   = regexp.MustCompile(`(?i)^(Ans\.?|Answer)`)
	headingRe  = regexp.MustCompile(`^[A-Z]`)
	fractionRe = regexp.MustCompile(`(\d+)/(\d+)`)
	mathRe     = regexp.MustCompile(`[0-9+\-×÷=]`)
)

// Classification holds the structural flags of a line. It depends only on
// the line text.
type Classification struct {
	IsQuestion bool
	IsAnswer   bool
	IsHeading  bool
	Fraction   *FractionParts
	HasMath    bool
}

// Classify returns the structural flags of content.
func Classify(content string) Classification {
	c := Classification{
		IsQuestion: questionRe.MatchString(content),
		IsAnswer:   answerRe.MatchString(content),
		Fraction:   ExtractFraction(content),
		HasMath:    mathRe.MatchString(content),
	}
	c.IsHeading = utf8.RuneCountInString(content) < HeadingMaxLen &&
		headingRe.MatchString(content) &&
		!c.IsQuestion && !c.IsAnswer
	return c
}

// ExtractFraction returns the first digits/digits fraction in content with
// the fraction removed from the remaining text, or nil.
func ExtractFraction(content string) *FractionParts {
	loc := fractionRe.FindStringSubmatchIndex(content)
	if loc == nil {
		return nil
	}
	return &FractionParts{
		Numerator:     content[loc[2]:loc[3]],
		Denominator:   content[loc[4]:loc[5]],
		RemainingText: strings.TrimSpace(content[:loc[0]] + content[loc[1]:]),
	}
}

// Fatigue returns the cumulative writing fatigue at a page and line index.
func Fatigue(pageIdx, lineIdx int) float64 {
	return float64(pageIdx)*0.03 + float64(lineIdx)*0.002
}

// AnalyzeLine classifies content and computes its fallback layout. s is the
// line seed; only numeric fields depend on it.
func AnalyzeLine(content string, pageIdx, lineIdx int, s seed.Seed) LinePlan {
	c := Classify(content)
	f := Fatigue(pageIdx, lineIdx)

	l := LinePlan{
		LineNumber:        lineIdx + 1,
		Content:           content,
		Indent:            BodyIndent,
		IsQuestionNumber:  c.IsQuestion || c.IsAnswer,
		IsFraction:        c.Fraction != nil,
		IsHeading:         c.IsHeading,
		FractionParts:     c.Fraction,
		Alignment:         AlignLeft,
		Emphasis:          EmphasisNormal,
		WordSpacing:       SpacingNormal,
		BaselineVariation: 0.2 + seed.Random(seed.Site(s, 0))*0.3 + f,
		SlantAngle:        -3 + seed.Random(seed.Site(s, 1))*2 + f*2,
		PressureLevel:     seed.Clamp(0.85-f*0.2+seed.Random(seed.Site(s, 2))*0.1, 0, 1),
	}
	if l.IsQuestionNumber {
		l.Indent = QuestionIndent
	}
	if c.IsHeading {
		l.Emphasis = EmphasisUnderline
	}
	if c.HasMath {
		l.WordSpacing = SpacingTight
	}
	return l
}

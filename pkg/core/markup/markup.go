// Package markup tokenizes a line of text into typed segments.
//
// The inline marker syntax is a stable wire format:
//
//	FRAC[numerator|denominator]
//	SQRT[expression]
//	STRIKE[text]
//	DIAGRAM[label]   (whole line only)
//
// Markers are found with a leftmost, non-overlapping scan; anything that
// does not match, including dangling brackets, stays literal text. Text
// outside markers is split into words at single spaces, each with its own
// derived seed.
//
// Parsing threads a character-position accumulator through the segments as
// an explicit fold: [ParseFrom] takes the starting position and returns the
// position after the line, and every segment and word records the position
// at which it starts.
package markup

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/handscript/pkg/core/seed"
)

// Kind is the type of a segment.
type Kind string

const (
	KindText     Kind = "text"
	KindFraction Kind = "fraction"
	KindSqrt     Kind = "sqrt"
	KindStrike   Kind = "strike"
	KindDiagram  Kind = "diagram"
)

// Segment is one typed piece of a line.
type Segment struct {
	Kind Kind `json:"kind"`

	// Content is the literal text of a text segment, the wrapped expression
	// of sqrt and strike segments, or the label of a diagram.
	Content     string `json:"content,omitempty"`
	Numerator   string `json:"numerator,omitempty"`
	Denominator string `json:"denominator,omitempty"`

	// Words is set for text segments.
	Words []Word `json:"words,omitempty"`

	Seed   seed.Seed `json:"seed"`
	Offset int       `json:"offset"`
}

// Word is a space-delimited word of a text segment. Empty words mark
// consecutive spaces.
type Word struct {
	Text   string    `json:"text"`
	Seed   seed.Seed `json:"seed"`
	Offset int       `json:"offset"`
}

var (
	markerRe  = regexp.MustCompile(`FRAC\[([^|\]]*)\|([^\]]*)\]|SQRT\[([^\]]*)\]|STRIKE\[([^\]]*)\]`)
	diagramRe = regexp.MustCompile(`^DIAGRAM\[([^\]]*)\]$`)
)

// Parse tokenizes text with the accumulator starting at zero.
func Parse(text string, s seed.Seed) []Segment {
	segs, _ := ParseFrom(text, s, 0)
	return segs
}

// ParseFrom tokenizes text starting the position accumulator at pos. It
// returns the segments and the accumulator after the last segment.
func ParseFrom(text string, s seed.Seed, pos int) ([]Segment, int) {
	if m := diagramRe.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
		seg := Segment{Kind: KindDiagram, Content: m[1], Seed: seed.Segment(s, 0), Offset: pos}
		return []Segment{seg}, pos + runeLen(m[1])
	}

	var segs []Segment
	emit := func(seg Segment) {
		seg.Seed = seed.Segment(s, len(segs))
		seg, pos = advance(seg, pos)
		segs = append(segs, seg)
	}

	last := 0
	for _, m := range markerRe.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			emit(Segment{Kind: KindText, Content: text[last:m[0]]})
		}
		switch {
		case m[2] >= 0:
			emit(Segment{Kind: KindFraction, Numerator: text[m[2]:m[3]], Denominator: text[m[4]:m[5]]})
		case m[6] >= 0:
			emit(Segment{Kind: KindSqrt, Content: text[m[6]:m[7]]})
		default:
			emit(Segment{Kind: KindStrike, Content: text[m[8]:m[9]]})
		}
		last = m[1]
	}
	if last < len(text) || len(segs) == 0 {
		emit(Segment{Kind: KindText, Content: text[last:]})
	}
	return segs, pos
}

// advance assigns offsets to seg starting at pos and returns the next
// position: text advances by each word's length plus one for its space,
// other segments by their content length.
func advance(seg Segment, pos int) (Segment, int) {
	seg.Offset = pos
	switch seg.Kind {
	case KindText:
		seg.Words = Words(seg.Content, seg.Seed, pos)
		if n := len(seg.Words); n > 0 {
			last := seg.Words[n-1]
			pos = last.Offset + runeLen(last.Text) + 1
		}
	case KindFraction:
		pos += runeLen(seg.Numerator) + runeLen(seg.Denominator)
	default:
		pos += runeLen(seg.Content)
	}
	return seg, pos
}

// Words splits text on single spaces. Word i draws its seed from
// seed.Word(s, i) and its offset from the accumulator starting at pos,
// which advances by the word length plus one for the space.
func Words(text string, s seed.Seed, pos int) []Word {
	parts := strings.Split(text, " ")
	out := make([]Word, len(parts))
	for i, p := range parts {
		out[i] = Word{Text: p, Seed: seed.Word(s, i), Offset: pos}
		pos += runeLen(p) + 1
	}
	return out
}

// Text reassembles a text segment from its words.
func (s Segment) Text() string {
	if s.Kind != KindText {
		return s.Content
	}
	words := make([]string, len(s.Words))
	for i, w := range s.Words {
		words[i] = w.Text
	}
	return strings.Join(words, " ")
}

// HasMarkers reports whether text contains any recognised marker.
func HasMarkers(text string) bool {
	return markerRe.MatchString(text) || diagramRe.MatchString(strings.TrimSpace(text))
}

// Plain returns text with markers replaced by their readable content, e.g.
// FRAC[1|2] becomes 1/2.
func Plain(text string) string {
	if m := diagramRe.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
		return "[" + m[1] + "]"
	}
	return markerRe.ReplaceAllStringFunc(text, func(s string) string {
		m := markerRe.FindStringSubmatch(s)
		switch {
		case strings.HasPrefix(s, "FRAC["):
			return m[1] + "/" + m[2]
		case strings.HasPrefix(s, "SQRT["):
			return "√" + m[3]
		default:
			return m[4]
		}
	})
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

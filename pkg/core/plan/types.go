package plan

// Alignment of a line within the text block.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Emphasis of a line.
type Emphasis string

const (
	EmphasisNormal    Emphasis = "normal"
	EmphasisBold      Emphasis = "bold"
	EmphasisUnderline Emphasis = "underline"
)

// WordSpacing class of a line.
type WordSpacing string

const (
	SpacingTight  WordSpacing = "tight"
	SpacingNormal WordSpacing = "normal"
	SpacingLoose  WordSpacing = "loose"
)

// Speed is the writing-speed category of a page.
type Speed string

const (
	SpeedSlow   Speed = "slow"
	SpeedMedium Speed = "medium"
	SpeedFast   Speed = "fast"
)

// Origin records where a plan came from.
type Origin string

const (
	OriginAI       Origin = "ai"
	OriginFallback Origin = "fallback"
	OriginImported Origin = "imported"
)

var (
	validAlignments = map[Alignment]bool{AlignLeft: true, AlignCenter: true, AlignRight: true}
	validEmphasis   = map[Emphasis]bool{EmphasisNormal: true, EmphasisBold: true, EmphasisUnderline: true}
	validSpacing    = map[WordSpacing]bool{SpacingTight: true, SpacingNormal: true, SpacingLoose: true}
	validSpeeds     = map[Speed]bool{SpeedSlow: true, SpeedMedium: true, SpeedFast: true}
)

// FractionParts holds the pieces of a detected fraction.
type FractionParts struct {
	Numerator     string `json:"numerator" yaml:"numerator"`
	Denominator   string `json:"denominator" yaml:"denominator"`
	RemainingText string `json:"remainingText" yaml:"remainingText"`
}

// LinePlan is the layout of one written line.
type LinePlan struct {
	LineNumber        int            `json:"lineNumber" yaml:"lineNumber"`
	Content           string         `json:"content" yaml:"content"`
	Indent            float64        `json:"indent" yaml:"indent"`
	IsQuestionNumber  bool           `json:"isQuestionNumber" yaml:"isQuestionNumber"`
	IsFraction        bool           `json:"isFraction" yaml:"isFraction"`
	IsHeading         bool           `json:"isHeading" yaml:"isHeading"`
	FractionParts     *FractionParts `json:"fractionParts,omitempty" yaml:"fractionParts,omitempty"`
	Alignment         Alignment      `json:"alignment" yaml:"alignment"`
	Emphasis          Emphasis       `json:"emphasis" yaml:"emphasis"`
	WordSpacing       WordSpacing    `json:"wordSpacing" yaml:"wordSpacing"`
	BaselineVariation float64        `json:"baselineVariation" yaml:"baselineVariation"`
	SlantAngle        float64        `json:"slantAngle" yaml:"slantAngle"`
	PressureLevel     float64        `json:"pressureLevel" yaml:"pressureLevel"`
}

// Blank reports whether the line is a spacer.
func (l LinePlan) Blank() bool { return l.Content == "" }

// PagePlan is the layout of one page.
type PagePlan struct {
	PageNumber   int        `json:"pageNumber" yaml:"pageNumber"`
	Lines        []LinePlan `json:"lines" yaml:"lines"`
	MarginLeft   float64    `json:"marginLeft" yaml:"marginLeft"`
	MarginRight  float64    `json:"marginRight" yaml:"marginRight"`
	MarginTop    float64    `json:"marginTop" yaml:"marginTop"`
	LineSpacing  float64    `json:"lineSpacing" yaml:"lineSpacing"`
	OverallSlant float64    `json:"overallSlant" yaml:"overallSlant"`
	WritingSpeed Speed      `json:"writingSpeed" yaml:"writingSpeed"`
	FatigueLevel float64    `json:"fatigueLevel" yaml:"fatigueLevel"`
}

// GlobalStyle describes document-wide handwriting traits.
type GlobalStyle struct {
	Consistency    float64  `json:"consistency" yaml:"consistency"`
	Neatness       float64  `json:"neatness" yaml:"neatness"`
	SpeedVariation float64  `json:"speedVariation" yaml:"speedVariation"`
	PersonalQuirks []string `json:"personalQuirks" yaml:"personalQuirks"`
}

// WritingPlan is the complete layout of a document.
type WritingPlan struct {
	Pages       []PagePlan  `json:"pages" yaml:"pages"`
	GlobalStyle GlobalStyle `json:"globalStyle" yaml:"globalStyle"`
	Origin      Origin      `json:"origin,omitempty" yaml:"origin,omitempty"`
}

// LineCount returns the number of lines across all pages.
func (p WritingPlan) LineCount() int {
	n := 0
	for _, pg := range p.Pages {
		n += len(pg.Lines)
	}
	return n
}

// =============================================================================
// Drafts
// =============================================================================

// Draft is a partially specified plan as produced by an external planner.
// Absent fields are nil and receive defaults in [Validate].
type Draft struct {
	Pages       []DraftPage       `json:"pages" yaml:"pages"`
	GlobalStyle *DraftGlobalStyle `json:"globalStyle,omitempty" yaml:"globalStyle,omitempty"`
	Origin      Origin            `json:"origin,omitempty" yaml:"origin,omitempty"`
}

// DraftPage is a partially specified [PagePlan].
type DraftPage struct {
	PageNumber   *int        `json:"pageNumber,omitempty" yaml:"pageNumber,omitempty"`
	Lines        []DraftLine `json:"lines" yaml:"lines"`
	MarginLeft   *float64    `json:"marginLeft,omitempty" yaml:"marginLeft,omitempty"`
	MarginRight  *float64    `json:"marginRight,omitempty" yaml:"marginRight,omitempty"`
	MarginTop    *float64    `json:"marginTop,omitempty" yaml:"marginTop,omitempty"`
	LineSpacing  *float64    `json:"lineSpacing,omitempty" yaml:"lineSpacing,omitempty"`
	OverallSlant *float64    `json:"overallSlant,omitempty" yaml:"overallSlant,omitempty"`
	WritingSpeed *string     `json:"writingSpeed,omitempty" yaml:"writingSpeed,omitempty"`
	FatigueLevel *float64    `json:"fatigueLevel,omitempty" yaml:"fatigueLevel,omitempty"`
}

// DraftLine is a partially specified [LinePlan].
type DraftLine struct {
	LineNumber        *int           `json:"lineNumber,omitempty" yaml:"lineNumber,omitempty"`
	Content           *string        `json:"content,omitempty" yaml:"content,omitempty"`
	Indent            *float64       `json:"indent,omitempty" yaml:"indent,omitempty"`
	IsQuestionNumber  *bool          `json:"isQuestionNumber,omitempty" yaml:"isQuestionNumber,omitempty"`
	IsFraction        *bool          `json:"isFraction,omitempty" yaml:"isFraction,omitempty"`
	IsHeading         *bool          `json:"isHeading,omitempty" yaml:"isHeading,omitempty"`
	FractionParts     *FractionParts `json:"fractionParts,omitempty" yaml:"fractionParts,omitempty"`
	Alignment         *string        `json:"alignment,omitempty" yaml:"alignment,omitempty"`
	Emphasis          *string        `json:"emphasis,omitempty" yaml:"emphasis,omitempty"`
	WordSpacing       *string        `json:"wordSpacing,omitempty" yaml:"wordSpacing,omitempty"`
	BaselineVariation *float64       `json:"baselineVariation,omitempty" yaml:"baselineVariation,omitempty"`
	SlantAngle        *float64       `json:"slantAngle,omitempty" yaml:"slantAngle,omitempty"`
	PressureLevel     *float64       `json:"pressureLevel,omitempty" yaml:"pressureLevel,omitempty"`
}

// DraftGlobalStyle is a partially specified [GlobalStyle].
type DraftGlobalStyle struct {
	Consistency    *float64 `json:"consistency,omitempty" yaml:"consistency,omitempty"`
	Neatness       *float64 `json:"neatness,omitempty" yaml:"neatness,omitempty"`
	SpeedVariation *float64 `json:"speedVariation,omitempty" yaml:"speedVariation,omitempty"`
	PersonalQuirks []string `json:"personalQuirks,omitempty" yaml:"personalQuirks,omitempty"`
}

// Draft converts a plan back into a fully specified draft.
func (p WritingPlan) Draft() *Draft {
	d := &Draft{Origin: p.Origin, Pages: make([]DraftPage, len(p.Pages))}
	for i, pg := range p.Pages {
		dp := DraftPage{
			PageNumber:   ptr(pg.PageNumber),
			Lines:        make([]DraftLine, len(pg.Lines)),
			MarginLeft:   ptr(pg.MarginLeft),
			MarginRight:  ptr(pg.MarginRight),
			MarginTop:    ptr(pg.MarginTop),
			LineSpacing:  ptr(pg.LineSpacing),
			OverallSlant: ptr(pg.OverallSlant),
			WritingSpeed: ptr(string(pg.WritingSpeed)),
			FatigueLevel: ptr(pg.FatigueLevel),
		}
		for j, l := range pg.Lines {
			dl := DraftLine{
				LineNumber:        ptr(l.LineNumber),
				Content:           ptr(l.Content),
				Indent:            ptr(l.Indent),
				IsQuestionNumber:  ptr(l.IsQuestionNumber),
				IsFraction:        ptr(l.IsFraction),
				IsHeading:         ptr(l.IsHeading),
				Alignment:         ptr(string(l.Alignment)),
				Emphasis:          ptr(string(l.Emphasis)),
				WordSpacing:       ptr(string(l.WordSpacing)),
				BaselineVariation: ptr(l.BaselineVariation),
				SlantAngle:        ptr(l.SlantAngle),
				PressureLevel:     ptr(l.PressureLevel),
			}
			if l.FractionParts != nil {
				fp := *l.FractionParts
				dl.FractionParts = &fp
			}
			dp.Lines[j] = dl
		}
		d.Pages[i] = dp
	}
	gs := p.GlobalStyle
	d.GlobalStyle = &DraftGlobalStyle{
		Consistency:    ptr(gs.Consistency),
		Neatness:       ptr(gs.Neatness),
		SpeedVariation: ptr(gs.SpeedVariation),
		PersonalQuirks: append([]string{}, gs.PersonalQuirks...),
	}
	return d
}

func ptr[T any](v T) *T { return &v }

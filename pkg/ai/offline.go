package ai

import (
	"strings"
	"unicode"

	"github.com/matzehuels/handscript/pkg/core/style"
)

type keywordRule struct {
	words []string
	apply func(*style.Config)
}

// Rules run in order; a later match overrides an earlier one.
var keywordRules = []keywordRule{
	{[]string{"cursive", "flowing", "script"}, func(c *style.Config) {
		c.Slant = 0.4
		c.Font.Family = style.FontCedarville
	}},
	{[]string{"messy", "sloppy", "rushed", "scribbled", "hurried"}, func(c *style.Config) { c.Messiness = 0.7 }},
	{[]string{"neat", "tidy", "careful", "clean"}, func(c *style.Config) { c.Messiness = 0.05 }},
	{[]string{"small", "tiny"}, func(c *style.Config) { c.Size = 0.85 }},
	{[]string{"large", "big"}, func(c *style.Config) { c.Size = 1.15 }},
	{[]string{"bold", "heavy", "thick"}, func(c *style.Config) { c.Weight = 1.6 }},
	{[]string{"light", "thin", "faint"}, func(c *style.Config) { c.Weight = 0.7 }},
	{[]string{"left"}, func(c *style.Config) { c.Slant = -0.4 }},
	{[]string{"right", "italic", "slanted"}, func(c *style.Config) { c.Slant = 0.4 }},
	{[]string{"upright", "straight", "print", "printed"}, func(c *style.Config) { c.Slant = 0 }},
	{[]string{"compact", "cramped", "tight", "narrow"}, func(c *style.Config) { c.Spacing = 0.85 }},
	{[]string{"wide", "spacious", "airy", "loose"}, func(c *style.Config) { c.Spacing = 1.35 }},
	{[]string{"mixed", "varied", "inconsistent"}, func(c *style.Config) { c.Font.Mix = true }},
	{[]string{"rounded", "bubbly"}, func(c *style.Config) { c.Font.Family = style.FontShadowsIntoLight }},
	{[]string{"elegant", "fancy", "calligraphy"}, func(c *style.Config) { c.Font.Family = style.FontHomemadeApple }},
}

// Ink colors by keyword, first match wins.
var inkColors = []struct{ word, hex string }{
	{"blue", style.DefaultColor},
	{"black", "#1a1a1a"},
	{"red", "#b3261e"},
	{"green", "#1b5e20"},
	{"purple", "#4a148c"},
	{"violet", "#4a148c"},
	{"pencil", "#5a5a5a"},
	{"grey", "#5a5a5a"},
	{"gray", "#5a5a5a"},
	{"brown", "#5d4037"},
}

// InferStyleOffline derives a style from keywords in description. Words are
// matched whole and case-insensitively; unknown descriptions yield
// [style.Default].
func InferStyleOffline(description string) style.Config {
	words := map[string]bool{}
	for _, w := range strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		words[w] = true
	}

	cfg := style.Default()
	for _, rule := range keywordRules {
		for _, w := range rule.words {
			if words[w] {
				rule.apply(&cfg)
				break
			}
		}
	}
	for _, ink := range inkColors {
		if words[ink.word] {
			cfg.Color = ink.hex
			break
		}
	}
	return style.Normalize(cfg)
}

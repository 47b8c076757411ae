package ai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/matzehuels/handscript/pkg/core/style"
)

// StyleSource records which path produced a style.
type StyleSource string

const (
	StyleFromAI      StyleSource = "ai"
	StyleFromKeyword StyleSource = "keywords"
	StyleDefault     StyleSource = "default"
	StyleExplicit    StyleSource = "explicit"
)

const styleSystem = `You translate a description of someone's handwriting into rendering parameters.
Answer with one JSON object and nothing else:
{"slant": -1..1, "spacing": 0.8..1.5, "size": 0.8..1.2, "weight": 0.5..2, "messiness": 0..1,
 "font": {"family": one of ` + `"Caveat", "Cedarville Cursive", "Shadows Into Light", "Homemade Apple"` + `, "mix": bool},
 "color": "#rrggbb"}
Negative slant leans left. Messiness 0 is perfectly neat.`

// InferStyle returns a style for a natural-language description. It never
// fails: the model answer is used when it parses, the keyword rules
// otherwise, and an empty prompt yields [style.Default].
func (c *Client) InferStyle(ctx context.Context, prompt string) (style.Config, StyleSource) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return style.Default(), StyleDefault
	}
	if c.Available() {
		reply, err := c.generate(ctx, "style", styleSystem, "Handwriting description: "+prompt)
		if err == nil {
			if cfg, ok := parseStyle(reply); ok {
				return cfg, StyleFromAI
			}
			c.logger.Warn("AI style reply could not be parsed, using keywords")
		} else {
			c.logger.Warn("AI style inference failed, using keywords", "error", err)
		}
	}
	return InferStyleOffline(prompt), StyleFromKeyword
}

// parseStyle decodes a model reply onto the default style so that missing
// fields keep their defaults, then normalizes it.
func parseStyle(reply string) (style.Config, bool) {
	raw, ok := extractJSON(reply)
	if !ok {
		return style.Config{}, false
	}
	cfg := style.Default()
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return style.Config{}, false
	}
	return style.Normalize(cfg), true
}

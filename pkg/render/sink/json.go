package sink

import (
	"encoding/json"

	"github.com/matzehuels/handscript/pkg/core/compose"
	"github.com/matzehuels/handscript/pkg/core/seed"
	"github.com/matzehuels/handscript/pkg/core/style"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	seed  *seed.Seed
	style *style.Config
}

// WithJSONSeed records the global seed in the output so the sheets can be
// reproduced.
func WithJSONSeed(s seed.Seed) JSONOption { return func(r *jsonRenderer) { r.seed = &s } }

// WithJSONStyle records the style configuration in the output.
func WithJSONStyle(c style.Config) JSONOption { return func(r *jsonRenderer) { r.style = &c } }

type jsonOutput struct {
	Seed   *seed.Seed      `json:"seed,omitempty"`
	Style  *style.Config   `json:"style,omitempty"`
	Sheets []compose.Sheet `json:"sheets"`
}

// RenderJSON exports composed sheets as indented JSON.
func RenderJSON(sheets []compose.Sheet, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if sheets == nil {
		sheets = []compose.Sheet{}
	}
	return json.MarshalIndent(jsonOutput{Seed: r.seed, Style: r.style, Sheets: sheets}, "", "  ")
}

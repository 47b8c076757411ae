// Package fonts provides the font data used by the raster and PDF renderers.
//
// The handwriting families are rendered by name in SVG output and resolved
// by the viewer. Raster and PDF output need real outlines, so each family is
// backed by one of the Go fonts, which are compiled into the binary.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"

	"github.com/matzehuels/handscript/pkg/core/style"
)

// Label is the family used for header labels.
const Label = "Go"

var ttf = map[string][]byte{
	style.FontCaveat:           goitalic.TTF,
	style.FontCedarville:       gomediumitalic.TTF,
	style.FontShadowsIntoLight: gosmallcapsitalic.TTF,
	style.FontHomemadeApple:    gobolditalic.TTF,
	Label:                      goregular.TTF,
}

// TTF returns the TrueType data backing family. Unknown families use the
// default handwriting family.
func TTF(family string) []byte {
	if b, ok := ttf[family]; ok {
		return b
	}
	return ttf[style.FontCaveat]
}

// Names returns every family with font data, the label family last.
func Names() []string {
	return append(append([]string{}, style.Families...), Label)
}

// Parsed fonts (computed once on first access).
var (
	parsed     map[string]*truetype.Font
	parsedErr  error
	parsedOnce sync.Once
)

// Font returns the parsed font for family.
func Font(family string) (*truetype.Font, error) {
	parsedOnce.Do(func() {
		parsed = make(map[string]*truetype.Font, len(ttf))
		for name, data := range ttf {
			f, err := truetype.Parse(data)
			if err != nil {
				parsedErr = err
				return
			}
			parsed[name] = f
		}
	})
	if parsedErr != nil {
		return nil, parsedErr
	}
	if f, ok := parsed[family]; ok {
		return f, nil
	}
	return parsed[style.FontCaveat], nil
}

// Face returns a face for family at size points.
func Face(family string, size float64) (font.Face, error) {
	f, err := Font(family)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone}), nil
}

// CSSFamily returns a CSS font-family list for family with cursive fallbacks.
func CSSFamily(family string) string {
	return `'` + family + `', 'Bradley Hand', 'Segoe Script', cursive`
}

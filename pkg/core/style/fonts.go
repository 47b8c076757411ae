package style

import "unicode"

// Class is a character class used to bias font selection.
type Class int

const (
	ClassLetter Class = iota
	ClassDigit
	ClassSymbol
)

// ClassOf returns the class of r.
func ClassOf(r rune) Class {
	switch {
	case r >= '0' && r <= '9':
		return ClassDigit
	case unicode.IsLetter(r):
		return ClassLetter
	default:
		return ClassSymbol
	}
}

// IsMath reports whether r is a digit or arithmetic symbol.
func IsMath(r rune) bool {
	switch r {
	case '=', '+', '-', '×', '÷', '∝', '*', '/', '<', '>', '√', '%':
		return true
	}
	return r >= '0' && r <= '9'
}

// classWeights holds per-class font weights in [Families] order. Digits favour
// the rounder print-like families; letters favour cursive ones.
var classWeights = map[Class][]float64{
	ClassLetter: {0.45, 0.2, 0.2, 0.15},
	ClassDigit:  {0.35, 0.05, 0.5, 0.1},
	ClassSymbol: {0.4, 0.05, 0.45, 0.1},
}

// FontWeights returns the selection weights for class under the policy.
// A fixed policy returns a single certain choice. A mix boosts the preferred
// family.
func (p FontPolicy) FontWeights(class Class) []float64 {
	w := make([]float64, len(Families))
	if !p.Mix {
		for i, f := range Families {
			if f == p.Family {
				w[i] = 1
				return w
			}
		}
		w[0] = 1
		return w
	}
	copy(w, classWeights[class])
	for i, f := range Families {
		if f == p.Family {
			w[i] += 0.3
		}
	}
	return w
}

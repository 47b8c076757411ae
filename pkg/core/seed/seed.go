package seed

import "math"

// Seed parameterizes one deterministic draw or a derived sub-seed.
type Seed int64

// Derivation strides.
const (
	PageStride    Seed = 100000
	LineStride    Seed = 1000
	SegmentStride Seed = 100
	WordStride    Seed = 20
	siteStride    Seed = 7919
)

// Random returns frac(sin(s)·10000), a value in [0, 1).
func Random(s Seed) float64 {
	x := math.Sin(float64(s)) * 10000
	r := x - math.Floor(x)
	if math.IsNaN(r) || r < 0 || r >= 1 {
		return 0
	}
	return r
}

// Range returns min + Random(s)·(max-min).
func Range(s Seed, min, max float64) float64 {
	return min + Random(s)*(max-min)
}

// Gaussian draws from a normal distribution using the Box-Muller transform
// over the uniform draws at s and s+1.
func Gaussian(s Seed, mean, stddev float64) float64 {
	u1 := Random(s)
	u2 := Random(s + 1)
	if u1 < 1e-12 {
		u1 = 1e-12
	}
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return Finite(mean+z*stddev, mean)
}

// Chance reports whether the draw at s falls below p.
func Chance(s Seed, p float64) bool {
	return Random(s) < p
}

// Pick returns an index into weights chosen proportionally to the weights.
// It returns 0 when all weights are zero.
func Pick(s Seed, weights []float64) int {
	var total float64
	for _, w := range weights {
		total += max(w, 0)
	}
	if total == 0 {
		return 0
	}
	target := Random(s) * total
	for i, w := range weights {
		target -= max(w, 0)
		if target < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// Page derives the seed of page i.
func Page(global Seed, i int) Seed { return global + Seed(i)*PageStride }

// Line derives the seed of line i on a page.
func Line(page Seed, i int) Seed { return page + Seed(i)*LineStride }

// Segment derives the seed of segment i on a line.
func Segment(line Seed, i int) Seed { return line + Seed(i)*SegmentStride }

// Word derives the seed of word i in a segment.
func Word(segment Seed, i int) Seed { return segment + Seed(i)*WordStride }

// Char derives the seed of character i in a word.
func Char(word Seed, i int) Seed { return word + Seed(i) }

// Site returns the seed for the k-th independent quantity drawn from s.
func Site(s Seed, k int) Seed { return s*2 + Seed(k)*siteStride }

// Finite returns v, or def when v is NaN or infinite.
func Finite(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// Clamp bounds v to [lo, hi]; non-finite values clamp to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return max(lo, min(hi, v))
}

// Package seed provides the stateless pseudo-random primitive behind every
// visual perturbation in handscript.
//
// # Overview
//
// A [Seed] is an integer. [Random] maps it to a value in [0, 1) with the
// sine transform frac(sin(seed)·10000); [Range] and [Gaussian] are built on
// top of it. There is no generator state: the same seed always yields the
// same value, in any order and any number of times.
//
// # Derivation
//
// Seeds are never regenerated, only derived by fixed arithmetic offsets:
//
//	global → Page(global, i) → Line(page, j) → Segment(line, k) → Word(seg, w) → Char(word, c)
//
// Within one character, independent quantities are drawn from [Site], which
// spaces draws far enough apart that the (s, s+1) pair consumed by
// [Gaussian] never collides with a neighbouring character's draws.
package seed

package compose

import (
	"math"

	"github.com/matzehuels/handscript/pkg/core/seed"
)

func seedOf(v int64) seed.Seed { return seed.Seed(v) }

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

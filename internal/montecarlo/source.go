// Package montecarlo simulates geometric Brownian motion paths over a forecast horizon
// and reduces them to percentile bands and risk metrics.
package montecarlo

import (
	"math"
	"math/rand"
	"time"
)

// RandomSource produces uniform draws in [0, 1)
type RandomSource interface {
	Float64() float64
}

// NewSource returns a seeded pseudorandom source. A zero seed uses the current time.
func NewSource(seed int64) RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

const boxMullerEpsilon = 1e-12

// standardNormal draws one N(0,1) value with the Box-Muller transform
func standardNormal(src RandomSource) float64 {
	u1 := src.Float64()
	u2 := src.Float64()
	if u1 < boxMullerEpsilon {
		u1 = boxMullerEpsilon
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

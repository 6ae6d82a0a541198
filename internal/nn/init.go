package nn

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// xavierUniform fills a fresh fanOut x fanIn buffer from U(-a, a) with
// a = sqrt(6 / (fanIn + fanOut)).
func xavierUniform(fanIn, fanOut int) []float64 {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	dist := distuv.Uniform{Min: -bound, Max: bound}

	data := make([]float64, fanIn*fanOut)
	for i := range data {
		data[i] = dist.Rand()
	}
	return data
}

// standardNormal fills a buffer of n samples from N(0, 1).
func standardNormal(n int) []float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1}

	data := make([]float64, n)
	for i := range data {
		data[i] = dist.Rand()
	}
	return data
}

// filled returns a buffer of n copies of v.
func filled(n int, v float64) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = v
	}
	return data
}

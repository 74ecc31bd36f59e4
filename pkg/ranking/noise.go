package ranking

import (
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"
)

// NoiseEstimator derives the background noise of every global index from
// the repeated background measurements. Results are computed on first use
// and cached.
type NoiseEstimator struct {
	samples []complex128
	n       int
	cache   []float64
	done    []bool
}

// NewNoiseEstimator wraps background, which holds perIndex consecutive
// samples for each of count global indices. A nil background yields an
// estimator that reports zero noise everywhere.
func NewNoiseEstimator(background []complex128, perIndex, count int) *NoiseEstimator {
	if perIndex <= 0 || len(background) < perIndex*count {
		background, perIndex = nil, 0
	}
	return &NoiseEstimator{
		samples: background,
		n:       perIndex,
		cache:   make([]float64, count),
		done:    make([]bool, count),
	}
}

// Available reports whether background samples are present.
func (ne *NoiseEstimator) Available() bool {
	return ne.n > 0
}

// Noise returns the mean absolute deviation of the background samples of g
// from their complex mean. It returns 0 for invalid indices or without
// background samples.
func (ne *NoiseEstimator) Noise(g int) float64 {
	if ne.n == 0 || g < 0 || g >= len(ne.cache) {
		return 0
	}
	if ne.done[g] {
		return ne.cache[g]
	}
	ne.cache[g] = MeanAbsDeviation(ne.samples[g*ne.n : (g+1)*ne.n])
	ne.done[g] = true
	return ne.cache[g]
}

// MeanAbsDeviation returns mean(|v - mean(v)|).
func MeanAbsDeviation(v []complex128) float64 {
	if len(v) == 0 {
		return 0
	}
	n := float64(len(v))
	mean := cmplxs.Sum(v) / complex(n, 0)

	var dev float64
	for _, s := range v {
		dev += cmplx.Abs(s - mean)
	}
	return dev / n
}

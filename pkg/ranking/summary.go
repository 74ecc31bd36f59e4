package ranking

import (
	"fmt"
	"math"

	"github.com/DataDog/sketches-go/ddsketch"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// relativeAccuracy of the quantile sketch.
const relativeAccuracy = 0.01

// Summary describes the distribution of SNR values of a dataset.
type Summary struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
	P50   float64
	P90   float64
	P99   float64

	sketch *ddsketch.DDSketch
}

// Summarize builds a summary over all finite, non-negative values.
func Summarize(values []float64) (*Summary, error) {
	sketch, err := ddsketch.NewDefaultDDSketch(relativeAccuracy)
	if err != nil {
		return nil, fmt.Errorf("creating sketch: %w", err)
	}

	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			continue
		}
		if err := sketch.Add(v); err != nil {
			return nil, fmt.Errorf("adding %g to sketch: %w", v, err)
		}
		kept = append(kept, v)
	}

	s := &Summary{Count: len(kept), sketch: sketch}
	if len(kept) == 0 {
		return s, nil
	}
	s.Min = floats.Min(kept)
	s.Max = floats.Max(kept)
	s.Mean = stat.Mean(kept, nil)
	s.P50, _ = s.Quantile(0.5)
	s.P90, _ = s.Quantile(0.9)
	s.P99, _ = s.Quantile(0.99)
	return s, nil
}

// Quantile returns the approximate q-quantile (0 <= q <= 1).
func (s *Summary) Quantile(q float64) (float64, error) {
	if s.Count == 0 {
		return 0, fmt.Errorf("no values")
	}
	return s.sketch.GetValueAtQuantile(q)
}

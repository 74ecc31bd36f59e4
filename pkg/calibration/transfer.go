// Package calibration corrects measured samples for the frequency response
// of the receive chain.
//
// Every receive channel may come with a calibration curve: a list of
// (frequency, gain, phase) samples. A TransferFunction fits a natural cubic
// spline through the complex gain and returns its reciprocal as the
// correction factor for any frequency. The Engine applies those factors to
// whole voxel blocks and keeps a bounded number of corrected blocks around.
package calibration

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/interp"
)

// ErrNotMonotonic is returned when sample frequencies decrease.
var ErrNotMonotonic = errors.New("calibration: frequency values are not increasing monotonically")

// ErrEmpty is returned for a curve without samples.
var ErrEmpty = errors.New("calibration: no samples")

// Sample is one point of a calibration curve.
type Sample struct {
	// Frequency in Hz
	Frequency float64

	// Gain is the complex transfer gain of the receive chain
	Gain complex128
}

// GainFromDecibel builds a complex gain from the stored representation:
// gain in dB (as 10·log10) and phase in degrees.
func GainFromDecibel(gainDB, phaseDeg float64) complex128 {
	return cmplx.Rect(math.Pow(10, 0.1*gainDB), math.Pi/180.0*phaseDeg)
}

// TransferFunction interpolates the complex gain of one receive channel.
type TransferFunction struct {
	xs       []float64
	re, im   interp.NaturalCubic
	constant complex128
	single   bool
}

// NewTransferFunction fits a natural cubic spline (second derivative zero at
// both ends) through samples, which must be ordered by non-decreasing
// frequency. Samples sharing a frequency collapse to the last of them.
func NewTransferFunction(samples []Sample) (*TransferFunction, error) {
	if len(samples) == 0 {
		return nil, ErrEmpty
	}

	lastX := 0.0
	xs := make([]float64, 0, len(samples))
	re := make([]float64, 0, len(samples))
	im := make([]float64, 0, len(samples))
	for i, s := range samples {
		if math.IsNaN(s.Frequency) || s.Frequency < lastX {
			return nil, fmt.Errorf("%w (sample %d at %g Hz)", ErrNotMonotonic, i, s.Frequency)
		}
		lastX = s.Frequency
		if n := len(xs); n > 0 && xs[n-1] == s.Frequency {
			re[n-1], im[n-1] = real(s.Gain), imag(s.Gain)
			continue
		}
		xs = append(xs, s.Frequency)
		re = append(re, real(s.Gain))
		im = append(im, imag(s.Gain))
	}

	tf := &TransferFunction{xs: xs}
	if len(xs) == 1 {
		tf.single = true
		tf.constant = complex(re[0], im[0])
		return tf, nil
	}

	// A natural spline is linear in its ordinates, so the real and
	// imaginary parts can be fitted independently.
	if err := tf.re.Fit(xs, re); err != nil {
		return nil, fmt.Errorf("calibration: fitting real part: %w", err)
	}
	if err := tf.im.Fit(xs, im); err != nil {
		return nil, fmt.Errorf("calibration: fitting imaginary part: %w", err)
	}
	return tf, nil
}

// Len returns the number of distinct sample frequencies.
func (tf *TransferFunction) Len() int {
	return len(tf.xs)
}

// Range returns the lowest and highest calibrated frequency.
func (tf *TransferFunction) Range() (lo, hi float64) {
	return tf.xs[0], tf.xs[len(tf.xs)-1]
}

// Gain returns the interpolated complex gain. The bracketing interval is
// located by binary search over the knots. Outside the calibrated band the
// gain of the nearest end point is used.
func (tf *TransferFunction) Gain(frequency float64) complex128 {
	if tf.single {
		return tf.constant
	}
	return complex(tf.re.Predict(frequency), tf.im.Predict(frequency))
}

// CorrectionFactor returns the reciprocal of the gain at frequency.
func (tf *TransferFunction) CorrectionFactor(frequency float64) complex128 {
	return 1 / tf.Gain(frequency)
}

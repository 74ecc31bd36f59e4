package systemmatrix

import (
	"sfview/internal/models"
)

// block returns the raw voxel block of g in the requested plane.
func (m *Matrix) block(g int, corrected bool) []complex128 {
	n := m.grid.Voxels()
	plane := m.uncorrected
	if corrected {
		plane = m.corrected
	}
	return plane[g*n : (g+1)*n : (g+1)*n]
}

// correction returns the calibration factor applied to g.
func (m *Matrix) correction(g int) complex128 {
	return m.calib.Factor(m.index.Receiver(g), m.Frequency(g))
}

// RawData returns the calibrated voxel block of g, x varying fastest, or nil
// for an invalid index. The slice may be a view into the mapped file or a
// cached copy: it must not be written and is only valid until the next call.
func (m *Matrix) RawData(g int, corrected bool) []complex128 {
	if !m.valid(g) {
		return nil
	}
	return m.calib.Block(g, m.index.Receiver(g), m.Frequency(g), corrected, m.block(g, corrected))
}

// DataPoint returns the calibrated value of one voxel, or 0.
func (m *Matrix) DataPoint(g int, pos models.Position, corrected bool) complex128 {
	if !m.valid(g) || !m.grid.Contains(pos) {
		return 0
	}
	return m.RawData(g, corrected)[m.grid.Offset(pos)]
}

// Interpolated returns the calibrated inverse-distance-weighted mean of the
// neighbours of pos, or 0.
func (m *Matrix) Interpolated(g int, pos models.Position, corrected bool) complex128 {
	if !m.valid(g) || !m.grid.Contains(pos) {
		return 0
	}
	v, _ := m.neighbors.Interpolate(m.block(g, corrected), pos)
	return m.correction(g) * v
}

// Background returns the background reference sample of g, or 0.
func (m *Matrix) Background(g int) complex128 {
	if !m.valid(g) {
		return 0
	}
	return m.reference[g]
}

// BackgroundVariance returns the background variance of g, or 0.
func (m *Matrix) BackgroundVariance(g int) float64 {
	if !m.valid(g) {
		return 0
	}
	return m.variance[g]
}

// BackgroundNoise returns the mean absolute deviation of the background
// samples of g. It is 0 in viewer mode, where the samples are not mapped.
func (m *Matrix) BackgroundNoise(g int) float64 {
	if m.closed {
		return 0
	}
	return m.noise.Noise(g)
}

// CorrectionFactor returns the calibration factor of g, 1 for uncalibrated
// channels.
func (m *Matrix) CorrectionFactor(g int) complex128 {
	if !m.valid(g) {
		return 1
	}
	return m.correction(g)
}

// valid reports whether g can be used to access mapped data.
func (m *Matrix) valid(g int) bool {
	return !m.closed && m.index.Valid(g)
}

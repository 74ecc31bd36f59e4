package systemmatrix

import (
	"sfview/internal/models"
	"sfview/pkg/changelog"
	"sfview/pkg/ranking"
	"sfview/pkg/storage"
)

// Dimension returns the number of voxels along axis.
func (m *Matrix) Dimension(axis models.Axis) int {
	if axis < models.AxisX || axis > models.AxisZ {
		return 0
	}
	return m.grid[axis]
}

// Grid returns the voxel grid.
func (m *Matrix) Grid() models.Grid { return m.grid }

// SpatialExtent returns the field of view along axis in mm.
func (m *Matrix) SpatialExtent(axis models.Axis) float64 {
	if axis < models.AxisX || axis > models.AxisZ {
		return 0
	}
	return m.fov[axis]
}

// NumSlices returns the number of slices perpendicular to axis.
func (m *Matrix) NumSlices(axis models.Axis) int {
	return m.Dimension(axis)
}

// SliceMatrix returns the voxel size of a slice spanned by h and v.
func (m *Matrix) SliceMatrix(h, v models.Axis) (width, height int) {
	return m.Dimension(h), m.Dimension(v)
}

// SliceFOV returns the physical size of a slice spanned by h and v.
func (m *Matrix) SliceFOV(h, v models.Axis) (width, height float64) {
	return m.SpatialExtent(h), m.SpatialExtent(v)
}

// SlicePosition returns the centre coordinate of slice i along axis,
// relative to the centre of the field of view.
func (m *Matrix) SlicePosition(axis models.Axis, i int) float64 {
	fov := m.SpatialExtent(axis)
	n := m.Dimension(axis)
	if fov == 0 || n <= 0 {
		return 0
	}
	step := fov / float64(n)
	return step*float64(i) - 0.5*(fov-step)
}

// ValidPosition reports whether pos lies inside the grid.
func (m *Matrix) ValidPosition(pos models.Position) bool {
	return m.grid.Contains(pos)
}

// NumberOfReceivers returns the number of receive channels.
func (m *Matrix) NumberOfReceivers() int { return m.index.Channels }

// NumberOfFrequencies returns the number of frequency bins per channel.
func (m *Matrix) NumberOfFrequencies() int { return m.index.Frequencies }

// MaxGlobalIndex returns the largest valid global index.
func (m *Matrix) MaxGlobalIndex() int { return m.index.Count() - 1 }

// Bandwidth returns the receive bandwidth in Hz.
func (m *Matrix) Bandwidth() float64 { return m.bandwidth }

// Frequency returns the frequency of the bin of g in Hz, or -1.
func (m *Matrix) Frequency(g int) float64 {
	f := m.index.FrequencyIndex(g)
	if f < 0 {
		return -1
	}
	if m.index.Frequencies < 2 {
		return 0
	}
	return m.bandwidth * float64(f) / float64(m.index.Frequencies-1)
}

// GlobalIndex combines receiver and frequency bin, or returns -1.
func (m *Matrix) GlobalIndex(receiver, frequencyIndex int) int {
	return m.index.GlobalIndex(receiver, frequencyIndex)
}

// GlobalIndexByRank returns the global index with the given SNR rank
// (0 is the highest SNR), or -1.
func (m *Matrix) GlobalIndexByRank(rank int) int {
	return m.ranks.GlobalIndex(rank)
}

// GlobalIndexByMixing returns the global index of the bin a mixing term
// maps to, or -1 if it lies outside the frequency range.
func (m *Matrix) GlobalIndexByMixing(receiver int, term models.MixingTerm) int {
	return m.index.GlobalIndex(receiver, m.mixing.FrequencyIndex(term))
}

// Receiver returns the receive channel of g, or -1.
func (m *Matrix) Receiver(g int) int { return m.index.Receiver(g) }

// FrequencyIndex returns the frequency bin of g, or -1.
func (m *Matrix) FrequencyIndex(g int) int { return m.index.FrequencyIndex(g) }

// SNRRank returns the rank of g, or -1.
func (m *Matrix) SNRRank(g int) int { return m.ranks.Rank(g) }

// SNR returns the signal-to-noise ratio of g, or -1.
func (m *Matrix) SNR(g int) float64 {
	if m.closed {
		return -1
	}
	return m.ranks.SNR(g)
}

// SNRSummary describes the distribution of all SNR values.
func (m *Matrix) SNRSummary() (*ranking.Summary, error) {
	if m.closed {
		return nil, storage.ErrClosed
	}
	return ranking.Summarize(m.ranks.Values())
}

// MixingOrder returns the lowest order mixing term explaining the bin of g
// and its order. The order is -1 if no term up to the configured maximum
// order maps to the bin.
func (m *Matrix) MixingOrder(g int) (models.MixingTerm, int) {
	f := m.index.FrequencyIndex(g)
	if f < 0 {
		return models.MixingTerm{}, -1
	}
	term, ok := m.mixing.Order(f)
	if !ok {
		return models.MixingTerm{}, -1
	}
	return term, term.Order()
}

// MixingTerms returns every mixing term explaining the bin of g, lowest
// order first.
func (m *Matrix) MixingTerms(g int) []models.MixingTerm {
	f := m.index.FrequencyIndex(g)
	if f < 0 {
		return nil
	}
	return m.mixing.Terms(f)
}

// IsModified reports whether the change log holds entries.
func (m *Matrix) IsModified() bool { return !m.changes.Empty() }

// Changes returns the change log entries, oldest first. The slice must not
// be modified.
func (m *Matrix) Changes() []models.ChangeEntry { return m.changes.Entries() }

// LastChangeDescription summarizes the newest change, or returns "".
func (m *Matrix) LastChangeDescription() string {
	last, ok := m.changes.Last()
	if !ok {
		return ""
	}
	return changelog.Describe(last, m)
}

package systemmatrix

import (
	"fmt"
	"math/cmplx"

	"sfview/internal/models"
	"sfview/pkg/interpolation"
	"sfview/pkg/ranking"
)

// ProgressCallback reports progress of batch edits. It runs synchronously
// and must not call back into the matrix.
type ProgressCallback = interpolation.ProgressCallback

// editable reports whether edits at pos are possible at all.
func (m *Matrix) editable(pos models.Position) bool {
	return !m.closed && m.mode == models.Editor && m.grid.Contains(pos)
}

// replacement decides whether old is an outlier with respect to cand.
func replacement(old, cand complex128, threshold float64) bool {
	a, b := cmplx.Abs(old), cmplx.Abs(cand)
	return b < a && cmplx.Abs(old-cand)/a > threshold
}

// suppress applies the interpolation rule to both planes of g at pos and
// returns the resulting change item. Values are compared and written in raw
// units: the calibration factor is constant within a block, so it cancels
// out of the weighted mean as well as out of the relative drop.
func (m *Matrix) suppress(g int, pos models.Position, threshold float64) (models.ChangeItem, bool) {
	item := models.ChangeItem{GlobalIndex: g}
	offset := m.grid.Offset(pos)
	changed := false

	for _, corrected := range []bool{false, true} {
		before, after := models.UncorrectedBefore, models.UncorrectedAfter
		if corrected {
			before, after = models.CorrectedBefore, models.CorrectedAfter
		}

		block := m.block(g, corrected)
		old := block[offset]
		item.Values[before], item.Values[after] = old, old

		cand, n := m.neighbors.Interpolate(block, pos)
		if n == 0 || !replacement(old, cand, threshold) {
			continue
		}
		block[offset] = cand
		item.Values[after] = cand
		changed = true
	}
	if changed {
		m.calib.Invalidate(g)
		m.recalcSNR(g)
	}
	return item, changed
}

// InterpolateVoxel replaces the value of voxel pos of global index g by the
// weighted mean of its neighbours, in each plane where that mean is smaller
// in magnitude and the relative drop exceeds threshold. It reports whether a
// change was made. A non-nil error means the change was made but could not
// be persisted.
func (m *Matrix) InterpolateVoxel(g int, pos models.Position, threshold float64) (bool, error) {
	if !m.editable(pos) || !m.index.Valid(g) {
		return false, nil
	}
	item, changed := m.suppress(g, pos, threshold)
	if !changed {
		return false, nil
	}

	m.changes.Append(models.ChangeEntry{Time: m.now(), Position: pos, Items: []models.ChangeItem{item}})
	m.ranks.Rebuild()
	err := m.persist()
	m.notify()
	return true, err
}

// InterpolateIndices applies the rule of InterpolateVoxel to every global
// index in indices at pos. All changes form one change log entry. progress,
// if not nil, is called after each index. It returns the number of changed
// indices.
func (m *Matrix) InterpolateIndices(indices []int, pos models.Position, threshold float64, progress ProgressCallback) (int, error) {
	if !m.editable(pos) {
		return 0, nil
	}

	var items []models.ChangeItem
	for i, g := range indices {
		if m.index.Valid(g) {
			if item, changed := m.suppress(g, pos, threshold); changed {
				items = append(items, item)
			}
		}
		if progress != nil {
			progress(i+1, len(indices), fmt.Sprintf("%d changed", len(items)))
		}
	}
	if len(items) == 0 {
		return 0, nil
	}

	m.changes.Append(models.ChangeEntry{Time: m.now(), Position: pos, Items: items})
	m.ranks.Rebuild()
	err := m.persist()
	m.notify()
	return len(items), err
}

// InterpolateChannel runs InterpolateIndices over all frequencies of
// receiver.
func (m *Matrix) InterpolateChannel(receiver int, pos models.Position, threshold float64, progress ProgressCallback) (int, error) {
	if receiver < 0 || receiver >= m.index.Channels {
		return 0, nil
	}
	indices := make([]int, m.index.Frequencies)
	for f := range indices {
		indices[f] = m.index.GlobalIndex(receiver, f)
	}
	return m.InterpolateIndices(indices, pos, threshold, progress)
}

// restore writes the before values of entry back to both planes.
func (m *Matrix) restore(e models.ChangeEntry) {
	offset := m.grid.Offset(e.Position)
	for _, it := range e.Items {
		if !m.index.Valid(it.GlobalIndex) || !m.grid.Contains(e.Position) {
			continue
		}
		m.block(it.GlobalIndex, false)[offset] = it.Values[models.UncorrectedBefore]
		m.block(it.GlobalIndex, true)[offset] = it.Values[models.CorrectedBefore]
		m.calib.Invalidate(it.GlobalIndex)
		m.recalcSNR(it.GlobalIndex)
	}
}

// UndoLast reverts the newest change. It does nothing without changes or
// in viewer mode.
func (m *Matrix) UndoLast() error {
	if m.closed || m.mode != models.Editor {
		return nil
	}
	last, ok := m.changes.PopLast()
	if !ok {
		return nil
	}
	m.restore(last)
	m.ranks.Rebuild()
	err := m.persist()
	m.notify()
	return err
}

// UndoAll reverts every change, newest first, so that a voxel edited
// several times ends up with its original value. progress, if not nil, is
// called after each reverted entry.
func (m *Matrix) UndoAll(progress ProgressCallback) error {
	if m.closed || m.mode != models.Editor || m.changes.Empty() {
		return nil
	}
	entries := m.changes.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		m.restore(entries[i])
		if progress != nil {
			done := len(entries) - i
			progress(done, len(entries), entries[i].Position.String())
		}
	}
	m.changes.Clear()
	m.ranks.Rebuild()
	err := m.persist()
	m.notify()
	return err
}

// recalcSNR updates the stored SNR of g from the background corrected plane.
func (m *Matrix) recalcSNR(g int) {
	m.ranks.Set(g, ranking.SNR(m.block(g, true), m.mask, m.noise.Noise(g)))
}

// persist flushes the data planes and rewrites the change log sidecars.
func (m *Matrix) persist() error {
	if err := m.regions.Sync(); err != nil {
		m.log.Warn("flushing data failed", "error", err)
	}
	if err := m.store.Save(m.changes); err != nil {
		m.log.Error("writing modification table failed", "error", err)
		return fmt.Errorf("modification table: %w", err)
	}
	return nil
}

package systemmatrix

import (
	"errors"
	"fmt"

	"sfview/internal/models"
	"sfview/pkg/changelog"
)

// loadChanges reads an existing change log, migrating a version 1 table.
func (m *Matrix) loadChanges() error {
	table, err := m.store.Load()
	if err != nil {
		if errors.Is(err, changelog.ErrUnknownVersion) {
			return fmt.Errorf("cannot read modification table of %s: %w", m.path, err)
		}
		return err
	}
	if table == nil {
		return nil
	}

	switch table.Version {
	case changelog.VersionLegacy:
		m.migrate(table.Legacy)
	default:
		m.changes = changelog.NewLog(table.Entries)
	}
	return nil
}

// migrate converts a version 1 table, which only recorded the corrected
// plane. The uncorrected before value is the current stored value. Its after
// value is guessed by running the interpolation rule with the configured
// tolerance: a best-effort reconstruction, as the information is not in the
// table.
func (m *Matrix) migrate(legacy changelog.LegacyTable) {
	tolerance := m.cfg.Engine.LegacyTolerance
	now := m.now()

	var entries []models.ChangeEntry
	for _, lp := range legacy {
		if !m.grid.Contains(lp.Position) {
			m.log.Warn("legacy change outside grid dropped", "position", lp.Position)
			continue
		}
		offset := m.grid.Offset(lp.Position)
		e := models.ChangeEntry{Time: now, Position: lp.Position}
		for _, it := range lp.Items {
			if !m.index.Valid(it.GlobalIndex) {
				continue
			}
			block := m.block(it.GlobalIndex, false)
			var values [4]complex128
			values[models.UncorrectedBefore] = block[offset]
			values[models.UncorrectedAfter] = block[offset]
			if cand, n := m.neighbors.Interpolate(block, lp.Position); n > 0 && replacement(block[offset], cand, tolerance) {
				values[models.UncorrectedAfter] = cand
			}
			values[models.CorrectedBefore] = it.Old
			values[models.CorrectedAfter] = it.New
			e.Items = append(e.Items, models.ChangeItem{GlobalIndex: it.GlobalIndex, Values: values})
			m.recalcSNR(it.GlobalIndex)
		}
		if len(e.Items) > 0 {
			entries = append(entries, e)
		}
	}

	m.changes = changelog.NewLog(entries)
	m.ranks.Rebuild()
	if err := m.persist(); err != nil {
		m.log.Warn("rewriting migrated modification table failed", "error", err)
	}
	m.log.Info("migrated legacy modification table", "positions", len(entries))
}

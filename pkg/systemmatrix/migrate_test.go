package systemmatrix

import (
	"bytes"
	"encoding/binary"
	"math/cmplx"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfview/internal/models"
	"sfview/pkg/changelog"
	"sfview/pkg/config"
)

func writeLegacyTable(t *testing.T, f *fixture, table changelog.LegacyTable) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, changelog.EncodeLegacy(&buf, table))
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, changelog.BinaryFile), buf.Bytes(), 0644))
}

func TestLegacyTableIsMigrated(t *testing.T) {
	f := newFixture(t, models.Grid{2, 2, 2}, 2, 4)
	writeLegacyTable(t, f, changelog.LegacyTable{
		{Position: models.NewPosition(1, 1, 1), Items: []changelog.LegacyItem{{GlobalIndex: 1, Old: 5, New: 4}}},
		{Position: models.NewPosition(5, 5, 5), Items: []changelog.LegacyItem{{GlobalIndex: 1, Old: 1, New: 0}}},
		{Position: origin, Items: []changelog.LegacyItem{
			{GlobalIndex: 0, Old: 20 + 10i, New: 2 + 1i},
			{GlobalIndex: 42, Old: 1, New: 1},
		}},
	})

	m := f.open(t, models.Editor)
	changes := m.Changes()
	require.Len(t, changes, 2)

	assert.Equal(t, origin, changes[0].Position)
	require.Len(t, changes[0].Items, 1)
	assert.Equal(t, [4]complex128{10 + 5i, 1 + 0.5i, 20 + 10i, 2 + 1i}, changes[0].Items[0].Values)

	// no outlier at (1,1,1): the uncorrected value stays
	assert.Equal(t, models.NewPosition(1, 1, 1), changes[1].Position)
	assert.Equal(t, [4]complex128{2 + 0.5i, 2 + 0.5i, 5, 4}, changes[1].Items[0].Values)

	// the data itself is left alone, only the SNR is refreshed
	assert.Equal(t, complex(10, 5), m.DataPoint(0, origin, false))
	assert.InDelta(t, 17.0/8*cmplx.Abs(2+1i), m.SNR(0), 1e-12)

	bin, err := os.ReadFile(filepath.Join(f.dir, changelog.BinaryFile))
	require.NoError(t, err)
	assert.Equal(t, changelog.VersionCurrent, binary.LittleEndian.Uint32(bin))
	assert.FileExists(t, filepath.Join(f.dir, changelog.TextFile))
}

func TestMigratedTableRoundTrips(t *testing.T) {
	f := newFixture(t, models.Grid{2, 2, 2}, 1, 2)
	writeLegacyTable(t, f, changelog.LegacyTable{
		{Position: origin, Items: []changelog.LegacyItem{{GlobalIndex: 0, Old: 20 + 10i, New: 2 + 1i}}},
	})

	m := f.open(t, models.Editor)
	migrated := append([]models.ChangeEntry(nil), m.Changes()...)
	require.NoError(t, m.Close())

	again := f.open(t, models.Editor)
	require.Len(t, again.Changes(), 1)
	assert.Equal(t, migrated[0].Time.UnixMilli(), again.Changes()[0].Time.UnixMilli())
	assert.Equal(t, migrated[0].Position, again.Changes()[0].Position)
	assert.Equal(t, migrated[0].Items, again.Changes()[0].Items)
}

func TestLegacyToleranceFromConfig(t *testing.T) {
	f := newFixture(t, models.Grid{2, 2, 2}, 1, 2)
	writeLegacyTable(t, f, changelog.LegacyTable{
		{Position: origin, Items: []changelog.LegacyItem{{GlobalIndex: 0, Old: 1, New: 1}}},
	})

	cfg := config.DefaultConfig()
	cfg.Engine.LegacyTolerance = 0.95
	m := f.openWith(t, models.Editor, cfg)

	require.Len(t, m.Changes(), 1)
	item := m.Changes()[0].Items[0]
	assert.Equal(t, item.Before(false), item.After(false), "a drop of 90 percent does not exceed the tolerance")
}

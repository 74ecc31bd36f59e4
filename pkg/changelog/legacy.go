package changelog

import (
	"bufio"
	"io"
	"sort"

	"sfview/internal/models"
)

// LegacyItem is one edit of a version 1 table. Only the background
// corrected plane was recorded.
type LegacyItem struct {
	GlobalIndex int
	Old, New    complex128
}

// LegacyPosition groups the legacy edits of one voxel.
type LegacyPosition struct {
	Position models.Position
	Items    []LegacyItem
}

// LegacyTable is a decoded version 1 table ordered by z, y, x.
type LegacyTable []LegacyPosition

func decodeLegacy(dec *decoder) LegacyTable {
	n := dec.count()
	var table LegacyTable
	for i := 0; i < n && dec.err == nil; i++ {
		x, y, z := dec.u32(), dec.u32(), dec.u32()
		lp := LegacyPosition{Position: models.NewPosition(int(x), int(y), int(z))}
		items := dec.count()
		for j := 0; j < items && dec.err == nil; j++ {
			it := LegacyItem{GlobalIndex: dec.i32()}
			it.Old = dec.c128()
			it.New = dec.c128()
			lp.Items = append(lp.Items, it)
		}
		table = append(table, lp)
	}
	sort.SliceStable(table, func(a, b int) bool {
		return table[a].Position.Less(table[b].Position)
	})
	return table
}

// EncodeLegacy writes a version 1 table. It exists to produce fixtures for
// the migration path; new tables are always written with Encode.
func EncodeLegacy(w io.Writer, table LegacyTable) error {
	bw := bufio.NewWriter(w)
	enc := encoder{w: bw}

	enc.u32(VersionLegacy)
	enc.u32(uint32(len(table)))
	for _, lp := range table {
		enc.u32(uint32(lp.Position.X))
		enc.u32(uint32(lp.Position.Y))
		enc.u32(uint32(lp.Position.Z))
		enc.u32(uint32(len(lp.Items)))
		for _, it := range lp.Items {
			enc.i32(it.GlobalIndex)
			enc.c128(it.Old)
			enc.c128(it.New)
		}
	}
	if enc.err != nil {
		return enc.err
	}
	return bw.Flush()
}

package ranking

import (
	"math"
	"sort"
)

// Table holds one SNR value per global index and the ranking derived from
// it. The value slice is usually a view into the mapped snr file, so Set
// writes through to disk in editing mode.
type Table struct {
	values  []float64
	order   []int // rank -> global index
	inverse []int // global index -> rank
}

// NewTable builds a ranking over values. The slice is retained.
func NewTable(values []float64) *Table {
	t := &Table{
		values:  values,
		order:   make([]int, len(values)),
		inverse: make([]int, len(values)),
	}
	t.Rebuild()
	return t
}

// Len returns the number of global indices.
func (t *Table) Len() int {
	return len(t.values)
}

// Values exposes the SNR values indexed by global index.
func (t *Table) Values() []float64 {
	return t.values
}

// Rebuild sorts all global indices by descending SNR. Equal values keep
// ascending index order and NaN values rank last.
func (t *Table) Rebuild() {
	for i := range t.order {
		t.order[i] = i
	}
	v := t.values
	sort.SliceStable(t.order, func(a, b int) bool {
		x, y := v[t.order[a]], v[t.order[b]]
		if math.IsNaN(y) {
			return !math.IsNaN(x)
		}
		return x > y
	})
	for rank, g := range t.order {
		t.inverse[g] = rank
	}
}

// GlobalIndex returns the global index holding rank, or Invalid.
func (t *Table) GlobalIndex(rank int) int {
	if rank < 0 || rank >= len(t.order) {
		return Invalid
	}
	return t.order[rank]
}

// Rank returns the rank of global index g, or Invalid.
func (t *Table) Rank(g int) int {
	if g < 0 || g >= len(t.inverse) {
		return Invalid
	}
	return t.inverse[g]
}

// SNR returns the value of g, or -1 for an invalid index.
func (t *Table) SNR(g int) float64 {
	if g < 0 || g >= len(t.values) {
		return -1
	}
	return t.values[g]
}

// Set stores a new value for g. The ranking is not updated until Rebuild.
func (t *Table) Set(g int, snr float64) {
	if g < 0 || g >= len(t.values) {
		return
	}
	t.values[g] = snr
}

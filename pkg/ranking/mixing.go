package ranking

import (
	"sort"

	"sfview/internal/models"
)

// MixingTable lists, for every frequency bin, the mixing terms whose
// weighted sum of base frequency indices falls into that bin.
type MixingTable struct {
	base     [3]int
	maxOrder int
	terms    map[int][]models.MixingTerm
}

// BaseIndices returns lcm(div)/div[i] per axis. Axes with a zero divisor
// get base index 0.
func BaseIndices(div [3]int) [3]int {
	l := lcmAll(div[:])
	var base [3]int
	for i, d := range div {
		if d != 0 && l != 0 {
			base[i] = l / d
		}
	}
	return base
}

// NewMixingTable enumerates all terms (i,j,k) with |i|+|j|+|k| <= maxOrder.
// The nested enumeration order i, j, k (each ascending) is kept per bin and
// decides ties between terms of equal order.
func NewMixingTable(base [3]int, maxOrder, frequencies int) *MixingTable {
	mt := &MixingTable{base: base, maxOrder: maxOrder, terms: make(map[int][]models.MixingTerm)}
	for i := -maxOrder; i <= maxOrder; i++ {
		ai := abs(i)
		for j := -maxOrder + ai; j <= maxOrder-ai; j++ {
			aj := abs(j)
			for k := -maxOrder + ai + aj; k <= maxOrder-ai-aj; k++ {
				term := models.MixingTerm{i, j, k}
				f := mt.FrequencyIndex(term)
				if f < 0 || f >= frequencies {
					continue
				}
				mt.terms[f] = append(mt.terms[f], term)
			}
		}
	}
	return mt
}

// Base returns the per-axis base frequency indices.
func (mt *MixingTable) Base() [3]int { return mt.base }

// MaxOrder returns the largest enumerated order.
func (mt *MixingTable) MaxOrder() int { return mt.maxOrder }

// FrequencyIndex returns the bin a term maps to.
func (mt *MixingTable) FrequencyIndex(term models.MixingTerm) int {
	return mt.base[0]*term[0] + mt.base[1]*term[1] + mt.base[2]*term[2]
}

// Order returns the term of lowest order for bin f, the first one found in
// enumeration order among equals. ok is false if no term maps to f.
func (mt *MixingTable) Order(f int) (term models.MixingTerm, ok bool) {
	best := -1
	for _, t := range mt.terms[f] {
		if o := t.Order(); best < 0 || o < best {
			best, term = o, t
		}
	}
	return term, best >= 0
}

// Terms returns all terms for bin f ordered by ascending order.
func (mt *MixingTable) Terms(f int) []models.MixingTerm {
	src := mt.terms[f]
	if len(src) == 0 {
		return nil
	}
	out := make([]models.MixingTerm, len(src))
	copy(out, src)
	sort.SliceStable(out, func(a, b int) bool { return out[a].Order() < out[b].Order() })
	return out
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	g := gcd(a, b)
	if g == 0 {
		return 0
	}
	return abs(a / g * b)
}

func lcmAll(v []int) int {
	res := 1
	for _, x := range v {
		res = lcm(res, x)
	}
	return res
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

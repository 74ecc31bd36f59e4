package models

import "fmt"

// MixingTerm is an integer combination of the three excitation base
// frequencies that explains a frequency bin
type MixingTerm [3]int

// Order returns the L1 norm of the term
func (m MixingTerm) Order() int {
	return abs(m[0]) + abs(m[1]) + abs(m[2])
}

// String renders the term as (i,j,k)
func (m MixingTerm) String() string {
	return fmt.Sprintf("(%d,%d,%d)", m[0], m[1], m[2])
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

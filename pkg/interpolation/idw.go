// Package interpolation estimates voxel values from their spatial neighbours.
//
// The estimate is an inverse-distance-weighted mean over the 3×3×3 block
// around a voxel, without the voxel itself and clipped at the grid borders.
// Distances are physical (millimetres), so anisotropic voxels weigh their
// neighbours accordingly.
package interpolation

import (
	"math"

	"sfview/internal/models"
)

// ProgressCallback is a function that reports progress of a batch operation
type ProgressCallback func(completed, total int, message string)

// offset is one neighbour direction with its precomputed weight
type offset struct {
	dx, dy, dz int
	weight     float64
}

// Neighborhood performs inverse-distance-weighted interpolation on one grid.
type Neighborhood struct {
	grid    models.Grid
	spacing [3]float64
	offsets []offset
}

// NewNeighborhood prepares the 26 neighbour weights for a grid with the
// given voxel spacing per axis. Non-positive spacings fall back to one so
// that a dataset without field of view still interpolates in voxel units.
func NewNeighborhood(grid models.Grid, spacing [3]float64) *Neighborhood {
	for i, s := range spacing {
		if !(s > 0) || math.IsInf(s, 0) {
			spacing[i] = 1
		}
	}

	n := &Neighborhood{grid: grid, spacing: spacing, offsets: make([]offset, 0, 26)}
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				d := math.Sqrt(sq(float64(dx)*spacing[0]) + sq(float64(dy)*spacing[1]) + sq(float64(dz)*spacing[2]))
				n.offsets = append(n.offsets, offset{dx: dx, dy: dy, dz: dz, weight: 1 / d})
			}
		}
	}
	return n
}

// Grid returns the grid the neighbourhood was built for.
func (n *Neighborhood) Grid() models.Grid { return n.grid }

// Spacing returns the voxel spacing in millimetres.
func (n *Neighborhood) Spacing() [3]float64 { return n.spacing }

// Neighbors returns the in-grid neighbours of pos together with their
// weights.
func (n *Neighborhood) Neighbors(pos models.Position) ([]models.Position, []float64) {
	var (
		ps []models.Position
		ws []float64
	)
	for _, o := range n.offsets {
		p := pos.Add(o.dx, o.dy, o.dz)
		if !n.grid.Contains(p) {
			continue
		}
		ps = append(ps, p)
		ws = append(ws, o.weight)
	}
	return ps, ws
}

// Interpolate returns the weighted mean of the neighbours of pos inside
// volume, a block of grid.Voxels() samples with x varying fastest. The
// count of contributing neighbours is returned as well; with zero neighbours
// (a single-voxel grid, or pos outside the grid) the estimate is zero.
func (n *Neighborhood) Interpolate(volume []complex128, pos models.Position) (complex128, int) {
	if !n.grid.Contains(pos) || len(volume) < n.grid.Voxels() {
		return 0, 0
	}

	var (
		sum    complex128
		weight float64
		count  int
	)
	for _, o := range n.offsets {
		p := pos.Add(o.dx, o.dy, o.dz)
		if !n.grid.Contains(p) {
			continue
		}
		sum += volume[n.grid.Offset(p)] * complex(o.weight, 0)
		weight += o.weight
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return sum / complex(weight, 0), count
}

func sq(v float64) float64 { return v * v }

package ranking

import (
	"math"
	"math/cmplx"

	"sfview/internal/models"
)

// Geometry describes the physical placement of the voxel grid, in mm.
type Geometry struct {
	Grid   models.Grid
	FOV    [3]float64
	Offset [3]float64
}

// Coordinate returns the physical centre of voxel k along axis.
func (g Geometry) Coordinate(axis, k int) float64 {
	n := float64(g.Grid[axis])
	fov := g.FOV[axis]
	return (fov/n)*float64(k) + g.Offset[axis] + 0.5*fov*(1.0/n-1.0)
}

// DriveFieldFOV returns the half extent of the region covered by the drive
// field: driveField/selectionField per axis, doubled for x and y.
func DriveFieldFOV(driveField [3]float64, selectionField float64) [3]float64 {
	var fov [3]float64
	for i := range fov {
		fov[i] = driveField[i] / selectionField
		if i < 2 {
			fov[i] *= 2
		}
	}
	return fov
}

// Mask selects the voxels that contribute to the SNR. A nil Mask selects
// the whole grid.
type Mask []bool

// DriveFieldMask keeps the voxels whose coordinate does not exceed limit in
// magnitude on any axis.
func DriveFieldMask(geo Geometry, limit [3]float64) Mask {
	m := make(Mask, geo.Grid.Voxels())
	for k := 0; k < geo.Grid[2]; k++ {
		if math.Abs(geo.Coordinate(2, k)) > limit[2] {
			continue
		}
		for j := 0; j < geo.Grid[1]; j++ {
			if math.Abs(geo.Coordinate(1, j)) > limit[1] {
				continue
			}
			for i := 0; i < geo.Grid[0]; i++ {
				if math.Abs(geo.Coordinate(0, i)) > limit[0] {
					continue
				}
				m[geo.Grid.Offset(models.NewPosition(i, j, k))] = true
			}
		}
	}
	return m
}

// Count returns the number of selected voxels out of total.
func (m Mask) Count(total int) int {
	if m == nil {
		return total
	}
	n := 0
	for _, ok := range m {
		if ok {
			n++
		}
	}
	return n
}

// MeanMagnitude returns the mean |v| over the voxels selected by mask and
// the number of voxels that contributed.
func MeanMagnitude(volume []complex128, mask Mask) (float64, int) {
	var (
		sum   float64
		count int
	)
	for i, v := range volume {
		if mask != nil && (i >= len(mask) || !mask[i]) {
			continue
		}
		sum += cmplx.Abs(v)
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return sum / float64(count), count
}

// SNR divides the mean magnitude of volume by noise. Without contributing
// voxels or without noise the result is 0.
func SNR(volume []complex128, mask Mask, noise float64) float64 {
	mean, count := MeanMagnitude(volume, mask)
	if count == 0 || noise == 0 || math.IsNaN(noise) {
		return 0
	}
	return mean / noise
}

// Package visualization renders the spatial voxel block of one global index
// as grayscale slice images.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"

	"sfview/internal/models"
)

// Viewer extracts 2D slices and sub-regions from a voxel block
type Viewer struct {
	// block holds one spatial volume in x-fastest order
	block []complex128

	// magnitude caches |block| for normalization
	magnitude []float64

	grid models.Grid

	// peak is the largest magnitude in the block, used as white level
	peak float64
}

// NewViewer creates a viewer over a voxel block laid out on grid
func NewViewer(block []complex128, grid models.Grid) (*Viewer, error) {
	if grid[0] <= 0 || grid[1] <= 0 || grid[2] <= 0 {
		return nil, fmt.Errorf("invalid grid %v", grid)
	}
	if len(block) != grid.Voxels() {
		return nil, fmt.Errorf("block has %d samples, grid %v needs %d", len(block), grid, grid.Voxels())
	}

	magnitude := make([]float64, len(block))
	for i, v := range block {
		magnitude[i] = cmplx.Abs(v)
	}

	return &Viewer{
		block:     block,
		magnitude: magnitude,
		grid:      grid,
		peak:      floats.Max(magnitude),
	}, nil
}

// Grid returns the voxel grid of the block
func (v *Viewer) Grid() models.Grid {
	return v.grid
}

// Peak returns the magnitude mapped to full white
func (v *Viewer) Peak() float64 {
	return v.peak
}

// level maps a magnitude onto the 16-bit gray range
func (v *Viewer) level(mag float64) uint16 {
	if v.peak <= 0 || math.IsNaN(mag) {
		return 0
	}
	scaled := mag / v.peak * 65535
	if scaled > 65535 {
		scaled = 65535
	}
	return uint16(scaled)
}

// sliceBounds returns the image width and height of a slice normal to axis
func (v *Viewer) sliceBounds(axis models.Axis) (int, int) {
	switch axis {
	case models.AxisX:
		// YZ plane, z horizontal
		return v.grid[2], v.grid[1]
	case models.AxisY:
		// XZ plane, z vertical
		return v.grid[0], v.grid[2]
	default:
		return v.grid[0], v.grid[1]
	}
}

// ExtractSlice extracts the magnitude slice normal to axis at position
func (v *Viewer) ExtractSlice(axis models.Axis, position int) (*image.Gray16, error) {
	if axis < models.AxisX || axis > models.AxisZ {
		return nil, fmt.Errorf("invalid axis: %s", axis)
	}
	if position < 0 || position >= v.grid[axis] {
		return nil, fmt.Errorf("position %d outside [0,%d) along %s", position, v.grid[axis], axis)
	}

	w, h := v.sliceBounds(axis)
	img := image.NewGray16(image.Rect(0, 0, w, h))

	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			var p models.Position
			switch axis {
			case models.AxisX:
				p = models.NewPosition(position, row, col)
			case models.AxisY:
				p = models.NewPosition(col, position, row)
			default:
				p = models.NewPosition(col, row, position)
			}
			img.SetGray16(col, row, color.Gray16{Y: v.level(v.magnitude[v.grid.Offset(p)])})
		}
	}

	return img, nil
}

// ExtractRegion copies the sub-volume starting at start with the given size
func (v *Viewer) ExtractRegion(start models.Position, size models.Grid) ([]complex128, error) {
	if !start.IsSet() {
		return nil, fmt.Errorf("start coordinates must be non-negative")
	}
	if size[0] <= 0 || size[1] <= 0 || size[2] <= 0 {
		return nil, fmt.Errorf("size dimensions must be positive")
	}
	end := start.Add(size[0]-1, size[1]-1, size[2]-1)
	if !v.grid.Contains(end) {
		return nil, fmt.Errorf("region extends beyond volume boundaries")
	}

	region := make([]complex128, size.Voxels())
	for z := 0; z < size[2]; z++ {
		for y := 0; y < size[1]; y++ {
			src := v.grid.Offset(start.Add(0, y, z))
			dst := size.Offset(models.NewPosition(0, y, z))
			copy(region[dst:dst+size[0]], v.block[src:src+size[0]])
		}
	}

	return region, nil
}

// SaveSlice writes img to filename. The encoder follows the extension:
// .jpg and .jpeg produce JPEG, anything else PNG.
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(file, img)
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// SaveSliceSequence extracts every slice along axis and writes them as PNG
// files into outputDir. It returns the written file names in order.
func (v *Viewer) SaveSliceSequence(axis models.Axis, outputDir string) ([]string, error) {
	if axis < models.AxisX || axis > models.AxisZ {
		return nil, fmt.Errorf("invalid axis: %s", axis)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}

	files := make([]string, 0, v.grid[axis])
	for pos := 0; pos < v.grid[axis]; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return files, err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return files, err
		}
		files = append(files, filename)
	}

	return files, nil
}

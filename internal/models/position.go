package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Axis identifies one of the three spatial directions of the voxel grid
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// String returns the lower-case axis name
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis converts "x", "y" or "z" (any case) into an Axis
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("unknown axis %q", s)
}

// Position is a voxel position inside the spatial grid of a system matrix.
// A component of -1 marks the position as unset.
type Position struct {
	X, Y, Z int
}

// Unset is the position with all components unset
var Unset = Position{X: -1, Y: -1, Z: -1}

// NewPosition builds a position from its three components
func NewPosition(x, y, z int) Position {
	return Position{X: x, Y: y, Z: z}
}

// IsSet reports whether no component is negative
func (p Position) IsSet() bool {
	return p.X >= 0 && p.Y >= 0 && p.Z >= 0
}

// Index returns the component along the given axis
func (p Position) Index(a Axis) int {
	switch a {
	case AxisX:
		return p.X
	case AxisY:
		return p.Y
	case AxisZ:
		return p.Z
	}
	return 0
}

// With returns a copy of p with the component along a replaced
func (p Position) With(a Axis, v int) Position {
	switch a {
	case AxisX:
		p.X = v
	case AxisY:
		p.Y = v
	case AxisZ:
		p.Z = v
	}
	return p
}

// Add returns p shifted by the given offsets
func (p Position) Add(dx, dy, dz int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

// Less orders positions by z, then y, then x
func (p Position) Less(q Position) bool {
	if p.Z != q.Z {
		return p.Z < q.Z
	}
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.X < q.X
}

// String renders the position as x/y/z
func (p Position) String() string {
	return fmt.Sprintf("%d/%d/%d", p.X, p.Y, p.Z)
}

// Grid holds the number of voxels along each axis
type Grid [3]int

// Voxels returns the number of voxels in one volume
func (g Grid) Voxels() int {
	return g[0] * g[1] * g[2]
}

// Contains reports whether p lies inside the grid
func (g Grid) Contains(p Position) bool {
	return p.X >= 0 && p.X < g[0] &&
		p.Y >= 0 && p.Y < g[1] &&
		p.Z >= 0 && p.Z < g[2]
}

// Offset returns the row-major offset of p inside one volume (x fastest)
func (g Grid) Offset(p Position) int {
	return (p.Z*g[1]+p.Y)*g[0] + p.X
}

// ParsePosition reads the x/y/z text form written by String
func ParsePosition(s string) (Position, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return Unset, fmt.Errorf("position %q: want x/y/z", s)
	}
	var v [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Unset, fmt.Errorf("position %q: %w", s, err)
		}
		v[i] = n
	}
	return NewPosition(v[0], v[1], v[2]), nil
}

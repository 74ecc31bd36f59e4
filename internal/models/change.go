package models

import "time"

// Mode selects whether a system matrix is opened for viewing or editing
type Mode int

const (
	// Viewer maps all files read-only and rejects every mutation
	Viewer Mode = iota

	// Editor maps the data planes read-write and keeps a change log
	Editor
)

// String returns the mode name
func (m Mode) String() string {
	if m == Editor {
		return "editor"
	}
	return "viewer"
}

// Slots of ChangeItem.Values
const (
	UncorrectedBefore = iota
	UncorrectedAfter
	CorrectedBefore
	CorrectedAfter
)

// ChangeItem records the modification of one voxel for one global index.
// All values are stored in raw (uncalibrated) units.
type ChangeItem struct {
	// GlobalIndex identifies receiver and frequency of the modified block
	GlobalIndex int

	// Values holds uncorrected before/after and corrected before/after
	Values [4]complex128
}

// Before returns the value of the requested plane prior to the change
func (c ChangeItem) Before(corrected bool) complex128 {
	if corrected {
		return c.Values[CorrectedBefore]
	}
	return c.Values[UncorrectedBefore]
}

// After returns the value of the requested plane after the change
func (c ChangeItem) After(corrected bool) complex128 {
	if corrected {
		return c.Values[CorrectedAfter]
	}
	return c.Values[UncorrectedAfter]
}

// ChangeEntry groups the change items created by a single edit operation
type ChangeEntry struct {
	// Time is when the edit was performed
	Time time.Time

	// Position is the voxel that was modified
	Position Position

	// Items holds one change per modified global index
	Items []ChangeItem
}

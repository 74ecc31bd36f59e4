package storage

import (
	"errors"
	"fmt"
)

// Element sizes of the binary files.
const (
	ComplexSize = 16
	Float64Size = 8
)

// File names inside the processed-data directory.
const (
	PrimaryFile             = "systemMatrix"
	CorrectedFile           = "systemMatrixBG"
	SNRFile                 = "snr"
	BackgroundReferenceFile = "backgroundReference"
	BackgroundVarianceFile  = "backgroundVariance"
	BackgroundFile          = "background"
)

// ErrSize is returned when a file does not have the size its layout demands.
var ErrSize = errors.New("storage: wrong file size")

// Layout describes the shape shared by all files of one dataset.
type Layout struct {
	// Voxels is the number of voxels in one volume
	Voxels int

	// Frequencies is the number of frequency bins per channel
	Frequencies int

	// Channels is the number of receive channels
	Channels int

	// BackgroundSamples is the number of background measurements per global index
	BackgroundSamples int
}

// Indices returns the number of global indices.
func (l Layout) Indices() int {
	return l.Channels * l.Frequencies
}

// DataSize is the expected size of the uncorrected and corrected planes.
func (l Layout) DataSize() int64 {
	return int64(l.Indices()) * int64(l.Voxels) * ComplexSize
}

// SNRSize is the expected size of the SNR and background variance tables.
func (l Layout) SNRSize() int64 {
	return int64(l.Indices()) * Float64Size
}

// ReferenceSize is the expected size of the background reference table.
func (l Layout) ReferenceSize() int64 {
	return int64(l.Indices()) * ComplexSize
}

// BackgroundSize is the expected size of the full background sample file.
func (l Layout) BackgroundSize() int64 {
	return int64(l.Indices()) * int64(l.BackgroundSamples) * ComplexSize
}

// ChannelsFromSize derives the channel count from the size of a data plane.
func (l Layout) ChannelsFromSize(size int64) (int, error) {
	perChannel := int64(l.Voxels) * int64(l.Frequencies) * ComplexSize
	if perChannel <= 0 {
		return 0, fmt.Errorf("%w: empty grid or no frequencies", ErrSize)
	}
	if size <= 0 || size%perChannel != 0 {
		return 0, fmt.Errorf("%w: system matrix has %d bytes, not a multiple of %d bytes per channel", ErrSize, size, perChannel)
	}
	return int(size / perChannel), nil
}

// CheckSize compares a mapped size with the expected one.
func CheckSize(what string, got, want int64) error {
	if got != want {
		return fmt.Errorf("%w: %s file has wrong file size (%d bytes instead of expected %d bytes)", ErrSize, what, got, want)
	}
	return nil
}

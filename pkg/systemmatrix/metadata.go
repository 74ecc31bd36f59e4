package systemmatrix

import (
	"time"

	"sfview/pkg/params"
)

// Manufacturer of all systems producing this data format.
const Manufacturer = "Bruker BioSpin MRI GmbH"

// acqTimeLayout is the prefix of ACQ_time that carries the date.
const acqTimeLayout = "2006-01-02T15:04:05"

// Metadata describes the acquisition of a system matrix.
type Metadata struct {
	Institution    string
	SystemName     string
	SystemID       string
	Manufacturer   string
	ExperimentName string
	// ExperimentDate is zero if ACQ_time could not be parsed
	ExperimentDate      time.Time
	Averages            int
	TracerName          string
	TracerConcentration float64
	TracerVolume        float64
}

func readMetadata(p params.Store) Metadata {
	md := Metadata{
		Institution:         p.String("ACQ_institution"),
		SystemName:          p.String("ACQ_station"),
		SystemID:            p.String("ACQ_system_order_number"),
		Manufacturer:        Manufacturer,
		ExperimentName:      p.String("ACQ_scan_name"),
		Averages:            p.Int("NA"),
		TracerName:          p.String("PVM_MPI_Tracer"),
		TracerConcentration: p.Float("PVM_MPI_TracerConcentration"),
		TracerVolume:        p.Float("PVM_MPI_TracerVolume"),
	}
	date := p.String("ACQ_time")
	if len(date) > len(acqTimeLayout) {
		date = date[:len(acqTimeLayout)]
	}
	if t, err := time.ParseInLocation(acqTimeLayout, date, time.Local); err == nil {
		md.ExperimentDate = t
	}
	return md
}

// Metadata returns the acquisition metadata.
func (m *Matrix) Metadata() Metadata { return m.meta }

// SelectionField returns the selection field gradient.
func (m *Matrix) SelectionField() float64 {
	return m.params.Float("PVM_MPI_SelectionFieldGradient")
}

// DriveField returns the drive field strength of one excitation channel,
// or 0 if it is not configured.
func (m *Matrix) DriveField(channel int) float64 {
	const name = "PVM_MPI_DriveFieldStrength"
	if channel < 0 || !m.params.IsArray(name) || channel >= m.params.Dimension(name) {
		return 0
	}
	return m.params.FloatAt(name, channel)
}

func (m *Matrix) driveFields() [3]float64 {
	return [3]float64{m.DriveField(0), m.DriveField(1), m.DriveField(2)}
}

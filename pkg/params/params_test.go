package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
RecoDim: 3
RECO_size: [4, 3, 2]
RECO_fov: [2.4, "1.8", 1]
RECO_sw: [2.5e6]
PVM_MPI_NrFrequencyComponents: "817"
PVM_MPI_ActivateSNRWithinDFFov: "Yes"
ACQ_institution: Example Lab
ACQ_MPI_div: [2448, 2380, 2312]
NA: 3.0
`

func TestScalarLookup(t *testing.T) {
	m, err := ParseYAML([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, 3, m.Int("RecoDim"))
	assert.Equal(t, 817, m.Int("PVM_MPI_NrFrequencyComponents"))
	assert.Equal(t, 3, m.Int("NA"))
	assert.Equal(t, "Example Lab", m.String("ACQ_institution"))
	assert.Equal(t, "Yes", m.String("PVM_MPI_ActivateSNRWithinDFFov"))
}

func TestArrayLookup(t *testing.T) {
	m, err := ParseYAML([]byte(sample))
	require.NoError(t, err)

	assert.True(t, m.IsArray("RECO_size"))
	assert.Equal(t, 3, m.Dimension("RECO_size"))
	assert.Equal(t, 4, m.IntAt("RECO_size", 0))
	assert.Equal(t, 2, m.IntAt("RECO_size", 2))
	assert.InDelta(t, 1.8, m.FloatAt("RECO_fov", 1), 1e-12)
	assert.InDelta(t, 1.0, m.FloatAt("RECO_fov", 2), 1e-12)
	assert.InDelta(t, 2.5e6, m.FloatAt("RECO_sw", 0), 1e-6)
	assert.Equal(t, 2380, m.IntAt("ACQ_MPI_div", 1))
}

func TestMissingValuesYieldZero(t *testing.T) {
	m, err := ParseYAML([]byte(sample))
	require.NoError(t, err)

	assert.False(t, m.Has("PVM_MPI_Tracer"))
	assert.Equal(t, "", m.String("PVM_MPI_Tracer"))
	assert.Equal(t, 0, m.Int("PVM_MPI_Tracer"))
	assert.Equal(t, 0, m.Dimension("PVM_MPI_Tracer"))
	assert.Equal(t, 0, m.IntAt("RECO_size", 3))
	assert.Equal(t, 0, m.IntAt("RECO_size", -1))
	assert.Equal(t, 0, m.Int("RECO_size"), "array used as scalar")
	assert.Equal(t, 0, m.Int("ACQ_institution"), "string that is not a number")
}

func TestScalarActsAsSingleElementArray(t *testing.T) {
	m := Map{"RECO_sw": 1000.0}

	assert.False(t, m.IsArray("RECO_sw"))
	assert.Equal(t, 1, m.Dimension("RECO_sw"))
	assert.InDelta(t, 1000.0, m.FloatAt("RECO_sw", 0), 1e-12)
	assert.Zero(t, m.FloatAt("RECO_sw", 1))
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parameters.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	m, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, 4, m.IntAt("RECO_size", 0))

	_, err = LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

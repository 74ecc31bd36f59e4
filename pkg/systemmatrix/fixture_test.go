package systemmatrix

import (
	"encoding/binary"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"sfview/internal/models"
	"sfview/pkg/config"
	"sfview/pkg/storage"
)

// fixture is a synthetic dataset on disk. Every voxel of global index g
// holds g+1+0.5i in the uncorrected plane and twice that in the corrected
// plane, except for a spike of ten times the value at voxel 0 of index 0.
type fixture struct {
	expno    string
	dir      string
	grid     models.Grid
	channels int
	freqs    int
	params   map[string]any
}

const bgSamples = 4

func newFixture(t *testing.T, grid models.Grid, channels, freqs int) *fixture {
	t.Helper()
	f := &fixture{
		expno:    filepath.Join(t.TempDir(), "7"),
		grid:     grid,
		channels: channels,
		freqs:    freqs,
	}
	f.dir = filepath.Join(f.expno, "pdata", "1")
	require.NoError(t, os.MkdirAll(f.dir, 0755))

	f.params = map[string]any{
		"RecoDim":                        3,
		"RECO_size":                      []int{grid[0], grid[1], grid[2]},
		"RECO_fov":                       []float64{2, 2, 2},
		"PVM_MPI_FovCenter":              []float64{0, 0, 0},
		"PVM_MPI_NrFrequencyComponents":  freqs,
		"RECO_sw":                        []float64{30000},
		"PVM_MPI_ActivateSNRWithinDFFov": "No",
		"ACQ_MPI_div":                    []int{6, 3, 2},
		"PVM_MPI_DriveFieldStrength":     []float64{12, 12, 12},
		"PVM_MPI_SelectionFieldGradient": 2.5,
		"ACQ_institution":                "Test Lab",
		"ACQ_station":                    "MPI 25/20",
		"ACQ_system_order_number":        "S1234",
		"ACQ_scan_name":                  "calibration (E7)",
		"ACQ_time":                       "2016-03-14T09:26:53,123+0100",
		"NA":                             4,
		"PVM_MPI_Tracer":                 "Resovist",
		"PVM_MPI_TracerConcentration":    0.5,
		"PVM_MPI_TracerVolume":           10.0,
	}
	f.params["PVM_MPI_NrBackgroundMeasurementCalibrationAllScans"] = bgSamples + 1
	f.params["PVM_MPI_NrBackgroundMeasurementCalibrationAdditionalScans"] = 1
	f.writeParams(t)

	voxels := grid.Voxels()
	count := channels * freqs
	uncorrected := make([]complex128, count*voxels)
	corrected := make([]complex128, count*voxels)
	for g := 0; g < count; g++ {
		for v := 0; v < voxels; v++ {
			uncorrected[g*voxels+v] = complex(float64(g+1), 0.5)
			corrected[g*voxels+v] = 2 * complex(float64(g+1), 0.5)
		}
	}
	uncorrected[0] *= 10
	corrected[0] *= 10

	snr := make([]float64, count)
	variance := make([]float64, count)
	reference := make([]complex128, count)
	background := make([]complex128, 0, count*bgSamples)
	for g := range snr {
		snr[g] = float64(g % 3)
		variance[g] = 0.25 * float64(g)
		reference[g] = complex(0, float64(g))
		// mean 0, every sample at distance 1
		background = append(background, 1, -1, 1i, -1i)
	}

	f.writeComplex(t, storage.PrimaryFile, uncorrected)
	f.writeComplex(t, storage.CorrectedFile, corrected)
	f.writeFloat(t, storage.SNRFile, snr)
	f.writeComplex(t, storage.BackgroundReferenceFile, reference)
	f.writeFloat(t, storage.BackgroundVarianceFile, variance)
	f.writeComplex(t, storage.BackgroundFile, background)
	return f
}

func (f *fixture) writeParams(t *testing.T) {
	t.Helper()
	data, err := yaml.Marshal(f.params)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, ParameterFile), data, 0644))
}

func (f *fixture) writeComplex(t *testing.T, name string, values []complex128) {
	t.Helper()
	buf := make([]byte, 0, len(values)*storage.ComplexSize)
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(real(v)))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(imag(v)))
	}
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, name), buf, 0644))
}

func (f *fixture) writeFloat(t *testing.T, name string, values []float64) {
	t.Helper()
	buf := make([]byte, 0, len(values)*storage.Float64Size)
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, name), buf, 0644))
}

func (f *fixture) read(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	require.NoError(t, err)
	return data
}

func (f *fixture) open(t *testing.T, mode models.Mode) *Matrix {
	t.Helper()
	return f.openWith(t, mode, config.DefaultConfig())
}

func (f *fixture) openWith(t *testing.T, mode models.Mode, cfg *config.Config) *Matrix {
	t.Helper()
	m, err := Open(f.dir, Options{Mode: mode, Config: cfg, Logger: quietLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	clock := time.UnixMilli(1_600_000_000_000)
	m.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return m
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

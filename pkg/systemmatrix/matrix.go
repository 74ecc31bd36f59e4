// Package systemmatrix opens an MPI system matrix stored in a processed-data
// directory and answers queries about it.
//
// The raw data is never loaded as a whole. All binary files are memory
// mapped when the matrix is opened, and calibrated voxel blocks are derived
// on demand. Opened in editor mode, outlier voxels can be replaced by the
// inverse-distance-weighted mean of their neighbours; every edit is recorded
// in a change log persisted next to the data and can be undone.
//
// A Matrix is not safe for concurrent use.
package systemmatrix

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sfview/internal/models"
	"sfview/pkg/calibration"
	"sfview/pkg/changelog"
	"sfview/pkg/config"
	"sfview/pkg/interpolation"
	"sfview/pkg/logging"
	"sfview/pkg/params"
	"sfview/pkg/ranking"
	"sfview/pkg/storage"
)

// ParameterFile is read from the processed-data directory when no
// parameter store is passed to Open.
const ParameterFile = "parameters.yaml"

// ErrParameters is returned when acquisition parameters are unusable.
var ErrParameters = errors.New("systemmatrix: invalid parameters")

// Options control how a matrix is opened. The zero value opens a matrix
// for viewing with the default configuration.
type Options struct {
	// Mode selects viewing (read-only) or editing
	Mode models.Mode

	// Config supplies engine policies; nil means config.DefaultConfig()
	Config *config.Config

	// Params overrides the parameter file in the processed-data directory
	Params params.Store

	// Logger receives diagnostics; nil means logging.Component("systemmatrix")
	Logger *slog.Logger
}

// Matrix is an opened system matrix.
type Matrix struct {
	path     string
	expnoDir string
	mode     models.Mode
	cfg      *config.Config
	log      *slog.Logger
	params   params.Store
	meta     Metadata

	grid       models.Grid
	fov        [3]float64
	offset     [3]float64
	bandwidth  float64
	snrInDFFOV bool
	index      ranking.Indexer
	layout     storage.Layout

	regions     *storage.Table
	uncorrected []complex128
	corrected   []complex128
	reference   []complex128
	variance    []float64
	snrRegion   *storage.Region

	calib     *calibration.Engine
	ranks     *ranking.Table
	noise     *ranking.NoiseEstimator
	mask      ranking.Mask
	neighbors *interpolation.Neighborhood
	mixing    *ranking.MixingTable

	changes *changelog.Log
	store   *changelog.Store

	observers    map[int]func()
	nextObserver int

	now    func() time.Time
	closed bool
}

// ResolvePath turns a user supplied path into the processed-data directory:
// a file resolves to its directory, and a path without a pdata component is
// taken as an experiment directory whose first reconstruction is used.
func ResolvePath(path string) string {
	if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
		path = filepath.Dir(path)
	}
	path = filepath.Clean(path)
	if !strings.Contains(path, "pdata") {
		path = filepath.Join(path, "pdata", "1")
	}
	return path
}

// Open maps the dataset found at path. On error all mappings established so
// far are released and no Matrix is returned.
func Open(path string, opts Options) (*Matrix, error) {
	m := &Matrix{
		path:      ResolvePath(path),
		mode:      opts.Mode,
		cfg:       opts.Config,
		log:       opts.Logger,
		params:    opts.Params,
		regions:   storage.NewTable(),
		observers: make(map[int]func()),
		now:       time.Now,
	}
	m.expnoDir = filepath.Dir(filepath.Dir(m.path))
	if m.cfg == nil {
		m.cfg = config.DefaultConfig()
	}
	if m.log == nil {
		m.log = logging.Component("systemmatrix")
	}
	m.log = m.log.With("path", m.path)

	if err := m.open(); err != nil {
		if cerr := m.regions.Close(); cerr != nil {
			m.log.Warn("releasing mappings failed", "error", cerr)
		}
		m.closed = true
		return nil, err
	}
	m.log.Info("system matrix opened",
		"mode", m.mode,
		"grid", m.grid,
		"channels", m.index.Channels,
		"frequencies", m.index.Frequencies,
		"changes", m.changes.Len())
	return m, nil
}

func (m *Matrix) open() error {
	if m.params == nil {
		p, err := params.LoadYAML(filepath.Join(m.path, ParameterFile))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrParameters, err)
		}
		m.params = p
	}
	if err := m.readParameters(); err != nil {
		return err
	}
	if err := m.mapData(); err != nil {
		return err
	}

	curves := calibration.LoadChannels(m.expnoDir, m.index.Channels, m.log)
	m.calib = calibration.NewEngine(curves, m.cfg.Engine.CorrectPhaseOnly, m.cfg.Engine.CacheCapacity)

	if err := m.mapTables(); err != nil {
		return err
	}

	var spacing [3]float64
	for i := range spacing {
		spacing[i] = m.fov[i] / float64(m.grid[i])
	}
	m.neighbors = interpolation.NewNeighborhood(m.grid, spacing)
	if m.snrInDFFOV {
		geo := ranking.Geometry{Grid: m.grid, FOV: m.fov, Offset: m.offset}
		m.mask = ranking.DriveFieldMask(geo, ranking.DriveFieldFOV(m.driveFields(), m.SelectionField()))
	}

	m.changes = changelog.NewLog(nil)
	m.store = changelog.NewStore(m.path)
	if m.mode == models.Editor {
		if err := m.loadChanges(); err != nil {
			return err
		}
	}

	var div [3]int
	for i := range div {
		div[i] = m.params.IntAt("ACQ_MPI_div", i)
	}
	m.mixing = ranking.NewMixingTable(ranking.BaseIndices(div), m.cfg.Engine.MaxMixingOrder, m.index.Frequencies)
	return nil
}

func (m *Matrix) readParameters() error {
	p := m.params
	m.meta = readMetadata(p)

	dim := p.Int("RecoDim")
	if dim < 1 || dim > 3 {
		return fmt.Errorf("%w: RecoDim is %d", ErrParameters, dim)
	}
	m.grid = models.Grid{1, 1, 1}
	for i := 0; i < dim; i++ {
		m.grid[i] = p.IntAt("RECO_size", i)
		if m.grid[i] < 1 {
			return fmt.Errorf("%w: RECO_size[%d] is %d", ErrParameters, i, m.grid[i])
		}
		m.fov[i] = p.FloatAt("RECO_fov", i) * 10
		m.offset[i] = p.FloatAt("PVM_MPI_FovCenter", i)
	}

	frequencies := p.Int("PVM_MPI_NrFrequencyComponents")
	if frequencies < 1 {
		return fmt.Errorf("%w: PVM_MPI_NrFrequencyComponents is %d", ErrParameters, frequencies)
	}
	m.index.Frequencies = frequencies
	m.bandwidth = p.FloatAt("RECO_sw", 0)
	m.snrInDFFOV = p.String("PVM_MPI_ActivateSNRWithinDFFov") == "Yes"

	samples := p.Int("PVM_MPI_NrBackgroundMeasurementCalibrationAllScans") -
		p.Int("PVM_MPI_NrBackgroundMeasurementCalibrationAdditionalScans")
	m.layout = storage.Layout{
		Voxels:            m.grid.Voxels(),
		Frequencies:       frequencies,
		BackgroundSamples: samples,
	}
	return nil
}

// mapData maps both data planes and derives the channel count.
func (m *Matrix) mapData() error {
	writable := m.mode == models.Editor

	primary, err := m.regions.Map(filepath.Join(m.path, storage.PrimaryFile), writable)
	if err != nil {
		return err
	}
	corrected, err := m.regions.Map(filepath.Join(m.path, storage.CorrectedFile), writable)
	if err != nil {
		return err
	}
	if primary.Size() != corrected.Size() {
		return fmt.Errorf("%w: sizes of corrected and uncorrected system matrices do not match (%d and %d bytes)",
			storage.ErrSize, corrected.Size(), primary.Size())
	}

	channels, err := m.layout.ChannelsFromSize(primary.Size())
	if err != nil {
		return err
	}
	m.layout.Channels = channels
	m.index.Channels = channels
	m.uncorrected = primary.Complex()
	m.corrected = corrected.Complex()
	return nil
}

// mapTables maps the per-index tables and, in editor mode, the background
// samples.
func (m *Matrix) mapTables() error {
	writable := m.mode == models.Editor

	snr, err := m.regions.Map(filepath.Join(m.path, storage.SNRFile), writable)
	if err != nil {
		return err
	}
	if err := storage.CheckSize("SNR", snr.Size(), m.layout.SNRSize()); err != nil {
		return err
	}
	m.snrRegion = snr
	m.ranks = ranking.NewTable(snr.Float64())

	ref, err := m.regions.Map(filepath.Join(m.path, storage.BackgroundReferenceFile), false)
	if err != nil {
		return err
	}
	if err := storage.CheckSize("Background reference", ref.Size(), m.layout.ReferenceSize()); err != nil {
		return err
	}
	m.reference = ref.Complex()

	variance, err := m.regions.Map(filepath.Join(m.path, storage.BackgroundVarianceFile), false)
	if err != nil {
		return err
	}
	if err := storage.CheckSize("Background variance", variance.Size(), m.layout.SNRSize()); err != nil {
		return err
	}
	m.variance = variance.Float64()

	var background []complex128
	if m.mode == models.Editor {
		bg, err := m.regions.Map(filepath.Join(m.path, storage.BackgroundFile), false)
		if err != nil {
			return err
		}
		if err := storage.CheckSize("Background", bg.Size(), m.layout.BackgroundSize()); err != nil {
			return err
		}
		background = bg.Complex()
	}
	m.noise = ranking.NewNoiseEstimator(background, m.layout.BackgroundSamples, m.index.Count())
	return nil
}

// Close flushes and releases all mappings. Further calls are no-ops.
func (m *Matrix) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.uncorrected, m.corrected, m.reference, m.variance = nil, nil, nil, nil
	m.observers = nil
	if err := m.regions.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", m.path, err)
	}
	return nil
}

// Path returns the processed-data directory.
func (m *Matrix) Path() string { return m.path }

// Mode returns the mode the matrix was opened in.
func (m *Matrix) Mode() models.Mode { return m.mode }

// Valid reports whether the matrix can be queried.
func (m *Matrix) Valid() bool { return !m.closed }

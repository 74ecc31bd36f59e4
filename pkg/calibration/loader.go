package calibration

import (
	"bufio"
	"encoding/binary"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNoCalibration is returned when neither the binary nor the CSV
// calibration file of a channel exists.
var ErrNoCalibration = errors.New("calibration: no calibration file")

// recordSize is one big-endian (frequency, gain dB, phase deg) triple.
const recordSize = 3 * 8

// ChannelFile returns the binary calibration file name of a zero-based channel.
func ChannelFile(dir string, channel int) string {
	return filepath.Join(dir, fmt.Sprintf("chan%d.rxcal", channel+1))
}

// Load reads the calibration curve stored at path. If path cannot be opened,
// path + ".csv" is tried instead.
func Load(path string) (*TransferFunction, error) {
	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		samples, err := ReadBinary(f)
		if err != nil {
			return nil, fmt.Errorf("binary calibration file %s: %w", path, err)
		}
		return NewTransferFunction(samples)
	}

	csvPath := path + ".csv"
	f, err = os.Open(csvPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w for %s", ErrNoCalibration, path)
		}
		return nil, err
	}
	defer f.Close()
	samples, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("text-based calibration file %s: %w", csvPath, err)
	}
	return NewTransferFunction(samples)
}

// ReadBinary decodes big-endian float64 triples until EOF.
func ReadBinary(r io.Reader) ([]Sample, error) {
	br := bufio.NewReader(r)
	var (
		samples []Sample
		rec     [recordSize]byte
	)
	for {
		_, err := io.ReadFull(br, rec[:])
		if err == io.EOF {
			return samples, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read error after %d samples: %w", len(samples), err)
		}
		f := math.Float64frombits(binary.BigEndian.Uint64(rec[0:]))
		db := math.Float64frombits(binary.BigEndian.Uint64(rec[8:]))
		deg := math.Float64frombits(binary.BigEndian.Uint64(rec[16:]))
		samples = append(samples, Sample{Frequency: f, Gain: GainFromDecibel(db, deg)})
	}
}

// WriteBinary encodes frequency, gain dB and phase degree triples in the
// format understood by ReadBinary.
func WriteBinary(w io.Writer, frequency, gainDB, phaseDeg []float64) error {
	if len(frequency) != len(gainDB) || len(frequency) != len(phaseDeg) {
		return errors.New("calibration: column lengths differ")
	}
	bw := bufio.NewWriter(w)
	var rec [recordSize]byte
	for i := range frequency {
		binary.BigEndian.PutUint64(rec[0:], math.Float64bits(frequency[i]))
		binary.BigEndian.PutUint64(rec[8:], math.Float64bits(gainDB[i]))
		binary.BigEndian.PutUint64(rec[16:], math.Float64bits(phaseDeg[i]))
		if _, err := bw.Write(rec[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadCSV decodes lines of the form "frequency,gainDB,phaseDeg".
func ReadCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	var samples []Sample
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return samples, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		var v [3]float64
		for i, field := range rec {
			v[i], err = strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		samples = append(samples, Sample{Frequency: v[0], Gain: GainFromDecibel(v[1], v[2])})
	}
}

// LoadChannels loads the curves of channels 0..n-1 from dir. Channels without
// a usable curve get a nil entry and stay uncalibrated.
func LoadChannels(dir string, n int, log *slog.Logger) []*TransferFunction {
	curves := make([]*TransferFunction, n)
	for ch := range curves {
		tf, err := Load(ChannelFile(dir, ch))
		switch {
		case err == nil:
			curves[ch] = tf
			log.Debug("calibration loaded", "channel", ch+1, "samples", tf.Len())
		case errors.Is(err, ErrNoCalibration):
			log.Debug("no calibration", "channel", ch+1)
		default:
			log.Warn("calibration ignored", "channel", ch+1, "error", err)
		}
	}
	return curves
}

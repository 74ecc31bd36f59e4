package calibration

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func assertComplexNear(t *testing.T, want, got complex128) {
	t.Helper()
	assert.InDelta(t, real(want), real(got), 1e-9, "real part")
	assert.InDelta(t, imag(want), imag(got), 1e-9, "imaginary part")
}

func TestGainFromDecibel(t *testing.T) {
	g := GainFromDecibel(10, 90)
	assert.InDelta(t, 10.0, cmplx.Abs(g), 1e-12)
	assert.InDelta(t, math.Pi/2, cmplx.Phase(g), 1e-12)

	assertComplexNear(t, 1, GainFromDecibel(0, 0))
}

func TestTransferFunctionReproducesLinearGain(t *testing.T) {
	tf, err := NewTransferFunction([]Sample{
		{Frequency: 0, Gain: 1},
		{Frequency: 10, Gain: 2 + 1i},
		{Frequency: 20, Gain: 3 + 2i},
		{Frequency: 30, Gain: 4 + 3i},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, tf.Len())
	lo, hi := tf.Range()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 30.0, hi)

	assertComplexNear(t, 1.5+0.5i, tf.Gain(5))
	assertComplexNear(t, 3+2i, tf.Gain(20))
	assertComplexNear(t, 3.25+2.25i, tf.Gain(22.5))
	assertComplexNear(t, 1/(2+1i), tf.CorrectionFactor(10))
}

func TestTransferFunctionClampsOutsideBand(t *testing.T) {
	tf, err := NewTransferFunction([]Sample{
		{Frequency: 100, Gain: 2},
		{Frequency: 200, Gain: 4i},
		{Frequency: 300, Gain: -1},
	})
	require.NoError(t, err)

	assertComplexNear(t, 2, tf.Gain(50))
	assertComplexNear(t, -1, tf.Gain(1000))
}

func TestTransferFunctionMatchesNaturalSpline(t *testing.T) {
	// through (0,0), (1,1), (2,0) with zero end curvature the spline is
	// 1.5x - 0.5x³ on the first interval and symmetric on the second
	tf, err := NewTransferFunction([]Sample{
		{Frequency: 0, Gain: 0},
		{Frequency: 1000, Gain: 1 + 2i},
		{Frequency: 2000, Gain: 0},
	})
	require.NoError(t, err)

	for _, f := range []float64{500, 1500} {
		g := tf.Gain(f)
		assert.InDelta(t, 0.6875, real(g), 1e-9)
		assert.InDelta(t, 2*0.6875, imag(g), 1e-9)
	}
	assert.InDelta(t, 1.0, real(tf.Gain(1000)), 1e-9)
}

func TestTransferFunctionSingleSample(t *testing.T) {
	tf, err := NewTransferFunction([]Sample{{Frequency: 1000, Gain: 2i}})
	require.NoError(t, err)

	assertComplexNear(t, 2i, tf.Gain(0))
	assertComplexNear(t, 2i, tf.Gain(1e6))
	assertComplexNear(t, -0.5i, tf.CorrectionFactor(5))
}

func TestTransferFunctionDuplicateFrequencyKeepsLast(t *testing.T) {
	tf, err := NewTransferFunction([]Sample{
		{Frequency: 0, Gain: 1},
		{Frequency: 10, Gain: 100},
		{Frequency: 10, Gain: 2},
		{Frequency: 20, Gain: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, tf.Len())
	assertComplexNear(t, 2, tf.Gain(10))
}

func TestTransferFunctionRejectsInvalidSamples(t *testing.T) {
	_, err := NewTransferFunction(nil)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = NewTransferFunction([]Sample{{Frequency: 10, Gain: 1}, {Frequency: 5, Gain: 1}})
	assert.ErrorIs(t, err, ErrNotMonotonic)

	_, err = NewTransferFunction([]Sample{{Frequency: math.NaN(), Gain: 1}})
	assert.ErrorIs(t, err, ErrNotMonotonic)
}

func TestReadWriteBinary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, []float64{0, 1e3, 2e3}, []float64{0, 20, 0}, []float64{0, 0, 180}))
	assert.Equal(t, 3*recordSize, buf.Len())

	// big-endian: the first byte of 1e3 carries the sign and exponent
	assert.Equal(t, byte(0x40), buf.Bytes()[recordSize])

	samples, err := ReadBinary(&buf)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, 1e3, samples[1].Frequency)
	assertComplexNear(t, 100, samples[1].Gain)
	assertComplexNear(t, -1, samples[2].Gain)
}

func TestReadBinaryTruncatedRecord(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, []float64{1}, []float64{0}, []float64{0}))
	buf.Write([]byte{1, 2, 3})

	_, err := ReadBinary(&buf)
	assert.Error(t, err)
}

func TestWriteBinaryColumnMismatch(t *testing.T) {
	assert.Error(t, WriteBinary(io.Discard, []float64{1, 2}, []float64{0}, []float64{0, 0}))
}

func TestReadCSV(t *testing.T) {
	samples, err := ReadCSV(bytes.NewBufferString("0,0,0\n1000, 20, 90\n"))
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assertComplexNear(t, 100i, samples[1].Gain)

	_, err = ReadCSV(bytes.NewBufferString("0,0\n"))
	assert.Error(t, err)

	_, err = ReadCSV(bytes.NewBufferString("0,zero,0\n"))
	assert.Error(t, err)
}

func TestLoadPrefersBinaryAndFallsBackToCSV(t *testing.T) {
	dir := t.TempDir()

	bin := ChannelFile(dir, 0)
	assert.Equal(t, filepath.Join(dir, "chan1.rxcal"), bin)
	f, err := os.Create(bin)
	require.NoError(t, err)
	require.NoError(t, WriteBinary(f, []float64{0, 10}, []float64{0, 0}, []float64{0, 0}))
	require.NoError(t, f.Close())
	require.NoError(t, os.WriteFile(bin+".csv", []byte("0,20,0\n10,20,0\n"), 0644))

	tf, err := Load(bin)
	require.NoError(t, err)
	assertComplexNear(t, 1, tf.Gain(5))

	csvOnly := ChannelFile(dir, 1)
	require.NoError(t, os.WriteFile(csvOnly+".csv", []byte("0,20,0\n10,20,0\n"), 0644))
	tf, err = Load(csvOnly)
	require.NoError(t, err)
	assertComplexNear(t, 100, tf.Gain(5))

	_, err = Load(ChannelFile(dir, 2))
	assert.ErrorIs(t, err, ErrNoCalibration)
}

func TestLoadChannelsLeavesBrokenCurvesUncalibrated(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(ChannelFile(dir, 0)+".csv", []byte("0,0,0\n10,0,90\n"), 0644))
	require.NoError(t, os.WriteFile(ChannelFile(dir, 2)+".csv", []byte("10,0,0\n5,0,0\n"), 0644))

	curves := LoadChannels(dir, 3, discardLogger())
	require.Len(t, curves, 3)
	assert.NotNil(t, curves[0])
	assert.Nil(t, curves[1])
	assert.Nil(t, curves[2])
}

func TestBlockCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewBlockCache(2)
	a := BlockKey{GlobalIndex: 1}
	b := BlockKey{GlobalIndex: 2}
	d := BlockKey{GlobalIndex: 3}

	c.Put(a, []complex128{1})
	c.Put(b, []complex128{2})
	_, ok := c.Get(a)
	require.True(t, ok)

	c.Put(d, []complex128{3})
	assert.Equal(t, 2, c.Len())
	_, ok = c.Get(b)
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get(a)
	assert.True(t, ok)
	_, ok = c.Get(d)
	assert.True(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, 3, hits)
	assert.Equal(t, 1, misses)
}

func TestBlockCacheInvalidateDropsBothSenses(t *testing.T) {
	c := NewBlockCache(10)
	c.Put(BlockKey{GlobalIndex: 4}, []complex128{1})
	c.Put(BlockKey{GlobalIndex: 4, Corrected: true}, []complex128{2})
	c.Put(BlockKey{GlobalIndex: 5}, []complex128{3})

	c.Invalidate(4)
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get(BlockKey{GlobalIndex: 4, Corrected: true})
	assert.False(t, ok)

	c.Purge()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 10, c.Cap())
	assert.Equal(t, 1, NewBlockCache(0).Cap())
}

func TestBlockCacheNeverExceedsCapacity(t *testing.T) {
	c := NewBlockCache(3)
	for i := 0; i < 20; i++ {
		c.Put(BlockKey{GlobalIndex: i, Corrected: i%2 == 0}, nil)
		assert.LessOrEqual(t, c.Len(), 3)
	}
}

func constantCurve(t *testing.T, gain complex128) *TransferFunction {
	t.Helper()
	tf, err := NewTransferFunction([]Sample{{Frequency: 0, Gain: gain}})
	require.NoError(t, err)
	return tf
}

func TestEngineFactorPolicy(t *testing.T) {
	curves := []*TransferFunction{constantCurve(t, 2i), nil}

	full := NewEngine(curves, false, 4)
	assertComplexNear(t, -0.5i, full.Factor(0, 100))
	assertComplexNear(t, 1, full.Factor(1, 100))
	assertComplexNear(t, 1, full.Factor(7, 100))

	phase := NewEngine(curves, true, 4)
	assert.True(t, phase.PhaseOnly())
	assertComplexNear(t, -1i, phase.Factor(0, 100))
}

func TestEngineBlockUncalibratedReturnsView(t *testing.T) {
	e := NewEngine([]*TransferFunction{nil}, true, 4)
	raw := []complex128{1, 2, 3}

	block := e.Block(0, 0, 100, false, raw)
	assert.Same(t, &raw[0], &block[0])
	assert.Equal(t, 0, e.Cache().Len())
}

func TestEngineBlockScalesAndCaches(t *testing.T) {
	e := NewEngine([]*TransferFunction{constantCurve(t, 2)}, false, 4)
	raw := []complex128{2, 4i}

	block := e.Block(0, 0, 100, true, raw)
	assert.Equal(t, []complex128{1, 2i}, block)
	assert.Equal(t, []complex128{2, 4i}, raw, "raw data must stay untouched")

	raw[0] = 8
	cached := e.Block(0, 0, 100, true, raw)
	assert.Equal(t, complex128(1), cached[0], "served from cache")

	e.Invalidate(0)
	fresh := e.Block(0, 0, 100, true, raw)
	assert.Equal(t, complex128(4), fresh[0])
}

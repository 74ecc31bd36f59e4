package calibration

import (
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"
)

// Engine applies per-channel correction factors to voxel blocks.
type Engine struct {
	curves    []*TransferFunction
	phaseOnly bool
	cache     *BlockCache
}

// NewEngine creates an engine for the given curves (nil entries mark
// uncalibrated channels). With phaseOnly set, the correction leaves the
// magnitude untouched.
func NewEngine(curves []*TransferFunction, phaseOnly bool, cacheCapacity int) *Engine {
	return &Engine{
		curves:    curves,
		phaseOnly: phaseOnly,
		cache:     NewBlockCache(cacheCapacity),
	}
}

// PhaseOnly reports the correction policy.
func (e *Engine) PhaseOnly() bool { return e.phaseOnly }

// Cache exposes the corrected block cache.
func (e *Engine) Cache() *BlockCache { return e.cache }

// Curve returns the transfer function of channel, or nil.
func (e *Engine) Curve(channel int) *TransferFunction {
	if channel < 0 || channel >= len(e.curves) {
		return nil
	}
	return e.curves[channel]
}

// Calibrated reports whether channel has a transfer function.
func (e *Engine) Calibrated(channel int) bool {
	return e.Curve(channel) != nil
}

// Factor returns the correction factor for channel at frequency, reduced to
// its phase under the phase-only policy. Uncalibrated channels yield 1.
func (e *Engine) Factor(channel int, frequency float64) complex128 {
	tf := e.Curve(channel)
	if tf == nil {
		return 1
	}
	corr := tf.CorrectionFactor(frequency)
	if e.phaseOnly {
		corr = cmplx.Rect(1, cmplx.Phase(corr))
	}
	return corr
}

// Block returns the voxel block of globalIndex as seen after calibration.
// For uncalibrated channels raw itself is returned. Otherwise a corrected
// copy is served from the cache; it stays valid only until the next call.
// Callers must not write to the returned slice.
func (e *Engine) Block(globalIndex, channel int, frequency float64, corrected bool, raw []complex128) []complex128 {
	if !e.Calibrated(channel) {
		return raw
	}
	key := BlockKey{GlobalIndex: globalIndex, Corrected: corrected}
	if block, ok := e.cache.Get(key); ok {
		return block
	}
	block := make([]complex128, len(raw))
	copy(block, raw)
	cmplxs.Scale(e.Factor(channel, frequency), block)
	e.cache.Put(key, block)
	return block
}

// Invalidate forgets cached blocks of globalIndex after its raw data changed.
func (e *Engine) Invalidate(globalIndex int) {
	e.cache.Invalidate(globalIndex)
}

package capture

import (
	"sync/atomic"
	"time"
)

// HardwareCapture is the optional platform-specific capability a DMA-fed
// capture engine drives: a pattern-IO block shifting pin_count bits per
// cycle into a FIFO, paired with a DMA channel that drains the FIFO into
// the ring buffer's backing storage.
type HardwareCapture interface {
	// Arm configures and starts the pattern-IO/DMA pair: divider is the
	// clock divider (system_clock / divider == actual shift rate),
	// pinBase/pinCount select the GPIO window, dst is the ring buffer's
	// backing storage, and nWords is how many samples to transfer.
	Arm(divider float64, pinBase, pinCount int, dst []uint32, nWords int) error
	// WaitComplete blocks until the DMA transfer finishes, returning the
	// number of words actually transferred.
	WaitComplete() (transferred int, err error)
	// Abort asynchronously stops the pattern-IO block and DMA channel.
	Abort()
	// MaxFrequency reports the measured peak shift rate, in Hz.
	MaxFrequency() float64
}

// DMAEngine is the hardware-timed capture variant: fast, platform
// specific, but satisfying the same Engine contract as SoftwareEngine.
// Pre-trigger windowing is not supported on this path; the hardware
// block only arms, runs, and reports completion.
type DMAEngine struct {
	hw          HardwareCapture
	cancelled   atomic.Bool
	startTime   time.Time
	lastHz      float64
	lastWords   int
	lastElapsed time.Duration
}

// NewDMAEngine wraps a platform-specific HardwareCapture implementation.
func NewDMAEngine(hw HardwareCapture) *DMAEngine {
	return &DMAEngine{hw: hw}
}

func (e *DMAEngine) Cancel() {
	e.cancelled.Store(true)
	e.hw.Abort()
}

func (e *DMAEngine) resetCancel() {
	e.cancelled.Store(false)
}

// Capture configures the divider from the requested frequency, starts the
// DMA transfer, blocks for completion (or abort), and dumps the result.
func (e *DMAEngine) Capture(ctx Context) {
	e.resetCancel()
	p := ctx.Params()

	if UnsupportedRate(p.FrequencyHz, p.MaxSupportedHz) {
		emitSentinel(ctx)
		ctx.SetStatus(Stopped)
		return
	}

	divider := clockDivider(e.hw.MaxFrequency(), p.FrequencyHz)
	buf := ctx.Buffer()
	if err := e.hw.Arm(divider, p.StartPin, p.PinCount, buf.DataPtr(), p.ReadCount); err != nil {
		emitSentinel(ctx)
		ctx.SetStatus(Stopped)
		return
	}

	e.startTime = time.Now()
	transferred, err := e.hw.WaitComplete()
	e.lastElapsed = time.Since(e.startTime)

	if e.cancelled.Load() || err != nil {
		emitSentinel(ctx)
		ctx.SetStatus(Stopped)
		return
	}

	buf.SetAvailable(transferred)
	e.lastWords = transferred
	if e.lastElapsed > 0 {
		e.lastHz = float64(transferred) / e.lastElapsed.Seconds()
	}

	ctx.SetStatus(Triggered)
	dump(ctx)
	ctx.SetStatus(Stopped)
}

// CaptureAll samples into the buffer without dumping, for speed
// measurement harnesses.
func (e *DMAEngine) CaptureAll(ctx Context) {
	e.resetCancel()
	p := ctx.Params()
	buf := ctx.Buffer()
	divider := clockDivider(e.hw.MaxFrequency(), p.FrequencyHz)
	if err := e.hw.Arm(divider, p.StartPin, p.PinCount, buf.DataPtr(), p.ReadCount); err != nil {
		return
	}
	e.startTime = time.Now()
	transferred, err := e.hw.WaitComplete()
	e.lastElapsed = time.Since(e.startTime)
	if err != nil {
		return
	}
	buf.SetAvailable(transferred)
	e.lastWords = transferred
	if e.lastElapsed > 0 {
		e.lastHz = float64(transferred) / e.lastElapsed.Seconds()
	}
}

// MeasuredFrequency reports read_count / elapsed for the most recently
// completed transfer.
func (e *DMAEngine) MeasuredFrequency() float64 {
	return e.lastHz
}

// clockDivider computes the hardware divider for a requested sample
// rate, clamped to a minimum of 1.0 (the hardware cannot run faster than
// its own clock).
func clockDivider(maxHwFreq float64, frequencyHz uint32) float64 {
	if frequencyHz == 0 {
		return 1.0
	}
	d := maxHwFreq / float64(frequencyHz)
	if d < 1.0 {
		d = 1.0
	}
	return d
}

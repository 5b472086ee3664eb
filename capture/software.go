package capture

import (
	"sync/atomic"

	"github.com/jbrzusto/sump-logic-analyzer/wire"
)

// SoftwareEngine is the portable capture variant: it paces itself with
// TimeSource.DelayMicros rather than any platform-specific timer or DMA
// channel. It satisfies Engine.
type SoftwareEngine struct {
	cancelled atomic.Bool
}

// NewSoftwareEngine returns a ready-to-use software-timed capture engine.
func NewSoftwareEngine() *SoftwareEngine {
	return &SoftwareEngine{}
}

// Cancel requests that any in-flight Capture finalize with the sentinel
// word. Safe to call from another goroutine (e.g. an interrupt handler
// stand-in).
func (e *SoftwareEngine) Cancel() {
	e.cancelled.Store(true)
}

func (e *SoftwareEngine) resetCancel() {
	e.cancelled.Store(false)
}

func (e *SoftwareEngine) isCancelled() bool {
	return e.cancelled.Load()
}

// Capture implements the full windowed-capture contract: rate check,
// trigger wait, windowing, post-trigger fill, and dump.
func (e *SoftwareEngine) Capture(ctx Context) {
	e.resetCancel()
	p := ctx.Params()

	if UnsupportedRate(p.FrequencyHz, p.MaxSupportedHz) {
		emitSentinel(ctx)
		ctx.SetStatus(Stopped)
		return
	}

	if p.Continuous {
		e.runContinuous(ctx)
		return
	}

	triggerSample, hasTriggerSample, aborted := e.waitForTrigger(ctx)
	if aborted {
		emitSentinel(ctx)
		ctx.SetStatus(Stopped)
		return
	}
	ctx.SetStatus(Triggered)

	applyWindow(ctx)

	if hasTriggerSample {
		ctx.Buffer().Write(triggerSample)
	}

	if e.fillPostTrigger(ctx) {
		emitSentinel(ctx)
		ctx.SetStatus(Stopped)
		return
	}

	dump(ctx)
	ctx.SetStatus(Stopped)
}

// CaptureAll samples read_count words into the buffer without dumping,
// for speed-measurement harnesses.
func (e *SoftwareEngine) CaptureAll(ctx Context) {
	e.resetCancel()
	p := ctx.Params()
	buf := ctx.Buffer()
	paced := p.FrequencyHz < p.MaxSupportedHz
	for buf.Available() < p.ReadCount {
		if e.isCancelled() {
			return
		}
		buf.Write(ctx.PinReader().ReadAll())
		if paced {
			ctx.Clock().DelayMicros(p.DelayTimeUs)
		}
	}
}

// waitForTrigger samples until the trigger condition is met, writing each
// pre-trigger sample to the ring buffer. The sample that satisfies the
// trigger is withheld from the buffer — it is the first post-trigger
// sample and is written only after the window policy has been applied.
func (e *SoftwareEngine) waitForTrigger(ctx Context) (triggerSample uint32, has bool, aborted bool) {
	p := ctx.Params()
	if p.TriggerMask == 0 {
		return 0, false, false
	}
	paced := p.FrequencyHz < p.MaxSupportedHz
	buf := ctx.Buffer()
	reader := ctx.PinReader()
	for {
		if e.isCancelled() {
			return 0, false, true
		}
		sample := reader.ReadAll()
		if (sample^p.TriggerValues)&p.TriggerMask == 0 {
			return sample, true, false
		}
		buf.Write(sample)
		if paced {
			ctx.Clock().DelayMicros(p.DelayTimeUs)
		}
	}
}

// fillPostTrigger records samples until the buffer reaches read_count.
// Returns true if the capture was aborted mid-fill.
func (e *SoftwareEngine) fillPostTrigger(ctx Context) (aborted bool) {
	p := ctx.Params()
	buf := ctx.Buffer()
	reader := ctx.PinReader()
	paced := p.FrequencyHz < p.MaxSupportedHz
	for buf.Available() < p.ReadCount {
		if e.isCancelled() {
			return true
		}
		buf.Write(reader.ReadAll())
		if paced {
			ctx.Clock().DelayMicros(p.DelayTimeUs)
		}
	}
	return false
}

// runContinuous streams samples directly to the transport, bypassing the
// ring buffer entirely, until status leaves TRIGGERED (a host RESET) or
// the engine is cancelled.
func (e *SoftwareEngine) runContinuous(ctx Context) {
	p := ctx.Params()
	reader := ctx.PinReader()
	paced := p.FrequencyHz < p.MaxSupportedHz

	if p.TriggerMask != 0 {
		for {
			if e.isCancelled() {
				emitSentinel(ctx)
				ctx.SetStatus(Stopped)
				return
			}
			sample := reader.ReadAll()
			writeSampleDirect(ctx, sample)
			if (sample^p.TriggerValues)&p.TriggerMask == 0 {
				break
			}
			if paced {
				ctx.Clock().DelayMicros(p.DelayTimeUs)
			}
		}
	}
	ctx.SetStatus(Triggered)

	for ctx.Params().Status == Triggered {
		if e.isCancelled() {
			emitSentinel(ctx)
			ctx.SetStatus(Stopped)
			return
		}
		sample := reader.ReadAll()
		writeSampleDirect(ctx, sample)
		if paced {
			ctx.Clock().DelayMicros(p.DelayTimeUs)
		}
	}
	ctx.Transport().Flush()
}

func writeSampleDirect(ctx Context, sample uint32) {
	ctx.Transport().WriteBytes(wire.PutU32(nil, sample))
}

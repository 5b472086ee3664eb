// Package capture drives the sampling loop(s) that turn GPIO reads into a
// windowed dump on the transport. Two engines satisfy the same contract: a
// portable software-timed loop (software.go) and a DMA-fed hardware loop
// (dma.go). Both apply the same unsupported-rate check, sentinel word, and
// batched dump; trigger detection and pre/post-trigger windowing exist only
// in the software engine, and the DMA engine paces itself with a hardware
// clock divider instead of a per-sample delay.
package capture

import (
	"github.com/jbrzusto/sump-logic-analyzer/ring"
	"github.com/jbrzusto/sump-logic-analyzer/transport"
	"github.com/jbrzusto/sump-logic-analyzer/wire"
)

// Status is the analyzer's current lifecycle state.
type Status int

const (
	Stopped Status = iota
	Armed
	Triggered
)

func (s Status) String() string {
	switch s {
	case Stopped:
		return "STOPPED"
	case Armed:
		return "ARMED"
	case Triggered:
		return "TRIGGERED"
	default:
		return "UNKNOWN"
	}
}

// Parameters holds every capture-configuring value the SUMP protocol can
// set, plus the init-time constants the protocol engine never changes.
type Parameters struct {
	// init-time, not changed by the protocol engine (the facade's
	// SetDescription can still replace DeviceDesc)
	StartPin        int
	PinCount        int
	WordBits        int // 8, 16, or 32
	MaxCaptureSize  int
	MaxSupportedHz  uint32
	DeviceID        string
	DeviceDesc      string
	FirmwareVersion string

	// protocol-mutable
	ReadCount     int
	DelayCount    int
	FrequencyHz   uint32
	DelayTimeUs   uint32
	TriggerMask   uint32
	TriggerValues uint32
	Continuous    bool
	Status        Status
}

// WordMask returns the bitmask covering a sample word of the given width.
func WordMask(wordBits int) uint32 {
	if wordBits >= 32 {
		return 0xFFFFFFFF
	}
	return (uint32(1) << uint(wordBits)) - 1
}

// DelayMicros derives the inter-sample delay from a target sample rate.
// The source has two historical revisions of this formula, one with a -1
// subtract and one without; both are approximations that ignore loop
// overhead. This implementation uses the plain divide (see DESIGN.md).
func DelayMicros(frequencyHz uint32) uint32 {
	if frequencyHz == 0 {
		return 0
	}
	return 1_000_000 / frequencyHz
}

// UnsupportedRate reports whether frequencyHz exceeds what the engine can
// honor, per the 1.5x headroom rule.
func UnsupportedRate(frequencyHz, maxSupportedHz uint32) bool {
	return float64(frequencyHz) > 1.5*float64(maxSupportedHz)
}

// PinReader is the external GPIO sampling primitive. Implementations
// read the GPIO input register and right-shift by the configured start
// pin; there is no error path.
type PinReader interface {
	ReadAll() uint32
}

// TimeSource is the external monotonic clock with a busy-wait micro-delay.
type TimeSource interface {
	DelayMicros(us uint32)
}

// Context is the borrowed reference a capture engine is handed on every
// Capture/CaptureAll call: parameters, buffer, pin reader, transport,
// clock, and status transitions all flow through it. It is implemented by the analyzer facade; no
// capture engine holds a cyclic reference back to the facade type itself.
type Context interface {
	Params() *Parameters
	Buffer() *ring.Buffer
	PinReader() PinReader
	Transport() transport.Stream
	Clock() TimeSource
	SetStatus(Status)
}

// Engine is the capability every capture variant implements.
type Engine interface {
	// Capture blocks until a complete windowed capture has been produced
	// and dumped, or the configured rate is unsupportable.
	Capture(ctx Context)
	// Cancel asynchronously aborts an in-flight Capture; the engine
	// finalizes shortly afterward by emitting the sentinel zero word.
	Cancel()
	// CaptureAll samples into the buffer without dumping, for speed
	// measurement in test/benchmark harnesses.
	CaptureAll(ctx Context)
}

const dumpBatchWords = 256 // 1 KiB per batch write

// emitSentinel writes the single zero-word "no data" marker used for
// unsupported rates and aborted captures, then flushes.
func emitSentinel(ctx Context) {
	ctx.Transport().WriteBytes(wire.PutU32(nil, 0))
	ctx.Transport().Flush()
}

// dump drains the ring buffer and streams each sample as a 32-bit
// big-endian word in batches, finishing with a flush.
func dump(ctx Context) {
	buf := ctx.Buffer()
	batch := make([]uint32, dumpBatchWords)
	out := make([]byte, 0, dumpBatchWords*4)
	for buf.Available() > 0 {
		n := buf.ReadBulk(batch, dumpBatchWords)
		out = out[:0]
		for i := 0; i < n; i++ {
			out = wire.PutU32(out, batch[i])
		}
		ctx.Transport().WriteBytes(out)
	}
	ctx.Transport().Flush()
}

// applyWindow realizes the pre/post-trigger split: keep = read_count -
// delay_count is the number of pre-trigger samples the host wants
// retained.
func applyWindow(ctx Context) {
	p := ctx.Params()
	buf := ctx.Buffer()
	keep := p.ReadCount - p.DelayCount
	switch {
	case keep > 0:
		if avail := buf.Available(); avail > keep {
			buf.ClearK(avail - keep)
		}
	case keep < 0:
		buf.SetIgnoreCount(-keep)
	default:
		buf.Clear()
	}
}

// Package analyzer is the facade the rest of the firmware wires against:
// it owns the capture parameters, the ring buffer, the capture engine
// capability, the pin reader capability, and an optional observer, and
// mediates between the SUMP protocol engine and the capture engine.
package analyzer

import (
	"github.com/jbrzusto/sump-logic-analyzer/capture"
	"github.com/jbrzusto/sump-logic-analyzer/ring"
	"github.com/jbrzusto/sump-logic-analyzer/transport"
)

// Event identifies an advisory notification the facade sends to an
// Observer. The protocol and capture engines never depend on these being
// delivered.
type Event int

const (
	EventReset Event = iota
	EventStatus
	EventFrequencyChanged
	EventTriggerChanged
	EventReadDelayChanged
	EventFlagsChanged
	EventXON
	EventXOFF
)

// Observer receives advisory events from the facade. A nil Observer is
// valid; events are simply dropped.
type Observer interface {
	OnEvent(ev Event, a *Analyzer)
}

// BeginParams are the init-time constants supplied to Begin; they mirror
// the platform glue's job of setting start_pin, pin_count, etc. before
// the protocol engine starts driving the facade.
type BeginParams struct {
	StartPin        int
	PinCount        int
	WordBits        int
	MaxCaptureSize  int
	MaxSupportedHz  uint32
	DeviceID        string
	DeviceDesc      string
	FirmwareVersion string
}

// Analyzer is the facade tying the ring buffer, capture engine, and
// external collaborators together behind the capture.Context it exposes.
type Analyzer struct {
	params    capture.Parameters
	buffer    *ring.Buffer
	engine    capture.Engine
	reader    capture.PinReader
	transport transport.Stream
	clock     capture.TimeSource
	observer  Observer
}

// New constructs a facade around the given capability set. engine, reader,
// xport and clock are the external collaborators; none of them are owned
// elsewhere.
func New(engine capture.Engine, reader capture.PinReader, xport transport.Stream, clock capture.TimeSource, observer Observer) *Analyzer {
	return &Analyzer{
		engine:    engine,
		reader:    reader,
		transport: xport,
		clock:     clock,
		observer:  observer,
	}
}

// Begin initializes the capture parameters and allocates the ring buffer.
// It is the only place StartPin/PinCount/WordBits/MaxCaptureSize are set;
// the protocol engine never changes them.
func (a *Analyzer) Begin(p BeginParams) {
	wordBits := p.WordBits
	if wordBits != 8 && wordBits != 16 && wordBits != 32 {
		wordBits = 32
	}
	a.params = capture.Parameters{
		StartPin:        p.StartPin,
		PinCount:        p.PinCount,
		WordBits:        wordBits,
		MaxCaptureSize:  p.MaxCaptureSize,
		MaxSupportedHz:  p.MaxSupportedHz,
		DeviceID:        p.DeviceID,
		DeviceDesc:      p.DeviceDesc,
		FirmwareVersion: p.FirmwareVersion,
		Status:          capture.Stopped,
	}
	a.buffer = ring.New(p.MaxCaptureSize)
}

// Status returns the current lifecycle state.
func (a *Analyzer) Status() capture.Status {
	return a.params.Status
}

// Params returns the live parameter block for callers that want to
// configure the analyzer without going through the wire protocol.
func (a *Analyzer) Params() *capture.Parameters {
	return &a.params
}

// SetDescription overrides the device description string reported in
// GET_METADATA, for glue code that wants to brand the device at runtime.
func (a *Analyzer) SetDescription(desc string) {
	a.params.DeviceDesc = desc
}

func (a *Analyzer) notify(ev Event) {
	if a.observer != nil {
		a.observer.OnEvent(ev, a)
	}
}

// Notify lets an external driver emit an advisory event for a condition
// the facade itself does not observe, such as the protocol engine's
// XON/XOFF handling.
func (a *Analyzer) Notify(ev Event) {
	a.notify(ev)
}

// --- capture.Context implementation -------------------------------------
//
// Params() above already has the signature capture.Context wants; the
// facade's own "configure without the wire protocol" accessor and the
// capture engine's borrowed-context accessor are the same method.

func (a *Analyzer) Buffer() *ring.Buffer         { return a.buffer }
func (a *Analyzer) PinReader() capture.PinReader { return a.reader }
func (a *Analyzer) Transport() transport.Stream  { return a.transport }
func (a *Analyzer) Clock() capture.TimeSource    { return a.clock }

func (a *Analyzer) SetStatus(s capture.Status) {
	a.params.Status = s
	a.notify(EventStatus)
}

var _ capture.Context = (*Analyzer)(nil)

// --- operations the protocol engine drives -------------------------------

// Reset stops any configured continuous streaming, clears the buffer, and
// returns the analyzer to STOPPED. Debouncing repeated RESET bytes is the
// protocol engine's job; Reset itself is idempotent.
func (a *Analyzer) Reset() {
	a.params.Continuous = false
	a.buffer.Clear()
	a.SetStatus(capture.Stopped)
	a.notify(EventReset)
}

// Arm clears the buffer, marks ARMED, and invokes the capture engine.
// Capture is synchronous: Arm does not return until the engine has
// produced and dumped a result (or been cancelled).
func (a *Analyzer) Arm() {
	a.buffer.Clear()
	a.SetStatus(capture.Armed)
	a.engine.Capture(a)
}

// Cancel asynchronously aborts an in-flight Arm().
func (a *Analyzer) Cancel() {
	a.engine.Cancel()
}

// CaptureAll runs the engine's test-mode sampling loop (no dump), for
// speed-measurement callers.
func (a *Analyzer) CaptureAll() {
	a.engine.CaptureAll(a)
}

func clampCaptureSize(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// SetDivider implements SUMP opcode 0x80: frequency = 100MHz / (divider+1),
// with delay_time_us re-derived from the new frequency.
func (a *Analyzer) SetDivider(divider uint32) {
	a.params.FrequencyHz = 100_000_000 / (divider + 1)
	a.params.DelayTimeUs = capture.DelayMicros(a.params.FrequencyHz)
	a.notify(EventFrequencyChanged)
}

// SetReadDelayCount implements SUMP opcode 0x81. first/second are the raw
// 16-bit wire fields; each decodes to (n+1)*4 samples, clamped to
// max_capture_size.
func (a *Analyzer) SetReadDelayCount(first, second uint16) {
	read := (int(first) + 1) * 4
	delay := (int(second) + 1) * 4
	a.params.ReadCount = clampCaptureSize(read, a.params.MaxCaptureSize)
	a.params.DelayCount = clampCaptureSize(delay, a.params.MaxCaptureSize)
	a.notify(EventReadDelayChanged)
}

// SetFlags implements SUMP opcode 0x82: only the continuous-mode bit
// (0x40 in the second byte) is acted on; every other bit is accepted and
// ignored, including the advertised-but-unimplemented RLE bit.
func (a *Analyzer) SetFlags(arg [4]byte) {
	a.params.Continuous = arg[1]&0x40 != 0
	a.notify(EventFlagsChanged)
}

// SetTriggerMask implements SUMP opcode 0xC0, masked to the configured
// word width.
func (a *Analyzer) SetTriggerMask(v uint32) {
	a.params.TriggerMask = v & capture.WordMask(a.params.WordBits)
	a.notify(EventTriggerChanged)
}

// SetTriggerValues implements SUMP opcode 0xC1, masked to the configured
// word width.
func (a *Analyzer) SetTriggerValues(v uint32) {
	a.params.TriggerValues = v & capture.WordMask(a.params.WordBits)
	a.notify(EventTriggerChanged)
}

// DeviceID returns the configured device id string. The protocol engine
// answers opcode 0x02 with its own fixed "1ALS" reply and does not read
// this value.
func (a *Analyzer) DeviceID() string {
	return a.params.DeviceID
}

package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jbrzusto/sump-logic-analyzer/capture"
	"github.com/jbrzusto/sump-logic-analyzer/transport"
)

type nopEngine struct{ captured, cancelled, capturedAll int }

func (e *nopEngine) Capture(ctx capture.Context)    { e.captured++ }
func (e *nopEngine) Cancel()                        { e.cancelled++ }
func (e *nopEngine) CaptureAll(ctx capture.Context) { e.capturedAll++ }

type constReader struct{ v uint32 }

func (r constReader) ReadAll() uint32 { return r.v }

type noopClock struct{}

func (noopClock) DelayMicros(uint32) {}

type discardTransport struct{}

func (discardTransport) ReadByte() (byte, error)          { return 0, nil }
func (discardTransport) ReadExact(n int) ([]byte, error)  { return make([]byte, n), nil }
func (discardTransport) BytesAvailable() int              { return 0 }
func (discardTransport) WriteBytes(p []byte) (int, error) { return len(p), nil }
func (discardTransport) Flush() error                     { return nil }
func (discardTransport) SetTimeoutMs(uint32)              {}

var _ transport.Stream = discardTransport{}

func newTestAnalyzer() (*Analyzer, *nopEngine) {
	eng := &nopEngine{}
	a := New(eng, constReader{v: 1}, discardTransport{}, noopClock{}, nil)
	a.Begin(BeginParams{
		StartPin:       0,
		PinCount:       8,
		WordBits:       8,
		MaxCaptureSize: 1024,
		MaxSupportedHz: 1_000_000,
		DeviceID:       "1ALS",
	})
	return a, eng
}

func TestBeginSetsDefaults(t *testing.T) {
	a, _ := newTestAnalyzer()
	require.Equal(t, capture.Stopped, a.Status())
	require.Equal(t, 1024, a.Params().MaxCaptureSize)
	require.Equal(t, "1ALS", a.DeviceID())
}

func TestSetDivider(t *testing.T) {
	a, _ := newTestAnalyzer()
	a.SetDivider(99) // 100MHz / 100 = 1MHz
	require.Equal(t, uint32(1_000_000), a.Params().FrequencyHz)
	require.Equal(t, capture.DelayMicros(1_000_000), a.Params().DelayTimeUs)
}

func TestSetReadDelayCountClampsToMaxCaptureSize(t *testing.T) {
	a, _ := newTestAnalyzer()
	a.SetReadDelayCount(0xFFFF, 0xFFFF)
	require.Equal(t, 1024, a.Params().ReadCount)
	require.Equal(t, 1024, a.Params().DelayCount)
}

func TestSetReadDelayCountWireExample(t *testing.T) {
	// 81 00 FF 00 FF -> each field (n+1)*4 = 256*4 = 1024
	a, _ := newTestAnalyzer()
	a.SetReadDelayCount(0x00FF, 0x00FF)
	require.Equal(t, 1024, a.Params().ReadCount)
	require.Equal(t, 1024, a.Params().DelayCount)
}

func TestSetFlagsContinuousBit(t *testing.T) {
	a, _ := newTestAnalyzer()
	a.SetFlags([4]byte{0, 0x40, 0, 0})
	require.True(t, a.Params().Continuous)
	a.SetFlags([4]byte{0, 0x00, 0, 0})
	require.False(t, a.Params().Continuous)
}

func TestTriggerMaskMaskedToWordWidth(t *testing.T) {
	a, _ := newTestAnalyzer() // WordBits=8
	a.SetTriggerMask(0xFFFFFFFF)
	require.Equal(t, uint32(0xFF), a.Params().TriggerMask)
	a.SetTriggerValues(0xFFFFFFFF)
	require.Equal(t, uint32(0xFF), a.Params().TriggerValues)
}

func TestArmInvokesEngine(t *testing.T) {
	a, eng := newTestAnalyzer()
	a.Arm()
	require.Equal(t, 1, eng.captured)
}

func TestCancelDelegatesToEngine(t *testing.T) {
	a, eng := newTestAnalyzer()
	a.Cancel()
	require.Equal(t, 1, eng.cancelled)
}

type spyObserver struct{ events []Event }

func (s *spyObserver) OnEvent(ev Event, a *Analyzer) { s.events = append(s.events, ev) }

func TestNotifyForwardsToObserver(t *testing.T) {
	eng := &nopEngine{}
	obs := &spyObserver{}
	a := New(eng, constReader{v: 1}, discardTransport{}, noopClock{}, obs)
	a.Notify(EventXON)
	a.Notify(EventXOFF)
	require.Equal(t, []Event{EventXON, EventXOFF}, obs.events)
}

func TestResetClearsBufferAndStops(t *testing.T) {
	a, _ := newTestAnalyzer()
	a.Buffer().Write(42)
	a.params.Continuous = true
	a.Reset()
	require.Equal(t, 0, a.Buffer().Available())
	require.False(t, a.Params().Continuous)
	require.Equal(t, capture.Stopped, a.Status())
}

package capture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jbrzusto/sump-logic-analyzer/ring"
	"github.com/jbrzusto/sump-logic-analyzer/transport"
)

// fakeReader replays a fixed cycle of sample words, wrapping around.
type fakeReader struct {
	cycle []uint32
	pos   int
}

func (f *fakeReader) ReadAll() uint32 {
	v := f.cycle[f.pos%len(f.cycle)]
	f.pos++
	return v
}

// fakeClock never actually sleeps; it just counts delay calls.
type fakeClock struct{ delays int }

func (f *fakeClock) DelayMicros(us uint32) { f.delays++ }

// memTransport is an in-memory transport.Stream for observing dumped
// bytes without a real byte stream.
type memTransport struct {
	out []byte
}

func (m *memTransport) ReadByte() (byte, error)         { return 0, nil }
func (m *memTransport) ReadExact(n int) ([]byte, error) { return make([]byte, n), nil }
func (m *memTransport) BytesAvailable() int             { return 0 }
func (m *memTransport) WriteBytes(p []byte) (int, error) {
	m.out = append(m.out, p...)
	return len(p), nil
}
func (m *memTransport) Flush() error        { return nil }
func (m *memTransport) SetTimeoutMs(uint32) {}

var _ transport.Stream = (*memTransport)(nil)

type fakeCtx struct {
	params    *Parameters
	buf       *ring.Buffer
	reader    PinReader
	transport *memTransport
	clock     TimeSource
}

func (c *fakeCtx) Params() *Parameters         { return c.params }
func (c *fakeCtx) Buffer() *ring.Buffer        { return c.buf }
func (c *fakeCtx) PinReader() PinReader        { return c.reader }
func (c *fakeCtx) Transport() transport.Stream { return c.transport }
func (c *fakeCtx) Clock() TimeSource           { return c.clock }
func (c *fakeCtx) SetStatus(s Status)          { c.params.Status = s }

func newFakeCtx(p *Parameters, cycle []uint32) *fakeCtx {
	return &fakeCtx{
		params:    p,
		buf:       ring.New(p.MaxCaptureSize),
		reader:    &fakeReader{cycle: cycle},
		transport: &memTransport{},
		clock:     &fakeClock{},
	}
}

func wordsFromDump(out []byte) []uint32 {
	words := make([]uint32, len(out)/4)
	for i := range words {
		b := out[i*4 : i*4+4]
		words[i] = uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	}
	return words
}

func TestSoftwareEngineTriggerWindow(t *testing.T) {
	// 16 pre/post samples split around a trigger on word value 0x0A
	// masked to the low 4 bits; the triggering sample itself counts as
	// the first post-trigger sample, not pre-trigger history.
	cycle := make([]uint32, 16)
	for i := range cycle {
		cycle[i] = uint32(i)
	}
	p := &Parameters{
		PinCount:       4,
		MaxCaptureSize: 1024,
		TriggerMask:    0x0F,
		TriggerValues:  0x0A,
		ReadCount:      16,
		DelayCount:     8,
		FrequencyHz:    1_000_000,
		MaxSupportedHz: 1_000_000,
	}
	ctx := newFakeCtx(p, cycle)
	NewSoftwareEngine().Capture(ctx)

	words := wordsFromDump(ctx.transport.out)
	require.Len(t, words, 16)
	require.Equal(t, uint32(0x0A), words[8])
	require.Equal(t, []uint32{2, 3, 4, 5, 6, 7, 8, 9}, words[:8])
	require.Equal(t, Stopped, p.Status)
}

func TestSoftwareEngineUnsupportedRate(t *testing.T) {
	p := &Parameters{
		MaxCaptureSize: 16,
		ReadCount:      16,
		FrequencyHz:    2_000_000,
		MaxSupportedHz: 1_000_000,
	}
	ctx := newFakeCtx(p, []uint32{0})
	NewSoftwareEngine().Capture(ctx)
	require.Equal(t, []byte{0, 0, 0, 0}, ctx.transport.out)
	require.Equal(t, Stopped, p.Status)
}

func TestSoftwareEngineNoTriggerMaskArmsImmediately(t *testing.T) {
	cycle := []uint32{7, 8, 9, 10}
	p := &Parameters{
		MaxCaptureSize: 16,
		ReadCount:      4,
		DelayCount:     0,
		FrequencyHz:    1_000_000,
		MaxSupportedHz: 1_000_000,
	}
	ctx := newFakeCtx(p, cycle)
	NewSoftwareEngine().Capture(ctx)
	words := wordsFromDump(ctx.transport.out)
	require.Equal(t, []uint32{7, 8, 9, 10}, words)
}

func TestSoftwareEngineExactSampleCount(t *testing.T) {
	cycle := make([]uint32, 300)
	for i := range cycle {
		cycle[i] = uint32(i)
	}
	p := &Parameters{
		MaxCaptureSize: 1024,
		ReadCount:      1024,
		DelayCount:     1024,
		FrequencyHz:    1_000_000,
		MaxSupportedHz: 1_000_000,
	}
	ctx := newFakeCtx(p, cycle)
	NewSoftwareEngine().Capture(ctx)
	require.Len(t, ctx.transport.out, 4*1024)
}

func TestSoftwareEngineCancelEmitsSentinel(t *testing.T) {
	p := &Parameters{
		MaxCaptureSize: 16,
		ReadCount:      16,
		TriggerMask:    0xFF, // never matches cycle below, so it blocks in the wait loop
		TriggerValues:  0xAB,
		FrequencyHz:    1_000_000,
		MaxSupportedHz: 1_000_000,
	}
	ctx := newFakeCtx(p, []uint32{1, 2, 3})
	eng := NewSoftwareEngine()
	go func() {
		time.Sleep(2 * time.Millisecond)
		eng.Cancel()
	}()
	eng.Capture(ctx)
	require.Equal(t, []byte{0, 0, 0, 0}, ctx.transport.out)
	require.Equal(t, Stopped, p.Status)
}

func TestSoftwareEngineContinuousStreamsDirectly(t *testing.T) {
	p := &Parameters{
		MaxCaptureSize: 16,
		Continuous:     true,
		FrequencyHz:    1_000_000,
		MaxSupportedHz: 1_000_000,
	}
	ctx := newFakeCtx(p, []uint32{0xAA, 0xBB, 0xCC})
	eng := NewSoftwareEngine()
	go func() {
		time.Sleep(2 * time.Millisecond)
		eng.Cancel()
	}()
	eng.Capture(ctx)

	require.Equal(t, Stopped, p.Status)
	require.Equal(t, 0, ctx.buf.Available(), "continuous mode must never write to the ring buffer")
	require.GreaterOrEqual(t, len(ctx.transport.out), 8, "expected multiple directly-streamed samples plus the sentinel")
	require.Equal(t, []byte{0, 0, 0, 0}, ctx.transport.out[len(ctx.transport.out)-4:], "stream ends with the cancellation sentinel")
}

func TestDelayMicros(t *testing.T) {
	require.Equal(t, uint32(1), DelayMicros(1_000_000))
	require.Equal(t, uint32(10), DelayMicros(100_000))
	require.Equal(t, uint32(0), DelayMicros(0))
}

func TestUnsupportedRate(t *testing.T) {
	require.False(t, UnsupportedRate(1_000_000, 1_000_000))
	require.False(t, UnsupportedRate(1_500_000, 1_000_000))
	require.True(t, UnsupportedRate(1_500_001, 1_000_000))
}

func TestWordMask(t *testing.T) {
	require.Equal(t, uint32(0xFF), WordMask(8))
	require.Equal(t, uint32(0xFFFF), WordMask(16))
	require.Equal(t, uint32(0xFFFFFFFF), WordMask(32))
}

func TestCalibrateReturnsPositiveRate(t *testing.T) {
	hz := Calibrate(&fakeReader{cycle: []uint32{1}}, 5*time.Millisecond)
	require.Positive(t, hz)
}

// Package serialtransport glues a real serial port into transport.Stream
// using go.bug.st/serial, the same library the tinygo toolchain uses for
// flashing and monitoring a device over exactly this kind of host<->MCU
// byte stream.
package serialtransport

import (
	"bufio"
	"io"
	"time"

	"go.bug.st/serial"

	"github.com/jbrzusto/sump-logic-analyzer/transport"
)

// Transport wraps a serial.Port as a transport.Stream.
type Transport struct {
	port    serial.Port
	r       *bufio.Reader
	timeout time.Duration
}

// pollTimeout is how long BytesAvailable blocks while probing for a
// byte that has not yet arrived; it is restored to the configured read
// timeout immediately afterwards.
const pollTimeout = time.Millisecond

// Open opens device at the given baud rate and returns a ready-to-use
// transport.Stream, with a generous default read timeout around long
// dumps so partial writes do not spuriously fail.
func Open(device string, baud int) (*Transport, error) {
	mode := &serial.Mode{BaudRate: baud}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, err
	}
	timeout := 10 * time.Second
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, err
	}
	return &Transport{port: port, r: bufio.NewReaderSize(port, 4096), timeout: timeout}, nil
}

// ReadByte returns the next byte, blocking up to the configured timeout.
func (t *Transport) ReadByte() (byte, error) {
	return t.r.ReadByte()
}

// ReadExact reads exactly n bytes or returns the timeout error.
func (t *Transport) ReadExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(t.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// BytesAvailable reports how many bytes are ready to read without
// blocking for the configured read timeout. bufio.Reader only knows
// about bytes a prior Read has already pulled off the port, so an
// unbuffered probe would always report zero the very first time around
// the command loop; to avoid that, BytesAvailable briefly switches the
// port to a short poll timeout and attempts a Peek, which forces a real
// port Read into the bufio buffer if anything has arrived. The
// configured timeout is restored before returning.
func (t *Transport) BytesAvailable() int {
	if n := t.r.Buffered(); n > 0 {
		return n
	}
	t.port.SetReadTimeout(pollTimeout)
	_, _ = t.r.Peek(1)
	t.port.SetReadTimeout(t.timeout)
	return t.r.Buffered()
}

// WriteBytes writes buf in full.
func (t *Transport) WriteBytes(buf []byte) (int, error) {
	return t.port.Write(buf)
}

// Flush drains the OS output buffer.
func (t *Transport) Flush() error {
	return t.port.Drain()
}

// SetTimeoutMs reconfigures the read timeout.
func (t *Transport) SetTimeoutMs(ms uint32) {
	t.timeout = time.Duration(ms) * time.Millisecond
	t.port.SetReadTimeout(t.timeout)
}

// Close releases the underlying port.
func (t *Transport) Close() error {
	return t.port.Close()
}

var _ transport.Stream = (*Transport)(nil)

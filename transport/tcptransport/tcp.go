// Package tcptransport glues a TCP connection into transport.Stream,
// using only the standard library's net package — sigrok/PulseView can
// speak SUMP over a raw TCP socket as readily as a serial port, and this
// needs nothing beyond net.Conn, so it stays stdlib rather than reaching
// for a dependency that would have no other home.
package tcptransport

import (
	"bufio"
	"io"
	"net"
	"time"

	"github.com/jbrzusto/sump-logic-analyzer/transport"
)

// Transport wraps a net.Conn as a transport.Stream.
type Transport struct {
	conn    net.Conn
	r       *bufio.Reader
	timeout time.Duration
}

// Dial connects to addr (host:port) and returns a ready-to-use
// transport.Stream.
func Dial(addr string) (*Transport, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return newTransport(conn), nil
}

// Accept wraps an already-accepted connection, for a cmd/ entrypoint that
// listens rather than dials.
func Accept(conn net.Conn) *Transport {
	return newTransport(conn)
}

func newTransport(conn net.Conn) *Transport {
	t := &Transport{conn: conn, r: bufio.NewReaderSize(conn, 4096), timeout: 10 * time.Second}
	t.conn.SetReadDeadline(time.Now().Add(t.timeout))
	return t
}

func (t *Transport) ReadByte() (byte, error) {
	t.conn.SetReadDeadline(time.Now().Add(t.timeout))
	return t.r.ReadByte()
}

func (t *Transport) ReadExact(n int) ([]byte, error) {
	t.conn.SetReadDeadline(time.Now().Add(t.timeout))
	buf := make([]byte, n)
	if _, err := io.ReadFull(t.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (t *Transport) BytesAvailable() int {
	if n := t.r.Buffered(); n > 0 {
		return n
	}
	// Buffered only counts bytes a prior read pulled off the socket, so
	// probe with a short deadline to pull in anything that has arrived.
	t.conn.SetReadDeadline(time.Now().Add(time.Millisecond))
	_, _ = t.r.Peek(1)
	t.conn.SetReadDeadline(time.Now().Add(t.timeout))
	return t.r.Buffered()
}

func (t *Transport) WriteBytes(buf []byte) (int, error) {
	return t.conn.Write(buf)
}

func (t *Transport) Flush() error {
	return nil
}

func (t *Transport) SetTimeoutMs(ms uint32) {
	t.timeout = time.Duration(ms) * time.Millisecond
}

func (t *Transport) Close() error {
	return t.conn.Close()
}

var _ transport.Stream = (*Transport)(nil)

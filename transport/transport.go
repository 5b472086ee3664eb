// Package transport defines the byte-stream contract the SUMP protocol and
// capture engines ride on. The transport itself — serial, USB-CDC, TCP — is
// an external collaborator; this package only states the interface the
// core depends on, plus thin glue implementations under serialtransport/
// and tcptransport/ for wiring a real stream into cmd/ entrypoints.
package transport

// Stream is a full-duplex byte stream with the primitives the protocol
// engine and capture dump loop need.
type Stream interface {
	// ReadByte blocks for at most the configured timeout and returns the
	// next byte, or an error if none arrived in time.
	ReadByte() (byte, error)
	// ReadExact reads exactly n bytes, or returns an error (and no bytes)
	// if fewer than n arrived before the timeout elapsed.
	ReadExact(n int) ([]byte, error)
	// BytesAvailable reports how many bytes can be read without blocking.
	BytesAvailable() int
	// WriteBytes writes buf in full, batching internally as needed.
	WriteBytes(buf []byte) (int, error)
	// Flush ensures any buffered output has been pushed to the wire.
	Flush() error
	// SetTimeoutMs configures the read timeout used by ReadByte/ReadExact.
	SetTimeoutMs(ms uint32)
}

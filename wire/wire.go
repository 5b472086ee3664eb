// Package wire converts between host byte order and the SUMP wire order.
//
// Every multi-byte quantity that crosses the SUMP control transport is
// big-endian. This is the only package in the module that is allowed to
// touch byte order; every other package calls through here.
package wire

// ToU16 encodes v as a 2-byte big-endian SUMP wire value.
func ToU16(v uint16) [2]byte {
	return [2]byte{byte(v >> 8), byte(v)}
}

// FromU16 decodes a 2-byte big-endian SUMP wire value.
func FromU16(b [2]byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

// ToU32 encodes v as a 4-byte big-endian SUMP wire value.
func ToU32(v uint32) [4]byte {
	return [4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// FromU32 decodes a 4-byte big-endian SUMP wire value.
func FromU32(b [4]byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// PutU32 appends the big-endian encoding of v to dst and returns the
// extended slice, mirroring the append-style helpers used for the
// metadata and dump writers.
func PutU32(dst []byte, v uint32) []byte {
	b := ToU32(v)
	return append(dst, b[:]...)
}

// PutU16 appends the big-endian encoding of v to dst.
func PutU16(dst []byte, v uint16) []byte {
	b := ToU16(v)
	return append(dst, b[:]...)
}

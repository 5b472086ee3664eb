package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestU16RoundTrip(t *testing.T) {
	cases := []uint16{0, 1, 0xFF, 0x100, 0x1234, 0xFFFF}
	for _, v := range cases {
		require.Equal(t, v, FromU16(ToU16(v)))
	}
}

func TestU32RoundTrip(t *testing.T) {
	cases := []uint32{0, 1, 0xFF, 0x100, 0x12345678, 0xFFFFFFFF}
	for _, v := range cases {
		require.Equal(t, v, FromU32(ToU32(v)))
	}
}

func TestU32WireOrder(t *testing.T) {
	// SET_DIVIDER carries its argument big-endian: 0x63 on the wire.
	require.Equal(t, [4]byte{0x00, 0x00, 0x00, 0x63}, ToU32(0x63))
}

func TestPutU32Append(t *testing.T) {
	dst := []byte{0xAA}
	dst = PutU32(dst, 0x01020304)
	require.Equal(t, []byte{0xAA, 0x01, 0x02, 0x03, 0x04}, dst)
}

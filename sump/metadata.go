package sump

import (
	"github.com/jbrzusto/sump-logic-analyzer/analyzer"
	"github.com/jbrzusto/sump-logic-analyzer/transport"
	"github.com/jbrzusto/sump-logic-analyzer/wire"
)

// Metadata record tags.
const (
	metaTagDeviceDesc   = 0x01
	metaTagFirmware     = 0x02
	metaTagNumProbes    = 0x20
	metaTagSampleMemory = 0x21
	metaTagMaxSampleHz  = 0x23
)

// protocolVersionBlob is the fixed trailer every metadata reply ends
// with.
var protocolVersionBlob = [3]byte{0x41, 0x02, 0x00}

// writeMetadata emits the GET_METADATA response: a sequence of
// tag-prefixed records followed by the fixed protocol-version blob, then
// flushes.
func writeMetadata(xport transport.Stream, a *analyzer.Analyzer) {
	p := a.Params()
	out := make([]byte, 0, 64)

	out = appendStringRecord(out, metaTagDeviceDesc, p.DeviceDesc)
	out = appendStringRecord(out, metaTagFirmware, p.FirmwareVersion)
	out = appendU32Record(out, metaTagNumProbes, uint32(p.PinCount))
	out = appendU32Record(out, metaTagSampleMemory, uint32(p.MaxCaptureSize))
	if p.MaxSupportedHz != 0 {
		out = appendU32Record(out, metaTagMaxSampleHz, p.MaxSupportedHz)
	}
	out = append(out, protocolVersionBlob[:]...)

	xport.WriteBytes(out)
	xport.Flush()
}

func appendStringRecord(dst []byte, tag byte, s string) []byte {
	dst = append(dst, tag)
	dst = append(dst, s...)
	return append(dst, 0)
}

func appendU32Record(dst []byte, tag byte, v uint32) []byte {
	dst = append(dst, tag)
	return wire.PutU32(dst, v)
}

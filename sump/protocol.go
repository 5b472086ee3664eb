// Package sump implements the SUMP command protocol engine: it parses
// inbound command bytes, dispatches to the analyzer facade, and replies
// to identify/metadata requests. It is a stateless dispatcher over the
// facade's parameter block — it never queues commands, consuming exactly
// one per ProcessCommand call.
package sump

import (
	"time"

	"github.com/jbrzusto/sump-logic-analyzer/analyzer"
	"github.com/jbrzusto/sump-logic-analyzer/transport"
	"github.com/jbrzusto/sump-logic-analyzer/wire"
)

// SUMP command opcodes. Opcodes with bit 0x80 set carry a 4-byte argument.
const (
	opReset             = 0x00
	opArm               = 0x01
	opID                = 0x02
	opGetMetadata       = 0x04
	opXON               = 0x11
	opXOFF              = 0x13
	opSetDivider        = 0x80
	opSetReadDelayCount = 0x81
	opSetFlags          = 0x82
	opTriggerMask       = 0xC0
	opTriggerValues     = 0xC1
	opTriggerConfig     = 0xC2
)

// deviceIDReply is "1ALS" — the fixed 4-byte SUMP identify string.
var deviceIDReply = [4]byte{'1', 'A', 'L', 'S'}

// resetDebounce is how long repeated RESET bytes are ignored for; SUMP
// hosts send five RESETs back to back on connect.
const resetDebounce = 500 * time.Millisecond

// Engine is the SUMP protocol dispatcher. It holds no parameters of its
// own beyond reset-debounce state; all capture configuration lives on
// the analyzer facade it drives.
type Engine struct {
	a         *analyzer.Analyzer
	xport     transport.Stream
	lastReset time.Time
	hasReset  bool
}

// New constructs a protocol engine bound to a facade and transport.
func New(a *analyzer.Analyzer, xport transport.Stream) *Engine {
	return &Engine{a: a, xport: xport}
}

// longCommandArgLen is the payload length following a long-form opcode.
const longCommandArgLen = 4

// isLongCommand reports whether opcode carries a 4-byte argument — the
// extended (0x80+) commands.
func isLongCommand(op byte) bool {
	return op&0x80 != 0
}

// ProcessCommand consumes and dispatches exactly one command if bytes are
// available; it is a no-op otherwise. The host is expected to call this
// repeatedly. Errors never bubble out: on a failed or short read the
// command is silently abandoned (no observer event is raised), letting
// the host keep driving.
func (e *Engine) ProcessCommand() {
	if e.xport.BytesAvailable() <= 0 {
		return
	}
	op, err := e.xport.ReadByte()
	if err != nil {
		return
	}

	var arg [longCommandArgLen]byte
	if isLongCommand(op) {
		raw, err := e.xport.ReadExact(longCommandArgLen)
		if err != nil {
			// Partial argument: abandon the command. The next bytes may
			// still mis-parse; this is an unavoidable property of a
			// framing-less byte stream.
			return
		}
		copy(arg[:], raw)
	}

	e.dispatch(op, arg)
}

func (e *Engine) dispatch(op byte, arg [4]byte) {
	switch op {
	case opReset:
		e.handleReset()
	case opArm:
		e.a.Arm()
	case opID:
		e.xport.WriteBytes(deviceIDReply[:])
		e.xport.Flush()
	case opGetMetadata:
		writeMetadata(e.xport, e.a)
	case opXON:
		e.a.Notify(analyzer.EventXON)
	case opXOFF:
		e.a.Notify(analyzer.EventXOFF)
	case opSetDivider:
		e.a.SetDivider(wire.FromU32(arg))
	case opSetReadDelayCount:
		first := wire.FromU16([2]byte{arg[0], arg[1]})
		second := wire.FromU16([2]byte{arg[2], arg[3]})
		e.a.SetReadDelayCount(first, second)
	case opSetFlags:
		e.a.SetFlags(arg)
	case opTriggerMask:
		e.a.SetTriggerMask(wire.FromU32(arg))
	case opTriggerValues:
		e.a.SetTriggerValues(wire.FromU32(arg))
	case opTriggerConfig:
		// read and ignored: stage/channel trigger configuration is not
		// modeled by this engine, which supports only a single trigger.
	default:
		// unknown opcode: silently ignored; no observer event is raised
		// for it. The stream is assumed to resynchronize on the next
		// known opcode.
	}
}

// handleReset debounces repeated RESET bytes within resetDebounce, since
// SUMP hosts send several in a row on connect.
func (e *Engine) handleReset() {
	now := time.Now()
	if e.hasReset && now.Sub(e.lastReset) < resetDebounce {
		e.lastReset = now
		return
	}
	e.hasReset = true
	e.lastReset = now
	e.a.Reset()
}

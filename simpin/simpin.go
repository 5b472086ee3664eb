// Package simpin provides a software PinReader for exercising the SUMP
// protocol engine without real GPIO hardware, the same standalone
// diagnostic role a direct register peek/poke plays for FPGA-backed
// hardware.
package simpin

import "time"

// Counter is a PinReader that returns a monotonically increasing counter,
// wrapping at 2^wordBits.
type Counter struct {
	mask uint32
	n    uint32
}

// NewCounter returns a Counter wrapping at the given sample word width.
func NewCounter(wordBits int) *Counter {
	mask := uint32(0xFFFFFFFF)
	if wordBits < 32 {
		mask = (uint32(1) << uint(wordBits)) - 1
	}
	return &Counter{mask: mask}
}

// ReadAll implements capture.PinReader.
func (c *Counter) ReadAll() uint32 {
	v := c.n & c.mask
	c.n++
	return v
}

// RealClock is a TimeSource backed by a real time.Sleep wait.
type RealClock struct{}

// DelayMicros sleeps for the given number of microseconds.
func (RealClock) DelayMicros(us uint32) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}

// Package gpiopin implements capture.PinReader by mmap()ing a GPIO input
// register out of /dev/mem: open /dev/mem, syscall.Mmap the containing
// page, and coerce the returned []byte into a pointer with
// unsafe.Pointer.
//
// This is a concrete implementation of the external pin-reader
// collaborator the capture engine depends on; the core never imports
// this package, only a cmd/ entrypoint targeting real hardware would.
package gpiopin

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"
)

// Reader reads a contiguous window of GPIO input bits starting at
// startPin, right-shifted into the low bits of the returned word.
type Reader struct {
	memfile  *os.File
	mmap     []byte
	reg      *uint32
	startPin uint
	mask     uint32
}

// Open mmaps the page containing the 4-byte GPIO input register at
// physical address regAddr (regAddr itself need not be page-aligned) and
// returns a Reader covering pinCount bits starting at startPin.
func Open(regAddr int64, startPin, pinCount int) (*Reader, error) {
	memfile, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("gpiopin: opening /dev/mem: %w", err)
	}

	pageSize := int64(os.Getpagesize())
	pageBase := regAddr &^ (pageSize - 1)
	offsetInPage := regAddr - pageBase

	m, err := syscall.Mmap(int(memfile.Fd()), pageBase, int(pageSize), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		memfile.Close()
		return nil, fmt.Errorf("gpiopin: mmap: %w", err)
	}

	mask := uint32(0xFFFFFFFF)
	if pinCount < 32 {
		mask = (uint32(1) << uint(pinCount)) - 1
	}

	return &Reader{
		memfile:  memfile,
		mmap:     m,
		reg:      (*uint32)(unsafe.Pointer(&m[offsetInPage])),
		startPin: uint(startPin),
		mask:     mask,
	}, nil
}

// ReadAll implements capture.PinReader: read the register, shift by
// startPin, and mask to the configured pin window.
func (r *Reader) ReadAll() uint32 {
	return (*r.reg >> r.startPin) & r.mask
}

// Close unmaps the register page and closes /dev/mem.
func (r *Reader) Close() error {
	if r.memfile == nil {
		return nil
	}
	_ = syscall.Munmap(r.mmap)
	err := r.memfile.Close()
	r.memfile = nil
	return err
}

// Package ring implements the fixed-capacity sample FIFO used to realize
// pre/post-trigger windowing during a capture.
//
// A Buffer never grows: once full, the oldest sample is evicted to make
// room for the newest (overwrite-oldest semantics). The capture engine is
// the sole producer and the dump loop the sole consumer; the two never
// run concurrently on the software path (see capture package), so Buffer
// keeps no internal locking, matching the single-threaded cooperative
// model the samples live in.
package ring

// Buffer is a capacity-N FIFO of sample words.
type Buffer struct {
	data        []uint32
	readPos     int
	writePos    int
	available   int
	ignoreCount int
}

// New allocates a ring buffer with the given capacity. A capacity of zero
// produces a buffer that silently discards every write and always reads
// back zero, the degraded-but-safe behavior for when backing storage
// could not be allocated.
func New(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{data: make([]uint32, capacity)}
}

// Size returns the buffer's fixed capacity.
func (b *Buffer) Size() int {
	return len(b.data)
}

// Available returns the number of samples currently stored.
func (b *Buffer) Available() int {
	return b.available
}

// DataPtr exposes the backing storage for a DMA producer to write into
// directly. The caller must not resize the returned slice.
func (b *Buffer) DataPtr() []uint32 {
	return b.data
}

// Write stores v, evicting the oldest sample if the buffer is already
// full. If a prior Clear(k) left an ignore count pending, the write is
// absorbed instead of stored.
func (b *Buffer) Write(v uint32) {
	n := len(b.data)
	if n == 0 {
		return
	}
	if b.ignoreCount > 0 {
		b.ignoreCount--
		return
	}
	b.data[b.writePos] = v
	b.writePos = (b.writePos + 1) % n
	if b.available < n {
		b.available++
	} else {
		b.readPos = (b.readPos + 1) % n
	}
}

// Read returns the oldest stored sample, or zero if the buffer is empty.
func (b *Buffer) Read() uint32 {
	if b.available == 0 {
		return 0
	}
	n := len(b.data)
	v := b.data[b.readPos]
	b.readPos = (b.readPos + 1) % n
	b.available--
	return v
}

// ReadBulk copies up to n samples into dst (which must have length >= n)
// in FIFO order, stopping early if the buffer drains. It returns the
// number of samples actually copied.
func (b *Buffer) ReadBulk(dst []uint32, n int) int {
	if n > len(dst) {
		n = len(dst)
	}
	count := 0
	for count < n && b.available > 0 {
		dst[count] = b.Read()
		count++
	}
	return count
}

// Clear resets the buffer to empty, discarding any pending ignore count.
func (b *Buffer) Clear() {
	b.available = 0
	b.writePos = 0
	b.readPos = 0
	b.ignoreCount = 0
}

// ClearK drops the oldest k samples. If k exceeds what is currently
// available, the shortfall is recorded as an ignore count so that the
// next (k - available) writes are silently absorbed: this is the
// mechanism that realizes "skip first K" pre-trigger windowing when the
// requested window is larger than what was captured before arming.
func (b *Buffer) ClearK(k int) {
	if k <= 0 {
		return
	}
	if k > b.available {
		b.ignoreCount = k - b.available
		b.available = 0
		b.writePos = b.readPos
		return
	}
	for i := 0; i < k; i++ {
		b.Read()
	}
}

// SetAvailable is used by a DMA producer that filled DataPtr() directly:
// after the transfer completes, the producer publishes the number of
// samples written with a single store, matching the source's
// "available is published after DMA completion is observed" contract.
func (b *Buffer) SetAvailable(n int) {
	if n < 0 {
		n = 0
	}
	if n > len(b.data) {
		n = len(b.data)
	}
	b.readPos = 0
	b.writePos = n % max(len(b.data), 1)
	b.available = n
	b.ignoreCount = 0
}

// SetIgnoreCount configures the number of subsequent writes to discard
// without storing. Used directly by the capture engine's windowing
// policy when `keep < 0` (see capture package).
func (b *Buffer) SetIgnoreCount(n int) {
	if n < 0 {
		n = 0
	}
	b.ignoreCount = n
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

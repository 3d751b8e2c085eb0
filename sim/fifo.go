package sim

// ByteFIFO is a circular byte buffer. One slot is kept free to tell full
// from empty.
type ByteFIFO struct {
	buf   []byte
	read  int
	write int
	size  int
}

// NewByteFIFO creates a FIFO holding up to capacity-1 bytes.
func NewByteFIFO(capacity int) *ByteFIFO {
	return &ByteFIFO{
		buf:  make([]byte, capacity),
		size: capacity,
	}
}

// Write appends data and returns how much fit.
func (f *ByteFIFO) Write(data []byte) int {
	written := 0
	for _, b := range data {
		if !f.Push(b) {
			break
		}
		written++
	}
	return written
}

// Push appends one byte, reporting false when full.
func (f *ByteFIFO) Push(b byte) bool {
	next := (f.write + 1) % f.size
	if next == f.read {
		return false
	}
	f.buf[f.write] = b
	f.write = next
	return true
}

// Read reads up to len(data) bytes.
func (f *ByteFIFO) Read(data []byte) int {
	n := 0
	for i := range data {
		b, ok := f.Pop()
		if !ok {
			break
		}
		data[i] = b
		n++
	}
	return n
}

// Pop removes the oldest byte.
func (f *ByteFIFO) Pop() (byte, bool) {
	if f.read == f.write {
		return 0, false
	}
	b := f.buf[f.read]
	f.read = (f.read + 1) % f.size
	return b, true
}

// Available returns the number of buffered bytes.
func (f *ByteFIFO) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return f.size - f.read + f.write
}

// Free returns the number of bytes that can still be written.
func (f *ByteFIFO) Free() int {
	return f.size - f.Available() - 1
}

// Data returns a copy of the buffered bytes without consuming them.
func (f *ByteFIFO) Data() []byte {
	out := make([]byte, 0, f.Available())
	if f.read <= f.write {
		return append(out, f.buf[f.read:f.write]...)
	}
	out = append(out, f.buf[f.read:]...)
	return append(out, f.buf[:f.write]...)
}

// IsEmpty returns true if nothing is buffered.
func (f *ByteFIFO) IsEmpty() bool {
	return f.read == f.write
}

// Reset drops all buffered bytes.
func (f *ByteFIFO) Reset() {
	f.read = 0
	f.write = 0
}

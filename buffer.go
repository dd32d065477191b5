package pod

import "fmt"

// Writer is an append-only, position-tracked byte sink. A Writer is owned
// by a single top-level pack call and threaded by reference through every
// nested pack step; it is not safe for concurrent use.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write appends p to the buffer. It implements io.Writer and never fails.
func (w *Writer) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// WriteByte appends a single byte.
func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

// Len reports the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the accumulated buffer. The slice aliases the Writer's
// internal storage; callers must not write to the Writer afterwards.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Reader is a cursor-advancing byte source over an immutable byte
// sequence. The cursor only moves forward; format auto-detection inspects
// Remaining without disturbing it.
type Reader struct {
	data []byte
	off  int
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Next consumes and returns the next n bytes. The returned slice aliases
// the Reader's data and must not be modified.
func (r *Reader) Next(n int) ([]byte, error) {
	if n < 0 || n > len(r.data)-r.off {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, n, len(r.data)-r.off)
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ReadByte consumes and returns a single byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.Next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Skip advances the cursor by n bytes without returning them.
func (r *Reader) Skip(n int) error {
	_, err := r.Next(n)
	return err
}

// Offset reports the current cursor position.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining reports the number of unconsumed bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

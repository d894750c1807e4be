package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrStreamUnderrun indicates a read past the end of the buffer.
var ErrStreamUnderrun = errors.New("stream underrun")

// ByteStream is a cursor over a byte buffer. Reads advance the position;
// writes append to the end of the buffer.
type ByteStream struct {
	buf []byte
	pos int
}

// NewByteStream creates a ByteStream reading from data. The buffer is not copied.
func NewByteStream(data []byte) *ByteStream {
	return &ByteStream{buf: data}
}

// Len returns the total number of bytes in the buffer.
func (s *ByteStream) Len() int { return len(s.buf) }

// Position returns the current read position.
func (s *ByteStream) Position() int { return s.pos }

// BytesAvailable returns the number of unread bytes.
func (s *ByteStream) BytesAvailable() int {
	if s.pos >= len(s.buf) {
		return 0
	}
	return len(s.buf) - s.pos
}

// HasBytesAvailable reports whether the cursor is before the end of the buffer.
func (s *ByteStream) HasBytesAvailable() bool {
	return s.pos < len(s.buf)
}

// Seek moves the read position. Seeking to Len() is allowed.
func (s *ByteStream) Seek(pos int) error {
	if pos < 0 || pos > len(s.buf) {
		return fmt.Errorf("%w: seek to %d, length %d", ErrStreamUnderrun, pos, len(s.buf))
	}
	s.pos = pos
	return nil
}

// Reset moves the read position back to the start.
func (s *ByteStream) Reset() { s.pos = 0 }

// Bytes returns the underlying buffer.
func (s *ByteStream) Bytes() []byte { return s.buf }

// Slice returns buf[start:end] without moving the cursor.
func (s *ByteStream) Slice(start, end int) ([]byte, error) {
	if start < 0 || end < start || end > len(s.buf) {
		return nil, fmt.Errorf("%w: slice [%d:%d] of %d bytes", ErrStreamUnderrun, start, end, len(s.buf))
	}
	return s.buf[start:end], nil
}

// PeekByte returns the next byte without consuming it.
func (s *ByteStream) PeekByte() (byte, error) {
	if !s.HasBytesAvailable() {
		return 0, s.underrun(1)
	}
	return s.buf[s.pos], nil
}

// ReadByte consumes one byte.
func (s *ByteStream) ReadByte() (byte, error) {
	b, err := s.PeekByte()
	if err != nil {
		return 0, err
	}
	s.pos++
	return b, nil
}

// ReadBytes consumes n bytes. The returned slice aliases the buffer.
func (s *ByteStream) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > s.BytesAvailable() {
		return nil, s.underrun(n)
	}
	b := s.buf[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

// ReadUint16 consumes a 16-bit value in the given byte order.
func (s *ByteStream) ReadUint16(order binary.ByteOrder) (uint16, error) {
	b, err := s.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return order.Uint16(b), nil
}

// ReadUint32 consumes a 32-bit value in the given byte order.
func (s *ByteStream) ReadUint32(order binary.ByteOrder) (uint32, error) {
	b, err := s.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return order.Uint32(b), nil
}

// ReadUint64 consumes a 64-bit value in the given byte order.
func (s *ByteStream) ReadUint64(order binary.ByteOrder) (uint64, error) {
	b, err := s.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return order.Uint64(b), nil
}

// ReadFloat32 consumes an IEEE 754 single in the given byte order.
func (s *ByteStream) ReadFloat32(order binary.ByteOrder) (float32, error) {
	v, err := s.ReadUint32(order)
	return math.Float32frombits(v), err
}

// ReadFloat64 consumes an IEEE 754 double in the given byte order.
func (s *ByteStream) ReadFloat64(order binary.ByteOrder) (float64, error) {
	v, err := s.ReadUint64(order)
	return math.Float64frombits(v), err
}

// ReadString consumes size bytes and returns them as a string with the
// trailing run of NUL bytes removed. Leading and interior NULs are kept;
// callers split on them to recover string arrays.
func (s *ByteStream) ReadString(size int) (string, error) {
	b, err := s.ReadBytes(size)
	if err != nil {
		return "", err
	}
	str := strings.TrimRight(string(b), "\x00")
	return strings.ToValidUTF8(str, "�"), nil
}

func (s *ByteStream) underrun(n int) error {
	return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrStreamUnderrun, n, s.pos, s.BytesAvailable())
}

// Write appends p to the buffer.
func (s *ByteStream) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)
	return len(p), nil
}

// WriteByte appends one byte.
func (s *ByteStream) WriteByte(b byte) error {
	s.buf = append(s.buf, b)
	return nil
}

// WriteUint16 appends v in the given byte order.
func (s *ByteStream) WriteUint16(order binary.ByteOrder, v uint16) {
	var b [2]byte
	order.PutUint16(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

// WriteUint32 appends v in the given byte order.
func (s *ByteStream) WriteUint32(order binary.ByteOrder, v uint32) {
	var b [4]byte
	order.PutUint32(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

// WriteUint64 appends v in the given byte order.
func (s *ByteStream) WriteUint64(order binary.ByteOrder, v uint64) {
	var b [8]byte
	order.PutUint64(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

// PutUint16At overwrites two bytes at offset.
func (s *ByteStream) PutUint16At(offset int, order binary.ByteOrder, v uint16) error {
	if offset < 0 || offset+2 > len(s.buf) {
		return fmt.Errorf("%w: put at %d of %d bytes", ErrStreamUnderrun, offset, len(s.buf))
	}
	order.PutUint16(s.buf[offset:], v)
	return nil
}

// PutUint32At overwrites four bytes at offset.
func (s *ByteStream) PutUint32At(offset int, order binary.ByteOrder, v uint32) error {
	if offset < 0 || offset+4 > len(s.buf) {
		return fmt.Errorf("%w: put at %d of %d bytes", ErrStreamUnderrun, offset, len(s.buf))
	}
	order.PutUint32(s.buf[offset:], v)
	return nil
}

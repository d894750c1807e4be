package stream

import (
	"errors"
	"fmt"
)

// MaxBits is the widest value ReadBits can return.
const MaxBits = 64

var (
	// ErrBitUnderrun indicates a read past the last available bit.
	ErrBitUnderrun = errors.New("not enough bits available")

	// ErrTooManyBits indicates a request for more than MaxBits bits.
	ErrTooManyBits = errors.New("bit count exceeds 64")
)

// BitStream reads bits from a byte buffer, least significant bit first.
// Values spanning several bytes are assembled little-endian.
type BitStream struct {
	data []byte
	pos  int // bit position
}

// NewBitStream creates a BitStream over data. The buffer is not copied.
func NewBitStream(data []byte) *BitStream {
	return &BitStream{data: data}
}

// NewBitStreamFromValue creates a BitStream over the size least significant
// bytes of v in little-endian order.
func NewBitStreamFromValue(v uint64, size int) *BitStream {
	return NewBitStreamFromValues([]uint64{v}, size)
}

// NewBitStreamFromValues creates a BitStream over the concatenated
// little-endian forms of values, each contributing size bytes.
func NewBitStreamFromValues(values []uint64, size int) *BitStream {
	if size < 0 {
		size = 0
	}
	if size > 8 {
		size = 8
	}
	data := make([]byte, 0, len(values)*size)
	for _, v := range values {
		for i := 0; i < size; i++ {
			data = append(data, byte(v>>(8*i)))
		}
	}
	return &BitStream{data: data}
}

// BitsAvailable returns the number of unread bits.
func (bs *BitStream) BitsAvailable() int {
	return len(bs.data)*8 - bs.pos
}

// HasBitsAvailable reports whether at least one bit is left.
func (bs *BitStream) HasBitsAvailable() bool {
	return bs.BitsAvailable() > 0
}

// Reset rewinds the stream to the first bit.
func (bs *BitStream) Reset() {
	bs.pos = 0
}

// ReadBit returns the next bit as 0 or 1.
func (bs *BitStream) ReadBit() (uint8, error) {
	if !bs.HasBitsAvailable() {
		return 0, ErrBitUnderrun
	}
	bit := (bs.data[bs.pos/8] >> (bs.pos % 8)) & 1
	bs.pos++
	return bit, nil
}

// ReadBits returns the next n bits. The first bit read becomes bit 0 of the
// result. On error the position is left unchanged.
func (bs *BitStream) ReadBits(n int) (uint64, error) {
	if n > MaxBits {
		return 0, fmt.Errorf("%w: requested %d", ErrTooManyBits, n)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid bit count %d", n)
	}
	if n > bs.BitsAvailable() {
		return 0, fmt.Errorf("%w: requested %d, have %d", ErrBitUnderrun, n, bs.BitsAvailable())
	}

	var v uint64
	for i := 0; i < n; {
		byteIdx := bs.pos / 8
		bitIdx := bs.pos % 8

		// take as many bits as remain in the current byte
		take := 8 - bitIdx
		if take > n-i {
			take = n - i
		}
		chunk := uint64(bs.data[byteIdx]>>bitIdx) & (1<<take - 1)
		v |= chunk << i

		i += take
		bs.pos += take
	}
	return v, nil
}

package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitStreamReadBit(t *testing.T) {
	bs := NewBitStream([]byte{0xAA, 0xFF})
	want := []uint8{0, 1, 0, 1, 0, 1, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1}

	var got []uint8
	for bs.HasBitsAvailable() {
		bit, err := bs.ReadBit()
		require.NoError(t, err)
		got = append(got, bit)
	}
	assert.Equal(t, want, got)

	_, err := bs.ReadBit()
	assert.ErrorIs(t, err, ErrBitUnderrun)
}

func TestBitStreamReadBits(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		widths []int
		want   []uint64
	}{
		{name: "single byte", data: []byte{0xAA}, widths: []int{8}, want: []uint64{0xAA}},
		{name: "nibbles", data: []byte{0xAB}, widths: []int{4, 4}, want: []uint64{0xB, 0xA}},
		{name: "little endian word", data: []byte{0x34, 0x12}, widths: []int{16}, want: []uint64{0x1234}},
		{name: "12 bit pairs", data: []byte{0xFF, 0xD0, 0xE2}, widths: []int{12, 12}, want: []uint64{0x0FF, 0xE2D}},
		{name: "unaligned", data: []byte{0xAA, 0xFF}, widths: []int{3, 7, 6}, want: []uint64{0x2, 0x75, 0x3F}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs := NewBitStream(tt.data)
			for i, w := range tt.widths {
				v, err := bs.ReadBits(w)
				require.NoError(t, err)
				assert.Equalf(t, tt.want[i], v, "read %d (%d bits)", i, w)
			}
			assert.False(t, bs.HasBitsAvailable())
		})
	}
}

func TestBitStream64BitReads(t *testing.T) {
	data := make([]byte, 16)
	for i := range data {
		data[i] = 0xFF
	}
	bs := NewBitStream(data)

	v, err := bs.ReadBits(64)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), v)

	v, err = bs.ReadBits(64)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), v)

	_, err = bs.ReadBits(65)
	assert.ErrorIs(t, err, ErrTooManyBits)
}

func TestBitStreamOverRequestKeepsPosition(t *testing.T) {
	bs := NewBitStream([]byte{0x0F, 0x01})

	_, err := bs.ReadBits(4)
	require.NoError(t, err)
	require.Equal(t, 12, bs.BitsAvailable())

	_, err = bs.ReadBits(13)
	assert.ErrorIs(t, err, ErrBitUnderrun)
	assert.Equal(t, 12, bs.BitsAvailable())

	v, err := bs.ReadBits(12)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x010), v)
}

func TestBitStreamFromValue(t *testing.T) {
	bs := NewBitStreamFromValue(0x1234, 2)
	assert.Equal(t, 16, bs.BitsAvailable())

	lo, err := bs.ReadBits(8)
	require.NoError(t, err)
	hi, err := bs.ReadBits(8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x34), lo)
	assert.Equal(t, uint64(0x12), hi)
}

func TestBitStreamFromValues(t *testing.T) {
	bs := NewBitStreamFromValues([]uint64{0x01, 0x02, 0x03}, 1)
	assert.Equal(t, 24, bs.BitsAvailable())

	v, err := bs.ReadBits(24)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x030201), v)
}

func TestBitStreamReset(t *testing.T) {
	bs := NewBitStream([]byte{0x80})
	_, err := bs.ReadBits(8)
	require.NoError(t, err)
	bs.Reset()
	assert.Equal(t, 8, bs.BitsAvailable())
}

package fit

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitkit/fit-go/pkg/crc16"
)

func TestHeaderAppendAndParse(t *testing.T) {
	h := Header{
		Size:            HeaderSize,
		ProtocolVersion: ProtocolVersion20,
		ProfileVersion:  21158,
		DataSize:        1234,
	}
	b := h.AppendTo(nil)
	require.Len(t, b, HeaderSize)
	assert.Equal(t, ".FIT", string(b[8:12]))
	assert.Equal(t, crc16.Calculate(b[:12]), binary.LittleEndian.Uint16(b[12:]))

	b = append(b, 0, 0) // room for the file CRC
	got, err := ParseHeader(b)
	require.NoError(t, err)
	assert.Equal(t, uint8(HeaderSize), got.Size)
	assert.Equal(t, uint16(21158), got.ProfileVersion)
	assert.Equal(t, uint32(1234), got.DataSize)
	assert.Equal(t, DataType, got.DataType)
	assert.NoError(t, got.checkCRC(b))

	b[3] ^= 0xFF
	got, err = ParseHeader(b)
	require.NoError(t, err)
	assert.ErrorIs(t, got.checkCRC(b), ErrIntegrity)
}

func TestHeaderLegacy(t *testing.T) {
	h := Header{Size: LegacyHeaderSize, ProtocolVersion: 0x10, DataSize: 0}
	b := append(h.AppendTo(nil), 0, 0)
	require.Len(t, b, LegacyHeaderSize+2)

	got, err := ParseHeader(b)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), got.CRC)
	assert.NoError(t, got.checkCRC(b))
}

func TestHeaderZeroCRCSkipsCheck(t *testing.T) {
	b := Header{Size: HeaderSize, DataSize: 0}.AppendTo(nil)
	b[12], b[13] = 0, 0
	b = append(b, 0, 0)
	got, err := ParseHeader(b)
	require.NoError(t, err)
	assert.NoError(t, got.checkCRC(b))
}

func TestParseHeaderErrors(t *testing.T) {
	valid := append(Header{Size: HeaderSize}.AppendTo(nil), 0, 0)

	wrongSize := append([]byte(nil), valid...)
	wrongSize[0] = 13

	wrongTag := append([]byte(nil), valid...)
	copy(wrongTag[8:12], "FIT.")

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "size not 12 or 14", data: wrongSize},
		{name: "shorter than header and crc", data: valid[:HeaderSize+1]},
		{name: "wrong tag", data: wrongTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader(tt.data)
			assert.ErrorIs(t, err, ErrMalformedHeader)
		})
	}
}

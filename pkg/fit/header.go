package fit

import (
	"encoding/binary"
	"fmt"

	"github.com/fitkit/fit-go/pkg/crc16"
	"github.com/fitkit/fit-go/pkg/version"
)

// File header constants.
const (
	// HeaderSize is the size of a header carrying a header CRC.
	HeaderSize = 14

	// LegacyHeaderSize is the size of a header without a header CRC.
	LegacyHeaderSize = 12

	// ProtocolVersion20 is protocol version 2.0 as written in headers.
	ProtocolVersion20 uint8 = 0x20

	// DataType is the ASCII tag at bytes 8-11 of every header.
	DataType = ".FIT"

	crcSize = 2
)

// Header is a FIT file header.
type Header struct {
	Size            uint8
	ProtocolVersion uint8
	ProfileVersion  uint16
	DataSize        uint32
	DataType        string

	// CRC is the header CRC; zero when absent or not computed.
	CRC uint16
}

// ParseHeader parses the header at the start of b. It fails with
// ErrMalformedHeader when b is empty, the size byte is neither 12 nor 14,
// b cannot hold the header and a CRC, or the type tag is not ".FIT".
func ParseHeader(b []byte) (Header, error) {
	if len(b) == 0 {
		return Header{}, fmt.Errorf("%w: empty stream", ErrMalformedHeader)
	}
	size := b[0]
	if size != HeaderSize && size != LegacyHeaderSize {
		return Header{}, fmt.Errorf("%w: header size %d", ErrMalformedHeader, size)
	}
	if len(b) < int(size)+crcSize {
		return Header{}, fmt.Errorf("%w: %d bytes cannot hold a %d byte header and CRC", ErrMalformedHeader, len(b), size)
	}
	if string(b[8:12]) != DataType {
		return Header{}, fmt.Errorf("%w: data type %q", ErrMalformedHeader, b[8:12])
	}
	h := Header{
		Size:            size,
		ProtocolVersion: b[1],
		ProfileVersion:  binary.LittleEndian.Uint16(b[2:4]),
		DataSize:        binary.LittleEndian.Uint32(b[4:8]),
		DataType:        DataType,
	}
	if size == HeaderSize {
		h.CRC = binary.LittleEndian.Uint16(b[12:14])
	}
	return h, nil
}

// checkProtocol rejects files written with a newer major protocol version
// than this package implements.
func (h Header) checkProtocol() error {
	v := version.FromByte(h.ProtocolVersion)
	if !version.CurrentProtocol().Supports(v) {
		return fmt.Errorf("%w: protocol version %s is newer than %s", ErrMalformedHeader, v, version.Current)
	}
	return nil
}

// checkCRC verifies the header CRC of raw, the header's own bytes. A zero
// CRC means the writer did not compute one.
func (h Header) checkCRC(raw []byte) error {
	if h.Size != HeaderSize || h.CRC == 0 {
		return nil
	}
	if got := crc16.Calculate(raw[:LegacyHeaderSize]); got != h.CRC {
		return fmt.Errorf("%w: header CRC 0x%04X, computed 0x%04X", ErrIntegrity, h.CRC, got)
	}
	return nil
}

// AppendTo appends the header to dst, computing the header CRC for 14
// byte headers.
func (h Header) AppendTo(dst []byte) []byte {
	start := len(dst)
	dst = append(dst, h.Size, h.ProtocolVersion)
	dst = binary.LittleEndian.AppendUint16(dst, h.ProfileVersion)
	dst = binary.LittleEndian.AppendUint32(dst, h.DataSize)
	dst = append(dst, DataType...)
	if h.Size == HeaderSize {
		dst = binary.LittleEndian.AppendUint16(dst, crc16.Calculate(dst[start:]))
	}
	return dst
}

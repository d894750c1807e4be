package fit

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/fitkit/fit-go/pkg/basetype"
	"github.com/fitkit/fit-go/pkg/stream"
)

// Record header bits.
const (
	recordHeaderCompressed = 0x80
	recordHeaderDefinition = 0x40
	recordHeaderDevData    = 0x20
	recordHeaderLocalMask  = 0x0F

	compressedLocalShift = 5
	compressedLocalMask  = 0x03
	compressedTimeMask   = 0x1F
)

// Endianness is the architecture byte of a definition record.
type Endianness uint8

const (
	LittleEndian Endianness = 0
	BigEndian    Endianness = 1
)

// ByteOrder returns the binary.ByteOrder for the architecture.
func (e Endianness) ByteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (e Endianness) String() string {
	switch e {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return "unknown"
	}
}

// FieldDefinition describes one field of a data record.
type FieldDefinition struct {
	Num  uint8
	Size uint8
	Type basetype.BaseType
}

// DevFieldDefinition describes one developer field of a data record.
type DevFieldDefinition struct {
	Num                uint8
	Size               uint8
	DeveloperDataIndex uint8
}

// Key returns the developer data key of the descriptor.
func (d DevFieldDefinition) Key() DeveloperDataKey {
	return DeveloperDataKey{DeveloperDataIndex: d.DeveloperDataIndex, FieldDefinitionNumber: d.Num}
}

// MesgDefinition is the layout of the data records that follow it under
// the same local message number.
type MesgDefinition struct {
	LocalNum   uint8
	Num        uint16
	Endianness Endianness
	Fields     []FieldDefinition
	DevFields  []DevFieldDefinition

	// resolved developer field definitions, parallel to DevFields
	devDefs []*DeveloperFieldDefinition
}

// NewMesgDefinition derives the definition that encodes m in its current
// shape.
func NewMesgDefinition(m *Mesg, localNum uint8, endianness Endianness) (*MesgDefinition, error) {
	if localNum > MaxLocalMesgNum {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLocalMesgNum, localNum)
	}
	d := &MesgDefinition{
		LocalNum:   localNum,
		Num:        m.Num,
		Endianness: endianness,
		Fields:     make([]FieldDefinition, 0, m.NumFields()),
	}
	for _, f := range m.Fields() {
		size := f.Size()
		if size > MaxFieldSize {
			return nil, &SizeOverflowError{Size: size}
		}
		d.Fields = append(d.Fields, FieldDefinition{Num: f.Num, Size: uint8(size), Type: f.Type})
	}
	for _, df := range m.DeveloperFields() {
		size := df.Size()
		if size > MaxFieldSize {
			return nil, &SizeOverflowError{Size: size}
		}
		d.DevFields = append(d.DevFields, DevFieldDefinition{
			Num:                df.key.FieldDefinitionNumber,
			Size:               uint8(size),
			DeveloperDataIndex: df.key.DeveloperDataIndex,
		})
		d.devDefs = append(d.devDefs, df.def)
	}
	return d, nil
}

// Equal compares the wire layout of two definitions.
func (d *MesgDefinition) Equal(o *MesgDefinition) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.LocalNum != o.LocalNum || d.Num != o.Num || d.Endianness != o.Endianness ||
		len(d.Fields) != len(o.Fields) || len(d.DevFields) != len(o.DevFields) {
		return false
	}
	for i := range d.Fields {
		if d.Fields[i] != o.Fields[i] {
			return false
		}
	}
	for i := range d.DevFields {
		if d.DevFields[i] != o.DevFields[i] {
			return false
		}
	}
	return true
}

// sameLayout is Equal ignoring the local message number.
func (d *MesgDefinition) sameLayout(o *MesgDefinition) bool {
	if d == nil || o == nil {
		return false
	}
	c := *o
	c.LocalNum = d.LocalNum
	return d.Equal(&c)
}

// DataSize returns the size of one data record body.
func (d *MesgDefinition) DataSize() int {
	n := 0
	for _, f := range d.Fields {
		n += int(f.Size)
	}
	for _, f := range d.DevFields {
		n += int(f.Size)
	}
	return n
}

// AppendTo appends the definition record, header byte included, to dst.
func (d *MesgDefinition) AppendTo(dst []byte) []byte {
	header := byte(recordHeaderDefinition) | d.LocalNum&recordHeaderLocalMask
	if len(d.DevFields) > 0 {
		header |= recordHeaderDevData
	}
	var num [2]byte
	d.Endianness.ByteOrder().PutUint16(num[:], d.Num)
	dst = append(dst, header, 0, byte(d.Endianness))
	dst = append(dst, num[:]...)
	dst = append(dst, byte(len(d.Fields)))
	for _, f := range d.Fields {
		dst = append(dst, f.Num, f.Size, byte(f.Type))
	}
	if len(d.DevFields) > 0 {
		dst = append(dst, byte(len(d.DevFields)))
		for _, f := range d.DevFields {
			dst = append(dst, f.Num, f.Size, f.DeveloperDataIndex)
		}
	}
	return dst
}

// readMesgDefinition parses a definition record body following header.
func readMesgDefinition(bs *stream.ByteStream, header byte) (*MesgDefinition, error) {
	d := &MesgDefinition{LocalNum: header & recordHeaderLocalMask}

	if _, err := bs.ReadByte(); err != nil { // reserved
		return nil, err
	}
	arch, err := bs.ReadByte()
	if err != nil {
		return nil, err
	}
	if arch > byte(BigEndian) {
		return nil, fmt.Errorf("%w: architecture %d", ErrMalformedRecord, arch)
	}
	d.Endianness = Endianness(arch)

	if d.Num, err = bs.ReadUint16(d.Endianness.ByteOrder()); err != nil {
		return nil, err
	}
	n, err := bs.ReadByte()
	if err != nil {
		return nil, err
	}
	raw, err := bs.ReadBytes(int(n) * 3)
	if err != nil {
		return nil, err
	}
	d.Fields = make([]FieldDefinition, n)
	for i := range d.Fields {
		d.Fields[i] = FieldDefinition{Num: raw[i*3], Size: raw[i*3+1], Type: basetype.BaseType(raw[i*3+2])}
	}

	if header&recordHeaderDevData == 0 {
		return d, nil
	}
	n, err = bs.ReadByte()
	if err != nil {
		return nil, err
	}
	if raw, err = bs.ReadBytes(int(n) * 3); err != nil {
		return nil, err
	}
	d.DevFields = make([]DevFieldDefinition, n)
	for i := range d.DevFields {
		d.DevFields[i] = DevFieldDefinition{Num: raw[i*3], Size: raw[i*3+1], DeveloperDataIndex: raw[i*3+2]}
	}
	return d, nil
}

func (d *MesgDefinition) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "def local=%d mesg=%d %s", d.LocalNum, d.Num, d.Endianness)
	for _, f := range d.Fields {
		fmt.Fprintf(&sb, " %d:%d:%s", f.Num, f.Size, f.Type)
	}
	for _, f := range d.DevFields {
		fmt.Fprintf(&sb, " dev%d:%d:%d", f.DeveloperDataIndex, f.Num, f.Size)
	}
	return sb.String()
}

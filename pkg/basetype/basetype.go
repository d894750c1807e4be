// Package basetype defines the primitive wire types of the FIT protocol.
//
// Every field on the wire is encoded as one of seventeen base types. A base
// type fixes the byte width of one element, its signedness and the bit
// pattern that marks an element as invalid (absent).
//
// # Raw values
//
// A raw value is the in-memory form of one wire element. Its Go type follows
// the base type exactly:
//
//	ENUM, UINT8, UINT8Z, BYTE  uint8
//	SINT8                      int8
//	SINT16                     int16
//	UINT16, UINT16Z            uint16
//	SINT32                     int32
//	UINT32, UINT32Z            uint32
//	SINT64                     int64
//	UINT64, UINT64Z            uint64
//	FLOAT32                    float32
//	FLOAT64                    float64
//	STRING                     string
package basetype

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// BaseType identifies a wire type by its FIT base type number.
type BaseType uint8

// FIT base types. Bit 7 of the number marks endian-sensitive types.
const (
	Enum    BaseType = 0x00
	Sint8   BaseType = 0x01
	Uint8   BaseType = 0x02
	Sint16  BaseType = 0x83
	Uint16  BaseType = 0x84
	Sint32  BaseType = 0x85
	Uint32  BaseType = 0x86
	String  BaseType = 0x07
	Float32 BaseType = 0x88
	Float64 BaseType = 0x89
	Uint8z  BaseType = 0x0A
	Uint16z BaseType = 0x8B
	Uint32z BaseType = 0x8C
	Byte    BaseType = 0x0D
	Sint64  BaseType = 0x8E
	Uint64  BaseType = 0x8F
	Uint64z BaseType = 0x90
)

// MaxStringSize is the largest encoded string, including its terminator,
// that fits in one field.
const MaxStringSize = 255

// ErrUnsupportedValueType indicates a host value that cannot be stored in
// any base type.
var ErrUnsupportedValueType = errors.New("unsupported value type")

type info struct {
	name    string
	size    int
	signed  bool
	invalid uint64 // integer sentinel bit pattern
}

var registry = map[BaseType]info{
	Enum:    {name: "enum", size: 1, invalid: 0xFF},
	Sint8:   {name: "sint8", size: 1, signed: true, invalid: 0x7F},
	Uint8:   {name: "uint8", size: 1, invalid: 0xFF},
	Sint16:  {name: "sint16", size: 2, signed: true, invalid: 0x7FFF},
	Uint16:  {name: "uint16", size: 2, invalid: 0xFFFF},
	Sint32:  {name: "sint32", size: 4, signed: true, invalid: 0x7FFFFFFF},
	Uint32:  {name: "uint32", size: 4, invalid: 0xFFFFFFFF},
	String:  {name: "string", size: 1, invalid: 0x00},
	Float32: {name: "float32", size: 4, signed: true, invalid: 0xFFFFFFFF},
	Float64: {name: "float64", size: 8, signed: true, invalid: 0xFFFFFFFFFFFFFFFF},
	Uint8z:  {name: "uint8z", size: 1, invalid: 0x00},
	Uint16z: {name: "uint16z", size: 2, invalid: 0x0000},
	Uint32z: {name: "uint32z", size: 4, invalid: 0x00000000},
	Byte:    {name: "byte", size: 1, invalid: 0xFF},
	Sint64:  {name: "sint64", size: 8, signed: true, invalid: 0x7FFFFFFFFFFFFFFF},
	Uint64:  {name: "uint64", size: 8, invalid: 0xFFFFFFFFFFFFFFFF},
	Uint64z: {name: "uint64z", size: 8, invalid: 0x0000000000000000},
}

// All returns every base type in wire number order.
func All() []BaseType {
	return []BaseType{
		Enum, Sint8, Uint8, String, Uint8z, Byte,
		Sint16, Uint16, Sint32, Uint32, Float32, Float64,
		Uint16z, Uint32z, Sint64, Uint64, Uint64z,
	}
}

// Known reports whether t is a defined base type.
func (t BaseType) Known() bool {
	_, ok := registry[t]
	return ok
}

// String returns the profile name of the type, e.g. "uint16z".
func (t BaseType) String() string {
	if i, ok := registry[t]; ok {
		return i.name
	}
	return fmt.Sprintf("basetype(0x%02X)", uint8(t))
}

// Parse returns the base type with the given profile name.
func Parse(name string) (BaseType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, i := range registry {
		if i.name == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown base type %q", name)
}

// Size returns the byte width of one element. Strings report 1.
func (t BaseType) Size() int {
	return registry[t].size
}

// IsSigned reports whether the type holds signed values.
func (t BaseType) IsSigned() bool { return registry[t].signed }

// IsFloat reports whether the type is FLOAT32 or FLOAT64.
func (t BaseType) IsFloat() bool { return t == Float32 || t == Float64 }

// IsString reports whether the type is STRING.
func (t BaseType) IsString() bool { return t == String }

// IsInteger reports whether the type holds integer elements.
func (t BaseType) IsInteger() bool { return t.Known() && !t.IsFloat() && !t.IsString() }

// IsNumeric reports whether scale and offset apply to the type.
func (t BaseType) IsNumeric() bool { return t.Known() && !t.IsString() }

// IsEndianSensitive reports whether the element width exceeds one byte.
func (t BaseType) IsEndianSensitive() bool { return t.Size() > 1 }

// IsZeroInvalid reports whether zero is the invalid sentinel (the "Z" types).
func (t BaseType) IsZeroInvalid() bool {
	return t == Uint8z || t == Uint16z || t == Uint32z || t == Uint64z
}

// InvalidRaw returns the sentinel bit pattern for integer and float types.
func (t BaseType) InvalidRaw() uint64 {
	return registry[t].invalid
}

// InvalidBytes returns the wire encoding of one invalid element.
func (t BaseType) InvalidBytes() []byte {
	if t.IsString() {
		return []byte{0x00}
	}
	return t.Encode(nil, t.InvalidValue(), binary.LittleEndian)
}

// InvalidValue returns the invalid sentinel as a raw value.
func (t BaseType) InvalidValue() any {
	switch t {
	case String:
		return ""
	case Float32:
		return math.Float32frombits(uint32(registry[t].invalid))
	case Float64:
		return math.Float64frombits(registry[t].invalid)
	}
	return t.FromBits(registry[t].invalid)
}

// FromBits builds a raw value of the type from the low bits of v.
// Float types reinterpret the bits; strings are not supported and return "".
func (t BaseType) FromBits(v uint64) any {
	switch t {
	case Enum, Uint8, Uint8z, Byte:
		return uint8(v)
	case Sint8:
		return int8(v)
	case Sint16:
		return int16(v)
	case Uint16, Uint16z:
		return uint16(v)
	case Sint32:
		return int32(v)
	case Uint32, Uint32z:
		return uint32(v)
	case Sint64:
		return int64(v)
	case Uint64, Uint64z:
		return v
	case Float32:
		return math.Float32frombits(uint32(v))
	case Float64:
		return math.Float64frombits(v)
	}
	return ""
}

// Bits returns the bit pattern of an integer or float raw value, masked to
// the width of its Go type.
func Bits(raw any) (uint64, bool) {
	switch v := raw.(type) {
	case uint8:
		return uint64(v), true
	case int8:
		return uint64(uint8(v)), true
	case uint16:
		return uint64(v), true
	case int16:
		return uint64(uint16(v)), true
	case uint32:
		return uint64(v), true
	case int32:
		return uint64(uint32(v)), true
	case uint64:
		return v, true
	case int64:
		return uint64(v), true
	case float32:
		return uint64(math.Float32bits(v)), true
	case float64:
		return math.Float64bits(v), true
	}
	return 0, false
}

// IsValid reports whether raw is a usable value of the type: integers must
// differ from the sentinel, floats must not be NaN and strings must be
// non-empty and fit in a field.
func (t BaseType) IsValid(raw any) bool {
	switch {
	case raw == nil:
		return false
	case t.IsString():
		s, ok := raw.(string)
		return ok && len(s) > 0 && len(s)+1 <= MaxStringSize
	case t.IsFloat():
		f, ok := ToFloat64(raw)
		return ok && !math.IsNaN(f)
	}
	bits, ok := Bits(raw)
	if !ok {
		return false
	}
	if mask := widthMask(t.Size()); bits&mask == registry[t].invalid {
		return false
	}
	return true
}

// IsInvalid is the negation of IsValid.
func (t BaseType) IsInvalid(raw any) bool {
	return !t.IsValid(raw)
}

func widthMask(size int) uint64 {
	if size >= 8 {
		return math.MaxUint64
	}
	return 1<<(8*size) - 1
}

// ToFloat64 converts any numeric raw or host value to float64.
func ToFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case uint8:
		return float64(n), true
	case int8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case int16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case int:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// From infers the base type for a host value. Booleans map to UINT8.
func From(value any) (BaseType, bool) {
	switch value.(type) {
	case bool, uint8:
		return Uint8, true
	case int8:
		return Sint8, true
	case int16:
		return Sint16, true
	case uint16:
		return Uint16, true
	case int32:
		return Sint32, true
	case uint32:
		return Uint32, true
	case int64, int:
		return Sint64, true
	case uint64, uint:
		return Uint64, true
	case float32:
		return Float32, true
	case float64:
		return Float64, true
	case string:
		return String, true
	}
	return 0, false
}

package basetype

import (
	"encoding/binary"
	"fmt"
	"math"
)

// CorrectRangeAndType converts a host value to a raw value of the type.
// Floats headed for integer types are rounded half up. NaN, infinite and
// out-of-range input yields the invalid sentinel, as does nil. A host value
// that cannot be represented at all returns ErrUnsupportedValueType.
func (t BaseType) CorrectRangeAndType(value any) (any, error) {
	if !t.Known() {
		return nil, fmt.Errorf("%w: unknown base type 0x%02X", ErrUnsupportedValueType, uint8(t))
	}
	if value == nil {
		return t.InvalidValue(), nil
	}

	if t.IsString() {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %T into %s", ErrUnsupportedValueType, value, t)
		}
		if !t.IsValid(s) {
			return t.InvalidValue(), nil
		}
		return s, nil
	}

	if t.IsFloat() {
		f, ok := ToFloat64(value)
		if !ok {
			return nil, fmt.Errorf("%w: %T into %s", ErrUnsupportedValueType, value, t)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return t.InvalidValue(), nil
		}
		if t == Float32 {
			if math.Abs(f) > math.MaxFloat32 {
				return t.InvalidValue(), nil
			}
			return float32(f), nil
		}
		return f, nil
	}

	switch v := value.(type) {
	case int8:
		return t.fromInt(int64(v)), nil
	case int16:
		return t.fromInt(int64(v)), nil
	case int32:
		return t.fromInt(int64(v)), nil
	case int64:
		return t.fromInt(v), nil
	case int:
		return t.fromInt(int64(v)), nil
	case uint8:
		return t.fromUint(uint64(v)), nil
	case uint16:
		return t.fromUint(uint64(v)), nil
	case uint32:
		return t.fromUint(uint64(v)), nil
	case uint64:
		return t.fromUint(v), nil
	case uint:
		return t.fromUint(uint64(v)), nil
	case bool:
		if v {
			return t.fromUint(1), nil
		}
		return t.fromUint(0), nil
	case float32:
		return t.fromFloat(float64(v)), nil
	case float64:
		return t.fromFloat(v), nil
	}
	return nil, fmt.Errorf("%w: %T into %s", ErrUnsupportedValueType, value, t)
}

func (t BaseType) bits() uint {
	return uint(t.Size() * 8)
}

func (t BaseType) maxUint() uint64 {
	if t.IsSigned() {
		return 1<<(t.bits()-1) - 1
	}
	return widthMask(t.Size())
}

func (t BaseType) fromInt(v int64) any {
	if v < 0 {
		if !t.IsSigned() {
			return t.InvalidValue()
		}
		if v < -(1 << (t.bits() - 1)) {
			return t.InvalidValue()
		}
		return t.FromBits(uint64(v))
	}
	return t.fromUint(uint64(v))
}

func (t BaseType) fromUint(v uint64) any {
	if v > t.maxUint() {
		return t.InvalidValue()
	}
	return t.FromBits(v)
}

// fromFloat rounds half up and range checks in float space before the
// integer conversion, which is undefined for out-of-range input in Go.
func (t BaseType) fromFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return t.InvalidValue()
	}
	r := RoundHalfUp(f)
	if r < 0 {
		min := -math.Ldexp(1, int(t.bits()-1))
		if !t.IsSigned() || r < min {
			return t.InvalidValue()
		}
		return t.FromBits(uint64(int64(r)))
	}
	if r >= math.Ldexp(1, int(t.bits())) {
		return t.InvalidValue()
	}
	if r >= math.Ldexp(1, 63) {
		// only unsigned 64-bit types reach here
		return t.fromUint(uint64(r))
	}
	return t.fromUint(uint64(int64(r)))
}

// RoundHalfUp rounds to the nearest integer, ties toward positive infinity.
func RoundHalfUp(f float64) float64 {
	return math.Floor(f + 0.5)
}

// Encode appends the wire form of one raw element to dst. Strings are
// written with their NUL terminator. Values of the wrong Go type are
// converted with CorrectRangeAndType first; unconvertible values encode as
// the invalid sentinel.
func (t BaseType) Encode(dst []byte, raw any, order binary.ByteOrder) []byte {
	if t.IsString() {
		s, _ := raw.(string)
		dst = append(dst, s...)
		return append(dst, 0x00)
	}

	if !t.rawMatches(raw) {
		corrected, err := t.CorrectRangeAndType(raw)
		if err != nil {
			corrected = t.InvalidValue()
		}
		raw = corrected
	}

	bits, _ := Bits(raw)
	var buf [8]byte
	switch t.Size() {
	case 1:
		return append(dst, byte(bits))
	case 2:
		order.PutUint16(buf[:], uint16(bits))
	case 4:
		order.PutUint32(buf[:], uint32(bits))
	default:
		order.PutUint64(buf[:], bits)
	}
	return append(dst, buf[:t.Size()]...)
}

// Decode returns the raw value held in the first Size() bytes of b.
// Strings decode all of b up to the first NUL.
func (t BaseType) Decode(b []byte, order binary.ByteOrder) (any, error) {
	if t.IsString() {
		for i, c := range b {
			if c == 0 {
				return string(b[:i]), nil
			}
		}
		return string(b), nil
	}
	if len(b) < t.Size() {
		return nil, fmt.Errorf("decode %s: need %d bytes, have %d", t, t.Size(), len(b))
	}
	switch t.Size() {
	case 1:
		return t.FromBits(uint64(b[0])), nil
	case 2:
		return t.FromBits(uint64(order.Uint16(b))), nil
	case 4:
		return t.FromBits(uint64(order.Uint32(b))), nil
	default:
		return t.FromBits(order.Uint64(b)), nil
	}
}

// rawMatches reports whether raw already has the Go type used for t.
func (t BaseType) rawMatches(raw any) bool {
	switch raw.(type) {
	case uint8:
		return t == Enum || t == Uint8 || t == Uint8z || t == Byte
	case int8:
		return t == Sint8
	case int16:
		return t == Sint16
	case uint16:
		return t == Uint16 || t == Uint16z
	case int32:
		return t == Sint32
	case uint32:
		return t == Uint32 || t == Uint32z
	case int64:
		return t == Sint64
	case uint64:
		return t == Uint64 || t == Uint64z
	case float32:
		return t == Float32
	case float64:
		return t == Float64
	case string:
		return t == String
	}
	return false
}

package fit

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/fitkit/fit-go/pkg/basetype"
	"github.com/fitkit/fit-go/pkg/stream"
)

// MaxFieldSize is the largest wire size of one field.
const MaxFieldSize = 255

// UnknownName names messages and fields absent from the profile.
const UnknownName = "unknown"

// Field is one field of a message: its profile description plus an ordered
// list of raw values. Each stored raw value is either a valid value of Type
// or the type's invalid sentinel.
type Field struct {
	Name       string
	Num        uint8
	Type       basetype.BaseType
	Scale      float64
	Offset     float64
	Units      string
	Accumulate bool
	IsArray    bool

	// Components and SubFields come from the profile and are shared
	// between copies of a field.
	Components []Component
	SubFields  []SubField

	values   []any
	expanded bool
}

// NewField creates an empty field with scale 1 and offset 0.
func NewField(name string, num uint8, bt basetype.BaseType) *Field {
	return &Field{Name: name, Num: num, Type: bt, Scale: 1}
}

// NumValues returns the number of stored values.
func (f *Field) NumValues() int { return len(f.values) }

// IsExpanded reports whether the field was produced by component expansion.
func (f *Field) IsExpanded() bool { return f.expanded }

// RawValue returns the raw value at index i, or nil when out of range.
func (f *Field) RawValue(i int) any {
	if i < 0 || i >= len(f.values) {
		return nil
	}
	return f.values[i]
}

// RawValues returns a copy of all raw values.
func (f *Field) RawValues() []any {
	out := make([]any, len(f.values))
	copy(out, f.values)
	return out
}

// ActiveSubField returns the sub-field m currently selects, or nil.
// Trigger sets of a field's sub-fields are disjoint, so at most one is
// active; the first match is returned.
func (f *Field) ActiveSubField(m *Mesg) *SubField {
	for i := range f.SubFields {
		if f.SubFields[i].CanMesgSupport(m) {
			return &f.SubFields[i]
		}
	}
	return nil
}

// SubFieldByName returns the named sub-field, or nil.
func (f *Field) SubFieldByName(name string) *SubField {
	for i := range f.SubFields {
		if f.SubFields[i].Name == name {
			return &f.SubFields[i]
		}
	}
	return nil
}

// NameFor returns the sub-field name when sf is set, else the field name.
func (f *Field) NameFor(sf *SubField) string {
	if sf != nil {
		return sf.Name
	}
	return f.Name
}

// TypeFor returns the sub-field type when sf is set, else the field type.
func (f *Field) TypeFor(sf *SubField) basetype.BaseType {
	if sf != nil {
		return sf.Type
	}
	return f.Type
}

// UnitsFor returns the sub-field units when sf is set, else the field units.
func (f *Field) UnitsFor(sf *SubField) string {
	if sf != nil {
		return sf.Units
	}
	return f.Units
}

func (f *Field) scaling(sf *SubField) (scale, offset float64) {
	scale, offset = f.Scale, f.Offset
	if sf != nil {
		scale, offset = sf.Scale, sf.Offset
	}
	if scale == 0 {
		scale = 1
	}
	return scale, offset
}

// Value returns the value at index i with scale and offset applied, or nil
// when the raw value is invalid or i is out of range. Unscaled fields return
// the raw value unchanged; scaled fields return float64.
func (f *Field) Value(i int) any {
	return f.ValueFor(i, nil)
}

// ValueFor is Value interpreted through sub-field sf.
func (f *Field) ValueFor(i int, sf *SubField) any {
	raw := f.RawValue(i)
	if raw == nil || f.Type.IsInvalid(raw) {
		return nil
	}
	if f.Type.IsString() {
		return raw
	}
	scale, offset := f.scaling(sf)
	if scale == 1 && offset == 0 {
		if sf != nil && sf.Type != f.Type && sf.Type.IsNumeric() {
			if v, err := sf.Type.CorrectRangeAndType(raw); err == nil && sf.Type.IsValid(v) {
				return v
			}
		}
		return raw
	}
	x, _ := basetype.ToFloat64(raw)
	return x/scale - offset
}

// Values returns every value with scale and offset applied.
func (f *Field) Values() []any {
	out := make([]any, len(f.values))
	for i := range f.values {
		out[i] = f.Value(i)
	}
	return out
}

// SetValue stores value at index i, growing the field with invalid values
// as needed. Numeric values are scaled, offset and rounded half up; nil
// stores the invalid sentinel.
func (f *Field) SetValue(i int, value any) error {
	return f.SetValueFor(i, value, nil)
}

// SetValueFor is SetValue using the scale and offset of sub-field sf.
func (f *Field) SetValueFor(i int, value any, sf *SubField) error {
	if value != nil && f.Type.IsNumeric() {
		scale, offset := f.scaling(sf)
		if scale != 1 || offset != 0 {
			x, ok := basetype.ToFloat64(value)
			if !ok {
				return fmt.Errorf("field %s: %w: %T", f.Name, ErrUnsupportedValueType, value)
			}
			value = (x + offset) * scale
		}
	}
	raw, err := f.Type.CorrectRangeAndType(value)
	if err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}
	return f.setRaw(i, raw)
}

// AddValue appends a value; see SetValue.
func (f *Field) AddValue(value any) error {
	return f.SetValue(len(f.values), value)
}

// SetRawValue stores a raw value at index i after range correction.
// Scale and offset are not applied.
func (f *Field) SetRawValue(i int, raw any) error {
	corrected, err := f.Type.CorrectRangeAndType(raw)
	if err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}
	return f.setRaw(i, corrected)
}

// AddRawValue appends a raw value after range correction.
func (f *Field) AddRawValue(raw any) error {
	return f.SetRawValue(len(f.values), raw)
}

func (f *Field) setRaw(i int, raw any) error {
	if i < 0 {
		return fmt.Errorf("field %s: negative index %d", f.Name, i)
	}
	if size := f.sizeWith(i, raw); size > MaxFieldSize {
		return &SizeOverflowError{Size: size}
	}
	for len(f.values) <= i {
		f.values = append(f.values, f.Type.InvalidValue())
	}
	f.values[i] = raw
	return nil
}

// sizeWith returns the wire size the field would have after storing raw
// at index i.
func (f *Field) sizeWith(i int, raw any) int {
	n := max(len(f.values), i+1)
	if !f.Type.IsString() {
		return n * f.Type.Size()
	}
	total := 0
	for j := 0; j < n; j++ {
		var s string
		switch {
		case j == i:
			s, _ = raw.(string)
		case j < len(f.values):
			s, _ = f.values[j].(string)
		}
		total += len(s) + 1
	}
	return total
}

// Size returns the wire size of the field. An empty field still occupies
// one element (one NUL for strings).
func (f *Field) Size() int {
	if len(f.values) == 0 {
		return f.Type.Size()
	}
	if !f.Type.IsString() {
		return len(f.values) * f.Type.Size()
	}
	total := 0
	for _, v := range f.values {
		s, _ := v.(string)
		total += len(s) + 1
	}
	return total
}

// hasValidValue reports whether any stored value differs from the sentinel.
func (f *Field) hasValidValue() bool {
	for _, v := range f.values {
		if f.Type.IsValid(v) {
			return true
		}
	}
	return false
}

// Read replaces the field's values with size bytes from bs encoded as
// wireType. Values are converted to the field's type when the two differ;
// a string/number mismatch adopts the wire type. Strings split on NUL after
// trailing NULs are trimmed. It reports whether any value read is valid.
func (f *Field) Read(bs *stream.ByteStream, size uint8, wireType basetype.BaseType, order binary.ByteOrder) (bool, error) {
	b, err := bs.ReadBytes(int(size))
	if err != nil {
		return false, fmt.Errorf("field %s: %w", f.Name, err)
	}
	f.values = f.values[:0]

	if wireType.IsString() != f.Type.IsString() {
		f.Type = wireType
	}

	if f.Type.IsString() {
		trimmed := bytes.TrimRight(b, "\x00")
		if len(trimmed) == 0 {
			return false, nil
		}
		for _, part := range bytes.Split(trimmed, []byte{0}) {
			f.values = append(f.values, strings.ToValidUTF8(string(part), "�"))
		}
		return f.hasValidValue(), nil
	}

	w := wireType.Size()
	for off := 0; off+w <= len(b); off += w {
		raw, err := wireType.Decode(b[off:off+w], order)
		if err != nil {
			return false, fmt.Errorf("field %s: %w", f.Name, err)
		}
		if wireType != f.Type {
			if wireType.IsInvalid(raw) {
				raw = f.Type.InvalidValue()
			} else if c, cerr := f.Type.CorrectRangeAndType(raw); cerr == nil {
				raw = c
			} else {
				raw = f.Type.InvalidValue()
			}
		}
		f.values = append(f.values, raw)
	}
	return f.hasValidValue(), nil
}

// AppendTo appends the wire form of the field to dst.
func (f *Field) AppendTo(dst []byte, order binary.ByteOrder) []byte {
	if len(f.values) == 0 {
		return f.Type.Encode(dst, f.Type.InvalidValue(), order)
	}
	for _, v := range f.values {
		dst = f.Type.Encode(dst, v, order)
	}
	return dst
}

// Write serializes all raw values in order.
func (f *Field) Write(bs *stream.ByteStream, order binary.ByteOrder) error {
	_, err := bs.Write(f.AppendTo(nil, order))
	return err
}

// Equal compares profile attributes and raw values. Sub-fields and
// components are not compared.
func (f *Field) Equal(o *Field) bool {
	if f == nil || o == nil {
		return f == o
	}
	if f.Name != o.Name || f.Num != o.Num || f.Type != o.Type ||
		f.Scale != o.Scale || f.Offset != o.Offset || f.Units != o.Units {
		return false
	}
	return rawValuesEqual(f.values, o.values)
}

func rawValuesEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if sa, ok := a[i].(string); ok {
			if sb, ok := b[i].(string); !ok || sa != sb {
				return false
			}
			continue
		}
		ba, oka := basetype.Bits(a[i])
		bb, okb := basetype.Bits(b[i])
		if oka != okb || ba != bb {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the field's values. Profile tables are
// shared.
func (f *Field) Clone() *Field {
	c := *f
	c.values = make([]any, len(f.values))
	copy(c.values, f.values)
	return &c
}

// String formats the field as "name=value units".
func (f *Field) String() string {
	return formatField(f.Name, f.Values(), f.Units)
}

func formatField(name string, values []any, units string) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('=')
	switch len(values) {
	case 0:
		sb.WriteString("-")
	case 1:
		sb.WriteString(formatValue(values[0]))
	default:
		sb.WriteByte('[')
		for i, v := range values {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(formatValue(v))
		}
		sb.WriteByte(']')
	}
	if units != "" {
		sb.WriteByte(' ')
		sb.WriteString(units)
	}
	return sb.String()
}

// formatValue renders one value; invalid values print as "-".
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return fmt.Sprintf("%.0f", x)
		}
		return fmt.Sprintf("%g", x)
	case float32:
		return fmt.Sprintf("%g", x)
	case string:
		return fmt.Sprintf("%q", x)
	}
	return fmt.Sprint(v)
}

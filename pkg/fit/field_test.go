package fit

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitkit/fit-go/pkg/basetype"
	"github.com/fitkit/fit-go/pkg/stream"
)

func TestFieldScaleAndOffset(t *testing.T) {
	f := NewField("altitude", 2, basetype.Uint16)
	f.Scale, f.Offset = 5, 500

	require.NoError(t, f.SetValue(0, 22.0))
	assert.Equal(t, uint16(2610), f.RawValue(0))
	assert.InDelta(t, 22.0, f.Value(0), 1e-9)

	// round half up on the way in
	require.NoError(t, f.SetValue(0, 22.15))
	assert.Equal(t, uint16(2611), f.RawValue(0))

	// offset is in value units: raw 0 is -500 m
	require.NoError(t, f.SetValue(0, -500.0))
	assert.Equal(t, uint16(0), f.RawValue(0))
	assert.InDelta(t, -500.0, f.Value(0), 1e-9)
}

func TestFieldUnscaledKeepsRawType(t *testing.T) {
	f := NewField("heart_rate", 3, basetype.Uint8)
	require.NoError(t, f.SetValue(0, 150))
	assert.Equal(t, uint8(150), f.Value(0))

	require.NoError(t, f.SetValue(0, nil))
	assert.Nil(t, f.Value(0))
	assert.Equal(t, 1, f.NumValues())
}

func TestFieldSetValueGrowsWithInvalid(t *testing.T) {
	f := NewField("speed_1s", 17, basetype.Uint8)
	require.NoError(t, f.SetValue(2, 7))

	assert.Equal(t, 3, f.NumValues())
	assert.Nil(t, f.Value(0))
	assert.Nil(t, f.Value(1))
	assert.Equal(t, uint8(7), f.Value(2))
	assert.Nil(t, f.Value(3))
}

func TestFieldAddRawValueSkipsScale(t *testing.T) {
	f := NewField("speed", 6, basetype.Uint16)
	f.Scale = 1000
	require.NoError(t, f.AddRawValue(2500))
	assert.Equal(t, uint16(2500), f.RawValue(0))
	assert.InDelta(t, 2.5, f.Value(0), 1e-9)
}

func TestFieldUnsupportedValue(t *testing.T) {
	f := NewField("x", 1, basetype.Uint8)
	err := f.SetValue(0, "fast")
	assert.ErrorIs(t, err, ErrUnsupportedValueType)

	f.Scale = 2
	err = f.SetValue(0, struct{}{})
	assert.ErrorIs(t, err, ErrUnsupportedValueType)
}

func TestFieldSizeOverflow(t *testing.T) {
	tests := []struct {
		bt       basetype.BaseType
		lastOK   int
		overflow int
	}{
		{basetype.Uint8, 254, 255},
		{basetype.Uint16, 126, 127},
		{basetype.Uint32, 62, 63},
		{basetype.Uint64, 30, 31},
	}

	for _, tt := range tests {
		t.Run(tt.bt.String(), func(t *testing.T) {
			f := NewField("array", 0, tt.bt)
			require.NoError(t, f.SetValue(tt.lastOK, 1))
			assert.LessOrEqual(t, f.Size(), MaxFieldSize)

			err := f.SetValue(tt.overflow, 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSizeOverflow)

			var overflow *SizeOverflowError
			require.ErrorAs(t, err, &overflow)
			assert.Equal(t, 256, overflow.Size)
			assert.Equal(t, tt.lastOK+1, f.NumValues())
		})
	}
}

func TestFieldStringOverflow(t *testing.T) {
	f := NewField("names", 3, basetype.String)
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	require.NoError(t, f.SetValue(0, string(long)))

	err := f.SetValue(1, string(long[:60]))
	var overflow *SizeOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, 262, overflow.Size)
}

func TestFieldInvalidBytesReadAsNil(t *testing.T) {
	for _, bt := range basetype.All() {
		t.Run(bt.String(), func(t *testing.T) {
			b := bt.InvalidBytes()
			f := NewField("x", 0, bt)
			ok, err := f.Read(stream.NewByteStream(b), uint8(len(b)), bt, binary.LittleEndian)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, f.Value(0))
		})
	}
}

func TestFieldReadConvertsWireType(t *testing.T) {
	// A uint16 profile field sent as uint8 keeps its profile type.
	f := NewField("power", 7, basetype.Uint16)
	ok, err := f.Read(stream.NewByteStream([]byte{200}), 1, basetype.Uint8, binary.LittleEndian)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint16(200), f.RawValue(0))

	// Invalid stays invalid across the conversion.
	ok, err = f.Read(stream.NewByteStream([]byte{0xFF}), 1, basetype.Uint8, binary.LittleEndian)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, uint16(0xFFFF), f.RawValue(0))
}

func TestFieldReadStringMismatchAdoptsWireType(t *testing.T) {
	f := NewField("power", 7, basetype.Uint16)
	ok, err := f.Read(stream.NewByteStream([]byte("abc\x00")), 4, basetype.String, binary.LittleEndian)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, basetype.String, f.Type)
	assert.Equal(t, "abc", f.Value(0))
}

func TestFieldReadStrings(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want []any
	}{
		{name: "single", data: []byte("run\x00\x00\x00"), want: []any{"run"}},
		{name: "array", data: []byte("a\x00bc\x00"), want: []any{"a", "bc"}},
		{name: "no terminator", data: []byte("abc"), want: []any{"abc"}},
		{name: "empty", data: []byte{0, 0}, want: []any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewField("name", 3, basetype.String)
			ok, err := f.Read(stream.NewByteStream(tt.data), uint8(len(tt.data)), basetype.String, binary.LittleEndian)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want) > 0, ok)
			assert.Equal(t, tt.want, f.Values())
		})
	}
}

func TestFieldReadUnderrun(t *testing.T) {
	f := NewField("x", 0, basetype.Uint32)
	_, err := f.Read(stream.NewByteStream([]byte{1, 2}), 4, basetype.Uint32, binary.LittleEndian)
	assert.ErrorIs(t, err, ErrStreamUnderrun)
}

func TestFieldWrite(t *testing.T) {
	f := NewField("x", 0, basetype.Uint16)
	require.NoError(t, f.AddValue(0x0102))
	require.NoError(t, f.AddValue(nil))

	assert.Equal(t, []byte{0x02, 0x01, 0xFF, 0xFF}, f.AppendTo(nil, binary.LittleEndian))
	assert.Equal(t, []byte{0x01, 0x02, 0xFF, 0xFF}, f.AppendTo(nil, binary.BigEndian))

	empty := NewField("s", 1, basetype.String)
	bs := stream.NewByteStream(nil)
	require.NoError(t, empty.Write(bs, binary.LittleEndian))
	assert.Equal(t, []byte{0x00}, bs.Bytes())
	assert.Equal(t, 1, empty.Size())
}

func TestFieldEqualIgnoresSubFields(t *testing.T) {
	a := NewField("data", 3, basetype.Uint32)
	require.NoError(t, a.SetValue(0, 7))
	b := a.Clone()
	b.SubFields = []SubField{{Name: "other"}}
	assert.True(t, a.Equal(b))

	require.NoError(t, b.SetValue(0, 8))
	assert.False(t, a.Equal(b))

	c := a.Clone()
	c.Units = "m"
	assert.False(t, a.Equal(c))
}

func TestFieldCloneIsIndependent(t *testing.T) {
	a := NewField("x", 0, basetype.Uint8)
	require.NoError(t, a.SetValue(0, 1))
	b := a.Clone()
	require.NoError(t, b.SetValue(0, 2))
	assert.Equal(t, uint8(1), a.Value(0))
}

func TestFieldSubFieldLookups(t *testing.T) {
	f := NewField("data", 3, basetype.Uint32)
	f.Units = "raw"
	f.SubFields = []SubField{{Name: "battery_level", Type: basetype.Uint16, Scale: 1000, Units: "V"}}
	sf := f.SubFieldByName("battery_level")
	require.NotNil(t, sf)

	assert.Equal(t, "battery_level", f.NameFor(sf))
	assert.Equal(t, basetype.Uint16, f.TypeFor(sf))
	assert.Equal(t, "V", f.UnitsFor(sf))
	assert.Equal(t, "data", f.NameFor(nil))
	assert.Nil(t, f.SubFieldByName("missing"))

	require.NoError(t, f.SetValueFor(0, 3.7, sf))
	assert.Equal(t, uint32(3700), f.RawValue(0))
	assert.InDelta(t, 3.7, f.ValueFor(0, sf), 1e-9)
}

func TestFieldString(t *testing.T) {
	f := NewField("speed", 6, basetype.Uint16)
	f.Scale, f.Units = 1000, "m/s"
	require.NoError(t, f.SetValue(0, 2.5))
	assert.Contains(t, f.String(), "speed")
	assert.Contains(t, f.String(), "2.5")
	assert.Contains(t, f.String(), "m/s")
}

package fit

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitkit/fit-go/pkg/crc16"
	"github.com/fitkit/fit-go/pkg/profile"
)

// shortFile builds a small activity-like file: file_id plus three records.
func shortFile(t *testing.T) []byte {
	t.Helper()
	mesgs := []*Mesg{newFileID(t)}
	for i := range 3 {
		r := newRecord(t)
		require.NoError(t, r.SetFieldValue(FieldNumTimestamp, uint32(1_000_000_000+i)))
		require.NoError(t, r.SetFieldValue(profile.RecordHeartRate, 120+i))
		require.NoError(t, r.SetFieldValue(profile.RecordPower, 200+i))
		mesgs = append(mesgs, r)
	}
	return encodeFile(t, DefaultEncoderConfig(), mesgs...)
}

// withCRC frames records as a file with a 14 byte header and trailing CRC.
func withCRC(records []byte) []byte {
	b := Header{Size: HeaderSize, ProtocolVersion: ProtocolVersion20, DataSize: uint32(len(records))}.AppendTo(nil)
	b = append(b, records...)
	return binary.LittleEndian.AppendUint16(b, crc16.Calculate(b))
}

func TestDecodeModeString(t *testing.T) {
	for _, mode := range []DecodeMode{DecodeModeNormal, DecodeModeSkipHeader, DecodeModeDataOnly} {
		parsed, err := ParseDecodeMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}
	_, err := ParseDecodeMode("sideways")
	assert.Error(t, err)
}

func TestIsFIT(t *testing.T) {
	file := shortFile(t)

	wrongSize := append([]byte(nil), file...)
	wrongSize[0] = 15
	wrongTag := append([]byte(nil), file...)
	wrongTag[9] = 'X'

	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{name: "empty", data: []byte{}, want: false},
		{name: "header size", data: wrongSize, want: false},
		{name: "too short", data: file[:HeaderSize+1], want: false},
		{name: "wrong tag", data: wrongTag, want: false},
		{name: "short file", data: file, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewDecoder(tt.data).IsFIT())
		})
	}
}

func TestCheckIntegrity(t *testing.T) {
	file := shortFile(t)
	assert.True(t, NewDecoder(file).CheckIntegrity())

	corrupt := append([]byte(nil), file...)
	corrupt[HeaderSize+3] ^= 0x01
	assert.False(t, NewDecoder(corrupt).CheckIntegrity())

	assert.False(t, NewDecoder(file[:len(file)-1]).CheckIntegrity())
	assert.False(t, NewDecoder(nil).CheckIntegrity())

	chained := append(append([]byte(nil), file...), file...)
	assert.True(t, NewDecoder(chained).CheckIntegrity())
}

func TestReadHeader(t *testing.T) {
	h, err := NewDecoder(shortFile(t)).ReadHeader()
	require.NoError(t, err)
	assert.Equal(t, uint8(HeaderSize), h.Size)
	want, err := profile.MustLoad().VersionNumber()
	require.NoError(t, err)
	assert.Equal(t, want, h.ProfileVersion)
}

func TestReadNormal(t *testing.T) {
	c := decodeFile(t, shortFile(t), DecodeModeNormal)

	mesgs := c.Mesgs()
	require.Len(t, mesgs, 4)
	assert.Equal(t, "file_id", mesgs[0].Name)
	for i, m := range mesgs {
		assert.Equal(t, i, m.Index())
	}
	assert.Equal(t, uint8(121), mesgs[2].FieldValue(profile.RecordHeartRate))
	assert.Equal(t, uint16(202), mesgs[3].FieldValue(profile.RecordPower))
	assert.Len(t, c.Definitions(), 2)
}

func TestReadNormalRejectsBadFiles(t *testing.T) {
	file := shortFile(t)

	badHeader := append([]byte(nil), file...)
	copy(badHeader[8:12], "JUNK")
	err := NewDecoder(badHeader).Read(DecodeModeNormal)
	assert.ErrorIs(t, err, ErrMalformedHeader)

	badCRC := append([]byte(nil), file...)
	badCRC[len(badCRC)-1] ^= 0xFF
	err = NewDecoder(badCRC).Read(DecodeModeNormal)
	assert.ErrorIs(t, err, ErrIntegrity)

	badHeaderCRC := append([]byte(nil), file...)
	badHeaderCRC[12] ^= 0xFF
	err = NewDecoder(badHeaderCRC).Read(DecodeModeNormal)
	assert.ErrorIs(t, err, ErrIntegrity)

	truncated := file[:len(file)-5]
	err = NewDecoder(truncated).Read(DecodeModeNormal)
	assert.ErrorIs(t, err, ErrStreamUnderrun)

	newer := withCRC(nil)
	newer[1] = 0x30
	err = NewDecoder(newer).Read(DecodeModeNormal)
	assert.ErrorIs(t, err, ErrMalformedHeader)
	assert.ErrorContains(t, err, "protocol version 3.0")
}

func TestReadSkipHeader(t *testing.T) {
	file := shortFile(t)
	corrupt := append([]byte(nil), file...)
	copy(corrupt[8:12], "JUNK")
	corrupt[len(corrupt)-1] ^= 0xFF

	require.Error(t, NewDecoder(corrupt).Read(DecodeModeNormal))
	c := decodeFile(t, corrupt, DecodeModeSkipHeader)
	assert.Len(t, c.Mesgs(), 4)
}

func TestReadSkipHeaderLegacy(t *testing.T) {
	cfg := DefaultEncoderConfig()
	cfg.HeaderSize = LegacyHeaderSize
	file := encodeFile(t, cfg, newFileID(t))
	require.Equal(t, byte(LegacyHeaderSize), file[0])

	c := decodeFile(t, file, DecodeModeSkipHeader)
	assert.Len(t, c.Mesgs(), 1)
}

func TestReadDataOnly(t *testing.T) {
	file := shortFile(t)

	err := NewDecoder(file).Read(DecodeModeDataOnly)
	assert.ErrorIs(t, err, ErrMalformedHeader)

	body := file[HeaderSize : len(file)-2]
	c := decodeFile(t, body, DecodeModeDataOnly)
	assert.Len(t, c.Mesgs(), 4)
}

func TestReadUnknownLocalDefinition(t *testing.T) {
	err := NewDecoder([]byte{0x03, 0x01}).Read(DecodeModeDataOnly)
	assert.ErrorIs(t, err, ErrUnknownLocalDefinition)
}

func TestReadMalformedArchitecture(t *testing.T) {
	records := []byte{0x40, 0x00, 0x02, 20, 0, 0}
	err := NewDecoder(records).Read(DecodeModeDataOnly)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestReadUnderrunInRecord(t *testing.T) {
	records := []byte{
		0x40, 0x00, 0x00, 20, 0, 1, 7, 2, 0x84, // power, uint16
		0x00, 0x10, // one byte short
	}
	err := NewDecoder(records).Read(DecodeModeDataOnly)
	assert.ErrorIs(t, err, ErrStreamUnderrun)
}

func TestReadCompressedTimestamp(t *testing.T) {
	records := []byte{
		// local 0: timestamp, heart_rate
		0x40, 0x00, 0x00, 20, 0, 2, 253, 4, 0x86, 3, 1, 0x02,
		0x00, 0xE8, 0x03, 0x00, 0x00, 100,
		// local 1: heart_rate only
		0x41, 0x00, 0x00, 20, 0, 1, 3, 1, 0x02,
		0x80 | 1<<5 | 10, 101,
		0x80 | 1<<5 | 3, 102,
	}
	c := decodeFile(t, withCRC(records), DecodeModeNormal)

	mesgs := c.Mesgs()
	require.Len(t, mesgs, 3)
	assert.Equal(t, uint32(1000), mesgs[0].FieldValue(FieldNumTimestamp))
	assert.Equal(t, uint32(1002), mesgs[1].FieldValue(FieldNumTimestamp))
	assert.Equal(t, uint32(1027), mesgs[2].FieldValue(FieldNumTimestamp))
	assert.Equal(t, uint8(102), mesgs[2].FieldValue(profile.RecordHeartRate))
	local, ok := mesgs[2].LocalNum()
	assert.True(t, ok)
	assert.Equal(t, uint8(1), local)
}

func TestReadBigEndianDefinition(t *testing.T) {
	records := []byte{
		0x40, 0x00, 0x01, 0, 20, 2, 7, 2, 0x84, 253, 4, 0x86,
		0x00, 0x01, 0x2C, 0x00, 0x00, 0x03, 0xE8,
	}
	c := decodeFile(t, records, DecodeModeDataOnly)
	require.Len(t, c.Mesgs(), 1)
	m := c.Mesgs()[0]
	assert.Equal(t, "record", m.Name)
	assert.Equal(t, uint16(300), m.FieldValue(profile.RecordPower))
	assert.Equal(t, uint32(1000), m.FieldValue(FieldNumTimestamp))
	assert.Equal(t, BigEndian, c.Definitions()[0].Endianness)
}

func TestReadUnknownMesgAndField(t *testing.T) {
	records := []byte{
		0x40, 0x00, 0x00, 0xE8, 0xFD, 2, 1, 2, 0x84, 2, 1, 0x77, // mesg 65000, unknown base type 0x77
		0x00, 0x34, 0x12, 0x05,
	}
	c := decodeFile(t, records, DecodeModeDataOnly)
	require.Len(t, c.Mesgs(), 1)
	m := c.Mesgs()[0]
	assert.Equal(t, UnknownName, m.Name)
	assert.Equal(t, uint16(65000), m.Num)
	assert.Equal(t, uint16(0x1234), m.FieldValue(1))
	assert.Equal(t, uint8(5), m.FieldValue(2))
	assert.Equal(t, UnknownName, m.Field(2).Name)
}

func TestReadDropsInvalidFields(t *testing.T) {
	records := []byte{
		0x40, 0x00, 0x00, 20, 0, 2, 3, 1, 0x02, 7, 2, 0x84,
		0x00, 0xFF, 0x10, 0x00,
	}
	c := decodeFile(t, records, DecodeModeDataOnly)
	m := c.Mesgs()[0]
	assert.False(t, m.HasField(profile.RecordHeartRate))
	assert.True(t, m.HasField(profile.RecordPower))
}

func TestReadChainedFiles(t *testing.T) {
	first := shortFile(t)
	second := encodeFile(t, DefaultEncoderConfig(), newFileID(t))
	chained := append(append([]byte(nil), first...), second...)

	c := decodeFile(t, chained, DecodeModeNormal)
	require.Len(t, c.Mesgs(), 5)
	assert.Equal(t, "file_id", c.Mesgs()[4].Name)
	assert.Equal(t, 4, c.Mesgs()[4].Index())
}

func TestReadResetsBetweenCalls(t *testing.T) {
	dec := NewDecoder(shortFile(t))
	var c MesgCollector
	dec.AddMesgListener(&c)

	require.NoError(t, dec.Read(DecodeModeNormal))
	require.NoError(t, dec.Read(DecodeModeNormal))
	require.Len(t, c.Mesgs(), 8)
	assert.Equal(t, 0, c.Mesgs()[4].Index())
}

func TestReadBroadcastsDefinitionBeforeData(t *testing.T) {
	dec := NewDecoder(shortFile(t))
	var events []string
	dec.AddMesgDefinitionListener(MesgDefinitionListenerFunc(func(d *MesgDefinition) {
		events = append(events, "def")
	}))
	dec.AddMesgListener(MesgListenerFunc(func(m *Mesg) {
		events = append(events, m.Name)
	}))
	require.NoError(t, dec.Read(DecodeModeNormal))
	assert.Equal(t, []string{"def", "file_id", "def", "record", "record", "record"}, events)
}

func TestReadWithoutExpansion(t *testing.T) {
	r := newRecord(t)
	require.NoError(t, r.SetFieldValue(profile.RecordSpeed, 3))
	file := encodeFile(t, DefaultEncoderConfig(), r)

	dec := NewDecoderWithConfig(file, DecoderConfig{DisableExpansion: true})
	var c MesgCollector
	dec.AddMesgListener(&c)
	require.NoError(t, dec.Read(DecodeModeNormal))
	assert.False(t, c.Mesgs()[0].HasField(profile.RecordEnhancedSpeed))

	c2 := decodeFile(t, file, DecodeModeNormal)
	assert.True(t, c2.Mesgs()[0].HasField(profile.RecordEnhancedSpeed))
}

func TestNewDecoderFromReader(t *testing.T) {
	dec, err := NewDecoderFromReader(bytes.NewReader(shortFile(t)), DecoderConfig{})
	require.NoError(t, err)
	assert.True(t, dec.CheckIntegrity())
}

func TestReadUndefinedDeveloperField(t *testing.T) {
	records := []byte{
		0x60, 0x00, 0x00, 20, 0, 1, 3, 1, 0x02, 1, 0, 2, 0, // dev field 0 of index 0, 2 bytes
		0x00, 90, 0xAB, 0xCD,
	}
	c := decodeFile(t, records, DecodeModeDataOnly)
	m := c.Mesgs()[0]
	df := m.DeveloperField(DeveloperDataKey{0, 0})
	require.NotNil(t, df)
	assert.Nil(t, df.Definition())
	assert.Equal(t, UnknownName, df.Name)
	assert.Equal(t, []any{uint8(0xAB), uint8(0xCD)}, df.RawValues())
}

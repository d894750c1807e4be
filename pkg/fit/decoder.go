package fit

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fitkit/fit-go/pkg/basetype"
	"github.com/fitkit/fit-go/pkg/crc16"
	"github.com/fitkit/fit-go/pkg/log"
	"github.com/fitkit/fit-go/pkg/profile"
	"github.com/fitkit/fit-go/pkg/stream"
)

// DecodeMode selects how much framing the decoder expects.
type DecodeMode uint8

const (
	// DecodeModeNormal requires a valid header and a matching file CRC.
	// Chained files are decoded one after another.
	DecodeModeNormal DecodeMode = iota

	// DecodeModeSkipHeader skips the header (14 bytes, or 12 when the first
	// byte says so) and ignores the trailing CRC.
	DecodeModeSkipHeader

	// DecodeModeDataOnly expects records only, with no header or CRC.
	DecodeModeDataOnly
)

// String returns the mode name.
func (m DecodeMode) String() string {
	switch m {
	case DecodeModeNormal:
		return "normal"
	case DecodeModeSkipHeader:
		return "skip-header"
	case DecodeModeDataOnly:
		return "data-only"
	default:
		return "unknown"
	}
}

// ParseDecodeMode parses a mode name as returned by DecodeMode.String.
func ParseDecodeMode(s string) (DecodeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return DecodeModeNormal, nil
	case "skip-header", "skipheader":
		return DecodeModeSkipHeader, nil
	case "data-only", "dataonly":
		return DecodeModeDataOnly, nil
	}
	return 0, fmt.Errorf("unknown decode mode %q", s)
}

// DecoderConfig holds decoder configuration.
type DecoderConfig struct {
	// Factory creates messages and fields. If nil, DefaultFactory is used.
	Factory Factory

	// Logger is used for operational logging. If nil, logging is disabled.
	Logger *slog.Logger

	// ProtocolLogger receives protocol events. If nil, no events are captured.
	ProtocolLogger log.Logger

	// SessionID tags protocol events. If empty, each Read generates one.
	SessionID string

	// Source names the input in protocol events, e.g. a file path.
	Source string

	// DisableExpansion skips component expansion.
	DisableExpansion bool
}

// Decoder parses a FIT byte stream and broadcasts what it finds.
// The whole stream is held in memory.
type Decoder struct {
	Broadcaster

	data           []byte
	factory        Factory
	logger         *slog.Logger
	protocolLogger log.Logger
	sessionID      string
	source         string
	expand         bool

	// session state, reset by Read
	accumulator   *Accumulator
	lookup        *DeveloperDataLookup
	localDefs     [MaxLocalMesgNum + 1]*MesgDefinition
	mesgIndex     int
	defCount      int
	lastTimestamp uint32
	offset        int
	plog          *protocolLog
}

// NewDecoder creates a decoder over data with default configuration.
// The buffer is not copied.
func NewDecoder(data []byte) *Decoder {
	return NewDecoderWithConfig(data, DecoderConfig{})
}

// NewDecoderWithConfig creates a decoder over data.
func NewDecoderWithConfig(data []byte, cfg DecoderConfig) *Decoder {
	d := &Decoder{
		data:           data,
		factory:        cfg.Factory,
		logger:         cfg.Logger,
		protocolLogger: cfg.ProtocolLogger,
		sessionID:      cfg.SessionID,
		source:         cfg.Source,
		expand:         !cfg.DisableExpansion,
		accumulator:    NewAccumulator(),
		lookup:         NewDeveloperDataLookup(),
	}
	if d.factory == nil {
		d.factory = DefaultFactory()
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	return d
}

// NewDecoderFromReader reads r to the end and decodes the result.
func NewDecoderFromReader(r io.Reader, cfg DecoderConfig) (*Decoder, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading FIT stream: %w", err)
	}
	return NewDecoderWithConfig(data, cfg), nil
}

// SetLogger sets the operational logger.
func (d *Decoder) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d.logger = logger
}

// SetProtocolLogger sets the protocol logger and session ID used by the
// next Read. An empty sessionID generates one per Read.
func (d *Decoder) SetProtocolLogger(logger log.Logger, sessionID string) {
	d.protocolLogger = logger
	d.sessionID = sessionID
}

// Accumulator returns the accumulator of the current session.
func (d *Decoder) Accumulator() *Accumulator { return d.accumulator }

// DeveloperDataLookup returns the developer data registry of the current
// session.
func (d *Decoder) DeveloperDataLookup() *DeveloperDataLookup { return d.lookup }

// IsFIT reports whether the stream starts with a plausible FIT header.
// It never fails.
func (d *Decoder) IsFIT() bool {
	_, err := ParseHeader(d.data)
	return err == nil
}

// ReadHeader parses the header at the start of the stream.
func (d *Decoder) ReadHeader() (Header, error) {
	return ParseHeader(d.data)
}

// CheckIntegrity reports whether the stream is a FIT file, or chain of
// files, whose CRCs all match.
func (d *Decoder) CheckIntegrity() bool {
	pos := 0
	for {
		h, err := ParseHeader(d.data[pos:])
		if err != nil {
			return false
		}
		if h.checkCRC(d.data[pos:]) != nil {
			return false
		}
		end := pos + int(h.Size) + int(h.DataSize)
		if end < pos || end+crcSize > len(d.data) {
			return false
		}
		if crc16.Calculate(d.data[pos:end]) != binary.LittleEndian.Uint16(d.data[end:]) {
			return false
		}
		pos = end + crcSize
		if pos == len(d.data) {
			return true
		}
	}
}

// Read decodes the stream, broadcasting every definition, message and
// developer field description. A malformed record aborts the read; messages
// are only broadcast once fully read.
func (d *Decoder) Read(mode DecodeMode) (err error) {
	d.reset()
	d.plog = newProtocolLog(d.protocolLogger, d.sessionID, d.source, log.DirectionDecode)
	d.plog.sessionStart(mode.String(), len(d.data))
	d.logger.Debug("decode started", "mode", mode.String(), "bytes", len(d.data), "source", d.source)

	defer func() {
		if err != nil {
			d.plog.failure(d.offset, err, "decode "+mode.String())
			d.logger.Warn("decode failed", "mode", mode.String(), "offset", d.offset, "error", err)
		} else {
			d.logger.Debug("decode complete", "mesgs", d.mesgIndex, "definitions", d.defCount)
		}
		d.plog.sessionEnd(d.offset, d.mesgIndex, d.defCount, err == nil)
	}()

	switch mode {
	case DecodeModeNormal:
		return d.readFiles()

	case DecodeModeSkipHeader:
		start := HeaderSize
		if len(d.data) > 0 && d.data[0] == LegacyHeaderSize {
			start = LegacyHeaderSize
		}
		end := len(d.data) - crcSize
		if end < start {
			return fmt.Errorf("%w: %d bytes cannot hold a header and CRC", ErrStreamUnderrun, len(d.data))
		}
		return d.readRecords(start, end)

	case DecodeModeDataOnly:
		if d.IsFIT() {
			return fmt.Errorf("%w: stream has a FIT header, decode it in normal mode", ErrMalformedHeader)
		}
		return d.readRecords(0, len(d.data))
	}
	return fmt.Errorf("unknown decode mode %d", mode)
}

func (d *Decoder) reset() {
	d.accumulator.Reset()
	d.lookup.Reset()
	d.localDefs = [MaxLocalMesgNum + 1]*MesgDefinition{}
	d.mesgIndex = 0
	d.defCount = 0
	d.lastTimestamp = 0
	d.offset = 0
}

// readFiles decodes one or more chained FIT files. Accumulation, developer
// data and local definitions start fresh with each file.
func (d *Decoder) readFiles() error {
	pos := 0
	for {
		d.offset = pos
		h, err := ParseHeader(d.data[pos:])
		if err != nil {
			return err
		}
		if err := h.checkProtocol(); err != nil {
			return err
		}
		if err := h.checkCRC(d.data[pos:]); err != nil {
			return err
		}
		d.plog.header(pos, h)

		start := pos + int(h.Size)
		end := start + int(h.DataSize)
		if end < start || end+crcSize > len(d.data) {
			return fmt.Errorf("%w: header declares %d data bytes, %d available",
				ErrStreamUnderrun, h.DataSize, len(d.data)-start-crcSize)
		}
		stored := binary.LittleEndian.Uint16(d.data[end:])
		if got := crc16.Calculate(d.data[pos:end]); got != stored {
			return fmt.Errorf("%w: file CRC 0x%04X, computed 0x%04X", ErrIntegrity, stored, got)
		}

		if pos > 0 {
			d.accumulator.Reset()
			d.lookup.Reset()
			d.localDefs = [MaxLocalMesgNum + 1]*MesgDefinition{}
			d.lastTimestamp = 0
			d.logger.Debug("chained file", "offset", pos)
		}
		if err := d.readRecords(start, end); err != nil {
			return err
		}

		pos = end + crcSize
		d.offset = pos
		if pos >= len(d.data) {
			return nil
		}
	}
}

// readRecords decodes the records in data[start:end].
func (d *Decoder) readRecords(start, end int) error {
	bs := stream.NewByteStream(d.data[:end])
	if err := bs.Seek(start); err != nil {
		return err
	}

	for bs.HasBytesAvailable() {
		offset := bs.Position()
		d.offset = offset

		header, err := bs.ReadByte()
		if err != nil {
			return err
		}
		switch {
		case header&recordHeaderCompressed != 0:
			local := (header >> compressedLocalShift) & compressedLocalMask
			ts := d.expandTimestamp(header & compressedTimeMask)
			err = d.readData(bs, offset, local, &ts)
		case header&recordHeaderDefinition != 0:
			err = d.readDefinition(bs, offset, header)
		default:
			err = d.readData(bs, offset, header&recordHeaderLocalMask, nil)
		}
		if err != nil {
			return fmt.Errorf("record at offset %d: %w", offset, err)
		}
	}
	d.offset = end
	return nil
}

// expandTimestamp applies a 5-bit compressed time offset to the last full
// timestamp, rolling over every 32 seconds.
func (d *Decoder) expandTimestamp(offset byte) uint32 {
	last := d.lastTimestamp
	ts := last&^compressedTimeMask + uint32(offset)
	if uint32(offset) < last&compressedTimeMask {
		ts += compressedTimeMask + 1
	}
	d.lastTimestamp = ts
	return ts
}

func (d *Decoder) readDefinition(bs *stream.ByteStream, offset int, header byte) error {
	def, err := readMesgDefinition(bs, header)
	if err != nil {
		return err
	}
	def.devDefs = make([]*DeveloperFieldDefinition, len(def.DevFields))
	for i, df := range def.DevFields {
		def.devDefs[i] = d.lookup.DeveloperFieldDefinition(df.Key(), df.Size)
	}

	d.localDefs[def.LocalNum] = def
	d.defCount++
	name := mesgName(d.factory, def.Num)
	d.logger.Debug("definition", "local", def.LocalNum, "mesg", name, "fields", len(def.Fields), "dev_fields", len(def.DevFields))
	d.plog.definition(offset, def, name)
	d.OnMesgDefinition(def)
	return nil
}

func (d *Decoder) readData(bs *stream.ByteStream, offset int, local uint8, ts *uint32) error {
	def := d.localDefs[local]
	if def == nil {
		return fmt.Errorf("%w: %d", ErrUnknownLocalDefinition, local)
	}

	m := d.factory.CreateMesg(def.Num)
	m.localNum, m.hasLocalNum = local, true
	order := def.Endianness.ByteOrder()

	for _, fd := range def.Fields {
		wireType := fd.Type
		if !wireType.Known() {
			wireType = basetype.Byte
		}
		f, known := d.factory.CreateField(def.Num, fd.Num)
		if !known {
			f.Type = wireType
		}
		ok, err := f.Read(bs, fd.Size, wireType, order)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if f.Accumulate {
			if bits, ok := basetype.Bits(f.RawValue(f.NumValues() - 1)); ok {
				d.accumulator.CreateAccumulatedField(def.Num, f.Num, bits)
			}
		}
		if f.Num == FieldNumTimestamp {
			if bits, ok := basetype.Bits(f.RawValue(0)); ok {
				d.lastTimestamp = uint32(bits)
			}
		}
		m.SetField(f)
	}

	for i, fd := range def.DevFields {
		var devDef *DeveloperFieldDefinition
		if i < len(def.devDefs) {
			devDef = def.devDefs[i]
		}
		if devDef == nil {
			devDef = d.lookup.DeveloperFieldDefinition(fd.Key(), fd.Size)
		}
		var df *DeveloperField
		if devDef != nil {
			df = NewDeveloperField(devDef)
		} else {
			df = newUndefinedDeveloperField(fd.Key())
		}
		ok, err := df.Read(bs, fd.Size, df.Type, order)
		if err != nil {
			return err
		}
		if ok {
			m.SetDeveloperField(df)
		}
	}

	if ts != nil {
		f, known := d.factory.CreateField(def.Num, FieldNumTimestamp)
		if !known {
			f.Name, f.Type = "timestamp", basetype.Uint32
		}
		if err := f.SetRawValue(0, *ts); err != nil {
			return err
		}
		m.SetField(f)
	}

	if d.expand {
		m.ExpandComponents(d.accumulator)
	}
	m.index = d.mesgIndex
	d.mesgIndex++

	switch m.Num {
	case profile.MesgNumDeveloperDataId:
		if err := d.lookup.AddDeveloperDataIDMesg(m); err != nil {
			return err
		}
	case profile.MesgNumFieldDescription:
		desc, err := d.lookup.AddFieldDescriptionMesg(m)
		if err != nil {
			return err
		}
		if desc != nil {
			d.plog.devField(offset, desc)
			d.OnDeveloperFieldDescription(desc)
		}
	}

	d.plog.mesg(offset, m, ts != nil)
	d.OnMesg(m)
	return nil
}

// mesgName asks the factory for a message name without building a message
// when it can.
func mesgName(f Factory, num uint16) string {
	if named, ok := f.(interface{ MesgName(uint16) string }); ok {
		return named.MesgName(num)
	}
	return f.CreateMesg(num).Name
}

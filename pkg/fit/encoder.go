package fit

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/fitkit/fit-go/pkg/crc16"
	"github.com/fitkit/fit-go/pkg/log"
	"github.com/fitkit/fit-go/pkg/stream"
	"github.com/fitkit/fit-go/pkg/version"
)

// EncoderConfig holds encoder configuration.
type EncoderConfig struct {
	// ProtocolVersion is written to the header.
	ProtocolVersion uint8

	// ProfileVersion is written to the header, e.g. 21158 for 21.158.
	ProfileVersion uint16

	// Endianness of every definition and data record.
	Endianness Endianness

	// HeaderSize is 12 or 14. Zero selects 14.
	HeaderSize uint8

	// Logger is used for operational logging. If nil, logging is disabled.
	Logger *slog.Logger

	// ProtocolLogger receives protocol events. If nil, no events are captured.
	ProtocolLogger log.Logger

	// SessionID tags protocol events. If empty, one is generated.
	SessionID string

	// Source names the output in protocol events.
	Source string
}

// DefaultEncoderConfig returns a little-endian protocol 2.0 configuration
// carrying the profile version of the default factory.
func DefaultEncoderConfig() EncoderConfig {
	cfg := EncoderConfig{
		ProtocolVersion: ProtocolVersion20,
		Endianness:      LittleEndian,
		HeaderSize:      HeaderSize,
	}
	if v, err := DefaultFactory().Profile().VersionNumber(); err == nil {
		cfg.ProfileVersion = v
	}
	return cfg
}

// Encoder serializes messages into a FIT file held in memory.
type Encoder struct {
	cfg    EncoderConfig
	logger *slog.Logger
	plog   *protocolLog

	buf *stream.ByteStream

	// definitions last written per local number and their last use
	localDefs [MaxLocalMesgNum + 1]*MesgDefinition
	lastUsed  [MaxLocalMesgNum + 1]uint64
	tick      uint64

	mesgCount int
	defCount  int
	closed    bool
	out       []byte
}

// NewEncoder creates an encoder with DefaultEncoderConfig.
func NewEncoder() *Encoder {
	e, _ := NewEncoderWithConfig(DefaultEncoderConfig())
	return e
}

// NewEncoderWithConfig creates an encoder. It fails if the header size is
// neither 12 nor 14, the endianness is unknown or the protocol version is
// newer than the one implemented.
func NewEncoderWithConfig(cfg EncoderConfig) (*Encoder, error) {
	if cfg.HeaderSize == 0 {
		cfg.HeaderSize = HeaderSize
	}
	if cfg.HeaderSize != HeaderSize && cfg.HeaderSize != LegacyHeaderSize {
		return nil, fmt.Errorf("%w: header size %d", ErrMalformedHeader, cfg.HeaderSize)
	}
	if cfg.Endianness > BigEndian {
		return nil, fmt.Errorf("unknown endianness %d", cfg.Endianness)
	}
	if cfg.ProtocolVersion == 0 {
		cfg.ProtocolVersion = ProtocolVersion20
	}
	if v := version.FromByte(cfg.ProtocolVersion); !version.CurrentProtocol().Supports(v) {
		return nil, fmt.Errorf("%w: protocol version %s", ErrMalformedHeader, v)
	}

	e := &Encoder{
		cfg:    cfg,
		logger: cfg.Logger,
		buf:    stream.NewByteStream(make([]byte, cfg.HeaderSize, 4096)),
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	e.plog = newProtocolLog(cfg.ProtocolLogger, cfg.SessionID, cfg.Source, log.DirectionEncode)
	e.plog.sessionStart("", 0)
	return e, nil
}

// SetLogger sets the operational logger.
func (e *Encoder) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e.logger = logger
}

// SetProtocolLogger sets the protocol logger for events that follow and
// opens a session on it. An empty sessionID generates one.
func (e *Encoder) SetProtocolLogger(logger log.Logger, sessionID string) {
	e.plog = newProtocolLog(logger, sessionID, e.cfg.Source, log.DirectionEncode)
	e.plog.sessionStart("", e.buf.Len())
}

// OnMesg appends m to the file, preceded by a definition record when the
// local number it lands on last described a different layout. The message
// is not modified; expansion-derived fields are not written.
func (e *Encoder) OnMesg(m *Mesg) error {
	if e.closed {
		return ErrEncoderClosed
	}

	mesg := m.Clone()
	mesg.RemoveExpandedFields()

	local, pinned := mesg.LocalNum()
	def, err := NewMesgDefinition(mesg, local, e.cfg.Endianness)
	if err != nil {
		e.fail(err, "definition for "+mesg.Name)
		return fmt.Errorf("encoding %s: %w", mesg.Name, err)
	}
	if !pinned {
		def.LocalNum = e.chooseLocal(def)
	}

	if !def.Equal(e.localDefs[def.LocalNum]) {
		offset := e.buf.Len()
		if _, err := e.buf.Write(def.AppendTo(nil)); err != nil {
			return err
		}
		e.localDefs[def.LocalNum] = def
		e.defCount++
		e.plog.definition(offset, def, mesg.Name)
		e.logger.Debug("definition written", "local", def.LocalNum, "mesg", mesg.Name, "fields", len(def.Fields))
	}
	e.tick++
	e.lastUsed[def.LocalNum] = e.tick

	offset := e.buf.Len()
	rec := e.appendData(make([]byte, 0, 1+def.DataSize()), mesg, def)
	if _, err := e.buf.Write(rec); err != nil {
		return err
	}

	mesg.localNum, mesg.hasLocalNum = def.LocalNum, true
	mesg.index = e.mesgCount
	e.mesgCount++
	e.plog.mesg(offset, mesg, false)
	return nil
}

// appendData appends the data record of m laid out by def.
func (e *Encoder) appendData(dst []byte, m *Mesg, def *MesgDefinition) []byte {
	order := def.Endianness.ByteOrder()
	dst = append(dst, def.LocalNum&recordHeaderLocalMask)
	for _, fd := range def.Fields {
		dst = m.Field(fd.Num).AppendTo(dst, order)
	}
	for _, fd := range def.DevFields {
		dst = m.DeveloperField(fd.Key()).AppendTo(dst, order)
	}
	return dst
}

// chooseLocal picks the local number for a message without one: a slot
// already holding the same layout, else the first unused slot, else the
// least recently used one.
func (e *Encoder) chooseLocal(def *MesgDefinition) uint8 {
	for i, d := range e.localDefs {
		if def.sameLayout(d) {
			return uint8(i)
		}
	}
	lru := 0
	for i, d := range e.localDefs {
		if d == nil {
			return uint8(i)
		}
		if e.lastUsed[i] < e.lastUsed[lru] {
			lru = i
		}
	}
	return uint8(lru)
}

// Write encodes each message in order, stopping at the first error.
func (e *Encoder) Write(mesgs []*Mesg) error {
	for _, m := range mesgs {
		if err := e.OnMesg(m); err != nil {
			return err
		}
	}
	return nil
}

// Close finalizes the header and appends the file CRC. It returns the
// complete file; later calls return the same bytes.
func (e *Encoder) Close() ([]byte, error) {
	if e.closed {
		return e.out, nil
	}

	dataSize := e.buf.Len() - int(e.cfg.HeaderSize)
	h := Header{
		Size:            e.cfg.HeaderSize,
		ProtocolVersion: e.cfg.ProtocolVersion,
		ProfileVersion:  e.cfg.ProfileVersion,
		DataSize:        uint32(dataSize),
		DataType:        DataType,
	}
	raw := e.buf.Bytes()
	copy(raw, h.AppendTo(make([]byte, 0, HeaderSize)))
	e.buf.WriteUint16(binary.LittleEndian, crc16.Calculate(raw))

	e.out = e.buf.Bytes()
	e.closed = true
	if h.Size == HeaderSize {
		h.CRC = binary.LittleEndian.Uint16(e.out[LegacyHeaderSize:HeaderSize])
	}
	e.plog.header(0, h)
	e.plog.sessionEnd(len(e.out), e.mesgCount, e.defCount, true)
	e.logger.Debug("encode complete", "bytes", len(e.out), "mesgs", e.mesgCount, "definitions", e.defCount)
	return e.out, nil
}

// WriteTo closes the encoder and writes the file to w.
func (e *Encoder) WriteTo(w io.Writer) (int64, error) {
	b, err := e.Close()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

func (e *Encoder) fail(err error, context string) {
	e.plog.failure(e.buf.Len(), err, context)
	e.logger.Warn("encode failed", "context", context, "error", err)
}

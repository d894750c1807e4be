package fit

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/fitkit/fit-go/pkg/log"
)

// protocolLog emits protocol events for one decode or encode session.
// A nil *protocolLog discards everything.
type protocolLog struct {
	logger    log.Logger
	sessionID string
	source    string
	direction log.Direction
}

func newProtocolLog(logger log.Logger, sessionID, source string, direction log.Direction) *protocolLog {
	if logger == nil {
		return nil
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &protocolLog{
		logger:    logger,
		sessionID: sessionID,
		source:    source,
		direction: direction,
	}
}

func (p *protocolLog) emit(category log.Category, offset int, ev log.Event) {
	if p == nil {
		return
	}
	ev.Timestamp = time.Now()
	ev.SessionID = p.sessionID
	ev.Direction = p.direction
	ev.Category = category
	ev.Offset = offset
	ev.Source = p.source
	p.logger.Log(ev)
}

func (p *protocolLog) sessionStart(mode string, size int) {
	p.emit(log.CategorySession, 0, log.Event{
		Session: &log.SessionEvent{State: log.SessionStart, Mode: mode, Bytes: size},
	})
}

func (p *protocolLog) sessionEnd(offset, mesgs, defs int, success bool) {
	p.emit(log.CategorySession, offset, log.Event{
		Session: &log.SessionEvent{
			State:       log.SessionEnd,
			Bytes:       offset,
			Messages:    mesgs,
			Definitions: defs,
			Success:     success,
		},
	})
}

func (p *protocolLog) header(offset int, h Header) {
	if p == nil {
		return
	}
	ev := &log.HeaderEvent{
		Size:            h.Size,
		ProtocolVersion: h.ProtocolVersion,
		ProfileVersion:  h.ProfileVersion,
		DataSize:        h.DataSize,
	}
	if h.Size == HeaderSize {
		crc := h.CRC
		ev.CRC = &crc
	}
	p.emit(log.CategoryHeader, offset, log.Event{Header: ev})
}

func (p *protocolLog) definition(offset int, d *MesgDefinition, name string) {
	if p == nil {
		return
	}
	ev := &log.DefinitionEvent{
		LocalMesgNum: d.LocalNum,
		MesgNum:      d.Num,
		MesgName:     name,
		BigEndian:    d.Endianness == BigEndian,
	}
	for _, f := range d.Fields {
		ev.Fields = append(ev.Fields, log.FieldDefEntry{Num: f.Num, Size: f.Size, BaseType: uint8(f.Type)})
	}
	for _, f := range d.DevFields {
		ev.DevFields = append(ev.DevFields, log.DevFieldDefEntry{
			Num:                f.Num,
			Size:               f.Size,
			DeveloperDataIndex: f.DeveloperDataIndex,
		})
	}
	p.emit(log.CategoryDefinition, offset, log.Event{Definition: ev})
}

func (p *protocolLog) mesg(offset int, m *Mesg, compressed bool) {
	if p == nil {
		return
	}
	ev := &log.MessageEvent{
		MesgNum:    m.Num,
		MesgName:   m.Name,
		Index:      m.index,
		Fields:     mesgValues(m),
		Compressed: compressed,
	}
	ev.LocalMesgNum, _ = m.LocalNum()
	if devs := m.DeveloperFields(); len(devs) > 0 {
		ev.DevFields = make(map[string]any, len(devs))
		for _, df := range devs {
			ev.DevFields[devFieldKey(df)] = eventValue(df.Values())
		}
	}
	p.emit(log.CategoryMessage, offset, log.Event{Message: ev})
}

func (p *protocolLog) devField(offset int, d *DeveloperFieldDescription) {
	p.emit(log.CategoryDevField, offset, log.Event{
		DevField: &log.DevFieldEvent{
			DeveloperDataIndex:    d.DeveloperDataIndex,
			FieldDefinitionNumber: d.FieldDefinitionNumber,
			FieldName:             d.FieldName,
			Units:                 d.Units,
			BaseType:              uint8(d.BaseType),
			ApplicationID:         d.ApplicationID,
		},
	})
}

func (p *protocolLog) failure(offset int, err error, context string) {
	p.emit(log.CategoryError, offset, log.Event{
		Error: &log.ErrorEventData{Message: err.Error(), Kind: errorKind(err), Context: context},
	})
}

// MesgValues maps field names to values. Active sub-fields supply the
// name; unknown fields are keyed by number. Arrays become slices.
func MesgValues(m *Mesg) map[string]any {
	return mesgValues(m)
}

func mesgValues(m *Mesg) map[string]any {
	out := make(map[string]any, m.NumFields())
	for _, f := range m.Fields() {
		sf := f.ActiveSubField(m)
		out[fieldKey(f, sf)] = eventValue(valuesFor(f, sf))
	}
	return out
}

func fieldKey(f *Field, sf *SubField) string {
	if f.Name == UnknownName {
		return UnknownName + "_" + strconv.Itoa(int(f.Num))
	}
	return f.NameFor(sf)
}

func devFieldKey(df *DeveloperField) string {
	if df.Name == "" || df.Name == UnknownName {
		return "dev_" + df.key.String()
	}
	return df.Name
}

func eventValue(values []any) any {
	if len(values) == 1 {
		return values[0]
	}
	return values
}

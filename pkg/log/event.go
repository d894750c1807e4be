package log

import (
	"time"
)

// Event represents a protocol log event captured during a decode or encode
// session. CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the decode/encode pass (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates whether bytes were parsed or produced.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Offset is the byte position in the FIT stream where the record starts.
	Offset int `cbor:"5,keyasint"`

	// Source names the file or stream, if known.
	Source string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Session    *SessionEvent    `cbor:"10,keyasint,omitempty"`
	Header     *HeaderEvent     `cbor:"11,keyasint,omitempty"`
	Definition *DefinitionEvent `cbor:"12,keyasint,omitempty"`
	Message    *MessageEvent    `cbor:"13,keyasint,omitempty"`
	DevField   *DevFieldEvent   `cbor:"14,keyasint,omitempty"`
	Error      *ErrorEventData  `cbor:"15,keyasint,omitempty"`
}

// Direction indicates which way bytes flow through the codec.
type Direction uint8

const (
	// DirectionDecode indicates bytes parsed into messages.
	DirectionDecode Direction = 0
	// DirectionEncode indicates messages serialized into bytes.
	DirectionEncode Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionDecode:
		return "DECODE"
	case DirectionEncode:
		return "ENCODE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategorySession indicates the start or end of a session.
	CategorySession Category = 0
	// CategoryHeader indicates a file header.
	CategoryHeader Category = 1
	// CategoryDefinition indicates a definition record.
	CategoryDefinition Category = 2
	// CategoryMessage indicates a data message.
	CategoryMessage Category = 3
	// CategoryDevField indicates a developer field description.
	CategoryDevField Category = 4
	// CategoryError indicates an error event.
	CategoryError Category = 5
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategorySession:
		return "SESSION"
	case CategoryHeader:
		return "HEADER"
	case CategoryDefinition:
		return "DEFINITION"
	case CategoryMessage:
		return "MESSAGE"
	case CategoryDevField:
		return "DEVFIELD"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// SessionState marks the boundaries of a session.
type SessionState uint8

const (
	// SessionStart is logged before the first byte is processed.
	SessionStart SessionState = 0
	// SessionEnd is logged after the last byte, successful or not.
	SessionEnd SessionState = 1
)

// String returns the session state name.
func (s SessionState) String() string {
	switch s {
	case SessionStart:
		return "START"
	case SessionEnd:
		return "END"
	default:
		return "UNKNOWN"
	}
}

// SessionEvent captures the start or end of a decode/encode pass.
type SessionEvent struct {
	// State is start or end.
	State SessionState `cbor:"1,keyasint"`

	// Mode is the decode mode name (decode sessions only).
	Mode string `cbor:"2,keyasint,omitempty"`

	// Bytes is the stream length at start, or bytes produced at end.
	Bytes int `cbor:"3,keyasint,omitempty"`

	// Messages is the number of data messages processed (end only).
	Messages int `cbor:"4,keyasint,omitempty"`

	// Definitions is the number of definition records processed (end only).
	Definitions int `cbor:"5,keyasint,omitempty"`

	// Success reports whether the session completed without error (end only).
	Success bool `cbor:"6,keyasint,omitempty"`
}

// HeaderEvent captures a FIT file header.
type HeaderEvent struct {
	Size            uint8  `cbor:"1,keyasint"`
	ProtocolVersion uint8  `cbor:"2,keyasint"`
	ProfileVersion  uint16 `cbor:"3,keyasint"`
	DataSize        uint32 `cbor:"4,keyasint"`

	// CRC is the header CRC; nil for 12 byte headers.
	CRC *uint16 `cbor:"5,keyasint,omitempty"`
}

// DefinitionEvent captures a definition record.
type DefinitionEvent struct {
	LocalMesgNum uint8              `cbor:"1,keyasint"`
	MesgNum      uint16             `cbor:"2,keyasint"`
	MesgName     string             `cbor:"3,keyasint,omitempty"`
	BigEndian    bool               `cbor:"4,keyasint,omitempty"`
	Fields       []FieldDefEntry    `cbor:"5,keyasint,omitempty"`
	DevFields    []DevFieldDefEntry `cbor:"6,keyasint,omitempty"`
}

// FieldDefEntry is one field descriptor of a definition record.
type FieldDefEntry struct {
	Num      uint8 `cbor:"1,keyasint"`
	Size     uint8 `cbor:"2,keyasint"`
	BaseType uint8 `cbor:"3,keyasint"`
}

// DevFieldDefEntry is one developer field descriptor of a definition record.
type DevFieldDefEntry struct {
	Num                uint8 `cbor:"1,keyasint"`
	Size               uint8 `cbor:"2,keyasint"`
	DeveloperDataIndex uint8 `cbor:"3,keyasint"`
}

// MessageEvent captures a data message.
type MessageEvent struct {
	MesgNum      uint16 `cbor:"1,keyasint"`
	MesgName     string `cbor:"2,keyasint,omitempty"`
	LocalMesgNum uint8  `cbor:"3,keyasint"`

	// Index is the position of the message among the session's data messages.
	Index int `cbor:"4,keyasint"`

	// Fields maps field names to profile values (CBOR-compatible).
	Fields map[string]any `cbor:"5,keyasint,omitempty"`

	// DevFields maps developer field names to values.
	DevFields map[string]any `cbor:"6,keyasint,omitempty"`

	// Compressed is set for messages that used a compressed timestamp header.
	Compressed bool `cbor:"7,keyasint,omitempty"`
}

// DevFieldEvent captures a developer field description once both the
// developer data ID and the field description are known.
type DevFieldEvent struct {
	DeveloperDataIndex    uint8  `cbor:"1,keyasint"`
	FieldDefinitionNumber uint8  `cbor:"2,keyasint"`
	FieldName             string `cbor:"3,keyasint,omitempty"`
	Units                 string `cbor:"4,keyasint,omitempty"`
	BaseType              uint8  `cbor:"5,keyasint"`
	ApplicationID         []byte `cbor:"6,keyasint,omitempty"`
}

// ErrorEventData captures the error that aborted a session.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Kind is a short classification, e.g. "integrity" or "underrun".
	Kind string `cbor:"2,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}

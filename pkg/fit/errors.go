package fit

import (
	"errors"
	"fmt"

	"github.com/fitkit/fit-go/pkg/basetype"
	"github.com/fitkit/fit-go/pkg/stream"
)

// Decode and encode errors.
var (
	// ErrMalformedHeader indicates a missing or invalid FIT file header.
	ErrMalformedHeader = errors.New("malformed FIT header")

	// ErrMalformedRecord indicates a record that cannot be parsed.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrIntegrity indicates a header or file CRC mismatch.
	ErrIntegrity = errors.New("FIT integrity check failed")

	// ErrStreamUnderrun indicates a record extends past the available data.
	ErrStreamUnderrun = stream.ErrStreamUnderrun

	// ErrUnknownLocalDefinition indicates a data record whose local message
	// number has no preceding definition.
	ErrUnknownLocalDefinition = errors.New("no definition for local message number")

	// ErrUnsupportedValueType indicates a value that no base type can hold.
	ErrUnsupportedValueType = basetype.ErrUnsupportedValueType

	// ErrInvalidDeveloperIndex indicates a developer data message without a
	// usable developer data index.
	ErrInvalidDeveloperIndex = errors.New("invalid developer data index")

	// ErrSizeOverflow indicates a field grew beyond 255 bytes.
	// Returned wrapped in a *SizeOverflowError.
	ErrSizeOverflow = errors.New("field size overflow")

	// ErrInvalidLocalMesgNum indicates a local message number above 15.
	ErrInvalidLocalMesgNum = errors.New("local message number out of range")

	// ErrEncoderClosed indicates a write after Close.
	ErrEncoderClosed = errors.New("encoder closed")
)

// SizeOverflowError reports the wire size a field would have reached.
type SizeOverflowError struct {
	Size int
}

func (e *SizeOverflowError) Error() string {
	return fmt.Sprintf("%s: %d bytes exceeds %d", ErrSizeOverflow, e.Size, MaxFieldSize)
}

func (e *SizeOverflowError) Unwrap() error {
	return ErrSizeOverflow
}

// errorKind classifies an error for protocol log events.
func errorKind(err error) string {
	var overflow *SizeOverflowError
	switch {
	case errors.Is(err, ErrIntegrity):
		return "integrity"
	case errors.Is(err, ErrMalformedHeader):
		return "header"
	case errors.Is(err, ErrMalformedRecord):
		return "record"
	case errors.Is(err, ErrStreamUnderrun):
		return "underrun"
	case errors.Is(err, ErrUnknownLocalDefinition):
		return "definition"
	case errors.Is(err, ErrInvalidDeveloperIndex):
		return "developer"
	case errors.As(err, &overflow):
		return "overflow"
	case errors.Is(err, ErrUnsupportedValueType):
		return "value"
	default:
		return "other"
	}
}

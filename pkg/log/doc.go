// Package log provides structured protocol logging for FIT decode and
// encode sessions.
//
// This package defines the Logger interface and Event types for capturing
// codec-level events: file headers, definition records, data messages,
// developer field descriptions and errors. It is separate from operational
// logging (slog); protocol capture provides a complete machine-readable trace
// of how a file was parsed or produced.
//
// # Basic Usage
//
// Decoders and encoders accept a Logger:
//
//	// For development: log to console via slog
//	dec := fit.NewDecoder(data, fit.WithProtocolLogger(log.NewSlogAdapter(slog.Default()), ""))
//
//	// For offline analysis: write to binary file
//	fl, _ := log.NewFileLogger("/tmp/activity.flog")
//	dec := fit.NewDecoder(data, fit.WithProtocolLogger(fl, ""))
//
//	// Both: use MultiLogger
//	logger := log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # Event Types
//
// Every event carries the session ID, the direction (decode or encode) and
// the byte offset in the FIT stream. One of the payload pointers is set:
//   - Session: start and end of a decode/encode pass (SessionEvent)
//   - Header: the file header (HeaderEvent)
//   - Definition: a definition record (DefinitionEvent)
//   - Message: a data message (MessageEvent)
//   - DevField: a resolved developer field description (DevFieldEvent)
//   - Error: the error that aborted a session (ErrorEventData)
//
// # File Format
//
// Log files use CBOR encoding with the .flog extension. The fit-tool CLI
// provides viewing and statistics for them.
package log

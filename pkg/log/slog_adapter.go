package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger at Debug level.
// Useful for watching a decode in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("category", event.Category.String()),
		slog.Int("offset", event.Offset),
	}
	if event.Source != "" {
		attrs = append(attrs, slog.String("source", event.Source))
	}

	switch {
	case event.Session != nil:
		attrs = append(attrs, slog.String("state", event.Session.State.String()))
		if event.Session.Mode != "" {
			attrs = append(attrs, slog.String("mode", event.Session.Mode))
		}
		if event.Session.State == SessionEnd {
			attrs = append(attrs,
				slog.Int("messages", event.Session.Messages),
				slog.Int("definitions", event.Session.Definitions),
				slog.Bool("success", event.Session.Success),
			)
		}
	case event.Header != nil:
		attrs = append(attrs,
			slog.Int("header_size", int(event.Header.Size)),
			slog.Int("protocol_version", int(event.Header.ProtocolVersion)),
			slog.Int("profile_version", int(event.Header.ProfileVersion)),
			slog.Uint64("data_size", uint64(event.Header.DataSize)),
		)
	case event.Definition != nil:
		attrs = append(attrs,
			slog.Int("local", int(event.Definition.LocalMesgNum)),
			slog.Int("mesg_num", int(event.Definition.MesgNum)),
			slog.String("mesg", event.Definition.MesgName),
			slog.Int("fields", len(event.Definition.Fields)),
			slog.Int("dev_fields", len(event.Definition.DevFields)),
		)
	case event.Message != nil:
		attrs = append(attrs,
			slog.Int("local", int(event.Message.LocalMesgNum)),
			slog.Int("mesg_num", int(event.Message.MesgNum)),
			slog.String("mesg", event.Message.MesgName),
			slog.Int("index", event.Message.Index),
			slog.Int("fields", len(event.Message.Fields)),
		)
	case event.DevField != nil:
		attrs = append(attrs,
			slog.Int("dev_index", int(event.DevField.DeveloperDataIndex)),
			slog.Int("field_num", int(event.DevField.FieldDefinitionNumber)),
			slog.String("field_name", event.DevField.FieldName),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_kind", event.Error.Kind),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "fit", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)

package log

// Logger receives the protocol events of FIT decode and encode sessions:
// one event per header, definition record, data message and developer
// field description, framed by session start and end events.
//
// A fit.Decoder or fit.Encoder calls Log synchronously from Read or OnMesg,
// so implementations must return quickly and be safe for concurrent use when
// shared between codecs. A nil Logger in a codec config disables capture.
type Logger interface {
	Log(event Event)
}

// LoggerFunc adapts a plain function to Logger.
type LoggerFunc func(event Event)

// Log calls f(event).
func (f LoggerFunc) Log(event Event) { f(event) }

// NoopLogger drops every event. The zero value is ready to use.
type NoopLogger struct{}

func (NoopLogger) Log(Event) {}

var (
	_ Logger = NoopLogger{}
	_ Logger = LoggerFunc(nil)
)

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fitkit/fit-go/pkg/fit"
)

// DecodeOptions configures the decode command.
type DecodeOptions struct {
	Mode   fit.DecodeMode
	Expand bool

	// Definitions includes definition records in the listing.
	Definitions bool
}

// RunDecode prints the file's records in the order they are decoded.
func (e *Env) RunDecode(path string, opts DecodeOptions, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read FIT file: %w", err)
	}
	dec := e.newDecoder(path, data, opts.Expand)

	if opts.Mode == fit.DecodeModeNormal {
		if h, err := dec.ReadHeader(); err == nil {
			fmt.Fprintf(w, "header %s\n", formatHeader(h))
		}
	}
	if opts.Definitions {
		dec.AddMesgDefinitionListener(fit.MesgDefinitionListenerFunc(func(d *fit.MesgDefinition) {
			fmt.Fprintln(w, d.String())
		}))
	}
	dec.AddDeveloperFieldDescriptionListener(fit.DeveloperFieldDescriptionListenerFunc(func(d *fit.DeveloperFieldDescription) {
		fmt.Fprintf(w, "devfield %s\n", formatDescription(d))
	}))
	dec.AddMesgListener(fit.MesgListenerFunc(func(m *fit.Mesg) {
		fmt.Fprintf(w, "[%d] %s\n", m.Index(), m.String())
	}))

	if err := dec.Read(opts.Mode); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	return nil
}

func formatDescription(d *fit.DeveloperFieldDescription) string {
	s := fmt.Sprintf("%d:%d %s (%s", d.DeveloperDataIndex, d.FieldDefinitionNumber, d.FieldName, d.BaseType)
	if d.Units != "" {
		s += ", " + d.Units
	}
	if d.Scale != 1 || d.Offset != 0 {
		s += fmt.Sprintf(", scale %g offset %g", d.Scale, d.Offset)
	}
	s += ")"
	if len(d.ApplicationID) > 0 {
		s += fmt.Sprintf(" app %x", d.ApplicationID)
	}
	return s
}

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fitkit/fit-go/pkg/fit"
)

// File is a decoded FIT file.
type File struct {
	Path string
	Data []byte

	// Header is the first file header; HasHeader is false for data-only
	// streams.
	Header    fit.Header
	HasHeader bool

	Mode fit.DecodeMode

	*fit.MesgCollector
}

// Decode reads and decodes the file at path. Definitions, messages and
// developer field descriptions are collected in broadcast order. On a decode
// error the partially filled File is returned with the error.
func (e *Env) Decode(path string, mode fit.DecodeMode, expand bool) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read FIT file: %w", err)
	}
	dec := e.newDecoder(path, data, expand)

	file := &File{Path: path, Data: data, Mode: mode, MesgCollector: &fit.MesgCollector{}}
	dec.AddMesgDefinitionListener(file)
	dec.AddMesgListener(file)
	dec.AddDeveloperFieldDescriptionListener(file)

	if mode != fit.DecodeModeDataOnly {
		if h, err := dec.ReadHeader(); err == nil {
			file.Header, file.HasHeader = h, true
		}
	}
	if err := dec.Read(mode); err != nil {
		return file, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	e.Logger.Info("decoded", "file", path, "mode", mode.String(), "mesgs", len(file.Mesgs()))
	return file, nil
}

func (e *Env) newDecoder(path string, data []byte, expand bool) *fit.Decoder {
	return fit.NewDecoderWithConfig(data, fit.DecoderConfig{
		Logger:           e.Logger,
		ProtocolLogger:   e.Protocol,
		Source:           filepath.Base(path),
		DisableExpansion: !expand,
	})
}

package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fitkit/fit-go/pkg/fit"
	"github.com/fitkit/fit-go/pkg/version"
)

// CheckResult is the outcome of checking a file.
type CheckResult struct {
	Size      int
	IsFIT     bool
	Integrity bool
	Header    fit.Header
}

// OK reports whether the file is a FIT file with valid CRCs.
func (r CheckResult) OK() bool { return r.IsFIT && r.Integrity }

// RunCheck checks whether the file at path is a FIT file and whether its
// CRCs match, and prints a summary.
func (e *Env) RunCheck(path string, w io.Writer) (CheckResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CheckResult{}, fmt.Errorf("failed to read FIT file: %w", err)
	}

	dec := e.newDecoder(path, data, true)
	res := CheckResult{Size: len(data), IsFIT: dec.IsFIT()}
	if res.IsFIT {
		res.Header, _ = dec.ReadHeader()
		res.Integrity = dec.CheckIntegrity()
	}
	e.Logger.Debug("checked", "file", path, "fit", res.IsFIT, "integrity", res.Integrity)

	fmt.Fprintf(w, "File:      %s (%d bytes)\n", filepath.Base(path), res.Size)
	fmt.Fprintf(w, "FIT:       %s\n", yesNo(res.IsFIT))
	if res.IsFIT {
		fmt.Fprintf(w, "Header:    %s\n", formatHeader(res.Header))
		fmt.Fprintf(w, "Integrity: %s\n", okFailed(res.Integrity))
	}
	return res, nil
}

func formatHeader(h fit.Header) string {
	s := fmt.Sprintf("%d bytes, protocol %s, profile %s, data %d bytes",
		h.Size, version.FromByte(h.ProtocolVersion), version.ProfileFromNumber(h.ProfileVersion), h.DataSize)
	if h.Size == fit.HeaderSize {
		if h.CRC == 0 {
			s += ", no header CRC"
		} else {
			s += fmt.Sprintf(", header CRC 0x%04X", h.CRC)
		}
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func okFailed(b bool) string {
	if b {
		return "ok"
	}
	return "FAILED"
}

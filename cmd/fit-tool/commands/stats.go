package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/fitkit/fit-go/pkg/fit"
)

// Stats holds aggregate statistics about a decoded file.
type Stats struct {
	Bytes       int
	Mesgs       int
	Definitions int
	DevFields   int

	// MesgCounts maps message names to their number of occurrences.
	MesgCounts map[string]int

	TimeRange struct {
		Start time.Time
		End   time.Time
	}

	// Fingerprint is the BLAKE2b-256 digest of the file bytes, usable as a
	// duplicate-import key.
	Fingerprint string
}

// ComputeStats aggregates the decoded file.
func ComputeStats(file *File) Stats {
	sum := blake2b.Sum256(file.Data)
	stats := Stats{
		Bytes:       len(file.Data),
		Mesgs:       len(file.Mesgs()),
		Definitions: len(file.Definitions()),
		DevFields:   len(file.DeveloperFieldDescriptions()),
		MesgCounts:  make(map[string]int),
		Fingerprint: hex.EncodeToString(sum[:]),
	}
	for _, m := range file.Mesgs() {
		stats.MesgCounts[m.Name]++

		ts, ok := m.Timestamp()
		if !ok {
			continue
		}
		if stats.TimeRange.Start.IsZero() || ts.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = ts
		}
		if ts.After(stats.TimeRange.End) {
			stats.TimeRange.End = ts
		}
	}
	return stats
}

// RunStats decodes the file and prints statistics.
func (e *Env) RunStats(path string, mode fit.DecodeMode, w io.Writer) error {
	file, err := e.Decode(path, mode, true)
	if err != nil {
		return err
	}
	printStats(w, ComputeStats(file))
	return nil
}

func printStats(w io.Writer, stats Stats) {
	fmt.Fprintln(w, "=== FIT File Statistics ===")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Size:        %d bytes\n", stats.Bytes)
	fmt.Fprintf(w, "Fingerprint: %s\n", stats.Fingerprint)
	fmt.Fprintln(w)

	if !stats.TimeRange.Start.IsZero() {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Messages:    %d\n", stats.Mesgs)
	fmt.Fprintf(w, "Definitions: %d\n", stats.Definitions)
	if stats.DevFields > 0 {
		fmt.Fprintf(w, "Developer fields: %d\n", stats.DevFields)
	}
	fmt.Fprintln(w)

	names := make([]string, 0, len(stats.MesgCounts))
	for name := range stats.MesgCounts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := stats.MesgCounts[names[i]], stats.MesgCounts[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})

	fmt.Fprintln(w, "Messages by Type:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-20s %d\n", name+":", stats.MesgCounts[name])
	}
}

package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fitkit/fit-go/pkg/log"
)

// LogFilterOptions holds the textual filter flags shared by the log
// subcommands.
type LogFilterOptions struct {
	SessionID string
	Direction string
	Category  string
	MesgNum   string
	TimeStart string
	TimeEnd   string
}

// Filter parses the options into a log.Filter.
func (o LogFilterOptions) Filter() (log.Filter, error) {
	filter := log.Filter{SessionID: o.SessionID}

	if o.Direction != "" {
		d, err := ParseDirection(o.Direction)
		if err != nil {
			return filter, err
		}
		filter.Direction = &d
	}
	if o.Category != "" {
		c, err := ParseCategory(o.Category)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}
	if o.MesgNum != "" {
		n, err := strconv.ParseUint(o.MesgNum, 10, 16)
		if err != nil {
			return filter, fmt.Errorf("invalid mesg number %q", o.MesgNum)
		}
		num := uint16(n)
		filter.MesgNum = &num
	}
	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return filter, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}
	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return filter, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}
	return filter, nil
}

// ParseDirection parses "decode" or "encode".
func ParseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "decode", "dec":
		return log.DirectionDecode, nil
	case "encode", "enc":
		return log.DirectionEncode, nil
	}
	return 0, fmt.Errorf("invalid direction: %s (use: decode, encode)", s)
}

// ParseCategory parses an event category name.
func ParseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "session":
		return log.CategorySession, nil
	case "header":
		return log.CategoryHeader, nil
	case "definition", "def":
		return log.CategoryDefinition, nil
	case "message", "mesg":
		return log.CategoryMessage, nil
	case "devfield":
		return log.CategoryDevField, nil
	case "error":
		return log.CategoryError, nil
	}
	return 0, fmt.Errorf("invalid category: %s (use: session, header, definition, message, devfield, error)", s)
}

// eachEvent calls fn for every event of the log at path that matches filter.
func eachEvent(path string, filter log.Filter, fn func(log.Event)) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		fn(event)
	}
}

// RunLogView prints the matching events of a protocol log.
func RunLogView(path string, filter log.Filter, w io.Writer) error {
	return eachEvent(path, filter, func(ev log.Event) {
		formatEvent(w, ev)
	})
}

// RunLogFilter copies the matching events of a protocol log to output and
// returns how many were written.
func RunLogFilter(path string, filter log.Filter, output string) (int, error) {
	logger, err := log.NewFileLogger(output)
	if err != nil {
		return 0, fmt.Errorf("failed to create output logger: %w", err)
	}
	defer logger.Close()

	count := 0
	err = eachEvent(path, filter, func(ev log.Event) {
		logger.Log(ev)
		count++
	})
	return count, err
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, ev log.Event) {
	ts := ev.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [sess:%s] %s %s @%d", ts, shortenID(ev.SessionID), ev.Direction, ev.Category, ev.Offset)
	if ev.Source != "" {
		fmt.Fprintf(w, " %s", ev.Source)
	}
	fmt.Fprintln(w)

	switch {
	case ev.Session != nil:
		s := ev.Session
		fmt.Fprintf(w, "  %s", s.State)
		if s.Mode != "" {
			fmt.Fprintf(w, " mode=%s", s.Mode)
		}
		fmt.Fprintf(w, " bytes=%d", s.Bytes)
		if s.State == log.SessionEnd {
			fmt.Fprintf(w, " mesgs=%d defs=%d success=%t", s.Messages, s.Definitions, s.Success)
		}
		fmt.Fprintln(w)
	case ev.Header != nil:
		h := ev.Header
		fmt.Fprintf(w, "  size=%d protocol=0x%02X profile=%d data=%d", h.Size, h.ProtocolVersion, h.ProfileVersion, h.DataSize)
		if h.CRC != nil {
			fmt.Fprintf(w, " crc=0x%04X", *h.CRC)
		}
		fmt.Fprintln(w)
	case ev.Definition != nil:
		d := ev.Definition
		fmt.Fprintf(w, "  local=%d %s(%d) fields=%d dev_fields=%d", d.LocalMesgNum, d.MesgName, d.MesgNum, len(d.Fields), len(d.DevFields))
		if d.BigEndian {
			fmt.Fprint(w, " big-endian")
		}
		fmt.Fprintln(w)
	case ev.Message != nil:
		m := ev.Message
		fmt.Fprintf(w, "  [%d] %s(%d) local=%d", m.Index, m.MesgName, m.MesgNum, m.LocalMesgNum)
		if m.Compressed {
			fmt.Fprint(w, " compressed")
		}
		fmt.Fprintln(w)
		formatValues(w, m.Fields)
		formatValues(w, m.DevFields)
	case ev.DevField != nil:
		d := ev.DevField
		fmt.Fprintf(w, "  %d:%d %s base_type=0x%02X", d.DeveloperDataIndex, d.FieldDefinitionNumber, d.FieldName, d.BaseType)
		if d.Units != "" {
			fmt.Fprintf(w, " units=%s", d.Units)
		}
		fmt.Fprintln(w)
	case ev.Error != nil:
		fmt.Fprintf(w, "  Error: %s\n", ev.Error.Message)
		if ev.Error.Kind != "" {
			fmt.Fprintf(w, "  Kind: %s\n", ev.Error.Kind)
		}
		if ev.Error.Context != "" {
			fmt.Fprintf(w, "  Context: %s\n", ev.Error.Context)
		}
	}
}

func formatValues(w io.Writer, values map[string]any) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "    %s: %v\n", k, values[k])
	}
}

// shortenID returns the first 8 characters of a session ID.
func shortenID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// LogStats holds aggregate statistics about a protocol log.
type LogStats struct {
	TotalEvents       int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Sessions          map[string]*SessionStats
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for one decode or encode session.
type SessionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Source    string
	Direction log.Direction
	Messages  int
	Success   *bool
}

// RunLogStats analyzes the protocol log and prints statistics.
func RunLogStats(path string, w io.Writer) error {
	stats := &LogStats{
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Sessions:          make(map[string]*SessionStats),
	}

	err := eachEvent(path, log.Filter{}, func(ev log.Event) {
		stats.TotalEvents++
		stats.EventsByCategory[ev.Category]++
		stats.EventsByDirection[ev.Direction]++

		if stats.TimeRange.Start.IsZero() || ev.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = ev.Timestamp
		}
		if ev.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = ev.Timestamp
		}

		sess, ok := stats.Sessions[ev.SessionID]
		if !ok {
			sess = &SessionStats{FirstSeen: ev.Timestamp, LastSeen: ev.Timestamp, Direction: ev.Direction}
			stats.Sessions[ev.SessionID] = sess
		}
		sess.Events++
		if ev.Timestamp.After(sess.LastSeen) {
			sess.LastSeen = ev.Timestamp
		}
		if ev.Source != "" && sess.Source == "" {
			sess.Source = ev.Source
		}
		if ev.Message != nil {
			sess.Messages++
		}
		if ev.Session != nil && ev.Session.State == log.SessionEnd {
			success := ev.Session.Success
			sess.Success = &success
		}
		if ev.Error != nil {
			stats.Errors++
		}
	})
	if err != nil {
		return err
	}

	printLogStats(w, stats)
	return nil
}

func printLogStats(w io.Writer, stats *LogStats) {
	fmt.Fprintln(w, "=== FIT Protocol Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{
		log.CategorySession, log.CategoryHeader, log.CategoryDefinition,
		log.CategoryMessage, log.CategoryDevField, log.CategoryError,
	} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionDecode, log.DirectionEncode} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		type sessionInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessionInfo, 0, len(stats.Sessions))
		for id, s := range stats.Sessions {
			sessions = append(sessions, sessionInfo{id, s})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, s := range sessions {
			fmt.Fprintf(w, "  [%s] %s %d events, %d messages", shortenID(s.id), s.stats.Direction, s.stats.Events, s.stats.Messages)
			if s.stats.Success != nil {
				fmt.Fprintf(w, ", %s", okFailed(*s.stats.Success))
			}
			fmt.Fprintln(w)
			if s.stats.Source != "" {
				fmt.Fprintf(w, "           Source: %s\n", s.stats.Source)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}

package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/fitkit/fit-go/pkg/fit"
)

// Shell is an interactive explorer over a decoded file.
type Shell struct {
	file *File
}

// NewShell creates a shell over file.
func NewShell(file *File) *Shell {
	return &Shell{file: file}
}

// Run reads commands with readline until quit, EOF or interrupt on an
// empty line.
func (s *Shell) Run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "fit> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("list"),
			readline.PcItem("show"),
			readline.PcItem("defs"),
			readline.PcItem("devfields"),
			readline.PcItem("find"),
			readline.PcItem("header"),
			readline.PcItem("stats"),
			readline.PcItem("help"),
			readline.PcItem("quit"),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	s.printHelp(rl.Stdout())
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) && line != "" {
				continue
			}
			return nil
		}
		if !s.Exec(line, rl.Stdout()) {
			return nil
		}
	}
}

// Exec runs one command line and reports whether the shell should keep
// going.
func (s *Shell) Exec(line string, w io.Writer) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp(w)
	case "list", "ls", "l":
		s.cmdList(args, w)
	case "show", "s":
		s.cmdShow(args, w)
	case "defs":
		for _, d := range s.file.Definitions() {
			fmt.Fprintln(w, d.String())
		}
	case "devfields":
		descs := s.file.DeveloperFieldDescriptions()
		if len(descs) == 0 {
			fmt.Fprintln(w, "no developer fields")
		}
		for _, d := range descs {
			fmt.Fprintln(w, formatDescription(d))
		}
	case "find", "f":
		s.cmdFind(args, w)
	case "header":
		if !s.file.HasHeader {
			fmt.Fprintln(w, "no header")
			break
		}
		fmt.Fprintln(w, formatHeader(s.file.Header))
	case "stats":
		printStats(w, ComputeStats(s.file))
	case "quit", "exit", "q":
		return false
	default:
		fmt.Fprintf(w, "unknown command: %s (type 'help')\n", cmd)
	}
	return true
}

func (s *Shell) printHelp(w io.Writer) {
	fmt.Fprintf(w, `%s: %d messages, %d definitions

Commands:
  list [n]           List messages, optionally only the first n
  show <index>       Show all fields of a message
  defs               List definition records
  devfields          List developer field descriptions
  find <mesg>        List messages by name or global number
  header             Show the file header
  stats              Show file statistics
  help               Show this help
  quit               Exit
`, s.file.Path, len(s.file.Mesgs()), len(s.file.Definitions()))
}

func (s *Shell) cmdList(args []string, w io.Writer) {
	mesgs := s.file.Mesgs()
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			fmt.Fprintf(w, "invalid count: %s\n", args[0])
			return
		}
		if n < len(mesgs) {
			mesgs = mesgs[:n]
		}
	}
	for _, m := range mesgs {
		listLine(w, m)
	}
}

func (s *Shell) cmdShow(args []string, w io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(w, "usage: show <index>")
		return
	}
	i, err := strconv.Atoi(args[0])
	mesgs := s.file.Mesgs()
	if err != nil || i < 0 || i >= len(mesgs) {
		fmt.Fprintf(w, "no message at index %s\n", args[0])
		return
	}
	m := mesgs[i]
	local, _ := m.LocalNum()
	fmt.Fprintf(w, "[%d] %s(%d) local=%d\n", m.Index(), m.Name, m.Num, local)
	if ts, ok := m.Timestamp(); ok {
		fmt.Fprintf(w, "  time: %s\n", ts.Format("2006-01-02T15:04:05Z"))
	}
	for _, f := range m.Fields() {
		sf := f.ActiveSubField(m)
		values := make([]any, f.NumValues())
		for j := range values {
			values[j] = f.ValueFor(j, sf)
		}
		marker := ""
		if f.IsExpanded() {
			marker = " (expanded)"
		}
		fmt.Fprintf(w, "  %3d %-28s %s %s%s\n", f.Num, fieldName(f, sf), csvValue(values), f.UnitsFor(sf), marker)
	}
	for _, df := range m.DeveloperFields() {
		fmt.Fprintf(w, "  dev %-24s %s %s\n", devFieldName(df), csvValue(df.Values()), df.Units)
	}
}

func (s *Shell) cmdFind(args []string, w io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(w, "usage: find <mesg name or number>")
		return
	}
	query := strings.ToLower(args[0])
	num, numErr := strconv.ParseUint(query, 10, 16)

	found := 0
	for _, m := range s.file.Mesgs() {
		if m.Name == query || (numErr == nil && uint64(m.Num) == num) {
			listLine(w, m)
			found++
		}
	}
	fmt.Fprintf(w, "%d found\n", found)
}

func listLine(w io.Writer, m *fit.Mesg) {
	fmt.Fprintf(w, "[%d] %s(%d) %d fields", m.Index(), m.Name, m.Num, m.NumFields())
	if n := len(m.DeveloperFields()); n > 0 {
		fmt.Fprintf(w, " +%d dev", n)
	}
	fmt.Fprintln(w)
}

// Command fit-tool inspects FIT activity files and the protocol logs
// written while decoding or encoding them.
//
// Usage:
//
//	fit-tool <command> [flags] <file>
//
// Commands:
//
//	check    Check the header and CRCs of a FIT file
//	decode   Print the records of a FIT file
//	export   Export messages as JSON lines or CSV
//	stats    Show message counts, time span and fingerprint
//	shell    Explore a FIT file interactively
//	log      View, filter or summarize a protocol log (.flog)
//
// Examples:
//
//	# Decode a file, writing protocol events to a log
//	fit-tool decode -protocol-log ride.flog ride.fit
//
//	# Export records as CSV
//	fit-tool export -format csv -o ride.csv ride.fit
//
//	# Show only message events of the record message
//	fit-tool log view -category message -mesg-num 20 ride.flog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fitkit/fit-go/cmd/fit-tool/commands"
)

const usage = `fit-tool - FIT File Tool

Usage:
  fit-tool <command> [flags] <file>

Commands:
  check    Check the header and CRCs of a FIT file
  decode   Print the records of a FIT file
  export   Export messages as JSON lines or CSV
  stats    Show message counts, time span and fingerprint
  shell    Explore a FIT file interactively
  log      View, filter or summarize a protocol log (.flog)

Use "fit-tool <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "check":
		runCheck(args)
	case "decode":
		runDecode(args)
	case "export":
		runExport(args)
	case "stats":
		runStats(args)
	case "shell":
		runShell(args)
	case "log":
		runLog(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// commonFlags are accepted by every command that decodes a FIT file.
type commonFlags struct {
	config      *string
	logLevel    *string
	logFile     *string
	protocolLog *string
	mode        *string
	noExpand    *bool
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		config:      fs.String("config", "", "YAML configuration file"),
		logLevel:    fs.String("log-level", "", "Log level: debug, info, warn, error (default from config, else warn)"),
		logFile:     fs.String("log-file", "", "Also write operational logs to this rotating file"),
		protocolLog: fs.String("protocol-log", "", "Write protocol events to this .flog file"),
		mode:        fs.String("mode", "", "Decode mode: normal, skip-header, data-only (default from config, else normal)"),
		noExpand:    fs.Bool("no-expand", false, "Do not expand components"),
	}
}

// env loads the config file and applies flag overrides.
func (c *commonFlags) env() (*commands.Env, error) {
	cfg, err := commands.LoadConfig(*c.config)
	if err != nil {
		return nil, err
	}
	if *c.logLevel != "" {
		cfg.LogLevel = *c.logLevel
	}
	if *c.logFile != "" {
		cfg.Logs.File = *c.logFile
	}
	if *c.protocolLog != "" {
		cfg.ProtocolLog = *c.protocolLog
	}
	if *c.mode != "" {
		cfg.DecodeMode = *c.mode
	}
	if *c.noExpand {
		cfg.NoExpand = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return commands.NewEnv(cfg, os.Stderr)
}

// parseFileArgs parses args and returns the single file argument.
func parseFileArgs(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func newFlagSet(name, synopsis, usageLine string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "fit-tool %s - %s\n\nUsage:\n  fit-tool %s\n\nFlags:\n", name, synopsis, usageLine)
		fs.PrintDefaults()
	}
	return fs
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func mustEnv(c *commonFlags) *commands.Env {
	env, err := c.env()
	if err != nil {
		fail(err)
	}
	return env
}

func runCheck(args []string) {
	fs := newFlagSet("check", "Check the header and CRCs of a FIT file", "check [flags] <file.fit>")
	common := addCommonFlags(fs)
	path := parseFileArgs(fs, args)

	env := mustEnv(common)
	res, err := env.RunCheck(path, os.Stdout)
	env.Close()
	if err != nil {
		fail(err)
	}
	if !res.OK() {
		os.Exit(1)
	}
}

func runDecode(args []string) {
	fs := newFlagSet("decode", "Print the records of a FIT file", "decode [flags] <file.fit>")
	common := addCommonFlags(fs)
	defs := fs.Bool("defs", false, "Include definition records")
	path := parseFileArgs(fs, args)

	env := mustEnv(common)
	defer env.Close()
	opts := commands.DecodeOptions{
		Mode:        env.Config.Mode(),
		Expand:      !env.Config.NoExpand,
		Definitions: *defs,
	}
	if err := env.RunDecode(path, opts, os.Stdout); err != nil {
		env.Close()
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export messages as JSON lines or CSV", "export [flags] <file.fit>")
	common := addCommonFlags(fs)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := parseFileArgs(fs, args)

	env := mustEnv(common)
	defer env.Close()
	if err := env.RunExport(path, env.Config.Mode(), !env.Config.NoExpand, *format, *output, os.Stdout); err != nil {
		env.Close()
		fail(err)
	}
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show message counts, time span and fingerprint", "stats [flags] <file.fit>")
	common := addCommonFlags(fs)
	path := parseFileArgs(fs, args)

	env := mustEnv(common)
	defer env.Close()
	if err := env.RunStats(path, env.Config.Mode(), os.Stdout); err != nil {
		env.Close()
		fail(err)
	}
}

func runShell(args []string) {
	fs := newFlagSet("shell", "Explore a FIT file interactively", "shell [flags] <file.fit>")
	common := addCommonFlags(fs)
	path := parseFileArgs(fs, args)

	env := mustEnv(common)
	defer env.Close()
	file, err := env.Decode(path, env.Config.Mode(), !env.Config.NoExpand)
	if err != nil {
		if file == nil {
			env.Close()
			fail(err)
		}
		fmt.Fprintf(os.Stderr, "Warning: %v (showing what was decoded)\n", err)
	}
	if err := commands.NewShell(file).Run(); err != nil {
		env.Close()
		fail(err)
	}
}

const logUsage = `fit-tool log - Protocol log commands

Usage:
  fit-tool log <view|filter|stats> [flags] <file.flog>
`

func runLog(args []string) {
	if len(args) < 1 {
		fmt.Fprint(os.Stderr, logUsage)
		os.Exit(1)
	}
	switch args[0] {
	case "view":
		runLogView(args[1:])
	case "filter":
		runLogFilter(args[1:])
	case "stats":
		runLogStats(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown log command: %s\n", args[0])
		fmt.Fprint(os.Stderr, logUsage)
		os.Exit(1)
	}
}

func addLogFilterFlags(fs *flag.FlagSet) *commands.LogFilterOptions {
	opts := &commands.LogFilterOptions{}
	fs.StringVar(&opts.SessionID, "session", "", "Filter by session ID")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (decode, encode)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (session, header, definition, message, devfield, error)")
	fs.StringVar(&opts.MesgNum, "mesg-num", "", "Filter definitions and messages by global message number")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	return opts
}

func runLogView(args []string) {
	fs := newFlagSet("log view", "View a protocol log in human-readable format", "log view [flags] <file.flog>")
	opts := addLogFilterFlags(fs)
	path := parseFileArgs(fs, args)

	filter, err := opts.Filter()
	if err != nil {
		fail(err)
	}
	if err := commands.RunLogView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runLogFilter(args []string) {
	fs := newFlagSet("log filter", "Filter a protocol log into a new file", "log filter -o <out.flog> [flags] <file.flog>")
	opts := addLogFilterFlags(fs)
	output := fs.String("o", "", "Output file (required)")
	path := parseFileArgs(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}
	filter, err := opts.Filter()
	if err != nil {
		fail(err)
	}
	n, err := commands.RunLogFilter(path, filter, *output)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, *output)
}

func runLogStats(args []string) {
	fs := newFlagSet("log stats", "Show statistics about a protocol log", "log stats <file.flog>")
	path := parseFileArgs(fs, args)

	if err := commands.RunLogStats(path, os.Stdout); err != nil {
		fail(err)
	}
}

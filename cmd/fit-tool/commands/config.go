package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"github.com/fitkit/fit-go/pkg/fit"
	"github.com/fitkit/fit-go/pkg/log"
)

// Config holds fit-tool defaults. Flags given on the command line override
// the values loaded from a config file.
type Config struct {
	DecodeMode  string    `yaml:"decodeMode"`
	NoExpand    bool      `yaml:"noExpand"`
	LogLevel    string    `yaml:"logLevel"`
	ProtocolLog string    `yaml:"protocolLog"`
	Logs        LogConfig `yaml:"logs"`
}

// LogConfig configures the rotating operational log file.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		DecodeMode: fit.DecodeModeNormal.String(),
		LogLevel:   "warn",
		Logs: LogConfig{
			MaxSizeMB:  10,
			MaxAgeDays: 28,
			MaxBackups: 3,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the decode mode and log level names.
func (c Config) Validate() error {
	if _, err := fit.ParseDecodeMode(c.DecodeMode); err != nil {
		return err
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Mode returns the configured decode mode.
func (c Config) Mode() fit.DecodeMode {
	m, _ := fit.ParseDecodeMode(c.DecodeMode)
	return m
}

// ParseLogLevel parses debug, info, warn or error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q (use: debug, info, warn, error)", s)
}

// Env carries what every command needs: the config, the operational logger
// and the optional protocol event logger.
type Env struct {
	Config   Config
	Logger   *slog.Logger
	Protocol log.Logger

	closers []io.Closer
}

// NewEnv builds the loggers described by cfg. Operational logs go to stderr
// and, when a log file is configured, to a rotating file as well.
func NewEnv(cfg Config, stderr io.Writer) (*Env, error) {
	level, err := ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	env := &Env{Config: cfg}

	w := stderr
	if cfg.Logs.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.Logs.File,
			MaxSize:    cfg.Logs.MaxSizeMB,
			MaxAge:     cfg.Logs.MaxAgeDays,
			MaxBackups: cfg.Logs.MaxBackups,
			Compress:   cfg.Logs.Compress,
		}
		w = io.MultiWriter(stderr, rotator)
		env.closers = append(env.closers, rotator)
	}
	env.Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))

	var sinks []log.Logger
	if cfg.ProtocolLog != "" {
		fl, err := log.NewFileLogger(cfg.ProtocolLog)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("open protocol log: %w", err)
		}
		sinks = append(sinks, fl)
		env.closers = append(env.closers, fl)
	}
	// debug level also traces protocol events through the operational log
	if level <= slog.LevelDebug {
		sinks = append(sinks, log.NewSlogAdapter(env.Logger))
	}
	switch len(sinks) {
	case 0:
	case 1:
		env.Protocol = sinks[0]
	default:
		env.Protocol = log.NewMultiLogger(sinks...)
	}
	return env, nil
}

// Close flushes and closes the log files.
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i].Close())
	}
	e.closers = nil
	return errors.Join(errs...)
}

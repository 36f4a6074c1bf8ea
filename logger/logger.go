package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	cfg "github.com/go-kyugo/productapi/config"
)

type Level = zerolog.Level

const (
	LevelDebug = zerolog.DebugLevel
	LevelInfo  = zerolog.InfoLevel
	LevelWarn  = zerolog.WarnLevel
	LevelError = zerolog.ErrorLevel
)

type Fields map[string]interface{}

var (
	std          zerolog.Logger
	stdSet       bool
	colorEnabled bool
)

// Logger is a small wrapper around zerolog.Logger. Components receive a
// *Logger at construction time instead of reaching for the package logger.
type Logger struct {
	Z zerolog.Logger
}

// NewConsole creates a zerolog ConsoleWriter-backed logger. When color is true
// the console writer will emit ANSI colors. Time format matches "3:04PM".
func NewConsole(out io.Writer, level Level, color bool) *Logger {
	cw := zerolog.ConsoleWriter{Out: out, TimeFormat: "3:04PM", NoColor: !color}
	colorEnabled = color

	colorWrap := func(s string, code string) string {
		if !color {
			return s
		}
		return "\x1b[" + code + "m" + s + "\x1b[0m"
	}

	cw.FormatLevel = func(i interface{}) string {
		s := zerolog.NoLevel
		switch v := i.(type) {
		case string:
			if lvl, err := zerolog.ParseLevel(v); err == nil {
				s = lvl
			}
		case zerolog.Level:
			s = v
		}
		switch s {
		case zerolog.DebugLevel:
			return colorWrap("DBG", "36")
		case zerolog.InfoLevel:
			return colorWrap("INF", "32")
		case zerolog.WarnLevel:
			return colorWrap("WRN", "33")
		case zerolog.ErrorLevel:
			return colorWrap("ERR", "31")
		default:
			return ""
		}
	}

	cw.FormatTimestamp = func(i interface{}) string {
		switch v := i.(type) {
		case time.Time:
			return colorWrap(v.Format("3:04PM"), "2")
		case string:
			return colorWrap(v, "2")
		default:
			return ""
		}
	}

	l := zerolog.New(cw).With().Timestamp().Logger().Level(level)
	return &Logger{Z: l}
}

// NewJSON returns a logger writing one JSON object per line.
func NewJSON(out io.Writer, level Level) *Logger {
	l := zerolog.New(out).With().Timestamp().Logger().Level(level)
	return &Logger{Z: l}
}

// NewNop returns a no-op Logger instance.
func NewNop() *Logger {
	return &Logger{Z: zerolog.Nop()}
}

// FromConfig builds the process logger from the log section of the config.
// Debug mode forces the debug level regardless of the configured one.
func FromConfig(c cfg.LogConfig, debug bool) *Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.Level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = LevelInfo
	}
	if debug {
		lvl = LevelDebug
	}
	if c.Format == "json" {
		return NewJSON(os.Stdout, lvl)
	}
	return NewConsole(os.Stdout, lvl, debug)
}

// Colorize wraps the provided string with ANSI color codes when colors are enabled.
func Colorize(s string, code string) string {
	if !colorEnabled {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

// SetStd replaces the package logger used by wrapper functions.
// It is meant for process startup, before any goroutine logs.
func SetStd(l *Logger) {
	stdSet = true
	if l == nil {
		std = zerolog.Nop()
		return
	}
	std = l.Z
}

func ensureStd() {
	if !stdSet {
		SetStd(NewConsole(os.Stdout, zerolog.InfoLevel, true))
	}
}

func Info(msg string, f Fields) {
	ensureStd()
	e := std.Info()
	if f != nil {
		e = e.Fields(map[string]interface{}(f))
	}
	e.Msg(msg)
}

func Warn(msg string, f Fields) {
	ensureStd()
	e := std.Warn()
	if f != nil {
		e = e.Fields(map[string]interface{}(f))
	}
	e.Msg(msg)
}

func Error(msg string, f Fields) {
	ensureStd()
	e := std.Error()
	if f != nil {
		e = e.Fields(map[string]interface{}(f))
	}
	e.Msg(msg)
}

// With returns a child logger that always carries the given fields.
func (l *Logger) With(f Fields) *Logger {
	return &Logger{Z: l.Z.With().Fields(map[string]interface{}(f)).Logger()}
}

func (l *Logger) Info(msg string, f Fields) {
	e := l.Z.Info()
	if f != nil {
		e = e.Fields(map[string]interface{}(f))
	}
	e.Msg(msg)
}

func (l *Logger) Debug(msg string, f Fields) {
	e := l.Z.Debug()
	if f != nil {
		e = e.Fields(map[string]interface{}(f))
	}
	e.Msg(msg)
}

func (l *Logger) Warn(msg string, f Fields) {
	e := l.Z.Warn()
	if f != nil {
		e = e.Fields(map[string]interface{}(f))
	}
	e.Msg(msg)
}

// Error logs msg at error level. A non-nil err is attached under the
// "error" key.
func (l *Logger) Error(msg string, err error, f Fields) {
	e := l.Z.Error()
	if err != nil {
		e = e.Err(err)
	}
	if f != nil {
		e = e.Fields(map[string]interface{}(f))
	}
	e.Msg(msg)
}

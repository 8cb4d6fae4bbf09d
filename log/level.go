package log

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
)

// ErrInvalidLevel is returned when text does not name a log level.
var ErrInvalidLevel = errors.New("invalid log level")

// ErrInvalidFormat is returned when text does not name a log format.
var ErrInvalidFormat = errors.New("invalid log format")

// Level represents the severity of a log message.
type Level slog.Level

const (
	LevelTrace = Level(slog.LevelDebug - 4)
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// DefaultLevel is the default log level.
const DefaultLevel = LevelInfo

var levels = []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}

// String returns the lower-case name of the level. Levels between the named
// ones are written as an offset from the nearest lower name, as in "info+2".
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}

	return strings.ToLower(slog.Level(l).String())
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	level, ok := lookupLevel(string(text))
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, text)
	}

	*l = level

	return nil
}

// Levels returns an iterator over the names of the defined log levels, from
// the most to the least verbose.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, level := range levels {
			if !yield(level.String()) {
				return
			}
		}
	}
}

// ParseLevel parses a level name, case-insensitively. Besides "trace", any
// text accepted by [slog.Level.UnmarshalText] is valid, such as "warn" or
// "info+2". Unknown text yields [DefaultLevel].
func ParseLevel(s string) Level {
	if level, ok := lookupLevel(s); ok {
		return level
	}

	return DefaultLevel
}

func lookupLevel(s string) (Level, bool) {
	s = strings.TrimSpace(s)

	if strings.EqualFold(s, "trace") {
		return LevelTrace, true
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel, false
	}

	return Level(l), true
}

// Format represents the output format for log messages.
type Format int

const (
	FormatJSON Format = iota
	FormatText
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatText

var formats = []Format{FormatJSON, FormatText}

// String returns the lower-case name of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))

	i := slices.IndexFunc(formats, func(f Format) bool { return f.String() == name })
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}

	*f = formats[i]

	return nil
}

// Formats returns an iterator over the names of the defined log formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, format := range formats {
			if !yield(format.String()) {
				return
			}
		}
	}
}

// ParseFormat parses a format name, case-insensitively. Unknown text yields
// [DefaultFormat].
func ParseFormat(s string) Format {
	var f Format
	if err := f.UnmarshalText([]byte(s)); err != nil {
		return DefaultFormat
	}

	return f
}

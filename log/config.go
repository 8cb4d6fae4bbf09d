package log

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// FormatTime formats a record timestamp. An empty result omits the time.
type FormatTime func(time.Time) string

// DefaultTimeLayout is the default timestamp layout.
const DefaultTimeLayout = time.RFC3339

// config holds the settings a Logger is built from. It is a value type:
// options return a modified copy.
type config struct {
	output     io.Writer
	formatTime FormatTime
	timeLayout string
	level      Level
	format     Format
	caller     bool
	color      bool
}

// Option modifies the configuration of a Logger.
type Option func(config) config

func makeConfig(w io.Writer, opts ...Option) config {
	return config{
		output:     w,
		formatTime: makeFormatTimeFunc(DefaultTimeLayout),
		timeLayout: DefaultTimeLayout,
		level:      DefaultLevel,
		format:     DefaultFormat,
	}.apply(append([]Option{WithOutput(w)}, opts...)...)
}

func (c config) apply(opts ...Option) config {
	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	return c
}

// handler creates the slog.Handler for the configuration.
func (c config) handler() slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource:   c.caller,
		Level:       slog.Level(c.level),
		ReplaceAttr: c.replaceAttr,
	}

	if c.color {
		return newColorHandler(c.output, c.format, c.formatTime, opts)
	}

	switch c.format {
	case FormatJSON:
		return slog.NewJSONHandler(c.output, opts)

	case FormatText:
		return slog.NewTextHandler(c.output, opts)

	default:
		return slog.DiscardHandler
	}
}

// replaceAttr applies the time layout and names the trace level.
func (c config) replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			s := c.formatTime(t)
			if s == "" {
				return slog.Attr{}
			}

			a.Value = slog.StringValue(s)
		}

	case slog.LevelKey:
		if level, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToUpper(Level(level).String()))
		}
	}

	return a
}

// WithOutput sets the writer log records are written to. A nil writer
// discards all records.
func WithOutput(w io.Writer) Option {
	return func(c config) config {
		if w == nil {
			w = io.Discard
		}

		c.output = w

		return c
	}
}

// WithLevel sets the minimum level of records that are written.
func WithLevel(level Level) Option {
	return func(c config) config {
		c.level = level

		return c
	}
}

// WithFormat sets the record format.
func WithFormat(format Format) Option {
	return func(c config) config {
		c.format = format

		return c
	}
}

// WithTimeLayout sets the layout of record timestamps.
//
// The layout may name one of the layouts of the [time] package, ignoring
// case and punctuation ("RFC3339", "rfc-3339-nano", "kitchen"), or one of the
// aliases "ms", "us" and "ns". Any other layout is passed verbatim to
// [time.Time.Format]. An empty layout or "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(c config) config {
		c.timeLayout = layout
		c.formatTime = makeFormatTimeFunc(layout)

		return c
	}
}

// WithCaller sets whether records include the source location of the call.
func WithCaller(enable bool) Option {
	return func(c config) config {
		c.caller = enable

		return c
	}
}

// WithColor sets whether records are written with ANSI colors for a
// terminal.
func WithColor(enable bool) Option {
	return func(c config) config {
		c.color = enable

		return c
	}
}

// timeLayout maps normalized layout names to [time] layouts.
var timeLayout = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"datetime":    time.DateTime,
	"dateonly":    time.DateOnly,
	"timeonly":    time.TimeOnly,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"rfc1123":     time.RFC1123,
	"rfc1123z":    time.RFC1123Z,
	"kitchen":     time.Kitchen,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"stampmicro":  time.StampMicro,
	"stampnano":   time.StampNano,
	"ms":          time.StampMilli,
	"us":          time.StampMicro,
	"ns":          time.StampNano,
	"none":        "",
}

func makeFormatTimeFunc(layout string) FormatTime {
	name := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}

		return -1
	}, strings.ToLower(layout))

	if std, ok := timeLayout[name]; ok {
		layout = std
	}

	if strings.TrimSpace(layout) == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}

package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorGray    = "\033[90m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// colorHandler writes records with ANSI colors, either as key=value text on
// one line or as an indented JSON-like object.
type colorHandler struct {
	opts       slog.HandlerOptions
	format     Format
	formatTime FormatTime
	mu         *sync.Mutex
	w          io.Writer
	attrs      []slog.Attr
	group      string
}

func newColorHandler(
	w io.Writer,
	format Format,
	formatTime FormatTime,
	opts *slog.HandlerOptions,
) *colorHandler {
	return &colorHandler{
		opts:       *opts,
		format:     format,
		formatTime: formatTime,
		mu:         &sync.Mutex{},
		w:          w,
	}
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	least := slog.LevelInfo
	if h.opts.Level != nil {
		least = h.opts.Level.Level()
	}

	return level >= least
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		if s := h.formatTime(r.Time); s != "" {
			attrs = append(attrs, slog.String(slog.TimeKey, s))
		}
	}

	attrs = append(attrs, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			attrs = append(attrs,
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	attrs = append(attrs, slog.String(slog.MessageKey, r.Message))
	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		attrs = h.appendAttr(attrs, h.group, a)

		return true
	})

	buf := new(bytes.Buffer)

	switch h.format {
	case FormatJSON:
		buf.WriteString("{\n")

		for i, a := range attrs {
			if i > 0 {
				buf.WriteString(",\n")
			}

			buf.WriteString("  ")
			writeKey(buf, strconv.Quote(a.Key))
			buf.WriteString(": ")
			writeValue(buf, a.Value, true)
		}

		buf.WriteString("\n}\n")

	default:
		for i, a := range attrs {
			if i > 0 {
				buf.WriteByte(' ')
			}

			writeKey(buf, a.Key)
			buf.WriteByte('=')
			writeValue(buf, a.Value, false)
		}

		buf.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	c.attrs = h.attrs[:len(h.attrs):len(h.attrs)]

	for _, a := range attrs {
		c.attrs = h.appendAttr(c.attrs, h.group, a)
	}

	return &c
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.group = qualify(h.group, name)

	return &c
}

// appendAttr flattens a, qualifying its key with the group prefix.
func (h *colorHandler) appendAttr(
	attrs []slog.Attr,
	group string,
	a slog.Attr,
) []slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return attrs
	}

	if a.Value.Kind() == slog.KindGroup {
		prefix := group
		if a.Key != "" {
			prefix = qualify(group, a.Key)
		}

		for _, ga := range a.Value.Group() {
			attrs = h.appendAttr(attrs, prefix, ga)
		}

		return attrs
	}

	a.Key = qualify(group, a.Key)

	return append(attrs, a)
}

func qualify(group, key string) string {
	if group == "" {
		return key
	}

	return group + "." + key
}

func writeKey(buf *bytes.Buffer, key string) {
	buf.WriteString(colorGray)
	buf.WriteString(key)
	buf.WriteString(colorReset)
}

func writeValue(buf *bytes.Buffer, v slog.Value, quote bool) {
	text := func(s string) string {
		if quote || strings.ContainsAny(s, " \t\n\"=") {
			return strconv.Quote(s)
		}

		return s
	}

	switch v.Kind() {
	case slog.KindString:
		writeColor(buf, colorCyan, text(v.String()))

	case slog.KindInt64:
		writeColor(buf, colorYellow, strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		writeColor(buf, colorYellow, strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		writeColor(buf, colorYellow, strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			writeColor(buf, colorGreen, "true")
		} else {
			writeColor(buf, colorRed, "false")
		}

	case slog.KindDuration:
		writeColor(buf, colorMagenta, text(v.Duration().String()))

	case slog.KindTime:
		writeColor(buf, colorBlue, text(v.Time().Format(time.RFC3339Nano)))

	case slog.KindAny:
		switch a := v.Any().(type) {
		case slog.Level:
			writeColor(buf, levelColor(a), text(strings.ToUpper(Level(a).String())))

		case nil:
			writeColor(buf, colorGray, "null")

		case error:
			writeColor(buf, colorRed, text(a.Error()))

		default:
			writeColor(buf, colorCyan, text(v.String()))
		}

	default:
		writeColor(buf, colorCyan, text(v.String()))
	}
}

func writeColor(buf *bytes.Buffer, color, s string) {
	buf.WriteString(color)
	buf.WriteString(s)
	buf.WriteString(colorReset)
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorGreen
	case level >= slog.LevelDebug:
		return colorBlue
	default:
		return colorMagenta
	}
}

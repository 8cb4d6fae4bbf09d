package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestMake_Defaults(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf)

	if logger.Level() != DefaultLevel {
		t.Errorf("level: got %v", logger.Level())
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("format: got %v", logger.Format())
	}

	if logger.caller || logger.color {
		t.Error("caller and color should be disabled by default")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name    string
		logFunc func(Logger, string, ...slog.Attr)
		level   string
		min     Level
		logged  bool
	}{
		{"trace at trace", Logger.Trace, "TRACE", LevelTrace, true},
		{"trace at debug", Logger.Trace, "TRACE", LevelDebug, false},
		{"debug at debug", Logger.Debug, "DEBUG", LevelDebug, true},
		{"debug at info", Logger.Debug, "DEBUG", LevelInfo, false},
		{"info at info", Logger.Info, "INFO", LevelInfo, true},
		{"info at warn", Logger.Info, "INFO", LevelWarn, false},
		{"warn at warn", Logger.Warn, "WARN", LevelWarn, true},
		{"error at trace", Logger.Error, "ERROR", LevelTrace, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := Make(&buf, WithLevel(tt.min), WithFormat(FormatJSON))
			tt.logFunc(logger, "hello")

			if !tt.logged {
				if buf.Len() > 0 {
					t.Errorf("unexpected output: %s", buf.String())
				}

				return
			}

			var rec map[string]any
			if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
				t.Fatalf("invalid JSON %q: %v", buf.String(), err)
			}

			if rec["level"] != tt.level || rec["msg"] != "hello" {
				t.Errorf("got %v", rec)
			}
		})
	}
}

func TestLogger_Formats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer

		Make(&buf, WithFormat(FormatJSON)).Info("msg", slog.String("key", "value"))

		var rec map[string]any
		if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}

		if rec["key"] != "value" {
			t.Errorf("got %v", rec)
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer

		Make(&buf, WithFormat(FormatText)).Info("msg", slog.String("key", "value"))

		if out := buf.String(); !strings.Contains(out, "key=value") ||
			!strings.Contains(out, "level=INFO") {
			t.Errorf("got %q", out)
		}
	})
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true)).Info("here")

	if out := buf.String(); !strings.Contains(out, "log_test.go") {
		t.Errorf("caller should name the calling file, got %q", out)
	}

	buf.Reset()
	Make(&buf).Info("here")

	if strings.Contains(buf.String(), "source=") {
		t.Errorf("caller should be omitted, got %q", buf.String())
	}
}

func TestLogger_TimeLayout(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithTimeLayout("none")).Info("timeless")

	if strings.Contains(buf.String(), "time=") {
		t.Errorf("time should be omitted, got %q", buf.String())
	}

	buf.Reset()
	Make(&buf, WithTimeLayout("2006")).Info("year")

	if !strings.Contains(buf.String(), "time=2") {
		t.Errorf("custom layout not applied, got %q", buf.String())
	}
}

func TestLogger_WrapAndWith(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithLevel(LevelWarn))
	debug := base.Wrap(WithLevel(LevelDebug))

	if base.Level() != LevelWarn || debug.Level() != LevelDebug {
		t.Fatalf("wrap should not modify the original: %v, %v",
			base.Level(), debug.Level())
	}

	debug.With(slog.String("component", "lang")).
		WithGroup("expr").
		Debug("compiled", slog.Int("nodes", 3))

	out := buf.String()
	if !strings.Contains(out, "component=lang") ||
		!strings.Contains(out, "expr.nodes=3") {
		t.Errorf("got %q", out)
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var logger Logger

	logger.Error("dropped")
	logger.With(slog.Int("a", 1)).Info("dropped")

	if logger.Enabled(t.Context(), LevelError) {
		t.Error("zero logger should not be enabled")
	}

	if logger.Level() != DefaultLevel || logger.Format() != DefaultFormat {
		t.Error("zero logger should report defaults")
	}
}

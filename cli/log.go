package cli

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"

	"github.com/ardnew/interp/log"
)

// logFormat is a custom type that configures the logger format as a side
// effect of parsing via encoding.TextUnmarshaler.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
// As Kong parses the --log-format flag, this method is called, allowing us
// to configure the logger early enough to affect error messages during parsing.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel is a custom type that configures the logger level as a side
// effect of parsing via encoding.TextUnmarshaler.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"        enum:"trace,debug,info,warn,error" help:"Set log level."`
	Format     logFormat `default:"text"        enum:"json,text"                   help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                                        help:"Set timestamp format (layout name, Go layout, or none)."`
	Caller     bool      `default:"false"                                          help:"Include caller information."                             negatable:""`
	Color      bool      `default:"${logColor}"                                    help:"Colorize log records."                                   negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logColor": strconv.FormatBool(isatty.IsTerminal(os.Stderr.Fd())),
	}
}

func (*logConfig) group() kong.Group {
	var group kong.Group

	group.Key = "log"
	group.Title = "Logging options"

	return group
}

func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithColor(f.Color),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("color", f.Color),
	)
}

// scan performs an early pass over command-line arguments to apply logger
// configuration before Kong begins parsing, so that the logger is configured
// regardless of flag position on the command line.
//
// logFormat and logLevel configure the logger as Kong parses them, but
// boolean flags like --log-color do not go through that interface.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return
		}

		name, value, assigned := strings.Cut(arg, "=")

		// Consume the next argument as the value of a non-boolean flag.
		next := func() string {
			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++

				return args[i]
			}

			return value
		}

		// Boolean flags take a value only when explicitly assigned.
		boolean := func(negated bool) (bool, bool) {
			v := true
			if assigned {
				b, err := strconv.ParseBool(value)
				if err != nil {
					return false, false
				}

				v = b
			}

			return v != negated, true
		}

		switch name {
		case "--log-level":
			_ = f.Level.UnmarshalText([]byte(next()))

		case "--log-format":
			_ = f.Format.UnmarshalText([]byte(next()))

		case "--log-color", "--no-log-color":
			if v, ok := boolean(name == "--no-log-color"); ok {
				f.Color = v
				log.Config(log.WithColor(v))
			}

		case "--log-caller", "--no-log-caller":
			if v, ok := boolean(name == "--no-log-caller"); ok {
				f.Caller = v
				log.Config(log.WithCaller(v))
			}
		}
	}
}

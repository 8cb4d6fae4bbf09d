// Package log provides a small structured logging interface based on
// [log/slog].
//
// A [Logger] is built once from functional options and is immutable
// afterward; deriving a logger with [Logger.Wrap], [Logger.With] or
// [Logger.WithGroup] returns a new value.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//	logger.Info("compiled", slog.String("source", src))
//
// Attributes are always [slog.Attr] values; the loosely typed key/value
// form of [slog.Logger] is shadowed.
//
// # Levels
//
// Besides the four [slog] levels, [LevelTrace] sits below [LevelDebug] and
// is used for per-expression detail that is too verbose for debugging.
//
// # Formats
//
// Records are written as [FormatText] (the default) or [FormatJSON]. With
// [WithColor], both are written with ANSI colors for a terminal.
//
// # Default logger
//
// The package-level functions write through a default logger on standard
// error. [Config] reconfigures it and [SetDefault] replaces it; both are safe
// to call concurrently with logging.
package log

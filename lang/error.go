package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Error categories. Every error returned by the engine matches exactly one of
// these with [errors.Is].
var (
	ErrSyntax        = NewError("syntax error")
	ErrInterpolation = NewError("interpolation error")
)

// Syntax errors raised by the tokenizer and parser.
var (
	ErrUnexpectedCharacter = ErrSyntax.Sub("unexpected character")
	ErrUnexpectedToken     = ErrSyntax.Sub("unexpected")
	ErrInvalidArrayKeyExpr = ErrSyntax.Sub("invalid array key expression")
)

// Interpolation errors raised by the evaluator and the string front door.
var (
	ErrUndefinedVariable = ErrInterpolation.Sub("undefined variable")
	ErrUndefinedKey      = ErrInterpolation.Sub("undefined array key")
	ErrUndefinedMember   = ErrInterpolation.Sub(
		"undefined class method, property or constant",
	)
	ErrNotTraversable = ErrInterpolation.Sub("value")
	ErrInvalidKey     = ErrInterpolation.Sub("invalid array key")
	ErrCall           = ErrInterpolation.Sub("call failed")
	ErrNotStringable  = ErrInterpolation.Sub("cannot convert to string")
	ErrInvalidNode    = ErrInterpolation.Sub("invalid node")

	ErrMaxDepthExceeded = ErrInterpolation.Sub("maximum evaluation depth exceeded")
)

// ErrDecode is returned when decoded data cannot be represented as an
// [Array].
var ErrDecode = NewError("cannot decode array")

// Error represents an engine error with optional structured logging
// attributes. It implements both error and [slog.LogValuer].
//
// Errors are immutable. The sentinel values above are specialized with
// [Error.Detail], [Error.With], [Error.WithPosition] and [Error.Wrap], each of
// which returns a new value that still matches its sentinel with [errors.Is].
type Error struct {
	msg    string
	detail string
	err    error       // Wrapped error (for errors.Unwrap)
	attrs  []slog.Attr // Attributes for structured logging
	pos    int
	origin *Error // sentinel this error was derived from
	parent *Error // category of a sentinel
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg, pos: -1}
}

// Sub creates a new sentinel in the category of e.
func (e *Error) Sub(msg string) *Error {
	return &Error{msg: msg, pos: -1, parent: e.sentinel()}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err, pos: -1}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// "<msg> <detail>: <err>", omitting whichever parts are empty.
	var sb strings.Builder

	sb.WriteString(e.msg)

	if e.detail != "" {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(e.detail)
	}

	if e.err != nil {
		if sb.Len() > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(e.err.Error())
	}

	return sb.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from or the
// category that sentinel belongs to.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	for s := e.sentinel(); s != nil; s = s.parent {
		if s == t {
			return true
		}
	}

	return false
}

// Position returns the byte offset in the source expression at which a
// syntax error occurred.
func (e *Error) Position() (int, bool) {
	return e.pos, e.pos >= 0
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.detail != "" {
		attrs = append(attrs, slog.String("detail", e.detail))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.derive()
	c.err = err

	return c
}

// Detail creates a new Error with a formatted description appended to the
// sentinel message.
func (e *Error) Detail(format string, args ...any) *Error {
	c := e.derive()
	c.detail = fmt.Sprintf(format, args...)

	return c
}

// With adds attributes to the error for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.derive()
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return c
}

// WithPosition records the source offset of a syntax error.
func (e *Error) WithPosition(pos int) *Error {
	c := e.With(slog.Int("position", pos))
	c.pos = pos

	return c
}

func (e *Error) derive() *Error {
	c := *e
	c.origin = e.sentinel()
	c.parent = nil

	return &c
}

func (e *Error) sentinel() *Error {
	if e.origin != nil {
		return e.origin
	}

	return e
}

// IsSyntaxError reports whether err is a tokenizer or parser failure.
func IsSyntaxError(err error) bool { return errors.Is(err, ErrSyntax) }

// IsInterpolationError reports whether err is an evaluation failure.
func IsInterpolationError(err error) bool {
	return errors.Is(err, ErrInterpolation)
}

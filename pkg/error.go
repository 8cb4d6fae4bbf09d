package pkg

// Sentinel errors for the command-line tool and its subpackages.
// These errors can be tested using errors.Is for reliable error checking.

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Error represents a chain of errors.
type Error []error

// ErrReadInput is returned when reading a template, expression or
// variables file fails. It wraps the underlying I/O error.
var ErrReadInput = MakeErrorf("failed to read input")

// ErrWriteOutput is returned when writing a result fails.
var ErrWriteOutput = MakeErrorf("failed to write output")

// ErrDecodeVars is returned when a variables file is neither a YAML nor a
// JSON mapping.
var ErrDecodeVars = MakeErrorf("cannot decode variables")

// ErrDefine is returned when a --define or --constant flag is malformed or
// its host expression fails to compile or run.
var ErrDefine = MakeErrorf("invalid definition")

// ErrJSONMarshal is returned when JSON marshaling fails.
var ErrJSONMarshal = MakeErrorf("JSON marshal error")

// ErrYAMLMarshal is returned when YAML marshaling fails.
var ErrYAMLMarshal = MakeErrorf("YAML marshal error")

// ErrInvalidFormat is returned when an invalid output format is specified.
// It is wrapped with the invalid format and the list of valid formats.
var ErrInvalidFormat = MakeErrorf("invalid format")

// ErrConfigExists is returned by init when the configuration file exists and
// overwriting was not requested.
var ErrConfigExists = MakeErrorf("configuration file exists")

// ErrServe is returned when the HTTP server fails to start or stop.
var ErrServe = MakeErrorf("server error")

// MakeError constructs an Error from the given errors.
// The errors are stored in the order they are provided:
// the first argument is the innermost error in the chain.
// Nil is returned if no errors are provided.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error returns a concatenated string representation of all errors
// in the error chain, separated by ": ", from innermost to outermost.
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range slices.All(e) {
		if i > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Wrap appends one or more errors to the receiver and returns the result.
func (e Error) Wrap(err ...error) Error {
	return append(e, err...)
}

// Wrapf appends a formatted error to the receiver and returns the result.
func (e Error) Wrapf(format string, args ...any) Error {
	return append(e, fmt.Errorf(format, args...))
}

// Is reports whether target is an Error whose chain is a prefix of the
// receiver's chain, so that a sentinel matches every error wrapped from it.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 || len(t) > len(e) {
		return false
	}

	for i, err := range t {
		if !errors.Is(e[i], err) {
			return false
		}
	}

	return true
}

// Unwrap returns the slice of errors contained in the receiver.
func (e Error) Unwrap() []error {
	return e
}

// UnwrapErrors recursively unwraps an error chain and returns a slice
// containing all errors in the chain, starting from the innermost error.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	chain := Error{}

	if e, ok := err.(interface{ Unwrap() []error }); ok {
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}
	} else if e, ok := err.(interface{ Unwrap() error }); ok {
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}

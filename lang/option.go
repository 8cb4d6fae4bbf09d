package lang

import (
	"iter"
	"maps"
	"math"
	"slices"

	"github.com/ardnew/interp/log"
)

// DefaultMaxDepth is the default maximum nesting depth of evaluation.
// Users may modify this before evaluating to change the default.
var DefaultMaxDepth = 256

// Constants is an immutable table of named values that the parser
// substitutes for identifiers at parse time.
type Constants struct {
	table map[string]any
}

// NewConstants creates a constant table from a copy of m.
func NewConstants(m map[string]any) Constants {
	return Constants{table: maps.Clone(m)}
}

// DefaultConstants returns the constants recognized when no table is given.
func DefaultConstants() Constants {
	return NewConstants(map[string]any{
		"true":    true,
		"false":   false,
		"null":    nil,
		"TRUE":    true,
		"FALSE":   false,
		"NULL":    nil,
		"EOL":     "\n",
		"PI":      math.Pi,
		"E":       math.E,
		"INT_MAX": math.MaxInt,
		"INT_MIN": math.MinInt,
	})
}

var defaultConstants = DefaultConstants()

// Lookup returns the value of the named constant.
func (c Constants) Lookup(name string) (any, bool) {
	v, ok := c.table[name]

	return v, ok
}

// With returns a copy of c with name bound to value.
func (c Constants) With(name string, value any) Constants {
	t := maps.Clone(c.table)
	if t == nil {
		t = make(map[string]any, 1)
	}

	t[name] = value

	return Constants{table: t}
}

// Len returns the number of constants in the table.
func (c Constants) Len() int { return len(c.table) }

// Names returns an iterator over the constant names in sorted order.
func (c Constants) Names() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(c.table)))
}

// ErrorHandler decides what replaces a placeholder whose expression failed.
// Returning an error aborts the interpolation.
type ErrorHandler func(placeholder string, err error) (string, error)

// options holds the configuration shared by the tokenizer, parser,
// evaluator and string front door.
type options struct {
	logger         log.Logger
	constants      Constants
	customConsts   bool
	noCache        bool
	maxDepth       int
	entityDecoding bool
	onError        ErrorHandler
}

// Option configures tokenizing, parsing or evaluation behavior.
type Option func(*options)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithConstants replaces the parser's constant table.
// Compiles using a custom table bypass the compile cache.
func WithConstants(c Constants) Option {
	return func(o *options) {
		o.constants = c
		o.customConsts = true
	}
}

// WithCache enables or disables the compile cache. It is enabled by
// default.
func WithCache(enable bool) Option {
	return func(o *options) {
		o.noCache = !enable
	}
}

// WithMaxDepth sets the maximum nesting depth of evaluation.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithEntityDecoding enables decoding of HTML entities in placeholder
// expressions before they are compiled.
func WithEntityDecoding(enable bool) Option {
	return func(o *options) {
		o.entityDecoding = enable
	}
}

// WithErrorHandler sets the policy for placeholders that fail to compile or
// evaluate. Without a handler the first failure aborts the interpolation.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(o *options) {
		o.onError = fn
	}
}

// makeOptions applies defaults followed by opts.
func makeOptions(opts ...Option) options {
	o := options{
		constants: defaultConstants,
		maxDepth:  DefaultMaxDepth,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

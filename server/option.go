package server

import (
	"github.com/ardnew/interp/lang"
	"github.com/ardnew/interp/log"
)

// DefaultMaxBodyBytes is the default limit on request body size.
const DefaultMaxBodyBytes int64 = 1 << 20

type options struct {
	logger       log.Logger
	engine       []lang.Option
	origins      []string
	maxBodyBytes int64
	profiler     bool
}

// Option configures a [Server].
type Option func(*options)

// WithLogger sets the logger for request and error records.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEngineOptions sets the options passed to every compile, evaluation
// and interpolation.
func WithEngineOptions(opts ...lang.Option) Option {
	return func(o *options) {
		o.engine = append(o.engine, opts...)
	}
}

// WithCORS allows cross-origin requests from the given origins. Wildcards
// such as "https://*.example.com" are accepted. Without origins, CORS
// headers are not sent.
func WithCORS(origins ...string) Option {
	return func(o *options) {
		o.origins = append(o.origins, origins...)
	}
}

// WithMaxBodyBytes limits the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithProfiler mounts the net/http/pprof handlers under /debug.
func WithProfiler(enable bool) Option {
	return func(o *options) {
		o.profiler = enable
	}
}

func makeOptions(opts ...Option) options {
	o := options{maxBodyBytes: DefaultMaxBodyBytes}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

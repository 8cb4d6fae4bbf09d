package lang

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"
)

// DefaultCacheLimit is the initial maximum number of cached compilations.
const DefaultCacheLimit = 4096

var (
	// globalCache stores compiled expressions keyed by source hash.
	globalCache sync.Map
	// cacheLen counts the entries stored in globalCache.
	cacheLen atomic.Int64
	// cacheLimit bounds cacheLen. The cache is emptied when it is reached.
	cacheLimit atomic.Int64
)

func init() { cacheLimit.Store(DefaultCacheLimit) }

// SetCacheLimit sets the maximum number of cached compilations and returns
// the previous limit. A limit of zero or less disables the cache.
func SetCacheLimit(n int) int {
	return int(cacheLimit.Swap(int64(n)))
}

// state tracks the one-time compilation of a source.
type state struct {
	once   sync.Once
	source string
	expr   *Expression
	err    error
}

// Expression is a compiled expression: its source and the parsed tree.
// It is immutable and may be evaluated any number of times concurrently.
type Expression struct {
	source string
	root   Node
}

// Source returns the expression text that was compiled.
func (x *Expression) Source() string { return x.source }

// Root returns the root node of the parsed tree.
func (x *Expression) Root() Node { return x.root }

// Evaluate evaluates the expression against vars.
func (x *Expression) Evaluate(ctx context.Context, vars Vars, opts ...Option) (any, error) {
	return NewInterpolator(vars, opts...).Evaluate(ctx, x.root)
}

// String returns the canonical text of the expression.
func (x *Expression) String() string { return Unparse(x.root) }

// Compile tokenizes and parses source. Results, including failures, are
// cached by source text unless a custom constant table is given with
// [WithConstants] or caching is disabled with [WithCache]. The cache holds
// at most the number of entries set by [SetCacheLimit].
func Compile(ctx context.Context, source string, opts ...Option) (*Expression, error) {
	return compile(ctx, source, makeOptions(opts...))
}

func compile(ctx context.Context, source string, o options) (*Expression, error) {
	if o.customConsts {
		o.logger.TraceContext(ctx, "cache bypass",
			slog.Int("constants", o.constants.Len()),
		)

		return compileNow(ctx, source, o)
	}

	limit := cacheLimit.Load()
	if o.noCache || limit <= 0 {
		return compileNow(ctx, source, o)
	}

	hash := xxh3.HashString(source)
	key := strconv.FormatUint(hash, 36)

	value, cacheHit := globalCache.Load(key)
	if !cacheHit {
		if cacheLen.Load() >= limit {
			o.logger.TraceContext(ctx, "cache full",
				slog.Int64("limit", limit),
			)
			ClearCache()
		}

		value, cacheHit = globalCache.LoadOrStore(key, &state{source: source})
		if !cacheHit {
			cacheLen.Add(1)
		}
	}

	entry, ok := value.(*state)
	if !ok || entry.source != source {
		// Hash collision with a different source.
		return compileNow(ctx, source, o)
	}

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", cacheHit),
	)

	entry.once.Do(func() {
		entry.expr, entry.err = compileNow(ctx, source, o)
	})

	return entry.expr, entry.err
}

func compileNow(ctx context.Context, source string, o options) (*Expression, error) {
	stream, err := tokenize(ctx, source, o)
	if err != nil {
		return nil, err
	}

	root, err := parse(ctx, stream, o)
	if err != nil {
		return nil, err
	}

	return &Expression{source: source, root: root}, nil
}

// ClearCache removes all cached compilations.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
	cacheLen.Store(0)
}

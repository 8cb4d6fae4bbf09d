package lang

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// placeholder matches ${expression}, optionally escaped as \${expression}.
// Braces and backslashes inside the expression must be escaped.
var placeholder = regexp.MustCompile(`(\\?)\$\{((?:[^{}\\]|\\.)*)\}`)

// braceUnescaper restores escaped braces inside a placeholder expression.
var braceUnescaper = strings.NewReplacer(`\{`, `{`, `\}`, `}`)

// Interpolate replaces each ${expression} placeholder in s with the
// stringified value of the expression evaluated against vars.
//
// A placeholder preceded by a backslash is emitted literally without the
// backslash. The first failing placeholder aborts the interpolation unless an
// [ErrorHandler] is configured with [WithErrorHandler].
func Interpolate(ctx context.Context, s string, vars Vars, opts ...Option) (string, error) {
	return NewInterpolator(vars, opts...).Interpolate(ctx, s)
}

// Interpolate replaces each ${expression} placeholder in s. See the
// package-level [Interpolate].
func (in *Interpolator) Interpolate(ctx context.Context, s string) (string, error) {
	matches := placeholder.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	var sb strings.Builder

	sb.Grow(len(s))

	last := 0

	for _, m := range matches {
		sb.WriteString(s[last:m[0]])
		last = m[1]

		whole := s[m[0]:m[1]]

		// Escaped placeholder: drop the backslash, keep the rest verbatim.
		if m[3] > m[2] {
			sb.WriteString(whole[1:])

			continue
		}

		out, err := in.expand(ctx, s[m[4]:m[5]])
		if err != nil {
			in.opts.logger.DebugContext(ctx, "placeholder failed",
				slog.String("placeholder", whole),
				slog.Any("error", err),
			)

			if in.opts.onError == nil {
				return "", err
			}

			out, err = in.opts.onError(whole, err)
			if err != nil {
				return "", err
			}
		}

		sb.WriteString(out)
	}

	sb.WriteString(s[last:])

	in.opts.logger.TraceContext(ctx, "interpolated",
		slog.Int("placeholders", len(matches)),
		slog.Int("input_bytes", len(s)),
		slog.Int("output_bytes", sb.Len()),
	)

	return sb.String(), nil
}

// expand compiles, evaluates and stringifies one placeholder expression.
func (in *Interpolator) expand(ctx context.Context, expr string) (string, error) {
	if in.opts.entityDecoding {
		expr = html.UnescapeString(expr)
	}

	expr = braceUnescaper.Replace(expr)

	x, err := compile(ctx, expr, in.opts)
	if err != nil {
		return "", err
	}

	v, err := in.Evaluate(ctx, x.Root())
	if err != nil {
		return "", err
	}

	return Stringify(v)
}

// Stringify converts a value to the text substituted for a placeholder:
// nil and false become "", true becomes "1", numbers are formatted in their
// shortest decimal form and [fmt.Stringer] values use their String method.
// Containers, objects and other values fail with [ErrNotStringable].
func Stringify(v any) (string, error) {
	if s, ok := scalarString(v); ok {
		return s, nil
	}

	if s, ok := v.(fmt.Stringer); ok {
		return s.String(), nil
	}

	return "", ErrNotStringable.
		Detail("value of type %s", typeName(v)).
		With(slog.String("type", typeName(v)))
}

// scalarString formats scalar values. It reports false for non-scalars.
func scalarString(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", true

	case string:
		return v, true

	case bool:
		if v {
			return "1", true
		}

		return "", true

	case float32:
		return formatFloat(float64(v), 32), true

	case float64:
		return formatFloat(v, 64), true

	case uint64:
		return strconv.FormatUint(v, 10), true

	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	}

	if i, ok := toInt(v); ok {
		return strconv.Itoa(i), true
	}

	return "", false
}

// formatFloat writes f with the fewest digits that read back as f. Decimal
// exponents below -4 or from 15 up use exponent form with a fractional
// mantissa, as in 1.0E+25.
func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NAN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}

	e := strconv.FormatFloat(f, 'e', -1, bits)

	mant, exp, _ := strings.Cut(e, "e")

	n, err := strconv.Atoi(exp)
	if err != nil || (n >= -4 && n < 15) {
		return strconv.FormatFloat(f, 'f', -1, bits)
	}

	if !strings.Contains(mant, ".") {
		mant += ".0"
	}

	sign := "+"
	if n < 0 {
		sign, n = "-", -n
	}

	return mant + "E" + sign + strconv.Itoa(n)
}

package lang

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
)

// Key is an array key: either an integer or a string.
// The zero Key is the integer key 0.
type Key struct {
	str   string
	num   int
	isStr bool
}

// IntKey returns an integer key.
func IntKey(i int) Key { return Key{num: i} }

// StringKey returns a string key. The string is used verbatim; use
// [NormalizeKey] to apply numeric string coercion.
func StringKey(s string) Key { return Key{str: s, isStr: true} }

// IsInt reports whether k is an integer key.
func (k Key) IsInt() bool { return !k.isStr }

// Int returns the integer value of an integer key, or 0.
func (k Key) Int() int { return k.num }

// String returns the key as text. Integer keys are formatted in decimal.
func (k Key) String() string {
	if k.isStr {
		return k.str
	}

	return strconv.Itoa(k.num)
}

// Value returns the key as an int or a string.
func (k Key) Value() any {
	if k.isStr {
		return k.str
	}

	return k.num
}

// LogValue implements slog.LogValuer.
func (k Key) LogValue() slog.Value {
	if k.isStr {
		return slog.StringValue(k.str)
	}

	return slog.IntValue(k.num)
}

// NormalizeKey coerces v into an array key:
//   - integers pass through;
//   - booleans and finite floats are truncated to an integer;
//   - a string of decimal digits without leading zero that fits an int
//     becomes an integer, other strings are kept;
//   - nil becomes the empty string.
//
// Any other value fails with [ErrInvalidKey].
func NormalizeKey(v any) (Key, error) {
	switch v := v.(type) {
	case Key:
		return v, nil

	case nil:
		return StringKey(""), nil

	case bool:
		if v {
			return IntKey(1), nil
		}

		return IntKey(0), nil

	case string:
		return stringKey(v), nil

	case float32:
		return floatKey(float64(v))

	case float64:
		return floatKey(v)
	}

	if i, ok := toInt(v); ok {
		return IntKey(i), nil
	}

	return Key{}, ErrInvalidKey.
		Detail("of type %s", typeName(v)).
		With(slog.String("type", typeName(v)))
}

func stringKey(s string) Key {
	if s == "" || s[0] == '0' {
		return StringKey(s)
	}

	for i := range len(s) {
		if !isDigit(s[i]) {
			return StringKey(s)
		}
	}

	i, err := strconv.Atoi(s)
	if err != nil {
		return StringKey(s)
	}

	return IntKey(i)
}

func floatKey(f float64) (Key, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) ||
		f >= math.MaxInt64 || f < math.MinInt64 {
		return Key{}, ErrInvalidKey.
			Detail("%s", strconv.FormatFloat(f, 'g', -1, 64)).
			With(slog.Float64("value", f))
	}

	return IntKey(int(f)), nil
}

// toInt converts any Go integer kind to int. Unsigned values beyond the int
// range are rejected.
func toInt(v any) (int, bool) {
	switch v := v.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), v <= math.MaxInt
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), v <= math.MaxInt
	case uintptr:
		return int(v), uint64(v) <= math.MaxInt
	}

	return 0, false
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}

	return fmt.Sprintf("%T", v)
}

package lang

import (
	"errors"
	"math"
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Key
	}{
		{"int", 3, IntKey(3)},
		{"negative int", -2, IntKey(-2)},
		{"int64", int64(9), IntKey(9)},
		{"uint8", uint8(200), IntKey(200)},
		{"true", true, IntKey(1)},
		{"false", false, IntKey(0)},
		{"float truncates", 1.9, IntKey(1)},
		{"negative float truncates", -1.9, IntKey(-1)},
		{"float32", float32(4.5), IntKey(4)},
		{"nil", nil, StringKey("")},
		{"digit string", "8", IntKey(8)},
		{"multi-digit string", "1234", IntKey(1234)},
		{"leading zero", "08", StringKey("08")},
		{"zero string", "0", StringKey("0")},
		{"signed string", "-1", StringKey("-1")},
		{"decimal string", "1.5", StringKey("1.5")},
		{"spaced string", " 1", StringKey(" 1")},
		{"overflowing string", "99999999999999999999", StringKey("99999999999999999999")},
		{"word", "abc", StringKey("abc")},
		{"empty string", "", StringKey("")},
		{"key", StringKey("5"), StringKey("5")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeKey(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestNormalizeKey_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"NaN", math.NaN()},
		{"infinity", math.Inf(1)},
		{"huge float", 1e300},
		{"huge unsigned", uint64(math.MaxUint64)},
		{"array", ListOf(1)},
		{"object", Members{}},
		{"slice", []any{}},
		{"func", func() {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeKey(tt.in)
			if !errors.Is(err, ErrInvalidKey) {
				t.Errorf("got %v, want %v", err, ErrInvalidKey)
			}
		})
	}
}

func TestKey_Accessors(t *testing.T) {
	var zero Key
	if !zero.IsInt() || zero.Int() != 0 || zero.String() != "0" {
		t.Errorf("zero key: %#v", zero)
	}

	s := StringKey("7")
	if s.IsInt() || s.String() != "7" || s.Value() != "7" {
		t.Errorf("string key: %#v", s)
	}

	if s == IntKey(7) {
		t.Error("string and integer keys must differ")
	}

	if v := IntKey(-3).Value(); v != -3 {
		t.Errorf("Value: got %#v", v)
	}
}

package lang

import (
	"slices"
	"testing"
)

func TestAsContainer(t *testing.T) {
	tests := []struct {
		name string
		in   any
		key  Key
		want any
		ok   bool
	}{
		{"array", ListOf("a"), IntKey(0), "a", true},
		{"vars", Vars{"x": 1}, StringKey("x"), 1, true},
		{"map", map[string]any{"1": "one"}, IntKey(1), "one", true},
		{"string map", map[string]string{"k": "v"}, StringKey("k"), "v", true},
		{"slice", []any{"a", "b"}, IntKey(1), "b", true},
		{"slice string key", []any{"a"}, StringKey("0"), nil, false},
		{"slice negative", []string{"a"}, IntKey(-1), nil, false},
		{"slice out of range", []string{"a"}, IntKey(1), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := AsContainer(tt.in)
			if !ok {
				t.Fatalf("%T should be a container", tt.in)
			}

			got, ok := c.Lookup(tt.key)
			if ok != tt.ok || got != tt.want {
				t.Errorf("got %#v, %v; want %#v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}

	for _, in := range []any{nil, 1, "s", Members{}, []int{1}} {
		if _, ok := AsContainer(in); ok {
			t.Errorf("%T should not be a container", in)
		}
	}
}

func TestMembers_Names(t *testing.T) {
	m := Members{
		Methods:    map[string]Func{"b": nil, "a": nil},
		Properties: map[string]any{"a": 1, "c": 2},
		Constants:  map[string]any{"D": 3},
	}

	if got, want := m.Names(), []string{"D", "a", "b", "c"}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, ok := m.Method("a"); ok {
		t.Error("nil method should be absent")
	}
}

func TestKeysOf(t *testing.T) {
	a := NewArray()
	a.Set(StringKey("z"), 1)
	a.Set(IntKey(3), 2)

	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"array keeps order", a, []string{"z", "3"}},
		{"map sorted", map[string]any{"b": 1, "a": 2}, []string{"a", "b"}},
		{"object", Members{Properties: map[string]any{"p": 1}}, []string{"p"}},
		{"scalar", 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeysOf(tt.in); !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

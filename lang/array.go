package lang

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/goccy/go-yaml"
)

// Array is an ordered mapping from [Key] to value, the result of evaluating
// an array literal. Overwriting an existing key keeps its position.
//
// The zero value is an empty array ready to use.
type Array struct {
	keys   []Key
	values []any
	index  map[Key]int
	next   int
}

// NewArray returns an empty array.
func NewArray() *Array { return &Array{} }

// ListOf returns an array with the given values under keys 0..n-1.
func ListOf(values ...any) *Array {
	a := NewArray()
	for _, v := range values {
		a.Append(v)
	}

	return a
}

// Set binds k to v.
func (a *Array) Set(k Key, v any) {
	if a.index == nil {
		a.index = make(map[Key]int)
	}

	if i, ok := a.index[k]; ok {
		a.values[i] = v

		return
	}

	a.index[k] = len(a.keys)
	a.keys = append(a.keys, k)
	a.values = append(a.values, v)

	if k.IsInt() && k.Int() >= a.next {
		a.next = k.Int() + 1
	}
}

// Append binds v to the next integer key, one past the greatest
// non-negative integer key, and returns that key.
func (a *Array) Append(v any) Key {
	k := IntKey(a.next)
	a.Set(k, v)

	return k
}

// Get returns the value bound to k.
func (a *Array) Get(k Key) (any, bool) {
	if a == nil {
		return nil, false
	}

	i, ok := a.index[k]
	if !ok {
		return nil, false
	}

	return a.values[i], true
}

// Lookup implements [Container].
func (a *Array) Lookup(k Key) (any, bool) { return a.Get(k) }

// Len returns the number of entries.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}

	return len(a.keys)
}

// Keys returns the keys in insertion order.
func (a *Array) Keys() []Key {
	if a == nil {
		return nil
	}

	return slices.Clone(a.keys)
}

// Values returns the values in insertion order.
func (a *Array) Values() []any {
	if a == nil {
		return nil
	}

	return slices.Clone(a.values)
}

// All returns an iterator over the entries in insertion order.
func (a *Array) All() iter.Seq2[Key, any] {
	return func(yield func(Key, any) bool) {
		for i := range a.Len() {
			if !yield(a.keys[i], a.values[i]) {
				return
			}
		}
	}
}

// IsList reports whether the keys are exactly 0..n-1 in order.
func (a *Array) IsList() bool {
	for i := range a.Len() {
		if !a.keys[i].IsInt() || a.keys[i].Int() != i {
			return false
		}
	}

	return true
}

// Native converts the array, recursively, to a []any when it is a list and
// to a map[string]any otherwise.
func (a *Array) Native() any {
	if a.IsList() {
		s := make([]any, a.Len())
		for i, v := range a.values {
			s[i] = native(v)
		}

		return s
	}

	m := make(map[string]any, a.Len())
	for k, v := range a.All() {
		m[k.String()] = native(v)
	}

	return m
}

func native(v any) any {
	if a, ok := v.(*Array); ok {
		return a.Native()
	}

	return v
}

// MarshalJSON encodes a list as a JSON array and any other array as an
// object with keys in insertion order.
func (a *Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	if a.IsList() {
		buf.WriteByte('[')

		for i, v := range a.Values() {
			if i > 0 {
				buf.WriteByte(',')
			}

			b, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}

			buf.Write(b)
		}

		buf.WriteByte(']')

		return buf.Bytes(), nil
	}

	buf.WriteByte('{')

	for i, k := range a.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}

		kb, err := json.Marshal(k.String())
		if err != nil {
			return nil, err
		}

		vb, err := json.Marshal(a.values[i])
		if err != nil {
			return nil, err
		}

		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON array or object, keeping object key order.
func (a *Array) UnmarshalJSON(b []byte) error {
	return a.UnmarshalYAML(b)
}

// MarshalYAML encodes a list as a sequence and any other array as a mapping
// with keys in insertion order. Mapping keys are written as strings; integer
// keys read back as integers through [NormalizeKey].
func (a *Array) MarshalYAML() (any, error) {
	if a.IsList() {
		return a.Values(), nil
	}

	ms := make(yaml.MapSlice, 0, a.Len())
	for k, v := range a.All() {
		ms = append(ms, yaml.MapItem{Key: k.String(), Value: v})
	}

	return ms, nil
}

// UnmarshalYAML decodes a YAML sequence or mapping, keeping mapping order.
func (a *Array) UnmarshalYAML(b []byte) error {
	var v any

	err := yaml.UnmarshalWithOptions(b, &v, yaml.UseOrderedMap())
	if err != nil {
		return err
	}

	arr, ok := FromNative(v).(*Array)
	if !ok {
		return ErrDecode.Detail("document of type %s is not a collection", typeName(v))
	}

	*a = *arr

	return nil
}

// FromNative converts decoded data into engine values: mappings become
// *Array with normalized keys (native maps in sorted key order, ordered YAML
// mappings in document order) and sequences become lists. Other values are
// returned unchanged.
func FromNative(v any) any {
	switch v := v.(type) {
	case *Array:
		return v

	case yaml.MapSlice:
		a := NewArray()
		for _, item := range v {
			a.Set(nativeKey(item.Key), FromNative(item.Value))
		}

		return a

	case map[string]any:
		a := NewArray()
		for _, k := range slices.Sorted(maps.Keys(v)) {
			a.Set(nativeKey(k), FromNative(v[k]))
		}

		return a

	case map[any]any:
		keys := make([]string, 0, len(v))
		byName := make(map[string]any, len(v))

		for k, val := range v {
			s := fmt.Sprint(k)
			keys = append(keys, s)
			byName[s] = val
		}

		slices.Sort(keys)

		a := NewArray()
		for _, k := range keys {
			a.Set(nativeKey(k), FromNative(byName[k]))
		}

		return a

	case []any:
		a := NewArray()
		for _, val := range v {
			a.Append(FromNative(val))
		}

		return a

	case int64, uint64:
		if i, ok := toInt(v); ok {
			return i
		}

		return v

	default:
		return v
	}
}

func nativeKey(v any) Key {
	k, err := NormalizeKey(v)
	if err != nil {
		return StringKey(fmt.Sprint(v))
	}

	return k
}

package lang

import (
	"encoding/json"
	"maps"
	"slices"
)

// Vars is the variable context of an evaluation: the values that root
// identifiers refer to. The engine never modifies it.
type Vars map[string]any

// Container is an array-like value whose entries are addressed by [Key].
// [*Array] implements it. Values of type map[string]any, map[string]string,
// []any, []string and [Vars] are treated as containers as well.
type Container interface {
	Lookup(k Key) (any, bool)
}

// Func is a callable value: an object method, or a variable that is called
// at the root of an expression.
type Func func(args ...any) (any, error)

// CallFunc handles calls to object members that have no method of their own.
type CallFunc func(name string, args ...any) (any, error)

// GetFunc handles reads of object members that have no property of their
// own.
type GetFunc func(name string) (any, error)

// Object is a value whose members are resolved by capability. For a member
// name, the evaluator tries in order: Method, CallFallback, Property,
// GetFallback and Constant, and uses the first one that is present.
type Object interface {
	Method(name string) (Func, bool)
	CallFallback() (CallFunc, bool)
	Property(name string) (any, bool)
	GetFallback() (GetFunc, bool)
	Constant(name string) (any, bool)
}

// Named is implemented by objects that name their type in error messages.
type Named interface {
	TypeName() string
}

// Enumerable is implemented by values that can list the member names they
// resolve, for completion and introspection.
type Enumerable interface {
	Names() []string
}

// Members is an [Object] assembled from maps. Nil maps and nil fallbacks
// are absent capabilities.
type Members struct {
	Name       string
	Methods    map[string]Func
	Properties map[string]any
	Constants  map[string]any
	Call       CallFunc
	Get        GetFunc
}

// Method implements [Object].
func (m Members) Method(name string) (Func, bool) {
	fn, ok := m.Methods[name]

	return fn, ok && fn != nil
}

// CallFallback implements [Object].
func (m Members) CallFallback() (CallFunc, bool) { return m.Call, m.Call != nil }

// Property implements [Object].
func (m Members) Property(name string) (any, bool) {
	v, ok := m.Properties[name]

	return v, ok
}

// GetFallback implements [Object].
func (m Members) GetFallback() (GetFunc, bool) { return m.Get, m.Get != nil }

// Constant implements [Object].
func (m Members) Constant(name string) (any, bool) {
	v, ok := m.Constants[name]

	return v, ok
}

// TypeName implements [Named].
func (m Members) TypeName() string {
	if m.Name == "" {
		return "object"
	}

	return m.Name
}

// Names implements [Enumerable].
func (m Members) Names() []string {
	names := slices.Collect(maps.Keys(m.Methods))
	names = slices.AppendSeq(names, maps.Keys(m.Properties))
	names = slices.AppendSeq(names, maps.Keys(m.Constants))

	slices.Sort(names)

	return slices.Compact(names)
}

// MarshalJSON encodes the properties and constants of m as an object.
// Methods and fallbacks are not data and are omitted.
func (m Members) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.data())
}

// MarshalYAML encodes the properties and constants of m as a mapping.
func (m Members) MarshalYAML() (any, error) {
	return m.data(), nil
}

func (m Members) data() map[string]any {
	d := make(map[string]any, len(m.Properties)+len(m.Constants))
	maps.Copy(d, m.Constants)
	maps.Copy(d, m.Properties)

	return d
}

// AsContainer returns v as a [Container] if it is one or if it is one of the
// native map and slice types adapted by the engine.
func AsContainer(v any) (Container, bool) {
	switch v := v.(type) {
	case Container:
		return v, true
	case Vars:
		return mapContainer[any](v), true
	case map[string]any:
		return mapContainer[any](v), true
	case map[string]string:
		return mapContainer[string](v), true
	case []any:
		return sliceContainer[any](v), true
	case []string:
		return sliceContainer[string](v), true
	}

	return nil, false
}

// KeysOf lists the keys or member names v resolves, in order: array keys in
// insertion order, native map keys sorted. It returns nil for values that
// cannot be traversed or enumerated.
func KeysOf(v any) []string {
	switch v := v.(type) {
	case *Array:
		keys := make([]string, 0, v.Len())
		for k := range v.All() {
			keys = append(keys, k.String())
		}

		return keys

	case Enumerable:
		return v.Names()

	case Vars:
		return slices.Sorted(maps.Keys(v))

	case map[string]any:
		return slices.Sorted(maps.Keys(v))

	case map[string]string:
		return slices.Sorted(maps.Keys(v))
	}

	return nil
}

type mapContainer[T any] map[string]T

func (m mapContainer[T]) Lookup(k Key) (any, bool) {
	v, ok := m[k.String()]

	return v, ok
}

type sliceContainer[T any] []T

func (s sliceContainer[T]) Lookup(k Key) (any, bool) {
	if !k.IsInt() || k.Int() < 0 || k.Int() >= len(s) {
		return nil, false
	}

	return s[k.Int()], true
}

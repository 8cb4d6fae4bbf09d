package lang

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// eval compiles and evaluates input without the cache.
func eval(t *testing.T, input string, vars Vars, opts ...Option) (any, error) {
	t.Helper()

	root, err := ParseString(t.Context(), input, opts...)
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}

	return Evaluate(t.Context(), root, vars, opts...)
}

// assertKeys checks the keys and values of an evaluated array, in order.
func assertKeys(t *testing.T, got any, keys []Key, values []any) {
	t.Helper()

	a, ok := got.(*Array)
	if !ok {
		t.Fatalf("got %T, want *Array", got)
	}

	if a.Len() != len(keys) {
		t.Fatalf("got %d entries %s, want %d", a.Len(), Format(a), len(keys))
	}

	i := 0
	for k, v := range a.All() {
		if k != keys[i] {
			t.Errorf("key %d: got %#v, want %#v", i, k, keys[i])
		}

		if v != values[i] {
			t.Errorf("value %d: got %#v, want %#v", i, v, values[i])
		}

		i++
	}
}

func TestEvaluate_Literals(t *testing.T) {
	vars := Vars{"x": "ignored"}

	tests := []struct {
		input string
		want  any
	}{
		{"42", 42},
		{`"abc"`, "abc"},
		{"1.5", 1.5},
		{"true", true},
		{"FALSE", false},
		{"null", nil},
		{"INT_MAX", int(^uint(0) >> 1)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			for _, vs := range []Vars{nil, vars} {
				got, err := eval(t, tt.input, vs)
				if err != nil {
					t.Fatalf("evaluate error: %v", err)
				}

				if got != tt.want {
					t.Errorf("got %#v, want %#v", got, tt.want)
				}
			}
		})
	}
}

func TestEvaluate_Traversal(t *testing.T) {
	vars := Vars{
		"page": map[string]any{"title": "Hello"},
		"items": []any{
			map[string]any{"name": "first"},
			map[string]any{"name": "second"},
		},
		"m":    map[string]any{"a": map[string]string{"b": "deep"}},
		"list": ListOf("zero", ListOf("one")),
		"tags": []string{"x", "y"},
	}

	tests := []struct {
		input string
		want  any
	}{
		{"page.title", "Hello"},
		{`page["title"]`, "Hello"},
		{"items[1].name", "second"},
		{`m["a"]["b"]`, "deep"},
		{"m.a.b", "deep"},
		{"list[0]", "zero"},
		{"list[1][0]", "one"},
		{`list["1"][0]`, "one"},
		{"list[true][false]", "one"},
		{"tags[1]", "y"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := eval(t, tt.input, vars)
			if err != nil {
				t.Fatalf("evaluate error: %v", err)
			}

			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_MemberPriority(t *testing.T) {
	obj := Members{
		Name: "Page",
		Methods: map[string]Func{
			"name":  func(...any) (any, error) { return "method", nil },
			"shout": func(args ...any) (any, error) { return strings.ToUpper(args[0].(string)), nil },
			"greet": func(...any) (any, error) { return "hello", nil },
		},
		Properties: map[string]any{"name": "property", "size": 3},
		Constants:  map[string]any{"KIND": "page", "size": 0},
	}

	withFallbacks := Members{
		Methods: map[string]Func{
			"greet": func(...any) (any, error) { return "method greet", nil },
		},
		Call: func(name string, args ...any) (any, error) {
			return fmt.Sprintf("call %s/%d", name, len(args)), nil
		},
		Properties: map[string]any{"title": "property"},
		Get: func(name string) (any, error) {
			return "get " + name, nil
		},
	}

	getOnly := Members{
		Get:       func(name string) (any, error) { return "get " + name, nil },
		Constants: map[string]any{"KIND": "constant"},
	}

	vars := Vars{"obj": obj, "fb": withFallbacks, "get": getOnly}

	tests := []struct {
		input string
		want  any
	}{
		{"obj.name()", "method"},
		{"obj.name", "property"},
		{`obj.shout("hi")`, "HI"},
		{"obj.size", 3},
		{"obj.KIND", "page"},
		{"fb.title(1, 2)", "call title/2"},
		{"fb.title", "call title/0"},
		{"obj.greet", "hello"},
		{"fb.greet", "call greet/0"},
		{"fb.greet()", "method greet"},
		{"fb.other", "call other/0"},
		{"get.anything", "get anything"},
		{"get.KIND", "get KIND"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := eval(t, tt.input, vars)
			if err != nil {
				t.Fatalf("evaluate error: %v", err)
			}

			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_RootCall(t *testing.T) {
	vars := Vars{
		"upper": Func(func(args ...any) (any, error) {
			return strings.ToUpper(args[0].(string)), nil
		}),
		"count": func(args ...any) (any, error) { return len(args), nil },
		"plain": "value",
	}

	tests := []struct {
		input string
		want  any
	}{
		{`upper("x")`, "X"},
		{`count(1, [2], "3")`, 3},
		{"count()", 0},
		{"plain(1)", "value"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := eval(t, tt.input, vars)
			if err != nil {
				t.Fatalf("evaluate error: %v", err)
			}

			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_ArrayKeys(t *testing.T) {
	vars := Vars{"k": "dyn", "n": 7}

	tests := []struct {
		input  string
		keys   []Key
		values []any
	}{
		{
			input:  `[10 => "a", "b", "c"]`,
			keys:   []Key{IntKey(10), IntKey(11), IntKey(12)},
			values: []any{"a", "b", "c"},
		},
		{
			input:  `["x" => 1, 2]`,
			keys:   []Key{StringKey("x"), IntKey(0)},
			values: []any{1, 2},
		},
		{
			input:  `["08" => 1]`,
			keys:   []Key{StringKey("08")},
			values: []any{1},
		},
		{
			input:  `["8" => 1]`,
			keys:   []Key{IntKey(8)},
			values: []any{1},
		},
		{
			input:  `[1 => "a", 1 => "b"]`,
			keys:   []Key{IntKey(1)},
			values: []any{"b"},
		},
		{
			input:  `["a", 5 => "b", 2 => "c", "d"]`,
			keys:   []Key{IntKey(0), IntKey(5), IntKey(2), IntKey(6)},
			values: []any{"a", "b", "c", "d"},
		},
		{
			input:  `[-5 => "a", "b"]`,
			keys:   []Key{IntKey(-5), IntKey(0)},
			values: []any{"a", "b"},
		},
		{
			input:  `[true => "a", "b", null => "c", 2.9 => "d"]`,
			keys:   []Key{IntKey(1), IntKey(2), StringKey("")},
			values: []any{"a", "d", "c"},
		},
		{
			input:  `[k => 1, n => 2, "e"]`,
			keys:   []Key{StringKey("dyn"), IntKey(7), IntKey(8)},
			values: []any{1, 2, "e"},
		},
		{
			input:  `[]`,
			keys:   []Key{},
			values: []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := eval(t, tt.input, vars)
			if err != nil {
				t.Fatalf("evaluate error: %v", err)
			}

			assertKeys(t, got, tt.keys, tt.values)
		})
	}
}

func TestEvaluate_NestedArray(t *testing.T) {
	got, err := eval(t, `["a" => [1, 2], "b" => x.y]`, Vars{
		"x": map[string]any{"y": "z"},
	})
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	if s := Format(got); s != `["a" => [0 => 1, 1 => 2], "b" => "z"]` {
		t.Errorf("got %s", s)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	boom := errors.New("boom")

	vars := Vars{
		"n":    5,
		"s":    "str",
		"nil":  nil,
		"page": map[string]any{"title": "Hello"},
		"obj":  Members{Name: "Page"},
		"fail": Func(func(...any) (any, error) { return nil, boom }),
		"decode": Func(func(...any) (any, error) {
			return nil, ErrDecode.Detail("from host")
		}),
		"nested": Func(func(...any) (any, error) {
			return nil, ErrUndefinedKey.Detail(`"inner"`)
		}),
		"list": []any{1},
	}

	tests := []struct {
		input    string
		sentinel error
		wantMsg  string
	}{
		{
			input:    "missing",
			sentinel: ErrUndefinedVariable,
			wantMsg:  `undefined variable "missing"`,
		},
		{
			input:    "page.missing",
			sentinel: ErrUndefinedKey,
			wantMsg:  `undefined array key "missing"`,
		},
		{
			input:    "list[3]",
			sentinel: ErrUndefinedKey,
			wantMsg:  `undefined array key "3"`,
		},
		{
			input:    "n.anything",
			sentinel: ErrNotTraversable,
			wantMsg:  `value "5" cannot be traversed like arrays or objects`,
		},
		{
			input:    "s[0]",
			sentinel: ErrNotTraversable,
			wantMsg:  `value "str" cannot be traversed like arrays or objects`,
		},
		{
			input:    "nil.x",
			sentinel: ErrNotTraversable,
			wantMsg:  `value null cannot be traversed like arrays or objects`,
		},
		{
			input:    "obj.title",
			sentinel: ErrUndefinedMember,
			wantMsg:  `undefined class method, property or constant Page::title`,
		},
		{
			input:    "fail()",
			sentinel: ErrCall,
			wantMsg:  `call failed "fail": boom`,
		},
		{
			input:    "decode()",
			sentinel: ErrCall,
			wantMsg:  `call failed "decode": cannot decode array from host`,
		},
		{
			input:    "nested()",
			sentinel: ErrUndefinedKey,
			wantMsg:  `undefined array key "inner"`,
		},
		{
			input:    "[obj => 1]",
			sentinel: ErrInvalidKey,
			wantMsg:  `invalid array key of type lang.Members`,
		},
		{
			input:    "[1, missing]",
			sentinel: ErrUndefinedVariable,
		},
		{
			input:    "page.title.length",
			sentinel: ErrNotTraversable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := eval(t, tt.input, vars)
			if err == nil {
				t.Fatalf("expected error, got %#v", got)
			}

			if got != nil {
				t.Errorf("partial result %#v returned with error", got)
			}

			if !errors.Is(err, tt.sentinel) {
				t.Errorf("got %v, want %v", err, tt.sentinel)
			}

			if !IsInterpolationError(err) || IsSyntaxError(err) {
				t.Errorf("expected only an interpolation error, got %v", err)
			}

			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("message: got %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}

	t.Run("call error unwraps", func(t *testing.T) {
		_, err := eval(t, "fail()", vars)
		if !errors.Is(err, boom) {
			t.Errorf("expected cause to be preserved, got %v", err)
		}
	})
}

func TestEvaluate_MaxDepth(t *testing.T) {
	vars := Vars{
		"a": map[string]any{"b": map[string]any{"c": map[string]any{"d": 1}}},
	}

	if _, err := eval(t, "a.b.c.d", vars, WithMaxDepth(2)); !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("got %v, want %v", err, ErrMaxDepthExceeded)
	}

	got, err := eval(t, "a.b.c.d", vars, WithMaxDepth(8))
	if err != nil || got != 1 {
		t.Errorf("got %v, %v; want 1", got, err)
	}

	nested := strings.Repeat("[", 20) + strings.Repeat("]", 20)
	if _, err := eval(t, nested, nil, WithMaxDepth(10)); !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("nested arrays: got %v, want %v", err, ErrMaxDepthExceeded)
	}
}

func TestEvaluate_Canceled(t *testing.T) {
	root, err := ParseString(t.Context(), "x")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err = Evaluate(ctx, root, Vars{"x": 1})
	if !errors.Is(err, context.Canceled) || !IsInterpolationError(err) {
		t.Errorf("got %v, want canceled interpolation error", err)
	}
}

func TestEvaluate_DoesNotMutate(t *testing.T) {
	inner := map[string]any{"k": "v"}
	vars := Vars{"m": inner}

	root, err := ParseString(t.Context(), `[m.k, m["k"]]`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	before := Unparse(root)

	in := NewInterpolator(vars)
	for range 3 {
		if _, err := in.Evaluate(t.Context(), root); err != nil {
			t.Fatalf("evaluate error: %v", err)
		}
	}

	if Unparse(root) != before {
		t.Error("evaluation modified the tree")
	}

	if len(vars) != 1 || len(inner) != 1 || inner["k"] != "v" {
		t.Error("evaluation modified the variables")
	}
}

func TestEvaluate_InvalidNode(t *testing.T) {
	_, err := Evaluate(t.Context(), &ArgumentsNode{}, nil)
	if !errors.Is(err, ErrInvalidNode) {
		t.Errorf("got %v, want %v", err, ErrInvalidNode)
	}

	_, err = Evaluate(t.Context(), nil, nil)
	if !errors.Is(err, ErrInvalidNode) {
		t.Errorf("nil root: got %v, want %v", err, ErrInvalidNode)
	}
}

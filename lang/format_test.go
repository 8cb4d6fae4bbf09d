package lang

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestFormat(t *testing.T) {
	assoc := NewArray()
	assoc.Set(StringKey("k"), true)
	assoc.Set(IntKey(4), ListOf(nil))

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "null"},
		{"bool", false, "false"},
		{"int", -4, "-4"},
		{"float", 1.5, "1.5"},
		{"whole float", 2.0, "2.0"},
		{"string", "a\"b\n", `"a\"b\n"`},
		{"control byte", "\x01", `"\x01"`},
		{"list", ListOf("a", 1), `[0 => "a", 1 => 1]`},
		{"assoc", assoc, `["k" => true, 4 => [0 => null]]`},
		{"object", Members{Name: "Page"}, "<object Page>"},
		{"anonymous object", Members{}, "<object object>"},
		{"native map", map[string]any{"b": 1, "a": 2}, `["a" => 2, "b" => 1]`},
		{"native slice", []string{"x"}, `[0 => "x"]`},
		{"other", struct{}{}, "<struct {}>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.in); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

// Formatted strings and arrays read back as the same value.
func TestFormat_ReadsBack(t *testing.T) {
	values := []any{
		"tab\there \\ \"quoted\" 'single'",
		ListOf("a", ListOf(1, 2.5), nil, true),
	}

	for _, v := range values {
		src := Format(v)

		got, err := eval(t, src, nil)
		if err != nil {
			t.Fatalf("evaluate %s: %v", src, err)
		}

		if Format(got) != src {
			t.Errorf("got %s, want %s", Format(got), src)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	v := NewArray()
	v.Set(StringKey("b"), ListOf(1, "x"))
	v.Set(StringKey("a"), Members{Properties: map[string]any{"p": 1}})

	var buf bytes.Buffer
	if err := FormatJSON(&buf, v, 0); err != nil {
		t.Fatalf("format error: %v", err)
	}

	if got, want := buf.String(), `{"b":[1,"x"],"a":{"p":1}}`+"\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	buf.Reset()

	if err := FormatJSON(&buf, ListOf(1), 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	if got, want := buf.String(), "[\n  1\n]\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatYAML(t *testing.T) {
	var buf bytes.Buffer

	if err := FormatYAML(t.Context(), &buf, ListOf("a", "b"), 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	if got, want := buf.String(), "- a\n- b\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	buf.Reset()

	if err := FormatYAML(t.Context(), &buf, ListOf("a", "b"), 0); err != nil {
		t.Fatalf("format error: %v", err)
	}

	if got := strings.TrimSpace(buf.String()); got != "[a, b]" {
		t.Errorf("flow: got %q", got)
	}
}

func TestFormatYAML_Mappings(t *testing.T) {
	for _, src := range []string{
		`[10 => "a", "b", "c"]`,
		`["x" => 1, 2]`,
		`[1 => [3 => true], "k" => [null]]`,
	} {
		t.Run(src, func(t *testing.T) {
			v, err := eval(t, src, nil)
			if err != nil {
				t.Fatalf("evaluate error: %v", err)
			}

			for _, indent := range []int{2, 0} {
				var buf bytes.Buffer
				if err := FormatYAML(t.Context(), &buf, v, indent); err != nil {
					t.Fatalf("format error: %v", err)
				}

				var back Array
				if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
					t.Fatalf("unmarshal %q: %v", buf.String(), err)
				}

				if Format(&back) != Format(v) {
					t.Errorf("indent %d: got %s, want %s", indent, Format(&back), Format(v))
				}
			}
		})
	}
}

func TestFormatTokens(t *testing.T) {
	s, err := Tokenize(t.Context(), "a[0]")
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	var buf bytes.Buffer
	if err := FormatTokens(&buf, s); err != nil {
		t.Fatalf("format error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}

	if !strings.HasPrefix(lines[0], "POS") || !strings.Contains(lines[2], "punctuation") ||
		!strings.Contains(lines[5], "end") {
		t.Errorf("unexpected table:\n%s", buf.String())
	}
}

package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
)

// Format renders a value in array-literal syntax, so that the result of
// evaluating an expression reads like an expression:
//
//	[0 => "a", "k" => 1, "nested" => [0 => true]]
//
// Objects render as <object Name>.
func Format(v any) string {
	var sb strings.Builder

	formatValue(&sb, v)

	return sb.String()
}

func formatValue(sb *strings.Builder, v any) {
	switch v := v.(type) {
	case nil:
		sb.WriteString("null")

	case bool:
		sb.WriteString(strconv.FormatBool(v))

	case string:
		sb.WriteString(quote(v))

	case float32, float64:
		s, _ := scalarString(v)
		sb.WriteString(s)

		if !strings.ContainsAny(s, ".eEN") {
			sb.WriteString(".0")
		}

	case *Array:
		sb.WriteByte('[')

		i := 0
		for k, e := range v.All() {
			if i > 0 {
				sb.WriteString(", ")
			}

			i++

			if k.IsInt() {
				sb.WriteString(k.String())
			} else {
				sb.WriteString(quote(k.String()))
			}

			sb.WriteString(" => ")
			formatValue(sb, e)
		}

		sb.WriteByte(']')

	case Object:
		sb.WriteString("<object ")
		sb.WriteString(objectTypeName(v))
		sb.WriteByte('>')

	case Vars:
		formatValue(sb, FromNative(map[string]any(v)))

	case map[string]any, []any:
		formatValue(sb, FromNative(v))

	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}

		formatValue(sb, FromNative(m))

	case []string:
		formatValue(sb, ListOf(stringsToAny(v)...))

	default:
		if s, ok := scalarString(v); ok {
			sb.WriteString(s)

			return
		}

		if s, ok := v.(fmt.Stringer); ok {
			sb.WriteString(quote(s.String()))

			return
		}

		fmt.Fprintf(sb, "<%s>", typeName(v))
	}
}

// quote renders s as a double-quoted string literal that the tokenizer
// reads back to s.
func quote(s string) string {
	var sb strings.Builder

	sb.Grow(len(s) + 2)
	sb.WriteByte('"')

	for i := range len(s) {
		switch c := s[i]; c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&sb, `\x%02x`, c)
			} else {
				sb.WriteByte(c)
			}
		}
	}

	sb.WriteByte('"')

	return sb.String()
}

func stringsToAny(s []string) []any {
	a := make([]any, len(s))
	for i, v := range s {
		a[i] = v
	}

	return a
}

// FormatJSON writes v as JSON followed by a newline. A positive indent
// pretty-prints with that many spaces per level.
func FormatJSON(w io.Writer, v any, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes v as YAML. A positive indent sets the block indentation;
// zero selects flow style.
func FormatYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// FormatTokens writes the tokens of s as an aligned table of position, kind
// and text.
func FormatTokens(w io.Writer, s *TokenStream) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "POS\tKIND\tTEXT")

	for t := range s.All() {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", t.Pos, t.Kind, t.Text)
	}

	return tw.Flush()
}

package lang

import (
	"log/slog"
	"slices"
	"strconv"
)

// Kind identifies the lexical class of a [Token].
type Kind int

const (
	KindIdentifier Kind = iota
	KindNumber
	KindString
	KindPunctuation
	KindArrow
	KindEnd
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindIdentifier:
		return "identifier"

	case KindNumber:
		return "number"

	case KindString:
		return "string"

	case KindPunctuation:
		return "punctuation"

	case KindArrow:
		return "arrow"

	case KindEnd:
		return "end"

	default:
		return "unknown"
	}
}

// Token is a single lexeme of an expression.
type Token struct {
	Kind Kind
	Text string // raw lexeme, empty for KindEnd
	Pos  int    // byte offset in the source expression
}

// Test reports whether the token is of the given kind and, if any texts are
// given, whether its text equals one of them.
func (t Token) Test(kind Kind, text ...string) bool {
	if t.Kind != kind {
		return false
	}

	return len(text) == 0 || slices.Contains(text, t.Text)
}

// String describes the token for error messages.
func (t Token) String() string {
	if t.Kind == KindEnd {
		return "token of type end"
	}

	return "token " + strconv.Quote(t.Text) + " of type " + t.Kind.String()
}

// LogValue implements slog.LogValuer.
func (t Token) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", t.Kind.String()),
		slog.String("text", t.Text),
		slog.Int("position", t.Pos),
	)
}

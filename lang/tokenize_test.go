package lang

import (
	"errors"
	"slices"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "member call",
			input: "page.title()",
			want: []Token{
				{Kind: KindIdentifier, Text: "page", Pos: 0},
				{Kind: KindPunctuation, Text: ".", Pos: 4},
				{Kind: KindIdentifier, Text: "title", Pos: 5},
				{Kind: KindPunctuation, Text: "(", Pos: 10},
				{Kind: KindPunctuation, Text: ")", Pos: 11},
				{Kind: KindEnd, Pos: 12},
			},
		},
		{
			name:  "array with arrow",
			input: `[10 => "a"]`,
			want: []Token{
				{Kind: KindPunctuation, Text: "[", Pos: 0},
				{Kind: KindNumber, Text: "10", Pos: 1},
				{Kind: KindArrow, Text: "=>", Pos: 4},
				{Kind: KindString, Text: `"a"`, Pos: 7},
				{Kind: KindPunctuation, Text: "]", Pos: 10},
				{Kind: KindEnd, Pos: 11},
			},
		},
		{
			name:  "signed float with exponent",
			input: "-1.5e3",
			want: []Token{
				{Kind: KindNumber, Text: "-1.5e3", Pos: 0},
				{Kind: KindEnd, Pos: 6},
			},
		},
		{
			name:  "number followed by dot",
			input: "1.x",
			want: []Token{
				{Kind: KindNumber, Text: "1", Pos: 0},
				{Kind: KindPunctuation, Text: ".", Pos: 1},
				{Kind: KindIdentifier, Text: "x", Pos: 2},
				{Kind: KindEnd, Pos: 3},
			},
		},
		{
			name:  "single-quoted string with escaped quote",
			input: `'it\'s'`,
			want: []Token{
				{Kind: KindString, Text: `'it\'s'`, Pos: 0},
				{Kind: KindEnd, Pos: 7},
			},
		},
		{
			name:  "identifier with digits and underscore",
			input: "_a1 b_2",
			want: []Token{
				{Kind: KindIdentifier, Text: "_a1", Pos: 0},
				{Kind: KindIdentifier, Text: "b_2", Pos: 4},
				{Kind: KindEnd, Pos: 7},
			},
		},
		{
			name:  "whitespace only",
			input: " \t\n",
			want:  []Token{{Kind: KindEnd, Pos: 3}},
		},
		{
			name:  "empty",
			input: "",
			want:  []Token{{Kind: KindEnd, Pos: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Tokenize(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("tokenize error: %v", err)
			}

			got := slices.Collect(s.All())
			if !slices.Equal(got, tt.want) {
				t.Errorf("tokens:\n got %v\nwant %v", got, tt.want)
			}
		})
	}
}

func TestTokenize_Deterministic(t *testing.T) {
	const input = `a.b[0](1, "x", [k => v])`

	first, err := Tokenize(t.Context(), input)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	second, err := Tokenize(t.Context(), input)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	if !slices.Equal(slices.Collect(first.All()), slices.Collect(second.All())) {
		t.Error("tokenizing the same input twice gave different tokens")
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantPos int
		wantMsg string
	}{
		{
			name:    "unknown character",
			input:   "a # b",
			wantPos: 2,
			wantMsg: `unexpected character "#" at position 2`,
		},
		{
			name:    "unterminated string",
			input:   `x "abc`,
			wantPos: 2,
			wantMsg: `unexpected character "\"" at position 2`,
		},
		{
			name:    "lone sign",
			input:   "-",
			wantPos: 0,
			wantMsg: `unexpected character "-" at position 0`,
		},
		{
			name:    "lone equals",
			input:   "a = b",
			wantPos: 2,
			wantMsg: `unexpected character "=" at position 2`,
		},
		{
			name:    "multibyte character",
			input:   "é",
			wantPos: 0,
			wantMsg: `unexpected character "é" at position 0`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(t.Context(), tt.input)
			if err == nil {
				t.Fatal("expected error")
			}

			if !errors.Is(err, ErrUnexpectedCharacter) || !IsSyntaxError(err) {
				t.Errorf("expected syntax error, got %v", err)
			}

			if err.Error() != tt.wantMsg {
				t.Errorf("message: got %q, want %q", err.Error(), tt.wantMsg)
			}

			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *Error, got %T", err)
			}

			if pos, ok := e.Position(); !ok || pos != tt.wantPos {
				t.Errorf("position: got %d (%v), want %d", pos, ok, tt.wantPos)
			}
		})
	}
}

func TestTokenStream(t *testing.T) {
	s, err := Tokenize(t.Context(), "a.b")
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	if !s.Test(KindIdentifier, "x", "a") {
		t.Error("Test should match one of several texts")
	}

	if _, err := s.Expect(KindPunctuation); err == nil {
		t.Error("Expect should fail on a mismatched kind")
	}

	if got := s.Current(); got.Text != "a" {
		t.Errorf("failed Expect moved the cursor to %v", got)
	}

	for range 10 {
		s.Consume()
	}

	if !s.Test(KindEnd) {
		t.Errorf("cursor moved past end: %v", s.Current())
	}

	if err := s.ExpectEnd(); err != nil {
		t.Errorf("ExpectEnd: %v", err)
	}
}

func TestToken_String(t *testing.T) {
	tests := []struct {
		tok  Token
		want string
	}{
		{Token{Kind: KindIdentifier, Text: "foo"}, `token "foo" of type identifier`},
		{Token{Kind: KindArrow, Text: "=>"}, `token "=>" of type arrow`},
		{Token{Kind: KindEnd}, "token of type end"},
	}

	for _, tt := range tests {
		if got := tt.tok.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

package lang

import (
	"iter"
	"slices"
)

// TokenStream is a forward-only cursor over the tokens of one expression.
// It is owned by a single parse and never moves backward.
type TokenStream struct {
	tokens []Token
	index  int
}

func newTokenStream(tokens []Token) *TokenStream {
	if n := len(tokens); n == 0 || tokens[n-1].Kind != KindEnd {
		pos := 0
		if n > 0 {
			pos = tokens[n-1].Pos + len(tokens[n-1].Text)
		}

		tokens = append(tokens, Token{Kind: KindEnd, Pos: pos})
	}

	return &TokenStream{tokens: tokens}
}

// Current returns the token at the cursor without advancing.
func (s *TokenStream) Current() Token {
	return s.tokens[s.index]
}

// Test reports whether the current token matches kind and, if given, one of
// texts.
func (s *TokenStream) Test(kind Kind, text ...string) bool {
	return s.Current().Test(kind, text...)
}

// Consume returns the current token and advances the cursor. The cursor
// never advances past the final [KindEnd] token.
func (s *TokenStream) Consume() Token {
	t := s.Current()
	if s.index < len(s.tokens)-1 {
		s.index++
	}

	return t
}

// Expect consumes the current token if it matches kind and, if given, one of
// texts. Otherwise it fails with [ErrUnexpectedToken] without advancing.
func (s *TokenStream) Expect(kind Kind, text ...string) (Token, error) {
	if !s.Test(kind, text...) {
		return Token{}, unexpected(s.Current())
	}

	return s.Consume(), nil
}

// ExpectEnd fails with [ErrUnexpectedToken] unless the stream is exhausted.
func (s *TokenStream) ExpectEnd() error {
	if !s.Test(KindEnd) {
		return unexpected(s.Current())
	}

	return nil
}

// All returns an iterator over every token of the stream, including the
// final [KindEnd] token, independent of the cursor.
func (s *TokenStream) All() iter.Seq[Token] {
	return slices.Values(s.tokens)
}

// Len returns the number of tokens including the final [KindEnd] token.
func (s *TokenStream) Len() int { return len(s.tokens) }

func unexpected(t Token) *Error {
	return ErrUnexpectedToken.
		Detail("%s at position %d", t, t.Pos).
		WithPosition(t.Pos)
}

package lang

import (
	"context"
	"log/slog"
	"unicode/utf8"
)

// Tokenize scans source into a [TokenStream] terminated by a [KindEnd]
// token. It fails with [ErrUnexpectedCharacter] at the first byte that does
// not begin any token.
func Tokenize(
	ctx context.Context,
	source string,
	opts ...Option,
) (*TokenStream, error) {
	return tokenize(ctx, source, makeOptions(opts...))
}

func tokenize(ctx context.Context, source string, o options) (*TokenStream, error) {
	s := scanner{src: source}

	tokens, err := s.scan()
	if err != nil {
		return nil, err
	}

	o.logger.TraceContext(ctx, "tokenized",
		slog.Int("source_bytes", len(source)),
		slog.Int("tokens", len(tokens)),
	)

	return newTokenStream(tokens), nil
}

// scanner holds the tokenizer state.
type scanner struct {
	src string
	pos int
}

func (s *scanner) scan() ([]Token, error) {
	var tokens []Token

	for s.pos < len(s.src) {
		start := s.pos
		c := s.src[s.pos]

		var (
			kind Kind
			n    int
		)

		switch {
		case isIdentifierStart(c):
			kind, n = KindIdentifier, s.matchIdentifier()

		case isDigit(c) || c == '+' || c == '-':
			kind, n = KindNumber, s.matchNumber()

		case c == '\'' || c == '"':
			kind, n = KindString, s.matchString(c)

		case c == '=' && s.at(1) == '>':
			kind, n = KindArrow, 2

		case isPunctuation(c):
			kind, n = KindPunctuation, 1

		case isSpace(c):
			s.pos++

			continue
		}

		if n == 0 {
			r, _ := utf8.DecodeRuneInString(s.src[start:])

			return nil, ErrUnexpectedCharacter.
				Detail("%q at position %d", string(r), start).
				WithPosition(start)
		}

		s.pos += n
		tokens = append(tokens, Token{
			Kind: kind,
			Text: s.src[start:s.pos],
			Pos:  start,
		})
	}

	return append(tokens, Token{Kind: KindEnd, Pos: len(s.src)}), nil
}

// at returns the byte at offset i from the current position, or 0 past the
// end of input.
func (s *scanner) at(i int) byte {
	if s.pos+i >= len(s.src) {
		return 0
	}

	return s.src[s.pos+i]
}

// matchIdentifier returns the length of the identifier at the current
// position.
func (s *scanner) matchIdentifier() int {
	n := 1
	for isIdentifierContinue(s.at(n)) {
		n++
	}

	return n
}

// matchNumber returns the length of the number at the current position, or
// zero if there is none:
//
//	[+-]?[0-9]+(\.[0-9]+)?([Ee][+-]?[0-9]+)?
func (s *scanner) matchNumber() int {
	n := 0
	if c := s.at(0); c == '+' || c == '-' {
		n++
	}

	d := s.digits(n)
	if d == 0 {
		return 0
	}

	n += d

	if s.at(n) == '.' {
		if d := s.digits(n + 1); d > 0 {
			n += 1 + d
		}
	}

	if c := s.at(n); c == 'e' || c == 'E' {
		m := n + 1
		if c := s.at(m); c == '+' || c == '-' {
			m++
		}

		if d := s.digits(m); d > 0 {
			n = m + d
		}
	}

	return n
}

// digits returns the number of consecutive decimal digits at offset i.
func (s *scanner) digits(i int) int {
	n := 0
	for isDigit(s.at(i + n)) {
		n++
	}

	return n
}

// matchString returns the length of the quoted string at the current
// position, including both quotes, or zero if it is unterminated.
func (s *scanner) matchString(quote byte) int {
	for n := 1; s.pos+n < len(s.src); n++ {
		switch s.src[s.pos+n] {
		case '\\':
			n++

		case quote:
			return n + 1
		}
	}

	return 0
}

func isIdentifierStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentifierContinue(c byte) bool {
	return isIdentifierStart(c) || isDigit(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isPunctuation(c byte) bool {
	switch c {
	case '.', ',', '(', ')', '[', ']':
		return true
	}

	return false
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}

	return false
}

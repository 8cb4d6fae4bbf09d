package lang

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/interp/log"
)

// Parse consumes the whole stream and returns the root node of the
// expression. Identifiers naming a constant of the table configured with
// [WithConstants] (or [DefaultConstants]) become [ConstantNode] values.
func Parse(ctx context.Context, stream *TokenStream, opts ...Option) (Node, error) {
	return parse(ctx, stream, makeOptions(opts...))
}

func parse(ctx context.Context, stream *TokenStream, o options) (Node, error) {
	p := &parser{
		stream:    stream,
		constants: o.constants,
		logger:    o.logger,
	}

	root, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	err = p.stream.ExpectEnd()
	if err != nil {
		return nil, err
	}

	p.logger.TraceContext(ctx, "parsed",
		slog.String("root", root.Type().String()),
		slog.Int("tokens", stream.Len()),
	)

	return root, nil
}

// ParseString tokenizes and parses source.
func ParseString(ctx context.Context, source string, opts ...Option) (Node, error) {
	o := makeOptions(opts...)

	stream, err := tokenize(ctx, source, o)
	if err != nil {
		return nil, err
	}

	return parse(ctx, stream, o)
}

// parser holds the parser state.
type parser struct {
	stream    *TokenStream
	constants Constants
	logger    log.Logger
}

// parseExpression parses: Identifier | Number | String | Array.
func (p *parser) parseExpression() (Node, error) {
	t := p.stream.Current()

	switch {
	case t.Test(KindIdentifier):
		return p.parseIdentifier(true)

	case t.Test(KindNumber):
		return p.parseNumber()

	case t.Test(KindString):
		return p.parseString()

	case t.Test(KindPunctuation, "["):
		return p.parseArray()

	default:
		return nil, unexpected(t)
	}
}

// parseIdentifier parses: Identifier [Traversal] [Arguments].
// A constant name yields a ConstantNode when allowConstant is set.
func (p *parser) parseIdentifier(allowConstant bool) (Node, error) {
	t, err := p.stream.Expect(KindIdentifier)
	if err != nil {
		return nil, err
	}

	if allowConstant {
		if v, ok := p.constants.Lookup(t.Text); ok {
			return &ConstantNode{Name: t.Text, Value: v, Position: t.Pos}, nil
		}
	}

	n := &IdentifierNode{Name: t.Text, Position: t.Pos}

	switch {
	case p.stream.Test(KindPunctuation, "."):
		n.Traverse, err = p.parseDot()

	case p.stream.Test(KindPunctuation, "["):
		n.Traverse, err = p.parseBracket()
	}

	if err != nil {
		return nil, err
	}

	if p.stream.Test(KindPunctuation, "(") {
		n.Arguments, err = p.parseArguments()
		if err != nil {
			return nil, err
		}
	}

	return n, nil
}

// parseDot parses: '.' Identifier.
func (p *parser) parseDot() (Node, error) {
	_, err := p.stream.Expect(KindPunctuation, ".")
	if err != nil {
		return nil, err
	}

	return p.parseIdentifier(false)
}

// parseBracket parses: '[' (Number | String | Constant) ']' [Traversal].
func (p *parser) parseBracket() (Node, error) {
	open, err := p.stream.Expect(KindPunctuation, "[")
	if err != nil {
		return nil, err
	}

	var key Node

	switch t := p.stream.Current(); t.Kind {
	case KindNumber:
		key, err = p.parseNumber()

	case KindString:
		key, err = p.parseString()

	case KindIdentifier:
		v, ok := p.constants.Lookup(t.Text)
		if !ok {
			return nil, unexpected(t)
		}

		p.stream.Consume()

		key = &ConstantNode{Name: t.Text, Value: v, Position: t.Pos}

	default:
		return nil, unexpected(t)
	}

	if err != nil {
		return nil, err
	}

	_, err = p.stream.Expect(KindPunctuation, "]")
	if err != nil {
		return nil, err
	}

	var next Node

	switch {
	case p.stream.Test(KindPunctuation, "."):
		next, err = p.parseDot()

	case p.stream.Test(KindPunctuation, "["):
		next, err = p.parseBracket()

	default:
		return key, nil
	}

	if err != nil {
		return nil, err
	}

	return &IndexNode{Key: key, Traverse: next, Position: open.Pos}, nil
}

// parseArguments parses: '(' [Expression (',' Expression)*] ')'.
func (p *parser) parseArguments() (*ArgumentsNode, error) {
	open, err := p.stream.Expect(KindPunctuation, "(")
	if err != nil {
		return nil, err
	}

	args := &ArgumentsNode{Args: []Node{}, Position: open.Pos}

	for !p.stream.Test(KindPunctuation, ")") {
		if len(args.Args) > 0 {
			_, err = p.stream.Expect(KindPunctuation, ",")
			if err != nil {
				return nil, err
			}
		}

		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		args.Args = append(args.Args, arg)
	}

	p.stream.Consume()

	return args, nil
}

// parseArray parses: '[' [Entry (',' Entry)*] ']' where
// Entry = Expression ['=>' Expression].
func (p *parser) parseArray() (*ArrayNode, error) {
	open, err := p.stream.Expect(KindPunctuation, "[")
	if err != nil {
		return nil, err
	}

	elements := []Node{}
	keys := []Node{}

	for !p.stream.Test(KindPunctuation, "]") {
		if len(elements) > 0 {
			_, err = p.stream.Expect(KindPunctuation, ",")
			if err != nil {
				return nil, err
			}
		}

		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		var key Node = &ImplicitArrayKeyNode{Position: value.Pos()}

		if p.stream.Test(KindArrow) {
			arrow := p.stream.Consume()

			if value.Type() == TypeArray {
				return nil, ErrInvalidArrayKeyExpr.
					Detail("%s at position %d", arrow, arrow.Pos).
					WithPosition(arrow.Pos)
			}

			key = value

			value, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		}

		elements = append(elements, value)
		keys = append(keys, key)
	}

	p.stream.Consume()

	return NewArrayNode(open.Pos, elements, keys), nil
}

func (p *parser) parseNumber() (*NumberNode, error) {
	t, err := p.stream.Expect(KindNumber)
	if err != nil {
		return nil, err
	}

	return &NumberNode{Text: t.Text, Value: numberValue(t.Text), Position: t.Pos}, nil
}

func (p *parser) parseString() (*StringNode, error) {
	t, err := p.stream.Expect(KindString)
	if err != nil {
		return nil, err
	}

	return &StringNode{
		Text:     t.Text,
		Value:    unquote(t.Text),
		Position: t.Pos,
	}, nil
}

// numberValue converts a number lexeme to an int, or to a float64 if it has
// a fraction or exponent or does not fit in an int.
func numberValue(text string) any {
	if !strings.ContainsAny(text, ".eE") {
		if i, err := strconv.Atoi(text); err == nil {
			return i
		}
	}

	f, _ := strconv.ParseFloat(text, 64)

	return f
}

// unquote removes the surrounding quotes of a string lexeme and processes
// C-style backslash escapes. An unknown escape yields the escaped character.
func unquote(text string) string {
	if len(text) >= 2 {
		text = text[1 : len(text)-1]
	}

	if !strings.Contains(text, `\`) {
		return text
	}

	var sb strings.Builder

	sb.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' || i+1 == len(text) {
			sb.WriteByte(c)

			continue
		}

		i++

		switch c = text[i]; c {
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'v':
			sb.WriteByte('\v')

		case 'x':
			n, w := parseRadix(text[i+1:], 16, 2)
			if w == 0 {
				sb.WriteByte('x')

				continue
			}

			sb.WriteByte(byte(n))

			i += w

		case '0', '1', '2', '3', '4', '5', '6', '7':
			n, w := parseRadix(text[i:], 8, 3)
			sb.WriteByte(byte(n))

			i += w - 1

		default:
			sb.WriteByte(c)
		}
	}

	return sb.String()
}

// parseRadix parses at most width leading digits of s in the given base and
// returns the value and the number of digits consumed.
func parseRadix(s string, base, width int) (int, int) {
	n, w := 0, 0

	for w < width && w < len(s) {
		d := strings.IndexByte("0123456789abcdef", lower(s[w]))
		if d < 0 || d >= base {
			break
		}

		n = n*base + d
		w++
	}

	return n, w
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}

	return c
}

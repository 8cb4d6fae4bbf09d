package lang

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Type identifies the variant of a [Node].
type Type int

const (
	TypeConstant Type = iota
	TypeIdentifier
	TypeNumber
	TypeString
	TypeArray
	TypeArrayKeys
	TypeImplicitArrayKey
	TypeArguments
	TypeIndex
)

// String returns a string representation of the node type.
func (t Type) String() string {
	switch t {
	case TypeConstant:
		return "Constant"

	case TypeIdentifier:
		return "Identifier"

	case TypeNumber:
		return "Number"

	case TypeString:
		return "String"

	case TypeArray:
		return "Array"

	case TypeArrayKeys:
		return "ArrayKeys"

	case TypeImplicitArrayKey:
		return "ImplicitArrayKey"

	case TypeArguments:
		return "Arguments"

	case TypeIndex:
		return "Index"

	default:
		return "Unknown"
	}
}

// Node is a node of a parsed expression. The set of implementations is
// closed: every node is one of the *Node types declared in this package.
// Nodes are immutable once built and own their children.
type Node interface {
	Type() Type
	// Pos returns the byte offset of the node's first token.
	Pos() int
	node()
}

// ConstantNode is an identifier that named a constant at parse time.
type ConstantNode struct {
	Name     string
	Value    any
	Position int
}

// IdentifierNode is a variable or member reference.
type IdentifierNode struct {
	Name string
	// Traverse is the optional continuation applied to the resolved value:
	// an *IdentifierNode for ".member", or a key node for "[key]".
	Traverse Node
	// Arguments is non-nil when the identifier is called.
	Arguments *ArgumentsNode
	Position  int
}

// NumberNode is a numeric literal. Value is an int or a float64.
type NumberNode struct {
	Text     string
	Value    any
	Position int
}

// StringNode is a quoted string literal with escapes processed.
type StringNode struct {
	Text     string // raw lexeme including quotes
	Value    string
	Position int
}

// ArrayNode is an array literal. Keys has exactly one entry per element.
type ArrayNode struct {
	Elements []Node
	Keys     *ArrayKeysNode
	Position int
}

// ArrayKeysNode holds the key expressions of an array literal, in element
// order. An *ImplicitArrayKeyNode marks an element without explicit key.
type ArrayKeysNode struct {
	Keys     []Node
	Position int
}

// ImplicitArrayKeyNode requests the next auto-incremented integer key.
type ImplicitArrayKeyNode struct {
	Position int
}

// ArgumentsNode is the argument list of a call.
type ArgumentsNode struct {
	Args     []Node
	Position int
}

// IndexNode is a bracket traversal followed by a further traversal, as in
// items[0].name. Key is a *NumberNode, *StringNode or *ConstantNode.
type IndexNode struct {
	Key      Node
	Traverse Node
	Position int
}

// NewArrayNode creates an array literal node. It panics if elements and keys
// differ in length.
func NewArrayNode(pos int, elements, keys []Node) *ArrayNode {
	if len(elements) != len(keys) {
		panic(fmt.Sprintf(
			"array literal has %d elements but %d keys", len(elements), len(keys),
		))
	}

	return &ArrayNode{
		Elements: elements,
		Keys:     &ArrayKeysNode{Keys: keys, Position: pos},
		Position: pos,
	}
}

func (*ConstantNode) Type() Type         { return TypeConstant }
func (*IdentifierNode) Type() Type       { return TypeIdentifier }
func (*NumberNode) Type() Type           { return TypeNumber }
func (*StringNode) Type() Type           { return TypeString }
func (*ArrayNode) Type() Type            { return TypeArray }
func (*ArrayKeysNode) Type() Type        { return TypeArrayKeys }
func (*ImplicitArrayKeyNode) Type() Type { return TypeImplicitArrayKey }
func (*ArgumentsNode) Type() Type        { return TypeArguments }
func (*IndexNode) Type() Type            { return TypeIndex }

func (n *ConstantNode) Pos() int         { return n.Position }
func (n *IdentifierNode) Pos() int       { return n.Position }
func (n *NumberNode) Pos() int           { return n.Position }
func (n *StringNode) Pos() int           { return n.Position }
func (n *ArrayNode) Pos() int            { return n.Position }
func (n *ArrayKeysNode) Pos() int        { return n.Position }
func (n *ImplicitArrayKeyNode) Pos() int { return n.Position }
func (n *ArgumentsNode) Pos() int        { return n.Position }
func (n *IndexNode) Pos() int            { return n.Position }

func (*ConstantNode) node()         {}
func (*IdentifierNode) node()       {}
func (*NumberNode) node()           {}
func (*StringNode) node()           {}
func (*ArrayNode) node()            {}
func (*ArrayKeysNode) node()        {}
func (*ImplicitArrayKeyNode) node() {}
func (*ArgumentsNode) node()        {}
func (*IndexNode) node()            {}

// Print writes an indented tree representation of n to w.
func Print(w io.Writer, n Node, indent int) error {
	p := printer{w: w}
	p.print(n, indent)

	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) put(indent int, item ...string) {
	if p.err != nil {
		return
	}

	_, p.err = io.WriteString(
		p.w, strings.Repeat("  ", indent)+strings.Join(item, " ")+"\n",
	)
}

func (p *printer) print(n Node, indent int) {
	switch n := n.(type) {
	case *ConstantNode:
		p.put(indent, n.Type().String(), n.Name, "=", Format(n.Value))

	case *IdentifierNode:
		p.put(indent, n.Type().String(), n.Name)

		if n.Traverse != nil {
			p.put(indent+1, "traverse:")
			p.print(n.Traverse, indent+2)
		}

		if n.Arguments != nil {
			p.print(n.Arguments, indent+1)
		}

	case *NumberNode:
		p.put(indent, n.Type().String(), n.Text)

	case *StringNode:
		p.put(indent, n.Type().String(), strconv.Quote(n.Value))

	case *ArrayNode:
		p.put(indent, n.Type().String())

		for i, elem := range n.Elements {
			p.put(indent+1, "key:")
			p.print(n.Keys.Keys[i], indent+2)
			p.put(indent+1, "value:")
			p.print(elem, indent+2)
		}

	case *ArrayKeysNode:
		p.put(indent, n.Type().String())

		for _, key := range n.Keys {
			p.print(key, indent+1)
		}

	case *ImplicitArrayKeyNode:
		p.put(indent, n.Type().String())

	case *ArgumentsNode:
		p.put(indent, n.Type().String()+":")

		for _, arg := range n.Args {
			p.print(arg, indent+1)
		}

	case *IndexNode:
		p.put(indent, n.Type().String())
		p.put(indent+1, "key:")
		p.print(n.Key, indent+2)
		p.put(indent+1, "traverse:")
		p.print(n.Traverse, indent+2)

	default:
		p.put(indent, "(nil)")
	}
}

// Unparse renders n back into expression syntax. Parsing the result with
// the same constant table yields an equivalent tree.
func Unparse(n Node) string {
	var sb strings.Builder

	unparse(&sb, n, false)

	return sb.String()
}

func unparse(sb *strings.Builder, n Node, member bool) {
	switch n := n.(type) {
	case *ConstantNode:
		if member {
			sb.WriteByte('[')
			sb.WriteString(n.Name)
			sb.WriteByte(']')
		} else {
			sb.WriteString(n.Name)
		}

	case *IdentifierNode:
		if member {
			sb.WriteByte('.')
		}

		sb.WriteString(n.Name)

		if n.Traverse != nil {
			unparse(sb, n.Traverse, true)
		}

		if n.Arguments != nil {
			unparse(sb, n.Arguments, false)
		}

	case *NumberNode:
		if member {
			sb.WriteByte('[')
			sb.WriteString(n.Text)
			sb.WriteByte(']')
		} else {
			sb.WriteString(n.Text)
		}

	case *StringNode:
		if member {
			sb.WriteByte('[')
			sb.WriteString(n.Text)
			sb.WriteByte(']')
		} else {
			sb.WriteString(n.Text)
		}

	case *ArrayNode:
		sb.WriteByte('[')

		for i, elem := range n.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}

			if _, ok := n.Keys.Keys[i].(*ImplicitArrayKeyNode); !ok {
				unparse(sb, n.Keys.Keys[i], false)
				sb.WriteString(" => ")
			}

			unparse(sb, elem, false)
		}

		sb.WriteByte(']')

	case *ArgumentsNode:
		sb.WriteByte('(')

		for i, arg := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}

			unparse(sb, arg, false)
		}

		sb.WriteByte(')')

	case *IndexNode:
		unparse(sb, n.Key, true)
		unparse(sb, n.Traverse, true)
	}
}

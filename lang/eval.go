package lang

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/ardnew/interp/log"
)

// Interpolator evaluates parsed expressions against a fixed variable
// context. It holds no per-evaluation state and is safe for concurrent use
// as long as the context values are.
type Interpolator struct {
	vars Vars
	opts options
}

// NewInterpolator returns an Interpolator resolving root identifiers in vars.
func NewInterpolator(vars Vars, opts ...Option) *Interpolator {
	return &Interpolator{vars: vars, opts: makeOptions(opts...)}
}

// Vars returns the variable context.
func (in *Interpolator) Vars() Vars { return in.vars }

// Evaluate walks root and returns its value.
func (in *Interpolator) Evaluate(ctx context.Context, root Node) (any, error) {
	e := &evalContext{
		ctx:      ctx,
		vars:     in.vars,
		logger:   in.opts.logger,
		maxDepth: in.opts.maxDepth,
	}

	value, err := e.evaluate(root, 0)
	if err != nil {
		e.logger.TraceContext(ctx, "evaluate failed", slog.Any("error", err))

		return nil, err
	}

	e.logger.TraceContext(ctx, "evaluate",
		slog.String("root", root.Type().String()),
		slog.String("result", typeName(value)),
	)

	return value, nil
}

// Evaluate walks root against vars and returns its value.
func Evaluate(ctx context.Context, root Node, vars Vars, opts ...Option) (any, error) {
	return NewInterpolator(vars, opts...).Evaluate(ctx, root)
}

// evalContext holds the state of a single evaluation.
type evalContext struct {
	ctx      context.Context
	vars     Vars
	logger   log.Logger
	maxDepth int
}

func (e *evalContext) enter(n Node, depth int) error {
	if e.maxDepth > 0 && depth > e.maxDepth {
		return ErrMaxDepthExceeded.
			Detail("(%d) at position %d", e.maxDepth, n.Pos()).
			With(slog.Int("max_depth", e.maxDepth))
	}

	if err := e.ctx.Err(); err != nil {
		return ErrInterpolation.Wrap(err)
	}

	return nil
}

// evaluate returns the value of an expression node.
func (e *evalContext) evaluate(n Node, depth int) (any, error) {
	if n == nil {
		return nil, ErrInvalidNode.Detail("(nil)")
	}

	if err := e.enter(n, depth); err != nil {
		return nil, err
	}

	switch n := n.(type) {
	case *ConstantNode:
		return n.Value, nil

	case *NumberNode:
		return n.Value, nil

	case *StringNode:
		return n.Value, nil

	case *IdentifierNode:
		return e.identifier(n, nil, false, depth)

	case *ArrayNode:
		a, err := e.array(n, depth)
		if err != nil {
			return nil, err
		}

		return a, nil

	default:
		return nil, ErrInvalidNode.
			Detail("%s at position %d", n.Type(), n.Pos())
	}
}

// identifier resolves n at the root (hasParent false) or as a member of
// parent, then applies its traversal.
func (e *evalContext) identifier(
	n *IdentifierNode,
	parent any,
	hasParent bool,
	depth int,
) (any, error) {
	args, err := e.arguments(n.Arguments, depth)
	if err != nil {
		return nil, err
	}

	var value any

	if hasParent {
		value, err = e.member(parent, n.Name, args, n.Arguments != nil)
	} else {
		value, err = e.variable(n.Name, args, n.Arguments != nil)
	}

	if err != nil {
		return nil, err
	}

	if n.Traverse == nil {
		return value, nil
	}

	return e.traverse(n.Traverse, value, depth+1)
}

// traverse applies a traversal node to the value it continues from.
func (e *evalContext) traverse(n Node, parent any, depth int) (any, error) {
	if err := e.enter(n, depth); err != nil {
		return nil, err
	}

	if !isTraversable(parent) {
		return nil, notTraversable(parent)
	}

	switch n := n.(type) {
	case *IdentifierNode:
		return e.identifier(n, parent, true, depth)

	case *NumberNode, *StringNode, *ConstantNode:
		return e.index(n, parent)

	case *IndexNode:
		value, err := e.index(n.Key, parent)
		if err != nil {
			return nil, err
		}

		return e.traverse(n.Traverse, value, depth+1)

	default:
		return nil, ErrInvalidNode.
			Detail("traversal %s at position %d", n.Type(), n.Pos())
	}
}

// index looks up a bracket key in a container.
func (e *evalContext) index(n Node, parent any) (any, error) {
	var raw any

	switch n := n.(type) {
	case *NumberNode:
		raw = n.Value
	case *StringNode:
		raw = n.Value
	case *ConstantNode:
		raw = n.Value
	default:
		return nil, ErrInvalidNode.
			Detail("array key %s at position %d", n.Type(), n.Pos())
	}

	key, err := NormalizeKey(raw)
	if err != nil {
		return nil, err
	}

	c, ok := AsContainer(parent)
	if !ok {
		return nil, undefinedKey(key)
	}

	value, ok := c.Lookup(key)
	if !ok {
		return nil, undefinedKey(key)
	}

	return value, nil
}

// variable resolves a root identifier. A called variable holding a function
// is invoked with args.
func (e *evalContext) variable(name string, args []any, called bool) (any, error) {
	value, ok := e.vars[name]
	if !ok {
		return nil, ErrUndefinedVariable.
			Detail("%q", name).
			With(slog.String("name", name))
	}

	if !called {
		return value, nil
	}

	switch fn := value.(type) {
	case Func:
		return call(name, func() (any, error) { return fn(args...) })

	case func(...any) (any, error):
		return call(name, func() (any, error) { return fn(args...) })
	}

	return value, nil
}

// member resolves name on a container or object parent.
//
// Objects are probed in order: method, call fallback, property, get
// fallback, constant. Without call syntax the method is probed after the
// property instead, so a property shadows a method of the same name while
// the call fallback keeps its rank.
func (e *evalContext) member(
	parent any,
	name string,
	args []any,
	called bool,
) (any, error) {
	if obj, ok := parent.(Object); ok {
		method := func() (any, bool, error) {
			fn, ok := obj.Method(name)
			if !ok {
				return nil, false, nil
			}

			v, err := call(name, func() (any, error) { return fn(args...) })

			return v, true, err
		}

		if called {
			if v, ok, err := method(); ok {
				return v, err
			}
		}

		if fn, ok := obj.CallFallback(); ok {
			return call(name, func() (any, error) { return fn(name, args...) })
		}

		if v, ok := obj.Property(name); ok {
			return v, nil
		}

		if !called {
			if v, ok, err := method(); ok {
				return v, err
			}
		}

		if fn, ok := obj.GetFallback(); ok {
			return call(name, func() (any, error) { return fn(name) })
		}

		if v, ok := obj.Constant(name); ok {
			return v, nil
		}

		return nil, ErrUndefinedMember.
			Detail("%s::%s", objectTypeName(obj), name).
			With(slog.String("name", name))
	}

	if c, ok := AsContainer(parent); ok {
		key := StringKey(name)

		value, ok := c.Lookup(key)
		if !ok {
			return nil, undefinedKey(key)
		}

		return value, nil
	}

	return nil, notTraversable(parent)
}

// arguments evaluates a call's arguments in order. It returns nil when n is
// nil.
func (e *evalContext) arguments(n *ArgumentsNode, depth int) ([]any, error) {
	if n == nil {
		return nil, nil
	}

	args := make([]any, len(n.Args))

	for i, arg := range n.Args {
		v, err := e.evaluate(arg, depth+1)
		if err != nil {
			return nil, err
		}

		args[i] = v
	}

	return args, nil
}

// array evaluates an array literal: keys first, then values in order.
func (e *evalContext) array(n *ArrayNode, depth int) (*Array, error) {
	keys, err := e.arrayKeys(n.Keys, depth)
	if err != nil {
		return nil, err
	}

	result := NewArray()

	for i, elem := range n.Elements {
		v, err := e.evaluate(elem, depth+1)
		if err != nil {
			return nil, err
		}

		result.Set(keys[i], v)
	}

	return result, nil
}

// arrayKeys computes the final key of each element. Implicit keys continue
// from one past the greatest integer key seen so far, starting at zero.
func (e *evalContext) arrayKeys(n *ArrayKeysNode, depth int) ([]Key, error) {
	offset := -1
	keys := make([]Key, 0, len(n.Keys))

	for _, kn := range n.Keys {
		var raw any

		switch kn := kn.(type) {
		case *ImplicitArrayKeyNode:
			offset++
			keys = append(keys, IntKey(offset))

			continue

		case *NumberNode:
			raw = kn.Value

		case *StringNode:
			raw = kn.Value

		case *ConstantNode:
			raw = kn.Value

		case *IdentifierNode:
			v, err := e.identifier(kn, nil, false, depth+1)
			if err != nil {
				return nil, err
			}

			raw = v

		default:
			return nil, ErrInvalidNode.
				Detail("array key %s at position %d", kn.Type(), kn.Pos())
		}

		key, err := NormalizeKey(raw)
		if err != nil {
			return nil, err
		}

		if key.IsInt() {
			offset = max(offset, key.Int())
		}

		keys = append(keys, key)
	}

	return keys, nil
}

// call invokes fn, attributing failures to the member name.
func call(name string, fn func() (any, error)) (any, error) {
	v, err := fn()
	if err == nil {
		return v, nil
	}

	if IsSyntaxError(err) || IsInterpolationError(err) {
		return nil, err
	}

	return nil, ErrCall.
		Detail("%q", name).
		Wrap(err).
		With(slog.String("name", name))
}

// isTraversable reports whether v can be the parent of a member or key
// access.
func isTraversable(v any) bool {
	if _, ok := v.(Object); ok {
		return true
	}

	_, ok := AsContainer(v)

	return ok
}

func notTraversable(v any) *Error {
	var desc string

	switch v := v.(type) {
	case nil:
		desc = "null"
	case string:
		desc = strconv.Quote(v)
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		str, _ := scalarString(v)
		desc = strconv.Quote(str)
	default:
		desc = "of type " + typeName(v)
	}

	return ErrNotTraversable.
		Detail("%s cannot be traversed like arrays or objects", desc).
		With(slog.String("type", typeName(v)))
}

func undefinedKey(k Key) *Error {
	return ErrUndefinedKey.
		Detail("%q", k.String()).
		With(slog.Any("key", k))
}

func objectTypeName(obj Object) string {
	if n, ok := obj.(Named); ok {
		return n.TypeName()
	}

	return typeName(obj)
}

// Package lang implements a small expression language for string
// interpolation.
//
// A template contains placeholders of the form ${expression}. Each expression
// is tokenized, parsed into a tree and evaluated against a variable context;
// the result replaces the placeholder:
//
//	vars := lang.Vars{"user": lang.Members{
//		Properties: map[string]any{"name": "ada"},
//	}}
//	s, err := lang.Interpolate(ctx, "hello ${user.name}", vars)
//	// s == "hello ada"
//
// # Grammar
//
// Informal EBNF:
//
//	Expression → Identifier | Number | String | Array
//	Identifier → Name [Traversal] [Arguments]
//	Traversal  → '.' Identifier
//	           | '[' (Number | String | Constant) ']' [Traversal]
//	Arguments  → '(' [Expression (',' Expression)*] ')'
//	Array      → '[' [Entry (',' Entry)*] ']'
//	Entry      → Expression ['=>' Expression]
//
// Names found in the constant table (true, false, null, PI, ...) are
// replaced by their values at parse time. See [DefaultConstants] and
// [WithConstants].
//
// # Values
//
// Array literals evaluate to [*Array], an ordered map keyed by [Key].
// Entries without an explicit key get the next integer key. Member access on
// an [Object] tries, in order, a method, a call fallback, a property, a get
// fallback and a constant; member access on a [Container] looks up the key.
//
// # Errors
//
// Every error is an [*Error] that matches either [ErrSyntax] (tokenizer and
// parser) or [ErrInterpolation] (evaluation) with [errors.Is].
package lang

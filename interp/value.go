// Package interp is the generic grammar interpreter: given a bnf.Grammar
// production table (or a bare bnf.Expr) and an input text, it explores every
// derivation and returns the input's semantic value.
package interp

import (
	"fmt"
	"sort"
	"strings"
)

// Kind discriminates the variants of Value, the tagged union a derivation
// collapses to (§3 Parse result).
type Kind int

const (
	KindStr Kind = iota
	KindNone
	KindTuple
	KindSet
	KindNode
)

// Value is one parse result: a scalar string, an empty (ε) match, an
// ordered tuple, an unordered set of distinct derivations, or, in tree
// mode, a Node wrapping a rule invocation.
type Value struct {
	Kind  Kind
	Str   string
	Items []Value
	Node  *Node
}

// Node is the tree-mode wrapper around a RuleRef's derivation: which
// production matched, the span it covered, and its own resolved value.
type Node struct {
	Rule  string
	Start int
	End   int
	Inner Value
}

func StrValue(s string) Value { return Value{Kind: KindStr, Str: s} }
func NoneValue() Value        { return Value{Kind: KindNone} }

// TupleValue builds an ordered tuple, collapsing a singleton to its member
// (§3 invariant: Concat([x]) collapses to x, mirrored here for values).
func TupleValue(items []Value) Value {
	if len(items) == 1 {
		return items[0]
	}
	return Value{Kind: KindTuple, Items: items}
}

// SetValue builds an unordered collection of distinct derivations,
// collapsing a singleton to its member.
func SetValue(items []Value) Value {
	if len(items) == 1 {
		return items[0]
	}
	return Value{Kind: KindSet, Items: items}
}

func NodeValue(n *Node) Value { return Value{Kind: KindNode, Node: n} }

// strConcat combines two adjacent partial values produced while deriving a
// Concat (§4.2 value composition): string+string concatenates, either side
// being the empty match yields the other side untouched, and otherwise the
// two values become elements of one flat tuple (a nested tuple flattens in
// rather than nesting two deep).
func strConcat(a, b Value) Value {
	if a.Kind == KindNone {
		return b
	}
	if b.Kind == KindNone {
		return a
	}
	if a.Kind == KindStr && b.Kind == KindStr {
		return StrValue(a.Str + b.Str)
	}
	var items []Value
	if a.Kind == KindTuple {
		items = append(items, a.Items...)
	} else {
		items = append(items, a)
	}
	if b.Kind == KindTuple {
		items = append(items, b.Items...)
	} else {
		items = append(items, b)
	}
	return TupleValue(items)
}

// canonKey renders a structural signature used to dedup ambiguous
// derivations: order matters for Tuple, not for Set.
func (v Value) canonKey() string {
	switch v.Kind {
	case KindNone:
		return "none"
	case KindStr:
		return fmt.Sprintf("s(%q)", v.Str)
	case KindTuple:
		return "t(" + joinKeys(v.Items, false) + ")"
	case KindSet:
		return "set(" + joinKeys(v.Items, true) + ")"
	case KindNode:
		return fmt.Sprintf("node(%s,%d,%d,%s)", v.Node.Rule, v.Node.Start, v.Node.End, v.Node.Inner.canonKey())
	}
	return "?"
}

func joinKeys(items []Value, sortKeys bool) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.canonKey()
	}
	if sortKeys {
		sort.Strings(parts)
	}
	return strings.Join(parts, ",")
}

// Equal reports structural, order-insensitive-for-sets equality.
func (v Value) Equal(o Value) bool {
	return v.canonKey() == o.canonKey()
}

func (v Value) String() string {
	switch v.Kind {
	case KindNone:
		return "<none>"
	case KindStr:
		return fmt.Sprintf("%q", v.Str)
	case KindTuple:
		parts := make([]string, len(v.Items))
		for i, it := range v.Items {
			parts[i] = it.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindSet:
		parts := make([]string, len(v.Items))
		for i, it := range v.Items {
			parts[i] = it.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindNode:
		return fmt.Sprintf("%s[%d:%d]=%s", v.Node.Rule, v.Node.Start, v.Node.End, v.Node.Inner)
	}
	return "?"
}

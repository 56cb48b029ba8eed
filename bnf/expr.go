// Package bnf holds the grammar tree: the immutable AST that a BNF production
// compiles down to, plus the production table and binding frame that the
// interpreter drives it with. It depends on nothing else in this module.
package bnf

import (
	"fmt"
	"sort"
	"strings"
)

// Kind discriminates the variants of Expr. The set is closed: every grammar
// tree node is exactly one of these.
type Kind int

const (
	KindChar Kind = iota
	KindStr
	KindRange
	KindRuleRef
	KindConcat
	KindAlt
	KindRepeat
	KindDiff
	KindLookahead
	KindLookbehind
	KindStartOfLine
	KindEndOfInput
)

// Bound is one endpoint of a Repeat. It is either a literal count, the
// special symbolic form that names a binding variable to resolve against the
// current frame (e.g. the bound in "a" × n), or infinity.
type Bound struct {
	Param    string // non-empty: resolve this binding variable
	N        int    // literal count, meaningless when Param != "" or Infinite
	Infinite bool
}

func LitBound(n int) Bound     { return Bound{N: n} }
func ParamBound(p string) Bound { return Bound{Param: p} }
func InfBound() Bound           { return Bound{Infinite: true} }

// Resolve looks up a symbolic bound against frame. Literal and infinite
// bounds resolve without consulting frame.
func (b Bound) Resolve(frame Frame) (int, bool, error) {
	if b.Infinite {
		return 0, true, nil
	}
	if b.Param == "" {
		return b.N, false, nil
	}
	v, ok := frame.Lookup(b.Param)
	if !ok {
		return 0, false, fmt.Errorf("bnf: repeat bound %q is unbound in frame", b.Param)
	}
	n, err := atoiNonNegative(v)
	if err != nil {
		return 0, false, fmt.Errorf("bnf: repeat bound %q: %w", b.Param, err)
	}
	return n, false, nil
}

func (b Bound) String() string {
	switch {
	case b.Infinite:
		return "inf"
	case b.Param != "":
		return b.Param
	default:
		return fmt.Sprintf("%d", b.N)
	}
}

// Expr is one node of a grammar tree. Only the fields relevant to Kind are
// meaningful; the zero value of the others is ignored.
type Expr struct {
	Kind Kind

	// KindChar
	Char rune

	// KindStr
	Str string

	// KindRange: half-open interval [Lo, Hi)
	Lo, Hi rune

	// KindRuleRef
	Name string
	Args []string

	// KindConcat (ordered), KindAlt (set, order-insensitive)
	Items []*Expr

	// KindRepeat
	RepLo, RepHi Bound
	Body         *Expr

	// KindDiff: Body minus every member of Subs
	Subs []*Expr

	// KindLookahead: Positive selects "=" vs "≠"; Body is the lookaround expr.
	// KindLookbehind reuses Body and ignores Positive (always an "=" test).
	Positive bool
}

// Char constructs a Kind == KindChar node.
func Char(c rune) *Expr { return &Expr{Kind: KindChar, Char: c} }

// Str constructs a literal string match, normalizing "" to Concat(nil) per
// the grammar-tree invariant that an empty string is not a distinct node
// kind from an empty concatenation.
func Str(s string) *Expr {
	if s == "" {
		return Concat(nil)
	}
	if len([]rune(s)) == 1 {
		return Char([]rune(s)[0])
	}
	return &Expr{Kind: KindStr, Str: s}
}

// Range constructs a half-open code point range [lo, hi). lo must be < hi.
func Range(lo, hi rune) (*Expr, error) {
	if lo >= hi {
		return nil, fmt.Errorf("bnf: invalid range [%#x-%#x): lo must be < hi", lo, hi)
	}
	return &Expr{Kind: KindRange, Lo: lo, Hi: hi}, nil
}

// RuleRef constructs a reference to a named production with the given
// textual actual parameters (each either a literal or a binding variable
// name, resolved later against the caller's frame).
func RuleRef(name string, args ...string) *Expr {
	return &Expr{Kind: KindRuleRef, Name: name, Args: args}
}

// Concat constructs an ordered sequence. An empty slice matches epsilon; a
// single-item slice collapses to that item, per the grammar-tree invariants.
func Concat(items []*Expr) *Expr {
	if len(items) == 1 {
		return items[0]
	}
	return &Expr{Kind: KindConcat, Items: items}
}

// Alt constructs an unordered alternation, deduplicating structurally equal
// members and collapsing a singleton set to its one member.
func Alt(items []*Expr) *Expr {
	seen := map[string]bool{}
	var uniq []*Expr
	for _, it := range items {
		key := it.canonKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		uniq = append(uniq, it)
	}
	if len(uniq) == 1 {
		return uniq[0]
	}
	// Canonical order: alternation is a set, but a deterministic order keeps
	// output (and memoization keys) reproducible.
	sort.Slice(uniq, func(i, j int) bool { return uniq[i].canonKey() < uniq[j].canonKey() })
	return &Expr{Kind: KindAlt, Items: uniq}
}

// Repeat constructs a bounded repetition of e, lo..hi times inclusive.
func Repeat(lo, hi Bound, e *Expr) *Expr {
	return &Expr{Kind: KindRepeat, RepLo: lo, RepHi: hi, Body: e}
}

// Diff constructs e minus every member of subs.
func Diff(e *Expr, subs []*Expr) *Expr {
	if len(subs) == 0 {
		return e
	}
	return &Expr{Kind: KindDiff, Body: e, Subs: subs}
}

// Lookahead constructs a zero-width assertion: succeeds at the current
// position iff e matches there (pos == true) or does not (pos == false).
func Lookahead(pos bool, e *Expr) *Expr {
	return &Expr{Kind: KindLookahead, Positive: pos, Body: e}
}

// Lookbehind constructs a zero-width assertion: succeeds iff e has a match
// ending exactly at the current position.
func Lookbehind(e *Expr) *Expr {
	return &Expr{Kind: KindLookbehind, Body: e}
}

var startOfLine = &Expr{Kind: KindStartOfLine}
var endOfInput = &Expr{Kind: KindEndOfInput}

func StartOfLine() *Expr { return startOfLine }
func EndOfInput() *Expr  { return endOfInput }

// canonKey renders a structural, order-normalized signature used to dedup
// Alt members and as a stable memoization sub-key. It is not meant to be
// read by humans.
func (e *Expr) canonKey() string {
	if e == nil {
		return "nil"
	}
	var b strings.Builder
	e.writeKey(&b)
	return b.String()
}

func (e *Expr) writeKey(b *strings.Builder) {
	switch e.Kind {
	case KindChar:
		fmt.Fprintf(b, "c(%q)", e.Char)
	case KindStr:
		fmt.Fprintf(b, "s(%q)", e.Str)
	case KindRange:
		fmt.Fprintf(b, "r(%#x,%#x)", e.Lo, e.Hi)
	case KindRuleRef:
		fmt.Fprintf(b, "rule(%s", e.Name)
		for _, a := range e.Args {
			fmt.Fprintf(b, ",%s", a)
		}
		b.WriteByte(')')
	case KindConcat:
		b.WriteString("cat(")
		for i, it := range e.Items {
			if i > 0 {
				b.WriteByte(',')
			}
			it.writeKey(b)
		}
		b.WriteByte(')')
	case KindAlt:
		b.WriteString("alt(")
		for i, it := range e.Items {
			if i > 0 {
				b.WriteByte(',')
			}
			it.writeKey(b)
		}
		b.WriteByte(')')
	case KindRepeat:
		fmt.Fprintf(b, "rep(%s,%s,", e.RepLo, e.RepHi)
		e.Body.writeKey(b)
		b.WriteByte(')')
	case KindDiff:
		b.WriteString("diff(")
		e.Body.writeKey(b)
		for _, s := range e.Subs {
			b.WriteByte(',')
			s.writeKey(b)
		}
		b.WriteByte(')')
	case KindLookahead:
		sign := "!"
		if e.Positive {
			sign = "="
		}
		fmt.Fprintf(b, "la%s(", sign)
		e.Body.writeKey(b)
		b.WriteByte(')')
	case KindLookbehind:
		b.WriteString("lb(")
		e.Body.writeKey(b)
		b.WriteByte(')')
	case KindStartOfLine:
		b.WriteString("^")
	case KindEndOfInput:
		b.WriteString("$")
	}
}

// String renders a human-readable approximation of the tree, primarily for
// error messages and debugging, not round-tripped back through the parser.
func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case KindChar:
		return fmt.Sprintf("%q", string(e.Char))
	case KindStr:
		return fmt.Sprintf("%q", e.Str)
	case KindRange:
		return fmt.Sprintf("[x%X-x%X]", e.Lo, e.Hi-1)
	case KindRuleRef:
		if len(e.Args) == 0 {
			return e.Name
		}
		return fmt.Sprintf("%s(%s)", e.Name, strings.Join(e.Args, ","))
	case KindConcat:
		parts := make([]string, len(e.Items))
		for i, it := range e.Items {
			parts[i] = it.String()
		}
		return strings.Join(parts, " ")
	case KindAlt:
		parts := make([]string, len(e.Items))
		for i, it := range e.Items {
			parts[i] = it.String()
		}
		return strings.Join(parts, " | ")
	case KindRepeat:
		return fmt.Sprintf("%s{%s,%s}", e.Body, e.RepLo, e.RepHi)
	case KindDiff:
		parts := make([]string, len(e.Subs))
		for i, s := range e.Subs {
			parts[i] = s.String()
		}
		return fmt.Sprintf("%s - %s", e.Body, strings.Join(parts, " - "))
	case KindLookahead:
		if e.Positive {
			return fmt.Sprintf("[ lookahead = %s ]", e.Body)
		}
		return fmt.Sprintf("[ lookahead != %s ]", e.Body)
	case KindLookbehind:
		return fmt.Sprintf("[ lookbehind = %s ]", e.Body)
	case KindStartOfLine:
		return "<start-of-line>"
	case KindEndOfInput:
		return "<end-of-input>"
	}
	return "<?>"
}

func atoiNonNegative(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, fmt.Errorf("empty integer")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not an integer: %q", s)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

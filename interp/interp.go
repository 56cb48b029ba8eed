package interp

import (
	"sort"

	"github.com/jayamlp/jayamlp/bnf"
	jerr "github.com/jayamlp/jayamlp/error"
)

// Options controls derivation-search behavior that does not change the
// accepted language, only the shape of the returned value.
type Options struct {
	// Tree wraps every RuleRef derivation in a Node{rule, start, end,
	// inner}, for the inspector's tree-mode display (§4.2).
	Tree bool

	// Trace, if set, is called once per rule-invocation attempt during the
	// search: the event source for the inspector's WebSocket stream. It
	// has no effect on the returned Value.
	Trace func(TraceEvent)
}

// TraceEvent reports one rule-invocation attempt: the rule tried, the
// position it was tried at, and whether any overload produced a match.
type TraceEvent struct {
	Rule    string
	Pos     int
	Success bool
}

// Parse is the Interpreter's public operation (§4.2): it exhaustively
// enumerates every derivation of the named rule over text and returns the
// collapsed semantic value. A grammar genuinely admitting more than one
// distinct full-text derivation collapses to a Set of the distinct values
// rather than picking one (§4.4); NoMatchError is returned when none of the
// rule's overloads produce a derivation spanning the whole input.
func Parse(text string, g *bnf.Grammar, rule string, opts Options) (Value, error) {
	runes := []rune(text)
	ctx := newSearchCtx(runes, g, opts.Tree)
	ctx.trace = opts.Trace
	matches, err := ctx.derive(bnf.RuleRef(rule), 0, bnf.EmptyFrame())
	if err != nil {
		return Value{}, err
	}
	return collapse(matches, len(runes), rule, text)
}

// ParseExpr runs the same derivation search directly against a bare
// expression rather than a named production, the shape §8's concrete BNF
// scenarios exercise, since they describe a grammar tree fragment without a
// surrounding production table.
func ParseExpr(text string, e *bnf.Expr) (Value, error) {
	runes := []rune(text)
	ctx := newSearchCtx(runes, bnf.NewGrammar(), false)
	matches, err := ctx.derive(e, 0, bnf.EmptyFrame())
	if err != nil {
		return Value{}, err
	}
	return collapse(matches, len(runes), "", text)
}

// collapse implements the end-of-input filter and value-set dedup at the
// top of §4.2: only matches that span the whole text count, and distinct
// canonical values among those merge into a Set.
func collapse(matches []Match, fullLen int, rule, text string) (Value, error) {
	seen := map[string]Value{}
	var order []string
	for _, m := range matches {
		if m.Next != fullLen {
			continue
		}
		k := m.Value.canonKey()
		if _, ok := seen[k]; !ok {
			seen[k] = m.Value
			order = append(order, k)
		}
	}
	if len(order) == 0 {
		return Value{}, &jerr.NoMatchError{Rule: rule, Head: jerr.Head40(text)}
	}
	if len(order) == 1 {
		return seen[order[0]], nil
	}
	sort.Strings(order)
	items := make([]Value, len(order))
	for i, k := range order {
		items[i] = seen[k]
	}
	return SetValue(items), nil
}

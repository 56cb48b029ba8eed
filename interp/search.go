package interp

import (
	"github.com/jayamlp/jayamlp/bnf"
)

// Match is one (value, next_index) pair the derivation search for an
// expression yields at a given starting position (§4.2).
type Match struct {
	Value Value
	Next  int
}

// searchCtx holds the state of one top-level Parse call: the input text,
// the production table it resolves RuleRefs against, and the memo tables
// that bound the ambiguity search (§4.4). It is never shared across calls.
type searchCtx struct {
	text []rune
	g    *bnf.Grammar
	tree bool

	memo    map[memoKey][]Match
	pending map[memoKey]bool

	repeatMemo    map[repeatKey][]Match
	repeatPending map[repeatKey]bool

	// trace, when set, is notified of every rule-invocation attempt: the
	// event source behind the inspector's derivation-attempt stream. Never
	// set by the core search itself.
	trace func(TraceEvent)
}

// traceEvent notifies ctx.trace, if one is attached, that rule was tried at
// position i and either did or didn't produce any derivation.
func (ctx *searchCtx) traceEvent(rule string, i int, success bool) {
	if ctx.trace != nil {
		ctx.trace(TraceEvent{Rule: rule, Pos: i, Success: success})
	}
}

func newSearchCtx(text []rune, g *bnf.Grammar, tree bool) *searchCtx {
	return &searchCtx{
		text:          text,
		g:             g,
		tree:          tree,
		memo:          map[memoKey][]Match{},
		pending:       map[memoKey]bool{},
		repeatMemo:    map[repeatKey][]Match{},
		repeatPending: map[repeatKey]bool{},
	}
}

// deriveUncached implements the per-Kind search semantics of §4.2. Callers
// go through the memoized derive (memo.go), never this directly.
func (ctx *searchCtx) deriveUncached(e *bnf.Expr, i int, frame bnf.Frame) ([]Match, error) {
	switch e.Kind {
	case bnf.KindChar:
		if i < len(ctx.text) && ctx.text[i] == e.Char {
			return []Match{{Value: StrValue(string(e.Char)), Next: i + 1}}, nil
		}
		return nil, nil

	case bnf.KindStr:
		runes := []rune(e.Str)
		if i+len(runes) > len(ctx.text) {
			return nil, nil
		}
		for k, r := range runes {
			if ctx.text[i+k] != r {
				return nil, nil
			}
		}
		return []Match{{Value: StrValue(e.Str), Next: i + len(runes)}}, nil

	case bnf.KindRange:
		if i >= len(ctx.text) {
			return nil, nil
		}
		r := ctx.text[i]
		if r >= e.Lo && r < e.Hi {
			return []Match{{Value: StrValue(string(r)), Next: i + 1}}, nil
		}
		return nil, nil

	case bnf.KindRuleRef:
		ms, err := ctx.invokeRule(e, i, frame)
		if err != nil {
			return nil, err
		}
		if !ctx.tree {
			return ms, nil
		}
		wrapped := make([]Match, len(ms))
		for k, m := range ms {
			wrapped[k] = Match{
				Value: NodeValue(&Node{Rule: e.Name, Start: i, End: m.Next, Inner: m.Value}),
				Next:  m.Next,
			}
		}
		return wrapped, nil

	case bnf.KindConcat:
		acc := []Match{{Value: NoneValue(), Next: i}}
		for _, item := range e.Items {
			var next []Match
			for _, a := range acc {
				tails, err := ctx.derive(item, a.Next, frame)
				if err != nil {
					return nil, err
				}
				for _, t := range tails {
					next = append(next, Match{Value: strConcat(a.Value, t.Value), Next: t.Next})
				}
			}
			acc = next
			if len(acc) == 0 {
				break
			}
		}
		return acc, nil

	case bnf.KindAlt:
		var out []Match
		for _, item := range e.Items {
			ms, err := ctx.derive(item, i, frame)
			if err != nil {
				return nil, err
			}
			out = append(out, ms...)
		}
		return out, nil

	case bnf.KindRepeat:
		lo, _, err := e.RepLo.Resolve(frame)
		if err != nil {
			return nil, err
		}
		hi, infHi, err := e.RepHi.Resolve(frame)
		if err != nil {
			return nil, err
		}
		return ctx.deriveRepeat(e.Body, i, lo, hi, infHi, frame)

	case bnf.KindDiff:
		for _, sub := range e.Subs {
			subMatches, err := ctx.derive(sub, i, frame)
			if err != nil {
				return nil, err
			}
			if len(subMatches) > 0 {
				return nil, nil
			}
		}
		return ctx.derive(e.Body, i, frame)

	case bnf.KindLookahead:
		ms, err := ctx.derive(e.Body, i, frame)
		if err != nil {
			return nil, err
		}
		matched := len(ms) > 0
		if matched == e.Positive {
			return []Match{{Value: NoneValue(), Next: i}}, nil
		}
		return nil, nil

	case bnf.KindLookbehind:
		for start := i; start >= 0; start-- {
			ms, err := ctx.derive(e.Body, start, frame)
			if err != nil {
				return nil, err
			}
			for _, m := range ms {
				if m.Next == i {
					return []Match{{Value: NoneValue(), Next: i}}, nil
				}
			}
		}
		return nil, nil

	case bnf.KindStartOfLine:
		if i == 0 || ctx.text[i-1] == '\n' {
			return []Match{{Value: NoneValue(), Next: i}}, nil
		}
		return nil, nil

	case bnf.KindEndOfInput:
		if i == len(ctx.text) {
			return []Match{{Value: NoneValue(), Next: i}}, nil
		}
		return nil, nil
	}
	return nil, nil
}

// deriveRepeat implements §4.2's Repeat recursion directly over (lo, hi)
// integers rather than by rebuilding bnf.Expr nodes at each unrolling, since
// hi may be unbounded. A repetition that consumes no input is folded into
// the base case rather than re-entered, which is what keeps an unbounded hi
// with a zero-width body from recursing forever.
func (ctx *searchCtx) deriveRepeat(body *bnf.Expr, i, lo, hi int, infHi bool, frame bnf.Frame) ([]Match, error) {
	key := repeatKey{i: i, body: body, lo: lo, hi: hi, infHi: infHi, frame: frame.Key()}
	if ms, ok := ctx.repeatMemo[key]; ok {
		return ms, nil
	}
	if ctx.repeatPending[key] {
		return nil, nil
	}
	ctx.repeatPending[key] = true
	defer delete(ctx.repeatPending, key)

	var out []Match
	if lo == 0 {
		out = append(out, Match{Value: NoneValue(), Next: i})
	}
	if infHi || hi > 0 {
		heads, err := ctx.derive(body, i, frame)
		if err != nil {
			return nil, err
		}
		nextLo := lo - 1
		if nextLo < 0 {
			nextLo = 0
		}
		nextHi := hi - 1
		for _, h := range heads {
			if h.Next == i {
				if nextLo > 0 {
					continue // more mandatory reps required but body made no progress: unsatisfiable
				}
				out = append(out, Match{Value: h.Value, Next: i})
				continue
			}
			tails, err := ctx.deriveRepeat(body, h.Next, nextLo, nextHi, infHi, frame)
			if err != nil {
				return nil, err
			}
			for _, t := range tails {
				out = append(out, Match{Value: strConcat(h.Value, t.Value), Next: t.Next})
			}
		}
	}
	ctx.repeatMemo[key] = out
	return out, nil
}

package interp

import "github.com/jayamlp/jayamlp/bnf"

// memoKey is the structural memoization key of §4.4: a position, the
// expression node (identity is stable since grammar trees are built once
// and never copied), and the frame's bindings.
type memoKey struct {
	i     int
	e     *bnf.Expr
	frame string
}

// repeatKey extends memoKey with the (lo, hi) pair a Repeat unrolls to,
// since each level of the recursion in §4.2 is logically a distinct
// expression even though it shares one underlying body node.
type repeatKey struct {
	i, lo, hi int
	infHi     bool
	body      *bnf.Expr
	frame     string
}

// derive is the memoized entry point every expression-kind handler and
// rule invocation goes through. pending guards against infinite recursion
// on a left-recursive production: re-entering the same (position, expr,
// frame) before it has produced a result fails that branch rather than
// looping, which is the standard resolution for recursive-descent search
// over a grammar that was not written to avoid left recursion.
func (ctx *searchCtx) derive(e *bnf.Expr, i int, frame bnf.Frame) ([]Match, error) {
	key := memoKey{i: i, e: e, frame: frame.Key()}
	if ms, ok := ctx.memo[key]; ok {
		return ms, nil
	}
	if ctx.pending[key] {
		return nil, nil
	}
	ctx.pending[key] = true
	ms, err := ctx.deriveUncached(e, i, frame)
	delete(ctx.pending, key)
	if err != nil {
		return nil, err
	}
	ctx.memo[key] = ms
	return ms, nil
}

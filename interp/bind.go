package interp

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/jayamlp/jayamlp/bnf"
)

// mDomain and tDomain are the fixed auto-enumeration domains of §4.3: the
// auto-detected indentation increment and the block-scalar chomping name.
var (
	mDomain = []string{"0", "1", "2", "3", "4", "5"}
	tDomain = []string{"CLIP", "KEEP", "STRIP"}
)

// invokeRule implements §4.3: try every overload of ref.Name in turn,
// rejecting (falling through) on formal/actual mismatch, and union every
// successful derivation across overloads and auto-enumerated combinations.
func (ctx *searchCtx) invokeRule(ref *bnf.Expr, i int, callerFrame bnf.Frame) ([]Match, error) {
	ovs, ok := ctx.g.Lookup(ref.Name)
	if !ok {
		return nil, fmt.Errorf("interp: rule %q is not defined", ref.Name)
	}
	actuals := resolveActuals(ref.Args, callerFrame)

	var out []Match
	arityMatched := false
	for _, ov := range ovs {
		if len(ov.Formals) != len(actuals) {
			continue
		}
		arityMatched = true
		frame, ok := bindFormals(ov.Formals, actuals)
		if !ok {
			continue
		}
		frames, err := enumerateFree(ov.Body, frame)
		if err != nil {
			return nil, err
		}
		for _, fr := range frames {
			ms, err := ctx.derive(ov.Body, i, fr)
			if err != nil {
				return nil, err
			}
			out = append(out, ms...)
		}
	}
	if !arityMatched {
		return nil, fmt.Errorf("interp: rule %q called with %d argument(s), no overload accepts that many", ref.Name, len(actuals))
	}
	ctx.traceEvent(ref.Name, i, len(out) > 0)
	return out, nil
}

// resolveActuals substitutes each textual argument with its bound value
// from the caller's frame when it names one, else keeps it literal.
func resolveActuals(args []string, frame bnf.Frame) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if v, ok := frame.Lookup(a); ok {
			out[i] = v
		} else {
			out[i] = a
		}
	}
	return out
}

// bindFormals derives a fresh frame from scratch (never inheriting the
// caller's bindings) by matching one overload's formals against resolved
// actuals, per §4.3. ok is false when this overload rejects the call.
func bindFormals(formals []bnf.Formal, actuals []string) (bnf.Frame, bool) {
	frame := bnf.EmptyFrame()
	for i, f := range formals {
		actual := actuals[i]
		switch f.Kind {
		case bnf.FormalDigit, bnf.FormalContext:
			if actual != f.Lit {
				return bnf.Frame{}, false
			}
		case bnf.FormalNPlus1:
			n, err := strconv.Atoi(actual)
			if err != nil || n <= 0 {
				return bnf.Frame{}, false
			}
			frame = frame.With("n", strconv.Itoa(n-1))
		case bnf.FormalVar:
			frame = frame.With(f.Var, actual)
		}
	}
	return frame, true
}

// enumerateFree scans body for free binding variables not already resolved
// in frame and enumerates their domain, per §4.3's auto-enumeration of
// m/t. A free variable outside that fixed set is a hard error: the
// production referenced something no caller bound and that isn't among the
// auto-enumerated set.
func enumerateFree(body *bnf.Expr, frame bnf.Frame) ([]bnf.Frame, error) {
	free := map[string]bool{}
	collectFreeVars(body, frame, free)
	if len(free) == 0 {
		return []bnf.Frame{frame}, nil
	}

	names := make([]string, 0, len(free))
	for n := range free {
		names = append(names, n)
	}
	sort.Strings(names)

	frames := []bnf.Frame{frame}
	for _, name := range names {
		var domain []string
		switch name {
		case "m":
			domain = mDomain
		case "t":
			domain = tDomain
		default:
			return nil, fmt.Errorf("interp: unbound variable %q has no auto-enumeration domain", name)
		}
		var next []bnf.Frame
		for _, fr := range frames {
			for _, v := range domain {
				next = append(next, fr.With(name, v))
			}
		}
		frames = next
	}
	return frames, nil
}

func collectFreeVars(e *bnf.Expr, frame bnf.Frame, out map[string]bool) {
	if e == nil {
		return
	}
	switch e.Kind {
	case bnf.KindRuleRef:
		for _, a := range e.Args {
			if isVarName(a) {
				if _, ok := frame.Lookup(a); !ok {
					out[a] = true
				}
			}
		}
	case bnf.KindRepeat:
		collectBoundVar(e.RepLo, frame, out)
		collectBoundVar(e.RepHi, frame, out)
		collectFreeVars(e.Body, frame, out)
	case bnf.KindConcat, bnf.KindAlt:
		for _, it := range e.Items {
			collectFreeVars(it, frame, out)
		}
	case bnf.KindDiff:
		collectFreeVars(e.Body, frame, out)
		for _, s := range e.Subs {
			collectFreeVars(s, frame, out)
		}
	case bnf.KindLookahead, bnf.KindLookbehind:
		collectFreeVars(e.Body, frame, out)
	}
}

func collectBoundVar(b bnf.Bound, frame bnf.Frame, out map[string]bool) {
	if b.Param == "" || b.Infinite {
		return
	}
	if _, ok := frame.Lookup(b.Param); !ok {
		out[b.Param] = true
	}
}

// isVarName reports whether a resolved actual/bound parameter names a
// binding variable rather than a literal digit or enumerated context name.
func isVarName(s string) bool {
	if s == "" {
		return false
	}
	if bnf.IsContextName(s) {
		return false
	}
	if isAllDigits(s) {
		return false
	}
	return true
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

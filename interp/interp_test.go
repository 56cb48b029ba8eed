package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayamlp/jayamlp/bnf"
	jerr "github.com/jayamlp/jayamlp/error"
)

func TestParseExprSingleChar(t *testing.T) {
	v, err := ParseExpr("c", bnf.Char('c'))
	require.NoError(t, err)
	assert.Equal(t, "c", v.Str)
}

func TestParseExprConcatString(t *testing.T) {
	e := bnf.Concat([]*bnf.Expr{bnf.Char('a'), bnf.Char('z')})
	v, err := ParseExpr("az", e)
	require.NoError(t, err)
	assert.Equal(t, KindStr, v.Kind)
	assert.Equal(t, "az", v.Str)
}

func TestParseExprEmptyConcatIsNone(t *testing.T) {
	v, err := ParseExpr("", bnf.Concat(nil))
	require.NoError(t, err)
	assert.Equal(t, KindNone, v.Kind)
}

func TestParseExprRange(t *testing.T) {
	r, err := bnf.Range(0x30, 0x3A)
	require.NoError(t, err)
	v, err := ParseExpr("2", r)
	require.NoError(t, err)
	assert.Equal(t, "2", v.Str)

	_, err = ParseExpr("a", r)
	assert.Error(t, err)
}

func TestParseExprAlt(t *testing.T) {
	e := bnf.Alt([]*bnf.Expr{bnf.Char('0'), bnf.Char('9')})
	v, err := ParseExpr("0", e)
	require.NoError(t, err)
	assert.Equal(t, "0", v.Str)
}

func TestParseExprAltDedupesDuplicateAlternatives(t *testing.T) {
	e := bnf.Alt([]*bnf.Expr{bnf.Char('0'), bnf.Char('0')})
	v, err := ParseExpr("0", e)
	require.NoError(t, err)
	assert.Equal(t, "0", v.Str)
}

func TestParseExprStar(t *testing.T) {
	e := bnf.Repeat(bnf.LitBound(0), bnf.InfBound(), bnf.Char('a'))
	v, err := ParseExpr("a", e)
	require.NoError(t, err)
	assert.Equal(t, "a", v.Str)
}

func TestParseExprPlus(t *testing.T) {
	e := bnf.Repeat(bnf.LitBound(1), bnf.InfBound(), bnf.Char('a'))
	v, err := ParseExpr("a", e)
	require.NoError(t, err)
	assert.Equal(t, "a", v.Str)
}

func TestParseExprExactCount(t *testing.T) {
	e := bnf.Repeat(bnf.LitBound(4), bnf.LitBound(4), bnf.Char('a'))
	v, err := ParseExpr("aaaa", e)
	require.NoError(t, err)
	assert.Equal(t, "aaaa", v.Str)
}

func TestParseExprZeroRepeatMatchesOnlyEmpty(t *testing.T) {
	e := bnf.Repeat(bnf.LitBound(0), bnf.LitBound(0), bnf.Char('a'))
	v, err := ParseExpr("", e)
	require.NoError(t, err)
	assert.Equal(t, KindNone, v.Kind)

	_, err = ParseExpr("a", e)
	assert.Error(t, err)
}

func TestParseExprDiff(t *testing.T) {
	printable, err := bnf.Range(0x20, 0x7F)
	require.NoError(t, err)
	excluded, err := bnf.Range(0x35, 0x3A)
	require.NoError(t, err)
	e := bnf.Diff(printable, []*bnf.Expr{bnf.Char('0'), excluded})

	v, err := ParseExpr("1", e)
	require.NoError(t, err)
	assert.Equal(t, "1", v.Str)

	_, err = ParseExpr("0", e)
	require.Error(t, err)
	var nm *jerr.NoMatchError
	assert.ErrorAs(t, err, &nm)

	_, err = ParseExpr("5", e)
	assert.Error(t, err)
}

func TestParseExprStartOfLine(t *testing.T) {
	e := bnf.Concat([]*bnf.Expr{bnf.StartOfLine(), bnf.Char('a')})
	v, err := ParseExpr("a", e)
	require.NoError(t, err)
	assert.Equal(t, "a", v.Str)

	e2 := bnf.Concat([]*bnf.Expr{bnf.Char('x'), bnf.StartOfLine(), bnf.Char('a')})
	_, err = ParseExpr("xa", e2)
	assert.Error(t, err)
}

func TestParseExprEndOfInput(t *testing.T) {
	e := bnf.Concat([]*bnf.Expr{bnf.Char('a'), bnf.EndOfInput()})
	v, err := ParseExpr("a", e)
	require.NoError(t, err)
	assert.Equal(t, "a", v.Str)
}

func TestParseExprLookaheadPositive(t *testing.T) {
	e := bnf.Concat([]*bnf.Expr{bnf.Lookahead(true, bnf.Char('b')), bnf.Char('b')})
	v, err := ParseExpr("b", e)
	require.NoError(t, err)
	assert.Equal(t, "b", v.Str)
}

func TestParseExprLookaheadNegative(t *testing.T) {
	e := bnf.Concat([]*bnf.Expr{bnf.Lookahead(false, bnf.Char('b')), bnf.Char('a')})
	v, err := ParseExpr("a", e)
	require.NoError(t, err)
	assert.Equal(t, "a", v.Str)

	_, err = ParseExpr("b", e)
	assert.Error(t, err)
}

func TestParseExprLookbehind(t *testing.T) {
	e := bnf.Concat([]*bnf.Expr{bnf.Char('a'), bnf.Lookbehind(bnf.Char('a'))})
	v, err := ParseExpr("a", e)
	require.NoError(t, err)
	assert.Equal(t, "a", v.Str)
}

func TestParseRuleRefRejectsUndefinedRule(t *testing.T) {
	g := bnf.NewGrammar()
	_, err := Parse("-", g, "no-such-rule", Options{})
	assert.Error(t, err)
}

func TestOverloadDispatchByContextFormal(t *testing.T) {
	g := bnf.NewGrammar()
	g.AddOverload(&bnf.Overload{Name: "c-chomping-indicator", Formals: []bnf.Formal{bnf.ContextFormal("STRIP")}, Body: bnf.Str("-")})
	g.AddOverload(&bnf.Overload{Name: "c-chomping-indicator", Formals: []bnf.Formal{bnf.ContextFormal("KEEP")}, Body: bnf.Str("+")})
	g.AddOverload(&bnf.Overload{Name: "c-chomping-indicator", Formals: []bnf.Formal{bnf.ContextFormal("CLIP")}, Body: bnf.Concat(nil)})

	ctx := newSearchCtx([]rune("-"), g, false)
	ms, err := ctx.derive(bnf.RuleRef("c-chomping-indicator", "STRIP"), 0, bnf.EmptyFrame())
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "-", ms[0].Value.Str)

	ctx2 := newSearchCtx([]rune(""), g, false)
	ms2, err := ctx2.derive(bnf.RuleRef("c-chomping-indicator", "CLIP"), 0, bnf.EmptyFrame())
	require.NoError(t, err)
	require.Len(t, ms2, 1)
	assert.Equal(t, KindNone, ms2[0].Value.Kind)

	// Passing "STRIP" rejects the KEEP/CLIP overloads outright, and the
	// one overload that is tried (body "-") does not match "+".
	ctx3 := newSearchCtx([]rune("+"), g, false)
	ms3, err := ctx3.derive(bnf.RuleRef("c-chomping-indicator", "STRIP"), 0, bnf.EmptyFrame())
	require.NoError(t, err)
	assert.Empty(t, ms3)
}

func TestParseRuleRefWithRealGrammar(t *testing.T) {
	dig, err := bnf.Range('0', ':')
	require.NoError(t, err)

	g := bnf.NewGrammar()
	g.AddOverload(&bnf.Overload{Name: "dig", Body: dig})
	g.AddOverload(&bnf.Overload{Name: "s-indent", Formals: []bnf.Formal{bnf.VarFormal("n")}, Body: bnf.RuleRef("dig")})

	ctx := newSearchCtx([]rune("3"), g, false)
	ms, err := ctx.derive(bnf.RuleRef("s-indent", "9"), 0, bnf.EmptyFrame())
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "3", ms[0].Value.Str)
}

func TestEnumerateFreeVariableM(t *testing.T) {
	g := bnf.NewGrammar()
	// s-l+block-indented(m) matches exactly m copies of "a"; only m==2
	// produces a full-text derivation for "aa".
	g.AddOverload(&bnf.Overload{
		Name:    "s-l+block-indented",
		Formals: nil,
		Body:    bnf.Repeat(bnf.ParamBound("m"), bnf.ParamBound("m"), bnf.Char('a')),
	})

	v, err := Parse("aa", g, "s-l+block-indented", Options{})
	require.NoError(t, err)
	assert.Equal(t, "aa", v.Str)
}

func TestEnumerateFreeVariableRejectsUnknownName(t *testing.T) {
	g := bnf.NewGrammar()
	g.AddOverload(&bnf.Overload{
		Name: "broken",
		Body: bnf.RuleRef("dig", "q"),
	})
	g.AddOverload(&bnf.Overload{Name: "dig", Formals: []bnf.Formal{bnf.VarFormal("q")}, Body: bnf.RuleRef("q")})

	_, err := Parse("1", g, "broken", Options{})
	assert.Error(t, err)
}

func TestParseTreeMode(t *testing.T) {
	g := bnf.NewGrammar()
	g.AddOverload(&bnf.Overload{Name: "letter", Body: bnf.Char('a')})

	v, err := Parse("a", g, "letter", Options{Tree: true})
	require.NoError(t, err)
	require.Equal(t, KindNode, v.Kind)
	assert.Equal(t, "letter", v.Node.Rule)
	assert.Equal(t, 0, v.Node.Start)
	assert.Equal(t, 1, v.Node.End)
	assert.Equal(t, "a", v.Node.Inner.Str)
}

func TestParseNoMatchErrorCarriesHead(t *testing.T) {
	g := bnf.NewGrammar()
	g.AddOverload(&bnf.Overload{Name: "only-a", Body: bnf.Char('a')})

	_, err := Parse("xyz", g, "only-a", Options{})
	require.Error(t, err)
	var nm *jerr.NoMatchError
	require.ErrorAs(t, err, &nm)
	assert.Equal(t, "xyz", nm.Head)
}

func TestParseAmbiguousGrammarDedupesEqualValues(t *testing.T) {
	// Two overloads for the same name both match the whole input and
	// produce the same value: the derivations merge into that one value
	// rather than a Set.
	g := bnf.NewGrammar()
	g.AddOverload(&bnf.Overload{Name: "amb", Body: bnf.Str("ab")})
	g.AddOverload(&bnf.Overload{Name: "amb", Body: bnf.Concat([]*bnf.Expr{bnf.Char('a'), bnf.Char('b')})})

	v, err := Parse("ab", g, "amb", Options{})
	require.NoError(t, err)
	assert.Equal(t, KindStr, v.Kind) // both overloads collapse to the same "ab" string value
	assert.Equal(t, "ab", v.Str)
}

func TestAutoDetectedIndentFindsTheOneWorkingValue(t *testing.T) {
	// Mirrors §8 scenario 5's mechanism: a production invokes another
	// with the free auto-enumerated variable m as its actual argument,
	// and only one value in m's domain makes the whole input match.
	g := bnf.NewGrammar()
	g.AddOverload(&bnf.Overload{
		Name:    "indented",
		Formals: []bnf.Formal{bnf.VarFormal("m")},
		Body:    bnf.Concat([]*bnf.Expr{bnf.Repeat(bnf.ParamBound("m"), bnf.ParamBound("m"), bnf.Char(' ')), bnf.Char('x')}),
	})
	g.AddOverload(&bnf.Overload{
		Name: "block",
		Body: bnf.RuleRef("indented", "m"),
	})

	v, err := Parse("   x", g, "block", Options{})
	require.NoError(t, err)
	assert.Equal(t, "   x", v.Str)
}

package bnfparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayamlp/jayamlp/bnf"
)

func mustParse(t *testing.T, text string) *bnf.Expr {
	t.Helper()
	e, err := ParseExpr(text)
	require.NoError(t, err)
	return e
}

func TestParseCharAndString(t *testing.T) {
	c := mustParse(t, `"c"`)
	assert.Equal(t, bnf.KindChar, c.Kind)
	assert.Equal(t, 'c', c.Char)

	s := mustParse(t, `"abc"`)
	assert.Equal(t, bnf.KindStr, s.Kind)
	assert.Equal(t, "abc", s.Str)
}

func TestParseSingleQuote(t *testing.T) {
	e := mustParse(t, `'$'`)
	assert.Equal(t, bnf.KindChar, e.Kind)
	assert.Equal(t, '$', e.Char)
}

func TestParseSingleQuoteBackslash(t *testing.T) {
	e := mustParse(t, `'\'`)
	assert.Equal(t, bnf.KindChar, e.Kind)
	assert.Equal(t, '\\', e.Char)
}

func TestParseConcatString(t *testing.T) {
	e := mustParse(t, `"y" "a" "m" "l"`)
	require.Equal(t, bnf.KindConcat, e.Kind)
	require.Len(t, e.Items, 4)
	var got []rune
	for _, it := range e.Items {
		require.Equal(t, bnf.KindChar, it.Kind)
		got = append(got, it.Char)
	}
	assert.Equal(t, []rune("yaml"), got)
}

func TestParseUnicodeEscape(t *testing.T) {
	e := mustParse(t, "x9")
	assert.Equal(t, bnf.KindChar, e.Kind)
	assert.Equal(t, rune(0x09), e.Char)

	e2 := mustParse(t, "x10FFFF")
	assert.Equal(t, rune(0x10FFFF), e2.Char)
}

func TestParseRange(t *testing.T) {
	e := mustParse(t, "[x30-x39]")
	require.Equal(t, bnf.KindRange, e.Kind)
	assert.Equal(t, rune(0x30), e.Lo)
	assert.Equal(t, rune(0x3A), e.Hi)

	e2 := mustParse(t, "[xA0-xD7FF]")
	assert.Equal(t, rune(0xA0), e2.Lo)
	assert.Equal(t, rune(0xD800), e2.Hi)
}

func TestParseRuleRef(t *testing.T) {
	e := mustParse(t, "s-indent(<n)")
	require.Equal(t, bnf.KindRuleRef, e.Kind)
	assert.Equal(t, "s-indent", e.Name)
	assert.Equal(t, []string{"<n"}, e.Args)

	e2 := mustParse(t, "nb-json")
	assert.Equal(t, "nb-json", e2.Name)
	assert.Empty(t, e2.Args)

	e3 := mustParse(t, "s-separate(n,c)")
	assert.Equal(t, []string{"n", "c"}, e3.Args)
}

func TestParseLookarounds(t *testing.T) {
	e := mustParse(t, "[ lookahead = ns-plain-safe(c) ]")
	require.Equal(t, bnf.KindLookahead, e.Kind)
	assert.True(t, e.Positive)
	assert.Equal(t, "ns-plain-safe", e.Body.Name)

	e2 := mustParse(t, "[ lookahead ≠ ns-char ]")
	assert.False(t, e2.Positive)
	assert.Equal(t, "ns-char", e2.Body.Name)

	e3 := mustParse(t, "[ lookbehind = ns-char ]")
	assert.Equal(t, bnf.KindLookbehind, e3.Kind)
	assert.Equal(t, "ns-char", e3.Body.Name)
}

func TestParseSpecialForms(t *testing.T) {
	assert.Equal(t, bnf.KindStartOfLine, mustParse(t, "<start-of-line>").Kind)
	assert.Equal(t, bnf.KindEndOfInput, mustParse(t, "<end-of-input>").Kind)
	e := mustParse(t, "<empty>")
	assert.Equal(t, bnf.KindConcat, e.Kind)
	assert.Empty(t, e.Items)
}

func TestParseOr(t *testing.T) {
	e := mustParse(t, `"0" | "9"`)
	require.Equal(t, bnf.KindAlt, e.Kind)
	require.Len(t, e.Items, 2)
}

func TestParseRepeatOperators(t *testing.T) {
	opt := mustParse(t, `"a"?`)
	require.Equal(t, bnf.KindRepeat, opt.Kind)
	assert.Equal(t, bnf.LitBound(0), opt.RepLo)
	assert.Equal(t, bnf.LitBound(1), opt.RepHi)

	star := mustParse(t, `"a"*`)
	assert.Equal(t, bnf.LitBound(0), star.RepLo)
	assert.Equal(t, bnf.InfBound(), star.RepHi)

	plus := mustParse(t, `"a"+`)
	assert.Equal(t, bnf.LitBound(1), plus.RepLo)
	assert.Equal(t, bnf.InfBound(), plus.RepHi)

	exact := mustParse(t, `"a"{4}`)
	assert.Equal(t, bnf.LitBound(4), exact.RepLo)
	assert.Equal(t, bnf.LitBound(4), exact.RepHi)
}

func TestParseDiff(t *testing.T) {
	e := mustParse(t, "dig - x30")
	require.Equal(t, bnf.KindDiff, e.Kind)
	assert.Equal(t, "dig", e.Body.Name)
	require.Len(t, e.Subs, 1)
	assert.Equal(t, rune('0'), e.Subs[0].Char)
}

func TestParseTwoDiff(t *testing.T) {
	e := mustParse(t, "dig - x30 - x31")
	require.Equal(t, bnf.KindDiff, e.Kind)
	require.Len(t, e.Subs, 2)
	assert.Equal(t, rune('0'), e.Subs[0].Char)
	assert.Equal(t, rune('1'), e.Subs[1].Char)
}

func TestParseParens(t *testing.T) {
	e := mustParse(t, `"x" (hex{2} ) "-"`)
	require.Equal(t, bnf.KindConcat, e.Kind)
	require.Len(t, e.Items, 3)
	assert.Equal(t, bnf.KindChar, e.Items[0].Kind)
	require.Equal(t, bnf.KindRepeat, e.Items[1].Kind)
	assert.Equal(t, "hex", e.Items[1].Body.Name)
	assert.Equal(t, bnf.LitBound(2), e.Items[1].RepLo)
}

func TestParseEmpty(t *testing.T) {
	e := mustParse(t, " ")
	assert.Equal(t, bnf.KindConcat, e.Kind)
	assert.Empty(t, e.Items)
}

func TestParseComments(t *testing.T) {
	e := mustParse(t, " dig /* Empty */ ")
	assert.Equal(t, "dig", e.Name)

	e2 := mustParse(t, " # Empty ")
	assert.Equal(t, bnf.KindConcat, e2.Kind)
}

func TestParseCommentedAlternation(t *testing.T) {
	e := mustParse(t, "[x41-x46] # A-F \n| [x61-x66] # a-f ")
	require.Equal(t, bnf.KindAlt, e.Kind)
	require.Len(t, e.Items, 2)
}

func TestParseRemainingContentError(t *testing.T) {
	_, err := ParseExpr(`"1" ^^garbage`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end of expression")
	assert.Contains(t, err.Error(), "garbage")
}

func TestParseBadStringError(t *testing.T) {
	_, err := ParseExpr(`'1\'`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'")
}

func TestLoadGrammar(t *testing.T) {
	src := `dig ::= [x30-x39]
c-printable ::= x9 | [x20-x7E]
`
	g, err := Load(src)
	require.NoError(t, err)
	ovs, ok := g.Lookup("dig")
	require.True(t, ok)
	require.Len(t, ovs, 1)
	assert.Equal(t, bnf.KindRange, ovs[0].Body.Kind)
}

func TestLoadOverloadsSameName(t *testing.T) {
	src := `c-chomping-indicator(STRIP) ::= "-"
c-chomping-indicator(KEEP) ::= "+"
c-chomping-indicator(CLIP) ::= <empty>
`
	g, err := Load(src)
	require.NoError(t, err)
	ovs, ok := g.Lookup("c-chomping-indicator")
	require.True(t, ok)
	require.Len(t, ovs, 3)
	assert.Equal(t, bnf.ContextFormal("STRIP"), ovs[0].Formals[0])
	assert.Equal(t, bnf.ContextFormal("KEEP"), ovs[1].Formals[0])
	assert.Equal(t, bnf.ContextFormal("CLIP"), ovs[2].Formals[0])
}

func TestLoadParameterizedFormals(t *testing.T) {
	src := `s-separate(n,c) ::= s-indent(n)
c-indentation-indicator(m) ::= dig
s-l+block-indented(n,c) ::= dig
`
	g, err := Load(src)
	require.NoError(t, err)

	ovs, _ := g.Lookup("s-separate")
	assert.Equal(t, []bnf.Formal{bnf.VarFormal("n"), bnf.VarFormal("c")}, ovs[0].Formals)

	ovs2, _ := g.Lookup("s-l+block-indented")
	assert.Equal(t, "s-l+block-indented", ovs2[0].Name)
}

package bnfparser

import (
	"strings"

	"github.com/jayamlp/jayamlp/bnf"
	jerr "github.com/jayamlp/jayamlp/error"
)

// Load parses a whole BNF productions file (§6 Input grammar file) into a
// production table. Each definition occupies "name ::= body"; the presence
// of "::=" on a line delimits one definition from the next, and multiple
// "::=" headers sharing the same name contribute separate overloads rather
// than overwriting each other (§9 open question, resolved toward "collect
// all overloads").
func Load(text string) (*bnf.Grammar, error) {
	defs, err := splitDefs(text)
	if err != nil {
		return nil, err
	}

	g := bnf.NewGrammar()
	for _, d := range defs {
		name, formals, err := parseHeader(d.header)
		if err != nil {
			return nil, err
		}
		body, err := parseBodyForRule(name, d.body)
		if err != nil {
			return nil, err
		}
		g.AddOverload(&bnf.Overload{Name: name, Formals: formals, Body: body})
	}
	return g, nil
}

func parseBodyForRule(rule, text string) (*bnf.Expr, error) {
	p := &parser{s: newScanner(text), rule: rule}
	e, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	p.s.skipTrivia()
	if !p.s.eof() {
		return nil, p.errorf("end of production body")
	}
	return e, nil
}

type rawDef struct {
	header string
	body   string
}

// splitDefs implements the "name ::= body" boundary rule described in §6:
// the header is the trailing line of text before a "::=" marker, and the
// body runs until the trailing line before the next marker (which is the
// next header).
func splitDefs(text string) ([]rawDef, error) {
	segs := strings.Split(text, "::=")
	n := len(segs) - 1
	if n < 1 {
		return nil, &jerr.GrammarError{Expected: "at least one '::=' production marker", Window: jerr.Window10(text)}
	}

	defs := make([]rawDef, n)
	for k := 1; k <= n; k++ {
		header := strings.TrimSpace(lastLine(segs[k-1]))
		var body string
		if k < n {
			body = allButLastLine(segs[k])
		} else {
			body = segs[k]
		}
		defs[k-1] = rawDef{header: header, body: body}
	}
	return defs, nil
}

func lastLine(s string) string {
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

func allButLastLine(s string) string {
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return ""
}

// parseHeader parses a production's LHS: a rule name optionally followed by
// a parenthesized list of formal parameters.
func parseHeader(header string) (string, []bnf.Formal, error) {
	p := &parser{s: newScanner(header)}
	p.s.skipTrivia()
	name := p.scanIdent()
	if name == "" {
		return "", nil, p.errorf("a production name")
	}

	var formals []bnf.Formal
	if r, ok := p.s.peek(); ok && r == '(' {
		args, err := p.parseArgs()
		if err != nil {
			return "", nil, err
		}
		for _, a := range args {
			f, err := classifyFormal(a)
			if err != nil {
				return "", nil, &jerr.GrammarError{Rule: name, Expected: err.Error(), Window: jerr.Window10(a)}
			}
			formals = append(formals, f)
		}
	}

	p.s.skipTrivia()
	if !p.s.eof() {
		return "", nil, &jerr.GrammarError{Rule: name, Expected: "end of production header", Window: jerr.Window10(p.s.window(10))}
	}
	return name, formals, nil
}

func classifyFormal(arg string) (bnf.Formal, error) {
	switch {
	case arg == "n+1":
		return bnf.NPlus1Formal(), nil
	case bnf.IsContextName(arg):
		return bnf.ContextFormal(arg), nil
	case isAllDigits(arg):
		return bnf.DigitFormal(arg), nil
	case len([]rune(arg)) == 1 && isLowerLetter([]rune(arg)[0]):
		return bnf.VarFormal(arg), nil
	}
	return bnf.Formal{}, formalKindError(arg)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isLowerLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}

type formalKindErr string

func (e formalKindErr) Error() string { return string(e) }

func formalKindError(arg string) error {
	return formalKindErr("a digit, an enumerated context name, \"n+1\", or a single lowercase binding variable (got " + arg + ")")
}

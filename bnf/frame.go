package bnf

import (
	"sort"
	"strings"
)

// Frame is an immutable mapping from a binding-variable name to its current
// textual value (e.g. "3" for an indent level n). Rule invocation creates a
// fresh frame from scratch via parameter matching; it never inherits the
// caller's bindings directly (see the interpreter's bindFormals).
type Frame struct {
	vars map[string]string
}

// EmptyFrame is the frame with no bindings, the starting point for parsing
// the root rule.
func EmptyFrame() Frame {
	return Frame{}
}

// Lookup returns the bound value of name, if any.
func (f Frame) Lookup(name string) (string, bool) {
	if f.vars == nil {
		return "", false
	}
	v, ok := f.vars[name]
	return v, ok
}

// With returns a new frame with name bound to value, leaving f unmodified.
func (f Frame) With(name, value string) Frame {
	next := make(map[string]string, len(f.vars)+1)
	for k, v := range f.vars {
		next[k] = v
	}
	next[name] = value
	return Frame{vars: next}
}

// Names returns the bound variable names, order unspecified.
func (f Frame) Names() []string {
	names := make([]string, 0, len(f.vars))
	for k := range f.vars {
		names = append(names, k)
	}
	return names
}

// Key renders a deterministic signature of f's bindings, used by the
// interpreter as the frame component of a memoization key.
func (f Frame) Key() string {
	names := f.Names()
	sort.Strings(names)
	var b strings.Builder
	for i, n := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		v, _ := f.Lookup(n)
		b.WriteString(n)
		b.WriteByte('=')
		b.WriteString(v)
	}
	return b.String()
}

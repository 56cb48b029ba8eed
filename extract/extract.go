// Package extract pulls fenced BNF code blocks out of the YAML spec's own
// markdown and concatenates them into one BNF source blob, the text-munging
// step that feeds bnfparser, not part of the core. It does no grammar
// parsing of its own.
package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// fencedBNFBlock matches a fenced code block whose first line is the "[#]"
// marker the YAML spec markdown uses to flag grammar productions.
var fencedBNFBlock = regexp.MustCompile("(?s)```\n\\[#\\](.*?)```")

// defMarker finds each "::=" that begins a new production definition, the
// same delimiter §6 of the spec names: "Definitions are delimited by the
// presence of ::= on a line; the next ::= marks the end of the prior body."
var defMarker = regexp.MustCompile(`::=`)

// Extractor pulls BNF fragments out of spec markdown text.
type Extractor struct{}

// New returns an Extractor. It holds no state; it exists so callers have a
// value to wire in place of a bare package-level function, matching the
// shape of the other external collaborators (tester.Harness, inspector.Server).
func New() *Extractor {
	return &Extractor{}
}

// Extract finds every fenced "[#]"-marked block in md, strips the fences,
// and joins them with a blank line between each, mirroring the original
// implementation's generate_bnf. It then sanity-checks that every "::="
// delimiter in the result sits on a line of its own: a line carrying more
// than one marker is reported as an error rather than silently tolerated.
func (x *Extractor) Extract(md string) (string, error) {
	matches := fencedBNFBlock.FindAllStringSubmatch(md, -1)
	if len(matches) == 0 {
		return "", fmt.Errorf("extract: no fenced BNF blocks found")
	}

	blocks := make([]string, len(matches))
	for i, m := range matches {
		blocks[i] = strings.TrimSpace(m[1])
	}
	bnfText := strings.Join(blocks, "\n\n")

	expected := len(defMarker.FindAllString(bnfText, -1))
	actual := countDefLines(bnfText)
	if expected != actual {
		return "", fmt.Errorf("extract: found %d definition-starting lines but %d total \"::=\" markers", actual, expected)
	}

	return bnfText, nil
}

// countDefLines counts lines that themselves contain "::=", the boundary
// §6 names ("Definitions are delimited by the presence of ::= on a line").
// Comparing this against the raw substring count of "::=" across the whole
// blob catches a block where the marker appears more than once on one line,
// which would otherwise merge or split definitions silently downstream.
func countDefLines(bnfText string) int {
	n := 0
	for _, line := range strings.Split(bnfText, "\n") {
		if strings.Contains(line, "::=") {
			n++
		}
	}
	return n
}

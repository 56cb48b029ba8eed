package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jayamlp/jayamlp/bnf"
	"github.com/jayamlp/jayamlp/bnfparser"
	"github.com/jayamlp/jayamlp/extract"
)

// readGrammar loads a production table from path. A ".md" file is treated
// as spec markdown and run through extract first (§6 Input grammar file,
// by way of extract.Extractor); any other extension is read as BNF source
// text directly.
func readGrammar(path string) (*bnf.Grammar, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open grammar file %s: %w", path, err)
	}

	bnfText := string(src)
	if strings.EqualFold(filepath.Ext(path), ".md") {
		bnfText, err = extract.New().Extract(bnfText)
		if err != nil {
			return nil, fmt.Errorf("cannot extract BNF from %s: %w", path, err)
		}
	}

	g, err := bnfparser.Load(bnfText)
	if err != nil {
		return nil, fmt.Errorf("cannot parse grammar in %s: %w", path, err)
	}
	return g, nil
}

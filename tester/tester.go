// Package tester feeds YAML-test-suite ".tml" fixtures to the interpreter
// and compares the parsed result, by value, against each fixture's expected
// JSON, the same shape the original implementation's from_file/test_
// harness exercises, rehomed onto interp.Parse instead of a line-by-line ad
// hoc document reader.
package tester

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/jayamlp/jayamlp/bnf"
	"github.com/jayamlp/jayamlp/interp"
)

// Case is one ".tml" fixture: a YAML document and the JSON value it must
// resolve to. Fixtures may carry other named sections (e.g. "in-yaml(edn)",
// "emit-yaml"); only "in-yaml" and "in-json" are read.
type Case struct {
	Name   string
	Path   string
	InYAML string
	InJSON string
}

// LoadCases walks testPath (a file or a directory) collecting every ".tml"
// fixture it finds, mirroring the teacher's ListTestCases recursion shape.
func LoadCases(testPath string) ([]*Case, error) {
	fi, err := os.Stat(testPath)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		c, err := LoadCase(testPath)
		if err != nil {
			return nil, err
		}
		return []*Case{c}, nil
	}

	es, err := os.ReadDir(testPath)
	if err != nil {
		return nil, err
	}
	var cases []*Case
	for _, e := range es {
		child := filepath.Join(testPath, e.Name())
		if e.IsDir() {
			cs, err := LoadCases(child)
			if err != nil {
				return nil, err
			}
			cases = append(cases, cs...)
			continue
		}
		if !strings.HasSuffix(e.Name(), ".tml") {
			continue
		}
		c, err := LoadCase(child)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// LoadCase parses one ".tml" file: lines of the form "--- section-name"
// switch the current section; every other line is appended to it together
// with its line break.
func LoadCase(path string) (*Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	parts := map[string][]string{}
	curr := "head"
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "--- ") {
			curr = strings.TrimSpace(line[len("--- "):])
			continue
		}
		parts[curr] = append(parts[curr], line+"\n")
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	yamlLines, ok := parts["in-yaml"]
	if !ok {
		return nil, fmt.Errorf("tester: %s has no \"in-yaml\" section", path)
	}
	jsonLines, ok := parts["in-json"]
	if !ok {
		return nil, fmt.Errorf("tester: %s has no \"in-json\" section", path)
	}

	return &Case{
		Name:   strings.TrimSuffix(filepath.Base(path), ".tml"),
		Path:   path,
		InYAML: strings.Join(yamlLines, ""),
		InJSON: strings.Join(jsonLines, ""),
	}, nil
}

// Result is one case's outcome. A nil Error means the case passed.
type Result struct {
	CasePath string
	Error    error
	Diff     string
}

func (r *Result) String() string {
	if r.Error == nil {
		return fmt.Sprintf("PASS %v", r.CasePath)
	}
	if r.Diff == "" {
		return fmt.Sprintf("FAIL %v: %v", r.CasePath, r.Error)
	}
	return fmt.Sprintf("FAIL %v: %v\n%v", r.CasePath, r.Error, r.Diff)
}

// Harness runs fixtures against one grammar and top-level rule.
type Harness struct {
	Grammar *bnf.Grammar
	Rule    string
}

// Run evaluates every case and reports one Result per case, in order.
func (h *Harness) Run(cases []*Case) []*Result {
	rs := make([]*Result, len(cases))
	for i, c := range cases {
		rs[i] = h.runOne(c)
	}
	return rs
}

func (h *Harness) runOne(c *Case) *Result {
	// Tree mode is required here, not just for the inspector: §8's round-trip
	// property needs interp.ToJSON to tell a mapping's key-value pairs apart
	// from a same-shaped sequence, which only the invoking rule's name (only
	// available on a Node) can do.
	got, err := interp.Parse(c.InYAML, h.Grammar, h.Rule, interp.Options{Tree: true})
	if err != nil {
		return &Result{CasePath: c.Path, Error: err}
	}

	var want interface{}
	if err := json.Unmarshal([]byte(c.InJSON), &want); err != nil {
		return &Result{CasePath: c.Path, Error: fmt.Errorf("invalid fixture JSON: %w", err)}
	}

	gotJSON := interp.ToJSON(got)
	if diff := cmp.Diff(want, gotJSON); diff != "" {
		return &Result{CasePath: c.Path, Error: fmt.Errorf("output mismatch"), Diff: diff}
	}
	return &Result{CasePath: c.Path}
}

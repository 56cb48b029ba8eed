package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jayamlp/jayamlp/tester"
)

func init() {
	cmd := &cobra.Command{
		Use:     "test <grammar file path> <rule name> <test file path>|<test directory path>",
		Short:   "Run YAML-test-suite fixtures against a grammar rule",
		Example: `  jayamlp test spec.md l-yaml-stream yaml-test-suite/test/name`,
		Args:    cobra.ExactArgs(3),
		RunE:    runTest,
	}
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	g, err := readGrammar(args[0])
	if err != nil {
		return err
	}

	cases, err := tester.LoadCases(args[2])
	if err != nil {
		return fmt.Errorf("cannot read test cases: %w", err)
	}

	h := &tester.Harness{Grammar: g, Rule: args[1]}
	rs := h.Run(cases)

	failed := false
	for _, r := range rs {
		fmt.Fprintln(os.Stdout, r)
		if r.Error != nil {
			failed = true
		}
	}
	if failed {
		return errors.New("test failed")
	}
	return nil
}

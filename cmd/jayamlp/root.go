package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jayamlp",
	Short: "Interpret YAML by mechanically running the spec's own BNF grammar",
	Long: `jayamlp provides three features:
- Parses a YAML document by running a BNF grammar (extracted from the
  spec's own markdown, or loaded directly) through a generic derivation
  search.
- Runs YAML-test-suite fixtures against that grammar and reports pass/fail.
- Serves an HTTP (and WebSocket) inspector for ad hoc debugging of a
  grammar and its derivations.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jayamlp/jayamlp/inspector"
)

var serveFlags = struct {
	addr *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "serve <grammar file path>",
		Short:   "Serve the HTTP inspector over a grammar",
		Example: `  jayamlp serve spec.md --addr :8001`,
		Args:    cobra.ExactArgs(1),
		RunE:    runServe,
	}
	serveFlags.addr = cmd.Flags().String("addr", ":8001", "address to listen on")
	rootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	g, err := readGrammar(args[0])
	if err != nil {
		return err
	}

	s := &inspector.Server{Grammar: g}
	if err := s.ListenAndServe(*serveFlags.addr); err != nil {
		return fmt.Errorf("inspector server failed: %w", err)
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.bytecodealliance.org/wit"

	"github.com/alexhholmes/memlayout/internal/canon"
	"github.com/alexhholmes/memlayout/internal/report"
)

func newWitCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "wit <resolve.json>",
		Short: "Print Canonical ABI layouts of WIT types",
		Long: `Wit loads a WIT resolve in JSON form (as produced by
"wasm-tools component wit --json") and prints the Canonical ABI size and
alignment of every named type definition.

Example:
  wasm-tools component wit --json ./wit > resolve.json
  memlayout wit resolve.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWit(cmd, opts, args[0])
		},
	}
}

func runWit(cmd *cobra.Command, opts *options, path string) error {
	res, err := wit.LoadJSON(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	named, err := canon.NewCalculator().ResolveAll(res)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput() {
		return report.WriteJSON(out, report.NewCanonJSON(named))
	}
	opts.printer(out).Canon(named)
	return nil
}

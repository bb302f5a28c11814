package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexhholmes/memlayout/internal/analyzer"
	"github.com/alexhholmes/memlayout/internal/logging"
	"github.com/alexhholmes/memlayout/internal/parser"
	"github.com/alexhholmes/memlayout/internal/report"
)

func newInspectCmd(opts *options) *cobra.Command {
	var all, suggest bool

	cmd := &cobra.Command{
		Use:   "inspect <file.go>...",
		Short: "Print the layout of annotated structs",
		Long: `Inspect parses Go source files, computes the layout of every struct
annotated with // @layout (or every struct with --all) and prints its fields,
offsets and padding. Size and offset assertions from annotations and tags are
checked; any mismatch makes the command fail.

Example:
  memlayout inspect page.go
  memlayout inspect --all --suggest page.go node.go
  memlayout inspect --json page.go`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("all") {
				opts.cfg.AllStructs = all
			}
			if cmd.Flags().Changed("suggest") {
				opts.cfg.SuggestReorder = suggest
			}
			return runInspect(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include structs without a @layout annotation")
	cmd.Flags().BoolVarP(&suggest, "suggest", "s", false, "Suggest field orders with less padding")
	return cmd
}

type inspected struct {
	layout     *analyzer.AnalyzedLayout
	suggestion *analyzer.Suggestion
}

func runInspect(cmd *cobra.Command, opts *options, paths []string) error {
	var results []inspected
	invalid := 0

	for _, path := range paths {
		found, err := inspectFile(opts, path)
		if err != nil {
			return err
		}
		for _, r := range found {
			if !r.layout.IsValid() {
				invalid++
			}
		}
		results = append(results, found...)
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput() {
		structs := make([]report.StructJSON, 0, len(results))
		for _, r := range results {
			structs = append(structs, report.NewStructJSON(r.layout, r.suggestion))
		}
		if err := report.WriteJSON(out, structs); err != nil {
			return err
		}
	} else {
		if len(results) == 0 {
			fmt.Fprintln(out, "No structs with @layout annotations found")
		}
		p := opts.printer(out)
		for _, r := range results {
			p.Struct(r.layout, r.suggestion)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d structs have layout errors", invalid, len(results))
	}
	return nil
}

func inspectFile(opts *options, path string) ([]inspected, error) {
	file, err := parser.ParseFile(path, parser.Options{AllStructs: opts.cfg.AllStructs})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, e := range file.Errors {
		logging.Logger().Warn("ignored malformed layout directive",
			zap.String("file", path), zap.String("error", e))
	}

	reg := analyzer.NewTypeRegistry()
	// Invalid layouts are reported with the rest
	layouts, _ := analyzer.AnalyzeAll(file, reg)

	results := make([]inspected, len(layouts))
	for i, a := range layouts {
		results[i].layout = a
		if !opts.cfg.SuggestReorder || !a.IsValid() {
			continue
		}
		s, err := analyzer.Optimize(file.Types[i], reg)
		if err != nil {
			logging.Logger().Debug("no reorder suggestion",
				zap.String("type", a.TypeName), zap.Error(err))
			continue
		}
		results[i].suggestion = s
	}
	return results, nil
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexhholmes/memlayout/internal/analyzer"
	"github.com/alexhholmes/memlayout/internal/codegen"
	"github.com/alexhholmes/memlayout/internal/logging"
	"github.com/alexhholmes/memlayout/internal/parser"
)

func newGenCmd(opts *options) *cobra.Command {
	var output, pkg string
	var all bool

	cmd := &cobra.Command{
		Use:   "gen <file.go>",
		Short: "Generate layout constants and compile-time assertions",
		Long: `Gen writes a Go file next to the input declaring Size, Align and field
Offset constants for every annotated struct, plus assertions that stop the
build if the compiler's layout ever differs.

Example:
  memlayout gen page.go              # writes page_layout.go
  memlayout gen page.go -o -         # writes to stdout
  memlayout gen page.go --package db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("all") {
				opts.cfg.AllStructs = all
			}
			if pkg != "" {
				opts.cfg.Package = pkg
			}
			return runGen(cmd, opts, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default <file>_layout.go)")
	cmd.Flags().StringVarP(&pkg, "package", "p", "", "Package name of the generated file (default the input's)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include structs without a @layout annotation")
	return cmd
}

func runGen(cmd *cobra.Command, opts *options, path, output string) error {
	file, err := parser.ParseFile(path, parser.Options{AllStructs: opts.cfg.AllStructs})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if len(file.Errors) > 0 {
		return fmt.Errorf("%s: %s", path, strings.Join(file.Errors, "; "))
	}

	layouts, err := analyzer.AnalyzeAll(file, analyzer.NewTypeRegistry())
	if err != nil {
		for _, a := range layouts {
			for _, e := range a.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", a.TypeName, e)
			}
		}
		return fmt.Errorf("%s: %w", path, err)
	}

	pkg := opts.cfg.Package
	if pkg == "" {
		pkg = file.Package
	}

	gen := codegen.NewGenerator(pkg)
	for _, a := range layouts {
		if err := gen.Add(a); err != nil {
			return err
		}
	}

	src, err := gen.Generate()
	if err != nil {
		return err
	}

	if output == "-" {
		_, err := cmd.OutOrStdout().Write(src)
		return err
	}
	if output == "" {
		output = strings.TrimSuffix(path, filepath.Ext(path)) + "_layout.go"
	}
	if err := os.WriteFile(output, src, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	logging.Logger().Info("wrote layout assertions",
		zap.String("file", output), zap.Int("types", len(layouts)))
	return nil
}

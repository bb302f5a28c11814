package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/alexhholmes/memlayout/internal/config"
	"github.com/alexhholmes/memlayout/internal/logging"
	"github.com/alexhholmes/memlayout/internal/report"
)

// defaultConfigFile is loaded from the working directory when --config is not given
const defaultConfigFile = "memlayout.toml"

// options holds global flags and the resolved configuration
type options struct {
	configPath string
	verbose    bool
	jsonOut    bool
	noColor    bool

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{cfg: config.Default()}

	cmd := &cobra.Command{
		Use:   "memlayout",
		Short: "Compute and check memory layouts of Go structs",
		Long: `memlayout computes the size, alignment and field offsets of Go structs
from source, reports padding, suggests field orders that waste less space and
generates compile-time assertions that keep the layout from drifting.

It also composes ad-hoc layouts and computes Canonical ABI layouts of WIT types.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default ./"+defaultConfigFile+" if present)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		newInspectCmd(opts),
		newGenCmd(opts),
		newCalcCmd(opts),
		newWitCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads the config file, applies flag overrides and installs the logger
func (o *options) setup() error {
	path := o.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		o.cfg = cfg
	}

	if o.verbose {
		o.cfg.LogLevel = "debug"
	}
	if o.jsonOut {
		o.cfg.Output = config.OutputJSON
	}
	if o.noColor {
		o.cfg.Color = false
	}

	logger, err := logging.New(o.cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.SetLogger(logger)

	if path != "" {
		logger.Debug("loaded config", zap.String("path", path))
	}
	return nil
}

func (o *options) jsonOutput() bool {
	return o.cfg.Output == config.OutputJSON
}

// printer returns a report printer for w, styled only on a terminal
func (o *options) printer(w io.Writer) *report.Printer {
	color := false
	if f, ok := w.(*os.File); ok && o.cfg.Color {
		color = term.IsTerminal(int(f.Fd()))
	}
	return report.NewPrinter(w, color)
}

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/weave/weave"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile string
	timeout time.Duration
	verbose bool
	noColor bool

	logger = zap.NewNop()
)

// errSilent makes the process exit with status 1 once the command has
// reported the problem itself.
var errSilent = errors.New("exit status 1")

var rootCmd = &cobra.Command{
	Use:           "weave",
	Short:         "weave - apply structural transformation scripts to source files",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			color.NoColor = true
		}
		l, err := newLogger(verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errSilent) {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", weave.DefaultConfigFile, "Path to the configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Abort after this long")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(watchCmd)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// engineOptions are the flags shared by the commands that run scripts.
type engineOptions struct {
	script  string
	noCache bool
}

func (o *engineOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.script, "script", "s", "", "Apply this script to every file instead of the configured rules")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "Do not read or write the result cache")
}

// loadEngine builds the engine from --script when given, and from the
// configuration file otherwise. Script syntax errors are rendered on w.
func loadEngine(w io.Writer, opts engineOptions) (*weave.Engine, error) {
	var config weave.Config
	if opts.script != "" {
		name := strings.TrimSuffix(filepath.Base(opts.script), filepath.Ext(opts.script))
		config = weave.Config{
			Name:  name,
			Rules: []weave.Rule{{Name: name, Script: opts.script}},
		}
	} else {
		c, err := weave.LoadConfig(cfgFile)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w (run \"weave init\" or pass --script)", err)
			}
			return nil, err
		}
		config = c
	}

	engineOpts := []weave.Option{weave.WithLogger(logger)}
	if opts.noCache {
		engineOpts = append(engineOpts, weave.WithCache(""))
	}
	engine, err := weave.New(config, engineOpts...)
	if err != nil {
		var rerr *weave.RuleError
		if errors.As(err, &rerr) {
			fmt.Fprint(w, weave.FormatErrors([]*weave.RuleError{rerr}))
		}
		return nil, err
	}
	return engine, nil
}

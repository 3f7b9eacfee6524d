package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/weave/weave"
)

var (
	applyOpts engineOptions
	dryRun    bool
	quiet     bool
)

var applyCmd = &cobra.Command{
	Use:   "apply [paths...]",
	Short: "Apply the configured scripts and write the results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		engine, err := loadEngine(cmd.ErrOrStderr(), applyOpts)
		if err != nil {
			return err
		}

		var progress io.Writer
		if !quiet {
			progress = cmd.ErrOrStderr()
		}
		results, err := weave.ProcessPaths(ctx, logger, engine, args, weave.ProcessFile, progress)
		if err != nil {
			return err
		}

		s, err := applyResults(cmd.OutOrStdout(), results, dryRun)
		if err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
		if s.failed > 0 {
			return errSilent
		}
		return nil
	},
}

func init() {
	applyOpts.register(applyCmd)
	applyCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the changes as diffs without writing them")
	applyCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print errors")
}

type summary struct {
	files   int
	changed int
	failed  int
	cached  int
}

func (s summary) String() string {
	return fmt.Sprintf("%d files processed, %d changed, %d failed, %d rule results cached",
		s.files, s.changed, s.failed, s.cached)
}

// applyResults reports every failure on w and writes the changed files. A
// file with a failed rule is never written. With dryRun the changes are
// printed as diffs instead.
func applyResults(w io.Writer, results []*weave.Result, dryRun bool) (summary, error) {
	s := summary{files: len(results)}
	for _, res := range results {
		s.cached += res.Cached
		if res.Failed() {
			s.failed++
			fmt.Fprint(w, weave.FormatErrors(res.Errors))
			continue
		}
		if !res.Changed {
			continue
		}
		s.changed++
		if dryRun {
			fmt.Fprint(w, res.Diff())
			continue
		}
		if err := writeFile(res.Path, res.Output); err != nil {
			return s, err
		}
		logger.Debug("Wrote file", zap.String("file", res.Path))
	}
	return s, nil
}

// writeFile replaces the content of path and keeps its permissions.
func writeFile(path, content string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}

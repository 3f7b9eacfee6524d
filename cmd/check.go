package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnolang/weave/weave"
)

var checkOpts engineOptions

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Print the pending changes as diffs; exit 1 when there are any",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		engine, err := loadEngine(cmd.ErrOrStderr(), checkOpts)
		if err != nil {
			return err
		}
		results, err := weave.ProcessPaths(ctx, logger, engine, args, weave.ProcessFile, nil)
		if err != nil {
			return err
		}

		s, err := applyResults(cmd.OutOrStdout(), results, true)
		if err != nil {
			return err
		}
		if s.changed > 0 || s.failed > 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), s)
			return errSilent
		}
		return nil
	},
}

func init() {
	checkOpts.register(checkCmd)
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/weave/internal/lexer"
	"github.com/gnolang/weave/internal/watch"
	"github.com/gnolang/weave/weave"
)

var watchOpts engineOptions

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Re-apply the scripts to files as they change",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		engine, err := loadEngine(cmd.ErrOrStderr(), watchOpts)
		if err != nil {
			return err
		}

		var w *watch.Watcher
		handle := func(_ context.Context, path string) error {
			return reapply(cmd.OutOrStdout(), engine, w, path)
		}
		w, err = watch.New(args, lexer.Extensions(), handle, logger)
		if err != nil {
			return err
		}
		defer w.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %v (Ctrl+C to stop)\n", args)
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	watchOpts.register(watchCmd)
}

// reapply transforms path and writes it back when it changed. The write is
// suppressed on w so that it does not trigger another run.
func reapply(out io.Writer, engine weave.Transformer, w *watch.Watcher, path string) error {
	if !engine.Matches(path) {
		return nil
	}
	res, err := engine.Run(path)
	if err != nil {
		return err
	}
	if res.Failed() {
		fmt.Fprint(out, weave.FormatErrors(res.Errors))
		return nil
	}
	if !res.Changed {
		return nil
	}
	if w != nil {
		w.Suppress(path)
	}
	if err := writeFile(path, res.Output); err != nil {
		return err
	}
	logger.Info("Re-applied scripts", zap.String("file", path), zap.Strings("rules", res.Rules))
	fmt.Fprintf(out, "updated %s\n", path)
	return nil
}

package weave

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/weave/scanner"
)

// Processor transforms one file.
type Processor func(Transformer, string) (*Result, error)

func ProcessFile(t Transformer, path string) (*Result, error) {
	return t.Run(path)
}

// ProcessSource transforms in-memory content as if it were read from path.
func ProcessSource(t Transformer, path string, source []byte) (*Result, error) {
	return t.RunSource(path, source)
}

// ProcessPaths runs processor over every file under paths that a rule of t
// matches, in parallel. Results come back sorted by path. When progress is
// not nil a progress bar is drawn on it. The first processor error cancels
// the remaining work and is returned.
func ProcessPaths(
	ctx context.Context,
	logger *zap.Logger,
	t Transformer,
	paths []string,
	processor Processor,
	progress io.Writer,
) ([]*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	files, err := CollectFiles(logger, t, paths)
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if progress != nil && len(files) > 0 {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription("weaving"),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	results := make([]*Result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := processor(t, file)
			if err != nil {
				logger.Error("Error processing file", zap.String("file", file), zap.Error(err))
				return fmt.Errorf("%s: %w", file, err)
			}
			results[i] = res
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(progress)
	}
	return results, nil
}

// CollectFiles expands paths into the sorted list of files a rule of t
// applies to. Directories are scanned for every extension an analyzer
// handles.
func CollectFiles(logger *zap.Logger, t Transformer, paths []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			if !t.Matches(path) {
				logger.Debug("No rule applies", zap.String("file", path))
				continue
			}
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			continue
		}

		found, err := scanner.New(path).Scan()
		if err != nil {
			return nil, fmt.Errorf("error walking directory %s: %w", path, err)
		}
		for _, f := range found {
			if seen[f.Path] || !t.Matches(f.Path) {
				continue
			}
			seen[f.Path] = true
			files = append(files, f.Path)
		}
	}
	sort.Strings(files)
	return files, nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/newhook/swecheck/internal/analysis"
	"github.com/newhook/swecheck/internal/logging"
	"github.com/newhook/swecheck/internal/report"
	"github.com/newhook/swecheck/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Re-run the analysis whenever a deliverable's inputs change",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj := openProject(ctx)
	defer proj.Close()
	dir := args[0]

	cfg := watcher.DefaultConfig(dir)
	cfg.DebounceDur = proj.Config.Watch.GetDebounce()
	cfg.Ignore = []string{proj.Config.Output.GetReportName()}

	w, err := watcher.New(cfg)
	if err != nil {
		return err
	}
	defer w.Stop()

	sub := w.Broker().Subscribe(ctx)
	if err := w.Start(); err != nil {
		return err
	}

	a := &analyzer{proj: proj, cache: analysis.NewCache(proj.Config.Analysis.GetCacheTTL())}
	rerun := func() {
		in, err := analysis.Discover(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		r, err := a.analyze(ctx, dir, in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		fmt.Printf("\n[%s]\n", time.Now().Format("15:04:05"))
		if err := report.Render(os.Stdout, r, report.DefaultWidth); err != nil {
			logging.Warn("failed to render report", "error", err)
		}
	}

	rerun()
	fmt.Printf("Watching %s (Ctrl-C to stop)\n", dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-sub:
			if !ok {
				return nil
			}
			handleWatchEvent(ctx, evt.Payload, a.cache, rerun)
		}
	}
}

// handleWatchEvent reruns the analysis for evt. After a watch error changes may
// have been missed, so cached stage results are dropped before the rerun.
func handleWatchEvent(ctx context.Context, evt watcher.WatcherEvent, c analysis.Cache, rerun func()) {
	switch evt.Type {
	case watcher.InputsChanged:
		logging.Debug("inputs changed", "paths", evt.Paths)
		rerun()
	case watcher.WatchError:
		fmt.Fprintf(os.Stderr, "watch error: %v\n", evt.Err)
		if err := c.Flush(ctx); err != nil {
			logging.Warn("failed to flush stage cache", "error", err)
		}
		rerun()
	}
}

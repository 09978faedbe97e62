package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/newhook/swecheck/internal/logging"
	"github.com/newhook/swecheck/internal/project"
	swsignal "github.com/newhook/swecheck/internal/signal"
)

var (
	// rootCtx holds the signal-cancellable context for the application
	rootCtx    context.Context
	rootCancel context.CancelFunc

	flagProject string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "swecheck",
	Short: "Check CI test logs of a benchmark deliverable for consistency",
	Long: `swecheck reads the base, before, after and agent test logs of a deliverable,
extracts a status for every test the manifest names, and runs the consistency
checks that decide whether the deliverable is accepted.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		rootCtx, rootCancel = swsignal.WithSignalCancel(context.Background())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if rootCancel != nil {
			rootCancel()
		}
		_ = logging.Close()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// GetContext returns the root context that is cancelled on SIGINT/SIGTERM.
func GetContext() context.Context {
	if rootCtx == nil {
		return context.Background()
	}
	return rootCtx
}

// openProject finds the enclosing project, falling back to defaults. Logging is
// routed to stderr afterwards when --verbose is set.
func openProject(ctx context.Context) *project.Project {
	proj := project.FindOrDefault(ctx, flagProject)
	if flagVerbose {
		logging.InitWriter(os.Stderr, slog.LevelDebug)
	}
	return proj
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProject, "project", "", "project directory (default: auto-detect from cwd)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(chunkCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(migrateCmd)
}

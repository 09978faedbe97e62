package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/newhook/swecheck/internal/db"
	"github.com/newhook/swecheck/internal/report"
)

var (
	flagHistoryLimit int
	flagHistoryJSON  bool
	flagHistoryPrune time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List or show recorded analysis runs",
	Long: `Without arguments, list the most recent runs. With a run id (or a unique
prefix of one), show that run's summary.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "number of runs to list")
	historyCmd.Flags().BoolVar(&flagHistoryJSON, "json", false, "print the stored report as JSON")
	historyCmd.Flags().DurationVar(&flagHistoryPrune, "prune", 0, "delete runs older than this (e.g. 720h)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj := openProject(ctx)
	defer proj.Close()

	if proj.DB == nil {
		return errors.New("run history is not available (no project, or history disabled)")
	}

	if flagHistoryPrune > 0 {
		n, err := proj.DB.DeleteRunsBefore(ctx, time.Now().Add(-flagHistoryPrune))
		if err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		fmt.Printf("Deleted %d run(s)\n", n)
		return nil
	}

	if len(args) == 1 {
		return showRun(cmd, proj.DB, args[0])
	}

	runs, err := proj.DB.ListRuns(ctx, flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}

	fmt.Printf("%-10s %-20s %-30s %-9s %s\n", "ID", "DATE", "INSTANCE", "RESULT", "PROBLEMS")
	fmt.Printf("%-10s %-20s %-30s %-9s %s\n", "--", "----", "--------", "------", "--------")
	for _, run := range runs {
		instance := run.Instance
		if len(instance) > 28 {
			instance = instance[:25] + "..."
		}
		result := "accepted"
		if run.Rejected {
			result = "rejected"
		}
		fmt.Printf("%-10s %-20s %-30s %-9s %d\n",
			run.ID[:min(8, len(run.ID))],
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			instance, result, run.Problems)
	}
	return nil
}

func showRun(cmd *cobra.Command, database *db.DB, id string) error {
	run, err := database.GetRun(GetContext(), id)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run %s not found", id)
	}

	if flagHistoryJSON {
		fmt.Println(string(run.ReportJSON))
		return nil
	}

	r, err := report.Unmarshal(run.ReportJSON)
	if err != nil {
		return err
	}
	fmt.Printf("Run %s (%s)\n", run.ID, run.CreatedAt.Local().Format(time.RFC1123))
	if run.Directory != "" {
		fmt.Printf("Directory: %s\n", run.Directory)
	}
	fmt.Println()
	return report.Render(cmd.OutOrStdout(), r, report.DefaultWidth)
}

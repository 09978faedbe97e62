package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newhook/swecheck/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage history database migrations",
	Long:  `Manage database migrations for the run history database.`,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied migrations",
	Long:  `Show a list of all applied database migrations. Pending migrations are applied whenever the database is opened.`,
	Args:  cobra.NoArgs,
	RunE:  runMigrateStatus,
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj := openProject(ctx)
	defer proj.Close()

	if proj.DB == nil {
		return errors.New("run history is not available (no project, or history disabled)")
	}

	versions, err := db.MigrationStatus(ctx, proj.DB.DB)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	if len(versions) == 0 {
		fmt.Println("No migrations applied.")
		return nil
	}

	fmt.Printf("Applied migrations (%d):\n", len(versions))
	for _, version := range versions {
		fmt.Printf("  %s\n", version)
	}
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newhook/swecheck/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a swecheck project",
	Long: `Create a .swecheck directory with a documented config.toml and the run
history database. Commands run anywhere below the directory use it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	proj, err := project.Create(GetContext(), dir)
	if err != nil {
		return err
	}
	defer proj.Close()

	fmt.Printf("Created project at %s\n", proj.Root)
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newhook/swecheck/internal/logparser"
)

var (
	flagSearchTest    string
	flagSearchContext bool
)

var searchCmd = &cobra.Command{
	Use:   "search <log>... --test <name>",
	Short: "Find the lines of one or more logs that mention a test",
	Long: `Print every line that mentions the test, matching on the full name and on its
last path segments.

Example:
  swecheck search logs/*_after.log --test tests::parser::handles_empty`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&flagSearchTest, "test", "t", "", "test name to search for")
	searchCmd.Flags().BoolVarP(&flagSearchContext, "context", "C", false, "print surrounding lines")
	_ = searchCmd.MarkFlagRequired("test")
}

func runSearch(cmd *cobra.Command, args []string) error {
	proj := openProject(GetContext())
	defer proj.Close()

	total := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read log: %w", err)
		}

		results := logparser.Search(string(data), flagSearchTest)
		total += len(results)
		for _, res := range results {
			if flagSearchContext {
				for i, line := range res.ContextBefore {
					fmt.Printf("%s-%d- %s\n", path, res.LineNumber-len(res.ContextBefore)+i, line)
				}
			}
			fmt.Printf("%s:%d: %s\n", path, res.LineNumber, res.LineContent)
			if flagSearchContext {
				for i, line := range res.ContextAfter {
					fmt.Printf("%s-%d- %s\n", path, res.LineNumber+1+i, line)
				}
				fmt.Println("--")
			}
		}
	}

	if total == 0 {
		fmt.Printf("No lines mention %s\n", flagSearchTest)
	}
	return nil
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newhook/swecheck/internal/duplicate"
	"github.com/newhook/swecheck/internal/logparser"
)

var (
	flagParseNames bool
	flagParseJSON  bool
	flagParseDups  bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <log>",
	Short: "Extract test statuses from a single log",
	Long:  `Detect the format of a test log and print how many tests passed, failed and were ignored.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&flagParseNames, "names", false, "list test names per status")
	parseCmd.Flags().BoolVar(&flagParseJSON, "json", false, "print names per status as JSON")
	parseCmd.Flags().BoolVar(&flagParseDups, "duplicates", false, "also report duplicated test results")
}

// parseOutput is the --json form of a parsed log.
type parseOutput struct {
	Format     string                  `json:"format"`
	Passed     []string                `json:"passed"`
	Failed     []string                `json:"failed"`
	Ignored    []string                `json:"ignored"`
	Summary    logparser.SummaryCounts `json:"summary"`
	Duplicates []string                `json:"duplicates,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	proj := openProject(GetContext())
	defer proj.Close()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read log: %w", err)
	}
	content := string(data)
	parsed := logparser.Parse(content)
	summary := logparser.Summary(content)

	var dups []string
	if flagParseDups {
		for _, g := range duplicate.Analyze(content) {
			dups = append(dups, g.String())
		}
	}

	if flagParseJSON {
		out, err := json.MarshalIndent(parseOutput{
			Format:     parsed.Format.String(),
			Passed:     parsed.Passed.Sorted(),
			Failed:     parsed.Failed.Sorted(),
			Ignored:    parsed.Ignored.Sorted(),
			Summary:    summary,
			Duplicates: dups,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Format:  %s\n", parsed.Format)
	fmt.Printf("Passed:  %d\n", parsed.Passed.Len())
	fmt.Printf("Failed:  %d\n", parsed.Failed.Len())
	fmt.Printf("Ignored: %d\n", parsed.Ignored.Len())
	if summary.Found {
		fmt.Printf("Summary: %d passed, %d failed, %d ignored\n", summary.Passed, summary.Failed, summary.Ignored)
	}

	if flagParseNames {
		printNames("passed", parsed.Passed.Sorted())
		printNames("failed", parsed.Failed.Sorted())
		printNames("ignored", parsed.Ignored.Sorted())
	}

	if flagParseDups {
		if len(dups) == 0 {
			fmt.Println("\nNo duplicated test results.")
		} else {
			fmt.Printf("\nDuplicates (%d):\n", len(dups))
			for _, d := range dups {
				fmt.Printf("  %s\n", d)
			}
		}
	}
	return nil
}

func printNames(label string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Printf("\n%s (%d):\n", label, len(names))
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newhook/swecheck/internal/logparser"
	"github.com/newhook/swecheck/internal/manifest"
	"github.com/newhook/swecheck/internal/universe"
)

var (
	flagMergeLog      string
	flagMergeManifest string
	flagChunkSize     int
	flagChunkOut      string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <chunk.json>...",
	Short: "Merge per-chunk results of an alternative analyzer",
	Long: `Merge the results an alternative analyzer produced for each chunk of a log.
Each file holds a JSON array of {"test_name", "status"} objects. A failure in one
chunk beats a pass in another and any verdict beats non_existing. Other
disagreements go to the later chunk.

With --log and --manifest the merged verdicts fill in the tests the built-in
extractor left missing, and the combined statuses are printed instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMerge,
}

var chunkCmd = &cobra.Command{
	Use:   "chunk <log>",
	Short: "Split a log into chunks for an alternative analyzer",
	Long:  `Split a log into chunks that end on line boundaries, writing chunk_001.log, chunk_002.log and so on.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runChunk,
}

func init() {
	mergeCmd.Flags().StringVar(&flagMergeLog, "log", "", "stage log whose missing statuses are filled")
	mergeCmd.Flags().StringVar(&flagMergeManifest, "manifest", "", "manifest naming the tests to resolve (with --log)")

	chunkCmd.Flags().IntVar(&flagChunkSize, "size", universe.DefaultChunkSize, "maximum chunk size in bytes")
	chunkCmd.Flags().StringVarP(&flagChunkOut, "out", "o", ".", "output directory")
}

func runMerge(cmd *cobra.Command, args []string) error {
	proj := openProject(GetContext())
	defer proj.Close()

	chunks := make([][]universe.ChunkResult, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read chunk: %w", err)
		}
		var results []universe.ChunkResult
		if err := json.Unmarshal(data, &results); err != nil {
			return fmt.Errorf("failed to decode chunk %s: %w", path, err)
		}
		chunks = append(chunks, results)
	}
	merged := universe.MergeChunks(chunks)

	if flagMergeLog == "" {
		return printJSON(universe.MergedResults(merged))
	}
	if flagMergeManifest == "" {
		return fmt.Errorf("--manifest is required with --log")
	}

	m, err := manifest.Load(flagMergeManifest)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(flagMergeLog)
	if err != nil {
		return fmt.Errorf("failed to read log: %w", err)
	}
	statuses := universe.ResolveAll(logparser.Parse(string(data)), m.Universe())
	return printJSON(universe.FillFromAlternative(statuses, merged))
}

func runChunk(cmd *cobra.Command, args []string) error {
	proj := openProject(GetContext())
	defer proj.Close()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read log: %w", err)
	}
	if err := os.MkdirAll(flagChunkOut, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	chunks := universe.Chunk(string(data), flagChunkSize)
	for i, chunk := range chunks {
		path := filepath.Join(flagChunkOut, fmt.Sprintf("chunk_%03d.log", i+1))
		if err := os.WriteFile(path, []byte(chunk), 0644); err != nil {
			return fmt.Errorf("failed to write chunk: %w", err)
		}
	}
	fmt.Printf("Wrote %d chunk(s) to %s\n", len(chunks), strings.TrimSuffix(flagChunkOut, "/"))
	return nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

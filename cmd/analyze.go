package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/newhook/swecheck/internal/analysis"
	"github.com/newhook/swecheck/internal/db"
	"github.com/newhook/swecheck/internal/logging"
	"github.com/newhook/swecheck/internal/project"
	"github.com/newhook/swecheck/internal/report"
)

var (
	flagAnalyzeBase     string
	flagAnalyzeBefore   string
	flagAnalyzeAfter    string
	flagAnalyzeAgent    string
	flagAnalyzeManifest string
	flagAnalyzeReport   string
	flagAnalyzeDiffs    []string
	flagAnalyzeOutput   string
	flagAnalyzeJSON     bool
	flagAnalyzeNoSave   bool
	flagAnalyzeStrict   bool
	flagAnalyzeWidth    int
)

// errRejected is returned by --strict when the deliverable is rejected.
var errRejected = errors.New("deliverable rejected")

var analyzeCmd = &cobra.Command{
	Use:   "analyze [dir]",
	Short: "Analyze a deliverable",
	Long: `Analyze the test logs of a deliverable and write the analysis report.

With a directory argument the inputs are discovered inside it: logs ending in
_base.log, _before.log, _after.log and _post_agent_patch.log, the <instance>.json
manifest, report.json and any .diff or .patch files. Flags override what
discovery finds.

Example:
  swecheck analyze ./inst-1
  swecheck analyze --base b.log --before p.log --after a.log --manifest inst-1.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&flagAnalyzeBase, "base", "", "base stage log")
	analyzeCmd.Flags().StringVar(&flagAnalyzeBefore, "before", "", "before stage log")
	analyzeCmd.Flags().StringVar(&flagAnalyzeAfter, "after", "", "after stage log")
	analyzeCmd.Flags().StringVar(&flagAnalyzeAgent, "agent", "", "post agent patch log")
	analyzeCmd.Flags().StringVar(&flagAnalyzeManifest, "manifest", "", "instance manifest (JSON or YAML)")
	analyzeCmd.Flags().StringVar(&flagAnalyzeReport, "report", "", "external report data")
	analyzeCmd.Flags().StringSliceVar(&flagAnalyzeDiffs, "diff", nil, "diff file (repeatable)")
	analyzeCmd.Flags().StringVarP(&flagAnalyzeOutput, "output", "o", "", "report output path (default: <dir>/analysis_report.json)")
	analyzeCmd.Flags().BoolVar(&flagAnalyzeJSON, "json", false, "print the report as JSON instead of a summary")
	analyzeCmd.Flags().BoolVar(&flagAnalyzeNoSave, "no-history", false, "do not record the run in the history database")
	analyzeCmd.Flags().BoolVar(&flagAnalyzeStrict, "strict", false, "exit non-zero when the deliverable is rejected")
	analyzeCmd.Flags().IntVar(&flagAnalyzeWidth, "width", report.DefaultWidth, "summary width")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj := openProject(ctx)
	defer proj.Close()

	var dir string
	var in report.Inputs
	if len(args) == 1 {
		dir = args[0]
		for _, problem := range analysis.ValidateLayout(dir) {
			fmt.Fprintf(os.Stderr, "warning: %s\n", problem)
		}
		discovered, err := analysis.Discover(dir)
		if err != nil {
			return err
		}
		in = discovered
	}
	applyInputFlags(&in)

	a := &analyzer{proj: proj, cache: analysis.NewCache(proj.Config.Analysis.GetCacheTTL())}
	r, err := a.analyze(ctx, dir, in)
	if err != nil {
		return err
	}

	if flagAnalyzeJSON {
		data, err := r.Marshal()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else if err := report.Render(os.Stdout, r, flagAnalyzeWidth); err != nil {
		return err
	}

	if flagAnalyzeStrict && r.RejectionSatisfied {
		return errRejected
	}
	return nil
}

func applyInputFlags(in *report.Inputs) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&in.Base, flagAnalyzeBase)
	set(&in.Before, flagAnalyzeBefore)
	set(&in.After, flagAnalyzeAfter)
	set(&in.Agent, flagAnalyzeAgent)
	set(&in.Manifest, flagAnalyzeManifest)
	set(&in.Report, flagAnalyzeReport)
	if len(flagAnalyzeDiffs) > 0 {
		in.Diffs = flagAnalyzeDiffs
	}
}

// analyzer runs analyses for a project, persisting each report and recording
// it in the project's history.
type analyzer struct {
	proj  *project.Project
	cache analysis.Cache
}

func (a *analyzer) analyze(ctx context.Context, dir string, in report.Inputs) (*report.AnalysisReport, error) {
	cfg := a.proj.Config.Analysis
	opts := analysis.Options{
		Inputs:               in,
		MaxExamples:          cfg.GetMaxExamples(),
		DuplicateMinDistance: cfg.GetDuplicateMinDistance(),
		Workers:              cfg.GetParseWorkers(),
		Cache:                a.cache,
		CacheTTL:             cfg.GetCacheTTL(),
	}
	if dir != "" {
		opts.Instance = analysis.InstanceName(dir)
	}

	r, err := analysis.Run(ctx, opts)
	if err != nil {
		return nil, err
	}

	out := a.outputPath(dir)
	if err := r.WriteFile(out); err != nil {
		return nil, err
	}
	logging.Info("wrote analysis report", "path", out)

	if err := a.record(ctx, dir, out, r); err != nil {
		logging.Warn("failed to record run", "error", err)
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	return r, nil
}

func (a *analyzer) outputPath(dir string) string {
	if flagAnalyzeOutput != "" {
		return flagAnalyzeOutput
	}
	name := a.proj.Config.Output.GetReportName()
	if dir != "" {
		return filepath.Join(dir, name)
	}
	return name
}

func (a *analyzer) record(ctx context.Context, dir, out string, r *report.AnalysisReport) error {
	if a.proj.DB == nil || flagAnalyzeNoSave {
		return nil
	}
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	if abs, err := filepath.Abs(dir); err == nil && dir != "" {
		dir = abs
	}

	run := &db.Run{
		ID:         r.RunID,
		Instance:   r.Instance,
		Directory:  dir,
		Rejected:   r.RejectionSatisfied,
		Problems:   r.RuleChecks.Problems(),
		F2PCount:   r.Counts.F2P,
		P2PCount:   r.Counts.P2P,
		ReportPath: out,
		ReportJSON: data,
		CreatedAt:  r.GeneratedAt,
	}
	for _, e := range r.RuleChecks.Entries() {
		run.Rules = append(run.Rules, db.RuleResult{
			Key:          e.Key,
			Evaluated:    e.Evaluated,
			HasProblem:   e.Outcome.HasProblem,
			ExampleCount: len(e.Outcome.Examples),
		})
	}
	if err := a.proj.DB.RecordRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

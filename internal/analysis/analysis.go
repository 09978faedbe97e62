// Package analysis runs the full check over one deliverable: it reads the stage
// logs, manifest, report data and diffs, extracts statuses, evaluates the rules
// and assembles the report.
package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/newhook/swecheck/internal/cache"
	"github.com/newhook/swecheck/internal/duplicate"
	"github.com/newhook/swecheck/internal/extreport"
	"github.com/newhook/swecheck/internal/logging"
	"github.com/newhook/swecheck/internal/logparser"
	"github.com/newhook/swecheck/internal/manifest"
	"github.com/newhook/swecheck/internal/patch"
	"github.com/newhook/swecheck/internal/report"
	"github.com/newhook/swecheck/internal/rules"
	"github.com/newhook/swecheck/internal/universe"
)

var (
	// ErrMissingStage is returned when a required stage log was not supplied.
	ErrMissingStage = errors.New("missing required stage log")
	// ErrMissingManifest is returned when no manifest was supplied.
	ErrMissingManifest = errors.New("missing manifest")
)

// DefaultWorkers bounds how many stage logs are parsed at once.
const DefaultWorkers = 4

// StageResult is everything extracted from one stage log.
type StageResult struct {
	Log        *logparser.ParsedLog
	Summary    logparser.SummaryCounts
	Duplicates []duplicate.Group
}

// Cache holds stage results keyed by log content.
type Cache = cache.CacheManager[string, *StageResult]

// NewCache returns an in-memory stage result cache.
func NewCache(ttl time.Duration) *cache.InMemoryCacheManager[string, *StageResult] {
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	return cache.NewInMemoryCacheManager[string, *StageResult]("stage-results", ttl, cache.DefaultCleanupInterval)
}

// Options configures a run.
type Options struct {
	Inputs   report.Inputs
	Instance string
	RunID    string

	MaxExamples          int
	DuplicateMinDistance int
	Workers              int

	// Cache is optional. Repeated runs over unchanged logs reuse its results.
	Cache    Cache
	CacheTTL time.Duration
}

// Run performs the analysis described by opts.
func Run(ctx context.Context, opts Options) (*report.AnalysisReport, error) {
	in := opts.Inputs
	for _, stage := range universe.Stages {
		if stage.Required() && in.Stage(stage) == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingStage, stage)
		}
	}
	if in.Manifest == "" {
		return nil, ErrMissingManifest
	}

	m, err := manifest.Load(in.Manifest)
	if err != nil {
		return nil, err
	}
	instance := opts.Instance
	if instance == "" {
		instance = m.Instance
	}
	log := logging.With("instance", instance)

	results, optionalErrs, err := parseStages(ctx, opts)
	if err != nil {
		return nil, err
	}
	var agentErr string
	if err := optionalErrs[universe.StageAgent]; err != nil {
		log.Warn("agent log unreadable, skipping report check", "path", in.Agent, "error", err)
		agentErr = err.Error()
	}

	names := m.Universe()
	statuses := make(map[universe.Stage]universe.Statuses, len(results))
	logs := make(map[universe.Stage]*logparser.ParsedLog, len(results))
	summaries := make(map[universe.Stage]logparser.SummaryCounts, len(results))
	dups := make(map[universe.Stage][]duplicate.Group, len(results))
	for stage, res := range results {
		statuses[stage] = universe.ResolveAll(res.Log, names)
		logs[stage] = res.Log
		summaries[stage] = res.Summary
		dups[stage] = res.Duplicates
	}

	var reportStatuses universe.Statuses
	var reportErr string
	if in.Report != "" {
		data, err := extreport.Load(in.Report)
		if err != nil {
			log.Warn("report data unreadable, skipping report check", "path", in.Report, "error", err)
			reportErr = err.Error()
		} else {
			reportStatuses = data.Statuses
		}
	}

	var diffs *patch.Set
	var diffErr string
	if len(in.Diffs) > 0 {
		diffs, err = patch.Load(in.Diffs)
		if err != nil {
			log.Warn("diffs unreadable, skipping golden diff check", "error", err)
			diffErr = err.Error()
			diffs = nil
		}
	}

	result := rules.Evaluate(rules.Input{
		Manifest:    m,
		Base:        statuses[universe.StageBase],
		Before:      statuses[universe.StageBefore],
		After:       statuses[universe.StageAfter],
		Agent:       statuses[universe.StageAgent],
		Report:      reportStatuses,
		Duplicates:  dups,
		Diffs:       diffs,
		MaxExamples: opts.MaxExamples,
	})

	r := report.Build(report.Params{
		RunID:       opts.RunID,
		Instance:    instance,
		Inputs:      in,
		Manifest:    m,
		Statuses:    statuses,
		Logs:        logs,
		Summaries:   summaries,
		Report:      reportStatuses,
		ReportError: reportErr,
		DiffError:   diffErr,
		AgentError:  agentErr,
		Result:      result,
	})

	log.Info("analysis complete",
		"run_id", r.RunID,
		"rejected", r.RejectionSatisfied,
		"problems", r.RuleChecks.Problems(),
		"universe", r.Counts.Universe,
	)
	return r, nil
}

// parseStages reads and extracts every supplied stage log with bounded
// parallelism. A failure on a required stage fails the whole call; failures on
// optional stages are returned per stage and leave that stage out of the results.
func parseStages(ctx context.Context, opts Options) (map[universe.Stage]*StageResult, map[universe.Stage]error, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		errs     []error
		optional = make(map[universe.Stage]error)
		results  = make(map[universe.Stage]*StageResult)
	)
	sem := make(chan struct{}, workers)

	for _, stage := range universe.Stages {
		path := opts.Inputs.Stage(stage)
		if path == "" {
			continue
		}
		wg.Add(1)
		go func(stage universe.Stage, path string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()

			res, err := parseStage(ctx, opts, path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				err = fmt.Errorf("%s log: %w", stage, err)
				if stage.Required() {
					errs = append(errs, err)
				} else {
					optional[stage] = err
				}
				return
			}
			results[stage] = res
		}(stage, path)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}
	return results, optional, nil
}

func parseStage(ctx context.Context, opts Options, path string) (*StageResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	content := string(data)

	minDistance := opts.DuplicateMinDistance
	if minDistance <= 0 {
		minDistance = duplicate.DefaultMinDistance
	}

	var key string
	if opts.Cache != nil {
		sum := sha256.Sum256(data)
		key = hex.EncodeToString(sum[:]) + ":" + strconv.Itoa(minDistance)
		if res, ok := opts.Cache.Get(ctx, key); ok {
			logging.DebugContext(ctx, "stage log cache hit", "path", path)
			return res, nil
		}
	}

	analyzer := duplicate.New()
	analyzer.MinDistance = minDistance
	res := &StageResult{
		Log:        logparser.Parse(content),
		Summary:    logparser.Summary(content),
		Duplicates: analyzer.Analyze(content),
	}

	if opts.Cache != nil {
		opts.Cache.Set(ctx, key, res, opts.CacheTTL)
	}
	return res, nil
}

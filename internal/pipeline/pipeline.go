// Package pipeline runs the CV intake stages in order: normalize the source
// to text, analyze the text, then enrich the analysis with job listings.
package pipeline

import (
	"context"
	"time"

	"wazivo/internal/ai"
	"wazivo/internal/config"
	"wazivo/internal/errors"
	"wazivo/internal/extract"
	"wazivo/internal/fetch"
	"wazivo/internal/jobs"
	"wazivo/internal/normalize"
	"wazivo/internal/types"
	"wazivo/internal/utils"
)

// Normalizer turns a submission into CV text
type Normalizer interface {
	Normalize(ctx context.Context, source types.CVSource) (string, error)
}

// Analyzer turns CV text into a report
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*types.AnalysisReport, error)
}

// Enricher finds job listings for a report. It never fails.
type Enricher interface {
	Enrich(ctx context.Context, summary types.CandidateSummary, hints types.JobSearchHints) jobs.Result
}

// Observer is told how every run ended
type Observer func(ctx context.Context, kind types.SourceKind, elapsed time.Duration, textLength int, err error)

// Observers collects the optional instrumentation hooks of every stage
type Observers struct {
	Fetch fetch.Observer
	AI    ai.Observer
	Jobs  jobs.Observer
	Run   Observer
}

// Options adjust a single run
type Options struct {
	SkipJobs bool
}

// Pipeline is built once at startup and shared by all requests. It holds no
// per-request state.
type Pipeline struct {
	normalizer Normalizer
	analyzer   Analyzer
	enricher   Enricher
	observer   Observer
	logger     *errors.Logger
}

// New assembles a pipeline from its stages. A nil enricher disables job
// enrichment.
func New(normalizer Normalizer, analyzer Analyzer, enricher Enricher, logger *errors.Logger, observer Observer) *Pipeline {
	return &Pipeline{
		normalizer: normalizer,
		analyzer:   analyzer,
		enricher:   enricher,
		observer:   observer,
		logger:     logger,
	}
}

// Components are the long-lived collaborators Build creates
type Components struct {
	Pipeline *Pipeline
	AI       *ai.Service
	Prompts  *ai.PromptStore
	Fetcher  *fetch.Chain
	Enricher *jobs.Enricher
}

// Close releases the AI provider
func (c *Components) Close() error {
	return c.AI.Close()
}

// Build wires every stage from configuration
func Build(cfg *config.Config, logger *errors.Logger, observers Observers) (*Components, error) {
	prompts, err := ai.NewPromptStore(cfg.AI.CustomPrompts)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to load prompts", err)
	}

	var aiOpts []ai.Option
	if observers.AI != nil {
		aiOpts = append(aiOpts, ai.WithObserver(observers.AI))
	}
	analyzer, err := ai.NewService(&cfg.AI, prompts, logger, aiOpts...)
	if err != nil {
		return nil, err
	}

	extractor := extract.NewExtractor(cfg.Extract.OCRLanguage, logger)

	var fetchOpts []fetch.ChainOption
	if observers.Fetch != nil {
		fetchOpts = append(fetchOpts, fetch.WithObserver(observers.Fetch))
	}
	fetcher := fetch.New(cfg, extractor, logger, fetchOpts...)

	components := &Components{
		AI:      analyzer,
		Prompts: prompts,
		Fetcher: fetcher,
	}

	var enricher Enricher
	if cfg.Jobs.Enabled {
		var jobOpts []jobs.Option
		if observers.Jobs != nil {
			jobOpts = append(jobOpts, jobs.WithObserver(observers.Jobs))
		}
		components.Enricher = jobs.New(cfg.Jobs, cfg.Fetch.UserAgent, logger, jobOpts...)
		enricher = components.Enricher
	}

	normalizer := normalize.New(extractor, fetcher, cfg.App, logger)
	components.Pipeline = New(normalizer, analyzer, enricher, logger, observers.Run)
	return components, nil
}

// Extract runs only the normalization stage
func (p *Pipeline) Extract(ctx context.Context, source types.CVSource) (string, error) {
	return p.normalizer.Normalize(ctx, source)
}

// Run executes the full pipeline. Normalization and analysis errors end the
// run; enrichment cannot fail it.
func (p *Pipeline) Run(ctx context.Context, source types.CVSource, opts Options) (resp *types.AnalyzeResponse, err error) {
	start := time.Now()
	textLength := 0
	defer func() {
		if p.observer != nil {
			p.observer(ctx, source.Kind, time.Since(start), textLength, err)
		}
	}()

	text, err := p.normalizer.Normalize(ctx, source)
	if err != nil {
		return nil, err
	}
	textLength = utils.RuneLen(text)
	p.logger.Debug("CV text ready", "source", source.Kind, "chars", textLength)

	report, err := p.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}

	resp = &types.AnalyzeResponse{AnalysisReport: *report}
	resp.JobOpportunities = []types.JobListing{}
	resp.JobSearchMeta.AlternativeQueries = []string{}

	switch {
	case opts.SkipJobs:
		resp.JobSearchMeta.Skipped = "disabled for this request"
	case p.enricher == nil:
		resp.JobSearchMeta.Skipped = "job enrichment is disabled"
	default:
		result := p.enricher.Enrich(ctx, report.CandidateSummary, report.JobSearch)
		resp.JobOpportunities = result.Jobs
		resp.JobSearchMeta = result.Metadata
	}

	p.logger.Info("CV analysis completed",
		"source", source.Kind,
		"skills", len(resp.CandidateSummary.KeySkills),
		"gaps", len(resp.WeaknessesAndGaps),
		"courses", len(resp.RecommendedCourses),
		"jobs", len(resp.JobOpportunities),
		"duration_ms", time.Since(start).Milliseconds())

	return resp, nil
}

// Package jobs finds live job listings for an analyzed CV. Enrichment is a
// best-effort step: provider failures are logged and replaced by generated
// search links, never returned to the caller.
package jobs

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"wazivo/internal/breaker"
	"wazivo/internal/config"
	"wazivo/internal/errors"
	"wazivo/internal/types"
)

// Provider call outcomes reported to the Observer
const (
	OutcomeSuccess     = "success"
	OutcomeEmpty       = "empty"
	OutcomeFailed      = "failed"
	OutcomeTimeout     = "timeout"
	OutcomeCircuitOpen = "circuit_open"
)

// Observer is told about every provider call
type Observer func(ctx context.Context, provider, outcome string, results int, elapsed time.Duration)

// Option configures an Enricher
type Option func(*Enricher)

// WithObserver reports provider calls to observe
func WithObserver(observe Observer) Option {
	return func(e *Enricher) {
		e.observer = observe
	}
}

// guardedProvider pairs a provider with its own circuit breaker
type guardedProvider struct {
	Provider
	breaker *breaker.Breaker[[]types.JobListing]
}

// Result is the outcome of enrichment
type Result struct {
	Jobs     []types.JobListing
	Metadata types.JobSearchMetadata
}

// Enricher fans job searches out to every configured provider
type Enricher struct {
	providers       []guardedProvider
	timeout         time.Duration
	maxResults      int
	maxPerProvider  int
	deepLinks       int
	fallbackLinks   int
	defaultLocation string
	observer        Observer
	logger          *errors.Logger
}

// New builds an Enricher with every provider whose credentials are present.
// Missing credentials skip the provider; they are not an error.
func New(cfg config.JobsConfig, userAgent string, logger *errors.Logger, opts ...Option) *Enricher {
	client := &http.Client{Timeout: cfg.ProviderTimeout}

	var providers []Provider
	if p := NewAdzunaProvider(cfg.Adzuna, client); p != nil {
		providers = append(providers, p)
	}
	if p := NewJSearchProvider(cfg.JSearch, client); p != nil {
		providers = append(providers, p)
	}
	if p := NewWuzzufProvider(cfg.Wuzzuf, userAgent, client); p != nil {
		providers = append(providers, p)
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	logger.Info("Job enrichment providers configured", "providers", names)

	return NewEnricher(providers, cfg, logger, opts...)
}

// NewEnricher builds an Enricher over an explicit provider list
func NewEnricher(providers []Provider, cfg config.JobsConfig, logger *errors.Logger, opts ...Option) *Enricher {
	guarded := make([]guardedProvider, 0, len(providers))
	for _, p := range providers {
		guarded = append(guarded, guardedProvider{
			Provider: p,
			breaker:  breaker.New[[]types.JobListing]("jobs-"+p.Name(), cfg.CircuitBreaker, logger),
		})
	}

	e := &Enricher{
		providers:       guarded,
		timeout:         cfg.ProviderTimeout,
		maxResults:      cfg.MaxResults,
		maxPerProvider:  cfg.MaxPerProvider,
		deepLinks:       cfg.DeepLinks,
		fallbackLinks:   cfg.FallbackLinks,
		defaultLocation: cfg.DefaultLocation,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Providers returns the names of the configured providers
func (e *Enricher) Providers() []string {
	names := make([]string, 0, len(e.providers))
	for _, p := range e.providers {
		names = append(names, p.Name())
	}
	return names
}

// Enrich searches every provider for the queries derived from the analysis.
// It always returns a usable result: with no live listings the full fallback
// link set is returned instead.
func (e *Enricher) Enrich(ctx context.Context, summary types.CandidateSummary, hints types.JobSearchHints) Result {
	queries := BuildQueries(summary, hints, e.defaultLocation)
	meta := types.JobSearchMetadata{
		PrimaryQuery:       queries.Primary,
		AlternativeQueries: append([]string{}, queries.Alternative...),
		Location:           queries.Location,
		Providers:          e.Providers(),
	}

	e.logger.Info("Starting job enrichment",
		"primary_query", queries.Primary,
		"alternative_queries", queries.Alternative,
		"location", queries.Location,
		"providers", len(e.providers))

	live := e.search(ctx, queries)
	meta.LiveResults = len(live)

	if len(live) == 0 {
		meta.FallbackUsed = true
		e.logger.Info("No live job listings found, returning search links",
			"primary_query", queries.Primary)
		return Result{
			Jobs:     FallbackLinks(queries.Primary, queries.Location, e.fallbackLinks),
			Metadata: meta,
		}
	}

	jobs := append([]types.JobListing{}, limit(live, e.maxResults)...)
	jobs = append(jobs, DeepLinks(queries.Primary, queries.Location, e.deepLinks)...)

	e.logger.Info("Job enrichment completed",
		"live_results", len(live),
		"returned", len(jobs),
		"queries_executed", len(queries.All()))

	return Result{Jobs: jobs, Metadata: meta}
}

// search runs every (query, provider) pair concurrently and waits for all of
// them. Each call writes only its own slot, so results merge in a fixed order
// regardless of completion order.
func (e *Enricher) search(ctx context.Context, queries Queries) []types.JobListing {
	all := queries.All()
	if len(all) == 0 || len(e.providers) == 0 {
		return nil
	}

	slots := make([][]types.JobListing, len(all)*len(e.providers))
	var g errgroup.Group
	for qi, keywords := range all {
		for pi, provider := range e.providers {
			slot := qi*len(e.providers) + pi
			query := Query{Keywords: keywords, Location: queries.Location, Limit: e.maxPerProvider}
			g.Go(func() error {
				slots[slot] = e.callProvider(ctx, provider, query)
				return nil
			})
		}
	}
	_ = g.Wait()

	var merged []types.JobListing
	for _, listings := range slots {
		for _, job := range listings {
			if usable(job) {
				merged = append(merged, job)
			}
		}
	}
	return Dedup(merged)
}

// callProvider runs one provider call under its own timeout. Failures and
// panics are logged and become an empty slot.
func (e *Enricher) callProvider(ctx context.Context, provider guardedProvider, query Query) (listings []types.JobListing) {
	start := time.Now()
	outcome := OutcomeFailed

	defer func() {
		if r := recover(); r != nil {
			listings = nil
			outcome = OutcomeFailed
			e.logger.LogError(fmt.Errorf("panic: %v", r), "Job provider panicked",
				"provider", provider.Name())
		}
		if e.observer != nil {
			e.observer(ctx, provider.Name(), outcome, len(listings), time.Since(start))
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	result, err := provider.breaker.Execute(func() ([]types.JobListing, error) {
		return provider.Search(callCtx, query)
	})
	switch {
	case err == nil && len(result) == 0:
		outcome = OutcomeEmpty
	case err == nil:
		outcome = OutcomeSuccess
	case breaker.IsOpenError(err):
		outcome = OutcomeCircuitOpen
	case stderrors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil:
		outcome = OutcomeTimeout
	}

	if err != nil {
		e.logger.Warn("Job provider search failed",
			"provider", provider.Name(),
			"query", query.Keywords,
			"outcome", outcome,
			"error", err.Error())
		return nil
	}

	e.logger.Debug("Job provider search completed",
		"provider", provider.Name(),
		"query", query.Keywords,
		"results", len(result),
		"duration_ms", time.Since(start).Milliseconds())
	return result
}

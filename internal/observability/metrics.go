package observability

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"wazivo/internal/ai"
	"wazivo/internal/config"
	"wazivo/internal/errors"
	"wazivo/internal/pipeline"
	"wazivo/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all custom metrics for wazivo
type Metrics struct {
	// AI operation metrics
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	// Business metrics
	CVsAnalyzed  metric.Int64Counter
	CVTextLength metric.Int64Histogram

	// Infrastructure metrics
	FetchAttempts   metric.Int64Counter
	FetchDuration   metric.Float64Histogram
	ProviderCalls   metric.Int64Counter
	ProviderResults metric.Int64Histogram
	RateLimitHits   metric.Int64Counter

	settings config.CustomMetricsConfig
}

// NewMetrics creates every instrument on meter
func NewMetrics(meter metric.Meter, settings config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{settings: settings}

	if err := m.createAIMetrics(meter); err != nil {
		return nil, err
	}
	if err := m.createBusinessMetrics(meter); err != nil {
		return nil, err
	}
	if err := m.createInfrastructureMetrics(meter); err != nil {
		return nil, err
	}
	return m, nil
}

func allMetricsEnabled() config.CustomMetricsConfig {
	return config.CustomMetricsConfig{
		AIOperations: config.AIOperationsMetricsConfig{Enabled: true, TrackDuration: true, TrackTokenUsage: true},
		BusinessMetrics: config.BusinessMetricsConfig{
			Enabled: true, TrackSuccessRates: true, TrackContentSizes: true,
		},
		Infrastructure: config.InfrastructureMetricsConfig{
			Enabled: true, TrackRateLimits: true, TrackProviderCalls: true, TrackFetchStrategies: true,
		},
	}
}

// createAIMetrics creates AI-related metrics
func (m *Metrics) createAIMetrics(meter metric.Meter) error {
	var err error

	m.AIProcessingTime, err = meter.Float64Histogram(
		"wazivo_ai_processing_duration_seconds",
		metric.WithDescription("Time spent waiting for CV analysis from the model"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI processing time metric: %w", err)
	}

	m.AIRequestCount, err = meter.Int64Counter(
		"wazivo_ai_requests_total",
		metric.WithDescription("Total number of AI analysis requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI request count metric: %w", err)
	}

	m.AIErrorCount, err = meter.Int64Counter(
		"wazivo_ai_errors_total",
		metric.WithDescription("Total number of failed AI analysis requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI error count metric: %w", err)
	}

	m.AITokenUsage, err = meter.Int64Histogram(
		"wazivo_ai_token_usage",
		metric.WithDescription("Token usage for AI requests (input, output, total)"),
		metric.WithUnit("tokens"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	return nil
}

// createBusinessMetrics creates business-related metrics
func (m *Metrics) createBusinessMetrics(meter metric.Meter) error {
	var err error

	m.CVsAnalyzed, err = meter.Int64Counter(
		"wazivo_cv_analyzed_total",
		metric.WithDescription("Total number of CV analysis runs"),
	)
	if err != nil {
		return fmt.Errorf("failed to create CVs analyzed metric: %w", err)
	}

	m.CVTextLength, err = meter.Int64Histogram(
		"wazivo_cv_text_length_chars",
		metric.WithDescription("Length of the normalized CV text"),
		metric.WithUnit("{char}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create CV text length metric: %w", err)
	}

	return nil
}

// createInfrastructureMetrics creates fetch, job provider and rate limiting metrics
func (m *Metrics) createInfrastructureMetrics(meter metric.Meter) error {
	var err error

	m.FetchAttempts, err = meter.Int64Counter(
		"wazivo_fetch_attempts_total",
		metric.WithDescription("URL fetch attempts by strategy and outcome"),
	)
	if err != nil {
		return fmt.Errorf("failed to create fetch attempts metric: %w", err)
	}

	m.FetchDuration, err = meter.Float64Histogram(
		"wazivo_fetch_duration_seconds",
		metric.WithDescription("Time spent per URL fetch strategy attempt"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create fetch duration metric: %w", err)
	}

	m.ProviderCalls, err = meter.Int64Counter(
		"wazivo_job_provider_calls_total",
		metric.WithDescription("Job provider calls by provider and outcome"),
	)
	if err != nil {
		return fmt.Errorf("failed to create job provider calls metric: %w", err)
	}

	m.ProviderResults, err = meter.Int64Histogram(
		"wazivo_job_provider_results",
		metric.WithDescription("Listings returned per job provider call"),
	)
	if err != nil {
		return fmt.Errorf("failed to create job provider results metric: %w", err)
	}

	m.RateLimitHits, err = meter.Int64Counter(
		"wazivo_rate_limit_hits_total",
		metric.WithDescription("Total number of rejected rate limited requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return nil
}

// Observers adapts the metrics to the pipeline's instrumentation hooks. An
// uninitialized Metrics yields no hooks.
func (m *Metrics) Observers() pipeline.Observers {
	if m == nil || m.AIRequestCount == nil {
		return pipeline.Observers{}
	}
	return pipeline.Observers{
		Fetch: m.ObserveFetch,
		AI:    m.ObserveAI,
		Jobs:  m.ObserveJobProvider,
		Run:   m.ObserveRun,
	}
}

// ObserveAI records one analysis call
func (m *Metrics) ObserveAI(ctx context.Context, elapsed time.Duration, usage *ai.TokenUsage, err error) {
	if !m.settings.AIOperations.Enabled {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", "analyze_cv"),
		attribute.Bool("success", err == nil),
	}

	if m.settings.AIOperations.TrackDuration {
		m.AIProcessingTime.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
	}
	m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))

	if err != nil {
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", "analyze_cv"),
			attribute.String("code", errorCode(err)),
		))
	}

	if usage != nil && m.settings.AIOperations.TrackTokenUsage {
		m.recordTokenMetrics(ctx, usage)
	}
}

// recordTokenMetrics records individual token usage metrics
func (m *Metrics) recordTokenMetrics(ctx context.Context, usage *ai.TokenUsage) {
	tokenTypes := []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	}

	for _, tt := range tokenTypes {
		m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(
			attribute.String("operation", "analyze_cv"),
			attribute.String("token_type", tt.tokenType),
		))
	}
}

// ObserveRun records one pipeline run
func (m *Metrics) ObserveRun(ctx context.Context, kind types.SourceKind, _ time.Duration, textLength int, err error) {
	business := m.settings.BusinessMetrics
	if !business.Enabled {
		return
	}

	attrs := []attribute.KeyValue{attribute.String("source", string(kind))}
	if business.TrackSuccessRates {
		attrs = append(attrs,
			attribute.Bool("success", err == nil),
			attribute.String("code", errorCode(err)),
		)
	}
	m.CVsAnalyzed.Add(ctx, 1, metric.WithAttributes(attrs...))

	if business.TrackContentSizes && textLength > 0 {
		m.CVTextLength.Record(ctx, int64(textLength), metric.WithAttributes(attribute.String("source", string(kind))))
	}
}

// ObserveFetch records one URL fetch strategy attempt
func (m *Metrics) ObserveFetch(ctx context.Context, strategy, outcome string, elapsed time.Duration) {
	infra := m.settings.Infrastructure
	if !infra.Enabled || !infra.TrackFetchStrategies {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("strategy", strategy),
		attribute.String("outcome", outcome),
	)
	m.FetchAttempts.Add(ctx, 1, attrs)
	m.FetchDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// ObserveJobProvider records one job provider call
func (m *Metrics) ObserveJobProvider(ctx context.Context, provider, outcome string, results int, _ time.Duration) {
	infra := m.settings.Infrastructure
	if !infra.Enabled || !infra.TrackProviderCalls {
		return
	}

	m.ProviderCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	))
	m.ProviderResults.Record(ctx, int64(results), metric.WithAttributes(attribute.String("provider", provider)))
}

// RecordRateLimitHit records a request rejected by the rate limiter
func (m *Metrics) RecordRateLimitHit(ctx context.Context, backend, scope string) {
	infra := m.settings.Infrastructure
	if m.RateLimitHits == nil || !infra.Enabled || !infra.TrackRateLimits {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("scope", scope),
	))
}

func errorCode(err error) string {
	if err == nil {
		return "none"
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.Code
	}
	if stderrors.Is(err, context.Canceled) {
		return "CANCELED"
	}
	return errors.ErrCodeInternal
}

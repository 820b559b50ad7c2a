package pipeline

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wazivo/internal/config"
	"wazivo/internal/errors"
	"wazivo/internal/jobs"
	"wazivo/internal/types"
)

type fakeNormalizer struct {
	text string
	err  error
}

func (f *fakeNormalizer) Normalize(_ context.Context, _ types.CVSource) (string, error) {
	return f.text, f.err
}

type fakeAnalyzer struct {
	report *types.AnalysisReport
	err    error
	input  string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, text string) (*types.AnalysisReport, error) {
	f.input = text
	return f.report, f.err
}

type fakeEnricher struct {
	result jobs.Result
	calls  int
}

func (f *fakeEnricher) Enrich(_ context.Context, _ types.CandidateSummary, _ types.JobSearchHints) jobs.Result {
	f.calls++
	return f.result
}

func testReport() *types.AnalysisReport {
	return &types.AnalysisReport{
		CandidateSummary:   types.CandidateSummary{Title: "Backend Engineer", KeySkills: []string{"Go"}},
		WeaknessesAndGaps:  []types.SkillGap{{Category: "Cloud", Gap: "No AWS", Priority: "high"}},
		RecommendedCourses: []types.CourseRecommendation{},
		MarketInsights:     types.MarketInsights{DemandLevel: "high"},
		JobOpportunities:   []types.JobListing{},
	}
}

func TestRunAttachesJobs(t *testing.T) {
	enricher := &fakeEnricher{result: jobs.Result{
		Jobs: []types.JobListing{{Title: "Go Developer", Company: "Acme", ApplyLink: "https://x", Source: "Adzuna"}},
		Metadata: types.JobSearchMetadata{
			PrimaryQuery:       "Backend Engineer",
			AlternativeQueries: []string{},
			Location:           "remote",
			LiveResults:        1,
		},
	}}
	analyzer := &fakeAnalyzer{report: testReport()}
	p := New(&fakeNormalizer{text: "cv text"}, analyzer, enricher, errors.NewDiscardLogger(), nil)

	resp, err := p.Run(context.Background(), types.URLSource("https://example.com/cv.pdf"), Options{})
	require.NoError(t, err)

	assert.Equal(t, "cv text", analyzer.input)
	assert.Equal(t, 1, enricher.calls)
	require.Len(t, resp.JobOpportunities, 1)
	assert.Equal(t, "Go Developer", resp.JobOpportunities[0].Title)
	assert.Equal(t, "Backend Engineer", resp.JobSearchMeta.PrimaryQuery)
	assert.Equal(t, "Backend Engineer", resp.CandidateSummary.Title)
	assert.Empty(t, resp.JobSearchMeta.Skipped)
}

func TestRunSkipJobs(t *testing.T) {
	enricher := &fakeEnricher{}
	p := New(&fakeNormalizer{text: "cv"}, &fakeAnalyzer{report: testReport()}, enricher, errors.NewDiscardLogger(), nil)

	resp, err := p.Run(context.Background(), types.FileSource([]byte("x"), "application/pdf", "cv.pdf"), Options{SkipJobs: true})
	require.NoError(t, err)

	assert.Zero(t, enricher.calls)
	assert.NotNil(t, resp.JobOpportunities)
	assert.Empty(t, resp.JobOpportunities)
	assert.NotEmpty(t, resp.JobSearchMeta.Skipped)
}

func TestRunWithoutEnricher(t *testing.T) {
	p := New(&fakeNormalizer{text: "cv"}, &fakeAnalyzer{report: testReport()}, nil, errors.NewDiscardLogger(), nil)

	resp, err := p.Run(context.Background(), types.URLSource("https://example.com"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "job enrichment is disabled", resp.JobSearchMeta.Skipped)
}

func TestRunStopsOnNormalizeError(t *testing.T) {
	analyzer := &fakeAnalyzer{report: testReport()}
	normErr := errors.NewValidationError("INSUFFICIENT_TEXT", "too short", nil)
	p := New(&fakeNormalizer{err: normErr}, analyzer, &fakeEnricher{}, errors.NewDiscardLogger(), nil)

	_, err := p.Run(context.Background(), types.URLSource("https://example.com"), Options{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "INSUFFICIENT_TEXT"))
	assert.Empty(t, analyzer.input, "analysis never runs without text")
}

func TestRunStopsOnAnalyzeError(t *testing.T) {
	enricher := &fakeEnricher{}
	aiErr := errors.NewAIError("AI_TIMEOUT", "timed out", nil)
	p := New(&fakeNormalizer{text: "cv"}, &fakeAnalyzer{err: aiErr}, enricher, errors.NewDiscardLogger(), nil)

	_, err := p.Run(context.Background(), types.URLSource("https://example.com"), Options{})
	assert.True(t, errors.HasCode(err, "AI_TIMEOUT"))
	assert.Zero(t, enricher.calls)
}

func TestRunObserver(t *testing.T) {
	var (
		gotKind   types.SourceKind
		gotLength int
		gotErr    error
		calls     int
	)
	observer := func(_ context.Context, kind types.SourceKind, _ time.Duration, textLength int, err error) {
		calls++
		gotKind, gotLength, gotErr = kind, textLength, err
	}

	p := New(&fakeNormalizer{text: "twelve chärs"}, &fakeAnalyzer{report: testReport()}, nil, errors.NewDiscardLogger(), observer)
	_, err := p.Run(context.Background(), types.FileSource([]byte("x"), "text/plain", "cv.txt"), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, types.SourceFile, gotKind)
	assert.Equal(t, 12, gotLength, "length is counted in characters, not bytes")
	assert.NoError(t, gotErr)

	failing := New(&fakeNormalizer{err: stderrors.New("boom")}, &fakeAnalyzer{}, nil, errors.NewDiscardLogger(), observer)
	_, _ = failing.Run(context.Background(), types.URLSource("https://example.com"), Options{})
	assert.Equal(t, 2, calls)
	assert.Equal(t, types.SourceURL, gotKind)
	assert.Error(t, gotErr)
}

func TestExtractOnlyNormalizes(t *testing.T) {
	analyzer := &fakeAnalyzer{report: testReport()}
	p := New(&fakeNormalizer{text: "plain text"}, analyzer, nil, errors.NewDiscardLogger(), nil)

	text, err := p.Extract(context.Background(), types.FileSource([]byte("plain text"), "text/plain", "cv.txt"))
	require.NoError(t, err)
	assert.Equal(t, "plain text", text)
	assert.Empty(t, analyzer.input)
}

func TestBuildFromDefaults(t *testing.T) {
	cfg := config.Defaults()
	cfg.AI.APIKey = ""
	cfg.Jobs.Enabled = false

	components, err := Build(cfg, errors.NewDiscardLogger(), Observers{})
	require.NoError(t, err)
	defer func() { _ = components.Close() }()

	assert.NotNil(t, components.Pipeline)
	assert.False(t, components.AI.Configured())
	assert.Nil(t, components.Enricher)
	assert.NotEmpty(t, components.Fetcher.Strategies())

	_, err = components.Pipeline.Run(context.Background(), types.FileSource([]byte("short"), "text/plain", "cv.txt"), Options{})
	require.Error(t, err)
}

package formatters

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wazivo/internal/types"
)

func sampleResponse() *types.AnalyzeResponse {
	return &types.AnalyzeResponse{
		AnalysisReport: types.AnalysisReport{
			CandidateSummary: types.CandidateSummary{
				Name:      "Amina Hassan",
				Title:     "Backend Engineer",
				KeySkills: []string{"Go", "PostgreSQL"},
				Seniority: "mid",
			},
			WeaknessesAndGaps: []types.SkillGap{
				{Category: "Cloud", Gap: "No AWS | GCP experience", Impact: "Limits senior roles", Priority: "high"},
			},
			RecommendedCourses: []types.CourseRecommendation{
				{Title: "AWS Fundamentals", Platform: "Coursera", Link: "https://coursera.org/aws", Level: "beginner"},
			},
			MarketInsights: types.MarketInsights{DemandLevel: "high", TrendingSkills: []string{"Kubernetes"}},
			JobOpportunities: []types.JobListing{
				{Title: "Go Developer", Company: "Acme", Location: "Remote", ApplyLink: "https://jobs.example/1", Source: "Adzuna"},
			},
		},
		JobSearchMeta: types.JobSearchMetadata{PrimaryQuery: "Backend Engineer", Location: "remote", LiveResults: 1},
	}
}

func TestFormatAnalyzeJSON(t *testing.T) {
	out, err := GlobalRegistry.Format(sampleResponse(), "json")
	require.NoError(t, err)

	var decoded types.AnalyzeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "Amina Hassan", decoded.CandidateSummary.Name)
	assert.Contains(t, out, `"jobOpportunities"`)
}

func TestFormatAnalyzeText(t *testing.T) {
	out, err := GlobalRegistry.Format(sampleResponse(), "text")
	require.NoError(t, err)

	assert.Contains(t, out, "=== CANDIDATE SUMMARY ===")
	assert.Contains(t, out, "Key skills: Go, PostgreSQL")
	assert.Contains(t, out, "1. [HIGH] Cloud: No AWS | GCP experience")
	assert.Contains(t, out, "1. AWS Fundamentals (Coursera)")
	assert.Contains(t, out, `Query: "Backend Engineer" in remote (1 live results)`)
	assert.Contains(t, out, "https://jobs.example/1 [Adzuna]")
	assert.NotContains(t, out, "Experience:", "empty fields are omitted")
}

func TestFormatAnalyzeMarkdown(t *testing.T) {
	out, err := GlobalRegistry.Format(*sampleResponse(), "markdown")
	require.NoError(t, err)

	assert.Contains(t, out, "# CV Analysis")
	assert.Contains(t, out, "| high | Cloud | No AWS \\| GCP experience | Limits senior roles |")
	assert.Contains(t, out, "[AWS Fundamentals](https://coursera.org/aws)")
	assert.Contains(t, out, "- [Go Developer](https://jobs.example/1) at Acme, Remote _(Adzuna)_")
}

func TestFormatAnalyzeSkippedJobs(t *testing.T) {
	resp := sampleResponse()
	resp.JobOpportunities = []types.JobListing{}
	resp.JobSearchMeta = types.JobSearchMetadata{Skipped: "disabled for this request"}

	text, err := GlobalRegistry.Format(resp, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "Job search skipped: disabled for this request")

	markdown, err := GlobalRegistry.Format(resp, "markdown")
	require.NoError(t, err)
	assert.Contains(t, markdown, "_Job search skipped: disabled for this request_")
}

func TestFormatExtractResult(t *testing.T) {
	result := types.ExtractResult{Source: "cv.pdf", Characters: 11, Text: "Hello World"}

	text, err := GlobalRegistry.Format(result, "text")
	require.NoError(t, err)
	assert.Equal(t, "Hello World\n", text)

	markdown, err := GlobalRegistry.Format(&result, "markdown")
	require.NoError(t, err)
	assert.Contains(t, markdown, "```text\nHello World\n```")
	assert.Contains(t, markdown, "**Source:** cv.pdf")
}

func TestFormatUnknownFormat(t *testing.T) {
	_, err := GlobalRegistry.Format(sampleResponse(), "xml")
	assert.Error(t, err)
	assert.Equal(t, []string{"json", "markdown", "text"}, GlobalRegistry.GetSupportedFormats())
}

func TestFormatArbitraryDataFallsBackToJSON(t *testing.T) {
	_, err := GlobalRegistry.Format(map[string]int{"a": 1}, "text")
	assert.Error(t, err, "text has no generic formatter")

	out, err := GlobalRegistry.Format(map[string]int{"a": 1}, "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, out)
}

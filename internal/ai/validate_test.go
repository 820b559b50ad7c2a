package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireValid(t *testing.T, result ValidationResult) Valid {
	t.Helper()
	valid, ok := result.(Valid)
	if !ok {
		t.Fatalf("expected Valid, got %#v", result)
	}
	return valid
}

func requireSchemaError(t *testing.T, result ValidationResult) SchemaError {
	t.Helper()
	schemaErr, ok := result.(SchemaError)
	if !ok {
		t.Fatalf("expected SchemaError, got %#v", result)
	}
	require.NotEmpty(t, schemaErr.Violations)
	return schemaErr
}

func TestValidateReportStripsCodeFence(t *testing.T) {
	valid := requireValid(t, ValidateReport("```json\n"+validReport+"\n```"))
	assert.Equal(t, "Jane Doe", valid.Report.CandidateSummary.Name)
}

func TestValidateReportDefaultsOptionalLists(t *testing.T) {
	raw := `{
		"candidateSummary": {"keySkills": ["Go"], "experience": 6},
		"weaknessesAndGaps": [],
		"recommendedCourses": [{"title": "Go in Action", "platform": "Manning"}],
		"marketInsights": {"demandLevel": "Medium", "trendingSkills": null}
	}`

	valid := requireValid(t, ValidateReport(raw))
	report := valid.Report
	assert.Equal(t, "6 years", report.CandidateSummary.Experience)
	assert.Equal(t, "medium", report.MarketInsights.DemandLevel)
	assert.NotNil(t, report.MarketInsights.TrendingSkills)
	assert.NotNil(t, report.JobSearch.AlternativeTitles)
	assert.NotNil(t, report.RecommendedCourses[0].Skills)
	assert.NotNil(t, report.JobOpportunities)
}

func TestValidateReportViolations(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"empty", "   ", "response is empty"},
		{"not an object", `["a", "b"]`, "expected a JSON object"},
		{"truncated", `{"candidateSummary":`, "invalid JSON"},
		{"missing sections", `{"candidateSummary": {"keySkills": []}}`, "marketInsights"},
		{"missing skills", `{"candidateSummary": {}, "weaknessesAndGaps": [], "recommendedCourses": [], "marketInsights": {"demandLevel": "low"}}`, "keySkills"},
		{"bad seniority", `{"candidateSummary": {"keySkills": [], "seniority": "wizard"}, "weaknessesAndGaps": [], "recommendedCourses": [], "marketInsights": {"demandLevel": "low"}}`, "seniority"},
		{"bad demand", `{"candidateSummary": {"keySkills": []}, "weaknessesAndGaps": [], "recommendedCourses": [], "marketInsights": {"demandLevel": "huge"}}`, "demandLevel"},
		{"course without platform", `{"candidateSummary": {"keySkills": []}, "weaknessesAndGaps": [], "recommendedCourses": [{"title": "x"}], "marketInsights": {"demandLevel": "low"}}`, "platform"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schemaErr := requireSchemaError(t, ValidateReport(tt.raw))
			assert.Contains(t, strings.Join(schemaErr.Violations, "; "), tt.field)
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"```json{\"a\":1}```", `{"a":1}`},
		{"  \n{\"a\":1}\n  ", `{"a":1}`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, stripCodeFence(tt.in))
	}
}

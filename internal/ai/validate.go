package ai

import (
	_ "embed"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"

	"wazivo/internal/types"
)

//go:embed report.schema.json
var reportSchemaJSON []byte

var (
	reportSchema   = mustCompileSchema(reportSchemaJSON)
	reportValidate = validator.New()
)

func mustCompileSchema(raw []byte) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded report schema: %v", err))
	}
	return schema
}

// ValidationResult is the outcome of checking a raw model payload. It is
// either Valid or SchemaError; nothing past ValidateReport sees raw JSON.
type ValidationResult interface {
	isValidationResult()
}

// Valid carries a fully typed report
type Valid struct {
	Report *types.AnalysisReport
}

// SchemaError lists every problem found in the payload
type SchemaError struct {
	Violations []string
}

func (Valid) isValidationResult()       {}
func (SchemaError) isValidationResult() {}

// ValidateReport parses raw model output into an AnalysisReport. Code fences
// are stripped and enum values lowercased before the JSON Schema and struct
// checks run. Optional lists default to empty and JobOpportunities is always
// an empty list.
func ValidateReport(raw string) ValidationResult {
	payload := stripCodeFence(raw)
	if payload == "" {
		return SchemaError{Violations: []string{"(root): response is empty"}}
	}

	var doc any
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return SchemaError{Violations: []string{"(root): invalid JSON: " + err.Error()}}
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return SchemaError{Violations: []string{"(root): expected a JSON object"}}
	}
	normalizeDocument(obj)

	result, err := reportSchema.Validate(gojsonschema.NewGoLoader(obj))
	if err != nil {
		return SchemaError{Violations: []string{"(root): " + err.Error()}}
	}
	if !result.Valid() {
		return SchemaError{Violations: schemaViolations(result.Errors())}
	}

	normalized, err := json.Marshal(obj)
	if err != nil {
		return SchemaError{Violations: []string{"(root): " + err.Error()}}
	}
	var report types.AnalysisReport
	if err := json.Unmarshal(normalized, &report); err != nil {
		return SchemaError{Violations: []string{"(root): " + err.Error()}}
	}

	if err := reportValidate.Struct(&report); err != nil {
		return SchemaError{Violations: structViolations(err)}
	}

	applyDefaults(&report)
	return Valid{Report: &report}
}

// stripCodeFence removes a surrounding ```json fence some models add despite
// being asked not to
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// normalizeDocument fixes harmless formatting drift in place: enum casing and
// numeric experience values.
func normalizeDocument(doc map[string]any) {
	if summary, ok := doc["candidateSummary"].(map[string]any); ok {
		lowerField(summary, "seniority")
		if years, ok := summary["experience"].(float64); ok {
			summary["experience"] = strconv.FormatFloat(years, 'f', -1, 64) + " years"
		}
	}
	if gaps, ok := doc["weaknessesAndGaps"].([]any); ok {
		for _, g := range gaps {
			if gap, ok := g.(map[string]any); ok {
				lowerField(gap, "priority")
			}
		}
	}
	if insights, ok := doc["marketInsights"].(map[string]any); ok {
		lowerField(insights, "demandLevel")
	}
}

func lowerField(obj map[string]any, key string) {
	if v, ok := obj[key].(string); ok {
		obj[key] = strings.ToLower(strings.TrimSpace(v))
	}
}

func schemaViolations(errs []gojsonschema.ResultError) []string {
	violations := make([]string, 0, len(errs))
	for _, desc := range errs {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		violations = append(violations, fmt.Sprintf("%s: %s", field, desc.Description()))
	}
	sort.Strings(violations)
	return violations
}

func structViolations(err error) []string {
	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return []string{"(root): " + err.Error()}
	}
	violations := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		violations = append(violations, fmt.Sprintf("%s: failed '%s' check", fe.Namespace(), fe.Tag()))
	}
	return violations
}

func applyDefaults(report *types.AnalysisReport) {
	if report.CandidateSummary.KeySkills == nil {
		report.CandidateSummary.KeySkills = []string{}
	}
	if report.JobSearch.AlternativeTitles == nil {
		report.JobSearch.AlternativeTitles = []string{}
	}
	if report.WeaknessesAndGaps == nil {
		report.WeaknessesAndGaps = []types.SkillGap{}
	}
	if report.RecommendedCourses == nil {
		report.RecommendedCourses = []types.CourseRecommendation{}
	}
	for i := range report.RecommendedCourses {
		if report.RecommendedCourses[i].Skills == nil {
			report.RecommendedCourses[i].Skills = []string{}
		}
	}
	if report.MarketInsights.TrendingSkills == nil {
		report.MarketInsights.TrendingSkills = []string{}
	}
	report.JobOpportunities = []types.JobListing{}
}

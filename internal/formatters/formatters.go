package formatters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"wazivo/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalyzeResponse", &AnalyzeTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalyzeResponse", &AnalyzeMarkdownFormatter{})
	registry.RegisterFormatter("text", "ExtractResult", &ExtractTextFormatter{})
	registry.RegisterFormatter("markdown", "ExtractResult", &ExtractMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	data = deref(data)
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// deref lets callers pass results by pointer
func deref(data any) any {
	switch v := data.(type) {
	case *types.AnalyzeResponse:
		if v != nil {
			return *v
		}
	case *types.ExtractResult:
		if v != nil {
			return *v
		}
	}
	return data
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalyzeResponse:
		return "AnalyzeResponse"
	case types.ExtractResult:
		return "ExtractResult"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// AnalyzeTextFormatter renders an analysis for a terminal
type AnalyzeTextFormatter struct{}

func (atf *AnalyzeTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalyzeResponse)
	if !ok {
		return "", fmt.Errorf("expected AnalyzeResponse, got %T", data)
	}

	var output strings.Builder
	summary := result.CandidateSummary

	output.WriteString("=== CANDIDATE SUMMARY ===\n")
	writeTextField(&output, "Name", summary.Name)
	writeTextField(&output, "Title", summary.Title)
	writeTextField(&output, "Experience", summary.Experience)
	writeTextField(&output, "Seniority", summary.Seniority)
	writeTextField(&output, "Location", summary.Location)
	if len(summary.KeySkills) > 0 {
		output.WriteString("Key skills: " + strings.Join(summary.KeySkills, ", ") + "\n")
	}
	output.WriteString("\n")

	output.WriteString("=== WEAKNESSES AND GAPS ===\n")
	if len(result.WeaknessesAndGaps) == 0 {
		output.WriteString("No gaps identified.\n")
	}
	for i, gap := range result.WeaknessesAndGaps {
		output.WriteString(fmt.Sprintf("%d. [%s] %s: %s\n", i+1, strings.ToUpper(gap.Priority), gap.Category, gap.Gap))
		if gap.Impact != "" {
			output.WriteString("   Impact: " + gap.Impact + "\n")
		}
	}
	output.WriteString("\n")

	output.WriteString("=== RECOMMENDED COURSES ===\n")
	if len(result.RecommendedCourses) == 0 {
		output.WriteString("No courses recommended.\n")
	}
	for i, course := range result.RecommendedCourses {
		output.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, course.Title, course.Platform))
		details := joinNonEmpty(" | ", course.Level, course.Duration, course.Cost)
		if details != "" {
			output.WriteString("   " + details + "\n")
		}
		if course.AddressesGap != "" {
			output.WriteString("   Addresses: " + course.AddressesGap + "\n")
		}
		if course.Link != "" {
			output.WriteString("   " + course.Link + "\n")
		}
	}
	output.WriteString("\n")

	output.WriteString("=== MARKET INSIGHTS ===\n")
	writeTextField(&output, "Demand", result.MarketInsights.DemandLevel)
	writeTextField(&output, "Salary range", result.MarketInsights.AvgSalaryRange)
	if len(result.MarketInsights.TrendingSkills) > 0 {
		output.WriteString("Trending skills: " + strings.Join(result.MarketInsights.TrendingSkills, ", ") + "\n")
	}
	output.WriteString("\n")

	output.WriteString("=== JOB OPPORTUNITIES ===\n")
	if result.JobSearchMeta.Skipped != "" {
		output.WriteString("Job search skipped: " + result.JobSearchMeta.Skipped + "\n")
	} else {
		output.WriteString(fmt.Sprintf("Query: %q in %s (%d live results)\n",
			result.JobSearchMeta.PrimaryQuery, result.JobSearchMeta.Location, result.JobSearchMeta.LiveResults))
	}
	for i, job := range result.JobOpportunities {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, joinNonEmpty(" - ", job.Title, job.Company, job.Location)))
		output.WriteString("   " + job.ApplyLink + " [" + job.Source + "]\n")
	}

	return output.String(), nil
}

func (atf *AnalyzeTextFormatter) SupportedType() string {
	return "AnalyzeResponse"
}

// AnalyzeMarkdownFormatter renders an analysis as a markdown report
type AnalyzeMarkdownFormatter struct{}

func (amf *AnalyzeMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalyzeResponse)
	if !ok {
		return "", fmt.Errorf("expected AnalyzeResponse, got %T", data)
	}

	var output strings.Builder
	summary := result.CandidateSummary

	output.WriteString("# CV Analysis\n\n")
	output.WriteString("## Candidate Summary\n\n")
	writeMarkdownField(&output, "Name", summary.Name)
	writeMarkdownField(&output, "Title", summary.Title)
	writeMarkdownField(&output, "Experience", summary.Experience)
	writeMarkdownField(&output, "Seniority", summary.Seniority)
	writeMarkdownField(&output, "Location", summary.Location)
	if len(summary.KeySkills) > 0 {
		writeMarkdownField(&output, "Key skills", strings.Join(summary.KeySkills, ", "))
	}
	output.WriteString("\n")

	if len(result.WeaknessesAndGaps) > 0 {
		output.WriteString("## Weaknesses and Gaps\n\n")
		output.WriteString("| Priority | Category | Gap | Impact |\n")
		output.WriteString("|---|---|---|---|\n")
		for _, gap := range result.WeaknessesAndGaps {
			output.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				gap.Priority, escapeCell(gap.Category), escapeCell(gap.Gap), escapeCell(gap.Impact)))
		}
		output.WriteString("\n")
	}

	if len(result.RecommendedCourses) > 0 {
		output.WriteString("## Recommended Courses\n\n")
		for _, course := range result.RecommendedCourses {
			title := course.Title
			if course.Link != "" {
				title = fmt.Sprintf("[%s](%s)", course.Title, course.Link)
			}
			output.WriteString(fmt.Sprintf("- **%s** on %s", title, course.Platform))
			if details := joinNonEmpty(", ", course.Level, course.Duration, course.Cost); details != "" {
				output.WriteString(" (" + details + ")")
			}
			output.WriteString("\n")
			if course.AddressesGap != "" {
				output.WriteString("  - Addresses: " + course.AddressesGap + "\n")
			}
		}
		output.WriteString("\n")
	}

	output.WriteString("## Market Insights\n\n")
	writeMarkdownField(&output, "Demand", result.MarketInsights.DemandLevel)
	writeMarkdownField(&output, "Salary range", result.MarketInsights.AvgSalaryRange)
	if len(result.MarketInsights.TrendingSkills) > 0 {
		writeMarkdownField(&output, "Trending skills", strings.Join(result.MarketInsights.TrendingSkills, ", "))
	}
	output.WriteString("\n")

	output.WriteString("## Job Opportunities\n\n")
	if result.JobSearchMeta.Skipped != "" {
		output.WriteString("_Job search skipped: " + result.JobSearchMeta.Skipped + "_\n")
		return output.String(), nil
	}
	output.WriteString(fmt.Sprintf("Searched for **%s** in %s.\n\n", result.JobSearchMeta.PrimaryQuery, result.JobSearchMeta.Location))
	for _, job := range result.JobOpportunities {
		output.WriteString(fmt.Sprintf("- [%s](%s)", job.Title, job.ApplyLink))
		if where := joinNonEmpty(", ", job.Company, job.Location); where != "" {
			output.WriteString(" at " + where)
		}
		output.WriteString(" _(" + job.Source + ")_\n")
	}

	return output.String(), nil
}

func (amf *AnalyzeMarkdownFormatter) SupportedType() string {
	return "AnalyzeResponse"
}

// ExtractTextFormatter prints the extracted text as is
type ExtractTextFormatter struct{}

func (etf *ExtractTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ExtractResult)
	if !ok {
		return "", fmt.Errorf("expected ExtractResult, got %T", data)
	}
	return result.Text + "\n", nil
}

func (etf *ExtractTextFormatter) SupportedType() string {
	return "ExtractResult"
}

// ExtractMarkdownFormatter wraps the extracted text in a fenced block
type ExtractMarkdownFormatter struct{}

func (emf *ExtractMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ExtractResult)
	if !ok {
		return "", fmt.Errorf("expected ExtractResult, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Extracted CV Text\n\n")
	output.WriteString(fmt.Sprintf("**Source:** %s  \n**Characters:** %d\n\n", result.Source, result.Characters))
	output.WriteString("```text\n")
	output.WriteString(result.Text)
	output.WriteString("\n```\n")
	return output.String(), nil
}

func (emf *ExtractMarkdownFormatter) SupportedType() string {
	return "ExtractResult"
}

func writeTextField(output *strings.Builder, label, value string) {
	if value != "" {
		output.WriteString(label + ": " + value + "\n")
	}
}

func writeMarkdownField(output *strings.Builder, label, value string) {
	if value != "" {
		output.WriteString("- **" + label + ":** " + value + "\n")
	}
}

func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

func escapeCell(value string) string {
	return strings.ReplaceAll(strings.ReplaceAll(value, "|", "\\|"), "\n", " ")
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()

package types

// SourceKind discriminates the two ways a CV can be submitted
type SourceKind string

const (
	SourceFile SourceKind = "file"
	SourceURL  SourceKind = "url"
)

// CVSource is a per-request CV submission: either file bytes with a MIME type
// or a remote URL. It is discarded once text has been extracted.
type CVSource struct {
	Kind     SourceKind
	Data     []byte
	MIMEType string
	Filename string
	URL      string
}

// FileSource builds a CVSource for an uploaded file
func FileSource(data []byte, mimeType, filename string) CVSource {
	return CVSource{Kind: SourceFile, Data: data, MIMEType: mimeType, Filename: filename}
}

// URLSource builds a CVSource for a remote URL
func URLSource(url string) CVSource {
	return CVSource{Kind: SourceURL, URL: url}
}

// CandidateSummary describes who the CV belongs to
type CandidateSummary struct {
	Name       string   `json:"name,omitempty"`
	Title      string   `json:"title,omitempty"`
	Experience string   `json:"experience,omitempty"` // years of experience as stated by the model
	KeySkills  []string `json:"keySkills" validate:"required"`
	Location   string   `json:"location,omitempty"`
	Seniority  string   `json:"seniority,omitempty" validate:"omitempty,oneof=intern junior mid senior lead principal executive"`
}

// JobSearchHints are search terms suggested by the model
type JobSearchHints struct {
	SuggestedTitle    string   `json:"suggestedTitle,omitempty"`
	AlternativeTitles []string `json:"alternativeTitles"`
	Location          string   `json:"location,omitempty"`
}

// SkillGap is a single weakness found in the CV
type SkillGap struct {
	Category string `json:"category" validate:"required"`
	Gap      string `json:"gap" validate:"required"`
	Impact   string `json:"impact"`
	Priority string `json:"priority" validate:"required,oneof=high medium low"`
}

// CourseRecommendation addresses one or more gaps
type CourseRecommendation struct {
	Title        string   `json:"title" validate:"required"`
	Platform     string   `json:"platform" validate:"required"`
	Duration     string   `json:"duration,omitempty"`
	Level        string   `json:"level,omitempty"`
	Link         string   `json:"link,omitempty"`
	AddressesGap string   `json:"addressesGap,omitempty"`
	Skills       []string `json:"skills"`
	Cost         string   `json:"cost,omitempty"`
}

// MarketInsights summarises demand for the candidate's profile
type MarketInsights struct {
	DemandLevel    string   `json:"demandLevel" validate:"required,oneof=high medium low"`
	AvgSalaryRange string   `json:"avgSalaryRange,omitempty"`
	TrendingSkills []string `json:"trendingSkills"`
}

// JobListing is one job returned by a provider or a generated deep link
type JobListing struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Remote      bool   `json:"remote"`
	ApplyLink   string `json:"applyLink"`
	Source      string `json:"source"`
	PostedDate  string `json:"postedDate,omitempty"`
	Salary      string `json:"salary,omitempty"`
	Description string `json:"description,omitempty"`
}

// JobSearchMetadata records the queries actually used for enrichment
type JobSearchMetadata struct {
	PrimaryQuery       string   `json:"primaryQuery"`
	AlternativeQueries []string `json:"alternativeQueries"`
	Location           string   `json:"location"`
	LiveResults        int      `json:"liveResults"`         // provider listings after dedup
	FallbackUsed       bool     `json:"fallbackUsed"`        // no provider returned anything
	Providers          []string `json:"providers,omitempty"` // providers that were queried
	Skipped            string   `json:"skipped,omitempty"`   // why enrichment did not run
}

// AnalysisReport is the structured result of CV analysis.
// JobOpportunities is empty until enrichment runs and is the only field
// changed after the report is created.
type AnalysisReport struct {
	CandidateSummary   CandidateSummary       `json:"candidateSummary"`
	JobSearch          JobSearchHints         `json:"jobSearch"`
	WeaknessesAndGaps  []SkillGap             `json:"weaknessesAndGaps" validate:"dive"`
	RecommendedCourses []CourseRecommendation `json:"recommendedCourses" validate:"dive"`
	MarketInsights     MarketInsights         `json:"marketInsights"`
	JobOpportunities   []JobListing           `json:"jobOpportunities"`
}

// AnalyzeResponse is the payload returned to API and CLI callers
type AnalyzeResponse struct {
	AnalysisReport
	JobSearchMeta JobSearchMetadata `json:"jobSearchMeta"`
	RequestID     string            `json:"requestId,omitempty"`
}

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId"`
}

// ExtractResult is the CLI output of text extraction without analysis
type ExtractResult struct {
	Source     string `json:"source"`
	Characters int    `json:"characters"`
	Text       string `json:"text"`
}

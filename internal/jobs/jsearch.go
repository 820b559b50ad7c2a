package jobs

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"wazivo/internal/config"
	"wazivo/internal/types"
	"wazivo/internal/utils"
)

// JSearchProvider searches the JSearch API on RapidAPI
type JSearchProvider struct {
	client  *http.Client
	baseURL string
	host    string
	apiKey  string
}

// NewJSearchProvider creates the JSearch provider. It returns nil when no
// RapidAPI key is configured.
func NewJSearchProvider(cfg config.JSearchConfig, client *http.Client) *JSearchProvider {
	if cfg.APIKey == "" {
		return nil
	}
	return &JSearchProvider{
		client:  client,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		host:    cfg.Host,
		apiKey:  cfg.APIKey,
	}
}

// Name implements Provider
func (j *JSearchProvider) Name() string { return "JSearch" }

type jsearchResponse struct {
	Data []struct {
		JobTitle       string  `json:"job_title"`
		EmployerName   string  `json:"employer_name"`
		JobCity        string  `json:"job_city"`
		JobCountry     string  `json:"job_country"`
		JobIsRemote    bool    `json:"job_is_remote"`
		JobApplyLink   string  `json:"job_apply_link"`
		PostedAt       string  `json:"job_posted_at_datetime_utc"`
		MinSalary      float64 `json:"job_min_salary"`
		MaxSalary      float64 `json:"job_max_salary"`
		SalaryCurrency string  `json:"job_salary_currency"`
		Description    string  `json:"job_description"`
	} `json:"data"`
}

// Search implements Provider
func (j *JSearchProvider) Search(ctx context.Context, q Query) ([]types.JobListing, error) {
	location := q.Location
	if location == "" {
		location = "remote"
	}
	params := url.Values{
		"query":     {q.Keywords + " in " + location},
		"page":      {"1"},
		"num_pages": {"1"},
	}
	if isRemote(location) {
		params.Set("remote_jobs_only", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create JSearch request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", j.apiKey)
	req.Header.Set("X-RapidAPI-Host", j.host)
	req.Header.Set("Accept", "application/json")

	var body jsearchResponse
	if err := getJSON(j.client, req, j.Name(), &body); err != nil {
		return nil, err
	}

	listings := make([]types.JobListing, 0, len(body.Data))
	for _, d := range limit(body.Data, q.Limit) {
		loc := strings.Trim(strings.Join([]string{d.JobCity, d.JobCountry}, ", "), ", ")
		if loc == "" {
			loc = "Remote"
		}
		listings = append(listings, types.JobListing{
			Title:       d.JobTitle,
			Company:     d.EmployerName,
			Location:    loc,
			Remote:      d.JobIsRemote,
			ApplyLink:   d.JobApplyLink,
			Source:      j.Name(),
			PostedDate:  d.PostedAt,
			Salary:      salaryRange(d.MinSalary, d.MaxSalary, d.SalaryCurrency),
			Description: truncateDescription(d.Description),
		})
	}
	return listings, nil
}

// descriptionLimit keeps response payloads small; full text is one click away
const descriptionLimit = 300

func truncateDescription(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utils.RuneLen(s) <= descriptionLimit {
		return s
	}
	return strings.TrimSpace(utils.TruncateRunes(s, descriptionLimit)) + "..."
}

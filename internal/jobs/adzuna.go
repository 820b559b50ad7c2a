package jobs

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"wazivo/internal/config"
	"wazivo/internal/types"
)

// AdzunaProvider searches the Adzuna jobs API
type AdzunaProvider struct {
	client  *http.Client
	baseURL string
	country string
	appID   string
	appKey  string
}

// NewAdzunaProvider creates the Adzuna provider. It returns nil when the
// credentials are not configured.
func NewAdzunaProvider(cfg config.AdzunaConfig, client *http.Client) *AdzunaProvider {
	if cfg.AppID == "" || cfg.AppKey == "" {
		return nil
	}
	country := cfg.Country
	if country == "" {
		country = "us"
	}
	return &AdzunaProvider{
		client:  client,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		country: strings.ToLower(country),
		appID:   cfg.AppID,
		appKey:  cfg.AppKey,
	}
}

// Name implements Provider
func (a *AdzunaProvider) Name() string { return "Adzuna" }

type adzunaResponse struct {
	Results []struct {
		Title   string `json:"title"`
		Company struct {
			DisplayName string `json:"display_name"`
		} `json:"company"`
		Location struct {
			DisplayName string `json:"display_name"`
		} `json:"location"`
		RedirectURL string  `json:"redirect_url"`
		Created     string  `json:"created"`
		SalaryMin   float64 `json:"salary_min"`
		SalaryMax   float64 `json:"salary_max"`
		Description string  `json:"description"`
	} `json:"results"`
}

// Search implements Provider
func (a *AdzunaProvider) Search(ctx context.Context, q Query) ([]types.JobListing, error) {
	params := url.Values{
		"app_id":           {a.appID},
		"app_key":          {a.appKey},
		"results_per_page": {strconv.Itoa(q.Limit)},
		"what":             {q.Keywords},
		"content-type":     {"application/json"},
	}
	if !isRemote(q.Location) {
		params.Set("where", q.Location)
	}

	endpoint := fmt.Sprintf("%s/%s/search/1?%s", a.baseURL, a.country, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Adzuna request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var body adzunaResponse
	if err := getJSON(a.client, req, a.Name(), &body); err != nil {
		return nil, err
	}

	listings := make([]types.JobListing, 0, len(body.Results))
	for _, r := range limit(body.Results, q.Limit) {
		location := r.Location.DisplayName
		listings = append(listings, types.JobListing{
			Title:       stripTags(r.Title),
			Company:     r.Company.DisplayName,
			Location:    location,
			Remote:      strings.Contains(strings.ToLower(location+" "+r.Title), "remote"),
			ApplyLink:   r.RedirectURL,
			Source:      a.Name(),
			PostedDate:  r.Created,
			Salary:      salaryRange(r.SalaryMin, r.SalaryMax, ""),
			Description: truncateDescription(stripTags(r.Description)),
		})
	}
	return listings, nil
}

// stripTags removes the <strong> highlighting Adzuna puts around matches
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>' && inTag:
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func salaryRange(lo, hi float64, currency string) string {
	prefix := ""
	if currency != "" {
		prefix = currency + " "
	}
	switch {
	case lo > 0 && hi > 0 && hi != lo:
		return fmt.Sprintf("%s%.0f - %.0f", prefix, lo, hi)
	case lo > 0:
		return fmt.Sprintf("%s%.0f", prefix, lo)
	case hi > 0:
		return fmt.Sprintf("%s%.0f", prefix, hi)
	}
	return ""
}

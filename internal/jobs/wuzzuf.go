package jobs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"wazivo/internal/config"
	"wazivo/internal/types"
)

// Wuzzuf markup. The class names are generated by their CSS build and change
// occasionally; a change shows up as zero results, never as an error.
const (
	wuzzufCardSelector     = ".css-1gatmva"
	wuzzufTitleSelector    = "h2 a"
	wuzzufCompanySelector  = ".css-d7j1kk"
	wuzzufLocationSelector = ".css-5wys0k"
	wuzzufDefaultLocation  = "Egypt"
)

// WuzzufProvider scrapes the public Wuzzuf search page. It needs no
// credentials.
type WuzzufProvider struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewWuzzufProvider creates the Wuzzuf provider, or nil when disabled
func NewWuzzufProvider(cfg config.WuzzufConfig, userAgent string, client *http.Client) *WuzzufProvider {
	if !cfg.Enabled || cfg.BaseURL == "" {
		return nil
	}
	return &WuzzufProvider{
		client:    client,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent: userAgent,
	}
}

// Name implements Provider
func (w *WuzzufProvider) Name() string { return "Wuzzuf" }

// Search implements Provider
func (w *WuzzufProvider) Search(ctx context.Context, q Query) ([]types.JobListing, error) {
	endpoint := w.baseURL + "/search/jobs/?" + url.Values{"q": {q.Keywords}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Wuzzuf request: %w", err)
	}
	req.Header.Set("User-Agent", w.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Wuzzuf request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Wuzzuf returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, providerResponseLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to parse Wuzzuf page: %w", err)
	}

	var listings []types.JobListing
	doc.Find(wuzzufCardSelector).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if q.Limit > 0 && len(listings) >= q.Limit {
			return false
		}

		anchor := card.Find(wuzzufTitleSelector).First()
		title := strings.TrimSpace(anchor.Text())
		href, _ := anchor.Attr("href")
		if title == "" || href == "" {
			return true
		}

		location := strings.TrimSpace(card.Find(wuzzufLocationSelector).First().Text())
		if location == "" {
			location = wuzzufDefaultLocation
		}

		listings = append(listings, types.JobListing{
			Title:     title,
			Company:   cleanCompany(card.Find(wuzzufCompanySelector).First().Text()),
			Location:  location,
			Remote:    strings.Contains(strings.ToLower(location), "remote"),
			ApplyLink: w.absoluteLink(href),
			Source:    w.Name(),
		})
		return true
	})

	return listings, nil
}

func (w *WuzzufProvider) absoluteLink(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return w.baseURL + href
}

// cleanCompany drops the trailing " -" Wuzzuf renders after company names
func cleanCompany(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), "-"))
}

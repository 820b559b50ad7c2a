package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"wazivo/internal/types"
)

// Provider is one live job-search source
type Provider interface {
	Name() string
	Search(ctx context.Context, query Query) ([]types.JobListing, error)
}

// Query is a single provider search
type Query struct {
	Keywords string
	Location string
	Limit    int
}

// providerResponseLimit bounds how much of a provider response is read
const providerResponseLimit = 2 << 20

// getJSON performs req and decodes a 200 JSON response into out
func getJSON(client *http.Client, req *http.Request, provider string, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s returned HTTP %d", provider, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, providerResponseLimit)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", provider, err)
	}
	return nil
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

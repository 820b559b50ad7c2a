package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wazivo/internal/breaker"
	"wazivo/internal/config"
	"wazivo/internal/errors"
	"wazivo/internal/extract"
	"wazivo/internal/utils"
)

// loginWallMaxLength is the size below which sign-in wording is treated as
// a login wall rather than part of a real CV.
const loginWallMaxLength = 1000

// loginWallPhrases only appear on sign-in gates
var loginWallPhrases = []string{
	"authwall",
	"sign in or join",
	"join now to see",
	"please sign in",
	"please log in",
	"you must be logged in",
}

// loginPromptPhrases also show up in CVs ("built the login service"), so a
// page needs two different ones before it counts as a wall.
var loginPromptPhrases = []string{
	"sign in to",
	"sign up",
	"log in to",
	"join now",
	"create an account",
	"forgot password",
	"remember me",
}

// readerResponseLimit bounds how much of a reader response is buffered
const readerResponseLimit = 4 << 20

// ReaderStrategy delegates rendering to an external reader service that
// turns any web page, including JavaScript-heavy ones, into text. The
// service is addressed as <baseURL><target URL>, the r.jina.ai convention.
type ReaderStrategy struct {
	client          *http.Client
	baseURL         string
	apiKey          string
	userAgent       string
	timeout         time.Duration
	dynamicTimeout  time.Duration
	maxChars        int
	removeSelectors []string
	breaker         *breaker.Breaker[string]
	logger          *errors.Logger
}

// NewReaderStrategy creates the remote-render strategy
func NewReaderStrategy(cfg config.ReaderConfig, userAgent string, logger *errors.Logger) *ReaderStrategy {
	return &ReaderStrategy{
		client:          &http.Client{},
		baseURL:         cfg.BaseURL,
		apiKey:          cfg.APIKey,
		userAgent:       userAgent,
		timeout:         cfg.Timeout,
		dynamicTimeout:  cfg.DynamicTimeout,
		maxChars:        cfg.MaxChars,
		removeSelectors: cfg.RemoveSelectors,
		// Login walls are a property of the page, not of the reader service.
		breaker: breaker.New[string]("reader", cfg.CircuitBreaker, logger,
			breaker.WithSuccessFilter(func(err error) bool {
				return err == nil || errors.HasCode(err, errors.ErrCodeLoginRequired)
			})),
		logger: logger,
	}
}

// Name implements Strategy
func (r *ReaderStrategy) Name() string { return "reader" }

// Fetch implements Strategy
func (r *ReaderStrategy) Fetch(ctx context.Context, target *url.URL) (string, error) {
	text, err := r.breaker.Execute(func() (string, error) {
		return r.render(ctx, target)
	})
	if breaker.IsOpenError(err) {
		return "", errors.NewNetworkError(errors.ErrCodeFetchFailed,
			"reader service temporarily unavailable", err)
	}
	return text, err
}

func (r *ReaderStrategy) render(ctx context.Context, target *url.URL) (string, error) {
	platform, known := LookupPlatform(target)
	dynamic := known && platform.Dynamic

	timeout := r.timeout
	if dynamic && r.dynamicTimeout > timeout {
		timeout = r.dynamicTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+target.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create reader request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("X-Return-Format", "text")
	req.Header.Set("X-Timeout", strconv.Itoa(int(timeout.Seconds())))
	if selectors := strings.Join(nonEmpty(r.removeSelectors), ", "); selectors != "" {
		req.Header.Set("X-Remove-Selector", selectors)
	}
	if dynamic && platform.WaitFor != "" {
		req.Header.Set("X-Wait-For-Selector", platform.WaitFor)
	}
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.NewNetworkError(errors.ErrCodeNetworkTimeout,
				fmt.Sprintf("reader timed out after %s", timeout), err)
		}
		return "", fmt.Errorf("reader request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, readerResponseLimit))
	if err != nil {
		return "", fmt.Errorf("failed to read reader response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.Debug("Reader returned non-success status",
			"status", resp.StatusCode,
			"host", target.Host)
		return "", fmt.Errorf("reader returned HTTP %d", resp.StatusCode)
	}

	text := string(body)
	if looksLikeHTML(resp.Header.Get("Content-Type"), text) {
		if text, err = ReadableText(text, r.removeSelectors...); err != nil {
			return "", err
		}
	} else {
		text = extract.CleanText(text)
	}

	if IsLoginWall(text) {
		return "", loginWallError(target)
	}

	return utils.TruncateRunes(text, r.maxChars), nil
}

// IsLoginWall reports whether text is a short page dominated by sign-in prompts
func IsLoginWall(text string) bool {
	if utils.RuneLen(text) >= loginWallMaxLength {
		return false
	}
	lower := strings.ToLower(text)
	for _, phrase := range loginWallPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	prompts := 0
	for _, phrase := range loginPromptPhrases {
		if strings.Contains(lower, phrase) {
			prompts++
		}
	}
	return prompts >= 2
}

func loginWallError(target *url.URL) error {
	return errors.NewNetworkError(errors.ErrCodeLoginRequired,
		"rendered page is a login wall", nil).WithContext("host", target.Host)
}

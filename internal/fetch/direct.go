package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"wazivo/internal/config"
	"wazivo/internal/errors"
	"wazivo/internal/utils"
)

// documentURLPattern matches URLs that point at a PDF or Word file
var documentURLPattern = regexp.MustCompile(`(?i)\.(pdf|docx?)(\?.*)?$`)

// DirectStrategy downloads PDF and Word files and decodes them locally
type DirectStrategy struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	decoder   TextDecoder
}

// NewDirectStrategy creates the direct-download strategy
func NewDirectStrategy(cfg config.DirectConfig, userAgent string, decoder TextDecoder) *DirectStrategy {
	maxRedirects := cfg.MaxRedirects
	return &DirectStrategy{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  cfg.MaxBytes,
		decoder:   decoder,
	}
}

// Name implements Strategy
func (d *DirectStrategy) Name() string { return "direct" }

// IsDocumentURL reports whether target looks like a downloadable CV file
func IsDocumentURL(target *url.URL) bool {
	candidate := target.Path
	if target.RawQuery != "" {
		candidate += "?" + target.RawQuery
	}
	return documentURLPattern.MatchString(candidate)
}

// Fetch implements Strategy
func (d *DirectStrategy) Fetch(ctx context.Context, target *url.URL) (string, error) {
	if !IsDocumentURL(target) {
		return "", ErrNotApplicable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "application/pdf,application/vnd.openxmlformats-officedocument.wordprocessingml.document,application/msword,*/*;q=0.8")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Anything below 500 is inspected here instead of being treated as a
	// transport failure; only an exact 200 carries a document.
	if resp.StatusCode >= http.StatusInternalServerError {
		return "", fmt.Errorf("download server error: HTTP %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned HTTP %d", resp.StatusCode)
	}

	mimeType := utils.NormalizeMIME(resp.Header.Get("Content-Type"))
	if !utils.IsDocumentMIME(mimeType) {
		mimeType = utils.MIMEFromExtension(resp.Request.URL.Path)
	}
	if !utils.IsDocumentMIME(mimeType) {
		mimeType = utils.MIMEFromExtension(target.Path)
	}
	if !utils.IsDocumentMIME(mimeType) {
		return "", fmt.Errorf("response is not a PDF or Word document (content type %q)", resp.Header.Get("Content-Type"))
	}

	data, err := readLimited(resp.Body, d.maxBytes)
	if err != nil {
		return "", err
	}

	text, err := d.decoder.Extract(ctx, data, mimeType)
	if err != nil {
		return "", err
	}
	return text, nil
}

// readLimited reads body up to limit bytes; a non-positive limit reads everything
func readLimited(body io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(body)
	}

	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read download: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("downloaded file exceeds %s", utils.FormatFileSize(limit)), nil)
	}
	return data, nil
}

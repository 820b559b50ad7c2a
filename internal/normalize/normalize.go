// Package normalize turns any CV submission into validated plain text.
package normalize

import (
	"context"
	"fmt"
	"strings"

	"wazivo/internal/config"
	"wazivo/internal/errors"
	"wazivo/internal/types"
	"wazivo/internal/utils"
)

// TextExtractor decodes file bytes of a given MIME type
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (string, error)
}

// TextFetcher obtains text for a URL
type TextFetcher interface {
	FetchText(ctx context.Context, rawURL string) (string, error)
}

// Normalizer routes a CVSource to extraction or fetching and enforces the
// minimum text length for each path, so callers see one error taxonomy.
type Normalizer struct {
	extractor   TextExtractor
	fetcher     TextFetcher
	maxFileSize int64
	minFileText int
	minURLText  int
	logger      *errors.Logger
}

// New creates a Normalizer
func New(extractor TextExtractor, fetcher TextFetcher, cfg config.AppConfig, logger *errors.Logger) *Normalizer {
	return &Normalizer{
		extractor:   extractor,
		fetcher:     fetcher,
		maxFileSize: cfg.MaxFileSize,
		minFileText: cfg.MinFileTextLength,
		minURLText:  cfg.MinURLTextLength,
		logger:      logger,
	}
}

// Normalize returns the CV text for source
func (n *Normalizer) Normalize(ctx context.Context, source types.CVSource) (string, error) {
	switch source.Kind {
	case types.SourceFile:
		return n.normalizeFile(ctx, source)
	case types.SourceURL:
		return n.normalizeURL(ctx, source)
	default:
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown source kind %q", source.Kind), nil).
			WithRemediation("Provide either a file or a URL.")
	}
}

func (n *Normalizer) normalizeFile(ctx context.Context, source types.CVSource) (string, error) {
	size := int64(len(source.Data))
	if n.maxFileSize > 0 && size > n.maxFileSize {
		return "", errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("file is %s, limit is %s", utils.FormatFileSize(size), utils.FormatFileSize(n.maxFileSize)), nil).
			WithContext("size", size)
	}

	mimeType := utils.DetectMIMEType(source.MIMEType, source.Filename, source.Data)
	n.logger.Debug("Normalizing uploaded file",
		"filename", source.Filename,
		"declared_mime", source.MIMEType,
		"mime", mimeType,
		"size", size)

	text, err := n.extractor.Extract(ctx, source.Data, mimeType)
	if err != nil {
		return "", err
	}

	if err := requireLength(text, n.minFileText,
		"If this is a scanned document, upload a text-based PDF or a clearer image."); err != nil {
		return "", err
	}
	return text, nil
}

func (n *Normalizer) normalizeURL(ctx context.Context, source types.CVSource) (string, error) {
	text, err := n.fetcher.FetchText(ctx, source.URL)
	if err != nil {
		return "", err
	}

	if err := requireLength(text, n.minURLText,
		"The page may require a login or be rendered with JavaScript. Please upload the file directly."); err != nil {
		return "", err
	}
	return text, nil
}

func requireLength(text string, minLength int, remediation string) error {
	length := utils.RuneLen(strings.TrimSpace(text))
	if length >= minLength {
		return nil
	}
	return errors.NewValidationError(errors.ErrCodeInsufficientText,
		fmt.Sprintf("extracted %d characters, need at least %d", length, minLength), nil).
		WithContext("length", length).
		WithContext("min_length", minLength).
		WithRemediation(remediation)
}

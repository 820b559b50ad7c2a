// Package fetch turns an arbitrary CV URL into plain text by trying an ordered
// list of strategies until one yields enough text.
package fetch

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"wazivo/internal/config"
	"wazivo/internal/errors"
	"wazivo/internal/utils"
)

// ErrNotApplicable is returned by a strategy that does not handle the URL
var ErrNotApplicable = stderrors.New("strategy not applicable")

// Strategy is one way of obtaining text for a URL
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, target *url.URL) (string, error)
}

// TextDecoder converts downloaded document bytes into text
type TextDecoder interface {
	Extract(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Outcome labels reported to the observer for each strategy attempt
const (
	OutcomeSuccess  = "success"
	OutcomeSkipped  = "skipped"
	OutcomeTooShort = "too_short"
	OutcomeFailed   = "failed"
)

// Observer receives one call per strategy attempt
type Observer func(ctx context.Context, strategy, outcome string, elapsed time.Duration)

// Chain runs strategies in order and stops at the first sufficient result
type Chain struct {
	strategies []Strategy
	minLength  int
	logger     *errors.Logger
	observer   Observer
}

// ChainOption configures a Chain
type ChainOption func(*Chain)

// WithObserver reports every strategy attempt to observer
func WithObserver(observer Observer) ChainOption {
	return func(c *Chain) {
		c.observer = observer
	}
}

// NewChain builds a chain over an explicit strategy list
func NewChain(strategies []Strategy, minLength int, logger *errors.Logger, opts ...ChainOption) *Chain {
	c := &Chain{
		strategies: strategies,
		minLength:  minLength,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// New builds the configured chain: direct download, then the remote reader,
// then the optional headless browser.
func New(cfg *config.Config, decoder TextDecoder, logger *errors.Logger, opts ...ChainOption) *Chain {
	var strategies []Strategy
	if cfg.Fetch.Direct.Enabled {
		strategies = append(strategies, NewDirectStrategy(cfg.Fetch.Direct, cfg.Fetch.UserAgent, decoder))
	}
	if cfg.Fetch.Reader.Enabled {
		strategies = append(strategies, NewReaderStrategy(cfg.Fetch.Reader, cfg.Fetch.UserAgent, logger))
	}
	if cfg.Fetch.Browser.Enabled {
		strategies = append(strategies, NewBrowserStrategy(cfg.Fetch.Browser, cfg.Fetch.Reader.RemoveSelectors, cfg.Fetch.Reader.MaxChars))
	}
	return NewChain(strategies, cfg.App.MinURLTextLength, logger, opts...)
}

// Strategies returns the strategy names in execution order
func (c *Chain) Strategies() []string {
	names := make([]string, 0, len(c.strategies))
	for _, s := range c.strategies {
		names = append(names, s.Name())
	}
	return names
}

// ValidateURL parses rawURL and requires an absolute http(s) URL with a host
func ValidateURL(rawURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	parsed, err := url.Parse(trimmed)
	if err != nil || trimmed == "" || parsed.Host == "" ||
		(parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidURL,
			"invalid URL", err).WithContext("url", trimmed)
	}
	return parsed, nil
}

// FetchText validates rawURL and returns the first strategy result that is at
// least the configured minimum length.
func (c *Chain) FetchText(ctx context.Context, rawURL string) (string, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return "", err
	}

	var lastErr error
	for _, strategy := range c.strategies {
		started := time.Now()
		text, err := strategy.Fetch(ctx, target)

		switch {
		case stderrors.Is(err, ErrNotApplicable):
			c.observe(ctx, strategy.Name(), OutcomeSkipped, started)
			continue
		case err != nil:
			c.observe(ctx, strategy.Name(), OutcomeFailed, started)
			c.logger.Warn("Fetch strategy failed",
				"strategy", strategy.Name(),
				"host", target.Host,
				"error", err.Error())
			lastErr = err
		default:
			text = strings.TrimSpace(text)
			if length := utils.RuneLen(text); length < c.minLength {
				c.observe(ctx, strategy.Name(), OutcomeTooShort, started)
				c.logger.Debug("Fetch strategy returned too little text",
					"strategy", strategy.Name(),
					"host", target.Host,
					"length", length,
					"min_length", c.minLength)
				lastErr = errors.NewIOError(errors.ErrCodeInsufficientText,
					fmt.Sprintf("%s strategy returned %d characters, need %d", strategy.Name(), length, c.minLength), nil)
				continue
			}
			c.observe(ctx, strategy.Name(), OutcomeSuccess, started)
			c.logger.Info("Fetched CV text from URL",
				"strategy", strategy.Name(),
				"host", target.Host,
				"length", utils.RuneLen(text))
			return text, nil
		}

		if ctx.Err() != nil {
			break
		}
	}

	return "", finalError(target, lastErr)
}

// finalError shapes the error returned once every strategy is exhausted. An
// error that already tells the user what to do is passed through untouched.
func finalError(target *url.URL, lastErr error) error {
	if errors.HasCode(lastErr, errors.ErrCodeLoginRequired) {
		if errors.HasRemediation(lastErr) {
			return lastErr
		}
		return errors.NewNetworkError(errors.ErrCodeLoginRequired,
			"content is behind a login wall", lastErr).
			WithRemediation(HintFor(target)).
			WithContext("host", target.Host)
	}

	if errors.HasRemediation(lastErr) {
		if errors.HasCode(lastErr, errors.ErrCodeFetchFailed) {
			return lastErr
		}
		return errors.NewNetworkError(errors.ErrCodeFetchFailed,
			"all fetch strategies failed", lastErr).
			WithRemediation(errors.RemediationOf(lastErr)).
			WithContext("host", target.Host)
	}

	return errors.NewNetworkError(errors.ErrCodeFetchFailed,
		"all fetch strategies failed", lastErr).
		WithRemediation(HintFor(target)).
		WithContext("host", target.Host)
}

func (c *Chain) observe(ctx context.Context, strategy, outcome string, started time.Time) {
	if c.observer != nil {
		c.observer(ctx, strategy, outcome, time.Since(started))
	}
}

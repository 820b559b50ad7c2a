package fetch

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"

	"wazivo/internal/config"
	"wazivo/internal/utils"
)

// BrowserStrategy renders the page in a local headless Chrome. It is the last
// resort when no reader service is reachable and needs Chrome on the host.
type BrowserStrategy struct {
	timeout         time.Duration
	settleFor       time.Duration
	removeSelectors []string
	maxChars        int
}

// NewBrowserStrategy creates the headless browser strategy
func NewBrowserStrategy(cfg config.BrowserConfig, removeSelectors []string, maxChars int) *BrowserStrategy {
	return &BrowserStrategy{
		timeout:         cfg.Timeout,
		settleFor:       cfg.SettleFor,
		removeSelectors: removeSelectors,
		maxChars:        maxChars,
	}
}

// Name implements Strategy
func (b *BrowserStrategy) Name() string { return "browser" }

// Fetch implements Strategy
func (b *BrowserStrategy) Fetch(ctx context.Context, target *url.URL) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, b.timeout)
	defer cancelTimeout()

	settle := b.settleFor
	if IsDynamic(target) {
		settle *= 2
	}

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(target.String()),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	text, err := ReadableText(html, b.removeSelectors...)
	if err != nil {
		return "", err
	}
	if IsLoginWall(text) {
		return "", loginWallError(target)
	}
	return utils.TruncateRunes(text, b.maxChars), nil
}

// Headless-browser fallback for the reference site, which intermittently
// serves a JavaScript challenge shell instead of the box score document.

package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinDocumentLength is the minimum HTML length for a plain HTTP response to
// be considered a real box score page. Shorter responses are assumed to be a
// challenge shell and worth re-fetching through the browser.
const MinDocumentLength = 2000

// ShouldUseBrowser reports whether an HTML payload looks like a rendered
// document or a JS shell that needs browser rendering.
func ShouldUseBrowser(html []byte) bool {
	trimmed := strings.TrimSpace(string(html))
	if len(trimmed) >= MinDocumentLength {
		return false
	}
	return true
}

// RenderWithBrowser loads a URL in headless Chrome and returns the rendered
// HTML. Requires Chrome/Chromium on the host; callers should treat failures
// the same as a permanent fetch failure for that source.
func RenderWithBrowser(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Give the challenge script time to resolve and redirect.
		chromedp.Sleep(3*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("browser rendering failed: %w", err)
	}

	return []byte(html), nil
}

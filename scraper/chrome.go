package scraper

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"classifieds-scraper/utils"
)

// ChromeFetcher renders pages in headless Chrome and returns the resulting
// document. It is used for result pages that only fill in after scripts run.
type ChromeFetcher struct {
	logger      *utils.Logger
	timeout     time.Duration
	settle      time.Duration
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelBrows context.CancelFunc
}

// NewChromeFetcher starts a browser allocator. Close must be called to release it.
func NewChromeFetcher(chromeBin, userAgent string, timeout time.Duration, logger *utils.Logger) *ChromeFetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[chrome] Using browser binary: %q", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	// Suppress chromedp log noise
	browserCtx, cancelBrows := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	return &ChromeFetcher{
		logger:      logger,
		timeout:     timeout,
		settle:      2 * time.Second,
		browserCtx:  browserCtx,
		cancelAlloc: cancelAlloc,
		cancelBrows: cancelBrows,
	}
}

// Fetch opens url in a new tab, waits for the body and returns outerHTML.
// A non-2xx main document response yields ErrStatus, as with HTTPFetcher.
func (f *ChromeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	tabCtx, cancel := chromedp.NewContext(f.browserCtx)
	defer cancel()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, f.timeout)
	defer cancelTimeout()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(url))
	if err != nil {
		return "", fmt.Errorf("chrome: navigate %s: %w", url, err)
	}
	if resp != nil {
		if err := checkStatus("chrome", url, resp.Status); err != nil {
			return "", err
		}
	}

	var html string
	err = chromedp.Run(tabCtx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(f.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chrome: render %s: %w", url, err)
	}
	return html, nil
}

// Close shuts the browser down.
func (f *ChromeFetcher) Close() error {
	f.cancelBrows()
	f.cancelAlloc()
	return nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

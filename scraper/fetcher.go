// Package scraper holds the transport collaborators used by the site
// scrapers: a plain HTTP fetcher, a headless-browser fetcher and a retrying
// wrapper around either.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"classifieds-scraper/utils"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ErrStatus is returned when the server answers with a non-2xx status.
var ErrStatus = errors.New("unexpected status code")

// Fetcher returns the raw document text at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches documents with a plain GET request.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates an HTTPFetcher with the given per-request timeout.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("http: build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http: get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if err := checkStatus("http", url, int64(resp.StatusCode)); err != nil {
		return "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("http: read body of %s: %w", url, err)
	}
	return string(body), nil
}

// checkStatus returns ErrStatus for a non-2xx response status.
func checkStatus(via, url string, status int64) error {
	if status < 200 || status > 299 {
		return fmt.Errorf("%s: get %s: %w: %d", via, url, ErrStatus, status)
	}
	return nil
}

// RetryFetcher retries a wrapped Fetcher with exponential back-off.
type RetryFetcher struct {
	next  Fetcher
	retry *utils.RetryConfig
}

// NewRetryFetcher wraps next. maxAttempts of 1 means a single attempt.
func NewRetryFetcher(next Fetcher, maxAttempts int, baseDelay time.Duration, logger *utils.Logger) *RetryFetcher {
	return &RetryFetcher{
		next: next,
		retry: &utils.RetryConfig{
			MaxAttempts: maxAttempts,
			BaseDelay:   baseDelay,
			Logger:      logger,
		},
	}
}

func (f *RetryFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var doc string
	err := f.retry.Do(ctx, "fetch "+url, func() error {
		var err error
		doc, err = f.next.Fetch(ctx, url)
		return err
	})
	return doc, err
}

package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrStatus marks a non-2xx response
var ErrStatus = errors.New("unexpected status")

// maxBodyBytes caps a single download; WARN spreadsheets stay well below this
const maxBodyBytes = 64 << 20

// StatusError carries the status code of a non-2xx response
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d from %s", ErrStatus, e.Code, e.URL)
}

func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// Config holds HTTP settings shared by every provider
type Config struct {
	UserAgent    string
	TextProxyURL string
	Timeout      time.Duration
	Attempts     int
	Backoff      time.Duration
	HostRate     float64 // requests per second per host, 0 disables
}

// Fetcher performs GET requests with a descriptive User-Agent, a per-call
// timeout, linear-backoff retries and per-host rate limiting
type Fetcher struct {
	client *http.Client
	config Config

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a fetcher; zero config values fall back to defaults
func New(config Config) *Fetcher {
	if config.UserAgent == "" {
		config.UserAgent = "warn-crawler/1.0 (+workforce research; WARN notice aggregation)"
	}
	if config.Timeout <= 0 {
		config.Timeout = 20 * time.Second
	}
	if config.Attempts <= 0 {
		config.Attempts = 2
	}
	if config.Backoff < 0 {
		config.Backoff = 0
	}

	return &Fetcher{
		client:   &http.Client{Timeout: config.Timeout},
		config:   config,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Config returns the effective configuration
func (f *Fetcher) Config() Config {
	return f.config
}

// Get downloads rawURL. Network errors and 5xx/429 responses are retried
// up to Attempts times with a backoff of Backoff x attempt; other 4xx are not.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= f.config.Attempts; attempt++ {
		body, err := f.get(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(err) || attempt == f.config.Attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("fetch %s: %w", rawURL, ctx.Err())
		case <-time.After(f.config.Backoff * time.Duration(attempt)):
		}
	}
	return nil, lastErr
}

// GetText fetches rawURL through the text-rendering proxy, used for PDF
// listings and script-heavy pages. Without a proxy it is a plain Get.
func (f *Fetcher) GetText(ctx context.Context, rawURL string) ([]byte, error) {
	if f.config.TextProxyURL == "" {
		return f.Get(ctx, rawURL)
	}
	return f.Get(ctx, strings.TrimRight(f.config.TextProxyURL, "/")+"/"+rawURL)
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := f.wait(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/csv,application/json,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// wait blocks on the limiter of rawURL's host
func (f *Fetcher) wait(ctx context.Context, rawURL string) error {
	if f.config.HostRate <= 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}

	f.mu.Lock()
	lim, ok := f.limiters[u.Host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(f.config.HostRate), 1)
		f.limiters[u.Host] = lim
	}
	f.mu.Unlock()

	return lim.Wait(ctx)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	return true
}

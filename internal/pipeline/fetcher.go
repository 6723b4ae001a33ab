package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/paperscout/internal/model"
	"github.com/ppiankov/paperscout/internal/util"
)

// Fetcher issues GET requests with a browser-like identity
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// FetcherOption customizes a Fetcher
type FetcherOption func(*Fetcher)

// WithTransport replaces the HTTP transport, e.g. with an in-process fake
func WithTransport(rt http.RoundTripper) FetcherOption {
	return func(f *Fetcher) {
		f.httpClient.Transport = rt
	}
}

// NewFetcher creates a fetcher. A zero timeout means the client never gives
// up on its own; callers bound it through the context instead.
func NewFetcher(cfg model.HTTPConfig, timeout time.Duration, opts ...FetcherOption) *Fetcher {
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 5
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = model.DefaultUserAgent
	}

	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
		userAgent: userAgent,
		maxBytes:  cfg.MaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Client exposes the underlying client, shared with the robots checker
func (f *Fetcher) Client() *http.Client {
	return f.httpClient
}

// FetchResult contains the fetched body and where it came from
type FetchResult struct {
	Body       []byte
	StatusCode int
	FinalURL   string
}

// StatusError reports a non-2xx response
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}

// Fetch retrieves rawURL. Non-2xx responses are returned as *StatusError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var reader io.Reader = resp.Body
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBytes)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &FetchResult{
		Body:       body,
		StatusCode: resp.StatusCode,
		FinalURL:   finalURL,
	}, nil
}

package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"domaincreates/internal/core/domain"
)

// DefaultTimeout bounds the whole request, body included.
const DefaultTimeout = 30 * time.Second

// DefaultURLTemplate is where the registry publishes daily reports.
const DefaultURLTemplate = "https://registry.in/system/files/domain-creates_{date}.pdf"

// URLFor substitutes the formatted date into the template's {date} placeholder.
func URLFor(template string, date domain.TargetDate) string {
	return strings.ReplaceAll(template, "{date}", date.String())
}

// HTTPDownloader implements ports.Downloader using standard HTTP.
type HTTPDownloader struct {
	client    *http.Client
	userAgent string
}

// Option configures an HTTPDownloader.
type Option func(*HTTPDownloader)

// WithClient replaces the underlying HTTP client.
func WithClient(client *http.Client) Option {
	return func(d *HTTPDownloader) { d.client = client }
}

// WithTimeout sets the total request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *HTTPDownloader) { d.client.Timeout = timeout }
}

// WithUserAgent sets a User-Agent header. Empty leaves Go's default.
func WithUserAgent(ua string) Option {
	return func(d *HTTPDownloader) { d.userAgent = ua }
}

// NewHTTPDownloader creates a new HTTPDownloader.
func NewHTTPDownloader(opts ...Option) *HTTPDownloader {
	d := &HTTPDownloader{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download fetches the document at url. No retry is attempted.
func (d *HTTPDownloader) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &domain.HTTPStatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	return resp.Body, nil
}

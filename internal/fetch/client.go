package fetch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// Client fetches pages for the crawler. It owns outcome classification
// so the crawler never inspects transport errors itself.
//
// Design decision: We use a struct with the http.Client rather than
// passing the client on each call because:
//  1. Client configuration (timeouts, limits) should be consistent
//  2. Connection pooling works better with a shared client
//  3. Easier to test with an injected client
type Client struct {
	// client is the underlying HTTP client.
	client *http.Client

	// userAgent is the User-Agent header to use for requests.
	userAgent string

	// maxBodySize limits the response body size to prevent memory
	// exhaustion. Default is 5MB.
	maxBodySize int64

	// timeout is the per-request timeout.
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
// Tests use this to point the client at a local server with custom
// transport behavior.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// NewClient creates a fetch client with sensible defaults.
//
// Design decisions for the transport:
//   - Cookies are enabled via a jar so session-gated pages stay
//     reachable while crawling one site
//   - Redirects are limited to 10 to prevent loops; the last response
//     is returned once the limit is hit
//   - Idle pool sizes stay small because a polite crawl never holds
//     many connections at once
func NewClient(opts ...Option) *Client {
	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	c := &Client{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     30 * time.Second,
			},
			Jar: jar,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent:   "webresearch/1.0",
		maxBodySize: 5 * 1024 * 1024, // 5MB
		timeout:     15 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch retrieves one URL and classifies the outcome. The returned
// error is non-nil only when the run should stop: a malformed URL
// (programmer error) or a canceled context. Every transport-level
// failure is data in the Result, never an error.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8,ko;q=0.5")

	resp, err := c.client.Do(req)
	if err != nil {
		// A canceled run must stop crawling; everything else is a
		// recorded page failure.
		if errors.Is(err, context.Canceled) {
			return nil, context.Canceled
		}
		return classifyError(rawURL, err), nil
	}
	defer resp.Body.Close()

	result := &Result{
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Outcome = OutcomeHTTPError
		return result, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, context.Canceled
		}
		result.Outcome = OutcomeNetworkError
		result.Detail = "body read failed"
		return result, nil
	}

	result.Outcome = OutcomeSuccess
	result.Body = string(body)
	return result, nil
}

// classifyError maps a transport error onto the outcome taxonomy.
// Order matters: timeouts wrap net.Error, TLS failures wrap both
// tls and x509 error types, and anything left is a network error.
func classifyError(rawURL string, err error) *Result {
	result := &Result{FinalURL: rawURL, Detail: rootCause(err)}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		result.Outcome = OutcomeTimeout
		result.Detail = ""
	case errors.As(err, &netErr) && netErr.Timeout():
		result.Outcome = OutcomeTimeout
		result.Detail = ""
	case isTLSError(err):
		result.Outcome = OutcomeTLSError
	default:
		result.Outcome = OutcomeNetworkError
	}

	return result
}

// isTLSError reports whether the error stems from TLS negotiation or
// certificate verification.
func isTLSError(err error) bool {
	var (
		certErr    *tls.CertificateVerificationError
		recordErr  tls.RecordHeaderError
		unknownCA  x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
	)
	return errors.As(err, &certErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &unknownCA) ||
		errors.As(err, &hostErr) ||
		errors.As(err, &invalidErr)
}

// rootCause unwraps the error chain to its innermost message so error
// records stay short ("connection refused" rather than the full
// url.Error wrapping).
func rootCause(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}

// Package fetch provides the HTTP client used by the crawler.
//
// The client wraps net/http with the crawl-specific policy: a
// per-request timeout, a response body size cap, a redirect limit, and
// classification of every failure into the outcome taxonomy (HTTP
// error, timeout, network error, TLS error). Failures are returned as
// data so a single bad page never aborts a crawl; only context
// cancellation surfaces as a Go error.
package fetch

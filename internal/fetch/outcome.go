package fetch

import "fmt"

// Outcome classifies how a fetch ended. The crawler records non-success
// outcomes as per-page errors and moves on; no outcome aborts a run.
type Outcome int

const (
	// OutcomeSuccess means a 2xx response with a readable body.
	OutcomeSuccess Outcome = iota

	// OutcomeHTTPError means the server answered with a non-2xx status.
	OutcomeHTTPError

	// OutcomeTimeout means the request exceeded its deadline.
	OutcomeTimeout

	// OutcomeNetworkError means the connection failed below HTTP
	// (DNS, refused connection, reset, unreadable body).
	OutcomeNetworkError

	// OutcomeTLSError means the TLS handshake or certificate
	// verification failed.
	OutcomeTLSError
)

// String returns the outcome name used in logs and error records.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeHTTPError:
		return "http error"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeNetworkError:
		return "network error"
	case OutcomeTLSError:
		return "tls error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the complete outcome of one fetch.
type Result struct {
	// FinalURL is the URL that actually answered, after redirects.
	FinalURL string

	// Outcome classifies the fetch.
	Outcome Outcome

	// StatusCode is the HTTP status code when a response was received.
	StatusCode int

	// ContentType is the response Content-Type header value.
	ContentType string

	// Body is the response body text, capped at the client's body size
	// limit. Only set on success.
	Body string

	// Detail is the short failure description for error records,
	// empty on success.
	Detail string
}

// OK reports whether the fetch succeeded.
func (r *Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// Reason returns the failure description used in crawl error records,
// e.g. "http error: 403" or "timeout".
func (r *Result) Reason() string {
	switch r.Outcome {
	case OutcomeHTTPError:
		return fmt.Sprintf("%s: %d", r.Outcome, r.StatusCode)
	case OutcomeSuccess:
		return ""
	default:
		if r.Detail != "" {
			return fmt.Sprintf("%s: %s", r.Outcome, r.Detail)
		}
		return r.Outcome.String()
	}
}

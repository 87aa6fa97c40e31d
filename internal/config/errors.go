package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and by the input file
// loaders, and provide specific information about what is wrong.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Dynamic detail (the offending value) is added
// at the call site with fmt.Errorf("%w: ...") wrapping.
var (
	// ErrNoSeeds is returned when no seed URL is available after loading.
	// The pipeline cannot start without at least one seed.
	ErrNoSeeds = errors.New("no seed URLs: provide --urls-file or at least one --url")

	// ErrNoKeywords is returned when the keyword set is empty after loading.
	ErrNoKeywords = errors.New("no keywords: provide a keywords file with at least one entry")

	// ErrDuplicateKeyword is returned when two keywords share the same term
	// case-insensitively. Duplicate terms would make group assignment ambiguous.
	ErrDuplicateKeyword = errors.New("duplicate keyword term")

	// ErrInvalidSeedURL is returned when a seed is not an absolute http(s) URL.
	ErrInvalidSeedURL = errors.New("invalid seed URL: must be absolute http or https")

	// ErrInvalidThreshold is returned when the similarity threshold is
	// outside [0,1]. Scores are bounded to [0,1], so a threshold outside
	// that range would filter everything or nothing.
	ErrInvalidThreshold = errors.New("invalid similarity threshold: must be in [0,1]")

	// ErrInvalidDepth is returned when the crawl depth is negative.
	// Depth 0 is valid and fetches only the seed pages.
	ErrInvalidDepth = errors.New("invalid crawl depth: must be non-negative")

	// ErrInvalidMaxPages is returned when the page budget is not positive.
	// A budget of zero would make every run empty.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidDelay is returned when the inter-request delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidDelay = errors.New("invalid request delay: must be non-negative")

	// ErrInvalidTimeout is returned when the per-request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the fetch concurrency is not
	// positive. Use 1 for the default sequential crawl.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidFormat is returned for an unknown report format.
	ErrInvalidFormat = errors.New("invalid report format: must be markdown, json, or simple")

	// ErrMissingAPIKey is returned when the embedding strategy is selected
	// but no OpenAI API key is configured. We fail here rather than at
	// scoring time so no crawling happens before the inevitable failure.
	ErrMissingAPIKey = errors.New("embedding strategy requires OPENAI_API_KEY")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)

package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/webresearch/internal/model"
)

// Default configuration values.
// File locations and pipeline knobs keep the defaults of the original
// research tool where one existed; network settings are sized for
// ordinary clearnet latency.
const (
	// DefaultURLsFile is the default seed URL list location.
	DefaultURLsFile = "inputs/urls.txt"

	// DefaultKeywordsFile is the default keyword list location.
	DefaultKeywordsFile = "inputs/keywords.txt"

	// DefaultOutputDir is where reports are written when no explicit
	// output file is given.
	DefaultOutputDir = "outputs"

	// DefaultMaxDepth limits traversal to seeds plus two link hops.
	// Research crawls rarely find on-topic material deeper than that,
	// and each extra level multiplies the frontier.
	DefaultMaxDepth = 2

	// DefaultMaxPages is the hard global page budget per run.
	// It caps runtime and remote load on link-dense sites.
	// Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 30

	// DefaultDelay is the politeness delay applied before each fetch.
	// 1 second is conservative and respectful of server resources.
	DefaultDelay = 1 * time.Second

	// DefaultThreshold is the relevance score a (page, keyword) pair
	// must reach to survive filtering.
	DefaultThreshold = 0.3

	// DefaultTimeout is the per-request timeout. Clearnet fetches that
	// take longer than this are classified as timeouts and recorded.
	DefaultTimeout = 15 * time.Second

	// DefaultConcurrency of 1 keeps the crawl sequential, which is the
	// documented deterministic mode. Higher values fetch each BFS level
	// through a bounded worker pool.
	DefaultConcurrency = 1

	// DefaultUserAgent identifies webresearch in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows
	// operators to identify crawler traffic in their logs.
	DefaultUserAgent = "webresearch/1.0 (+https://github.com/nao1215/webresearch)"

	// DefaultMaxBodySize limits the response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultChatModel is the generative summarization model.
	DefaultChatModel = "gpt-3.5-turbo"

	// DefaultEmbeddingModel is the embedding model for similarity scoring.
	DefaultEmbeddingModel = "text-embedding-3-small"

	// DefaultLang is the preferred summary language ("en" or "ko").
	DefaultLang = "en"

	// AppName is the application name used for XDG directory paths.
	AppName = "webresearch"
)

// Report output formats accepted by --format.
const (
	// FormatMarkdown renders the full markdown report.
	FormatMarkdown = "markdown"

	// FormatJSON renders the report as a JSON document.
	FormatJSON = "json"

	// FormatSimple renders a short plain-text summary for terminals.
	FormatSimple = "simple"
)

// Config holds all configuration options for webresearch.
// This struct is designed to be populated from CLI flags and the
// optional config file, then passed through the application via
// dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ScoreConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant
// benefit.
type Config struct {
	// URLsFile is the path of the seed URL list file.
	URLsFile string

	// KeywordsFile is the path of the keyword list file.
	KeywordsFile string

	// Seeds is the loaded seed URL list. Populated from URLsFile and/or
	// repeated --url flags; duplicates collapse during crawling.
	Seeds []string

	// Keywords is the loaded keyword set in declaration order.
	Keywords []model.KeywordSpec

	// MaxDepth is the maximum traversal depth. Depth 0 fetches only the
	// seed pages.
	MaxDepth int

	// MaxPages is the hard global page budget for the whole run, not
	// per seed. Traversal stops entirely once it is spent.
	MaxPages int

	// Delay is the politeness delay applied before each fetch.
	Delay time.Duration

	// Threshold is the relevance score threshold in [0,1].
	Threshold float64

	// UseEmbedding selects the embedding relevance strategy instead of
	// the lexical one. Requires an OpenAI API key; the run fails fast
	// when the backend is unreachable rather than silently falling back.
	UseEmbedding bool

	// UseGenerative selects generative group summaries. On a per-group
	// service failure the extractive fallback is used and the group is
	// marked degraded.
	UseGenerative bool

	// Lang is the preferred summary language for generative output
	// ("en" or "ko"). Extractive summaries ignore it.
	Lang string

	// OpenAIAPIKey authenticates embedding and summarization calls.
	// Read from the OPENAI_API_KEY environment variable by default.
	OpenAIAPIKey string

	// OpenAIBaseURL optionally redirects API calls to a compatible
	// endpoint (self-hosted gateway, proxy). Empty means the default.
	OpenAIBaseURL string

	// ChatModel is the generative summarization model name.
	ChatModel string

	// EmbeddingModel is the embedding model name.
	EmbeddingModel string

	// Timeout is the per-request timeout for fetches and API calls.
	Timeout time.Duration

	// Concurrency bounds parallel fetches within one BFS level.
	// 1 means the sequential deterministic crawl.
	Concurrency int

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Larger responses are truncated. 0 means the default.
	MaxBodySize int64

	// OutputDir is the directory for generated reports when ReportFile
	// is empty. A timestamped filename is chosen inside it.
	OutputDir string

	// ReportFile is an explicit output path. Empty writes into OutputDir.
	ReportFile string

	// Format selects the report rendering: markdown, json, or simple.
	Format string

	// DBDir is the directory of the run archive database.
	// Defaults to the XDG data directory when saving is enabled.
	DBDir string

	// SaveToDB archives the finished report in the run database.
	SaveToDB bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path of the YAML config file. If empty, the
	// tool searches for .webresearch.yml in the current directory and
	// then in the user's home directory.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, page
// budget). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		URLsFile:       DefaultURLsFile,
		KeywordsFile:   DefaultKeywordsFile,
		OutputDir:      DefaultOutputDir,
		MaxDepth:       DefaultMaxDepth,
		MaxPages:       DefaultMaxPages,
		Delay:          DefaultDelay,
		Threshold:      DefaultThreshold,
		Timeout:        DefaultTimeout,
		Concurrency:    DefaultConcurrency,
		UserAgent:      DefaultUserAgent,
		MaxBodySize:    DefaultMaxBodySize,
		ChatModel:      DefaultChatModel,
		EmbeddingModel: DefaultEmbeddingModel,
		Lang:           DefaultLang,
		Format:         FormatMarkdown,
	}
}

// XDGDataDir returns the XDG data directory for webresearch.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/webresearch
// On macOS: ~/Library/Application Support/webresearch
// On Windows: %LOCALAPPDATA%\webresearch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for webresearch.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing and input loading, before any
// stage runs.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}

	for _, seed := range c.Seeds {
		if err := validateSeedURL(seed); err != nil {
			return err
		}
	}

	if len(c.Keywords) == 0 {
		return ErrNoKeywords
	}

	// Terms must be unique case-insensitively or group assignment
	// becomes ambiguous.
	seen := make(map[string]struct{}, len(c.Keywords))
	for _, kw := range c.Keywords {
		lower := strings.ToLower(kw.Term)
		if _, ok := seen[lower]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateKeyword, kw.Term)
		}
		seen[lower] = struct{}{}
	}

	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, c.Threshold)
	}

	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDepth, c.MaxDepth)
	}

	if c.MaxPages <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxPages, c.MaxPages)
	}

	if c.Delay < 0 {
		return ErrInvalidDelay
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidConcurrency, c.Concurrency)
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	switch c.Format {
	case FormatMarkdown, FormatJSON, FormatSimple:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Format)
	}

	// Embedding scoring cannot run without credentials; refuse now so
	// no pages are crawled before the inevitable failure.
	if c.UseEmbedding && c.OpenAIAPIKey == "" {
		return ErrMissingAPIKey
	}

	return nil
}

// validateSeedURL checks that a seed is an absolute http(s) URL.
func validateSeedURL(seed string) error {
	u, err := url.Parse(seed)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidSeedURL, seed)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidSeedURL, seed)
	}
	return nil
}

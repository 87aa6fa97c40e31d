package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/webresearch/internal/config"
	"github.com/nao1215/webresearch/internal/crawler"
	"github.com/nao1215/webresearch/internal/database"
	"github.com/nao1215/webresearch/internal/fetch"
	"github.com/nao1215/webresearch/internal/llm"
	"github.com/nao1215/webresearch/internal/log"
	"github.com/nao1215/webresearch/internal/model"
	"github.com/nao1215/webresearch/internal/pipeline"
	"github.com/nao1215/webresearch/internal/report"
	"github.com/nao1215/webresearch/internal/score"
	"github.com/nao1215/webresearch/internal/summary"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Crawl the seed URLs and build a research report",
		Long: `Run executes the research pipeline end to end:

1. Crawl the seed URLs breadth-first within the depth and page budgets
2. Score every collected page against each keyword
3. Group the surviving pages by keyword and summarize each group
4. Assemble the report and render it as markdown, JSON, or plain text

Relevance is scored by word overlap by default; --embedding switches to
embedding similarity and requires OPENAI_API_KEY in the environment.
Summaries are extractive by default; --generative asks a chat model
instead and falls back to the extractive summary for any group whose
request fails.

Interrupting a run (Ctrl-C) stops the crawl but still renders a report
from the pages collected so far.

Examples:
  # Run with the scaffolded input files
  webresearch run

  # Ad-hoc run with explicit seeds
  webresearch run --url https://go.dev/blog/ --url https://go.dev/doc/

  # Deeper crawl with a larger page budget
  webresearch run -d 3 -p 100

  # Embedding relevance and generative summaries in Korean
  webresearch run --embedding --generative --lang ko

  # JSON report to an explicit path, archived for later
  webresearch run -f json -o outputs/run.json --save`,
		Args: cobra.NoArgs,
		RunE: runResearchCmd,
	}

	// Input flags
	cmd.Flags().StringP("urls-file", "u", config.DefaultURLsFile,
		"Seed URL list file (one URL per line)")
	cmd.Flags().StringArray("url", nil,
		"Additional seed URL (repeatable)")
	cmd.Flags().StringP("keywords-file", "k", config.DefaultKeywordsFile,
		"Keyword list file (term : description per line)")

	// Crawl budget flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum crawl depth (0 = seed pages only)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Global page budget for the whole run")
	cmd.Flags().Duration("delay", config.DefaultDelay,
		"Politeness delay before each fetch")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request timeout for fetches and API calls")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Parallel fetches within one crawl level (1 = deterministic order)")

	// Relevance flags
	cmd.Flags().Float64("threshold", config.DefaultThreshold,
		"Relevance score threshold in [0,1]")
	cmd.Flags().BoolP("embedding", "e", false,
		"Score relevance with embeddings (requires OPENAI_API_KEY)")

	// Summarization flags
	cmd.Flags().BoolP("generative", "g", false,
		"Summarize groups with a chat model (requires OPENAI_API_KEY)")
	cmd.Flags().Bool("no-generative", false,
		"Force extractive summaries even when the config file enables generative ones")
	cmd.Flags().StringP("lang", "l", config.DefaultLang,
		"Preferred summary language for generative output (en or ko)")

	// Report flags
	cmd.Flags().StringP("output", "o", "",
		"Write the report to this file (default: timestamped file in the output directory)")
	cmd.Flags().StringP("format", "f", config.FormatMarkdown,
		"Report format: markdown, json, or simple")

	// Archive flags
	cmd.Flags().BoolP("save", "s", false,
		"Archive the finished report in the run database")
	cmd.Flags().String("db-path", "",
		"Run archive directory (default: XDG data directory)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .webresearch.yml in current or home directory)")

	return cmd
}

// runResearchCmd executes the run command.
func runResearchCmd(cmd *cobra.Command, _ []string) error {
	// Build config from the optional config file and flags
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runResearch(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the config file and command flags.
// Precedence is defaults < config file < explicit flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Merge the optional config file before the flags so explicit flags
	// keep the last word.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently skip when no file is found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := file.ApplyTo(cfg); err != nil {
			return nil, err
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	// Seed URLs come from the list file plus any repeated --url flags.
	// The default list file may be absent when every seed arrives via
	// --url; a customized path must exist.
	extraSeeds, err := cmd.Flags().GetStringArray("url")
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(cfg.URLsFile); statErr == nil || cfg.URLsFile != config.DefaultURLsFile {
		cfg.Seeds, err = config.LoadSeeds(cfg.URLsFile)
		if err != nil {
			return nil, err
		}
	}
	cfg.Seeds = append(cfg.Seeds, extraSeeds...)

	cfg.Keywords, err = config.LoadKeywords(cfg.KeywordsFile)
	if err != nil {
		return nil, err
	}

	// Credentials come from the environment only, never from flags or
	// the config file.
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	return cfg, nil
}

// applyFlags copies explicitly set flags onto the config. Unchanged
// flags keep whatever the defaults and the config file produced.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("urls-file") {
		cfg.URLsFile, err = flags.GetString("urls-file")
		if err != nil {
			return err
		}
	}

	if flags.Changed("keywords-file") {
		cfg.KeywordsFile, err = flags.GetString("keywords-file")
		if err != nil {
			return err
		}
	}

	if flags.Changed("depth") {
		cfg.MaxDepth, err = flags.GetInt("depth")
		if err != nil {
			return err
		}
	}

	if flags.Changed("max-pages") {
		cfg.MaxPages, err = flags.GetInt("max-pages")
		if err != nil {
			return err
		}
	}

	if flags.Changed("delay") {
		cfg.Delay, err = flags.GetDuration("delay")
		if err != nil {
			return err
		}
	}

	if flags.Changed("timeout") {
		cfg.Timeout, err = flags.GetDuration("timeout")
		if err != nil {
			return err
		}
	}

	if flags.Changed("concurrency") {
		cfg.Concurrency, err = flags.GetInt("concurrency")
		if err != nil {
			return err
		}
	}

	if flags.Changed("threshold") {
		cfg.Threshold, err = flags.GetFloat64("threshold")
		if err != nil {
			return err
		}
	}

	if flags.Changed("embedding") {
		cfg.UseEmbedding, err = flags.GetBool("embedding")
		if err != nil {
			return err
		}
	}

	if flags.Changed("generative") {
		cfg.UseGenerative, err = flags.GetBool("generative")
		if err != nil {
			return err
		}
	}

	// --no-generative wins over both the config file and --generative
	noGenerative, err := flags.GetBool("no-generative")
	if err != nil {
		return err
	}
	if noGenerative {
		cfg.UseGenerative = false
	}

	if flags.Changed("lang") {
		cfg.Lang, err = flags.GetString("lang")
		if err != nil {
			return err
		}
	}

	if flags.Changed("output") {
		cfg.ReportFile, err = flags.GetString("output")
		if err != nil {
			return err
		}
	}

	if flags.Changed("format") {
		cfg.Format, err = flags.GetString("format")
		if err != nil {
			return err
		}
	}

	if flags.Changed("save") {
		cfg.SaveToDB, err = flags.GetBool("save")
		if err != nil {
			return err
		}
	}

	if flags.Changed("db-path") {
		cfg.DBDir, err = flags.GetString("db-path")
		if err != nil {
			return err
		}
	}

	return nil
}

// runResearch executes the research pipeline.
func runResearch(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Debug("effective configuration",
		"seeds", len(cfg.Seeds),
		"keywords", len(cfg.Keywords),
		"maxDepth", cfg.MaxDepth,
		"maxPages", cfg.MaxPages,
		"delay", cfg.Delay,
		"threshold", cfg.Threshold,
		"embedding", cfg.UseEmbedding,
		"generative", cfg.UseGenerative,
		"lang", cfg.Lang,
		"timeout", cfg.Timeout,
		"concurrency", cfg.Concurrency,
		"format", cfg.Format,
		"save", cfg.SaveToDB,
	)

	// Open the run archive if saving is enabled
	var archive *database.Archive
	if cfg.SaveToDB {
		dbDir := cfg.DBDir
		if dbDir == "" {
			dbDir = config.XDGDataDir()
		}
		var err error
		archive, err = database.Open(dbDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open run archive: %w", err)
		}
		defer archive.Close()
		logger.Info("run archive opened", "dir", dbDir)
	}

	// Wire the pipeline stages. Everything is constructed here once;
	// the pipeline itself owns nothing but the step order.
	client := fetch.NewClient(
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithTimeout(cfg.Timeout),
	)

	spider := crawler.NewSpider(client,
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithDelay(cfg.Delay),
		crawler.WithConcurrency(cfg.Concurrency),
		crawler.WithLogger(logger),
	)

	var llmClient *llm.Client
	if cfg.UseEmbedding || cfg.UseGenerative {
		llmClient = newLLMClient(cfg)
	}
	if cfg.UseGenerative && cfg.OpenAIAPIKey == "" {
		logger.Warn("generative summaries requested without OPENAI_API_KEY, all groups will fall back to extractive summaries")
	}

	scorer, err := newScorer(ctx, cfg, llmClient)
	if err != nil {
		return err
	}
	summarizer := newSummarizer(cfg, llmClient, logger)

	runID := uuid.NewString()
	p := pipeline.DefaultPipeline(spider, scorer, summarizer, pipeline.WithLogger(logger))

	fmt.Printf("Researching %d seed(s) against %d keyword(s) (run %s)...\n",
		len(cfg.Seeds), len(cfg.Keywords), shortRunID(runID))

	startedAt := time.Now()
	state, runErr := p.Run(ctx, pipeline.NewState(runID, startedAt, cfg.Seeds, cfg.Keywords))
	if runErr != nil && state.Report == nil {
		return fmt.Errorf("research failed: %w", runErr)
	}

	elapsed := time.Since(startedAt).Round(time.Millisecond)
	if runErr != nil {
		fmt.Printf("Run interrupted after %s, rendering partial report\n\n", elapsed)
	} else {
		fmt.Printf("Research completed in %s\n\n", elapsed)
	}

	if err := outputReport(cfg, state.Report, startedAt); err != nil {
		return err
	}

	// The archive write must outlive the run context: an interrupted
	// run still archives its partial report, just as it renders it.
	if err := saveReport(context.WithoutCancel(ctx), archive, state.Report, logger); err != nil {
		logger.Error("failed to archive report", "runID", state.RunID, "error", err)
	}

	if runErr != nil {
		return fmt.Errorf("run interrupted: %w", runErr)
	}
	return nil
}

// newLLMClient builds the OpenAI-compatible client shared by embedding
// scoring and generative summarization.
func newLLMClient(cfg *config.Config) *llm.Client {
	opts := []llm.Option{
		llm.WithChatModel(cfg.ChatModel),
		llm.WithEmbeddingModel(cfg.EmbeddingModel),
		llm.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, llm.WithBaseURL(cfg.OpenAIBaseURL))
	}
	return llm.NewClient(cfg.OpenAIAPIKey, opts...)
}

// newScorer selects the relevance strategy. Embedding scoring checks the
// backend before any page is crawled: an unreachable backend must fail
// the run now rather than after the crawl budget is spent.
func newScorer(ctx context.Context, cfg *config.Config, llmClient *llm.Client) (*score.Scorer, error) {
	if !cfg.UseEmbedding {
		return score.NewScorer(score.NewLexical(), cfg.Threshold), nil
	}

	if err := llmClient.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", score.ErrScoringUnavailable, err)
	}
	return score.NewScorer(score.NewEmbedding(llmClient), cfg.Threshold), nil
}

// newSummarizer selects the summarization strategy. Generative summaries
// degrade per group inside the summarizer, so no preflight is needed.
func newSummarizer(cfg *config.Config, llmClient *llm.Client, logger *slog.Logger) *summary.Summarizer {
	if !cfg.UseGenerative {
		return summary.NewSummarizer(summary.NewExtractive(), summary.WithLogger(logger))
	}
	return summary.NewSummarizer(
		summary.NewGenerative(llmClient, summary.WithLanguage(cfg.Lang)),
		summary.WithLogger(logger),
	)
}

// outputReport renders the report in the configured format. An explicit
// --output path wins; otherwise markdown and JSON reports land in the
// output directory under a timestamped name, and the simple format goes
// to the terminal.
func outputReport(cfg *config.Config, researchReport *model.Report, startedAt time.Time) error {
	reportPath := cfg.ReportFile
	if reportPath == "" && cfg.Format != config.FormatSimple {
		reportPath = defaultReportPath(cfg, startedAt)
	}

	var output *os.File
	if reportPath != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(reportPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600).
		// Reports quote crawled page content that may not be public.
		f, err := os.OpenFile(reportPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	if err := writeReport(output, cfg.Format, researchReport, cfg.Verbose); err != nil {
		return err
	}

	if reportPath != "" {
		fmt.Printf("Report written to %s\n", reportPath)
	}
	return nil
}

// defaultReportPath picks a timestamped file name inside the output
// directory, with the extension matching the format.
func defaultReportPath(cfg *config.Config, startedAt time.Time) string {
	ext := ".md"
	if cfg.Format == config.FormatJSON {
		ext = ".json"
	}
	return filepath.Join(cfg.OutputDir, "report-"+startedAt.Format("20060102-150405")+ext)
}

// writeReport renders the report to w in the given format.
func writeReport(w io.Writer, format string, researchReport *model.Report, verbose bool) error {
	switch format {
	case config.FormatJSON:
		_, err := report.NewFullJSONWriter(w, getVersion(), report.WithPrettyPrint()).Write(researchReport)
		return err
	case config.FormatSimple:
		_, err := report.NewSimpleWriter(w, report.WithVerbose(verbose)).Write(researchReport)
		return err
	default:
		_, err := report.NewMarkdownWriter(w).Write(researchReport)
		return err
	}
}

// saveReport archives the report if the archive is open.
// If archive is nil, this function is a no-op.
func saveReport(ctx context.Context, archive *database.Archive, researchReport *model.Report, logger *slog.Logger) error {
	if archive == nil {
		return nil
	}

	// SaveReport already describes its failures; no extra wrapping here.
	if err := archive.SaveReport(ctx, researchReport); err != nil {
		return err
	}

	logger.Info("report archived", "runID", researchReport.RunID)
	fmt.Printf("Report archived as run %s (see 'webresearch history')\n", shortRunID(researchReport.RunID))
	return nil
}

// shortRunID returns the first 8 characters of a run ID, which is the
// prefix length the history command prints and accepts.
func shortRunID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}

package config

import (
	"fmt"
	"time"
)

// File represents the structure of the .webresearch.yml configuration
// file. Every field is optional; absent fields leave the corresponding
// Config value untouched, so the precedence is defaults < file < flags.
//
// Pointer fields distinguish "not set" from meaningful zero values
// (maxDepth: 0 and threshold: 0 are both legal settings).
type File struct {
	// URLsFile is the seed URL list path.
	URLsFile string `yaml:"urlsFile,omitempty"`

	// KeywordsFile is the keyword list path.
	KeywordsFile string `yaml:"keywordsFile,omitempty"`

	// OutputDir is the report output directory.
	OutputDir string `yaml:"outputDir,omitempty"`

	// Format is the report format: markdown, json, or simple.
	Format string `yaml:"format,omitempty"`

	// MaxDepth is the crawl depth limit.
	MaxDepth *int `yaml:"maxDepth,omitempty"`

	// MaxPages is the global page budget.
	MaxPages *int `yaml:"maxPages,omitempty"`

	// Delay is the politeness delay as a Go duration string (e.g. "1s").
	Delay string `yaml:"delay,omitempty"`

	// Threshold is the relevance threshold in [0,1].
	Threshold *float64 `yaml:"threshold,omitempty"`

	// Embedding selects embedding-based relevance scoring.
	Embedding *bool `yaml:"embedding,omitempty"`

	// Generative selects generative group summaries.
	Generative *bool `yaml:"generative,omitempty"`

	// Lang is the preferred summary language ("en" or "ko").
	Lang string `yaml:"lang,omitempty"`

	// Timeout is the per-request timeout as a Go duration string.
	Timeout string `yaml:"timeout,omitempty"`

	// Concurrency bounds parallel fetches within one BFS level.
	Concurrency *int `yaml:"concurrency,omitempty"`

	// UserAgent overrides the HTTP User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// ChatModel is the generative summarization model name.
	ChatModel string `yaml:"chatModel,omitempty"`

	// EmbeddingModel is the embedding model name.
	EmbeddingModel string `yaml:"embeddingModel,omitempty"`

	// BaseURL redirects OpenAI-compatible API calls to another endpoint.
	BaseURL string `yaml:"baseURL,omitempty"`

	// DBDir is the run archive directory.
	DBDir string `yaml:"dbDir,omitempty"`

	// Save archives finished reports in the run database.
	Save *bool `yaml:"save,omitempty"`
}

// ApplyTo merges the file values into the given config. Only fields
// present in the file are applied. Duration strings are parsed here so
// a malformed file fails before any stage runs.
func (f *File) ApplyTo(c *Config) error {
	if f.URLsFile != "" {
		c.URLsFile = f.URLsFile
	}
	if f.KeywordsFile != "" {
		c.KeywordsFile = f.KeywordsFile
	}
	if f.OutputDir != "" {
		c.OutputDir = f.OutputDir
	}
	if f.Format != "" {
		c.Format = f.Format
	}
	if f.MaxDepth != nil {
		c.MaxDepth = *f.MaxDepth
	}
	if f.MaxPages != nil {
		c.MaxPages = *f.MaxPages
	}
	if f.Delay != "" {
		d, err := time.ParseDuration(f.Delay)
		if err != nil {
			return fmt.Errorf("invalid delay in config file: %w", err)
		}
		c.Delay = d
	}
	if f.Threshold != nil {
		c.Threshold = *f.Threshold
	}
	if f.Embedding != nil {
		c.UseEmbedding = *f.Embedding
	}
	if f.Generative != nil {
		c.UseGenerative = *f.Generative
	}
	if f.Lang != "" {
		c.Lang = f.Lang
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout in config file: %w", err)
		}
		c.Timeout = d
	}
	if f.Concurrency != nil {
		c.Concurrency = *f.Concurrency
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.ChatModel != "" {
		c.ChatModel = f.ChatModel
	}
	if f.EmbeddingModel != "" {
		c.EmbeddingModel = f.EmbeddingModel
	}
	if f.BaseURL != "" {
		c.OpenAIBaseURL = f.BaseURL
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
	if f.Save != nil {
		c.SaveToDB = *f.Save
	}
	return nil
}

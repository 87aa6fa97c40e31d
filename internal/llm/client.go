package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// defaultChatModel is the chat model used for generative summaries.
	defaultChatModel = openai.GPT3Dot5Turbo

	// defaultEmbeddingModel is the model used for relevance embeddings.
	defaultEmbeddingModel = openai.SmallEmbedding3

	// defaultTemperature keeps summaries close to the source material.
	defaultTemperature = 0.3

	// defaultMaxTokens bounds the length of one group summary.
	defaultMaxTokens = 500
)

// Client talks to an OpenAI-compatible API and serves both consumers of
// that API in this tool: the embedding relevance strategy and the
// generative summarizer.
//
// Design decision: We keep a single client for both concerns because:
//  1. Both use the same credentials, base URL, and HTTP transport
//  2. The consuming packages each declare their own narrow interface
//     (Embed / Summarize), so they stay decoupled from this package
//  3. One construction point means one place to swap the endpoint for
//     a local OpenAI-compatible server
type Client struct {
	api            *openai.Client
	baseURL        string
	httpClient     *http.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	temperature    float32
	maxTokens      int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at an alternative OpenAI-compatible
// endpoint, e.g. a local inference server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client for API requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithChatModel overrides the chat model used for summaries.
func WithChatModel(model string) Option {
	return func(c *Client) {
		c.chatModel = model
	}
}

// WithEmbeddingModel overrides the embedding model.
func WithEmbeddingModel(model string) Option {
	return func(c *Client) {
		c.embeddingModel = openai.EmbeddingModel(model)
	}
}

// WithTemperature overrides the chat sampling temperature.
func WithTemperature(temperature float32) Option {
	return func(c *Client) {
		c.temperature = temperature
	}
}

// WithMaxTokens overrides the summary token budget.
func WithMaxTokens(maxTokens int) Option {
	return func(c *Client) {
		c.maxTokens = maxTokens
	}
}

// NewClient creates a client for the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		chatModel:      defaultChatModel,
		embeddingModel: defaultEmbeddingModel,
		temperature:    defaultTemperature,
		maxTokens:      defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}

	cfg := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	if c.httpClient != nil {
		cfg.HTTPClient = c.httpClient
	}
	c.api = openai.NewClientWithConfig(cfg)
	return c
}

// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.embeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("embedding response carried no vectors")
	}
	return resp.Data[0].Embedding, nil
}

// Summarize sends one summarization request. The guidance becomes the
// system message and the content the user message; the model's reply is
// returned with surrounding whitespace trimmed.
func (c *Client) Summarize(ctx context.Context, content, guidance string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: guidance},
			{Role: openai.ChatMessageRoleUser, Content: content},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat response carried no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Ping checks connectivity to the API by listing available models.
// Callers use it as a best-effort preflight; a failure here does not
// imply later calls will fail.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

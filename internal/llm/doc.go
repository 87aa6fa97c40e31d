// Package llm provides the OpenAI-backed provider client consumed by
// the embedding relevance strategy and the generative summarizer.
//
// The package exposes exactly one type, Client, with three operations:
//
//   - Embed: text → embedding vector, used by the score package
//   - Summarize: content + guidance → summary text, used by the
//     summary package
//   - Ping: best-effort connectivity preflight
//
// Consumers never import this package's types directly; they declare
// their own single-method interfaces (score.Embedder, the summary
// package's Generator) that *Client satisfies. That keeps the provider
// swappable in tests with plain fakes and keeps failure semantics in
// the consumers: the score package escalates embedding failures to a
// fatal scoring error, while the summary package degrades to extractive
// summaries and keeps the run alive.
package llm

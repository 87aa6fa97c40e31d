package score

import (
	"context"
	"fmt"
	"math"

	"github.com/nao1215/webresearch/internal/model"
)

// Embedder produces a vector embedding for a piece of text.
// *llm.Client satisfies this interface.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Embedding scores pages by cosine similarity between the page text
// vector and the keyword query vector, rescaled from [-1,1] to [0,1].
// Any backend failure surfaces as ErrScoringUnavailable: the run fails
// fast rather than silently downgrading to lexical scoring.
type Embedding struct {
	embedder Embedder

	// keywordVectors holds one vector per keyword term, computed by
	// Prepare before any page is embedded.
	keywordVectors map[string][]float32

	// pageVectors caches page embeddings by canonical URL so a page
	// scored against several keywords is embedded only once.
	pageVectors map[string][]float32
}

// NewEmbedding creates the embedding scoring strategy backed by the
// given embedder.
func NewEmbedding(embedder Embedder) *Embedding {
	return &Embedding{embedder: embedder}
}

// Name implements Strategy.
func (e *Embedding) Name() string {
	return "embedding"
}

// Prepare implements Strategy. It embeds every keyword query up front,
// so an unreachable backend aborts the run before any page work.
func (e *Embedding) Prepare(ctx context.Context, keywords []model.KeywordSpec) error {
	e.keywordVectors = make(map[string][]float32, len(keywords))
	e.pageVectors = make(map[string][]float32)

	for _, kw := range keywords {
		vec, err := e.embedder.Embed(ctx, kw.Query())
		if err != nil {
			return fmt.Errorf("%w: embedding keyword %q: %v", ErrScoringUnavailable, kw.Term, err)
		}
		e.keywordVectors[kw.Term] = vec
	}
	return nil
}

// Score implements Strategy.
func (e *Embedding) Score(ctx context.Context, page *model.PageRecord, keyword model.KeywordSpec) (float64, error) {
	keywordVec, ok := e.keywordVectors[keyword.Term]
	if !ok {
		return 0, fmt.Errorf("%w: keyword %q was not prepared", ErrScoringUnavailable, keyword.Term)
	}

	pageVec, ok := e.pageVectors[page.URL]
	if !ok {
		vec, err := e.embedder.Embed(ctx, page.Title+" "+page.BodyText)
		if err != nil {
			return 0, fmt.Errorf("%w: embedding page %s: %v", ErrScoringUnavailable, page.URL, err)
		}
		e.pageVectors[page.URL] = vec
		pageVec = vec
	}

	return (cosine(pageVec, keywordVec) + 1) / 2, nil
}

// cosine returns the cosine similarity of two vectors. Vectors of
// different lengths or zero magnitude yield 0.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

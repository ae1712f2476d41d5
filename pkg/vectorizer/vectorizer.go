package vectorizer

import (
	"context"
	"time"
)

// Vectorizer converts text to embeddings.
type Vectorizer interface {
	// Embed converts a single text to vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts multiple texts to vector embeddings.
	// Returns embeddings in the same order as input texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector size this implementation produces.
	Dimensions() int
}

// QueryEmbedder is implemented by providers that embed search queries
// differently from stored documents.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// EmbedQuery embeds text as a search query when v supports it and falls back
// to Embed otherwise.
func EmbedQuery(ctx context.Context, v Vectorizer, text string) ([]float32, error) {
	if q, ok := v.(QueryEmbedder); ok {
		return q.EmbedQuery(ctx, text)
	}
	return v.Embed(ctx, text)
}

// ObserveFunc receives the outcome of every provider call.
// err is nil on success.
type ObserveFunc func(provider string, attempts int, elapsed time.Duration, err error)

func (f ObserveFunc) observe(provider string, attempts int, start time.Time, err error) {
	if f != nil {
		f(provider, attempts, time.Since(start), err)
	}
}

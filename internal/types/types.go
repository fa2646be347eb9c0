package types

import (
	"context"

	"github.com/plagiax/plagiax/internal/models"
)

// Core capability interfaces. The engine and aggregator only ever see these,
// so tests can swap in stubs and the core stays free of any model runtime.

// Embedder turns text into a fixed-length vector. Deterministic for identical
// input.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Classifier returns (human, ai) probabilities summing to 1.0.
type Classifier interface {
	Classify(ctx context.Context, text string) (human float64, ai float64, err error)
}

// Fetcher downloads the raw bytes of a document.
type Fetcher interface {
	FetchRawBytes(ctx context.Context, url string) ([]byte, error)
}

// Extractor turns raw document bytes into cleaned text.
type Extractor interface {
	ExtractCleanText(raw []byte) (string, error)
}

// Searcher discovers candidate reference papers for a suspect text and fetches
// their content. The two slices correspond positionally.
type Searcher interface {
	SearchAndFetch(ctx context.Context, text string, numPapers int) ([]string, []models.PaperInfo, error)
}

// ReferenceStore is a persistent corpus of reference papers queryable by
// embedding similarity.
type ReferenceStore interface {
	Store(ctx context.Context, papers []models.ReferencePaper) error
	Query(ctx context.Context, embedding []float32, limit int) ([]models.ReferencePaper, error)
	Close()
}

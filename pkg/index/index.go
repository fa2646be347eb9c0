package index

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/plagiax/plagiax/internal/types"
	"github.com/plagiax/plagiax/pkg/similarity"
)

// ErrEmptyIndex is returned when Query runs before any Insert.
var ErrEmptyIndex = errors.New("similarity index is empty")

// Entry is one stored document with its embedding.
type Entry struct {
	DocID     string
	Text      string
	Embedding []float32
}

// Match is a query hit ordered by semantic similarity.
type Match struct {
	DocID      string
	Text       string
	Similarity float64
}

// Index is an in-memory store of (document, embedding) pairs with
// nearest-neighbor lookup by cosine similarity. Lookup is a linear scan:
// reference corpora here are tens to low hundreds of documents, so no
// approximate structure is needed. Scoped to one comparison session and not
// safe for concurrent mutation.
type Index struct {
	embedder types.Embedder
	entries  []Entry
}

func New(embedder types.Embedder) *Index {
	return &Index{embedder: embedder}
}

// Insert embeds the text and stores it under the given id.
func (ix *Index) Insert(ctx context.Context, docID, text string) error {
	processed := similarity.Preprocess(text)

	embedding, err := ix.embedder.EmbedText(ctx, processed)
	if err != nil {
		return fmt.Errorf("failed to embed document %s: %w", docID, err)
	}

	ix.entries = append(ix.entries, Entry{
		DocID:     docID,
		Text:      text,
		Embedding: embedding,
	})

	return nil
}

// Len reports the number of stored entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Query embeds the text once and scores it against every stored entry,
// returning the topN matches sorted by similarity descending. Ties keep
// insertion order.
func (ix *Index) Query(ctx context.Context, text string, topN int) ([]Match, error) {
	if len(ix.entries) == 0 {
		return nil, ErrEmptyIndex
	}

	queryEmbedding, err := ix.embedder.EmbedText(ctx, similarity.Preprocess(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches := make([]Match, 0, len(ix.entries))
	for _, entry := range ix.entries {
		matches = append(matches, Match{
			DocID:      entry.DocID,
			Text:       entry.Text,
			Similarity: similarity.CosineSimilarity(queryEmbedding, entry.Embedding),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if topN > 0 && topN < len(matches) {
		matches = matches[:topN]
	}

	return matches, nil
}
